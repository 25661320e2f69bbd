package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileUploadIsValidDocumentType(t *testing.T) {
	upload := FileUpload{MimeType: "application/pdf"}
	assert.True(t, upload.IsValidDocumentType())

	upload.MimeType = "image/png"
	assert.True(t, upload.IsValidDocumentType())

	upload.MimeType = "application/x-msdownload"
	assert.False(t, upload.IsValidDocumentType())

	upload.MimeType = ""
	assert.False(t, upload.IsValidDocumentType())
}

func TestFileUploadGetFileSizeInMB(t *testing.T) {
	upload := FileUpload{FileSize: 5 * 1024 * 1024}
	assert.InDelta(t, 5.0, upload.GetFileSizeInMB(), 0.001)

	upload.FileSize = 512 * 1024
	assert.InDelta(t, 0.5, upload.GetFileSizeInMB(), 0.001)
}
