package models

import "time"

// Unlock request statuses.
const (
	UnlockRequestStatusPending  = "pending"
	UnlockRequestStatusApproved = "approved"
	UnlockRequestStatusRejected = "rejected"
)

// UnlockRequest is an applicant's request to reopen a locked section
// outside a rejection cycle. The decision runs through a dedicated
// Assignment with process_type=unlock.
type UnlockRequest struct {
	UnlockRequestID      int        `gorm:"primaryKey;column:unlock_request_id" json:"unlock_request_id"`
	ApplicationID        int        `gorm:"column:application_id;index" json:"application_id"`
	RequestedBy          int        `gorm:"column:requested_by" json:"requested_by"`
	SectionType          string     `gorm:"column:section_type" json:"section_type"`
	ResourceID           int        `gorm:"column:resource_id" json:"resource_id"`
	Reason               string     `gorm:"column:reason" json:"reason"`
	SupportingDocumentID *int       `gorm:"column:supporting_document_id" json:"supporting_document_id,omitempty"`
	Status               string     `gorm:"column:status" json:"status"`
	DecidedBy            *int       `gorm:"column:decided_by" json:"decided_by,omitempty"`
	DecidedAt            *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CreateAt             time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt             time.Time  `gorm:"column:update_at" json:"update_at"`
}

// TableName specifies the table for UnlockRequest.
func (UnlockRequest) TableName() string {
	return "unlock_requests"
}
