package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UnlockedSection identifies one section the applicant may edit after a
// rejection.
type UnlockedSection struct {
	SectionType string `json:"section_type"`
	ResourceID  int    `json:"resource_id"`
}

// UnlockedSectionList stores the ordered set of unlocked sections as a
// JSON column.
type UnlockedSectionList []UnlockedSection

// Value implements driver.Valuer.
func (l UnlockedSectionList) Value() (driver.Value, error) {
	if l == nil {
		l = UnlockedSectionList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *UnlockedSectionList) Scan(value interface{}) error {
	if value == nil {
		*l = UnlockedSectionList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into UnlockedSectionList", value)
	}
	if len(data) == 0 {
		*l = UnlockedSectionList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether the given section is part of the unlocked set.
func (l UnlockedSectionList) Contains(sectionType string, resourceID int) bool {
	for _, s := range l {
		if s.SectionType == sectionType && s.ResourceID == resourceID {
			return true
		}
	}
	return false
}

// ApplicationRejection records one reject decision and the sections it
// unlocked for correction. Rows are immutable after creation except for
// ResolvedAt, stamped when the follow-up review cycle opens.
type ApplicationRejection struct {
	RejectionID           int                 `gorm:"primaryKey;column:rejection_id" json:"rejection_id"`
	ApplicationID         int                 `gorm:"column:application_id;index" json:"application_id"`
	LocationApplicationID *int                `gorm:"column:location_application_id" json:"location_application_id,omitempty"`
	AssignmentID          int                 `gorm:"column:assignment_id" json:"assignment_id"`
	RejectionReason       string              `gorm:"column:rejection_reason" json:"rejection_reason"`
	RejectionBy           int                 `gorm:"column:rejection_by" json:"rejection_by"`
	UnlockedSections      UnlockedSectionList `gorm:"column:unlocked_sections;type:text" json:"unlocked_sections"`
	SupportingDocumentID  *int                `gorm:"column:supporting_document_id" json:"supporting_document_id,omitempty"`
	ResolvedAt            *time.Time          `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreateAt              time.Time           `gorm:"column:create_at" json:"create_at"`
}

// ResubmittedSection records that a previously unlocked section has been
// corrected and resubmitted by the applicant. Rows are consumed (read,
// never deleted) when the next review assignment is built;
// ConsumedByAssignmentID links them to that cycle.
type ResubmittedSection struct {
	ResubmittedSectionID   int        `gorm:"primaryKey;column:resubmitted_section_id" json:"resubmitted_section_id"`
	ApplicationID          int        `gorm:"column:application_id;index" json:"application_id"`
	WarehouseLocationID    *int       `gorm:"column:warehouse_location_id" json:"warehouse_location_id,omitempty"`
	AssignmentSectionID    int        `gorm:"column:assignment_section_id" json:"assignment_section_id"`
	SectionType            string     `gorm:"column:section_type" json:"section_type"`
	ResourceID             int        `gorm:"column:resource_id" json:"resource_id"`
	SupportingDocumentID   *int       `gorm:"column:supporting_document_id" json:"supporting_document_id,omitempty"`
	ConsumedByAssignmentID *int       `gorm:"column:consumed_by_assignment_id" json:"consumed_by_assignment_id,omitempty"`
	CreateAt               time.Time  `gorm:"column:create_at" json:"create_at"`
	ConsumedAt             *time.Time `gorm:"column:consumed_at" json:"consumed_at,omitempty"`
}

// TableName overrides
func (ApplicationRejection) TableName() string {
	return "application_rejections"
}

func (ResubmittedSection) TableName() string {
	return "resubmitted_sections"
}
