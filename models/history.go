package models

import "time"

// History counterparts of the live workflow tables. Each row snapshots
// one live row at the moment a review cycle closes and carries a
// back-reference to the live row's identifier. History rows are
// append-only: services.ArchiveAssignment is the sole writer and
// nothing in the codebase updates or deletes them. The uniqueness
// constraint on each back-reference makes archiving idempotent under
// retry.

// AssignmentHistory snapshots a closed Assignment.
type AssignmentHistory struct {
	AssignmentHistoryID   int        `gorm:"primaryKey;column:assignment_history_id" json:"assignment_history_id"`
	AssignmentID          int        `gorm:"column:assignment_id;uniqueIndex" json:"assignment_id"`
	AssignmentNumber      string     `gorm:"column:assignment_number" json:"assignment_number"`
	ApplicationID         int        `gorm:"column:application_id;index" json:"application_id"`
	ApplicationLocationID *int       `gorm:"column:application_location_id" json:"application_location_id,omitempty"`
	AssignedBy            int        `gorm:"column:assigned_by" json:"assigned_by"`
	AssignedTo            int        `gorm:"column:assigned_to" json:"assigned_to"`
	Level                 string     `gorm:"column:level" json:"level"`
	ProcessType           string     `gorm:"column:process_type" json:"process_type"`
	Status                string     `gorm:"column:status" json:"status"`
	ParentAssignmentID    *int       `gorm:"column:parent_assignment_id" json:"parent_assignment_id,omitempty"`
	AssessmentID          *int       `gorm:"column:assessment_id" json:"assessment_id,omitempty"`
	UnlockRequestID       *int       `gorm:"column:unlock_request_id" json:"unlock_request_id,omitempty"`
	SubmittedAt           *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ArchivedAt            time.Time  `gorm:"column:archived_at" json:"archived_at"`

	Sections []AssignmentSectionHistory `gorm:"foreignKey:AssignmentHistoryID" json:"sections,omitempty"`
}

// AssignmentSectionHistory snapshots one AssignmentSection.
type AssignmentSectionHistory struct {
	AssignmentSectionHistoryID int       `gorm:"primaryKey;column:assignment_section_history_id" json:"assignment_section_history_id"`
	AssignmentSectionID        int       `gorm:"column:assignment_section_id;uniqueIndex" json:"assignment_section_id"`
	AssignmentHistoryID        int       `gorm:"column:assignment_history_id;index" json:"assignment_history_id"`
	AssignmentID               int       `gorm:"column:assignment_id" json:"assignment_id"`
	SectionType                string    `gorm:"column:section_type" json:"section_type"`
	ResourceID                 int       `gorm:"column:resource_id" json:"resource_id"`
	ResourceType               string    `gorm:"column:resource_type" json:"resource_type"`
	ArchivedAt                 time.Time `gorm:"column:archived_at" json:"archived_at"`

	Fields []AssignmentSectionFieldHistory `gorm:"foreignKey:AssignmentSectionHistoryID" json:"fields,omitempty"`
}

// AssignmentSectionFieldHistory snapshots one AssignmentSectionField,
// preserving the reviewer's decision and remarks.
type AssignmentSectionFieldHistory struct {
	AssignmentSectionFieldHistoryID int       `gorm:"primaryKey;column:assignment_section_field_history_id" json:"assignment_section_field_history_id"`
	AssignmentSectionFieldID        int       `gorm:"column:assignment_section_field_id;uniqueIndex" json:"assignment_section_field_id"`
	AssignmentSectionHistoryID      int       `gorm:"column:assignment_section_history_id;index" json:"assignment_section_history_id"`
	FieldName                       string    `gorm:"column:field_name" json:"field_name"`
	Remarks                         *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	Status                          string    `gorm:"column:status" json:"status"`
	ArchivedAt                      time.Time `gorm:"column:archived_at" json:"archived_at"`
}

// ApplicationRejectionHistory snapshots the rejection that closed a cycle.
type ApplicationRejectionHistory struct {
	RejectionHistoryID    int                 `gorm:"primaryKey;column:rejection_history_id" json:"rejection_history_id"`
	RejectionID           int                 `gorm:"column:rejection_id;uniqueIndex" json:"rejection_id"`
	AssignmentHistoryID   int                 `gorm:"column:assignment_history_id" json:"assignment_history_id"`
	ApplicationID         int                 `gorm:"column:application_id;index" json:"application_id"`
	LocationApplicationID *int                `gorm:"column:location_application_id" json:"location_application_id,omitempty"`
	AssignmentID          int                 `gorm:"column:assignment_id" json:"assignment_id"`
	RejectionReason       string              `gorm:"column:rejection_reason" json:"rejection_reason"`
	RejectionBy           int                 `gorm:"column:rejection_by" json:"rejection_by"`
	UnlockedSections      UnlockedSectionList `gorm:"column:unlocked_sections;type:text" json:"unlocked_sections"`
	SupportingDocumentID  *int                `gorm:"column:supporting_document_id" json:"supporting_document_id,omitempty"`
	ArchivedAt            time.Time           `gorm:"column:archived_at" json:"archived_at"`
}

// ResubmittedSectionHistory snapshots the resubmissions consumed by the
// archived cycle.
type ResubmittedSectionHistory struct {
	ResubmittedSectionHistoryID int       `gorm:"primaryKey;column:resubmitted_section_history_id" json:"resubmitted_section_history_id"`
	ResubmittedSectionID        int       `gorm:"column:resubmitted_section_id;uniqueIndex" json:"resubmitted_section_id"`
	AssignmentHistoryID         int       `gorm:"column:assignment_history_id" json:"assignment_history_id"`
	ApplicationID               int       `gorm:"column:application_id" json:"application_id"`
	WarehouseLocationID         *int      `gorm:"column:warehouse_location_id" json:"warehouse_location_id,omitempty"`
	AssignmentSectionID         int       `gorm:"column:assignment_section_id" json:"assignment_section_id"`
	SectionType                 string    `gorm:"column:section_type" json:"section_type"`
	ResourceID                  int       `gorm:"column:resource_id" json:"resource_id"`
	ArchivedAt                  time.Time `gorm:"column:archived_at" json:"archived_at"`
}

// TableName overrides
func (AssignmentHistory) TableName() string {
	return "assignment_history"
}

func (AssignmentSectionHistory) TableName() string {
	return "assignment_sections_history"
}

func (AssignmentSectionFieldHistory) TableName() string {
	return "assignment_section_fields_history"
}

func (ApplicationRejectionHistory) TableName() string {
	return "application_rejection_history"
}

func (ResubmittedSectionHistory) TableName() string {
	return "resubmitted_sections_history"
}
