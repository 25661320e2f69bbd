package models

import "time"

// Assignment lifecycle statuses.
const (
	AssignmentStatusAssigned   = "assigned"
	AssignmentStatusInProgress = "in_progress"
	AssignmentStatusSubmitted  = "submitted"
	AssignmentStatusCompleted  = "completed"
	AssignmentStatusRejected   = "rejected"
)

// Per-field review statuses.
const (
	FieldStatusPending             = "pending"
	FieldStatusInProcess           = "in_process"
	FieldStatusCompleted           = "completed"
	FieldStatusCorrectionsRequired = "corrections_required"
	FieldStatusApproved            = "approved"
)

// Delegation levels. The review chain is fixed:
// officer_to_hod -> hod_to_expert -> expert_to_hod -> hod_to_applicant.
// admin_to_applicant is an out-of-band shortcut for administrators.
const (
	LevelOfficerToHOD     = "officer_to_hod"
	LevelHODToExpert      = "hod_to_expert"
	LevelExpertToHOD      = "expert_to_hod"
	LevelHODToApplicant   = "hod_to_applicant"
	LevelAdminToApplicant = "admin_to_applicant"
)

// Process types distinguish ordinary accreditation reviews from
// standalone section-unlock reviews.
const (
	ProcessTypeAccreditation = "accreditation"
	ProcessTypeUnlock        = "unlock"
)

// Assignment is one delegation of review responsibility: "user A asks
// user B to review application X at level L".
type Assignment struct {
	AssignmentID          int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	AssignmentNumber      string     `gorm:"column:assignment_number" json:"assignment_number"`
	ApplicationID         int        `gorm:"column:application_id;index" json:"application_id"`
	ApplicationLocationID *int       `gorm:"column:application_location_id" json:"application_location_id,omitempty"`
	AssignedBy            int        `gorm:"column:assigned_by" json:"assigned_by"`
	AssignedTo            int        `gorm:"column:assigned_to;index" json:"assigned_to"`
	Level                 string     `gorm:"column:level" json:"level"`
	ProcessType           string     `gorm:"column:process_type" json:"process_type"`
	Status                string     `gorm:"column:status" json:"status"`
	ParentAssignmentID    *int       `gorm:"column:parent_assignment_id" json:"parent_assignment_id,omitempty"`
	AssessmentID          *int       `gorm:"column:assessment_id" json:"assessment_id,omitempty"`
	UnlockRequestID       *int       `gorm:"column:unlock_request_id" json:"unlock_request_id,omitempty"`
	SubmittedAt           *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ClosedAt              *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`
	CreateAt              time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt              time.Time  `gorm:"column:update_at" json:"update_at"`

	// Relations
	Assigner *User               `gorm:"foreignKey:AssignedBy" json:"assigner,omitempty"`
	Assignee *User               `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Sections []AssignmentSection `gorm:"foreignKey:AssignmentID" json:"sections,omitempty"`
}

// AssignmentSection is one reviewable unit of an assignment, e.g. the
// bank details record of a warehouse location. AssignmentID is cleared
// when the owning cycle closes and the row is superseded by its history
// copy.
type AssignmentSection struct {
	AssignmentSectionID int       `gorm:"primaryKey;column:assignment_section_id" json:"assignment_section_id"`
	AssignmentID        *int      `gorm:"column:assignment_id;uniqueIndex:uq_section_per_cycle" json:"assignment_id,omitempty"`
	SectionType         string    `gorm:"column:section_type;uniqueIndex:uq_section_per_cycle" json:"section_type"`
	ResourceID          int       `gorm:"column:resource_id;uniqueIndex:uq_section_per_cycle" json:"resource_id"`
	ResourceType        string    `gorm:"column:resource_type" json:"resource_type"`
	CreateAt            time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt            time.Time `gorm:"column:update_at" json:"update_at"`

	Fields []AssignmentSectionField `gorm:"foreignKey:AssignmentSectionID" json:"fields,omitempty"`
}

// AssignmentSectionField is one reviewable field inside a section.
// After archival the live AssignmentSectionID is cleared and
// AssignmentSectionHistoryID points at the archived section instead.
type AssignmentSectionField struct {
	AssignmentSectionFieldID   int       `gorm:"primaryKey;column:assignment_section_field_id" json:"assignment_section_field_id"`
	AssignmentSectionID        *int      `gorm:"column:assignment_section_id;index" json:"assignment_section_id,omitempty"`
	AssignmentSectionHistoryID *int      `gorm:"column:assignment_section_history_id" json:"assignment_section_history_id,omitempty"`
	FieldName                  string    `gorm:"column:field_name" json:"field_name"`
	Remarks                    *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	Status                     string    `gorm:"column:status" json:"status"`
	CreateAt                   time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt                   time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName overrides
func (Assignment) TableName() string {
	return "assignments"
}

func (AssignmentSection) TableName() string {
	return "assignment_sections"
}

func (AssignmentSectionField) TableName() string {
	return "assignment_section_fields"
}

// IsLive reports whether the assignment still occupies its
// (application, location, level) slot. Submitted cycles count: they
// hold the slot until finalize closes them.
func (a *Assignment) IsLive() bool {
	return a.Status == AssignmentStatusAssigned ||
		a.Status == AssignmentStatusInProgress ||
		a.Status == AssignmentStatusSubmitted
}

// IsClosed reports whether the assignment reached a terminal status.
func (a *Assignment) IsClosed() bool {
	return a.Status == AssignmentStatusCompleted || a.Status == AssignmentStatusRejected
}

// IsTerminalFieldStatus reports whether a field status counts as decided
// for submission purposes.
func IsTerminalFieldStatus(status string) bool {
	switch status {
	case FieldStatusApproved, FieldStatusCompleted, FieldStatusCorrectionsRequired:
		return true
	}
	return false
}
