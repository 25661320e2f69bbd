package models

import "time"

// Assessment verdicts recorded by subject-matter experts.
const (
	AssessmentVerdictRecommended    = "recommended"
	AssessmentVerdictNotRecommended = "not_recommended"
)

// Assessment is the inspection record opened when an application is
// delegated to a subject-matter expert and completed when the expert's
// review cycle closes.
type Assessment struct {
	AssessmentID  int        `gorm:"primaryKey;column:assessment_id" json:"assessment_id"`
	ApplicationID int        `gorm:"column:application_id;index" json:"application_id"`
	ExpertID      int        `gorm:"column:expert_id" json:"expert_id"`
	Verdict       *string    `gorm:"column:verdict" json:"verdict,omitempty"`
	Summary       *string    `gorm:"column:summary" json:"summary,omitempty"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      time.Time  `gorm:"column:update_at" json:"update_at"`
}

// TableName specifies the table for Assessment.
func (Assessment) TableName() string {
	return "assessments"
}
