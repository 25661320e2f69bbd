package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"warehouse-accreditation-api/models"

	"gorm.io/gorm"
)

// SectionDefinition describes one reviewable section when a cycle is
// opened.
type SectionDefinition struct {
	SectionType  string   `json:"section_type" binding:"required"`
	ResourceID   int      `json:"resource_id" binding:"required"`
	ResourceType string   `json:"resource_type" binding:"required"`
	Fields       []string `json:"fields" binding:"required,min=1"`
}

// FieldDecision is one reviewer decision against a field.
type FieldDecision struct {
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

// InitializeSections materializes the AssignmentSection and
// AssignmentSectionField rows for a freshly created assignment. All
// fields start at pending.
func InitializeSections(tx *gorm.DB, assignmentID int, sections []SectionDefinition) error {
	if len(sections) == 0 {
		return fmt.Errorf("assignment %d needs at least one section", assignmentID)
	}

	now := time.Now()
	seen := make(map[string]bool, len(sections))

	for _, def := range sections {
		if _, err := ResourceOwnerFor(def.ResourceType); err != nil {
			return err
		}
		if len(def.Fields) == 0 {
			return fmt.Errorf("section %s/%d has no fields", def.SectionType, def.ResourceID)
		}

		key := fmt.Sprintf("%s|%d", def.SectionType, def.ResourceID)
		if seen[key] {
			return &DuplicateSectionError{
				AssignmentID: assignmentID,
				SectionType:  def.SectionType,
				ResourceID:   def.ResourceID,
			}
		}
		seen[key] = true

		var count int64
		if err := tx.Model(&models.AssignmentSection{}).
			Where("assignment_id = ? AND section_type = ? AND resource_id = ?",
				assignmentID, def.SectionType, def.ResourceID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check section uniqueness: %w", err)
		}
		if count > 0 {
			return &DuplicateSectionError{
				AssignmentID: assignmentID,
				SectionType:  def.SectionType,
				ResourceID:   def.ResourceID,
			}
		}

		ownerID := assignmentID
		section := models.AssignmentSection{
			AssignmentID: &ownerID,
			SectionType:  def.SectionType,
			ResourceID:   def.ResourceID,
			ResourceType: def.ResourceType,
			CreateAt:     now,
			UpdateAt:     now,
		}
		if err := tx.Create(&section).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &DuplicateSectionError{
					AssignmentID: assignmentID,
					SectionType:  def.SectionType,
					ResourceID:   def.ResourceID,
				}
			}
			return fmt.Errorf("failed to create section: %w", err)
		}

		for _, fieldName := range def.Fields {
			sectionID := section.AssignmentSectionID
			field := models.AssignmentSectionField{
				AssignmentSectionID: &sectionID,
				FieldName:           fieldName,
				Status:              models.FieldStatusPending,
				CreateAt:            now,
				UpdateAt:            now,
			}
			if err := tx.Create(&field).Error; err != nil {
				return fmt.Errorf("failed to create field %s: %w", fieldName, err)
			}
		}
	}

	return nil
}

// RecordFieldDecision sets a field's review status. The owning
// assignment must be in progress, corrections require remarks, and a
// decided field may not regress inside the same cycle.
func RecordFieldDecision(tx *gorm.DB, fieldID int, decision FieldDecision) error {
	status := strings.TrimSpace(decision.Status)
	switch status {
	case models.FieldStatusInProcess, models.FieldStatusCompleted,
		models.FieldStatusCorrectionsRequired, models.FieldStatusApproved:
	default:
		return &InvalidTransitionError{
			FieldID: fieldID,
			Reason:  fmt.Sprintf("%q is not a valid field decision", decision.Status),
		}
	}

	remarks := strings.TrimSpace(decision.Remarks)
	if status == models.FieldStatusCorrectionsRequired && remarks == "" {
		return &InvalidTransitionError{
			FieldID: fieldID,
			Reason:  "corrections_required decisions need non-empty remarks",
		}
	}

	var field models.AssignmentSectionField
	if err := tx.First(&field, fieldID).Error; err != nil {
		return fmt.Errorf("failed to load field %d: %w", fieldID, err)
	}
	if field.AssignmentSectionID == nil {
		return &InvalidTransitionError{
			FieldID: fieldID,
			Reason:  "field belongs to an archived cycle",
		}
	}

	var section models.AssignmentSection
	if err := tx.First(&section, *field.AssignmentSectionID).Error; err != nil {
		return fmt.Errorf("failed to load section %d: %w", *field.AssignmentSectionID, err)
	}
	if section.AssignmentID == nil {
		return &InvalidTransitionError{
			FieldID: fieldID,
			Reason:  "section belongs to an archived cycle",
		}
	}

	var assignment models.Assignment
	if err := tx.First(&assignment, *section.AssignmentID).Error; err != nil {
		return fmt.Errorf("failed to load assignment %d: %w", *section.AssignmentID, err)
	}
	if assignment.IsClosed() {
		return &AssignmentAlreadyClosedError{
			AssignmentID: assignment.AssignmentID,
			Status:       assignment.Status,
		}
	}
	if assignment.Status != models.AssignmentStatusInProgress {
		return &InvalidTransitionError{
			AssignmentID: assignment.AssignmentID,
			FieldID:      fieldID,
			Reason:       fmt.Sprintf("decisions require an in_progress assignment (status %s)", assignment.Status),
		}
	}

	// A decided field may flip between approved and completed, but a
	// regression to pending/in_process/corrections_required takes a new
	// cycle.
	if models.IsTerminalFieldStatus(field.Status) &&
		field.Status != models.FieldStatusCorrectionsRequired &&
		(status == models.FieldStatusInProcess || status == models.FieldStatusCorrectionsRequired) {
		return &InvalidTransitionError{
			AssignmentID: assignment.AssignmentID,
			FieldID:      fieldID,
			Reason:       fmt.Sprintf("field already decided as %s; a new review cycle is required to revise it", field.Status),
		}
	}

	updates := map[string]interface{}{
		"status":    status,
		"update_at": time.Now(),
	}
	if remarks != "" {
		updates["remarks"] = remarks
	}
	if err := tx.Model(&models.AssignmentSectionField{}).
		Where("assignment_section_field_id = ?", fieldID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update field %d: %w", fieldID, err)
	}

	return nil
}

// AggregateStatus reduces a cycle's field statuses to the assignment
// status the cycle is eligible for. Pure and deterministic: a cycle
// with no fields is not finalizable, any undecided field keeps the
// cycle in progress, and a single
// corrections_required field rejects the whole cycle even when every
// other field is approved.
func AggregateStatus(fields []models.AssignmentSectionField) string {
	if len(fields) == 0 {
		return models.AssignmentStatusInProgress
	}
	anyCorrections := false
	for _, field := range fields {
		switch field.Status {
		case models.FieldStatusPending, models.FieldStatusInProcess:
			return models.AssignmentStatusInProgress
		case models.FieldStatusCorrectionsRequired:
			anyCorrections = true
		}
	}
	if anyCorrections {
		return models.AssignmentStatusRejected
	}
	return models.AssignmentStatusCompleted
}

// loadAssignmentFields returns all live fields of an assignment,
// grouped under their sections.
func loadAssignmentFields(tx *gorm.DB, assignmentID int) ([]models.AssignmentSection, []models.AssignmentSectionField, error) {
	var sections []models.AssignmentSection
	if err := tx.Where("assignment_id = ?", assignmentID).
		Order("assignment_section_id ASC").
		Find(&sections).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load sections of assignment %d: %w", assignmentID, err)
	}

	sectionIDs := make([]int, 0, len(sections))
	for _, s := range sections {
		sectionIDs = append(sectionIDs, s.AssignmentSectionID)
	}

	var fields []models.AssignmentSectionField
	if len(sectionIDs) > 0 {
		if err := tx.Where("assignment_section_id IN ?", sectionIDs).
			Order("assignment_section_field_id ASC").
			Find(&fields).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to load fields of assignment %d: %w", assignmentID, err)
		}
	}

	return sections, fields, nil
}
