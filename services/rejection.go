package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"warehouse-accreditation-api/models"

	"gorm.io/gorm"
)

// RecordRejectionInput captures one reject decision.
type RecordRejectionInput struct {
	AssignmentID          int
	ApplicationID         int
	LocationApplicationID *int
	RejectionBy           int
	Reason                string
	UnlockedSections      models.UnlockedSectionList
	SupportingDocumentID  *int
}

// RecordRejection creates the ApplicationRejection row for a rejected
// cycle. The unlocked-section list is the authoritative contract for
// what the applicant may now edit.
func RecordRejection(tx *gorm.DB, in RecordRejectionInput) (*models.ApplicationRejection, error) {
	if len(in.UnlockedSections) == 0 {
		return nil, fmt.Errorf("rejection of assignment %d unlocks no sections", in.AssignmentID)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("rejection of assignment %d needs a reason", in.AssignmentID)
	}

	rejection := models.ApplicationRejection{
		ApplicationID:         in.ApplicationID,
		LocationApplicationID: in.LocationApplicationID,
		AssignmentID:          in.AssignmentID,
		RejectionReason:       in.Reason,
		RejectionBy:           in.RejectionBy,
		UnlockedSections:      in.UnlockedSections,
		SupportingDocumentID:  in.SupportingDocumentID,
		CreateAt:              time.Now(),
	}
	if err := tx.Create(&rejection).Error; err != nil {
		return nil, fmt.Errorf("failed to record rejection: %w", err)
	}
	return &rejection, nil
}

// LatestUnresolvedRejection returns the most recent rejection whose
// correction cycle has not re-entered review yet, or nil when none is
// open.
func LatestUnresolvedRejection(tx *gorm.DB, applicationID int, locationID *int) (*models.ApplicationRejection, error) {
	query := tx.Where("application_id = ? AND resolved_at IS NULL", applicationID)
	if locationID != nil {
		query = query.Where("location_application_id = ?", *locationID)
	} else {
		query = query.Where("location_application_id IS NULL")
	}

	var rejection models.ApplicationRejection
	err := query.Order("rejection_id DESC").First(&rejection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest rejection: %w", err)
	}
	return &rejection, nil
}

// RecordResubmissionInput reports that the applicant saved corrected
// values for a previously unlocked section.
type RecordResubmissionInput struct {
	ApplicationID        int
	WarehouseLocationID  *int
	AssignmentSectionID  int
	SectionType          string
	ResourceID           int
	SupportingDocumentID *int
}

// RecordResubmission creates a ResubmittedSection row after checking
// the section against the most recent unresolved rejection's unlocked
// set.
func RecordResubmission(tx *gorm.DB, in RecordResubmissionInput) (*models.ResubmittedSection, error) {
	rejection, err := LatestUnresolvedRejection(tx, in.ApplicationID, in.WarehouseLocationID)
	if err != nil {
		return nil, err
	}
	if rejection == nil || !rejection.UnlockedSections.Contains(in.SectionType, in.ResourceID) {
		return nil, &SectionNotUnlockedError{
			ApplicationID: in.ApplicationID,
			SectionType:   in.SectionType,
			ResourceID:    in.ResourceID,
		}
	}

	resubmission := models.ResubmittedSection{
		ApplicationID:        in.ApplicationID,
		WarehouseLocationID:  in.WarehouseLocationID,
		AssignmentSectionID:  in.AssignmentSectionID,
		SectionType:          in.SectionType,
		ResourceID:           in.ResourceID,
		SupportingDocumentID: in.SupportingDocumentID,
		CreateAt:             time.Now(),
	}
	if err := tx.Create(&resubmission).Error; err != nil {
		return nil, fmt.Errorf("failed to record resubmission: %w", err)
	}
	return &resubmission, nil
}

// unconsumedResubmissions returns the resubmitted sections not yet
// presented to a reviewer, oldest first.
func unconsumedResubmissions(tx *gorm.DB, applicationID int, locationID *int) ([]models.ResubmittedSection, error) {
	query := tx.Where("application_id = ? AND consumed_by_assignment_id IS NULL", applicationID)
	if locationID != nil {
		query = query.Where("warehouse_location_id = ?", *locationID)
	} else {
		query = query.Where("warehouse_location_id IS NULL")
	}

	var rows []models.ResubmittedSection
	if err := query.Order("resubmitted_section_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load resubmitted sections: %w", err)
	}
	return rows, nil
}

// consumeResubmissions stamps the given resubmissions as consumed by
// the re-review assignment that presents them. Rows are kept, never
// deleted.
func consumeResubmissions(tx *gorm.DB, rows []models.ResubmittedSection, assignmentID int) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ResubmittedSectionID)
	}
	now := time.Now()
	return tx.Model(&models.ResubmittedSection{}).
		Where("resubmitted_section_id IN ?", ids).
		Updates(map[string]interface{}{
			"consumed_by_assignment_id": assignmentID,
			"consumed_at":               now,
		}).Error
}
