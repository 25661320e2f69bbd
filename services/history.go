package services

import (
	"errors"
	"fmt"
	"time"
	"warehouse-accreditation-api/models"

	"gorm.io/gorm"
)

// ArchiveResult reports what an archive call produced. SectionHistoryIDs
// maps each live section id to its history row so the caller can detach
// the live rows afterwards (archive-then-mutate ordering: live rows are
// never touched here).
type ArchiveResult struct {
	Archived            bool
	AssignmentHistoryID int
	SectionHistoryIDs   map[int]int
}

// ArchiveAssignment snapshots a cycle's live rows (the assignment, its
// sections and fields, the triggering rejection and the resubmissions
// consumed this cycle) into the history tables. It is the sole writer
// of those tables and is idempotent: re-invoking it for an
// already-archived assignment is a no-op, guarded by the uniqueness
// constraint on assignment_history.assignment_id.
func ArchiveAssignment(tx *gorm.DB, assignmentID int) (*ArchiveResult, error) {
	var prior models.AssignmentHistory
	err := tx.Where("assignment_id = ?", assignmentID).First(&prior).Error
	if err == nil {
		return &ArchiveResult{Archived: false, AssignmentHistoryID: prior.AssignmentHistoryID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check archive state: %w", err)
	}

	var assignment models.Assignment
	if err := tx.First(&assignment, assignmentID).Error; err != nil {
		return nil, fmt.Errorf("failed to load assignment %d: %w", assignmentID, err)
	}

	sections, fields, err := loadAssignmentFields(tx, assignmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	assignmentHistory := models.AssignmentHistory{
		AssignmentID:          assignment.AssignmentID,
		AssignmentNumber:      assignment.AssignmentNumber,
		ApplicationID:         assignment.ApplicationID,
		ApplicationLocationID: assignment.ApplicationLocationID,
		AssignedBy:            assignment.AssignedBy,
		AssignedTo:            assignment.AssignedTo,
		Level:                 assignment.Level,
		ProcessType:           assignment.ProcessType,
		Status:                assignment.Status,
		ParentAssignmentID:    assignment.ParentAssignmentID,
		AssessmentID:          assignment.AssessmentID,
		UnlockRequestID:       assignment.UnlockRequestID,
		SubmittedAt:           assignment.SubmittedAt,
		ArchivedAt:            now,
	}
	if err := tx.Create(&assignmentHistory).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent retry archived first; treat as done.
			return &ArchiveResult{Archived: false}, nil
		}
		return nil, fmt.Errorf("failed to archive assignment %d: %w", assignmentID, err)
	}

	sectionHistoryIDs := make(map[int]int, len(sections))
	for _, section := range sections {
		sectionHistory := models.AssignmentSectionHistory{
			AssignmentSectionID: section.AssignmentSectionID,
			AssignmentHistoryID: assignmentHistory.AssignmentHistoryID,
			AssignmentID:        assignment.AssignmentID,
			SectionType:         section.SectionType,
			ResourceID:          section.ResourceID,
			ResourceType:        section.ResourceType,
			ArchivedAt:          now,
		}
		if err := tx.Create(&sectionHistory).Error; err != nil {
			return nil, fmt.Errorf("failed to archive section %d: %w", section.AssignmentSectionID, err)
		}
		sectionHistoryIDs[section.AssignmentSectionID] = sectionHistory.AssignmentSectionHistoryID
	}

	for _, field := range fields {
		if field.AssignmentSectionID == nil {
			continue
		}
		historySectionID, ok := sectionHistoryIDs[*field.AssignmentSectionID]
		if !ok {
			continue
		}
		fieldHistory := models.AssignmentSectionFieldHistory{
			AssignmentSectionFieldID:   field.AssignmentSectionFieldID,
			AssignmentSectionHistoryID: historySectionID,
			FieldName:                  field.FieldName,
			Remarks:                    field.Remarks,
			Status:                     field.Status,
			ArchivedAt:                 now,
		}
		if err := tx.Create(&fieldHistory).Error; err != nil {
			return nil, fmt.Errorf("failed to archive field %d: %w", field.AssignmentSectionFieldID, err)
		}
	}

	// The rejection that this cycle produced, if any.
	var rejection models.ApplicationRejection
	err = tx.Where("assignment_id = ?", assignmentID).First(&rejection).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load rejection of assignment %d: %w", assignmentID, err)
	}
	if err == nil {
		rejectionHistory := models.ApplicationRejectionHistory{
			RejectionID:           rejection.RejectionID,
			AssignmentHistoryID:   assignmentHistory.AssignmentHistoryID,
			ApplicationID:         rejection.ApplicationID,
			LocationApplicationID: rejection.LocationApplicationID,
			AssignmentID:          rejection.AssignmentID,
			RejectionReason:       rejection.RejectionReason,
			RejectionBy:           rejection.RejectionBy,
			UnlockedSections:      rejection.UnlockedSections,
			SupportingDocumentID:  rejection.SupportingDocumentID,
			ArchivedAt:            now,
		}
		if err := tx.Create(&rejectionHistory).Error; err != nil {
			return nil, fmt.Errorf("failed to archive rejection %d: %w", rejection.RejectionID, err)
		}
	}

	// Resubmissions consumed when this cycle was opened.
	var resubmissions []models.ResubmittedSection
	if err := tx.Where("consumed_by_assignment_id = ?", assignmentID).
		Find(&resubmissions).Error; err != nil {
		return nil, fmt.Errorf("failed to load consumed resubmissions: %w", err)
	}
	for _, r := range resubmissions {
		resubmissionHistory := models.ResubmittedSectionHistory{
			ResubmittedSectionID: r.ResubmittedSectionID,
			AssignmentHistoryID:  assignmentHistory.AssignmentHistoryID,
			ApplicationID:        r.ApplicationID,
			WarehouseLocationID:  r.WarehouseLocationID,
			AssignmentSectionID:  r.AssignmentSectionID,
			SectionType:          r.SectionType,
			ResourceID:           r.ResourceID,
			ArchivedAt:           now,
		}
		if err := tx.Create(&resubmissionHistory).Error; err != nil {
			return nil, fmt.Errorf("failed to archive resubmission %d: %w", r.ResubmittedSectionID, err)
		}
	}

	return &ArchiveResult{
		Archived:            true,
		AssignmentHistoryID: assignmentHistory.AssignmentHistoryID,
		SectionHistoryIDs:   sectionHistoryIDs,
	}, nil
}

// LoadArchivedCycles returns the archived cycles of an application,
// newest first, with sections and fields attached.
func LoadArchivedCycles(tx *gorm.DB, applicationID int) ([]models.AssignmentHistory, error) {
	var cycles []models.AssignmentHistory
	if err := tx.Preload("Sections.Fields").
		Where("application_id = ?", applicationID).
		Order("assignment_history_id DESC").
		Find(&cycles).Error; err != nil {
		return nil, fmt.Errorf("failed to load archived cycles: %w", err)
	}
	return cycles, nil
}
