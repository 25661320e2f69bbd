package services

import (
	"errors"
	"fmt"
	"time"
	"warehouse-accreditation-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateAssignmentInput carries everything needed to open a review
// cycle.
type CreateAssignmentInput struct {
	ApplicationID         int
	ApplicationLocationID *int
	AssignedBy            int
	AssignedTo            int
	Level                 string
	ProcessType           string
	ParentAssignmentID    *int
	AssessmentID          *int
	UnlockRequestID       *int
	Sections              []SectionDefinition
}

// CreateAssignment opens a new review cycle at status assigned and
// materializes its sections. It enforces the delegation-path ordering
// and the one-live-assignment-per-(application, location, level)
// invariant.
func CreateAssignment(tx *gorm.DB, in CreateAssignmentInput) (*models.Assignment, error) {
	if in.ProcessType != models.ProcessTypeAccreditation && in.ProcessType != models.ProcessTypeUnlock {
		return nil, fmt.Errorf("unknown process type %q", in.ProcessType)
	}

	var parent *models.Assignment
	if in.ParentAssignmentID != nil {
		parent = &models.Assignment{}
		if err := tx.First(parent, *in.ParentAssignmentID).Error; err != nil {
			return nil, fmt.Errorf("failed to load parent assignment %d: %w", *in.ParentAssignmentID, err)
		}
	}
	if err := validateLevelTransition(parent, in.Level); err != nil {
		return nil, err
	}

	var application models.Application
	if err := tx.Where("application_id = ? AND delete_at IS NULL", in.ApplicationID).
		First(&application).Error; err != nil {
		return nil, fmt.Errorf("failed to load application %d: %w", in.ApplicationID, err)
	}

	// Per-level uniqueness among live assignments. Checked inside the
	// enclosing transaction; closing the previous cycle and opening the
	// next one commit together.
	query := tx.Where("application_id = ? AND level = ? AND status IN ?",
		in.ApplicationID, in.Level,
		[]string{models.AssignmentStatusAssigned, models.AssignmentStatusInProgress,
			models.AssignmentStatusSubmitted})
	if in.ApplicationLocationID != nil {
		query = query.Where("application_location_id = ?", *in.ApplicationLocationID)
	} else {
		query = query.Where("application_location_id IS NULL")
	}
	var existing models.Assignment
	err := query.First(&existing).Error
	if err == nil {
		return nil, &ActiveAssignmentExistsError{
			ApplicationID:         in.ApplicationID,
			ApplicationLocationID: in.ApplicationLocationID,
			Level:                 in.Level,
			ExistingAssignmentID:  existing.AssignmentID,
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check live assignments: %w", err)
	}

	now := time.Now()
	assignment := models.Assignment{
		AssignmentNumber:      uuid.NewString(),
		ApplicationID:         in.ApplicationID,
		ApplicationLocationID: in.ApplicationLocationID,
		AssignedBy:            in.AssignedBy,
		AssignedTo:            in.AssignedTo,
		Level:                 in.Level,
		ProcessType:           in.ProcessType,
		Status:                models.AssignmentStatusAssigned,
		ParentAssignmentID:    in.ParentAssignmentID,
		AssessmentID:          in.AssessmentID,
		UnlockRequestID:       in.UnlockRequestID,
		CreateAt:              now,
		UpdateAt:              now,
	}
	if err := tx.Create(&assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := InitializeSections(tx, assignment.AssignmentID, in.Sections); err != nil {
		return nil, err
	}

	return &assignment, nil
}

// lockAssignment loads an assignment under a row-level write lock,
// serializing concurrent submit/finalize calls against the same cycle.
// SQLite has no SELECT ... FOR UPDATE; its single-writer transactions
// already serialize these paths.
func lockAssignment(tx *gorm.DB, assignmentID int) (*models.Assignment, error) {
	query := tx
	if tx.Dialector.Name() != "sqlite" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var assignment models.Assignment
	if err := query.First(&assignment, assignmentID).Error; err != nil {
		return nil, fmt.Errorf("failed to load assignment %d: %w", assignmentID, err)
	}
	return &assignment, nil
}

// BeginAssignment transitions assigned -> in_progress. Calling it on an
// assignment that is already in progress is a no-op, so the first field
// decision can invoke it implicitly.
func BeginAssignment(tx *gorm.DB, assignmentID int) error {
	assignment, err := lockAssignment(tx, assignmentID)
	if err != nil {
		return err
	}

	switch assignment.Status {
	case models.AssignmentStatusInProgress:
		return nil
	case models.AssignmentStatusAssigned:
		return tx.Model(&models.Assignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(map[string]interface{}{
				"status":    models.AssignmentStatusInProgress,
				"update_at": time.Now(),
			}).Error
	case models.AssignmentStatusSubmitted:
		return &InvalidTransitionError{
			AssignmentID: assignmentID,
			Reason:       "cannot reopen a submitted review",
		}
	default:
		return &AssignmentAlreadyClosedError{AssignmentID: assignmentID, Status: assignment.Status}
	}
}

// SubmitAssignment transitions in_progress -> submitted once every
// field carries a terminal decision.
func SubmitAssignment(tx *gorm.DB, assignmentID int) error {
	assignment, err := lockAssignment(tx, assignmentID)
	if err != nil {
		return err
	}

	if assignment.IsClosed() {
		return &AssignmentAlreadyClosedError{AssignmentID: assignmentID, Status: assignment.Status}
	}
	if assignment.Status == models.AssignmentStatusSubmitted {
		return &InvalidTransitionError{AssignmentID: assignmentID, Reason: "review already submitted"}
	}
	if assignment.Status != models.AssignmentStatusInProgress {
		return &InvalidTransitionError{
			AssignmentID: assignmentID,
			Reason:       fmt.Sprintf("cannot submit from status %s", assignment.Status),
		}
	}

	_, fields, err := loadAssignmentFields(tx, assignmentID)
	if err != nil {
		return err
	}

	var pending []string
	for _, field := range fields {
		if !models.IsTerminalFieldStatus(field.Status) {
			pending = append(pending, field.FieldName)
		}
	}
	if len(pending) > 0 {
		return &IncompleteReviewError{AssignmentID: assignmentID, PendingFields: pending}
	}

	now := time.Now()
	return tx.Model(&models.Assignment{}).
		Where("assignment_id = ?", assignmentID).
		Updates(map[string]interface{}{
			"status":       models.AssignmentStatusSubmitted,
			"submitted_at": now,
			"update_at":    now,
		}).Error
}

// AssignmentChain walks the parent-pointer list back to the originating
// assignment, oldest first. The depth guard protects against an
// accidentally cyclic chain.
const maxChainDepth = 32

func AssignmentChain(tx *gorm.DB, assignmentID int) ([]models.Assignment, error) {
	chain := make([]models.Assignment, 0, 4)
	nextID := &assignmentID

	for depth := 0; nextID != nil; depth++ {
		if depth >= maxChainDepth {
			return nil, fmt.Errorf("assignment chain exceeds %d links at assignment %d", maxChainDepth, *nextID)
		}
		var assignment models.Assignment
		if err := tx.First(&assignment, *nextID).Error; err != nil {
			return nil, fmt.Errorf("failed to load assignment %d in chain: %w", *nextID, err)
		}
		chain = append(chain, assignment)
		nextID = assignment.ParentAssignmentID
	}

	// Reverse to oldest-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
