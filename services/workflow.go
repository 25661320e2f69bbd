package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"warehouse-accreditation-api/models"

	"gorm.io/gorm"
)

// ErrNotAssignedReviewer is returned when a user acts on a cycle that
// is delegated to someone else.
var ErrNotAssignedReviewer = errors.New("user is not the assigned reviewer of this cycle")

// WorkflowService sequences the ledger, rejection tracker and history
// archiver. It is the only component that finalizes cycles, so
// aggregate -> archive -> next-assignment-creation always happens as
// one transaction.
type WorkflowService struct {
	db *gorm.DB
}

// NewWorkflowService creates a WorkflowService on the given database.
func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{db: db}
}

// DelegateReviewInput opens a review chain (or the administrative
// shortcut cycle) for an application.
type DelegateReviewInput struct {
	ApplicationID         int
	ApplicationLocationID *int
	ActorID               int
	ActorRoleID           int
	Level                 string
	AssignedTo            int // 0 = resolve from the level's receiving role
	Sections              []SectionDefinition
}

// DelegateReview creates the first assignment of a review chain.
// Officers start the chain at officer_to_hod; administrators may
// additionally use the admin_to_applicant shortcut.
func (s *WorkflowService) DelegateReview(in DelegateReviewInput) (*models.Assignment, error) {
	if in.Level == "" {
		in.Level = models.LevelOfficerToHOD
	}
	switch in.Level {
	case models.LevelOfficerToHOD:
		if in.ActorRoleID != models.RoleOfficer && in.ActorRoleID != models.RoleAdmin {
			return nil, fmt.Errorf("only officers may open a review chain")
		}
	case models.LevelAdminToApplicant:
		if in.ActorRoleID != models.RoleAdmin {
			return nil, fmt.Errorf("only administrators may use the %s shortcut", models.LevelAdminToApplicant)
		}
	default:
		return nil, &InvalidTransitionError{
			Reason: fmt.Sprintf("delegation at level %s is driven by cycle completion, not direct requests", in.Level),
		}
	}

	var created *models.Assignment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		assignedTo := in.AssignedTo
		if assignedTo == 0 {
			resolved, err := ResolveNextAssignee(tx, in.Level, in.ApplicationID)
			if err != nil {
				return err
			}
			assignedTo = resolved
		}

		assignment, err := CreateAssignment(tx, CreateAssignmentInput{
			ApplicationID:         in.ApplicationID,
			ApplicationLocationID: in.ApplicationLocationID,
			AssignedBy:            in.ActorID,
			AssignedTo:            assignedTo,
			Level:                 in.Level,
			ProcessType:           models.ProcessTypeAccreditation,
			Sections:              in.Sections,
		})
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Application{}).
			Where("application_id = ?", in.ApplicationID).
			Updates(map[string]interface{}{
				"status":    models.ApplicationStatusUnderReview,
				"update_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update application status: %w", err)
		}

		created = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Review delegated: assignment %d (%s) for application %d",
		created.AssignmentID, created.Level, created.ApplicationID)
	return created, nil
}

// FieldDecisionInput is one entry of a decision batch.
type FieldDecisionInput struct {
	FieldID int    `json:"field_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

// SubmitFieldDecisions records a batch of per-field decisions from the
// assigned reviewer. The first decision against a fresh cycle begins it
// implicitly.
func (s *WorkflowService) SubmitFieldDecisions(assignmentID, reviewerID int, decisions []FieldDecisionInput) error {
	if len(decisions) == 0 {
		return fmt.Errorf("no decisions supplied")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		assignment, err := lockAssignment(tx, assignmentID)
		if err != nil {
			return err
		}
		if assignment.AssignedTo != reviewerID {
			return ErrNotAssignedReviewer
		}

		if err := BeginAssignment(tx, assignmentID); err != nil {
			return err
		}

		for _, d := range decisions {
			if err := RecordFieldDecision(tx, d.FieldID, FieldDecision{
				Status:  d.Status,
				Remarks: d.Remarks,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// SubmitReview closes the decision phase: every field must carry a
// terminal decision.
func (s *WorkflowService) SubmitReview(assignmentID, reviewerID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		assignment, err := lockAssignment(tx, assignmentID)
		if err != nil {
			return err
		}
		if assignment.AssignedTo != reviewerID {
			return ErrNotAssignedReviewer
		}
		return SubmitAssignment(tx, assignmentID)
	})
}

// CloseCycleResult reports the outcome of a finalize call.
type CloseCycleResult struct {
	Assignment     *models.Assignment
	FinalStatus    string
	NextAssignment *models.Assignment
	Rejection      *models.ApplicationRejection
}

// CloseCycle finalizes a submitted review: computes the aggregate
// status, records the rejection when fields require corrections,
// archives the cycle, detaches the superseded live rows and opens the
// follow-up assignment. Everything commits in one transaction; a
// concurrent second call fails with AssignmentAlreadyClosedError.
func (s *WorkflowService) CloseCycle(assignmentID, actorID int, reason string, supportingDocumentID *int) (*CloseCycleResult, error) {
	var result *CloseCycleResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		assignment, err := lockAssignment(tx, assignmentID)
		if err != nil {
			return err
		}
		if assignment.IsClosed() {
			return &AssignmentAlreadyClosedError{AssignmentID: assignmentID, Status: assignment.Status}
		}
		if assignment.Status != models.AssignmentStatusSubmitted {
			return &InvalidTransitionError{
				AssignmentID: assignmentID,
				Reason:       fmt.Sprintf("finalize requires a submitted review (status %s)", assignment.Status),
			}
		}

		sections, fields, err := loadAssignmentFields(tx, assignmentID)
		if err != nil {
			return err
		}

		aggregate := AggregateStatus(fields)
		if aggregate == models.AssignmentStatusInProgress {
			pending := make([]string, 0)
			for _, f := range fields {
				if !models.IsTerminalFieldStatus(f.Status) {
					pending = append(pending, f.FieldName)
				}
			}
			return &IncompleteReviewError{AssignmentID: assignmentID, PendingFields: pending}
		}

		var rejection *models.ApplicationRejection
		var unlockRequest *models.UnlockRequest
		if assignment.ProcessType == models.ProcessTypeUnlock {
			unlockRequest = &models.UnlockRequest{}
			if assignment.UnlockRequestID == nil {
				return fmt.Errorf("unlock assignment %d has no unlock request", assignmentID)
			}
			if err := tx.First(unlockRequest, *assignment.UnlockRequestID).Error; err != nil {
				return fmt.Errorf("failed to load unlock request: %w", err)
			}
		}

		// The rejection row (or the unlocked-section grant of an
		// approved unlock request) is created before archiving so the
		// snapshot captures the cycle that triggered it.
		switch {
		case aggregate == models.AssignmentStatusRejected && assignment.ProcessType == models.ProcessTypeAccreditation:
			unlocked, remarks := collectRejectedSections(sections, fields)
			rejectionReason := strings.TrimSpace(reason)
			if rejectionReason == "" {
				rejectionReason = remarks
			}
			rejection, err = RecordRejection(tx, RecordRejectionInput{
				AssignmentID:          assignmentID,
				ApplicationID:         assignment.ApplicationID,
				LocationApplicationID: assignment.ApplicationLocationID,
				RejectionBy:           actorID,
				Reason:                rejectionReason,
				UnlockedSections:      unlocked,
				SupportingDocumentID:  supportingDocumentID,
			})
			if err != nil {
				return err
			}
		case aggregate == models.AssignmentStatusCompleted && assignment.ProcessType == models.ProcessTypeUnlock:
			rejection, err = RecordRejection(tx, RecordRejectionInput{
				AssignmentID:          assignmentID,
				ApplicationID:         assignment.ApplicationID,
				LocationApplicationID: assignment.ApplicationLocationID,
				RejectionBy:           actorID,
				Reason:                "section unlocked on request: " + unlockRequest.Reason,
				UnlockedSections: models.UnlockedSectionList{
					{SectionType: unlockRequest.SectionType, ResourceID: unlockRequest.ResourceID},
				},
				SupportingDocumentID: unlockRequest.SupportingDocumentID,
			})
			if err != nil {
				return err
			}
		}

		// Archive-then-mutate: the snapshot is committed before any
		// live row changes, so the audit trail can never miss a cycle.
		archive, err := ArchiveAssignment(tx, assignmentID)
		if err != nil {
			return err
		}
		if err := detachArchivedRows(tx, archive); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Assignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(map[string]interface{}{
				"status":    aggregate,
				"closed_at": now,
				"update_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to close assignment %d: %w", assignmentID, err)
		}
		assignment.Status = aggregate
		assignment.ClosedAt = &now

		if assignment.Level == models.LevelHODToExpert && assignment.AssessmentID != nil {
			if err := completeAssessment(tx, *assignment.AssessmentID, aggregate, fields); err != nil {
				return err
			}
		}

		var next *models.Assignment
		switch {
		case assignment.ProcessType == models.ProcessTypeUnlock:
			err = s.decideUnlockRequest(tx, unlockRequest, aggregate, actorID)
		case aggregate == models.AssignmentStatusCompleted:
			next, err = s.advanceChain(tx, assignment, sections, fields, actorID)
		default:
			next, err = s.openCorrectionCycle(tx, assignment, rejection, sections, fields, actorID)
		}
		if err != nil {
			return err
		}

		result = &CloseCycleResult{
			Assignment:     assignment,
			FinalStatus:    aggregate,
			NextAssignment: next,
			Rejection:      rejection,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Cycle closed: assignment %d -> %s", assignmentID, result.FinalStatus)
	return result, nil
}

// collectRejectedSections returns the sections holding at least one
// corrections_required field, plus the concatenated reviewer remarks.
func collectRejectedSections(sections []models.AssignmentSection, fields []models.AssignmentSectionField) (models.UnlockedSectionList, string) {
	rejectedSectionIDs := make(map[int]bool)
	var remarks []string
	for _, f := range fields {
		if f.Status != models.FieldStatusCorrectionsRequired || f.AssignmentSectionID == nil {
			continue
		}
		rejectedSectionIDs[*f.AssignmentSectionID] = true
		if f.Remarks != nil && *f.Remarks != "" {
			remarks = append(remarks, fmt.Sprintf("%s: %s", f.FieldName, *f.Remarks))
		}
	}

	unlocked := make(models.UnlockedSectionList, 0, len(rejectedSectionIDs))
	for _, s := range sections {
		if rejectedSectionIDs[s.AssignmentSectionID] {
			unlocked = append(unlocked, models.UnlockedSection{
				SectionType: s.SectionType,
				ResourceID:  s.ResourceID,
			})
		}
	}
	return unlocked, strings.Join(remarks, "; ")
}

// detachArchivedRows clears the live ownership pointers of the archived
// sections and fields, re-pointing each field at its history section.
// Runs only after the archive succeeded.
func detachArchivedRows(tx *gorm.DB, archive *ArchiveResult) error {
	if !archive.Archived {
		return nil
	}
	now := time.Now()
	for sectionID, historyID := range archive.SectionHistoryIDs {
		if err := tx.Model(&models.AssignmentSectionField{}).
			Where("assignment_section_id = ?", sectionID).
			Updates(map[string]interface{}{
				"assignment_section_id":         nil,
				"assignment_section_history_id": historyID,
				"update_at":                     now,
			}).Error; err != nil {
			return fmt.Errorf("failed to detach fields of section %d: %w", sectionID, err)
		}
		if err := tx.Model(&models.AssignmentSection{}).
			Where("assignment_section_id = ?", sectionID).
			Updates(map[string]interface{}{
				"assignment_id": nil,
				"update_at":     now,
			}).Error; err != nil {
			return fmt.Errorf("failed to detach section %d: %w", sectionID, err)
		}
	}
	return nil
}

// advanceChain opens the next-level assignment after a completed cycle,
// or closes out the chain when the completed level was the terminal
// hand-back.
func (s *WorkflowService) advanceChain(tx *gorm.DB, closed *models.Assignment, sections []models.AssignmentSection, fields []models.AssignmentSectionField, actorID int) (*models.Assignment, error) {
	if IsApplicantLevel(closed.Level) {
		return s.closeApplicantCycle(tx, closed, sections, fields, actorID)
	}

	next, ok := NextLevel(closed.Level)
	if !ok {
		return nil, fmt.Errorf("level %s has no successor", closed.Level)
	}

	assignedTo, err := ResolveNextAssignee(tx, next, closed.ApplicationID)
	if err != nil {
		return nil, err
	}

	var assessmentID *int
	if next == models.LevelHODToExpert {
		assessment := models.Assessment{
			ApplicationID: closed.ApplicationID,
			ExpertID:      assignedTo,
			CreateAt:      time.Now(),
			UpdateAt:      time.Now(),
		}
		if err := tx.Create(&assessment).Error; err != nil {
			return nil, fmt.Errorf("failed to open assessment: %w", err)
		}
		assessmentID = &assessment.AssessmentID
	}

	parentID := closed.AssignmentID
	return CreateAssignment(tx, CreateAssignmentInput{
		ApplicationID:         closed.ApplicationID,
		ApplicationLocationID: closed.ApplicationLocationID,
		AssignedBy:            actorID,
		AssignedTo:            assignedTo,
		Level:                 next,
		ProcessType:           models.ProcessTypeAccreditation,
		ParentAssignmentID:    &parentID,
		AssessmentID:          assessmentID,
		Sections:              carryForwardSections(sections, fields),
	})
}

// closeApplicantCycle handles a completed applicant-facing cycle. A
// correction cycle (parent rejected) re-enters review at the level that
// rejected, presenting only the resubmitted sections; an accepted-chain
// hand-back accredits the application.
func (s *WorkflowService) closeApplicantCycle(tx *gorm.DB, closed *models.Assignment, sections []models.AssignmentSection, fields []models.AssignmentSectionField, actorID int) (*models.Assignment, error) {
	var parent *models.Assignment
	if closed.ParentAssignmentID != nil {
		parent = &models.Assignment{}
		if err := tx.First(parent, *closed.ParentAssignmentID).Error; err != nil {
			return nil, fmt.Errorf("failed to load parent assignment: %w", err)
		}
	}

	if parent == nil || parent.Status != models.AssignmentStatusRejected {
		// Terminal hand-back of an accepted chain.
		if err := tx.Model(&models.Application{}).
			Where("application_id = ?", closed.ApplicationID).
			Updates(map[string]interface{}{
				"status":    models.ApplicationStatusAccredited,
				"update_at": time.Now(),
			}).Error; err != nil {
			return nil, fmt.Errorf("failed to accredit application: %w", err)
		}
		return nil, nil
	}

	resubmissions, err := unconsumedResubmissions(tx, closed.ApplicationID, closed.ApplicationLocationID)
	if err != nil {
		return nil, err
	}

	// Only resubmitted sections are re-presented; when the applicant
	// corrected without flagging individual sections, fall back to the
	// whole corrected set.
	sectionDefs := resubmittedSectionDefs(resubmissions, sections, fields)
	if len(sectionDefs) == 0 {
		sectionDefs = carryForwardSections(sections, fields)
	}

	assignedTo, err := ResolveNextAssignee(tx, parent.Level, closed.ApplicationID)
	if err != nil {
		return nil, err
	}

	parentID := closed.AssignmentID
	next, err := CreateAssignment(tx, CreateAssignmentInput{
		ApplicationID:         closed.ApplicationID,
		ApplicationLocationID: closed.ApplicationLocationID,
		AssignedBy:            actorID,
		AssignedTo:            assignedTo,
		Level:                 parent.Level,
		ProcessType:           models.ProcessTypeAccreditation,
		ParentAssignmentID:    &parentID,
		Sections:              sectionDefs,
	})
	if err != nil {
		return nil, err
	}

	if err := consumeResubmissions(tx, resubmissions, next.AssignmentID); err != nil {
		return nil, fmt.Errorf("failed to consume resubmissions: %w", err)
	}

	// The rejection that opened this correction cycle is now resolved.
	if err := tx.Model(&models.ApplicationRejection{}).
		Where("assignment_id = ? AND resolved_at IS NULL", parent.AssignmentID).
		Update("resolved_at", time.Now()).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve rejection: %w", err)
	}

	if err := tx.Model(&models.Application{}).
		Where("application_id = ?", closed.ApplicationID).
		Updates(map[string]interface{}{
			"status":    models.ApplicationStatusUnderReview,
			"update_at": time.Now(),
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	return next, nil
}

// openCorrectionCycle creates the reverse-direction assignment after a
// rejection so the applicant can correct the unlocked sections. The
// sections and fields are the just-closed cycle's rows, loaded before
// the archive detached them.
func (s *WorkflowService) openCorrectionCycle(tx *gorm.DB, closed *models.Assignment, rejection *models.ApplicationRejection, sections []models.AssignmentSection, fields []models.AssignmentSectionField, actorID int) (*models.Assignment, error) {
	assignedTo, err := ResolveNextAssignee(tx, models.LevelHODToApplicant, closed.ApplicationID)
	if err != nil {
		return nil, err
	}

	all := carryForwardSections(sections, fields)
	defs := make([]SectionDefinition, 0, len(all))
	for _, def := range all {
		if rejection.UnlockedSections.Contains(def.SectionType, def.ResourceID) {
			defs = append(defs, def)
		}
	}

	parentID := closed.AssignmentID
	next, err := CreateAssignment(tx, CreateAssignmentInput{
		ApplicationID:         closed.ApplicationID,
		ApplicationLocationID: closed.ApplicationLocationID,
		AssignedBy:            actorID,
		AssignedTo:            assignedTo,
		Level:                 models.LevelHODToApplicant,
		ProcessType:           models.ProcessTypeAccreditation,
		ParentAssignmentID:    &parentID,
		Sections:              defs,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&models.Application{}).
		Where("application_id = ?", closed.ApplicationID).
		Updates(map[string]interface{}{
			"status":    models.ApplicationStatusCorrections,
			"update_at": time.Now(),
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	return next, nil
}

// completeAssessment records the expert's verdict when their review
// cycle closes, summarizing the field remarks.
func completeAssessment(tx *gorm.DB, assessmentID int, aggregate string, fields []models.AssignmentSectionField) error {
	verdict := models.AssessmentVerdictRecommended
	if aggregate == models.AssignmentStatusRejected {
		verdict = models.AssessmentVerdictNotRecommended
	}

	var remarks []string
	for _, f := range fields {
		if f.Remarks != nil && *f.Remarks != "" {
			remarks = append(remarks, fmt.Sprintf("%s: %s", f.FieldName, *f.Remarks))
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"verdict":      verdict,
		"completed_at": now,
		"update_at":    now,
	}
	if len(remarks) > 0 {
		updates["summary"] = strings.Join(remarks, "; ")
	}
	return tx.Model(&models.Assessment{}).
		Where("assessment_id = ?", assessmentID).
		Updates(updates).Error
}

// decideUnlockRequest closes out an unlock-review cycle.
func (s *WorkflowService) decideUnlockRequest(tx *gorm.DB, request *models.UnlockRequest, aggregate string, actorID int) error {
	status := models.UnlockRequestStatusApproved
	if aggregate == models.AssignmentStatusRejected {
		status = models.UnlockRequestStatusRejected
	}
	now := time.Now()
	return tx.Model(&models.UnlockRequest{}).
		Where("unlock_request_id = ?", request.UnlockRequestID).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": actorID,
			"decided_at": now,
			"update_at":  now,
		}).Error
}

// carryForwardSections rebuilds the section definitions of a cycle so
// the next cycle reviews the same material with fields reset to
// pending.
func carryForwardSections(sections []models.AssignmentSection, fields []models.AssignmentSectionField) []SectionDefinition {
	fieldsBySection := make(map[int][]string)
	for _, f := range fields {
		if f.AssignmentSectionID == nil {
			continue
		}
		fieldsBySection[*f.AssignmentSectionID] = append(fieldsBySection[*f.AssignmentSectionID], f.FieldName)
	}

	defs := make([]SectionDefinition, 0, len(sections))
	for _, s := range sections {
		defs = append(defs, SectionDefinition{
			SectionType:  s.SectionType,
			ResourceID:   s.ResourceID,
			ResourceType: s.ResourceType,
			Fields:       fieldsBySection[s.AssignmentSectionID],
		})
	}
	return defs
}

// resubmittedSectionDefs filters a correction cycle's sections down to
// the ones the applicant resubmitted.
func resubmittedSectionDefs(resubmissions []models.ResubmittedSection, sections []models.AssignmentSection, fields []models.AssignmentSectionField) []SectionDefinition {
	resubmitted := make(map[string]bool, len(resubmissions))
	for _, r := range resubmissions {
		resubmitted[fmt.Sprintf("%s|%d", r.SectionType, r.ResourceID)] = true
	}

	all := carryForwardSections(sections, fields)
	defs := make([]SectionDefinition, 0, len(all))
	for _, def := range all {
		if resubmitted[fmt.Sprintf("%s|%d", def.SectionType, def.ResourceID)] {
			defs = append(defs, def)
		}
	}
	return defs
}

// RequestUnlockInput asks to reopen a locked section outside a
// rejection cycle.
type RequestUnlockInput struct {
	ApplicationID        int
	RequestedBy          int
	SectionType          string
	ResourceID           int
	ResourceType         string
	Reason               string
	SupportingDocumentID *int
}

// RequestUnlock records the unlock request and opens its review cycle
// (process_type=unlock) through the same state machine.
func (s *WorkflowService) RequestUnlock(in RequestUnlockInput) (*models.UnlockRequest, *models.Assignment, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, nil, fmt.Errorf("unlock requests need a reason")
	}
	if !KnownResourceType(in.ResourceType) {
		return nil, nil, fmt.Errorf("unregistered resource type %q", in.ResourceType)
	}

	var request *models.UnlockRequest
	var assignment *models.Assignment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		request = &models.UnlockRequest{
			ApplicationID:        in.ApplicationID,
			RequestedBy:          in.RequestedBy,
			SectionType:          in.SectionType,
			ResourceID:           in.ResourceID,
			Reason:               in.Reason,
			SupportingDocumentID: in.SupportingDocumentID,
			Status:               models.UnlockRequestStatusPending,
			CreateAt:             now,
			UpdateAt:             now,
		}
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create unlock request: %w", err)
		}

		assignedTo, err := ResolveNextAssignee(tx, models.LevelOfficerToHOD, in.ApplicationID)
		if err != nil {
			return err
		}

		assignment, err = CreateAssignment(tx, CreateAssignmentInput{
			ApplicationID:   in.ApplicationID,
			AssignedBy:      in.RequestedBy,
			AssignedTo:      assignedTo,
			Level:           models.LevelOfficerToHOD,
			ProcessType:     models.ProcessTypeUnlock,
			UnlockRequestID: &request.UnlockRequestID,
			Sections: []SectionDefinition{{
				SectionType:  in.SectionType,
				ResourceID:   in.ResourceID,
				ResourceType: in.ResourceType,
				Fields:       []string{"unlock_justification"},
			}},
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return request, assignment, nil
}

// RecordResubmission wraps the rejection tracker in its own
// transaction for the external form-editing collaborator.
func (s *WorkflowService) RecordResubmission(in RecordResubmissionInput) (*models.ResubmittedSection, error) {
	var created *models.ResubmittedSection
	err := s.db.Transaction(func(tx *gorm.DB) error {
		resubmission, err := RecordResubmission(tx, in)
		if err != nil {
			return err
		}
		created = resubmission
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
