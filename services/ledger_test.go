package services

import (
	"testing"
	"warehouse-accreditation-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldStatuses(statuses ...string) []models.AssignmentSectionField {
	fields := make([]models.AssignmentSectionField, 0, len(statuses))
	for _, status := range statuses {
		fields = append(fields, models.AssignmentSectionField{Status: status})
	}
	return fields
}

func TestAggregateStatus(t *testing.T) {
	cases := []struct {
		name     string
		fields   []models.AssignmentSectionField
		expected string
	}{
		{
			name:     "no fields stays in progress",
			fields:   nil,
			expected: models.AssignmentStatusInProgress,
		},
		{
			name:     "pending field keeps the cycle open",
			fields:   fieldStatuses(models.FieldStatusApproved, models.FieldStatusPending),
			expected: models.AssignmentStatusInProgress,
		},
		{
			name:     "in process field keeps the cycle open",
			fields:   fieldStatuses(models.FieldStatusCompleted, models.FieldStatusInProcess),
			expected: models.AssignmentStatusInProgress,
		},
		{
			name:     "all approved completes",
			fields:   fieldStatuses(models.FieldStatusApproved, models.FieldStatusApproved),
			expected: models.AssignmentStatusCompleted,
		},
		{
			name:     "completed and approved mix completes",
			fields:   fieldStatuses(models.FieldStatusCompleted, models.FieldStatusApproved),
			expected: models.AssignmentStatusCompleted,
		},
		{
			name:     "single corrections field rejects the cycle",
			fields:   fieldStatuses(models.FieldStatusApproved, models.FieldStatusCorrectionsRequired, models.FieldStatusApproved),
			expected: models.AssignmentStatusRejected,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AggregateStatus(tc.fields))
			// Pure function: same input, same answer.
			assert.Equal(t, tc.expected, AggregateStatus(tc.fields))
		})
	}
}

func TestInitializeSections_DuplicateInBatch(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	definitions := []SectionDefinition{
		{SectionType: "bank_details", ResourceID: 1, ResourceType: "bank_details", Fields: []string{"iban"}},
		{SectionType: "bank_details", ResourceID: 1, ResourceType: "bank_details", Fields: []string{"swift"}},
	}

	_, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      definitions,
	})
	var duplicate *DuplicateSectionError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, "bank_details", duplicate.SectionType)
	assert.Equal(t, 1, duplicate.ResourceID)

	// The whole transaction rolled back; nothing was persisted.
	assert.EqualValues(t, 0, countRows(t, db, &models.Assignment{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.AssignmentSection{}))
}

func TestInitializeSections_DuplicateAgainstExisting(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)

	assignment := models.Assignment{
		ApplicationID: application.ApplicationID,
		AssignedBy:    actors.Officer,
		AssignedTo:    actors.HOD,
		Level:         models.LevelOfficerToHOD,
		ProcessType:   models.ProcessTypeAccreditation,
		Status:        models.AssignmentStatusAssigned,
	}
	require.NoError(t, db.Create(&assignment).Error)

	require.NoError(t, InitializeSections(db, assignment.AssignmentID, bankSections()))
	err := InitializeSections(db, assignment.AssignmentID, bankSections())
	var duplicate *DuplicateSectionError
	require.ErrorAs(t, err, &duplicate)
}

func TestRecordFieldDecision_RemarksRequiredForCorrections(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	a1, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      bankSections(),
	})
	require.NoError(t, err)

	fields := fieldsOf(t, db, a1.AssignmentID)
	err = svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{{
		FieldID: fields["swift"].AssignmentSectionFieldID,
		Status:  models.FieldStatusCorrectionsRequired,
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remarks")
}

func TestRecordFieldDecision_DecidedFieldDoesNotRegress(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	a1, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      bankSections(),
	})
	require.NoError(t, err)

	fields := fieldsOf(t, db, a1.AssignmentID)
	ibanID := fields["iban"].AssignmentSectionFieldID
	require.NoError(t, svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{{
		FieldID: ibanID,
		Status:  models.FieldStatusApproved,
	}}))

	// Pending is not a decision at all.
	err = svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{{
		FieldID: ibanID,
		Status:  models.FieldStatusPending,
	}})
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)

	// An approved field cannot be demoted inside the same cycle.
	err = svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{{
		FieldID: ibanID,
		Status:  models.FieldStatusCorrectionsRequired,
		Remarks: "checksum mismatch",
	}})
	require.ErrorAs(t, err, &invalid)

	// Flipping between the two positive decisions is allowed.
	require.NoError(t, svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{{
		FieldID: ibanID,
		Status:  models.FieldStatusCompleted,
	}}))
}

func TestRecordFieldDecision_RejectsClosedAndArchivedRows(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	a1, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      bankSections(),
	})
	require.NoError(t, err)

	fields := fieldsOf(t, db, a1.AssignmentID)
	ibanID := fields["iban"].AssignmentSectionFieldID
	swiftID := fields["swift"].AssignmentSectionFieldID
	decideAll(t, svc, db, a1.AssignmentID, actors.HOD, models.FieldStatusApproved, "")
	require.NoError(t, svc.SubmitReview(a1.AssignmentID, actors.HOD))
	_, err = svc.CloseCycle(a1.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)

	// The archived field rows are read-only from here on.
	for _, id := range []int{ibanID, swiftID} {
		err = RecordFieldDecision(db, id, FieldDecision{Status: models.FieldStatusCorrectionsRequired, Remarks: "late"})
		require.Error(t, err)
	}
}

func TestBeginAssignment_Idempotent(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	a1, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      bankSections(),
	})
	require.NoError(t, err)

	require.NoError(t, BeginAssignment(db, a1.AssignmentID))
	require.NoError(t, BeginAssignment(db, a1.AssignmentID))

	var reloaded models.Assignment
	require.NoError(t, db.First(&reloaded, a1.AssignmentID).Error)
	assert.Equal(t, models.AssignmentStatusInProgress, reloaded.Status)
}

func TestBeginAssignment_RejectsClosedCycle(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	a1, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      bankSections(),
	})
	require.NoError(t, err)

	decideAll(t, svc, db, a1.AssignmentID, actors.HOD, models.FieldStatusApproved, "")
	require.NoError(t, svc.SubmitReview(a1.AssignmentID, actors.HOD))
	_, err = svc.CloseCycle(a1.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)

	err = BeginAssignment(db, a1.AssignmentID)
	var closed *AssignmentAlreadyClosedError
	require.ErrorAs(t, err, &closed)
}
