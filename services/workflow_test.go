package services

import (
	"testing"
	"warehouse-accreditation-api/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB creates an in-memory SQLite DB with the workflow tables
// migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{}, &models.User{},
		&models.Application{}, &models.ApplicationLocation{},
		&models.Assignment{}, &models.AssignmentSection{}, &models.AssignmentSectionField{},
		&models.ApplicationRejection{}, &models.ResubmittedSection{},
		&models.AssignmentHistory{}, &models.AssignmentSectionHistory{},
		&models.AssignmentSectionFieldHistory{}, &models.ApplicationRejectionHistory{},
		&models.ResubmittedSectionHistory{},
		&models.UnlockRequest{}, &models.Assessment{}, &models.FileUpload{},
	))
	return db
}

type testActors struct {
	Applicant int
	Officer   int
	HOD       int
	Expert    int
	Admin     int
}

func seedActors(t *testing.T, db *gorm.DB) testActors {
	t.Helper()
	mk := func(fname, email string, roleID int) int {
		user := models.User{
			UserFname: fname,
			UserLname: "Test",
			Email:     email,
			Password:  "hashed",
			RoleID:    roleID,
			IsActive:  true,
		}
		require.NoError(t, db.Create(&user).Error)
		return user.UserID
	}
	return testActors{
		Applicant: mk("Applicant", "applicant@example.com", models.RoleApplicant),
		Officer:   mk("Officer", "officer@example.com", models.RoleOfficer),
		HOD:       mk("Head", "hod@example.com", models.RoleHeadOfDepartment),
		Expert:    mk("Expert", "expert@example.com", models.RoleExpert),
		Admin:     mk("Admin", "admin@example.com", models.RoleAdmin),
	}
}

func seedApplication(t *testing.T, db *gorm.DB, ownerID int) *models.Application {
	t.Helper()
	application := models.Application{
		ApplicationNumber: "APP-0001",
		UserID:            ownerID,
		OperatorName:      "Acme Warehousing",
		Status:            models.ApplicationStatusDraft,
	}
	require.NoError(t, db.Create(&application).Error)
	return &application
}

func bankSections() []SectionDefinition {
	return []SectionDefinition{{
		SectionType:  "bank_details",
		ResourceID:   1,
		ResourceType: "bank_details",
		Fields:       []string{"iban", "swift"},
	}}
}

// fieldsOf returns the live fields of an assignment keyed by name.
func fieldsOf(t *testing.T, db *gorm.DB, assignmentID int) map[string]models.AssignmentSectionField {
	t.Helper()
	sections, fields, err := loadAssignmentFields(db, assignmentID)
	require.NoError(t, err)
	require.NotEmpty(t, sections)
	byName := make(map[string]models.AssignmentSectionField, len(fields))
	for _, f := range fields {
		byName[f.FieldName] = f
	}
	return byName
}

// decideAll records the same decision for every field of an assignment.
func decideAll(t *testing.T, svc *WorkflowService, db *gorm.DB, assignmentID, reviewerID int, status, remarks string) {
	t.Helper()
	fields := fieldsOf(t, db, assignmentID)
	decisions := make([]FieldDecisionInput, 0, len(fields))
	for _, f := range fields {
		decisions = append(decisions, FieldDecisionInput{
			FieldID: f.AssignmentSectionFieldID,
			Status:  status,
			Remarks: remarks,
		})
	}
	require.NoError(t, svc.SubmitFieldDecisions(assignmentID, reviewerID, decisions))
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestDelegateReview_OpensAssignedCycle(t *testing.T) {
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

	assert.Equal(t, models.AssignmentStatusAssigned, a1.Status)
	assert.Equal(t, models.LevelOfficerToHOD, a1.Level)
	assert.Equal(t, actors.HOD, a1.AssignedTo)
	assert.NotEmpty(t, a1.AssignmentNumber)

	fields := fieldsOf(t, db, a1.AssignmentID)
	require.Len(t, fields, 2)
	assert.Equal(t, models.FieldStatusPending, fields["iban"].Status)
	assert.Equal(t, models.FieldStatusPending, fields["swift"].Status)

	var updated models.Application
	require.NoError(t, db.First(&updated, application.ApplicationID).Error)
	assert.Equal(t, models.ApplicationStatusUnderReview, updated.Status)
}

func TestDelegateReview_RejectsSecondLiveCycleAtSameLevel(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	_, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      bankSections(),
	})
	require.NoError(t, err)

	_, err = svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      bankSections(),
	})
	var exists *ActiveAssignmentExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, application.ApplicationID, exists.ApplicationID)
	assert.Equal(t, models.LevelOfficerToHOD, exists.Level)
}

func TestDelegateReview_RejectsLevelSkip(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	_, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Level:         models.LevelHODToExpert,
		Sections:      bankSections(),
	})
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestSubmitFieldDecisions_WrongReviewer(t *testing.T) {
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
	err = svc.SubmitFieldDecisions(a1.AssignmentID, actors.Expert, []FieldDecisionInput{{
		FieldID: fields["iban"].AssignmentSectionFieldID,
		Status:  models.FieldStatusApproved,
	}})
	require.ErrorIs(t, err, ErrNotAssignedReviewer)
}

func TestSubmitReview_IncompleteFieldsRejected(t *testing.T) {
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
	require.NoError(t, svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{{
		FieldID: fields["iban"].AssignmentSectionFieldID,
		Status:  models.FieldStatusApproved,
	}}))

	err = svc.SubmitReview(a1.AssignmentID, actors.HOD)
	var incomplete *IncompleteReviewError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"swift"}, incomplete.PendingFields)
}

// TestRejectionScenario runs the bank-details scenario end to end: one
// approved and one rejected field rejects the whole cycle, unlocks the
// section, opens the correction assignment and archives exactly one
// snapshot of every live row.
func TestRejectionScenario(t *testing.T) {
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
	require.NoError(t, svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{
		{FieldID: fields["iban"].AssignmentSectionFieldID, Status: models.FieldStatusApproved},
		{FieldID: fields["swift"].AssignmentSectionFieldID, Status: models.FieldStatusCorrectionsRequired, Remarks: "wrong format"},
	}))
	require.NoError(t, svc.SubmitReview(a1.AssignmentID, actors.HOD))

	result, err := svc.CloseCycle(a1.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusRejected, result.FinalStatus)

	// Rejection contract: exactly the bank_details section is unlocked.
	require.NotNil(t, result.Rejection)
	require.Len(t, result.Rejection.UnlockedSections, 1)
	assert.Equal(t, "bank_details", result.Rejection.UnlockedSections[0].SectionType)
	assert.Equal(t, 1, result.Rejection.UnlockedSections[0].ResourceID)
	assert.Contains(t, result.Rejection.RejectionReason, "wrong format")
	assert.Equal(t, actors.HOD, result.Rejection.RejectionBy)

	// Correction assignment points back at the rejected cycle.
	require.NotNil(t, result.NextAssignment)
	assert.Equal(t, models.LevelHODToApplicant, result.NextAssignment.Level)
	require.NotNil(t, result.NextAssignment.ParentAssignmentID)
	assert.Equal(t, a1.AssignmentID, *result.NextAssignment.ParentAssignmentID)
	assert.Equal(t, actors.Applicant, result.NextAssignment.AssignedTo)

	// Exactly one history row per live row.
	assert.EqualValues(t, 1, countRows(t, db, &models.AssignmentHistory{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.AssignmentSectionHistory{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.AssignmentSectionFieldHistory{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.ApplicationRejectionHistory{}))

	var updated models.Application
	require.NoError(t, db.First(&updated, application.ApplicationID).Error)
	assert.Equal(t, models.ApplicationStatusCorrections, updated.Status)
}

// TestHistoryRoundTrip verifies the snapshot reproduces the exact
// pre-archive field statuses and remarks.
func TestHistoryRoundTrip(t *testing.T) {
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
	require.NoError(t, svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{
		{FieldID: fields["iban"].AssignmentSectionFieldID, Status: models.FieldStatusApproved},
		{FieldID: fields["swift"].AssignmentSectionFieldID, Status: models.FieldStatusCorrectionsRequired, Remarks: "wrong format"},
	}))
	require.NoError(t, svc.SubmitReview(a1.AssignmentID, actors.HOD))
	_, err = svc.CloseCycle(a1.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)

	cycles, err := LoadArchivedCycles(db, application.ApplicationID)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	require.Len(t, cycles[0].Sections, 1)

	archived := make(map[string]models.AssignmentSectionFieldHistory)
	for _, f := range cycles[0].Sections[0].Fields {
		archived[f.FieldName] = f
	}
	require.Len(t, archived, 2)
	assert.Equal(t, models.FieldStatusApproved, archived["iban"].Status)
	assert.Nil(t, archived["iban"].Remarks)
	assert.Equal(t, models.FieldStatusCorrectionsRequired, archived["swift"].Status)
	require.NotNil(t, archived["swift"].Remarks)
	assert.Equal(t, "wrong format", *archived["swift"].Remarks)
}

func TestResubmission_OnlyUnlockedSections(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	a1, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections: append(bankSections(), SectionDefinition{
			SectionType:  "company_information",
			ResourceID:   2,
			ResourceType: "company_information",
			Fields:       []string{"registration_number"},
		}),
	})
	require.NoError(t, err)

	fields := fieldsOf(t, db, a1.AssignmentID)
	require.NoError(t, svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{
		{FieldID: fields["iban"].AssignmentSectionFieldID, Status: models.FieldStatusApproved},
		{FieldID: fields["swift"].AssignmentSectionFieldID, Status: models.FieldStatusCorrectionsRequired, Remarks: "wrong format"},
		{FieldID: fields["registration_number"].AssignmentSectionFieldID, Status: models.FieldStatusApproved},
	}))
	require.NoError(t, svc.SubmitReview(a1.AssignmentID, actors.HOD))

	var bankSectionID int
	require.NoError(t, db.Model(&models.AssignmentSection{}).
		Where("assignment_id = ? AND section_type = ?", a1.AssignmentID, "bank_details").
		Pluck("assignment_section_id", &bankSectionID).Error)

	_, err = svc.CloseCycle(a1.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)

	// The unlocked section can be resubmitted.
	resubmission, err := svc.RecordResubmission(RecordResubmissionInput{
		ApplicationID:       application.ApplicationID,
		AssignmentSectionID: bankSectionID,
		SectionType:         "bank_details",
		ResourceID:          1,
	})
	require.NoError(t, err)
	assert.NotZero(t, resubmission.ResubmittedSectionID)

	// A section the rejection did not unlock cannot.
	_, err = svc.RecordResubmission(RecordResubmissionInput{
		ApplicationID:       application.ApplicationID,
		AssignmentSectionID: bankSectionID,
		SectionType:         "company_information",
		ResourceID:          2,
	})
	var notUnlocked *SectionNotUnlockedError
	require.ErrorAs(t, err, &notUnlocked)
	assert.Equal(t, "company_information", notUnlocked.SectionType)
}

// TestCorrectionCycleReentersReview drives a rejected cycle through
// correction and verifies the re-review presents only the resubmitted
// section at the level that rejected.
func TestCorrectionCycleReentersReview(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	a1, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections: append(bankSections(), SectionDefinition{
			SectionType:  "company_information",
			ResourceID:   2,
			ResourceType: "company_information",
			Fields:       []string{"registration_number"},
		}),
	})
	require.NoError(t, err)

	fields := fieldsOf(t, db, a1.AssignmentID)
	require.NoError(t, svc.SubmitFieldDecisions(a1.AssignmentID, actors.HOD, []FieldDecisionInput{
		{FieldID: fields["iban"].AssignmentSectionFieldID, Status: models.FieldStatusApproved},
		{FieldID: fields["swift"].AssignmentSectionFieldID, Status: models.FieldStatusCorrectionsRequired, Remarks: "wrong format"},
		{FieldID: fields["registration_number"].AssignmentSectionFieldID, Status: models.FieldStatusApproved},
	}))
	require.NoError(t, svc.SubmitReview(a1.AssignmentID, actors.HOD))
	closed, err := svc.CloseCycle(a1.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)

	correction := closed.NextAssignment
	require.NotNil(t, correction)

	var bankSectionID int
	require.NoError(t, db.Model(&models.AssignmentSection{}).
		Where("assignment_id = ? AND section_type = ?", correction.AssignmentID, "bank_details").
		Pluck("assignment_section_id", &bankSectionID).Error)

	_, err = svc.RecordResubmission(RecordResubmissionInput{
		ApplicationID:       application.ApplicationID,
		AssignmentSectionID: bankSectionID,
		SectionType:         "bank_details",
		ResourceID:          1,
	})
	require.NoError(t, err)

	decideAll(t, svc, db, correction.AssignmentID, actors.Applicant, models.FieldStatusCompleted, "")
	require.NoError(t, svc.SubmitReview(correction.AssignmentID, actors.Applicant))
	reentered, err := svc.CloseCycle(correction.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)

	// Re-review runs at the level that rejected, covering only the
	// resubmitted section.
	review := reentered.NextAssignment
	require.NotNil(t, review)
	assert.Equal(t, models.LevelOfficerToHOD, review.Level)
	assert.Equal(t, actors.HOD, review.AssignedTo)

	var sections []models.AssignmentSection
	require.NoError(t, db.Where("assignment_id = ?", review.AssignmentID).Find(&sections).Error)
	require.Len(t, sections, 1)
	assert.Equal(t, "bank_details", sections[0].SectionType)

	// Resubmission is consumed (stamped, not deleted) and the rejection
	// resolved.
	var resubmission models.ResubmittedSection
	require.NoError(t, db.First(&resubmission).Error)
	require.NotNil(t, resubmission.ConsumedByAssignmentID)
	assert.Equal(t, review.AssignmentID, *resubmission.ConsumedByAssignmentID)

	var rejection models.ApplicationRejection
	require.NoError(t, db.Where("assignment_id = ?", a1.AssignmentID).First(&rejection).Error)
	assert.NotNil(t, rejection.ResolvedAt)
}

// Covers the sequential double-finalize path only. Truly concurrent
// finalize calls are serialized by the SELECT ... FOR UPDATE row lock
// in lockAssignment, which SQLite does not execute; that path needs a
// MySQL-backed run.
func TestCloseCycle_SecondCallFailsClosed(t *testing.T) {
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

	_, err = svc.CloseCycle(a1.AssignmentID, actors.HOD, "", nil)
	var closed *AssignmentAlreadyClosedError
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, a1.AssignmentID, closed.AssignmentID)

	// No duplicate audit rows.
	assert.EqualValues(t, 1, countRows(t, db, &models.AssignmentHistory{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.AssignmentSectionHistory{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.AssignmentSectionFieldHistory{}))
}

func TestArchiveAssignment_Idempotent(t *testing.T) {
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

	first, err := ArchiveAssignment(db, a1.AssignmentID)
	require.NoError(t, err)
	assert.True(t, first.Archived)

	second, err := ArchiveAssignment(db, a1.AssignmentID)
	require.NoError(t, err)
	assert.False(t, second.Archived)
	assert.Equal(t, first.AssignmentHistoryID, second.AssignmentHistoryID)

	assert.EqualValues(t, 1, countRows(t, db, &models.AssignmentHistory{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.AssignmentSectionHistory{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.AssignmentSectionFieldHistory{}))
}

// TestFullAcceptanceChain walks an application through every level of
// the delegation path to accreditation.
func TestFullAcceptanceChain(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	current, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Sections:      bankSections(),
	})
	require.NoError(t, err)

	expectedChain := []struct {
		level      string
		assignedTo int
	}{
		{models.LevelOfficerToHOD, actors.HOD},
		{models.LevelHODToExpert, actors.Expert},
		{models.LevelExpertToHOD, actors.HOD},
		{models.LevelHODToApplicant, actors.Applicant},
	}

	for i, expected := range expectedChain {
		require.Equal(t, expected.level, current.Level, "link %d", i)
		require.Equal(t, expected.assignedTo, current.AssignedTo, "link %d", i)

		status := models.FieldStatusApproved
		if expected.level == models.LevelHODToApplicant {
			status = models.FieldStatusCompleted
		}
		decideAll(t, svc, db, current.AssignmentID, current.AssignedTo, status, "")
		require.NoError(t, svc.SubmitReview(current.AssignmentID, current.AssignedTo))

		result, err := svc.CloseCycle(current.AssignmentID, current.AssignedTo, "", nil)
		require.NoError(t, err)
		require.Equal(t, models.AssignmentStatusCompleted, result.FinalStatus)

		if i < len(expectedChain)-1 {
			require.NotNil(t, result.NextAssignment, "link %d should delegate onward", i)
			current = result.NextAssignment
		} else {
			require.Nil(t, result.NextAssignment, "terminal hand-back should not delegate")
		}
	}

	// The expert cycle left a completed assessment behind.
	var assessment models.Assessment
	require.NoError(t, db.Where("application_id = ?", application.ApplicationID).First(&assessment).Error)
	assert.Equal(t, actors.Expert, assessment.ExpertID)
	require.NotNil(t, assessment.Verdict)
	assert.Equal(t, models.AssessmentVerdictRecommended, *assessment.Verdict)
	assert.NotNil(t, assessment.CompletedAt)

	var accredited models.Application
	require.NoError(t, db.First(&accredited, application.ApplicationID).Error)
	assert.Equal(t, models.ApplicationStatusAccredited, accredited.Status)

	// One archived cycle per link.
	assert.EqualValues(t, len(expectedChain), countRows(t, db, &models.AssignmentHistory{}))

	// The chain walk reconstructs the delegation path oldest-first.
	var last models.Assignment
	require.NoError(t, db.Order("assignment_id DESC").First(&last).Error)
	chain, err := AssignmentChain(db, last.AssignmentID)
	require.NoError(t, err)
	require.Len(t, chain, len(expectedChain))
	for i, expected := range expectedChain {
		assert.Equal(t, expected.level, chain[i].Level)
	}
}

func TestUnlockRequestFlow(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	request, assignment, err := svc.RequestUnlock(RequestUnlockInput{
		ApplicationID: application.ApplicationID,
		RequestedBy:   actors.Applicant,
		SectionType:   "bank_details",
		ResourceID:    1,
		ResourceType:  "bank_details",
		Reason:        "bank account changed",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UnlockRequestStatusPending, request.Status)
	assert.Equal(t, models.ProcessTypeUnlock, assignment.ProcessType)
	require.NotNil(t, assignment.UnlockRequestID)
	assert.Equal(t, request.UnlockRequestID, *assignment.UnlockRequestID)
	assert.Equal(t, actors.HOD, assignment.AssignedTo)

	var unlockSectionID int
	require.NoError(t, db.Model(&models.AssignmentSection{}).
		Where("assignment_id = ?", assignment.AssignmentID).
		Pluck("assignment_section_id", &unlockSectionID).Error)

	decideAll(t, svc, db, assignment.AssignmentID, actors.HOD, models.FieldStatusApproved, "")
	require.NoError(t, svc.SubmitReview(assignment.AssignmentID, actors.HOD))
	result, err := svc.CloseCycle(assignment.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusCompleted, result.FinalStatus)
	assert.Nil(t, result.NextAssignment)

	var decided models.UnlockRequest
	require.NoError(t, db.First(&decided, request.UnlockRequestID).Error)
	assert.Equal(t, models.UnlockRequestStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, actors.HOD, *decided.DecidedBy)

	// The approval grants the unlock contract, so the applicant can
	// resubmit the section.
	_, err = svc.RecordResubmission(RecordResubmissionInput{
		ApplicationID:       application.ApplicationID,
		AssignmentSectionID: unlockSectionID,
		SectionType:         "bank_details",
		ResourceID:          1,
	})
	require.NoError(t, err)
}

func TestUnlockRequest_RejectedClosesRequest(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	request, assignment, err := svc.RequestUnlock(RequestUnlockInput{
		ApplicationID: application.ApplicationID,
		RequestedBy:   actors.Applicant,
		SectionType:   "bank_details",
		ResourceID:    1,
		ResourceType:  "bank_details",
		Reason:        "bank account changed",
	})
	require.NoError(t, err)

	decideAll(t, svc, db, assignment.AssignmentID, actors.HOD, models.FieldStatusCorrectionsRequired, "not enough justification")
	require.NoError(t, svc.SubmitReview(assignment.AssignmentID, actors.HOD))
	result, err := svc.CloseCycle(assignment.AssignmentID, actors.HOD, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusRejected, result.FinalStatus)
	assert.Nil(t, result.NextAssignment)
	assert.Nil(t, result.Rejection)

	var decided models.UnlockRequest
	require.NoError(t, db.First(&decided, request.UnlockRequestID).Error)
	assert.Equal(t, models.UnlockRequestStatusRejected, decided.Status)

	// No unlock grant was produced.
	assert.EqualValues(t, 0, countRows(t, db, &models.ApplicationRejection{}))
}

func TestAdminShortcutBypassesOrdering(t *testing.T) {
	db := newTestDB(t)
	actors := seedActors(t, db)
	application := seedApplication(t, db, actors.Applicant)
	svc := NewWorkflowService(db)

	_, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Officer,
		ActorRoleID:   models.RoleOfficer,
		Level:         models.LevelAdminToApplicant,
		Sections:      bankSections(),
	})
	require.Error(t, err, "non-admins cannot use the shortcut")

	shortcut, err := svc.DelegateReview(DelegateReviewInput{
		ApplicationID: application.ApplicationID,
		ActorID:       actors.Admin,
		ActorRoleID:   models.RoleAdmin,
		Level:         models.LevelAdminToApplicant,
		Sections:      bankSections(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.LevelAdminToApplicant, shortcut.Level)
	assert.Equal(t, actors.Applicant, shortcut.AssignedTo)
}
