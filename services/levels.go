package services

import (
	"fmt"
	"warehouse-accreditation-api/models"

	"gorm.io/gorm"
)

// nextLevel encodes the fixed delegation path. Completing a level hands
// the application to the next entry; hod_to_applicant has no successor.
var nextLevel = map[string]string{
	models.LevelOfficerToHOD: models.LevelHODToExpert,
	models.LevelHODToExpert:  models.LevelExpertToHOD,
	models.LevelExpertToHOD:  models.LevelHODToApplicant,
}

// receivingRole maps each level to the role that performs the review.
var receivingRole = map[string]int{
	models.LevelOfficerToHOD:     models.RoleHeadOfDepartment,
	models.LevelHODToExpert:      models.RoleExpert,
	models.LevelExpertToHOD:      models.RoleHeadOfDepartment,
	models.LevelHODToApplicant:   models.RoleApplicant,
	models.LevelAdminToApplicant: models.RoleApplicant,
}

// KnownLevel reports whether the level name is part of the delegation
// path.
func KnownLevel(level string) bool {
	_, ok := receivingRole[level]
	return ok
}

// NextLevel returns the successor of a level in the accepted chain.
func NextLevel(level string) (string, bool) {
	next, ok := nextLevel[level]
	return next, ok
}

// IsApplicantLevel reports whether the level hands the application back
// to the applicant.
func IsApplicantLevel(level string) bool {
	return level == models.LevelHODToApplicant || level == models.LevelAdminToApplicant
}

// ReceivingRole returns the role id that reviews at the given level.
func ReceivingRole(level string) (int, bool) {
	role, ok := receivingRole[level]
	return role, ok
}

// ResolveNextAssignee picks the acting user for a level's receiving
// role. Applicant-facing levels are resolved to the application owner;
// reviewer levels to the first active user holding the role.
func ResolveNextAssignee(tx *gorm.DB, level string, applicationID int) (int, error) {
	if IsApplicantLevel(level) {
		var application models.Application
		if err := tx.Where("application_id = ? AND delete_at IS NULL", applicationID).
			First(&application).Error; err != nil {
			return 0, fmt.Errorf("failed to resolve application owner: %w", err)
		}
		return application.UserID, nil
	}

	role, ok := ReceivingRole(level)
	if !ok {
		return 0, fmt.Errorf("unknown delegation level %q", level)
	}

	var user models.User
	if err := tx.Where("role_id = ? AND is_active = ? AND delete_at IS NULL", role, true).
		Order("user_id ASC").
		First(&user).Error; err != nil {
		return 0, fmt.Errorf("no active reviewer for level %s: %w", level, err)
	}
	return user.UserID, nil
}

// validateLevelTransition enforces the delegation-path ordering. A
// fresh chain starts at officer_to_hod; with a parent the only admitted
// moves are the chain successor, the correction hand-back after a
// rejection, and the re-review of the level that rejected once the
// correction cycle completes. admin_to_applicant bypasses the ordering
// as the administrative shortcut.
func validateLevelTransition(parent *models.Assignment, level string) error {
	if !KnownLevel(level) {
		return &InvalidTransitionError{Reason: fmt.Sprintf("unknown delegation level %q", level)}
	}
	if level == models.LevelAdminToApplicant {
		return nil
	}

	if parent == nil {
		if level != models.LevelOfficerToHOD {
			return &InvalidTransitionError{
				Reason: fmt.Sprintf("a new review chain must start at %s, not %s",
					models.LevelOfficerToHOD, level),
			}
		}
		return nil
	}

	switch parent.Status {
	case models.AssignmentStatusCompleted:
		if next, ok := NextLevel(parent.Level); ok && level == next {
			return nil
		}
		// A completed correction cycle re-enters the chain at the level
		// that rejected.
		if IsApplicantLevel(parent.Level) {
			return nil
		}
	case models.AssignmentStatusRejected:
		if level == models.LevelHODToApplicant {
			return nil
		}
	}

	return &InvalidTransitionError{
		AssignmentID: parent.AssignmentID,
		Reason: fmt.Sprintf("cannot delegate at level %s after %s (%s)",
			level, parent.Level, parent.Status),
	}
}
