package services

import (
	"fmt"
	"strings"
)

// Request-rejection errors surfaced by the workflow engine. Each carries
// enough context (assignment id, offending section or field) for the
// caller to retry correctly. None are retried automatically here, and
// storage-level constraint violations are translated into these types
// instead of leaking raw database errors.

// ActiveAssignmentExistsError is returned when a new assignment would
// violate the one-live-assignment-per-(application, location, level)
// invariant.
type ActiveAssignmentExistsError struct {
	ApplicationID         int
	ApplicationLocationID *int
	Level                 string
	ExistingAssignmentID  int
}

func (e *ActiveAssignmentExistsError) Error() string {
	scope := fmt.Sprintf("application %d", e.ApplicationID)
	if e.ApplicationLocationID != nil {
		scope = fmt.Sprintf("%s location %d", scope, *e.ApplicationLocationID)
	}
	return fmt.Sprintf("assignment %d is still open for %s at level %s",
		e.ExistingAssignmentID, scope, e.Level)
}

// DuplicateSectionError is returned when a (section type, resource)
// pair would appear twice in the same review cycle.
type DuplicateSectionError struct {
	AssignmentID int
	SectionType  string
	ResourceID   int
}

func (e *DuplicateSectionError) Error() string {
	return fmt.Sprintf("section %s/%d already exists in assignment %d",
		e.SectionType, e.ResourceID, e.AssignmentID)
}

// InvalidTransitionError is returned for state-machine violations:
// decisions against a cycle that is not in progress, regressing a
// decided field, corrections without remarks, or skipping delegation
// levels.
type InvalidTransitionError struct {
	AssignmentID int
	FieldID      int
	Reason       string
}

func (e *InvalidTransitionError) Error() string {
	msg := e.Reason
	if e.FieldID != 0 {
		msg = fmt.Sprintf("field %d: %s", e.FieldID, msg)
	}
	if e.AssignmentID != 0 {
		msg = fmt.Sprintf("assignment %d: %s", e.AssignmentID, msg)
	}
	return msg
}

// IncompleteReviewError is returned when a cycle is submitted while
// some fields are still undecided.
type IncompleteReviewError struct {
	AssignmentID  int
	PendingFields []string
}

func (e *IncompleteReviewError) Error() string {
	return fmt.Sprintf("assignment %d has undecided fields: %s",
		e.AssignmentID, strings.Join(e.PendingFields, ", "))
}

// SectionNotUnlockedError is returned when a resubmission names a
// section the most recent unresolved rejection did not unlock.
type SectionNotUnlockedError struct {
	ApplicationID int
	SectionType   string
	ResourceID    int
}

func (e *SectionNotUnlockedError) Error() string {
	return fmt.Sprintf("section %s/%d of application %d is not unlocked for correction",
		e.SectionType, e.ResourceID, e.ApplicationID)
}

// AssignmentAlreadyClosedError is returned when a second finalize (or
// any further mutation) reaches an assignment that is already
// completed or rejected.
type AssignmentAlreadyClosedError struct {
	AssignmentID int
	Status       string
}

func (e *AssignmentAlreadyClosedError) Error() string {
	return fmt.Sprintf("assignment %d is already closed (status %s)", e.AssignmentID, e.Status)
}
