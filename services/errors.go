package services

import (
	"fmt"
	"strings"
)

// InvalidTransitionError is returned when (current, target) is not a defined
// lifecycle edge.
type InvalidTransitionError struct {
	From RequestStatus
	To   RequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

// PermissionDeniedError is returned when the actor's role or company does not
// satisfy an edge guard.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return "permission denied: " + e.Reason
}

// IncompleteDepartmentError reports assignments in the acting staff member's
// department that are not yet completed.
type IncompleteDepartmentError struct {
	TestTypes []string
}

func (e *IncompleteDepartmentError) Error() string {
	return "department work incomplete: " + strings.Join(e.TestTypes, ", ")
}

// IncompleteRequestError reports every assignment on the request blocking the
// validation gate, across all departments.
type IncompleteRequestError struct {
	TestTypes []string
}

func (e *IncompleteRequestError) Error() string {
	return "request incomplete: " + strings.Join(e.TestTypes, ", ")
}

// ValidationIncompleteError reports assignments still awaiting validation when
// final request completion is attempted.
type ValidationIncompleteError struct {
	TestTypes []string
}

func (e *ValidationIncompleteError) Error() string {
	return "validation incomplete: " + strings.Join(e.TestTypes, ", ")
}
