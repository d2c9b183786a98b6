package services

import (
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"lab-request-api/models"
)

func makeAssignment(name string, departmentID uint, status string) models.TestAssignment {
	return models.TestAssignment{
		Status:   status,
		TestType: &models.TestType{Name: name, DepartmentID: departmentID},
	}
}

func TestOutstandingForGate(t *testing.T) {
	assignments := []models.TestAssignment{
		makeAssignment("Chemical Analysis", 1, models.AssignmentCompleted),
		makeAssignment("Microbiology", 2, models.AssignmentPending),
		makeAssignment("Heavy Metals", 1, models.AssignmentInProgress),
		makeAssignment("PCR Panel", 2, models.AssignmentValidationPending),
	}

	got := outstandingForGate(assignments)
	want := []string{"Microbiology", "Heavy Metals"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("outstandingForGate = %v, want %v", got, want)
	}
}

func TestOutstandingForGateAllDone(t *testing.T) {
	assignments := []models.TestAssignment{
		makeAssignment("Chemical Analysis", 1, models.AssignmentCompleted),
		makeAssignment("Microbiology", 2, models.AssignmentValidationPending),
	}
	if got := outstandingForGate(assignments); len(got) != 0 {
		t.Errorf("gate should be open, outstanding = %v", got)
	}
}

func TestOutstandingForDepartment(t *testing.T) {
	assignments := []models.TestAssignment{
		makeAssignment("Chemical Analysis", 1, models.AssignmentCompleted),
		makeAssignment("Heavy Metals", 1, models.AssignmentPending),
		makeAssignment("Microbiology", 2, models.AssignmentPending),
	}

	got := outstandingForDepartment(assignments, 1)
	want := []string{"Heavy Metals"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("outstandingForDepartment(1) = %v, want %v", got, want)
	}

	// Department 2's open work never blocks department 1's submission.
	if got := outstandingForDepartment(assignments, 2); !reflect.DeepEqual(got, []string{"Microbiology"}) {
		t.Errorf("outstandingForDepartment(2) = %v", got)
	}
}

func TestOutstandingForValidation(t *testing.T) {
	assignments := []models.TestAssignment{
		makeAssignment("Chemical Analysis", 1, models.AssignmentCompleted),
		makeAssignment("Microbiology", 2, models.AssignmentValidationPending),
		makeAssignment("Heavy Metals", 1, models.AssignmentInProgress),
	}

	got := outstandingForValidation(assignments)
	want := []string{"Microbiology", "Heavy Metals"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("outstandingForValidation = %v, want %v", got, want)
	}
}

func TestAssignmentLabelFallback(t *testing.T) {
	withType := makeAssignment("Microbiology", 2, models.AssignmentPending)
	if got := assignmentLabel(withType); got != "Microbiology" {
		t.Errorf("assignmentLabel = %q", got)
	}

	bare := models.TestAssignment{TestTypeID: 42}
	if got := assignmentLabel(bare); got != "test type 42" {
		t.Errorf("assignmentLabel fallback = %q", got)
	}
}

func expectAssignmentRowsLoad(mock sqlmock.Sqlmock, requestID uint, statuses ...string) {
	assignmentRows := sqlmock.NewRows([]string{"assignment_id", "request_id", "test_type_id", "status"})
	typeRows := sqlmock.NewRows([]string{"test_type_id", "name", "department_id"})
	names := []string{"Chemical Analysis", "Microbiology", "Heavy Metals"}
	for i, status := range statuses {
		assignmentRows.AddRow(10+i, requestID, 100+i, status)
		typeRows.AddRow(100+i, names[i%len(names)], i%2+1)
	}

	mock.ExpectQuery("SELECT (.+) FROM `test_assignments`").
		WithArgs(requestID).
		WillReturnRows(assignmentRows)
	mock.ExpectQuery("SELECT (.+) FROM `test_types`").
		WillReturnRows(typeRows)
}

func TestSubmitForValidationFlipsAssignmentsAndRequest(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTestAssignmentService(db, nil)

	mock.ExpectBegin()
	expectLockedRequestLoad(mock, 1, "in_progress")
	expectAssignmentRowsLoad(mock, 1, models.AssignmentCompleted, models.AssignmentCompleted)
	mock.ExpectExec("UPDATE `test_assignments` SET").
		WithArgs(models.AssignmentValidationPending, sqlmock.AnyArg(), 1, models.AssignmentCompleted).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE `lab_requests` SET").
		WithArgs(string(StatusValidationPending), sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, err := svc.SubmitForValidation(1, Actor{UserID: 2, Role: models.RoleSuperAdmin})
	if err != nil {
		t.Fatalf("SubmitForValidation: %v", err)
	}
	if req.Status != string(StatusValidationPending) {
		t.Errorf("request status = %q, want %q", req.Status, StatusValidationPending)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSubmitForValidationIncompleteRequestNoMutation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTestAssignmentService(db, nil)

	// One assignment still pending: the gate stays closed and the transaction
	// rolls back without touching any row.
	mock.ExpectBegin()
	expectLockedRequestLoad(mock, 1, "in_progress")
	expectAssignmentRowsLoad(mock, 1, models.AssignmentCompleted, models.AssignmentPending)
	mock.ExpectRollback()

	_, err := svc.SubmitForValidation(1, Actor{UserID: 2, Role: models.RoleSuperAdmin})

	var incomplete *IncompleteRequestError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteRequestError, got %T (%v)", err, err)
	}
	if len(incomplete.TestTypes) != 1 || incomplete.TestTypes[0] != "Microbiology" {
		t.Errorf("outstanding = %v, want [Microbiology]", incomplete.TestTypes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSubmitForValidationUndefinedOriginRejected(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTestAssignmentService(db, nil)

	// The gate only fires from arrived_at_provider or in_progress.
	mock.ExpectBegin()
	expectLockedRequestLoad(mock, 1, "draft")
	mock.ExpectRollback()

	_, err := svc.SubmitForValidation(1, Actor{UserID: 2, Role: models.RoleSuperAdmin})

	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %T (%v)", err, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCheckDepartmentAccess(t *testing.T) {
	svc := &TestAssignmentService{}
	deptID := uint(1)
	otherDept := uint(2)
	assignment := makeAssignment("Chemical Analysis", 1, models.AssignmentPending)

	if err := svc.checkDepartmentAccess(Actor{Role: models.RoleSuperAdmin}, &assignment); err != nil {
		t.Errorf("superuser should bypass department check, got %v", err)
	}
	if err := svc.checkDepartmentAccess(Actor{Role: models.RoleLaborStaff, DepartmentID: &deptID}, &assignment); err != nil {
		t.Errorf("same-department staff should pass, got %v", err)
	}
	if err := svc.checkDepartmentAccess(Actor{Role: models.RoleLaborStaff, DepartmentID: &otherDept}, &assignment); err == nil {
		t.Error("cross-department staff should be denied")
	}
	if err := svc.checkDepartmentAccess(Actor{Role: models.RoleCompanyAdmin}, &assignment); err == nil {
		t.Error("company roles should never mutate assignments")
	}
}
