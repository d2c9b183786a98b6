package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"lab-request-api/models"
)

func expectLockedRequestLoad(mock sqlmock.Sqlmock, requestID uint, status string) {
	mock.ExpectQuery("SELECT (.+) FROM `lab_requests`").
		WithArgs(requestID).
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "request_number", "user_id", "company_id", "status"}).
			AddRow(requestID, "ACME-20250115-001", 7, 3, status))
	mock.ExpectQuery("SELECT (.+) FROM `companies`").
		WillReturnRows(sqlmock.NewRows([]string{"company_id", "name"}).AddRow(3, "Acme GmbH"))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name"}).AddRow(7, "Jane Doe"))
}

func TestTransitionUnknownTargetIsInvalidTransition(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRequestLifecycleService(db, nil)

	mock.ExpectBegin()
	expectLockedRequestLoad(mock, 1, "draft")
	mock.ExpectRollback()

	_, err := svc.Transition(1, "rejected", Actor{UserID: 7, Role: models.RoleCompanyUser})

	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %T (%v)", err, err)
	}
	if invalid.From != StatusDraft {
		t.Errorf("From = %q, want %q", invalid.From, StatusDraft)
	}
	if invalid.To != RequestStatus("rejected") {
		t.Errorf("To = %q, want %q", invalid.To, "rejected")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTransitionGateOnlyEdgeRejected(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRequestLifecycleService(db, nil)

	mock.ExpectBegin()
	expectLockedRequestLoad(mock, 1, "in_progress")
	mock.ExpectRollback()

	// validation_pending is only reachable through the completion gate.
	_, err := svc.Transition(1, "validation_pending", Actor{UserID: 1, Role: models.RoleSuperAdmin})

	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %T (%v)", err, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTransitionGuardFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRequestLifecycleService(db, nil)

	mock.ExpectBegin()
	expectLockedRequestLoad(mock, 1, "draft")
	mock.ExpectRollback()

	// Not the owner: the guard denies and no UPDATE runs.
	_, err := svc.Transition(1, "pending_approval", Actor{UserID: 99, Role: models.RoleCompanyUser})

	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected PermissionDeniedError, got %T (%v)", err, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
