package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lab-request-api/models"
)

// Validation actions accepted by Validate.
const (
	ValidationApprove = "approve"
	ValidationReject  = "reject"
)

// TestAssignmentService owns the per-department completion gate that unlocks
// request validation, and the per-assignment validation sub-flow.
type TestAssignmentService struct {
	db  *gorm.DB
	bus *EventBus
}

func NewTestAssignmentService(db *gorm.DB, bus *EventBus) *TestAssignmentService {
	return &TestAssignmentService{db: db, bus: bus}
}

// assignmentLabel names an assignment by its test type for gate error messages.
func assignmentLabel(a models.TestAssignment) string {
	if a.TestType != nil {
		return a.TestType.Name
	}
	return fmt.Sprintf("test type %d", a.TestTypeID)
}

// outstandingForGate returns the labels of every assignment whose status keeps
// the global gate closed. The gate is a pure function of assignment statuses.
func outstandingForGate(assignments []models.TestAssignment) []string {
	var out []string
	for _, a := range assignments {
		if a.Status != models.AssignmentCompleted && a.Status != models.AssignmentValidationPending {
			out = append(out, assignmentLabel(a))
		}
	}
	return out
}

// outstandingForDepartment returns the labels of the department's assignments
// not yet completed.
func outstandingForDepartment(assignments []models.TestAssignment, departmentID uint) []string {
	var out []string
	for _, a := range assignments {
		if a.TestType == nil || a.TestType.DepartmentID != departmentID {
			continue
		}
		if a.Status != models.AssignmentCompleted && a.Status != models.AssignmentValidationPending {
			out = append(out, assignmentLabel(a))
		}
	}
	return out
}

// outstandingForValidation returns the labels of assignments not yet approved
// by the validator.
func outstandingForValidation(assignments []models.TestAssignment) []string {
	var out []string
	for _, a := range assignments {
		if a.Status != models.AssignmentCompleted {
			out = append(out, assignmentLabel(a))
		}
	}
	return out
}

// CompleteAssignment marks one assignment completed. Only staff of the test
// type's owning department (or a superuser) may mutate an assignment.
func (s *TestAssignmentService) CompleteAssignment(assignmentID uint, actor Actor, resultSummary string) (*models.TestAssignment, error) {
	var assignment models.TestAssignment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("TestType").
			First(&assignment, "assignment_id = ?", assignmentID).Error; err != nil {
			return err
		}

		if err := s.checkDepartmentAccess(actor, &assignment); err != nil {
			return err
		}
		if assignment.Status == models.AssignmentValidationPending {
			return &PermissionDeniedError{Reason: "assignment is locked for validation"}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.AssignmentCompleted,
			"completed_by": actor.UserID,
			"completed_at": now,
		}
		if resultSummary != "" {
			updates["result_summary"] = resultSummary
		}
		if err := tx.Model(&models.TestAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(updates).Error; err != nil {
			return err
		}

		assignment.Status = models.AssignmentCompleted
		assignment.CompletedBy = &actor.UserID
		assignment.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishResultsUploaded(&assignment, actor)
	return &assignment, nil
}

func (s *TestAssignmentService) checkDepartmentAccess(actor Actor, assignment *models.TestAssignment) error {
	if actor.Role == models.RoleSuperAdmin {
		return nil
	}
	if actor.Role != models.RoleLaborStaff {
		return &PermissionDeniedError{Reason: "assignments are mutated by lab staff only"}
	}
	if actor.DepartmentID == nil || assignment.TestType == nil || assignment.TestType.DepartmentID != *actor.DepartmentID {
		return &PermissionDeniedError{Reason: "assignment belongs to another department"}
	}
	return nil
}

// SubmitForValidation evaluates the department gate and the global gate, then
// atomically flips every completed assignment to validation_pending and moves
// the request to validation_pending. The check-and-flip runs in one
// transaction with the assignment rows locked, so concurrent completions can
// neither double-fire the gate nor be lost.
func (s *TestAssignmentService) SubmitForValidation(requestID uint, actor Actor) (*models.LabRequest, error) {
	var req models.LabRequest
	var oldStatus RequestStatus

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("User").Preload("Company").
			First(&req, "request_id = ?", requestID).Error; err != nil {
			return err
		}

		current, _ := NormalizeStatus(req.Status)
		oldStatus = current
		if _, defined := ruleFor(current, StatusValidationPending); !defined {
			return &InvalidTransitionError{From: current, To: StatusValidationPending}
		}

		var assignments []models.TestAssignment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("TestType").
			Where("request_id = ?", requestID).
			Find(&assignments).Error; err != nil {
			return err
		}

		if actor.Role != models.RoleSuperAdmin {
			if actor.Role != models.RoleLaborStaff || actor.DepartmentID == nil {
				return &PermissionDeniedError{Reason: "submission for validation requires lab staff"}
			}
			if outstanding := outstandingForDepartment(assignments, *actor.DepartmentID); len(outstanding) > 0 {
				return &IncompleteDepartmentError{TestTypes: outstanding}
			}
		}

		if outstanding := outstandingForGate(assignments); len(outstanding) > 0 {
			return &IncompleteRequestError{TestTypes: outstanding}
		}

		if err := tx.Model(&models.TestAssignment{}).
			Where("request_id = ? AND status = ?", requestID, models.AssignmentCompleted).
			Update("status", models.AssignmentValidationPending).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LabRequest{}).
			Where("request_id = ?", requestID).
			Update("status", string(StatusValidationPending)).Error; err != nil {
			return err
		}

		req.Status = string(StatusValidationPending)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycle(&req, oldStatus)
	return &req, nil
}

// Validate applies a validator decision to one assignment. Approve marks it
// completed; reject returns it to the owning department's worklist with the
// reason stored. Rejecting never touches the parent request's status.
func (s *TestAssignmentService) Validate(assignmentID uint, actor Actor, action, reason string) (*models.TestAssignment, error) {
	if actor.Role != models.RoleSuperAdmin {
		return nil, &PermissionDeniedError{Reason: "validation requires a superuser"}
	}

	var assignment models.TestAssignment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("TestType").
			First(&assignment, "assignment_id = ?", assignmentID).Error; err != nil {
			return err
		}

		now := time.Now()
		var updates map[string]interface{}

		switch action {
		case ValidationApprove:
			updates = map[string]interface{}{
				"status":           models.AssignmentCompleted,
				"validated_by":     actor.UserID,
				"validated_at":     now,
				"rejection_reason": nil,
			}
			assignment.Status = models.AssignmentCompleted
			assignment.ValidatedBy = &actor.UserID
			assignment.ValidatedAt = &now
			assignment.RejectionReason = nil
		case ValidationReject:
			if reason == "" {
				return errors.New("rejection requires a reason")
			}
			updates = map[string]interface{}{
				"status":           models.AssignmentInProgress,
				"validated_by":     nil,
				"validated_at":     nil,
				"rejection_reason": reason,
			}
			assignment.Status = models.AssignmentInProgress
			assignment.ValidatedBy = nil
			assignment.ValidatedAt = nil
			assignment.RejectionReason = &reason
		default:
			return fmt.Errorf("unknown validation action %q", action)
		}

		return tx.Model(&models.TestAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// CompleteRequestValidation closes the request once every assignment has been
// individually approved. Superuser only.
func (s *TestAssignmentService) CompleteRequestValidation(requestID uint, actor Actor) (*models.LabRequest, error) {
	if actor.Role != models.RoleSuperAdmin {
		return nil, &PermissionDeniedError{Reason: "request validation requires a superuser"}
	}

	var req models.LabRequest
	var oldStatus RequestStatus

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("User").Preload("Company").
			First(&req, "request_id = ?", requestID).Error; err != nil {
			return err
		}

		current, _ := NormalizeStatus(req.Status)
		oldStatus = current
		if current != StatusValidationPending {
			return &InvalidTransitionError{From: current, To: StatusCompleted}
		}

		var assignments []models.TestAssignment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("TestType").
			Where("request_id = ?", requestID).
			Find(&assignments).Error; err != nil {
			return err
		}

		if outstanding := outstandingForValidation(assignments); len(outstanding) > 0 {
			return &ValidationIncompleteError{TestTypes: outstanding}
		}

		if err := tx.Model(&models.LabRequest{}).
			Where("request_id = ?", requestID).
			Update("status", string(StatusCompleted)).Error; err != nil {
			return err
		}

		req.Status = string(StatusCompleted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycle(&req, oldStatus)
	return &req, nil
}

func (s *TestAssignmentService) publishLifecycle(req *models.LabRequest, oldStatus RequestStatus) {
	if s.bus == nil {
		return
	}

	requestID := req.RequestID
	s.bus.Publish(Event{
		Key:       EventStatusChange,
		RequestID: &requestID,
		Data:      lifecycleEventData(req, oldStatus),
	})
}

func (s *TestAssignmentService) publishResultsUploaded(assignment *models.TestAssignment, actor Actor) {
	if s.bus == nil {
		return
	}

	var req models.LabRequest
	if err := s.db.Preload("User").Preload("Company").
		First(&req, "request_id = ?", assignment.RequestID).Error; err != nil {
		return
	}

	var uploader models.User
	uploaderName := ""
	if err := s.db.Select("user_id, name").First(&uploader, "user_id = ?", actor.UserID).Error; err == nil {
		uploaderName = uploader.Name
	}

	requestID := req.RequestID
	s.bus.Publish(Event{
		Key:       EventResultsUploaded,
		RequestID: &requestID,
		Data: map[string]string{
			"request_number": req.RequestNumber,
			"uploader_name":  uploaderName,
			"test_type":      assignmentLabel(*assignment),
		},
	})
}
