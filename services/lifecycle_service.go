package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lab-request-api/models"
)

// Actor is the authenticated identity evaluated against edge guards.
type Actor struct {
	UserID       uint
	Role         string
	CompanyID    *uint
	DepartmentID *uint
}

func (a Actor) sameCompany(companyID uint) bool {
	return a.CompanyID != nil && *a.CompanyID == companyID
}

type guardFunc func(actor Actor, req *models.LabRequest) error

type transitionKey struct {
	from RequestStatus
	to   RequestStatus
}

type transitionRule struct {
	guard guardFunc
	// gateOnly edges are reachable only through the aggregator's completion
	// gate, never through a direct Transition call.
	gateOnly bool
	// recordApproval stamps approved_by/approved_at on success.
	recordApproval bool
}

var transitionTable = map[transitionKey]transitionRule{
	{StatusDraft, StatusPendingApproval}: {
		guard: func(actor Actor, req *models.LabRequest) error {
			if actor.UserID != req.UserID {
				return &PermissionDeniedError{Reason: "only the requester may submit the request"}
			}
			return nil
		},
	},
	{StatusPendingApproval, StatusAwaitingShipment}: {
		guard: func(actor Actor, req *models.LabRequest) error {
			if actor.Role == models.RoleSuperAdmin {
				return nil
			}
			if actor.Role == models.RoleCompanyAdmin && actor.sameCompany(req.CompanyID) {
				return nil
			}
			return &PermissionDeniedError{Reason: "approval requires a company admin of the request's company"}
		},
		recordApproval: true,
	},
	{StatusAwaitingShipment, StatusInTransit}: {
		guard: func(actor Actor, req *models.LabRequest) error {
			switch actor.Role {
			case models.RoleSuperAdmin, models.RoleUniversityLogistics:
				return nil
			case models.RoleCompanyLogistics:
				if actor.sameCompany(req.CompanyID) {
					return nil
				}
				return &PermissionDeniedError{Reason: "logistics staff may only dispatch their own company's samples"}
			}
			return &PermissionDeniedError{Reason: "dispatch requires a logistics role"}
		},
	},
	{StatusInTransit, StatusArrivedAtProvider}: {
		guard: func(actor Actor, req *models.LabRequest) error {
			if actor.Role == models.RoleSuperAdmin {
				return nil
			}
			if actor.Role == models.RoleCompanyAdmin && actor.sameCompany(req.CompanyID) {
				return nil
			}
			return &PermissionDeniedError{Reason: "arrival confirmation requires a company admin or superuser"}
		},
	},
	{StatusArrivedAtProvider, StatusInProgress}: {
		guard: func(actor Actor, req *models.LabRequest) error {
			switch actor.Role {
			case models.RoleSuperAdmin, models.RoleLaborStaff:
				return nil
			}
			return &PermissionDeniedError{Reason: "lab intake requires a lab role"}
		},
	},
	// Reachable only via TestAssignmentService.SubmitForValidation.
	{StatusArrivedAtProvider, StatusValidationPending}: {gateOnly: true},
	{StatusInProgress, StatusValidationPending}:        {gateOnly: true},
	// Reachable only via TestAssignmentService.CompleteRequestValidation.
	{StatusValidationPending, StatusCompleted}: {gateOnly: true},
}

// ruleFor resolves the transition rule for a (from, to) pair.
func ruleFor(from, to RequestStatus) (transitionRule, bool) {
	rule, ok := transitionTable[transitionKey{from, to}]
	return rule, ok
}

// RequestLifecycleService owns every status mutation of a lab request.
type RequestLifecycleService struct {
	db  *gorm.DB
	bus *EventBus
}

func NewRequestLifecycleService(db *gorm.DB, bus *EventBus) *RequestLifecycleService {
	return &RequestLifecycleService{db: db, bus: bus}
}

// Transition moves the request to targetStatus if the edge exists and the
// actor satisfies its guard. On success the status is mutated exactly once and
// one lifecycle event is published; on failure no mutation is visible.
func (s *RequestLifecycleService) Transition(requestID uint, target string, actor Actor) (*models.LabRequest, error) {
	targetStatus, targetKnown := NormalizeStatus(target)

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
		// A target outside the state set is an undefined edge, not a server
		// fault.
		if !targetKnown {
			return &InvalidTransitionError{From: current, To: RequestStatus(strings.ToLower(strings.TrimSpace(target)))}
		}
		rule, defined := ruleFor(current, targetStatus)
		if !defined || rule.gateOnly {
			return &InvalidTransitionError{From: current, To: targetStatus}
		}
		if err := rule.guard(actor, &req); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": string(targetStatus)}
		if rule.recordApproval {
			now := time.Now()
			updates["approved_by"] = actor.UserID
			updates["approved_at"] = now
			req.ApprovedBy = &actor.UserID
			req.ApprovedAt = &now
		}
		if err := tx.Model(&models.LabRequest{}).
			Where("request_id = ?", req.RequestID).
			Updates(updates).Error; err != nil {
			return err
		}

		req.Status = string(targetStatus)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(&req, oldStatus)
	return &req, nil
}

// publishLifecycleEvent emits exactly one status_change event; the dispatcher
// worker fans it out under the state-specific key as well.
func (s *RequestLifecycleService) publishLifecycleEvent(req *models.LabRequest, oldStatus RequestStatus) {
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

// lifecycleEventData builds the variable payload every lifecycle event carries.
func lifecycleEventData(req *models.LabRequest, oldStatus RequestStatus) map[string]string {
	companyName := ""
	if req.Company != nil {
		companyName = req.Company.Name
	}
	requesterName := ""
	if req.User != nil {
		requesterName = req.User.Name
	}

	return map[string]string{
		"request_id":     fmt.Sprintf("%d", req.RequestID),
		"request_number": req.RequestNumber,
		"old_status":     string(oldStatus),
		"new_status":     req.Status,
		"company_name":   companyName,
		"requester_name": requesterName,
	}
}
