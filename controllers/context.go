package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lab-request-api/config"
	"lab-request-api/services"
)

// bus is the process-wide event bus, injected from main before routes bind.
var bus *services.EventBus

// Init wires the controllers to the dispatcher event bus.
func Init(b *services.EventBus) {
	bus = b
}

func lifecycleService() *services.RequestLifecycleService {
	return services.NewRequestLifecycleService(config.DB, bus)
}

func assignmentService() *services.TestAssignmentService {
	return services.NewTestAssignmentService(config.DB, bus)
}

func notificationService() *services.NotificationService {
	return services.NewNotificationService(config.DB)
}

func inboxService() *services.InboxService {
	return services.NewInboxService(config.DB)
}

func currentUserID(c *gin.Context) (uint, bool) {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return id, true
		}
	}
	return 0, false
}

func currentRole(c *gin.Context) string {
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// currentActor assembles the guard-evaluation identity from the auth context.
func currentActor(c *gin.Context) services.Actor {
	actor := services.Actor{Role: currentRole(c)}
	if id, ok := currentUserID(c); ok {
		actor.UserID = id
	}
	if v, ok := c.Get("companyID"); ok {
		if id, ok := v.(uint); ok {
			actor.CompanyID = &id
		}
	}
	if v, ok := c.Get("departmentID"); ok {
		if id, ok := v.(uint); ok {
			actor.DepartmentID = &id
		}
	}
	return actor
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var invalidTransition *services.InvalidTransitionError
	var permissionDenied *services.PermissionDeniedError
	var incompleteDept *services.IncompleteDepartmentError
	var incompleteReq *services.IncompleteRequestError
	var validationIncomplete *services.ValidationIncompleteError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &permissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &incompleteDept):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "outstanding": incompleteDept.TestTypes})
	case errors.As(err, &incompleteReq):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "outstanding": incompleteReq.TestTypes})
	case errors.As(err, &validationIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "outstanding": validationIncomplete.TestTypes})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
