package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
	"lab-request-api/services"
)

// GetRequestAssignments - GET /api/requests/:id/assignments
func GetRequestAssignments(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var assignments []models.TestAssignment
	if err := config.DB.Preload("TestType").
		Where("request_id = ?", id).
		Order("assignment_id ASC").
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": assignments, "total": len(assignments)})
}

type completeAssignmentPayload struct {
	ResultSummary string `json:"result_summary"`
}

// CompleteAssignment - POST /api/assignments/:id/complete
func CompleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload completeAssignmentPayload
	_ = c.ShouldBindJSON(&payload)

	assignment, err := assignmentService().CompleteAssignment(id, currentActor(c), payload.ResultSummary)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// SubmitForValidation - POST /api/requests/:id/submit-validation
// Fires the department and global completion gates.
func SubmitForValidation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	req, err := assignmentService().SubmitForValidation(id, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(*req))
}

type validatePayload struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// ValidateAssignment - POST /api/assignments/:id/validate
func ValidateAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload validatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}
	if payload.Action != services.ValidationApprove && payload.Action != services.ValidationReject {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be approve or reject"})
		return
	}

	assignment, err := assignmentService().Validate(id, currentActor(c), payload.Action, payload.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// CompleteRequestValidation - POST /api/requests/:id/complete-validation
func CompleteRequestValidation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	req, err := assignmentService().CompleteRequestValidation(id, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(*req))
}

// GetDepartmentWorklist - GET /api/assignments/worklist
// Pending and rejected assignments of the staff member's department.
func GetDepartmentWorklist(c *gin.Context) {
	actor := currentActor(c)

	q := config.DB.Preload("TestType").Preload("Request").Preload("Request.Company").
		Where("test_assignments.status IN ?", []string{models.AssignmentPending, models.AssignmentInProgress})

	if actor.Role != models.RoleSuperAdmin {
		if actor.DepartmentID == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no department scope"})
			return
		}
		q = q.Joins("JOIN test_types tt ON tt.test_type_id = test_assignments.test_type_id").
			Where("tt.department_id = ?", *actor.DepartmentID)
	}

	var assignments []models.TestAssignment
	if err := q.Order("test_assignments.assignment_id ASC").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": assignments, "total": len(assignments)})
}
