package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lab-request-api/config"
	"lab-request-api/models"
	"lab-request-api/services"
)

// canonicalStatus maps stored status values (including the legacy "submitted")
// onto the canonical identifiers exposed to all external consumers.
func canonicalStatus(raw string) string {
	if status, ok := services.NormalizeStatus(raw); ok {
		return string(status)
	}
	return raw
}

type requestResponse struct {
	models.LabRequest
	Status string `json:"status"`
}

func toRequestResponse(req models.LabRequest) requestResponse {
	return requestResponse{LabRequest: req, Status: canonicalStatus(req.Status)}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// GetRequests - GET /api/requests
// Scope depends on role: lab roles and superusers see everything, company
// admins and logistics see their company, requesters see their own.
func GetRequests(c *gin.Context) {
	actor := currentActor(c)

	q := config.DB.Preload("User").Preload("Company").Preload("Category").
		Preload("Assignments").Preload("Assignments.TestType")

	switch actor.Role {
	case models.RoleSuperAdmin, models.RoleLaborStaff, models.RoleUniversityLogistics:
		// unrestricted
	case models.RoleCompanyAdmin, models.RoleCompanyLogistics:
		if actor.CompanyID == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "no company scope"})
			return
		}
		q = q.Where("company_id = ?", *actor.CompanyID)
	default:
		q = q.Where("user_id = ?", actor.UserID)
	}

	if status := c.Query("status"); status != "" {
		if normalized, ok := services.NormalizeStatus(status); ok {
			// Historical rows may still carry the legacy value.
			if normalized == services.StatusArrivedAtProvider {
				q = q.Where("status IN ?", []string{string(normalized), "submitted"})
			} else {
				q = q.Where("status = ?", string(normalized))
			}
		}
	}

	var requests []models.LabRequest
	if err := q.Order("created_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]requestResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, toRequestResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GetRequest - GET /api/requests/:id
func GetRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actor := currentActor(c)

	var req models.LabRequest
	if err := config.DB.Preload("User").Preload("Company").Preload("Category").
		Preload("Approver").Preload("Assignments").Preload("Assignments.TestType").
		First(&req, "request_id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}

	switch actor.Role {
	case models.RoleCompanyUser:
		if req.UserID != actor.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	case models.RoleCompanyAdmin, models.RoleCompanyLogistics:
		if actor.CompanyID == nil || req.CompanyID != *actor.CompanyID {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	c.JSON(http.StatusOK, toRequestResponse(req))
}

type createRequestPayload struct {
	CategoryID          *uint      `json:"category_id"`
	SampleID            string     `json:"sample_id" binding:"required"`
	SampleDescription   *string    `json:"sample_description"`
	SamplingDatetime    *time.Time `json:"sampling_datetime"`
	SamplingLocation    *string    `json:"sampling_location"`
	LogisticsType       string     `json:"logistics_type"`
	ShippingAddress     *string    `json:"shipping_address"`
	ContactPerson       *string    `json:"contact_person"`
	ContactPhone        *string    `json:"contact_phone"`
	TestTypeIDs         []uint     `json:"test_type_ids" binding:"required,min=1"`
	Urgency             string     `json:"urgency"`
	Deadline            *time.Time `json:"deadline"`
	SpecialInstructions *string    `json:"special_instructions"`
	Submit              bool       `json:"submit"`
}

// CreateRequest - POST /api/requests
// Creates the request in draft with one test assignment per selected test
// type; optionally submits it for approval in the same call.
func CreateRequest(c *gin.Context) {
	actor := currentActor(c)
	if actor.CompanyID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "requester has no company"})
		return
	}

	var payload createRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	urgency := payload.Urgency
	switch urgency {
	case "":
		urgency = "normal"
	case "normal", "urgent", "critical":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid urgency"})
		return
	}

	var testTypes []models.TestType
	if err := config.DB.Where("test_type_id IN ? AND is_active = 1 AND deleted_at IS NULL", payload.TestTypeIDs).
		Find(&testTypes).Error; err != nil || len(testTypes) != len(payload.TestTypeIDs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or inactive test type"})
		return
	}

	var company models.Company
	if err := config.DB.First(&company, "company_id = ?", *actor.CompanyID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company not found"})
		return
	}

	requestNumber, err := services.NextRequestNumber(config.DB, company.ShortName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	totalPrice := 0.0
	for _, tt := range testTypes {
		totalPrice += tt.Price
	}

	req := models.LabRequest{
		RequestNumber:       requestNumber,
		UserID:              actor.UserID,
		CompanyID:           *actor.CompanyID,
		CategoryID:          payload.CategoryID,
		SampleID:            payload.SampleID,
		SampleDescription:   payload.SampleDescription,
		SamplingDatetime:    payload.SamplingDatetime,
		SamplingLocation:    payload.SamplingLocation,
		LogisticsType:       payload.LogisticsType,
		ShippingAddress:     payload.ShippingAddress,
		ContactPerson:       payload.ContactPerson,
		ContactPhone:        payload.ContactPhone,
		Urgency:             urgency,
		Deadline:            payload.Deadline,
		SpecialInstructions: payload.SpecialInstructions,
		TotalPrice:          totalPrice,
		Status:              string(services.StatusDraft),
	}
	if req.LogisticsType == "" {
		req.LogisticsType = "sender"
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		for _, id := range payload.TestTypeIDs {
			assignment := models.TestAssignment{
				RequestID:  req.RequestID,
				TestTypeID: id,
				Status:     models.AssignmentPending,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	publishNewRequestEvent(&req, actor)

	if payload.Submit {
		updated, err := lifecycleService().Transition(req.RequestID, string(services.StatusPendingApproval), actor)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		req = *updated
	}

	c.JSON(http.StatusCreated, toRequestResponse(req))
}

func publishNewRequestEvent(req *models.LabRequest, actor services.Actor) {
	if bus == nil {
		return
	}

	data := map[string]string{
		"request_number": req.RequestNumber,
	}
	var company models.Company
	if err := config.DB.First(&company, "company_id = ?", req.CompanyID).Error; err == nil {
		data["company_name"] = company.Name
	}
	var requester models.User
	if err := config.DB.Select("user_id, name").First(&requester, "user_id = ?", req.UserID).Error; err == nil {
		data["requester_name"] = requester.Name
	}
	if req.CategoryID != nil {
		var category models.RequestCategory
		if err := config.DB.First(&category, "category_id = ?", *req.CategoryID).Error; err == nil {
			data["category"] = category.Name
		}
	}

	requestID := req.RequestID
	bus.Publish(services.Event{Key: services.EventNewRequest, RequestID: &requestID, Data: data})
}

type transitionPayload struct {
	Status string `json:"status" binding:"required"`
}

// UpdateRequestStatus - PUT /api/requests/:id/status
// Generic lifecycle transition; the edge table and guards decide legality.
func UpdateRequestStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var payload transitionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	transitionTo(c, id, payload.Status)
}

// SubmitRequest - POST /api/requests/:id/submit
func SubmitRequest(c *gin.Context) {
	if id, ok := parseIDParam(c, "id"); ok {
		transitionTo(c, id, string(services.StatusPendingApproval))
	}
}

// ApproveRequest - POST /api/requests/:id/approve
func ApproveRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := currentActor(c)
	req, err := lifecycleService().Transition(id, string(services.StatusAwaitingShipment), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if bus != nil {
		approverName := ""
		var approver models.User
		if err := config.DB.Select("user_id, name").First(&approver, "user_id = ?", actor.UserID).Error; err == nil {
			approverName = approver.Name
		}
		companyName := ""
		if req.Company != nil {
			companyName = req.Company.Name
		}
		requestID := req.RequestID
		bus.Publish(services.Event{
			Key:       services.EventRequestApproved,
			RequestID: &requestID,
			Data: map[string]string{
				"request_number": req.RequestNumber,
				"approver_name":  approverName,
				"company_name":   companyName,
			},
		})
	}

	c.JSON(http.StatusOK, toRequestResponse(*req))
}

// DispatchRequest - POST /api/requests/:id/dispatch
// Logistics confirms the sample left the company (e.g. a scan event).
func DispatchRequest(c *gin.Context) {
	if id, ok := parseIDParam(c, "id"); ok {
		transitionTo(c, id, string(services.StatusInTransit))
	}
}

// ArriveRequest - POST /api/requests/:id/arrive
func ArriveRequest(c *gin.Context) {
	if id, ok := parseIDParam(c, "id"); ok {
		transitionTo(c, id, string(services.StatusArrivedAtProvider))
	}
}

// StartRequest - POST /api/requests/:id/start
func StartRequest(c *gin.Context) {
	if id, ok := parseIDParam(c, "id"); ok {
		transitionTo(c, id, string(services.StatusInProgress))
	}
}

func transitionTo(c *gin.Context, requestID uint, target string) {
	req, err := lifecycleService().Transition(requestID, target, currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(*req))
}

// GetWorklist - GET /api/worklist
// Lab view over requests currently being processed or awaiting validation.
func GetWorklist(c *gin.Context) {
	var requests []models.LabRequest
	statuses := []string{
		string(services.StatusArrivedAtProvider), "submitted",
		string(services.StatusInProgress),
		string(services.StatusValidationPending),
	}
	if err := config.DB.Preload("User").Preload("Company").
		Preload("Assignments").Preload("Assignments.TestType").
		Where("status IN ?", statuses).
		Order("deadline IS NULL, deadline ASC, created_at ASC").
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]requestResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, toRequestResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}
