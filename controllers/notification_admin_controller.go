package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
)

// Admin surface over the notification catalog. Event types are bootstrap-owned
// and read-only here; templates and rules are fully editable.

// GetEventTypes - GET /api/admin/notification-events
func GetEventTypes(c *gin.Context) {
	var eventTypes []models.NotificationEventType
	if err := config.DB.Order("event_type_id ASC").Find(&eventTypes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": eventTypes, "total": len(eventTypes)})
}

type eventTypePayload struct {
	Description *string `json:"description"`
}

// UpdateEventType - PUT /api/admin/notification-events/:id
// Event keys, names and variables are bootstrap-owned; only the description
// is editable.
func UpdateEventType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var eventType models.NotificationEventType
	if err := config.DB.First(&eventType, "event_type_id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event type not found"})
		return
	}

	var payload eventTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Model(&eventType).Update("description", payload.Description).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	eventType.Description = payload.Description
	c.JSON(http.StatusOK, eventType)
}

type templatePayload struct {
	Name          string          `json:"name" binding:"required"`
	EventTypeID   uint            `json:"event_type_id" binding:"required"`
	Subject       string          `json:"subject" binding:"required"`
	Body          string          `json:"body" binding:"required"`
	VariablesUsed json.RawMessage `json:"variables_used"`
}

// GetTemplates - GET /api/admin/notification-templates
func GetTemplates(c *gin.Context) {
	q := config.DB.Order("template_id ASC")
	if v := c.Query("event_type_id"); v != "" {
		q = q.Where("event_type_id = ?", v)
	}

	var templates []models.NotificationTemplate
	if err := q.Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": templates, "total": len(templates)})
}

// CreateTemplate - POST /api/admin/notification-templates
func CreateTemplate(c *gin.Context) {
	var payload templatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var eventType models.NotificationEventType
	if err := config.DB.First(&eventType, "event_type_id = ?", payload.EventTypeID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type"})
		return
	}

	tmpl := models.NotificationTemplate{
		Name:          payload.Name,
		EventTypeID:   payload.EventTypeID,
		Subject:       payload.Subject,
		Body:          payload.Body,
		VariablesUsed: payload.VariablesUsed,
	}
	if err := config.DB.Create(&tmpl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tmpl)
}

// UpdateTemplate - PUT /api/admin/notification-templates/:id
func UpdateTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var tmpl models.NotificationTemplate
	if err := config.DB.First(&tmpl, "template_id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	var payload templatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tmpl.Name = payload.Name
	tmpl.EventTypeID = payload.EventTypeID
	tmpl.Subject = payload.Subject
	tmpl.Body = payload.Body
	tmpl.VariablesUsed = payload.VariablesUsed
	if err := config.DB.Save(&tmpl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// DeleteTemplate - DELETE /api/admin/notification-templates/:id
// Refused while any rule still references the template.
func DeleteTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var inUse int64
	config.DB.Model(&models.NotificationRule{}).
		Where("email_template_id = ?", id).Count(&inUse)
	if inUse > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "template is referenced by notification rules"})
		return
	}

	res := config.DB.Delete(&models.NotificationTemplate{}, "template_id = ?", id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type rulePayload struct {
	EventTypeID     uint            `json:"event_type_id" binding:"required"`
	Role            string          `json:"role" binding:"required"`
	EventFilter     json.RawMessage `json:"event_filter"`
	InAppEnabled    *bool           `json:"in_app_enabled"`
	EmailEnabled    *bool           `json:"email_enabled"`
	EmailTemplateID *uint           `json:"email_template_id"`
	Priority        int             `json:"priority"`
	IsActive        *bool           `json:"is_active"`
}

func (p *rulePayload) validate(c *gin.Context) bool {
	if !models.IsValidRole(p.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return false
	}
	var eventType models.NotificationEventType
	if err := config.DB.First(&eventType, "event_type_id = ?", p.EventTypeID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type"})
		return false
	}
	if p.EmailTemplateID != nil {
		var tmpl models.NotificationTemplate
		if err := config.DB.First(&tmpl, "template_id = ?", *p.EmailTemplateID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown email template"})
			return false
		}
	}
	return true
}

// GetRules - GET /api/admin/notification-rules
func GetRules(c *gin.Context) {
	q := config.DB.Order("event_type_id ASC, priority DESC, rule_id ASC")
	if v := c.Query("event_type_id"); v != "" {
		q = q.Where("event_type_id = ?", v)
	}
	if v := c.Query("role"); v != "" {
		q = q.Where("role = ?", v)
	}

	var rules []models.NotificationRule
	if err := q.Find(&rules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rules, "total": len(rules)})
}

// CreateRule - POST /api/admin/notification-rules
func CreateRule(c *gin.Context) {
	var payload rulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !payload.validate(c) {
		return
	}

	rule := models.NotificationRule{
		EventTypeID:     payload.EventTypeID,
		Role:            payload.Role,
		EventFilter:     payload.EventFilter,
		InAppEnabled:    true,
		EmailTemplateID: payload.EmailTemplateID,
		Priority:        payload.Priority,
		IsActive:        true,
	}
	if payload.InAppEnabled != nil {
		rule.InAppEnabled = *payload.InAppEnabled
	}
	if payload.EmailEnabled != nil {
		rule.EmailEnabled = *payload.EmailEnabled
	}
	if payload.IsActive != nil {
		rule.IsActive = *payload.IsActive
	}

	if err := config.DB.Create(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// UpdateRule - PUT /api/admin/notification-rules/:id
func UpdateRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var rule models.NotificationRule
	if err := config.DB.First(&rule, "rule_id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}

	var payload rulePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !payload.validate(c) {
		return
	}

	rule.EventTypeID = payload.EventTypeID
	rule.Role = payload.Role
	rule.EventFilter = payload.EventFilter
	rule.EmailTemplateID = payload.EmailTemplateID
	rule.Priority = payload.Priority
	if payload.InAppEnabled != nil {
		rule.InAppEnabled = *payload.InAppEnabled
	}
	if payload.EmailEnabled != nil {
		rule.EmailEnabled = *payload.EmailEnabled
	}
	if payload.IsActive != nil {
		rule.IsActive = *payload.IsActive
	}

	if err := config.DB.Save(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule - DELETE /api/admin/notification-rules/:id
func DeleteRule(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	res := config.DB.Delete(&models.NotificationRule{}, "rule_id = ?", id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type smtpConfigPayload struct {
	SmtpHost     string  `json:"smtp_host"`
	SmtpPort     int     `json:"smtp_port"`
	SmtpUser     string  `json:"smtp_user"`
	SmtpPassword *string `json:"smtp_password"`
	UseTLS       *bool   `json:"use_tls"`
	FromAddress  string  `json:"from_address"`
	FromName     string  `json:"from_name"`
	APIKey       *string `json:"api_key"`
	APIEndpoint  *string `json:"api_endpoint"`
	IsActive     *bool   `json:"is_active"`
}

type smtpConfigResponse struct {
	models.SmtpConfig
	SmtpPassword string `json:"smtp_password,omitempty"`
	HasPassword  bool   `json:"has_password"`
}

func toSmtpResponse(cfg models.SmtpConfig) smtpConfigResponse {
	// The stored password never leaves the server.
	return smtpConfigResponse{SmtpConfig: cfg, HasPassword: cfg.SmtpPassword != ""}
}

// GetSmtpConfig - GET /api/admin/smtp-config
func GetSmtpConfig(c *gin.Context) {
	var cfg models.SmtpConfig
	if err := config.DB.First(&cfg).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"configured": false})
		return
	}
	c.JSON(http.StatusOK, toSmtpResponse(cfg))
}

// UpdateSmtpConfig - PUT /api/admin/smtp-config
// Upserts the singleton row. An omitted password keeps the stored one.
func UpdateSmtpConfig(c *gin.Context) {
	var payload smtpConfigPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cfg models.SmtpConfig
	err := config.DB.First(&cfg).Error

	cfg.SmtpHost = payload.SmtpHost
	cfg.SmtpPort = payload.SmtpPort
	cfg.SmtpUser = payload.SmtpUser
	cfg.FromAddress = payload.FromAddress
	cfg.FromName = payload.FromName
	cfg.APIKey = payload.APIKey
	cfg.APIEndpoint = payload.APIEndpoint
	if payload.SmtpPassword != nil {
		cfg.SmtpPassword = *payload.SmtpPassword
	}
	if payload.UseTLS != nil {
		cfg.UseTLS = *payload.UseTLS
	}
	if payload.IsActive != nil {
		cfg.IsActive = *payload.IsActive
	}

	if err != nil {
		err = config.DB.Create(&cfg).Error
	} else {
		err = config.DB.Save(&cfg).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSmtpResponse(cfg))
}

type testMailPayload struct {
	To string `json:"to" binding:"required,email"`
}

// SendTestMail - POST /api/admin/smtp-config/test
// Sends a probe message through the stored channel and records the attempt.
func SendTestMail(c *gin.Context) {
	var payload testMailPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient email is required"})
		return
	}

	var cfg models.SmtpConfig
	if err := config.DB.First(&cfg).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "smtp is not configured"})
		return
	}

	subject := "Lab Request API test message"
	body := "<p>This is a test message confirming the mail configuration works.</p>"
	if err := config.SendMail(cfg, []string{payload.To}, subject, body); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	config.DB.Model(&cfg).Update("test_email_sent_at", now)
	c.JSON(http.StatusOK, gin.H{"message": "test email sent", "sent_at": now})
}
