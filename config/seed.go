package config

import (
	"encoding/json"

	"gorm.io/gorm"

	"lab-request-api/models"
)

type eventTypeSeed struct {
	key         string
	name        string
	description string
	variables   []string
}

var lifecycleVariables = []string{"request_number", "old_status", "new_status", "company_name", "requester_name", "request_link"}

var eventTypeSeeds = []eventTypeSeed{
	{"status_change", "Status change", "Request status changed", lifecycleVariables},
	{"new_request", "New request created", "A new lab request entered the system",
		[]string{"request_number", "company_name", "requester_name", "category", "request_link"}},
	{"request_approved", "Request approved", "Company admin approved the request",
		[]string{"request_number", "approver_name", "company_name", "request_link"}},
	{"request_rejected", "Request rejected", "Company admin rejected the request",
		[]string{"request_number", "approver_name", "rejection_reason", "request_link"}},
	{"results_uploaded", "Results uploaded", "Lab uploaded the test results",
		[]string{"request_number", "uploader_name", "test_type", "request_link"}},
	{"deadline_approaching", "Deadline approaching", "Request deadline expires within 3 days",
		[]string{"request_number", "deadline", "days_remaining", "request_link"}},
	{"comment_added", "Comment added", "A new comment arrived on the request",
		[]string{"request_number", "commenter_name", "comment_text", "request_link"}},

	// Per-state lifecycle events, fanned out by the dispatcher worker.
	{"status_to_draft", "Draft", "Request moved to draft", lifecycleVariables},
	{"status_to_pending_approval", "Pending approval", "Request awaits company approval", lifecycleVariables},
	{"status_to_awaiting_shipment", "Awaiting shipment", "Request approved, sample awaits shipment", lifecycleVariables},
	{"status_to_in_transit", "In transit", "Sample shipment started", lifecycleVariables},
	{"status_to_arrived_at_provider", "Sample at lab", "Sample arrived at the provider", lifecycleVariables},
	{"status_to_in_progress", "Testing in progress", "Laboratory tests started", lifecycleVariables},
	{"status_to_validation_pending", "Validation pending", "Results await validation", lifecycleVariables},
	{"status_to_completed", "Completed", "Request completed, results validated", lifecycleVariables},
}

func seedEventTypes(db *gorm.DB) error {
	for _, seed := range eventTypeSeeds {
		vars, _ := json.Marshal(seed.variables)
		desc := seed.description
		row := models.NotificationEventType{
			EventKey:           seed.key,
			EventName:          seed.name,
			Description:        &desc,
			AvailableVariables: vars,
		}
		if err := db.Where("event_key = ?", seed.key).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

type templateSeed struct {
	name     string
	eventKey string
	subject  string
	body     string
	vars     []string
}

var templateSeeds = []templateSeed{
	{
		name:     "Default status change",
		eventKey: "status_change",
		subject:  "Lab request status change - {{request_number}}",
		body: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #4F46E5;">Status change</h2>
<p>Dear user,</p>
<p>The status of lab request <strong>{{request_number}}</strong> has changed:</p>
<ul>
<li><strong>Previous status:</strong> {{old_status}}</li>
<li><strong>New status:</strong> {{new_status}}</li>
</ul>
<p><strong>Company:</strong> {{company_name}}</p>
<p><strong>Requester:</strong> {{requester_name}}</p>
<p><a href="{{request_link}}">View request</a></p>
<hr><p style="color: #666; font-size: 12px;">This is an automated notification from the Lab Request System.</p>
</div>`,
		vars: lifecycleVariables,
	},
	{
		name:     "New request notice",
		eventKey: "new_request",
		subject:  "New lab request - {{request_number}}",
		body: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #10B981;">New lab request</h2>
<p>Dear user,</p>
<p>A new lab request entered the system:</p>
<ul>
<li><strong>Request number:</strong> {{request_number}}</li>
<li><strong>Company:</strong> {{company_name}}</li>
<li><strong>Requester:</strong> {{requester_name}}</li>
<li><strong>Category:</strong> {{category}}</li>
</ul>
<p><a href="{{request_link}}">View request</a></p>
<hr><p style="color: #666; font-size: 12px;">This is an automated notification from the Lab Request System.</p>
</div>`,
		vars: []string{"request_number", "company_name", "requester_name", "category", "request_link"},
	},
	{
		name:     "Approval notice",
		eventKey: "request_approved",
		subject:  "Request approved - {{request_number}}",
		body: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #10B981;">Request approved</h2>
<p>Dear user,</p>
<p>Lab request <strong>{{request_number}}</strong> was approved by <strong>{{approver_name}}</strong>.</p>
<p><strong>Company:</strong> {{company_name}}</p>
<p><a href="{{request_link}}">View request</a></p>
<hr><p style="color: #666; font-size: 12px;">This is an automated notification from the Lab Request System.</p>
</div>`,
		vars: []string{"request_number", "approver_name", "company_name", "request_link"},
	},
	{
		name:     "Rejection notice",
		eventKey: "request_rejected",
		subject:  "Request rejected - {{request_number}}",
		body: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #EF4444;">Request rejected</h2>
<p>Dear user,</p>
<p>Lab request <strong>{{request_number}}</strong> was rejected by <strong>{{approver_name}}</strong>.</p>
<p><strong>Reason:</strong> {{rejection_reason}}</p>
<p><a href="{{request_link}}">View request</a></p>
<hr><p style="color: #666; font-size: 12px;">This is an automated notification from the Lab Request System.</p>
</div>`,
		vars: []string{"request_number", "approver_name", "rejection_reason", "request_link"},
	},
	{
		name:     "Results uploaded notice",
		eventKey: "results_uploaded",
		subject:  "Test results - {{request_number}}",
		body: `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #8B5CF6;">Results uploaded</h2>
<p>Dear user,</p>
<p>Test results for lab request <strong>{{request_number}}</strong> were uploaded by <strong>{{uploader_name}}</strong>.</p>
<p><a href="{{request_link}}">View results</a></p>
<hr><p style="color: #666; font-size: 12px;">This is an automated notification from the Lab Request System.</p>
</div>`,
		vars: []string{"request_number", "uploader_name", "request_link"},
	},
}

type ruleSeed struct {
	eventKey string
	roles    []string
	priority int
}

var ruleSeeds = []ruleSeed{
	{"status_change", []string{
		models.RoleSuperAdmin, models.RoleCompanyAdmin, models.RoleCompanyUser,
		models.RoleLaborStaff, models.RoleUniversityLogistics, models.RoleCompanyLogistics,
	}, 10},
	{"new_request", []string{models.RoleSuperAdmin, models.RoleLaborStaff}, 20},
	{"request_approved", []string{models.RoleCompanyAdmin, models.RoleCompanyUser}, 30},
	{"request_rejected", []string{models.RoleCompanyAdmin, models.RoleCompanyUser}, 40},
	{"results_uploaded", []string{models.RoleCompanyAdmin, models.RoleCompanyUser}, 50},
}

func seedTemplatesAndRules(db *gorm.DB) error {
	for _, seed := range templateSeeds {
		var eventType models.NotificationEventType
		if err := db.Where("event_key = ?", seed.eventKey).First(&eventType).Error; err != nil {
			return err
		}

		vars, _ := json.Marshal(seed.vars)
		tmpl := models.NotificationTemplate{
			Name:          seed.name,
			EventTypeID:   eventType.EventTypeID,
			Subject:       seed.subject,
			Body:          seed.body,
			VariablesUsed: vars,
		}
		if err := db.Where("name = ? AND event_type_id = ?", seed.name, eventType.EventTypeID).
			FirstOrCreate(&tmpl).Error; err != nil {
			return err
		}

		for _, ruleSet := range ruleSeeds {
			if ruleSet.eventKey != seed.eventKey {
				continue
			}
			for _, role := range ruleSet.roles {
				templateID := tmpl.TemplateID
				rule := models.NotificationRule{
					EventTypeID:     eventType.EventTypeID,
					Role:            role,
					InAppEnabled:    true,
					EmailEnabled:    false,
					EmailTemplateID: &templateID,
					Priority:        ruleSet.priority,
					IsActive:        true,
				}
				if err := db.Where("event_type_id = ? AND role = ? AND priority = ?",
					eventType.EventTypeID, role, ruleSet.priority).
					FirstOrCreate(&rule).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
