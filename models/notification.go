package models

import (
	"encoding/json"
	"time"
)

// NotificationEventType is an immutable catalog row created at bootstrap.
type NotificationEventType struct {
	EventTypeID        uint            `gorm:"primaryKey;column:event_type_id" json:"event_type_id"`
	EventKey           string          `gorm:"column:event_key;unique" json:"event_key"`
	EventName          string          `gorm:"column:event_name" json:"event_name"`
	Description        *string         `gorm:"column:description" json:"description,omitempty"`
	AvailableVariables json.RawMessage `gorm:"column:available_variables" json:"available_variables"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (NotificationEventType) TableName() string {
	return "notification_event_types"
}

type NotificationTemplate struct {
	TemplateID    uint            `gorm:"primaryKey;column:template_id" json:"template_id"`
	Name          string          `gorm:"column:name" json:"name"`
	EventTypeID   uint            `gorm:"column:event_type_id" json:"event_type_id"`
	Subject       string          `gorm:"column:subject" json:"subject"`
	Body          string          `gorm:"column:body" json:"body"`
	VariablesUsed json.RawMessage `gorm:"column:variables_used" json:"variables_used"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (NotificationTemplate) TableName() string {
	return "notification_templates"
}

// NotificationRule maps (event type, role) to channel behavior. Multiple rules
// may exist for the same pair; the active one with the highest priority wins.
type NotificationRule struct {
	RuleID          uint            `gorm:"primaryKey;column:rule_id" json:"rule_id"`
	EventTypeID     uint            `gorm:"column:event_type_id;index" json:"event_type_id"`
	Role            string          `gorm:"column:role" json:"role"`
	EventFilter     json.RawMessage `gorm:"column:event_filter" json:"event_filter,omitempty"`
	InAppEnabled    bool            `gorm:"column:in_app_enabled;default:true" json:"in_app_enabled"`
	EmailEnabled    bool            `gorm:"column:email_enabled;default:false" json:"email_enabled"`
	EmailTemplateID *uint           `gorm:"column:email_template_id" json:"email_template_id,omitempty"`
	Priority        int             `gorm:"column:priority;default:0" json:"priority"`
	IsActive        bool            `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (NotificationRule) TableName() string {
	return "notification_rules"
}

// Notification is one delivered in-app message. read_at IS NULL means unread.
type Notification struct {
	NotificationID uint            `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID         uint            `gorm:"column:user_id;index" json:"user_id"`
	EventTypeID    uint            `gorm:"column:event_type_id" json:"event_type_id"`
	EventData      json.RawMessage `gorm:"column:event_data" json:"event_data,omitempty"`
	Message        string          `gorm:"column:message" json:"message"`
	LinkURL        string          `gorm:"column:link_url" json:"link_url"`
	RequestID      *uint           `gorm:"column:request_id" json:"request_id,omitempty"`
	ReadAt         *time.Time      `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// IsRead reports whether the notification has been read.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}
