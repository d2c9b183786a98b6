package models

import (
	"time"
)

// SmtpConfig is the singleton outbound-email channel configuration. When
// APIKey is set the HTTP API channel is used, otherwise SMTP login+send.
// Read-only at dispatch time.
type SmtpConfig struct {
	ConfigID        uint       `gorm:"primaryKey;column:config_id" json:"config_id"`
	SmtpHost        string     `gorm:"column:smtp_host" json:"smtp_host"`
	SmtpPort        int        `gorm:"column:smtp_port;default:587" json:"smtp_port"`
	SmtpUser        string     `gorm:"column:smtp_user" json:"smtp_user"`
	SmtpPassword    string     `gorm:"column:smtp_password" json:"-"`
	UseTLS          bool       `gorm:"column:use_tls;default:true" json:"use_tls"`
	FromAddress     string     `gorm:"column:from_address" json:"from_address"`
	FromName        string     `gorm:"column:from_name;default:Lab Request System" json:"from_name"`
	APIKey          *string    `gorm:"column:api_key" json:"-"`
	APIEndpoint     *string    `gorm:"column:api_endpoint" json:"api_endpoint,omitempty"`
	IsActive        bool       `gorm:"column:is_active;default:false" json:"is_active"`
	TestEmailSentAt *time.Time `gorm:"column:test_email_sent_at" json:"test_email_sent_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (SmtpConfig) TableName() string {
	return "smtp_config"
}

// UsesAPIChannel reports whether delivery should go through the HTTP API
// channel instead of SMTP.
func (s SmtpConfig) UsesAPIChannel() bool {
	return s.APIKey != nil && *s.APIKey != ""
}
