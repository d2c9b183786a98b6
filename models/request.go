package models

import (
	"time"
)

// LabRequest is a sample-analysis submission moving through the lifecycle
// state machine. Status only changes through services.RequestLifecycle.
type LabRequest struct {
	RequestID     uint   `gorm:"primaryKey;column:request_id" json:"request_id"`
	RequestNumber string `gorm:"column:request_number;unique" json:"request_number"`
	InternalID    *string `gorm:"column:internal_id" json:"internal_id,omitempty"`

	UserID     uint  `gorm:"column:user_id" json:"user_id"`
	CompanyID  uint  `gorm:"column:company_id" json:"company_id"`
	CategoryID *uint `gorm:"column:category_id" json:"category_id,omitempty"`

	SampleID          string     `gorm:"column:sample_id" json:"sample_id"`
	SampleDescription *string    `gorm:"column:sample_description" json:"sample_description,omitempty"`
	SamplingDatetime  *time.Time `gorm:"column:sampling_datetime" json:"sampling_datetime,omitempty"`
	SamplingLocation  *string    `gorm:"column:sampling_location" json:"sampling_location,omitempty"`

	LogisticsType   string  `gorm:"column:logistics_type;default:sender" json:"logistics_type"`
	ShippingAddress *string `gorm:"column:shipping_address" json:"shipping_address,omitempty"`
	ContactPerson   *string `gorm:"column:contact_person" json:"contact_person,omitempty"`
	ContactPhone    *string `gorm:"column:contact_phone" json:"contact_phone,omitempty"`

	Urgency             string     `gorm:"column:urgency;default:normal" json:"urgency"`
	Deadline            *time.Time `gorm:"column:deadline" json:"deadline,omitempty"`
	SpecialInstructions *string    `gorm:"column:special_instructions" json:"special_instructions,omitempty"`
	TotalPrice          float64    `gorm:"column:total_price;default:0" json:"total_price"`

	Status     string     `gorm:"column:status;default:draft" json:"status"`
	ApprovedBy *uint      `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	User        *User            `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Company     *Company         `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
	Category    *RequestCategory `gorm:"foreignKey:CategoryID;references:CategoryID" json:"category,omitempty"`
	Approver    *User            `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	Assignments []TestAssignment `gorm:"foreignKey:RequestID" json:"assignments,omitempty"`
}

func (LabRequest) TableName() string {
	return "lab_requests"
}
