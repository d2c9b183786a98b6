package models

import (
	"time"
)

// TestAssignment statuses.
const (
	AssignmentPending           = "pending"
	AssignmentInProgress        = "in_progress"
	AssignmentCompleted         = "completed"
	AssignmentValidationPending = "validation_pending"
)

// TestAssignment is one department-scoped unit of work (a single test type)
// belonging to a LabRequest. One row is created per selected test type at
// request creation.
type TestAssignment struct {
	AssignmentID uint `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	RequestID    uint `gorm:"column:request_id;index" json:"request_id"`
	TestTypeID   uint `gorm:"column:test_type_id" json:"test_type_id"`

	Status        string  `gorm:"column:status;default:pending" json:"status"`
	ResultSummary *string `gorm:"column:result_summary" json:"result_summary,omitempty"`

	CompletedBy *uint      `gorm:"column:completed_by" json:"completed_by,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ValidatedBy *uint      `gorm:"column:validated_by" json:"validated_by,omitempty"`
	ValidatedAt *time.Time `gorm:"column:validated_at" json:"validated_at,omitempty"`

	RejectionReason *string `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	TestType *TestType   `gorm:"foreignKey:TestTypeID;references:TestTypeID" json:"test_type,omitempty"`
	Request  *LabRequest `gorm:"foreignKey:RequestID;references:RequestID" json:"request,omitempty"`
}

func (TestAssignment) TableName() string {
	return "test_assignments"
}

type TestType struct {
	TestTypeID     uint       `gorm:"primaryKey;column:test_type_id" json:"test_type_id"`
	Name           string     `gorm:"column:name" json:"name"`
	Description    *string    `gorm:"column:description" json:"description,omitempty"`
	DepartmentID   uint       `gorm:"column:department_id" json:"department_id"`
	Price          float64    `gorm:"column:price;default:0" json:"price"`
	TurnaroundDays int        `gorm:"column:turnaround_days;default:0" json:"turnaround_days"`
	IsActive       bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

func (TestType) TableName() string {
	return "test_types"
}
