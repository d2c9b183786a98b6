package models

import (
	"time"
)

// Role values are a closed set; anything else is rejected at the boundary.
const (
	RoleSuperAdmin          = "super_admin"
	RoleCompanyAdmin        = "company_admin"
	RoleCompanyUser         = "company_user"
	RoleLaborStaff          = "labor_staff"
	RoleUniversityLogistics = "university_logistics"
	RoleCompanyLogistics    = "company_logistics"
)

var validRoles = map[string]bool{
	RoleSuperAdmin:          true,
	RoleCompanyAdmin:        true,
	RoleCompanyUser:         true,
	RoleLaborStaff:          true,
	RoleUniversityLogistics: true,
	RoleCompanyLogistics:    true,
}

// IsValidRole reports whether role belongs to the closed role set.
func IsValidRole(role string) bool {
	return validRoles[role]
}

// CompanyScopedRoles are only ever notified about their own company's requests.
var CompanyScopedRoles = []string{RoleCompanyAdmin, RoleCompanyUser, RoleCompanyLogistics}

// IsCompanyScopedRole reports whether the role is filtered by company at dispatch time.
func IsCompanyScopedRole(role string) bool {
	for _, r := range CompanyScopedRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	UserID       uint       `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email        string     `gorm:"column:email;unique" json:"email"`
	Password     string     `gorm:"column:password" json:"-"`
	Name         string     `gorm:"column:name" json:"name"`
	Role         string     `gorm:"column:role" json:"role"`
	CompanyID    *uint      `gorm:"column:company_id" json:"company_id,omitempty"`
	DepartmentID *uint      `gorm:"column:department_id" json:"department_id,omitempty"`
	IsActive     bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt    *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Company    *Company    `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

type Company struct {
	CompanyID uint       `gorm:"primaryKey;column:company_id" json:"company_id"`
	Name      string     `gorm:"column:name" json:"name"`
	ShortName string     `gorm:"column:short_name" json:"short_name"`
	IsActive  bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

type Department struct {
	DepartmentID        uint       `gorm:"primaryKey;column:department_id" json:"department_id"`
	Name                string     `gorm:"column:name" json:"name"`
	Description         *string    `gorm:"column:description" json:"description,omitempty"`
	SamplePickupAddress *string    `gorm:"column:sample_pickup_address" json:"sample_pickup_address,omitempty"`
	SamplePickupContact *string    `gorm:"column:sample_pickup_contact" json:"sample_pickup_contact,omitempty"`
	IsActive            bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt           *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

type RequestCategory struct {
	CategoryID  uint       `gorm:"primaryKey;column:category_id" json:"category_id"`
	Name        string     `gorm:"column:name" json:"name"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	IsActive    bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt   *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Company) TableName() string {
	return "companies"
}

func (Department) TableName() string {
	return "departments"
}

func (RequestCategory) TableName() string {
	return "request_categories"
}
