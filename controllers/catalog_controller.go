package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
)

// Catalog endpoints: companies, departments, test types and request
// categories. Reads are open to every authenticated user so the request form
// can be populated; writes are superuser only (enforced in routes).

// GetCompanies - GET /api/companies
func GetCompanies(c *gin.Context) {
	var companies []models.Company
	if err := config.DB.Where("deleted_at IS NULL").Order("name ASC").Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": companies, "total": len(companies)})
}

type companyPayload struct {
	Name      string `json:"name" binding:"required"`
	ShortName string `json:"short_name" binding:"required"`
	IsActive  *bool  `json:"is_active"`
}

// CreateCompany - POST /api/companies
func CreateCompany(c *gin.Context) {
	var payload companyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := models.Company{Name: payload.Name, ShortName: payload.ShortName, IsActive: true}
	if payload.IsActive != nil {
		company.IsActive = *payload.IsActive
	}
	if err := config.DB.Create(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, company)
}

// UpdateCompany - PUT /api/companies/:id
func UpdateCompany(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var company models.Company
	if err := config.DB.First(&company, "company_id = ? AND deleted_at IS NULL", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "company not found"})
		return
	}

	var payload companyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company.Name = payload.Name
	company.ShortName = payload.ShortName
	if payload.IsActive != nil {
		company.IsActive = *payload.IsActive
	}
	if err := config.DB.Save(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, company)
}

// GetDepartments - GET /api/departments
func GetDepartments(c *gin.Context) {
	var departments []models.Department
	if err := config.DB.Where("deleted_at IS NULL").Order("name ASC").Find(&departments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": departments, "total": len(departments)})
}

type departmentPayload struct {
	Name                string  `json:"name" binding:"required"`
	Description         *string `json:"description"`
	SamplePickupAddress *string `json:"sample_pickup_address"`
	SamplePickupContact *string `json:"sample_pickup_contact"`
	IsActive            *bool   `json:"is_active"`
}

// CreateDepartment - POST /api/departments
func CreateDepartment(c *gin.Context) {
	var payload departmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept := models.Department{
		Name:                payload.Name,
		Description:         payload.Description,
		SamplePickupAddress: payload.SamplePickupAddress,
		SamplePickupContact: payload.SamplePickupContact,
		IsActive:            true,
	}
	if payload.IsActive != nil {
		dept.IsActive = *payload.IsActive
	}
	if err := config.DB.Create(&dept).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dept)
}

// UpdateDepartment - PUT /api/departments/:id
func UpdateDepartment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var dept models.Department
	if err := config.DB.First(&dept, "department_id = ? AND deleted_at IS NULL", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
		return
	}

	var payload departmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dept.Name = payload.Name
	dept.Description = payload.Description
	dept.SamplePickupAddress = payload.SamplePickupAddress
	dept.SamplePickupContact = payload.SamplePickupContact
	if payload.IsActive != nil {
		dept.IsActive = *payload.IsActive
	}
	if err := config.DB.Save(&dept).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dept)
}

// GetTestTypes - GET /api/test-types
func GetTestTypes(c *gin.Context) {
	q := config.DB.Preload("Department").Where("deleted_at IS NULL")
	if v := c.Query("department_id"); v != "" {
		q = q.Where("department_id = ?", v)
	}

	var testTypes []models.TestType
	if err := q.Order("name ASC").Find(&testTypes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": testTypes, "total": len(testTypes)})
}

type testTypePayload struct {
	Name           string  `json:"name" binding:"required"`
	Description    *string `json:"description"`
	DepartmentID   uint    `json:"department_id" binding:"required"`
	Price          float64 `json:"price"`
	TurnaroundDays int     `json:"turnaround_days"`
	IsActive       *bool   `json:"is_active"`
}

// CreateTestType - POST /api/test-types
func CreateTestType(c *gin.Context) {
	var payload testTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dept models.Department
	if err := config.DB.First(&dept, "department_id = ? AND deleted_at IS NULL", payload.DepartmentID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown department"})
		return
	}

	tt := models.TestType{
		Name:           payload.Name,
		Description:    payload.Description,
		DepartmentID:   payload.DepartmentID,
		Price:          payload.Price,
		TurnaroundDays: payload.TurnaroundDays,
		IsActive:       true,
	}
	if payload.IsActive != nil {
		tt.IsActive = *payload.IsActive
	}
	if err := config.DB.Create(&tt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, tt)
}

// UpdateTestType - PUT /api/test-types/:id
func UpdateTestType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var tt models.TestType
	if err := config.DB.First(&tt, "test_type_id = ? AND deleted_at IS NULL", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test type not found"})
		return
	}

	var payload testTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tt.Name = payload.Name
	tt.Description = payload.Description
	tt.DepartmentID = payload.DepartmentID
	tt.Price = payload.Price
	tt.TurnaroundDays = payload.TurnaroundDays
	if payload.IsActive != nil {
		tt.IsActive = *payload.IsActive
	}
	if err := config.DB.Save(&tt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tt)
}

// GetRequestCategories - GET /api/request-categories
func GetRequestCategories(c *gin.Context) {
	var categories []models.RequestCategory
	if err := config.DB.Where("deleted_at IS NULL AND is_active = 1").
		Order("name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": categories, "total": len(categories)})
}

type categoryPayload struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CreateRequestCategory - POST /api/request-categories
func CreateRequestCategory(c *gin.Context) {
	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.RequestCategory{
		Name:        payload.Name,
		Description: payload.Description,
		IsActive:    true,
	}
	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}
	if err := config.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateRequestCategory - PUT /api/request-categories/:id
func UpdateRequestCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var category models.RequestCategory
	if err := config.DB.First(&category, "category_id = ? AND deleted_at IS NULL", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category.Name = payload.Name
	category.Description = payload.Description
	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}
	if err := config.DB.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, category)
}
