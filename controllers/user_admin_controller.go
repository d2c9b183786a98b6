package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lab-request-api/config"
	"lab-request-api/models"
)

// GetUsers - GET /api/admin/users
func GetUsers(c *gin.Context) {
	q := config.DB.Preload("Company").Preload("Department").
		Where("deleted_at IS NULL")
	if v := c.Query("role"); v != "" {
		q = q.Where("role = ?", v)
	}
	if v := c.Query("company_id"); v != "" {
		q = q.Where("company_id = ?", v)
	}

	var users []models.User
	if err := q.Order("user_id ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users, "total": len(users)})
}

type createUserPayload struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Name         string `json:"name" binding:"required"`
	Role         string `json:"role" binding:"required"`
	CompanyID    *uint  `json:"company_id"`
	DepartmentID *uint  `json:"department_id"`
}

// CreateUser - POST /api/admin/users
func CreateUser(c *gin.Context) {
	var payload createUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidRole(payload.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	if models.IsCompanyScopedRole(payload.Role) && payload.CompanyID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company-scoped roles require a company"})
		return
	}
	if payload.Role == models.RoleLaborStaff && payload.DepartmentID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lab staff require a department"})
		return
	}

	hashed, err := HashPassword(payload.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := models.User{
		Email:        payload.Email,
		Password:     hashed,
		Name:         payload.Name,
		Role:         payload.Role,
		CompanyID:    payload.CompanyID,
		DepartmentID: payload.DepartmentID,
		IsActive:     true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

type updateUserPayload struct {
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	CompanyID    *uint   `json:"company_id"`
	DepartmentID *uint   `json:"department_id"`
	Password     *string `json:"password"`
	IsActive     *bool   `json:"is_active"`
}

// UpdateUser - PUT /api/admin/users/:id
func UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.First(&user, "user_id = ? AND deleted_at IS NULL", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var payload updateUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.Name != "" {
		user.Name = payload.Name
	}
	if payload.Role != "" {
		if !models.IsValidRole(payload.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
			return
		}
		user.Role = payload.Role
	}
	if payload.CompanyID != nil {
		user.CompanyID = payload.CompanyID
	}
	if payload.DepartmentID != nil {
		user.DepartmentID = payload.DepartmentID
	}
	if payload.IsActive != nil {
		user.IsActive = *payload.IsActive
	}
	if payload.Password != nil && *payload.Password != "" {
		hashed, err := HashPassword(*payload.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}
		user.Password = hashed
	}

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeactivateUser - DELETE /api/admin/users/:id
// Soft delete: the row stays for audit, the account stops authenticating.
func DeactivateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	uid, _ := currentUserID(c)
	if uid == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate your own account"})
		return
	}

	res := config.DB.Model(&models.User{}).
		Where("user_id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{"is_active": false, "deleted_at": time.Now()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deactivated"})
}
