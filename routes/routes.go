package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lab-request-api/controllers"
	"lab-request-api/middleware"
	"lab-request-api/models"
)

// SetupRoutes binds the full HTTP surface.
func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public
	api.POST("/auth/login", controllers.Login)

	// Authenticated
	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/auth/me", controllers.GetProfile)

		// Requests and lifecycle
		auth.GET("/requests", controllers.GetRequests)
		auth.GET("/requests/:id", controllers.GetRequest)
		auth.POST("/requests", middleware.RequireRole(
			models.RoleCompanyUser, models.RoleCompanyAdmin, models.RoleSuperAdmin,
		), controllers.CreateRequest)
		auth.PUT("/requests/:id/status", controllers.UpdateRequestStatus)
		auth.POST("/requests/:id/submit", controllers.SubmitRequest)
		auth.POST("/requests/:id/approve", middleware.RequireRole(
			models.RoleCompanyAdmin, models.RoleSuperAdmin,
		), controllers.ApproveRequest)
		auth.POST("/requests/:id/dispatch", middleware.RequireRole(
			models.RoleCompanyLogistics, models.RoleUniversityLogistics, models.RoleSuperAdmin,
		), controllers.DispatchRequest)
		auth.POST("/requests/:id/arrive", middleware.RequireRole(
			models.RoleCompanyAdmin, models.RoleSuperAdmin,
		), controllers.ArriveRequest)
		auth.POST("/requests/:id/start", middleware.RequireRole(
			models.RoleLaborStaff, models.RoleSuperAdmin,
		), controllers.StartRequest)

		// Lab worklists, assignments and validation
		auth.GET("/worklist", middleware.RequireRole(
			models.RoleLaborStaff, models.RoleSuperAdmin,
		), controllers.GetWorklist)
		auth.GET("/assignments/worklist", middleware.RequireRole(
			models.RoleLaborStaff, models.RoleSuperAdmin,
		), controllers.GetDepartmentWorklist)
		auth.GET("/requests/:id/assignments", controllers.GetRequestAssignments)
		auth.POST("/assignments/:id/complete", middleware.RequireRole(
			models.RoleLaborStaff, models.RoleSuperAdmin,
		), controllers.CompleteAssignment)
		auth.POST("/requests/:id/submit-validation", middleware.RequireRole(
			models.RoleLaborStaff, models.RoleSuperAdmin,
		), controllers.SubmitForValidation)
		auth.POST("/assignments/:id/validate", middleware.RequireRole(
			models.RoleSuperAdmin,
		), controllers.ValidateAssignment)
		auth.POST("/requests/:id/complete-validation", middleware.RequireRole(
			models.RoleSuperAdmin,
		), controllers.CompleteRequestValidation)

		// Inbox
		auth.GET("/notifications", controllers.GetNotifications)
		auth.GET("/notifications/unread-count", controllers.GetUnreadCount)
		auth.PUT("/notifications/read-all", controllers.MarkAllNotificationsRead)
		auth.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
		auth.DELETE("/notifications/:id", controllers.DeleteNotification)
		auth.POST("/notifications/notify", middleware.RequireRole(
			models.RoleSuperAdmin,
		), controllers.NotifyEvent)

		// Catalog
		auth.GET("/companies", controllers.GetCompanies)
		auth.GET("/departments", controllers.GetDepartments)
		auth.GET("/test-types", controllers.GetTestTypes)
		auth.GET("/request-categories", controllers.GetRequestCategories)

		// Administration
		admin := auth.Group("")
		admin.Use(middleware.RequireRole(models.RoleSuperAdmin))
		{
			admin.POST("/companies", controllers.CreateCompany)
			admin.PUT("/companies/:id", controllers.UpdateCompany)
			admin.POST("/departments", controllers.CreateDepartment)
			admin.PUT("/departments/:id", controllers.UpdateDepartment)
			admin.POST("/test-types", controllers.CreateTestType)
			admin.PUT("/test-types/:id", controllers.UpdateTestType)
			admin.POST("/request-categories", controllers.CreateRequestCategory)
			admin.PUT("/request-categories/:id", controllers.UpdateRequestCategory)

			admin.GET("/admin/users", controllers.GetUsers)
			admin.POST("/admin/users", controllers.CreateUser)
			admin.PUT("/admin/users/:id", controllers.UpdateUser)
			admin.DELETE("/admin/users/:id", controllers.DeactivateUser)

			admin.GET("/admin/notification-events", controllers.GetEventTypes)
			admin.PUT("/admin/notification-events/:id", controllers.UpdateEventType)
			admin.GET("/admin/notification-templates", controllers.GetTemplates)
			admin.POST("/admin/notification-templates", controllers.CreateTemplate)
			admin.PUT("/admin/notification-templates/:id", controllers.UpdateTemplate)
			admin.DELETE("/admin/notification-templates/:id", controllers.DeleteTemplate)
			admin.GET("/admin/notification-rules", controllers.GetRules)
			admin.POST("/admin/notification-rules", controllers.CreateRule)
			admin.PUT("/admin/notification-rules/:id", controllers.UpdateRule)
			admin.DELETE("/admin/notification-rules/:id", controllers.DeleteRule)
			admin.GET("/admin/smtp-config", controllers.GetSmtpConfig)
			admin.PUT("/admin/smtp-config", controllers.UpdateSmtpConfig)
			admin.POST("/admin/smtp-config/test", controllers.SendTestMail)
		}
	}
}
