package routes

import (
	"warehouse-accreditation-api/controllers"
	"warehouse-accreditation-api/middleware"
	"warehouse-accreditation-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Warehouse Accreditation API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/refresh", controllers.RefreshToken)
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Accreditation applications
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.GET("/:id/history", controllers.GetApplicationHistory)
				applications.GET("/:id/rejections", controllers.GetApplicationRejections)

				// Only applicants create applications
				applications.POST("", middleware.RequireRole(models.RoleApplicant), controllers.CreateApplication)

				// Officers and admins open review chains
				applications.POST("/:id/delegate",
					middleware.RequireRole(models.RoleOfficer, models.RoleAdmin),
					controllers.DelegateReview)

				// Applicants drive corrections
				applications.POST("/:id/unlock-requests",
					middleware.RequireRole(models.RoleApplicant),
					controllers.RequestUnlock)
				applications.POST("/:id/resubmissions",
					middleware.RequireRole(models.RoleApplicant),
					controllers.RecordResubmission)
			}

			// Review assignments
			assignments := protected.Group("/assignments")
			{
				assignments.GET("", controllers.GetAssignments)
				assignments.GET("/:id", controllers.GetAssignment)
				assignments.GET("/:id/chain", controllers.GetAssignmentChain)

				// The assigned reviewer works the cycle; the service layer
				// enforces assignment ownership beyond the role gate.
				assignments.POST("/:id/decisions", controllers.SubmitFieldDecisions)
				assignments.POST("/:id/submit", controllers.SubmitReview)

				// Finalizing is restricted to reviewer roles
				assignments.POST("/:id/finalize",
					middleware.RequireRole(models.RoleOfficer, models.RoleHeadOfDepartment,
						models.RoleExpert, models.RoleAdmin),
					controllers.FinalizeAssignment)
			}

			// Supporting documents
			documents := protected.Group("/documents")
			{
				documents.POST("/upload", controllers.UploadDocument)
				documents.GET("/download/:file_id", controllers.DownloadDocument)
				documents.DELETE("/:file_id", controllers.DeleteDocument)
			}
		}
	}
}
