package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rescuelink/api-go/config"
	"github.com/rescuelink/api-go/controllers"
	"github.com/rescuelink/api-go/middleware"
	"github.com/rescuelink/api-go/storage"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, photos *storage.PhotoStore) {
	// Initialize controllers
	authController := controllers.NewAuthController(db, cfg)
	userController := controllers.NewUserController(db, cfg, photos)
	reportController := controllers.NewReportController(db, cfg, photos)
	feedbackController := controllers.NewFeedbackController(db)
	validationController := controllers.NewValidationController(db)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/auth/google", authController.GoogleLogin)

		public.GET("/reports", reportController.ListReports)
		public.GET("/reports/:id", reportController.GetReport)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		protected.POST("/logout", authController.Logout)
		protected.POST("/refresh-token", authController.RefreshToken)

		SetupUserRoutes(protected, userController, feedbackController)
		SetupReportRoutes(protected, reportController)
		SetupValidationRoutes(protected, validationController)
	}
}
