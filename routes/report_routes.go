package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rescuelink/api-go/controllers"
)

func SetupReportRoutes(protected *gin.RouterGroup, reportController *controllers.ReportController) {
	reports := protected.Group("/reports")
	{
		reports.POST("", reportController.CreateReport)
		reports.POST("/:id/status", reportController.UpdateStatus)
	}

	protected.GET("/dashboard", reportController.Dashboard)
}
