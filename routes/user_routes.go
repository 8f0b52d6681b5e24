package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/rescuelink/api-go/controllers"
)

func SetupUserRoutes(protected *gin.RouterGroup, userController *controllers.UserController, feedbackController *controllers.FeedbackController) {
	protected.GET("/profile", userController.GetProfile)
	protected.PUT("/profile", userController.UpdateProfile)
	protected.POST("/profile/avatar", userController.UploadAvatar)

	protected.POST("/feedback", feedbackController.SubmitFeedback)
}
