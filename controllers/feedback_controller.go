package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rescuelink/api-go/apperrors"
	"github.com/rescuelink/api-go/models"
	"github.com/rescuelink/api-go/utils"
)

type FeedbackController struct {
	DB *gorm.DB
}

type FeedbackRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func NewFeedbackController(db *gorm.DB) *FeedbackController {
	return &FeedbackController{DB: db}
}

// SubmitFeedback records a feedback message from a signed-in user. Delivery
// to the operators happens out of band; the record is the source of truth.
func (fc *FeedbackController) SubmitFeedback(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input FeedbackRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	subject := strings.TrimSpace(input.Subject)
	message := strings.TrimSpace(input.Message)

	errs := &apperrors.ValidationErrors{}
	if subject == "" {
		errs.Add("subject", "subject is required")
	} else if len(subject) > 100 {
		errs.Add("subject", "subject must be at most 100 characters")
	}
	if message == "" {
		errs.Add("message", "message is required")
	}
	if errs.HasErrors() {
		writeDomainError(c, errs)
		return
	}

	feedback := models.Feedback{
		UserID:  user.UserID,
		Subject: subject,
		Message: message,
	}
	if err := fc.DB.Create(&feedback).Error; err != nil {
		writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err))
		return
	}

	zap.L().Info("feedback received",
		zap.Uint("user_id", user.UserID),
		zap.Uint("feedback_id", feedback.ID),
	)

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Message: "Thanks for your feedback",
		Data:    gin.H{"id": feedback.ID},
	})
}
