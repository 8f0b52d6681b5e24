package controllers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rescuelink/api-go/apperrors"
	"github.com/rescuelink/api-go/config"
	"github.com/rescuelink/api-go/models"
	"github.com/rescuelink/api-go/submission"
	"github.com/rescuelink/api-go/utils"
)

type UserController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Photos PhotoStorage
}

type UpdateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	LinkedIn string `json:"linkedin"`

	EmailNotifications *bool `json:"email_notifications"`
	PushNotifications  *bool `json:"push_notifications"`

	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func NewUserController(db *gorm.DB, cfg *config.Config, photos PhotoStorage) *UserController {
	return &UserController{DB: db, Cfg: cfg, Photos: photos}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var dbUser models.User
	if err := uc.DB.First(&dbUser, user.UserID).Error; err != nil {
		writeDomainError(c, err)
		return
	}

	var reportCount int64
	uc.DB.Model(&models.Report{}).Where("reporter_id = ?", dbUser.ID).Count(&reportCount)

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data: gin.H{
			"user":         dbUser,
			"report_count": reportCount,
		},
	})
}

// UpdateProfile edits account fields, social links, notification preferences
// and, when both password fields are supplied, the credential itself.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input UpdateProfileRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var dbUser models.User
	if err := uc.DB.First(&dbUser, user.UserID).Error; err != nil {
		writeDomainError(c, err)
		return
	}

	errs := &apperrors.ValidationErrors{}
	profile, profileErrs := submission.ValidateProfile(submission.ProfileInput{
		Username: input.Username,
		Email:    input.Email,
		Twitter:  input.Twitter,
		Facebook: input.Facebook,
		LinkedIn: input.LinkedIn,
	})
	if profileErrs != nil {
		errs.Fields = append(errs.Fields, profileErrs.Fields...)
	}

	changingPassword := input.NewPassword != ""
	if changingPassword {
		if len(input.NewPassword) < 6 {
			errs.Add("new_password", "password must be at least 6 characters")
		}
		if input.CurrentPassword == "" {
			errs.Add("current_password", "current password is required to change it")
		} else if dbUser.Password == nil ||
			bcrypt.CompareHashAndPassword([]byte(*dbUser.Password), []byte(input.CurrentPassword)) != nil {
			errs.Add("current_password", "current password is incorrect")
		}
	}

	if errs.HasErrors() {
		writeDomainError(c, errs)
		return
	}

	updates := map[string]interface{}{
		"username":     profile.Username,
		"email":        profile.Email,
		"twitter":      profile.Twitter,
		"facebook":     profile.Facebook,
		"linked_in":    profile.LinkedIn,
		"last_seen_at": time.Now(),
	}
	if input.EmailNotifications != nil {
		updates["email_notifications"] = *input.EmailNotifications
	}
	if input.PushNotifications != nil {
		updates["push_notifications"] = *input.PushNotifications
	}
	if changingPassword {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password", "success": false})
			return
		}
		updates["password"] = string(hashed)
	}

	if err := uc.DB.Model(&dbUser).Updates(updates).Error; err != nil {
		writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err))
		return
	}

	zap.L().Info("profile updated", zap.Uint("user_id", dbUser.ID))

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Profile updated successfully",
		Data:    dbUser,
	})
}

// UploadAvatar accepts a multipart avatar image through the same validate /
// normalize / store path as report photos.
func (uc *UserController) UploadAvatar(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required", "success": false})
		return
	}

	f, err := file.Open()
	if err != nil {
		writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, uc.Cfg.Upload.MaxPhotoBytes+1))
	if err != nil {
		writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err))
		return
	}

	errs := &apperrors.ValidationErrors{}
	contentType := http.DetectContentType(data)
	submission.ValidatePhoto(contentType, file.Size, uc.Cfg.Upload.MaxPhotoBytes, errs)
	if errs.HasErrors() {
		writeDomainError(c, errs)
		return
	}

	normalized, normalizedType, err := submission.Normalize(data)
	if err != nil {
		zap.L().Warn("avatar normalization failed, storing original bytes", zap.Error(err))
		normalized, normalizedType = data, contentType
	}

	key := uc.Photos.AvatarKey(user.UserID, file.Filename)
	url, err := uc.Photos.Put(c.Request.Context(), key, normalizedType, normalized)
	if err != nil {
		writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err))
		return
	}

	if err := uc.DB.Model(&models.User{}).Where("id = ?", user.UserID).
		Update("avatar", url).Error; err != nil {
		writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err))
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Avatar updated successfully",
		Data:    gin.H{"avatar": url},
	})
}
