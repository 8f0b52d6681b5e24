package controllers

import (
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rescuelink/api-go/apperrors"
	"github.com/rescuelink/api-go/config"
	"github.com/rescuelink/api-go/lifecycle"
	"github.com/rescuelink/api-go/models"
	"github.com/rescuelink/api-go/search"
	"github.com/rescuelink/api-go/submission"
	"github.com/rescuelink/api-go/utils"
)

type ReportController struct {
	DB        *gorm.DB
	Engine    *search.Engine
	Lifecycle *lifecycle.Manager
	Photos    PhotoStorage
	Cfg       *config.Config
}

type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

func NewReportController(db *gorm.DB, cfg *config.Config, photos PhotoStorage) *ReportController {
	return &ReportController{
		DB:        db,
		Engine:    search.NewEngine(db, cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize),
		Lifecycle: lifecycle.NewManager(db),
		Photos:    photos,
		Cfg:       cfg,
	}
}

// ListReports is the public listing and search endpoint. Every criterion is
// optional; absent ones match everything.
func (rc *ReportController) ListReports(c *gin.Context) {
	criteria := parseCriteria(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))

	result, err := rc.Engine.Search(criteria, page, pageSize)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       result,
		Pagination: paginationMeta(result),
	})
}

// GetReport returns one report's public projection.
func (rc *ReportController) GetReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid report id"})
		return
	}

	var report models.Report
	if err := rc.DB.First(&report, id).Error; err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: report})
}

// CreateReport handles a multipart report submission. Field errors are
// accumulated across the whole form, photo included, so one response carries
// everything the form needs to display.
func (rc *ReportController) CreateReport(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	input := submission.ReportInput{
		Name:        c.PostForm("name"),
		Age:         c.PostForm("age"),
		Gender:      c.PostForm("gender"),
		Location:    c.PostForm("location"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		LastSeenAt:  c.PostForm("last_seen_at"),
	}

	errs := &apperrors.ValidationErrors{}
	report, fieldErrs := submission.ValidateReport(input, time.Now())
	if fieldErrs != nil {
		errs.Fields = append(errs.Fields, fieldErrs.Fields...)
	}

	var photoData []byte
	var photoType string
	file, fileErr := c.FormFile("photo")
	if fileErr == nil {
		var readErr error
		photoData, photoType, readErr = rc.readPhoto(file, errs)
		if readErr != nil {
			writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, readErr))
			return
		}
	}

	if errs.HasErrors() {
		writeDomainError(c, errs)
		return
	}

	var photoKey string
	if photoData != nil {
		url, key, err := rc.storePhoto(c, user.UserID, file.Filename, photoData, photoType)
		if err != nil {
			writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err))
			return
		}
		report.PhotoURL = url
		photoKey = key
	}

	report.ReporterID = user.UserID
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(report).Error
	})
	if err != nil {
		// The photo was already uploaded; don't leave it orphaned.
		if photoKey != "" {
			if delErr := rc.Photos.Delete(c.Request.Context(), photoKey); delErr != nil {
				zap.L().Warn("failed to remove photo of aborted submission",
					zap.String("key", photoKey), zap.Error(delErr))
			}
		}
		writeDomainError(c, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err))
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    gin.H{"id": report.ID, "status": report.Status},
		Message: "Report submitted successfully",
	})
}

// UpdateStatus requests a lifecycle transition on a report.
func (rc *ReportController) UpdateStatus(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid report id"})
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	actor := lifecycle.Actor{UserID: user.UserID, Admin: user.IsAdmin()}
	report, err := rc.Lifecycle.Transition(actor, uint(id), req.Status)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    report,
		Message: "Report status updated",
	})
}

// Dashboard lists reports for the signed-in user: admins see everything,
// everyone else sees their own submissions.
func (rc *ReportController) Dashboard(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	criteria := parseCriteria(c)
	if !user.IsAdmin() {
		criteria.ReporterID = user.UserID
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))

	result, err := rc.Engine.Search(criteria, page, pageSize)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       result,
		Pagination: paginationMeta(result),
	})
}

// readPhoto validates and loads an attachment, normalizing it to JPEG. A
// normalization failure keeps the original validated bytes and logs a
// warning; the submission itself continues.
func (rc *ReportController) readPhoto(file *multipart.FileHeader, errs *apperrors.ValidationErrors) ([]byte, string, error) {
	maxBytes := rc.Cfg.Upload.MaxPhotoBytes

	f, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, "", err
	}

	contentType := http.DetectContentType(data)
	before := len(errs.Fields)
	submission.ValidatePhoto(contentType, file.Size, maxBytes, errs)
	if len(errs.Fields) > before {
		return nil, "", nil
	}

	normalized, normalizedType, err := submission.Normalize(data)
	if err != nil {
		zap.L().Warn("photo normalization failed, storing original bytes",
			zap.String("content_type", contentType), zap.Error(err))
		return data, contentType, nil
	}
	return normalized, normalizedType, nil
}

func (rc *ReportController) storePhoto(c *gin.Context, reporterID uint, fileName string, data []byte, contentType string) (string, string, error) {
	if contentType == "image/jpeg" {
		fileName = "photo.jpg"
	}
	key := rc.Photos.ReportPhotoKey(reporterID, fileName)
	url, err := rc.Photos.Put(c.Request.Context(), key, contentType, data)
	return url, key, err
}

func parseCriteria(c *gin.Context) search.Criteria {
	criteria := search.Criteria{
		Name:     c.Query("name"),
		Location: c.Query("location"),
		Gender:   c.Query("gender"),
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}
	if v, err := strconv.Atoi(c.Query("age_min")); err == nil {
		criteria.AgeMin = &v
	}
	if v, err := strconv.Atoi(c.Query("age_max")); err == nil {
		criteria.AgeMax = &v
	}
	return criteria
}

func paginationMeta(page *search.Page) *PaginationMeta {
	totalPages := 0
	if page.PageSize > 0 {
		totalPages = int(math.Ceil(float64(page.Total) / float64(page.PageSize)))
	}
	return &PaginationMeta{
		CurrentPage: page.Page,
		PageSize:    page.PageSize,
		TotalItems:  page.Total,
		TotalPages:  totalPages,
	}
}
