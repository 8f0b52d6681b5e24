package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rescuelink/api-go/config"
	"github.com/rescuelink/api-go/models"
	"github.com/rescuelink/api-go/utils"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Report{}))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		ServiceName: "rescuelink-test",
		Upload:      config.UploadConfig{MaxPhotoBytes: 10 * 1024 * 1024},
		Pagination:  config.PaginationConfig{DefaultPageSize: 12, MaxPageSize: 50},
	}
}

// fakePhotoStore records puts and deletes in memory.
type fakePhotoStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	deleted      []string
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (f *fakePhotoStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	f.objects[key] = append([]byte(nil), data...)
	f.contentTypes[key] = contentType
	return "https://photos.test/" + key, nil
}

func (f *fakePhotoStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	delete(f.contentTypes, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakePhotoStore) ReportPhotoKey(reporterID uint, fileName string) string {
	return fmt.Sprintf("reports/%d/%s", reporterID, fileName)
}

func (f *fakePhotoStore) AvatarKey(userID uint, fileName string) string {
	return fmt.Sprintf("users/%d/avatar/%s", userID, fileName)
}

// newTestRouter wires the report endpoints behind a stub auth middleware that
// injects the given claims directly.
func newTestRouter(db *gorm.DB, claims *utils.UserClaims) (*gin.Engine, *fakePhotoStore) {
	gin.SetMode(gin.TestMode)
	photos := newFakePhotoStore()
	rc := NewReportController(db, testConfig(), photos)

	r := gin.New()
	if claims != nil {
		r.Use(func(c *gin.Context) {
			c.Set(string(utils.UserContextKey), claims)
			c.Next()
		})
	}
	r.GET("/api/reports", rc.ListReports)
	r.GET("/api/reports/:id", rc.GetReport)
	r.POST("/api/reports", rc.CreateReport)
	r.POST("/api/reports/:id/status", rc.UpdateStatus)
	r.GET("/api/dashboard", rc.Dashboard)
	return r, photos
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	password := "x"
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: &password,
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedControllerReport(t *testing.T, db *gorm.DB, reporterID uint, status string) *models.Report {
	t.Helper()
	report := models.Report{
		Name:        "Jane Doe",
		Age:         30,
		Gender:      "Female",
		Location:    "Springfield",
		Description: "Last seen near the riverside park wearing a red coat.",
		Status:      status,
		Category:    models.CategoryAdult,
		ReporterID:  reporterID,
	}
	require.NoError(t, db.Create(&report).Error)
	return &report
}

func reportForm(fields map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()
	return body, w.FormDataContentType()
}

func reportFormWithPhoto(fields map[string]string, fileName string, photo []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	fw, _ := w.CreateFormFile("photo", fileName)
	fw.Write(photo)
	w.Close()
	return body, w.FormDataContentType()
}

func validReportFields() map[string]string {
	return map[string]string{
		"name":        "John Smith",
		"age":         "42",
		"gender":      "Male",
		"location":    "Riverside district",
		"description": "Wearing a blue jacket, last seen boarding the 7pm bus.",
	}
}

// webpBytes sniffs as image/webp but cannot be decoded by the normalizer.
func webpBytes() []byte {
	header := []byte("RIFF\x28\x00\x00\x00WEBPVP8 ")
	return append(header, bytes.Repeat([]byte{0x2a}, 64)...)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func postStatus(r *gin.Engine, reportID uint, status string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(gin.H{"status": status})
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/reports/%d/status", reportID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateReport(t *testing.T) {
	t.Run("ValidSubmissionWithoutPhoto", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: user.ID, Role: user.Role})

		body, contentType := reportForm(validReportFields())
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var stored models.Report
		require.NoError(t, db.Where("name = ?", "John Smith").First(&stored).Error)
		assert.Equal(t, models.StatusPending, stored.Status)
		assert.Equal(t, user.ID, stored.ReporterID)
		assert.Equal(t, models.CategoryOther, stored.Category)
	})

	t.Run("UndecodablePhotoStoredAsIs", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		r, photos := newTestRouter(db, &utils.UserClaims{UserID: user.ID, Role: user.Role})

		original := webpBytes()
		body, contentType := reportFormWithPhoto(validReportFields(), "sighting.webp", original)
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var stored models.Report
		require.NoError(t, db.Where("name = ?", "John Smith").First(&stored).Error)
		assert.NotEmpty(t, stored.PhotoURL)

		require.Len(t, photos.objects, 1)
		for key, data := range photos.objects {
			assert.Equal(t, original, data, "original bytes kept when normalization fails")
			assert.Equal(t, "image/webp", photos.contentTypes[key])
		}
	})

	t.Run("NormalizedPhotoStoredAsJPEG", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		r, photos := newTestRouter(db, &utils.UserClaims{UserID: user.ID, Role: user.Role})

		png := pngBytes(t)
		body, contentType := reportFormWithPhoto(validReportFields(), "sighting.png", png)
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		require.Len(t, photos.objects, 1)
		for key := range photos.objects {
			assert.Equal(t, "image/jpeg", photos.contentTypes[key])
			assert.Contains(t, key, "photo.jpg")
		}
	})

	t.Run("PhotoRemovedWhenCreateFails", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		r, photos := newTestRouter(db, &utils.UserClaims{UserID: user.ID, Role: user.Role})

		// Make the row insert fail after the upload succeeded.
		require.NoError(t, db.Migrator().DropTable(&models.Report{}))

		body, contentType := reportFormWithPhoto(validReportFields(), "sighting.webp", webpBytes())
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Len(t, photos.deleted, 1, "uploaded photo must not be orphaned")
		assert.Empty(t, photos.objects)
	})

	t.Run("MissingFieldsReportedTogether", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: user.ID, Role: user.Role})

		body, contentType := reportForm(map[string]string{})
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Errors []struct {
				Field string `json:"field"`
			} `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		fields := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"name", "age", "gender", "location", "description"}, fields)

		var count int64
		db.Model(&models.Report{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("UnauthenticatedRejected", func(t *testing.T) {
		db := openTestDB(t)
		r, _ := newTestRouter(db, nil)

		body, contentType := reportForm(map[string]string{"name": "John Smith"})
		req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateStatus(t *testing.T) {
	t.Run("OwnerWalksLifecycle", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		report := seedControllerReport(t, db, user.ID, models.StatusPending)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: user.ID, Role: user.Role})

		for _, target := range []string{models.StatusActive, models.StatusUrgent, models.StatusActive, models.StatusResolved} {
			rec := postStatus(r, report.ID, target)
			require.Equal(t, http.StatusOK, rec.Code, "-> %s: %s", target, rec.Body.String())
		}

		var stored models.Report
		require.NoError(t, db.First(&stored, report.ID).Error)
		assert.Equal(t, models.StatusResolved, stored.Status)
	})

	t.Run("PendingToResolvedConflicts", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		report := seedControllerReport(t, db, user.ID, models.StatusPending)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: user.ID, Role: user.Role})

		rec := postStatus(r, report.ID, models.StatusResolved)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp struct {
			ValidTargets []string `json:"valid_targets"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{models.StatusActive}, resp.ValidTargets)

		var stored models.Report
		require.NoError(t, db.First(&stored, report.ID).Error)
		assert.Equal(t, models.StatusPending, stored.Status)
	})

	t.Run("NonOwnerForbidden", func(t *testing.T) {
		db := openTestDB(t)
		owner := seedUser(t, db, "owner", models.RoleUser)
		other := seedUser(t, db, "other", models.RoleUser)
		report := seedControllerReport(t, db, owner.ID, models.StatusPending)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: other.ID, Role: other.Role})

		rec := postStatus(r, report.ID, models.StatusActive)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("AdminAllowed", func(t *testing.T) {
		db := openTestDB(t)
		owner := seedUser(t, db, "owner", models.RoleUser)
		admin := seedUser(t, db, "admin", models.RoleAdmin)
		report := seedControllerReport(t, db, owner.ID, models.StatusPending)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: admin.ID, Role: admin.Role})

		rec := postStatus(r, report.ID, models.StatusActive)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingReportNotFound", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: user.ID, Role: user.Role})

		rec := postStatus(r, 9999, models.StatusActive)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListAndDashboard(t *testing.T) {
	t.Run("ListingIsPublic", func(t *testing.T) {
		db := openTestDB(t)
		user := seedUser(t, db, "reporter", models.RoleUser)
		seedControllerReport(t, db, user.ID, models.StatusActive)
		r, _ := newTestRouter(db, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data struct {
				Items []json.RawMessage `json:"items"`
				Total int64             `json:"total"`
			} `json:"data"`
			Pagination struct {
				CurrentPage int `json:"currentPage"`
				TotalPages  int `json:"totalPages"`
			} `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Data.Items, 1)
		assert.EqualValues(t, 1, resp.Data.Total)
		assert.Equal(t, 1, resp.Pagination.CurrentPage)
		assert.Equal(t, 1, resp.Pagination.TotalPages)
	})

	t.Run("DashboardScopedToOwner", func(t *testing.T) {
		db := openTestDB(t)
		alice := seedUser(t, db, "alice", models.RoleUser)
		bob := seedUser(t, db, "bob", models.RoleUser)
		seedControllerReport(t, db, alice.ID, models.StatusActive)
		seedControllerReport(t, db, bob.ID, models.StatusActive)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: alice.ID, Role: alice.Role})

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data struct {
				Total int64 `json:"total"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.EqualValues(t, 1, resp.Data.Total)
	})

	t.Run("AdminDashboardSeesEverything", func(t *testing.T) {
		db := openTestDB(t)
		alice := seedUser(t, db, "alice", models.RoleUser)
		admin := seedUser(t, db, "admin", models.RoleAdmin)
		seedControllerReport(t, db, alice.ID, models.StatusActive)
		seedControllerReport(t, db, admin.ID, models.StatusPending)
		r, _ := newTestRouter(db, &utils.UserClaims{UserID: admin.ID, Role: admin.Role})

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data struct {
				Total int64 `json:"total"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.EqualValues(t, 2, resp.Data.Total)
	})
}
