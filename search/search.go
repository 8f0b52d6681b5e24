package search

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rescuelink/api-go/apperrors"
	"github.com/rescuelink/api-go/models"
)

// Criteria is the optional constraint set of a search. Zero values mean
// "no constraint" on that field. Free-text fields match as case-insensitive
// substrings, enumerated fields as case-insensitive equality, age bounds are
// inclusive.
type Criteria struct {
	Name     string
	Location string
	Gender   string
	Status   string
	Category string
	AgeMin   *int
	AgeMax   *int

	// ReporterID scopes results to one reporter's records (dashboards).
	ReporterID uint
}

// Item is the whitelisted projection of a report returned by searches.
// Reporter profile fields are deliberately absent.
type Item struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Age         int        `json:"age"`
	Gender      string     `json:"gender"`
	Location    string     `json:"location"`
	LastSeenAt  *time.Time `json:"last_seen_at"`
	Description string     `json:"description"`
	PhotoURL    string     `json:"photo_url"`
	Status      string     `json:"status"`
	Category    string     `json:"category"`
	ReporterID  uint       `json:"reporter_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Page is one bounded slice of a result set plus the total match count.
type Page struct {
	Items    []Item `json:"items"`
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Engine translates criteria into record-store queries.
type Engine struct {
	DB              *gorm.DB
	DefaultPageSize int
	MaxPageSize     int
}

func NewEngine(db *gorm.DB, defaultPageSize, maxPageSize int) *Engine {
	return &Engine{DB: db, DefaultPageSize: defaultPageSize, MaxPageSize: maxPageSize}
}

// Search returns the requested page of reports matching every supplied
// constraint, ordered by most-recently-updated first with identifier
// ascending as tie-break. Out-of-range pages yield an empty page, not an
// error.
func (e *Engine) Search(criteria Criteria, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = e.DefaultPageSize
	}
	if pageSize > e.MaxPageSize {
		pageSize = e.MaxPageSize
	}

	var total int64
	if err := e.apply(e.DB.Model(&models.Report{}), criteria).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	var reports []models.Report
	err := e.apply(e.DB.Model(&models.Report{}), criteria).
		Order("updated_at DESC, id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}

	items := make([]Item, 0, len(reports))
	for _, r := range reports {
		items = append(items, project(r))
	}

	return &Page{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// apply builds the WHERE clause. LOWER(...) LIKE keeps substring matching
// case-insensitive on Postgres and sqlite alike.
func (e *Engine) apply(query *gorm.DB, c Criteria) *gorm.DB {
	if c.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", contains(c.Name))
	}
	if c.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", contains(c.Location))
	}
	if c.Gender != "" {
		query = query.Where("LOWER(gender) = ?", strings.ToLower(c.Gender))
	}
	if c.Status != "" {
		query = query.Where("LOWER(status) = ?", strings.ToLower(c.Status))
	}
	if c.Category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(c.Category))
	}
	if c.AgeMin != nil {
		query = query.Where("age >= ?", *c.AgeMin)
	}
	if c.AgeMax != nil {
		query = query.Where("age <= ?", *c.AgeMax)
	}
	if c.ReporterID != 0 {
		query = query.Where("reporter_id = ?", c.ReporterID)
	}
	return query
}

func contains(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func project(r models.Report) Item {
	return Item{
		ID:          r.ID,
		Name:        r.Name,
		Age:         r.Age,
		Gender:      r.Gender,
		Location:    r.Location,
		LastSeenAt:  r.LastSeenAt,
		Description: r.Description,
		PhotoURL:    r.PhotoURL,
		Status:      r.Status,
		Category:    r.Category,
		ReporterID:  r.ReporterID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
