package submission

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rescuelink/api-go/apperrors"
	"github.com/rescuelink/api-go/models"
)

// ReportInput carries the raw form values of a report submission. Everything
// arrives as strings from the multipart form; the pipeline parses and checks
// each field and accumulates every failure instead of stopping at the first.
type ReportInput struct {
	Name        string
	Age         string
	Gender      string
	Location    string
	Description string
	Category    string
	LastSeenAt  string
}

const (
	nameMinLen        = 2
	nameMaxLen        = 100
	locationMinLen    = 3
	locationMaxLen    = 200
	descriptionMinLen = 10
	descriptionMaxLen = 2000
	ageMin            = 0
	ageMax            = 120
)

// lastSeenLayouts are the accepted timestamp formats, most specific first.
var lastSeenLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// ValidateReport runs every field validator and either returns a populated
// report (reporter and photo still unset) or the complete error set.
func ValidateReport(in ReportInput, now time.Time) (*models.Report, *apperrors.ValidationErrors) {
	errs := &apperrors.ValidationErrors{}

	name := validateName(in.Name, errs)
	age := validateAge(in.Age, errs)
	gender := validateChoice("gender", in.Gender, models.Genders, true, errs)
	location := validateLocation(in.Location, errs)
	description := validateDescription(in.Description, errs)
	category := validateChoice("category", in.Category, models.Categories, false, errs)
	lastSeen := validateLastSeen(in.LastSeenAt, now, errs)

	if errs.HasErrors() {
		return nil, errs
	}

	if category == "" {
		category = models.CategoryOther
	}

	return &models.Report{
		Name:        name,
		Age:         age,
		Gender:      gender,
		Location:    location,
		Description: description,
		Category:    category,
		LastSeenAt:  lastSeen,
		Status:      models.StatusPending,
	}, nil
}

func validateName(raw string, errs *apperrors.ValidationErrors) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		errs.Add("name", "full name is required")
		return ""
	}
	if n := utf8.RuneCountInString(name); n < nameMinLen || n > nameMaxLen {
		errs.Add("name", "name must be between 2 and 100 characters")
	}
	return name
}

func validateAge(raw string, errs *apperrors.ValidationErrors) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		errs.Add("age", "age is required")
		return 0
	}
	age, err := strconv.Atoi(trimmed)
	if err != nil {
		errs.Add("age", "age must be a whole number")
		return 0
	}
	if age < ageMin || age > ageMax {
		errs.Add("age", "age must be between 0 and 120")
	}
	return age
}

func validateChoice(field, raw string, choices []string, required bool, errs *apperrors.ValidationErrors) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		if required {
			errs.Add(field, field+" is required")
		}
		return ""
	}
	for _, choice := range choices {
		if strings.EqualFold(value, choice) {
			return choice
		}
	}
	errs.Add(field, "invalid "+field)
	return ""
}

func validateLocation(raw string, errs *apperrors.ValidationErrors) string {
	location := strings.TrimSpace(raw)
	if location == "" {
		errs.Add("location", "last known location is required")
		return ""
	}
	if n := utf8.RuneCountInString(location); n < locationMinLen || n > locationMaxLen {
		errs.Add("location", "location must be between 3 and 200 characters")
	}
	return location
}

func validateDescription(raw string, errs *apperrors.ValidationErrors) string {
	description := strings.TrimSpace(raw)
	if description == "" {
		errs.Add("description", "description is required")
		return ""
	}
	if n := utf8.RuneCountInString(description); n < descriptionMinLen || n > descriptionMaxLen {
		errs.Add("description", "description must be between 10 and 2000 characters")
	}
	return description
}

func validateLastSeen(raw string, now time.Time, errs *apperrors.ValidationErrors) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	for _, layout := range lastSeenLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			if parsed.After(now) {
				errs.Add("last_seen_at", "last seen time cannot be in the future")
				return nil
			}
			return &parsed
		}
	}
	errs.Add("last_seen_at", "last seen time is not a recognized date")
	return nil
}

// ProfileInput carries the editable fields of a profile update.
type ProfileInput struct {
	Username string
	Email    string
	Twitter  string
	Facebook string
	LinkedIn string
}

const (
	usernameMinLen = 4
	usernameMaxLen = 80
	emailMaxLen    = 120
	socialMaxLen   = 50
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateProfile checks a profile update with the same accumulate-all-errors
// contract as report submissions.
func ValidateProfile(in ProfileInput) (*ProfileInput, *apperrors.ValidationErrors) {
	errs := &apperrors.ValidationErrors{}

	out := ProfileInput{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Twitter:  strings.TrimSpace(in.Twitter),
		Facebook: strings.TrimSpace(in.Facebook),
		LinkedIn: strings.TrimSpace(in.LinkedIn),
	}

	if out.Username == "" {
		errs.Add("username", "username is required")
	} else if n := utf8.RuneCountInString(out.Username); n < usernameMinLen || n > usernameMaxLen {
		errs.Add("username", "username must be between 4 and 80 characters")
	}

	if out.Email == "" {
		errs.Add("email", "email is required")
	} else if utf8.RuneCountInString(out.Email) > emailMaxLen || !emailPattern.MatchString(out.Email) {
		errs.Add("email", "enter a valid email address")
	}

	for field, value := range map[string]string{"twitter": out.Twitter, "facebook": out.Facebook, "linkedin": out.LinkedIn} {
		if utf8.RuneCountInString(value) > socialMaxLen {
			errs.Add(field, field+" handle is too long")
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return &out, nil
}
