package lifecycle

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rescuelink/api-go/apperrors"
	"github.com/rescuelink/api-go/models"
)

// transitions is the full lifecycle table. A status missing a target here
// cannot reach it; resolved has no outgoing transitions at all.
var transitions = map[string][]string{
	models.StatusPending:  {models.StatusActive},
	models.StatusActive:   {models.StatusUrgent, models.StatusResolved},
	models.StatusUrgent:   {models.StatusActive, models.StatusResolved},
	models.StatusResolved: {},
}

// Actor identifies who is requesting a transition.
type Actor struct {
	UserID uint
	Admin  bool
}

// Check validates a single transition against the lifecycle table.
func Check(from, to string) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &apperrors.InvalidTransitionError{From: from, To: to}
}

// ValidTargets returns the statuses reachable from the given one.
func ValidTargets(from string) []string {
	return transitions[from]
}

// Manager applies lifecycle transitions against the record store.
type Manager struct {
	DB *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{DB: db}
}

// Transition moves a report to the target status on behalf of the actor.
// Only the reporter or an admin may request a transition. The status is
// re-read and written inside a transaction; concurrent transitions resolve
// last-committed-wins.
func (m *Manager) Transition(actor Actor, reportID uint, target string) (*models.Report, error) {
	var report models.Report

	err := m.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
		}

		if !actor.Admin && actor.UserID != report.ReporterID {
			return &apperrors.AuthorizationError{Operation: "change report status"}
		}

		if err := Check(report.Status, target); err != nil {
			return err
		}

		report.Status = target
		if err := tx.Save(&report).Error; err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}
