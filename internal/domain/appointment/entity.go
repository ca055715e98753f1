package appointment

import (
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

const DefaultDurationMinutes = 30

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment, now time.Time) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	ap.ConfirmedAt = &now
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCanceled)
	ap.CanceledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// Reopen reverts a derived completion back to confirmed. It reports false
// when the appointment was not completed.
func Reopen(ap *models.Appointment) bool {
	if Status(ap.Status) != StatusCompleted {
		return false
	}

	ap.Status = string(StatusConfirmed)
	ap.CompletedAt = nil
	return true
}

// Range returns the appointment's [start, end) on its date.
func Range(ap models.Appointment) (availability.Clock, availability.Clock, error) {
	start, err := availability.ParseClock(ap.Time)
	if err != nil {
		return 0, 0, err
	}
	return start, start.Add(ap.DurationMinutes), nil
}

// AllConsulted reports whether every linked animal appears in consulted.
func AllConsulted(linked, consulted []uint) bool {
	seen := make(map[uint]struct{}, len(consulted))
	for _, id := range consulted {
		seen[id] = struct{}{}
	}
	for _, id := range linked {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}
