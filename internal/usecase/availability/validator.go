package availability

import (
	"context"
	"fmt"
	"time"

	apdomain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Reader is the read side the validator and the slot enumerator need. Inside
// a booking transaction it is the tx-scoped repository.
type Reader interface {
	ListAvailableWindowsForDate(ctx context.Context, vetID uint, date time.Time) ([]models.AvailabilityWindow, error)
	ListAppointmentsForDay(ctx context.Context, vetID uint, date time.Time, excludeID uint) ([]models.Appointment, error)
}

// SlotRequest describes a candidate booking.
type SlotRequest struct {
	VeterinarianID  uint
	Date            time.Time
	Start           domain.Clock
	DurationMinutes int
	ExcludeID       uint
}

type Validator struct {
	reader Reader
}

func NewValidator(reader Reader) *Validator {
	return &Validator{reader: reader}
}

// IsSlotAvailable reports whether some available window for the date holds
// the whole [start, start+duration) range. Recurring and exceptional windows
// are alternative sources of coverage.
func (v *Validator) IsSlotAvailable(
	ctx context.Context,
	vetID uint,
	date time.Time,
	start domain.Clock,
	durationMinutes int,
) (bool, error) {

	windows, err := v.reader.ListAvailableWindowsForDate(ctx, vetID, date)
	if err != nil {
		return false, fmt.Errorf("list windows: %w", err)
	}

	for _, w := range windows {
		if domain.Covers(w, date, start, durationMinutes) {
			return true, nil
		}
	}
	return false, nil
}

// CheckAppointmentConflict reports whether [start, start+duration) intersects
// an appointment of the vet on date that still holds its slot.
func (v *Validator) CheckAppointmentConflict(
	ctx context.Context,
	vetID uint,
	date time.Time,
	start domain.Clock,
	durationMinutes int,
	excludeID uint,
) (bool, error) {

	if err := domain.ValidateDuration(durationMinutes); err != nil {
		return false, err
	}

	existing, err := v.reader.ListAppointmentsForDay(ctx, vetID, date, excludeID)
	if err != nil {
		return false, fmt.Errorf("list appointments: %w", err)
	}

	end := start.Add(durationMinutes)
	for _, r := range reservedRanges(existing) {
		if domain.Overlaps(start, end, r.start, r.end) {
			return true, nil
		}
	}
	return false, nil
}

// ValidateOrThrow fails with Unavailable when no window covers the request
// and with Conflict when it overlaps another appointment.
func (v *Validator) ValidateOrThrow(ctx context.Context, req SlotRequest) error {
	if err := domain.ValidateDuration(req.DurationMinutes); err != nil {
		return err
	}

	ok, err := v.IsSlotAvailable(ctx, req.VeterinarianID, req.Date, req.Start, req.DurationMinutes)
	if err != nil {
		return err
	}
	if !ok {
		return httperr.ErrUnavailable("slot_unavailable", "Veterinarian is not available for full duration.")
	}

	conflict, err := v.CheckAppointmentConflict(
		ctx,
		req.VeterinarianID,
		req.Date,
		req.Start,
		req.DurationMinutes,
		req.ExcludeID,
	)
	if err != nil {
		return err
	}
	if conflict {
		return httperr.ErrConflict("time_conflict", "Requested time overlaps another appointment.")
	}
	return nil
}

type reserved struct {
	start domain.Clock
	end   domain.Clock
}

// reservedRanges uses each appointment's own stored duration, not the
// requested one, so a longer existing booking is never partly overlapped.
func reservedRanges(aps []models.Appointment) []reserved {
	out := make([]reserved, 0, len(aps))
	for _, ap := range aps {
		if !apdomain.Status(ap.Status).HoldsSlot() {
			continue
		}
		start, end, err := apdomain.Range(ap)
		if err != nil {
			continue
		}
		out = append(out, reserved{start: start, end: end})
	}
	return out
}
