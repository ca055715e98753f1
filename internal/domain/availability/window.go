package availability

import (
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

func ValidMode(m models.ConsultationMode) bool {
	switch m {
	case models.ModeOnline, models.ModeInPerson, models.ModeBoth:
		return true
	}
	return false
}

// Bounds parses the window's start and end.
func Bounds(w models.AvailabilityWindow) (Clock, Clock, error) {
	start, err := ParseClock(w.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(w.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Validate checks the shape of a window before it is persisted.
func Validate(w models.AvailabilityWindow) error {
	if w.VeterinarianID == 0 {
		return httperr.ErrValidation("missing_veterinarian", "Veterinarian is required.")
	}

	start, end, err := Bounds(w)
	if err != nil {
		return err
	}
	if start >= end {
		return httperr.ErrValidation("invalid_time_range", "Start time must be before end time.")
	}

	if !ValidMode(w.Mode) {
		return httperr.ErrValidation("invalid_mode", "Mode must be online, in_person or both.")
	}

	if w.IsExceptional {
		if w.ExceptionalDate == nil {
			return httperr.ErrValidation("missing_exceptional_date", "Exceptional windows need a date.")
		}
		if w.DayOfWeek != nil {
			return httperr.ErrValidation("ambiguous_day", "Exceptional windows cannot set a day of week.")
		}
		return nil
	}

	if w.DayOfWeek == nil {
		return httperr.ErrValidation("missing_day_of_week", "Recurring windows need a day of week.")
	}
	if !Weekday(*w.DayOfWeek).Valid() {
		return httperr.ErrValidation("invalid_day_of_week", "Unknown day of week: "+*w.DayOfWeek)
	}
	if w.ExceptionalDate != nil {
		return httperr.ErrValidation("ambiguous_day", "Recurring windows cannot set an exceptional date.")
	}
	return nil
}

// FindOverlap returns the first available window in existing that shares the
// candidate's day key and intersects its range. Unavailable candidates never
// conflict.
func FindOverlap(candidate models.AvailabilityWindow, existing []models.AvailabilityWindow) (*models.AvailabilityWindow, error) {
	if !candidate.IsAvailable {
		return nil, nil
	}

	start, end, err := Bounds(candidate)
	if err != nil {
		return nil, err
	}
	key := KeyOf(candidate)

	for i := range existing {
		other := existing[i]
		if other.ID == candidate.ID && candidate.ID != 0 {
			continue
		}
		if !other.IsAvailable || !KeyOf(other).Equal(key) {
			continue
		}
		oStart, oEnd, err := Bounds(other)
		if err != nil {
			return nil, err
		}
		if Overlaps(start, end, oStart, oEnd) {
			return &other, nil
		}
	}
	return nil, nil
}

// AppliesTo reports whether an available window can serve date: recurring
// windows by weekday, exceptional windows by exact date.
func AppliesTo(w models.AvailabilityWindow, date time.Time) bool {
	if !w.IsAvailable {
		return false
	}
	if w.IsExceptional {
		return w.ExceptionalDate != nil && SameDate(*w.ExceptionalDate, date)
	}
	return w.DayOfWeek != nil && Weekday(*w.DayOfWeek) == WeekdayOf(date)
}

// Covers reports whether [start, start+duration) fits entirely inside w on date.
func Covers(w models.AvailabilityWindow, date time.Time, start Clock, durationMinutes int) bool {
	if !AppliesTo(w, date) || ValidateDuration(durationMinutes) != nil {
		return false
	}
	wStart, wEnd, err := Bounds(w)
	if err != nil {
		return false
	}
	return start >= wStart && start.Add(durationMinutes) <= wEnd
}
