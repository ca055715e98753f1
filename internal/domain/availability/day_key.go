package availability

import (
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// DayKey identifies the day a window applies to: a weekday for recurring
// windows or a calendar date for exceptional ones.
type DayKey struct {
	Exceptional bool
	Weekday     Weekday
	Date        time.Time
}

func RecurringDay(w Weekday) DayKey {
	return DayKey{Weekday: w}
}

func ExceptionalDay(date time.Time) DayKey {
	return DayKey{Exceptional: true, Date: CivilDate(date)}
}

// ParseDayKey accepts a weekday name or an ISO date.
func ParseDayKey(s string) (DayKey, error) {
	if w, err := ParseWeekday(s); err == nil {
		return RecurringDay(w), nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return DayKey{}, err
	}
	return ExceptionalDay(d), nil
}

func (k DayKey) Equal(o DayKey) bool {
	if k.Exceptional != o.Exceptional {
		return false
	}
	if k.Exceptional {
		return SameDate(k.Date, o.Date)
	}
	return k.Weekday == o.Weekday
}

func (k DayKey) String() string {
	if k.Exceptional {
		return k.Date.Format(DateLayout)
	}
	return k.Weekday.String()
}

// KeyOf returns the day key of a stored window.
func KeyOf(w models.AvailabilityWindow) DayKey {
	if w.IsExceptional && w.ExceptionalDate != nil {
		return ExceptionalDay(*w.ExceptionalDate)
	}
	if w.DayOfWeek != nil {
		return RecurringDay(Weekday(*w.DayOfWeek))
	}
	return DayKey{}
}
