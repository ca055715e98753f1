package availability

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// MaxDurationMinutes bounds any booking or slot length to one day.
const MaxDurationMinutes = 24 * 60

// ValidateDuration accepts 1..MaxDurationMinutes minutes.
func ValidateDuration(minutes int) error {
	if minutes <= 0 || minutes > MaxDurationMinutes {
		return httperr.ErrValidation(
			"invalid_duration",
			fmt.Sprintf("Duration must be between 1 and %d minutes.", MaxDurationMinutes),
		)
	}
	return nil
}

// Clock is a time of day with minute precision, in minutes since midnight.
type Clock int

func ParseClock(hm string) (Clock, error) {
	t, err := time.Parse(ClockLayout, hm)
	if err != nil {
		return 0, httperr.ErrValidation("invalid_time", fmt.Sprintf("Invalid time %q, expected HH:mm.", hm))
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// MustClock is for constants and tests.
func MustClock(hm string) Clock {
	c, err := ParseClock(hm)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// String formats as HH:mm. Values past midnight are not wrapped.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseDate parses an ISO calendar date as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, httperr.ErrValidation("invalid_date", fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD.", s))
	}
	return d, nil
}

// CivilDate drops the clock and zone of t, keeping its calendar day.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Overlaps is the half-open interval intersection test.
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && aEnd > bStart
}
