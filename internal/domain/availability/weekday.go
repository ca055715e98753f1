package availability

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
)

// Weekday names are stored lowercase and never localised.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var byStdWeekday = [7]Weekday{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// WeekdayOf returns the weekday of a calendar date.
func WeekdayOf(date time.Time) Weekday {
	return byStdWeekday[date.Weekday()]
}

func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", httperr.ErrValidation("invalid_day_of_week", "Unknown day of week: "+s)
	}
	return w, nil
}

func (w Weekday) Valid() bool {
	for _, d := range byStdWeekday {
		if d == w {
			return true
		}
	}
	return false
}

func (w Weekday) String() string {
	return string(w)
}
