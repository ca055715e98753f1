package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

func recurring(id uint, day Weekday, start, end string) models.AvailabilityWindow {
	d := string(day)
	return models.AvailabilityWindow{
		ID:             id,
		VeterinarianID: 1,
		DayOfWeek:      &d,
		StartTime:      start,
		EndTime:        end,
		Mode:           models.ModeBoth,
		IsAvailable:    true,
	}
}

func exceptional(id uint, date time.Time, start, end string) models.AvailabilityWindow {
	return models.AvailabilityWindow{
		ID:              id,
		VeterinarianID:  1,
		ExceptionalDate: &date,
		StartTime:       start,
		EndTime:         end,
		Mode:            models.ModeOnline,
		IsAvailable:     true,
		IsExceptional:   true,
	}
}

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(recurring(0, Monday, "09:00", "12:00")))
	require.NoError(t, Validate(exceptional(0, monday, "14:00", "15:00")))

	inverted := recurring(0, Monday, "12:00", "09:00")
	assert.True(t, httperr.IsBusiness(Validate(inverted), "invalid_time_range"))

	empty := recurring(0, Monday, "09:00", "09:00")
	assert.True(t, httperr.IsBusiness(Validate(empty), "invalid_time_range"))

	badMode := recurring(0, Monday, "09:00", "10:00")
	badMode.Mode = "phone"
	assert.True(t, httperr.IsBusiness(Validate(badMode), "invalid_mode"))

	noDay := recurring(0, Monday, "09:00", "10:00")
	noDay.DayOfWeek = nil
	assert.True(t, httperr.IsBusiness(Validate(noDay), "missing_day_of_week"))

	both := exceptional(0, monday, "09:00", "10:00")
	d := "monday"
	both.DayOfWeek = &d
	assert.True(t, httperr.IsBusiness(Validate(both), "ambiguous_day"))
}

func TestFindOverlap(t *testing.T) {
	existing := []models.AvailabilityWindow{
		recurring(1, Monday, "09:00", "12:00"),
		recurring(2, Tuesday, "09:00", "12:00"),
		exceptional(3, monday, "13:00", "14:00"),
	}

	hit, err := FindOverlap(recurring(0, Monday, "11:00", "13:00"), existing)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, uint(1), hit.ID)

	hit, err = FindOverlap(recurring(0, Monday, "12:00", "13:00"), existing)
	require.NoError(t, err)
	assert.Nil(t, hit, "adjacent windows are allowed")

	hit, err = FindOverlap(recurring(0, Wednesday, "09:00", "12:00"), existing)
	require.NoError(t, err)
	assert.Nil(t, hit)

	// an exceptional window is keyed by its date, not by weekday
	hit, err = FindOverlap(exceptional(0, monday, "10:00", "11:00"), existing)
	require.NoError(t, err)
	assert.Nil(t, hit)

	hit, err = FindOverlap(exceptional(0, monday, "13:30", "15:00"), existing)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, uint(3), hit.ID)

	off := recurring(0, Monday, "09:00", "12:00")
	off.IsAvailable = false
	hit, err = FindOverlap(off, existing)
	require.NoError(t, err)
	assert.Nil(t, hit, "unavailable markers never conflict")

	// updating a window does not conflict with itself
	self := recurring(1, Monday, "08:00", "12:00")
	hit, err = FindOverlap(self, existing)
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestCovers(t *testing.T) {
	w := recurring(1, Monday, "09:00", "12:00")

	assert.True(t, Covers(w, monday, MustClock("09:00"), 30))
	assert.True(t, Covers(w, monday, MustClock("11:30"), 30))
	assert.False(t, Covers(w, monday, MustClock("11:45"), 30), "must fit for the full duration")
	assert.False(t, Covers(w, monday, MustClock("12:00"), 30))
	assert.False(t, Covers(w, monday, MustClock("08:45"), 30))
	assert.False(t, Covers(w, monday.AddDate(0, 0, 1), MustClock("09:00"), 30), "wrong weekday")
	assert.False(t, Covers(w, monday, MustClock("09:00"), int(^uint(0)>>1)), "end would wrap around")
	assert.False(t, Covers(w, monday, MustClock("09:00"), 0))

	ex := exceptional(2, monday.AddDate(0, 0, 2), "18:00", "19:00")
	assert.True(t, Covers(ex, monday.AddDate(0, 0, 2), MustClock("18:00"), 60))
	assert.False(t, Covers(ex, monday.AddDate(0, 0, 9), MustClock("18:00"), 60), "same weekday, other date")

	w.IsAvailable = false
	assert.False(t, Covers(w, monday, MustClock("09:00"), 30))
}
