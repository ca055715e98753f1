package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// 2025-03-10 is a Monday.
const monday = "2025-03-10"

type fixture struct {
	store *memory.Store
	vet   models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	vet := store.PutUser(models.User{Name: "Dr. Lima", Email: "lima@vet.test", Role: models.RoleVeterinarian})

	_, err := NewCreateWindow(store, store, audit.Nop{}).Execute(context.Background(), WindowInput{
		VeterinarianID: vet.ID,
		DayOfWeek:      "Monday",
		StartTime:      "09:00",
		EndTime:        "12:00",
		Mode:           models.ModeBoth,
	})
	require.NoError(t, err)

	return &fixture{store: store, vet: vet}
}

func (f *fixture) book(t *testing.T, date, hhmm string, minutes int) {
	t.Helper()
	require.NoError(t, f.store.CreateAppointment(context.Background(), &models.Appointment{
		Date:            mustDate(t, date),
		Time:            hhmm,
		DurationMinutes: minutes,
		VeterinarianID:  f.vet.ID,
		Status:          "pending",
		Kind:            models.KindOnline,
	}))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestValidateOrThrowScenarios(t *testing.T) {
	f := newFixture(t)
	f.book(t, monday, "09:00", 30)

	v := NewValidator(f.store)
	ctx := context.Background()
	date := mustDate(t, monday)

	req := func(hhmm string) SlotRequest {
		return SlotRequest{
			VeterinarianID:  f.vet.ID,
			Date:            date,
			Start:           domain.MustClock(hhmm),
			DurationMinutes: 30,
		}
	}

	err := v.ValidateOrThrow(ctx, req("09:15"))
	assert.True(t, httperr.IsKind(err, httperr.KindConflict), "overlaps 09:00-09:30")

	err = v.ValidateOrThrow(ctx, req("12:00"))
	assert.True(t, httperr.IsKind(err, httperr.KindUnavailable), "ends past the window")

	err = v.ValidateOrThrow(ctx, req("11:45"))
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))

	assert.NoError(t, v.ValidateOrThrow(ctx, req("09:30")), "touching intervals do not overlap")
	assert.NoError(t, v.ValidateOrThrow(ctx, req("11:30")))

	excluded := req("09:00")
	excluded.ExcludeID = 4
	err = v.ValidateOrThrow(ctx, excluded)
	assert.True(t, httperr.IsKind(err, httperr.KindConflict), "excluding another id keeps the conflict")

	bad := req("10:00")
	bad.DurationMinutes = 0
	assert.True(t, httperr.IsKind(v.ValidateOrThrow(ctx, bad), httperr.KindValidation))
}

func TestIsSlotAvailableCoverage(t *testing.T) {
	f := newFixture(t)
	v := NewValidator(f.store)
	ctx := context.Background()
	date := mustDate(t, monday)

	cases := []struct {
		start string
		dur   int
		want  bool
	}{
		{"09:00", 180, true},
		{"08:30", 30, false},
		{"08:45", 30, false},
		{"11:59", 1, true},
		{"12:00", 30, false},
		{"13:00", 30, false},
	}
	for _, tc := range cases {
		ok, err := v.IsSlotAvailable(ctx, f.vet.ID, date, domain.MustClock(tc.start), tc.dur)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "%s+%d", tc.start, tc.dur)
	}

	tuesday := date.AddDate(0, 0, 1)
	ok, err := v.IsSlotAvailable(ctx, f.vet.ID, tuesday, domain.MustClock("10:00"), 30)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExceptionalWindowIsAlternativeCoverage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := NewCreateWindow(f.store, f.store, audit.Nop{}).Execute(ctx, WindowInput{
		VeterinarianID:  f.vet.ID,
		ExceptionalDate: monday,
		StartTime:       "14:00",
		EndTime:         "15:00",
		Mode:            models.ModeOnline,
	})
	require.NoError(t, err)

	v := NewValidator(f.store)
	date := mustDate(t, monday)

	for _, hhmm := range []string{"10:00", "14:00"} {
		ok, err := v.IsSlotAvailable(ctx, f.vet.ID, date, domain.MustClock(hhmm), 30)
		require.NoError(t, err)
		assert.True(t, ok, hhmm)
	}

	nextMonday := date.AddDate(0, 0, 7)
	ok, err := v.IsSlotAvailable(ctx, f.vet.ID, nextMonday, domain.MustClock("14:00"), 30)
	require.NoError(t, err)
	assert.False(t, ok, "exceptional windows match their own date only")
}

func TestListSlotsAfterBooking(t *testing.T) {
	f := newFixture(t)
	f.book(t, monday, "09:00", 30)

	slots, err := NewListSlots(f.store, nil).Execute(context.Background(), ListSlotsInput{
		VeterinarianID:  f.vet.ID,
		Date:            monday,
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30", "10:00", "10:30", "11:00", "11:30"}, slots)
}

func TestListSlotsIgnoresCanceled(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.CreateAppointment(context.Background(), &models.Appointment{
		Date: mustDate(t, monday), Time: "09:00", DurationMinutes: 60, VeterinarianID: f.vet.ID, Status: "canceled",
	}))

	slots, err := NewListSlots(f.store, nil).Execute(context.Background(), ListSlotsInput{
		VeterinarianID: f.vet.ID, Date: monday, DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slots)
}

func TestListSlotsSoundness(t *testing.T) {
	f := newFixture(t)
	f.book(t, monday, "10:10", 45)
	f.book(t, monday, "11:40", 15)

	ctx := context.Background()
	slots, err := NewListSlots(f.store, nil).Execute(ctx, ListSlotsInput{
		VeterinarianID: f.vet.ID, Date: monday, DurationMinutes: 20,
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	v := NewValidator(f.store)
	date := mustDate(t, monday)
	for _, s := range slots {
		assert.NoError(t, v.ValidateOrThrow(ctx, SlotRequest{
			VeterinarianID:  f.vet.ID,
			Date:            date,
			Start:           domain.MustClock(s),
			DurationMinutes: 20,
		}), s)
	}
	assert.Equal(t, []string{"09:00", "09:20", "09:40", "11:00", "11:20"}, slots)
}

func TestListSlotsKeepsDuplicatesAcrossWindows(t *testing.T) {
	f := newFixture(t)
	_, err := NewCreateWindow(f.store, f.store, audit.Nop{}).Execute(context.Background(), WindowInput{
		VeterinarianID:  f.vet.ID,
		ExceptionalDate: monday,
		StartTime:       "11:00",
		EndTime:         "12:30",
		Mode:            models.ModeBoth,
	})
	require.NoError(t, err)

	slots, err := NewListSlots(f.store, nil).Execute(context.Background(), ListSlotsInput{
		VeterinarianID: f.vet.ID, Date: monday, DurationMinutes: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "11:00"}, slots)
}

func TestListSlotsEdges(t *testing.T) {
	f := newFixture(t)
	uc := NewListSlots(f.store, nil)
	ctx := context.Background()

	slots, err := uc.Execute(ctx, ListSlotsInput{VeterinarianID: f.vet.ID, Date: "2025-03-11", DurationMinutes: 30})
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)

	_, err = uc.Execute(ctx, ListSlotsInput{VeterinarianID: f.vet.ID, Date: "10/03/2025", DurationMinutes: 30})
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))

	_, err = uc.Execute(ctx, ListSlotsInput{VeterinarianID: f.vet.ID, Date: monday, DurationMinutes: -5})
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))
}

func TestDurationBounds(t *testing.T) {
	f := newFixture(t)
	slotsUC := NewListSlots(f.store, nil)
	v := NewValidator(f.store)
	ctx := context.Background()

	cases := []struct {
		name    string
		minutes int
		valid   bool
		slots   []string
	}{
		{"zero", 0, false, nil},
		{"negative", -30, false, nil},
		{"whole window", 180, true, []string{"09:00"}},
		{"one day", domain.MaxDurationMinutes, true, []string{}},
		{"past one day", domain.MaxDurationMinutes + 1, false, nil},
		{"max int", int(^uint(0) >> 1), false, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots, err := slotsUC.Execute(ctx, ListSlotsInput{
				VeterinarianID:  f.vet.ID,
				Date:            monday,
				DurationMinutes: tc.minutes,
			})
			verr := v.ValidateOrThrow(ctx, SlotRequest{
				VeterinarianID:  f.vet.ID,
				Date:            mustDate(t, monday),
				Start:           domain.MustClock("09:00"),
				DurationMinutes: tc.minutes,
			})

			if !tc.valid {
				assert.True(t, httperr.IsBusiness(err, "invalid_duration"))
				assert.True(t, httperr.IsBusiness(verr, "invalid_duration"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.slots, slots)
			if len(tc.slots) == 0 {
				assert.True(t, httperr.IsBusiness(verr, "slot_unavailable"))
			} else {
				assert.NoError(t, verr)
			}
		})
	}
}

func TestConflictUsesStoredDuration(t *testing.T) {
	f := newFixture(t)
	f.book(t, monday, "09:00", 60)

	v := NewValidator(f.store)
	ctx := context.Background()
	req := SlotRequest{
		VeterinarianID:  f.vet.ID,
		Date:            mustDate(t, monday),
		Start:           domain.MustClock("09:40"),
		DurationMinutes: 10,
	}

	err := v.ValidateOrThrow(ctx, req)
	assert.True(t, httperr.IsKind(err, httperr.KindConflict), "09:40 sits inside the stored 09:00-10:00")

	req.Start = domain.MustClock("10:00")
	assert.NoError(t, v.ValidateOrThrow(ctx, req))
}
