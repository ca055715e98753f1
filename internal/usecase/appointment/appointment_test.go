package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// 2025-03-10 is a Monday.
const monday = "2025-03-10"

type recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorder) Dispatch(ev audit.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

type fixture struct {
	store *memory.Store
	audit *recorder
	vet   models.User
	owner models.User
	rex   models.Animal
	mia   models.Animal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()

	f := &fixture{store: store, audit: &recorder{}}
	f.vet = store.PutUser(models.User{Name: "Dr. Lima", Email: "lima@vet.test", Role: models.RoleVeterinarian})
	f.owner = store.PutUser(models.User{Name: "Ana", Email: "ana@owner.test", Role: models.RoleOwner})
	f.rex = store.PutAnimal(models.Animal{OwnerID: f.owner.ID, Name: "Rex", Species: "dog"})
	f.mia = store.PutAnimal(models.Animal{OwnerID: f.owner.ID, Name: "Mia", Species: "cat"})

	day := "monday"
	require.NoError(t, store.CreateWindow(context.Background(), &models.AvailabilityWindow{
		VeterinarianID: f.vet.ID,
		DayOfWeek:      &day,
		StartTime:      "09:00",
		EndTime:        "12:00",
		Mode:           models.ModeBoth,
		IsAvailable:    true,
	}))
	return f
}

func (f *fixture) create(ctx context.Context, hhmm string, minutes int) (*models.Appointment, error) {
	return NewCreateAppointment(f.store, f.store, f.audit, nil, 30).Execute(ctx, CreateAppointmentInput{
		VeterinarianID:  f.vet.ID,
		OwnerID:         f.owner.ID,
		Date:            monday,
		Time:            hhmm,
		DurationMinutes: minutes,
		Kind:            models.KindOnline,
		Reason:          " vaccine ",
	})
}

func TestCreateScenarios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap, err := f.create(ctx, "09:00", 30)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), ap.Status)
	assert.Equal(t, "vaccine", ap.Reason)
	assert.Equal(t, f.vet.Name, ap.Veterinarian.Name)

	_, err = f.create(ctx, "09:15", 30)
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	_, err = f.create(ctx, "12:00", 30)
	assert.True(t, httperr.IsKind(err, httperr.KindUnavailable))

	assert.Equal(t, []string{"appointment.created"}, f.audit.actions())
}

func TestCreateDefaultsAndIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewCreateAppointment(f.store, f.store, audit.Nop{}, nil, 45)

	ap, err := uc.Execute(ctx, CreateAppointmentInput{
		VeterinarianID: f.vet.ID, OwnerID: f.owner.ID, Date: monday, Time: "10:00", Kind: models.KindInPerson,
	})
	require.NoError(t, err)
	assert.Equal(t, 45, ap.DurationMinutes)

	_, err = uc.Execute(ctx, CreateAppointmentInput{
		VeterinarianID: f.owner.ID, OwnerID: f.owner.ID, Date: monday, Time: "11:00", Kind: models.KindOnline,
	})
	assert.True(t, httperr.IsBusiness(err, "veterinarian_not_found"), "owner is not a vet")

	_, err = uc.Execute(ctx, CreateAppointmentInput{
		VeterinarianID: f.vet.ID, OwnerID: 404, Date: monday, Time: "11:00", Kind: models.KindOnline,
	})
	assert.True(t, httperr.IsBusiness(err, "owner_not_found"))

	_, err = uc.Execute(ctx, CreateAppointmentInput{
		VeterinarianID: f.vet.ID, OwnerID: f.owner.ID, Date: monday, Time: "11:00", Kind: "phone",
	})
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))

	_, err = uc.Execute(ctx, CreateAppointmentInput{
		VeterinarianID: f.vet.ID, OwnerID: f.owner.ID, Date: monday, Time: "25:00", Kind: models.KindOnline,
	})
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))
}

func TestConcurrentBookingsNeverOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	starts := []string{"09:00", "09:10", "09:20", "09:30", "09:40", "09:50", "10:00", "10:15", "10:30", "10:45"}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		for _, s := range starts {
			wg.Add(1)
			go func(hhmm string) {
				defer wg.Done()
				_, _ = f.create(ctx, hhmm, 30)
			}(s)
		}
	}
	wg.Wait()

	aps, err := f.store.ListAppointmentsForDay(ctx, f.vet.ID, mustDate(t, monday), 0)
	require.NoError(t, err)
	require.NotEmpty(t, aps)

	for i := range aps {
		for j := i + 1; j < len(aps); j++ {
			as, ae, _ := domain.Range(aps[i])
			bs, be, _ := domain.Range(aps[j])
			assert.False(t, availability.Overlaps(as, ae, bs, be), "%s and %s overlap", aps[i].Time, aps[j].Time)
		}
	}
}

func TestConfirmCancelGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ap, err := f.create(ctx, "09:00", 30)
	require.NoError(t, err)

	confirm := NewConfirmAppointment(f.store, f.audit, nil)
	cancel := NewCancelAppointment(f.store, f.audit, nil)

	got, err := confirm.Execute(ctx, nil, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)
	assert.NotNil(t, got.ConfirmedAt)

	_, err = confirm.Execute(ctx, nil, ap.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	_, err = cancel.Execute(ctx, nil, ap.ID)
	require.NoError(t, err)
	_, err = cancel.Execute(ctx, nil, ap.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	_, err = confirm.Execute(ctx, nil, 999)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	// the canceled slot is free again
	_, err = f.create(ctx, "09:00", 30)
	assert.NoError(t, err)
}

func TestUpdateRevalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.create(ctx, "09:00", 30)
	require.NoError(t, err)
	second, err := f.create(ctx, "10:00", 30)
	require.NoError(t, err)

	uc := NewUpdateAppointment(f.store, f.store, f.audit, nil)

	longer := 60
	got, err := uc.Execute(ctx, nil, first.ID, domain.Patch{DurationMinutes: &longer})
	require.NoError(t, err, "own reservation is excluded")
	assert.Equal(t, 60, got.DurationMinutes)

	moved := "09:45"
	_, err = uc.Execute(ctx, nil, second.ID, domain.Patch{Time: &moved})
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	late := "11:45"
	_, err = uc.Execute(ctx, nil, second.ID, domain.Patch{Time: &late})
	assert.True(t, httperr.IsKind(err, httperr.KindUnavailable))

	tuesday := "2025-03-11"
	_, err = uc.Execute(ctx, nil, second.ID, domain.Patch{Date: &tuesday})
	assert.True(t, httperr.IsKind(err, httperr.KindUnavailable))

	notes := "bring records"
	kind := models.KindInPerson
	got, err = uc.Execute(ctx, nil, second.ID, domain.Patch{Notes: &notes, Kind: &kind})
	require.NoError(t, err)
	assert.Equal(t, "bring records", got.Notes)
	assert.Equal(t, models.KindInPerson, got.Kind)
	assert.Equal(t, "10:00", got.Time)

	badVet := f.owner.ID
	_, err = uc.Execute(ctx, nil, second.ID, domain.Patch{VeterinarianID: &badVet})
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	_, err = NewCancelAppointment(f.store, audit.Nop{}, nil).Execute(ctx, nil, second.ID)
	require.NoError(t, err)
	_, err = uc.Execute(ctx, nil, second.ID, domain.Patch{Notes: &notes})
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))
}

func TestUpdateReassignsVet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := f.store.PutUser(models.User{Name: "Dr. Souza", Email: "souza@vet.test", Role: models.RoleVeterinarian})
	ap, err := f.create(ctx, "09:00", 30)
	require.NoError(t, err)

	uc := NewUpdateAppointment(f.store, f.store, audit.Nop{}, nil)
	_, err = uc.Execute(ctx, nil, ap.ID, domain.Patch{VeterinarianID: &other.ID})
	assert.True(t, httperr.IsKind(err, httperr.KindUnavailable), "new vet has no window")

	day := "monday"
	require.NoError(t, f.store.CreateWindow(ctx, &models.AvailabilityWindow{
		VeterinarianID: other.ID, DayOfWeek: &day, StartTime: "08:00", EndTime: "10:00", Mode: models.ModeBoth, IsAvailable: true,
	}))

	got, err := uc.Execute(ctx, nil, ap.ID, domain.Patch{VeterinarianID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.VeterinarianID)
	assert.Equal(t, "Dr. Souza", got.Veterinarian.Name)

	// the old vet's slot is free again
	_, err = f.create(ctx, "09:00", 30)
	assert.NoError(t, err)
}

func TestUpdateMovesToAnotherDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	day := "tuesday"
	require.NoError(t, f.store.CreateWindow(ctx, &models.AvailabilityWindow{
		VeterinarianID: f.vet.ID, DayOfWeek: &day, StartTime: "14:00", EndTime: "16:00", Mode: models.ModeBoth, IsAvailable: true,
	}))

	ap, err := f.create(ctx, "09:00", 30)
	require.NoError(t, err)

	uc := NewUpdateAppointment(f.store, f.store, audit.Nop{}, nil)
	tuesday, at := "2025-03-11", "14:30"

	_, err = uc.Execute(ctx, nil, ap.ID, domain.Patch{Date: &tuesday})
	assert.True(t, httperr.IsKind(err, httperr.KindUnavailable), "09:00 is outside the tuesday window")

	got, err := uc.Execute(ctx, nil, ap.ID, domain.Patch{Date: &tuesday, Time: &at})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", got.Date.Format("2006-01-02"))
	assert.Equal(t, "14:30", got.Time)

	_, err = f.create(ctx, "09:00", 30)
	assert.NoError(t, err, "monday slot was released")

	tuesdays, err := f.store.ListAppointmentsForDay(ctx, f.vet.ID, mustDate(t, tuesday), 0)
	require.NoError(t, err)
	require.Len(t, tuesdays, 1)
	assert.Equal(t, ap.ID, tuesdays[0].ID)
}

func TestUpdateRejectsTerminalAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewUpdateAppointment(f.store, f.store, audit.Nop{}, nil)
	at := "11:00"

	canceled, err := f.create(ctx, "09:00", 30)
	require.NoError(t, err)
	_, err = NewCancelAppointment(f.store, audit.Nop{}, nil).Execute(ctx, nil, canceled.ID)
	require.NoError(t, err)

	_, err = uc.Execute(ctx, nil, canceled.ID, domain.Patch{Time: &at})
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	completed, err := f.create(ctx, "10:00", 30)
	require.NoError(t, err)
	completed.Status = string(domain.StatusCompleted)
	require.NoError(t, f.store.UpdateAppointment(ctx, completed))

	_, err = uc.Execute(ctx, nil, completed.ID, domain.Patch{Time: &at})
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))

	stored, err := f.store.GetAppointment(ctx, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", stored.Time)
}

func TestAddAnimal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ap, err := f.create(ctx, "09:00", 30)
	require.NoError(t, err)

	uc := NewAddAnimal(f.store, audit.Nop{})

	got, err := uc.Execute(ctx, nil, ap.ID, f.rex.ID)
	require.NoError(t, err)
	require.Len(t, got.AnimalLinks, 1)
	assert.Equal(t, "Rex", got.AnimalLinks[0].Animal.Name)

	_, err = uc.Execute(ctx, nil, ap.ID, f.rex.ID)
	assert.True(t, httperr.IsBusiness(err, "animal_already_linked"))

	_, err = uc.Execute(ctx, nil, ap.ID, 999)
	assert.True(t, httperr.IsBusiness(err, "animal_not_found"))

	_, err = uc.Execute(ctx, nil, 999, f.rex.ID)
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := availability.ParseDate(s)
	require.NoError(t, err)
	return d
}
