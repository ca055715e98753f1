// Package memory is a process-local store used for STORE=memory runs and in
// tests. Writers that book a slot are serialised by a single mutex, which
// plays the role of the Postgres advisory lock.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apdomain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type Store struct {
	lock sync.Mutex // held by WithinTransaction, WithinVetLock and WithinVetDayLock

	mu            sync.RWMutex
	seq           uint
	users         map[uint]models.User
	animals       map[uint]models.Animal
	windows       map[uint]models.AvailabilityWindow
	appointments  map[uint]models.Appointment
	links         []models.AppointmentAnimal
	consultations []models.Consultation
	now           func() time.Time
}

var (
	_ availability.Repository     = (*Store)(nil)
	_ apdomain.Repository         = (*Store)(nil)
	_ apdomain.IdentityProvider   = (*Store)(nil)
	_ apdomain.ConsultationReader = (*Store)(nil)
)

func New() *Store {
	return &Store{
		users:        make(map[uint]models.User),
		animals:      make(map[uint]models.Animal),
		windows:      make(map[uint]models.AvailabilityWindow),
		appointments: make(map[uint]models.Appointment),
		now:          time.Now,
	}
}

func (s *Store) nextID() uint {
	s.seq++
	return s.seq
}

// ======================================================
// Seeding (identity, animals, consultations live elsewhere)
// ======================================================

func (s *Store) PutUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID()
	} else if u.ID > s.seq {
		s.seq = u.ID
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) PutAnimal(a models.Animal) models.Animal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextID()
	} else if a.ID > s.seq {
		s.seq = a.ID
	}
	s.animals[a.ID] = a
	return a
}

func (s *Store) RecordConsultation(appointmentID, animalID uint, notes string) models.Consultation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := models.Consultation{
		ID:            s.nextID(),
		AppointmentID: appointmentID,
		AnimalID:      animalID,
		Notes:         notes,
		CreatedAt:     s.now(),
	}
	s.consultations = append(s.consultations, c)
	return c
}

func (s *Store) DeleteConsultation(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.consultations {
		if c.ID == id {
			s.consultations = append(s.consultations[:i], s.consultations[i+1:]...)
			return true
		}
	}
	return false
}

// ======================================================
// Identity / consultations
// ======================================================

func (s *Store) FindUser(_ context.Context, id uint, role models.Role) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok || u.Role != role {
		return nil, httperr.ErrNotFound(string(role)+"_not_found", "No "+string(role)+" with this id.")
	}
	return &u, nil
}

func (s *Store) HasConsultation(_ context.Context, appointmentID, animalID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.consultations {
		if c.AppointmentID == appointmentID && c.AnimalID == animalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DistinctConsultedAnimalIDs(_ context.Context, appointmentID uint) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[uint]bool{}
	out := []uint{}
	for _, c := range s.consultations {
		if c.AppointmentID == appointmentID && !seen[c.AnimalID] {
			seen[c.AnimalID] = true
			out = append(out, c.AnimalID)
		}
	}
	return out, nil
}

// ======================================================
// Availability windows
// ======================================================

func (s *Store) CreateWindow(_ context.Context, w *models.AvailabilityWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = s.nextID()
	w.CreatedAt = s.now()
	w.UpdatedAt = w.CreatedAt
	s.windows[w.ID] = *w
	return nil
}

func (s *Store) GetWindow(_ context.Context, id uint) (*models.AvailabilityWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.windows[id]
	if !ok {
		return nil, httperr.ErrNotFound("window_not_found", "Availability window not found.")
	}
	return &w, nil
}

func (s *Store) UpdateWindow(_ context.Context, w *models.AvailabilityWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.windows[w.ID]; !ok {
		return httperr.ErrNotFound("window_not_found", "Availability window not found.")
	}
	w.UpdatedAt = s.now()
	s.windows[w.ID] = *w
	return nil
}

func (s *Store) DeleteWindow(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.windows[id]; !ok {
		return httperr.ErrNotFound("window_not_found", "Availability window not found.")
	}
	delete(s.windows, id)
	return nil
}

func (s *Store) ListWindowsByVeterinarian(_ context.Context, vetID uint) ([]models.AvailabilityWindow, error) {
	return s.filterWindows(func(w models.AvailabilityWindow) bool {
		return w.VeterinarianID == vetID
	}), nil
}

func (s *Store) ListWindowsByVeterinarianAndDay(_ context.Context, vetID uint, day availability.DayKey) ([]models.AvailabilityWindow, error) {
	return s.filterWindows(func(w models.AvailabilityWindow) bool {
		return w.VeterinarianID == vetID && availability.KeyOf(w).Equal(day)
	}), nil
}

func (s *Store) ListAvailableWindowsForDate(_ context.Context, vetID uint, date time.Time) ([]models.AvailabilityWindow, error) {
	return s.filterWindows(func(w models.AvailabilityWindow) bool {
		return w.VeterinarianID == vetID && availability.AppliesTo(w, date)
	}), nil
}

func (s *Store) filterWindows(keep func(models.AvailabilityWindow) bool) []models.AvailabilityWindow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.AvailabilityWindow{}
	for _, w := range s.windows {
		if keep(w) {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) WithinVetLock(_ context.Context, _ uint, fn func(tx availability.Repository) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return fn(s)
}

// ======================================================
// Appointments
// ======================================================

func (s *Store) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ap, ok := s.appointments[id]
	if !ok {
		return nil, httperr.ErrNotFound("appointment_not_found", "Appointment not found.")
	}
	out := s.hydrate(ap)
	return &out, nil
}

// GetAppointmentForUpdate relies on the caller holding lock through
// WithinTransaction or WithinVetDayLock.
func (s *Store) GetAppointmentForUpdate(ctx context.Context, id uint) (*models.Appointment, error) {
	return s.GetAppointment(ctx, id)
}

// hydrate fills associations; callers hold mu.
func (s *Store) hydrate(ap models.Appointment) models.Appointment {
	ap.Veterinarian = s.users[ap.VeterinarianID]
	ap.Owner = s.users[ap.OwnerID]

	ap.AnimalLinks = nil
	for _, l := range s.links {
		if l.AppointmentID == ap.ID {
			l.Animal = s.animals[l.AnimalID]
			ap.AnimalLinks = append(ap.AnimalLinks, l)
		}
	}
	ap.Consultations = nil
	for _, c := range s.consultations {
		if c.AppointmentID == ap.ID {
			ap.Consultations = append(ap.Consultations, c)
		}
	}
	return ap
}

func (s *Store) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap.ID = s.nextID()
	ap.CreatedAt = s.now()
	ap.UpdatedAt = ap.CreatedAt
	s.appointments[ap.ID] = strip(*ap)
	return nil
}

func (s *Store) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[ap.ID]; !ok {
		return httperr.ErrNotFound("appointment_not_found", "Appointment not found.")
	}
	ap.UpdatedAt = s.now()
	s.appointments[ap.ID] = strip(*ap)
	return nil
}

func strip(ap models.Appointment) models.Appointment {
	ap.Veterinarian = models.User{}
	ap.Owner = models.User{}
	ap.AnimalLinks = nil
	ap.Consultations = nil
	return ap
}

func (s *Store) ListAppointments(_ context.Context, f apdomain.ListFilter) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Appointment{}
	for _, ap := range s.appointments {
		if f.OwnerID != 0 && ap.OwnerID != f.OwnerID {
			continue
		}
		if f.VeterinarianID != 0 && ap.VeterinarianID != f.VeterinarianID {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, ap.Status) {
			continue
		}
		if f.Date != nil && !availability.SameDate(ap.Date, *f.Date) {
			continue
		}
		if f.FromDate != nil && availability.CivilDate(ap.Date).Before(availability.CivilDate(*f.FromDate)) {
			continue
		}
		out = append(out, s.hydrate(ap))
	}
	sortChronologically(out)
	return out, nil
}

func hasStatus(statuses []apdomain.Status, s string) bool {
	for _, st := range statuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

func sortChronologically(aps []models.Appointment) {
	sort.Slice(aps, func(i, j int) bool {
		if !aps[i].Date.Equal(aps[j].Date) {
			return aps[i].Date.Before(aps[j].Date)
		}
		if aps[i].Time != aps[j].Time {
			return aps[i].Time < aps[j].Time
		}
		return aps[i].ID < aps[j].ID
	})
}

func (s *Store) ListAppointmentsForDay(_ context.Context, vetID uint, date time.Time, excludeID uint) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Appointment{}
	for _, ap := range s.appointments {
		if ap.VeterinarianID != vetID || ap.ID == excludeID {
			continue
		}
		if !apdomain.Status(ap.Status).HoldsSlot() {
			continue
		}
		if !availability.SameDate(ap.Date, date) {
			continue
		}
		out = append(out, ap)
	}
	sortChronologically(out)
	return out, nil
}

func (s *Store) GetAnimal(_ context.Context, id uint) (*models.Animal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.animals[id]
	if !ok {
		return nil, httperr.ErrNotFound("animal_not_found", "Animal not found.")
	}
	return &a, nil
}

func (s *Store) ListAnimals(_ context.Context, ids []uint) ([]models.Animal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Animal, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.animals[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) HasAnimalLink(_ context.Context, appointmentID, animalID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.AppointmentID == appointmentID && l.AnimalID == animalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AddAnimalLink(_ context.Context, link *models.AppointmentAnimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.AppointmentID == link.AppointmentID && l.AnimalID == link.AnimalID {
			return httperr.ErrConflict("animal_already_linked", "Animal is already on this appointment.")
		}
	}
	link.ID = s.nextID()
	link.CreatedAt = s.now()
	stored := *link
	stored.Animal = models.Animal{}
	s.links = append(s.links, stored)
	return nil
}

func (s *Store) LinkedAnimalIDs(_ context.Context, appointmentID uint) ([]uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []uint{}
	for _, l := range s.links {
		if l.AppointmentID == appointmentID {
			out = append(out, l.AnimalID)
		}
	}
	return out, nil
}

func (s *Store) WithinTransaction(_ context.Context, fn func(tx apdomain.Repository) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return fn(s)
}

// LockVetDay is a no-op: WithinTransaction already serialises every writer.
func (s *Store) LockVetDay(context.Context, uint, time.Time) error {
	return nil
}

func (s *Store) WithinVetDayLock(_ context.Context, _ uint, _ time.Time, fn func(tx apdomain.Repository) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return fn(s)
}
