package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*AppointmentGormRepository)(nil)

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Veterinarian").
		Preload("Owner").
		Preload("AnimalLinks.Animal").
		Preload("Consultations").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found", "Appointment not found.")
	}
	return &ap, nil
}

// GetAppointmentForUpdate reads with SELECT ... FOR UPDATE so concurrent
// writers of the same row queue until this transaction ends.
func (r *AppointmentGormRepository) GetAppointmentForUpdate(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Veterinarian").
		Preload("Owner").
		Preload("AnimalLinks.Animal").
		Preload("Consultations").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found", "Appointment not found.")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error; err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Veterinarian").
		Preload("Owner").
		Preload("AnimalLinks.Animal")

	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.VeterinarianID != 0 {
		q = q.Where("veterinarian_id = ?", f.VeterinarianID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.Date != nil {
		q = q.Where(`"date" = ?`, dateParam(*f.Date))
	}
	if f.FromDate != nil {
		q = q.Where(`"date" >= ?`, dateParam(*f.FromDate))
	}

	var out []models.Appointment
	if err := q.Order(`"date" ASC, "time" ASC, id ASC`).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForDay(
	ctx context.Context,
	vetID uint,
	date time.Time,
	excludeID uint,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Where(`veterinarian_id = ? AND "date" = ? AND status IN ?`, vetID, dateParam(date), activeStatuses())
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var out []models.Appointment
	if err := q.Order(`"time" ASC`).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list appointments for day: %w", err)
	}
	return out, nil
}

// --------------------------------------------------
// Availability (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAvailableWindowsForDate(
	ctx context.Context,
	vetID uint,
	date time.Time,
) ([]models.AvailabilityWindow, error) {
	return listAvailableWindowsForDate(r.db.WithContext(ctx), vetID, date)
}

// --------------------------------------------------
// Animals
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAnimal(
	ctx context.Context,
	id uint,
) (*models.Animal, error) {

	var a models.Animal
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFound(err, "animal_not_found", "Animal not found.")
	}
	return &a, nil
}

func (r *AppointmentGormRepository) ListAnimals(
	ctx context.Context,
	ids []uint,
) ([]models.Animal, error) {

	out := []models.Animal{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list animals: %w", err)
	}
	return out, nil
}

func (r *AppointmentGormRepository) HasAnimalLink(
	ctx context.Context,
	appointmentID uint,
	animalID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AppointmentAnimal{}).
		Where("appointment_id = ? AND animal_id = ?", appointmentID, animalID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check animal link: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) AddAnimalLink(
	ctx context.Context,
	link *models.AppointmentAnimal,
) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(link).Error
	if isUniqueViolation(err) {
		return httperr.ErrConflict("animal_already_linked", "Animal is already on this appointment.")
	}
	if err != nil {
		return fmt.Errorf("add animal link: %w", err)
	}
	return nil
}

func (r *AppointmentGormRepository) LinkedAnimalIDs(
	ctx context.Context,
	appointmentID uint,
) ([]uint, error) {

	ids := []uint{}
	if err := r.db.WithContext(ctx).
		Model(&models.AppointmentAnimal{}).
		Where("appointment_id = ?", appointmentID).
		Order("animal_id ASC").
		Pluck("animal_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("linked animals: %w", err)
	}
	return ids, nil
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

// WithinTransaction runs fn on a repository bound to one gorm transaction.
func (r *AppointmentGormRepository) WithinTransaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// LockVetDay takes pg_advisory_xact_lock(vet, day). It only holds inside a
// transaction; in autocommit mode it is released right away.
func (r *AppointmentGormRepository) LockVetDay(
	ctx context.Context,
	vetID uint,
	date time.Time,
) error {
	return lockVetKey(r.db.WithContext(ctx), vetID, dayNumber(date))
}

// WithinVetDayLock runs fn in a transaction holding
// pg_advisory_xact_lock(vet, day). Bookings for the same vet and date queue
// on the lock, so the conflict read and the write are atomic.
func (r *AppointmentGormRepository) WithinVetDayLock(
	ctx context.Context,
	vetID uint,
	date time.Time,
	fn func(tx domain.Repository) error,
) error {
	return r.WithinTransaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockVetDay(ctx, vetID, date); err != nil {
			return err
		}
		return fn(tx)
	})
}
