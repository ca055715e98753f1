package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type AvailabilityGormRepository struct {
	db *gorm.DB
}

var _ availability.Repository = (*AvailabilityGormRepository)(nil)

func NewAvailabilityGormRepository(db *gorm.DB) *AvailabilityGormRepository {
	return &AvailabilityGormRepository{db: db}
}

// --------------------------------------------------
// CRUD
// --------------------------------------------------

func (r *AvailabilityGormRepository) CreateWindow(
	ctx context.Context,
	w *models.AvailabilityWindow,
) error {
	if err := r.db.WithContext(ctx).Omit("Veterinarian").Create(w).Error; err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	return nil
}

func (r *AvailabilityGormRepository) GetWindow(
	ctx context.Context,
	id uint,
) (*models.AvailabilityWindow, error) {

	var w models.AvailabilityWindow
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, notFound(err, "window_not_found", "Availability window not found.")
	}
	return &w, nil
}

func (r *AvailabilityGormRepository) UpdateWindow(
	ctx context.Context,
	w *models.AvailabilityWindow,
) error {
	if err := r.db.WithContext(ctx).Omit("Veterinarian").Save(w).Error; err != nil {
		return fmt.Errorf("update window: %w", err)
	}
	return nil
}

func (r *AvailabilityGormRepository) DeleteWindow(
	ctx context.Context,
	id uint,
) error {
	res := r.db.WithContext(ctx).Delete(&models.AvailabilityWindow{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete window: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("window_not_found", "Availability window not found.")
	}
	return nil
}

// --------------------------------------------------
// Queries
// --------------------------------------------------

func (r *AvailabilityGormRepository) ListWindowsByVeterinarian(
	ctx context.Context,
	vetID uint,
) ([]models.AvailabilityWindow, error) {

	var out []models.AvailabilityWindow
	if err := r.db.WithContext(ctx).
		Where("veterinarian_id = ?", vetID).
		Order("is_exceptional ASC, day_of_week ASC, exceptional_date ASC, start_time ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	return out, nil
}

func (r *AvailabilityGormRepository) ListWindowsByVeterinarianAndDay(
	ctx context.Context,
	vetID uint,
	day availability.DayKey,
) ([]models.AvailabilityWindow, error) {

	q := r.db.WithContext(ctx).Where("veterinarian_id = ?", vetID)
	if day.Exceptional {
		q = q.Where("is_exceptional = ? AND exceptional_date = ?", true, dateParam(day.Date))
	} else {
		q = q.Where("is_exceptional = ? AND day_of_week = ?", false, day.Weekday.String())
	}

	var out []models.AvailabilityWindow
	if err := q.Order("start_time ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list windows by day: %w", err)
	}
	return out, nil
}

func (r *AvailabilityGormRepository) ListAvailableWindowsForDate(
	ctx context.Context,
	vetID uint,
	date time.Time,
) ([]models.AvailabilityWindow, error) {
	return listAvailableWindowsForDate(r.db.WithContext(ctx), vetID, date)
}

func listAvailableWindowsForDate(db *gorm.DB, vetID uint, date time.Time) ([]models.AvailabilityWindow, error) {
	var out []models.AvailabilityWindow
	if err := db.
		Where("veterinarian_id = ? AND is_available = ?", vetID, true).
		Where(
			"(is_exceptional = ? AND day_of_week = ?) OR (is_exceptional = ? AND exceptional_date = ?)",
			false, availability.WeekdayOf(date).String(),
			true, dateParam(date),
		).
		Order("start_time ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list windows for date: %w", err)
	}
	return out, nil
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *AvailabilityGormRepository) WithinVetLock(
	ctx context.Context,
	vetID uint,
	fn func(tx availability.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVetKey(tx, vetID, windowLockKey); err != nil {
			return err
		}
		return fn(&AvailabilityGormRepository{db: tx})
	})
}
