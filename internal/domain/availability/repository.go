package availability

import (
	"context"
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type Repository interface {
	CreateWindow(ctx context.Context, w *models.AvailabilityWindow) error
	GetWindow(ctx context.Context, id uint) (*models.AvailabilityWindow, error)
	UpdateWindow(ctx context.Context, w *models.AvailabilityWindow) error
	DeleteWindow(ctx context.Context, id uint) error

	ListWindowsByVeterinarian(ctx context.Context, vetID uint) ([]models.AvailabilityWindow, error)
	ListWindowsByVeterinarianAndDay(ctx context.Context, vetID uint, day DayKey) ([]models.AvailabilityWindow, error)

	// ListAvailableWindowsForDate returns the available windows matching the
	// date's weekday (recurring) or the date itself (exceptional).
	ListAvailableWindowsForDate(ctx context.Context, vetID uint, date time.Time) ([]models.AvailabilityWindow, error)

	// WithinVetLock runs fn in a transaction holding the vet's window lock.
	WithinVetLock(ctx context.Context, vetID uint, fn func(tx Repository) error) error
}
