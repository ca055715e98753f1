package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// ListFilter narrows appointment listings. Zero values are ignored.
type ListFilter struct {
	OwnerID        uint
	VeterinarianID uint
	Statuses       []Status
	Date           *time.Time
	FromDate       *time.Time
}

type Repository interface {
	// -------- Appointment --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// GetAppointmentForUpdate reads the row and holds it until the enclosing
	// transaction ends. Outside WithinTransaction it behaves like GetAppointment.
	GetAppointmentForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointments(
		ctx context.Context,
		filter ListFilter,
	) ([]models.Appointment, error)

	// ListAppointmentsForDay returns the vet's appointments on date whose
	// status is in ActiveStatuses, skipping excludeID when it is not zero.
	ListAppointmentsForDay(
		ctx context.Context,
		vetID uint,
		date time.Time,
		excludeID uint,
	) ([]models.Appointment, error)

	// -------- Availability (read) --------
	ListAvailableWindowsForDate(
		ctx context.Context,
		vetID uint,
		date time.Time,
	) ([]models.AvailabilityWindow, error)

	// -------- Animals --------
	GetAnimal(
		ctx context.Context,
		id uint,
	) (*models.Animal, error)

	ListAnimals(
		ctx context.Context,
		ids []uint,
	) ([]models.Animal, error)

	HasAnimalLink(
		ctx context.Context,
		appointmentID uint,
		animalID uint,
	) (bool, error)

	AddAnimalLink(
		ctx context.Context,
		link *models.AppointmentAnimal,
	) error

	LinkedAnimalIDs(
		ctx context.Context,
		appointmentID uint,
	) ([]uint, error)

	// -------- Transactions --------

	// WithinTransaction runs fn in a single transaction. Writers that read an
	// appointment and save it back use GetAppointmentForUpdate inside it.
	WithinTransaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// LockVetDay takes the (vet, date) booking lock for the rest of the
	// enclosing transaction.
	LockVetDay(
		ctx context.Context,
		vetID uint,
		date time.Time,
	) error

	// WithinVetDayLock runs fn in a transaction that serialises writers
	// booking the same veterinarian on the same date.
	WithinVetDayLock(
		ctx context.Context,
		vetID uint,
		date time.Time,
		fn func(tx Repository) error,
	) error
}

// IdentityProvider resolves users owned by the identity service.
type IdentityProvider interface {
	FindUser(ctx context.Context, id uint, role models.Role) (*models.User, error)
}

// ConsultationReader answers questions about consultations recorded
// against an appointment.
type ConsultationReader interface {
	HasConsultation(ctx context.Context, appointmentID, animalID uint) (bool, error)
	DistinctConsultedAnimalIDs(ctx context.Context, appointmentID uint) ([]uint, error)
}
