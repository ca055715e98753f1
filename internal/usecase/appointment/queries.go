package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	"github.com/BruksfildServices01/vet-scheduler/internal/timezone"
)

// ======================================================
// GET
// ======================================================

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, id uint) (*models.Appointment, error) {
	return uc.repo.GetAppointment(ctx, id)
}

// ======================================================
// LIST
// ======================================================

type ListQuery struct {
	OwnerID        uint
	VeterinarianID uint
	Statuses       []string
	// From keeps appointments on or after this date (YYYY-MM-DD).
	From string
	// Date keeps appointments on exactly this date (YYYY-MM-DD).
	Date string
}

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

func (uc *ListAppointments) Execute(ctx context.Context, q ListQuery) ([]models.Appointment, error) {
	if q.OwnerID == 0 && q.VeterinarianID == 0 {
		return nil, httperr.ErrValidation("missing_filter", "Filter by ownerId or vetId.")
	}

	f := domain.ListFilter{
		OwnerID:        q.OwnerID,
		VeterinarianID: q.VeterinarianID,
	}

	for _, s := range q.Statuses {
		st, err := domain.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		f.Statuses = append(f.Statuses, st)
	}

	if q.From != "" {
		d, err := availability.ParseDate(q.From)
		if err != nil {
			return nil, err
		}
		f.FromDate = &d
	}
	if q.Date != "" {
		d, err := availability.ParseDate(q.Date)
		if err != nil {
			return nil, err
		}
		f.Date = &d
	}

	return uc.repo.ListAppointments(ctx, f)
}

// ======================================================
// TODAY'S CONFIRMED WITH UNCONSULTED ANIMALS
// ======================================================

type TodayUnconsulted struct {
	repo          domain.Repository
	consultations domain.ConsultationReader
	tz            string
	now           func() time.Time
}

func NewTodayUnconsulted(
	repo domain.Repository,
	consultations domain.ConsultationReader,
	tz string,
) *TodayUnconsulted {
	return &TodayUnconsulted{
		repo:          repo,
		consultations: consultations,
		tz:            tz,
		now:           time.Now,
	}
}

// Execute lists the vet's confirmed appointments for today, in the clinic
// timezone, that still have at least one animal without a consultation.
func (uc *TodayUnconsulted) Execute(ctx context.Context, vetID uint) ([]models.Appointment, error) {
	today := timezone.DateIn(uc.now(), uc.tz)

	aps, err := uc.repo.ListAppointments(ctx, domain.ListFilter{
		VeterinarianID: vetID,
		Statuses:       []domain.Status{domain.StatusConfirmed},
		Date:           &today,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Appointment, 0, len(aps))
	for _, ap := range aps {
		pending, err := unconsultedIDs(ctx, uc.consultations, ap)
		if err != nil {
			return nil, err
		}
		if len(pending) > 0 {
			out = append(out, ap)
		}
	}
	return out, nil
}

// ======================================================
// UNCONSULTED ANIMALS OF AN APPOINTMENT
// ======================================================

type UnconsultedAnimals struct {
	repo          domain.Repository
	consultations domain.ConsultationReader
}

func NewUnconsultedAnimals(
	repo domain.Repository,
	consultations domain.ConsultationReader,
) *UnconsultedAnimals {
	return &UnconsultedAnimals{repo: repo, consultations: consultations}
}

func (uc *UnconsultedAnimals) Execute(ctx context.Context, appointmentID uint) ([]models.Animal, error) {
	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	ids, err := unconsultedIDs(ctx, uc.consultations, *ap)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListAnimals(ctx, ids)
}

// unconsultedIDs lists the linked animals without a consultation, in link order.
func unconsultedIDs(
	ctx context.Context,
	consultations domain.ConsultationReader,
	ap models.Appointment,
) ([]uint, error) {

	out := []uint{}
	for _, link := range ap.AnimalLinks {
		has, err := consultations.HasConsultation(ctx, ap.ID, link.AnimalID)
		if err != nil {
			return nil, err
		}
		if !has {
			out = append(out, link.AnimalID)
		}
	}
	return out, nil
}
