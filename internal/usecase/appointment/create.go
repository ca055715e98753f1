package appointment

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	availuc "github.com/BruksfildServices01/vet-scheduler/internal/usecase/availability"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	ActorID *uint

	VeterinarianID uint
	OwnerID        uint

	Date            string
	Time            string
	DurationMinutes int

	Kind   models.AppointmentKind
	Reason string
	Notes  string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo            domain.Repository
	identity        domain.IdentityProvider
	audit           audit.Recorder
	metrics         *metrics.Metrics
	defaultDuration int
}

func NewCreateAppointment(
	repo domain.Repository,
	identity domain.IdentityProvider,
	rec audit.Recorder,
	m *metrics.Metrics,
	defaultDuration int,
) *CreateAppointment {
	if defaultDuration <= 0 {
		defaultDuration = domain.DefaultDurationMinutes
	}
	return &CreateAppointment{
		repo:            repo,
		identity:        identity,
		audit:           rec,
		metrics:         m,
		defaultDuration: defaultDuration,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1) Input shape
	// --------------------------------------------------
	date, err := availability.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	start, err := availability.ParseClock(in.Time)
	if err != nil {
		return nil, err
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = uc.defaultDuration
	}
	if err := availability.ValidateDuration(duration); err != nil {
		return nil, err
	}

	if !domain.ValidKind(in.Kind) {
		return nil, httperr.ErrValidation("invalid_kind", "Kind must be online or in_person.")
	}

	// --------------------------------------------------
	// 2) Identities
	// --------------------------------------------------
	vet, err := uc.identity.FindUser(ctx, in.VeterinarianID, models.RoleVeterinarian)
	if err != nil {
		return nil, err
	}
	owner, err := uc.identity.FindUser(ctx, in.OwnerID, models.RoleOwner)
	if err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		Date:            date,
		Time:            start.String(),
		DurationMinutes: duration,
		VeterinarianID:  vet.ID,
		OwnerID:         owner.ID,
		Reason:          strings.TrimSpace(in.Reason),
		Kind:            in.Kind,
		Status:          string(domain.InitialStatus()),
		Notes:           in.Notes,
	}

	// --------------------------------------------------
	// 3) Availability + conflict + insert, atomically
	// --------------------------------------------------
	err = uc.repo.WithinVetDayLock(ctx, vet.ID, date, func(tx domain.Repository) error {
		if err := availuc.NewValidator(tx).ValidateOrThrow(ctx, availuc.SlotRequest{
			VeterinarianID:  vet.ID,
			Date:            date,
			Start:           start,
			DurationMinutes: duration,
		}); err != nil {
			return err
		}
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		uc.metrics.Booking("create", outcome(err))
		return nil, err
	}
	uc.metrics.Booking("create", "ok")

	ap.Veterinarian = *vet
	ap.Owner = *owner

	// --------------------------------------------------
	// 4) Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		ActorID:  in.ActorID,
		Action:   "appointment.created",
		Entity:   "appointment",
		EntityID: audit.Ptr(ap.ID),
		Metadata: map[string]any{
			"veterinarian_id": ap.VeterinarianID,
			"date":            ap.Date.Format(availability.DateLayout),
			"time":            ap.Time,
			"duration":        ap.DurationMinutes,
		},
	})

	return ap, nil
}

// outcome labels a failed booking for metrics.
func outcome(err error) string {
	switch httperr.KindOf(err) {
	case httperr.KindUnavailable:
		return "unavailable"
	case httperr.KindConflict:
		return "conflict"
	case httperr.KindValidation:
		return "invalid"
	case httperr.KindNotFound:
		return "not_found"
	}
	return "error"
}
