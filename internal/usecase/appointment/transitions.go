package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// ======================================================
// CONFIRM
// ======================================================

type ConfirmAppointment struct {
	repo    domain.Repository
	audit   audit.Recorder
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewConfirmAppointment(
	repo domain.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
) *ConfirmAppointment {
	return &ConfirmAppointment{
		repo:    repo,
		audit:   rec,
		metrics: m,
		now:     time.Now,
	}
}

func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	actorID *uint,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, _, err := updateLocked(ctx, uc.repo, appointmentID, func(_ domain.Repository, ap *models.Appointment) (bool, error) {
		return true, domain.Confirm(ap, uc.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.Transition(ap.Status)

	uc.audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   "appointment.confirmed",
		Entity:   "appointment",
		EntityID: audit.Ptr(ap.ID),
	})

	return ap, nil
}

// ======================================================
// CANCEL
// ======================================================

type CancelAppointment struct {
	repo    domain.Repository
	audit   audit.Recorder
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCancelAppointment(
	repo domain.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
) *CancelAppointment {
	return &CancelAppointment{
		repo:    repo,
		audit:   rec,
		metrics: m,
		now:     time.Now,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actorID *uint,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, _, err := updateLocked(ctx, uc.repo, appointmentID, func(_ domain.Repository, ap *models.Appointment) (bool, error) {
		return true, domain.Cancel(ap, uc.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.Transition(ap.Status)

	uc.audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   "appointment.canceled",
		Entity:   "appointment",
		EntityID: audit.Ptr(ap.ID),
	})

	return ap, nil
}
