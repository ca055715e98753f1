package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Completion derives the completed state from recorded consultations. It is
// driven by the consultation service after each write.
type Completion struct {
	repo          domain.Repository
	consultations domain.ConsultationReader
	audit         audit.Recorder
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewCompletion(
	repo domain.Repository,
	consultations domain.ConsultationReader,
	rec audit.Recorder,
	m *metrics.Metrics,
) *Completion {
	return &Completion{
		repo:          repo,
		consultations: consultations,
		audit:         rec,
		metrics:       m,
		now:           time.Now,
	}
}

// OnConsultationRecorded completes a confirmed appointment once every linked
// animal has a consultation. Calling it again is a no-op.
func (uc *Completion) OnConsultationRecorded(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {

	var linkedCount int
	ap, changed, err := updateLocked(ctx, uc.repo, appointmentID, func(tx domain.Repository, ap *models.Appointment) (bool, error) {
		if domain.Status(ap.Status) != domain.StatusConfirmed {
			log.Debug().
				Uint("appointment_id", ap.ID).
				Str("status", ap.Status).
				Msg("consultation recorded, status left unchanged")
			return false, nil
		}

		linked, err := tx.LinkedAnimalIDs(ctx, appointmentID)
		if err != nil {
			return false, err
		}
		consulted, err := uc.consultations.DistinctConsultedAnimalIDs(ctx, appointmentID)
		if err != nil {
			return false, err
		}
		if !domain.AllConsulted(linked, consulted) {
			return false, nil
		}

		linkedCount = len(linked)
		return true, domain.Complete(ap, uc.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return ap, nil
	}
	uc.metrics.Transition(ap.Status)

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment.completed",
		Entity:   "appointment",
		EntityID: audit.Ptr(ap.ID),
		Metadata: map[string]any{"animals": linkedCount},
	})

	return ap, nil
}

// OnConsultationDeleted reverts a completed appointment to confirmed. Any
// other status is left as is.
func (uc *Completion) OnConsultationDeleted(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, changed, err := updateLocked(ctx, uc.repo, appointmentID, func(_ domain.Repository, ap *models.Appointment) (bool, error) {
		if !domain.Reopen(ap) {
			log.Warn().
				Uint("appointment_id", ap.ID).
				Str("status", ap.Status).
				Msg("consultation deleted on an appointment that was not completed")
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return ap, nil
	}
	uc.metrics.Transition(ap.Status)

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment.completion_reverted",
		Entity:   "appointment",
		EntityID: audit.Ptr(ap.ID),
	})

	return ap, nil
}
