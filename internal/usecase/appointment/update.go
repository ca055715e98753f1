package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	availuc "github.com/BruksfildServices01/vet-scheduler/internal/usecase/availability"
)

type UpdateAppointment struct {
	repo     domain.Repository
	identity domain.IdentityProvider
	audit    audit.Recorder
	metrics  *metrics.Metrics
}

func NewUpdateAppointment(
	repo domain.Repository,
	identity domain.IdentityProvider,
	rec audit.Recorder,
	m *metrics.Metrics,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:     repo,
		identity: identity,
		audit:    rec,
		metrics:  m,
	}
}

// Execute applies p and re-validates the effective slot, ignoring the
// appointment's own reservation. The row lock is taken before the target
// day's booking lock.
func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	actorID *uint,
	id uint,
	p domain.Patch,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1) Patch values that do not depend on the row
	// --------------------------------------------------
	var (
		patchDate  *time.Time
		patchStart *availability.Clock
	)
	if p.Date != nil {
		d, err := availability.ParseDate(*p.Date)
		if err != nil {
			return nil, err
		}
		patchDate = &d
	}
	if p.Time != nil {
		c, err := availability.ParseClock(*p.Time)
		if err != nil {
			return nil, err
		}
		patchStart = &c
	}
	if p.DurationMinutes != nil {
		if err := availability.ValidateDuration(*p.DurationMinutes); err != nil {
			return nil, err
		}
	}
	if p.Kind != nil && !domain.ValidKind(*p.Kind) {
		return nil, httperr.ErrValidation("invalid_kind", "Kind must be online or in_person.")
	}

	// --------------------------------------------------
	// 2) Reassigned identities
	// --------------------------------------------------
	var (
		vet, owner *models.User
		err        error
	)
	if p.VeterinarianID != nil {
		if vet, err = uc.identity.FindUser(ctx, *p.VeterinarianID, models.RoleVeterinarian); err != nil {
			return nil, err
		}
	}
	if p.OwnerID != nil {
		if owner, err = uc.identity.FindUser(ctx, *p.OwnerID, models.RoleOwner); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 3) Validate + write on the locked row
	// --------------------------------------------------
	updated, _, err := updateLocked(ctx, uc.repo, id, func(tx domain.Repository, ap *models.Appointment) (bool, error) {
		if err := domain.CanReschedule(domain.Status(ap.Status)); err != nil {
			return false, err
		}

		date := ap.Date
		if patchDate != nil {
			date = *patchDate
		}
		var start availability.Clock
		if patchStart != nil {
			start = *patchStart
		} else {
			c, err := availability.ParseClock(ap.Time)
			if err != nil {
				return false, err
			}
			start = c
		}
		duration := ap.DurationMinutes
		if p.DurationMinutes != nil {
			duration = *p.DurationMinutes
		}
		vetID := ap.VeterinarianID
		if vet != nil {
			vetID = vet.ID
		}

		if err := tx.LockVetDay(ctx, vetID, date); err != nil {
			return false, err
		}
		if err := availuc.NewValidator(tx).ValidateOrThrow(ctx, availuc.SlotRequest{
			VeterinarianID:  vetID,
			Date:            date,
			Start:           start,
			DurationMinutes: duration,
			ExcludeID:       id,
		}); err != nil {
			return false, err
		}

		ap.Date = date
		ap.Time = start.String()
		ap.DurationMinutes = duration
		ap.VeterinarianID = vetID
		if owner != nil {
			ap.OwnerID = owner.ID
		}
		if p.Kind != nil {
			ap.Kind = *p.Kind
		}
		if p.Reason != nil {
			ap.Reason = strings.TrimSpace(*p.Reason)
		}
		if p.Notes != nil {
			ap.Notes = *p.Notes
		}
		return true, nil
	})
	if err != nil {
		if p.Reschedules() {
			uc.metrics.Booking("update", outcome(err))
		}
		return nil, err
	}
	if p.Reschedules() {
		uc.metrics.Booking("update", "ok")
	}

	if vet != nil {
		updated.Veterinarian = *vet
	}
	if owner != nil {
		updated.Owner = *owner
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   "appointment.updated",
		Entity:   "appointment",
		EntityID: audit.Ptr(id),
		Metadata: map[string]any{
			"rescheduled": p.Reschedules(),
		},
	})

	return updated, nil
}
