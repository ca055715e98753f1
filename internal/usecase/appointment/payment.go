package appointment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Deduper remembers provider event ids so retried deliveries are applied once.
type Deduper interface {
	// FirstSeen marks key and reports whether it was new.
	FirstSeen(ctx context.Context, key string) (bool, error)
	// Forget releases key so a failed delivery can be retried.
	Forget(ctx context.Context, key string) error
}

type PaymentEvent struct {
	EventID       string
	Provider      string
	AppointmentID uint
	PaymentID     uint
	Status        models.PaymentStatus
}

type PaymentResult struct {
	Duplicate   bool
	Appointment *models.Appointment
}

// Payments stores the last successful payment reference on appointments.
type Payments struct {
	repo    domain.Repository
	dedupe  Deduper
	audit   audit.Recorder
	metrics *metrics.Metrics
}

func NewPayments(
	repo domain.Repository,
	dedupe Deduper,
	rec audit.Recorder,
	m *metrics.Metrics,
) *Payments {
	return &Payments{
		repo:    repo,
		dedupe:  dedupe,
		audit:   rec,
		metrics: m,
	}
}

// HandleEvent applies a provider event at most once per event id.
func (uc *Payments) HandleEvent(ctx context.Context, ev PaymentEvent) (*PaymentResult, error) {
	if ev.AppointmentID == 0 {
		return nil, httperr.ErrValidation("missing_appointment", "Appointment is required.")
	}
	if ev.Status != models.PaymentSucceeded && ev.Status != models.PaymentFailed {
		return nil, httperr.ErrValidation("invalid_payment_status", "Status must be succeeded or failed.")
	}
	if ev.Status == models.PaymentSucceeded && ev.PaymentID == 0 {
		return nil, httperr.ErrValidation("missing_payment", "Successful events need a payment id.")
	}

	key := ""
	if ev.EventID != "" && uc.dedupe != nil {
		key = ev.Provider + ":" + ev.EventID
		first, err := uc.dedupe.FirstSeen(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("dedupe payment event: %w", err)
		}
		if !first {
			uc.metrics.Payment(string(ev.Status), "duplicate")
			return &PaymentResult{Duplicate: true}, nil
		}
	}

	var (
		ap  *models.Appointment
		err error
	)
	if ev.Status == models.PaymentSucceeded {
		ap, err = uc.RecordPaymentSuccess(ctx, ev.AppointmentID, ev.PaymentID)
	} else {
		ap, err = uc.RecordPaymentFailure(ctx, ev.AppointmentID, ev.PaymentID)
	}
	if err != nil {
		if key != "" {
			if ferr := uc.dedupe.Forget(ctx, key); ferr != nil {
				log.Error().Err(ferr).Str("key", key).Msg("release payment event key")
			}
		}
		uc.metrics.Payment(string(ev.Status), "error")
		return nil, err
	}

	uc.metrics.Payment(string(ev.Status), "recorded")
	return &PaymentResult{Appointment: ap}, nil
}

// RecordPaymentSuccess stores paymentID as the appointment's last successful
// payment. The reference is weak: the payment row is owned elsewhere.
func (uc *Payments) RecordPaymentSuccess(
	ctx context.Context,
	appointmentID uint,
	paymentID uint,
) (*models.Appointment, error) {

	ap, _, err := updateLocked(ctx, uc.repo, appointmentID, func(_ domain.Repository, ap *models.Appointment) (bool, error) {
		ap.LastSuccessfulPaymentID = &paymentID
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "payment.succeeded",
		Entity:   "appointment",
		EntityID: audit.Ptr(ap.ID),
		Metadata: map[string]any{"payment_id": paymentID},
	})

	return ap, nil
}

// RecordPaymentFailure leaves the appointment untouched and records the event.
func (uc *Payments) RecordPaymentFailure(
	ctx context.Context,
	appointmentID uint,
	paymentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	log.Warn().
		Uint("appointment_id", ap.ID).
		Uint("payment_id", paymentID).
		Msg("payment failed")

	uc.audit.Dispatch(audit.Event{
		Action:   "payment.failed",
		Entity:   "appointment",
		EntityID: audit.Ptr(ap.ID),
		Metadata: map[string]any{"payment_id": paymentID},
	})

	return ap, nil
}
