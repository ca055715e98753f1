package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
	"github.com/BruksfildServices01/vet-scheduler/internal/payments"
)

type failingDeduper struct{}

func (failingDeduper) FirstSeen(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}
func (failingDeduper) Forget(context.Context, string) error { return nil }

// interleavedRepo runs during once, right after the first locked read inside
// a transaction, while that transaction still holds the row.
type interleavedRepo struct {
	*memory.Store
	once   sync.Once
	during func()
}

func (r *interleavedRepo) WithinTransaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.Store.WithinTransaction(ctx, func(tx domain.Repository) error {
		return fn(&hookedTx{Repository: tx, after: func() { r.once.Do(r.during) }})
	})
}

type hookedTx struct {
	domain.Repository
	after func()
}

func (h *hookedTx) GetAppointmentForUpdate(ctx context.Context, id uint) (*models.Appointment, error) {
	ap, err := h.Repository.GetAppointmentForUpdate(ctx, id)
	h.after()
	return ap, err
}

func TestPaymentEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ap, err := f.create(ctx, "09:00", 30)
	require.NoError(t, err)

	uc := NewPayments(f.store, payments.NewMemoryDeduper(time.Hour), f.audit, nil)

	res, err := uc.HandleEvent(ctx, PaymentEvent{
		EventID: "evt_1", Provider: "mp", AppointmentID: ap.ID, PaymentID: 77, Status: models.PaymentSucceeded,
	})
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	require.NotNil(t, res.Appointment.LastSuccessfulPaymentID)
	assert.Equal(t, uint(77), *res.Appointment.LastSuccessfulPaymentID)

	res, err = uc.HandleEvent(ctx, PaymentEvent{
		EventID: "evt_1", Provider: "mp", AppointmentID: ap.ID, PaymentID: 78, Status: models.PaymentSucceeded,
	})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	stored, err := f.store.GetAppointment(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(77), *stored.LastSuccessfulPaymentID)

	res, err = uc.HandleEvent(ctx, PaymentEvent{
		EventID: "evt_2", Provider: "mp", AppointmentID: ap.ID, PaymentID: 79, Status: models.PaymentFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(77), *res.Appointment.LastSuccessfulPaymentID, "failures keep the last success")
	assert.Contains(t, f.audit.actions(), "payment.failed")
}

func TestPaymentEventValidationAndRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dedupe := payments.NewMemoryDeduper(time.Hour)
	uc := NewPayments(f.store, dedupe, f.audit, nil)

	_, err := uc.HandleEvent(ctx, PaymentEvent{AppointmentID: 1, Status: "refunded"})
	assert.True(t, httperr.IsKind(err, httperr.KindValidation))

	_, err = uc.HandleEvent(ctx, PaymentEvent{AppointmentID: 1, Status: models.PaymentSucceeded})
	assert.True(t, httperr.IsBusiness(err, "missing_payment"))

	ev := PaymentEvent{EventID: "evt_9", Provider: "mp", AppointmentID: 999, PaymentID: 5, Status: models.PaymentSucceeded}
	_, err = uc.HandleEvent(ctx, ev)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	// the failed delivery released its key, so a retry is processed again
	_, err = uc.HandleEvent(ctx, ev)
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))

	_, err = NewPayments(f.store, failingDeduper{}, f.audit, nil).HandleEvent(ctx, PaymentEvent{
		EventID: "evt_10", AppointmentID: 1, PaymentID: 1, Status: models.PaymentSucceeded,
	})
	assert.ErrorContains(t, err, "redis down")
}

func TestPaymentAndCancelDoNotLoseUpdates(t *testing.T) {
	cases := []struct {
		name        string
		paymentSide bool
	}{
		{"cancel lands while payment holds the row", true},
		{"payment lands while cancel holds the row", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			ap, err := f.create(ctx, "09:00", 30)
			require.NoError(t, err)

			ev := PaymentEvent{EventID: "evt_race", Provider: "mp", AppointmentID: ap.ID, PaymentID: 77, Status: models.PaymentSucceeded}

			var (
				wg       sync.WaitGroup
				otherErr error
			)
			repo := &interleavedRepo{Store: f.store}
			repo.during = func() {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if tc.paymentSide {
						_, otherErr = NewCancelAppointment(f.store, audit.Nop{}, nil).Execute(ctx, nil, ap.ID)
					} else {
						_, otherErr = NewPayments(f.store, payments.NewMemoryDeduper(time.Hour), audit.Nop{}, nil).HandleEvent(ctx, ev)
					}
				}()
				time.Sleep(20 * time.Millisecond)
			}

			if tc.paymentSide {
				_, err = NewPayments(repo, payments.NewMemoryDeduper(time.Hour), audit.Nop{}, nil).HandleEvent(ctx, ev)
			} else {
				_, err = NewCancelAppointment(repo, audit.Nop{}, nil).Execute(ctx, nil, ap.ID)
			}
			require.NoError(t, err)
			wg.Wait()
			require.NoError(t, otherErr)

			stored, err := f.store.GetAppointment(ctx, ap.ID)
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusCanceled), stored.Status)
			require.NotNil(t, stored.LastSuccessfulPaymentID)
			assert.Equal(t, uint(77), *stored.LastSuccessfulPaymentID)
		})
	}
}
