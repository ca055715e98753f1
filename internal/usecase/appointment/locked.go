package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// updateLocked re-reads the appointment with a row lock, lets apply mutate
// it and saves it in the same transaction. apply returns false to leave the
// row untouched. Every read-modify-write of an appointment goes through here
// so concurrent writers never save a stale copy over each other.
func updateLocked(
	ctx context.Context,
	repo domain.Repository,
	id uint,
	apply func(tx domain.Repository, ap *models.Appointment) (bool, error),
) (*models.Appointment, bool, error) {

	var (
		out     *models.Appointment
		changed bool
	)
	err := repo.WithinTransaction(ctx, func(tx domain.Repository) error {
		ap, err := tx.GetAppointmentForUpdate(ctx, id)
		if err != nil {
			return err
		}

		ok, err := apply(tx, ap)
		if err != nil {
			return err
		}
		if ok {
			if err := tx.UpdateAppointment(ctx, ap); err != nil {
				return err
			}
		}

		out, changed = ap, ok
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, changed, nil
}
