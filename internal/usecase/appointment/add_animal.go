package appointment

import (
	"context"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

type AddAnimal struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewAddAnimal(repo domain.Repository, rec audit.Recorder) *AddAnimal {
	return &AddAnimal{repo: repo, audit: rec}
}

// Execute links the animal to the appointment once.
func (uc *AddAnimal) Execute(
	ctx context.Context,
	actorID *uint,
	appointmentID uint,
	animalID uint,
) (*models.Appointment, error) {

	if _, err := uc.repo.GetAppointment(ctx, appointmentID); err != nil {
		return nil, err
	}
	if _, err := uc.repo.GetAnimal(ctx, animalID); err != nil {
		return nil, err
	}

	linked, err := uc.repo.HasAnimalLink(ctx, appointmentID, animalID)
	if err != nil {
		return nil, err
	}
	if linked {
		return nil, httperr.ErrConflict("animal_already_linked", "Animal is already on this appointment.")
	}

	if err := uc.repo.AddAnimalLink(ctx, &models.AppointmentAnimal{
		AppointmentID: appointmentID,
		AnimalID:      animalID,
	}); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   "appointment.animal_added",
		Entity:   "appointment",
		EntityID: audit.Ptr(appointmentID),
		Metadata: map[string]any{"animal_id": animalID},
	})

	return uc.repo.GetAppointment(ctx, appointmentID)
}
