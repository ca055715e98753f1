package appointment

import "github.com/BruksfildServices01/vet-scheduler/internal/models"

// Patch lists the mutable fields of an appointment. Nil means unchanged.
type Patch struct {
	Date            *string
	Time            *string
	DurationMinutes *int
	Kind            *models.AppointmentKind
	Reason          *string
	Notes           *string
	VeterinarianID  *uint
	OwnerID         *uint
}

// Reschedules reports whether the patch moves the appointment on the calendar.
func (p Patch) Reschedules() bool {
	return p.Date != nil || p.Time != nil || p.DurationMinutes != nil || p.VeterinarianID != nil
}

func ValidKind(k models.AppointmentKind) bool {
	return k == models.KindOnline || k == models.KindInPerson
}
