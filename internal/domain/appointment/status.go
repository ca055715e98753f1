package appointment

import "github.com/BruksfildServices01/vet-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// ActiveStatuses are the statuses that hold a slot on the calendar.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusCompleted}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled:
		return st, nil
	}
	return "", httperr.ErrValidation("invalid_status", "Unknown appointment status: "+s)
}

// HoldsSlot reports whether the status is one of ActiveStatuses.
func (s Status) HoldsSlot() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// ===============================
// Validations
// ===============================

func InitialStatus() Status {
	return StatusPending
}

// CanConfirm: only pending appointments are confirmed by the veterinarian.
func CanConfirm(current Status) error {
	switch current {
	case StatusPending:
		return nil
	case StatusConfirmed:
		return httperr.ErrConflict("already_confirmed", "Appointment is already confirmed.")
	default:
		return httperr.ErrConflict("invalid_state", "Appointment cannot be confirmed from status "+string(current)+".")
	}
}

// CanCancel: pending and confirmed appointments can be canceled.
func CanCancel(current Status) error {
	switch current {
	case StatusPending, StatusConfirmed:
		return nil
	case StatusCanceled:
		return httperr.ErrConflict("already_canceled", "Appointment is already canceled.")
	default:
		return httperr.ErrConflict("invalid_state", "Appointment cannot be canceled from status "+string(current)+".")
	}
}

// CanComplete is reserved to the completion trigger.
func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrConflict("invalid_state", "Only confirmed appointments can be completed.")
	}
	return nil
}

func CanReschedule(current Status) error {
	if current.Terminal() {
		return httperr.ErrConflict("invalid_state", "Appointment can no longer be changed.")
	}
	return nil
}
