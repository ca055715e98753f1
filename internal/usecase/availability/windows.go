package availability

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/models"
)

// Identity resolves a user with a required role.
type Identity interface {
	FindUser(ctx context.Context, id uint, role models.Role) (*models.User, error)
}

// ======================================================
// INPUT
// ======================================================

type WindowInput struct {
	ActorID        *uint
	VeterinarianID uint

	// Exactly one of DayOfWeek or ExceptionalDate.
	DayOfWeek       string
	ExceptionalDate string

	StartTime   string
	EndTime     string
	Mode        models.ConsultationMode
	IsAvailable *bool
}

type WindowPatch struct {
	ActorID *uint

	DayOfWeek       *string
	ExceptionalDate *string
	StartTime       *string
	EndTime         *string
	Mode            *models.ConsultationMode
	IsAvailable     *bool
}

func buildWindow(in WindowInput) (models.AvailabilityWindow, error) {
	w := models.AvailabilityWindow{
		VeterinarianID: in.VeterinarianID,
		StartTime:      strings.TrimSpace(in.StartTime),
		EndTime:        strings.TrimSpace(in.EndTime),
		Mode:           in.Mode,
		IsAvailable:    true,
	}
	if w.Mode == "" {
		w.Mode = models.ModeBoth
	}
	if in.IsAvailable != nil {
		w.IsAvailable = *in.IsAvailable
	}

	if err := setDay(&w, in.DayOfWeek, in.ExceptionalDate); err != nil {
		return w, err
	}
	return w, nil
}

func setDay(w *models.AvailabilityWindow, day, date string) error {
	w.DayOfWeek = nil
	w.ExceptionalDate = nil
	w.IsExceptional = false

	if day != "" {
		wd, err := domain.ParseWeekday(day)
		if err != nil {
			return err
		}
		s := wd.String()
		w.DayOfWeek = &s
	}
	if date != "" {
		d, err := domain.ParseDate(date)
		if err != nil {
			return err
		}
		w.ExceptionalDate = &d
		w.IsExceptional = true
	}
	return nil
}

func checkOverlap(ctx context.Context, tx domain.Repository, w models.AvailabilityWindow) error {
	existing, err := tx.ListWindowsByVeterinarianAndDay(ctx, w.VeterinarianID, domain.KeyOf(w))
	if err != nil {
		return err
	}
	other, err := domain.FindOverlap(w, existing)
	if err != nil {
		return err
	}
	if other != nil {
		return httperr.ErrValidation(
			"overlapping_window",
			"Window overlaps "+other.StartTime+"-"+other.EndTime+" on "+domain.KeyOf(*other).String()+".",
		)
	}
	return nil
}

// ======================================================
// CREATE
// ======================================================

type CreateWindow struct {
	repo     domain.Repository
	identity Identity
	audit    audit.Recorder
}

func NewCreateWindow(repo domain.Repository, identity Identity, rec audit.Recorder) *CreateWindow {
	return &CreateWindow{repo: repo, identity: identity, audit: rec}
}

func (uc *CreateWindow) Execute(ctx context.Context, in WindowInput) (*models.AvailabilityWindow, error) {
	w, err := buildWindow(in)
	if err != nil {
		return nil, err
	}
	if err := domain.Validate(w); err != nil {
		return nil, err
	}

	if _, err := uc.identity.FindUser(ctx, w.VeterinarianID, models.RoleVeterinarian); err != nil {
		return nil, err
	}

	err = uc.repo.WithinVetLock(ctx, w.VeterinarianID, func(tx domain.Repository) error {
		if err := checkOverlap(ctx, tx, w); err != nil {
			return err
		}
		return tx.CreateWindow(ctx, &w)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  in.ActorID,
		Action:   "availability_window.created",
		Entity:   "availability_window",
		EntityID: audit.Ptr(w.ID),
		Metadata: map[string]any{"day": domain.KeyOf(w).String(), "start": w.StartTime, "end": w.EndTime},
	})

	return &w, nil
}

// ======================================================
// UPDATE
// ======================================================

type UpdateWindow struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewUpdateWindow(repo domain.Repository, rec audit.Recorder) *UpdateWindow {
	return &UpdateWindow{repo: repo, audit: rec}
}

func (uc *UpdateWindow) Execute(ctx context.Context, id uint, p WindowPatch) (*models.AvailabilityWindow, error) {
	current, err := uc.repo.GetWindow(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated models.AvailabilityWindow
	err = uc.repo.WithinVetLock(ctx, current.VeterinarianID, func(tx domain.Repository) error {
		w, err := tx.GetWindow(ctx, id)
		if err != nil {
			return err
		}

		if p.DayOfWeek != nil || p.ExceptionalDate != nil {
			var day, date string
			if p.DayOfWeek != nil {
				day = *p.DayOfWeek
			}
			if p.ExceptionalDate != nil {
				date = *p.ExceptionalDate
			}
			if err := setDay(w, day, date); err != nil {
				return err
			}
		}
		if p.StartTime != nil {
			w.StartTime = strings.TrimSpace(*p.StartTime)
		}
		if p.EndTime != nil {
			w.EndTime = strings.TrimSpace(*p.EndTime)
		}
		if p.Mode != nil {
			w.Mode = *p.Mode
		}
		if p.IsAvailable != nil {
			w.IsAvailable = *p.IsAvailable
		}

		if err := domain.Validate(*w); err != nil {
			return err
		}
		if err := checkOverlap(ctx, tx, *w); err != nil {
			return err
		}
		if err := tx.UpdateWindow(ctx, w); err != nil {
			return err
		}
		updated = *w
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  p.ActorID,
		Action:   "availability_window.updated",
		Entity:   "availability_window",
		EntityID: audit.Ptr(id),
	})

	return &updated, nil
}

// ======================================================
// DELETE
// ======================================================

type DeleteWindow struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewDeleteWindow(repo domain.Repository, rec audit.Recorder) *DeleteWindow {
	return &DeleteWindow{repo: repo, audit: rec}
}

func (uc *DeleteWindow) Execute(ctx context.Context, actorID *uint, id uint) error {
	if _, err := uc.repo.GetWindow(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.DeleteWindow(ctx, id); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   "availability_window.deleted",
		Entity:   "availability_window",
		EntityID: audit.Ptr(id),
	})
	return nil
}

// ======================================================
// LIST
// ======================================================

type ListWindows struct {
	repo domain.Repository
}

func NewListWindows(repo domain.Repository) *ListWindows {
	return &ListWindows{repo: repo}
}

// Execute lists all windows of the vet, or only those keyed to day when it
// is a weekday name or an ISO date.
func (uc *ListWindows) Execute(ctx context.Context, vetID uint, day string) ([]models.AvailabilityWindow, error) {
	if vetID == 0 {
		return nil, httperr.ErrValidation("missing_veterinarian", "Veterinarian is required.")
	}

	if strings.TrimSpace(day) == "" {
		return uc.repo.ListWindowsByVeterinarian(ctx, vetID)
	}

	key, err := domain.ParseDayKey(day)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_day", "Day must be a weekday name or a date (YYYY-MM-DD).")
	}
	return uc.repo.ListWindowsByVeterinarianAndDay(ctx, vetID, key)
}
