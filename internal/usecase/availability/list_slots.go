package availability

import (
	"context"
	"fmt"
	"sort"

	domain "github.com/BruksfildServices01/vet-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
)

type ListSlotsInput struct {
	VeterinarianID  uint
	Date            string
	DurationMinutes int
}

type ListSlots struct {
	reader  Reader
	metrics *metrics.Metrics
}

func NewListSlots(reader Reader, m *metrics.Metrics) *ListSlots {
	return &ListSlots{reader: reader, metrics: m}
}

// Execute returns the bookable start times for the vet on the date. Each
// window is walked independently in start order, so overlapping windows can
// yield the same start twice.
func (uc *ListSlots) Execute(
	ctx context.Context,
	in ListSlotsInput,
) ([]string, error) {

	if in.VeterinarianID == 0 {
		return nil, httperr.ErrValidation("missing_veterinarian", "Veterinarian is required.")
	}
	if err := domain.ValidateDuration(in.DurationMinutes); err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}

	uc.metrics.SlotQuery()

	windows, err := uc.reader.ListAvailableWindowsForDate(ctx, in.VeterinarianID, date)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	if len(windows) == 0 {
		return []string{}, nil
	}

	appointments, err := uc.reader.ListAppointmentsForDay(ctx, in.VeterinarianID, date, 0)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	taken := reservedRanges(appointments)

	type bounds struct {
		start domain.Clock
		end   domain.Clock
	}
	spans := make([]bounds, 0, len(windows))
	for _, w := range windows {
		if !domain.AppliesTo(w, date) {
			continue
		}
		start, end, err := domain.Bounds(w)
		if err != nil {
			return nil, err
		}
		spans = append(spans, bounds{start: start, end: end})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	slots := []string{}
	for _, span := range spans {
		for cur := span.start; cur.Add(in.DurationMinutes) <= span.end; cur = cur.Add(in.DurationMinutes) {
			slotEnd := cur.Add(in.DurationMinutes)

			conflict := false
			for _, r := range taken {
				if domain.Overlaps(cur, slotEnd, r.start, r.end) {
					conflict = true
					break
				}
			}

			if !conflict {
				slots = append(slots, cur.String())
			}
		}
	}

	return slots, nil
}
