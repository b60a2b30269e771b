package service

import (
	"context"
	"errors"
	"fmt"

	"guichet/internal/booking/validator"
	store "guichet/pkg/db/mongo"
	apperrors "guichet/pkg/errors"
	"guichet/pkg/model"
)

func (s *bookingService) AddSlots(ctx context.Context, req *validator.AddSlotsRequest) ([]*model.Slot, error) {
	if err := s.validator.Validate(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, apperrors.Validation("Invalid slot batch", map[string]any{"errors": validationErrs})
		}
		return nil, apperrors.Internal("Slot batch validation failed", err)
	}

	if _, err := s.sites.FindByID(ctx, req.SiteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Site", req.SiteID)
		}
		return nil, apperrors.Internal("Failed to load site", err)
	}

	staff, err := s.staffing.CountAssignedStaff(ctx, req.SiteID)
	if err != nil {
		s.cfg.Log.Error("Staffing lookup failed", "site_id", req.SiteID, "error", err)
		return nil, apperrors.Unavailable("Staffing service")
	}
	if req.Desks > staff {
		return nil, apperrors.Validation(
			fmt.Sprintf("Cannot open %d desks with only %d assigned staff", req.Desks, staff), nil)
	}

	slots := tileWindow(req)
	if len(slots) == 0 {
		return nil, apperrors.Validation("Window is too short for a single slot", nil)
	}
	if len(slots) > s.cfg.SlotBatchMax {
		return nil, apperrors.Validation(
			fmt.Sprintf("Batch would create %d slots, limit is %d", len(slots), s.cfg.SlotBatchMax), nil)
	}

	if err := s.slots.InsertMany(ctx, slots); err != nil {
		return nil, apperrors.Internal("Failed to insert slot batch", err)
	}

	s.cfg.Log.Info("Slot batch created",
		"site_id", req.SiteID,
		"slot_count", len(slots),
		"desks", req.Desks,
		"window_start", req.WindowStart,
	)
	return slots, nil
}

// tileWindow lays back-to-back slots of the requested duration across
// the window, one run per desk. Parallel desks share the same grid of
// start times. The margin is recorded on every slot, or only on the
// first slot of each run when the batch asks for that.
func tileWindow(req *validator.AddSlotsRequest) []*model.Slot {
	duration := req.Duration()

	var slots []*model.Slot
	for desk := 0; desk < req.Desks; desk++ {
		first := true
		for start := req.WindowStart; !start.Add(duration).After(req.WindowEnd); start = start.Add(duration) {
			margin := req.Margin
			if req.MarginFirstOnly && !first {
				margin = 0
			}
			slots = append(slots, &model.Slot{
				SiteID:    req.SiteID,
				StartTime: start,
				EndTime:   start.Add(duration),
				Margin:    margin,
			})
			first = false
		}
	}
	return slots
}
