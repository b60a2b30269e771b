package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "guichet/internal/booking/errors"
	"guichet/internal/booking/repository"
	"guichet/internal/booking/validator"
	"guichet/pkg/config"
	store "guichet/pkg/db/mongo"
	apperrors "guichet/pkg/errors"
	"guichet/pkg/model"
)

// StaffingLookup answers how many agents are assigned to a site. Used
// only by schedule generation to cap the desk count.
type StaffingLookup interface {
	CountAssignedStaff(ctx context.Context, siteID string) (int, error)
}

// BookOptions tunes one booking attempt. A zero MaxDaysAhead falls back
// to the site's own lookahead window, then to the configured default;
// a negative value means unlimited lookahead. A zero ReferenceTime
// means now.
type BookOptions struct {
	MaxDaysAhead  int
	Family        bool
	ReferenceTime time.Time
}

// ListFilter narrows ListUpcomingSlots. A zero From means now.
type ListFilter struct {
	From     time.Time
	FreeOnly bool
	Limit    int
}

type BookingService interface {
	// Book finds and atomically reserves one free future slot at the
	// site (two consecutive ones for a family). Concurrent bookings
	// coordinate through the store's compare-and-swap; the whole
	// search-and-reserve cycle retries on conflict. An unsatisfied
	// search is a valid outcome, not an error.
	Book(ctx context.Context, siteID string, ref model.CaseRef, opts BookOptions) (*model.BookingResult, error)

	// Confirm runs the deferred lead-time check and marks the result
	// confirmed. Call it only after the case file the slots are linked
	// to has been durably saved.
	Confirm(ctx context.Context, result *model.BookingResult) error

	// Cancel releases every slot held by the result. Used when the
	// caller's own save fails, so reserved slots are never stranded.
	Cancel(ctx context.Context, result *model.BookingResult) error

	// ReserveAll reserves the given slots as one all-or-nothing batch:
	// any failure releases the slots already taken in this call before
	// the error is returned.
	ReserveAll(ctx context.Context, slotIDs []string, ref model.CaseRef) ([]*model.Slot, error)

	// ReleaseSlot frees a single reserved slot.
	ReleaseSlot(ctx context.Context, slotID string) (*model.Slot, error)

	// AddSlots bulk-creates the slots tiling a schedule window. The
	// whole batch is validated before anything is persisted.
	AddSlots(ctx context.Context, req *validator.AddSlotsRequest) ([]*model.Slot, error)

	// ListUpcomingSlots is the display read path, no locking involved.
	ListUpcomingSlots(ctx context.Context, siteID string, filter ListFilter) ([]*model.Slot, error)
}

type bookingService struct {
	slots     repository.SlotRepository
	sites     repository.SiteRepository
	staffing  StaffingLookup
	validator *validator.ScheduleValidator
	alerts    *alertEmitter
	cfg       *config.Config
}

func NewBookingService(
	slots repository.SlotRepository,
	sites repository.SiteRepository,
	alertRepo repository.AlertRepository,
	staffing StaffingLookup,
	scheduleValidator *validator.ScheduleValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		slots:     slots,
		sites:     sites,
		staffing:  staffing,
		validator: scheduleValidator,
		alerts:    newAlertEmitter(alertRepo, publisher, cfg),
		cfg:       cfg,
	}
}

func (s *bookingService) Book(ctx context.Context, siteID string, ref model.CaseRef, opts BookOptions) (*model.BookingResult, error) {
	if siteID == "" {
		return nil, apperrors.InvalidInput("Site ID cannot be empty")
	}
	if !ref.Kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown case kind: %q", ref.Kind))
	}

	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Site", siteID)
		}
		return nil, apperrors.Internal("Failed to load site", err)
	}

	refTime := opts.ReferenceTime
	if refTime.IsZero() {
		refTime = time.Now()
	}
	searchStart := nextBusinessDay(refTime)
	searchEnd := s.searchWindowEnd(searchStart, site, opts)

	slots, err := s.searchAndReserve(ctx, siteID, ref, searchStart, searchEnd, opts.Family)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrRetriesExhausted) {
			return nil, apperrors.PreconditionFailed("Slot reservation kept conflicting with concurrent bookings", err)
		}
		return nil, err
	}

	result := &model.BookingResult{
		Slots:       slots,
		Satisfied:   len(slots) > 0,
		SearchStart: searchStart,
	}

	if !result.Satisfied {
		s.alerts.Emit(ctx, siteID, model.AlertNoSlotsAvailable, "no free slots left at site")
		s.cfg.Log.Warn("Booking unsatisfied, no eligible slots",
			"site_id", siteID,
			"family", opts.Family,
			"search_start", searchStart,
		)
		return result, nil
	}

	s.cfg.Log.Info("Slots reserved",
		"site_id", siteID,
		"family", opts.Family,
		"slot_count", len(slots),
		"first_start", slots[0].StartTime,
	)
	return result, nil
}

// searchWindowEnd bounds the candidate window. The caller's option wins
// over the site's own lookahead, which wins over the configured
// default; a non-positive resolved value leaves the window open.
func (s *bookingService) searchWindowEnd(searchStart time.Time, site *model.Site, opts BookOptions) time.Time {
	maxDays := opts.MaxDaysAhead
	if maxDays == 0 {
		maxDays = site.MaxDaysAhead
	}
	if maxDays == 0 {
		maxDays = s.cfg.BookingMaxDaysAhead
	}
	if maxDays <= 0 {
		return time.Time{}
	}
	return addBusinessDays(searchStart, maxDays)
}

// searchAndReserve runs the bounded retry loop. Every iteration
// refetches the candidate list, so a conflict simply means another
// booking won a slot between our read and our write.
func (s *bookingService) searchAndReserve(ctx context.Context, siteID string, ref model.CaseRef, from, until time.Time, family bool) ([]*model.Slot, error) {
	for attempt := 1; ; attempt++ {
		candidates, err := s.slots.FindAvailable(ctx, siteID, from, until)
		if err != nil {
			return nil, apperrors.Internal("Failed to query free slots", err)
		}

		var slots []*model.Slot
		if family {
			slots, err = s.reservePair(ctx, candidates, ref)
		} else {
			slots, err = s.reserveSingle(ctx, candidates, ref)
		}
		if err == nil {
			return slots, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}

		s.cfg.Log.Debug("Slot reservation conflicted, retrying",
			"site_id", siteID,
			"attempt", attempt,
		)
		if attempt >= s.cfg.BookingMaxRetries {
			return nil, fmt.Errorf("%w after %d attempts: %w", bookingerrors.ErrRetriesExhausted, attempt, err)
		}
	}
}

func (s *bookingService) reserveSingle(ctx context.Context, candidates []*model.Slot, ref model.CaseRef) ([]*model.Slot, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	slot := candidates[0]
	if err := slot.Reserve(ref); err != nil {
		return nil, apperrors.Internal("Free-slot query returned a reserved slot", err)
	}
	if err := s.slots.Save(ctx, slot, slot.Version); err != nil {
		return nil, err
	}
	return []*model.Slot{slot}, nil
}

// reservePair scans the ordered candidates for the first back-to-back
// pair. Slots sharing a start time are parallel desks for the same
// period, never a valid pair, so the scan advances past them. The
// first slot is always reserved and saved before the second; if the
// second save loses the race the first is released again, so a failed
// family booking never leaves a half-reserved pair behind.
func (s *bookingService) reservePair(ctx context.Context, candidates []*model.Slot, ref model.CaseRef) ([]*model.Slot, error) {
	for i := 0; i+1 < len(candidates); i++ {
		first, second := candidates[i], candidates[i+1]
		if first.StartTime.Equal(second.StartTime) {
			continue
		}
		if !first.EndTime.Equal(second.StartTime) {
			continue
		}

		if err := first.Reserve(ref); err != nil {
			return nil, apperrors.Internal("Free-slot query returned a reserved slot", err)
		}
		if err := s.slots.Save(ctx, first, first.Version); err != nil {
			return nil, err
		}

		if err := second.Reserve(ref); err != nil {
			s.rollbackHeld(ctx, first)
			return nil, apperrors.Internal("Free-slot query returned a reserved slot", err)
		}
		if err := s.slots.Save(ctx, second, second.Version); err != nil {
			s.rollbackHeld(ctx, first)
			return nil, err
		}

		return []*model.Slot{first, second}, nil
	}

	return nil, nil
}

// rollbackHeld undoes a reservation this attempt already persisted.
// Best effort: the slot was saved moments ago at a version we hold, so
// a failure here means something raced an operator write; it is logged
// rather than masking the original error.
func (s *bookingService) rollbackHeld(ctx context.Context, slot *model.Slot) {
	if err := slot.Release(); err != nil {
		s.cfg.Log.Error("Failed to undo slot reservation", "slot_id", slot.ID, "error", err)
		return
	}
	if err := s.slots.Save(ctx, slot, slot.Version); err != nil {
		s.cfg.Log.Error("Failed to persist slot rollback", "slot_id", slot.ID, "error", err)
	}
}

func (s *bookingService) Confirm(ctx context.Context, result *model.BookingResult) error {
	if result == nil || !result.Satisfied || len(result.Slots) == 0 {
		return apperrors.InvalidInput("Cannot confirm an unsatisfied booking")
	}
	if result.Confirmed {
		return nil
	}

	first := result.Slots[0]
	lead := businessDaysBetween(result.SearchStart, first.StartTime)
	if lead > s.cfg.LeadTimeAlertDays {
		s.alerts.Emit(ctx, first.SiteID, model.AlertLongLeadTime,
			fmt.Sprintf("next appointment only available in %d business days", lead))
	}

	result.Confirmed = true
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, result *model.BookingResult) error {
	if result == nil || len(result.Slots) == 0 {
		return bookingerrors.ErrNotSatisfied
	}

	var errs []error
	for _, slot := range result.Slots {
		if err := s.releaseAndSave(ctx, slot); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return apperrors.Internal("Failed to release booked slots", errors.Join(errs...))
	}

	result.Satisfied = false
	result.Confirmed = false
	s.cfg.Log.Info("Booking cancelled, slots released", "slot_count", len(result.Slots))
	return nil
}

// releaseAndSave reloads the persisted state first so the release
// applies to whatever is actually stored, then writes unconditionally.
func (s *bookingService) releaseAndSave(ctx context.Context, slot *model.Slot) error {
	if err := s.slots.Reload(ctx, slot); err != nil {
		return fmt.Errorf("reload slot %s: %w", slot.ID, err)
	}
	if err := slot.Release(); err != nil {
		if errors.Is(err, model.ErrAlreadyReleased) {
			return nil
		}
		return fmt.Errorf("release slot %s: %w", slot.ID, err)
	}
	if err := s.slots.SaveUnchecked(ctx, slot); err != nil {
		return fmt.Errorf("save released slot %s: %w", slot.ID, err)
	}
	return nil
}

func (s *bookingService) ReserveAll(ctx context.Context, slotIDs []string, ref model.CaseRef) ([]*model.Slot, error) {
	if len(slotIDs) == 0 {
		return nil, apperrors.InvalidInput("No slot IDs given")
	}
	if !ref.Kind.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown case kind: %q", ref.Kind))
	}

	held := make([]*model.Slot, 0, len(slotIDs))
	for _, id := range slotIDs {
		slot, err := s.slots.FindByID(ctx, id)
		if err != nil {
			s.compensate(ctx, held)
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.NotFoundWithID("Slot", id)
			}
			return nil, apperrors.Internal("Failed to load slot", err)
		}

		if err := slot.Reserve(ref); err != nil {
			s.compensate(ctx, held)
			return nil, apperrors.Conflict(fmt.Sprintf("Slot %s is already reserved", id))
		}
		if err := s.slots.Save(ctx, slot, slot.Version); err != nil {
			s.compensate(ctx, held)
			if errors.Is(err, store.ErrVersionConflict) {
				return nil, apperrors.PreconditionFailed(fmt.Sprintf("Slot %s was modified concurrently", id), err)
			}
			return nil, apperrors.Internal("Failed to save reserved slot", err)
		}

		held = append(held, slot)
	}

	s.cfg.Log.Info("Slot batch reserved", "slot_count", len(held), "case_kind", ref.Kind)
	return held, nil
}

// compensate releases every slot this call already reserved. Failures
// are logged, not swallowed into the triggering error.
func (s *bookingService) compensate(ctx context.Context, held []*model.Slot) {
	for i := len(held) - 1; i >= 0; i-- {
		if err := s.releaseAndSave(ctx, held[i]); err != nil {
			s.cfg.Log.Error("Compensation failed, slot may remain reserved",
				"slot_id", held[i].ID,
				"error", err,
			)
		}
	}
}

func (s *bookingService) ReleaseSlot(ctx context.Context, slotID string) (*model.Slot, error) {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Slot", slotID)
		}
		return nil, apperrors.Internal("Failed to load slot", err)
	}

	if err := slot.Release(); err != nil {
		return nil, apperrors.Conflict(fmt.Sprintf("Slot %s is not reserved", slotID))
	}
	if err := s.slots.SaveUnchecked(ctx, slot); err != nil {
		return nil, apperrors.Internal("Failed to save released slot", err)
	}

	s.cfg.Log.Info("Slot released", "slot_id", slotID)
	return slot, nil
}

func (s *bookingService) ListUpcomingSlots(ctx context.Context, siteID string, filter ListFilter) ([]*model.Slot, error) {
	if siteID == "" {
		return nil, apperrors.InvalidInput("Site ID cannot be empty")
	}

	from := filter.From
	if from.IsZero() {
		from = time.Now()
	}
	limit := config.NormalizePaginationLimit(filter.Limit)

	slots, err := s.slots.FindUpcoming(ctx, siteID, from, filter.FreeOnly, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to list slots", err)
	}
	return slots, nil
}
