package scheduling

import (
	"context"
	"errors"
	"slices"
	"time"

	slotRepo "mentorhub/database/repository/slot"
	"mentorhub/models"
	"mentorhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (svc *DefaultSchedulingService) CreateSlot(ctx context.Context, req models.CreateSlotRequest) (*models.LessonSlot, error) {
	now := svc.clock()

	if req.MentorID == "" {
		return nil, NewValidationError("mentorId is required")
	}
	if req.HourlyRate <= 0 {
		return nil, NewValidationError("hourlyRate must be positive")
	}
	if req.Currency == "" {
		return nil, NewValidationError("currency is required")
	}
	if !wholeMinute(req.StartTime) || !wholeMinute(req.EndTime) {
		return nil, NewValidationError("slot times must be aligned to whole minutes")
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, NewValidationError("startTime must be before endTime")
	}
	if req.StartTime.Before(now) {
		return nil, NewValidationError("startTime must not be in the past")
	}
	if req.MinDurationMinutes < 0 || req.MaxDurationMinutes < 0 {
		return nil, NewValidationError("durations must not be negative")
	}
	if req.MaxDurationMinutes > 0 && req.MinDurationMinutes > req.MaxDurationMinutes {
		return nil, NewValidationError("minDurationMinutes exceeds maxDurationMinutes")
	}

	existing, err := svc.Slots.ListByMentor(ctx, req.MentorID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if Overlaps(req.StartTime, req.EndTime, other.StartTime, other.EndTime) {
			return nil, NewConflictError("slot overlaps existing slot %s (%s - %s)",
				other.ID, other.StartTime.UTC().Format(time.RFC3339), other.EndTime.UTC().Format(time.RFC3339))
		}
	}

	minDuration := req.MinDurationMinutes
	if minDuration == 0 {
		minDuration = 60
	}

	slot := &models.LessonSlot{
		ID:                 uuid.New().String(),
		MentorID:           req.MentorID,
		StartTime:          req.StartTime.UTC(),
		EndTime:            req.EndTime.UTC(),
		IsAvailable:        true,
		HourlyRate:         req.HourlyRate,
		Currency:           req.Currency,
		MinDurationMinutes: minDuration,
		MaxDurationMinutes: req.MaxDurationMinutes,
	}
	if err := svc.Slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (svc *DefaultSchedulingService) ListSlots(ctx context.Context, filter models.SlotFilter) ([]models.LessonSlot, error) {
	return svc.Slots.List(ctx, filter)
}

func (svc *DefaultSchedulingService) SlotWindows(ctx context.Context, slotID string) ([]models.BookableWindow, error) {
	slot, reservations, err := svc.slotWithReservations(ctx, slotID)
	if err != nil {
		return nil, err
	}
	return slices.Collect(EnumerateBookableWindows(*slot, reservations, minHoursFor(*slot), maxHoursFor(*slot))), nil
}

func (svc *DefaultSchedulingService) SlotBlocks(ctx context.Context, slotID string) ([]models.HourlyBlock, error) {
	slot, reservations, err := svc.slotWithReservations(ctx, slotID)
	if err != nil {
		return nil, err
	}
	var active []models.Reservation
	for _, res := range reservations {
		if !res.Status.Terminal() {
			active = append(active, res)
		}
	}
	return slices.Collect(SplitIntoHourlyBlocks(*slot, active)), nil
}

// RefreshSlotAvailability flips isAvailable off once no bookable window
// remains, and back on when a rejection or cancellation frees capacity.
func (svc *DefaultSchedulingService) RefreshSlotAvailability(ctx context.Context, slotID string) error {
	slot, reservations, err := svc.slotWithReservations(ctx, slotID)
	if err != nil {
		return err
	}

	hasWindow := false
	for range EnumerateBookableWindows(*slot, reservations, minHoursFor(*slot), maxHoursFor(*slot)) {
		hasWindow = true
		break
	}
	if hasWindow == slot.IsAvailable {
		return nil
	}
	return svc.Slots.SetAvailability(ctx, slotID, hasWindow)
}

// refreshAvailability is the post-transition variant: the reservation state
// is already committed, so a failure here only delays the derived
// isAvailable flag (recomputed again on the next state change) and is
// logged rather than surfaced.
func (svc *DefaultSchedulingService) refreshAvailability(ctx context.Context, slotID string) {
	if err := svc.RefreshSlotAvailability(ctx, slotID); err != nil {
		utils.GetLogger().Warn("failed to refresh slot availability",
			zap.String("slotID", slotID), zap.Error(err))
	}
}

func (svc *DefaultSchedulingService) slotWithReservations(ctx context.Context, slotID string) (*models.LessonSlot, []models.Reservation, error) {
	slot, err := svc.Slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil, nil, NewNotFoundError("lesson slot %s not found", slotID)
		}
		return nil, nil, err
	}
	reservations, err := svc.Reservations.ListBySlot(ctx, slotID, nil)
	if err != nil {
		return nil, nil, err
	}
	return slot, reservations, nil
}

func wholeMinute(t time.Time) bool {
	return t.Truncate(time.Minute).Equal(t)
}

// minHoursFor converts the slot's minimum duration into whole window hours,
// rounding up so a 90-minute minimum requires a 2-hour window.
func minHoursFor(slot models.LessonSlot) int {
	if slot.MinDurationMinutes <= 0 {
		return 1
	}
	h := slot.MinDurationMinutes / 60
	if slot.MinDurationMinutes%60 > 0 {
		h++
	}
	if h < 1 {
		h = 1
	}
	return h
}

// maxHoursFor converts the slot's maximum duration into whole window hours,
// rounding down; 0 means unbounded (the slot's full length).
func maxHoursFor(slot models.LessonSlot) int {
	if slot.MaxDurationMinutes <= 0 {
		return 0
	}
	return slot.MaxDurationMinutes / 60
}
