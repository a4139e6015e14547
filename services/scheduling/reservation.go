package scheduling

import (
	"context"
	"errors"
	"time"

	reservationRepo "mentorhub/database/repository/reservation"
	slotRepo "mentorhub/database/repository/slot"
	"mentorhub/models"
	"mentorhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (svc *DefaultSchedulingService) RequestReservation(ctx context.Context, req models.ReservationRequest) (*models.Reservation, error) {
	if req.StudentID == "" {
		return nil, NewValidationError("studentId is required")
	}

	slot, err := svc.loadSlot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	if !slot.IsAvailable {
		return nil, NewConflictError("slot %s is fully booked", slot.ID)
	}
	if !wholeMinute(req.BookedStartTime) || !wholeMinute(req.BookedEndTime) {
		return nil, NewValidationError("booking times must be aligned to whole minutes")
	}
	if !req.BookedStartTime.Before(req.BookedEndTime) {
		return nil, NewValidationError("bookedStartTime must be before bookedEndTime")
	}
	if req.BookedStartTime.Before(slot.StartTime) || req.BookedEndTime.After(slot.EndTime) {
		return nil, NewValidationError("requested window lies outside the slot bounds")
	}

	durationMinutes := int(req.BookedEndTime.Sub(req.BookedStartTime) / time.Minute)
	if durationMinutes < slot.MinDurationMinutes {
		return nil, NewValidationError("duration %dm is below the slot minimum of %dm", durationMinutes, slot.MinDurationMinutes)
	}
	if slot.MaxDurationMinutes > 0 && durationMinutes > slot.MaxDurationMinutes {
		return nil, NewValidationError("duration %dm exceeds the slot maximum of %dm", durationMinutes, slot.MaxDurationMinutes)
	}

	res := &models.Reservation{
		ID:              uuid.New().String(),
		SlotID:          slot.ID,
		StudentID:       req.StudentID,
		MentorID:        slot.MentorID, // denormalized from the slot, never updated
		BookedStartTime: req.BookedStartTime.UTC(),
		BookedEndTime:   req.BookedEndTime.UTC(),
		TotalAmount:     slot.HourlyRate * int64(durationMinutes) / 60,
		Currency:        slot.Currency,
		Status:          models.StatusPendingApproval,
		Notes:           req.Notes,
		CreatedAt:       svc.clock().UTC(),
		Version:         1,
	}

	// The overlap re-check and insert are one transaction; two concurrent
	// requests for overlapping windows cannot both pass.
	if err := svc.Reservations.CreateIfNoOverlap(ctx, res); err != nil {
		if errors.Is(err, reservationRepo.ErrOverlap) {
			return nil, NewConflictError("requested window overlaps an existing reservation")
		}
		return nil, err
	}

	svc.refreshAvailability(ctx, slot.ID)
	return res, nil
}

func (svc *DefaultSchedulingService) Approve(ctx context.Context, reservationID, actingMentorID string) (*models.Reservation, error) {
	res, err := svc.loadReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.MentorID != actingMentorID {
		return nil, NewAuthorizationError("reservation %s does not belong to mentor %s", reservationID, actingMentorID)
	}
	if res.Status != models.StatusPendingApproval {
		return nil, NewInvalidStateError("cannot approve a reservation in status %s", res.Status)
	}

	approvedAt := svc.clock().UTC()
	updated, err := svc.applyTransition(ctx, res, reservationRepo.StatusUpdate{
		Status:     models.StatusApproved,
		ApprovedAt: &approvedAt,
	})
	if err != nil {
		return nil, err
	}

	// Fire-and-forget from the state machine's perspective: a failed charge
	// never reverts the mentor's decision, it surfaces as a retryable error.
	chargeCtx, cancel := context.WithTimeout(ctx, svc.chargeTimeout)
	defer cancel()
	if _, err := svc.Payments.InitiateCharge(chargeCtx, updated.StudentID, updated.TotalAmount, updated.Currency, updated.ID); err != nil {
		utils.GetLogger().Error("charge initiation failed after approval",
			zap.String("reservationID", updated.ID), zap.Error(err))
		return updated, NewGatewayError("reservation approved but charge initiation failed: %v", err)
	}

	return updated, nil
}

func (svc *DefaultSchedulingService) Reject(ctx context.Context, reservationID, actingMentorID, reason string) (*models.Reservation, error) {
	res, err := svc.loadReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.MentorID != actingMentorID {
		return nil, NewAuthorizationError("reservation %s does not belong to mentor %s", reservationID, actingMentorID)
	}
	if res.Status != models.StatusPendingApproval && res.Status != models.StatusApproved {
		return nil, NewInvalidStateError("cannot reject a reservation in status %s", res.Status)
	}

	updated, err := svc.applyTransition(ctx, res, reservationRepo.StatusUpdate{
		Status:       models.StatusRejected,
		CancelReason: reason,
	})
	if err != nil {
		return nil, err
	}

	// Rejection frees capacity; the slot may become available again.
	svc.refreshAvailability(ctx, updated.SlotID)
	return updated, nil
}

func (svc *DefaultSchedulingService) Confirm(ctx context.Context, reservationID string) (*models.Reservation, error) {
	res, err := svc.loadReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	// Payment webhooks are delivered at least once; replaying a confirmation
	// must not fail.
	if res.Status == models.StatusConfirmed {
		return res, nil
	}
	if res.Status != models.StatusApproved {
		return nil, NewInvalidStateError("cannot confirm a reservation in status %s", res.Status)
	}

	updated, err := svc.applyTransition(ctx, res, reservationRepo.StatusUpdate{
		Status: models.StatusConfirmed,
	})
	if err != nil {
		return nil, err
	}

	svc.refreshAvailability(ctx, updated.SlotID)
	return updated, nil
}

// applyTransition performs the optimistic single-writer update; a lost race
// maps to ConcurrentModificationError, which callers may retry once.
func (svc *DefaultSchedulingService) applyTransition(ctx context.Context, res *models.Reservation, update reservationRepo.StatusUpdate) (*models.Reservation, error) {
	updated, err := svc.Reservations.UpdateStatus(ctx, res.ID, res.Version, update)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrStaleVersion) {
			return nil, NewConcurrentModificationError("reservation %s was modified concurrently", res.ID)
		}
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return nil, NewNotFoundError("reservation %s not found", res.ID)
		}
		return nil, err
	}
	return updated, nil
}

func (svc *DefaultSchedulingService) loadSlot(ctx context.Context, slotID string) (*models.LessonSlot, error) {
	slot, err := svc.Slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrNotFound) {
			return nil, NewNotFoundError("lesson slot %s not found", slotID)
		}
		return nil, err
	}
	return slot, nil
}

func (svc *DefaultSchedulingService) loadReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	res, err := svc.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrNotFound) {
			return nil, NewNotFoundError("reservation %s not found", reservationID)
		}
		return nil, err
	}
	return res, nil
}
