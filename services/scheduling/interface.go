package scheduling

import (
	"context"
	"time"

	"mentorhub/models"
)

// AvailabilityService owns mentor-published lesson slots.
type AvailabilityService interface {
	// CreateSlot validates and persists a new slot; per-mentor slot intervals
	// must never overlap.
	CreateSlot(ctx context.Context, req models.CreateSlotRequest) (*models.LessonSlot, error)
	// ListSlots returns slots matching the filter, ordered by start time.
	ListSlots(ctx context.Context, filter models.SlotFilter) ([]models.LessonSlot, error)
	// SlotWindows returns the windows a student may still request on the slot.
	SlotWindows(ctx context.Context, slotID string) ([]models.BookableWindow, error)
	// SlotBlocks returns the slot's hourly occupancy view.
	SlotBlocks(ctx context.Context, slotID string) ([]models.HourlyBlock, error)
	// RefreshSlotAvailability recomputes whether any bookable window remains
	// and updates the slot's isAvailable flag accordingly. Called after every
	// reservation state change that consumes or frees capacity.
	RefreshSlotAvailability(ctx context.Context, slotID string) error
}

// ReservationService drives the reservation approval/cancellation state
// machine.
type ReservationService interface {
	RequestReservation(ctx context.Context, req models.ReservationRequest) (*models.Reservation, error)
	Approve(ctx context.Context, reservationID, actingMentorID string) (*models.Reservation, error)
	Reject(ctx context.Context, reservationID, actingMentorID, reason string) (*models.Reservation, error)
	Cancel(ctx context.Context, req models.CancelRequest) (*models.CancellationResult, error)
	// Confirm finalizes an approved reservation after the payment gateway
	// reports a successful charge. Safe to replay: confirming a CONFIRMED
	// reservation is a no-op.
	Confirm(ctx context.Context, reservationID string) (*models.Reservation, error)
	// ExpirePending cancels PENDING_APPROVAL reservations older than maxAge,
	// acting as admin (no fee). Returns the number swept.
	ExpirePending(ctx context.Context, maxAge time.Duration) (int, error)
}

// SchedulingService is the composition root surface exposed to the API layer.
type SchedulingService interface {
	AvailabilityService
	ReservationService
}

// PaymentProcessor is the slice of the payment gateway the engine needs:
// fire-and-forget charge initiation during approval. Completion is observed
// later through the payment reconciler.
type PaymentProcessor interface {
	InitiateCharge(ctx context.Context, studentID string, amount int64, currency, reservationID string) (string, error)
}
