package payment

import (
	"context"
	"time"

	"mentorhub/models"
)

// Gateway is the contract the engine consumes from the external payment
// processor. Webhook events arrive separately, at least once and unordered.
type Gateway interface {
	// InitiateCharge asks the gateway to charge the student for a reservation
	// and returns the gateway's charge handle. Completion is observed later
	// via webhook.
	InitiateCharge(ctx context.Context, studentID string, amount int64, currency, reservationID string) (string, error)
	// RetrieveSubscription fetches the gateway's current view of a
	// subscription.
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*SubscriptionDetail, error)
}

// SubscriptionDetail is the gateway's answer to RetrieveSubscription.
type SubscriptionDetail struct {
	Status             string
	PriceID            string
	UnitAmount         int64
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
}

// ReservationConfirmer is the slice of the reservation engine the reconciler
// needs: finalizing an approved reservation once its charge succeeds.
type ReservationConfirmer interface {
	Confirm(ctx context.Context, reservationID string) (*models.Reservation, error)
}

// Locker serializes webhook handlers that touch the same subscription.
// Handlers for different subscriptions run fully in parallel.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}
