package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	billingRepo "mentorhub/database/repository/billing"
	"mentorhub/models"
	"mentorhub/services/scheduling"
	"mentorhub/utils"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// errUnresolvedIdentity marks an event whose user cannot be determined. Such
// events are logged and dropped rather than retried forever.
var errUnresolvedIdentity = errors.New("could not resolve event to an internal user")

// Reconciler consumes payment gateway webhook events and keeps the
// subscription projection consistent with the gateway. Delivery is at least
// once and unordered, so every handler is replay-safe and rows converge via
// last-write-wins upserts keyed on subscriptionId. Event timestamps are not
// consulted; see DESIGN.md for the known limitation under reordering.
type Reconciler struct {
	Billing      billingRepo.BillingRepository
	Gateway      Gateway
	Reservations ReservationConfirmer
	Locks        Locker
}

// NewReconciler wires the webhook reconciler.
func NewReconciler(billing billingRepo.BillingRepository, gateway Gateway, reservations ReservationConfirmer, locks Locker) *Reconciler {
	return &Reconciler{
		Billing:      billing,
		Gateway:      gateway,
		Reservations: reservations,
		Locks:        locks,
	}
}

// HandleEvent dispatches one verified webhook event. A nil return
// acknowledges the event (including deliberately dropped ones); an error
// signals a transient failure the gateway should redeliver.
func (rc *Reconciler) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {
	case "checkout.session.completed", "checkout.completed":
		return rc.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated",
		"subscription.created", "subscription.updated":
		return rc.handleSubscriptionChanged(ctx, event)
	case "customer.subscription.deleted", "subscription.deleted":
		return rc.handleSubscriptionDeleted(ctx, event)
	case "payment_intent.succeeded":
		return rc.handlePaymentSucceeded(ctx, event)
	default:
		utils.GetLogger().Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (rc *Reconciler) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	logger := utils.GetLogger()

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		logger.Error("malformed checkout session payload",
			zap.String("eventID", event.ID), zap.Error(err))
		return nil // malformed events are dropped, not redelivered
	}

	// Lesson charges complete through checkout in payment mode; confirm the
	// reservation they reference.
	if session.Mode != stripe.CheckoutSessionModeSubscription {
		if rid := session.Metadata["reservation_id"]; rid != "" {
			return rc.confirmReservation(ctx, rid, event.ID)
		}
		return nil
	}
	if session.Subscription == nil || session.Subscription.ID == "" {
		logger.Warn("subscription checkout without subscription id, dropping",
			zap.String("eventID", event.ID))
		return nil
	}

	var customerID string
	if session.Customer != nil {
		customerID = session.Customer.ID
	}

	userID, err := rc.resolveUserID(ctx, session.Metadata, customerID)
	if err != nil {
		logger.Error("dropping checkout event with unresolvable identity",
			zap.String("eventID", event.ID),
			zap.String("customerID", customerID),
			zap.Error(err))
		return nil
	}

	if customerID != "" {
		mapping := &models.CustomerMapping{UserID: userID, CustomerID: customerID}
		if err := rc.Billing.UpsertCustomerMapping(ctx, mapping); err != nil {
			return fmt.Errorf("failed to upsert customer mapping: %w", err)
		}
	}

	subID := session.Subscription.ID
	return rc.Locks.WithLock(ctx, "webhook:sub:"+subID, func() error {
		detail, err := rc.Gateway.RetrieveSubscription(ctx, subID)
		if err != nil {
			return fmt.Errorf("failed to fetch subscription %s: %w", subID, err)
		}
		sub := &models.Subscription{
			SubscriptionID:     subID,
			UserID:             userID,
			CustomerID:         customerID,
			PriceID:            detail.PriceID,
			Status:             detail.Status,
			CurrentPeriodStart: detail.CurrentPeriodStart,
			CurrentPeriodEnd:   detail.CurrentPeriodEnd,
			CancelAtPeriodEnd:  detail.CancelAtPeriodEnd,
		}
		return rc.Billing.UpsertSubscription(ctx, sub)
	})
}

func (rc *Reconciler) handleSubscriptionChanged(ctx context.Context, event stripe.Event) error {
	logger := utils.GetLogger()

	var s stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		logger.Error("malformed subscription payload",
			zap.String("eventID", event.ID), zap.Error(err))
		return nil
	}
	if s.Customer == nil || s.Customer.ID == "" {
		logger.Warn("subscription event without customer, dropping",
			zap.String("eventID", event.ID), zap.String("subscriptionID", s.ID))
		return nil
	}

	// No metadata fallback at this stage: unmapped customers fail closed.
	mapping, err := rc.Billing.GetMappingByCustomerID(ctx, s.Customer.ID)
	if err != nil {
		if errors.Is(err, billingRepo.ErrNotFound) {
			logger.Error("dropping subscription event for unmapped customer",
				zap.String("eventID", event.ID),
				zap.String("customerID", s.Customer.ID),
				zap.String("subscriptionID", s.ID))
			return nil
		}
		return fmt.Errorf("customer mapping lookup failed: %w", err)
	}

	return rc.Locks.WithLock(ctx, "webhook:sub:"+s.ID, func() error {
		sub := &models.Subscription{
			SubscriptionID:     s.ID,
			UserID:             mapping.UserID,
			CustomerID:         s.Customer.ID,
			Status:             string(s.Status),
			CurrentPeriodStart: unixTime(s.CurrentPeriodStart),
			CurrentPeriodEnd:   unixTime(s.CurrentPeriodEnd),
			CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		}
		if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
			sub.PriceID = s.Items.Data[0].Price.ID
		}
		return rc.Billing.UpsertSubscription(ctx, sub)
	})
}

func (rc *Reconciler) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	logger := utils.GetLogger()

	var s stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		logger.Error("malformed subscription payload",
			zap.String("eventID", event.ID), zap.Error(err))
		return nil
	}

	return rc.Locks.WithLock(ctx, "webhook:sub:"+s.ID, func() error {
		err := rc.Billing.MarkSubscriptionCanceled(ctx, s.ID)
		if errors.Is(err, billingRepo.ErrNotFound) {
			// Deletion may arrive before any upsert; nothing to cancel.
			logger.Warn("subscription.deleted for unknown subscription, dropping",
				zap.String("eventID", event.ID), zap.String("subscriptionID", s.ID))
			return nil
		}
		return err
	})
}

func (rc *Reconciler) handlePaymentSucceeded(ctx context.Context, event stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		utils.GetLogger().Error("malformed payment intent payload",
			zap.String("eventID", event.ID), zap.Error(err))
		return nil
	}
	rid := pi.Metadata["reservation_id"]
	if rid == "" {
		return nil
	}
	return rc.confirmReservation(ctx, rid, event.ID)
}

func (rc *Reconciler) confirmReservation(ctx context.Context, reservationID, eventID string) error {
	_, err := rc.Reservations.Confirm(ctx, reservationID)
	if err == nil {
		return nil
	}
	switch scheduling.CodeOf(err) {
	case scheduling.CodeNotFound, scheduling.CodeInvalidState:
		// The reservation was cancelled or never existed; replaying the event
		// will not change that.
		utils.GetLogger().Error("dropping payment confirmation",
			zap.String("eventID", eventID),
			zap.String("reservationID", reservationID),
			zap.Error(err))
		return nil
	}
	return fmt.Errorf("failed to confirm reservation %s: %w", reservationID, err)
}

// resolveUserID prefers an explicit user id carried in the event metadata
// and falls back to the customer mapping.
func (rc *Reconciler) resolveUserID(ctx context.Context, metadata map[string]string, customerID string) (string, error) {
	if uid := metadata["user_id"]; uid != "" {
		return uid, nil
	}
	if customerID == "" {
		return "", errUnresolvedIdentity
	}
	mapping, err := rc.Billing.GetMappingByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, billingRepo.ErrNotFound) {
			return "", errUnresolvedIdentity
		}
		return "", err
	}
	return mapping.UserID, nil
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
