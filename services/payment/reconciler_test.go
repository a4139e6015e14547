package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	billingRepo "mentorhub/database/repository/billing"
	"mentorhub/models"
	"mentorhub/services/scheduling"

	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBillingRepo struct {
	subscriptions map[string]models.Subscription
	mappings      map[string]models.CustomerMapping // keyed by userId
	upserts       int
	failNext      error
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{
		subscriptions: make(map[string]models.Subscription),
		mappings:      make(map[string]models.CustomerMapping),
	}
}

func (r *fakeBillingRepo) UpsertSubscription(_ context.Context, sub *models.Subscription) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.upserts++
	r.subscriptions[sub.SubscriptionID] = *sub
	return nil
}

func (r *fakeBillingRepo) GetSubscription(_ context.Context, subscriptionID string) (*models.Subscription, error) {
	sub, ok := r.subscriptions[subscriptionID]
	if !ok {
		return nil, billingRepo.ErrNotFound
	}
	return &sub, nil
}

func (r *fakeBillingRepo) MarkSubscriptionCanceled(_ context.Context, subscriptionID string) error {
	sub, ok := r.subscriptions[subscriptionID]
	if !ok {
		return billingRepo.ErrNotFound
	}
	sub.Status = "canceled"
	r.subscriptions[subscriptionID] = sub
	return nil
}

func (r *fakeBillingRepo) UpsertCustomerMapping(_ context.Context, mapping *models.CustomerMapping) error {
	r.mappings[mapping.UserID] = *mapping
	return nil
}

func (r *fakeBillingRepo) GetMappingByCustomerID(_ context.Context, customerID string) (*models.CustomerMapping, error) {
	for _, m := range r.mappings {
		if m.CustomerID == customerID {
			return &m, nil
		}
	}
	return nil, billingRepo.ErrNotFound
}

type fakeGateway struct {
	detail   *SubscriptionDetail
	fetches  int
	fetchErr error
}

func (g *fakeGateway) InitiateCharge(context.Context, string, int64, string, string) (string, error) {
	return "pi_fake", nil
}

func (g *fakeGateway) RetrieveSubscription(_ context.Context, _ string) (*SubscriptionDetail, error) {
	g.fetches++
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.detail, nil
}

type fakeConfirmer struct {
	confirmed []string
	err       error
}

func (c *fakeConfirmer) Confirm(_ context.Context, reservationID string) (*models.Reservation, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.confirmed = append(c.confirmed, reservationID)
	return &models.Reservation{ID: reservationID, Status: models.StatusConfirmed}, nil
}

type passLocker struct {
	keys []string
}

func (l *passLocker) WithLock(_ context.Context, key string, fn func() error) error {
	l.keys = append(l.keys, key)
	return fn()
}

func newTestReconciler() (*Reconciler, *fakeBillingRepo, *fakeGateway, *fakeConfirmer, *passLocker) {
	billing := newFakeBillingRepo()
	gateway := &fakeGateway{detail: &SubscriptionDetail{
		Status:             "active",
		PriceID:            "price_basic",
		CurrentPeriodStart: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		CurrentPeriodEnd:   time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}}
	confirmer := &fakeConfirmer{}
	locks := &passLocker{}
	return NewReconciler(billing, gateway, confirmer, locks), billing, gateway, confirmer, locks
}

func event(id, eventType, payload string) stripe.Event {
	return stripe.Event{
		ID:   id,
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()

	err := rc.HandleEvent(context.Background(), event("evt_1", "invoice.paid", `{}`))

	require.NoError(t, err)
	assert.Zero(t, billing.upserts)
}

func TestMalformedPayloadAcknowledged(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()
	ctx := context.Background()

	for _, eventType := range []string{
		"checkout.session.completed",
		"customer.subscription.updated",
		"customer.subscription.deleted",
		"payment_intent.succeeded",
	} {
		err := rc.HandleEvent(ctx, event("evt_bad", eventType, `{"id":`))
		assert.NoError(t, err, "%s: malformed payloads must not be redelivered", eventType)
	}
	assert.Zero(t, billing.upserts)
}

func TestCheckoutCompletedPaymentModeConfirmsReservation(t *testing.T) {
	rc, _, _, confirmer, _ := newTestReconciler()

	err := rc.HandleEvent(context.Background(), event("evt_1", "checkout.session.completed",
		`{"mode":"payment","metadata":{"reservation_id":"res_1"}}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"res_1"}, confirmer.confirmed)
}

func TestCheckoutCompletedSubscriptionProjectsFromGateway(t *testing.T) {
	rc, billing, gateway, _, locks := newTestReconciler()

	err := rc.HandleEvent(context.Background(), event("evt_1", "checkout.session.completed",
		`{"mode":"subscription","subscription":{"id":"sub_1"},"customer":{"id":"cus_1"},"metadata":{"user_id":"user-1"}}`))

	require.NoError(t, err)
	assert.Equal(t, 1, gateway.fetches, "checkout handler re-fetches the authoritative state")
	assert.Equal(t, []string{"webhook:sub:sub_1"}, locks.keys)

	mapping, err := billing.GetMappingByCustomerID(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", mapping.UserID)

	sub, err := billing.GetSubscription(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub.UserID)
	assert.Equal(t, "cus_1", sub.CustomerID)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "price_basic", sub.PriceID)
}

func TestCheckoutCompletedResolvesUserFromMapping(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()
	ctx := context.Background()

	require.NoError(t, billing.UpsertCustomerMapping(ctx, &models.CustomerMapping{
		UserID: "user-2", CustomerID: "cus_2",
	}))

	// No user_id in the metadata: the customer mapping is the fallback.
	err := rc.HandleEvent(ctx, event("evt_1", "checkout.session.completed",
		`{"mode":"subscription","subscription":{"id":"sub_2"},"customer":{"id":"cus_2"}}`))

	require.NoError(t, err)
	sub, err := billing.GetSubscription(ctx, "sub_2")
	require.NoError(t, err)
	assert.Equal(t, "user-2", sub.UserID)
}

func TestCheckoutCompletedUnresolvableIdentityDropped(t *testing.T) {
	rc, billing, gateway, _, _ := newTestReconciler()

	err := rc.HandleEvent(context.Background(), event("evt_1", "checkout.session.completed",
		`{"mode":"subscription","subscription":{"id":"sub_3"},"customer":{"id":"cus_unknown"}}`))

	require.NoError(t, err, "unresolvable events are acknowledged, not retried forever")
	assert.Zero(t, gateway.fetches)
	assert.Zero(t, billing.upserts)
}

func TestSubscriptionUpdatedProjectsPayload(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()
	ctx := context.Background()

	require.NoError(t, billing.UpsertCustomerMapping(ctx, &models.CustomerMapping{
		UserID: "user-1", CustomerID: "cus_1",
	}))

	err := rc.HandleEvent(ctx, event("evt_1", "customer.subscription.updated",
		`{"id":"sub_1","customer":{"id":"cus_1"},"status":"past_due","cancel_at_period_end":true,`+
			`"current_period_start":1767225600,"current_period_end":1769904000,`+
			`"items":{"data":[{"price":{"id":"price_pro"}}]}}`))

	require.NoError(t, err)
	sub, err := billing.GetSubscription(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub.UserID)
	assert.Equal(t, "past_due", sub.Status)
	assert.Equal(t, "price_pro", sub.PriceID)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), sub.CurrentPeriodStart)
}

func TestSubscriptionUpdatedUnmappedCustomerDropped(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()

	err := rc.HandleEvent(context.Background(), event("evt_1", "customer.subscription.updated",
		`{"id":"sub_9","customer":{"id":"cus_unmapped"},"status":"active"}`))

	require.NoError(t, err)
	assert.Zero(t, billing.upserts)
}

func TestSubscriptionEventsReplaySafe(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()
	ctx := context.Background()

	require.NoError(t, billing.UpsertCustomerMapping(ctx, &models.CustomerMapping{
		UserID: "user-1", CustomerID: "cus_1",
	}))

	ev := event("evt_1", "customer.subscription.updated",
		`{"id":"sub_1","customer":{"id":"cus_1"},"status":"active"}`)

	require.NoError(t, rc.HandleEvent(ctx, ev))
	first, err := billing.GetSubscription(ctx, "sub_1")
	require.NoError(t, err)

	// At-least-once delivery: replaying the same event converges to the same
	// row instead of duplicating it.
	require.NoError(t, rc.HandleEvent(ctx, ev))
	second, err := billing.GetSubscription(ctx, "sub_1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, billing.subscriptions, 1)
}

func TestSubscriptionEventsLastWriteWins(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()
	ctx := context.Background()

	require.NoError(t, billing.UpsertCustomerMapping(ctx, &models.CustomerMapping{
		UserID: "user-1", CustomerID: "cus_1",
	}))

	// "updated" lands first, the earlier "created" arrives late: the
	// projection simply takes the latest arrival.
	require.NoError(t, rc.HandleEvent(ctx, event("evt_2", "customer.subscription.updated",
		`{"id":"sub_1","customer":{"id":"cus_1"},"status":"active"}`)))
	require.NoError(t, rc.HandleEvent(ctx, event("evt_1", "customer.subscription.created",
		`{"id":"sub_1","customer":{"id":"cus_1"},"status":"trialing"}`)))

	sub, err := billing.GetSubscription(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "trialing", sub.Status)
}

func TestSubscriptionDeleted(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()
	ctx := context.Background()

	billing.subscriptions["sub_1"] = models.Subscription{
		SubscriptionID: "sub_1", UserID: "user-1", Status: "active",
	}

	err := rc.HandleEvent(ctx, event("evt_1", "customer.subscription.deleted", `{"id":"sub_1"}`))
	require.NoError(t, err)

	sub, err := billing.GetSubscription(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "canceled", sub.Status)
	assert.Equal(t, "user-1", sub.UserID, "cancellation keeps the row's other fields")
}

func TestSubscriptionDeletedUnknownDropped(t *testing.T) {
	rc, _, _, _, _ := newTestReconciler()

	err := rc.HandleEvent(context.Background(),
		event("evt_1", "customer.subscription.deleted", `{"id":"sub_never_seen"}`))

	assert.NoError(t, err)
}

func TestPaymentSucceededConfirmsReservation(t *testing.T) {
	rc, _, _, confirmer, _ := newTestReconciler()

	err := rc.HandleEvent(context.Background(), event("evt_1", "payment_intent.succeeded",
		`{"id":"pi_1","metadata":{"reservation_id":"res_1"}}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"res_1"}, confirmer.confirmed)
}

func TestPaymentSucceededWithoutReservationIgnored(t *testing.T) {
	rc, _, _, confirmer, _ := newTestReconciler()

	err := rc.HandleEvent(context.Background(), event("evt_1", "payment_intent.succeeded",
		`{"id":"pi_1","metadata":{}}`))

	require.NoError(t, err)
	assert.Empty(t, confirmer.confirmed)
}

func TestPaymentSucceededTerminalReservationDropped(t *testing.T) {
	rc, _, _, confirmer, _ := newTestReconciler()
	confirmer.err = scheduling.NewInvalidStateError("cannot confirm a reservation in status CANCELED")

	err := rc.HandleEvent(context.Background(), event("evt_1", "payment_intent.succeeded",
		`{"id":"pi_1","metadata":{"reservation_id":"res_gone"}}`))

	assert.NoError(t, err, "replaying cannot fix a terminal reservation; acknowledge and drop")
}

func TestPaymentSucceededTransientFailureRedelivered(t *testing.T) {
	rc, _, _, confirmer, _ := newTestReconciler()
	confirmer.err = errors.New("database unreachable")

	err := rc.HandleEvent(context.Background(), event("evt_1", "payment_intent.succeeded",
		`{"id":"pi_1","metadata":{"reservation_id":"res_1"}}`))

	assert.Error(t, err, "transient failures surface so the gateway redelivers")
}

func TestSubscriptionChangedTransientFailureRedelivered(t *testing.T) {
	rc, billing, _, _, _ := newTestReconciler()
	ctx := context.Background()

	require.NoError(t, billing.UpsertCustomerMapping(ctx, &models.CustomerMapping{
		UserID: "user-1", CustomerID: "cus_1",
	}))
	billing.failNext = errors.New("write timeout")

	err := rc.HandleEvent(ctx, event("evt_1", "customer.subscription.updated",
		`{"id":"sub_1","customer":{"id":"cus_1"},"status":"active"}`))

	assert.Error(t, err)
}
