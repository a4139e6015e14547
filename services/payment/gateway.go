package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mentorhub/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	sub "github.com/stripe/stripe-go/v76/subscription"
	"go.uber.org/zap"
)

// StripeGateway is the production Gateway implementation. The global stripe
// API key is set once in main from config.
type StripeGateway struct{}

// NewStripeGateway constructs the Stripe-backed payment gateway client.
func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) InitiateCharge(ctx context.Context, studentID string, amount int64, currency, reservationID string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata("reservation_id", reservationID)
	params.AddMetadata("student_id", studentID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	utils.GetLogger().Info("charge initiated",
		zap.String("reservationID", reservationID),
		zap.String("paymentIntentID", pi.ID),
		zap.Int64("amount", amount),
		zap.String("currency", currency))
	return pi.ID, nil
}

func (g *StripeGateway) RetrieveSubscription(ctx context.Context, subscriptionID string) (*SubscriptionDetail, error) {
	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	s, err := sub.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve subscription %s: %w", subscriptionID, err)
	}

	detail := &SubscriptionDetail{
		Status:             string(s.Status),
		CurrentPeriodStart: time.Unix(s.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(s.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0].Price != nil {
		detail.PriceID = s.Items.Data[0].Price.ID
		detail.UnitAmount = s.Items.Data[0].Price.UnitAmount
	}
	return detail, nil
}
