package models

import "time"

// Subscription mirrors the payment gateway's subscription state. Rows are
// upserted exclusively by the payment reconciler; user-facing requests never
// create them.
type Subscription struct {
	SubscriptionID     string    `bson:"subscriptionId" json:"subscriptionId"`
	UserID             string    `bson:"userId" json:"userId"`
	CustomerID         string    `bson:"customerId" json:"customerId"`
	PriceID            string    `bson:"priceId" json:"priceId"`
	Status             string    `bson:"status" json:"status"`
	CurrentPeriodStart time.Time `bson:"currentPeriodStart" json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time `bson:"currentPeriodEnd" json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool      `bson:"cancelAtPeriodEnd" json:"cancelAtPeriodEnd"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CustomerMapping is the durable 1:1 association between an internal user
// and the gateway's customer identifier.
type CustomerMapping struct {
	UserID     string    `bson:"userId" json:"userId"`
	CustomerID string    `bson:"customerId" json:"customerId"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
