package billingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes enforces the uniqueness the reconciler's upserts rely on:
// one projection row per subscription, and a strict 1:1 user/customer mapping.
func (r *mongoBillingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.subsColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subscriptionId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_subscription_id"),
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}

	_, err = r.mappingsColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_user_id"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_customer_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create customer mapping indexes: %w", err)
	}
	return nil
}
