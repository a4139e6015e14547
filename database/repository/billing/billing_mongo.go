package billingRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mentorhub/models"
)

func (r *mongoBillingRepo) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sub.UpdatedAt = time.Now().UTC()
	filter := bson.M{"subscriptionId": sub.SubscriptionID}
	update := bson.M{"$set": sub}
	opts := options.Update().SetUpsert(true)

	_, err := r.subsColl.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *mongoBillingRepo) GetSubscription(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var sub models.Subscription
	if err := r.subsColl.FindOne(ctx, bson.M{"subscriptionId": subscriptionID}).Decode(&sub); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *mongoBillingRepo) MarkSubscriptionCanceled(ctx context.Context, subscriptionID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": "canceled", "updatedAt": time.Now().UTC()}}
	res, err := r.subsColl.UpdateOne(ctx, bson.M{"subscriptionId": subscriptionID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBillingRepo) UpsertCustomerMapping(ctx context.Context, mapping *models.CustomerMapping) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	mapping.UpdatedAt = time.Now().UTC()
	filter := bson.M{"userId": mapping.UserID}
	update := bson.M{"$set": mapping}
	opts := options.Update().SetUpsert(true)

	_, err := r.mappingsColl.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *mongoBillingRepo) GetMappingByCustomerID(ctx context.Context, customerID string) (*models.CustomerMapping, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var mapping models.CustomerMapping
	if err := r.mappingsColl.FindOne(ctx, bson.M{"customerId": customerID}).Decode(&mapping); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mapping, nil
}
