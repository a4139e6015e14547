package billingRepo

import (
	"context"
	"errors"

	"mentorhub/database"
	"mentorhub/models"
	"mentorhub/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no mapping or subscription row matches.
var ErrNotFound = errors.New("billing record not found")

// BillingRepository owns the subscription projection and the user/customer
// mapping. Subscription rows are only ever written by the payment
// reconciler; writes are upserts keyed on subscriptionId (last write wins).
type BillingRepository interface {
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	// MarkSubscriptionCanceled flips the projection row's status to canceled
	// without touching the other fields.
	MarkSubscriptionCanceled(ctx context.Context, subscriptionID string) error

	// UpsertCustomerMapping writes the userId <-> customerId association,
	// keyed on userId (last write wins on conflict).
	UpsertCustomerMapping(ctx context.Context, mapping *models.CustomerMapping) error
	GetMappingByCustomerID(ctx context.Context, customerID string) (*models.CustomerMapping, error)
}

type mongoBillingRepo struct {
	subsColl     *mongo.Collection
	mappingsColl *mongo.Collection
}

// NewMongoBillingRepo constructs a new MongoDB BillingRepository.
func NewMongoBillingRepo() BillingRepository {
	db := database.MongoClient.Database("mentorhub")
	repo := &mongoBillingRepo{
		subsColl:     db.Collection("subscriptions"),
		mappingsColl: db.Collection("customer_mappings"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		utils.GetLogger().Warn("billing repo: failed to ensure indexes", zap.Error(err))
	}
	return repo
}
