package reservationRepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mentorhub/models"
)

func (r *mongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var res models.Reservation
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&res); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *mongoReservationRepo) ListBySlot(ctx context.Context, slotID string, statuses []models.ReservationStatus) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"slotId": slotID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "bookedStartTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *mongoReservationRepo) UpdateStatus(ctx context.Context, id string, expectedVersion int, update StatusUpdate) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": update.Status}
	if update.ApprovedAt != nil {
		set["approvedAt"] = *update.ApprovedAt
	}
	if update.CanceledAt != nil {
		set["canceledAt"] = *update.CanceledAt
	}
	if update.CancelReason != "" {
		set["cancelReason"] = update.CancelReason
	}
	if update.CancelNotes != "" {
		set["cancelNotes"] = update.CancelNotes
	}
	if update.FeeCharged != nil {
		set["feeCharged"] = *update.FeeCharged
	}

	filter := bson.M{"id": id, "version": expectedVersion}
	mod := bson.M{"$set": set, "$inc": bson.M{"version": 1}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Reservation
	if err := r.coll.FindOneAndUpdate(ctx, filter, mod, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish a missing document from a lost race.
			count, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
			if countErr == nil && count == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrStaleVersion
		}
		return nil, err
	}
	return &updated, nil
}

func (r *mongoReservationRepo) ListStale(ctx context.Context, status models.ReservationStatus, createdBefore time.Time) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"status": status, "createdAt": bson.M{"$lt": createdBefore}}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}
