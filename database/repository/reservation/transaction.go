package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mentorhub/models"
)

// CreateIfNoOverlap inserts the reservation only if no active reservation on
// the same slot overlaps its window. The overlap re-check and the insert run
// in one mongo transaction so two concurrent requests for overlapping
// windows cannot both commit.
func (r *mongoReservationRepo) CreateIfNoOverlap(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		// Half-open interval overlap: existing.start < new.end && existing.end > new.start.
		filter := bson.M{
			"slotId":          res.SlotID,
			"status":          bson.M{"$in": models.ActiveStatuses},
			"bookedStartTime": bson.M{"$lt": res.BookedEndTime},
			"bookedEndTime":   bson.M{"$gt": res.BookedStartTime},
		}
		count, err := r.coll.CountDocuments(sc, filter)
		if err != nil {
			return fmt.Errorf("overlap check failed: %w", err)
		}
		if count > 0 {
			return ErrOverlap
		}

		if _, err := r.coll.InsertOne(sc, res); err != nil {
			return fmt.Errorf("insert reservation failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrOverlap {
			return ErrOverlap
		}
		return fmt.Errorf("reservation transaction failed: %w", err)
	}

	return nil
}
