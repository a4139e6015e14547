package slotRepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mentorhub/models"
)

func (r *mongoSlotRepo) Create(ctx context.Context, slot *models.LessonSlot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, slot)
	return err
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, id string) (*models.LessonSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.LessonSlot
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

func (r *mongoSlotRepo) ListByMentor(ctx context.Context, mentorID string) ([]models.LessonSlot, error) {
	return r.List(ctx, models.SlotFilter{MentorID: mentorID})
}

func (r *mongoSlotRepo) List(ctx context.Context, filter models.SlotFilter) ([]models.LessonSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.MentorID != "" {
		query["mentorId"] = filter.MentorID
	}
	if filter.From != nil || filter.To != nil {
		rangeQuery := bson.M{}
		if filter.From != nil {
			rangeQuery["$gte"] = *filter.From
		}
		if filter.To != nil {
			rangeQuery["$lt"] = *filter.To
		}
		query["startTime"] = rangeQuery
	}
	if filter.AvailableOnly {
		query["isAvailable"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var slots []models.LessonSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *mongoSlotRepo) SetAvailability(ctx context.Context, slotID string, available bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": slotID},
		bson.M{"$set": bson.M{"isAvailable": available, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
