package slotRepo

import (
	"context"
	"errors"

	"mentorhub/database"
	"mentorhub/models"
	"mentorhub/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no slot matches the given identifier.
var ErrNotFound = errors.New("lesson slot not found")

type SlotRepository interface {
	Create(ctx context.Context, slot *models.LessonSlot) error
	GetByID(ctx context.Context, id string) (*models.LessonSlot, error)
	// ListByMentor returns every slot owned by the mentor, ordered by start time.
	ListByMentor(ctx context.Context, mentorID string) ([]models.LessonSlot, error)
	// List returns slots matching the filter, ordered by start time ascending.
	List(ctx context.Context, filter models.SlotFilter) ([]models.LessonSlot, error)
	SetAvailability(ctx context.Context, slotID string, available bool) error
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.MongoClient.Database("mentorhub")
	repo := &mongoSlotRepo{
		coll: db.Collection("lesson_slots"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		utils.GetLogger().Warn("slot repo: failed to ensure indexes", zap.Error(err))
	}
	return repo
}
