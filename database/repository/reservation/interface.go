package reservationRepo

import (
	"context"
	"errors"
	"time"

	"mentorhub/database"
	"mentorhub/models"
	"mentorhub/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no reservation matches the identifier.
	ErrNotFound = errors.New("reservation not found")
	// ErrOverlap is returned when the transactional insert found a competing
	// active reservation on the same slot.
	ErrOverlap = errors.New("reservation window overlaps an active reservation")
	// ErrStaleVersion is returned when a compare-and-swap update lost a race.
	ErrStaleVersion = errors.New("reservation was modified concurrently")
)

// StatusUpdate is the field set applied by a state transition. Only non-nil
// pointer fields are written.
type StatusUpdate struct {
	Status       models.ReservationStatus
	ApprovedAt   *time.Time
	CanceledAt   *time.Time
	CancelReason string
	CancelNotes  string
	FeeCharged   *int64
}

type ReservationRepository interface {
	// CreateIfNoOverlap atomically re-checks the overlap invariant and inserts
	// the reservation; returns ErrOverlap if a competing active reservation
	// exists on the slot. The check and insert run in a single transaction.
	CreateIfNoOverlap(ctx context.Context, res *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	// ListBySlot returns the slot's reservations, optionally narrowed to the
	// given statuses (nil means all).
	ListBySlot(ctx context.Context, slotID string, statuses []models.ReservationStatus) ([]models.Reservation, error)
	// UpdateStatus applies the transition iff the stored version still equals
	// expectedVersion, bumping the version; returns ErrStaleVersion otherwise.
	UpdateStatus(ctx context.Context, id string, expectedVersion int, update StatusUpdate) (*models.Reservation, error)
	// ListStale returns reservations in the given status created before the cutoff.
	ListStale(ctx context.Context, status models.ReservationStatus, createdBefore time.Time) ([]models.Reservation, error)
}

type mongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo constructs a new MongoDB ReservationRepository.
func NewMongoReservationRepo() ReservationRepository {
	db := database.MongoClient.Database("mentorhub")
	repo := &mongoReservationRepo{
		coll: db.Collection("reservations"),
	}
	if err := repo.EnsureIndexes(); err != nil {
		utils.GetLogger().Warn("reservation repo: failed to ensure indexes", zap.Error(err))
	}
	return repo
}
