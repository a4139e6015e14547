package scheduling

import (
	"context"
	"sync"
	"time"

	reservationRepo "mentorhub/database/repository/reservation"
	slotRepo "mentorhub/database/repository/slot"
	"mentorhub/models"
)

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]models.LessonSlot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[string]models.LessonSlot)}
}

func (r *fakeSlotRepo) Create(_ context.Context, slot *models.LessonSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[slot.ID] = *slot
	return nil
}

func (r *fakeSlotRepo) GetByID(_ context.Context, id string) (*models.LessonSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrNotFound
	}
	return &slot, nil
}

func (r *fakeSlotRepo) ListByMentor(_ context.Context, mentorID string) ([]models.LessonSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LessonSlot
	for _, slot := range r.slots {
		if slot.MentorID == mentorID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) List(_ context.Context, filter models.SlotFilter) ([]models.LessonSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LessonSlot
	for _, slot := range r.slots {
		if filter.MentorID != "" && slot.MentorID != filter.MentorID {
			continue
		}
		if filter.AvailableOnly && !slot.IsAvailable {
			continue
		}
		if filter.From != nil && slot.EndTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && slot.StartTime.After(*filter.To) {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

func (r *fakeSlotRepo) SetAvailability(_ context.Context, slotID string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return slotRepo.ErrNotFound
	}
	slot.IsAvailable = available
	r.slots[slotID] = slot
	return nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]models.Reservation

	// beforeUpdate, when set, runs inside UpdateStatus before the version
	// check, letting tests race a competing writer.
	beforeUpdate func(r *fakeReservationRepo)
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[string]models.Reservation)}
}

func (r *fakeReservationRepo) CreateIfNoOverlap(_ context.Context, res *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.reservations {
		if other.SlotID != res.SlotID {
			continue
		}
		active := false
		for _, s := range models.ActiveStatuses {
			if other.Status == s {
				active = true
				break
			}
		}
		if !active {
			continue
		}
		if Overlaps(res.BookedStartTime, res.BookedEndTime, other.BookedStartTime, other.BookedEndTime) {
			return reservationRepo.ErrOverlap
		}
	}
	r.reservations[res.ID] = *res
	return nil
}

func (r *fakeReservationRepo) GetByID(_ context.Context, id string) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, reservationRepo.ErrNotFound
	}
	return &res, nil
}

func (r *fakeReservationRepo) ListBySlot(_ context.Context, slotID string, statuses []models.ReservationStatus) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reservation
	for _, res := range r.reservations {
		if res.SlotID != slotID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				if res.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *fakeReservationRepo) UpdateStatus(_ context.Context, id string, expectedVersion int, update reservationRepo.StatusUpdate) (*models.Reservation, error) {
	if r.beforeUpdate != nil {
		hook := r.beforeUpdate
		r.beforeUpdate = nil
		hook(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, reservationRepo.ErrNotFound
	}
	if res.Version != expectedVersion {
		return nil, reservationRepo.ErrStaleVersion
	}
	res.Status = update.Status
	if update.ApprovedAt != nil {
		res.ApprovedAt = update.ApprovedAt
	}
	if update.CanceledAt != nil {
		res.CanceledAt = update.CanceledAt
	}
	if update.CancelReason != "" {
		res.CancelReason = update.CancelReason
	}
	if update.CancelNotes != "" {
		res.CancelNotes = update.CancelNotes
	}
	if update.FeeCharged != nil {
		res.FeeCharged = *update.FeeCharged
	}
	res.Version++
	r.reservations[id] = res
	return &res, nil
}

func (r *fakeReservationRepo) ListStale(_ context.Context, status models.ReservationStatus, createdBefore time.Time) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reservation
	for _, res := range r.reservations {
		if res.Status == status && res.CreatedAt.Before(createdBefore) {
			out = append(out, res)
		}
	}
	return out, nil
}

// bumpVersion simulates a competing writer touching the reservation.
func (r *fakeReservationRepo) bumpVersion(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.reservations[id]
	res.Version++
	r.reservations[id] = res
}

type fakePayments struct {
	mu      sync.Mutex
	charges []chargeCall
	err     error
}

type chargeCall struct {
	studentID     string
	amount        int64
	currency      string
	reservationID string
}

func (p *fakePayments) InitiateCharge(_ context.Context, studentID string, amount int64, currency, reservationID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.charges = append(p.charges, chargeCall{studentID, amount, currency, reservationID})
	return "pi_test_" + reservationID, nil
}

func statusUpdateCanceled(at time.Time) reservationRepo.StatusUpdate {
	fee := int64(0)
	return reservationRepo.StatusUpdate{
		Status:     models.StatusCanceled,
		CanceledAt: &at,
		FeeCharged: &fee,
	}
}

var testBase = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

func newTestService() (*DefaultSchedulingService, *fakeSlotRepo, *fakeReservationRepo, *fakePayments) {
	slots := newFakeSlotRepo()
	reservations := newFakeReservationRepo()
	payments := &fakePayments{}
	svc := &DefaultSchedulingService{
		Slots:         slots,
		Reservations:  reservations,
		Payments:      payments,
		chargeTimeout: time.Second,
		now:           func() time.Time { return testBase },
	}
	return svc, slots, reservations, payments
}
