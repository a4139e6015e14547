package models

import "time"

// Reservation is a student's request to book a sub-window of a slot.
// MentorID is denormalized from the slot at creation time for fast lookup;
// it must always equal the slot's mentor and is never updated afterwards.
type Reservation struct {
	ID              string            `bson:"id" json:"id"`
	SlotID          string            `bson:"slotId" json:"slotId"`
	StudentID       string            `bson:"studentId" json:"studentId"`
	MentorID        string            `bson:"mentorId" json:"mentorId"`
	BookedStartTime time.Time         `bson:"bookedStartTime" json:"bookedStartTime"`
	BookedEndTime   time.Time         `bson:"bookedEndTime" json:"bookedEndTime"`
	TotalAmount     int64             `bson:"totalAmount" json:"totalAmount"` // minor currency units
	Currency        string            `bson:"currency" json:"currency"`
	Status          ReservationStatus `bson:"status" json:"status"`
	Notes           string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
	ApprovedAt      *time.Time        `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	CanceledAt      *time.Time        `bson:"canceledAt,omitempty" json:"canceledAt,omitempty"`
	CancelReason    string            `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CancelNotes     string            `bson:"cancelNotes,omitempty" json:"cancelNotes,omitempty"`
	FeeCharged      int64             `bson:"feeCharged,omitempty" json:"feeCharged,omitempty"`
	Version         int               `bson:"version" json:"version"`
}

// DurationMinutes returns the booked length in whole minutes.
func (r Reservation) DurationMinutes() int {
	return int(r.BookedEndTime.Sub(r.BookedStartTime) / time.Minute)
}

// ReservationRequest is the payload for requesting a reservation.
type ReservationRequest struct {
	SlotID          string    `json:"slotId" binding:"required"`
	StudentID       string    `json:"studentId"`
	BookedStartTime time.Time `json:"bookedStartTime" binding:"required"`
	BookedEndTime   time.Time `json:"bookedEndTime" binding:"required"`
	Notes           string    `json:"notes"`
}

// CancelRequest carries a cancellation and the acting identity.
type CancelRequest struct {
	ReservationID string `json:"reservationId"`
	ActingUserID  string `json:"actingUserId"`
	ActingRole    Role   `json:"actingRole"`
	Reason        string `json:"reason"`
	Notes         string `json:"notes"`
}

// CancellationResult reports the outcome of a cancel operation. Deadline
// fields express how much of the free-cancellation window remained at the
// time of cancellation; non-positive values mean the window had passed.
type CancellationResult struct {
	Reservation     *Reservation `json:"reservation"`
	FeeCharged      int64        `json:"feeCharged"`
	RefundAmount    int64        `json:"refundAmount"`
	DeadlineHours   int          `json:"deadlineHours"`
	DeadlineMinutes int          `json:"deadlineMinutes"`
}
