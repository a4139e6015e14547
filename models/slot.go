package models

import "time"

// LessonSlot represents a mentor-published booking window. Times are UTC
// instants; the interval [StartTime, EndTime) is half-open. For a given
// mentor no two slots may overlap.
type LessonSlot struct {
	ID                 string    `bson:"id" json:"id"`
	MentorID           string    `bson:"mentorId" json:"mentorId"`
	StartTime          time.Time `bson:"startTime" json:"startTime"`
	EndTime            time.Time `bson:"endTime" json:"endTime"`
	IsAvailable        bool      `bson:"isAvailable" json:"isAvailable"`
	HourlyRate         int64     `bson:"hourlyRate" json:"hourlyRate"` // minor currency units per hour
	Currency           string    `bson:"currency" json:"currency"`
	MinDurationMinutes int       `bson:"minDurationMinutes" json:"minDurationMinutes"`
	MaxDurationMinutes int       `bson:"maxDurationMinutes" json:"maxDurationMinutes"`
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Hours returns the slot length in whole hours, rounding a truncated final
// block up (a 09:00-10:30 slot spans 2 block hours).
func (s LessonSlot) Hours() int {
	d := s.EndTime.Sub(s.StartTime)
	h := int(d / time.Hour)
	if d%time.Hour > 0 {
		h++
	}
	return h
}

// SlotFilter narrows ListSlots results. Zero values mean "no constraint".
type SlotFilter struct {
	MentorID      string     `json:"mentorId,omitempty"`
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
	AvailableOnly bool       `json:"availableOnly,omitempty"`
}

// CreateSlotRequest is the payload for publishing a new slot.
type CreateSlotRequest struct {
	MentorID           string    `json:"mentorId"`
	StartTime          time.Time `json:"startTime" binding:"required"`
	EndTime            time.Time `json:"endTime" binding:"required"`
	HourlyRate         int64     `json:"hourlyRate" binding:"required"`
	Currency           string    `json:"currency" binding:"required"`
	MinDurationMinutes int       `json:"minDurationMinutes"`
	MaxDurationMinutes int       `json:"maxDurationMinutes"`
}

// HourlyBlock is one 1-hour step of a slot's occupancy view. The final block
// of a slot is truncated to the slot's end time.
type HourlyBlock struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Reserved      bool      `json:"reserved"`
	ReservationID string    `json:"reservationId,omitempty"`
}

// BookableWindow is a candidate {start, end} a student may request. Windows
// are enumerated by start hour ascending, then duration ascending.
type BookableWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Hours int       `json:"hours"`
	Label string    `json:"label"`
}
