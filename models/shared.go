package models

import "fmt"

// Role is the closed set of actors the engine recognizes. It is resolved
// once at the authentication boundary and never re-derived downstream.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a raw role claim to the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleMentor, RoleAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// ReservationStatus is the reservation lifecycle state.
type ReservationStatus string

const (
	StatusPendingApproval ReservationStatus = "PENDING_APPROVAL"
	StatusApproved        ReservationStatus = "APPROVED"
	StatusConfirmed       ReservationStatus = "CONFIRMED"
	StatusRejected        ReservationStatus = "REJECTED"
	StatusCanceled        ReservationStatus = "CANCELED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s ReservationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCanceled
}

// ActiveStatuses are the states that consume slot capacity. Reservations in
// any of these states must never overlap on the same slot.
var ActiveStatuses = []ReservationStatus{StatusPendingApproval, StatusApproved, StatusConfirmed}

// CancelReasonEmergency waives the cancellation fee for any role.
const CancelReasonEmergency = "EMERGENCY"

// CancelReasonExpired is used by the sweep job for stale unapproved requests.
const CancelReasonExpired = "EXPIRED"
