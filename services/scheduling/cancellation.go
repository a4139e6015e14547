package scheduling

import (
	"context"
	"time"

	reservationRepo "mentorhub/database/repository/reservation"
	"mentorhub/models"
	"mentorhub/utils"

	"go.uber.org/zap"
)

// Free-cancellation windows per role: cancelling closer to the lesson start
// than this incurs a fee.
const (
	studentFreeCancelWindow = 24 * time.Hour
	mentorFreeCancelWindow  = 2 * time.Hour
)

// CancellationFee computes the amount retained when the reservation is
// cancelled at instant now. Admin cancellations and EMERGENCY cancellations
// are always free. A student cancelling under 24h before the lesson forfeits
// the full amount; a mentor cancelling under 2h forfeits half, rounded down.
func CancellationFee(res *models.Reservation, role models.Role, reason string, now time.Time) int64 {
	if role == models.RoleAdmin || reason == models.CancelReasonEmergency {
		return 0
	}
	untilLesson := res.BookedStartTime.Sub(now)
	switch role {
	case models.RoleStudent:
		if untilLesson < studentFreeCancelWindow {
			return res.TotalAmount
		}
	case models.RoleMentor:
		if untilLesson < mentorFreeCancelWindow {
			return res.TotalAmount / 2
		}
	}
	return 0
}

// FreeCancelRemaining reports how much of the role's free-cancellation
// window remains, as whole hours plus minutes. Non-positive values mean the
// window has already passed.
func FreeCancelRemaining(res *models.Reservation, role models.Role, now time.Time) (hours, minutes int) {
	remaining := res.BookedStartTime.Sub(now) - roleFreeCancelWindow(role)
	hours = int(remaining / time.Hour)
	minutes = int(remaining/time.Minute) % 60
	return hours, minutes
}

func roleFreeCancelWindow(role models.Role) time.Duration {
	switch role {
	case models.RoleStudent:
		return studentFreeCancelWindow
	case models.RoleMentor:
		return mentorFreeCancelWindow
	}
	return 0
}

func (svc *DefaultSchedulingService) Cancel(ctx context.Context, req models.CancelRequest) (*models.CancellationResult, error) {
	res, err := svc.loadReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}

	switch req.ActingRole {
	case models.RoleStudent:
		if req.ActingUserID != res.StudentID {
			return nil, NewAuthorizationError("reservation %s does not belong to student %s", res.ID, req.ActingUserID)
		}
	case models.RoleMentor:
		if req.ActingUserID != res.MentorID {
			return nil, NewAuthorizationError("reservation %s does not belong to mentor %s", res.ID, req.ActingUserID)
		}
	case models.RoleAdmin:
		// unrestricted
	default:
		return nil, NewAuthorizationError("unknown acting role %q", req.ActingRole)
	}

	if res.Status.Terminal() {
		return nil, NewInvalidStateError("cannot cancel a reservation in status %s", res.Status)
	}

	now := svc.clock()
	fee := CancellationFee(res, req.ActingRole, req.Reason, now)
	hours, minutes := FreeCancelRemaining(res, req.ActingRole, now)

	canceledAt := now.UTC()
	updated, err := svc.applyTransition(ctx, res, reservationRepo.StatusUpdate{
		Status:       models.StatusCanceled,
		CanceledAt:   &canceledAt,
		CancelReason: req.Reason,
		CancelNotes:  req.Notes,
		FeeCharged:   &fee,
	})
	if err != nil {
		return nil, err
	}

	svc.refreshAvailability(ctx, updated.SlotID)

	return &models.CancellationResult{
		Reservation:     updated,
		FeeCharged:      fee,
		RefundAmount:    updated.TotalAmount - fee,
		DeadlineHours:   hours,
		DeadlineMinutes: minutes,
	}, nil
}

// ExpirePending sweeps PENDING_APPROVAL reservations older than maxAge,
// cancelling each as admin with no fee. It is driven by an external
// scheduled job, not by the engine itself.
func (svc *DefaultSchedulingService) ExpirePending(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := svc.clock().Add(-maxAge)
	stale, err := svc.Reservations.ListStale(ctx, models.StatusPendingApproval, cutoff)
	if err != nil {
		return 0, err
	}

	logger := utils.GetLogger()
	swept := 0
	for _, res := range stale {
		_, err := svc.Cancel(ctx, models.CancelRequest{
			ReservationID: res.ID,
			ActingRole:    models.RoleAdmin,
			Reason:        models.CancelReasonExpired,
			Notes:         "unapproved reservation expired by sweep",
		})
		if err != nil {
			// One stuck reservation must not block the rest of the sweep.
			logger.Warn("expiry sweep: failed to cancel reservation",
				zap.String("reservationID", res.ID), zap.Error(err))
			continue
		}
		swept++
	}
	return swept, nil
}
