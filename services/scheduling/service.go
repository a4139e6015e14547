package scheduling

import (
	"time"

	"mentorhub/config"
	reservationRepo "mentorhub/database/repository/reservation"
	slotRepo "mentorhub/database/repository/slot"
)

// DefaultSchedulingService is the production implementation of
// SchedulingService.
type DefaultSchedulingService struct {
	Slots        slotRepo.SlotRepository
	Reservations reservationRepo.ReservationRepository
	Payments     PaymentProcessor

	chargeTimeout time.Duration
	now           func() time.Time
}

var _ SchedulingService = (*DefaultSchedulingService)(nil)

// NewDefaultSchedulingService wires the engine with its repositories and the
// payment gateway client.
func NewDefaultSchedulingService(
	slots slotRepo.SlotRepository,
	reservations reservationRepo.ReservationRepository,
	payments PaymentProcessor,
) *DefaultSchedulingService {
	timeout := time.Duration(config.AppConfig.GatewayTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DefaultSchedulingService{
		Slots:         slots,
		Reservations:  reservations,
		Payments:      payments,
		chargeTimeout: timeout,
		now:           time.Now,
	}
}

func (svc *DefaultSchedulingService) clock() time.Time {
	if svc.now != nil {
		return svc.now()
	}
	return time.Now()
}
