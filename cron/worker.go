package cron

import (
	"context"
	"log"
	"time"

	"mentorhub/config"
	"mentorhub/services/scheduling"
	"mentorhub/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeExpirePending = "reservation:expire"

// InitExpiryWorker starts the background sweep that cancels stale
// PENDING_APPROVAL reservations. The engine core has no built-in expiry;
// this job is the external sweep and only runs when PENDING_EXPIRY_HOURS is
// set.
func InitExpiryWorker(svc scheduling.ReservationService) {
	if config.AppConfig.PendingExpiryHours <= 0 {
		log.Println("[ExpiryWorker] disabled (PENDING_EXPIRY_HOURS is 0)")
		return
	}

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpirePending, handleExpireTask(svc))

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register("@every 15m", asynq.NewTask(TypeExpirePending, nil)); err != nil {
		log.Fatalf("[ExpiryWorker] failed to register schedule: %v", err)
	}

	go func() {
		log.Println("[ExpiryWorker] starting scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[ExpiryWorker] scheduler stopped: %v", err)
		}
	}()

	go func() {
		log.Println("[ExpiryWorker] starting worker...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[ExpiryWorker] worker stopped: %v", err)
		}
	}()
}

func handleExpireTask(svc scheduling.ReservationService) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, _ *asynq.Task) error {
		maxAge := time.Duration(config.AppConfig.PendingExpiryHours) * time.Hour
		swept, err := svc.ExpirePending(ctx, maxAge)
		if err != nil {
			utils.GetLogger().Error("expiry sweep failed", zap.Error(err))
			return err
		}
		if swept > 0 {
			utils.GetLogger().Info("expiry sweep completed", zap.Int("swept", swept))
		}
		return nil
	}
}
