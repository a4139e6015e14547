// File: mentorhub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentorhub/config"
	"mentorhub/cron"
	"mentorhub/database"
	billingRepo "mentorhub/database/repository/billing"
	reservationRepo "mentorhub/database/repository/reservation"
	slotRepo "mentorhub/database/repository/slot"
	"mentorhub/handlers"
	"mentorhub/middleware"
	"mentorhub/routes"
	"mentorhub/services/payment"
	"mentorhub/services/scheduling"
	"mentorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockClient()
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	reservations := reservationRepo.NewMongoReservationRepo()
	billing := billingRepo.NewMongoBillingRepo()

	// services.
	gateway := payment.NewStripeGateway()
	schedulingSvc := scheduling.NewDefaultSchedulingService(slots, reservations, gateway)
	locker := payment.NewRedisLocker(utils.GetLockClient())
	reconciler := payment.NewReconciler(billing, gateway, schedulingSvc, locker)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(routes.CORSConfig())

	hb := &handlers.HandlerBundle{
		Scheduling: schedulingSvc,
		Reconciler: reconciler,
	}
	routes.RegisterHealthRoute(router)
	routes.RegisterSlotRoutes(router, hb)
	routes.RegisterReservationRoutes(router, hb)
	routes.RegisterWebhookRoutes(router, hb)

	// Optional sweep for stale unapproved reservations.
	cron.InitExpiryWorker(schedulingSvc)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Sugar().Infof("mentorhub listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("forced shutdown: %v", err)
	}
	logger.Info("server exited")
}
