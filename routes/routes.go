package routes

import (
	"net/http"
	"time"

	"mentorhub/handlers"
	"mentorhub/middleware"
	"mentorhub/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSlotRoutes registers the availability endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/slots")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("", middleware.RequireRole(models.RoleMentor), hb.CreateSlotHandler)
		api.GET("", hb.ListSlotsHandler)
		api.GET("/:id/windows", hb.SlotWindowsHandler)
		api.GET("/:id/blocks", hb.SlotBlocksHandler)
	}
}

// RegisterReservationRoutes registers the reservation lifecycle endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("", middleware.RequireRole(models.RoleStudent), hb.RequestReservationHandler)
		api.POST("/:id/approve", middleware.RequireRole(models.RoleMentor), hb.ApproveReservationHandler)
		api.POST("/:id/reject", middleware.RequireRole(models.RoleMentor), hb.RejectReservationHandler)
		api.POST("/:id/cancel", hb.CancelReservationHandler)
	}
}

// RegisterWebhookRoutes registers the payment gateway callback. No auth
// middleware: the signature check authenticates the gateway.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/webhooks/payment", hb.PaymentWebhookHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm MentorHub"})
	})
}

// CORSConfig returns the shared CORS policy for the API.
func CORSConfig() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	})
}
