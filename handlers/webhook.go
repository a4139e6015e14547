package handlers

import (
	"io"
	"net/http"

	"mentorhub/config"
	"mentorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// PaymentWebhookHandler receives payment gateway webhook events. The
// signature is always verified, in every environment; tests exercise the
// reconciler directly with a stub gateway instead of bypassing verification.
func (hb *HandlerBundle) PaymentWebhookHandler(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "failed to read request body", err.Error())
		return
	}

	secret := config.AppConfig.StripeWebhookSecret
	if secret == "" {
		utils.JSONError(c, http.StatusInternalServerError, "webhook secret not configured", "")
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, secret)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "webhook signature verification failed", "")
		return
	}

	// Processing failures are logged with the event's identity and surfaced
	// as a 500 so the gateway redelivers; handlers are replay-safe. A
	// deliberately dropped event acknowledges with 200 to stop redelivery.
	if err := hb.Reconciler.HandleEvent(c.Request.Context(), event); err != nil {
		utils.GetLogger().Error("webhook event processing failed",
			zap.String("eventID", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
