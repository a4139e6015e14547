package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"mentorhub/middleware"
	"mentorhub/models"
	"mentorhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateSlotHandler publishes a new availability window for the calling mentor.
func (hb *HandlerBundle) CreateSlotHandler(c *gin.Context) {
	var req models.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	// The slot always belongs to the authenticated mentor.
	mentorID, _ := middleware.CallerIdentity(c)
	req.MentorID = mentorID

	slot, err := hb.Scheduling.CreateSlot(c.Request.Context(), req)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// ListSlotsHandler lists slots filtered by mentor, date range, and availability.
func (hb *HandlerBundle) ListSlotsHandler(c *gin.Context) {
	filter := models.SlotFilter{
		MentorID:      c.Query("mentorId"),
		AvailableOnly: c.Query("available") == "true",
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid 'from' timestamp", err.Error())
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid 'to' timestamp", err.Error())
			return
		}
		filter.To = &t
	}

	slots, err := hb.Scheduling.ListSlots(c.Request.Context(), filter)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// windowsCacheTTL bounds how stale the windows view may be. The view is
// advisory: the reservation insert re-checks overlap transactionally, so a
// stale window can only produce a clean conflict, never a double booking.
const windowsCacheTTL = 30 * time.Second

// SlotWindowsHandler returns the windows a student may still request.
func (hb *HandlerBundle) SlotWindowsHandler(c *gin.Context) {
	slotID := c.Param("id")
	cacheKey := "slot:windows:" + slotID

	cache := utils.GetCacheClient()
	if cached, err := cache.Get(c.Request.Context(), cacheKey).Result(); err == nil {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	windows, err := hb.Scheduling.SlotWindows(c.Request.Context(), slotID)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	body, err := json.Marshal(gin.H{"windows": windows})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	if err := cache.Set(c.Request.Context(), cacheKey, body, windowsCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache slot windows",
			zap.String("slotID", slotID), zap.Error(err))
	}
	c.Data(http.StatusOK, "application/json", body)
}

// SlotBlocksHandler returns the slot's hourly occupancy view.
func (hb *HandlerBundle) SlotBlocksHandler(c *gin.Context) {
	blocks, err := hb.Scheduling.SlotBlocks(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}
