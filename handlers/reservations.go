package handlers

import (
	"net/http"

	"mentorhub/middleware"
	"mentorhub/models"
	"mentorhub/utils"

	"github.com/gin-gonic/gin"
)

// RequestReservationHandler creates a reservation request for the calling student.
func (hb *HandlerBundle) RequestReservationHandler(c *gin.Context) {
	var req models.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	studentID, _ := middleware.CallerIdentity(c)
	req.StudentID = studentID

	res, err := hb.Scheduling.RequestReservation(c.Request.Context(), req)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ApproveReservationHandler lets the owning mentor approve a pending request.
// Approval triggers the charge; a gateway failure keeps the approval and
// reports a retryable error.
func (hb *HandlerBundle) ApproveReservationHandler(c *gin.Context) {
	mentorID, _ := middleware.CallerIdentity(c)

	res, err := hb.Scheduling.Approve(c.Request.Context(), c.Param("id"), mentorID)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RejectReservationHandler lets the owning mentor reject a request.
func (hb *HandlerBundle) RejectReservationHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	mentorID, _ := middleware.CallerIdentity(c)
	res, err := hb.Scheduling.Reject(c.Request.Context(), c.Param("id"), mentorID, input.Reason)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CancelReservationHandler cancels a reservation on behalf of the caller,
// charging the role- and time-dependent fee.
func (hb *HandlerBundle) CancelReservationHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	userID, role := middleware.CallerIdentity(c)
	result, err := hb.Scheduling.Cancel(c.Request.Context(), models.CancelRequest{
		ReservationID: c.Param("id"),
		ActingUserID:  userID,
		ActingRole:    role,
		Reason:        input.Reason,
		Notes:         input.Notes,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
