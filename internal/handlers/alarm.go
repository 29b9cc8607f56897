package handlers

import (
	"errors"
	"net/http"

	"vacuum_bridge/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	errSimDisabled = "simulation is disabled"
	errSimAlarm    = "unsupported alarm state"
)

// SimAlarmRequest sets the simulated alarm state.
type SimAlarmRequest struct {
	// ARMED_AWAY, DISARMED or ARMED_HOME
	State string `json:"state" binding:"required" example:"ARMED_AWAY"`
}

// @Summary      Alarm watcher status
// @Tags         alarm
// @Produce      json
// @Success      200  {object}  models.WatcherStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alarm [get]
// @Security     BearerAuth
func (h *Handler) getAlarm(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Watcher.Status())
}

// @Summary      Set simulated alarm state
// @Tags         simulation
// @Accept       json
// @Produce      json
// @Param        body  body  SimAlarmRequest  true  "Alarm state"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/sim/alarm [post]
// @Security     BearerAuth
func (h *Handler) setSimAlarm(c *gin.Context) {
	if h.services.Simulation == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errSimDisabled})
		return
	}
	var req SimAlarmRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	state := models.ParseAlarmState(req.State)
	if err := h.services.SetAlarmState(state); err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errSimAlarm, "sim_alarm_rejected", err, "state", req.State)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "state": req.State})
}

// @Summary      Expire simulated alarm sessions
// @Tags         simulation
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/sim/expire-sessions [post]
// @Security     BearerAuth
func (h *Handler) expireSimSessions(c *gin.Context) {
	if h.services.Simulation == nil {
		h.logAndJSONError(c, http.StatusNotFound, errSimDisabled, "sim_disabled", errors.New(errSimDisabled))
		return
	}
	h.services.ExpireSessions()
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
