package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"vacuum_bridge/internal/models"
	"vacuum_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidAction = "invalid action; use start, stop or pause"
	errApplyFailed   = "failed to apply action"

	legacySeparator = "<br>"
)

// ControlResponse is returned by the versioned control endpoint.
type ControlResponse struct {
	Action  string   `json:"action" example:"start"`
	Results []string `json:"results"`
}

// queryBool reads a boolean query flag; anything unparsable is false.
func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}

func applyParamsFrom(c *gin.Context, action string) service.ApplyParams {
	return service.ApplyParams{
		Action:    models.Action(strings.ToLower(action)),
		DeviceID:  strings.TrimSpace(c.Query("device_id")),
		AutoStart: queryBool(c, "autostart"),
	}
}

// @Summary      List vacuums
// @Description  Discovered vacuums with their last finished cleaning. probe=true pings each address.
// @Tags         vacuums
// @Produce      json
// @Param        probe  query  bool  false  "Ping each vacuum"
// @Success      200  {array}   models.VacuumInfo
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/vacuums [get]
// @Security     BearerAuth
func (h *Handler) listVacuums(c *gin.Context) {
	vacuums := h.services.ListVacuums(c.Request.Context(), queryBool(c, "probe"))
	c.JSON(http.StatusOK, vacuums)
}

// @Summary      Control vacuums
// @Description  Start, stop (dock) or pause all vacuums or the one named by device_id. autostart=true applies the cooldown to start.
// @Tags         vacuums
// @Produce      json
// @Param        action     path   string  true   "Action"  Enums(start,stop,pause)
// @Param        device_id  query  string  false  "Target a single vacuum"
// @Param        autostart  query  bool    false  "Apply the auto start cooldown"
// @Success      200  {object}  ControlResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /api/v1/vacuums/{action} [post]
// @Security     BearerAuth
func (h *Handler) controlVacuums(c *gin.Context) {
	p := applyParamsFrom(c, c.Param("action"))
	results, ok := h.apply(c, p)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ControlResponse{Action: string(p.Action), Results: results})
}

// legacyControl serves GET /start, /stop and /pause with the original
// plain-text response, one outcome per line joined by <br>.
func (h *Handler) legacyControl(c *gin.Context) {
	action := strings.TrimPrefix(c.FullPath(), "/")
	results, ok := h.apply(c, applyParamsFrom(c, action))
	if !ok {
		return
	}
	c.String(http.StatusOK, strings.Join(results, legacySeparator))
}

func (h *Handler) apply(c *gin.Context, p service.ApplyParams) ([]string, bool) {
	if !p.Action.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidAction})
		return nil, false
	}
	results, err := h.services.Apply(c.Request.Context(), p)
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errApplyFailed, "fleet_apply_failed", err, "action", p.Action)
		return nil, false
	}
	if h.log != nil {
		h.log.Infow("fleet_apply", "action", p.Action, "device_id", p.DeviceID, "auto_start", p.AutoStart, "results", len(results))
	}
	return results, true
}

// @Summary      Cooldowns
// @Description  Last finished cleaning per device, as used by the auto start cooldown.
// @Tags         vacuums
// @Produce      json
// @Success      200  {array}   models.CooldownEntry
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/cooldowns [get]
// @Security     BearerAuth
func (h *Handler) getCooldowns(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Snapshot())
}
