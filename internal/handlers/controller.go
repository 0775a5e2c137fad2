package handlers

import (
	"errors"
	"net/http"

	"thermal_regulator/internal/keypad"
	"thermal_regulator/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK     = "ok"
	statusQueued = "queued"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondQueued reports accepted input together with the state at the time of the request. The
// loop applies the input on its next iteration, so the state may not reflect it yet.
func (h *Handler) respondQueued(c *gin.Context, extra gin.H) {
	resp := gin.H{"status": statusQueued}
	for k, v := range extra {
		resp[k] = v
	}
	if st, err := h.services.Monitoring.GetState(c.Request.Context()); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusAccepted, resp)
}

// inputErrorStatus maps setpoint service errors to HTTP codes.
func inputErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInputBusy):
		return http.StatusServiceUnavailable
	case keypad.IsRejection(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

type keysRequest struct {
	// same bound as keypad.MaxRun
	Keys string `json:"keys" binding:"required,max=32"`
}

// SetpointRequest is the payload of POST /api/v1/controller/setpoint.
type SetpointRequest struct {
	// Target temperature in whole degrees Celsius, 1..125
	TargetC int `json:"target_c" binding:"required" example:"100"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get controller state
// @Tags         controller
// @Produce      json
// @Success      200  {object}  models.ControllerSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/controller/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "controller_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Press keypad keys
// @Description  Keys go through the same validator as the local keypad: A begins, digits, # confirms, C cancels.
// @Tags         controller
// @Accept       json
// @Produce      json
// @Success      202  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/controller/keys [post]
// @Security     BearerAuth
func (h *Handler) pressKeys(c *gin.Context) {
	var req keysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Setpoint.PressKeys(c.Request.Context(), req.Keys); err != nil {
		if h.log != nil {
			h.log.Infow("controller_keys_rejected", "err", err, "keys", req.Keys, "operator_id", operatorID(c))
		}
		c.JSON(inputErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if h.log != nil {
		h.log.Infow("controller_keys_queued", "keys", req.Keys, "operator_id", operatorID(c))
	}
	h.respondQueued(c, gin.H{"keys": req.Keys})
}

// @Summary      Set target temperature
// @Tags         controller
// @Accept       json
// @Produce      json
// @Param        body  body   SetpointRequest  true  "Setpoint payload"
// @Success      202   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/controller/setpoint [post]
// @Security     BearerAuth
func (h *Handler) setTarget(c *gin.Context) {
	var req SetpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Setpoint.SetTarget(c.Request.Context(), req.TargetC); err != nil {
		if h.log != nil {
			h.log.Infow("setpoint_rejected", "err", err, "target_c", req.TargetC, "operator_id", operatorID(c))
		}
		c.JSON(inputErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if h.log != nil {
		h.log.Infow("setpoint_queued", "target_c", req.TargetC, "operator_id", operatorID(c))
	}
	h.respondQueued(c, gin.H{"target_c": req.TargetC})
}

// @Summary      Cancel regulation
// @Description  Clears the target and turns the heater off.
// @Tags         controller
// @Produce      json
// @Success      202  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/controller/cancel [post]
// @Security     BearerAuth
func (h *Handler) cancel(c *gin.Context) {
	if err := h.services.Setpoint.Cancel(c.Request.Context()); err != nil {
		c.JSON(inputErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	if h.log != nil {
		h.log.Infow("cancel_queued", "operator_id", operatorID(c))
	}
	h.respondQueued(c, nil)
}
