package api

import (
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WorkoutHandler serves the authenticated user's workout log.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	merge          config.MergeConfig
	log            logrus.FieldLogger
}

// NewWorkoutHandler creates a new WorkoutHandler. merge holds the server-wide
// merge defaults.
func NewWorkoutHandler(workoutService service.WorkoutService, merge config.MergeConfig, log logrus.FieldLogger) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, merge: merge, log: log}
}

// GetWorkouts handles GET /
func (h *WorkoutHandler) GetWorkouts(c *gin.Context) {
	externalID, err := getExternalIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from token")
		return
	}

	views, err := h.workoutService.GetWorkouts(c.Request.Context(), externalID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// UpdateWorkout handles PUT /[?strict=true]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	externalID, err := getExternalIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user from token")
		return
	}

	// Every mutable key is required; a missing one must not read as zero.
	var req service.WorkoutPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	opts := service.MergeOptions{
		StrictLength: h.merge.StrictLength,
		WriteDone:    h.merge.WriteDone,
	}
	if raw := c.Query("strict"); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid strict parameter")
			return
		}
		opts.StrictLength = opts.StrictLength || strict
	}

	views, err := h.workoutService.UpdateWorkout(c.Request.Context(), externalID, req, opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// handleServiceError maps service sentinels to status codes. Anything
// unrecognized is logged and reported generically.
func (h *WorkoutHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidPayload):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrShapeMismatch):
		requestLogger(c, h.log).WithError(err).Warn("merge aborted on shape mismatch")
		abortWithError(c, http.StatusInternalServerError, service.ErrShapeMismatch.Error())
	default:
		requestLogger(c, h.log).WithError(err).Error("workout request failed")
		abortWithError(c, http.StatusInternalServerError, "Something went wrong")
	}
}
