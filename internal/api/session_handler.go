package api

import (
	"errors"
	"net/http"
	"time"

	"liftlog/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler exposes Workout Mode: begin, advance, resume-state query and
// explicit exit. The resume pointer behind these endpoints is persisted, so a
// client that lost all local state can pick up exactly where it stopped.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- DTOs ---

// AdvanceRequest optionally carries a new working weight for the exercise
// being finished. It only takes effect on the advance that crosses an
// exercise boundary.
type AdvanceRequest struct {
	Weight *float64 `json:"weight" binding:"omitempty,min=0,max=999.99"`
}

// SessionResponse mirrors service.SessionState for JSON output.
type SessionResponse struct {
	WorkoutID     string `json:"workoutId,omitempty"`
	Active        bool   `json:"active"`
	Completed     bool   `json:"completed,omitempty"`
	ExerciseIndex *int   `json:"exerciseIndex,omitempty"`
	SetIndex      *int   `json:"setIndex,omitempty"`
	StartedAt     string `json:"startedAt,omitempty"`
}

// MapSessionToResponse converts a service.SessionState to its DTO.
func MapSessionToResponse(state *service.SessionState) SessionResponse {
	if state == nil {
		return SessionResponse{}
	}
	resp := SessionResponse{
		Active:    state.Active,
		Completed: state.Completed,
	}
	if state.WorkoutID != primitive.NilObjectID {
		resp.WorkoutID = state.WorkoutID.Hex()
	}
	if state.Pointer != nil {
		exerciseIndex := state.Pointer.ExerciseIndex
		setIndex := state.Pointer.SetIndex
		resp.ExerciseIndex = &exerciseIndex
		resp.SetIndex = &setIndex
	}
	if state.StartedAt != nil {
		resp.StartedAt = state.StartedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// --- Handler Methods ---

// BeginSession starts Workout Mode on one of the caller's workouts.
func (h *SessionHandler) BeginSession(c *gin.Context) {
	ownerID, workoutID, ok := sessionScope(c)
	if !ok {
		return
	}

	state, err := h.sessionService.BeginSession(c.Request.Context(), ownerID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to begin session.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapSessionToResponse(state))
}

// Advance records a completed set and moves the resume pointer.
func (h *SessionHandler) Advance(c *gin.Context) {
	ownerID, workoutID, ok := sessionScope(c)
	if !ok {
		return
	}

	var req AdvanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	state, err := h.sessionService.Advance(c.Request.Context(), ownerID, workoutID, req.Weight)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNoActiveSession), errors.Is(err, service.ErrSessionConflict):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidValue):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to advance session.")
		}
		return
	}

	c.JSON(http.StatusOK, MapSessionToResponse(state))
}

// GetResumeState returns the persisted resume point for one workout. An
// inactive session is a normal 200 with active=false.
func (h *SessionHandler) GetResumeState(c *gin.Context) {
	ownerID, workoutID, ok := sessionScope(c)
	if !ok {
		return
	}

	state, err := h.sessionService.GetResumeState(c.Request.Context(), ownerID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to query session.")
		}
		return
	}

	c.JSON(http.StatusOK, MapSessionToResponse(state))
}

// GetActiveSession reports whether the caller has any workout in progress.
func (h *SessionHandler) GetActiveSession(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	state, err := h.sessionService.GetActiveSession(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to query active session.")
		return
	}

	c.JSON(http.StatusOK, MapSessionToResponse(state))
}

// ExitSession abandons an in-progress session.
func (h *SessionHandler) ExitSession(c *gin.Context) {
	ownerID, workoutID, ok := sessionScope(c)
	if !ok {
		return
	}

	err := h.sessionService.ExitSession(c.Request.Context(), ownerID, workoutID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNoActiveSession):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to exit session.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func sessionScope(c *gin.Context) (ownerID, workoutID primitive.ObjectID, ok bool) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	workoutID, err = primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "workout not found")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return ownerID, workoutID, true
}
