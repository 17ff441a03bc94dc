package api

import (
	"errors"
	"net/http"
	"time"

	"liftlog/fitness-api/internal/domain"
	"liftlog/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateWorkoutRequest defines the expected JSON for creating a workout.
type CreateWorkoutRequest struct {
	Name string `json:"name" binding:"required,max=30"`
}

// CreateExerciseRequest defines the expected JSON for adding an exercise.
// Weight is optional and defaults to zero.
type CreateExerciseRequest struct {
	Name   string   `json:"name" binding:"required,max=30"`
	Sets   int      `json:"sets" binding:"required,min=1,max=99"`
	Reps   int      `json:"reps" binding:"required,min=1,max=99"`
	Weight *float64 `json:"weight" binding:"omitempty,min=0,max=999.99"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

// WorkoutResponse is the DTO for returning workout details. The resume
// pointer fields are present only while a Workout Mode session is active.
type WorkoutResponse struct {
	ID                      string             `json:"id"`
	Name                    string             `json:"name"`
	Exercises               []ExerciseResponse `json:"exercises"`
	LastActiveExerciseIndex *int               `json:"lastActiveExerciseIndex,omitempty"`
	LastActiveSetIndex      *int               `json:"lastActiveSetIndex,omitempty"`
	StartedAt               *time.Time         `json:"startedAt,omitempty"`
	CreatedAt               time.Time          `json:"createdAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:     ex.ID.Hex(),
		Name:   ex.Name,
		Sets:   ex.Sets,
		Reps:   ex.Reps,
		Weight: ex.Weight,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(&ex)
	}
	return responses
}

// MapWorkoutToResponse converts a domain.Workout to WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:                      w.ID.Hex(),
		Name:                    w.Name,
		Exercises:               MapExercisesToResponse(w.Exercises),
		LastActiveExerciseIndex: w.LastActiveExerciseIndex,
		LastActiveSetIndex:      w.LastActiveSetIndex,
		StartedAt:               w.StartedAt,
		CreatedAt:               w.CreatedAt,
	}
}

// --- Handler Methods ---

// ListWorkouts returns all workouts owned by the caller.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	workouts, err := h.workoutService.GetWorkouts(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workouts.")
		return
	}

	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// CreateWorkout creates a new empty workout for the caller.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), ownerID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrInvalidValue) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create workout.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// DeleteWorkout removes one of the caller's workouts.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	ownerID, workoutID, ok := h.workoutScope(c)
	if !ok {
		return
	}

	err := h.workoutService.DeleteWorkout(c.Request.Context(), ownerID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete workout.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ListExercises returns the exercises of one workout in sequence order.
func (h *WorkoutHandler) ListExercises(c *gin.Context) {
	ownerID, workoutID, ok := h.workoutScope(c)
	if !ok {
		return
	}

	exercises, err := h.workoutService.GetExercises(c.Request.Context(), ownerID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// CreateExercise appends an exercise to one of the caller's workouts.
func (h *WorkoutHandler) CreateExercise(c *gin.Context) {
	ownerID, workoutID, ok := h.workoutScope(c)
	if !ok {
		return
	}

	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	weight := 0.0
	if req.Weight != nil {
		weight = *req.Weight
	}

	exercise, err := h.workoutService.AddExercise(c.Request.Context(), ownerID, workoutID, req.Name, req.Sets, req.Reps, weight)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidValue):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// UpdateExercise updates an exercise's working weight. Weight is the only
// field a client may change after creation; patching anything else is
// rejected.
func (h *WorkoutHandler) UpdateExercise(c *gin.Context) {
	ownerID, workoutID, ok := h.workoutScope(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "exercise not found")
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	for field := range body {
		if field != "weight" {
			abortWithError(c, http.StatusBadRequest, "This field cannot be updated: "+field)
			return
		}
	}
	weightRaw, present := body["weight"]
	weight, isNumber := weightRaw.(float64)
	if !present || !isNumber {
		abortWithError(c, http.StatusBadRequest, "weight must be a number")
		return
	}

	exercise, err := h.workoutService.UpdateExerciseWeight(c.Request.Context(), ownerID, workoutID, exerciseID, weight)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidValue):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise removes an exercise from one of the caller's workouts.
func (h *WorkoutHandler) DeleteExercise(c *gin.Context) {
	ownerID, workoutID, ok := h.workoutScope(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "exercise not found")
		return
	}

	err = h.workoutService.DeleteExercise(c.Request.Context(), ownerID, workoutID, exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) || errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// workoutScope extracts the caller id and the workout id path parameter. An
// unparseable workout id gets the same 404 as a missing workout.
func (h *WorkoutHandler) workoutScope(c *gin.Context) (ownerID, workoutID primitive.ObjectID, ok bool) {
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
