package api

import (
	"errors"
	"net/http"

	"liftlog/fitness-api/internal/domain"
	"liftlog/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
)

// ProteinHandler exposes the daily protein tracker. Every read applies the
// lazy daily reset before answering, so clients always see today's counter.
type ProteinHandler struct {
	proteinService service.ProteinService
}

// NewProteinHandler creates a new ProteinHandler.
func NewProteinHandler(proteinService service.ProteinService) *ProteinHandler {
	return &ProteinHandler{proteinService: proteinService}
}

// --- DTOs ---

// UpdateProteinRequest carries a goal change and/or an intake delta. At
// least one must be present.
type UpdateProteinRequest struct {
	Goal        *int `json:"goal"`
	IntakeDelta *int `json:"intake_delta"`
}

// ProteinResponse is the DTO for protein tracking state.
type ProteinResponse struct {
	Goal          int `json:"goal"`
	CurrentIntake int `json:"current_intake"`
}

// MapProteinToResponse converts a domain.ProteinRecord to its DTO.
func MapProteinToResponse(record *domain.ProteinRecord) ProteinResponse {
	if record == nil {
		return ProteinResponse{}
	}
	return ProteinResponse{
		Goal:          record.DailyGoal,
		CurrentIntake: record.CurrentIntake,
	}
}

// --- Handler Methods ---

// GetProtein returns today's goal and intake, resetting the counter first if
// the calendar day changed since the last access.
func (h *ProteinHandler) GetProtein(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	record, err := h.proteinService.GetToday(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve protein data.")
		return
	}

	c.JSON(http.StatusOK, MapProteinToResponse(record))
}

// UpdateProtein applies a goal change and/or an intake delta and returns the
// updated record.
func (h *ProteinHandler) UpdateProtein(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}

	var req UpdateProteinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.Goal == nil && req.IntakeDelta == nil {
		abortWithError(c, http.StatusBadRequest, "Either goal or intake_delta must be provided.")
		return
	}

	var record *domain.ProteinRecord
	if req.Goal != nil {
		record, err = h.proteinService.SetGoal(c.Request.Context(), userID, *req.Goal)
		if err != nil {
			if errors.Is(err, service.ErrInvalidGoal) {
				abortWithError(c, http.StatusBadRequest, err.Error())
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to update protein goal.")
			}
			return
		}
	}
	if req.IntakeDelta != nil {
		record, err = h.proteinService.UpdateIntake(c.Request.Context(), userID, *req.IntakeDelta)
		if err != nil {
			if errors.Is(err, service.ErrIntakeConflict) {
				abortWithError(c, http.StatusConflict, err.Error())
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to update protein intake.")
			}
			return
		}
	}

	c.JSON(http.StatusOK, MapProteinToResponse(record))
}
