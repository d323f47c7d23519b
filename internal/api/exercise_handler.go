package api

import (
	"errors"
	"fmt"
	"net/http"

	"ymfit/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler exposes the trainer's exercise catalog.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

type ExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	MuscleGroup string `json:"muscleGroup,omitempty"`
	Difficulty  string `json:"difficulty,omitempty" binding:"omitempty,oneof=Novice Medium Advanced"`
	VideoURL    string `json:"videoUrl,omitempty" binding:"omitempty,url"`
}

// CreateExercise handles POST /api/v1/exercises.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), trainerID, req.Name, req.Description, req.MuscleGroup, req.Difficulty, req.VideoURL)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, "Exercise validation failed")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create exercise")
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// GetTrainerExercises handles GET /api/v1/exercises.
func (h *ExerciseHandler) GetTrainerExercises(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	exercises, err := h.exerciseService.GetExercisesByTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load exercises")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// UpdateExercise handles PUT /api/v1/exercises/:exerciseId.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), trainerID, exerciseID, req.Name, req.Description, req.MuscleGroup, req.Difficulty, req.VideoURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, "Exercise not found")
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, "You do not own this exercise")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise")
		}
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise handles DELETE /api/v1/exercises/:exerciseId.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), trainerID, exerciseID); err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, "Exercise not found")
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, "You do not own this exercise")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
