package api

import (
	"errors"
	"fmt"
	"net/http"

	"ymfit/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerHandler exposes roster and session-card management.
type TrainerHandler struct {
	trainerService service.TrainerService
}

func NewTrainerHandler(trainerService service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

// --- Request Structs ---

type AddTraineeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type IssueCardRequest struct {
	Purchased int `json:"purchased" binding:"required,gt=0"`
}

// --- Handler Methods ---

// AddTrainee handles POST /api/v1/trainer/trainees.
func (h *TrainerHandler) AddTrainee(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	var req AddTraineeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainee, err := h.trainerService.AddTraineeByEmail(c.Request.Context(), trainerID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTraineeNotFound):
			abortWithError(c, http.StatusNotFound, "No user with that email address")
		case errors.Is(err, service.ErrTraineeNotRole):
			abortWithError(c, http.StatusBadRequest, "User exists but is not a trainee account")
		case errors.Is(err, service.ErrTraineeAlreadyAssigned):
			abortWithError(c, http.StatusConflict, "Trainee is already assigned to another trainer")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add trainee")
		}
		return
	}
	c.JSON(http.StatusOK, toUserResponse(trainee))
}

// GetTrainees handles GET /api/v1/trainer/trainees.
func (h *TrainerHandler) GetTrainees(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	trainees, err := h.trainerService.GetManagedTrainees(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load trainees")
		return
	}

	resp := make([]UserResponse, 0, len(trainees))
	for i := range trainees {
		resp = append(resp, toUserResponse(&trainees[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// IssueCard handles POST /api/v1/trainer/trainees/:traineeId/card.
func (h *TrainerHandler) IssueCard(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format")
		return
	}

	var req IssueCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	card, err := h.trainerService.IssueCard(c.Request.Context(), trainerID, traineeID, req.Purchased)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to issue card")
		}
		return
	}
	c.JSON(http.StatusCreated, card)
}

// GetActiveCard handles GET /api/v1/trainer/trainees/:traineeId/card.
func (h *TrainerHandler) GetActiveCard(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format")
		return
	}

	card, err := h.trainerService.GetActiveCard(c.Request.Context(), trainerID, traineeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		case errors.Is(err, service.ErrCardNotFound):
			abortWithError(c, http.StatusNotFound, "No active card for this trainee")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load card")
		}
		return
	}
	c.JSON(http.StatusOK, card)
}

// ConsumeCardSession handles POST /api/v1/trainer/trainees/:traineeId/card/consume.
func (h *TrainerHandler) ConsumeCardSession(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format")
		return
	}

	card, err := h.trainerService.ConsumeCardSession(c.Request.Context(), trainerID, traineeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		case errors.Is(err, service.ErrCardNotFound):
			abortWithError(c, http.StatusNotFound, "No active card for this trainee")
		default:
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, card)
}
