package api

import (
	"errors"
	"fmt"
	"net/http"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlanHandler exposes nutrition plan endpoints.
type MealPlanHandler struct {
	mealPlanService service.MealPlanService
}

func NewMealPlanHandler(mealPlanService service.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{mealPlanService: mealPlanService}
}

type MealPlanRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description,omitempty"`
	Meals       []domain.Meal `json:"meals"`
	IsActive    bool          `json:"isActive"`
}

// CreateMealPlan handles POST /api/v1/trainer/trainees/:traineeId/meal-plans.
func (h *MealPlanHandler) CreateMealPlan(c *gin.Context) {
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

	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.mealPlanService.CreateMealPlan(c.Request.Context(), trainerID, &domain.MealPlan{
		TraineeID:   traineeID,
		Name:        req.Name,
		Description: req.Description,
		Meals:       req.Meals,
		IsActive:    req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create meal plan")
		}
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetMealPlans handles GET /api/v1/trainees/:traineeId/meal-plans.
func (h *MealPlanHandler) GetMealPlans(c *gin.Context) {
	callerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format")
		return
	}

	plans, err := h.mealPlanService.GetMealPlansForTrainee(c.Request.Context(), callerID, traineeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load meal plans")
		}
		return
	}
	c.JSON(http.StatusOK, plans)
}

// UpdateMealPlan handles PUT /api/v1/trainer/meal-plans/:planId.
func (h *MealPlanHandler) UpdateMealPlan(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meal plan ID format")
		return
	}

	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	plan, err := h.mealPlanService.UpdateMealPlan(c.Request.Context(), trainerID, &domain.MealPlan{
		ID:          planID,
		Name:        req.Name,
		Description: req.Description,
		Meals:       req.Meals,
		IsActive:    req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMealPlanNotFound):
			abortWithError(c, http.StatusNotFound, "Meal plan not found")
		case errors.Is(err, service.ErrMealPlanAccessDenied):
			abortWithError(c, http.StatusForbidden, "You do not own this meal plan")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update meal plan")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}

// DeleteMealPlan handles DELETE /api/v1/trainer/meal-plans/:planId.
func (h *MealPlanHandler) DeleteMealPlan(c *gin.Context) {
	trainerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meal plan ID format")
		return
	}

	if err := h.mealPlanService.DeleteMealPlan(c.Request.Context(), trainerID, planID); err != nil {
		if errors.Is(err, service.ErrMealPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "Meal plan not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete meal plan")
		return
	}
	c.Status(http.StatusNoContent)
}
