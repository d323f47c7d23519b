package api

import (
	"errors"
	"fmt"
	"net/http"

	"ymfit/studio-app/internal/planner"
	"ymfit/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler exposes the plan builder's save and load endpoints.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// SavePlan handles PUT /api/v1/trainer/trainees/:traineeId/plan.
//
// The body is the full edited plan tree. The server diffs it against the
// persisted rows and applies only what changed, so re-submitting the same
// tree is a no-op.
func (h *PlanHandler) SavePlan(c *gin.Context) {
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

	var plan planner.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid plan payload: %v", err))
		return
	}
	plan.TrainerID = trainerID
	plan.TraineeID = traineeID

	saved, err := h.planService.SavePlan(c.Request.Context(), trainerID, &plan)
	if err != nil {
		var validationErr *planner.ValidationError
		var opErr *service.PlanOpError
		switch {
		case errors.As(err, &validationErr):
			abortWithError(c, http.StatusBadRequest, validationErr.Error())
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, "Training plan not found")
		case errors.Is(err, service.ErrPlanAccessDenied):
			abortWithError(c, http.StatusForbidden, "You do not own this training plan")
		case errors.As(err, &opErr):
			abortWithError(c, http.StatusInternalServerError, opErr.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to save training plan")
		}
		return
	}

	c.JSON(http.StatusOK, saved)
}

// GetPlan handles GET /api/v1/trainer/trainees/:traineeId/plan, returning
// the trainee's active plan as an editable tree.
func (h *PlanHandler) GetPlan(c *gin.Context) {
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

	plan, err := h.planService.GetPlanForTrainee(c.Request.Context(), trainerID, traineeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, "No active training plan for this trainee")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load training plan")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}
