package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler exposes workout logging endpoints.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type SaveWorkoutRequest struct {
	WorkoutID   *string                  `json:"workoutId,omitempty"` // Present for updates
	TraineeID   string                   `json:"traineeId" binding:"required"`
	TrainerID   string                   `json:"trainerId" binding:"required"`
	PlanDayID   *string                  `json:"planDayId,omitempty"`
	WorkoutType string                   `json:"workoutType" binding:"required,oneof=personal pair group"`
	Notes       string                   `json:"notes,omitempty"`
	Date        time.Time                `json:"date" binding:"required"`
	Exercises   []domain.WorkoutExercise `json:"exercises"`
	PairMember  string                   `json:"pairMember,omitempty"`
	IsAutoSave  bool                     `json:"isAutoSave"`
	IsPrepared  bool                     `json:"isPrepared"`
}

// SaveWorkout handles POST /api/v1/workouts.
//
// The caller must be the trainer named on the workout and must manage the
// trainee. The save succeeds even when the downstream calendar push fails;
// the sync state is kept per workout and retried on the next save.
func (h *WorkoutHandler) SaveWorkout(c *gin.Context) {
	callerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}

	var req SaveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.workoutService.SaveWorkout(c.Request.Context(), callerID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrainerMismatch), errors.Is(err, service.ErrCallerNotTrainer):
			abortWithError(c, http.StatusForbidden, "You are not allowed to save this workout")
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, "Workout not found")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to save workout")
		}
		return
	}

	c.JSON(http.StatusOK, workout)
}

func (req *SaveWorkoutRequest) toInput() (service.SaveWorkoutInput, error) {
	traineeID, err := primitive.ObjectIDFromHex(req.TraineeID)
	if err != nil {
		return service.SaveWorkoutInput{}, errors.New("invalid trainee ID format")
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		return service.SaveWorkoutInput{}, errors.New("invalid trainer ID format")
	}

	input := service.SaveWorkoutInput{
		TraineeID:   traineeID,
		TrainerID:   trainerID,
		WorkoutType: req.WorkoutType,
		Notes:       req.Notes,
		Date:        req.Date,
		Exercises:   req.Exercises,
		PairMember:  req.PairMember,
		IsAutoSave:  req.IsAutoSave,
		IsPrepared:  req.IsPrepared,
	}
	if req.WorkoutID != nil {
		id, err := primitive.ObjectIDFromHex(*req.WorkoutID)
		if err != nil {
			return service.SaveWorkoutInput{}, errors.New("invalid workout ID format")
		}
		input.WorkoutID = &id
	}
	if req.PlanDayID != nil {
		id, err := primitive.ObjectIDFromHex(*req.PlanDayID)
		if err != nil {
			return service.SaveWorkoutInput{}, errors.New("invalid plan day ID format")
		}
		input.PlanDayID = &id
	}
	return input, nil
}

// GetWorkout handles GET /api/v1/workouts/:workoutId.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	callerID, err := getUserObjectIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify caller")
		return
	}
	workoutID, err := primitive.ObjectIDFromHex(c.Param("workoutId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}

	workout, err := h.workoutService.GetWorkoutByID(c.Request.Context(), callerID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, "Workout not found")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load workout")
		return
	}
	c.JSON(http.StatusOK, workout)
}

// ListWorkoutsForMonth handles GET /api/v1/trainees/:traineeId/workouts?month=YYYY-MM.
func (h *WorkoutHandler) ListWorkoutsForMonth(c *gin.Context) {
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

	monthStr := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))
	month, err := time.Parse("2006-01", monthStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid month format, expected YYYY-MM")
		return
	}

	workouts, err := h.workoutService.GetWorkoutsForMonth(c.Request.Context(), callerID, traineeID, month)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTraineeNotFound), errors.Is(err, service.ErrTraineeNotManaged):
			abortWithError(c, http.StatusNotFound, "Trainee not found on your roster")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load workouts")
		}
		return
	}
	c.JSON(http.StatusOK, workouts)
}
