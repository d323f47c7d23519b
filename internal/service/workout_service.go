package service

import (
	"context"
	"errors"
	"log"
	"time"

	"ymfit/studio-app/internal/calsync"
	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound   = errors.New("workout not found")
	ErrTrainerMismatch   = errors.New("workout trainer does not match the authenticated user")
	ErrCallerNotTrainer  = errors.New("only trainers can save workouts")
	ErrTraineeNotFound   = errors.New("trainee not found")
	ErrTraineeNotManaged = errors.New("trainee is not managed by this trainer")
)

// SaveWorkoutInput carries everything the client sends for a workout save.
// A nil WorkoutID means create; otherwise the existing workout is updated.
type SaveWorkoutInput struct {
	WorkoutID   *primitive.ObjectID
	TraineeID   primitive.ObjectID
	TrainerID   primitive.ObjectID
	PlanDayID   *primitive.ObjectID
	WorkoutType string
	Notes       string
	Date        time.Time
	Exercises   []domain.WorkoutExercise
	PairMember  string
	IsAutoSave  bool
	IsPrepared  bool
}

// --- Service Interface ---
type WorkoutService interface {
	SaveWorkout(ctx context.Context, callerID primitive.ObjectID, input SaveWorkoutInput) (*domain.Workout, error)
	GetWorkoutByID(ctx context.Context, callerID, workoutID primitive.ObjectID) (*domain.Workout, error)
	GetWorkoutsForMonth(ctx context.Context, callerID, traineeID primitive.ObjectID, monthStart time.Time) ([]domain.Workout, error)
}

// --- Service Implementation ---

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	userRepo    repository.UserRepository
	syncer      *calsync.Syncer // nil when calendar sync is disabled
}

func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	userRepo repository.UserRepository,
	syncer *calsync.Syncer,
) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		userRepo:    userRepo,
		syncer:      syncer,
	}
}

// SaveWorkout creates or updates a logged session. The caller must be the
// trainer named on the workout and must manage the trainee. After the save
// succeeds, the workout is pushed to the external calendar best-effort: a
// sync failure is logged and recorded but never fails the save.
func (s *workoutService) SaveWorkout(ctx context.Context, callerID primitive.ObjectID, input SaveWorkoutInput) (*domain.Workout, error) {
	if input.TrainerID != callerID {
		return nil, ErrTrainerMismatch
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsTrainer() {
		return nil, ErrCallerNotTrainer
	}

	trainee, err := s.userRepo.GetByID(ctx, input.TraineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTraineeNotFound
		}
		return nil, err
	}
	if trainee.TrainerID == nil || *trainee.TrainerID != callerID {
		return nil, ErrTraineeNotManaged
	}

	var workout *domain.Workout
	if input.WorkoutID == nil {
		workout = &domain.Workout{
			TraineeID:   input.TraineeID,
			TrainerID:   input.TrainerID,
			PlanDayID:   input.PlanDayID,
			WorkoutType: input.WorkoutType,
			Notes:       input.Notes,
			Date:        input.Date,
			Exercises:   input.Exercises,
			PairMember:  input.PairMember,
			IsAutoSave:  input.IsAutoSave,
			IsPrepared:  input.IsPrepared,
		}
		workoutID, err := s.workoutRepo.Create(ctx, workout)
		if err != nil {
			return nil, err
		}
		workout.ID = workoutID
	} else {
		workout, err = s.workoutRepo.GetByID(ctx, *input.WorkoutID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrWorkoutNotFound
			}
			return nil, err
		}
		if workout.TrainerID != callerID {
			return nil, ErrTrainerMismatch
		}
		workout.PlanDayID = input.PlanDayID
		workout.WorkoutType = input.WorkoutType
		workout.Notes = input.Notes
		workout.Date = input.Date
		workout.Exercises = input.Exercises
		workout.PairMember = input.PairMember
		workout.IsAutoSave = input.IsAutoSave
		workout.IsPrepared = input.IsPrepared
		if err := s.workoutRepo.Update(ctx, workout); err != nil {
			return nil, err
		}
	}

	s.syncCalendar(ctx, workout, trainee, caller)

	return workout, nil
}

// syncCalendar pushes the workout to the external calendar. Best-effort:
// any error is logged, the sync record keeps the failure state for a later
// retry, and the save itself is unaffected.
func (s *workoutService) syncCalendar(ctx context.Context, workout *domain.Workout, trainee, trainer *domain.User) {
	if s.syncer == nil || !trainer.CalendarSyncEnabled {
		return
	}
	if err := s.syncer.SyncWorkout(ctx, workout, trainee); err != nil {
		log.Printf("WARN: calendar sync failed for workout %s: %v", workout.ID.Hex(), err)
	}
}

// GetWorkoutByID returns a single workout, visible to its trainer or trainee.
func (s *workoutService) GetWorkoutByID(ctx context.Context, callerID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.TrainerID != callerID && workout.TraineeID != callerID {
		return nil, ErrWorkoutNotFound // Don't leak existence
	}
	return workout, nil
}

// GetWorkoutsForMonth lists a trainee's workouts for the month containing
// monthStart, sorted by date ascending.
func (s *workoutService) GetWorkoutsForMonth(ctx context.Context, callerID, traineeID primitive.ObjectID, monthStart time.Time) ([]domain.Workout, error) {
	if callerID != traineeID {
		trainee, err := s.userRepo.GetByID(ctx, traineeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrTraineeNotFound
			}
			return nil, err
		}
		if trainee.TrainerID == nil || *trainee.TrainerID != callerID {
			return nil, ErrTraineeNotManaged
		}
	}
	return s.workoutRepo.GetByTraineeAndMonth(ctx, traineeID, monthStart.Year(), monthStart.Month())
}
