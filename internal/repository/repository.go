package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ymfit/studio-app/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddTraineeIDToTrainer(ctx context.Context, trainerID, traineeID primitive.ObjectID) error
	GetTraineesByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForTrainee(ctx context.Context, traineeID, trainerID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for the catalog exercises.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error // Ensure trainer owns the exercise
}

// TrainingPlanRepository defines the interface for plan root rows.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetActiveByTraineeID(ctx context.Context, traineeID primitive.ObjectID) (*domain.TrainingPlan, error)
	GetByTraineeAndTrainerID(ctx context.Context, traineeID, trainerID primitive.ObjectID) ([]domain.TrainingPlan, error)
	Update(ctx context.Context, plan *domain.TrainingPlan) error
	Delete(ctx context.Context, planID, trainerID primitive.ObjectID) error
}

// PlanDayRepository stores the days of a training plan. The reconciler relies
// on exactly three guarantees here: Create returns the storage-assigned id,
// Update/Delete by id succeed-or-error, and GetByPlanID returns the current
// children with their ids.
type PlanDayRepository interface {
	Create(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error)
	Update(ctx context.Context, day *domain.PlanDay) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
}

// PlanExerciseRepository stores the flattened exercise rows of a plan day.
type PlanExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.PlanExercise) (primitive.ObjectID, error)
	GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.PlanExercise, error)
	Update(ctx context.Context, exercise *domain.PlanExercise) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
	DeleteByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) error // cascade when days are removed
}

// WorkoutRepository defines the interface for logged workout sessions.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	// GetByTraineeAndMonth returns the trainee's workouts in one calendar
	// month, ordered by date ascending (ties by insertion id). The calendar
	// sync title computation depends on that ordering.
	GetByTraineeAndMonth(ctx context.Context, traineeID primitive.ObjectID, year int, month time.Month) ([]domain.Workout, error)
}

// SyncRecordRepository stores the per-workout calendar sync bookkeeping.
type SyncRecordRepository interface {
	Create(ctx context.Context, record *domain.SyncRecord) (primitive.ObjectID, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (*domain.SyncRecord, error)
	Update(ctx context.Context, record *domain.SyncRecord) error
	DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error
}

// MealPlanRepository defines the interface for nutrition plans.
type MealPlanRepository interface {
	Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.MealPlan, error)
	Update(ctx context.Context, plan *domain.MealPlan) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// MeasurementRepository defines the interface for body measurements.
type MeasurementRepository interface {
	Create(ctx context.Context, m *domain.Measurement) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Measurement, error)
	GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.Measurement, error)
	Update(ctx context.Context, m *domain.Measurement) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// CardRepository defines the interface for trainee session cards.
type CardRepository interface {
	Create(ctx context.Context, card *domain.TraineeCard) (primitive.ObjectID, error)
	GetActiveByTraineeID(ctx context.Context, traineeID primitive.ObjectID) (*domain.TraineeCard, error)
	Update(ctx context.Context, card *domain.TraineeCard) error
}
