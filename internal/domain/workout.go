package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout represents a single logged training session for a trainee. A workout
// may originate from a PlanDay (the trainee performed a planned day) or be
// logged free-form.
type Workout struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TraineeID   primitive.ObjectID  `bson:"traineeId" json:"traineeId"`
	TrainerID   primitive.ObjectID  `bson:"trainerId" json:"trainerId"` // Denormalized for easier query/auth
	PlanDayID   *primitive.ObjectID `bson:"planDayId,omitempty" json:"planDayId,omitempty"`
	WorkoutType string              `bson:"workoutType" json:"workoutType"` // e.g., "personal", "pair", "group"
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Date        time.Time           `bson:"date" json:"date"`
	Exercises   []WorkoutExercise   `bson:"exercises" json:"exercises"`
	PairMember  string              `bson:"pairMember,omitempty" json:"pairMember,omitempty"` // Second participant of a pair session
	IsAutoSave  bool                `bson:"isAutoSave" json:"isAutoSave"`
	IsPrepared  bool                `bson:"isPrepared" json:"isPrepared"` // Prepared ahead by the trainer, not yet performed
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise is one performed exercise within a Workout.
type WorkoutExercise struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Name       string             `bson:"name" json:"name"` // Denormalized catalog name at time of logging
	Sets       []WorkoutSet       `bson:"sets" json:"sets"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutSet is one performed set.
type WorkoutSet struct {
	Weight  float64  `bson:"weight" json:"weight"`
	Reps    int      `bson:"reps" json:"reps"`
	RPE     *float64 `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Failure bool     `bson:"failure" json:"failure"`
}
