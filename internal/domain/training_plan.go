// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetType classifies how a prescribed set is performed.
type SetType string

const (
	SetTypeRegular  SetType = "regular"
	SetTypeSuperset SetType = "superset"
	SetTypeDropset  SetType = "dropset"
)

// TrainingPlan represents a structured plan assigned to a trainee by a trainer.
// It is the root aggregate of the plan builder; its days and exercises live in
// their own collections and are reconciled against the builder's edited tree on
// every save.
type TrainingPlan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID       primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	TraineeID       primitive.ObjectID `bson:"traineeId" json:"traineeId"`
	Name            string             `bson:"name" json:"name"` // e.g., "Phase 1: Hypertrophy"
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	WeeklyFrequency int                `bson:"weeklyFrequency" json:"weeklyFrequency"` // Target sessions per week
	StartDate       *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate         *time.Time         `bson:"endDate,omitempty" json:"endDate,omitempty"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanDay is one training day inside a TrainingPlan.
//
// Identity note: once storage assigns a PlanDay its ID, the reconciler must
// preserve it across edits. Notes and workout history reference days by this
// ID, so a day that still conceptually exists is never deleted-and-recreated.
type PlanDay struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID       primitive.ObjectID `bson:"planId" json:"planId"`
	DayNumber    int                `bson:"dayNumber" json:"dayNumber"` // Ordinal within the plan
	Name         string             `bson:"name" json:"name"`           // e.g., "Day 1: Upper Body"
	Focus        string             `bson:"focus,omitempty" json:"focus,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	WeeklyRepeat int                `bson:"weeklyRepeat" json:"weeklyRepeat"` // 0-7, default 1
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanExercise is one exercise prescription inside a PlanDay, referencing a
// catalog Exercise.
//
// The persisted shape flattens the builder's per-set data: SetsCount holds the
// number of sets, while every scalar target field (weight, reps, RPE, set
// type, failure flag, equipment, and the whole superset/dropset block) is
// copied from the FIRST set only. Sets beyond the first contribute nothing but
// the count. The builder re-inflates identical sets on load. This matches the
// production data already in the store, so it must not be changed without a
// migration.
type PlanExercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DayID       primitive.ObjectID `bson:"dayId" json:"dayId"`
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"` // Catalog reference
	Position    int                `bson:"position" json:"position"`     // Ordinal within the day
	RestSeconds int                `bson:"restSeconds" json:"restSeconds"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// Flattened set data (first set's values, see note above).
	SetsCount    int                 `bson:"setsCount" json:"setsCount"`
	TargetWeight float64             `bson:"targetWeight" json:"targetWeight"`
	TargetReps   int                 `bson:"targetReps" json:"targetReps"`
	TargetRPE    *float64            `bson:"targetRpe,omitempty" json:"targetRpe,omitempty"`
	SetType      SetType             `bson:"setType" json:"setType"`
	ToFailure    bool                `bson:"toFailure" json:"toFailure"`
	EquipmentID  *primitive.ObjectID `bson:"equipmentId,omitempty" json:"equipmentId,omitempty"`

	// Paired movement when SetType is superset or dropset.
	PairExerciseID  *primitive.ObjectID `bson:"pairExerciseId,omitempty" json:"pairExerciseId,omitempty"`
	PairWeight      float64             `bson:"pairWeight,omitempty" json:"pairWeight,omitempty"`
	PairReps        int                 `bson:"pairReps,omitempty" json:"pairReps,omitempty"`
	PairRPE         *float64            `bson:"pairRpe,omitempty" json:"pairRpe,omitempty"`
	PairEquipmentID *primitive.ObjectID `bson:"pairEquipmentId,omitempty" json:"pairEquipmentId,omitempty"`

	// Nested drop within a superset.
	DropWeight float64 `bson:"dropWeight,omitempty" json:"dropWeight,omitempty"`
	DropReps   int     `bson:"dropReps,omitempty" json:"dropReps,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
