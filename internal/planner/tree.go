// Package planner holds the in-memory plan editing tree and the id-based
// reconciler that diffs an edited tree against the persisted snapshot.
//
// The tree is what the builder UI edits: Plan -> Days -> Exercises -> Sets.
// Persisted identity is carried by the ObjectID fields (Nil until storage
// assigns one); every node additionally carries a LocalID assigned exactly
// once at construction, so duplicated or reordered nodes can never collide
// and "needs insert" vs "needs update" is always unambiguous.
package planner

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ymfit/studio-app/internal/domain"
)

// Plan is the root of the editing tree.
type Plan struct {
	ID              primitive.ObjectID `json:"id,omitempty"` // Nil until first persisted
	TrainerID       primitive.ObjectID `json:"trainerId"`
	TraineeID       primitive.ObjectID `json:"traineeId"`
	Name            string             `json:"name"`
	Description     string             `json:"description,omitempty"`
	WeeklyFrequency int                `json:"weeklyFrequency"`
	StartDate       *time.Time         `json:"startDate,omitempty"`
	EndDate         *time.Time         `json:"endDate,omitempty"`
	IsActive        bool               `json:"isActive"`
	Days            []Day              `json:"days"`
}

// Day is one training day in the editing tree.
type Day struct {
	ID           primitive.ObjectID `json:"id,omitempty"` // Nil for new, unpersisted days
	LocalID      string             `json:"localId"`
	DayNumber    int                `json:"dayNumber"`
	Name         string             `json:"name"`
	Focus        string             `json:"focus,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	WeeklyRepeat int                `json:"weeklyRepeat"`
	Exercises    []Exercise         `json:"exercises"`
}

// Exercise is one prescription in a day, referencing a catalog exercise.
type Exercise struct {
	ID          primitive.ObjectID `json:"id,omitempty"` // Nil for new, unpersisted prescriptions
	LocalID     string             `json:"localId"`
	ExerciseID  primitive.ObjectID `json:"exerciseId"` // Catalog reference
	Position    int                `json:"position"`
	RestSeconds int                `json:"restSeconds"`
	Notes       string             `json:"notes,omitempty"`
	Sets        []Set              `json:"sets"`
}

// Set exists only at editing time; persistence flattens the first set's
// scalar fields onto the PlanExercise row.
type Set struct {
	Weight      float64             `json:"weight"`
	Reps        int                 `json:"reps"`
	RPE         *float64            `json:"rpe,omitempty"`
	Type        domain.SetType      `json:"type"`
	Failure     bool                `json:"failure"`
	EquipmentID *primitive.ObjectID `json:"equipmentId,omitempty"`

	// Paired movement, used when Type is superset or dropset.
	PairExerciseID  *primitive.ObjectID `json:"pairExerciseId,omitempty"`
	PairWeight      float64             `json:"pairWeight,omitempty"`
	PairReps        int                 `json:"pairReps,omitempty"`
	PairRPE         *float64            `json:"pairRpe,omitempty"`
	PairEquipmentID *primitive.ObjectID `json:"pairEquipmentId,omitempty"`

	// Nested drop within a superset.
	DropWeight float64 `json:"dropWeight,omitempty"`
	DropReps   int     `json:"dropReps,omitempty"`
}

// NewDay constructs an unpersisted day with a fresh local id.
func NewDay(dayNumber int, name string) Day {
	return Day{
		LocalID:      uuid.NewString(),
		DayNumber:    dayNumber,
		Name:         name,
		WeeklyRepeat: 1,
	}
}

// NewExercise constructs an unpersisted prescription with a fresh local id.
func NewExercise(exerciseID primitive.ObjectID, position int) Exercise {
	return Exercise{
		LocalID:    uuid.NewString(),
		ExerciseID: exerciseID,
		Position:   position,
	}
}

// IsPersisted reports whether storage has assigned this day an id.
func (d *Day) IsPersisted() bool {
	return d.ID != primitive.NilObjectID
}

// IsPersisted reports whether storage has assigned this prescription an id.
func (e *Exercise) IsPersisted() bool {
	return e.ID != primitive.NilObjectID
}

// FromPersisted re-inflates an editing tree from the persisted rows, expanding
// each PlanExercise's flattened set data back into SetsCount identical sets.
// Loaded nodes get fresh local ids; their persisted ids are kept as-is.
func FromPersisted(plan *domain.TrainingPlan, days []domain.PlanDay, exercisesByDay map[primitive.ObjectID][]domain.PlanExercise) *Plan {
	tree := &Plan{
		ID:              plan.ID,
		TrainerID:       plan.TrainerID,
		TraineeID:       plan.TraineeID,
		Name:            plan.Name,
		Description:     plan.Description,
		WeeklyFrequency: plan.WeeklyFrequency,
		StartDate:       plan.StartDate,
		EndDate:         plan.EndDate,
		IsActive:        plan.IsActive,
	}
	for _, d := range days {
		day := Day{
			ID:           d.ID,
			LocalID:      uuid.NewString(),
			DayNumber:    d.DayNumber,
			Name:         d.Name,
			Focus:        d.Focus,
			Notes:        d.Notes,
			WeeklyRepeat: d.WeeklyRepeat,
		}
		for _, pe := range exercisesByDay[d.ID] {
			ex := Exercise{
				ID:          pe.ID,
				LocalID:     uuid.NewString(),
				ExerciseID:  pe.ExerciseID,
				Position:    pe.Position,
				RestSeconds: pe.RestSeconds,
				Notes:       pe.Notes,
			}
			count := pe.SetsCount
			if count < 1 {
				count = 1
			}
			set := Set{
				Weight:          pe.TargetWeight,
				Reps:            pe.TargetReps,
				RPE:             pe.TargetRPE,
				Type:            pe.SetType,
				Failure:         pe.ToFailure,
				EquipmentID:     pe.EquipmentID,
				PairExerciseID:  pe.PairExerciseID,
				PairWeight:      pe.PairWeight,
				PairReps:        pe.PairReps,
				PairRPE:         pe.PairRPE,
				PairEquipmentID: pe.PairEquipmentID,
				DropWeight:      pe.DropWeight,
				DropReps:        pe.DropReps,
			}
			if set.Type == "" {
				set.Type = domain.SetTypeRegular
			}
			for i := 0; i < count; i++ {
				ex.Sets = append(ex.Sets, set)
			}
			day.Exercises = append(day.Exercises, ex)
		}
		tree.Days = append(tree.Days, day)
	}
	return tree
}
