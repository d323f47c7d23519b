package planner

import (
	"testing"

	"ymfit/studio-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// persistedFixture builds a snapshot with two days of one exercise each and
// the matching editing tree, as if the tree had just been loaded.
func persistedFixture(t *testing.T) (*Plan, *Snapshot) {
	t.Helper()

	planID := primitive.NewObjectID()
	dayA := domain.PlanDay{ID: primitive.NewObjectID(), PlanID: planID, DayNumber: 1, Name: "Upper", WeeklyRepeat: 1}
	dayB := domain.PlanDay{ID: primitive.NewObjectID(), PlanID: planID, DayNumber: 2, Name: "Lower", WeeklyRepeat: 1}

	exA := domain.PlanExercise{
		ID:           primitive.NewObjectID(),
		DayID:        dayA.ID,
		ExerciseID:   primitive.NewObjectID(),
		Position:     1,
		SetsCount:    3,
		TargetWeight: 60,
		TargetReps:   8,
		SetType:      domain.SetTypeRegular,
	}
	exB := domain.PlanExercise{
		ID:           primitive.NewObjectID(),
		DayID:        dayB.ID,
		ExerciseID:   primitive.NewObjectID(),
		Position:     1,
		SetsCount:    4,
		TargetWeight: 100,
		TargetReps:   5,
		SetType:      domain.SetTypeRegular,
	}

	snap := &Snapshot{
		Days: []domain.PlanDay{dayA, dayB},
		ExercisesByDay: map[primitive.ObjectID][]domain.PlanExercise{
			dayA.ID: {exA},
			dayB.ID: {exB},
		},
	}
	root := &domain.TrainingPlan{ID: planID, Name: "Block 1", WeeklyFrequency: 2, IsActive: true}
	tree := FromPersisted(root, snap.Days, snap.ExercisesByDay)
	return tree, snap
}

func TestReconcileUnchangedTreeIsEmpty(t *testing.T) {
	tree, snap := persistedFixture(t)

	rec := Reconcile(tree, snap)

	assert.True(t, rec.Empty(), "saving a freshly loaded tree must perform no storage operation")
}

func TestReconcileRenamedDayKeepsIdentity(t *testing.T) {
	tree, snap := persistedFixture(t)
	tree.Days[0].Name = "Upper A"

	rec := Reconcile(tree, snap)

	require.Len(t, rec.Days, 1)
	assert.Equal(t, snap.Days[0].ID, rec.Days[0].Day.ID, "renaming must not change the day id")
	assert.True(t, rec.Days[0].DayChanged)
	assert.Empty(t, rec.Days[0].ExerciseWrites, "untouched exercises must not be rewritten")
	assert.Empty(t, rec.DayDeletes)
}

func TestReconcileNewDayIsInserted(t *testing.T) {
	tree, snap := persistedFixture(t)
	newDay := NewDay(3, "Full Body")
	ex := NewExercise(primitive.NewObjectID(), 1)
	ex.Sets = []Set{{Weight: 40, Reps: 12}}
	newDay.Exercises = []Exercise{ex}
	tree.Days = append(tree.Days, newDay)

	rec := Reconcile(tree, snap)

	require.Len(t, rec.Days, 1)
	assert.Equal(t, primitive.NilObjectID, rec.Days[0].Day.ID)
	require.Len(t, rec.Days[0].ExerciseWrites, 1)
	assert.Equal(t, primitive.NilObjectID, rec.Days[0].ExerciseWrites[0].ID)
	assert.Empty(t, rec.DayDeletes)
}

func TestReconcileRemovedAndAddedDays(t *testing.T) {
	// {A, B} -> {A, C}: B deleted, C inserted, A untouched.
	tree, snap := persistedFixture(t)
	dayC := NewDay(2, "Push")
	ex := NewExercise(primitive.NewObjectID(), 1)
	ex.Sets = []Set{{Weight: 20, Reps: 15}}
	dayC.Exercises = []Exercise{ex}
	tree.Days = []Day{tree.Days[0], dayC}

	rec := Reconcile(tree, snap)

	require.Len(t, rec.Days, 1, "day A is unchanged, only C produces ops")
	assert.Equal(t, primitive.NilObjectID, rec.Days[0].Day.ID)
	assert.Equal(t, "Push", rec.Days[0].Day.Name)
	require.Len(t, rec.DayDeletes, 1)
	assert.Equal(t, snap.Days[1].ID, rec.DayDeletes[0])
}

func TestReconcileExerciseRemovalAndAdditionWithinDay(t *testing.T) {
	tree, snap := persistedFixture(t)
	replaced := snap.ExercisesByDay[snap.Days[0].ID][0].ID

	fresh := NewExercise(primitive.NewObjectID(), 1)
	fresh.Sets = []Set{{Weight: 50, Reps: 10}}
	tree.Days[0].Exercises = []Exercise{fresh}

	rec := Reconcile(tree, snap)

	require.Len(t, rec.Days, 1)
	ops := rec.Days[0]
	assert.False(t, ops.DayChanged, "only exercises changed")
	require.Len(t, ops.ExerciseDeletes, 1)
	assert.Equal(t, replaced, ops.ExerciseDeletes[0])
	require.Len(t, ops.ExerciseWrites, 1)
	assert.Equal(t, primitive.NilObjectID, ops.ExerciseWrites[0].ID)
}

func TestReconcileModifiedSetRewritesOnlyThatExercise(t *testing.T) {
	tree, snap := persistedFixture(t)
	exID := snap.ExercisesByDay[snap.Days[0].ID][0].ID

	// Heavier first set: the flattened row changes.
	for i := range tree.Days[0].Exercises[0].Sets {
		tree.Days[0].Exercises[0].Sets[i].Weight = 65
	}

	rec := Reconcile(tree, snap)

	require.Len(t, rec.Days, 1)
	ops := rec.Days[0]
	require.Len(t, ops.ExerciseWrites, 1)
	assert.Equal(t, exID, ops.ExerciseWrites[0].ID, "modified exercise keeps its id")
	assert.Empty(t, ops.ExerciseDeletes)
}

func TestReconcileAddedSetChangesOnlySetsCount(t *testing.T) {
	tree, snap := persistedFixture(t)
	ex := &tree.Days[0].Exercises[0]
	ex.Sets = append(ex.Sets, ex.Sets[0])

	rec := Reconcile(tree, snap)

	require.Len(t, rec.Days, 1)
	require.Len(t, rec.Days[0].ExerciseWrites, 1)
	row := Flatten(rec.Days[0].ExerciseWrites[0], snap.Days[0].ID)
	assert.Equal(t, 4, row.SetsCount)
	assert.Equal(t, float64(60), row.TargetWeight, "first-set scalars unchanged")
}

func TestReconcileDayDeletedOutOfBandIsReinserted(t *testing.T) {
	tree, snap := persistedFixture(t)

	// Storage lost day B between load and save; the tree still carries its id.
	staleID := snap.Days[1].ID
	snap.Days = snap.Days[:1]
	delete(snap.ExercisesByDay, staleID)

	rec := Reconcile(tree, snap)

	require.Len(t, rec.Days, 1)
	assert.Equal(t, primitive.NilObjectID, rec.Days[0].Day.ID, "stale id must be cleared for reinsert")
	require.Len(t, rec.Days[0].ExerciseWrites, 1)
	assert.Equal(t, primitive.NilObjectID, rec.Days[0].ExerciseWrites[0].ID)
	assert.Empty(t, rec.DayDeletes)
}

func TestReconcileIsIdempotentAfterApply(t *testing.T) {
	tree, snap := persistedFixture(t)
	tree.Days[0].Name = "Upper A"
	fresh := NewExercise(primitive.NewObjectID(), 2)
	fresh.Sets = []Set{{Weight: 30, Reps: 12}}
	tree.Days[0].Exercises = append(tree.Days[0].Exercises, fresh)

	first := Reconcile(tree, snap)
	require.False(t, first.Empty())

	// Simulate applying the ops to storage.
	applied := &Snapshot{ExercisesByDay: map[primitive.ObjectID][]domain.PlanExercise{}}
	for _, d := range snap.Days {
		nd := d
		if d.ID == snap.Days[0].ID {
			nd.Name = "Upper A"
		}
		applied.Days = append(applied.Days, nd)
		applied.ExercisesByDay[d.ID] = append([]domain.PlanExercise(nil), snap.ExercisesByDay[d.ID]...)
	}
	insertedID := primitive.NewObjectID()
	row := Flatten(fresh, snap.Days[0].ID)
	row.ID = insertedID
	applied.ExercisesByDay[snap.Days[0].ID] = append(applied.ExercisesByDay[snap.Days[0].ID], row)

	// The tree is reloaded from the applied state, as the builder does after
	// a successful save.
	root := &domain.TrainingPlan{ID: tree.ID, Name: tree.Name, WeeklyFrequency: tree.WeeklyFrequency, IsActive: tree.IsActive}
	reloaded := FromPersisted(root, applied.Days, applied.ExercisesByDay)

	second := Reconcile(reloaded, applied)
	assert.True(t, second.Empty(), "re-saving the applied tree must be a no-op")
}

func TestFlattenUsesFirstSetOnly(t *testing.T) {
	rpe1, rpe3 := 8.0, 9.5
	ex := NewExercise(primitive.NewObjectID(), 1)
	ex.RestSeconds = 90
	ex.Sets = []Set{
		{Weight: 60, Reps: 8, RPE: &rpe1, Failure: false},
		{Weight: 70, Reps: 6},
		{Weight: 80, Reps: 4, RPE: &rpe3, Failure: true},
	}

	dayID := primitive.NewObjectID()
	row := Flatten(ex, dayID)

	assert.Equal(t, dayID, row.DayID)
	assert.Equal(t, 3, row.SetsCount)
	assert.Equal(t, float64(60), row.TargetWeight)
	assert.Equal(t, 8, row.TargetReps)
	require.NotNil(t, row.TargetRPE)
	assert.Equal(t, 8.0, *row.TargetRPE)
	assert.False(t, row.ToFailure, "second and third sets contribute nothing beyond the count")
	assert.Equal(t, domain.SetTypeRegular, row.SetType)
}

func TestFlattenSupersetFields(t *testing.T) {
	pair := primitive.NewObjectID()
	ex := NewExercise(primitive.NewObjectID(), 1)
	ex.Sets = []Set{{
		Weight:         40,
		Reps:           10,
		Type:           domain.SetTypeSuperset,
		PairExerciseID: &pair,
		PairWeight:     20,
		PairReps:       12,
	}}

	row := Flatten(ex, primitive.NewObjectID())

	assert.Equal(t, domain.SetTypeSuperset, row.SetType)
	require.NotNil(t, row.PairExerciseID)
	assert.Equal(t, pair, *row.PairExerciseID)
	assert.Equal(t, float64(20), row.PairWeight)
	assert.Equal(t, 12, row.PairReps)
}

func TestFromPersistedExpandsSets(t *testing.T) {
	tree, _ := persistedFixture(t)

	require.Len(t, tree.Days, 2)
	ex := tree.Days[0].Exercises[0]
	require.Len(t, ex.Sets, 3, "SetsCount expands into identical sets")
	for _, set := range ex.Sets {
		assert.Equal(t, float64(60), set.Weight)
		assert.Equal(t, 8, set.Reps)
		assert.Equal(t, domain.SetTypeRegular, set.Type)
	}
	assert.NotEmpty(t, ex.LocalID)
	assert.NotEqual(t, tree.Days[0].LocalID, tree.Days[1].LocalID)
}
