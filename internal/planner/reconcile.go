package planner

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ymfit/studio-app/internal/domain"
)

// Snapshot is the persisted state of a plan's days and exercises, fetched
// immediately before reconciliation so the diff never runs against stale
// assumptions.
type Snapshot struct {
	Days           []domain.PlanDay
	ExercisesByDay map[primitive.ObjectID][]domain.PlanExercise
}

// DayOps bundles every write for one surviving or new day. Day.ID being Nil
// means the day must be inserted (and its id used for the exercise writes
// that follow); otherwise the day row is updated in place.
//
// ExerciseDeletes are applied before ExerciseWrites within the day: set data
// is flattened onto the exercise row, so stale rows must be cleared before
// the day's new rows are written.
type DayOps struct {
	Day             Day
	DayChanged      bool // false when only the day's exercises changed
	ExerciseDeletes []primitive.ObjectID
	ExerciseWrites  []Exercise // tree order; Nil ID means insert, otherwise update
}

// Reconciliation is the ordered set of storage operations that bring the
// persisted plan in line with the edited tree. Day upserts (with their nested
// exercise operations) are applied first; DayDeletes strictly last, so a
// partial failure can never leave a referenced day deleted while its
// replacement failed to insert.
type Reconciliation struct {
	Days       []DayOps
	DayDeletes []primitive.ObjectID // cascades to the days' exercises
}

// Empty reports whether applying the reconciliation would perform no storage
// operation at all. Re-running Reconcile on an unchanged tree yields an empty
// result.
func (r *Reconciliation) Empty() bool {
	return len(r.Days) == 0 && len(r.DayDeletes) == 0
}

// Reconcile diffs the edited tree against the persisted snapshot and returns
// the operations needed to synchronize storage. The diff is keyed on persisted
// ids, never on position, which is what makes a retry after a partial failure
// idempotent: already-applied inserts show up in the next snapshot and diff to
// nothing.
//
// Identity rules:
//   - a day/exercise with a Nil id is inserted and receives its id from storage;
//   - a day/exercise whose id is present in the snapshot is updated (only when
//     its fields actually differ) and keeps its id;
//   - a persisted id absent from the tree is deleted;
//   - a tree node carrying an id the snapshot no longer knows (deleted
//     out-of-band) is re-inserted with a fresh id.
func Reconcile(plan *Plan, snap *Snapshot) *Reconciliation {
	persistedDays := make(map[primitive.ObjectID]domain.PlanDay, len(snap.Days))
	for _, d := range snap.Days {
		persistedDays[d.ID] = d
	}

	rec := &Reconciliation{}
	seenDays := make(map[primitive.ObjectID]bool, len(plan.Days))

	for _, day := range plan.Days {
		prev, exists := persistedDays[day.ID]
		if day.IsPersisted() && exists {
			seenDays[day.ID] = true
			ops := reconcileDay(day, prev, snap.ExercisesByDay[day.ID])
			if ops != nil {
				rec.Days = append(rec.Days, *ops)
			}
			continue
		}
		// New day, or a day whose persisted row disappeared out-of-band:
		// insert, letting storage assign a fresh id.
		day.ID = primitive.NilObjectID
		rec.Days = append(rec.Days, DayOps{
			Day:            day,
			DayChanged:     true,
			ExerciseWrites: clearExerciseIDs(day.Exercises),
		})
	}

	for _, d := range snap.Days {
		if !seenDays[d.ID] {
			rec.DayDeletes = append(rec.DayDeletes, d.ID)
		}
	}
	return rec
}

// reconcileDay diffs one surviving day. Returns nil when neither the day row
// nor any of its exercises changed.
func reconcileDay(day Day, prev domain.PlanDay, persisted []domain.PlanExercise) *DayOps {
	prevExercises := make(map[primitive.ObjectID]domain.PlanExercise, len(persisted))
	for _, pe := range persisted {
		prevExercises[pe.ID] = pe
	}

	ops := DayOps{Day: day, DayChanged: dayChanged(day, prev)}
	seen := make(map[primitive.ObjectID]bool, len(day.Exercises))

	for _, ex := range day.Exercises {
		prevEx, exists := prevExercises[ex.ID]
		if ex.IsPersisted() && exists {
			seen[ex.ID] = true
			if exerciseChanged(ex, prevEx) {
				ops.ExerciseWrites = append(ops.ExerciseWrites, ex)
			}
			continue
		}
		ex.ID = primitive.NilObjectID
		ops.ExerciseWrites = append(ops.ExerciseWrites, ex)
	}

	for _, pe := range persisted {
		if !seen[pe.ID] {
			ops.ExerciseDeletes = append(ops.ExerciseDeletes, pe.ID)
		}
	}

	if !ops.DayChanged && len(ops.ExerciseWrites) == 0 && len(ops.ExerciseDeletes) == 0 {
		return nil
	}
	return &ops
}

func clearExerciseIDs(exercises []Exercise) []Exercise {
	out := make([]Exercise, len(exercises))
	for i, ex := range exercises {
		ex.ID = primitive.NilObjectID
		out[i] = ex
	}
	return out
}

func dayChanged(day Day, prev domain.PlanDay) bool {
	return day.DayNumber != prev.DayNumber ||
		day.Name != prev.Name ||
		day.Focus != prev.Focus ||
		day.Notes != prev.Notes ||
		day.WeeklyRepeat != prev.WeeklyRepeat
}

// exerciseChanged compares the would-be persisted row against the stored one.
// Comparison happens on the flattened shape so it sees exactly what storage
// would see.
func exerciseChanged(ex Exercise, prev domain.PlanExercise) bool {
	row := Flatten(ex, prev.DayID)
	return row.ExerciseID != prev.ExerciseID ||
		row.Position != prev.Position ||
		row.RestSeconds != prev.RestSeconds ||
		row.Notes != prev.Notes ||
		row.SetsCount != prev.SetsCount ||
		row.TargetWeight != prev.TargetWeight ||
		row.TargetReps != prev.TargetReps ||
		!floatPtrEqual(row.TargetRPE, prev.TargetRPE) ||
		row.SetType != prev.SetType ||
		row.ToFailure != prev.ToFailure ||
		!oidPtrEqual(row.EquipmentID, prev.EquipmentID) ||
		!oidPtrEqual(row.PairExerciseID, prev.PairExerciseID) ||
		row.PairWeight != prev.PairWeight ||
		row.PairReps != prev.PairReps ||
		!floatPtrEqual(row.PairRPE, prev.PairRPE) ||
		!oidPtrEqual(row.PairEquipmentID, prev.PairEquipmentID) ||
		row.DropWeight != prev.DropWeight ||
		row.DropReps != prev.DropReps
}

// Flatten converts an editing-tree exercise into its persisted row shape.
// SetsCount is the number of in-memory sets; every scalar target field is
// copied from the FIRST set only. That first-set rule matches the data the
// store already holds and is relied on by FromPersisted, so keep it in sync
// with the PlanExercise field comment.
func Flatten(ex Exercise, dayID primitive.ObjectID) domain.PlanExercise {
	row := domain.PlanExercise{
		ID:          ex.ID,
		DayID:       dayID,
		ExerciseID:  ex.ExerciseID,
		Position:    ex.Position,
		RestSeconds: ex.RestSeconds,
		Notes:       ex.Notes,
		SetsCount:   len(ex.Sets),
		SetType:     domain.SetTypeRegular,
	}
	if len(ex.Sets) == 0 {
		return row
	}
	first := ex.Sets[0]
	row.TargetWeight = first.Weight
	row.TargetReps = first.Reps
	row.TargetRPE = first.RPE
	if first.Type != "" {
		row.SetType = first.Type
	}
	row.ToFailure = first.Failure
	row.EquipmentID = first.EquipmentID
	row.PairExerciseID = first.PairExerciseID
	row.PairWeight = first.PairWeight
	row.PairReps = first.PairReps
	row.PairRPE = first.PairRPE
	row.PairEquipmentID = first.PairEquipmentID
	row.DropWeight = first.DropWeight
	row.DropReps = first.DropReps
	return row
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func oidPtrEqual(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
