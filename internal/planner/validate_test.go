package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validPlan() *Plan {
	day := NewDay(1, "Upper")
	ex := NewExercise(primitive.NewObjectID(), 1)
	ex.Sets = []Set{{Weight: 60, Reps: 8}}
	day.Exercises = []Exercise{ex}
	return &Plan{
		Name:            "Block 1",
		WeeklyFrequency: 2,
		Days:            []Day{day},
	}
}

func TestValidateAcceptsValidPlan(t *testing.T) {
	assert.NoError(t, Validate(validPlan()))
}

func TestValidateRequiresPlanName(t *testing.T) {
	plan := validPlan()
	plan.Name = ""

	err := Validate(plan)
	require.Error(t, err)
	assert.EqualError(t, err, `plan invalid: name is required`)
}

func TestValidateRequiresDays(t *testing.T) {
	plan := validPlan()
	plan.Days = nil

	assert.Error(t, Validate(plan))
}

func TestValidateRequiresExercisesPerDay(t *testing.T) {
	plan := validPlan()
	plan.Days[0].Exercises = nil

	err := Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `day "Upper" invalid`)
}

func TestValidateRejectsOutOfRangeRPE(t *testing.T) {
	plan := validPlan()
	rpe := 11.0
	plan.Days[0].Exercises[0].Sets[0].RPE = &rpe

	err := Validate(plan)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Upper", vErr.Day)
	assert.Equal(t, 1, vErr.Exercise, "error names the offending exercise")
	assert.Contains(t, vErr.Reason, "rpe")
}

func TestValidateAcceptsRPEBoundaries(t *testing.T) {
	for _, rpe := range []float64{1, 5.5, 10} {
		plan := validPlan()
		v := rpe
		plan.Days[0].Exercises[0].Sets[0].RPE = &v
		assert.NoError(t, Validate(plan), "rpe %.1f should be valid", rpe)
	}
}

func TestValidateNilRPEIsValid(t *testing.T) {
	plan := validPlan()
	plan.Days[0].Exercises[0].Sets[0].RPE = nil

	assert.NoError(t, Validate(plan))
}

func TestValidateRejectsMissingCatalogReference(t *testing.T) {
	plan := validPlan()
	plan.Days[0].Exercises[0].ExerciseID = primitive.NilObjectID

	err := Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing catalog exercise reference")
}

func TestValidateRejectsExcessiveWeeklyRepeat(t *testing.T) {
	plan := validPlan()
	plan.Days[0].WeeklyRepeat = 8

	assert.Error(t, Validate(plan))
}

func TestValidateRejectsNegativeWeight(t *testing.T) {
	plan := validPlan()
	plan.Days[0].Exercises[0].Sets[0].Weight = -1

	assert.Error(t, Validate(plan))
}
