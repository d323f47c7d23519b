package planner

import "fmt"

// Field range limits enforced before any storage call.
const (
	MinRPE         = 1.0
	MaxRPE         = 10.0
	MaxWeight      = 10000.0
	MaxReps        = 1000
	MaxRestSeconds = 3600
	MaxWeeklyRep   = 7
)

// ValidationError reports the first structural violation found in a plan,
// naming the offending day and exercise so the builder can highlight them.
type ValidationError struct {
	Day      string // Day name, or empty for plan-level violations
	Exercise int    // 1-based exercise position within the day, 0 when not applicable
	Reason   string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Day == "":
		return fmt.Sprintf("plan invalid: %s", e.Reason)
	case e.Exercise == 0:
		return fmt.Sprintf("day %q invalid: %s", e.Day, e.Reason)
	default:
		return fmt.Sprintf("day %q, exercise #%d invalid: %s", e.Day, e.Exercise, e.Reason)
	}
}

// Validate checks the structural invariants of an edited plan tree and returns
// the first violation found, walking days, then each day's exercises, then
// each exercise's sets. A nil return means the plan is safe to reconcile.
func Validate(plan *Plan) error {
	if plan.Name == "" {
		return &ValidationError{Reason: "name is required"}
	}
	if len(plan.Days) == 0 {
		return &ValidationError{Reason: "plan must have at least one day"}
	}
	for _, day := range plan.Days {
		if day.Name == "" {
			return &ValidationError{Day: fmt.Sprintf("day %d", day.DayNumber), Reason: "name is required"}
		}
		if day.WeeklyRepeat < 0 || day.WeeklyRepeat > MaxWeeklyRep {
			return &ValidationError{Day: day.Name, Reason: fmt.Sprintf("weekly repetition %d out of range [0,%d]", day.WeeklyRepeat, MaxWeeklyRep)}
		}
		if len(day.Exercises) == 0 {
			return &ValidationError{Day: day.Name, Reason: "day must have at least one exercise"}
		}
		for i, ex := range day.Exercises {
			pos := i + 1
			if ex.ExerciseID.IsZero() {
				return &ValidationError{Day: day.Name, Exercise: pos, Reason: "missing catalog exercise reference"}
			}
			if ex.RestSeconds < 0 || ex.RestSeconds > MaxRestSeconds {
				return &ValidationError{Day: day.Name, Exercise: pos, Reason: fmt.Sprintf("rest %ds out of range [0,%d]", ex.RestSeconds, MaxRestSeconds)}
			}
			if len(ex.Sets) == 0 {
				return &ValidationError{Day: day.Name, Exercise: pos, Reason: "exercise must have at least one set"}
			}
			for _, set := range ex.Sets {
				if set.Weight < 0 || set.Weight > MaxWeight {
					return &ValidationError{Day: day.Name, Exercise: pos, Reason: fmt.Sprintf("weight %.1f out of range [0,%.0f]", set.Weight, MaxWeight)}
				}
				if set.Reps < 0 || set.Reps > MaxReps {
					return &ValidationError{Day: day.Name, Exercise: pos, Reason: fmt.Sprintf("reps %d out of range [0,%d]", set.Reps, MaxReps)}
				}
				if set.RPE != nil && (*set.RPE < MinRPE || *set.RPE > MaxRPE) {
					return &ValidationError{Day: day.Name, Exercise: pos, Reason: fmt.Sprintf("rpe %.1f out of range [%.0f,%.0f]", *set.RPE, MinRPE, MaxRPE)}
				}
			}
		}
	}
	return nil
}
