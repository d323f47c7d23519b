package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/planner"
	"ymfit/studio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("training plan not found")
	ErrPlanAccessDenied = errors.New("access denied to this training plan")
)

// PlanOpError reports which part of a plan save failed, so the caller can
// tell the user exactly what to retry instead of a generic failure.
type PlanOpError struct {
	Op       string // "save day", "delete day", "save exercise", "delete exercises"
	Day      string // day name, if known
	Position int    // 1-based exercise position within the day, 0 if not applicable
	Err      error
}

func (e *PlanOpError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("%s (day %q, exercise #%d): %v", e.Op, e.Day, e.Position, e.Err)
	}
	if e.Day != "" {
		return fmt.Sprintf("%s (day %q): %v", e.Op, e.Day, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PlanOpError) Unwrap() error { return e.Err }

// --- Service Interface ---
type PlanService interface {
	SavePlan(ctx context.Context, trainerID primitive.ObjectID, plan *planner.Plan) (*planner.Plan, error)
	GetPlanForTrainee(ctx context.Context, trainerID, traineeID primitive.ObjectID) (*planner.Plan, error)
	GetPlanByID(ctx context.Context, trainerID, planID primitive.ObjectID) (*planner.Plan, error)
}

// --- Service Implementation ---

type planService struct {
	planRepo     repository.TrainingPlanRepository
	dayRepo      repository.PlanDayRepository
	exerciseRepo repository.PlanExerciseRepository
	userRepo     repository.UserRepository
}

func NewPlanService(
	planRepo repository.TrainingPlanRepository,
	dayRepo repository.PlanDayRepository,
	exerciseRepo repository.PlanExerciseRepository,
	userRepo repository.UserRepository,
) PlanService {
	return &planService{
		planRepo:     planRepo,
		dayRepo:      dayRepo,
		exerciseRepo: exerciseRepo,
		userRepo:     userRepo,
	}
}

// SavePlan persists an edited plan tree. It validates the tree, diffs it
// against the currently persisted rows and applies only the resulting
// operations: day upserts (with their exercise deletes, then exercise
// writes) first, day deletes last. Re-saving an unchanged tree performs
// no writes.
func (s *planService) SavePlan(ctx context.Context, trainerID primitive.ObjectID, plan *planner.Plan) (*planner.Plan, error) {
	if err := planner.Validate(plan); err != nil {
		return nil, err
	}

	if err := s.checkTraineeManaged(ctx, trainerID, plan.TraineeID); err != nil {
		return nil, err
	}

	// Persist (or update) the plan root first so day rows have a plan id
	// to hang off.
	if plan.ID == primitive.NilObjectID {
		planID, err := s.planRepo.Create(ctx, &domain.TrainingPlan{
			TrainerID:       trainerID,
			TraineeID:       plan.TraineeID,
			Name:            plan.Name,
			Description:     plan.Description,
			WeeklyFrequency: plan.WeeklyFrequency,
			StartDate:       plan.StartDate,
			EndDate:         plan.EndDate,
			IsActive:        plan.IsActive,
		})
		if err != nil {
			return nil, fmt.Errorf("create plan: %w", err)
		}
		plan.ID = planID
	} else {
		persisted, err := s.planRepo.GetByID(ctx, plan.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, err
		}
		if persisted.TrainerID != trainerID {
			return nil, ErrPlanAccessDenied
		}
		if rootChanged(persisted, plan) {
			persisted.Name = plan.Name
			persisted.Description = plan.Description
			persisted.WeeklyFrequency = plan.WeeklyFrequency
			persisted.StartDate = plan.StartDate
			persisted.EndDate = plan.EndDate
			persisted.IsActive = plan.IsActive
			if err := s.planRepo.Update(ctx, persisted); err != nil {
				return nil, fmt.Errorf("update plan: %w", err)
			}
		}
	}

	snapshot, err := s.loadSnapshot(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	rec := planner.Reconcile(plan, snapshot)
	if rec.Empty() {
		return s.GetPlanByID(ctx, trainerID, plan.ID)
	}

	// Day upserts and their exercise operations. Within each day the
	// deletes run before the writes so a removed-and-readded slot never
	// collides with its replacement.
	for _, ops := range rec.Days {
		dayID := ops.Day.ID
		if dayID == primitive.NilObjectID {
			dayID, err = s.dayRepo.Create(ctx, &domain.PlanDay{
				PlanID:       plan.ID,
				DayNumber:    ops.Day.DayNumber,
				Name:         ops.Day.Name,
				Focus:        ops.Day.Focus,
				Notes:        ops.Day.Notes,
				WeeklyRepeat: ops.Day.WeeklyRepeat,
			})
			if err != nil {
				return nil, &PlanOpError{Op: "save day", Day: ops.Day.Name, Err: err}
			}
		} else if ops.DayChanged {
			if err := s.dayRepo.Update(ctx, &domain.PlanDay{
				ID:           dayID,
				PlanID:       plan.ID,
				DayNumber:    ops.Day.DayNumber,
				Name:         ops.Day.Name,
				Focus:        ops.Day.Focus,
				Notes:        ops.Day.Notes,
				WeeklyRepeat: ops.Day.WeeklyRepeat,
			}); err != nil {
				return nil, &PlanOpError{Op: "save day", Day: ops.Day.Name, Err: err}
			}
		}

		if len(ops.ExerciseDeletes) > 0 {
			if err := s.exerciseRepo.DeleteByIDs(ctx, ops.ExerciseDeletes); err != nil {
				return nil, &PlanOpError{Op: "delete exercises", Day: ops.Day.Name, Err: err}
			}
		}

		for i, ex := range ops.ExerciseWrites {
			row := planner.Flatten(ex, dayID)
			if ex.ID == primitive.NilObjectID {
				if _, err := s.exerciseRepo.Create(ctx, &row); err != nil {
					return nil, &PlanOpError{Op: "save exercise", Day: ops.Day.Name, Position: i + 1, Err: err}
				}
			} else {
				if err := s.exerciseRepo.Update(ctx, &row); err != nil {
					return nil, &PlanOpError{Op: "save exercise", Day: ops.Day.Name, Position: i + 1, Err: err}
				}
			}
		}
	}

	// Day deletes last, cascading their exercise rows first.
	if len(rec.DayDeletes) > 0 {
		if err := s.exerciseRepo.DeleteByDayIDs(ctx, rec.DayDeletes); err != nil {
			return nil, &PlanOpError{Op: "delete day", Err: err}
		}
		if err := s.dayRepo.DeleteByIDs(ctx, rec.DayDeletes); err != nil {
			return nil, &PlanOpError{Op: "delete day", Err: err}
		}
	}

	return s.GetPlanByID(ctx, trainerID, plan.ID)
}

// GetPlanForTrainee loads the trainee's active plan as an editable tree.
func (s *planService) GetPlanForTrainee(ctx context.Context, trainerID, traineeID primitive.ObjectID) (*planner.Plan, error) {
	if err := s.checkTraineeManaged(ctx, trainerID, traineeID); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetActiveByTraineeID(ctx, traineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return s.loadTree(ctx, plan)
}

// GetPlanByID loads a plan as an editable tree, enforcing ownership.
func (s *planService) GetPlanByID(ctx context.Context, trainerID, planID primitive.ObjectID) (*planner.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.TrainerID != trainerID {
		return nil, ErrPlanAccessDenied
	}
	return s.loadTree(ctx, plan)
}

func (s *planService) loadTree(ctx context.Context, plan *domain.TrainingPlan) (*planner.Plan, error) {
	snapshot, err := s.loadSnapshot(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return planner.FromPersisted(plan, snapshot.Days, snapshot.ExercisesByDay), nil
}

func (s *planService) loadSnapshot(ctx context.Context, planID primitive.ObjectID) (*planner.Snapshot, error) {
	days, err := s.dayRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan days: %w", err)
	}
	exercisesByDay := make(map[primitive.ObjectID][]domain.PlanExercise, len(days))
	for _, day := range days {
		exercises, err := s.exerciseRepo.GetByDayID(ctx, day.ID)
		if err != nil {
			return nil, fmt.Errorf("load exercises for day %q: %w", day.Name, err)
		}
		exercisesByDay[day.ID] = exercises
	}
	return &planner.Snapshot{Days: days, ExercisesByDay: exercisesByDay}, nil
}

// rootChanged reports whether any root-level plan field differs from the
// persisted row, so an unchanged re-save skips the root write entirely.
func rootChanged(persisted *domain.TrainingPlan, plan *planner.Plan) bool {
	return persisted.Name != plan.Name ||
		persisted.Description != plan.Description ||
		persisted.WeeklyFrequency != plan.WeeklyFrequency ||
		persisted.IsActive != plan.IsActive ||
		!sameDate(persisted.StartDate, plan.StartDate) ||
		!sameDate(persisted.EndDate, plan.EndDate)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (s *planService) checkTraineeManaged(ctx context.Context, trainerID, traineeID primitive.ObjectID) error {
	trainee, err := s.userRepo.GetByID(ctx, traineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTraineeNotFound
		}
		return err
	}
	if trainee.TrainerID == nil || *trainee.TrainerID != trainerID {
		return ErrTraineeNotManaged
	}
	return nil
}
