package service

import (
	"context"
	"errors"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMealPlanNotFound     = errors.New("meal plan not found")
	ErrMealPlanAccessDenied = errors.New("access denied to this meal plan")
)

// --- Service Interface ---
type MealPlanService interface {
	CreateMealPlan(ctx context.Context, trainerID primitive.ObjectID, plan *domain.MealPlan) (*domain.MealPlan, error)
	GetMealPlansForTrainee(ctx context.Context, callerID, traineeID primitive.ObjectID) ([]domain.MealPlan, error)
	UpdateMealPlan(ctx context.Context, trainerID primitive.ObjectID, plan *domain.MealPlan) (*domain.MealPlan, error)
	DeleteMealPlan(ctx context.Context, trainerID, planID primitive.ObjectID) error
}

// --- Service Implementation ---

type mealPlanService struct {
	mealPlanRepo repository.MealPlanRepository
	userRepo     repository.UserRepository
}

func NewMealPlanService(mealPlanRepo repository.MealPlanRepository, userRepo repository.UserRepository) MealPlanService {
	return &mealPlanService{
		mealPlanRepo: mealPlanRepo,
		userRepo:     userRepo,
	}
}

// CreateMealPlan stores a new nutrition plan for a managed trainee.
func (s *mealPlanService) CreateMealPlan(ctx context.Context, trainerID primitive.ObjectID, plan *domain.MealPlan) (*domain.MealPlan, error) {
	if plan.Name == "" {
		return nil, errors.New("meal plan name is required")
	}
	if err := s.checkManaged(ctx, trainerID, plan.TraineeID); err != nil {
		return nil, err
	}
	plan.TrainerID = trainerID
	planID, err := s.mealPlanRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	return s.mealPlanRepo.GetByID(ctx, planID)
}

// GetMealPlansForTrainee lists a trainee's meal plans. The trainee themselves
// or their trainer may read them.
func (s *mealPlanService) GetMealPlansForTrainee(ctx context.Context, callerID, traineeID primitive.ObjectID) ([]domain.MealPlan, error) {
	if callerID != traineeID {
		if err := s.checkManaged(ctx, callerID, traineeID); err != nil {
			return nil, err
		}
	}
	return s.mealPlanRepo.GetByTraineeID(ctx, traineeID)
}

// UpdateMealPlan replaces the plan's editable fields after checking ownership.
func (s *mealPlanService) UpdateMealPlan(ctx context.Context, trainerID primitive.ObjectID, plan *domain.MealPlan) (*domain.MealPlan, error) {
	existing, err := s.mealPlanRepo.GetByID(ctx, plan.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	if existing.TrainerID != trainerID {
		return nil, ErrMealPlanAccessDenied
	}

	existing.Name = plan.Name
	existing.Description = plan.Description
	existing.Meals = plan.Meals
	existing.IsActive = plan.IsActive

	if err := s.mealPlanRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.mealPlanRepo.GetByID(ctx, plan.ID)
}

// DeleteMealPlan removes a meal plan owned by the trainer.
func (s *mealPlanService) DeleteMealPlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	err := s.mealPlanRepo.Delete(ctx, planID, trainerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMealPlanNotFound
	}
	return err
}

func (s *mealPlanService) checkManaged(ctx context.Context, trainerID, traineeID primitive.ObjectID) error {
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
