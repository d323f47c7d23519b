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
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("exercise validation failed")
)

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, trainerID primitive.ObjectID, name, description, muscleGroup, difficulty, videoURL string) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, name, description, muscleGroup, difficulty, videoURL string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo}
}

// CreateExercise adds a new exercise to the trainer's catalog.
func (s *exerciseService) CreateExercise(ctx context.Context, trainerID primitive.ObjectID, name, description, muscleGroup, difficulty, videoURL string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required to create an exercise")
	}

	exercise := &domain.Exercise{
		TrainerID:   trainerID,
		Name:        name,
		Description: description,
		MuscleGroup: muscleGroup,
		Difficulty:  difficulty,
		VideoURL:    videoURL,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again so DB-populated timestamps come back too.
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercisesByTrainer retrieves all exercises in a trainer's catalog.
func (s *exerciseService) GetExercisesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	return s.exerciseRepo.GetByTrainerID(ctx, trainerID)
}

// UpdateExercise modifies an existing exercise after checking ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID, name, description, muscleGroup, difficulty, videoURL string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.TrainerID != trainerID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = name
	existing.Description = description
	existing.MuscleGroup = muscleGroup
	existing.Difficulty = difficulty
	existing.VideoURL = videoURL

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// DeleteExercise removes an exercise from the trainer's catalog.
func (s *exerciseService) DeleteExercise(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	if existing.TrainerID != trainerID {
		return ErrExerciseAccessDenied
	}
	return s.exerciseRepo.Delete(ctx, exerciseID, trainerID)
}
