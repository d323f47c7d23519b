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
	ErrTraineeNotRole         = errors.New("user found but is not a trainee")
	ErrTraineeAlreadyAssigned = errors.New("trainee is already assigned to a trainer")
	ErrCardNotFound           = errors.New("no active card for this trainee")
)

// --- Service Interface ---
type TrainerService interface {
	// Roster management
	AddTraineeByEmail(ctx context.Context, trainerID primitive.ObjectID, traineeEmail string) (*domain.User, error)
	GetManagedTrainees(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)

	// Session cards (used by the calendar sync title when the trainee's
	// counting method is card_ticket)
	IssueCard(ctx context.Context, trainerID, traineeID primitive.ObjectID, purchased int) (*domain.TraineeCard, error)
	GetActiveCard(ctx context.Context, trainerID, traineeID primitive.ObjectID) (*domain.TraineeCard, error)
	ConsumeCardSession(ctx context.Context, trainerID, traineeID primitive.ObjectID) (*domain.TraineeCard, error)
}

// --- Service Implementation ---

type trainerService struct {
	userRepo repository.UserRepository
	cardRepo repository.CardRepository
}

func NewTrainerService(userRepo repository.UserRepository, cardRepo repository.CardRepository) TrainerService {
	return &trainerService{
		userRepo: userRepo,
		cardRepo: cardRepo,
	}
}

// === Roster Management ===

// AddTraineeByEmail finds a trainee by email and assigns them to the trainer.
func (s *trainerService) AddTraineeByEmail(ctx context.Context, trainerID primitive.ObjectID, traineeEmail string) (*domain.User, error) {
	if trainerID == primitive.NilObjectID || traineeEmail == "" {
		return nil, errors.New("trainer ID and trainee email are required")
	}

	trainee, err := s.userRepo.GetByEmail(ctx, traineeEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTraineeNotFound
		}
		return nil, err
	}

	if !trainee.IsTrainee() {
		return nil, ErrTraineeNotRole
	}

	if trainee.TrainerID != nil && *trainee.TrainerID != primitive.NilObjectID {
		if *trainee.TrainerID == trainerID {
			return trainee, nil // Already on this trainer's roster
		}
		return nil, ErrTraineeAlreadyAssigned
	}

	// Update both sides of the relationship.
	if err := s.userRepo.AddTraineeIDToTrainer(ctx, trainerID, trainee.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTrainerForTrainee(ctx, trainee.ID, trainerID); err != nil {
		return nil, err
	}

	trainee.TrainerID = &trainerID
	return trainee, nil
}

// GetManagedTrainees retrieves the trainer's roster.
func (s *trainerService) GetManagedTrainees(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	if trainerID == primitive.NilObjectID {
		return nil, errors.New("trainer ID is required")
	}
	trainees, err := s.userRepo.GetTraineesByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	// Never hand password hashes to the API layer.
	for i := range trainees {
		trainees[i].PasswordHash = ""
	}
	return trainees, nil
}

// === Session Cards ===

// IssueCard creates a new active punch card for a trainee, deactivating any
// previous one.
func (s *trainerService) IssueCard(ctx context.Context, trainerID, traineeID primitive.ObjectID, purchased int) (*domain.TraineeCard, error) {
	if purchased <= 0 {
		return nil, errors.New("purchased session count must be positive")
	}
	if err := s.checkManaged(ctx, trainerID, traineeID); err != nil {
		return nil, err
	}

	if previous, err := s.cardRepo.GetActiveByTraineeID(ctx, traineeID); err == nil {
		previous.IsActive = false
		if err := s.cardRepo.Update(ctx, previous); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	card := &domain.TraineeCard{
		TraineeID: traineeID,
		TrainerID: trainerID,
		Purchased: purchased,
		Remaining: purchased,
		IsActive:  true,
	}
	cardID, err := s.cardRepo.Create(ctx, card)
	if err != nil {
		return nil, err
	}
	card.ID = cardID
	return card, nil
}

// GetActiveCard returns the trainee's current card.
func (s *trainerService) GetActiveCard(ctx context.Context, trainerID, traineeID primitive.ObjectID) (*domain.TraineeCard, error) {
	if err := s.checkManaged(ctx, trainerID, traineeID); err != nil {
		return nil, err
	}
	card, err := s.cardRepo.GetActiveByTraineeID(ctx, traineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// ConsumeCardSession punches one session off the trainee's active card.
func (s *trainerService) ConsumeCardSession(ctx context.Context, trainerID, traineeID primitive.ObjectID) (*domain.TraineeCard, error) {
	card, err := s.GetActiveCard(ctx, trainerID, traineeID)
	if err != nil {
		return nil, err
	}
	if card.Remaining <= 0 {
		return nil, errors.New("no sessions remaining on the active card")
	}
	card.Remaining--
	if card.Remaining == 0 {
		card.IsActive = false
	}
	if err := s.cardRepo.Update(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *trainerService) checkManaged(ctx context.Context, trainerID, traineeID primitive.ObjectID) error {
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
