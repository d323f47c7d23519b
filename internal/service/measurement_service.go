package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/repository"
	"ymfit/studio-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMeasurementNotFound     = errors.New("measurement not found")
	ErrMeasurementAccessDenied = errors.New("access denied to this measurement")
)

// PhotoUploadInfo is what the client needs to upload one progress photo
// directly to the bucket.
type PhotoUploadInfo struct {
	UploadURL string `json:"uploadUrl"`
	Method    string `json:"method"` // Always "PUT"
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type MeasurementService interface {
	CreateMeasurement(ctx context.Context, trainerID primitive.ObjectID, m *domain.Measurement) (*domain.Measurement, error)
	GetMeasurementsForTrainee(ctx context.Context, callerID, traineeID primitive.ObjectID) ([]domain.Measurement, error)
	UpdateMeasurement(ctx context.Context, trainerID primitive.ObjectID, m *domain.Measurement) (*domain.Measurement, error)
	DeleteMeasurement(ctx context.Context, trainerID, measurementID primitive.ObjectID) error

	// Progress photos
	RequestPhotoUpload(ctx context.Context, trainerID, measurementID primitive.ObjectID, contentType string) (*PhotoUploadInfo, error)
	ConfirmPhotoUpload(ctx context.Context, trainerID, measurementID primitive.ObjectID, objectKey string) (*domain.Measurement, error)
	GetPhotoDownloadURL(ctx context.Context, callerID, measurementID primitive.ObjectID, objectKey string) (string, error)
}

// --- Service Implementation ---

type measurementService struct {
	measurementRepo repository.MeasurementRepository
	userRepo        repository.UserRepository
	fileStorage     storage.FileStorage
}

func NewMeasurementService(
	measurementRepo repository.MeasurementRepository,
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
) MeasurementService {
	return &measurementService{
		measurementRepo: measurementRepo,
		userRepo:        userRepo,
		fileStorage:     fileStorage,
	}
}

// CreateMeasurement stores a new measurement entry for a managed trainee.
func (s *measurementService) CreateMeasurement(ctx context.Context, trainerID primitive.ObjectID, m *domain.Measurement) (*domain.Measurement, error) {
	if err := s.checkManaged(ctx, trainerID, m.TraineeID); err != nil {
		return nil, err
	}
	m.TrainerID = trainerID
	m.PhotoKeys = nil // Photos attach via the upload flow, never directly
	id, err := s.measurementRepo.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	return s.measurementRepo.GetByID(ctx, id)
}

// GetMeasurementsForTrainee lists a trainee's measurement history. The
// trainee themselves or their trainer may read it.
func (s *measurementService) GetMeasurementsForTrainee(ctx context.Context, callerID, traineeID primitive.ObjectID) ([]domain.Measurement, error) {
	if callerID != traineeID {
		if err := s.checkManaged(ctx, callerID, traineeID); err != nil {
			return nil, err
		}
	}
	return s.measurementRepo.GetByTraineeID(ctx, traineeID)
}

// UpdateMeasurement replaces the editable fields of an entry.
func (s *measurementService) UpdateMeasurement(ctx context.Context, trainerID primitive.ObjectID, m *domain.Measurement) (*domain.Measurement, error) {
	existing, err := s.getOwned(ctx, trainerID, m.ID)
	if err != nil {
		return nil, err
	}

	existing.Date = m.Date
	existing.WeightKg = m.WeightKg
	existing.BodyFatPct = m.BodyFatPct
	existing.ChestCm = m.ChestCm
	existing.WaistCm = m.WaistCm
	existing.HipsCm = m.HipsCm
	existing.ArmCm = m.ArmCm
	existing.ThighCm = m.ThighCm
	existing.Notes = m.Notes

	if err := s.measurementRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.measurementRepo.GetByID(ctx, m.ID)
}

// DeleteMeasurement removes an entry and its photos from the bucket.
func (s *measurementService) DeleteMeasurement(ctx context.Context, trainerID, measurementID primitive.ObjectID) error {
	existing, err := s.getOwned(ctx, trainerID, measurementID)
	if err != nil {
		return err
	}
	if err := s.measurementRepo.Delete(ctx, measurementID, trainerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMeasurementNotFound
		}
		return err
	}
	// Bucket cleanup is best-effort; an orphaned object costs pennies and
	// the entry is already gone.
	for _, key := range existing.PhotoKeys {
		_ = s.fileStorage.DeleteObject(ctx, key)
	}
	return nil
}

// RequestPhotoUpload hands out a presigned PUT URL for one progress photo.
// The client uploads directly to the bucket, then calls ConfirmPhotoUpload
// with the returned object key.
func (s *measurementService) RequestPhotoUpload(ctx context.Context, trainerID, measurementID primitive.ObjectID, contentType string) (*PhotoUploadInfo, error) {
	m, err := s.getOwned(ctx, trainerID, measurementID)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("unsupported photo content type %q", contentType)
	}

	ext := strings.TrimPrefix(contentType, "image/")
	objectKey := path.Join("measurements", m.TraineeID.Hex(), measurementID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate upload URL: %w", err)
	}
	return &PhotoUploadInfo{
		UploadURL: uploadURL,
		Method:    "PUT",
		ObjectKey: objectKey,
	}, nil
}

// ConfirmPhotoUpload records a completed upload on the measurement.
func (s *measurementService) ConfirmPhotoUpload(ctx context.Context, trainerID, measurementID primitive.ObjectID, objectKey string) (*domain.Measurement, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}
	m, err := s.getOwned(ctx, trainerID, measurementID)
	if err != nil {
		return nil, err
	}

	// Only accept keys this measurement's upload flow could have issued.
	expectedPrefix := path.Join("measurements", m.TraineeID.Hex(), measurementID.Hex()) + "/"
	if !strings.HasPrefix(objectKey, expectedPrefix) {
		return nil, ErrMeasurementAccessDenied
	}

	for _, key := range m.PhotoKeys {
		if key == objectKey {
			return m, nil // Confirm retries are fine
		}
	}
	m.PhotoKeys = append(m.PhotoKeys, objectKey)
	if err := s.measurementRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetPhotoDownloadURL hands out a presigned GET URL for a stored photo. The
// trainee themselves or their trainer may view it.
func (s *measurementService) GetPhotoDownloadURL(ctx context.Context, callerID, measurementID primitive.ObjectID, objectKey string) (string, error) {
	m, err := s.measurementRepo.GetByID(ctx, measurementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrMeasurementNotFound
		}
		return "", err
	}
	if m.TrainerID != callerID && m.TraineeID != callerID {
		return "", ErrMeasurementAccessDenied
	}

	found := false
	for _, key := range m.PhotoKeys {
		if key == objectKey {
			found = true
			break
		}
	}
	if !found {
		return "", ErrMeasurementNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
}

func (s *measurementService) getOwned(ctx context.Context, trainerID, measurementID primitive.ObjectID) (*domain.Measurement, error) {
	m, err := s.measurementRepo.GetByID(ctx, measurementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeasurementNotFound
		}
		return nil, err
	}
	if m.TrainerID != trainerID {
		return nil, ErrMeasurementAccessDenied
	}
	return m, nil
}

func (s *measurementService) checkManaged(ctx context.Context, trainerID, traineeID primitive.ObjectID) error {
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
