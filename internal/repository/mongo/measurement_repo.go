// internal/repository/mongo/measurement_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/repository"
)

const measurementCollectionName = "measurements"

// mongoMeasurementRepository implements repository.MeasurementRepository
type mongoMeasurementRepository struct {
	collection *mongo.Collection
}

// NewMongoMeasurementRepository creates a new Measurement repository.
func NewMongoMeasurementRepository(db *mongo.Database) repository.MeasurementRepository {
	return &mongoMeasurementRepository{
		collection: db.Collection(measurementCollectionName),
	}
}

// Create inserts a new measurement entry.
func (r *mongoMeasurementRepository) Create(ctx context.Context, m *domain.Measurement) (primitive.ObjectID, error) {
	if m.TraineeID == primitive.NilObjectID || m.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("measurement requires traineeId and trainerId")
	}
	m.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Date.IsZero() {
		m.Date = now
	}

	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted measurement ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single measurement by its ID.
func (r *mongoMeasurementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Measurement, error) {
	var m domain.Measurement
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetByTraineeID retrieves all measurements for a trainee, newest first.
func (r *mongoMeasurementRepository) GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.Measurement, error) {
	var measurements []domain.Measurement
	filter := bson.M{"traineeId": traineeID}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &measurements); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return measurements, nil
}

// Update replaces a measurement's values.
func (r *mongoMeasurementRepository) Update(ctx context.Context, m *domain.Measurement) error {
	if m.ID == primitive.NilObjectID {
		return errors.New("measurement ID is required for update")
	}

	filter := bson.M{"_id": m.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"date":       m.Date,
			"weightKg":   m.WeightKg,
			"bodyFatPct": m.BodyFatPct,
			"chestCm":    m.ChestCm,
			"waistCm":    m.WaistCm,
			"hipsCm":     m.HipsCm,
			"armCm":      m.ArmCm,
			"thighCm":    m.ThighCm,
			"notes":      m.Notes,
			"photoKeys":  m.PhotoKeys,
			"updatedAt":  time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a measurement, ensuring it belongs to the specified trainer.
func (r *mongoMeasurementRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":       id,
		"trainerId": trainerID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMeasurementIndexes creates necessary indexes. Call during startup.
func EnsureMeasurementIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
