// internal/repository/mongo/sync_record_repo.go
package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/repository"
)

const syncRecordCollectionName = "sync_records"

// mongoSyncRecordRepository implements repository.SyncRecordRepository
type mongoSyncRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoSyncRecordRepository creates a new SyncRecord repository.
func NewMongoSyncRecordRepository(db *mongo.Database) repository.SyncRecordRepository {
	return &mongoSyncRecordRepository{
		collection: db.Collection(syncRecordCollectionName),
	}
}

// Create inserts the bookkeeping record for a workout's external event.
// The unique index on workoutId enforces at most one record per workout.
func (r *mongoSyncRecordRepository) Create(ctx context.Context, record *domain.SyncRecord) (primitive.ObjectID, error) {
	if record.WorkoutID == primitive.NilObjectID || record.EventID == "" {
		return primitive.NilObjectID, errors.New("sync record requires workoutId and eventId")
	}
	record.ID = primitive.NewObjectID()

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted sync record ID")
	}
	return insertedID, nil
}

// GetByWorkoutID retrieves the sync record for a workout, if one exists.
func (r *mongoSyncRecordRepository) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) (*domain.SyncRecord, error) {
	var record domain.SyncRecord
	filter := bson.M{"workoutId": workoutID}
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Update replaces the record's cached payload and status.
func (r *mongoSyncRecordRepository) Update(ctx context.Context, record *domain.SyncRecord) error {
	if record.ID == primitive.NilObjectID {
		return errors.New("sync record ID is required for update")
	}

	filter := bson.M{"_id": record.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"eventId":      record.EventID,
			"calendarId":   record.CalendarID,
			"start":        record.Start,
			"end":          record.End,
			"summary":      record.Summary,
			"description":  record.Description,
			"status":       record.Status,
			"direction":    record.Direction,
			"lastSyncedAt": record.LastSyncedAt,
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

// DeleteByWorkoutID removes a workout's sync record, used when the external
// event disappeared and the record must be recreated under a fresh event id.
func (r *mongoSyncRecordRepository) DeleteByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) error {
	filter := bson.M{"workoutId": workoutID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSyncRecordIndexes creates necessary indexes. Call during startup.
func EnsureSyncRecordIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "lastSyncedAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
