// internal/repository/mongo/plan_exercise_repo.go
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

const planExerciseCollectionName = "plan_exercises"

// mongoPlanExerciseRepository implements repository.PlanExerciseRepository
type mongoPlanExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanExerciseRepository creates a new PlanExercise repository.
func NewMongoPlanExerciseRepository(db *mongo.Database) repository.PlanExerciseRepository {
	return &mongoPlanExerciseRepository{
		collection: db.Collection(planExerciseCollectionName),
	}
}

// Create inserts a new flattened exercise row and returns its assigned id.
func (r *mongoPlanExerciseRepository) Create(ctx context.Context, exercise *domain.PlanExercise) (primitive.ObjectID, error) {
	if exercise.DayID == primitive.NilObjectID || exercise.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan exercise requires dayId and exerciseId")
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted exercise ID")
	}
	return insertedID, nil
}

// GetByDayID retrieves the current exercise rows of a day, ordered by position.
func (r *mongoPlanExerciseRepository) GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.PlanExercise, error) {
	var exercises []domain.PlanExercise
	filter := bson.M{"dayId": dayID}
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update replaces an exercise row's prescription fields. DayID and CreatedAt
// are never touched; moving a prescription between days is a delete+insert.
func (r *mongoPlanExerciseRepository) Update(ctx context.Context, exercise *domain.PlanExercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("plan exercise ID is required for update")
	}

	filter := bson.M{"_id": exercise.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"exerciseId":      exercise.ExerciseID,
			"position":        exercise.Position,
			"restSeconds":     exercise.RestSeconds,
			"notes":           exercise.Notes,
			"setsCount":       exercise.SetsCount,
			"targetWeight":    exercise.TargetWeight,
			"targetReps":      exercise.TargetReps,
			"targetRpe":       exercise.TargetRPE,
			"setType":         exercise.SetType,
			"toFailure":       exercise.ToFailure,
			"equipmentId":     exercise.EquipmentID,
			"pairExerciseId":  exercise.PairExerciseID,
			"pairWeight":      exercise.PairWeight,
			"pairReps":        exercise.PairReps,
			"pairRpe":         exercise.PairRPE,
			"pairEquipmentId": exercise.PairEquipmentID,
			"dropWeight":      exercise.DropWeight,
			"dropReps":        exercise.DropReps,
			"updatedAt":       time.Now().UTC(),
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

// DeleteByIDs removes individual exercise rows in bulk.
func (r *mongoPlanExerciseRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

// DeleteByDayIDs removes every exercise row belonging to the given days,
// cascading a day deletion.
func (r *mongoPlanExerciseRepository) DeleteByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) error {
	if len(dayIDs) == 0 {
		return nil
	}
	filter := bson.M{"dayId": bson.M{"$in": dayIDs}}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

// EnsurePlanExerciseIndexes creates necessary indexes. Call during startup.
func EnsurePlanExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dayId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
