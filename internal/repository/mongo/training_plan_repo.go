// internal/repository/mongo/training_plan_repo.go
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

const trainingPlanCollectionName = "training_plans"

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new training plan root row.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.TraineeID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires traineeId, trainerId, and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetActiveByTraineeID retrieves the trainee's currently active plan, if any.
func (r *mongoTrainingPlanRepository) GetActiveByTraineeID(ctx context.Context, traineeID primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	filter := bson.M{"traineeId": traineeID, "isActive": true}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByTraineeAndTrainerID retrieves all plans for a trainee created by a specific trainer.
func (r *mongoTrainingPlanRepository) GetByTraineeAndTrainerID(ctx context.Context, traineeID, trainerID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	var plans []domain.TrainingPlan
	filter := bson.M{
		"traineeId": traineeID,
		"trainerId": trainerID,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update modifies the plan's own fields; trainee/trainer links and CreatedAt
// are never touched here.
func (r *mongoTrainingPlanRepository) Update(ctx context.Context, plan *domain.TrainingPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("training plan ID is required for update")
	}

	filter := bson.M{"_id": plan.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":            plan.Name,
			"description":     plan.Description,
			"weeklyFrequency": plan.WeeklyFrequency,
			"startDate":       plan.StartDate,
			"endDate":         plan.EndDate,
			"isActive":        plan.IsActive,
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

// Delete removes a plan, ensuring it belongs to the specified trainer.
// The caller is responsible for cascading to the plan's days and exercises.
func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, planID, trainerID primitive.ObjectID) error {
	if planID == primitive.NilObjectID || trainerID == primitive.NilObjectID {
		return errors.New("plan ID and trainer ID are required for deletion")
	}

	filter := bson.M{
		"_id":       planID,
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

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "traineeId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
