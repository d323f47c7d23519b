// internal/repository/mongo/meal_plan_repo.go
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

const mealPlanCollectionName = "meal_plans"

// mongoMealPlanRepository implements repository.MealPlanRepository
type mongoMealPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoMealPlanRepository creates a new MealPlan repository.
func NewMongoMealPlanRepository(db *mongo.Database) repository.MealPlanRepository {
	return &mongoMealPlanRepository{
		collection: db.Collection(mealPlanCollectionName),
	}
}

// Create inserts a new meal plan.
func (r *mongoMealPlanRepository) Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	if plan.TraineeID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("meal plan requires traineeId, trainerId, and name")
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
		return primitive.NilObjectID, errors.New("failed to convert inserted meal plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single meal plan by its ID.
func (r *mongoMealPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	var plan domain.MealPlan
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

// GetByTraineeID retrieves all meal plans for a trainee, newest first.
func (r *mongoMealPlanRepository) GetByTraineeID(ctx context.Context, traineeID primitive.ObjectID) ([]domain.MealPlan, error) {
	var plans []domain.MealPlan
	filter := bson.M{"traineeId": traineeID}
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

// Update replaces a meal plan's content.
func (r *mongoMealPlanRepository) Update(ctx context.Context, plan *domain.MealPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("meal plan ID is required for update")
	}

	filter := bson.M{"_id": plan.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":        plan.Name,
			"description": plan.Description,
			"meals":       plan.Meals,
			"isActive":    plan.IsActive,
			"updatedAt":   time.Now().UTC(),
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

// Delete removes a meal plan, ensuring it belongs to the specified trainer.
func (r *mongoMealPlanRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
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

// EnsureMealPlanIndexes creates necessary indexes. Call during startup.
func EnsureMealPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "traineeId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
