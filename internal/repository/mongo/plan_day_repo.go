// internal/repository/mongo/plan_day_repo.go
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

const planDayCollectionName = "plan_days"

// mongoPlanDayRepository implements repository.PlanDayRepository
type mongoPlanDayRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanDayRepository creates a new PlanDay repository.
func NewMongoPlanDayRepository(db *mongo.Database) repository.PlanDayRepository {
	return &mongoPlanDayRepository{
		collection: db.Collection(planDayCollectionName),
	}
}

// Create inserts a new plan day and returns its storage-assigned id. The
// reconciler uses that id for the exercise rows that follow; it is assigned
// exactly once and never changes afterwards.
func (r *mongoPlanDayRepository) Create(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error) {
	if day.PlanID == primitive.NilObjectID || day.Name == "" {
		return primitive.NilObjectID, errors.New("plan day requires planId and name")
	}
	day.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, day)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted day ID")
	}
	return insertedID, nil
}

// GetByPlanID retrieves the current days of a plan, ordered by day number.
func (r *mongoPlanDayRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	var days []domain.PlanDay
	filter := bson.M{"planId": planID}
	findOptions := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// Update modifies a plan day's fields; PlanID and CreatedAt are never touched.
func (r *mongoPlanDayRepository) Update(ctx context.Context, day *domain.PlanDay) error {
	if day.ID == primitive.NilObjectID {
		return errors.New("plan day ID is required for update")
	}

	filter := bson.M{"_id": day.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"dayNumber":    day.DayNumber,
			"name":         day.Name,
			"focus":        day.Focus,
			"notes":        day.Notes,
			"weeklyRepeat": day.WeeklyRepeat,
			"updatedAt":    time.Now().UTC(),
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

// DeleteByIDs removes the given days in bulk. Deleting zero ids is a no-op.
func (r *mongoPlanDayRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

// EnsurePlanDayIndexes creates necessary indexes. Call during startup.
func EnsurePlanDayIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
