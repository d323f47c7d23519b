// internal/repository/mongo/card_repo.go
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

const cardCollectionName = "trainee_cards"

// mongoCardRepository implements repository.CardRepository
type mongoCardRepository struct {
	collection *mongo.Collection
}

// NewMongoCardRepository creates a new TraineeCard repository.
func NewMongoCardRepository(db *mongo.Database) repository.CardRepository {
	return &mongoCardRepository{
		collection: db.Collection(cardCollectionName),
	}
}

// Create inserts a new session card.
func (r *mongoCardRepository) Create(ctx context.Context, card *domain.TraineeCard) (primitive.ObjectID, error) {
	if card.TraineeID == primitive.NilObjectID || card.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("card requires traineeId and trainerId")
	}
	card.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, card)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted card ID")
	}
	return insertedID, nil
}

// GetActiveByTraineeID retrieves the trainee's active card, newest first when
// more than one is somehow active.
func (r *mongoCardRepository) GetActiveByTraineeID(ctx context.Context, traineeID primitive.ObjectID) (*domain.TraineeCard, error) {
	var card domain.TraineeCard
	filter := bson.M{"traineeId": traineeID, "isActive": true}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// Update replaces a card's counters and status.
func (r *mongoCardRepository) Update(ctx context.Context, card *domain.TraineeCard) error {
	if card.ID == primitive.NilObjectID {
		return errors.New("card ID is required for update")
	}

	filter := bson.M{"_id": card.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"purchased": card.Purchased,
			"remaining": card.Remaining,
			"isActive":  card.IsActive,
			"expiresAt": card.ExpiresAt,
			"updatedAt": time.Now().UTC(),
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

// EnsureCardIndexes creates necessary indexes. Call during startup.
func EnsureCardIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
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
