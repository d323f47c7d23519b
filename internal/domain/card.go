package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TraineeCard is a purchased block of sessions (a punch card). The calendar
// sync title uses the active card's remaining/purchased counts when the
// trainee's counting method is card_ticket.
type TraineeCard struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TraineeID primitive.ObjectID `bson:"traineeId" json:"traineeId"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Purchased int                `bson:"purchased" json:"purchased"` // Sessions bought
	Remaining int                `bson:"remaining" json:"remaining"` // Sessions left
	IsActive  bool               `bson:"isActive" json:"isActive"`
	ExpiresAt *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
