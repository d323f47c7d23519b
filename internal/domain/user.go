package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleTrainee Role = "trainee"
)

// Counting methods for calendar event titles.
const (
	CountingMethodCardTicket = "card_ticket"
	CountingMethodOrdinal    = "ordinal"
)

// User represents a user in the system (either a Trainer or a Trainee).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Trainer-specific ---
	// ObjectIDs of trainees managed by this trainer.
	TraineeIDs []primitive.ObjectID `bson:"traineeIds,omitempty" json:"traineeIds,omitempty"`

	// Whether saved workouts should be mirrored to the external calendar.
	CalendarSyncEnabled bool `bson:"calendarSyncEnabled" json:"calendarSyncEnabled"`

	// --- Trainee-specific ---
	// The trainer managing this trainee, if assigned.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`

	// How calendar event titles count this trainee's sessions:
	// "card_ticket" uses the active card's remaining/purchased counts,
	// anything else falls back to the monthly session ordinal.
	CountingMethod string `bson:"countingMethod,omitempty" json:"countingMethod,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsTrainee() bool {
	return u.Role == RoleTrainee
}
