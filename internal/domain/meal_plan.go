package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlan is a trainer-authored nutrition plan for a trainee.
type MealPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	TraineeID   primitive.ObjectID `bson:"traineeId" json:"traineeId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Meals       []Meal             `bson:"meals" json:"meals"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Meal is one meal slot within a MealPlan.
type Meal struct {
	Name  string     `bson:"name" json:"name"` // e.g., "Breakfast"
	Time  string     `bson:"time,omitempty" json:"time,omitempty"`
	Foods []MealFood `bson:"foods" json:"foods"`
	Notes string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// MealFood is a single food item with its macros.
type MealFood struct {
	Name     string  `bson:"name" json:"name"`
	Quantity string  `bson:"quantity,omitempty" json:"quantity,omitempty"` // e.g., "150g", "1 cup"
	Calories float64 `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein  float64 `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs    float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat      float64 `bson:"fat,omitempty" json:"fat,omitempty"`
}
