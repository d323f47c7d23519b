package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Measurement is one body measurement entry for a trainee. Progress photos are
// stored in object storage; PhotoKeys holds their object keys.
type Measurement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TraineeID primitive.ObjectID `bson:"traineeId" json:"traineeId"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Date      time.Time          `bson:"date" json:"date"`

	WeightKg   float64  `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	BodyFatPct float64  `bson:"bodyFatPct,omitempty" json:"bodyFatPct,omitempty"`
	ChestCm    float64  `bson:"chestCm,omitempty" json:"chestCm,omitempty"`
	WaistCm    float64  `bson:"waistCm,omitempty" json:"waistCm,omitempty"`
	HipsCm     float64  `bson:"hipsCm,omitempty" json:"hipsCm,omitempty"`
	ArmCm      float64  `bson:"armCm,omitempty" json:"armCm,omitempty"`
	ThighCm    float64  `bson:"thighCm,omitempty" json:"thighCm,omitempty"`
	Notes      string   `bson:"notes,omitempty" json:"notes,omitempty"`
	PhotoKeys  []string `bson:"photoKeys,omitempty" json:"photoKeys,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
