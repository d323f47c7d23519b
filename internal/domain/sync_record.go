// internal/domain/sync_record.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SyncStatus tracks the outcome of the last external calendar push.
type SyncStatus string

const (
	SyncStatusSynced SyncStatus = "synced"
	SyncStatusFailed SyncStatus = "failed"
)

// SyncDirection describes which way a record's data flows.
type SyncDirection string

const (
	SyncToExternal    SyncDirection = "to_external"
	SyncBidirectional SyncDirection = "bidirectional"
)

// SyncRecord links one Workout to at most one external calendar event, caching
// the field values last pushed so the next save can detect a no-op without
// calling the external API. Created on first successful push; deleted and
// recreated when the external event turns out to have been removed out-of-band.
type SyncRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID  primitive.ObjectID `bson:"workoutId" json:"workoutId"` // Unique per workout
	EventID    string             `bson:"eventId" json:"eventId"`     // External calendar event id
	CalendarID string             `bson:"calendarId" json:"calendarId"`

	// Cached copy of the fields last pushed successfully.
	Start       time.Time `bson:"start" json:"start"`
	End         time.Time `bson:"end" json:"end"`
	Summary     string    `bson:"summary" json:"summary"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`

	Status       SyncStatus    `bson:"status" json:"status"`
	Direction    SyncDirection `bson:"direction" json:"direction"`
	LastSyncedAt time.Time     `bson:"lastSyncedAt" json:"lastSyncedAt"`
}
