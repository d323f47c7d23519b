// Package calsync keeps at most one external calendar event aligned with each
// saved workout. The sync is idempotent under retries and self-heals when the
// external event is deleted out-of-band.
package calsync

import (
	"context"
	"errors"
	"time"
)

// ErrEventGone is returned by Client.GetEvent (and UpdateEvent) when the
// external provider reports the event no longer exists (404/410).
var ErrEventGone = errors.New("external calendar event no longer exists")

// EventPayload is the set of fields this system owns on an external event.
type EventPayload struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
}

// Event is the provider's current view of an event. Extra holds fields added
// externally (attendees and the like) which must survive an update untouched.
type Event struct {
	ID      string
	Payload EventPayload
	Extra   map[string]interface{}
}

// Client abstracts the external calendar REST API.
type Client interface {
	// CreateEvent pushes a new event and returns its provider-assigned id.
	CreateEvent(ctx context.Context, calendarID string, payload EventPayload) (string, error)
	// GetEvent fetches the event's current state; ErrEventGone when deleted.
	GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error)
	// UpdateEvent replaces the event (full PUT); ErrEventGone when deleted.
	UpdateEvent(ctx context.Context, calendarID string, event *Event) error
}

// timeTolerance absorbs serialization jitter when comparing cached time fields
// against a recomputed payload.
const timeTolerance = 1000 * time.Millisecond

// payloadEqual reports whether two payloads are materially identical, with
// times compared under timeTolerance.
func payloadEqual(a, b EventPayload) bool {
	return timesClose(a.Start, b.Start) &&
		timesClose(a.End, b.End) &&
		a.Summary == b.Summary &&
		a.Description == b.Description
}

func timesClose(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= timeTolerance
}
