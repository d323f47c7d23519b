package calsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/repository"
)

// Default length of a calendar event when config does not override it.
const DefaultEventDuration = time.Hour

// Syncer is the per-workout external sync state machine.
//
// States per workout: unsynced (no SyncRecord) -> synced -> failed -> synced
// again on the next successful push. "Orphaned" (record points at an event the
// provider no longer has) is detected lazily on the next update attempt and
// self-heals by recreating the event under a fresh id.
type Syncer struct {
	calendar      Client
	records       repository.SyncRecordRepository
	workouts      repository.WorkoutRepository
	cards         repository.CardRepository
	calendarID    string
	eventDuration time.Duration
}

// NewSyncer creates a sync state machine bound to one external calendar.
func NewSyncer(
	calendar Client,
	records repository.SyncRecordRepository,
	workouts repository.WorkoutRepository,
	cards repository.CardRepository,
	calendarID string,
	eventDuration time.Duration,
) *Syncer {
	if eventDuration <= 0 {
		eventDuration = DefaultEventDuration
	}
	return &Syncer{
		calendar:      calendar,
		records:       records,
		workouts:      workouts,
		cards:         cards,
		calendarID:    calendarID,
		eventDuration: eventDuration,
	}
}

// SyncWorkout aligns the external calendar event for a saved workout. It is
// safe to call repeatedly: an unchanged workout performs no external call, a
// retry after a failed push starts from the persisted record's state. The
// workout save path treats any returned error as best-effort (logged, never
// surfaced to the trainer).
func (s *Syncer) SyncWorkout(ctx context.Context, workout *domain.Workout, trainee *domain.User) error {
	payload, err := s.buildPayload(ctx, workout, trainee)
	if err != nil {
		return fmt.Errorf("build event payload: %w", err)
	}

	record, err := s.records.GetByWorkoutID(ctx, workout.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// unsynced -> synced (or stays unsynced on push failure; no record
			// is written then, so the next save retries from scratch).
			return s.createEvent(ctx, workout, payload)
		}
		return err
	}

	cached := EventPayload{
		Start:       record.Start,
		End:         record.End,
		Summary:     record.Summary,
		Description: record.Description,
	}
	if payloadEqual(payload, cached) {
		// Nothing material changed; no external call, status untouched.
		return nil
	}

	// Fetch before update so externally-added fields (attendees etc.) survive
	// the full-replace push.
	event, err := s.calendar.GetEvent(ctx, record.CalendarID, record.EventID)
	if err != nil {
		if errors.Is(err, ErrEventGone) {
			return s.recreate(ctx, workout, payload)
		}
		return err
	}

	event.Payload = payload
	if err := s.calendar.UpdateEvent(ctx, record.CalendarID, event); err != nil {
		if errors.Is(err, ErrEventGone) {
			return s.recreate(ctx, workout, payload)
		}
		// Keep the previously cached values: they describe what the provider
		// actually holds, not what we failed to push.
		record.Status = domain.SyncStatusFailed
		if markErr := s.records.Update(ctx, record); markErr != nil {
			log.Printf("WARN: failed to mark sync record %s failed: %v", record.ID.Hex(), markErr)
		}
		return err
	}

	record.Start = payload.Start
	record.End = payload.End
	record.Summary = payload.Summary
	record.Description = payload.Description
	record.Status = domain.SyncStatusSynced
	record.LastSyncedAt = time.Now().UTC()
	return s.records.Update(ctx, record)
}

// recreate self-heals from out-of-band deletion of the external event: the
// stale record is dropped and the create path runs with a fresh event id.
func (s *Syncer) recreate(ctx context.Context, workout *domain.Workout, payload EventPayload) error {
	if err := s.records.DeleteByWorkoutID(ctx, workout.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return s.createEvent(ctx, workout, payload)
}

func (s *Syncer) createEvent(ctx context.Context, workout *domain.Workout, payload EventPayload) error {
	eventID, err := s.calendar.CreateEvent(ctx, s.calendarID, payload)
	if err != nil {
		return err
	}
	record := &domain.SyncRecord{
		WorkoutID:    workout.ID,
		EventID:      eventID,
		CalendarID:   s.calendarID,
		Start:        payload.Start,
		End:          payload.End,
		Summary:      payload.Summary,
		Description:  payload.Description,
		Status:       domain.SyncStatusSynced,
		Direction:    domain.SyncToExternal,
		LastSyncedAt: time.Now().UTC(),
	}
	_, err = s.records.Create(ctx, record)
	return err
}

// buildPayload computes the would-be external event for a workout.
func (s *Syncer) buildPayload(ctx context.Context, workout *domain.Workout, trainee *domain.User) (EventPayload, error) {
	title, err := s.eventTitle(ctx, workout, trainee)
	if err != nil {
		return EventPayload{}, err
	}
	return EventPayload{
		Start:       workout.Date,
		End:         workout.Date.Add(s.eventDuration),
		Summary:     title,
		Description: eventDescription(workout),
	}, nil
}

// eventTitle incorporates the session count. With the card_ticket counting
// method the trainee's active card supplies "remaining/purchased"; otherwise
// the title carries the workout's 1-based ordinal among the trainee's
// workouts in the same calendar month.
func (s *Syncer) eventTitle(ctx context.Context, workout *domain.Workout, trainee *domain.User) (string, error) {
	if trainee.CountingMethod == domain.CountingMethodCardTicket {
		card, err := s.cards.GetActiveByTraineeID(ctx, trainee.ID)
		if err == nil {
			return fmt.Sprintf("%s (%d/%d)", trainee.Name, card.Remaining, card.Purchased), nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", err
		}
		// No active card: fall through to the ordinal count.
	}

	n, err := s.sessionNumber(ctx, workout)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%d)", trainee.Name, n), nil
}

// sessionNumber returns the workout's 1-based position among the trainee's
// same-month workouts, ordered by timestamp ascending. A workout not yet
// among them (first save) is provisionally placed after the existing ones.
func (s *Syncer) sessionNumber(ctx context.Context, workout *domain.Workout) (int, error) {
	siblings, err := s.workouts.GetByTraineeAndMonth(ctx, workout.TraineeID, workout.Date.Year(), workout.Date.Month())
	if err != nil {
		return 0, err
	}
	for i, sibling := range siblings {
		if sibling.ID == workout.ID {
			return i + 1, nil
		}
	}
	return len(siblings) + 1, nil
}

func eventDescription(workout *domain.Workout) string {
	var b strings.Builder
	if workout.Notes != "" {
		b.WriteString(workout.Notes)
	}
	for _, ex := range workout.Exercises {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("%s x%d", ex.Name, len(ex.Sets)))
	}
	return b.String()
}
