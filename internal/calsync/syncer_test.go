package calsync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Fakes ---

type fakeCalendar struct {
	events map[string]*Event
	nextID int

	createCalls int
	getCalls    int
	updateCalls int

	failUpdateWith error
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: make(map[string]*Event)}
}

func (f *fakeCalendar) CreateEvent(_ context.Context, _ string, payload EventPayload) (string, error) {
	f.createCalls++
	f.nextID++
	id := fmt.Sprintf("evt-%d", f.nextID)
	f.events[id] = &Event{ID: id, Payload: payload, Extra: map[string]interface{}{}}
	return id, nil
}

func (f *fakeCalendar) GetEvent(_ context.Context, _ string, eventID string) (*Event, error) {
	f.getCalls++
	event, ok := f.events[eventID]
	if !ok {
		return nil, ErrEventGone
	}
	return event, nil
}

func (f *fakeCalendar) UpdateEvent(_ context.Context, _ string, event *Event) error {
	f.updateCalls++
	if f.failUpdateWith != nil {
		return f.failUpdateWith
	}
	if _, ok := f.events[event.ID]; !ok {
		return ErrEventGone
	}
	f.events[event.ID] = event
	return nil
}

type fakeSyncRecords struct {
	byWorkout map[primitive.ObjectID]*domain.SyncRecord
}

func newFakeSyncRecords() *fakeSyncRecords {
	return &fakeSyncRecords{byWorkout: make(map[primitive.ObjectID]*domain.SyncRecord)}
}

func (f *fakeSyncRecords) Create(_ context.Context, record *domain.SyncRecord) (primitive.ObjectID, error) {
	record.ID = primitive.NewObjectID()
	copied := *record
	f.byWorkout[record.WorkoutID] = &copied
	return record.ID, nil
}

func (f *fakeSyncRecords) GetByWorkoutID(_ context.Context, workoutID primitive.ObjectID) (*domain.SyncRecord, error) {
	record, ok := f.byWorkout[workoutID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeSyncRecords) Update(_ context.Context, record *domain.SyncRecord) error {
	if _, ok := f.byWorkout[record.WorkoutID]; !ok {
		return repository.ErrNotFound
	}
	copied := *record
	f.byWorkout[record.WorkoutID] = &copied
	return nil
}

func (f *fakeSyncRecords) DeleteByWorkoutID(_ context.Context, workoutID primitive.ObjectID) error {
	if _, ok := f.byWorkout[workoutID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byWorkout, workoutID)
	return nil
}

type fakeWorkouts struct {
	workouts []domain.Workout
}

func (f *fakeWorkouts) Create(_ context.Context, _ *domain.Workout) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (f *fakeWorkouts) GetByID(_ context.Context, _ primitive.ObjectID) (*domain.Workout, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeWorkouts) Update(_ context.Context, _ *domain.Workout) error { return nil }

func (f *fakeWorkouts) GetByTraineeAndMonth(_ context.Context, traineeID primitive.ObjectID, year int, month time.Month) ([]domain.Workout, error) {
	var result []domain.Workout
	for _, w := range f.workouts {
		if w.TraineeID == traineeID && w.Date.Year() == year && w.Date.Month() == month {
			result = append(result, w)
		}
	}
	return result, nil
}

type fakeCards struct {
	card *domain.TraineeCard
}

func (f *fakeCards) Create(_ context.Context, _ *domain.TraineeCard) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (f *fakeCards) GetActiveByTraineeID(_ context.Context, traineeID primitive.ObjectID) (*domain.TraineeCard, error) {
	if f.card == nil || f.card.TraineeID != traineeID {
		return nil, repository.ErrNotFound
	}
	return f.card, nil
}

func (f *fakeCards) Update(_ context.Context, _ *domain.TraineeCard) error { return nil }

// --- Helpers ---

type syncFixture struct {
	calendar *fakeCalendar
	records  *fakeSyncRecords
	workouts *fakeWorkouts
	cards    *fakeCards
	syncer   *Syncer
}

func newSyncFixture() *syncFixture {
	f := &syncFixture{
		calendar: newFakeCalendar(),
		records:  newFakeSyncRecords(),
		workouts: &fakeWorkouts{},
		cards:    &fakeCards{},
	}
	f.syncer = NewSyncer(f.calendar, f.records, f.workouts, f.cards, "primary", time.Hour)
	return f
}

func testWorkout(traineeID primitive.ObjectID, date time.Time) *domain.Workout {
	return &domain.Workout{
		ID:          primitive.NewObjectID(),
		TraineeID:   traineeID,
		TrainerID:   primitive.NewObjectID(),
		WorkoutType: "personal",
		Date:        date,
	}
}

func testTrainee(name string) *domain.User {
	return &domain.User{
		ID:   primitive.NewObjectID(),
		Name: name,
		Role: domain.RoleTrainee,
	}
}

// --- Tests ---

func TestSyncWorkoutFirstSaveCreatesEventAndRecord(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Anna")
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	f.workouts.workouts = []domain.Workout{*workout}

	err := f.syncer.SyncWorkout(context.Background(), workout, trainee)
	require.NoError(t, err)

	assert.Equal(t, 1, f.calendar.createCalls)
	record, err := f.records.GetByWorkoutID(context.Background(), workout.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusSynced, record.Status)
	assert.Equal(t, domain.SyncToExternal, record.Direction)
	assert.Equal(t, "primary", record.CalendarID)
	assert.Equal(t, workout.Date, record.Start)
	assert.Equal(t, workout.Date.Add(time.Hour), record.End)
	assert.Equal(t, "Anna (1)", record.Summary)
	assert.False(t, record.LastSyncedAt.IsZero())
}

func TestSyncWorkoutUnchangedIsNoOp(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Anna")
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	f.workouts.workouts = []domain.Workout{*workout}

	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))
	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))

	assert.Equal(t, 1, f.calendar.createCalls)
	assert.Equal(t, 0, f.calendar.getCalls, "unchanged resave must not call the provider")
	assert.Equal(t, 0, f.calendar.updateCalls)
}

func TestSyncWorkoutSubSecondShiftIsNoOp(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Anna")
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	f.workouts.workouts = []domain.Workout{*workout}

	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))

	// Shift within the 1s tolerance, as serialization round-trips do.
	workout.Date = workout.Date.Add(400 * time.Millisecond)
	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))

	assert.Equal(t, 0, f.calendar.updateCalls)
}

func TestSyncWorkoutRescheduleUpdatesEvent(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Anna")
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	f.workouts.workouts = []domain.Workout{*workout}

	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))
	record, err := f.records.GetByWorkoutID(context.Background(), workout.ID)
	require.NoError(t, err)

	// Simulate an attendee added out-of-band; it must survive the update.
	f.calendar.events[record.EventID].Extra["attendees"] = []string{"anna@example.com"}

	workout.Date = workout.Date.Add(2 * time.Hour)
	f.workouts.workouts = []domain.Workout{*workout}
	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))

	assert.Equal(t, 1, f.calendar.getCalls)
	assert.Equal(t, 1, f.calendar.updateCalls)

	event := f.calendar.events[record.EventID]
	assert.Equal(t, workout.Date, event.Payload.Start)
	assert.Equal(t, []string{"anna@example.com"}, event.Extra["attendees"])

	updated, err := f.records.GetByWorkoutID(context.Background(), workout.ID)
	require.NoError(t, err)
	assert.Equal(t, workout.Date, updated.Start)
	assert.Equal(t, domain.SyncStatusSynced, updated.Status)
}

func TestSyncWorkoutRecreatesWhenEventDeletedExternally(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Anna")
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	f.workouts.workouts = []domain.Workout{*workout}

	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))
	first, err := f.records.GetByWorkoutID(context.Background(), workout.ID)
	require.NoError(t, err)

	// Someone deleted the event in the calendar UI.
	delete(f.calendar.events, first.EventID)

	workout.Date = workout.Date.Add(2 * time.Hour)
	f.workouts.workouts = []domain.Workout{*workout}
	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))

	assert.Equal(t, 2, f.calendar.createCalls, "a fresh event must be created")
	healed, err := f.records.GetByWorkoutID(context.Background(), workout.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.EventID, healed.EventID)
	assert.Equal(t, domain.SyncStatusSynced, healed.Status)
	assert.Equal(t, workout.Date, healed.Start)
}

func TestSyncWorkoutPushFailureMarksRecordFailedKeepingCache(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Anna")
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	f.workouts.workouts = []domain.Workout{*workout}

	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))
	before, err := f.records.GetByWorkoutID(context.Background(), workout.ID)
	require.NoError(t, err)

	f.calendar.failUpdateWith = errors.New("provider 500")
	workout.Date = workout.Date.Add(2 * time.Hour)
	f.workouts.workouts = []domain.Workout{*workout}

	err = f.syncer.SyncWorkout(context.Background(), workout, trainee)
	require.Error(t, err)

	after, getErr := f.records.GetByWorkoutID(context.Background(), workout.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.SyncStatusFailed, after.Status)
	assert.Equal(t, before.Start, after.Start, "cache must keep what the provider actually holds")
	assert.Equal(t, before.EventID, after.EventID)

	// Next save with the provider healthy retries and recovers.
	f.calendar.failUpdateWith = nil
	require.NoError(t, f.syncer.SyncWorkout(context.Background(), workout, trainee))
	recovered, getErr := f.records.GetByWorkoutID(context.Background(), workout.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.SyncStatusSynced, recovered.Status)
	assert.Equal(t, workout.Date, recovered.Start)
}

func TestEventTitleCardTicketUsesActiveCard(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Anna")
	trainee.CountingMethod = domain.CountingMethodCardTicket
	f.cards.card = &domain.TraineeCard{
		TraineeID: trainee.ID,
		Purchased: 10,
		Remaining: 7,
		IsActive:  true,
	}
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))

	title, err := f.syncer.eventTitle(context.Background(), workout, trainee)
	require.NoError(t, err)
	assert.Equal(t, "Anna (7/10)", title)
}

func TestEventTitleCardTicketWithoutCardFallsBackToOrdinal(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Anna")
	trainee.CountingMethod = domain.CountingMethodCardTicket

	earlier := *testWorkout(trainee.ID, time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC))
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	f.workouts.workouts = []domain.Workout{earlier, *workout}

	title, err := f.syncer.eventTitle(context.Background(), workout, trainee)
	require.NoError(t, err)
	assert.Equal(t, "Anna (2)", title)
}

func TestEventTitleOrdinalCountsWithinMonth(t *testing.T) {
	f := newSyncFixture()
	trainee := testTrainee("Boris")

	prevMonth := *testWorkout(trainee.ID, time.Date(2026, 2, 25, 18, 0, 0, 0, time.UTC))
	sameMonth := *testWorkout(trainee.ID, time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC))
	workout := testWorkout(trainee.ID, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	// workout itself is not persisted yet: placed after the existing ones.
	f.workouts.workouts = []domain.Workout{prevMonth, sameMonth}

	title, err := f.syncer.eventTitle(context.Background(), workout, trainee)
	require.NoError(t, err)
	assert.Equal(t, "Boris (2)", title, "previous month's sessions must not count")
}

func TestEventDescriptionListsNotesAndExercises(t *testing.T) {
	workout := &domain.Workout{
		Notes: "felt strong",
		Exercises: []domain.WorkoutExercise{
			{Name: "Squat", Sets: make([]domain.WorkoutSet, 3)},
			{Name: "Bench Press", Sets: make([]domain.WorkoutSet, 4)},
		},
	}
	assert.Equal(t, "felt strong\nSquat x3\nBench Press x4", eventDescription(workout))
}

func TestPayloadEqualTimeTolerance(t *testing.T) {
	base := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	a := EventPayload{Start: base, End: base.Add(time.Hour), Summary: "s"}

	b := a
	b.Start = base.Add(999 * time.Millisecond)
	assert.True(t, payloadEqual(a, b))

	c := a
	c.Start = base.Add(1001 * time.Millisecond)
	assert.False(t, payloadEqual(a, c))
}
