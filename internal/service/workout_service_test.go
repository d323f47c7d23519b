package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ymfit/studio-app/internal/calsync"
	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeWorkoutRepo struct {
	workouts map[primitive.ObjectID]*domain.Workout
}

func (f *fakeWorkoutRepo) Create(_ context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	workout.ID = primitive.NewObjectID()
	copied := *workout
	f.workouts[workout.ID] = &copied
	return workout.ID, nil
}

func (f *fakeWorkoutRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	w, ok := f.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *w
	return &copied, nil
}

func (f *fakeWorkoutRepo) Update(_ context.Context, workout *domain.Workout) error {
	if _, ok := f.workouts[workout.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *workout
	f.workouts[workout.ID] = &copied
	return nil
}

func (f *fakeWorkoutRepo) GetByTraineeAndMonth(_ context.Context, traineeID primitive.ObjectID, year int, month time.Month) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, w := range f.workouts {
		if w.TraineeID == traineeID && w.Date.Year() == year && w.Date.Month() == month {
			out = append(out, *w)
		}
	}
	return out, nil
}

type fakeSyncRecordRepo struct {
	records map[primitive.ObjectID]*domain.SyncRecord
}

func (f *fakeSyncRecordRepo) Create(_ context.Context, record *domain.SyncRecord) (primitive.ObjectID, error) {
	record.ID = primitive.NewObjectID()
	f.records[record.WorkoutID] = record
	return record.ID, nil
}

func (f *fakeSyncRecordRepo) GetByWorkoutID(_ context.Context, workoutID primitive.ObjectID) (*domain.SyncRecord, error) {
	r, ok := f.records[workoutID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeSyncRecordRepo) Update(_ context.Context, record *domain.SyncRecord) error {
	f.records[record.WorkoutID] = record
	return nil
}

func (f *fakeSyncRecordRepo) DeleteByWorkoutID(_ context.Context, workoutID primitive.ObjectID) error {
	delete(f.records, workoutID)
	return nil
}

type fakeCardRepo struct{}

func (f *fakeCardRepo) Create(_ context.Context, _ *domain.TraineeCard) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (f *fakeCardRepo) GetActiveByTraineeID(_ context.Context, _ primitive.ObjectID) (*domain.TraineeCard, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeCardRepo) Update(_ context.Context, _ *domain.TraineeCard) error { return nil }

// brokenCalendar always fails, standing in for an unreachable provider.
type brokenCalendar struct{}

func (brokenCalendar) CreateEvent(_ context.Context, _ string, _ calsync.EventPayload) (string, error) {
	return "", errors.New("provider unreachable")
}

func (brokenCalendar) GetEvent(_ context.Context, _, _ string) (*calsync.Event, error) {
	return nil, errors.New("provider unreachable")
}

func (brokenCalendar) UpdateEvent(_ context.Context, _ string, _ *calsync.Event) error {
	return errors.New("provider unreachable")
}

// --- Fixture ---

type workoutFixture struct {
	workouts *fakeWorkoutRepo
	users    *fakeUserRepo
	service  WorkoutService

	trainerID primitive.ObjectID
	traineeID primitive.ObjectID
}

func newWorkoutFixture(t *testing.T, syncer *calsync.Syncer) *workoutFixture {
	t.Helper()
	f := &workoutFixture{
		workouts: &fakeWorkoutRepo{workouts: map[primitive.ObjectID]*domain.Workout{}},
		users:    &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}},
	}
	f.service = NewWorkoutService(f.workouts, f.users, syncer)

	trainer := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainer, Name: "Coach", CalendarSyncEnabled: true}
	f.users.users[trainer.ID] = trainer
	f.trainerID = trainer.ID

	trainee := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainee, Name: "Anna", TrainerID: &trainer.ID}
	f.users.users[trainee.ID] = trainee
	f.traineeID = trainee.ID
	return f
}

func (f *workoutFixture) input() SaveWorkoutInput {
	return SaveWorkoutInput{
		TraineeID:   f.traineeID,
		TrainerID:   f.trainerID,
		WorkoutType: "personal",
		Date:        time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
	}
}

// --- Tests ---

func TestSaveWorkoutCreate(t *testing.T) {
	f := newWorkoutFixture(t, nil)

	workout, err := f.service.SaveWorkout(context.Background(), f.trainerID, f.input())
	require.NoError(t, err)
	assert.NotEqual(t, primitive.NilObjectID, workout.ID)

	stored, err := f.workouts.GetByID(context.Background(), workout.ID)
	require.NoError(t, err)
	assert.Equal(t, f.traineeID, stored.TraineeID)
}

func TestSaveWorkoutUpdate(t *testing.T) {
	f := newWorkoutFixture(t, nil)
	created, err := f.service.SaveWorkout(context.Background(), f.trainerID, f.input())
	require.NoError(t, err)

	input := f.input()
	input.WorkoutID = &created.ID
	input.Notes = "rescheduled"
	input.Date = created.Date.Add(24 * time.Hour)

	updated, err := f.service.SaveWorkout(context.Background(), f.trainerID, input)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "rescheduled", updated.Notes)
}

func TestSaveWorkoutRejectsTrainerMismatch(t *testing.T) {
	f := newWorkoutFixture(t, nil)
	input := f.input()
	input.TrainerID = primitive.NewObjectID() // someone else's workout

	_, err := f.service.SaveWorkout(context.Background(), f.trainerID, input)
	assert.ErrorIs(t, err, ErrTrainerMismatch)
}

func TestSaveWorkoutRejectsTraineeCaller(t *testing.T) {
	f := newWorkoutFixture(t, nil)
	input := f.input()
	input.TrainerID = f.traineeID // trainee naming themselves as trainer

	_, err := f.service.SaveWorkout(context.Background(), f.traineeID, input)
	assert.ErrorIs(t, err, ErrCallerNotTrainer)
}

func TestSaveWorkoutRejectsUnmanagedTrainee(t *testing.T) {
	f := newWorkoutFixture(t, nil)
	stranger := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainee, Name: "Vlad"}
	f.users.users[stranger.ID] = stranger

	input := f.input()
	input.TraineeID = stranger.ID

	_, err := f.service.SaveWorkout(context.Background(), f.trainerID, input)
	assert.ErrorIs(t, err, ErrTraineeNotManaged)
}

func TestSaveWorkoutSucceedsWhenCalendarPushFails(t *testing.T) {
	syncer := calsync.NewSyncer(
		brokenCalendar{},
		&fakeSyncRecordRepo{records: map[primitive.ObjectID]*domain.SyncRecord{}},
		&fakeWorkoutRepo{workouts: map[primitive.ObjectID]*domain.Workout{}},
		&fakeCardRepo{},
		"primary",
		time.Hour,
	)
	f := newWorkoutFixture(t, syncer)

	workout, err := f.service.SaveWorkout(context.Background(), f.trainerID, f.input())
	require.NoError(t, err, "a calendar failure must never fail the save")

	_, err = f.workouts.GetByID(context.Background(), workout.ID)
	assert.NoError(t, err)
}

func TestGetWorkoutVisibility(t *testing.T) {
	f := newWorkoutFixture(t, nil)
	created, err := f.service.SaveWorkout(context.Background(), f.trainerID, f.input())
	require.NoError(t, err)

	_, err = f.service.GetWorkoutByID(context.Background(), f.trainerID, created.ID)
	assert.NoError(t, err)

	_, err = f.service.GetWorkoutByID(context.Background(), f.traineeID, created.ID)
	assert.NoError(t, err)

	_, err = f.service.GetWorkoutByID(context.Background(), primitive.NewObjectID(), created.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound, "outsiders must not learn the workout exists")
}
