package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ymfit/studio-app/internal/domain"
	"ymfit/studio-app/internal/planner"
	"ymfit/studio-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// opLog records the order of storage writes so tests can assert the apply
// ordering rules.
type opLog struct {
	ops []string
}

func (l *opLog) add(format string, args ...interface{}) {
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
}

type fakePlanRepo struct {
	log   *opLog
	plans map[primitive.ObjectID]*domain.TrainingPlan
}

func (f *fakePlanRepo) Create(_ context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	plan.ID = primitive.NewObjectID()
	copied := *plan
	f.plans[plan.ID] = &copied
	f.log.add("plan.create")
	return plan.ID, nil
}

func (f *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *plan
	return &copied, nil
}

func (f *fakePlanRepo) GetActiveByTraineeID(_ context.Context, traineeID primitive.ObjectID) (*domain.TrainingPlan, error) {
	for _, plan := range f.plans {
		if plan.TraineeID == traineeID && plan.IsActive {
			copied := *plan
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) GetByTraineeAndTrainerID(_ context.Context, traineeID, trainerID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	var out []domain.TrainingPlan
	for _, plan := range f.plans {
		if plan.TraineeID == traineeID && plan.TrainerID == trainerID {
			out = append(out, *plan)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) Update(_ context.Context, plan *domain.TrainingPlan) error {
	if _, ok := f.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *plan
	f.plans[plan.ID] = &copied
	f.log.add("plan.update")
	return nil
}

func (f *fakePlanRepo) Delete(_ context.Context, planID, trainerID primitive.ObjectID) error {
	delete(f.plans, planID)
	return nil
}

type fakeDayRepo struct {
	log  *opLog
	days map[primitive.ObjectID]*domain.PlanDay
}

func (f *fakeDayRepo) Create(_ context.Context, day *domain.PlanDay) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	copied := *day
	copied.ID = id
	f.days[id] = &copied
	f.log.add("day.create:%s", day.Name)
	return id, nil
}

func (f *fakeDayRepo) GetByPlanID(_ context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	var out []domain.PlanDay
	for _, day := range f.days {
		if day.PlanID == planID {
			out = append(out, *day)
		}
	}
	return out, nil
}

func (f *fakeDayRepo) Update(_ context.Context, day *domain.PlanDay) error {
	if _, ok := f.days[day.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *day
	f.days[day.ID] = &copied
	f.log.add("day.update:%s", day.Name)
	return nil
}

func (f *fakeDayRepo) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) error {
	for _, id := range ids {
		delete(f.days, id)
	}
	f.log.add("day.delete:%d", len(ids))
	return nil
}

type fakePlanExerciseRepo struct {
	log       *opLog
	exercises map[primitive.ObjectID]*domain.PlanExercise
}

func (f *fakePlanExerciseRepo) Create(_ context.Context, ex *domain.PlanExercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	copied := *ex
	copied.ID = id
	f.exercises[id] = &copied
	f.log.add("exercise.create")
	return id, nil
}

func (f *fakePlanExerciseRepo) GetByDayID(_ context.Context, dayID primitive.ObjectID) ([]domain.PlanExercise, error) {
	var out []domain.PlanExercise
	for _, ex := range f.exercises {
		if ex.DayID == dayID {
			out = append(out, *ex)
		}
	}
	return out, nil
}

func (f *fakePlanExerciseRepo) Update(_ context.Context, ex *domain.PlanExercise) error {
	if _, ok := f.exercises[ex.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *ex
	f.exercises[ex.ID] = &copied
	f.log.add("exercise.update")
	return nil
}

func (f *fakePlanExerciseRepo) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) error {
	for _, id := range ids {
		delete(f.exercises, id)
	}
	f.log.add("exercise.delete:%d", len(ids))
	return nil
}

func (f *fakePlanExerciseRepo) DeleteByDayIDs(_ context.Context, dayIDs []primitive.ObjectID) error {
	for _, ex := range f.exercises {
		for _, dayID := range dayIDs {
			if ex.DayID == dayID {
				delete(f.exercises, ex.ID)
			}
		}
	}
	f.log.add("exercise.deleteByDay:%d", len(dayIDs))
	return nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	// Store a copy so later mutations of the caller's struct (e.g. the
	// service blanking PasswordHash) don't alter the stored record, matching
	// the real repository's persistence semantics.
	stored := *user
	f.users[user.ID] = &stored
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) AddTraineeIDToTrainer(_ context.Context, trainerID, traineeID primitive.ObjectID) error {
	trainer, ok := f.users[trainerID]
	if !ok {
		return repository.ErrNotFound
	}
	trainer.TraineeIDs = append(trainer.TraineeIDs, traineeID)
	return nil
}

func (f *fakeUserRepo) GetTraineesByTrainerID(_ context.Context, trainerID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.TrainerID != nil && *u.TrainerID == trainerID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SetTrainerForTrainee(_ context.Context, traineeID, trainerID primitive.ObjectID) error {
	trainee, ok := f.users[traineeID]
	if !ok {
		return repository.ErrNotFound
	}
	trainee.TrainerID = &trainerID
	return nil
}

// --- Fixture ---

type planFixture struct {
	log       *opLog
	plans     *fakePlanRepo
	days      *fakeDayRepo
	exercises *fakePlanExerciseRepo
	users     *fakeUserRepo
	service   PlanService

	trainerID primitive.ObjectID
	traineeID primitive.ObjectID
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()
	log := &opLog{}
	f := &planFixture{
		log:       log,
		plans:     &fakePlanRepo{log: log, plans: map[primitive.ObjectID]*domain.TrainingPlan{}},
		days:      &fakeDayRepo{log: log, days: map[primitive.ObjectID]*domain.PlanDay{}},
		exercises: &fakePlanExerciseRepo{log: log, exercises: map[primitive.ObjectID]*domain.PlanExercise{}},
		users:     &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}},
	}
	f.service = NewPlanService(f.plans, f.days, f.exercises, f.users)

	trainer := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainer, Name: "Coach"}
	f.users.users[trainer.ID] = trainer
	f.trainerID = trainer.ID

	trainee := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainee, Name: "Anna", TrainerID: &trainer.ID}
	f.users.users[trainee.ID] = trainee
	f.traineeID = trainee.ID
	return f
}

func (f *planFixture) newTree() *planner.Plan {
	day := planner.NewDay(1, "Upper")
	ex := planner.NewExercise(primitive.NewObjectID(), 1)
	ex.Sets = []planner.Set{{Weight: 60, Reps: 8}}
	day.Exercises = []planner.Exercise{ex}
	return &planner.Plan{
		TraineeID:       f.traineeID,
		Name:            "Block 1",
		WeeklyFrequency: 2,
		IsActive:        true,
		Days:            []planner.Day{day},
	}
}

// --- Tests ---

func TestSavePlanCreatesEverythingOnFirstSave(t *testing.T) {
	f := newPlanFixture(t)

	saved, err := f.service.SavePlan(context.Background(), f.trainerID, f.newTree())
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.NotEqual(t, primitive.NilObjectID, saved.ID)
	require.Len(t, saved.Days, 1)
	assert.NotEqual(t, primitive.NilObjectID, saved.Days[0].ID)
	require.Len(t, saved.Days[0].Exercises, 1)
	assert.Equal(t, []string{"plan.create", "day.create:Upper", "exercise.create"}, f.log.ops)
}

func TestSavePlanUnchangedResaveWritesNothing(t *testing.T) {
	f := newPlanFixture(t)

	saved, err := f.service.SavePlan(context.Background(), f.trainerID, f.newTree())
	require.NoError(t, err)

	f.log.ops = nil
	_, err = f.service.SavePlan(context.Background(), f.trainerID, saved)
	require.NoError(t, err)

	assert.Empty(t, f.log.ops, "unchanged re-save must issue no writes")
}

func TestSavePlanPersistsDateRange(t *testing.T) {
	f := newPlanFixture(t)
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 2, 0)

	tree := f.newTree()
	tree.StartDate = &start
	tree.EndDate = &end

	saved, err := f.service.SavePlan(context.Background(), f.trainerID, tree)
	require.NoError(t, err)
	require.NotNil(t, saved.StartDate)
	require.NotNil(t, saved.EndDate)
	assert.True(t, saved.StartDate.Equal(start))
	assert.True(t, saved.EndDate.Equal(end))

	// Shifting the end date is a root-only change: one plan write, nothing else.
	end2 := end.AddDate(0, 1, 0)
	saved.EndDate = &end2

	f.log.ops = nil
	saved, err = f.service.SavePlan(context.Background(), f.trainerID, saved)
	require.NoError(t, err)
	assert.Equal(t, []string{"plan.update"}, f.log.ops)
	require.NotNil(t, saved.EndDate)
	assert.True(t, saved.EndDate.Equal(end2))
}

func TestSavePlanAppliesExerciseDeletesBeforeWrites(t *testing.T) {
	f := newPlanFixture(t)
	saved, err := f.service.SavePlan(context.Background(), f.trainerID, f.newTree())
	require.NoError(t, err)

	// Replace the day's only exercise with a fresh one.
	fresh := planner.NewExercise(primitive.NewObjectID(), 1)
	fresh.Sets = []planner.Set{{Weight: 45, Reps: 10}}
	saved.Days[0].Exercises = []planner.Exercise{fresh}

	f.log.ops = nil
	_, err = f.service.SavePlan(context.Background(), f.trainerID, saved)
	require.NoError(t, err)

	assert.Equal(t, []string{"exercise.delete:1", "exercise.create"}, f.log.ops)
}

func TestSavePlanDayDeletesRunLast(t *testing.T) {
	f := newPlanFixture(t)
	tree := f.newTree()
	dayB := planner.NewDay(2, "Lower")
	exB := planner.NewExercise(primitive.NewObjectID(), 1)
	exB.Sets = []planner.Set{{Weight: 100, Reps: 5}}
	dayB.Exercises = []planner.Exercise{exB}
	tree.Days = append(tree.Days, dayB)

	saved, err := f.service.SavePlan(context.Background(), f.trainerID, tree)
	require.NoError(t, err)
	require.Len(t, saved.Days, 2)

	// Drop Lower, add Push: the insert must land before the delete.
	dayC := planner.NewDay(2, "Push")
	exC := planner.NewExercise(primitive.NewObjectID(), 1)
	exC.Sets = []planner.Set{{Weight: 30, Reps: 12}}
	dayC.Exercises = []planner.Exercise{exC}

	var upper planner.Day
	for _, d := range saved.Days {
		if d.Name == "Upper" {
			upper = d
		}
	}
	saved.Days = []planner.Day{upper, dayC}

	f.log.ops = nil
	_, err = f.service.SavePlan(context.Background(), f.trainerID, saved)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"day.create:Push",
		"exercise.create",
		"exercise.deleteByDay:1",
		"day.delete:1",
	}, f.log.ops)
}

func TestSavePlanValidationFailureTouchesNoStorage(t *testing.T) {
	f := newPlanFixture(t)
	tree := f.newTree()
	rpe := 11.0
	tree.Days[0].Exercises[0].Sets[0].RPE = &rpe

	_, err := f.service.SavePlan(context.Background(), f.trainerID, tree)
	require.Error(t, err)

	var vErr *planner.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, f.log.ops, "invalid plans must be rejected before any storage call")
}

func TestSavePlanRejectsUnmanagedTrainee(t *testing.T) {
	f := newPlanFixture(t)
	stranger := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainee, Name: "Vlad"}
	f.users.users[stranger.ID] = stranger

	tree := f.newTree()
	tree.TraineeID = stranger.ID

	_, err := f.service.SavePlan(context.Background(), f.trainerID, tree)
	assert.ErrorIs(t, err, ErrTraineeNotManaged)
}

func TestSavePlanRejectsForeignPlan(t *testing.T) {
	f := newPlanFixture(t)
	saved, err := f.service.SavePlan(context.Background(), f.trainerID, f.newTree())
	require.NoError(t, err)

	other := &domain.User{ID: primitive.NewObjectID(), Role: domain.RoleTrainer, Name: "Rival"}
	f.users.users[other.ID] = other

	_, err = f.service.SavePlan(context.Background(), other.ID, saved)
	assert.Error(t, err)
}

func TestGetPlanForTraineeReturnsActivePlanTree(t *testing.T) {
	f := newPlanFixture(t)
	_, err := f.service.SavePlan(context.Background(), f.trainerID, f.newTree())
	require.NoError(t, err)

	tree, err := f.service.GetPlanForTrainee(context.Background(), f.trainerID, f.traineeID)
	require.NoError(t, err)
	require.Len(t, tree.Days, 1)
	assert.Equal(t, "Upper", tree.Days[0].Name)
	require.Len(t, tree.Days[0].Exercises, 1)
	assert.Len(t, tree.Days[0].Exercises[0].Sets, 1)
}
