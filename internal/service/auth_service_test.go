package service

import (
	"context"
	"testing"
	"time"

	"ymfit/studio-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAuthFixture() (AuthService, *fakeUserRepo) {
	users := &fakeUserRepo{users: map[primitive.ObjectID]*domain.User{}}
	return NewAuthService(users, "test-secret", time.Hour), users
}

func TestRegisterTraineeDefaultsToOrdinalCounting(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), "Anna", "anna@example.com", "secret1", domain.RoleTrainee)
	require.NoError(t, err)
	assert.Equal(t, domain.CountingMethodOrdinal, user.CountingMethod)
}

func TestRegisterTrainerHasNoCountingMethod(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), "Coach", "coach@example.com", "secret1", domain.RoleTrainer)
	require.NoError(t, err)
	assert.Empty(t, user.CountingMethod)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "Anna", "anna@example.com", "secret1", domain.RoleTrainee)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other", "anna@example.com", "secret2", domain.RoleTrainee)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginReturnsTokenForRegisteredUser(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), "Anna", "anna@example.com", "secret1", domain.RoleTrainee)
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "anna@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Anna", user.Name)

	_, _, err = svc.Login(context.Background(), "anna@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}
