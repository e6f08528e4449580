package services

import (
	"testing"
	"time"

	"tipnplay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() (*AuthService, *MockUserRepository) {
	userRepo := NewMockUserRepository()
	return NewAuthService(userRepo, "test-jwt-secret", time.Hour), userRepo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	service, _ := newTestAuthService()

	user, err := service.Register(&models.UserRegisterRequest{
		Email:       "DJ@Test.Local",
		Password:    "correct-horse-battery",
		DisplayName: "DJ Test",
	})
	require.NoError(t, err)
	assert.Equal(t, "dj@test.local", user.Email, "emails are normalized to lowercase")
	assert.NotEqual(t, "correct-horse-battery", user.PasswordHash)

	token, loggedIn, err := service.Login(&models.UserLoginRequest{
		Email:    "dj@test.local",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	userID, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	service, _ := newTestAuthService()

	req := &models.UserRegisterRequest{
		Email:       "dj@test.local",
		Password:    "correct-horse-battery",
		DisplayName: "DJ Test",
	}
	_, err := service.Register(req)
	require.NoError(t, err)

	_, err = service.Register(req)
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	service, _ := newTestAuthService()

	_, err := service.Register(&models.UserRegisterRequest{
		Email:       "dj@test.local",
		Password:    "correct-horse-battery",
		DisplayName: "DJ Test",
	})
	require.NoError(t, err)

	// Unknown email and wrong password must be indistinguishable
	_, _, err = service.Login(&models.UserLoginRequest{Email: "nobody@test.local", Password: "whatever"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, _, err = service.Login(&models.UserLoginRequest{Email: "dj@test.local", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	service, _ := newTestAuthService()

	_, err := service.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Token signed with a different secret is rejected
	other := NewAuthService(NewMockUserRepository(), "other-secret", time.Hour)
	token, err := other.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	userRepo := NewMockUserRepository()
	service := NewAuthService(userRepo, "test-jwt-secret", -time.Minute)

	token, err := service.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestEventService_GetEventStats_Ownership(t *testing.T) {
	tipRepo := NewMockTipRepository()
	eventRepo := NewMockEventRepository()
	userRepo := NewMockUserRepository()
	service := NewEventService(eventRepo, tipRepo)

	host, err := userRepo.Create("dj@test.local", "hash", "DJ Test")
	require.NoError(t, err)
	event, err := eventRepo.Create(host.ID, &models.EventCreateRequest{Name: "Friday Set"})
	require.NoError(t, err)

	_, err = service.GetEventStats(event.ID, host.ID)
	assert.NoError(t, err)

	_, err = service.GetEventStats(event.ID, "someone-else")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
