package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
)

const testSecret = "test-signing-secret"

func newAuthFixture() (*fakeUserRepo, *fakeNotifier, AuthService) {
	users := &fakeUserRepo{users: map[uint]models.User{}}
	notifier := &fakeNotifier{}
	svc := NewAuthService(users, notifier, testSecret, time.Hour, testValidator(), testLogger())
	return users, notifier, svc
}

func TestRegisterAndLoginRoundtrip(t *testing.T) {
	_, _, svc := newAuthFixture()

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Ana",
		Email:    "  Ana@Example.com ",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", registered.Email)
	require.Equal(t, models.RoleStudent, registered.Role)

	token, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "ana@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	require.Equal(t, registered.ID, token.User.ID)

	parsed, err := jwt.Parse(token.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleStudent, claims["role"])
	require.EqualValues(t, registered.ID, claims["sub"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	_, _, svc := newAuthFixture()

	payload := dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "correct-horse-battery"}
	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	payload.Email = "ANA@example.com"
	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	_, _, svc := newAuthFixture()

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "correct-horse-battery"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	_, _, svc := newAuthFixture()

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserSendsTemporaryPassword(t *testing.T) {
	users, notifier, svc := newAuthFixture()

	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Name:  "Inge",
		Email: "inge@example.com",
		Role:  models.RoleInstructor,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleInstructor, created.Role)
	require.Equal(t, []string{"inge@example.com"}, notifier.welcomes)

	stored := users.users[created.ID]
	require.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterNeverGrantsElevatedRole(t *testing.T) {
	users, _, svc := newAuthFixture()

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Sneaky",
		Email:    "sneaky@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, users.users[registered.ID].Role)
}
