package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nivora-labs/bootcamp-api/internal/dto"
	"github.com/nivora-labs/bootcamp-api/internal/models"
	"github.com/nivora-labs/bootcamp-api/internal/repository"
)

// ErrUserNotFound indicates the user could not be located.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken indicates the email belongs to an existing account.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials indicates the email or password is wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService handles registration, login, and admin user provisioning.
type AuthService interface {
	// Register creates a student account. Self-service signup never
	// grants elevated roles.
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	// Login verifies credentials and issues a signed access token.
	Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error)
	// CreateUser provisions an account with an explicit role and emails
	// the generated temporary password to the new user.
	CreateUser(ctx context.Context, payload dto.CreateUserRequest) (dto.UserResponse, error)
	GetUser(ctx context.Context, id uint) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	notifier  Notifier
	secret    []byte
	tokenTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, notifier Notifier, secret string, tokenTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		notifier:  notifier,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	email := normalizeEmail(payload.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         payload.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("student registered")

	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(payload.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	loginAt := s.now()
	user.LastLoginAt = &loginAt
	if err := s.users.Update(ctx, &user); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to record last login time")
	}

	expiresAt := s.now().Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.TokenResponse{}, err
	}

	return dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *authService) CreateUser(ctx context.Context, payload dto.CreateUserRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}
	if !models.ValidRole(payload.Role) {
		return dto.UserResponse{}, errors.New("unknown role")
	}

	email := normalizeEmail(payload.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	password, err := generateTemporaryPassword()
	if err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         payload.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         payload.Role,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.notifier.Welcome(user.Email, user.Name, user.Role, password)

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user provisioned")

	return dto.NewUserResponse(user), nil
}

func (s *authService) GetUser(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateTemporaryPassword produces a random single-use password for
// admin-provisioned accounts.
func generateTemporaryPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
