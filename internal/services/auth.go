package services

import (
	"fmt"
	"strings"
	"time"

	"tipnplay/internal/models"
	"tipnplay/internal/utils"

	"github.com/golang-jwt/jwt"
)

// AuthService handles host registration, login and token validation
type AuthService struct {
	userRepo  UserRepositoryInterface
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepositoryInterface, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new host account
func (s *AuthService) Register(req *models.UserRegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	return s.userRepo.Create(email, passwordHash, req.DisplayName)
}

// Login verifies credentials and returns a signed token plus the host.
// Unknown emails and wrong passwords produce the same error so the endpoint
// does not leak which accounts exist.
func (s *AuthService) Login(req *models.UserLoginRequest) (string, *models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if err == models.ErrUserNotFound {
			return "", nil, models.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return "", nil, models.ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// GenerateToken mints a signed HS256 token for a host
func (s *AuthService) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := &jwt.StandardClaims{
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken verifies a token and returns the host ID it identifies
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", models.ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", models.ErrUnauthorized
	}

	return claims.Subject, nil
}

// GetProfile retrieves a host profile
func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile applies a host profile update
func (s *AuthService) UpdateProfile(userID string, req *models.UserUpdateRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.userRepo.Update(userID, req)
}
