package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tokoshop/internal/cache"
	"tokoshop/internal/models"
	"tokoshop/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	// bcrypt rejects longer inputs; the limit is in bytes, not characters.
	maxPasswordBytes = 72
)

func checkPassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrInvalidInput)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes: %w", maxPasswordBytes, ErrInvalidInput)
	}
	return nil
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid

	limiter    cache.Store
	rateLimit  int
	rateWindow time.Duration
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

func WithTokenTTL(d time.Duration) AuthOption {
	return func(s *AuthService) {
		if d > 0 {
			s.tokenDurat = d
		}
	}
}

// WithLoginRateLimit caps login attempts per client and identifier.
func WithLoginRateLimit(store cache.Store, limit int, window time.Duration) AuthOption {
	return func(s *AuthService) {
		s.limiter, s.rateLimit, s.rateWindow = store, limit, window
	}
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUser registers a new customer, hashes their password, and saves them to the database.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := checkPassword(user.Password); err != nil {
		return err
	}

	if _, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil {
		return fmt.Errorf("username '%s': %w", user.Username, ErrUsernameTaken)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return fmt.Errorf("email '%s': %w", user.Email, ErrEmailTaken)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.Role = models.RoleCustomer

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("username '%s': %w", user.Username, ErrUsernameTaken)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates by username or email and returns a JWT token.
func (s *AuthService) LoginUser(ctx context.Context, identifier, password, clientIP string) (string, *models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if err := s.checkRateLimit(ctx, clientIP, identifier); err != nil {
		return "", nil, err
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	tokenString, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	sanitized := user.Sanitized()
	return tokenString, &sanitized, nil
}

func (s *AuthService) checkRateLimit(ctx context.Context, clientIP, identifier string) error {
	if s.limiter == nil || s.rateLimit <= 0 {
		return nil
	}
	key := "login:" + clientIP + ":" + strings.ToLower(identifier)
	ok, err := s.limiter.Allow(ctx, key, s.rateLimit, s.rateWindow)
	if err != nil {
		slog.WarnContext(ctx, "login rate limiter unavailable", "error", err)
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		slog.Debug("token validation failed", "error", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// GetProfile returns the user without the password hash.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// ProfileUpdate carries the self-editable profile fields.
type ProfileUpdate struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"omitempty,max=150"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Address  string `json:"address" validate:"omitempty,max=500"`
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != user.Email {
		if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
			return nil, fmt.Errorf("email '%s': %w", email, ErrEmailTaken)
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
	}

	user.Email = email
	user.FullName = strings.TrimSpace(in.FullName)
	user.Phone = strings.TrimSpace(in.Phone)
	user.Address = strings.TrimSpace(in.Address)
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email '%s': %w", email, ErrEmailTaken)
		}
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := checkPassword(next); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}
