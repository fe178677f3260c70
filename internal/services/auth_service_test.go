package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"tokoshop/internal/cache"
	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
	"tokoshop/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, page models.Page) ([]models.User, int64, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	// Test successful registration
	user := &models.User{Username: "testuser", Email: "Test@Example.com", Password: "password123", Role: models.RoleAdmin}
	mockRepo.On("GetByUsername", ctx, "testuser").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(ctx, user)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role, "self-registration never grants admin")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Test username already taken
	mockRepo.On("GetByUsername", ctx, "testuser").Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(ctx, &models.User{Username: "testuser", Email: "x@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, services.ErrUsernameTaken))
	assert.Contains(t, err.Error(), "username 'testuser'")

	// Test email already registered
	mockRepo.On("GetByUsername", ctx, "other").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(ctx, &models.User{Username: "other", Email: "test@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, services.ErrEmailTaken))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_PasswordLengthCountsBytes(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)
	multibyte := strings.Repeat("é", 72)

	err := authService.RegisterUser(ctx, &models.User{Username: "accent", Email: "accent@example.com", Password: multibyte})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	assert.ErrorIs(t, authService.ChangePassword(ctx, "u1", "oldpass1", multibyte), services.ErrInvalidInput)

	// exactly 72 bytes is accepted
	user := &models.User{ID: "u1", Username: "accent", Password: hashed(t, "oldpass1")}
	mockRepo.On("GetByID", ctx, "u1").Return(user, nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()
	assert.NoError(t, authService.ChangePassword(ctx, "u1", "oldpass1", strings.Repeat("é", 36)))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: hashed(t, "password123"),
		Role:     models.RoleAdmin,
	}

	// Test successful login by username
	mockRepo.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()
	token, profile, err := authService.LoginUser(ctx, "testuser", "password123", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Empty(t, profile.Password)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])
	assert.Equal(t, models.RoleAdmin, claims["role"])

	// Test successful login by email
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
	_, _, err = authService.LoginUser(ctx, "TEST@example.com", "password123", "10.0.0.1")
	assert.NoError(t, err)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByUsername", ctx, "testuser").Return(user, nil).Once()
	_, _, err = authService.LoginUser(ctx, "testuser", "wrongpassword", "10.0.0.1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByUsername", ctx, "nonexistentuser").Return(nil, repositories.ErrNotFound).Once()
	_, _, err = authService.LoginUser(ctx, "nonexistentuser", "password123", "10.0.0.1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginRateLimited(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret,
		services.WithLoginRateLimit(cache.NewMemory(), 2, time.Minute))

	mockRepo.On("GetByUsername", ctx, "bob").Return(nil, repositories.ErrNotFound).Times(2)
	for i := 0; i < 2; i++ {
		_, _, err := authService.LoginUser(ctx, "bob", "nope", "10.0.0.9")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	}
	_, _, err := authService.LoginUser(ctx, "bob", "nope", "10.0.0.9")
	assert.ErrorIs(t, err, services.ErrRateLimited)

	// another client is counted separately
	mockRepo.On("GetByUsername", ctx, "bob").Return(nil, repositories.ErrNotFound).Once()
	_, _, err = authService.LoginUser(ctx, "bob", "nope", "10.0.0.10")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	// Test valid token
	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test token signed with another secret
	forged, _ := token.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(forged)
	assert.Error(t, err)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)
	user := &models.User{ID: "u1", Username: "alice", Password: hashed(t, "oldpass1")}

	mockRepo.On("GetByID", ctx, "u1").Return(user, nil).Once()
	err := authService.ChangePassword(ctx, "u1", "wrong", "newpass1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	assert.ErrorIs(t, authService.ChangePassword(ctx, "u1", "oldpass1", "123"), services.ErrInvalidInput)

	mockRepo.On("GetByID", ctx, "u1").Return(user, nil).Once()
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("newpass1")) == nil
	})).Return(nil).Once()
	assert.NoError(t, authService.ChangePassword(ctx, "u1", "oldpass1", "newpass1"))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	mockRepo.On("GetByID", ctx, "u1").Return(&models.User{ID: "u1", Email: "a@example.com", Password: "hash"}, nil).Once()
	mockRepo.On("GetByEmail", ctx, "b@example.com").Return(&models.User{ID: "u2"}, nil).Once()
	_, err := authService.UpdateProfile(ctx, "u1", services.ProfileUpdate{Email: "b@example.com"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	mockRepo.On("GetByID", ctx, "u1").Return(&models.User{ID: "u1", Email: "a@example.com", Password: "hash"}, nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()
	got, err := authService.UpdateProfile(ctx, "u1", services.ProfileUpdate{Email: "a@example.com", FullName: " Alice "})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FullName)
	assert.Empty(t, got.Password)
	mockRepo.AssertExpectations(t)
}
