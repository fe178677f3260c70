package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tokoshop/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]models.User)}
}

func (r *MockUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

func (r *MockUserRepository) find(match func(models.User) bool, what string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", what, ErrNotFound)
}

func (r *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id }, id)
}

func (r *MockUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username }, username)
}

func (r *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email }, email)
}

func (r *MockUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
	}
	existing.Email = user.Email
	existing.Password = user.Password
	existing.FullName = user.FullName
	existing.Phone = user.Phone
	existing.Address = user.Address
	existing.Role = user.Role
	existing.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = existing
	return nil
}

func (r *MockUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

func (r *MockUserRepository) List(_ context.Context, page models.Page) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return paginate(users, page), int64(len(users)), nil
}

func (r *MockUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
