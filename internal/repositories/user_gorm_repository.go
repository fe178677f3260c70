package repositories

import (
	"context"
	"fmt"

	"tokoshop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *GORMUserRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, column+" = ?", value).Error; err != nil {
		return nil, fmt.Errorf("user with %s %s: %w", column, value, translate(err))
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

// Update writes the profile, credential and role columns of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Select("email", "password", "full_name", "phone", "address", "role").
		Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a user.
func (r *GORMUserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns one page of users, newest first.
func (r *GORMUserRepository) List(ctx context.Context, page models.Page) ([]models.User, int64, error) {
	page = page.Normalize()
	var (
		users []models.User
		total int64
	)
	q := r.db.WithContext(ctx).Model(&models.User{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := q.Order("created_at DESC").Limit(page.Size).Offset(page.Offset()).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Count returns the number of users.
func (r *GORMUserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}
