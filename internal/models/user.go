package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents an account on the store.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username  string         `json:"username" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=3,max=100"`
	Email     string         `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email,max=255"`
	Password  string         `json:"password,omitempty" gorm:"type:varchar(255);not null" validate:"required,min=6,max=72"` // bcrypt hash once stored
	FullName  string         `json:"full_name" gorm:"type:varchar(150)" validate:"omitempty,max=150"`
	Phone     string         `json:"phone" gorm:"type:varchar(30)" validate:"omitempty,max=30"`
	Address   string         `json:"address" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Role      string         `json:"role" gorm:"type:varchar(20);not null;default:customer;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized returns a copy safe to send to clients.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
