package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperator UserRole = "operator"
	UserRoleWorker   UserRole = "worker"
)

// User is a gig worker registered with the assistant. Platforms holds
// the delivery/ride platforms linked to the account, always in
// canonical Latin-script form.
type User struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name"`
	Email             string    `json:"email" gorm:"uniqueIndex"`
	Phone             string    `json:"phone,omitempty" gorm:"uniqueIndex"`
	PhoneVerified     bool      `json:"phone_verified"`
	Password          string    `json:"-"` // Hashed password
	Role              UserRole  `json:"role"`
	Status            string    `json:"status"` // Active, Inactive, Blocked
	Platforms         []string  `json:"platforms" gorm:"serializer:json"`
	PreferredLanguage string    `json:"preferred_language" gorm:"default:hi"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
