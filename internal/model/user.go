package model

import "time"

// User is an admin account. There is no public registration; the initial
// admin is seeded at bootstrap from config.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName     string     `gorm:"size:255;not null" json:"full_name"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
