package models

import (
	"time"

	"github.com/pankajredekar/shopadmin/internal/permission"
)

// User is a staff account of the back office
type User struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"not null;size:255" json:"name"`
	Email            string          `gorm:"not null;uniqueIndex;size:255" json:"email"`
	Password         string          `gorm:"not null;size:255" json:"-"`
	Role             permission.Role `gorm:"size:50;index" json:"role"`
	IsBootstrapAdmin bool            `gorm:"not null;default:false" json:"is_bootstrap_admin"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// Can reports whether the user's role grants p
func (u *User) Can(p permission.Permission) bool {
	return permission.For(u.Role).Has(p)
}

// AccessToken is a revocable bearer credential issued at login
type AccessToken struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Name       string     `gorm:"size:255" json:"name"`
	ExpiresAt  time.Time  `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName returns the table name for AccessToken
func (AccessToken) TableName() string {
	return "access_tokens"
}
