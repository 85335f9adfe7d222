package models

import "time"

// User is a portal account referenced by assessments and results. Account
// management lives in the auth service; this model only carries the identity
// fields the assessment engine denormalizes into its responses.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleTPO identifies a training-and-placement officer account.
	RoleTPO = "tpo"
	// RoleStudent identifies a student account.
	RoleStudent = "student"
)

// IsTPO reports whether the user can author assessments.
func (u User) IsTPO() bool {
	return u.Role == RoleTPO
}
