package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// Valid reports whether the role is one of the known enum values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID    uint64   `gorm:"primarykey" json:"id"`
	Name  string   `gorm:"type:varchar(255);not null" json:"name"`
	Email string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role  UserRole `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`

	// Derived counters, maintained by the task lifecycle service. Only ever
	// written through relative increments so concurrent updates cannot lose
	// each other.
	CompletedTasksCount int64   `gorm:"not null;default:0" json:"completed_tasks_count"`
	TotalTasksCost      float64 `gorm:"not null;default:0" json:"total_tasks_cost"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assignments []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
}
