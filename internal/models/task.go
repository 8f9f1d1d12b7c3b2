package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "ACTIVE"
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// Valid reports whether the status is one of the known enum values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusActive, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	EstimatedHours float64    `gorm:"not null;default:0" json:"estimated_hours"`
	DueDate        *time.Time `json:"due_date"`
	Status         TaskStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	Cost           float64    `gorm:"not null;default:0" json:"cost"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}

// AssignedUserIDs returns the user IDs currently assigned to the task.
// Assignments must be loaded.
func (t *Task) AssignedUserIDs() []uint64 {
	ids := make([]uint64, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}
