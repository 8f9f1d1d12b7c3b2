package repository

import (
	"time"

	"github.com/hvargas/task-management-api/internal/models"
	"gorm.io/gorm"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction
	WithTx(tx *gorm.DB) TaskRepository

	// Create inserts a task and one assignment row per user ID
	Create(task *models.Task, userIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByIDForUpdate reads a task and its assignments under a row lock,
	// so concurrent lifecycle operations on the same task serialize
	FindByIDForUpdate(id uint64) (*models.Task, error)

	// List retrieves tasks matching the filter, newest first
	List(filter TaskFilter) ([]models.Task, error)

	// UpdateFields applies a partial column update to a task
	UpdateFields(id uint64, fields map[string]interface{}) error

	// ReplaceAssignments swaps the entire assignment set of a task
	ReplaceAssignments(taskID uint64, userIDs []uint64) error

	// DeleteAssignments removes all assignment rows of a task
	DeleteAssignments(taskID uint64) error

	// Delete removes the task row
	Delete(id uint64) error

	// Count counts tasks, optionally restricted to a status
	Count(status *models.TaskStatus) (int64, error)

	// AverageEstimatedHours computes the average estimated hours over all tasks
	AverageEstimatedHours() (float64, error)
}

// TaskFilter holds filtering options for listing tasks. Unset fields impose
// no constraint; set fields are AND-combined.
type TaskFilter struct {
	// DueDate matches tasks due within the UTC calendar day of the given
	// instant (inclusive start, exclusive next-day boundary)
	DueDate *time.Time

	// Title is a case-insensitive substring match
	Title string

	// AssignedUserID matches tasks assigned to that user
	AssignedUserID *uint64

	// UserNameOrEmail matches tasks assigned to a user whose name or email
	// case-insensitively contains the string
	UserNameOrEmail string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction
	WithTx(tx *gorm.DB) UserRepository

	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// List retrieves users matching the filter
	List(filter UserFilter) ([]models.User, error)

	// IncrementStats applies a relative, atomic adjustment to a user's
	// derived counters. Returns gorm.ErrRecordNotFound if the user does
	// not exist.
	IncrementStats(userID uint64, completedDelta int64, costDelta float64) error
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Name  string
	Email string
	Role  *models.UserRole
}
