package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/hvargas/task-management-api/internal/models"
	"github.com/hvargas/task-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidStatus          = errors.New("invalid task status")
	ErrNegativeCost           = errors.New("cost cannot be negative")
	ErrNegativeEstimatedHours = errors.New("estimated hours cannot be negative")
)

// TaskService handles the task lifecycle. Every mutating operation runs as
// one database transaction covering the task row, its assignment rows, and
// the per-user statistics adjustments, so partial effects are never
// persisted or observable.
type TaskService struct {
	db       *gorm.DB
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(db *gorm.DB, taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		db:       db,
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title           string
	Description     string
	EstimatedHours  float64
	DueDate         *time.Time
	Status          models.TaskStatus
	Cost            float64
	AssignedUserIDs []uint64
}

// UpdateTaskInput represents input for partially updating a task. Nil
// fields are left untouched. A non-nil AssignedUserIDs replaces the entire
// assignment set, even when empty.
type UpdateTaskInput struct {
	Title           *string
	Description     *string
	EstimatedHours  *float64
	DueDate         *time.Time
	Status          *models.TaskStatus
	Cost            *float64
	AssignedUserIDs *[]uint64
}

// Analytics summarizes the current task population
type Analytics struct {
	TotalTasks            int64   `json:"total_tasks"`
	CompletedTasks        int64   `json:"completed_tasks"`
	CompletionRate        float64 `json:"completion_rate"`
	AverageEstimatedHours float64 `json:"average_estimated_hours"`
}

// Create creates a task with its assignment set and applies the initial
// statistics contribution if the task starts out COMPLETED.
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusActive
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Cost < 0 {
		return nil, ErrNegativeCost
	}
	if input.EstimatedHours < 0 {
		return nil, ErrNegativeEstimatedHours
	}

	task := &models.Task{
		Title:          input.Title,
		Description:    input.Description,
		EstimatedHours: input.EstimatedHours,
		DueDate:        input.DueDate,
		Status:         input.Status,
		Cost:           input.Cost,
	}
	userIDs := uniqueUint64(input.AssignedUserIDs)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.taskRepo.WithTx(tx).Create(task, userIDs); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		created := *task
		created.Assignments = assignmentRows(task.ID, userIDs)

		return s.applyDeltas(tx, statsDeltas(nil, &created))
	})
	if err != nil {
		return nil, err
	}

	return s.taskRepo.FindByID(task.ID, "Assignments", "Assignments.User")
}

// Update applies a partial update to a task and reconciles the statistics
// of every user whose credit the transition affects.
func (s *TaskService) Update(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil && *input.Title == "" {
		return nil, ErrTitleEmpty
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Cost != nil && *input.Cost < 0 {
		return nil, ErrNegativeCost
	}
	if input.EstimatedHours != nil && *input.EstimatedHours < 0 {
		return nil, ErrNegativeEstimatedHours
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		taskRepo := s.taskRepo.WithTx(tx)

		oldTask, err := taskRepo.FindByIDForUpdate(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		fields := make(map[string]interface{})
		newTask := *oldTask

		if input.Title != nil {
			fields["title"] = *input.Title
			newTask.Title = *input.Title
		}
		if input.Description != nil {
			fields["description"] = *input.Description
			newTask.Description = *input.Description
		}
		if input.EstimatedHours != nil {
			fields["estimated_hours"] = *input.EstimatedHours
			newTask.EstimatedHours = *input.EstimatedHours
		}
		if input.DueDate != nil {
			fields["due_date"] = *input.DueDate
			newTask.DueDate = input.DueDate
		}
		if input.Status != nil {
			fields["status"] = *input.Status
			newTask.Status = *input.Status
		}
		if input.Cost != nil {
			fields["cost"] = *input.Cost
			newTask.Cost = *input.Cost
		}

		if len(fields) > 0 {
			if err := taskRepo.UpdateFields(taskID, fields); err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}
		}

		if input.AssignedUserIDs != nil {
			userIDs := uniqueUint64(*input.AssignedUserIDs)
			if err := taskRepo.ReplaceAssignments(taskID, userIDs); err != nil {
				return fmt.Errorf("failed to replace assignments: %w", err)
			}
			newTask.Assignments = assignmentRows(taskID, userIDs)
		}

		return s.applyDeltas(tx, statsDeltas(oldTask, &newTask))
	})
	if err != nil {
		return nil, err
	}

	return s.taskRepo.FindByID(taskID, "Assignments", "Assignments.User")
}

// Delete reverses the task's statistics contribution, removes its
// assignment rows, and deletes the task, all in one transaction.
func (s *TaskService) Delete(taskID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		taskRepo := s.taskRepo.WithTx(tx)

		task, err := taskRepo.FindByIDForUpdate(taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if err := s.applyDeltas(tx, statsDeltas(task, nil)); err != nil {
			return err
		}

		if err := taskRepo.DeleteAssignments(taskID); err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}

		if err := taskRepo.Delete(taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		return nil
	})
}

// Get returns a task with its assignments and assigned users
func (s *TaskService) Get(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignments", "Assignments.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// List returns tasks matching the filter, newest first
func (s *TaskService) List(filter repository.TaskFilter) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Analytics computes summary figures over the current task population
func (s *TaskService) Analytics() (*Analytics, error) {
	total, err := s.taskRepo.Count(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	completedStatus := models.TaskStatusCompleted
	completed, err := s.taskRepo.Count(&completedStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	avgHours, err := s.taskRepo.AverageEstimatedHours()
	if err != nil {
		return nil, fmt.Errorf("failed to average estimated hours: %w", err)
	}

	analytics := &Analytics{
		TotalTasks:            total,
		CompletedTasks:        completed,
		AverageEstimatedHours: avgHours,
	}
	if total > 0 {
		analytics.CompletionRate = float64(completed) / float64(total)
	}

	return analytics, nil
}

// applyDeltas issues one atomic relative increment per affected user.
// A missing user aborts the transaction with ErrUserNotFound so the caller
// sees the same not-found signal as for a missing task.
func (s *TaskService) applyDeltas(tx *gorm.DB, deltas map[uint64]StatsDelta) error {
	userRepo := s.userRepo.WithTx(tx)

	for userID, delta := range deltas {
		if err := userRepo.IncrementStats(userID, delta.CompletedDelta, delta.CostDelta); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to adjust statistics for user %d: %w", userID, err)
		}
	}

	return nil
}

func assignmentRows(taskID uint64, userIDs []uint64) []models.TaskAssignment {
	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{TaskID: taskID, UserID: userID}
	}
	return assignments
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
