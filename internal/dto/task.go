package dto

import (
	"time"

	"github.com/hvargas/task-management-api/internal/models"
)

// AssignedUserDTO is the user subset embedded in task responses
type AssignedUserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	EstimatedHours float64           `json:"estimated_hours"`
	DueDate        *time.Time        `json:"due_date"`
	Status         models.TaskStatus `json:"status"`
	Cost           float64           `json:"cost"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	AssignedUsers  []AssignedUserDTO `json:"assigned_users"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		EstimatedHours: task.EstimatedHours,
		DueDate:        task.DueDate,
		Status:         task.Status,
		Cost:           task.Cost,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		AssignedUsers:  []AssignedUserDTO{},
	}

	for _, assignment := range task.Assignments {
		dto.AssignedUsers = append(dto.AssignedUsers, AssignedUserDTO{
			ID:    assignment.UserID,
			Name:  assignment.User.Name,
			Email: assignment.User.Email,
		})
	}

	return dto
}

// ToTaskDTOs converts a slice of Task models to TaskDTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
