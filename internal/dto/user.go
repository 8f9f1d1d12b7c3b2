package dto

import (
	"github.com/hvargas/task-management-api/internal/models"
)

// UserDTO represents a user in API responses, including the derived
// statistics counters.
type UserDTO struct {
	ID                  uint64          `json:"id"`
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Role                models.UserRole `json:"role"`
	CompletedTasksCount int64           `json:"completed_tasks_count"`
	TotalTasksCost      float64         `json:"total_tasks_cost"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                  user.ID,
		Name:                user.Name,
		Email:               user.Email,
		Role:                user.Role,
		CompletedTasksCount: user.CompletedTasksCount,
		TotalTasksCost:      user.TotalTasksCost,
	}
}

// ToUserDTOs converts a slice of User models to UserDTOs
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}
