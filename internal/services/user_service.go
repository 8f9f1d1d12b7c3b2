package services

import (
	"errors"
	"fmt"

	"github.com/hvargas/task-management-api/internal/models"
	"github.com/hvargas/task-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrEmailRequired = errors.New("email is required")
	ErrInvalidRole   = errors.New("invalid user role")
	ErrEmailExists   = errors.New("email already exists")
)

// UserService handles user business logic
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Name  string
	Email string
	Role  models.UserRole
}

// Create creates a new user. Email uniqueness is enforced by the database;
// a duplicate surfaces as ErrEmailExists.
func (s *UserService) Create(input CreateUserInput) (*models.User, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if input.Email == "" {
		return nil, ErrEmailRequired
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	user := &models.User{
		Name:  input.Name,
		Email: input.Email,
		Role:  input.Role,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Get returns a user by ID
func (s *UserService) Get(userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// List returns users matching the filter, including their derived
// statistics counters.
func (s *UserService) List(filter repository.UserFilter) ([]models.User, error) {
	users, err := s.userRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}
