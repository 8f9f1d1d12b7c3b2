package repository

import (
	"strings"

	"github.com/hvargas/task-management-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *GormUserRepository) WithTx(tx *gorm.DB) UserRepository {
	return &GormUserRepository{db: tx}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users matching the filter
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, error) {
	var users []models.User

	query := r.db.Model(&models.User{})

	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Email != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(filter.Email)+"%")
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// IncrementStats applies a relative, atomic adjustment to a user's derived
// counters. The adjustment is issued as "x = x + ?" so concurrent
// transactions touching the same user never overwrite each other's deltas.
func (r *GormUserRepository) IncrementStats(userID uint64, completedDelta int64, costDelta float64) error {
	result := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"completed_tasks_count": gorm.Expr("completed_tasks_count + ?", completedDelta),
			"total_tasks_cost":      gorm.Expr("total_tasks_cost + ?", costDelta),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
