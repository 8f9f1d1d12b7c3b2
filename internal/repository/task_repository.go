package repository

import (
	"strings"
	"time"

	"github.com/hvargas/task-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *GormTaskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: tx}
}

// Create inserts a task and one assignment row per user ID
func (r *GormTaskRepository) Create(task *models.Task, userIDs []uint64) error {
	if err := r.db.Create(task).Error; err != nil {
		return err
	}

	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID: task.ID,
			UserID: userID,
		}
	}

	return r.db.Create(&assignments).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDForUpdate reads a task and its assignments under a row lock.
// SQLite has no SELECT ... FOR UPDATE; its single-writer model already
// serializes transactions, so the clause is skipped there.
func (r *GormTaskRepository) FindByIDForUpdate(id uint64) (*models.Task, error) {
	var task models.Task

	query := r.db.Preload("Assignments")
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks matching the filter, newest first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.DueDate != nil {
		day := filter.DueDate.UTC()
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		end := start.Add(24 * time.Hour)
		query = query.Where("tasks.due_date >= ? AND tasks.due_date < ?", start, end)
	}
	if filter.Title != "" {
		query = query.Where("LOWER(tasks.title) LIKE ?", "%"+strings.ToLower(filter.Title)+"%")
	}
	if filter.AssignedUserID != nil {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedUserID)
		query = query.Where("EXISTS (?)", assignmentSubQuery)
	}
	if filter.UserNameOrEmail != "" {
		needle := "%" + strings.ToLower(filter.UserNameOrEmail) + "%"
		userSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Joins("JOIN users ON users.id = task_assignments.user_id").
			Where("task_assignments.task_id = tasks.id").
			Where("LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?", needle, needle)
		query = query.Where("EXISTS (?)", userSubQuery)
	}

	err := query.
		Order("tasks.created_at DESC").
		Preload("Assignments").
		Preload("Assignments.User").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// UpdateFields applies a partial column update to a task
func (r *GormTaskRepository) UpdateFields(id uint64, fields map[string]interface{}) error {
	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceAssignments swaps the entire assignment set of a task. An empty
// set is valid and leaves the task unassigned.
func (r *GormTaskRepository) ReplaceAssignments(taskID uint64, userIDs []uint64) error {
	if err := r.DeleteAssignments(taskID); err != nil {
		return err
	}

	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID: taskID,
			UserID: userID,
		}
	}

	return r.db.Create(&assignments).Error
}

// DeleteAssignments removes all assignment rows of a task
func (r *GormTaskRepository) DeleteAssignments(taskID uint64) error {
	return r.db.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error
}

// Delete removes the task row
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// Count counts tasks, optionally restricted to a status
func (r *GormTaskRepository) Count(status *models.TaskStatus) (int64, error) {
	var count int64

	query := r.db.Model(&models.Task{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	err := query.Count(&count).Error
	return count, err
}

// AverageEstimatedHours computes the average estimated hours over all tasks
func (r *GormTaskRepository) AverageEstimatedHours() (float64, error) {
	var avg float64
	err := r.db.Model(&models.Task{}).
		Select("COALESCE(AVG(estimated_hours), 0)").
		Scan(&avg).Error
	return avg, err
}
