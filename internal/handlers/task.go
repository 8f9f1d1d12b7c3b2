package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hvargas/task-management-api/internal/dto"
	apierrors "github.com/hvargas/task-management-api/internal/errors"
	"github.com/hvargas/task-management-api/internal/models"
	"github.com/hvargas/task-management-api/internal/repository"
	"github.com/hvargas/task-management-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a new task with its assignment set
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Title           string            `json:"title" binding:"required"`
		Description     string            `json:"description"`
		EstimatedHours  float64           `json:"estimated_hours"`
		DueDate         *time.Time        `json:"due_date"`
		Status          models.TaskStatus `json:"status"`
		Cost            float64           `json:"cost"`
		AssignedUserIDs []uint64          `json:"assigned_user_ids"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(services.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		EstimatedHours:  req.EstimatedHours,
		DueDate:         req.DueDate,
		Status:          req.Status,
		Cost:            req.Cost,
		AssignedUserIDs: req.AssignedUserIDs,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns tasks matching the optional query filters:
// due_date, title, assigned_user_id, user_name_or_email
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var filter repository.TaskFilter

	if dueDateStr := c.Query("due_date"); dueDateStr != "" {
		dueDate, err := parseDate(dueDateStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date")
			return
		}
		filter.DueDate = &dueDate
	}

	filter.Title = c.Query("title")
	filter.UserNameOrEmail = c.Query("user_name_or_email")

	if userIDStr := c.Query("assigned_user_id"); userIDStr != "" {
		userID, err := strconv.ParseUint(userIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_user_id")
			return
		}
		filter.AssignedUserID = &userID
	}

	tasks, err := h.taskService.List(filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title           *string            `json:"title"`
		Description     *string            `json:"description"`
		EstimatedHours  *float64           `json:"estimated_hours"`
		DueDate         *time.Time         `json:"due_date"`
		Status          *models.TaskStatus `json:"status"`
		Cost            *float64           `json:"cost"`
		AssignedUserIDs *[]uint64          `json:"assigned_user_ids"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Update(taskID, services.UpdateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		EstimatedHours:  req.EstimatedHours,
		DueDate:         req.DueDate,
		Status:          req.Status,
		Cost:            req.Cost,
		AssignedUserIDs: req.AssignedUserIDs,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task and reverses its statistics contribution
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(taskID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAnalytics returns summary figures over the current task population
func (h *TaskHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.taskService.Analytics()
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (h *TaskHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrNegativeCost),
		errors.Is(err, services.ErrNegativeEstimatedHours):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return id, true
}

// parseDate accepts RFC 3339 timestamps and plain dates
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
