package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hvargas/task-management-api/internal/models"
	"github.com/hvargas/task-management-api/internal/repository"
	"github.com/hvargas/task-management-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	taskHandler := NewTaskHandler(services.NewTaskService(suite.db, taskRepo, userRepo))
	userHandler := NewUserHandler(services.NewUserService(userRepo))

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	suite.router = gin.New()
	api := suite.router.Group("/api")
	tasks := api.Group("/tasks")
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/analytics", taskHandler.GetAnalytics)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}
	users := api.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.POST("", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
	}
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(name, email string) *models.User {
	user := &models.User{
		Name:  name,
		Email: email,
		Role:  models.RoleUser,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) performRequest(method, url string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("Ana", "ana@example.com")

	w := suite.performRequest("POST", "/api/tasks", gin.H{
		"title":             "Hacer comida",
		"description":       "Sopa con verduras",
		"estimated_hours":   2,
		"cost":              100,
		"status":            "ACTIVE",
		"assigned_user_ids": []uint64{user.ID},
	})

	suite.Require().Equal(http.StatusCreated, w.Code)
	body := suite.decodeBody(w)
	assert.Equal(suite.T(), "Hacer comida", body["title"])
	assert.Equal(suite.T(), "ACTIVE", body["status"])

	assignedUsers, ok := body["assigned_users"].([]interface{})
	suite.Require().True(ok)
	suite.Require().Len(assignedUsers, 1)
}

// TestCreateTask_MissingTitle tests validation of the required title
func (suite *TaskHandlerTestSuite) TestCreateTask_MissingTitle() {
	w := suite.performRequest("POST", "/api/tasks", gin.H{
		"description": "sin titulo",
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_UnknownAssignee tests that assigning a nonexistent user fails
func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownAssignee() {
	w := suite.performRequest("POST", "/api/tasks", gin.H{
		"title":             "Tarea",
		"status":            "COMPLETED",
		"assigned_user_ids": []uint64{999},
	})

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	// Nothing may be left behind by the rolled-back transaction
	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Zero(suite.T(), count)
}

// TestGetTask_NotFound tests fetching a nonexistent task
func (suite *TaskHandlerTestSuite) TestGetTask_NotFound() {
	w := suite.performRequest("GET", "/api/tasks/42", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateTask_CompletionUpdatesUserStats tests that completing a task
// through the API is reflected in the assignees' statistics
func (suite *TaskHandlerTestSuite) TestUpdateTask_CompletionUpdatesUserStats() {
	user := suite.createTestUser("Ana", "ana@example.com")

	w := suite.performRequest("POST", "/api/tasks", gin.H{
		"title":             "Tarea",
		"cost":              100,
		"assigned_user_ids": []uint64{user.ID},
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	taskID := uint64(suite.decodeBody(w)["id"].(float64))

	w = suite.performRequest("PATCH", fmt.Sprintf("/api/tasks/%d", taskID), gin.H{
		"status": "COMPLETED",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.performRequest("GET", fmt.Sprintf("/api/users/%d", user.ID), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	body := suite.decodeBody(w)
	assert.Equal(suite.T(), float64(1), body["completed_tasks_count"])
	assert.Equal(suite.T(), float64(100), body["total_tasks_cost"])
}

// TestUpdateTask_NotFound tests updating a nonexistent task
func (suite *TaskHandlerTestSuite) TestUpdateTask_NotFound() {
	w := suite.performRequest("PATCH", "/api/tasks/42", gin.H{"title": "x"})
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestDeleteTask_Success tests task deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	w := suite.performRequest("POST", "/api/tasks", gin.H{"title": "Tarea"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	taskID := uint64(suite.decodeBody(w)["id"].(float64))

	w = suite.performRequest("DELETE", fmt.Sprintf("/api/tasks/%d", taskID), nil)
	assert.Equal(suite.T(), http.StatusNoContent, w.Code)

	w = suite.performRequest("DELETE", fmt.Sprintf("/api/tasks/%d", taskID), nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestListTasks_TitleFilter tests the case-insensitive title filter
func (suite *TaskHandlerTestSuite) TestListTasks_TitleFilter() {
	w := suite.performRequest("POST", "/api/tasks", gin.H{"title": "Sopa con verduras"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	w = suite.performRequest("POST", "/api/tasks", gin.H{"title": "Otra cosa"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.performRequest("GET", "/api/tasks?title=sopa", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	body := suite.decodeBody(w)
	tasks, ok := body["tasks"].([]interface{})
	suite.Require().True(ok)
	suite.Require().Len(tasks, 1)
}

// TestListTasks_InvalidDueDate tests due_date validation
func (suite *TaskHandlerTestSuite) TestListTasks_InvalidDueDate() {
	w := suite.performRequest("GET", "/api/tasks?due_date=not-a-date", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetAnalytics tests the analytics endpoint
func (suite *TaskHandlerTestSuite) TestGetAnalytics() {
	w := suite.performRequest("POST", "/api/tasks", gin.H{
		"title": "Uno", "status": "COMPLETED", "estimated_hours": 2,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	w = suite.performRequest("POST", "/api/tasks", gin.H{
		"title": "Dos", "estimated_hours": 4,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.performRequest("GET", "/api/tasks/analytics", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	body := suite.decodeBody(w)
	assert.Equal(suite.T(), float64(2), body["total_tasks"])
	assert.Equal(suite.T(), float64(1), body["completed_tasks"])
	assert.InDelta(suite.T(), 0.5, body["completion_rate"], 1e-9)
	assert.InDelta(suite.T(), 3, body["average_estimated_hours"], 1e-9)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
