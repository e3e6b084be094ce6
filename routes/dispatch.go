package routes

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"taskman-api/taskman/models"
	"taskman-api/taskman/services"

	"github.com/gin-gonic/gin"
)

// Op names one dispatch-mode operation, selected by the api query
// parameter on the root path. The set is closed: anything outside the
// table below is rejected.
type Op string

const (
	OpTasks       Op = "tasks"
	OpTask        Op = "task"
	OpCreateTask  Op = "create_task"
	OpUpdateTask  Op = "update_task"
	OpDeleteTask  Op = "delete_task"
	OpSearchTasks Op = "search_tasks"
	OpStats       Op = "stats"
	OpHealth      Op = "health"
	OpReady       Op = "ready"
)

// Envelope is the uniform dispatch-mode response wrapper. The status
// field stays authoritative for clients of the original contract even
// though errors now also carry a matching HTTP status code.
type Envelope struct {
	Status    string `json:"status"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func successEnvelope(data any, message string) Envelope {
	return Envelope{Status: "success", Data: data, Message: message}
}

func errorEnvelope(message string) Envelope {
	return Envelope{Status: "error", Message: message}
}

type dispatchHandler func(c *gin.Context, taskService services.TaskServiceInterface)

var dispatchTable = map[Op]dispatchHandler{
	OpTasks:       handleTasks,
	OpTask:        handleTask,
	OpCreateTask:  handleCreateTask,
	OpUpdateTask:  handleUpdateTask,
	OpDeleteTask:  handleDeleteTask,
	OpSearchTasks: handleSearchTasks,
	OpStats:       handleStats,
	OpHealth:      handleHealth,
	OpReady:       handleReady,
}

// Dispatch resolves an operation name and runs its handler. Every path
// through here terminates the request with a well-formed envelope.
func Dispatch(c *gin.Context, op Op, taskService services.TaskServiceInterface) {
	handler, ok := dispatchTable[op]
	if !ok {
		c.JSON(http.StatusBadRequest, errorEnvelope("Unknown operation: "+string(op)))
		return
	}
	handler(c, taskService)
}

// statusForError maps service failures to transport status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// queryID parses the id parameter. The second return value is an error
// message for the envelope, empty on success.
func queryID(c *gin.Context) (int64, string) {
	raw := c.Query("id")
	if raw == "" {
		return 0, "Task ID required"
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "Invalid task id: " + raw
	}
	return id, ""
}

func handleTasks(c *gin.Context, taskService services.TaskServiceInterface) {
	tasks, err := taskService.ListTasks(c.Request.Context())
	if err != nil {
		c.JSON(statusForError(err), errorEnvelope(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successEnvelope(tasks, ""))
}

func handleTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, errMsg := queryID(c)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, errorEnvelope(errMsg))
		return
	}

	task, err := taskService.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), errorEnvelope(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successEnvelope(task, ""))
}

func handleCreateTask(c *gin.Context, taskService services.TaskServiceInterface) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, errorEnvelope("Title is required"))
		return
	}

	task, err := taskService.CreateTask(c.Request.Context(), models.TaskInput{
		Title:       title,
		Description: c.Query("description"),
	})
	if err != nil {
		c.JSON(statusForError(err), errorEnvelope(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, successEnvelope(task, "Task created successfully"))
}

func handleUpdateTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, errMsg := queryID(c)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, errorEnvelope(errMsg))
		return
	}
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, errorEnvelope("Task ID and title are required"))
		return
	}

	completed, _ := strconv.ParseBool(c.DefaultQuery("completed", "false"))

	task, err := taskService.UpdateTask(c.Request.Context(), id, models.TaskInput{
		Title:       title,
		Description: c.Query("description"),
		Completed:   completed,
	})
	if err != nil {
		c.JSON(statusForError(err), errorEnvelope(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successEnvelope(task, "Task updated successfully"))
}

func handleDeleteTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, errMsg := queryID(c)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, errorEnvelope(errMsg))
		return
	}

	if err := taskService.DeleteTask(c.Request.Context(), id); err != nil {
		c.JSON(statusForError(err), errorEnvelope("Failed to delete task: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, successEnvelope(nil, "Task deleted successfully"))
}

func handleSearchTasks(c *gin.Context, taskService services.TaskServiceInterface) {
	tasks, err := taskService.SearchTasks(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(statusForError(err), errorEnvelope(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successEnvelope(tasks, ""))
}

func handleStats(c *gin.Context, taskService services.TaskServiceInterface) {
	stats, err := taskService.GetTaskStats(c.Request.Context())
	if err != nil {
		c.JSON(statusForError(err), errorEnvelope(err.Error()))
		return
	}
	c.JSON(http.StatusOK, successEnvelope(stats, ""))
}

// handleHealth is a liveness probe: it answers as long as the process is
// serving, without touching the database. Use ready for the deep check.
func handleHealth(c *gin.Context, _ services.TaskServiceInterface) {
	c.JSON(http.StatusOK, Envelope{
		Status:    "success",
		Message:   "API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady is a readiness probe: it performs a minimal read against
// the remote database.
func handleReady(c *gin.Context, taskService services.TaskServiceInterface) {
	if err := taskService.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorEnvelope(err.Error()))
		return
	}
	c.JSON(http.StatusOK, Envelope{
		Status:    "success",
		Message:   "Database is reachable",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
