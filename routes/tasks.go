package routes

import (
	"errors"
	"net/http"
	"strconv"

	"taskman-api/taskman/models"
	"taskman-api/taskman/services"

	"github.com/gin-gonic/gin"
)

// RegisterTaskRoutes exposes the conventional REST surface. It serves the
// same operations as dispatch mode, with plain payloads instead of the
// envelope.
func RegisterTaskRoutes(group *gin.RouterGroup, taskService services.TaskServiceInterface) {
	group.GET("/tasks", func(c *gin.Context) { ListTasks(c, taskService) })
	group.POST("/tasks", func(c *gin.Context) { CreateTask(c, taskService) })
	group.GET("/tasks/search", func(c *gin.Context) { SearchTasks(c, taskService) })
	group.GET("/tasks/stats", func(c *gin.Context) { GetTaskStats(c, taskService) })
	group.GET("/tasks/:id", func(c *gin.Context) { GetTaskByID(c, taskService) })
	group.PUT("/tasks/:id", func(c *gin.Context) { UpdateTask(c, taskService) })
	group.DELETE("/tasks/:id", func(c *gin.Context) { DeleteTask(c, taskService) })
}

// RegisterHealthRoutes exposes the liveness and readiness probes at the
// server root, outside any versioned group.
func RegisterHealthRoutes(router *gin.Engine, taskService services.TaskServiceInterface) {
	router.GET("/health", func(c *gin.Context) { handleHealth(c, taskService) })
	router.GET("/ready", func(c *gin.Context) { handleReady(c, taskService) })
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func ListTasks(c *gin.Context, taskService services.TaskServiceInterface) {
	tasks, err := taskService.ListTasks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func GetTaskByID(c *gin.Context, taskService services.TaskServiceInterface) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := taskService.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func CreateTask(c *gin.Context, taskService services.TaskServiceInterface) {
	var input models.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdTask, err := taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, createdTask)
}

func UpdateTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var input models.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updatedTask, err := taskService.UpdateTask(c.Request.Context(), id, input)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updatedTask)
}

func DeleteTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, err := pathID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	if err := taskService.DeleteTask(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func SearchTasks(c *gin.Context, taskService services.TaskServiceInterface) {
	tasks, err := taskService.SearchTasks(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func GetTaskStats(c *gin.Context, taskService services.TaskServiceInterface) {
	stats, err := taskService.GetTaskStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
