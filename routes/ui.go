package routes

import (
	"net/http"
	"net/url"

	"taskman-api/taskman/models"
	"taskman-api/taskman/services"

	"github.com/gin-gonic/gin"
)

// indexData feeds the server-rendered page. The error fields isolate
// failures per section: a broken fetch blanks its own block, never the
// whole page.
type indexData struct {
	Tasks      []models.Task
	Stats      models.TaskStats
	Query      string
	TasksError string
	StatsError string
	Notice     string
	Alert      string
}

// RegisterRootRoutes wires the root path. With an api parameter the
// request goes through dispatch mode; without one it renders the page.
// The form actions mutate and redirect back so the page always re-reads
// the database after the user's own change.
func RegisterRootRoutes(router *gin.Engine, taskService services.TaskServiceInterface) {
	router.GET("/", func(c *gin.Context) {
		if op := c.Query("api"); op != "" {
			Dispatch(c, Op(op), taskService)
			return
		}
		renderIndex(c, taskService)
	})

	router.POST("/tasks/create", func(c *gin.Context) { createTaskForm(c, taskService) })
	router.POST("/tasks/:id/toggle", func(c *gin.Context) { toggleTaskForm(c, taskService) })
	router.POST("/tasks/:id/delete", func(c *gin.Context) { deleteTaskForm(c, taskService) })
}

func renderIndex(c *gin.Context, taskService services.TaskServiceInterface) {
	ctx := c.Request.Context()
	data := indexData{
		Query:  c.Query("q"),
		Notice: c.Query("notice"),
		Alert:  c.Query("alert"),
	}

	var tasks []models.Task
	var err error
	if data.Query != "" {
		tasks, err = taskService.SearchTasks(ctx, data.Query)
	} else {
		tasks, err = taskService.ListTasks(ctx)
	}
	if err != nil {
		data.TasksError = "Could not load tasks. Please try again later."
	}
	data.Tasks = tasks

	stats, err := taskService.GetTaskStats(ctx)
	if err != nil {
		data.StatsError = "Statistics are unavailable."
	} else {
		data.Stats = stats
	}

	c.HTML(http.StatusOK, "index.html", data)
}

func redirectNotice(c *gin.Context, message string) {
	c.Redirect(http.StatusSeeOther, "/?notice="+url.QueryEscape(message))
}

func redirectAlert(c *gin.Context, message string) {
	c.Redirect(http.StatusSeeOther, "/?alert="+url.QueryEscape(message))
}

func createTaskForm(c *gin.Context, taskService services.TaskServiceInterface) {
	title := c.PostForm("title")
	if title == "" {
		redirectAlert(c, "Title is required")
		return
	}

	task, err := taskService.CreateTask(c.Request.Context(), models.TaskInput{
		Title:       title,
		Description: c.PostForm("description"),
	})
	if err != nil {
		redirectAlert(c, "Failed to create task")
		return
	}
	redirectNotice(c, "Task created: "+task.Title)
}

// toggleTaskForm flips completion while resubmitting the current title
// and description unchanged; remote updates are full-record replaces.
// Two concurrent toggles race and the last writer wins.
func toggleTaskForm(c *gin.Context, taskService services.TaskServiceInterface) {
	id, err := pathID(c)
	if err != nil {
		redirectAlert(c, "Invalid task id")
		return
	}

	ctx := c.Request.Context()
	task, err := taskService.GetTaskByID(ctx, id)
	if err != nil {
		redirectAlert(c, "Task not found")
		return
	}

	_, err = taskService.UpdateTask(ctx, id, models.TaskInput{
		Title:       task.Title,
		Description: task.Description,
		Completed:   !task.Completed,
	})
	if err != nil {
		redirectAlert(c, "Failed to update task")
		return
	}
	redirectNotice(c, "Task updated")
}

func deleteTaskForm(c *gin.Context, taskService services.TaskServiceInterface) {
	id, err := pathID(c)
	if err != nil {
		redirectAlert(c, "Invalid task id")
		return
	}

	if err := taskService.DeleteTask(c.Request.Context(), id); err != nil {
		redirectAlert(c, "Failed to delete task")
		return
	}
	redirectNotice(c, "Task deleted")
}
