package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"taskman-api/taskman/config"
	"taskman-api/taskman/database"
	"taskman-api/taskman/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTasksAPI emulates the remote tasks table behind its REST interface:
// id=eq filters, ilike search, created_at ordering, representation bodies.
type fakeTasksAPI struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time
	tasks  []models.Task
}

func newFakeTasksAPI() *fakeTasksAPI {
	return &fakeTasksAPI{nextID: 1, clock: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeTasksAPI) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeTasksAPI) filterID(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("id")
	if !strings.HasPrefix(raw, "eq.") {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "eq."), 10, 64)
	return id, err == nil
}

func (f *fakeTasksAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		f.handleGet(w, r)
	case http.MethodPost:
		var input models.TaskInput
		json.NewDecoder(r.Body).Decode(&input)
		now := f.tick()
		task := models.Task{
			ID:          f.nextID,
			Title:       input.Title,
			Description: input.Description,
			Completed:   input.Completed,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		f.nextID++
		f.tasks = append(f.tasks, task)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]models.Task{task})
	case http.MethodPatch:
		id, _ := f.filterID(r)
		var patch map[string]any
		json.NewDecoder(r.Body).Decode(&patch)
		var updated []models.Task
		for i := range f.tasks {
			if f.tasks[i].ID != id {
				continue
			}
			if title, ok := patch["title"].(string); ok {
				f.tasks[i].Title = title
			}
			if description, ok := patch["description"].(string); ok {
				f.tasks[i].Description = description
			}
			if completed, ok := patch["completed"].(bool); ok {
				f.tasks[i].Completed = completed
			}
			f.tasks[i].UpdatedAt = f.tick()
			updated = append(updated, f.tasks[i])
		}
		if updated == nil {
			updated = []models.Task{}
		}
		json.NewEncoder(w).Encode(updated)
	case http.MethodDelete:
		id, _ := f.filterID(r)
		var deleted []models.Task
		kept := f.tasks[:0]
		for _, task := range f.tasks {
			if task.ID == id {
				deleted = append(deleted, task)
				continue
			}
			kept = append(kept, task)
		}
		f.tasks = kept
		if deleted == nil {
			deleted = []models.Task{}
		}
		json.NewEncoder(w).Encode(deleted)
	}
}

func (f *fakeTasksAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result := append([]models.Task(nil), f.tasks...)

	if id, ok := f.filterID(r); ok {
		filtered := result[:0]
		for _, task := range result {
			if task.ID == id {
				filtered = append(filtered, task)
			}
		}
		result = filtered
	}

	if or := query.Get("or"); or != "" {
		// Pattern looks like (title.ilike.*<q>*,description.ilike.*<q>*).
		parts := strings.SplitN(or, "*", 3)
		needle := ""
		if len(parts) >= 2 {
			needle = strings.ToLower(parts[1])
		}
		filtered := result[:0]
		for _, task := range result {
			if strings.Contains(strings.ToLower(task.Title), needle) ||
				strings.Contains(strings.ToLower(task.Description), needle) {
				filtered = append(filtered, task)
			}
		}
		result = filtered
	}

	if query.Get("order") == "created_at.desc" {
		sort.Slice(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}

	if limit := query.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n < len(result) {
			result = result[:n]
		}
	}

	json.NewEncoder(w).Encode(result)
}

func newScenarioService(t *testing.T) *TaskService {
	t.Helper()
	server := httptest.NewServer(newFakeTasksAPI())
	t.Cleanup(server.Close)

	client := database.NewClient(config.Config{
		SupabaseURL:           server.URL,
		SupabaseKey:           "anon-key",
		SupabaseServiceKey:    "anon-key",
		RequestTimeoutSeconds: 5,
	})
	return NewTaskService(client, NewCache(time.Minute, time.Minute), nil)
}

func TestTaskLifecycleScenario(t *testing.T) {
	service := newScenarioService(t)
	ctx := context.Background()

	taskA, err := service.CreateTask(ctx, models.TaskInput{Title: "A"})
	require.NoError(t, err)
	assert.False(t, taskA.Completed)

	taskB, err := service.CreateTask(ctx, models.TaskInput{Title: "B"})
	require.NoError(t, err)

	// B was created later, so it comes first.
	tasks, err := service.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "B", tasks[0].Title)
	assert.Equal(t, "A", tasks[1].Title)

	// Toggle B the way the UI does: re-read, then full-record update.
	current, err := service.GetTaskByID(ctx, taskB.ID)
	require.NoError(t, err)
	updated, err := service.UpdateTask(ctx, taskB.ID, models.TaskInput{
		Title:       current.Title,
		Description: current.Description,
		Completed:   !current.Completed,
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, taskB.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(taskB.UpdatedAt))

	stats, err := service.GetTaskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.InDelta(t, 50.0, stats.CompletionRate, 0.0001)

	require.NoError(t, service.DeleteTask(ctx, taskA.ID))

	tasks, err = service.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "B", tasks[0].Title)

	_, err = service.GetTaskByID(ctx, taskA.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSearchScenario(t *testing.T) {
	service := newScenarioService(t)
	ctx := context.Background()

	_, err := service.CreateTask(ctx, models.TaskInput{Title: "Buy groceries", Description: "milk and bread"})
	require.NoError(t, err)
	_, err = service.CreateTask(ctx, models.TaskInput{Title: "Walk the dog"})
	require.NoError(t, err)
	_, err = service.CreateTask(ctx, models.TaskInput{Title: "Call plumber", Description: "kitchen sink, MILK jug leak"})
	require.NoError(t, err)

	// Case-insensitive match against title or description, newest first.
	tasks, err := service.SearchTasks(ctx, "milk")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Call plumber", tasks[0].Title)
	assert.Equal(t, "Buy groceries", tasks[1].Title)

	tasks, err = service.SearchTasks(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = service.SearchTasks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}
