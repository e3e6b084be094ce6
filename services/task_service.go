package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"taskman-api/taskman/broker"
	"taskman-api/taskman/database"
	"taskman-api/taskman/models"
)

type TaskServiceInterface interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTaskByID(ctx context.Context, id int64) (models.Task, error)
	CreateTask(ctx context.Context, input models.TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, input models.TaskInput) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	SearchTasks(ctx context.Context, query string) ([]models.Task, error)
	GetTaskStats(ctx context.Context) (models.TaskStats, error)
	HealthCheck(ctx context.Context) error
}

// TaskService is the only component that talks to the remote database.
// Reads that fail still return a usable zero value (empty slice, zeroed
// stats) alongside the error so callers can degrade; writes return the
// error and nothing else. Callers decide which policy applies.
type TaskService struct {
	client   *database.Client
	cache    *Cache
	producer broker.Producer
	tier     database.CredentialTier
}

func NewTaskService(client *database.Client, cache *Cache, producer broker.Producer) *TaskService {
	return &TaskService{
		client:   client,
		cache:    cache,
		producer: producer,
		tier:     database.TierStandard,
	}
}

// Elevated returns a copy of the service that signs its database calls
// with the service-role key. No shipped call site uses it; it exists for
// operations that must bypass row-level security.
func (s *TaskService) Elevated() *TaskService {
	elevated := *s
	elevated.tier = database.TierService
	return &elevated
}

func (s *TaskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	if s.cache != nil {
		if tasks, ok := s.cache.Tasks(); ok {
			return tasks, nil
		}
	}

	data, err := s.client.Do(ctx, http.MethodGet, "tasks?order=created_at.desc", nil, s.tier)
	if err != nil {
		log.Printf("Failed to fetch tasks: %v", err)
		return []models.Task{}, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		log.Printf("Failed to decode task list: %v", err)
		return []models.Task{}, err
	}

	if s.cache != nil {
		s.cache.SetTasks(tasks)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (models.Task, error) {
	data, err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("tasks?id=eq.%d", id), nil, s.tier)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to fetch task %d: %w", id, err)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		return models.Task{}, err
	}
	if len(tasks) == 0 {
		return models.Task{}, ErrTaskNotFound
	}
	return tasks[0], nil
}

func (s *TaskService) CreateTask(ctx context.Context, input models.TaskInput) (models.Task, error) {
	if input.Title == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	// New tasks always start pending, whatever the caller sent.
	body := models.TaskInput{Title: input.Title, Description: input.Description, Completed: false}

	data, err := s.client.Do(ctx, http.MethodPost, "tasks", body, s.tier)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	task, err := decodeTask(data)
	if err != nil {
		return models.Task{}, err
	}

	s.afterWrite(broker.NewTaskEvent(broker.TaskCreated, task))
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id int64, input models.TaskInput) (models.Task, error) {
	if input.Title == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	// The schema's updated_at default only fires on insert, so the
	// update sets it explicitly.
	body := map[string]any{
		"title":       input.Title,
		"description": input.Description,
		"completed":   input.Completed,
		"updated_at":  time.Now().UTC(),
	}

	data, err := s.client.Do(ctx, http.MethodPatch, fmt.Sprintf("tasks?id=eq.%d", id), body, s.tier)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to update task %d: %w", id, err)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		return models.Task{}, err
	}
	if len(tasks) == 0 {
		return models.Task{}, ErrTaskNotFound
	}

	s.afterWrite(broker.NewTaskEvent(broker.TaskUpdated, tasks[0]))
	return tasks[0], nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	data, err := s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("tasks?id=eq.%d", id), nil, s.tier)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	// With return=representation the deleted rows come back; an empty
	// array means the filter matched nothing.
	tasks, err := decodeTasks(data)
	if err == nil && len(tasks) == 0 {
		return ErrTaskNotFound
	}

	s.afterWrite(broker.NewTaskDeletedEvent(id))
	return nil
}

func (s *TaskService) SearchTasks(ctx context.Context, query string) ([]models.Task, error) {
	// An empty query matches everything.
	if query == "" {
		return s.ListTasks(ctx)
	}

	q := url.QueryEscape(query)
	endpoint := fmt.Sprintf("tasks?or=(title.ilike.*%s*,description.ilike.*%s*)&order=created_at.desc", q, q)

	data, err := s.client.Do(ctx, http.MethodGet, endpoint, nil, s.tier)
	if err != nil {
		log.Printf("Failed to search tasks: %v", err)
		return []models.Task{}, fmt.Errorf("failed to search tasks: %w", err)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		return []models.Task{}, err
	}
	return tasks, nil
}

func (s *TaskService) GetTaskStats(ctx context.Context) (models.TaskStats, error) {
	if s.cache != nil {
		if stats, ok := s.cache.Stats(); ok {
			return stats, nil
		}
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return models.TaskStats{}, err
	}

	stats := models.NewTaskStats(tasks)
	if s.cache != nil {
		s.cache.SetStats(stats)
	}
	return stats, nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if _, err := s.client.Do(ctx, http.MethodGet, "tasks?limit=1", nil, s.tier); err != nil {
		return fmt.Errorf("database connection check failed: %w", err)
	}
	return nil
}

func (s *TaskService) afterWrite(event broker.TaskEvent) {
	if s.cache != nil {
		s.cache.Invalidate()
	}
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(broker.TaskSubject, event); err != nil {
		log.Printf("Failed to publish %s event for task %d: %v", event.Event, event.TaskID, err)
	}
}

func decodeTasks(data []byte) ([]models.Task, error) {
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// decodeTask handles endpoints that return a single row either bare or
// as a one-element array.
func decodeTask(data []byte) (models.Task, error) {
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err == nil {
		if len(tasks) == 0 {
			return models.Task{}, ErrTaskNotFound
		}
		return tasks[0], nil
	}

	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return models.Task{}, fmt.Errorf("failed to decode task: %w", err)
	}
	return task, nil
}
