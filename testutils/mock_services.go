package testutils

import (
	"context"

	"taskman-api/taskman/models"

	"github.com/stretchr/testify/mock"
)

// MockTaskService is a testify mock of services.TaskServiceInterface,
// shared by the route tests.
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskService) GetTaskByID(ctx context.Context, id int64) (models.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, input models.TaskInput) (models.Task, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id int64, input models.TaskInput) (models.Task, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(models.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) SearchTasks(ctx context.Context, query string) ([]models.Task, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskService) GetTaskStats(ctx context.Context) (models.TaskStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.TaskStats), args.Error(1)
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
