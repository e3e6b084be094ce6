package services

import (
	"sync"
	"time"

	"taskman-api/taskman/models"
)

// Cache holds short-lived copies of the task list and the derived stats
// so read-heavy page renders do not hammer the remote database. Writes
// never consult it; they invalidate it and go straight to the database.
// A TTL of zero or less disables the corresponding entry.
type Cache struct {
	mu       sync.Mutex
	tasksTTL time.Duration
	statsTTL time.Duration

	tasks        []models.Task
	tasksExpires time.Time

	stats        models.TaskStats
	statsExpires time.Time
}

func NewCache(tasksTTL, statsTTL time.Duration) *Cache {
	return &Cache{tasksTTL: tasksTTL, statsTTL: statsTTL}
}

func (c *Cache) Tasks() ([]models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tasks == nil || time.Now().After(c.tasksExpires) {
		return nil, false
	}
	return c.tasks, true
}

func (c *Cache) SetTasks(tasks []models.Task) {
	if c.tasksTTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = tasks
	c.tasksExpires = time.Now().Add(c.tasksTTL)
}

func (c *Cache) Stats() (models.TaskStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.statsExpires.IsZero() || time.Now().After(c.statsExpires) {
		return models.TaskStats{}, false
	}
	return c.stats, true
}

func (c *Cache) SetStats(stats models.TaskStats) {
	if c.statsTTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
	c.statsExpires = time.Now().Add(c.statsTTL)
}

// Invalidate drops everything. Called after successful mutations so the
// next read reflects them instead of waiting out the TTL.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = nil
	c.tasksExpires = time.Time{}
	c.stats = models.TaskStats{}
	c.statsExpires = time.Time{}
}
