// Package tasktest provides an in-memory task.Repository for tests of
// packages built on top of task.
package tasktest

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/taskmanager/pkg/task"
)

// MemoryRepository keeps tasks in a map and applies the same owner scoping
// and ordering as the Postgres repository.
type MemoryRepository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]task.Task
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[uuid.UUID]task.Task), now: time.Now}
}

// WithClock replaces time.Now for created and updated timestamps.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.now = now
	return r
}

func (r *MemoryRepository) Create(_ context.Context, t task.Task) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Extras = maps.Clone(t.Extras)
	if t.Extras == nil {
		t.Extras = map[string]any{}
	}
	t.CreatedAt = r.now().UTC()
	t.UpdatedAt = t.CreatedAt
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepository) GetForOwner(_ context.Context, ownerID, id uuid.UUID) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID uuid.UUID, f task.Filter) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.matching(ownerID, f.Status)
	sortTasks(res, f.Sort)
	if f.Offset >= len(res) {
		return []task.Task{}, nil
	}
	res = res[f.Offset:]
	if f.Limit > 0 && f.Limit < len(res) {
		res = res[:f.Limit]
	}
	return res, nil
}

func (r *MemoryRepository) CountByOwner(_ context.Context, ownerID uuid.UUID, status task.Status) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(ownerID, status)), nil
}

func (r *MemoryRepository) UpdateForOwner(_ context.Context, ownerID, id uuid.UUID, p task.Patch) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return task.Task{}, task.ErrNotFound
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Extras != nil {
		t.Extras = maps.Clone(p.Extras)
	}
	t.UpdatedAt = r.now().UTC()
	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepository) DeleteForOwner(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return task.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepository) CountByStatus(_ context.Context, ownerID uuid.UUID) (map[task.Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make(map[task.Status]int)
	for _, t := range r.matching(ownerID, "") {
		res[t.Status]++
	}
	return res, nil
}

func (r *MemoryRepository) Summaries(_ context.Context, ownerID uuid.UUID) ([]task.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := r.matching(ownerID, "")
	sortTasks(tasks, task.SortCreatedDesc)
	res := make([]task.Summary, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, task.Summary{ID: t.ID, Title: t.Title, Status: t.Status, CreatedAt: t.CreatedAt})
	}
	return res, nil
}

func (r *MemoryRepository) matching(ownerID uuid.UUID, status task.Status) []task.Task {
	res := make([]task.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID == ownerID && (status == "" || t.Status == status) {
			res = append(res, t)
		}
	}
	return res
}

func sortTasks(tasks []task.Task, sort string) {
	if sort == "" {
		sort = task.DefaultSort
	}
	desc := strings.HasPrefix(sort, "-")
	field := strings.TrimPrefix(sort, "-")
	slices.SortFunc(tasks, func(a, b task.Task) int {
		var c int
		switch field {
		case "updatedAt":
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		case "title":
			c = strings.Compare(a.Title, b.Title)
		case "status":
			c = strings.Compare(string(a.Status), string(b.Status))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if desc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		return c
	})
}
