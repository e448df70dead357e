package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

// Task is owned by exactly one account and visible only to it.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	OwnerID     uuid.UUID      `json:"ownerId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	Extras      map[string]any `json:"extras"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Summary is the short form of a task used by insights.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sort values accepted by List. A leading "-" means descending.
const (
	SortCreatedAsc  = "createdAt"
	SortCreatedDesc = "-createdAt"
	SortUpdatedAsc  = "updatedAt"
	SortUpdatedDesc = "-updatedAt"
	SortTitleAsc    = "title"
	SortTitleDesc   = "-title"
	SortStatusAsc   = "status"
	SortStatusDesc  = "-status"

	DefaultSort = SortCreatedDesc
)

// Sorts lists every accepted sort value.
var Sorts = []string{
	SortCreatedAsc, SortCreatedDesc,
	SortUpdatedAsc, SortUpdatedDesc,
	SortTitleAsc, SortTitleDesc,
	SortStatusAsc, SortStatusDesc,
}

// Filter narrows ListByOwner and CountByOwner. An empty Status matches every
// task; Sort is always one of Sorts once it reaches a repository.
type Filter struct {
	Status Status
	Sort   string
	Limit  int
	Offset int
}

// Patch is a partial update. Nil fields are left untouched; a non-nil
// Extras replaces the stored object.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	Extras      map[string]any
}

var ErrNotFound = errors.New("task not found")

// Repository is the persistence port for tasks. Every method is scoped to
// the owner; a task of another owner is reported as ErrNotFound.
type Repository interface {
	Create(ctx context.Context, t Task) (Task, error)
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Task, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID, status Status) (int, error)
	UpdateForOwner(ctx context.Context, ownerID, id uuid.UUID, p Patch) (Task, error)
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
	// CountByStatus omits statuses with no tasks.
	CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[Status]int, error)
	// Summaries returns every task of the owner, newest first.
	Summaries(ctx context.Context, ownerID uuid.UUID) ([]Summary, error)
}
