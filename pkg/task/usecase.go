package task

import (
	"context"
	"errors"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// RecentLimit is how many of the newest tasks Insights returns.
	RecentLimit = 5
)

const (
	msgStatus     = "Status must be either pending, in-progress, or done"
	msgExtras     = "Extras must be a valid JSON object"
	msgDescLength = "Task description cannot exceed 500 characters"
)

// UseCase is the application layer for an account's own tasks.
type UseCase interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (Task, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Task, error)
	List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (Page, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (Task, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Insights(ctx context.Context, ownerID uuid.UUID) (Insights, error)
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Extras      any    `json:"extras"`
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title,
			validation.Required.Error("Task title is required"),
			validation.RuneLength(1, 100).Error("Task title cannot exceed 100 characters"),
		),
		validation.Field(&in.Description, validation.RuneLength(0, 500).Error(msgDescLength)),
		validation.Field(&in.Status, statusRule(msgStatus)),
		validation.Field(&in.Extras, extrasRule()),
	)
}

// UpdateInput is a partial update; absent fields keep their stored value.
type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *Status `json:"status"`
	Extras      any     `json:"extras"`
}

func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.When(in.Title != nil,
			validation.Required.Error("Task title cannot be empty"),
			validation.RuneLength(1, 100).Error("Task title must be between 1 and 100 characters"),
		)),
		validation.Field(&in.Description, validation.RuneLength(0, 500).Error(msgDescLength)),
		validation.Field(&in.Status, validation.When(in.Status != nil,
			validation.Required.Error(msgStatus),
			statusRule(msgStatus),
		)),
		validation.Field(&in.Extras, extrasRule()),
	)
}

// ListQuery selects one page of tasks. Zero Page, Limit and Sort take their
// defaults; any other out-of-range value is a validation error.
type ListQuery struct {
	Status Status `json:"status"`
	Sort   string `json:"sort"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

func (q ListQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Status,
			statusRule("Status filter must be either pending, in-progress, or done")),
		validation.Field(&q.Page, validation.Min(0).Error("Page must be a positive integer")),
		validation.Field(&q.Limit,
			validation.Min(0).Error("Limit must be between 1 and 100"),
			validation.Max(MaxLimit).Error("Limit must be between 1 and 100"),
		),
		validation.Field(&q.Sort, validation.In(toAny(Sorts)...).Error("Invalid sort parameter")),
	)
}

// Pagination describes where a Page sits in the owner's full result set.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalTasks  int  `json:"totalTasks"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

type Page struct {
	Tasks      []Task
	Pagination Pagination
}

// Insights summarizes all tasks of one owner. Every status is present in
// StatusCounts and TasksByStatus, with zero or empty values if unused.
type Insights struct {
	TotalTasks     int                  `json:"totalTasks"`
	StatusCounts   map[Status]int       `json:"statusCounts"`
	CompletionRate int                  `json:"completionRate"`
	TasksByStatus  map[Status][]Summary `json:"tasksByStatus"`
	RecentTasks    []Summary            `json:"recentTasks"`
}

func statusRule(msg string) validation.Rule {
	return validation.In(toAny(Statuses)...).Error(msg)
}

func extrasRule() validation.Rule {
	return validation.By(func(v any) error {
		if v == nil {
			return nil
		}
		if _, ok := v.(map[string]any); !ok {
			return errors.New(msgExtras)
		}
		return nil
	})
}

func toAny[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// ValidationError carries caller-safe messages.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, ". ") }

type service struct {
	repo Repository
}

func NewService(repo Repository) UseCase { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = StatusPending
	}
	if err := in.Validate(); err != nil {
		return Task{}, toValidationError(err)
	}
	extras, _ := in.Extras.(map[string]any)
	if extras == nil {
		extras = map[string]any{}
	}
	return s.repo.Create(ctx, Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Extras:      extras,
	})
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (Task, error) {
	return s.repo.GetForOwner(ctx, ownerID, id)
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, toValidationError(err)
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}

	offset := (q.Page - 1) * q.Limit
	tasks, err := s.repo.ListByOwner(ctx, ownerID, Filter{
		Status: q.Status,
		Sort:   q.Sort,
		Limit:  q.Limit,
		Offset: offset,
	})
	if err != nil {
		return Page{}, err
	}
	total, err := s.repo.CountByOwner(ctx, ownerID, q.Status)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Tasks: tasks,
		Pagination: Pagination{
			CurrentPage: q.Page,
			TotalPages:  (total + q.Limit - 1) / q.Limit,
			TotalTasks:  total,
			HasNext:     offset+len(tasks) < total,
			HasPrev:     q.Page > 1,
		},
	}, nil
}

func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (Task, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		in.Description = &desc
	}
	if err := in.Validate(); err != nil {
		return Task{}, toValidationError(err)
	}
	extras, _ := in.Extras.(map[string]any)
	return s.repo.UpdateForOwner(ctx, ownerID, id, Patch{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Extras:      extras,
	})
}

func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteForOwner(ctx, ownerID, id)
}

func (s *service) Insights(ctx context.Context, ownerID uuid.UUID) (Insights, error) {
	counts, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return Insights{}, err
	}
	summaries, err := s.repo.Summaries(ctx, ownerID)
	if err != nil {
		return Insights{}, err
	}

	res := Insights{
		StatusCounts:  make(map[Status]int, len(Statuses)),
		TasksByStatus: make(map[Status][]Summary, len(Statuses)),
		RecentTasks:   make([]Summary, 0, RecentLimit),
	}
	res.RecentTasks = append(res.RecentTasks, summaries[:min(RecentLimit, len(summaries))]...)
	for _, st := range Statuses {
		res.StatusCounts[st] = counts[st]
		res.TotalTasks += counts[st]
		res.TasksByStatus[st] = []Summary{}
	}
	for _, sum := range summaries {
		res.TasksByStatus[sum.Status] = append(res.TasksByStatus[sum.Status], sum)
	}
	if res.TotalTasks > 0 {
		res.CompletionRate = int(math.Round(float64(counts[StatusDone]) * 100 / float64(res.TotalTasks)))
	}
	return res, nil
}

// fieldOrder keeps joined messages in form order.
var fieldOrder = []string{"title", "description", "status", "extras", "page", "limit", "sort"}

func toValidationError(err error) error {
	var fields validation.Errors
	if errors.As(err, &fields) {
		msgs := make([]string, 0, len(fields))
		for _, name := range fieldOrder {
			if fe, ok := fields[name]; ok && fe != nil {
				msgs = append(msgs, fe.Error())
			}
		}
		return &ValidationError{Messages: msgs}
	}
	return err
}
