package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artem13815/taskmanager/pkg/task"
)

// TaskRepository stores tasks; every query is filtered by owner.
type TaskRepository struct {
	db DB
}

func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, owner_id, title, description, status, extras, created_at, updated_at`

// orderBy maps accepted sort values to ORDER BY clauses. Only these strings
// are ever interpolated into SQL.
var orderBy = map[string]string{
	task.SortCreatedAsc:  "created_at ASC, id",
	task.SortCreatedDesc: "created_at DESC, id",
	task.SortUpdatedAsc:  "updated_at ASC, id",
	task.SortUpdatedDesc: "updated_at DESC, id",
	task.SortTitleAsc:    "title ASC, id",
	task.SortTitleDesc:   "title DESC, id",
	task.SortStatusAsc:   "status ASC, id",
	task.SortStatusDesc:  "status DESC, id",
}

func (r *TaskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	extras, err := encodeExtras(t.Extras)
	if err != nil {
		return task.Task{}, err
	}
	row := r.db.QueryRow(ctx, `
INSERT INTO tasks (id, owner_id, title, description, status, extras)
VALUES ($1, $2, $3, $4, $5, $6::jsonb)
RETURNING `+taskColumns,
		t.ID, t.OwnerID, t.Title, t.Description, string(t.Status), extras)
	return scanTask(row)
}

func (r *TaskRepository) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (task.Task, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2
`, id, ownerID)
	return scanTask(row)
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, f task.Filter) ([]task.Task, error) {
	if f.Limit <= 0 {
		f.Limit = task.DefaultLimit
	}
	order, ok := orderBy[f.Sort]
	if !ok {
		order = orderBy[task.DefaultSort]
	}
	rows, err := r.db.Query(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE owner_id = $1 AND ($2::text = '' OR status = $2)
ORDER BY `+order+`
LIMIT $3 OFFSET $4
`, ownerID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID, status task.Status) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
SELECT COUNT(*) FROM tasks WHERE owner_id = $1 AND ($2::text = '' OR status = $2)
`, ownerID, string(status)).Scan(&n)
	return n, err
}

// UpdateForOwner applies p with COALESCE, so NULL arguments keep the column.
func (r *TaskRepository) UpdateForOwner(ctx context.Context, ownerID, id uuid.UUID, p task.Patch) (task.Task, error) {
	var status, extras *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	if p.Extras != nil {
		e, err := encodeExtras(p.Extras)
		if err != nil {
			return task.Task{}, err
		}
		extras = &e
	}
	row := r.db.QueryRow(ctx, `
UPDATE tasks SET
	title       = COALESCE($3, title),
	description = COALESCE($4, description),
	status      = COALESCE($5, status),
	extras      = COALESCE($6::jsonb, extras),
	updated_at  = now()
WHERE id = $1 AND owner_id = $2
RETURNING `+taskColumns,
		id, ownerID, p.Title, p.Description, status, extras)
	return scanTask(row)
}

func (r *TaskRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, ownerID uuid.UUID) (map[task.Status]int, error) {
	rows, err := r.db.Query(ctx, `
SELECT status, COUNT(*) FROM tasks WHERE owner_id = $1 GROUP BY status
`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[task.Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		res[task.Status(status)] = n
	}
	return res, rows.Err()
}

func (r *TaskRepository) Summaries(ctx context.Context, ownerID uuid.UUID) ([]task.Summary, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, title, status, created_at
FROM tasks
WHERE owner_id = $1
ORDER BY created_at DESC, id
`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]task.Summary, 0)
	for rows.Next() {
		var (
			s      task.Summary
			status string
		)
		if err := rows.Scan(&s.ID, &s.Title, &status, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Status = task.Status(status)
		s.CreatedAt = s.CreatedAt.UTC()
		res = append(res, s)
	}
	return res, rows.Err()
}

func encodeExtras(extras map[string]any) (string, error) {
	if extras == nil {
		return "{}", nil
	}
	b, err := json.Marshal(extras)
	if err != nil {
		return "", fmt.Errorf("encode task extras: %w", err)
	}
	return string(b), nil
}

func scanTask(row pgx.Row) (task.Task, error) {
	var (
		t      task.Task
		status string
		extras []byte
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &status, &extras, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.Extras = map[string]any{}
	if len(extras) > 0 {
		if err := json.Unmarshal(extras, &t.Extras); err != nil {
			return task.Task{}, fmt.Errorf("decode task extras: %w", err)
		}
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
