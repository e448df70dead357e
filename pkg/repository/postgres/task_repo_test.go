package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/taskmanager/pkg/task"
)

var taskCols = []string{"id", "owner_id", "title", "description", "status", "extras", "created_at", "updated_at"}

func TestTaskRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner, id := uuid.New(), uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs(id, owner, "Write report", "", "pending", `{"priority":2}`).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(id, owner, "Write report", "", "pending", []byte(`{"priority":2}`), now, now))

	got, err := repo.Create(context.Background(), task.Task{
		ID: id, OwnerID: owner, Title: "Write report", Status: task.StatusPending,
		Extras: map[string]any{"priority": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, got.Status)
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, map[string]any{"priority": float64(2)}, got.Extras)
}

func TestTaskRepository_GetForOwner_OtherOwnerIsNotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner, id := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND owner_id = $2")).
		WithArgs(id, owner).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetForOwner(context.Background(), owner, id)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTaskRepository_ListByOwner(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY title ASC, id")).
		WithArgs(owner, "done", 10, 20).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(uuid.New(), owner, "a", "", "done", []byte(`{}`), now, now).
			AddRow(uuid.New(), owner, "b", "", "done", []byte(`{}`), now, now))

	got, err := repo.ListByOwner(context.Background(), owner, task.Filter{
		Status: task.StatusDone, Sort: task.SortTitleAsc, Limit: 10, Offset: 20,
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotNil(t, got[0].Extras)
}

func TestTaskRepository_ListByOwner_EmptyIsNotNil(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id")).
		WithArgs(owner, "", task.DefaultLimit, 0).
		WillReturnRows(pgxmock.NewRows(taskCols))

	got, err := repo.ListByOwner(context.Background(), owner, task.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTaskRepository_DeleteForOwner(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner, id := uuid.New(), uuid.New()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
		WithArgs(id, owner).
		WillReturnResult(pgconn.NewCommandTag("DELETE 1"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks")).
		WithArgs(id, owner).
		WillReturnResult(pgconn.NewCommandTag("DELETE 0"))

	assert.NoError(t, repo.DeleteForOwner(context.Background(), owner, id))
	assert.ErrorIs(t, repo.DeleteForOwner(context.Background(), owner, id), task.ErrNotFound)
}

func TestTaskRepository_ListByOwner_UnknownSortFallsBack(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id")).
		WithArgs(owner, "", 5, 0).
		WillReturnRows(pgxmock.NewRows(taskCols))

	_, err := repo.ListByOwner(context.Background(), owner, task.Filter{Sort: "title; DROP TABLE tasks", Limit: 5})
	require.NoError(t, err)
}

func TestTaskRepository_CountByOwner(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE owner_id = $1")).
		WithArgs(owner, "pending").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountByOwner(context.Background(), owner, task.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestTaskRepository_UpdateForOwner(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner, id := uuid.New(), uuid.New()
	now := time.Now().UTC()
	title := "Renamed"
	done := task.StatusDone
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET")).
		WithArgs(id, owner, &title, (*string)(nil), ptr("done"), ptr(`{"tag":"x"}`)).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(id, owner, "Renamed", "kept", "done", []byte(`{"tag":"x"}`), now, now))

	got, err := repo.UpdateForOwner(context.Background(), owner, id, task.Patch{
		Title:  &title,
		Status: &done,
		Extras: map[string]any{"tag": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "kept", got.Description)
	assert.Equal(t, task.StatusDone, got.Status)
	assert.Equal(t, map[string]any{"tag": "x"}, got.Extras)
}

func TestTaskRepository_UpdateForOwner_EmptyPatchKeepsColumns(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner, id := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE($6::jsonb, extras)")).
		WithArgs(id, owner, (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateForOwner(context.Background(), owner, id, task.Patch{})
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTaskRepository_CountByStatus(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("done", 1))

	got, err := repo.CountByStatus(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, map[task.Status]int{task.StatusPending: 3, task.StatusDone: 1}, got)
}

func TestTaskRepository_Summaries(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTaskRepository(mock)

	owner, id := uuid.New(), uuid.New()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, status, created_at")).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "status", "created_at"}).
			AddRow(id, "a", "in-progress", created))

	got, err := repo.Summaries(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, task.StatusInProgress, got[0].Status)
	assert.Equal(t, time.UTC, got[0].CreatedAt.Location())
}

func ptr(s string) *string { return &s }
