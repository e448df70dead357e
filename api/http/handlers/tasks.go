package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/taskmanager/api/http/presenter"
	"github.com/artem13815/taskmanager/pkg/auth"
	"github.com/artem13815/taskmanager/pkg/task"
)

const (
	msgTaskNotFound  = "No task found with that ID"
	msgInvalidTaskID = "Invalid task ID format"
)

type TaskHandler struct {
	uc  task.UseCase
	log *slog.Logger
}

func NewTaskHandler(uc task.UseCase, log *slog.Logger) *TaskHandler {
	return &TaskHandler{uc: uc, log: log}
}

type taskData struct {
	Task task.Task `json:"task"`
}

type tasksData struct {
	Tasks []task.Task `json:"tasks"`
}

type insightsData struct {
	Insights task.Insights `json:"insights"`
}

// @Summary  Create task
// @Tags     tasks
// @Accept   json
// @Produce  json
// @Param    input body task.CreateInput true "task payload"
// @Security BearerAuth
// @Success  201 {object} presenter.DataResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx, id auth.Identity) error {
	var req task.CreateInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, presenter.MsgInvalidJSON)
	}
	t, err := h.uc.Create(c.Context(), id.Account.ID, req)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.Data(c, http.StatusCreated, taskData{Task: t})
}

// @Summary  List own tasks
// @Tags     tasks
// @Produce  json
// @Param    status query string false "pending, in-progress or done"
// @Param    sort   query string false "createdAt, updatedAt, title or status; prefix - for descending"
// @Param    page   query int    false "page number, from 1"
// @Param    limit  query int    false "page size (1..100)"
// @Security BearerAuth
// @Success  200 {object} presenter.DataResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx, id auth.Identity) error {
	page, err := h.uc.List(c.Context(), id.Account.ID, parseListQuery(c))
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.List(c, len(page.Tasks), page.Pagination, tasksData{Tasks: page.Tasks})
}

// @Summary  Task statistics
// @Tags     tasks
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} presenter.DataResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /tasks/insights [get]
func (h *TaskHandler) Insights(c *fiber.Ctx, id auth.Identity) error {
	insights, err := h.uc.Insights(c.Context(), id.Account.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.Data(c, http.StatusOK, insightsData{Insights: insights})
}

// @Summary  Get own task
// @Tags     tasks
// @Produce  json
// @Param    id path string true "task ID (UUID)"
// @Security BearerAuth
// @Success  200 {object} presenter.DataResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /tasks/{id} [get]
func (h *TaskHandler) Get(c *fiber.Ctx, id auth.Identity) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, msgInvalidTaskID)
	}
	t, err := h.uc.Get(c.Context(), id.Account.ID, taskID)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.Data(c, http.StatusOK, taskData{Task: t})
}

// @Summary  Update own task
// @Tags     tasks
// @Accept   json
// @Produce  json
// @Param    id    path string           true "task ID (UUID)"
// @Param    input body task.UpdateInput true "fields to change"
// @Security BearerAuth
// @Success  200 {object} presenter.DataResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /tasks/{id} [patch]
func (h *TaskHandler) Update(c *fiber.Ctx, id auth.Identity) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, msgInvalidTaskID)
	}
	var req task.UpdateInput
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, presenter.MsgInvalidJSON)
	}
	t, err := h.uc.Update(c.Context(), id.Account.ID, taskID, req)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.Data(c, http.StatusOK, taskData{Task: t})
}

// @Summary  Delete own task
// @Tags     tasks
// @Param    id path string true "task ID (UUID)"
// @Security BearerAuth
// @Success  204
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx, id auth.Identity) error {
	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, msgInvalidTaskID)
	}
	if err := h.uc.Delete(c.Context(), id.Account.ID, taskID); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *TaskHandler) fail(c *fiber.Ctx, err error) error {
	var ve *task.ValidationError
	switch {
	case errors.As(err, &ve):
		return presenter.Error(c, http.StatusBadRequest, ve.Error())
	case errors.Is(err, task.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, msgTaskNotFound)
	default:
		h.log.Error("task store failure", slog.String("path", c.Path()), slog.Any("err", err))
		return presenter.Error(c, http.StatusServiceUnavailable, presenter.MsgUnavailable)
	}
}
