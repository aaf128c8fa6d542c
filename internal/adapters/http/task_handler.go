package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/toodoo/core/internal/application/services"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService    *services.TaskService
	commentService *services.CommentService
	logger         *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, commentService *services.CommentService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		commentService: commentService,
		logger:         logger,
	}
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	actor := getUserIDFromContext(c)

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), actor, req)
	if err != nil {
		h.logger.Error("Create task failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to create task")
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask handles getting a task by ID
func (h *TaskHandler) GetTask(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	task, err := h.taskService.GetTask(c.Request().Context(), actor, id)
	if err != nil {
		return mapDomainError(err, "Failed to get task")
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask handles updating a task
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), actor, id, req)
	if err != nil {
		h.logger.Error("Update task failed", "error", err, "task_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to update task")
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles deleting a task
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), actor, id); err != nil {
		h.logger.Error("Delete task failed", "error", err, "task_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to delete task")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task deleted successfully"})
}

// ListTasks handles listing tasks for one of the derived views
func (h *TaskHandler) ListTasks(c echo.Context) error {
	actor := getUserIDFromContext(c)

	req := ports.ListTasksRequest{
		View:  ports.TaskView(c.QueryParam("view")),
		Limit: 100,
	}

	if q := c.QueryParam("q"); q != "" {
		req.Search = &q
	}

	if categoryStr := c.QueryParam("category_id"); categoryStr != "" {
		categoryID, err := strconv.Atoi(categoryStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category_id parameter")
		}
		req.CategoryID = &categoryID
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		req.Limit = limit
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid offset parameter")
		}
		req.Offset = offset
	}

	if req.View != "" && !req.View.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown view")
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), actor, req)
	if err != nil {
		h.logger.Error("List tasks failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to list tasks")
	}

	return c.JSON(http.StatusOK, tasks)
}

// MarkCompleted handles the completion toggle endpoint. The response keeps
// its {success, error} JSON shape even on failure.
func (h *TaskHandler) MarkCompleted(c echo.Context) error {
	actor := getUserIDFromContext(c)

	var req ports.MarkCompletedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ports.MarkCompletedResponse{Success: false, Error: "Invalid request format"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ports.MarkCompletedResponse{Success: false, Error: err.Error()})
	}

	if err := h.taskService.MarkCompleted(c.Request().Context(), actor, req.TaskID, req.Completed); err != nil {
		h.logger.Error("Mark completed failed", "error", err, "task_id", req.TaskID, "user_id", actor)
		httpErr, ok := mapDomainError(err, "Failed to update task").(*echo.HTTPError)
		status := http.StatusInternalServerError
		if ok {
			status = httpErr.Code
		}
		return c.JSON(status, ports.MarkCompletedResponse{Success: false, Error: err.Error()})
	}

	return c.JSON(http.StatusOK, ports.MarkCompletedResponse{Success: true})
}

// ClearCompleted handles deleting all of the caller's completed tasks
func (h *TaskHandler) ClearCompleted(c echo.Context) error {
	actor := getUserIDFromContext(c)

	deleted, err := h.taskService.ClearCompleted(c.Request().Context(), actor)
	if err != nil {
		h.logger.Error("Clear completed failed", "error", err, "user_id", actor)
		return mapDomainError(err, "Failed to clear completed tasks")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"deleted": deleted})
}

// ListComments handles listing a task's comments
func (h *TaskHandler) ListComments(c echo.Context) error {
	actor := getUserIDFromContext(c)

	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	comments, err := h.commentService.ListComments(c.Request().Context(), actor, taskID)
	if err != nil {
		return mapDomainError(err, "Failed to list comments")
	}

	return c.JSON(http.StatusOK, comments)
}

// AddComment handles adding a comment to a task
func (h *TaskHandler) AddComment(c echo.Context) error {
	actor := getUserIDFromContext(c)

	taskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	var req ports.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentService.AddComment(c.Request().Context(), actor, taskID, req.Body)
	if err != nil {
		h.logger.Error("Add comment failed", "error", err, "task_id", taskID, "user_id", actor)
		return mapDomainError(err, "Failed to add comment")
	}

	return c.JSON(http.StatusCreated, comment)
}

// EditComment handles editing a comment
func (h *TaskHandler) EditComment(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req ports.CommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.commentService.EditComment(c.Request().Context(), actor, id, req.Body)
	if err != nil {
		h.logger.Error("Edit comment failed", "error", err, "comment_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to edit comment")
	}

	return c.JSON(http.StatusOK, comment)
}

// DeleteComment handles deleting a comment
func (h *TaskHandler) DeleteComment(c echo.Context) error {
	actor := getUserIDFromContext(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	if err := h.commentService.DeleteComment(c.Request().Context(), actor, id); err != nil {
		h.logger.Error("Delete comment failed", "error", err, "comment_id", id, "user_id", actor)
		return mapDomainError(err, "Failed to delete comment")
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Comment deleted successfully"})
}
