package handler

import (
	"net/http"
	"time"

	"taskhub/internal/lifecycle"
	"taskhub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type TaskHandler struct {
	engine *lifecycle.Engine
	log    zerolog.Logger
}

func NewTaskHandler(engine *lifecycle.Engine, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{engine: engine, log: log}
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      model.TaskStatus   `json:"status"`
	Priority    model.TaskPriority `json:"priority"`
	DueDate     *time.Time         `json:"dueDate"`
	Project     string             `json:"project"`
	AssignedTo  string             `json:"assignedTo" binding:"required"`
}

const taskNotFound = "Task not found"

// Create godoc
// @Summary   Create a task
// @Tags      Tasks
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      CreateTaskRequest  true  "Task"
// @Success   201   {object}  model.Task
// @Failure   400   {object}  ErrorResponse
// @Failure   403   {object}  ErrorResponse
// @Router    /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	assignee, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid assignee ID format"})
		return
	}
	var project *uuid.UUID
	if req.Project != "" {
		id, err := uuid.Parse(req.Project)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid project ID format"})
			return
		}
		project = &id
	}

	task, err := h.engine.CreateTask(c.Request.Context(), p, lifecycle.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   project,
		AssignedTo:  assignee,
	})
	if err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetByID godoc
// @Summary   Get a task
// @Tags      Tasks
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Task ID"
// @Success   200  {object}  model.Task
// @Failure   404  {object}  ErrorResponse
// @Router    /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.engine.GetTask(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary      Update a task
// @Description  Managers may change any field. The assignee may only change the status.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Task ID"
// @Success      200   {object}  model.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}

	var patch lifecycle.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	task, err := h.engine.UpdateTask(c.Request.Context(), p, id, patch)
	if err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Trash(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.engine.TrashTask(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Restore(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}

	task, err := h.engine.RestoreTask(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary      Permanently delete a task
// @Description  Managers must send the operator secret.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true   "Task ID"
// @Param        body  body      DeleteRequest  false  "Operator secret"
// @Success      200   {object}  MessageResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /api/tasks/{id}/permanent [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "task")
	if !ok {
		return
	}
	secret, ok := bindDelete(c)
	if !ok {
		return
	}

	if err := h.engine.DeleteTask(c.Request.Context(), p, id, secret); err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Task permanently deleted"})
}

// ListMine godoc
// @Summary   List my live tasks
// @Tags      Tasks
// @Produce   json
// @Security  BearerAuth
// @Param     page   query  int  false  "Page (1-based)"
// @Param     limit  query  int  false  "Page size, at most 100"
// @Router    /api/tasks/my [get]
func (h *TaskHandler) ListMine(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	page, err := h.engine.ListMyTasks(c.Request.Context(), p, pageFrom(c))
	if err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, paged("tasks", page))
}

func (h *TaskHandler) ListCreated(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	tasks, err := h.engine.ListCreatedTasks(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) ListTrash(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	page, err := h.engine.ListTrashedTasks(c.Request.Context(), p, pageFrom(c))
	if err != nil {
		respondError(c, h.log, err, taskNotFound)
		return
	}
	c.JSON(http.StatusOK, paged("tasks", page))
}
