package handler

import (
	"net/http"

	"taskhub/internal/lifecycle"
	"taskhub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ProjectHandler struct {
	engine *lifecycle.Engine
	log    zerolog.Logger
}

func NewProjectHandler(engine *lifecycle.Engine, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{engine: engine, log: log}
}

type CreateProjectRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Status      model.ProjectStatus `json:"status"`
}

const projectNotFound = "Project not found"

// Create godoc
// @Summary   Create a project
// @Tags      Projects
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      CreateProjectRequest  true  "Project"
// @Success   201   {object}  model.Project
// @Failure   403   {object}  ErrorResponse
// @Router    /api/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	project, err := h.engine.CreateProject(c.Request.Context(), p, lifecycle.NewProject{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, h.log, err, projectNotFound)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetAll godoc
// @Summary   List projects
// @Tags      Projects
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  model.Project
// @Router    /api/projects [get]
func (h *ProjectHandler) GetAll(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	projects, err := h.engine.ListProjects(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.log, err, projectNotFound)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}

	var patch lifecycle.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return
	}

	project, err := h.engine.UpdateProject(c.Request.Context(), p, id, patch)
	if err != nil {
		respondError(c, h.log, err, projectNotFound)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Trash(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.engine.TrashProject(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err, projectNotFound)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Restore(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}

	project, err := h.engine.RestoreProject(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err, projectNotFound)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "project")
	if !ok {
		return
	}
	secret, ok := bindDelete(c)
	if !ok {
		return
	}

	if err := h.engine.DeleteProject(c.Request.Context(), p, id, secret); err != nil {
		respondError(c, h.log, err, projectNotFound)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Project permanently deleted"})
}

func (h *ProjectHandler) ListTrash(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	page, err := h.engine.ListTrashedProjects(c.Request.Context(), p, pageFrom(c))
	if err != nil {
		respondError(c, h.log, err, projectNotFound)
		return
	}
	c.JSON(http.StatusOK, paged("projects", page))
}
