package handler

import (
	"net/http"

	"taskhub/internal/lifecycle"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ActivityHandler struct {
	engine *lifecycle.Engine
	log    zerolog.Logger
}

func NewActivityHandler(engine *lifecycle.Engine, log zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{engine: engine, log: log}
}

const logNotFound = "Log not found"

// List godoc
// @Summary      List activity
// @Description  Managers see every entry, other users only their own.
// @Tags         Activity
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int  false  "Page (1-based)"
// @Param        limit  query  int  false  "Page size, at most 100"
// @Router       /api/activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	page, err := h.engine.ListActivity(c.Request.Context(), p, pageFrom(c))
	if err != nil {
		respondError(c, h.log, err, logNotFound)
		return
	}
	c.JSON(http.StatusOK, paged("logs", page))
}

func (h *ActivityHandler) ListByUser(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId", "user")
	if !ok {
		return
	}

	logs, err := h.engine.ListActivityByUser(c.Request.Context(), p, userID)
	if err != nil {
		respondError(c, h.log, err, logNotFound)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *ActivityHandler) ListTrash(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}

	page, err := h.engine.ListTrashedActivity(c.Request.Context(), p, pageFrom(c))
	if err != nil {
		respondError(c, h.log, err, logNotFound)
		return
	}
	c.JSON(http.StatusOK, paged("logs", page))
}

func (h *ActivityHandler) Trash(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "log")
	if !ok {
		return
	}

	entry, err := h.engine.TrashActivity(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err, logNotFound)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *ActivityHandler) Restore(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "log")
	if !ok {
		return
	}

	entry, err := h.engine.RestoreActivity(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err, logNotFound)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	p, ok := withPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "log")
	if !ok {
		return
	}
	secret, ok := bindDelete(c)
	if !ok {
		return
	}

	if err := h.engine.DeleteActivity(c.Request.Context(), p, id, secret); err != nil {
		respondError(c, h.log, err, logNotFound)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Log permanently deleted"})
}
