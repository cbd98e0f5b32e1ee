package handler

import (
	"errors"
	"net/http"
	"strconv"

	"taskhub/internal/lifecycle"
	"taskhub/internal/middleware"
	"taskhub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by operations that have nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeleteRequest carries the operator secret for permanent deletes.
type DeleteRequest struct {
	Secret string `json:"secret"`
}

// principalFrom builds the engine principal from what JWTAuthMiddleware
// stored in the context.
func principalFrom(c *gin.Context) (lifecycle.Principal, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return lifecycle.Principal{}, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return lifecycle.Principal{}, false
	}
	role, _ := c.Get(middleware.RoleKey)
	r, _ := role.(model.Role)
	if r == "" {
		r = model.RoleUser
	}
	return lifecycle.Principal{ID: id, Role: r}, true
}

// withPrincipal resolves the caller or aborts with 401.
func withPrincipal(c *gin.Context) (lifecycle.Principal, bool) {
	p, ok := principalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
	}
	return p, ok
}

func parseID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + what + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// pageFrom reads ?page= and ?limit=. Bad values fall back to the defaults.
func pageFrom(c *gin.Context) lifecycle.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return lifecycle.Page{Page: page, Limit: limit}
}

func paged[T any](key string, p lifecycle.Paged[T]) gin.H {
	return gin.H{
		key:          p.Items,
		"page":       p.Page,
		"limit":      p.Limit,
		"totalPages": p.TotalPages,
		"total":      p.Total,
	}
}

// respondError maps engine errors to status codes. Unknown errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, log zerolog.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFound})
	case errors.Is(err, lifecycle.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Not allowed"})
	case errors.Is(err, lifecycle.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid delete password"})
	case errors.Is(err, lifecycle.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// bindDelete reads the optional {secret} body of a permanent delete.
func bindDelete(c *gin.Context) (string, bool) {
	var req DeleteRequest
	if c.Request.ContentLength == 0 {
		return "", true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request"})
		return "", false
	}
	return req.Secret, true
}
