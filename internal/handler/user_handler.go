package handler

import (
	"net/http"
	"strings"

	"taskhub/internal/auth"
	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	repo   repository.UserRepositoryInterface
	issuer *auth.TokenIssuer
	log    zerolog.Logger
}

func NewUserHandler(repo repository.UserRepositoryInterface, issuer *auth.TokenIssuer, log zerolog.Logger) *UserHandler {
	return &UserHandler{repo: repo, issuer: issuer, log: log}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func userResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// Register godoc
// @Summary  Sign up
// @Tags     Auth
// @Accept   json
// @Produce  json
// @Param    body  body      RegisterRequest  true  "New account"
// @Success  201   {object}  AuthResponse
// @Failure  400   {object}  ErrorResponse
// @Failure  409   {object}  ErrorResponse
// @Router   /api/auth/signup [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := h.repo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("find user by email")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "DB error"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "User with this email already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Hash error"})
		return
	}

	role := model.RoleUser
	if req.Role == string(model.RoleManager) {
		role = model.RoleManager
	}
	user := &model.User{
		Email:          req.Email,
		Name:           strings.TrimSpace(req.Name),
		HashedPassword: hash,
		Role:           role,
	}
	if err := h.repo.Create(c.Request.Context(), user); err != nil {
		h.log.Error().Err(err).Msg("create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Create failed"})
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login godoc
// @Summary  Log in
// @Tags     Auth
// @Accept   json
// @Produce  json
// @Param    body  body      LoginRequest  true  "Credentials"
// @Success  200   {object}  AuthResponse
// @Failure  401   {object}  ErrorResponse
// @Router   /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid input"})
		return
	}

	user, err := h.repo.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		h.log.Error().Err(err).Msg("find user by email")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "DB error"})
		return
	}
	if user == nil || !auth.CheckPassword(user.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, user *model.User) {
	token, err := h.issuer.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.log.Error().Err(err).Msg("sign token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Token error"})
		return
	}
	c.JSON(status, AuthResponse{Token: token, User: userResponse(user)})
}

// List godoc
// @Summary   List users
// @Tags      Auth
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}   UserResponse
// @Failure   403  {object}  ErrorResponse
// @Router    /api/auth/users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list users"})
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}
