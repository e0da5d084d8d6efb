// Package users provides REST API handlers for login and user management.
package users

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/dexhub/hr-portal/internal/api/response"
	"github.com/dexhub/hr-portal/internal/auth"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/internal/service/users"
	"github.com/dexhub/hr-portal/pkg/logger"
)

// UserService interface for account operations.
type UserService interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	List(ctx context.Context, page requests.Page) ([]models.User, error)
	Team(ctx context.Context, actor requests.Actor, page requests.Page) ([]models.User, error)
	Create(ctx context.Context, actor requests.Actor, in users.CreateInput) (*models.User, error)
	Update(ctx context.Context, actor requests.Actor, id uint, in users.UpdateInput) (*models.User, error)
	Delete(ctx context.Context, actor requests.Actor, id uint) (*models.User, error)
}

// TokenIssuer issues access tokens.
type TokenIssuer interface {
	GenerateToken(user *models.User) (string, error)
}

// Handler handles login and user API requests.
type Handler struct {
	users  UserService
	tokens TokenIssuer
	log    *logger.Logger
}

// NewHandler creates a new users handler.
func NewHandler(svc *users.Service, tokens *auth.TokenManager, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(svc, tokens, log)
}

// NewHandlerWithInterfaces creates a new users handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(svc UserService, tokens TokenIssuer, log *logger.Logger) *Handler {
	return &Handler{
		users:  svc,
		tokens: tokens,
		log:    log.Component("api.users"),
	}
}

type loginRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type createUserRequest struct {
	Email       string       `json:"email" binding:"required"`
	Password    string       `json:"password" binding:"required"`
	FullName    string       `json:"full_name" binding:"required"`
	Role        models.Role  `json:"role"`
	Designation string       `json:"designation"`
	DOB         *models.Date `json:"dob"`
	PhoneNumber string       `json:"phone_number"`
	JoinDate    *models.Date `json:"join_date"`
	ManagerID   *uint        `json:"manager_id"`
	IsActive    *bool        `json:"is_active"`
}

type updateUserRequest struct {
	Email       *string      `json:"email"`
	Password    *string      `json:"password"`
	FullName    *string      `json:"full_name"`
	Role        *models.Role `json:"role"`
	Designation *string      `json:"designation"`
	DOB         *models.Date `json:"dob"`
	PhoneNumber *string      `json:"phone_number"`
	JoinDate    *models.Date `json:"join_date"`
	ManagerID   nullableID   `json:"manager_id"`
	IsActive    *bool        `json:"is_active"`
}

// nullableID tells an absent field apart from an explicit null.
type nullableID struct {
	Set   bool
	Value *uint
}

func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.Value = &id
	return nil
}

// Login exchanges credentials for a bearer token. Accepts an OAuth2 password form
// (username, password) or a JSON body with email or username.
// POST /api/v1/login/access-token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBind(&req)
	}
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid login request")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}
	if email == "" || req.Password == "" {
		response.Error(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), email, req.Password)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to authenticate")
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to issue access token")
		return
	}

	h.log.Info().Uint("user_id", user.ID).Msg("User logged in")
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the calling user.
// GET /api/v1/users/me.
func (h *Handler) Me(c *gin.Context) {
	user, _, ok := response.CurrentActor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// List returns every user.
// GET /api/v1/users?skip=0&limit=100.
func (h *Handler) List(c *gin.Context) {
	page, err := response.ParsePage(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Team returns the caller's direct reports.
// GET /api/v1/users/team.
func (h *Handler) Team(c *gin.Context) {
	_, actor, ok := response.CurrentActor(c)
	if !ok {
		return
	}
	page, err := response.ParsePage(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	team, err := h.users.Team(c.Request.Context(), actor, page)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to list team")
		return
	}
	c.JSON(http.StatusOK, team)
}

// Create adds a user.
// POST /api/v1/users.
func (h *Handler) Create(c *gin.Context) {
	_, actor, ok := response.CurrentActor(c)
	if !ok {
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.users.Create(c.Request.Context(), actor, users.CreateInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Role:        req.Role,
		Designation: req.Designation,
		DOB:         req.DOB,
		PhoneNumber: req.PhoneNumber,
		JoinDate:    req.JoinDate,
		ManagerID:   req.ManagerID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.FromError(c, h.log, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update applies a partial update.
// PUT /api/v1/users/:id.
func (h *Handler) Update(c *gin.Context) {
	_, actor, ok := response.CurrentActor(c)
	if !ok {
		return
	}
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.users.Update(c.Request.Context(), actor, id, users.UpdateInput{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Role:         req.Role,
		Designation:  req.Designation,
		DOB:          req.DOB,
		PhoneNumber:  req.PhoneNumber,
		JoinDate:     req.JoinDate,
		ManagerID:    req.ManagerID.Value,
		IsActive:     req.IsActive,
		ClearManager: req.ManagerID.Set && req.ManagerID.Value == nil,
	})
	if err != nil {
		response.FromError(c, h.log, err, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete removes a user and everything they own.
// DELETE /api/v1/users/:id.
func (h *Handler) Delete(c *gin.Context) {
	_, actor, ok := response.CurrentActor(c)
	if !ok {
		return
	}
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Delete(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, h.log, err, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, user)
}
