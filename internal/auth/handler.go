package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tegarerputra/Scheduling-System-JFU/internal/models"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/response"
	"github.com/tegarerputra/Scheduling-System-JFU/pkg/utils"
)

// Handler handles auth endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FullName  string `json:"full_name" binding:"required"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleTokenRequest carries the Google Calendar access token to store.
// An empty token disconnects the calendar.
type GoogleTokenRequest struct {
	AccessToken string `json:"access_token"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	role := models.RoleOperator
	if req.Role == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName, req.AvatarURL, role)
	if err != nil {
		h.logger.Warn("register failed", zap.String("email", req.Email), zap.Error(err))
		response.Conflict(c, "email already registered")
		return
	}
	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, authResponse{Token: token, User: user.ToPublic()})
}

// Login authenticates a user and returns a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, authResponse{Token: token, User: user.ToPublic()})
}

// contextUserID matches middleware.ContextUserID; middleware imports this
// package, so the constant cannot be referenced here.
const contextUserID = "user_id"

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(contextUserID).(uuid.UUID)
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, user.ToPublic())
}

// List returns all platform users (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// SetGoogleToken stores the caller's Google Calendar access token.
func (h *Handler) SetGoogleToken(c *gin.Context) {
	userID := c.MustGet(contextUserID).(uuid.UUID)
	var req GoogleTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.UpdateGoogleToken(c.Request.Context(), userID, req.AccessToken); err != nil {
		response.Internal(c, "failed to store token")
		return
	}
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, user.ToPublic())
}
