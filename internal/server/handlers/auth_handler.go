package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/internal/service/auth"
)

// ContextSessionKey is where the session middleware stores the resolved session.
const ContextSessionKey = "session"

// ContextTokenKey is where the session middleware stores the raw bearer token.
const ContextTokenKey = "token"

// SessionFrom extracts the authenticated session placed by the middleware.
func SessionFrom(c *gin.Context) (*models.Session, bool) {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*models.Session)
	return session, ok
}

// AuthHandler handles login, logout and account management endpoints.
type AuthHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "auth service unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"role":  session.Role,
		"name":  session.Name,
	})
}

// Logout clears the caller's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(ContextTokenKey)

	if err := h.svc.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear session"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Register creates a new account. Anonymous callers always become sellers;
// only an admin session may pick the role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}

	var callerRole models.Role
	if session, ok := SessionFrom(c); ok {
		callerRole = session.Role
	}

	if err := h.svc.Register(c.Request.Context(), req, callerRole); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to register user"})
		return
	}

	c.Status(http.StatusCreated)
}

// ListUsers returns the registered accounts. Admin only, enforced by the router.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.Users(c.Request.Context(), c.GetString(ContextTokenKey))
	if err != nil {
		h.logger.Error("listing users failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to list users"})
		return
	}

	c.JSON(http.StatusOK, users)
}
