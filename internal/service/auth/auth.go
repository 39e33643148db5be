package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/pkg/clients/backend"
)

// ErrInvalidCredentials indicates the remote auth service rejected the login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrSessionNotFound indicates the bearer token maps to no live session.
var ErrSessionNotFound = errors.New("session not found")

// ErrPasswordMismatch indicates the registration confirmation did not match.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Authenticator is the surface the auth service exposes to HTTP middleware.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// BackendAuth is the slice of the remote client the service needs.
type BackendAuth interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) error
	ListUsers(ctx context.Context, token string) ([]models.User, error)
}

// SessionStore persists sessions so a restart does not log every terminal out.
type SessionStore interface {
	SaveSession(ctx context.Context, session models.Session) error
	FindSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	ListSessions(ctx context.Context) ([]models.Session, error)
}

// Service handles login, logout, registration and session restoration.
type Service struct {
	backend BackendAuth
	store   SessionStore
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]models.Session
}

// NewService wires an auth service instance.
func NewService(client BackendAuth, store SessionStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:  client,
		store:    store,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]models.Session),
	}
}

// Restore rehydrates the in-memory session cache from the store. Called once
// at startup.
func (s *Service) Restore(ctx context.Context) error {
	stored, err := s.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("restore sessions: %w", err)
	}

	s.mu.Lock()
	for _, sess := range stored {
		s.sessions[sess.Token] = sess
	}
	s.mu.Unlock()

	s.logger.Info("sessions restored", zap.Int("count", len(stored)))
	return nil
}

// Login authenticates against the remote auth service and persists the
// resulting session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	session := models.Session{
		Token:     resp.Token,
		Role:      resp.Role,
		Name:      resp.Name,
		Email:     email,
		CreatedAt: s.now(),
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	s.logger.Info("login succeeded",
		zap.String("name", session.Name),
		zap.String("role", string(session.Role)))

	return &session, nil
}

// Logout clears the session from the store and from memory. Unknown tokens
// are a no-op; logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to a session, hitting the store only
// on a memory miss.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if ok {
		return &session, nil
	}

	stored, err := s.store.FindSession(ctx, token)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	s.sessions[stored.Token] = *stored
	s.mu.Unlock()

	return stored, nil
}

// RegisterRequest carries a registration form, including the confirmation
// field checked before anything reaches the backend.
type RegisterRequest struct {
	Name            string      `json:"name" binding:"required"`
	Email           string      `json:"email" binding:"required,email"`
	Password        string      `json:"password" binding:"required"`
	ConfirmPassword string      `json:"confirmPassword"`
	Role            models.Role `json:"role"`
}

// Register validates the form and creates the account remotely. Only admins
// may choose a role; everyone else becomes a seller.
func (s *Service) Register(ctx context.Context, req RegisterRequest, requestedBy models.Role) error {
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}

	role := req.Role
	if requestedBy != models.RoleAdmin || !role.Valid() {
		role = models.RoleSeller
	}

	err := s.backend.Register(ctx, backend.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	s.logger.Info("user registered", zap.String("email", req.Email), zap.String("role", string(role)))
	return nil
}

// Users lists the registered accounts using the caller's token.
func (s *Service) Users(ctx context.Context, token string) ([]models.User, error) {
	return s.backend.ListUsers(ctx, token)
}
