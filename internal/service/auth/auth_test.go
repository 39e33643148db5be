package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/pkg/clients/backend"
)

type stubBackend struct {
	loginResp  *backend.LoginResponse
	loginErr   error
	registered []backend.RegisterRequest
}

func (b *stubBackend) Login(_ context.Context, _, _ string) (*backend.LoginResponse, error) {
	if b.loginErr != nil {
		return nil, b.loginErr
	}
	return b.loginResp, nil
}

func (b *stubBackend) Register(_ context.Context, req backend.RegisterRequest) error {
	b.registered = append(b.registered, req)
	return nil
}

func (b *stubBackend) ListUsers(_ context.Context, _ string) ([]models.User, error) {
	return nil, nil
}

type stubStore struct {
	sessions map[string]models.Session
	saveErr  error
	listErr  error
}

func newStubStore() *stubStore {
	return &stubStore{sessions: make(map[string]models.Session)}
}

func (s *stubStore) SaveSession(_ context.Context, session models.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *stubStore) FindSession(_ context.Context, token string) (*models.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return nil, errors.New("not found")
	}
	return &session, nil
}

func (s *stubStore) DeleteSession(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *stubStore) ListSessions(_ context.Context) ([]models.Session, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

func TestLoginPersistsSession(t *testing.T) {
	client := &stubBackend{loginResp: &backend.LoginResponse{
		Token: "tok-1",
		Role:  models.RoleSeller,
		Name:  "Ana",
	}}
	store := newStubStore()
	svc := NewService(client, store, nil)

	session, err := svc.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, models.RoleSeller, session.Role)
	assert.Equal(t, "ana@example.com", session.Email)

	// Stored and resolvable afterwards.
	_, ok := store.sessions["tok-1"]
	assert.True(t, ok)

	resolved, err := svc.Authenticate(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", resolved.Name)
}

func TestLoginInvalidCredentials(t *testing.T) {
	client := &stubBackend{loginErr: backend.ErrUnauthorized}
	svc := NewService(client, newStubStore(), nil)

	_, err := svc.Login(context.Background(), "ana@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginTransportErrorIsNotInvalidCredentials(t *testing.T) {
	client := &stubBackend{loginErr: errors.New("connection refused")}
	svc := NewService(client, newStubStore(), nil)

	_, err := svc.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateFallsBackToStore(t *testing.T) {
	store := newStubStore()
	store.sessions["tok-2"] = models.Session{Token: "tok-2", Role: models.RoleAdmin, Name: "Root"}
	svc := NewService(&stubBackend{}, store, nil)

	// Nothing in memory yet; the store must be consulted.
	session, err := svc.Authenticate(context.Background(), "tok-2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, session.Role)

	// Now cached: deleting from the store must not log the terminal out.
	delete(store.sessions, "tok-2")
	_, err = svc.Authenticate(context.Background(), "tok-2")
	assert.NoError(t, err)
}

func TestAuthenticateRejectsEmptyAndUnknownTokens(t *testing.T) {
	svc := NewService(&stubBackend{}, newStubStore(), nil)

	_, err := svc.Authenticate(context.Background(), "")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Authenticate(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLogoutClearsSession(t *testing.T) {
	client := &stubBackend{loginResp: &backend.LoginResponse{Token: "tok-3", Role: models.RoleSeller, Name: "Ana"}}
	store := newStubStore()
	svc := NewService(client, store, nil)

	_, err := svc.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "tok-3"))

	_, err = svc.Authenticate(context.Background(), "tok-3")
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Logging out twice is fine.
	require.NoError(t, svc.Logout(context.Background(), "tok-3"))
}

func TestRestoreRehydratesCache(t *testing.T) {
	store := newStubStore()
	store.sessions["tok-4"] = models.Session{Token: "tok-4", Role: models.RoleSeller}
	svc := NewService(&stubBackend{}, store, nil)

	require.NoError(t, svc.Restore(context.Background()))

	delete(store.sessions, "tok-4")
	_, err := svc.Authenticate(context.Background(), "tok-4")
	assert.NoError(t, err, "restored session must resolve from memory")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	client := &stubBackend{}
	svc := NewService(client, newStubStore(), nil)

	err := svc.Register(context.Background(), RegisterRequest{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "secret",
		ConfirmPassword: "different",
	}, models.RoleAdmin)

	require.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Empty(t, client.registered)
}

func TestRegisterRoleAssignment(t *testing.T) {
	tests := []struct {
		name        string
		requestedBy models.Role
		requested   models.Role
		want        models.Role
	}{
		{name: "admin may grant admin", requestedBy: models.RoleAdmin, requested: models.RoleAdmin, want: models.RoleAdmin},
		{name: "admin with blank role gets seller", requestedBy: models.RoleAdmin, requested: "", want: models.RoleSeller},
		{name: "seller cannot grant admin", requestedBy: models.RoleSeller, requested: models.RoleAdmin, want: models.RoleSeller},
		{name: "anonymous signup is a seller", requestedBy: "", requested: models.RoleAdmin, want: models.RoleSeller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubBackend{}
			svc := NewService(client, newStubStore(), nil)

			err := svc.Register(context.Background(), RegisterRequest{
				Name:     "Ana",
				Email:    "ana@example.com",
				Password: "secret",
				Role:     tt.requested,
			}, tt.requestedBy)
			require.NoError(t, err)

			require.Len(t, client.registered, 1)
			assert.Equal(t, tt.want, client.registered[0].Role)
		})
	}
}
