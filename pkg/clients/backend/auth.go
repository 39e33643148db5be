package backend

import (
	"context"
	"fmt"

	"github.com/mamadbah2/posgate/internal/domain/models"
)

// Login exchanges credentials for a bearer token, role and display name.
func (c *APIClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	result := new(LoginResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(result).
		SetError(apiErr).
		Post(c.apiPrefix + "/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

// Register creates a new account on the remote auth service.
func (c *APIClient) Register(ctx context.Context, req RegisterRequest) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetError(apiErr).
		Post(c.apiPrefix + "/auth/register")
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	return checkStatus(resp, apiErr)
}

// ListUsers fetches the registered accounts using the caller's bearer token.
func (c *APIClient) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var result []models.User
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&result).
		SetError(apiErr).
		Get(c.apiPrefix + "/users")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}
