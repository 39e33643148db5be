package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/posgate/internal/config"
	"github.com/mamadbah2/posgate/internal/domain/models"
)

// ErrNotFound indicates the backend answered but no record matched.
var ErrNotFound = errors.New("backend: record not found")

// ErrUnauthorized indicates the backend rejected the supplied credentials or token.
var ErrUnauthorized = errors.New("backend: unauthorized")

// Client exposes the remote store operations the gateway consumes.
type Client interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	SearchProduct(ctx context.Context, ean string) (*models.Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, req CreateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	RecordSale(ctx context.Context, req RecordSaleRequest) error
	ListSales(ctx context.Context, start, end *time.Time) ([]models.Sale, error)

	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) error
	ListUsers(ctx context.Context, token string) ([]models.User, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	apiPrefix  string
}

// NewClient builds a remote store client using the provided configuration values.
func NewClient(cfg config.BackendConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient: restyClient,
		apiPrefix:  strings.TrimSuffix(cfg.APIPrefix, "/"),
	}
}

// apiError represents the backend's error payload.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *apiError) text() string {
	if e == nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// CreateProductRequest carries product fields for create and update calls.
// When Image is set the request goes out as multipart form data, otherwise as JSON.
type CreateProductRequest struct {
	EAN         string `json:"ean"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`

	Image         io.Reader `json:"-"`
	ImageFilename string    `json:"-"`
}

// RecordSaleRequest is the payload for recording one sale line.
type RecordSaleRequest struct {
	EAN      string `json:"ean"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// LoginResponse mirrors the auth service's successful login payload.
type LoginResponse struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
	Name  string      `json:"name"`
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// checkStatus converts non-2xx responses into typed errors.
func checkStatus(resp *resty.Response, apiErr *apiError) error {
	switch {
	case resp.StatusCode() < http.StatusBadRequest:
		return nil
	case resp.StatusCode() == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return ErrUnauthorized
	default:
		return fmt.Errorf("backend api error: code=%d, message=%s", resp.StatusCode(), apiErr.text())
	}
}
