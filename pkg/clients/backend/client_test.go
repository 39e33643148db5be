package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/posgate/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.BackendConfig{
		BaseURL:   srv.URL,
		APIPrefix: "/api",
		Timeout:   2 * time.Second,
	})
}

func TestSearchProductFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "7791234567890", r.URL.Query().Get("ean"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          "p1",
			"ean":         "7791234567890",
			"description": "coffee",
			"price":       "10.50",
			"stock":       7,
		})
	}))

	product, err := client.SearchProduct(context.Background(), "7791234567890")
	require.NoError(t, err)
	assert.Equal(t, "coffee", product.Description)
	assert.Equal(t, "10.5", product.Price.String())
	assert.Equal(t, 7, product.Stock)
}

func TestSearchProductNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such product"}`))
	}))

	_, err := client.SearchProduct(context.Background(), "7791234567899")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchProductEmptyBodyTreatedAsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := client.SearchProduct(context.Background(), "7791234567899")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchProductTransportErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewClient(config.BackendConfig{BaseURL: srv.URL, APIPrefix: "/api", Timeout: time.Second})

	_, err := client.SearchProduct(context.Background(), "7791234567890")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRecordSaleSendsPayload(t *testing.T) {
	var got RecordSaleRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sales", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.RecordSale(context.Background(), RecordSaleRequest{
		EAN:      "7791234567890",
		Quantity: 2,
		Price:    "10.50",
	})
	require.NoError(t, err)
	assert.Equal(t, "7791234567890", got.EAN)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, "10.50", got.Price)
}

func TestRecordSaleServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"out of stock"}`))
	}))

	err := client.RecordSale(context.Background(), RecordSaleRequest{EAN: "7791234567890", Quantity: 1, Price: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of stock")
}

func TestListSalesForwardsDateBounds(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2024-01-31", r.URL.Query().Get("endDate"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"ean":"7791234567890","quantity":2,"price":"10.00","date":"2024-01-10T00:00:00Z"}]`))
	}))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	sales, err := client.ListSales(context.Background(), &start, &end)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "7791234567890", sales[0].EAN)
	assert.Equal(t, 2, sales[0].Quantity)
}

func TestListSalesWithoutBoundsOmitsParams(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("startDate"))
		assert.False(t, r.URL.Query().Has("endDate"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))

	sales, err := client.ListSales(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestLoginSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ana@example.com", creds["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-1","role":"vendedor","name":"Ana"}`))
	}))

	resp, err := client.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Token)
	assert.Equal(t, "Ana", resp.Name)
}

func TestLoginRejectedMapsToUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad credentials"}`))
	}))

	_, err := client.Login(context.Background(), "ana@example.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestListUsersSendsBearerToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"Ana","email":"ana@example.com","role":"admin"}]`))
	}))

	users, err := client.ListUsers(context.Background(), "tok-1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
}

func TestDeleteProductForbiddenMapsToUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/products/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"admins only"}`))
	}))

	err := client.DeleteProduct(context.Background(), "p1")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateProductMultipartWhenImageAttached(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "7791234567890", r.FormValue("ean"))
		assert.Equal(t, "10.00", r.FormValue("price"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "coffee.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"p1","ean":"7791234567890","description":"coffee","price":"10.00","stock":5}`))
	}))

	product, err := client.CreateProduct(context.Background(), CreateProductRequest{
		EAN:           "7791234567890",
		Description:   "coffee",
		Price:         "10.00",
		Stock:         5,
		Image:         bytes.NewReader([]byte("png bytes")),
		ImageFilename: "coffee.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", product.ID)
}
