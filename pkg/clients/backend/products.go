package backend

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mamadbah2/posgate/internal/domain/models"
)

// ListProducts fetches the full catalog.
func (c *APIClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var result []models.Product
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(apiErr).
		Get("/products")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}

// SearchProduct looks up a single product by its EAN code. Returns ErrNotFound
// when the backend has no matching record; transport failures come back as
// wrapped errors distinct from that.
func (c *APIClient) SearchProduct(ctx context.Context, ean string) (*models.Product, error) {
	result := new(models.Product)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("ean", ean).
		SetResult(result).
		SetError(apiErr).
		Get("/products/search")
	if err != nil {
		return nil, fmt.Errorf("search product %s: %w", ean, err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	// Some deployments answer 200 with an empty body instead of 404.
	if result.EAN == "" {
		return nil, ErrNotFound
	}

	return result, nil
}

// CreateProduct registers a new product, as multipart when an image is attached.
func (c *APIClient) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	return c.writeProduct(ctx, "POST", "/products", req)
}

// UpdateProduct replaces the product identified by id.
func (c *APIClient) UpdateProduct(ctx context.Context, id string, req CreateProductRequest) (*models.Product, error) {
	return c.writeProduct(ctx, "PUT", "/products/"+id, req)
}

// DeleteProduct removes the product identified by id.
func (c *APIClient) DeleteProduct(ctx context.Context, id string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr).
		Delete("/products/" + id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	return checkStatus(resp, apiErr)
}

func (c *APIClient) writeProduct(ctx context.Context, method, path string, req CreateProductRequest) (*models.Product, error) {
	result := new(models.Product)
	apiErr := new(apiError)

	r := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr)

	if req.Image != nil {
		r.SetFileReader("image", req.ImageFilename, req.Image).
			SetMultipartFormData(map[string]string{
				"ean":         req.EAN,
				"description": req.Description,
				"price":       req.Price,
				"stock":       strconv.Itoa(req.Stock),
			})
	} else {
		r.SetBody(req)
	}

	resp, err := r.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}
