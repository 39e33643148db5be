package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/posgate/internal/domain/models"
)

const dateParamLayout = "2006-01-02"

// RecordSale posts one sale line to the remote store.
func (c *APIClient) RecordSale(ctx context.Context, req RecordSaleRequest) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetError(apiErr).
		Post("/sales")
	if err != nil {
		return fmt.Errorf("record sale %s: %w", req.EAN, err)
	}

	return checkStatus(resp, apiErr)
}

// ListSales fetches recorded sales, optionally bounded by inclusive start/end dates.
func (c *APIClient) ListSales(ctx context.Context, start, end *time.Time) ([]models.Sale, error) {
	var result []models.Sale
	apiErr := new(apiError)

	r := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(apiErr)

	if start != nil {
		r.SetQueryParam("startDate", start.Format(dateParamLayout))
	}
	if end != nil {
		r.SetQueryParam("endDate", end.Format(dateParamLayout))
	}

	resp, err := r.Get("/sales")
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}

	return result, nil
}
