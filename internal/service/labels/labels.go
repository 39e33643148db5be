package labels

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/domain/models"
)

// ProductLister fetches the catalog from the remote store.
type ProductLister interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Service builds printable label rows from the product catalog.
type Service struct {
	lister ProductLister
	logger *zap.Logger
}

// NewService wires a label service instance.
func NewService(lister ProductLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{lister: lister, logger: logger}
}

// Build returns one label per product, skipping entries without an EAN since
// a label without a scannable code is useless at the shelf.
func (s *Service) Build(ctx context.Context) ([]models.Label, error) {
	products, err := s.lister.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog for labels: %w", err)
	}

	out := make([]models.Label, 0, len(products))
	for _, p := range products {
		if p.EAN == "" {
			continue
		}
		out = append(out, models.Label{
			EAN:         p.EAN,
			Description: p.Description,
			Price:       p.Price.StringFixed(2),
			ImageURL:    p.ImageURL,
		})
	}

	s.logger.Debug("labels built", zap.Int("count", len(out)))
	return out, nil
}
