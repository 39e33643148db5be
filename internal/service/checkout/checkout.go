package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/pkg/clients/backend"
)

// ErrEmptyCart indicates there is nothing to submit for the terminal.
var ErrEmptyCart = errors.New("cart is empty")

// SaleRecorder posts a single sale line to the remote store.
type SaleRecorder interface {
	RecordSale(ctx context.Context, req backend.RecordSaleRequest) error
}

// CartSource provides the lines to submit and the post-success cleanup.
type CartSource interface {
	Lines(terminal string) []models.CartLine
	Clear(terminal string)
}

// Service turns a finalized cart into remote sale records.
type Service struct {
	recorder SaleRecorder
	carts    CartSource
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a checkout service.
func NewService(recorder SaleRecorder, carts CartSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		recorder: recorder,
		carts:    carts,
		logger:   logger,
		now:      time.Now,
	}
}

// Result reports a successful submission.
type Result struct {
	Submitted []models.Sale `json:"submitted"`
	Total     string        `json:"total"`
	Timestamp time.Time     `json:"timestamp"`
}

// Submit issues one sale-creation request per cart line, concurrently, and
// waits for all of them. Any failure fails the whole batch and the cart is
// kept so the cashier can retry it.
//
// The remote API carries no idempotency key, so a retry after a partial
// failure can double-record the lines that already went through. Known gap in
// the backend contract; callers are told a retry may duplicate.
func (s *Service) Submit(ctx context.Context, terminal, seller, paymentMethod string) (*Result, error) {
	lines := s.carts.Lines(terminal)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, line := range lines {
		line := line
		g.Go(func() error {
			return s.recorder.RecordSale(gctx, backend.RecordSaleRequest{
				EAN:      line.Product.EAN,
				Quantity: line.Quantity,
				Price:    line.Product.Price.String(),
			})
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("sale batch failed, cart kept for retry",
			zap.String("terminal", terminal),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return nil, fmt.Errorf("submit sale batch: %w", err)
	}

	now := s.now()
	sales := make([]models.Sale, 0, len(lines))
	for _, line := range lines {
		sales = append(sales, models.Sale{
			EAN:           line.Product.EAN,
			Description:   line.Product.Description,
			Quantity:      line.Quantity,
			Price:         line.Product.Price,
			Date:          now,
			Seller:        seller,
			PaymentMethod: paymentMethod,
		})
	}

	s.carts.Clear(terminal)
	s.logger.Info("sale batch submitted",
		zap.String("terminal", terminal),
		zap.Int("lines", len(lines)))

	return &Result{
		Submitted: sales,
		Total:     models.CartTotal(lines).StringFixed(2),
		Timestamp: now,
	}, nil
}
