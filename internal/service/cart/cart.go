package cart

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/domain/models"
)

// ErrInsufficientStock indicates the requested quantity exceeds the stock the
// backend reported for the product.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidQuantity indicates a non-positive requested quantity.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ErrLineNotFound indicates the referenced cart line index does not exist.
var ErrLineNotFound = errors.New("cart line not found")

// ErrNoActiveProduct indicates no successful lookup preceded the add.
var ErrNoActiveProduct = errors.New("no active product to add")

const (
	defaultDebounceInterval = 300 * time.Millisecond
	defaultLookupTimeout    = 15 * time.Second
	minCodeLength           = 8
)

// Service keeps one in-memory cart per terminal plus the terminal's lookup
// state (the product the cashier is about to add).
type Service struct {
	finder        ProductFinder
	logger        *zap.Logger
	debounce      time.Duration
	lookupTimeout time.Duration

	mu    sync.Mutex
	carts map[string]*terminalState
}

type terminalState struct {
	lines   []models.CartLine
	active  *models.Product
	pending *time.Timer
	waiter  chan LookupResult
	seq     uint64
}

// Option customizes Service construction.
type Option func(*Service)

// WithDebounceInterval overrides the lookup debounce window.
func WithDebounceInterval(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

// WithLookupTimeout overrides the per-lookup deadline.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) { s.lookupTimeout = d }
}

// NewService wires a cart service backed by the given product finder.
func NewService(finder ProductFinder, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		finder:        finder,
		logger:        logger,
		debounce:      defaultDebounceInterval,
		lookupTimeout: defaultLookupTimeout,
		carts:         make(map[string]*terminalState),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) state(terminal string) *terminalState {
	st, ok := s.carts[terminal]
	if !ok {
		st = &terminalState{}
		s.carts[terminal] = st
	}
	return st
}

// AddLine appends a new line for the product. The quantity must fit the stock
// reported at lookup time; on failure the cart is left untouched. A
// successful add clears the terminal's active lookup state.
func (s *Service) AddLine(terminal string, product models.Product, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addLineLocked(terminal, product, quantity)
}

// AddActive appends a line for the product resolved by the terminal's most
// recent successful lookup. The read and the append happen under one lock so
// concurrent calls cannot both consume the same lookup result.
func (s *Service) AddActive(terminal string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(terminal)
	if st.active == nil {
		return ErrNoActiveProduct
	}

	return s.addLineLocked(terminal, *st.active, quantity)
}

func (s *Service) addLineLocked(terminal string, product models.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > product.Stock {
		return ErrInsufficientStock
	}

	st := s.state(terminal)
	st.lines = append(st.lines, models.CartLine{Product: product, Quantity: quantity})
	st.active = nil

	s.logger.Debug("cart line added",
		zap.String("terminal", terminal),
		zap.String("ean", product.EAN),
		zap.Int("quantity", quantity))

	return nil
}

// ChangeQuantity applies delta to the line's quantity. A delta that would
// leave the quantity outside [1, stock] is rejected without any change.
func (s *Service) ChangeQuantity(terminal string, index, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(terminal)
	if index < 0 || index >= len(st.lines) {
		return ErrLineNotFound
	}

	line := st.lines[index]
	next := line.Quantity + delta
	if next < 1 || next > line.Product.Stock {
		return nil
	}

	st.lines[index].Quantity = next
	return nil
}

// RemoveLine drops the line at index, preserving the order of the rest.
func (s *Service) RemoveLine(terminal string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(terminal)
	if index < 0 || index >= len(st.lines) {
		return ErrLineNotFound
	}

	st.lines = append(st.lines[:index], st.lines[index+1:]...)
	return nil
}

// Lines returns a copy of the terminal's cart lines.
func (s *Service) Lines(terminal string) []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(terminal)
	out := make([]models.CartLine, len(st.lines))
	copy(out, st.lines)
	return out
}

// Total recomputes the cart total from the current lines.
func (s *Service) Total(terminal string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.CartTotal(s.state(terminal).lines)
}

// ActiveProduct returns the product resolved by the latest lookup, if any.
func (s *Service) ActiveProduct(terminal string) *models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(terminal)
	if st.active == nil {
		return nil
	}
	p := *st.active
	return &p
}

// Clear empties the terminal's cart and lookup state.
func (s *Service) Clear(terminal string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(terminal)
	st.lines = nil
	st.active = nil
}
