package cart

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/pkg/clients/backend"
)

// ProductFinder resolves an EAN code to a product on the remote store.
type ProductFinder interface {
	SearchProduct(ctx context.Context, ean string) (*models.Product, error)
}

// LookupResult is delivered once per Lookup call. The zero value means no
// lookup ran for the input (code too short). Exactly one of Product, NotFound
// or Err is set when a lookup did run, unless a newer keystroke superseded it.
type LookupResult struct {
	Product    *models.Product
	NotFound   bool
	Superseded bool
	Err        error
}

// Lookup registers the current contents of the terminal's code field. Codes
// shorter than the minimum length cancel any pending lookup and resolve
// immediately with the zero result. Each call restarts the debounce timer, so
// during rapid edits only the final value is queried; earlier callers receive
// a superseded result.
func (s *Service) Lookup(terminal, code string) <-chan LookupResult {
	ch := make(chan LookupResult, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(terminal)
	st.seq++
	seq := st.seq

	if st.pending != nil {
		st.pending.Stop()
		st.pending = nil
	}
	if st.waiter != nil {
		st.waiter <- LookupResult{Superseded: true}
		st.waiter = nil
	}

	if len(code) < minCodeLength {
		st.active = nil
		close(ch)
		return ch
	}

	st.waiter = ch
	st.pending = time.AfterFunc(s.debounce, func() {
		s.runLookup(terminal, code, seq, ch)
	})

	return ch
}

func (s *Service) runLookup(terminal, code string, seq uint64, ch chan LookupResult) {
	ctx, cancel := context.WithTimeout(context.Background(), s.lookupTimeout)
	defer cancel()

	product, err := s.finder.SearchProduct(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(terminal)
	if st.seq != seq {
		// A newer keystroke won the race while the query was in flight. The
		// caller may already hold a superseded result, so never block here.
		select {
		case ch <- LookupResult{Superseded: true}:
		default:
		}
		return
	}

	st.pending = nil
	st.waiter = nil

	switch {
	case errors.Is(err, backend.ErrNotFound):
		st.active = nil
		ch <- LookupResult{NotFound: true}
	case err != nil:
		st.active = nil
		s.logger.Warn("product lookup failed", zap.String("terminal", terminal), zap.String("ean", code), zap.Error(err))
		ch <- LookupResult{Err: err}
	default:
		st.active = product
		ch <- LookupResult{Product: product}
	}
}
