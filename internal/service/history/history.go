package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/domain/models"
)

const (
	// PageSize is the fixed number of report rows per page.
	PageSize = 20

	dateLayout = "2006-01-02"
)

// GroupKey selects which composite key aggregates the raw sale records.
// The choice changes the reported totals, so it is explicit everywhere.
type GroupKey string

const (
	GroupByDate            GroupKey = "date"
	GroupByDateCode        GroupKey = "date+code"
	GroupByDateCodePayment GroupKey = "date+code+payment"
)

// ParseGroupKey validates a user-supplied grouping key, defaulting to date+code.
func ParseGroupKey(raw string) (GroupKey, error) {
	switch GroupKey(raw) {
	case "":
		return GroupByDateCode, nil
	case GroupByDate, GroupByDateCode, GroupByDateCodePayment:
		return GroupKey(raw), nil
	default:
		return "", fmt.Errorf("unknown grouping key %q", raw)
	}
}

// SaleLister fetches recorded sales from the remote store.
type SaleLister interface {
	ListSales(ctx context.Context, start, end *time.Time) ([]models.Sale, error)
}

// Service provides the sales-history report: fetch, group, paginate.
type Service struct {
	lister SaleLister
	logger *zap.Logger
}

// NewService wires a history service instance.
func NewService(lister SaleLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{lister: lister, logger: logger}
}

// Fetch retrieves sales optionally bounded by inclusive start/end dates. The
// bounds are forwarded to the backend and enforced again locally; deployments
// differ on whether the backend honors them.
func (s *Service) Fetch(ctx context.Context, start, end *time.Time) ([]models.Sale, error) {
	sales, err := s.lister.ListSales(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}

	if start == nil && end == nil {
		return sales, nil
	}

	filtered := make([]models.Sale, 0, len(sales))
	for _, sale := range sales {
		day := sale.Date.Format(dateLayout)
		if start != nil && day < start.Format(dateLayout) {
			continue
		}
		if end != nil && day > end.Format(dateLayout) {
			continue
		}
		filtered = append(filtered, sale)
	}

	s.logger.Debug("sales fetched",
		zap.Int("returned", len(sales)),
		zap.Int("in_range", len(filtered)))

	return filtered, nil
}

// Rows converts raw sales into report rows, one per record.
func Rows(sales []models.Sale) []models.ReportRow {
	rows := make([]models.ReportRow, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, models.ReportRow{
			Date:          sale.Date.Format(dateLayout),
			EAN:           sale.EAN,
			Description:   sale.Description,
			Quantity:      sale.Quantity,
			Price:         sale.Price,
			Total:         sale.Total(),
			Seller:        sale.Seller,
			PaymentMethod: sale.PaymentMethod,
		})
	}
	return rows
}

// Group aggregates rows under the composite key, summing quantity and total.
// Fields outside the key are kept when uniform across the group and blanked
// otherwise. Grouping an already-grouped result by the same key is a no-op on
// the aggregate totals.
func Group(rows []models.ReportRow, key GroupKey) []models.ReportRow {
	groups := make(map[string]*models.ReportRow)
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		k := compositeKey(row, key)
		existing, ok := groups[k]
		if !ok {
			merged := row
			groups[k] = &merged
			order = append(order, k)
			continue
		}

		existing.Quantity += row.Quantity
		existing.Total = existing.Total.Add(row.Total)

		if existing.EAN != row.EAN {
			existing.EAN = ""
		}
		if existing.Description != row.Description {
			existing.Description = ""
		}
		if !existing.Price.Equal(row.Price) {
			existing.Price = row.Price // latest unit price wins on change
		}
		if existing.Seller != row.Seller {
			existing.Seller = ""
		}
		if existing.PaymentMethod != row.PaymentMethod && key != GroupByDateCodePayment {
			existing.PaymentMethod = ""
		}
	}

	out := make([]models.ReportRow, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].EAN != out[j].EAN {
			return out[i].EAN < out[j].EAN
		}
		return out[i].PaymentMethod < out[j].PaymentMethod
	})

	return out
}

func compositeKey(row models.ReportRow, key GroupKey) string {
	switch key {
	case GroupByDate:
		return row.Date
	case GroupByDateCodePayment:
		return row.Date + "|" + row.EAN + "|" + row.PaymentMethod
	default:
		return row.Date + "|" + row.EAN
	}
}

// Paginate returns the 1-indexed page of fixed size. Pages outside the data
// come back empty.
func Paginate(rows []models.ReportRow, page int) []models.ReportRow {
	if page < 1 {
		return nil
	}

	start := (page - 1) * PageSize
	if start >= len(rows) {
		return nil
	}

	end := start + PageSize
	if end > len(rows) {
		end = len(rows)
	}

	return rows[start:end]
}
