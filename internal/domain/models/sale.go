package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one recorded line item as the remote store returns it. Immutable
// once recorded; price is the unit price at the time of sale.
type Sale struct {
	EAN           string          `json:"ean"`
	Description   string          `json:"description,omitempty"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Date          time.Time       `json:"date"`
	Seller        string          `json:"seller,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
}

// Total returns price * quantity for the sale.
func (s Sale) Total() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// ReportRow is one line of the sales report, either a single sale or an
// aggregate of several sales sharing a grouping key.
type ReportRow struct {
	Date          string          `json:"date" csv:"date"`
	EAN           string          `json:"ean" csv:"ean"`
	Description   string          `json:"description" csv:"description"`
	Quantity      int             `json:"quantity" csv:"quantity"`
	Price         decimal.Decimal `json:"price" csv:"price"`
	Total         decimal.Decimal `json:"total" csv:"total"`
	Seller        string          `json:"seller,omitempty" csv:"seller"`
	PaymentMethod string          `json:"paymentMethod,omitempty" csv:"payment_method"`
}

// DailyReport is the aggregated end-of-day summary archived in MongoDB by the
// report scheduler.
// Revenue is stored as its decimal string to keep the archive exact.
type DailyReport struct {
	ID            string    `bson:"_id" json:"id"`
	Date          time.Time `bson:"date" json:"date"`
	SalesCount    int       `bson:"sales_count" json:"sales_count"`
	TotalQuantity int       `bson:"total_quantity" json:"total_quantity"`
	Revenue       string    `bson:"revenue" json:"revenue"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
