package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents an issued invoice with its billable lines and
// the deposits recorded against it. CustomerID and InvoiceDate are
// fixed at creation time; deposits are append-only.
type Invoice struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	InvoiceDate time.Time  `json:"invoice_date"`
	DueDate     *time.Time `json:"due_date,omitempty"` // nil means due on receipt
	LineItems   []LineItem `json:"line_items"`
	Deposits    []Deposit  `json:"deposits"`
	Customer    *Customer  `json:"customer,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LineItem is one billable entry on an invoice
type LineItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total returns quantity × unit price for this line
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(li.Quantity))
}
