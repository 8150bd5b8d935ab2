package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit is a recorded payment applied against an invoice's total.
// Deposits are never mutated or deleted once recorded.
type Deposit struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	DepositDate time.Time       `json:"deposit_date"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
