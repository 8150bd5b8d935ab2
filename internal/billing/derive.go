// Package billing computes read-only financial facts from an invoice's
// persisted state: totals, amount due, and due status. Everything here is
// pure and deterministic; the current date is always an explicit input.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yogan/backoffice/internal/models"
)

// DueStatus classifies an invoice's payment state relative to its due date
type DueStatus string

const (
	DueStatusPaid    DueStatus = "paid"
	DueStatusOverdue DueStatus = "overdue"
	DueStatusDue     DueStatus = "due"
)

func (s DueStatus) String() string { return string(s) }

// Totals holds the derived amounts for an invoice
type Totals struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	AmountDue   decimal.Decimal `json:"amount_due"`
}

// ComputeTotals derives total, paid, and due amounts from an invoice's line
// items and deposits. Empty sequences sum to zero. Negative quantities, unit
// prices, or deposit amounts are a data-integrity violation and fail with
// ErrInvalidInvoiceData rather than producing a misleading total.
func ComputeTotals(inv *models.Invoice) (Totals, error) {
	total := decimal.Zero
	for _, li := range inv.LineItems {
		if li.Quantity < 0 {
			return Totals{}, fmt.Errorf("line item %s: negative quantity %d: %w", li.ID, li.Quantity, ErrInvalidInvoiceData)
		}
		if li.UnitPrice.IsNegative() {
			return Totals{}, fmt.Errorf("line item %s: negative unit price %s: %w", li.ID, li.UnitPrice, ErrInvalidInvoiceData)
		}
		total = total.Add(li.Total())
	}

	paid := decimal.Zero
	for _, d := range inv.Deposits {
		if d.Amount.IsNegative() {
			return Totals{}, fmt.Errorf("deposit %s: negative amount %s: %w", d.ID, d.Amount, ErrInvalidInvoiceData)
		}
		paid = paid.Add(d.Amount)
	}

	return Totals{
		TotalAmount: total,
		AmountPaid:  paid,
		AmountDue:   total.Sub(paid),
	}, nil
}

// ComputeDueStatus classifies the invoice as paid, overdue, or due as of the
// given day. An amount due of zero or less (overpayment included) is paid.
// Only a due date strictly before today makes an invoice overdue; an unpaid
// invoice without a due date (due on receipt) stays due indefinitely.
func ComputeDueStatus(inv *models.Invoice, today time.Time) (DueStatus, error) {
	totals, err := ComputeTotals(inv)
	if err != nil {
		return "", err
	}

	if totals.AmountDue.LessThanOrEqual(decimal.Zero) {
		return DueStatusPaid, nil
	}
	if inv.DueDate != nil && dateOnly(*inv.DueDate).Before(dateOnly(today)) {
		return DueStatusOverdue, nil
	}
	return DueStatusDue, nil
}

// DueStatusLabel renders a status for display. Overdue invoices include how
// many days past due they are; unpaid invoices without a due date read
// "Due on receipt".
func DueStatusLabel(status DueStatus, dueDate *time.Time, today time.Time) string {
	switch status {
	case DueStatusPaid:
		return "Paid"
	case DueStatusOverdue:
		if dueDate == nil {
			return "Overdue"
		}
		days := daysBetween(dateOnly(*dueDate), dateOnly(today))
		if days == 1 {
			return "Overdue (1 day)"
		}
		return fmt.Sprintf("Overdue (%d days)", days)
	default:
		if dueDate == nil {
			return "Due on receipt"
		}
		return "Due " + dueDate.Format(displayDateFormat)
	}
}

const displayDateFormat = "1/2/2006"

// dateOnly reduces a timestamp to its calendar date as a UTC midnight.
// Dropping the zone means a UTC due date from storage and a local server
// clock compare as plain calendar days, and day arithmetic never crosses
// an offset change.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days between two dateOnly values
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
