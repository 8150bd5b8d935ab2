package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yogan/backoffice/internal/models"
)

// InvoiceView is the flat, serializable structure handed to renderers.
// It carries both the structured values and their display forms so a
// template never has to reach back into the domain model.
type InvoiceView struct {
	InvoiceID          string          `json:"invoice_id"`
	CustomerID         string          `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	AmountDue          decimal.Decimal `json:"amount_due"`
	DueStatus          DueStatus       `json:"due_status"`
	DueStatusDisplay   string          `json:"due_status_display"`
	InvoiceDate        time.Time       `json:"invoice_date"`
	InvoiceDateDisplay string          `json:"invoice_date_display"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	DueDateDisplay     string          `json:"due_date_display"`
	LineItems          []LineItemView  `json:"line_items"`
	Deposits           []DepositView   `json:"deposits"`
}

// LineItemView is one rendered invoice line
type LineItemView struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// DepositView is one rendered deposit
type DepositView struct {
	ID                 string          `json:"id"`
	Amount             decimal.Decimal `json:"amount"`
	DepositDate        time.Time       `json:"deposit_date"`
	DepositDateDisplay string          `json:"deposit_date_display"`
	Note               string          `json:"note,omitempty"`
}

// BuildInvoiceView derives the full presentation view for an invoice as of
// the given day. The invoice must arrive with customer, line items, and
// deposits populated; a missing customer is treated as corrupt data.
func BuildInvoiceView(inv *models.Invoice, today time.Time) (*InvoiceView, error) {
	if inv.Customer == nil {
		return nil, fmt.Errorf("invoice %s: customer not populated: %w", inv.ID, ErrInvalidInvoiceData)
	}

	totals, err := ComputeTotals(inv)
	if err != nil {
		return nil, err
	}
	status, err := ComputeDueStatus(inv, today)
	if err != nil {
		return nil, err
	}

	view := &InvoiceView{
		InvoiceID:          inv.ID,
		CustomerID:         inv.Customer.ID,
		CustomerName:       inv.Customer.Name,
		TotalAmount:        totals.TotalAmount,
		AmountPaid:         totals.AmountPaid,
		AmountDue:          totals.AmountDue,
		DueStatus:          status,
		DueStatusDisplay:   DueStatusLabel(status, inv.DueDate, today),
		InvoiceDate:        inv.InvoiceDate,
		InvoiceDateDisplay: inv.InvoiceDate.Format(displayDateFormat),
		DueDate:            inv.DueDate,
		LineItems:          make([]LineItemView, 0, len(inv.LineItems)),
		Deposits:           make([]DepositView, 0, len(inv.Deposits)),
	}
	if inv.DueDate != nil {
		view.DueDateDisplay = inv.DueDate.Format(displayDateFormat)
	} else {
		view.DueDateDisplay = "On receipt"
	}

	for _, li := range inv.LineItems {
		view.LineItems = append(view.LineItems, LineItemView{
			ID:          li.ID,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			LineTotal:   li.Total(),
		})
	}
	for _, d := range inv.Deposits {
		view.Deposits = append(view.Deposits, DepositView{
			ID:                 d.ID,
			Amount:             d.Amount,
			DepositDate:        d.DepositDate,
			DepositDateDisplay: d.DepositDate.Format(displayDateFormat),
			Note:               d.Note,
		})
	}

	return view, nil
}
