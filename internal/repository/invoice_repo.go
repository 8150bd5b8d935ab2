package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/models"
	"github.com/yogan/backoffice/pkg/database"
)

// InvoiceDraft describes an invoice to create. An invoice and its line
// items are created together in one transaction; both are immutable
// afterwards except for appended deposits.
type InvoiceDraft struct {
	CustomerID  string
	InvoiceDate time.Time
	DueDate     *time.Time // nil means due on receipt
	LineItems   []LineItemDraft
}

// LineItemDraft describes one billable line of a new invoice
type LineItemDraft struct {
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// InvoiceRepository handles invoice database operations
type InvoiceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *database.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an invoice with its line items in one transaction
func (r *InvoiceRepository) Create(draft InvoiceDraft) (*models.Invoice, error) {
	invoice := &models.Invoice{
		ID:          uuid.NewString(),
		CustomerID:  draft.CustomerID,
		InvoiceDate: draft.InvoiceDate,
		DueDate:     draft.DueDate,
	}

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		var dueDate interface{}
		if draft.DueDate != nil {
			dueDate = *draft.DueDate
		}
		if _, err := tx.Exec(
			"INSERT INTO invoices (id, customer_id, invoice_date, due_date) VALUES (?, ?, ?, ?)",
			invoice.ID, invoice.CustomerID, invoice.InvoiceDate, dueDate,
		); err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		for _, li := range draft.LineItems {
			item := models.LineItem{
				ID:          uuid.NewString(),
				InvoiceID:   invoice.ID,
				Description: li.Description,
				Quantity:    li.Quantity,
				UnitPrice:   li.UnitPrice,
			}
			if _, err := tx.Exec(
				"INSERT INTO line_items (id, invoice_id, description, quantity, unit_price) VALUES (?, ?, ?, ?, ?)",
				item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitPrice.String(),
			); err != nil {
				return fmt.Errorf("failed to insert line item: %w", err)
			}
			invoice.LineItems = append(invoice.LineItems, item)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.String("customer_id", draft.CustomerID), zap.Error(err))
		return nil, err
	}

	invoice.Deposits = []models.Deposit{}
	return invoice, nil
}

// GetByID retrieves an invoice with line items, deposits, and customer
// populated
func (r *InvoiceRepository) GetByID(id string) (*models.Invoice, error) {
	query := `
		SELECT i.id, i.customer_id, i.invoice_date, i.due_date, i.created_at,
			c.id, c.name, c.email, c.created_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.id = ?
	`

	invoice, err := r.scanInvoice(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := r.loadChildren(invoice); err != nil {
		r.logger.Error("Failed to load invoice details", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return invoice, nil
}

// List returns all invoices, fully populated, newest first
func (r *InvoiceRepository) List() ([]*models.Invoice, error) {
	query := `
		SELECT i.id, i.customer_id, i.invoice_date, i.due_date, i.created_at,
			c.id, c.name, c.email, c.created_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		ORDER BY i.invoice_date DESC, i.id
	`
	return r.queryInvoices(query)
}

// ListByCustomer returns a customer's invoices, fully populated
func (r *InvoiceRepository) ListByCustomer(customerID string) ([]*models.Invoice, error) {
	query := `
		SELECT i.id, i.customer_id, i.invoice_date, i.due_date, i.created_at,
			c.id, c.name, c.email, c.created_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.customer_id = ?
		ORDER BY i.invoice_date DESC, i.id
	`
	return r.queryInvoices(query, customerID)
}

// First returns the earliest-created invoice, fully populated, or
// ErrNotFound when none exist
func (r *InvoiceRepository) First() (*models.Invoice, error) {
	query := `
		SELECT i.id, i.customer_id, i.invoice_date, i.due_date, i.created_at,
			c.id, c.name, c.email, c.created_at
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		ORDER BY i.created_at, i.id
		LIMIT 1
	`

	invoice, err := r.scanInvoice(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get first invoice", zap.Error(err))
		return nil, fmt.Errorf("failed to get first invoice: %w", err)
	}

	if err := r.loadChildren(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *InvoiceRepository) queryInvoices(query string, args ...interface{}) ([]*models.Invoice, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := r.scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, invoice := range invoices {
		if err := r.loadChildren(invoice); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *InvoiceRepository) scanInvoice(row scanner) (*models.Invoice, error) {
	var invoice models.Invoice
	var customer models.Customer
	var dueDate sql.NullTime

	err := row.Scan(
		&invoice.ID, &invoice.CustomerID, &invoice.InvoiceDate, &dueDate, &invoice.CreatedAt,
		&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		invoice.DueDate = &dueDate.Time
	}
	invoice.Customer = &customer
	return &invoice, nil
}

func (r *InvoiceRepository) loadChildren(invoice *models.Invoice) error {
	lineItems, err := r.lineItemsFor(invoice.ID)
	if err != nil {
		return err
	}
	invoice.LineItems = lineItems

	deposits, err := r.depositsFor(invoice.ID)
	if err != nil {
		return err
	}
	invoice.Deposits = deposits
	return nil
}

func (r *InvoiceRepository) lineItemsFor(invoiceID string) ([]models.LineItem, error) {
	rows, err := r.db.Query(
		"SELECT id, invoice_id, description, quantity, unit_price FROM line_items WHERE invoice_id = ? ORDER BY rowid",
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		var unitPrice string
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &unitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		item.UnitPrice, err = decimal.NewFromString(unitPrice)
		if err != nil {
			return nil, fmt.Errorf("corrupt unit price %q on line item %s: %w", unitPrice, item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *InvoiceRepository) depositsFor(invoiceID string) ([]models.Deposit, error) {
	rows, err := r.db.Query(
		"SELECT id, invoice_id, amount, deposit_date, note, created_at FROM deposits WHERE invoice_id = ? ORDER BY deposit_date, created_at",
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits: %w", err)
	}
	defer rows.Close()

	deposits := []models.Deposit{}
	for rows.Next() {
		var deposit models.Deposit
		var amount string
		if err := rows.Scan(&deposit.ID, &deposit.InvoiceID, &amount, &deposit.DepositDate, &deposit.Note, &deposit.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deposit: %w", err)
		}
		deposit.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q on deposit %s: %w", amount, deposit.ID, err)
		}
		deposits = append(deposits, deposit)
	}
	return deposits, rows.Err()
}
