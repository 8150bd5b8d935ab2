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

// DepositRepository handles deposit database operations. Deposits are
// append-only: there is no update or delete.
type DepositRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *database.DB, logger *zap.Logger) *DepositRepository {
	return &DepositRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a deposit against an invoice. The invoice must exist;
// the foreign key rejects orphan deposits.
func (r *DepositRepository) Create(invoiceID string, amount decimal.Decimal, depositDate time.Time, note string) (*models.Deposit, error) {
	deposit := &models.Deposit{
		ID:          uuid.NewString(),
		InvoiceID:   invoiceID,
		Amount:      amount,
		DepositDate: depositDate,
		Note:        note,
	}

	_, err := r.db.Exec(
		"INSERT INTO deposits (id, invoice_id, amount, deposit_date, note) VALUES (?, ?, ?, ?, ?)",
		deposit.ID, deposit.InvoiceID, deposit.Amount.String(), deposit.DepositDate, deposit.Note,
	)
	if err != nil {
		r.logger.Error("Failed to create deposit", zap.String("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to create deposit: %w", err)
	}
	return deposit, nil
}

// GetByID retrieves a deposit by id
func (r *DepositRepository) GetByID(id string) (*models.Deposit, error) {
	var deposit models.Deposit
	var amount string

	err := r.db.QueryRow(
		"SELECT id, invoice_id, amount, deposit_date, note, created_at FROM deposits WHERE id = ?",
		id,
	).Scan(&deposit.ID, &deposit.InvoiceID, &amount, &deposit.DepositDate, &deposit.Note, &deposit.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get deposit", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}

	deposit.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q on deposit %s: %w", amount, deposit.ID, err)
	}
	return &deposit, nil
}
