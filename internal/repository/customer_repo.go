package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/models"
	"github.com/yogan/backoffice/pkg/database"
)

// CustomerRepository handles customer database operations
type CustomerRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *database.DB, logger *zap.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new customer
func (r *CustomerRepository) Create(name, email string) (*models.Customer, error) {
	customer := &models.Customer{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
	}

	_, err := r.db.Exec(
		"INSERT INTO customers (id, name, email) VALUES (?, ?, ?)",
		customer.ID, customer.Name, customer.Email,
	)
	if err != nil {
		r.logger.Error("Failed to create customer", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// GetByID retrieves a customer by id
func (r *CustomerRepository) GetByID(id string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.QueryRow(
		"SELECT id, name, email, created_at FROM customers WHERE id = ?",
		id,
	).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get customer", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

// List returns all customers ordered by name
func (r *CustomerRepository) List() ([]*models.Customer, error) {
	rows, err := r.db.Query("SELECT id, name, email, created_at FROM customers ORDER BY name, id")
	if err != nil {
		r.logger.Error("Failed to list customers", zap.Error(err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var customer models.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, &customer)
	}
	return customers, rows.Err()
}

// First returns the earliest-created customer, or ErrNotFound when the
// table is empty
func (r *CustomerRepository) First() (*models.Customer, error) {
	var customer models.Customer
	err := r.db.QueryRow(
		"SELECT id, name, email, created_at FROM customers ORDER BY created_at, id LIMIT 1",
	).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get first customer", zap.Error(err))
		return nil, fmt.Errorf("failed to get first customer: %w", err)
	}
	return &customer, nil
}
