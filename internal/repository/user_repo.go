package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/models"
	"github.com/yogan/backoffice/pkg/database"
)

// UserRepository handles user and credential database operations
type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a user and its bcrypt hash in one transaction
func (r *UserRepository) Create(email, passwordHash string) (*models.User, error) {
	user := &models.User{
		ID:    uuid.NewString(),
		Email: email,
	}

	err := r.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"INSERT INTO users (id, email) VALUES (?, ?)",
			user.ID, user.Email,
		); err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO passwords (user_id, hash) VALUES (?, ?)",
			user.ID, passwordHash,
		); err != nil {
			return fmt.Errorf("failed to insert password: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(
		"SELECT id, email, created_at FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(
		"SELECT id, email, created_at FROM users WHERE id = ?",
		id,
	).Scan(&user.ID, &user.Email, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get user by id", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// PasswordFor retrieves the stored credential for a user
func (r *UserRepository) PasswordFor(userID string) (*models.Password, error) {
	var pw models.Password
	err := r.db.QueryRow(
		"SELECT user_id, hash FROM passwords WHERE user_id = ?",
		userID,
	).Scan(&pw.UserID, &pw.Hash)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get password", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get password: %w", err)
	}
	return &pw, nil
}

// DeleteByEmail removes a user and, via cascade, its password and sessions
func (r *UserRepository) DeleteByEmail(email string) error {
	if _, err := r.db.Exec("DELETE FROM users WHERE email = ?", email); err != nil {
		r.logger.Error("Failed to delete user", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
