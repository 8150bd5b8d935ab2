// Package auth resolves browser sessions to users. Sessions are random
// tokens held in an HttpOnly cookie and backed by a database row, so a
// logout revokes the session server-side immediately.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/models"
	"github.com/yogan/backoffice/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	// Callers present it as one message; which half failed is never disclosed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated is returned when no valid session backs a request
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Service issues, resolves, and revokes login sessions
type Service struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	ttl      time.Duration
	logger   *zap.Logger
}

// NewService creates a new auth service
func NewService(users *repository.UserRepository, sessions *repository.SessionRepository, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
}

// Login verifies credentials and issues a new session
func (s *Service) Login(email, password string, now time.Time) (*models.Session, error) {
	user, err := s.users.GetByEmail(email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	pw, err := s.users.PasswordFor(user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(pw.Hash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return session, nil
}

// Resolve maps a session token to its user. Unknown, expired, or revoked
// tokens yield ErrUnauthenticated.
func (s *Service) Resolve(token string, now time.Time) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.GetByToken(token, now)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(session.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes a session. Revoking an unknown token is not an error.
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(token)
}

// PurgeExpired deletes sessions past their expiry
func (s *Service) PurgeExpired(now time.Time) error {
	n, err := s.sessions.DeleteExpired(now)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("Purged expired sessions", zap.Int64("count", n))
	}
	return nil
}

// newToken returns a 256-bit random token, hex encoded
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
