// Package auth authenticates the single administrator account.
package auth

import (
	"crypto/subtle"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/fondolibro/fondolibro/internal/shared"
)

// Service validates credentials against the configured administrator.
// The application has exactly one privileged user; there is no user table.
type Service struct {
	adminEmail string
	adminHash  []byte
	logger     *slog.Logger
}

// NewService constructs a new Service. adminHash must be a bcrypt hash.
func NewService(adminEmail, adminHash string, logger *slog.Logger) *Service {
	return &Service{
		adminEmail: adminEmail,
		adminHash:  []byte(adminHash),
		logger:     logger,
	}
}

// Authenticate validates email/password credentials and returns the admin
// identity on success.
func (s *Service) Authenticate(email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
	hashErr := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password))
	if !emailOK || hashErr != nil {
		s.logger.Warn("failed login attempt", slog.String("email", email))
		return "", shared.ErrInvalidCredentials
	}
	return s.adminEmail, nil
}
