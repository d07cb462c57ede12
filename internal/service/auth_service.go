package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/clock"
	"github.com/spec-kit/ticket-tracker/internal/config"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// AuthService exchanges the operator password for an access token.
type AuthService struct {
	passwordHash string
	tokenMgr     *auth.TokenManager
	clock        clock.Clock
	logger       *zap.Logger
}

// NewAuthService builds the service. Authentication is disabled when no
// password hash is configured.
func NewAuthService(cfg config.AuthConfig, clk clock.Clock, logger *zap.Logger) *AuthService {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{passwordHash: cfg.PasswordHash, clock: clk, logger: logger}
	if s.Enabled() {
		s.tokenMgr = auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL())
	}
	return s
}

// Enabled reports whether requests must carry a token.
func (s *AuthService) Enabled() bool {
	return s.passwordHash != ""
}

// Login verifies password and issues a token.
func (s *AuthService) Login(_ context.Context, password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, apperrors.NewValidationError("authentication is not configured", nil)
	}
	if err := auth.ComparePassword(s.passwordHash, password); err != nil {
		s.logger.Warn("operator login rejected")
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(s.clock.Now())
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, exp, nil
}

// TokenManager returns the token manager, or nil when authentication is disabled.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
