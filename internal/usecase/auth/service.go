package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/cache"
	"github.com/kindcoach/kindcoach-api/pkg/jwt"
)

// Service authenticates the single operator account. The configured
// password is bcrypt-hashed at startup and never kept in plain text;
// issued tokens are tracked in the session store with a sliding TTL.
type Service struct {
	username     string
	passwordHash []byte
	jwtManager   *jwt.Manager
	sessions     cache.SessionStore
	sessionTTL   time.Duration
	logger       *zap.Logger
}

// NewService creates the auth service
func NewService(
	adminUsername, adminPassword string,
	sessionTTL time.Duration,
	jwtManager *jwt.Manager,
	sessions cache.SessionStore,
	logger *zap.Logger,
) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &Service{
		username:     adminUsername,
		passwordHash: hash,
		jwtManager:   jwtManager,
		sessions:     sessions,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}, nil
}

// Login verifies the operator credentials and issues an access token with
// an active session.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if username != s.username {
		return "", entities.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", entities.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(username)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	tokenHash, err := s.jwtManager.HashToken(token)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Set(ctx, tokenHash, username, s.sessionTTL); err != nil {
		return "", err
	}

	s.logger.Info("✅ Operator logged in", zap.String("username", username))
	return token, nil
}

// Logout ends the session of a token.
func (s *Service) Logout(ctx context.Context, token string) error {
	tokenHash, err := s.jwtManager.HashToken(token)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, tokenHash); err != nil {
		return err
	}
	s.logger.Info("✅ Operator logged out")
	return nil
}

// Validate checks a token and its session, slides the session TTL and
// returns the authenticated username.
func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return "", entities.ErrInvalidToken
	}

	tokenHash, err := s.jwtManager.HashToken(token)
	if err != nil {
		return "", err
	}
	username, err := s.sessions.Get(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, entities.ErrSessionNotFound) {
			return "", entities.ErrSessionExpired
		}
		return "", err
	}
	if username != claims.Username {
		return "", entities.ErrInvalidToken
	}

	// Sliding expiry: activity keeps the session alive.
	if err := s.sessions.Refresh(ctx, tokenHash, s.sessionTTL); err != nil && !errors.Is(err, entities.ErrSessionNotFound) {
		s.logger.Warn("failed to refresh session TTL", zap.Error(err))
	}
	return username, nil
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}
