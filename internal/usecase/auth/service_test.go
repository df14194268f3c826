package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
	"github.com/kindcoach/kindcoach-api/internal/infrastructure/cache"
	"github.com/kindcoach/kindcoach-api/pkg/jwt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	manager := jwt.NewManager("test-secret", 30*time.Minute)
	svc, err := NewService("admin", "secret-password", 30*time.Minute, manager, cache.NewMemorySessionStore(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestLoginAndValidate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "secret-password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	username, err := svc.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if username != "admin" {
		t.Fatalf("unexpected username %q", username)
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "admin", "wrong"); !errors.Is(err, entities.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "intruder", "secret-password"); !errors.Is(err, entities.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogout_EndsSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin", "secret-password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := svc.Validate(ctx, token); !errors.Is(err, entities.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestValidate_GarbageToken(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Validate(context.Background(), "not-a-token"); !errors.Is(err, entities.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidate_TokenWithoutSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// A structurally valid token whose session was never stored.
	manager := jwt.NewManager("test-secret", 30*time.Minute)
	token, err := manager.GenerateAccessToken("admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	if _, err := svc.Validate(ctx, token); !errors.Is(err, entities.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}
