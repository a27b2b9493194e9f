package service

import (
	"context"
	"testing"

	"github.com/itsd-platform/helpdesk-service/internal/auth"
	"github.com/itsd-platform/helpdesk-service/internal/config"
	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository/memstore"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	users := memstore.NewUserStore()
	hash, err := auth.HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	seedUsers := []domain.User{
		{ID: "user-1", Email: "admin@enterprise.com", Role: domain.RoleAdmin, PasswordHash: hash, IsActive: true},
		{ID: "user-9", Email: "gone@enterprise.com", Role: domain.RoleViewer, PasswordHash: hash, IsActive: false},
	}
	for i := range seedUsers {
		if err := users.Create(context.Background(), &seedUsers[i]); err != nil {
			t.Fatalf("seed user failed: %v", err)
		}
	}
	cfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  24,
		BcryptCost:            4,
	}
	return NewAuthService(cfg, AuthDependencies{
		UserRepo:     users,
		RefreshStore: auth.NewMemoryRefreshTokenStore(),
	})
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestAuthService(t)

	result, err := svc.Login(context.Background(), "admin@enterprise.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.User.ID != "user-1" {
		t.Fatalf("user=%s, want user-1", result.User.ID)
	}
	if result.Token == "" || result.RefreshToken == "" {
		t.Fatal("both tokens must be issued")
	}
	if result.ExpiresIn <= 0 || result.ExpiresIn > 3600 {
		t.Fatalf("expiresIn=%d, want (0, 3600]", result.ExpiresIn)
	}

	claims, err := svc.TokenManager().ParseToken(result.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != domain.RoleAdmin {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc := newTestAuthService(t)
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@enterprise.com", "password123"},
		{"wrong password", "admin@enterprise.com", "wrong"},
		{"inactive account", "gone@enterprise.com", "password123"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			if !apperrors.IsCode(err, "UNAUTHORIZED") {
				t.Fatalf("expected UNAUTHORIZED, got %v", err)
			}
			domainErr := apperrors.ToDomainError(err)
			if domainErr.Message != "invalid credentials" {
				t.Fatalf("message %q leaks the failure cause", domainErr.Message)
			}
		})
	}
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "admin@enterprise.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.User.ID != "user-1" {
		t.Fatalf("user=%s, want user-1", refreshed.User.ID)
	}
	if refreshed.RefreshToken != login.RefreshToken {
		t.Fatal("refresh must keep the same refresh token")
	}
	if _, err := svc.TokenManager().ParseToken(refreshed.Token); err != nil {
		t.Fatalf("refreshed token does not parse: %v", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc := newTestAuthService(t)
	_, err := svc.Refresh(context.Background(), "never-issued")
	if !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, "admin@enterprise.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(ctx, login.RefreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken); !apperrors.IsCode(err, "UNAUTHORIZED") {
		t.Fatalf("revoked token must not refresh, got %v", err)
	}
}
