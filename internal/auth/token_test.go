package auth

import (
	"testing"
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := &domain.User{ID: "user-1", Role: domain.RoleManager}

	token, expiresAt, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if time.Until(expiresAt) > time.Hour || time.Until(expiresAt) < 55*time.Minute {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("userID=%s, want user-1", claims.UserID)
	}
	if claims.Role != domain.RoleManager {
		t.Fatalf("role=%s, want MANAGER", claims.Role)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.GenerateToken(&domain.User{ID: "user-1", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	tm.ttl = -time.Minute

	token, _, err := tm.GenerateToken(&domain.User{ID: "user-1", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	if _, err := tm.ParseToken("not.a.jwt"); err == nil {
		t.Fatal("garbage must not parse")
	}
}
