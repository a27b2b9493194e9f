package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/itsd-platform/helpdesk-service/internal/auth"
	"github.com/itsd-platform/helpdesk-service/internal/config"
	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

// AuthResult is returned by a successful login.
type AuthResult struct {
	User         *domain.User
	Token        string
	RefreshToken string
	ExpiresIn    int64
}

// AuthService coordinates login, token refresh and logout.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	refresh    auth.RefreshTokenStore
	refreshTTL time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	RefreshStore auth.RefreshTokenStore
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		refresh:    deps.RefreshStore,
		refreshTTL: cfg.RefreshTokenTTL(),
	}
}

// Login authenticates a user by email and password. Credential failures
// are indistinguishable from unknown accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, "NOT_FOUND") {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken := uuid.NewString()
	if err := s.refresh.Save(ctx, refreshToken, user.ID, s.refreshTTL); err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token itself stays valid until logout or expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.refresh.Lookup(ctx, refreshToken)
	if err != nil {
		if err == auth.ErrRefreshTokenNotFound {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsCode(err, "NOT_FOUND") {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("user inactive")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
	}, nil
}

// Logout revokes the refresh token. Access tokens simply age out.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refresh.Revoke(ctx, refreshToken)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
