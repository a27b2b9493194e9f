package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
	apperrors "github.com/itsd-platform/helpdesk-service/pkg/util/errorutil"
)

// UserStore keeps users in memory with an email index.
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]*domain.User
	byEmail map[string]string
	order   []string
}

// NewUserStore builds an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

// Create stores a user, assigning an id when absent.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[email] = user.ID
	s.order = append(s.order, user.ID)
	return nil
}

// GetByID fetches a user by id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	cp := *user
	return &cp, nil
}

// GetByEmail fetches a user by email, case-insensitively.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
	}
	cp := *s.users[id]
	return &cp, nil
}

// List returns all users in insertion order.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.users[id])
	}
	return out, nil
}

var _ repository.UserRepository = (*UserStore)(nil)
