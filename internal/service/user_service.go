package service

import (
	"context"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
	"github.com/itsd-platform/helpdesk-service/internal/query"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
)

// UserService exposes user directory reads.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// ListUsers returns one page of the directory.
func (s *UserService) ListUsers(ctx context.Context, pagination query.Pagination) (query.Page[domain.User], error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return query.Page[domain.User]{}, err
	}
	return query.PaginateUsers(users, pagination), nil
}

// GetUser fetches one user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
