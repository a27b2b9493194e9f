package dto

import (
	"time"

	"github.com/itsd-platform/helpdesk-service/internal/domain"
)

// UserResponse is the user wire shape. The password hash never leaves
// the service boundary.
type UserResponse struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Role       domain.UserRole `json:"role"`
	Department string          `json:"department"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// FromUser maps a domain user onto the wire shape.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		Department: u.Department,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}
