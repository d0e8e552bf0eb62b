package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/grupo-sgp/erp-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID         uuid.UUID
	FullName       string
	Email          string
	Role           domain.UserRole
	CommissionRate float64
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRole) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsPrivileged checks if user can authorize quotes and manage users
func (u *UserContext) IsPrivileged() bool {
	return u.Role.IsPrivileged()
}
