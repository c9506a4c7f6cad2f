package repository

import (
	"context"

	"todo-calendar/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	// Create inserts the user and fills in its ID and CreatedAt.
	// A duplicate email yields domain.ErrConflict.
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
