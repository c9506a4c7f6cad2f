package repository

import (
	"context"

	"todo-calendar/internal/domain"
)

// TodoRepository exposes owner-scoped persistence for todos. Every lookup and
// mutation filters by id and owner in a single statement; a row owned by
// another user is reported as domain.ErrNotFound.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Todo, error)
	Get(ctx context.Context, id, ownerID int64) (*domain.Todo, error)
	Update(ctx context.Context, id, ownerID int64, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id, ownerID int64) error
}
