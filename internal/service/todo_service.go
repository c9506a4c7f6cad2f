package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todo-calendar/internal/domain"
	"todo-calendar/internal/repository"
)

// CreateTodoInput carries the client supplied fields of a new todo. The owner
// is passed separately and always comes from the verified session.
type CreateTodoInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    string
}

// TodoService coordinates owner-scoped todo operations backed by repositories.
type TodoService interface {
	Create(ctx context.Context, ownerID int64, in CreateTodoInput) (*domain.Todo, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Todo, error)
	Get(ctx context.Context, id, ownerID int64) (*domain.Todo, error)
	Update(ctx context.Context, id, ownerID int64, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

type todoService struct {
	todos repository.TodoRepository
}

func NewTodoService(todos repository.TodoRepository) TodoService {
	return &todoService{todos: todos}
}

func (s *todoService) Create(ctx context.Context, ownerID int64, in CreateTodoInput) (*domain.Todo, error) {
	if ownerID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.DueDate == nil || in.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", domain.ErrValidation)
	}
	priority, err := domain.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		UserID:      ownerID,
		Title:       title,
		Description: in.Description,
		DueDate:     *in.DueDate,
		Priority:    priority,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *todoService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Todo, error) {
	if ownerID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	return s.todos.ListByOwner(ctx, ownerID)
}

func (s *todoService) Get(ctx context.Context, id, ownerID int64) (*domain.Todo, error) {
	if ownerID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	if id <= 0 {
		return nil, fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
	}
	return s.todos.Get(ctx, id, ownerID)
}

func (s *todoService) Update(ctx context.Context, id, ownerID int64, patch domain.TodoPatch) (*domain.Todo, error) {
	if ownerID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	if id <= 0 {
		return nil, fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
		}
		patch.Title = &title
	}
	if patch.DueDate != nil && patch.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date must not be empty", domain.ErrValidation)
	}
	if patch.Priority != nil {
		// an empty value only means MEDIUM on create
		if strings.TrimSpace(string(*patch.Priority)) == "" {
			return nil, fmt.Errorf("%w: priority must not be empty", domain.ErrValidation)
		}
		p, err := domain.ParsePriority(string(*patch.Priority))
		if err != nil {
			return nil, err
		}
		patch.Priority = &p
	}
	return s.todos.Update(ctx, id, ownerID, patch)
}

func (s *todoService) Delete(ctx context.Context, id, ownerID int64) error {
	if ownerID <= 0 {
		return domain.ErrUnauthenticated
	}
	if id <= 0 {
		return fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
	}
	return s.todos.Delete(ctx, id, ownerID)
}
