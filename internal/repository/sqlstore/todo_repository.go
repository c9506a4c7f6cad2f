package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-calendar/internal/domain"
	"todo-calendar/internal/repository"
)

const todoColumns = `id, user_id, title, description, due_date, priority, complete, created_at, updated_at`

type TodoRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewTodoRepository(db *sql.DB, dialect Dialect) repository.TodoRepository {
	return &TodoRepository{db: db, dialect: dialect}
}

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	todo.DueDate = todo.DueDate.UTC()

	err := r.db.QueryRowContext(ctx, r.dialect.rebind(`
INSERT INTO todos (user_id, title, description, due_date, priority, complete, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`),
		todo.UserID,
		todo.Title,
		todo.Description,
		todo.DueDate,
		string(todo.Priority),
		todo.Complete,
		todo.CreatedAt,
		todo.UpdatedAt,
	).Scan(&todo.ID)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(`
SELECT `+todoColumns+`
FROM todos
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) Get(ctx context.Context, id, ownerID int64) (*domain.Todo, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.rebind(`
SELECT `+todoColumns+`
FROM todos
WHERE id = ? AND user_id = ?`), id, ownerID)
	return scanTodo(row)
}

// Update applies the patch with one conditional UPDATE so the ownership check
// and the write cannot be separated by a concurrent request.
func (r *TodoRepository) Update(ctx context.Context, id, ownerID int64, patch domain.TodoPatch) (*domain.Todo, error) {
	var priority, dueDate any
	if patch.Priority != nil {
		priority = string(*patch.Priority)
	}
	if patch.DueDate != nil {
		dueDate = patch.DueDate.UTC()
	}

	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`
UPDATE todos
SET title = COALESCE(?, title),
	description = COALESCE(?, description),
	due_date = COALESCE(?, due_date),
	priority = COALESCE(?, priority),
	complete = COALESCE(?, complete),
	updated_at = ?
WHERE id = ? AND user_id = ?`),
		nullString(patch.Title),
		nullString(patch.Description),
		dueDate,
		priority,
		nullBool(patch.Complete),
		time.Now().UTC(),
		id,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("todo update rows affected: %w", err)
	}
	if aff == 0 {
		return nil, fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
	}

	return r.Get(ctx, id, ownerID)
}

func (r *TodoRepository) Delete(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.rebind(`DELETE FROM todos WHERE id = ? AND user_id = ?`), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("todo delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanTodo(scanner interface {
	Scan(dest ...any) error
}) (*domain.Todo, error) {
	var (
		todo     domain.Todo
		priority string
	)
	if err := scanner.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Description,
		&todo.DueDate,
		&priority,
		&todo.Complete,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("todo: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan todo: %w", err)
	}
	todo.Priority = domain.Priority(priority)
	todo.DueDate = todo.DueDate.UTC()
	todo.CreatedAt = todo.CreatedAt.UTC()
	todo.UpdatedAt = todo.UpdatedAt.UTC()
	return &todo, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
