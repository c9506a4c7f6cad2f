package domain

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority accepts any casing of LOW, MEDIUM or HIGH. An empty value yields MEDIUM.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
	}
}

// Todo is a dated to-do item owned by exactly one user.
type Todo struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	DueDate     time.Time
	Priority    Priority
	Complete    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TodoPatch carries a partial update. Nil fields keep their stored value.
type TodoPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *Priority
	Complete    *bool
}
