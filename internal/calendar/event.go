package calendar

import (
	"time"

	"todo-calendar/internal/domain"
)

// EventDuration is the display length of a todo on the calendar.
const EventDuration = time.Hour

// Event is a todo placed on the calendar grid.
type Event struct {
	TodoID      int64
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Priority    domain.Priority
	Complete    bool
	Updated     time.Time
}

// FromTodo places the todo at its due date with a fixed one hour length.
func FromTodo(t domain.Todo) Event {
	return Event{
		TodoID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		Start:       t.DueDate,
		End:         t.DueDate.Add(EventDuration),
		Priority:    t.Priority,
		Complete:    t.Complete,
		Updated:     t.UpdatedAt,
	}
}

// Range is a half-open interval [From, To). Zero bounds are unbounded.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) overlaps(e Event) bool {
	if !r.From.IsZero() && !e.End.After(r.From) {
		return false
	}
	if !r.To.IsZero() && !e.Start.Before(r.To) {
		return false
	}
	return true
}

// Events projects todos to events, keeping those that overlap r. Order is preserved.
func Events(todos []domain.Todo, r Range) []Event {
	events := make([]Event, 0, len(todos))
	for _, t := range todos {
		e := FromTodo(t)
		if r.overlaps(e) {
			events = append(events, e)
		}
	}
	return events
}
