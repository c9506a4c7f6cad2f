package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"todo-calendar/internal/calendar"
	"todo-calendar/internal/domain"
	"todo-calendar/internal/service"
)

// dueDateLayouts lists the accepted input formats, most specific first.
// Layouts without a zone are read as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// flexTime decodes a timestamp in any of dueDateLayouts.
type flexTime struct {
	time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		f.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: dueDate must be a string", domain.ErrValidation)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		f.Time = time.Time{}
		return nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("%w: dueDate %q is not a valid date", domain.ErrValidation, raw)
}

func (f *flexTime) ptr() *time.Time {
	if f == nil || f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}

type registerRequest struct {
	Email           string `json:"email" binding:"required"`
	DisplayName     string `json:"displayName" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTodoRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *flexTime `json:"dueDate"`
	Priority    string    `json:"priority"`
}

func (r createTodoRequest) input() service.CreateTodoInput {
	return service.CreateTodoInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.ptr(),
		Priority:    r.Priority,
	}
}

// updateTodoRequest mirrors domain.TodoPatch: absent fields stay untouched.
type updateTodoRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	DueDate     *flexTime `json:"dueDate"`
	Priority    *string   `json:"priority"`
	Complete    *bool     `json:"complete"`
}

func (r updateTodoRequest) patch() domain.TodoPatch {
	patch := domain.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		Complete:    r.Complete,
	}
	if r.DueDate != nil {
		// an explicit empty value is passed through so validation can reject it
		t := r.DueDate.Time
		patch.DueDate = &t
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}
	return patch
}

type userResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

type loginResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type meResponse struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
}

type todoResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Priority    string    `json:"priority"`
	Complete    bool      `json:"complete"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newTodoResponse(t *domain.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate.UTC(),
		Priority:    string(t.Priority),
		Complete:    t.Complete,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

type eventResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Priority    string    `json:"priority"`
	Complete    bool      `json:"complete"`
}

func newEventResponse(e calendar.Event) eventResponse {
	return eventResponse{
		ID:          e.TodoID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start.UTC(),
		End:         e.End.UTC(),
		Priority:    string(e.Priority),
		Complete:    e.Complete,
	}
}

type exportResponse struct {
	Key       string     `json:"key"`
	URL       string     `json:"url"`
	Size      int64      `json:"size"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func newExportResponse(e service.Export) exportResponse {
	return exportResponse{
		Key:       e.Key,
		URL:       e.URL,
		Size:      e.Size,
		CreatedAt: e.CreatedAt,
		ExpiresAt: e.ExpiresAt,
	}
}
