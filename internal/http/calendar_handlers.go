package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"todo-calendar/internal/auth"
	"todo-calendar/internal/calendar"
	"todo-calendar/internal/domain"
)

func (h *Handler) listEvents(c *gin.Context, who auth.Identity) {
	r, err := eventRange(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	todos, err := h.todos.ListByOwner(c.Request.Context(), who.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	events := calendar.Events(todos, r)
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newEventResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

func eventRange(c *gin.Context) (calendar.Range, error) {
	var r calendar.Range
	for name, dst := range map[string]*time.Time{"from": &r.From, "to": &r.To} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return calendar.Range{}, fmt.Errorf("%w: %s must be an RFC3339 timestamp", domain.ErrValidation, name)
		}
		*dst = t
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.To.After(r.From) {
		return calendar.Range{}, fmt.Errorf("%w: to must be after from", domain.ErrValidation)
	}
	return r, nil
}

func (h *Handler) calendarFeed(c *gin.Context, who auth.Identity) {
	feed, err := h.exports.Feed(c.Request.Context(), who.UserID, calendarName(who))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="calendar.ics"`)
	c.Data(http.StatusOK, calendar.ContentType, feed)
}

func calendarName(who auth.Identity) string {
	if who.DisplayName == "" {
		return "Todos"
	}
	return who.DisplayName + "'s todos"
}
