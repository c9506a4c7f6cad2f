package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-calendar/internal/domain"
)

func TestFromTodo_OneHourEvent(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	e := FromTodo(domain.Todo{ID: 3, Title: "Buy milk", DueDate: due, Priority: domain.PriorityMedium})

	assert.Equal(t, int64(3), e.TodoID)
	assert.Equal(t, due, e.Start)
	assert.Equal(t, due.Add(time.Hour), e.End)
}

func TestEvents_RangeFilter(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	todos := []domain.Todo{
		{ID: 1, DueDate: day.Add(-2 * time.Hour)},    // ends before the range
		{ID: 2, DueDate: day.Add(-30 * time.Minute)}, // overlaps the start
		{ID: 3, DueDate: day.Add(12 * time.Hour)},
		{ID: 4, DueDate: day.Add(24 * time.Hour)}, // starts at the exclusive end
	}

	got := Events(todos, Range{From: day, To: day.Add(24 * time.Hour)})
	var ids []int64
	for _, e := range got {
		ids = append(ids, e.TodoID)
	}
	assert.Equal(t, []int64{2, 3}, ids)

	assert.Len(t, Events(todos, Range{}), 4)
	assert.Len(t, Events(todos, Range{From: day}), 3)
	assert.NotNil(t, Events(nil, Range{}))
}

func TestWriteICS(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	events := []Event{
		FromTodo(domain.Todo{ID: 1, Title: "Buy milk, eggs; bread", Description: "line1\nline2", DueDate: due, Priority: domain.PriorityHigh, Complete: true}),
		FromTodo(domain.Todo{ID: 2, Title: "Call mom", DueDate: due.Add(time.Hour), Priority: domain.PriorityLow}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, "Alice", events, due))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT\r\n"))
	assert.Contains(t, out, "DTSTART:20240101T100000Z\r\n")
	assert.Contains(t, out, "DTEND:20240101T110000Z\r\n")
	assert.Contains(t, out, `SUMMARY:Buy milk\, eggs\; bread`+"\r\n")
	assert.Contains(t, out, `DESCRIPTION:line1\nline2`+"\r\n")
	assert.Contains(t, out, "PRIORITY:1\r\n")
	assert.Contains(t, out, "PRIORITY:9\r\n")
	assert.Contains(t, out, "CATEGORIES:COMPLETED\r\n")
	assert.Contains(t, out, "UID:"+EventUID(1)+"\r\n")
	assert.Contains(t, out, "X-WR-CALNAME:Alice\r\n")
}

func TestEventUID_Stable(t *testing.T) {
	t.Parallel()
	assert.Equal(t, EventUID(7), EventUID(7))
	assert.NotEqual(t, EventUID(7), EventUID(8))
}

func TestWriteFolded(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	long := "SUMMARY:" + strings.Repeat("é", 60)
	writeFolded(&buf, long)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	require.Greater(t, len(lines), 1)
	for i, l := range lines {
		assert.LessOrEqual(t, len(l), 75)
		if i > 0 {
			assert.True(t, strings.HasPrefix(l, " "))
		}
	}

	var joined strings.Builder
	for i, l := range lines {
		if i > 0 {
			l = l[1:]
		}
		joined.WriteString(l)
	}
	assert.Equal(t, long, joined.String())
}
