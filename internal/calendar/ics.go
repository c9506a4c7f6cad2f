package calendar

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-calendar/internal/domain"
)

const (
	ContentType = "text/calendar; charset=utf-8"
	prodID      = "-//todo-calendar//EN"
	icsTime     = "20060102T150405Z"
	maxLine     = 75
)

// uidNamespace derives stable event UIDs so re-imported feeds update events in place.
var uidNamespace = uuid.MustParse("6f1c9a4e-4f1d-4b43-9f0c-8d2a4c1e7b55")

// EventUID returns the iCalendar UID of the todo's event.
func EventUID(todoID int64) string {
	return uuid.NewSHA1(uidNamespace, []byte("todo:"+strconv.FormatInt(todoID, 10))).String()
}

// WriteICS renders events as an RFC 5545 VCALENDAR.
func WriteICS(w io.Writer, name string, events []Event, stamp time.Time) error {
	var buf bytes.Buffer
	line := func(s string) { writeFolded(&buf, s) }

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + prodID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	if name != "" {
		line("X-WR-CALNAME:" + escapeText(name))
	}
	for _, e := range events {
		line("BEGIN:VEVENT")
		line("UID:" + EventUID(e.TodoID))
		line("DTSTAMP:" + stamp.UTC().Format(icsTime))
		line("DTSTART:" + e.Start.UTC().Format(icsTime))
		line("DTEND:" + e.End.UTC().Format(icsTime))
		line("SUMMARY:" + escapeText(e.Title))
		if e.Description != "" {
			line("DESCRIPTION:" + escapeText(e.Description))
		}
		line("PRIORITY:" + strconv.Itoa(icsPriority(e.Priority)))
		if e.Complete {
			line("CATEGORIES:COMPLETED")
		}
		if !e.Updated.IsZero() {
			line("LAST-MODIFIED:" + e.Updated.UTC().Format(icsTime))
		}
		line("END:VEVENT")
	}
	line("END:VCALENDAR")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

// icsPriority maps to the RFC 5545 scale where 1 is highest and 9 lowest.
func icsPriority(p domain.Priority) int {
	switch p {
	case domain.PriorityHigh:
		return 1
	case domain.PriorityLow:
		return 9
	default:
		return 5
	}
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

func escapeText(s string) string { return textEscaper.Replace(s) }

// writeFolded writes one content line, folding it at 75 octets without
// splitting UTF-8 sequences.
func writeFolded(buf *bytes.Buffer, s string) {
	limit := maxLine
	for len(s) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
		buf.WriteString(s[:cut])
		buf.WriteString("\r\n ")
		s = s[cut:]
		// continuation lines start with a space that counts toward the limit
		limit = maxLine - 1
	}
	buf.WriteString(s)
	buf.WriteString("\r\n")
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
