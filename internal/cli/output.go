package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"notat/internal/domain"
)

const displayTime = "02.01.2006 - 15:04"

// renderTermins writes the text listing: overdue first, then upcoming,
// then completed, mirroring the collection's display order.
func renderTermins(w io.Writer, items []domain.Termin, now time.Time) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no appointments")
		return err
	}

	section := ""
	for _, it := range items {
		next := sectionFor(it, now)
		if next != section {
			section = next
			if _, err := fmt.Fprintf(w, "%s\n", section); err != nil {
				return err
			}
		}
		mark := " "
		if it.IsCompleted {
			mark = "x"
		}
		line := fmt.Sprintf("  [%s] %s  %s  %s", mark, shortID(it.ID), it.DateTime.Format(displayTime), it.Title)
		if it.Note != nil {
			line += fmt.Sprintf("  (%s)", *it.Note)
		}
		if r := it.Reminder; r != nil && r.Kind == domain.ReminderMinutesBefore {
			line += fmt.Sprintf("  remind %dm before", r.Minutes)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func sectionFor(it domain.Termin, now time.Time) string {
	switch {
	case it.IsCompleted:
		return "completed:"
	case it.DateTime.Before(now):
		return "overdue:"
	default:
		return "upcoming:"
	}
}

func renderNotes(w io.Writer, items []domain.Note) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no notes")
		return err
	}
	for i, it := range items {
		if _, err := fmt.Fprintf(w, "%2d. %s  %s\n", i+1, shortID(it.ID), it.Text); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
