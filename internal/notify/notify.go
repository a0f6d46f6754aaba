// Package notify turns appointments into scheduled local alerts and
// cancels them again. Fire-time math lives here; actual delivery is
// behind the Center interface so the OS notification machinery stays an
// external collaborator.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"notat/internal/domain"
)

type Kind string

const (
	KindDay    Kind = "day"
	KindHour   Kind = "hour"
	KindCustom Kind = "custom"
)

// Kinds lists every alert kind an appointment can own. Cancellation
// iterates this so it removes alerts regardless of which rule produced
// them.
var Kinds = []Kind{KindDay, KindHour, KindCustom}

// Identifier derives the stable alert identifier for an appointment and
// kind, e.g. "termin_<uuid>_day". It must never change: cancellation
// targets exactly the identifiers earlier schedules produced.
func Identifier(id uuid.UUID, kind Kind) string {
	return fmt.Sprintf("termin_%s_%s", id.String(), kind)
}

// Request is one alert to be delivered at FireAt.
type Request struct {
	ID     string
	FireAt time.Time
	Title  string
	Body   string
}

// Center is the delivery boundary. Failures are expected (permission
// denied, transient errors) and are treated as non-fatal by callers.
type Center interface {
	RequestAuthorization(ctx context.Context) (bool, error)
	Schedule(ctx context.Context, req Request) error
	Cancel(ctx context.Context, ids ...string) error
}

// Plan computes the alerts for one appointment. Each rule is gated on
// its fire time being strictly in the future; a fire time already behind
// now is silently skipped.
func Plan(item domain.Termin, dayBeforeAtNine, hourBefore bool, now time.Time) []Request {
	var out []Request

	add := func(kind Kind, fireAt time.Time) {
		if !fireAt.After(now) {
			return
		}
		req := Request{
			ID:     Identifier(item.ID, kind),
			FireAt: fireAt,
			Title:  item.Title,
		}
		if item.Note != nil {
			req.Body = *item.Note
		}
		out = append(out, req)
	}

	if dayBeforeAtNine {
		add(KindDay, DayBeforeAtNine(item.DateTime))
	}
	if hourBefore {
		add(KindHour, item.DateTime.Add(-time.Hour))
	}
	if r := item.Reminder; r != nil && r.Kind == domain.ReminderMinutesBefore {
		add(KindCustom, item.DateTime.Add(-time.Duration(r.Minutes)*time.Minute))
	}
	return out
}

// DayBeforeAtNine returns 09:00:00 local on the calendar day before the
// appointment's day.
func DayBeforeAtNine(dateTime time.Time) time.Time {
	d := dateTime.AddDate(0, 0, -1)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, d.Location())
}
