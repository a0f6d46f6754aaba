package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

type ReminderKind string

const (
	// ReminderMinutesBefore fires a single alert n minutes before the
	// appointment time. The only kind today; decoding is keyed on the
	// type tag so new kinds can be added without breaking old documents.
	ReminderMinutesBefore ReminderKind = "minutesBefore"
)

// Reminder is a tagged union describing when an extra alert should fire
// relative to the appointment time.
type Reminder struct {
	Kind    ReminderKind
	Minutes int
}

func MinutesBefore(minutes int) *Reminder {
	return &Reminder{Kind: ReminderMinutesBefore, Minutes: minutes}
}

type reminderJSON struct {
	Type    ReminderKind `json:"type"`
	Minutes int          `json:"minutes,omitempty"`
}

func (r Reminder) MarshalJSON() ([]byte, error) {
	return json.Marshal(reminderJSON{Type: r.Kind, Minutes: r.Minutes})
}

func (r *Reminder) UnmarshalJSON(data []byte) error {
	var raw reminderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case ReminderMinutesBefore:
		if raw.Minutes <= 0 {
			return fmt.Errorf("reminder minutes must be positive, got %d", raw.Minutes)
		}
		*r = Reminder{Kind: ReminderMinutesBefore, Minutes: raw.Minutes}
		return nil
	default:
		return fmt.Errorf("unknown reminder type %q", raw.Type)
	}
}

// Termin is a single titled appointment. ID and CreatedAt are fixed at
// construction; Title, DateTime, Note and Reminder may be rewritten by
// update. CreatedAt only serves as a stable sorting tie-break.
type Termin struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	DateTime    time.Time `json:"dateTime"`
	Note        *string   `json:"note,omitempty"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	Reminder    *Reminder `json:"reminder,omitempty"`
}

// NewTermin constructs an appointment with a fresh id and creation stamp.
func NewTermin(title string, dateTime time.Time, note *string, reminder *Reminder) (Termin, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Termin{}, err
	}
	return Termin{
		ID:        id,
		Title:     title,
		DateTime:  dateTime,
		Note:      note,
		CreatedAt: time.Now(),
		Reminder:  reminder,
	}, nil
}

// SortTermins orders a collection for display: overdue incomplete items
// first (oldest overdue leading), then upcoming incomplete items
// soonest-first, then all completed items by their scheduled time.
// Ties fall back to CreatedAt so the order is deterministic.
func SortTermins(items []Termin, now time.Time) []Termin {
	var past, future, completed []Termin
	for _, it := range items {
		switch {
		case it.IsCompleted:
			completed = append(completed, it)
		case it.DateTime.Before(now):
			past = append(past, it)
		default:
			future = append(future, it)
		}
	}
	byDateTime := func(bucket []Termin) func(i, j int) bool {
		return func(i, j int) bool {
			if bucket[i].DateTime.Equal(bucket[j].DateTime) {
				return bucket[i].CreatedAt.Before(bucket[j].CreatedAt)
			}
			return bucket[i].DateTime.Before(bucket[j].DateTime)
		}
	}
	sort.SliceStable(past, byDateTime(past))
	sort.SliceStable(future, byDateTime(future))
	sort.SliceStable(completed, byDateTime(completed))

	out := make([]Termin, 0, len(items))
	out = append(out, past...)
	out = append(out, future...)
	out = append(out, completed...)
	return out
}
