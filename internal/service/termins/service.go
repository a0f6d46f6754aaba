// Package termins owns the in-memory appointment collection: creation
// under the free-tier quota, the display sort, completion toggling,
// debounced persistence and notification rescheduling.
package termins

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notat/internal/debounce"
	"notat/internal/domain"
	"notat/internal/feedback"
	"notat/internal/notify"
	"notat/internal/store"
)

// FreeLimit is the appointment cap for non-pro users. Completed items
// count toward it.
const FreeLimit = 10

// ErrQuotaExceeded rejects a create while the free tier is full. The
// caller is expected to surface an upgrade prompt, not an error page.
var ErrQuotaExceeded = errors.New("free appointment limit reached")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// Config carries the collaborators and tuning for a Service.
type Config struct {
	Documents store.Documents
	Scheduler *notify.Scheduler
	Reminders notify.Options
	Signal    feedback.Signaler
	Log       *zap.Logger
	SaveDelay time.Duration
}

// Service is the single writer of the appointment collection. All
// mutations run under one mutex; persistence is debounced and always
// writes the snapshot current at fire time, so a coalesced write never
// regresses to an older state.
type Service struct {
	mu    sync.Mutex
	items []domain.Termin

	docs      store.Documents
	scheduler *notify.Scheduler
	reminders notify.Options
	signal    feedback.Signaler
	log       *zap.Logger
	saver     *debounce.Debouncer
	now       func() time.Time

	upgradePrompt bool
}

func New(cfg Config) *Service {
	if cfg.Signal == nil {
		cfg.Signal = feedback.Discard
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.SaveDelay <= 0 {
		cfg.SaveDelay = 150 * time.Millisecond
	}
	s := &Service{
		docs:      cfg.Documents,
		scheduler: cfg.Scheduler,
		reminders: cfg.Reminders,
		signal:    cfg.Signal,
		log:       cfg.Log.With(zap.String("component", "termins")),
		now:       time.Now,
	}
	s.saver = debounce.New(cfg.SaveDelay, s.persist)
	return s
}

type CreateInput struct {
	Title    string
	DateTime time.Time
	Note     *string
	Reminder *domain.Reminder
	Pro      bool
}

type UpdateInput struct {
	Title    string
	DateTime time.Time
	Note     *string
	Reminder *domain.Reminder
}

// Load replaces the in-memory collection with the persisted one, sorted.
func (s *Service) Load(ctx context.Context) error {
	items, err := s.docs.LoadTermins(ctx)
	if err != nil {
		s.log.Warn("load failed, starting empty", zap.Error(err))
		items = nil
	}
	s.mu.Lock()
	s.items = domain.SortTermins(items, s.now())
	s.mu.Unlock()
	return nil
}

// Create inserts a new appointment. Non-pro users are capped at
// FreeLimit appointments counted across the whole collection, completed
// ones included; hitting the cap raises the upgrade prompt and returns
// ErrQuotaExceeded without touching the collection.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Termin, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Termin{}, validationError("title is required")
	}

	s.mu.Lock()
	if !in.Pro && len(s.items) >= FreeLimit {
		s.upgradePrompt = true
		s.mu.Unlock()
		s.signal(feedback.Warning)
		s.log.Info("create rejected by quota", zap.Int("count", FreeLimit))
		return domain.Termin{}, ErrQuotaExceeded
	}

	item, err := domain.NewTermin(title, in.DateTime, in.Note, in.Reminder)
	if err != nil {
		s.mu.Unlock()
		return domain.Termin{}, err
	}
	s.items = domain.SortTermins(append(s.items, item), s.now())
	s.mu.Unlock()

	s.schedule(ctx, item)
	s.saver.Trigger()
	s.signal(feedback.Success)
	s.log.Debug("termin created", zap.String("termin_id", item.ID.String()), zap.Time("date_time", item.DateTime))
	return item, nil
}

// Update overwrites the mutable fields of an existing appointment and
// reschedules its alerts. An unknown id is a silent no-op.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	item := s.items[idx]
	item.Title = in.Title
	item.DateTime = in.DateTime
	item.Note = in.Note
	item.Reminder = in.Reminder
	s.items[idx] = item
	s.items = domain.SortTermins(s.items, s.now())
	s.mu.Unlock()

	s.scheduler.Cancel(ctx, id)
	if !item.IsCompleted {
		s.schedule(ctx, item)
	}
	s.saver.Trigger()
	s.signal(feedback.Selection)
}

// Delete removes an appointment and cancels its alerts unconditionally.
// An unknown id is a silent no-op.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	s.scheduler.Cancel(ctx, id)
	s.saver.Trigger()
	s.signal(feedback.Medium)
}

// ToggleComplete flips the completion flag. Completing cancels the
// outstanding alerts; un-completing schedules them afresh for whatever
// fire times still lie ahead.
func (s *Service) ToggleComplete(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items[idx].IsCompleted = !s.items[idx].IsCompleted
	item := s.items[idx]
	s.items = domain.SortTermins(s.items, s.now())
	s.mu.Unlock()

	s.scheduler.Cancel(ctx, id)
	if !item.IsCompleted {
		s.schedule(ctx, item)
	}
	s.saver.Trigger()
	s.signal(feedback.Light)
}

// ClearAll empties the collection and writes the empty document through
// immediately, skipping the debounce.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.saver.Stop()
	return s.docs.SaveTermins(ctx, nil)
}

// Items returns a copy of the collection in display order.
func (s *Service) Items() []domain.Termin {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Termin, len(s.items))
	copy(out, s.items)
	return out
}

// UpgradePrompt reports whether a quota rejection has happened since the
// flag was last dismissed.
func (s *Service) UpgradePrompt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upgradePrompt
}

func (s *Service) DismissUpgradePrompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upgradePrompt = false
}

// ScheduleAll re-issues alerts for every incomplete appointment. Run on
// startup of a watcher so reminders survive restarts.
func (s *Service) ScheduleAll(ctx context.Context) {
	for _, item := range s.Items() {
		if !item.IsCompleted {
			s.schedule(ctx, item)
		}
	}
}

// Flush writes any pending debounced save immediately. Called when an
// editing surface is dismissed so the last keystroke is never lost.
func (s *Service) Flush() {
	s.saver.Flush()
}

func (s *Service) schedule(ctx context.Context, item domain.Termin) {
	s.scheduler.Schedule(ctx, item, s.reminders)
}

// persist runs on the debounce timer and saves the snapshot current at
// fire time, never one captured when the save was scheduled.
func (s *Service) persist() {
	items := s.Items()
	if err := s.docs.SaveTermins(context.Background(), items); err != nil {
		s.log.Warn("save failed", zap.Error(err))
	}
}

// index returns the position of id, or -1. Callers hold s.mu.
func (s *Service) index(id uuid.UUID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
