// Package notes owns the in-memory note collection and its manual
// ordering. Positions are handed out in steps of ten and renormalized
// after every reorder.
package notes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notat/internal/debounce"
	"notat/internal/domain"
	"notat/internal/feedback"
	"notat/internal/store"
)

type Config struct {
	Documents store.Documents
	Signal    feedback.Signaler
	Log       *zap.Logger
	SaveDelay time.Duration
}

// Service is the single writer of the note collection.
type Service struct {
	mu    sync.Mutex
	items []domain.Note

	docs   store.Documents
	signal feedback.Signaler
	log    *zap.Logger
	saver  *debounce.Debouncer
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
		docs:   cfg.Documents,
		signal: cfg.Signal,
		log:    cfg.Log.With(zap.String("component", "notes")),
	}
	s.saver = debounce.New(cfg.SaveDelay, s.persist)
	return s
}

// Load replaces the in-memory collection with the persisted one, sorted
// ascending by position.
func (s *Service) Load(ctx context.Context) error {
	items, err := s.docs.LoadNotes(ctx)
	if err != nil {
		s.log.Warn("load failed, starting empty", zap.Error(err))
		items = nil
	}
	s.mu.Lock()
	s.items = domain.SortNotes(items)
	s.mu.Unlock()
	return nil
}

// Create appends a note ten positions past the current maximum. Text
// that is empty after trimming is a no-op.
func (s *Service) Create(text string) (domain.Note, bool) {
	if strings.TrimSpace(text) == "" {
		return domain.Note{}, false
	}

	s.mu.Lock()
	item, err := domain.NewNote(text, domain.NextPosition(s.items))
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("note id generation failed", zap.Error(err))
		return domain.Note{}, false
	}
	s.items = append(s.items, item)
	s.mu.Unlock()

	s.saver.Trigger()
	s.signal(feedback.Success)
	return item, true
}

// Update overwrites a note's text. An unknown id is a silent no-op, and
// so is text that is empty after trimming.
func (s *Service) Update(id uuid.UUID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items[idx].Text = text
	s.mu.Unlock()

	s.saver.Trigger()
	s.signal(feedback.Selection)
}

// Delete removes a note by id; unknown ids are a silent no-op.
func (s *Service) Delete(id uuid.UUID) {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.mu.Unlock()

	s.saver.Trigger()
	s.signal(feedback.Medium)
}

// Move reorders the collection per the usual list-drag gesture and
// renormalizes every position to (index+1)*10.
func (s *Service) Move(from []int, to int) {
	s.mu.Lock()
	s.items = domain.MoveNotes(s.items, from, to)
	s.mu.Unlock()
	s.saver.Trigger()
}

// ClearAll empties the collection and writes the empty document through
// immediately, skipping the debounce.
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.saver.Stop()
	return s.docs.SaveNotes(ctx, nil)
}

// Items returns a copy of the collection in display order.
func (s *Service) Items() []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Note, len(s.items))
	copy(out, s.items)
	return out
}

// Flush writes any pending debounced save immediately.
func (s *Service) Flush() {
	s.saver.Flush()
}

func (s *Service) persist() {
	items := s.Items()
	if err := s.docs.SaveNotes(context.Background(), items); err != nil {
		s.log.Warn("save failed", zap.Error(err))
	}
}

func (s *Service) index(id uuid.UUID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
