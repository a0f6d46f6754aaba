// Package profile holds the flat key/value profile document (name,
// email). Same ownership rules as the other stores: one in-memory map,
// debounced whole-document persistence.
package profile

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"notat/internal/debounce"
	"notat/internal/store"
)

type Store struct {
	mu     sync.Mutex
	fields map[string]string

	docs  store.Documents
	log   *zap.Logger
	saver *debounce.Debouncer
}

func New(docs store.Documents, log *zap.Logger, saveDelay time.Duration) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if saveDelay <= 0 {
		saveDelay = 150 * time.Millisecond
	}
	s := &Store{
		fields: map[string]string{},
		docs:   docs,
		log:    log.With(zap.String("component", "profile")),
	}
	s.saver = debounce.New(saveDelay, s.persist)
	return s
}

func (s *Store) Load(ctx context.Context) error {
	fields, err := s.docs.LoadProfile(ctx)
	if err != nil {
		s.log.Warn("load failed, starting empty", zap.Error(err))
		fields = map[string]string{}
	}
	s.mu.Lock()
	s.fields = fields
	s.mu.Unlock()
	return nil
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.fields[key] = value
	s.mu.Unlock()
	s.saver.Trigger()
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.fields[key]
	return v, ok
}

// Keys returns the stored field names in stable order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.fields))
	for k := range s.fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	s.fields = map[string]string{}
	s.mu.Unlock()
	s.saver.Stop()
	return s.docs.SaveProfile(ctx, nil)
}

func (s *Store) Flush() {
	s.saver.Flush()
}

func (s *Store) persist() {
	s.mu.Lock()
	snapshot := make(map[string]string, len(s.fields))
	for k, v := range s.fields {
		snapshot[k] = v
	}
	s.mu.Unlock()
	if err := s.docs.SaveProfile(context.Background(), snapshot); err != nil {
		s.log.Warn("save failed", zap.Error(err))
	}
}
