// Package file persists each collection as a single JSON document on the
// local filesystem. Writes go to a temp file in the same directory and
// are renamed over the previous document, so a crash mid-write never
// leaves a half-written file under the canonical name.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"notat/internal/domain"
	"notat/internal/store"
)

const (
	terminsFile = "termins.json"
	notesFile   = "notes.json"
	profileFile = "profile.json"
)

type Gateway struct {
	dir string
	log *zap.Logger
}

// New creates a gateway rooted at dir, creating the directory if needed.
func New(dir string, log *zap.Logger) (*Gateway, error) {
	if dir == "" {
		return nil, errors.New("empty data dir")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Gateway{dir: dir, log: log.With(zap.String("component", "store.file"))}, nil
}

func (g *Gateway) LoadTermins(ctx context.Context) ([]domain.Termin, error) {
	var items []domain.Termin
	if !g.load(ctx, terminsFile, &items) || items == nil {
		items = []domain.Termin{}
	}
	return items, nil
}

func (g *Gateway) SaveTermins(ctx context.Context, items []domain.Termin) error {
	if items == nil {
		items = []domain.Termin{}
	}
	return g.save(ctx, terminsFile, items)
}

func (g *Gateway) LoadNotes(ctx context.Context) ([]domain.Note, error) {
	var items []domain.Note
	if !g.load(ctx, notesFile, &items) || items == nil {
		items = []domain.Note{}
	}
	return items, nil
}

func (g *Gateway) SaveNotes(ctx context.Context, items []domain.Note) error {
	if items == nil {
		items = []domain.Note{}
	}
	return g.save(ctx, notesFile, items)
}

func (g *Gateway) LoadProfile(ctx context.Context) (map[string]string, error) {
	var profile map[string]string
	if !g.load(ctx, profileFile, &profile) || profile == nil {
		profile = map[string]string{}
	}
	return profile, nil
}

func (g *Gateway) SaveProfile(ctx context.Context, profile map[string]string) error {
	if profile == nil {
		profile = map[string]string{}
	}
	return g.save(ctx, profileFile, profile)
}

// load decodes the named document into v and reports whether v now holds
// a completely decoded document. A missing file is the first-run case and
// a decode failure of any kind (bad syntax, schema mismatch) is treated
// the same way: callers must discard v on false, because the decoder may
// have filled in part of the document before giving up.
func (g *Gateway) load(ctx context.Context, name string, v any) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	path := filepath.Join(g.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			g.log.Warn("document read failed", zap.String("file", name), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		g.log.Warn("document decode failed, starting empty", zap.String("file", name), zap.Error(err))
		return false
	}
	return true
}

func (g *Gateway) save(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(g.dir, name)
	tmp, err := os.CreateTemp(g.dir, name+"-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

var _ store.Documents = (*Gateway)(nil)
