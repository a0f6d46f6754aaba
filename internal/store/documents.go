package store

import (
	"context"

	"notat/internal/domain"
)

// Documents is the durable home of the three independent collections.
// Each collection is read and written as a whole document; there are no
// partial updates and no cross-document consistency guarantees.
type Documents interface {
	LoadTermins(ctx context.Context) ([]domain.Termin, error)
	SaveTermins(ctx context.Context, items []domain.Termin) error

	LoadNotes(ctx context.Context) ([]domain.Note, error)
	SaveNotes(ctx context.Context, items []domain.Note) error

	LoadProfile(ctx context.Context) (map[string]string, error)
	SaveProfile(ctx context.Context, profile map[string]string) error
}
