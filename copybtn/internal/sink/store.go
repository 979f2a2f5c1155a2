package sink

import (
	"context"

	"github.com/clipwire/clipwire/activation"
	"github.com/clipwire/clipwire/observability"
)

// Store delivers activation records to the SQLite activation log.
// The underlying store is non-blocking, so Send never fails the router.
type Store struct {
	store *observability.Store
}

// NewStore creates a Store sink on an initialised activation store.
func NewStore(s *observability.Store) *Store {
	return &Store{store: s}
}

func (s *Store) Send(ctx context.Context, rec activation.Record) error {
	s.store.Log(ctx, rec)
	return nil
}

func (s *Store) Close() error { return nil }
