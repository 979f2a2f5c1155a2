package sink

import (
	"context"

	"github.com/clipwire/clipwire/activation"
)

// RecordFunc is called for each activation record (in-process, zero
// serialization).
type RecordFunc func(ctx context.Context, rec activation.Record) error

// Callback delivers records via Go function calls — the path for embedding
// the activator in a host binary that wants records as plain values.
type Callback struct {
	onRecord RecordFunc
}

// NewCallback creates a Callback sink. A nil handler drops records.
func NewCallback(onRecord RecordFunc) *Callback {
	return &Callback{onRecord: onRecord}
}

func (c *Callback) Send(ctx context.Context, rec activation.Record) error {
	if c.onRecord != nil {
		return c.onRecord(ctx, rec)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
