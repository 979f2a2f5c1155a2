// Package sink defines output backends for activation records.
package sink

import (
	"context"

	"github.com/clipwire/clipwire/activation"
)

// Sink is the output interface. Implementations deliver activation records
// to different backends (stdout, webhook, sqlite store, in-process callback).
type Sink interface {
	Send(ctx context.Context, rec activation.Record) error
	Close() error
}
