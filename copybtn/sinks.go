package copybtn

import (
	"io"

	"github.com/clipwire/clipwire/copybtn/internal/sink"
	"github.com/clipwire/clipwire/observability"
)

// Sink is the output interface for activation records.
type Sink = sink.Sink

// RecordFunc is the in-process callback sink's handler.
type RecordFunc = sink.RecordFunc

// NewStdoutSink creates a JSON-lines sink. If w is nil, os.Stdout is used.
func NewStdoutSink(w io.Writer) Sink { return sink.NewStdout(w) }

// NewWebhookSink creates a sink that POSTs records to a URL with retries.
func NewWebhookSink(url string) Sink { return sink.NewWebhook(url) }

// NewCallbackSink creates an in-process sink delivering records as values.
func NewCallbackSink(fn RecordFunc) Sink { return sink.NewCallback(fn) }

// NewStoreSink creates a sink feeding the SQLite activation log.
func NewStoreSink(s *observability.Store) Sink { return sink.NewStore(s) }
