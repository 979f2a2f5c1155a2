package clipboard

import (
	"context"
	"fmt"
	"log/slog"
)

// Multi fans a write out to several backends. Every backend is attempted;
// one rejection does not stop the others. The first error is returned so a
// partial mirror failure still reads as a rejection to the activator.
type Multi struct {
	writers []Writer
	logger  *slog.Logger
}

// NewMulti creates a fan-out writer. A nil logger falls back to slog.Default.
func NewMulti(logger *slog.Logger, writers ...Writer) *Multi {
	if logger == nil {
		logger = slog.Default()
	}
	return &Multi{writers: writers, logger: logger}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Write(ctx context.Context, text string) error {
	if len(m.writers) == 0 {
		return fmt.Errorf("clipboard: no writers configured")
	}
	var firstErr error
	for _, w := range m.writers {
		if err := w.Write(ctx, text); err != nil {
			m.logger.Warn("clipboard: write rejected", "writer", w.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
