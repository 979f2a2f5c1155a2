package clipboard

import (
	"context"
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"
)

// System mirrors copied text onto the host machine's clipboard. Useful when
// clipwire drives a headful browser on the operator's own desktop: the copy
// lands both in the page context and in the host clipboard.
type System struct{}

// NewSystem creates a System writer.
func NewSystem() *System { return &System{} }

func (s *System) Name() string { return "system" }

func (s *System) Write(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: system clipboard not supported on %s", runtime.GOOS)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: system write: %w", err)
	}
	return nil
}
