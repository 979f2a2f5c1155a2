// Package clipboard defines the platform clipboard write facility used by
// the activator, plus the payload formats a copy source can be rendered as.
//
// A Writer accepts a string and either fulfills or rejects; unavailability
// (insecure context, headless host without a display) surfaces as an error,
// never a crash. Writes are one-shot: once submitted they cannot be aborted,
// and no Writer retries.
package clipboard

import "context"

// Writer submits text to a clipboard backend.
type Writer interface {
	// Write submits text. A nil return means the platform fulfilled the
	// write; any error is the platform-supplied rejection reason.
	Write(ctx context.Context, text string) error

	// Name identifies the backend in diagnostics ("page", "system", ...).
	Name() string
}

// Format selects how a target's content is rendered before the write.
type Format string

const (
	// FormatText copies the target's rendered text (innerText semantics:
	// whitespace and formatting as displayed, not raw markup).
	FormatText Format = "text"

	// FormatMarkdown converts the target's HTML to Markdown before copying.
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a config string to a Format. Empty means FormatText.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, true
	case FormatMarkdown:
		return FormatMarkdown, true
	}
	return FormatText, false
}
