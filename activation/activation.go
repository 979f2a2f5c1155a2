// Package activation defines the structured types emitted by the clipwire
// activator. These are the public API contract: any consumer (sinks, the
// activation store, custom pipelines) imports this package to receive and
// process copy activations.
package activation

import (
	"errors"
	"fmt"
)

// Outcome is the terminal state of a single activation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success" // clipboard write fulfilled
	OutcomeFailed  Outcome = "failed"  // resolution or clipboard write failed
)

// ErrorKind classifies why an activation failed. Host code observes the kind
// through diagnostics and the activation Record, never through control flow.
type ErrorKind string

const (
	ErrNone       ErrorKind = ""           // activation succeeded
	ErrConfig     ErrorKind = "config"     // target-reference attribute missing
	ErrResolution ErrorKind = "resolution" // reference present, no matching element
	ErrClipboard  ErrorKind = "clipboard"  // platform write rejected
)

// ConfigError reports a button with no target-reference attribute.
// The clipboard is never invoked for this activation.
type ConfigError struct {
	BindID string // bound button identity
	Attr   string // the attribute that was expected
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("activation: button %s: no target configured (missing %s)", e.BindID, e.Attr)
}

// ResolutionError reports a target selector that matched no element.
// The clipboard is never invoked for this activation.
type ResolutionError struct {
	BindID   string
	Selector string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("activation: button %s: target not found (%s)", e.BindID, e.Selector)
}

// ClipboardError wraps a platform clipboard rejection. The reason is
// platform-supplied and opaque (permission denied, insecure context, ...).
type ClipboardError struct {
	Writer string // which clipboard writer rejected
	Reason error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("activation: clipboard write via %s rejected: %v", e.Writer, e.Reason)
}

func (e *ClipboardError) Unwrap() error { return e.Reason }

// Kind maps an activation error to its ErrorKind. Unknown errors are
// classified as clipboard failures: by the time the pipeline produces an
// error that is neither config nor resolution, the clipboard call was the
// only step left to fail.
func Kind(err error) ErrorKind {
	if err == nil {
		return ErrNone
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ErrConfig
	}
	var re *ResolutionError
	if errors.As(err, &re) {
		return ErrResolution
	}
	return ErrClipboard
}
