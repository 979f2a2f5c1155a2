// Package bind implements per-page button binding and the activation
// pipeline: discover marked elements, install the click hook, and on each
// activation resolve the target, submit its text to the clipboard, and apply
// visual feedback.
package bind

import "context"

// Surface is the minimal DOM access the activation pipeline needs. The live
// implementation evaluates in the page via CDP; tests substitute a fake.
type Surface interface {
	// ButtonAttr reads an attribute of a bound button, identified by its
	// bind ID. ok is false when the attribute is absent (an empty attribute
	// value is present, not absent).
	ButtonAttr(ctx context.Context, bindID, attr string) (value string, ok bool, err error)

	// TargetText returns the rendered text (innerText semantics) of the
	// first element matching selector. found is false when nothing matches;
	// an invalid selector also resolves to not found.
	TargetText(ctx context.Context, selector string) (text string, found bool, err error)

	// TargetHTML returns the outer HTML of the first element matching
	// selector, for payload formats that re-render markup.
	TargetHTML(ctx context.Context, selector string) (html string, found bool, err error)

	// ApplyFeedback mutates a bound button: removes then adds the given
	// classes and replaces the visible text. Pure DOM mutation; a missing
	// button (removed from the document since binding) is not an error.
	ApplyFeedback(ctx context.Context, bindID, text string, add, remove []string) error
}
