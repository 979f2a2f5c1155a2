package bind

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/clipwire/clipwire/activation"
	"github.com/clipwire/clipwire/clipboard"
)

// Activate runs one end-to-end copy attempt for a bound button: resolve the
// target, read its content, submit it to the clipboard, apply feedback, and
// emit the activation record. Every failure is terminal for this activation;
// the button can be activated again independently.
func (b *Binder) Activate(ctx context.Context, bindID string) (*activation.Record, error) {
	st, ok := b.state(bindID)
	if !ok {
		return nil, fmt.Errorf("bind: unknown button %q", bindID)
	}
	seq := st.seq.Add(1)

	rec := &activation.Record{
		ID:      b.cfg.NewRecordID(),
		PageURL: b.pageURL(),
		PageID:  b.pageID(),
		BindID:  bindID,
		Seq:     seq,
	}

	text, actErr := b.resolveAndCopy(ctx, bindID, rec)

	rec.Timestamp = time.Now().UnixMilli()
	if actErr == nil {
		rec.Outcome = activation.OutcomeSuccess
		rec.Chars = utf8.RuneCountInString(text)
	} else {
		rec.Outcome = activation.OutcomeFailed
		rec.ErrorKind = activation.Kind(actErr)
		rec.Error = actErr.Error()
		// The rejection reason is a diagnostic, never swallowed.
		b.logger.Warn("bind: activation failed",
			"bind_id", bindID, "kind", rec.ErrorKind, "error", actErr)
	}

	// Feedback is tied to the most recent activation of this button: a
	// completion superseded by a newer activation skips the visual update.
	if st.seq.Load() == seq {
		b.applyFeedback(ctx, bindID, actErr == nil)
	}

	if b.cfg.Sink != nil {
		if err := b.cfg.Sink.Send(ctx, *rec); err != nil {
			b.logger.Warn("bind: emit record failed", "error", err)
		}
	}

	return rec, nil
}

// resolveAndCopy performs steps 1-3 of an activation. It reports the copied
// text on success and the classified error otherwise. The clipboard is never
// invoked when resolution fails.
func (b *Binder) resolveAndCopy(ctx context.Context, bindID string, rec *activation.Record) (string, error) {
	selector, ok, err := b.surface.ButtonAttr(ctx, bindID, b.cfg.Buttons.TargetAttr)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &activation.ConfigError{BindID: bindID, Attr: b.cfg.Buttons.TargetAttr}
	}
	rec.Selector = selector

	text, found, err := b.readTarget(ctx, selector)
	if err != nil {
		return "", err
	}
	if !found {
		return "", &activation.ResolutionError{BindID: bindID, Selector: selector}
	}

	if err := b.cfg.Writer.Write(ctx, text); err != nil {
		return "", &activation.ClipboardError{Writer: b.cfg.Writer.Name(), Reason: err}
	}
	return text, nil
}

// readTarget reads the target's content in the configured payload format.
// The target is re-resolved on every activation, so its content may change
// between activations.
func (b *Binder) readTarget(ctx context.Context, selector string) (string, bool, error) {
	if b.cfg.Format == clipboard.FormatMarkdown && b.cfg.Converter != nil {
		html, found, err := b.surface.TargetHTML(ctx, selector)
		if err != nil || !found {
			return "", found, err
		}
		md, err := b.cfg.Converter.Markdown(html, b.pageURL())
		if err != nil {
			return "", true, err
		}
		return md, true, nil
	}
	return b.surface.TargetText(ctx, selector)
}

// applyFeedback reads the live feedback config and mutates the button.
// Always deterministic and synchronous; a failing DOM mutation is logged,
// nothing more — the activation outcome is already decided.
func (b *Binder) applyFeedback(ctx context.Context, bindID string, success bool) {
	text, change := b.cfg.Feedback().For(success)
	if err := b.surface.ApplyFeedback(ctx, bindID, text, change.Add, change.Remove); err != nil {
		b.logger.Warn("bind: feedback failed", "bind_id", bindID, "error", err)
	}
}

func (b *Binder) pageURL() string {
	if b.cfg.Tab != nil {
		return b.cfg.Tab.PageURL
	}
	return ""
}

func (b *Binder) pageID() string {
	if b.cfg.Tab != nil {
		return b.cfg.Tab.PageID
	}
	return ""
}
