package bind

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
)

// rodSurface implements Surface against a live page. Every call is a single
// Eval so the read/mutate happens atomically inside the page's event loop.
type rodSurface struct {
	page     *rod.Page
	bindAttr string
}

// NewRodSurface creates a Surface over a rod page. bindAttr is the attribute
// bound buttons are stamped with.
func NewRodSurface(page *rod.Page, bindAttr string) Surface {
	return &rodSurface{page: page, bindAttr: bindAttr}
}

func (s *rodSurface) ButtonAttr(ctx context.Context, bindID, attr string) (string, bool, error) {
	res, err := s.page.Context(ctx).Eval(`(bindAttr, id, attr) => {
		const el = document.querySelector("[" + bindAttr + "=\"" + id + "\"]");
		if (!el || !el.hasAttribute(attr)) {
			return { ok: false };
		}
		return { ok: true, value: el.getAttribute(attr) };
	}`, s.bindAttr, bindID, attr)
	if err != nil {
		return "", false, fmt.Errorf("bind: read attribute %s: %w", attr, err)
	}
	if !res.Value.Get("ok").Bool() {
		return "", false, nil
	}
	return res.Value.Get("value").Str(), true, nil
}

func (s *rodSurface) TargetText(ctx context.Context, selector string) (string, bool, error) {
	res, err := s.page.Context(ctx).Eval(`(sel) => {
		let el = null;
		try {
			el = document.querySelector(sel);
		} catch (e) {
			return { found: false };
		}
		if (!el) {
			return { found: false };
		}
		return { found: true, text: el.innerText };
	}`, selector)
	if err != nil {
		return "", false, fmt.Errorf("bind: resolve target %q: %w", selector, err)
	}
	if !res.Value.Get("found").Bool() {
		return "", false, nil
	}
	return res.Value.Get("text").Str(), true, nil
}

func (s *rodSurface) TargetHTML(ctx context.Context, selector string) (string, bool, error) {
	res, err := s.page.Context(ctx).Eval(`(sel) => {
		let el = null;
		try {
			el = document.querySelector(sel);
		} catch (e) {
			return { found: false };
		}
		if (!el) {
			return { found: false };
		}
		return { found: true, html: el.outerHTML };
	}`, selector)
	if err != nil {
		return "", false, fmt.Errorf("bind: resolve target %q: %w", selector, err)
	}
	if !res.Value.Get("found").Bool() {
		return "", false, nil
	}
	return res.Value.Get("html").Str(), true, nil
}

func (s *rodSurface) ApplyFeedback(ctx context.Context, bindID, text string, add, remove []string) error {
	_, err := s.page.Context(ctx).Eval(`(bindAttr, id, text, add, remove) => {
		const el = document.querySelector("[" + bindAttr + "=\"" + id + "\"]");
		if (!el) {
			return false;
		}
		remove.forEach((c) => el.classList.remove(c));
		add.forEach((c) => el.classList.add(c));
		el.textContent = text;
		return true;
	}`, s.bindAttr, bindID, text, add, remove)
	if err != nil {
		return fmt.Errorf("bind: apply feedback: %w", err)
	}
	return nil
}
