// Package copybtn wires copy-to-clipboard behavior onto marked elements of
// live pages. It orchestrates the browser, discovers eligible buttons, binds
// activation handlers, and on each activation performs target resolution →
// clipboard write → visual feedback, emitting one activation record per
// attempt to the configured sinks.
package copybtn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"

	"github.com/clipwire/clipwire/activation"
	"github.com/clipwire/clipwire/clipboard"
	"github.com/clipwire/clipwire/copybtn/internal/bind"
	"github.com/clipwire/clipwire/copybtn/internal/browser"
	"github.com/clipwire/clipwire/copybtn/internal/config"
	"github.com/clipwire/clipwire/copybtn/internal/sink"
)

// Activator is the top-level orchestrator. It manages the browser, bound
// pages, and sinks. Create one per clipwire instance.
type Activator struct {
	cfg    *config.Config
	mgr    *browser.Manager
	sinkR  *sink.Router
	logger *slog.Logger

	mu    sync.Mutex
	pages map[string]*boundPage // keyed by page ID

	fbMu     sync.RWMutex
	feedback config.Feedback

	system *clipboard.System
	conv   *clipboard.Converter
	format clipboard.Format
}

type boundPage struct {
	cfg    config.PageConfig
	tab    *browser.Tab
	binder *bind.Binder
}

// New creates an Activator from configuration.
func New(cfg *config.Config, logger *slog.Logger, sinks ...sink.Sink) *Activator {
	if logger == nil {
		logger = slog.Default()
	}

	format, ok := clipboard.ParseFormat(cfg.Clipboard.Format)
	if !ok {
		logger.Warn("copybtn: unknown clipboard format, using text",
			"format", cfg.Clipboard.Format)
	}

	a := &Activator{
		cfg: cfg,
		mgr: browser.NewManager(browser.Config{
			RemoteURL:       cfg.Browser.Remote,
			RecycleInterval: cfg.Browser.RecycleInterval,
			Headful:         cfg.Browser.Stealth == "headful",
			Logger:          logger,
		}),
		sinkR:    sink.NewRouter(logger, sinks...),
		logger:   logger,
		pages:    make(map[string]*boundPage),
		feedback: cfg.Feedback,
		format:   format,
	}

	if format == clipboard.FormatMarkdown {
		a.conv = clipboard.NewConverter(cfg.Clipboard.Sanitize)
	}
	for _, w := range cfg.Clipboard.Writers {
		if w == "system" {
			a.system = clipboard.NewSystem()
		}
	}

	return a
}

// Start launches the browser and binds all configured pages.
func (a *Activator) Start(ctx context.Context) error {
	b, err := a.mgr.Start(ctx)
	if err != nil {
		return fmt.Errorf("copybtn: start browser: %w", err)
	}

	a.mgr.SetRecycleCallback(&browser.RecycleCallback{
		BeforeRecycle: a.stopAllBinders,
		AfterRecycle:  func(b *rod.Browser) { a.rebindAll(ctx, b) },
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, page := range a.cfg.Pages {
		if err := a.bindPageLocked(ctx, b, page); err != nil {
			a.logger.Error("copybtn: failed to bind page",
				"url", page.URL, "error", err)
		}
	}

	return nil
}

// BindPage opens a tab for the page, grants clipboard permission, and binds
// every eligible button found in the document.
func (a *Activator) BindPage(ctx context.Context, pageCfg config.PageConfig) error {
	b := a.mgr.Browser()
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bindPageLocked(ctx, b, pageCfg)
}

func (a *Activator) bindPageLocked(ctx context.Context, b *rod.Browser, pageCfg config.PageConfig) error {
	tab, err := browser.OpenTab(ctx, b, a.logger, pageCfg.URL, pageCfg.ID)
	if err != nil {
		return fmt.Errorf("copybtn: open tab: %w", err)
	}

	// Best effort: some Chrome builds reject the permission names, and the
	// in-page write then surfaces its own rejection.
	if err := clipboard.GrantPermissions(b, originOf(pageCfg.URL)); err != nil {
		a.logger.Warn("copybtn: grant clipboard permission failed",
			"url", pageCfg.URL, "error", err)
	}

	binder := bind.New(bind.Config{
		Tab:       tab,
		Buttons:   a.cfg.Buttons,
		Feedback:  a.Feedback,
		Writer:    a.buildWriter(tab),
		Format:    a.format,
		Converter: a.conv,
		Sink:      a.sinkR,
		Logger:    a.logger,
	})
	binder.SetContext(ctx)

	n, err := binder.Start()
	if err != nil {
		tab.Close()
		return fmt.Errorf("copybtn: bind page: %w", err)
	}

	a.pages[pageCfg.ID] = &boundPage{cfg: pageCfg, tab: tab, binder: binder}

	if pageCfg.RescanInterval > 0 {
		go a.rescanLoop(ctx, pageCfg.ID, pageCfg.RescanInterval)
	}

	a.logger.Info("copybtn: page bound",
		"url", pageCfg.URL, "id", pageCfg.ID, "buttons", n)
	return nil
}

// buildWriter assembles the clipboard writer stack for one tab from the
// configured backend names.
func (a *Activator) buildWriter(tab *browser.Tab) clipboard.Writer {
	var writers []clipboard.Writer
	for _, name := range a.cfg.Clipboard.Writers {
		switch name {
		case "page":
			writers = append(writers, clipboard.NewPage(tab.Page))
		case "system":
			writers = append(writers, a.system)
		default:
			a.logger.Warn("copybtn: unknown clipboard writer", "writer", name)
		}
	}
	if len(writers) == 1 {
		return writers[0]
	}
	if len(writers) == 0 {
		writers = []clipboard.Writer{clipboard.NewPage(tab.Page)}
	}
	return clipboard.NewMulti(a.logger, writers...)
}

// Activate programmatically runs one activation of a bound button, exactly
// as a click would.
func (a *Activator) Activate(ctx context.Context, pageID, bindID string) (*activation.Record, error) {
	a.mu.Lock()
	p, ok := a.pages[pageID]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("copybtn: unknown page %q", pageID)
	}
	return p.binder.Activate(ctx, bindID)
}

// Rescan re-runs button discovery on a bound page, binding elements added
// since the last scan. Already-bound buttons are skipped.
func (a *Activator) Rescan(ctx context.Context, pageID string) (int, error) {
	a.mu.Lock()
	p, ok := a.pages[pageID]
	a.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("copybtn: unknown page %q", pageID)
	}
	return p.binder.Scan(ctx)
}

// SetFeedback replaces the feedback configuration. The next activation of
// any button sees the new mapping; nothing is snapshotted at bind time.
func (a *Activator) SetFeedback(f config.Feedback) {
	a.fbMu.Lock()
	a.feedback = f
	a.fbMu.Unlock()
}

// Feedback returns the current feedback configuration.
func (a *Activator) Feedback() config.Feedback {
	a.fbMu.RLock()
	defer a.fbMu.RUnlock()
	return a.feedback
}

// PageStatus describes one bound page.
type PageStatus struct {
	ID      string   `json:"id"`
	URL     string   `json:"url"`
	Buttons []string `json:"buttons"`
}

// Status reports all bound pages and their buttons.
func (a *Activator) Status() []PageStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]PageStatus, 0, len(a.pages))
	for id, p := range a.pages {
		out = append(out, PageStatus{
			ID:      id,
			URL:     p.cfg.URL,
			Buttons: p.binder.Buttons(),
		})
	}
	return out
}

// Stop gracefully shuts down all binders, sinks, and the browser.
func (a *Activator) Stop() {
	a.mu.Lock()
	for id, p := range a.pages {
		p.binder.Stop()
		p.tab.Close()
		a.logger.Info("copybtn: page unbound", "id", id)
	}
	a.pages = make(map[string]*boundPage)
	a.mu.Unlock()

	a.sinkR.Close()
	a.mgr.Close()
}

func (a *Activator) rescanLoop(ctx context.Context, pageID string, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Rescan(ctx, pageID)
			if err != nil {
				a.logger.Warn("copybtn: rescan failed", "page", pageID, "error", err)
				return
			}
			if n > 0 {
				a.logger.Info("copybtn: rescan bound new buttons", "page", pageID, "count", n)
			}
		}
	}
}

func (a *Activator) stopAllBinders() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.pages {
		p.binder.Stop()
	}
}

func (a *Activator) rebindAll(ctx context.Context, b *rod.Browser) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pages = make(map[string]*boundPage)
	for _, page := range a.cfg.Pages {
		if err := a.bindPageLocked(ctx, b, page); err != nil {
			a.logger.Error("copybtn: rebind after recycle failed",
				"url", page.URL, "error", err)
		}
	}
}
