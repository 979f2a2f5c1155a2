package bind

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod/lib/proto"

	"github.com/clipwire/clipwire/clipboard"
	"github.com/clipwire/clipwire/copybtn/internal/browser"
	"github.com/clipwire/clipwire/copybtn/internal/config"
	"github.com/clipwire/clipwire/copybtn/internal/sink"
	"github.com/clipwire/clipwire/idgen"
)

//go:embed binder.js
var binderJS string

// bindingName is the Runtime binding the injected click hook reports into.
const bindingName = "__clipwire_report"

// Config for creating a Binder.
type Config struct {
	Tab     *browser.Tab
	Surface Surface // defaults to a rod surface over Tab

	Buttons  config.ButtonConfig
	Feedback func() config.Feedback // read at activation time, never cached

	Writer    clipboard.Writer
	Format    clipboard.Format
	Converter *clipboard.Converter // required for FormatMarkdown

	Sink   sink.Sink
	Logger *slog.Logger

	// NewPrefix generates the per-scan bind ID prefix. Default: NanoID(6).
	NewPrefix idgen.Generator
	// NewRecordID generates activation record IDs. Default: idgen.Default.
	NewRecordID idgen.Generator
}

// buttonState tracks one bound button. seq is the per-button activation
// counter: a completion whose number is no longer the latest is superseded
// and must not apply feedback.
type buttonState struct {
	seq atomic.Uint64
}

// Binder binds the copy buttons of a single page and runs their activations.
type Binder struct {
	cfg     Config
	surface Surface
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	buttons map[string]*buttonState
}

// New creates a Binder for the given tab.
func New(cfg Config) *Binder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewPrefix == nil {
		cfg.NewPrefix = idgen.NanoID(6)
	}
	if cfg.NewRecordID == nil {
		cfg.NewRecordID = idgen.Default
	}
	if cfg.Feedback == nil {
		def := config.DefaultFeedback()
		cfg.Feedback = func() config.Feedback { return def }
	}
	surface := cfg.Surface
	if surface == nil && cfg.Tab != nil {
		surface = NewRodSurface(cfg.Tab.Page, cfg.Buttons.BindAttr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Binder{
		cfg:     cfg,
		surface: surface,
		logger:  cfg.Logger,
		ctx:     ctx,
		cancel:  cancel,
		buttons: make(map[string]*buttonState),
	}
}

// SetContext lets the parent activator pass its context. The previous
// context is cancelled so it does not leak.
func (b *Binder) SetContext(ctx context.Context) {
	if b.cancel != nil {
		b.cancel()
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
}

// Start installs the Runtime binding, begins listening for click events,
// and runs the initial scan. It returns the number of buttons bound.
func (b *Binder) Start() (int, error) {
	err := proto.RuntimeAddBinding{Name: bindingName}.Call(b.cfg.Tab.Page)
	if err != nil {
		b.logger.Warn("bind: addBinding failed (may already exist)", "error", err)
	}

	go b.listen()

	n, err := b.Scan(b.ctx)
	if err != nil {
		return 0, fmt.Errorf("bind: initial scan: %w", err)
	}
	return n, nil
}

// Scan discovers marker elements not yet bound, stamps them with bind IDs,
// and attaches click hooks. Elements bound by a previous scan are skipped,
// so Scan is idempotent and safe to run on an interval to pick up elements
// added after page load.
func (b *Binder) Scan(ctx context.Context) (int, error) {
	btns := b.cfg.Buttons
	res, err := b.cfg.Tab.Page.Context(ctx).Eval(binderJS,
		btns.MarkerAttr, btns.MarkerValue, btns.BindAttr, bindingName, b.cfg.NewPrefix())
	if err != nil {
		return 0, fmt.Errorf("bind: scan: %w", err)
	}

	// The page script only reports newly stamped elements, but guard the
	// bookkeeping anyway: re-registering must not reset a button's
	// activation counter.
	ids := res.Value.Arr()
	for _, id := range ids {
		b.register(id.Str())
	}

	if len(ids) > 0 {
		b.logger.Info("bind: buttons bound",
			"page", b.cfg.Tab.PageURL, "count", len(ids))
	}
	return len(ids), nil
}

// Buttons returns the bind IDs of all bound buttons.
func (b *Binder) Buttons() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.buttons))
	for id := range b.buttons {
		out = append(out, id)
	}
	return out
}

// Stop cancels the listen loop and all in-flight activations.
func (b *Binder) Stop() {
	b.cancel()
}

// listen receives click reports from the injected hook via
// Runtime.bindingCalled and dispatches one activation per click. Multiple
// buttons may have overlapping in-flight activations; each is independent.
func (b *Binder) listen() {
	b.cfg.Tab.Page.Context(b.ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != bindingName {
			return
		}

		var req struct {
			BindID string `json:"bind_id"`
		}
		if err := json.Unmarshal([]byte(e.Payload), &req); err != nil {
			b.logger.Warn("bind: parse click payload", "error", err)
			return
		}

		go func() {
			if _, err := b.Activate(b.ctx, req.BindID); err != nil {
				b.logger.Warn("bind: activation dispatch", "bind_id", req.BindID, "error", err)
			}
		}()
	})()
}

// register adds a button state without a page scan (programmatic binding).
func (b *Binder) register(bindID string) *buttonState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.buttons[bindID]
	if !ok {
		st = &buttonState{}
		b.buttons[bindID] = st
	}
	return st
}

func (b *Binder) state(bindID string) (*buttonState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.buttons[bindID]
	return st, ok
}
