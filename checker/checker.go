// Package checker audits page markup for copy-button wiring problems before
// a browser ever binds it. It finds every element carrying the marker
// attribute and reports whether its target reference resolves cleanly.
package checker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Finding statuses.
const (
	StatusOK            = "ok"
	StatusMissingTarget = "missing_target_attr"
	StatusNotFound      = "target_not_found"
	StatusAmbiguous     = "ambiguous_target"
)

// Finding describes one marked button and the state of its target reference.
type Finding struct {
	Index    int    `json:"index"`
	Selector string `json:"selector,omitempty"`
	Status   string `json:"status"`
	Matches  int    `json:"matches"`
	Preview  string `json:"preview,omitempty"`
}

// Report is the result of auditing one document.
type Report struct {
	URL      string    `json:"url,omitempty"`
	Buttons  []Finding `json:"buttons"`
	Problems int       `json:"problems"`
}

// Config controls what markup the checker looks for.
type Config struct {
	MarkerAttr  string // default "data-toggle"
	MarkerValue string // default "clipboard"
	TargetAttr  string // default "data-clipboard-target"

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Checker audits documents for copy-button markup problems.
type Checker struct {
	cfg      Config
	client   *http.Client
	sanitize *bluemonday.Policy
	logger   *slog.Logger
}

// New creates a Checker. Zero config fields get the stock markup contract.
func New(cfg Config) *Checker {
	if cfg.MarkerAttr == "" {
		cfg.MarkerAttr = "data-toggle"
	}
	if cfg.MarkerValue == "" {
		cfg.MarkerValue = "clipboard"
	}
	if cfg.TargetAttr == "" {
		cfg.TargetAttr = "data-clipboard-target"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		cfg:      cfg,
		client:   client,
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

// CheckURL fetches a page over HTTP and audits its markup.
func (c *Checker) CheckURL(ctx context.Context, pageURL string) (*Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("checker: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checker: fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checker: fetch %s: status %d", pageURL, resp.StatusCode)
	}

	report, err := c.CheckHTML(resp.Body)
	if err != nil {
		return nil, err
	}
	report.URL = pageURL
	return report, nil
}

// CheckHTML audits raw HTML from r.
func (c *Checker) CheckHTML(r io.Reader) (*Report, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("checker: parse html: %w", err)
	}

	report := &Report{Buttons: []Finding{}}
	for i, btn := range findMarked(doc, c.cfg.MarkerAttr, c.cfg.MarkerValue) {
		f := c.audit(doc, btn)
		f.Index = i
		if f.Status != StatusOK {
			report.Problems++
		}
		report.Buttons = append(report.Buttons, f)
	}
	return report, nil
}

// audit resolves one button's target reference against the document.
func (c *Checker) audit(doc, btn *html.Node) Finding {
	selector, ok := lookupAttr(btn, c.cfg.TargetAttr)
	if !ok {
		return Finding{Status: StatusMissingTarget}
	}

	matches := querySelectorAll(doc, selector)
	switch len(matches) {
	case 0:
		return Finding{Selector: selector, Status: StatusNotFound}
	case 1:
		return Finding{
			Selector: selector,
			Status:   StatusOK,
			Matches:  1,
			Preview:  c.preview(matches[0]),
		}
	default:
		// The live activator would silently copy the first match; flag it
		// so the page author notices.
		return Finding{
			Selector: selector,
			Status:   StatusAmbiguous,
			Matches:  len(matches),
			Preview:  c.preview(matches[0]),
		}
	}
}

// preview returns the target's visible text, sanitized and truncated.
func (c *Checker) preview(n *html.Node) string {
	text := c.sanitize.Sanitize(collectText(n))
	text = strings.Join(strings.Fields(text), " ")
	const maxPreview = 120
	if len(text) > maxPreview {
		cut := maxPreview
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "…"
	}
	return text
}

// findMarked returns elements where attr equals value, in document order.
func findMarked(doc *html.Node, attr, value string) []*html.Node {
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if v, ok := lookupAttr(n, attr); ok && v == value {
				results = append(results, n)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return results
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
