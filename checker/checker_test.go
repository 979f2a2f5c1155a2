package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

const goodPage = `<!DOCTYPE html>
<html><body>
<pre id="snippet">curl -s https://example.com</pre>
<button data-toggle="clipboard" data-clipboard-target="#snippet">Copy</button>
</body></html>`

func TestCheckHTML_OK(t *testing.T) {
	c := New(Config{})

	report, err := c.CheckHTML(strings.NewReader(goodPage))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Buttons) != 1 {
		t.Fatalf("buttons: got %d, want 1", len(report.Buttons))
	}
	f := report.Buttons[0]
	if f.Status != StatusOK {
		t.Errorf("status: got %q, want %q", f.Status, StatusOK)
	}
	if f.Matches != 1 {
		t.Errorf("matches: got %d, want 1", f.Matches)
	}
	if f.Preview != "curl -s https://example.com" {
		t.Errorf("preview: got %q", f.Preview)
	}
	if report.Problems != 0 {
		t.Errorf("problems: got %d, want 0", report.Problems)
	}
}

func TestCheckHTML_MissingTargetAttr(t *testing.T) {
	page := `<html><body>
<button data-toggle="clipboard">Copy</button>
</body></html>`

	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Buttons) != 1 {
		t.Fatalf("buttons: got %d, want 1", len(report.Buttons))
	}
	if got := report.Buttons[0].Status; got != StatusMissingTarget {
		t.Errorf("status: got %q, want %q", got, StatusMissingTarget)
	}
	if report.Problems != 1 {
		t.Errorf("problems: got %d, want 1", report.Problems)
	}
}

func TestCheckHTML_TargetNotFound(t *testing.T) {
	page := `<html><body>
<button data-toggle="clipboard" data-clipboard-target="#missing">Copy</button>
</body></html>`

	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	f := report.Buttons[0]
	if f.Status != StatusNotFound {
		t.Errorf("status: got %q, want %q", f.Status, StatusNotFound)
	}
	if f.Selector != "#missing" {
		t.Errorf("selector: got %q", f.Selector)
	}
}

func TestCheckHTML_AmbiguousTarget(t *testing.T) {
	page := `<html><body>
<pre class="snippet">first</pre>
<pre class="snippet">second</pre>
<button data-toggle="clipboard" data-clipboard-target=".snippet">Copy</button>
</body></html>`

	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	f := report.Buttons[0]
	if f.Status != StatusAmbiguous {
		t.Errorf("status: got %q, want %q", f.Status, StatusAmbiguous)
	}
	if f.Matches != 2 {
		t.Errorf("matches: got %d, want 2", f.Matches)
	}
	if f.Preview != "first" {
		t.Errorf("preview: got %q, want first match's text", f.Preview)
	}
}

func TestCheckHTML_CustomContract(t *testing.T) {
	page := `<html><body>
<code id="cmd">ls -la</code>
<a data-copy="yes" data-copy-from="#cmd">grab</a>
</body></html>`

	c := New(Config{
		MarkerAttr:  "data-copy",
		MarkerValue: "yes",
		TargetAttr:  "data-copy-from",
	})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Buttons) != 1 {
		t.Fatalf("buttons: got %d, want 1", len(report.Buttons))
	}
	if got := report.Buttons[0].Status; got != StatusOK {
		t.Errorf("status: got %q, want %q", got, StatusOK)
	}
}

func TestCheckHTML_NoButtons(t *testing.T) {
	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(`<html><body><p>nothing here</p></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Buttons) != 0 {
		t.Errorf("buttons: got %d, want 0", len(report.Buttons))
	}
}

func TestCheckHTML_PreviewSkipsScript(t *testing.T) {
	page := `<html><body>
<div id="box"><script>alert(1)</script>visible</div>
<button data-toggle="clipboard" data-clipboard-target="#box">Copy</button>
</body></html>`

	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Buttons[0].Preview; got != "visible" {
		t.Errorf("preview: got %q, want %q", got, "visible")
	}
}

func TestCheckURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(goodPage))
	}))
	defer srv.Close()

	c := New(Config{HTTPClient: srv.Client()})
	report, err := c.CheckURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if report.URL != srv.URL {
		t.Errorf("url: got %q, want %q", report.URL, srv.URL)
	}
	if len(report.Buttons) != 1 || report.Buttons[0].Status != StatusOK {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestCheckURL_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(Config{HTTPClient: srv.Client()})
	if _, err := c.CheckURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestSelector_Descendant(t *testing.T) {
	page := `<html><body>
<div class="outer"><pre id="a">one</pre></div>
<pre id="b">two</pre>
<button data-toggle="clipboard" data-clipboard-target="div.outer pre">x</button>
</body></html>`

	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	f := report.Buttons[0]
	if f.Status != StatusOK {
		t.Errorf("status: got %q, want %q", f.Status, StatusOK)
	}
	if f.Preview != "one" {
		t.Errorf("preview: got %q, want %q", f.Preview, "one")
	}
}

func TestSelector_NestedAncestorsSingleMatch(t *testing.T) {
	// The span sits under two divs that both match the first part of
	// "div span". It is still one element and must count once.
	page := `<html><body>
<div><div><span id="s">payload</span></div></div>
<button data-toggle="clipboard" data-clipboard-target="div span">Copy</button>
</body></html>`

	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	f := report.Buttons[0]
	if f.Status != StatusOK {
		t.Errorf("status: got %q, want %q", f.Status, StatusOK)
	}
	if f.Matches != 1 {
		t.Errorf("matches: got %d, want 1", f.Matches)
	}
	if f.Preview != "payload" {
		t.Errorf("preview: got %q", f.Preview)
	}
}

func TestPreview_TruncatesOnRuneBoundary(t *testing.T) {
	page := `<html><body>
<pre id="long">a` + strings.Repeat("é", 100) + `</pre>
<button data-toggle="clipboard" data-clipboard-target="#long">Copy</button>
</body></html>`

	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	got := report.Buttons[0].Preview
	if !utf8.ValidString(got) {
		t.Errorf("preview is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("preview not truncated: %q", got)
	}
}

func TestSelector_AttrForm(t *testing.T) {
	page := `<html><body>
<pre data-lang="sh">echo hi</pre>
<button data-toggle="clipboard" data-clipboard-target="pre[data-lang=sh]">Copy</button>
</body></html>`

	c := New(Config{})
	report, err := c.CheckHTML(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	f := report.Buttons[0]
	if f.Status != StatusOK {
		t.Errorf("status: got %q, want %q", f.Status, StatusOK)
	}
	if f.Preview != "echo hi" {
		t.Errorf("preview: got %q", f.Preview)
	}
}
