package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/clipwire/clipwire/activation"
	"github.com/clipwire/clipwire/checker"
	"github.com/clipwire/clipwire/copybtn"
	"github.com/clipwire/clipwire/dbopen"
	"github.com/clipwire/clipwire/observability"
)

func testActivator(t *testing.T) *copybtn.Activator {
	t.Helper()
	cfg := &copybtn.Config{}
	cfg.ApplyDefaults()
	return copybtn.New(cfg, slog.Default())
}

func testStore(t *testing.T) *observability.Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	s, err := observability.NewStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func testServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Activator == nil {
		cfg.Activator = testActivator(t)
	}
	srv := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz_NoAuth(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	srv := testServer(t, Config{AuthHash: string(hash)})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestAuth_Required(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	srv := testServer(t, Config{AuthHash: string(hash)})

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no creds: got %d, want 401", resp.StatusCode)
	}
	if got := resp.Header.Get("WWW-Authenticate"); !strings.Contains(got, "Basic") {
		t.Errorf("WWW-Authenticate: got %q", got)
	}
}

func TestAuth_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	srv := testServer(t, Config{AuthHash: string(hash)})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/status", nil)
	req.SetBasicAuth("admin", "wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", resp.StatusCode)
	}
}

func TestStatus_Authorized(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	srv := testServer(t, Config{AuthHash: string(hash)})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/status", nil)
	req.SetBasicAuth("admin", "s3cret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var pages []copybtn.PageStatus
	if err := json.NewDecoder(resp.Body).Decode(&pages); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("pages: got %d, want 0", len(pages))
	}
}

func TestFeedback_Roundtrip(t *testing.T) {
	a := testActivator(t)
	srv := testServer(t, Config{Activator: a})

	body := `{"text":{"success":"Copied.","failed":"Oops"}}`
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/feedback", strings.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: got %d, want 200", resp.StatusCode)
	}

	if got := a.Feedback().Text.Success; got != "Copied." {
		t.Errorf("success text: got %q, want %q", got, "Copied.")
	}

	resp, err = http.Get(srv.URL + "/api/feedback")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var f copybtn.Feedback
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.Text.Failed != "Oops" {
		t.Errorf("failed text: got %q, want %q", f.Text.Failed, "Oops")
	}
}

func TestActivations_FromStore(t *testing.T) {
	store := testStore(t)
	store.Log(context.Background(), activation.Record{
		PageID:  "docs",
		BindID:  "cw-1",
		Outcome: activation.OutcomeSuccess,
		Chars:   12,
	})

	srv := testServer(t, Config{Store: store})

	resp, err := http.Get(srv.URL + "/api/activations?limit=10")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var records []activation.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records: got %d, want 1", len(records))
	}
	if records[0].BindID != "cw-1" {
		t.Errorf("bind_id: got %q, want %q", records[0].BindID, "cw-1")
	}
}

func TestCounts(t *testing.T) {
	store := testStore(t)
	store.Log(context.Background(), activation.Record{Outcome: activation.OutcomeSuccess})
	store.Log(context.Background(), activation.Record{Outcome: activation.OutcomeFailed, ErrorKind: activation.ErrResolution})

	srv := testServer(t, Config{Store: store})

	resp, err := http.Get(srv.URL + "/api/counts")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var counts observability.Counts
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if counts.Success != 1 || counts.Failed != 1 {
		t.Errorf("counts: got %+v, want 1/1", counts)
	}
}

func TestCheck_RawHTML(t *testing.T) {
	srv := testServer(t, Config{Checker: checker.New(checker.Config{})})

	body := `{"html":"<button data-toggle=\"clipboard\">x</button>"}`
	resp, err := http.Post(srv.URL+"/api/check", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var report checker.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Problems != 1 {
		t.Errorf("problems: got %d, want 1", report.Problems)
	}
}

func TestRescan_UnknownPage(t *testing.T) {
	srv := testServer(t, Config{})

	resp, err := http.Post(srv.URL+"/api/pages/nope/rescan", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
