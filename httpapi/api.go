// Package httpapi exposes the activator's status and history over HTTP.
// Everything under /api requires Basic Auth checked against a bcrypt hash;
// the health endpoint is open for probes.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipwire/clipwire/checker"
	"github.com/clipwire/clipwire/copybtn"
	"github.com/clipwire/clipwire/kit"
	"github.com/clipwire/clipwire/observability"
)

// Config wires the API to the running pieces. Store and Checker are
// optional; their routes 404 when absent.
type Config struct {
	Activator *copybtn.Activator
	Store     *observability.Store
	Checker   *checker.Checker

	// AuthUser and AuthHash guard /api. AuthHash is a bcrypt hash of the
	// password. Leaving AuthHash empty disables auth, for local use only.
	AuthUser string
	AuthHash string

	Logger *slog.Logger
}

// API serves the activator's HTTP surface.
type API struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an API. The zero AuthUser defaults to "admin".
func New(cfg Config) *API {
	if cfg.AuthUser == "" {
		cfg.AuthUser = "admin"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{cfg: cfg, logger: logger}
}

// Handler builds the chi router.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := kit.WithRequestID(req.Context(), middleware.GetReqID(req.Context()))
			ctx = kit.WithRemoteAddr(ctx, req.RemoteAddr)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(a.requireAuth)

		r.Get("/status", a.handleStatus)
		r.Get("/feedback", a.handleGetFeedback)
		r.Put("/feedback", a.handleSetFeedback)
		r.Post("/pages/{pageID}/rescan", a.handleRescan)
		r.Post("/pages/{pageID}/buttons/{bindID}/activate", a.handleActivate)

		if a.cfg.Store != nil {
			r.Get("/activations", a.handleActivations)
			r.Get("/counts", a.handleCounts)
		}
		if a.cfg.Checker != nil {
			r.Post("/check", a.handleCheck)
		}
	})

	return r
}

// requireAuth enforces Basic Auth against the configured bcrypt hash.
func (a *API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.AuthHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(a.cfg.AuthUser)) != 1 ||
			bcrypt.CompareHashAndPassword([]byte(a.cfg.AuthHash), []byte(pass)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="clipwire"`)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.cfg.Activator.Status())
}

func (a *API) handleGetFeedback(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.cfg.Activator.Feedback())
}

func (a *API) handleSetFeedback(w http.ResponseWriter, r *http.Request) {
	var f copybtn.Feedback
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.cfg.Activator.SetFeedback(f)
	writeJSON(w, http.StatusOK, f)
}

func (a *API) handleRescan(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	n, err := a.cfg.Activator.Rescan(r.Context(), pageID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"page_id": pageID, "bound": n})
}

func (a *API) handleActivate(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	bindID := chi.URLParam(r, "bindID")
	rec, err := a.cfg.Activator.Activate(r.Context(), pageID, bindID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) handleActivations(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	records, err := a.cfg.Store.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *API) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := a.cfg.Store.CountByOutcome(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (a *API) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL  string `json:"url"`
		HTML string `json:"html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var (
		report *checker.Report
		err    error
	)
	switch {
	case req.HTML != "":
		report, err = a.cfg.Checker.CheckHTML(strings.NewReader(req.HTML))
	case req.URL != "":
		report, err = a.cfg.Checker.CheckURL(r.Context(), req.URL)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "one of url or html is required"})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
