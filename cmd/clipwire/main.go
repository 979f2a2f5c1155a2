// Command clipwire binds copy-to-clipboard buttons on live pages and
// reports every activation.
//
// Usage:
//
//	clipwire -config clipwire.yaml           # activate pages from YAML config
//	clipwire -url https://example.com/docs   # quick single-page mode (stdout sink)
//	clipwire -check https://example.com/docs # audit markup and exit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/clipwire/clipwire/checker"
	"github.com/clipwire/clipwire/copybtn"
	"github.com/clipwire/clipwire/dbopen"
	"github.com/clipwire/clipwire/httpapi"
	"github.com/clipwire/clipwire/observability"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to clipwire.yaml config file")
	singleURL := flag.String("url", "", "bind a single URL (stdout sink)")
	checkURL := flag.String("check", "", "audit a URL's markup and exit")
	httpAddr := flag.String("http", "", "serve the status API on this address")
	mcpStdio := flag.Bool("mcp", false, "serve MCP tools on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *singleURL, *checkURL, *httpAddr, *mcpStdio); err != nil {
		logger.Error("clipwire: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, singleURL, checkURL, httpAddr string, mcpStdio bool) error {
	if checkURL != "" {
		return runCheck(ctx, checkURL)
	}

	var cfg *copybtn.Config
	switch {
	case singleURL != "":
		cfg = &copybtn.Config{
			Pages: []copybtn.PageConfig{{ID: "page", URL: singleURL}},
		}
		cfg.ApplyDefaults()
	case configPath != "":
		var err error
		cfg, err = copybtn.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: clipwire -config <file> | -url <url> | -check <url>")
		os.Exit(1)
	}

	sinks, store, err := buildSinks(cfg, logger)
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		sinks = append(sinks, copybtn.NewStdoutSink(nil))
	}

	a := copybtn.New(cfg, logger, sinks...)
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer a.Stop()

	chk := checker.New(checker.Config{
		MarkerAttr:  cfg.Buttons.MarkerAttr,
		MarkerValue: cfg.Buttons.MarkerValue,
		TargetAttr:  cfg.Buttons.TargetAttr,
		Logger:      logger,
	})

	if httpAddr != "" {
		api := httpapi.New(httpapi.Config{
			Activator: a,
			Store:     store,
			Checker:   chk,
			AuthUser:  env("CLIPWIRE_AUTH_USER", "admin"),
			AuthHash:  authHash(logger),
			Logger:    logger,
		})
		srv := &http.Server{Addr: httpAddr, Handler: api.Handler()}
		go func() {
			logger.Info("clipwire: http listening", "addr", httpAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("clipwire: http", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	if mcpStdio {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "clipwire",
			Version: "1.0.0",
		}, nil)
		a.RegisterMCP(srv)
		chk.RegisterMCP(srv)
		logger.Info("clipwire: mcp serving on stdio")
		return srv.Run(ctx, &mcp.StdioTransport{})
	}

	<-ctx.Done()
	return nil
}

// runCheck audits a page's markup and prints the report to stdout.
func runCheck(ctx context.Context, url string) error {
	report, err := checker.New(checker.Config{}).CheckURL(ctx, url)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	os.Stdout.Write([]byte("\n"))
	if report.Problems > 0 {
		os.Exit(2)
	}
	return nil
}

// buildSinks constructs the configured sinks. A "store" sink also returns the
// backing Store so the HTTP API can query it.
func buildSinks(cfg *copybtn.Config, logger *slog.Logger) ([]copybtn.Sink, *observability.Store, error) {
	var sinks []copybtn.Sink
	var store *observability.Store

	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, copybtn.NewStdoutSink(nil))
		case "webhook":
			sinks = append(sinks, copybtn.NewWebhookSink(sc.URL))
		case "store":
			db, err := dbopen.Open(sc.Path, dbopen.WithMkdirAll())
			if err != nil {
				return nil, nil, fmt.Errorf("open store db: %w", err)
			}
			store, err = observability.NewStore(db)
			if err != nil {
				return nil, nil, fmt.Errorf("init store: %w", err)
			}
			sinks = append(sinks, copybtn.NewStoreSink(store))
		default:
			logger.Warn("clipwire: unknown sink type", "type", sc.Type)
		}
	}
	return sinks, store, nil
}

// authHash returns the bcrypt hash guarding the HTTP API. The password comes
// from CLIPWIRE_AUTH_PASSWORD; empty means no auth.
func authHash(logger *slog.Logger) string {
	password := os.Getenv("CLIPWIRE_AUTH_PASSWORD")
	if password == "" {
		logger.Warn("clipwire: CLIPWIRE_AUTH_PASSWORD not set, http api is open")
		return ""
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("clipwire: hash password", "error", err)
		return ""
	}
	return string(hash)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
