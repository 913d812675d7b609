// go_transcript: YouTube transcript HTTP service.
//
// Serves GET / (health) and POST /transcript on PORT. When MCP_PORT is set,
// the same transcript operation is also exposed as the youtube_transcript
// MCP tool.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	initLogger(env.Str("LOG_LEVEL", "info"))

	svc := initEngine()

	port := env.Str("PORT", "5000")
	mcpPort := env.Str("MCP_PORT", "")
	slog.Info("starting go_transcript",
		slog.String("port", port),
		slog.String("mcp_port", mcpPort),
		slog.String("version", version),
	)

	mcpDone := make(chan struct{})
	if mcpPort != "" {
		go func() {
			defer close(mcpDone)
			runMCP(svc, mcpPort)
		}()
	} else {
		close(mcpDone)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           transcriptserver.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, srv, mcpDone, 10*time.Second); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// serve runs srv until ctx is canceled, then shuts it down and waits up to
// grace for mcpDone to close.
func serve(ctx context.Context, srv *http.Server, mcpDone <-chan struct{}, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
	select {
	case <-mcpDone:
	case <-shutdownCtx.Done():
		slog.Warn("mcp server did not stop before shutdown deadline")
	}
	return nil
}

func initLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func initEngine() *engine.Service {
	fetchTimeout := env.Duration("FETCH_TIMEOUT", 15*time.Second)
	c := engine.Config{
		Languages:            env.List("TRANSCRIPT_LANGUAGES", "en"),
		FetchTimeout:         fetchTimeout,
		YouTubeRPS:           env.Float("YOUTUBE_RPS", 5),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if env.Str("STEALTH_CLIENT", "true") != "false" {
		c.BrowserClient = newBrowserClient(fetchTimeout)
	}

	engine.Init(c)
	engine.InitCache(env.Str("REDIS_URL", ""), env.Duration("CACHE_TTL", 0), c.CacheMaxEntries, c.CacheCleanupInterval)

	return engine.NewService(sources.NewYouTube(engine.Cfg), engine.Cfg.Languages)
}

func newBrowserClient(timeout time.Duration) *engine.BrowserClient {
	opts := []stealth.ClientOption{stealth.WithTimeout(timeoutSeconds(timeout))}

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, using plain http client", slog.Any("error", err))
		return nil
	}
	slog.Info("stealth browser client initialized")
	return bc
}

// timeoutSeconds converts d to the whole seconds the stealth client takes,
// rounding up and never below one.
func timeoutSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func runMCP(svc *engine.Service, port string) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)
	transcriptserver.RegisterTools(server, svc)

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         port,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("mcp server failed", slog.Any("error", err))
	}
}
