package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Languages            []string      // preferred caption languages, in order
	FetchTimeout         time.Duration // per-call HTTP client timeout
	YouTubeRPS           float64       // outbound request rate; 0 = unlimited
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = watch pages fetched with HTTPClient
}

// DefaultLanguages is used when no preferred language is configured.
var DefaultLanguages = []string{"en"}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if len(c.Languages) == 0 {
		c.Languages = DefaultLanguages
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
