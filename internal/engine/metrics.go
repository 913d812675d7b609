package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests      atomic.Int64
	TranscriptSuccess       atomic.Int64
	BadRequests             atomic.Int64
	FetchErrors             atomic.Int64
	YouTubePageScrapes      atomic.Int64
	YouTubeEngagementPanels atomic.Int64
	YouTubePlayerRequests   atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"transcript_requests", "transcript_success",
	"bad_requests", "fetch_errors",
	"youtube_page_scrapes", "youtube_engagement_panel", "youtube_player",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"transcript_requests":      metrics.TranscriptRequests.Load(),
		"transcript_success":       metrics.TranscriptSuccess.Load(),
		"bad_requests":             metrics.BadRequests.Load(),
		"fetch_errors":             metrics.FetchErrors.Load(),
		"youtube_page_scrapes":     metrics.YouTubePageScrapes.Load(),
		"youtube_engagement_panel": metrics.YouTubeEngagementPanels.Load(),
		"youtube_player":           metrics.YouTubePlayerRequests.Load(),
		"cache_hits":               hits,
		"cache_misses":             misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptSuccess()  { metrics.TranscriptSuccess.Add(1) }
func IncrBadRequests()        { metrics.BadRequests.Add(1) }
func IncrFetchErrors()        { metrics.FetchErrors.Add(1) }

// Incrementors for sources/ sub-package.
func IncrYouTubePageScrape()      { metrics.YouTubePageScrapes.Add(1) }
func IncrYouTubeEngagementPanel() { metrics.YouTubeEngagementPanels.Add(1) }
func IncrYouTubePlayer()          { metrics.YouTubePlayerRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if elapsed := time.Since(start); elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
