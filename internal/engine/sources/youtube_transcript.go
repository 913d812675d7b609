package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"golang.org/x/time/rate"
)

// YouTube transcript fetching, tried in order:
//  1. watch page scrape → ytInitialPlayerResponse → caption XML (works from any IP)
//  2. /next → engagement panel → /get_transcript  (works from datacenter IPs)
//  3. ANDROID Innertube /player → captionTracks   (works from non-blocked IPs)

// YouTube fetches caption entries for a video. It implements engine.Fetcher.
type YouTube struct {
	baseURL string
	client  *http.Client
	browser *engine.BrowserClient
	langs   []string
	limiter *rate.Limiter
	retry   engine.RetryConfig
}

// Option customizes a YouTube fetcher.
type Option func(*YouTube)

// WithBaseURL points the fetcher at another host (tests, mirrors).
func WithBaseURL(u string) Option {
	return func(y *YouTube) { y.baseURL = strings.TrimRight(u, "/") }
}

// WithRetryConfig overrides engine.DefaultRetryConfig.
func WithRetryConfig(rc engine.RetryConfig) Option {
	return func(y *YouTube) { y.retry = rc }
}

// NewYouTube builds a fetcher from the engine configuration.
func NewYouTube(c *engine.Config, opts ...Option) *YouTube {
	y := &YouTube{
		baseURL: ytBaseURL,
		client:  c.HTTPClient,
		browser: c.BrowserClient,
		langs:   c.Languages,
		limiter: rate.NewLimiter(rate.Inf, 0),
		retry:   engine.DefaultRetryConfig,
	}
	if y.client == nil {
		y.client = &http.Client{Timeout: 15 * time.Second}
	}
	if len(y.langs) == 0 {
		y.langs = engine.DefaultLanguages
	}
	if c.YouTubeRPS > 0 {
		burst := int(c.YouTubeRPS)
		if burst < 1 {
			burst = 1
		}
		y.limiter = rate.NewLimiter(rate.Limit(c.YouTubeRPS), burst)
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

type strategy struct {
	name string
	fn   func(ctx context.Context, videoID string) ([]engine.Entry, error)
}

// Fetch returns the ordered caption entries for videoID.
// Each strategy is tried in turn; an empty result counts as a miss so the
// next one runs. When all fail, the first error carrying a known cause
// (disabled, unavailable, no transcript) is returned.
func (y *YouTube) Fetch(ctx context.Context, videoID string) ([]engine.Entry, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, engine.ErrInvalidVideoID
	}

	strategies := []strategy{
		{"page scrape", y.fetchViaPageScrape},
		{"engagement panel", y.fetchViaEngagementPanel},
		{"player", y.fetchViaPlayer},
	}

	var errs []error
	empty := 0
	for _, s := range strategies {
		var entries []engine.Entry
		err := engine.TrackOperation(ctx, "youtube "+s.name, 5*time.Second, func(ctx context.Context) error {
			var err error
			entries, err = s.fn(ctx, videoID)
			return err
		})
		if err == nil && len(entries) == 0 {
			empty++
			err = errEmptyTranscript
		}
		if err == nil {
			return entries, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Warn("youtube: transcript strategy failed",
			slog.String("strategy", s.name), slog.String("id", videoID), slog.Any("error", err))
		errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
	}
	// Every strategy found a track and every track was blank: the video
	// really has an empty transcript.
	if empty == len(strategies) {
		return []engine.Entry{}, nil
	}
	return nil, pickFetchError(errs)
}

var errEmptyTranscript = errors.New("empty transcript")

var knownCauses = []error{
	engine.ErrInvalidVideoID,
	engine.ErrVideoUnavailable,
	engine.ErrTranscriptsDisabled,
	engine.ErrNoTranscriptFound,
}

func pickFetchError(errs []error) error {
	for _, err := range errs {
		for _, cause := range knownCauses {
			if errors.Is(err, cause) {
				return err
			}
		}
	}
	if len(errs) == 0 {
		return errors.New("no transcript strategy available")
	}
	return errs[len(errs)-1]
}

// --- Strategy 1: watch page scrape ---

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

func (y *YouTube) fetchViaPageScrape(ctx context.Context, videoID string) ([]engine.Entry, error) {
	engine.IncrYouTubePageScrape()

	body, err := y.getWatchPage(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	if bytes.Contains(body, []byte(`class="g-recaptcha"`)) {
		return nil, errors.New("youtube is rate limiting this IP (captcha page)")
	}

	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return y.entriesFromPlayer(ctx, videoID, playerResp)
}

// getWatchPage downloads the watch page, through the stealth browser client
// when one is configured.
func (y *YouTube) getWatchPage(ctx context.Context, videoID string) ([]byte, error) {
	watchURL := y.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if y.browser != nil {
		return y.browserGet(ctx, watchURL)
	}

	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return y.client.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &engine.StatusError{StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
}

type browserResult struct {
	data   []byte
	status int
	err    error
}

// browserGet runs a GET through the stealth client. The client call itself
// takes no context, so a canceled ctx abandons the request and returns at once.
func (y *YouTube) browserGet(ctx context.Context, target string) ([]byte, error) {
	headers := engine.ChromeHeaders()
	headers["accept-language"] = "en-US,en;q=0.9"

	done := make(chan browserResult, 1)
	go func() {
		data, _, status, err := y.browser.Do(http.MethodGet, target, headers, nil)
		done <- browserResult{data: data, status: status, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if r.status != http.StatusOK {
			return nil, &engine.StatusError{StatusCode: r.status}
		}
		return r.data, nil
	}
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// --- Strategy 2: engagement panel ---

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

func (y *YouTube) fetchViaEngagementPanel(ctx context.Context, videoID string) ([]engine.Entry, error) {
	engine.IncrYouTubeEngagementPanel()
	visitorData := generateVisitorData()

	nextData, err := y.postInnerTube(ctx, ytNextPath, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, webHeaders(visitorData))
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	transcriptData, err := y.postInnerTube(ctx, ytGetTranscriptPath, map[string]any{
		"params":  token,
		"context": ytWebContext(visitorData),
	}, webHeaders(visitorData))
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return parseTranscriptSegments(transcriptResp), nil
}

// parseTranscriptSegments converts /get_transcript segments into entries,
// one entry per segment.
func parseTranscriptSegments(resp ytGetTranscriptResp) []engine.Entry {
	var entries []engine.Entry
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			var sb strings.Builder
			for _, run := range r.Snippet.Runs {
				sb.WriteString(run.Text)
			}
			if sb.Len() == 0 {
				continue
			}
			start := parseFloat(r.StartMs) / 1000
			end := parseFloat(r.EndMs) / 1000
			dur := end - start
			if dur < 0 {
				dur = 0
			}
			entries = append(entries, engine.Entry{Text: sb.String(), Start: start, Duration: dur})
		}
	}
	return entries
}

// --- Strategy 3: ANDROID player ---

func (y *YouTube) fetchViaPlayer(ctx context.Context, videoID string) ([]engine.Entry, error) {
	engine.IncrYouTubePlayer()

	data, err := y.postInnerTube(ctx, ytPlayerPath, innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}, androidHeaders)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(data, &playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return y.entriesFromPlayer(ctx, videoID, playerResp)
}

// --- Shared player response handling ---

var videoIDShapeRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// entriesFromPlayer picks a caption track from a player response and downloads it.
func (y *YouTube) entriesFromPlayer(ctx context.Context, videoID string, pr innertubePlayerResp) ([]engine.Entry, error) {
	if ps := pr.PlayabilityStatus; ps != nil {
		switch ps.Status {
		case "ERROR":
			if !videoIDShapeRE.MatchString(videoID) {
				return nil, fmt.Errorf("%w %q: %s", engine.ErrInvalidVideoID, videoID, ps.Reason)
			}
			return nil, fmt.Errorf("%w: %s", engine.ErrVideoUnavailable, ps.Reason)
		case "UNPLAYABLE", "LOGIN_REQUIRED":
			return nil, fmt.Errorf("%w: %s", engine.ErrVideoUnavailable, ps.Reason)
		}
	}
	if pr.Captions == nil {
		return nil, engine.ErrTranscriptsDisabled
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, engine.ErrTranscriptsDisabled
	}
	track, err := pickBestTrack(tracks, y.langs)
	if err != nil {
		return nil, err
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the caption track for the first preferred language
// that has one, preferring a manually created track over an auto-generated
// one for the same language.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, error) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, errors.New("all caption tracks require PoToken")
	}

	for _, lang := range langs {
		var generated *captionTrack
		for i, t := range usable {
			if t.LanguageCode != lang {
				continue
			}
			if t.Kind != "asr" {
				return t, nil
			}
			if generated == nil {
				generated = &usable[i]
			}
		}
		if generated != nil {
			return *generated, nil
		}
	}

	available := make([]string, 0, len(usable))
	for _, t := range usable {
		available = append(available, t.LanguageCode)
	}
	return captionTrack{}, fmt.Errorf("%w: requested %s, available %s",
		engine.ErrNoTranscriptFound, strings.Join(langs, ","), strings.Join(available, ","))
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
