package engine

import (
	"context"
	"log/slog"
	"strings"
)

// Fetcher retrieves the ordered caption entries of a video.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) ([]Entry, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, videoID string) ([]Entry, error)

func (f FetcherFunc) Fetch(ctx context.Context, videoID string) ([]Entry, error) {
	return f(ctx, videoID)
}

// Service turns a video URL into a single transcript text.
type Service struct {
	fetcher Fetcher
	langs   []string
}

// NewService creates a Service. langs only feeds the cache key; language
// selection is the fetcher's job.
func NewService(f Fetcher, langs []string) *Service {
	return &Service{fetcher: f, langs: langs}
}

// Transcript parses videoURL, fetches the captions and assembles the response.
// Returns a *BadRequestError for unusable input and a *FetchError when the
// fetcher fails.
func (s *Service) Transcript(ctx context.Context, videoURL string) (*TranscriptResponse, error) {
	IncrTranscriptRequests()

	if videoURL == "" {
		IncrBadRequests()
		return nil, ErrNoVideoURL
	}
	videoID, ok := ExtractVideoID(videoURL)
	if !ok {
		IncrBadRequests()
		return nil, ErrNoVideoID
	}

	entries, err := s.entries(ctx, videoID)
	if err != nil {
		IncrFetchErrors()
		slog.Warn("transcript fetch failed", slog.String("video_id", videoID), slog.Any("error", err))
		return nil, &FetchError{VideoID: videoID, Err: err}
	}

	text := JoinEntries(entries)
	IncrTranscriptSuccess()
	return &TranscriptResponse{
		VideoID:    videoID,
		Transcript: text,
		WordCount:  WordCount(text),
		Success:    true,
	}, nil
}

func (s *Service) entries(ctx context.Context, videoID string) ([]Entry, error) {
	key := CacheKey(append([]string{"transcript", videoID}, s.langs...)...)
	if cached, ok := CacheLoadJSON[[]Entry](ctx, key); ok {
		return cached, nil
	}

	entries, err := s.fetcher.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	CacheStoreJSON(ctx, key, entries)
	return entries, nil
}

// JoinEntries joins caption texts with single spaces, without any other
// normalisation.
func JoinEntries(entries []Entry) string {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	return strings.Join(texts, " ")
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
