package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func staticFetcher(entries []Entry, err error, calls *int) Fetcher {
	return FetcherFunc(func(_ context.Context, _ string) ([]Entry, error) {
		if calls != nil {
			*calls++
		}
		return entries, err
	})
}

func TestServiceTranscript(t *testing.T) {
	InitCache("", 0, 0, 0)

	entries := []Entry{{Text: "hello", Start: 0, Duration: 1.2}, {Text: "world", Start: 1.2, Duration: 0.8}}
	svc := NewService(staticFetcher(entries, nil, nil), []string{"en"})

	got, err := svc.Transcript(context.Background(), "https://www.youtube.com/watch?v=ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.VideoID != "ABC123" {
		t.Errorf("VideoID = %q, want ABC123", got.VideoID)
	}
	if got.Transcript != "hello world" {
		t.Errorf("Transcript = %q, want %q", got.Transcript, "hello world")
	}
	if got.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2", got.WordCount)
	}
	if !got.Success {
		t.Error("Success = false, want true")
	}
}

func TestServiceTranscriptBadInput(t *testing.T) {
	InitCache("", 0, 0, 0)
	calls := 0
	svc := NewService(staticFetcher(nil, nil, &calls), nil)

	tests := []struct {
		name string
		url  string
		want error
	}{
		{"empty url", "", ErrNoVideoURL},
		{"not youtube", "https://example.com", ErrNoVideoID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Transcript(context.Background(), tt.url)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if !IsBadRequest(err) {
				t.Errorf("IsBadRequest(%v) = false", err)
			}
		})
	}
	if calls != 0 {
		t.Errorf("fetcher called %d times for bad input", calls)
	}
}

func TestServiceTranscriptFetchError(t *testing.T) {
	InitCache("", 0, 0, 0)
	cause := errors.New("boom: network down")
	svc := NewService(staticFetcher(nil, cause, nil), nil)

	_, err := svc.Transcript(context.Background(), "https://youtu.be/ABC123")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %T %v, want *FetchError", err, err)
	}
	if fe.VideoID != "ABC123" {
		t.Errorf("VideoID = %q, want ABC123", fe.VideoID)
	}
	if !errors.Is(err, cause) {
		t.Error("FetchError does not unwrap to the cause")
	}
	if !strings.Contains(err.Error(), "network down") {
		t.Errorf("error %q lacks detail", err)
	}
	if IsBadRequest(err) {
		t.Error("fetch failure classified as bad request")
	}
}

func TestServiceTranscriptUsesCache(t *testing.T) {
	InitCache("", time.Minute, 10, time.Minute)
	defer InitCache("", 0, 0, 0)

	calls := 0
	svc := NewService(staticFetcher([]Entry{{Text: "cached text"}}, nil, &calls), []string{"en"})
	for i := 0; i < 3; i++ {
		got, err := svc.Transcript(context.Background(), "https://youtu.be/CACHE1")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got.Transcript != "cached text" {
			t.Errorf("call %d: Transcript = %q", i, got.Transcript)
		}
	}
	if calls != 1 {
		t.Errorf("fetcher called %d times, want 1", calls)
	}
}

func TestServiceTranscriptDoesNotCacheFailures(t *testing.T) {
	InitCache("", time.Minute, 10, time.Minute)
	defer InitCache("", 0, 0, 0)

	calls := 0
	svc := NewService(staticFetcher(nil, ErrTranscriptsDisabled, &calls), nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.Transcript(context.Background(), "https://youtu.be/FAIL01"); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 2 {
		t.Errorf("fetcher called %d times, want 2", calls)
	}
}

func TestJoinEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    string
	}{
		{"none", nil, ""},
		{"single", []Entry{{Text: "hi"}}, "hi"},
		{"keeps inner whitespace", []Entry{{Text: "line one\nline two"}, {Text: " padded "}}, "line one\nline two  padded "},
		{"keeps punctuation", []Entry{{Text: "Hello,"}, {Text: "world!"}}, "Hello, world!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinEntries(tt.entries); got != tt.want {
				t.Errorf("JoinEntries() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"hello world", 2},
		{"line one\nline two  padded ", 5},
		{"tab\tseparated\twords", 3},
	}
	for _, tt := range tests {
		if got := WordCount(tt.in); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
