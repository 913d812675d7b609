package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// BadRequestError is a client-side input problem. Message is shown to the
// caller verbatim.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

// Client errors returned by ParseTranscriptRequest and Service.Transcript.
var (
	ErrNoJSON     = &BadRequestError{Message: "No JSON data provided"}
	ErrNoVideoURL = &BadRequestError{Message: "No video_url field provided"}
	ErrNoVideoID  = &BadRequestError{Message: "Could not extract video ID from URL. Please provide a valid YouTube URL"}
)

// Fetch failure causes reported by transcript fetchers.
var (
	ErrVideoUnavailable    = errors.New("video is unavailable")
	ErrTranscriptsDisabled = errors.New("subtitles are disabled for this video")
	ErrNoTranscriptFound   = errors.New("no transcript found for the requested languages")
	ErrInvalidVideoID      = errors.New("invalid video id")
)

// FetchError wraps any failure of the transcript fetcher for a video.
type FetchError struct {
	VideoID string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not retrieve a transcript for video %s", e.VideoID)
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsBadRequest reports whether err is a client input error.
func IsBadRequest(err error) bool {
	var br *BadRequestError
	return errors.As(err, &br)
}

// StatusError reports a non-200 upstream response that was not retried or
// stayed bad after retries.
type StatusError struct {
	StatusCode int
	Body       string // optional snippet of the response body
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
