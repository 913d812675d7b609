package engine

import (
	"bytes"
	"encoding/json"
)

// ParseTranscriptRequest decodes a POST /transcript body.
// An empty, malformed or non-object body yields ErrNoJSON; a missing,
// non-string or empty video_url yields ErrNoVideoURL.
func ParseTranscriptRequest(body []byte) (TranscriptRequest, error) {
	var req TranscriptRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, ErrNoJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return req, ErrNoJSON
	}

	raw, ok := fields["video_url"]
	if !ok {
		return req, ErrNoVideoURL
	}
	var videoURL string
	if err := json.Unmarshal(raw, &videoURL); err != nil || videoURL == "" {
		return req, ErrNoVideoURL
	}
	req.VideoURL = &videoURL
	return req, nil
}
