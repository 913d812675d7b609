package engine

import (
	"errors"
	"testing"
)

func TestParseTranscriptRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantURL string
		wantErr error
	}{
		{"empty body", "", "", ErrNoJSON},
		{"whitespace body", "  \n", "", ErrNoJSON},
		{"malformed", `{"video_url":`, "", ErrNoJSON},
		{"null", "null", "", ErrNoJSON},
		{"array", `["https://youtu.be/x"]`, "", ErrNoJSON},
		{"string", `"https://youtu.be/x"`, "", ErrNoJSON},
		{"empty object", "{}", "", ErrNoVideoURL},
		{"null field", `{"video_url":null}`, "", ErrNoVideoURL},
		{"empty field", `{"video_url":""}`, "", ErrNoVideoURL},
		{"number field", `{"video_url":42}`, "", ErrNoVideoURL},
		{"valid", `{"video_url":"https://youtu.be/ABC123"}`, "https://youtu.be/ABC123", nil},
		{"extra fields", `{"video_url":"https://youtu.be/ABC123","lang":"de"}`, "https://youtu.be/ABC123", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseTranscriptRequest([]byte(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if req.VideoURL != nil {
					t.Errorf("VideoURL = %q, want nil", *req.VideoURL)
				}
				return
			}
			if req.VideoURL == nil || *req.VideoURL != tt.wantURL {
				t.Errorf("VideoURL = %v, want %q", req.VideoURL, tt.wantURL)
			}
		})
	}
}
