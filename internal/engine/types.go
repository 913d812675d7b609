package engine

// Entry is one caption fragment. Start and Duration are in seconds.
type Entry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// --- Input types ---

// TranscriptRequest is the body of POST /transcript.
// VideoURL is nil when the field is absent or not a string.
type TranscriptRequest struct {
	VideoURL *string `json:"video_url"`
}

// TranscriptInput is the input of the youtube_transcript MCP tool.
type TranscriptInput struct {
	VideoURL string `json:"video_url" jsonschema:"YouTube video URL (watch, youtu.be or embed link)"`
}

// --- Output types (JSON responses) ---

type TranscriptResponse struct {
	VideoID    string `json:"video_id"`
	Transcript string `json:"transcript"`
	WordCount  int    `json:"word_count"`
	Success    bool   `json:"success"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
