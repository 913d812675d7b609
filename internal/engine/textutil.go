package engine

import (
	"regexp"

	"golang.org/x/net/html"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoTranscript/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// CleanCaption resolves HTML entities in a caption line, then strips any
// markup. Surrounding and inner whitespace is left alone.
func CleanCaption(s string) string {
	return htmlTagRe.ReplaceAllString(html.UnescapeString(s), "")
}
