package sources

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"golang.org/x/net/html"
)

var xmlTagRe = regexp.MustCompile(`<[^>]*>`)

// fetchTimedText downloads and parses a YouTube timedtext caption URL.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]engine.Entry, error) {
	// srv3 is requested by some clients; the default format is simpler to parse.
	captionURL := strings.Replace(baseURL, "&fmt=srv3", "", 1)
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, y.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, captionURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return y.client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: %w", &engine.StatusError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	return parseTimedText(body)
}

// parseTimedText converts timedtext XML into entries. Elements without text
// are skipped.
func parseTimedText(body []byte) ([]engine.Entry, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var tt ytTimedText
	if err := dec.Decode(&tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	entries := make([]engine.Entry, 0, len(tt.Lines)+len(tt.Paragraphs))
	for _, line := range tt.Lines {
		if line.Text == "" {
			continue
		}
		entries = append(entries, engine.Entry{
			Text:     engine.CleanCaption(line.Text),
			Start:    parseFloat(line.Start),
			Duration: parseFloat(line.Dur),
		})
	}
	for _, p := range tt.Paragraphs {
		// innerxml is still XML-escaped: drop the <s> run tags, decode once,
		// then clean like a plain line.
		raw := html.UnescapeString(xmlTagRe.ReplaceAllString(p.Inner, ""))
		if raw == "" {
			continue
		}
		entries = append(entries, engine.Entry{
			Text:     engine.CleanCaption(raw),
			Start:    parseFloat(p.T) / 1000,
			Duration: parseFloat(p.D) / 1000,
		})
	}
	return entries, nil
}
