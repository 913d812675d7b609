package engine

import (
	"strings"
	"testing"
)

func TestFormatMetrics(t *testing.T) {
	before := GetMetrics()["bad_requests"]
	IncrBadRequests()
	if got := GetMetrics()["bad_requests"]; got != before+1 {
		t.Errorf("bad_requests = %d, want %d", got, before+1)
	}

	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(metricKeys) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(metricKeys), out)
	}
	for i, k := range metricKeys {
		if !strings.HasPrefix(lines[i], k+" ") {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], k)
		}
	}
}
