package engine

import "testing"

func TestCleanCaption(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"entities", "don&#39;t stop &amp; go", "don't stop & go"},
		{"markup", "<font color=\"#E5E5E5\">hi</font> there", "hi there"},
		{"escaped markup", "&lt;i&gt;music&lt;/i&gt;", "music"},
		{"keeps whitespace", " two\nlines ", " two\nlines "},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCaption(tt.in); got != tt.want {
				t.Errorf("CleanCaption(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
