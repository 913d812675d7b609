package main

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestTimeoutSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{15 * time.Second, 15},
		{30 * time.Second, 30},
		{1500 * time.Millisecond, 2},
		{0, 1},
		{-time.Second, 1},
	}
	for _, tt := range tests {
		if got := timeoutSeconds(tt.in); got != tt.want {
			t.Errorf("timeoutSeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestServeWaitsForMCPOnShutdown(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	mcpDone := make(chan struct{})

	result := make(chan error, 1)
	go func() { result <- serve(ctx, srv, mcpDone, 5*time.Second) }()

	cancel()
	select {
	case err := <-result:
		t.Fatalf("serve returned %v before the MCP server stopped", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(mcpDone)
	select {
	case err := <-result:
		if err != nil {
			t.Errorf("serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after the MCP server stopped")
	}
}

func TestServeGivesUpOnStuckMCP(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := serve(ctx, srv, make(chan struct{}), 20*time.Millisecond); err != nil {
		t.Errorf("serve() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("serve blocked %v past its grace period", elapsed)
	}
}

func TestServeReportsListenError(t *testing.T) {
	srv := &http.Server{Addr: "256.0.0.1:bad", Handler: http.NotFoundHandler()}
	if err := serve(context.Background(), srv, nil, time.Second); err == nil {
		t.Error("expected listen error")
	}
}
