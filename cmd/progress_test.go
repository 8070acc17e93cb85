package cmd

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = original }()

	fn()

	if err := w.Close(); err != nil {
		t.Fatalf("close pipe: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	return string(data)
}

func TestSubdomainProgressLifecycle(t *testing.T) {
	progress := newSubdomainProgress(0)
	if progress.total != 1 {
		t.Fatalf("expected total to be clamped to 1, got %d", progress.total)
	}

	output := captureStdout(t, func() {
		progress.Start()
		progress.Observe(true, 500*time.Millisecond)
		progress.Observe(false, time.Second)
		time.Sleep(300 * time.Millisecond) // allow the ticker to redraw at least once
		progress.Stop()
		time.Sleep(50 * time.Millisecond) // ensure the loop goroutine exits
	})

	if !strings.Contains(output, "Subdomains: 2/2 scanned") {
		t.Fatalf("expected final tally, got %q", output)
	}
	if !strings.Contains(output, "1 ok, 1 failed") {
		t.Fatalf("expected ok/failed counts in output, got %q", output)
	}
	if !strings.Contains(output, "avg 0.75s") {
		t.Fatalf("expected average duration in output, got %q", output)
	}
}

func TestSubdomainProgressTotalFromDiscoveredHosts(t *testing.T) {
	// The indicator is seeded with the discovered host count, so a batch
	// that found fewer hosts than the configured limit still finishes full.
	progress := newSubdomainProgress(2)

	output := captureStdout(t, func() {
		progress.Observe(true, 100*time.Millisecond)
		progress.Observe(true, 100*time.Millisecond)
		progress.Stop()
	})

	if !strings.Contains(output, "Subdomains: 2/2 scanned") {
		t.Fatalf("expected a complete 2/2 batch, got %q", output)
	}
}

func TestSubdomainProgressStopIdempotent(t *testing.T) {
	progress := newSubdomainProgress(3)
	_ = captureStdout(t, func() {
		progress.Start()
		progress.Stop()
		progress.Stop()
	})
}
