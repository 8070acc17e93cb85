package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// subdomainProgress renders a one-line progress indicator on stdout while
// the subdomain worker pool runs. Observe is safe to call from concurrent
// workers; the line is redrawn on every result and on a steady tick so a
// slow host still shows a live display.
type subdomainProgress struct {
	total int

	mu      sync.Mutex
	ok      int
	failed  int
	elapsed time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func newSubdomainProgress(total int) *subdomainProgress {
	if total < 1 {
		total = 1
	}
	return &subdomainProgress{
		total: total,
		done:  make(chan struct{}),
	}
}

func (p *subdomainProgress) Start() {
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.redraw()
			case <-p.done:
				return
			}
		}
	}()
}

// Observe records one finished sub-scan.
func (p *subdomainProgress) Observe(succeeded bool, elapsed time.Duration) {
	p.mu.Lock()
	if succeeded {
		p.ok++
	} else {
		p.failed++
	}
	p.elapsed += elapsed
	p.mu.Unlock()

	p.redraw()
}

// Stop halts the redraw loop, draws the final tally, and terminates the
// line. Safe to call more than once.
func (p *subdomainProgress) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.redraw()
	fmt.Fprintln(os.Stdout)
}

func (p *subdomainProgress) redraw() {
	p.mu.Lock()
	ok, failed, elapsed := p.ok, p.failed, p.elapsed
	p.mu.Unlock()

	scanned := ok + failed
	total := p.total
	if scanned > total {
		total = scanned
	}

	avg := 0.0
	if scanned > 0 {
		avg = elapsed.Seconds() / float64(scanned)
	}

	fmt.Fprintf(os.Stdout, "\rSubdomains: %d/%d scanned (%d ok, %d failed, avg %.2fs)   ",
		scanned, total, ok, failed, avg)
}
