package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nmvu/pagerisk/internal/analyzer"
	"github.com/nmvu/pagerisk/internal/policy"
	"github.com/nmvu/pagerisk/internal/scoring"
	sharederrors "github.com/nmvu/pagerisk/internal/shared/errors"
)

// fakeFetcher serves canned pages keyed by target URL. Unknown targets fail.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]*FetchedPage
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, target string) (*FetchedPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, target)
	f.mu.Unlock()
	if page, ok := f.pages[target]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("%w: HTTP 404: %s", sharederrors.ErrFetchFailed, fetchErrorMessage(http.StatusNotFound, false))
}

// robotsTransport answers every robots.txt request with canned content and
// 404s everything else, keeping gate evaluation off the network.
type robotsTransport struct {
	robots string
}

func (rt robotsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	status := http.StatusNotFound
	body := ""
	if strings.HasSuffix(req.URL.Path, "/robots.txt") {
		status = http.StatusOK
		body = rt.robots
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func gateWithRobots(robots string) *policy.Gate {
	client := &http.Client{Transport: robotsTransport{robots: robots}}
	return policy.NewGate(nil, policy.WithClient(client), policy.WithTermsPaths(nil))
}

func allowAllGate(t *testing.T) *policy.Gate {
	t.Helper()
	return gateWithRobots("User-agent: *\nAllow: /\n")
}

func deniedGate(t *testing.T) *policy.Gate {
	t.Helper()
	return gateWithRobots("User-agent: *\nDisallow: /\n")
}

func testScanner(fetcher Fetcher, gate *policy.Gate) *Scanner {
	return NewWithCollaborators(fetcher, gate, analyzer.NewDetector(), analyzer.NewMatcher(), scoring.NewScorer(), nil)
}

const scanPage = `<!DOCTYPE html>
<html><head>
<meta name="generator" content="WordPress 5.6.2">
<script src="/wp-includes/js/jquery/jquery.min.js?ver=3.4.1"></script>
</head><body>
<script>eval(payload);</script>
<a href="https://shop.example.com/">Shop</a>
<a href="https://blog.example.com/">Blog</a>
<a href="https://blog.example.com/post/1">Post</a>
<a href="https://other.net/">Elsewhere</a>
</body></html>`

func pageResponse(target, body string, headers http.Header) *FetchedPage {
	if headers == nil {
		headers = http.Header{}
	}
	return &FetchedPage{URL: target, FinalURL: target, StatusCode: 200, Headers: headers, Body: body}
}

func TestScan_FullPipeline(t *testing.T) {
	headers := http.Header{}
	headers.Set("Strict-Transport-Security", "max-age=31536000")
	headers.Set("X-Content-Type-Options", "nosniff")

	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{
		"https://example.com": pageResponse("https://example.com", scanPage, headers),
	}}
	s := testScanner(fetcher, allowAllGate(t))

	result, err := s.Scan(context.Background(), "example.com", Options{SiteType: "blog", EthicalMode: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if result.Status != "success" {
		t.Errorf("status = %q, want success", result.Status)
	}
	if result.Policy == nil || result.Policy.ScrapingProhibited {
		t.Errorf("unexpected policy verdict: %+v", result.Policy)
	}

	techNames := map[string]bool{}
	for _, tech := range result.Technologies {
		techNames[tech.Name] = true
	}
	if !techNames["WordPress"] || !techNames["jQuery"] {
		t.Errorf("technologies = %v, want WordPress and jQuery", result.Technologies)
	}

	var haveJQueryVuln, haveEval bool
	for _, f := range result.Vulnerabilities {
		switch {
		case f.Name == "jQuery" && f.CVE == "CVE-2020-11022":
			haveJQueryVuln = true
		case f.Name == "eval() usage":
			haveEval = true
		}
	}
	if !haveJQueryVuln || !haveEval {
		t.Errorf("vulnerabilities = %v, want jQuery CVE and eval finding", result.Vulnerabilities)
	}

	if !result.Headers.Status(analyzer.HeaderHSTS).Valid {
		t.Error("HSTS header should be valid")
	}
	if result.SSL == nil || !result.SSL.HTTPSEnabled {
		t.Error("https target should report SSL enabled")
	}
	if result.Score == nil {
		t.Fatal("score missing")
	}
	if result.Score.SiteType != "blog" {
		t.Errorf("score site type = %q, want blog", result.Score.SiteType)
	}
	if result.ScannedAt.IsZero() {
		t.Error("ScannedAt not set")
	}
}

func TestScan_SanitizerRejectionBeforeNetwork(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{}}
	s := testScanner(fetcher, allowAllGate(t))

	_, err := s.Scan(context.Background(), "http://127.0.0.1/", Options{})
	if !errors.Is(err, sharederrors.ErrPrivateNetwork) {
		t.Fatalf("err = %v, want ErrPrivateNetwork", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetcher was called %d times, want 0", len(fetcher.calls))
	}
}

func TestScan_StrictSiteTypeRejectedBeforeNetwork(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{}}
	s := testScanner(fetcher, allowAllGate(t))

	_, err := s.Scan(context.Background(), "https://example.com", Options{SiteType: "space-station", StrictSiteType: true})
	if !errors.Is(err, sharederrors.ErrUnknownSiteType) {
		t.Fatalf("err = %v, want ErrUnknownSiteType", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetcher was called %d times, want 0", len(fetcher.calls))
	}
}

func TestScan_PolicyRejectionInEthicalMode(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{}}
	s := testScanner(fetcher, deniedGate(t))

	_, err := s.Scan(context.Background(), "https://example.com", Options{EthicalMode: true})

	var rejection *PolicyRejection
	if !errors.As(err, &rejection) {
		t.Fatalf("err = %v, want PolicyRejection", err)
	}
	if !errors.Is(err, sharederrors.ErrPolicyRejected) {
		t.Error("PolicyRejection should unwrap to ErrPolicyRejected")
	}
	if rejection.Policy.Reason == "" {
		t.Error("rejection should carry a reason")
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetcher was called %d times, want 0", len(fetcher.calls))
	}
}

func TestScan_AdvisoryModeProceedsPastProhibition(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{
		"https://example.com": pageResponse("https://example.com", "<html><body>ok</body></html>", nil),
	}}
	s := testScanner(fetcher, deniedGate(t))

	result, err := s.Scan(context.Background(), "https://example.com", Options{EthicalMode: false})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !result.Policy.ScrapingProhibited {
		t.Error("advisory verdict should still be recorded")
	}
	if result.Status != "success" {
		t.Errorf("status = %q, want success", result.Status)
	}
}

func TestScan_FetchFailurePropagates(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{}}
	s := testScanner(fetcher, allowAllGate(t))

	_, err := s.Scan(context.Background(), "https://example.com", Options{})
	if !errors.Is(err, sharederrors.ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("err %q should carry the operator explanation", err)
	}
}

func TestScan_SubdomainBatchIsolation(t *testing.T) {
	headers := http.Header{}
	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{
		"https://example.com":      pageResponse("https://example.com", scanPage, headers),
		"https://blog.example.com": pageResponse("https://blog.example.com", "<html><body><script src='/jquery-3.6.0.min.js'></script></body></html>", headers),
		// shop.example.com is intentionally absent to force a sub-scan error.
	}}
	s := testScanner(fetcher, allowAllGate(t))

	result, err := s.Scan(context.Background(), "https://example.com", Options{ScanSubdomains: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(result.Subdomains) != 2 {
		t.Fatalf("subdomains = %v, want blog and shop", result.Subdomains)
	}

	byHost := map[string]SubdomainResult{}
	for _, sub := range result.Subdomains {
		byHost[sub.Host] = sub
	}

	blog, ok := byHost["blog.example.com"]
	if !ok || blog.Status != "success" {
		t.Errorf("blog sub-scan = %+v, want success", blog)
	}
	shop, ok := byHost["shop.example.com"]
	if !ok || shop.Status != "error" || shop.Error == "" {
		t.Errorf("shop sub-scan = %+v, want isolated error", shop)
	}
	if result.Status != "success" {
		t.Errorf("main status = %q, one failed sub-scan must not fail the scan", result.Status)
	}

	// other.net is a different apex and must not be followed.
	if _, followed := byHost["other.net"]; followed {
		t.Error("non-apex host was scanned")
	}
}

// blockedFetcher never responds; it waits out the request context.
type blockedFetcher struct{}

func (blockedFetcher) Fetch(ctx context.Context, _ string) (*FetchedPage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestScan_OptionsTimeoutBoundsMainFetch(t *testing.T) {
	s := testScanner(blockedFetcher{}, allowAllGate(t))

	started := time.Now()
	_, err := s.Scan(context.Background(), "https://example.com", Options{Timeout: 30 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(started); elapsed > 2*time.Second {
		t.Errorf("fetch ran %v before the timeout cut it off", elapsed)
	}
}

func TestScan_SubdomainBatchStartReportsDiscoveredCount(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{
		"https://example.com":      pageResponse("https://example.com", scanPage, nil),
		"https://blog.example.com": pageResponse("https://blog.example.com", "<html></html>", nil),
	}}
	s := testScanner(fetcher, allowAllGate(t))

	total := 0
	opts := Options{ScanSubdomains: true, SubdomainLimit: 10}
	opts.OnSubdomainBatchStart = func(n int) { total = n }

	if _, err := s.Scan(context.Background(), "https://example.com", opts); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// The page links blog. and shop. subdomains; the limit of 10 must not
	// inflate the reported batch size.
	if total != 2 {
		t.Errorf("batch start reported %d hosts, want 2", total)
	}
}

func TestScan_SubdomainCallbackInvoked(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*FetchedPage{
		"https://example.com":      pageResponse("https://example.com", scanPage, nil),
		"https://blog.example.com": pageResponse("https://blog.example.com", "<html></html>", nil),
	}}
	s := testScanner(fetcher, allowAllGate(t))

	seen := make(chan SubdomainResult, 8)
	opts := Options{ScanSubdomains: true}
	opts.OnSubdomainResult = func(res SubdomainResult, _ time.Duration) {
		seen <- res
	}

	if _, err := s.Scan(context.Background(), "https://example.com", opts); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	close(seen)

	count := 0
	for range seen {
		count++
	}
	if count != 2 {
		t.Errorf("callback fired %d times, want 2", count)
	}
}
