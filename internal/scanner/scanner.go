// Package scanner orchestrates one scan: input sanitization, the ethical
// policy gate, the page fetch, the analyzer pipeline, and scoring. One scan
// is one logical unit of work; all state is scan-local.
package scanner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nmvu/pagerisk/internal/analyzer"
	"github.com/nmvu/pagerisk/internal/policy"
	"github.com/nmvu/pagerisk/internal/scoring"
	"github.com/nmvu/pagerisk/internal/security"
	sharederrors "github.com/nmvu/pagerisk/internal/shared/errors"
)

// Options configure one scan invocation.
type Options struct {
	// SiteType is the declared site category for baseline lookup.
	SiteType string
	// StrictSiteType makes an unrecognized site type a hard error instead
	// of falling back to the default baseline.
	StrictSiteType bool
	// EthicalMode enforces policy-gate prohibitions as hard stops. When
	// false the gate still runs and its verdict is recorded, but the scan
	// proceeds with an advisory warning.
	EthicalMode bool
	// ScanSubdomains follows same-apex subdomain links found on the page.
	ScanSubdomains bool
	// SubdomainLimit caps the subdomain batch (default from constants).
	SubdomainLimit int
	// Timeout bounds the main page fetch. Zero means the fetcher's own
	// client timeout is the only bound.
	Timeout time.Duration
	// OnSubdomainBatchStart, when set, is called once with the number of
	// discovered hosts before the subdomain workers start.
	OnSubdomainBatchStart func(total int)
	// OnSubdomainResult, when set, receives each subdomain sub-scan as it
	// completes. Calls arrive from concurrent workers.
	OnSubdomainResult func(res SubdomainResult, duration time.Duration)
}

// PolicyRejection reports a policy-gate hard stop with the specific
// prohibition reason (robots vs terms).
type PolicyRejection struct {
	Policy *policy.ScrapingPolicy
}

func (e *PolicyRejection) Error() string {
	return fmt.Sprintf("scan rejected: %s", e.Policy.Reason)
}

func (e *PolicyRejection) Unwrap() error { return sharederrors.ErrPolicyRejected }

// Scanner wires the pipeline stages together. A Scanner is safe for reuse;
// scans share only the immutable rule tables.
type Scanner struct {
	fetcher  Fetcher
	gate     *policy.Gate
	detector *analyzer.Detector
	matcher  *analyzer.Matcher
	scorer   *scoring.Scorer
	logger   *zap.SugaredLogger
}

// New builds a Scanner with production collaborators.
func New(logger *zap.SugaredLogger, timeout time.Duration) *Scanner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scanner{
		fetcher:  NewHTTPFetcher(timeout),
		gate:     policy.NewGate(logger),
		detector: analyzer.NewDetector(),
		matcher:  analyzer.NewMatcher(),
		scorer:   scoring.NewScorer(),
		logger:   logger,
	}
}

// NewWithCollaborators builds a Scanner from explicit parts, for tests.
func NewWithCollaborators(fetcher Fetcher, gate *policy.Gate, detector *analyzer.Detector, matcher *analyzer.Matcher, scorer *scoring.Scorer, logger *zap.SugaredLogger) *Scanner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scanner{fetcher: fetcher, gate: gate, detector: detector, matcher: matcher, scorer: scorer, logger: logger}
}

// Scan runs the full pipeline for one target URL.
//
// Control flow: sanitize input (no network I/O on rejection), evaluate the
// policy gate (hard stop in ethical mode), fetch, then run the analyzers
// over the fetched data and score the result.
func (s *Scanner) Scan(ctx context.Context, rawURL string, opts Options) (*ScanResult, error) {
	sanitized, err := security.SanitizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	for _, warning := range sanitized.Warnings {
		s.logger.Warnw("input sanitizer", "url", sanitized.Sanitized, "warning", warning)
	}
	target := sanitized.Sanitized

	siteType := opts.SiteType
	if siteType == "" {
		siteType = scoring.DefaultSiteType
	}
	if opts.StrictSiteType {
		// Surface an unknown type before any network access.
		if err := s.scorer.ValidateSiteType(siteType); err != nil {
			return nil, err
		}
	}

	result := &ScanResult{
		URL:       target,
		SiteType:  siteType,
		ScannedAt: time.Now().UTC(),
	}

	gatePolicy := s.gate.Evaluate(ctx, target)
	result.Policy = gatePolicy
	if gatePolicy.ScrapingProhibited {
		if opts.EthicalMode {
			return nil, &PolicyRejection{Policy: gatePolicy}
		}
		s.logger.Warnw("policy gate advises against scraping, continuing (ethical mode off)",
			"url", target, "reason", gatePolicy.Reason)
	}

	fetchCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	fetched, err := s.fetcher.Fetch(fetchCtx, target)
	if err != nil {
		return nil, err
	}
	result.FinalURL = fetched.FinalURL

	page, err := analyzer.NewPage(fetched.FinalURL, fetched.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML: %v", sharederrors.ErrFetchFailed, err)
	}

	result.Technologies = s.detector.Detect(page)
	result.Headers = analyzer.AnalyzeHeaders(fetched.Headers)
	result.SSL = analyzer.AnalyzeSSL(fetched.FinalURL, fetched.Headers)
	result.Vulnerabilities = s.matcher.Match(result.Technologies, fetched.Body)
	result.Capabilities = analyzer.ExtractCapabilities(page)
	result.Context = analyzer.DeriveSiteContext(siteType, page, result.Technologies, result.Capabilities)

	if opts.StrictSiteType {
		score, err := s.scorer.Score(result.Headers, result.Vulnerabilities, siteType, result.Context)
		if err != nil {
			return nil, err
		}
		result.Score = score
	} else {
		result.Score = s.scorer.ScoreWithFallback(result.Headers, result.Vulnerabilities, siteType, result.Context)
	}

	if opts.ScanSubdomains {
		result.Subdomains = s.scanSubdomains(ctx, page, opts)
	}

	result.Status = "success"
	return result, nil
}
