package scanner

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/nmvu/pagerisk/internal/analyzer"
	"github.com/nmvu/pagerisk/internal/shared/constants"
)

// subdomainConcurrency bounds how many subdomain fetches run at once.
const subdomainConcurrency = 4

// scanSubdomains discovers same-apex subdomains linked from the page and
// scans them as a bounded, rate-limited batch. Each sub-scan is isolated: a
// timeout or fetch failure is recorded on its own result item and never
// aborts the others.
func (s *Scanner) scanSubdomains(ctx context.Context, page *analyzer.Page, opts Options) []SubdomainResult {
	limit := opts.SubdomainLimit
	if limit <= 0 || limit > constants.MaxSubdomainScans {
		limit = constants.MaxSubdomainScans
	}

	hosts := discoverSubdomainHosts(page, limit)
	if len(hosts) == 0 {
		return nil
	}
	if opts.OnSubdomainBatchStart != nil {
		opts.OnSubdomainBatchStart(len(hosts))
	}

	limiter := rate.NewLimiter(rate.Limit(2), 2)
	sem := make(chan struct{}, subdomainConcurrency)
	results := make([]SubdomainResult, len(hosts))

	var wg sync.WaitGroup
	for i, host := range hosts {
		wg.Add(1)
		go func(idx int, h string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			started := time.Now()
			if err := limiter.Wait(ctx); err != nil {
				results[idx] = SubdomainResult{Host: h, Status: "error", Error: err.Error()}
			} else {
				results[idx] = s.scanSubdomain(ctx, h)
			}
			if opts.OnSubdomainResult != nil {
				opts.OnSubdomainResult(results[idx], time.Since(started))
			}
		}(i, host)
	}
	wg.Wait()

	return results
}

// scanSubdomain runs the reduced per-subdomain profile: fetch, technology
// detection, header/SSL posture, and a vulnerability count. No policy gate
// re-run; admission was decided for the apex target.
func (s *Scanner) scanSubdomain(ctx context.Context, host string) SubdomainResult {
	target := "https://" + host
	result := SubdomainResult{Host: host, URL: target}

	fetched, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		result.Status = "error"
		result.Error = err.Error()
		return result
	}

	page, err := analyzer.NewPage(fetched.FinalURL, fetched.Body)
	if err != nil {
		result.Status = "error"
		result.Error = err.Error()
		return result
	}

	result.Status = "success"
	result.HTTPStatus = fetched.StatusCode
	result.Technologies = s.detector.Detect(page)
	result.VulnerabilityCount = len(s.matcher.Match(result.Technologies, fetched.Body))
	result.Headers = analyzer.AnalyzeHeaders(fetched.Headers)
	result.SSL = analyzer.AnalyzeSSL(fetched.FinalURL, fetched.Headers)
	return result
}

// discoverSubdomainHosts collects distinct same-apex subdomain hosts from
// the page's links, excluding the page's own host, capped at limit and
// sorted for deterministic batches.
func discoverSubdomainHosts(page *analyzer.Page, limit int) []string {
	base, err := url.Parse(page.URL)
	if err != nil || base.Hostname() == "" {
		return nil
	}
	pageHost := strings.ToLower(base.Hostname())

	seen := map[string]struct{}{}
	links := append([]string{}, page.LinkHrefs()...)
	page.Doc().Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})

	var hosts []string
	for _, link := range links {
		parsed, err := url.Parse(strings.TrimSpace(link))
		if err != nil || parsed.Hostname() == "" {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		if host == pageHost || !SameApex(host, pageHost) {
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		hosts = append(hosts, host)
	}

	sort.Strings(hosts)
	if len(hosts) > limit {
		hosts = hosts[:limit]
	}
	return hosts
}
