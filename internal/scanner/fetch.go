package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nmvu/pagerisk/internal/shared/constants"
	sharederrors "github.com/nmvu/pagerisk/internal/shared/errors"
)

// FetchedPage is one page's worth of data handed to the analyzers.
type FetchedPage struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       string
}

// Fetcher retrieves target pages. The interface exists so tests can feed the
// pipeline canned responses without a network.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (*FetchedPage, error)
}

// HTTPFetcher is the production Fetcher.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher builds a fetcher with the default timeout and user agent.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = constants.DefaultFetchTimeout
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: constants.UserAgent,
	}
}

// Fetch GETs the target and returns status, headers, and a size-capped body.
// Non-2xx statuses and transport errors are ErrFetchFailed (or
// ErrFetchTimeout) with an operator-readable explanation.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (*FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", sharederrors.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", sharederrors.ErrFetchTimeout, fetchErrorMessage(0, true))
		}
		return nil, fmt.Errorf("%w: %v", sharederrors.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: HTTP %d: %s", sharederrors.ErrFetchFailed, resp.StatusCode, fetchErrorMessage(resp.StatusCode, false))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", sharederrors.ErrFetchFailed, err)
	}

	page := &FetchedPage{
		URL:        target,
		FinalURL:   target,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(body),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		page.FinalURL = resp.Request.URL.String()
	}
	return page, nil
}

// fetchErrorMessage maps an HTTP status (or timeout) to the canned
// operator-facing explanation.
func fetchErrorMessage(status int, timedOut bool) string {
	if timedOut {
		return "the site is slow or overloaded and did not respond in time"
	}
	switch status {
	case http.StatusForbidden:
		return "the site denied access to the scanner"
	case http.StatusNotFound:
		return "the page was not found"
	case http.StatusTooManyRequests:
		return "the site is rate limiting requests; retry later"
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "the site or its upstream is temporarily unavailable"
	default:
		return "the site returned an unexpected response"
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
