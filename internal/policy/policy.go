// Package policy implements the ethical-scraping admission check that runs
// before any content fetch: a robots.txt evaluation and a terms-of-service
// probe over common policy paths.
//
// Both checks fail open by deliberate product decision: when a policy cannot
// be determined (network error, missing file), access is allowed and the
// failure is logged as a warning. Operators who want the opposite behavior
// set FailClosed.
package policy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/nmvu/pagerisk/internal/shared/constants"
)

// ScrapingPolicy is the admission decision for one target URL, produced once
// before any content fetch.
type ScrapingPolicy struct {
	RobotsTxtAllowed         bool   `json:"robots_txt_allowed"`
	TermsOfServiceRestricted bool   `json:"terms_of_service_restricted"`
	ScrapingProhibited       bool   `json:"scraping_prohibited"`
	RobotsTxtChecked         bool   `json:"robots_txt_checked"`
	TermsChecked             bool   `json:"terms_checked"`
	// Reason names which check prohibited scraping (robots vs terms) so the
	// caller can surface a specific explanation to the operator.
	Reason string `json:"reason,omitempty"`
}

// defaultTermsPaths are the common policy locations probed for restriction
// language.
var defaultTermsPaths = []string{
	"/terms",
	"/terms-of-service",
	"/terms-and-conditions",
	"/tos",
	"/legal",
	"/privacy",
	"/privacy-policy",
}

// defaultRestrictionVocabulary are the phrases that mark a terms page as
// restricting automated access. Matched against lowercased page text.
var defaultRestrictionVocabulary = []string{
	"no scraping",
	"scraping is prohibited",
	"scraping is not permitted",
	"automated access is prohibited",
	"no automated access",
	"automated data collection",
	"data mining is prohibited",
	"crawling is prohibited",
	"use of robots, spiders",
	"harvesting of data",
}

// Gate evaluates the scraping admission policy for target URLs.
type Gate struct {
	client     *http.Client
	logger     *zap.SugaredLogger
	userAgent  string
	failClosed bool
	paths      []string
	vocabulary []string
}

// Option configures a Gate.
type Option func(*Gate)

// WithClient replaces the HTTP client, primarily for tests.
func WithClient(client *http.Client) Option {
	return func(g *Gate) { g.client = client }
}

// WithUserAgent sets the agent token matched against robots.txt sections.
func WithUserAgent(ua string) Option {
	return func(g *Gate) { g.userAgent = ua }
}

// WithFailClosed makes undeterminable policies deny instead of allow.
func WithFailClosed(failClosed bool) Option {
	return func(g *Gate) { g.failClosed = failClosed }
}

// WithTermsPaths overrides the probed policy paths.
func WithTermsPaths(paths []string) Option {
	return func(g *Gate) { g.paths = paths }
}

// WithRestrictionVocabulary overrides the restriction phrase list.
func WithRestrictionVocabulary(vocab []string) Option {
	return func(g *Gate) { g.vocabulary = vocab }
}

// NewGate builds a policy gate. logger may be nil; a no-op logger is used.
func NewGate(logger *zap.SugaredLogger, opts ...Option) *Gate {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	g := &Gate{
		client:     &http.Client{Timeout: constants.DefaultPolicyTimeout},
		logger:     logger,
		userAgent:  constants.UserAgent,
		paths:      defaultTermsPaths,
		vocabulary: defaultRestrictionVocabulary,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate runs the robots.txt check and the terms probe as independent
// concurrent operations, joins them, and combines the result. It never
// returns an error: policy I/O failures resolve per the fail-open (or
// fail-closed) setting.
func (g *Gate) Evaluate(ctx context.Context, baseURL string) *ScrapingPolicy {
	policy := &ScrapingPolicy{RobotsTxtAllowed: true}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		g.logger.Warnw("policy gate: unparseable base URL, applying default decision", "url", baseURL, "error", err)
		policy.RobotsTxtAllowed = !g.failClosed
		policy.ScrapingProhibited = g.failClosed
		return policy
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		policy.RobotsTxtAllowed, policy.RobotsTxtChecked = g.checkRobots(ctx, base)
	}()

	var restricted bool
	var termsChecked bool
	go func() {
		defer wg.Done()
		restricted, termsChecked = g.checkTerms(ctx, base)
	}()
	wg.Wait()

	policy.TermsOfServiceRestricted = restricted
	policy.TermsChecked = termsChecked
	policy.ScrapingProhibited = !policy.RobotsTxtAllowed || policy.TermsOfServiceRestricted

	switch {
	case !policy.RobotsTxtAllowed:
		policy.Reason = "robots.txt disallows scraping for this site"
	case policy.TermsOfServiceRestricted:
		policy.Reason = "terms of service restrict automated access"
	}

	return policy
}

// checkRobots fetches and evaluates /robots.txt. Unreachable or absent files
// resolve per the fail-open setting.
func (g *Gate) checkRobots(ctx context.Context, base *url.URL) (allowed, checked bool) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", base.Scheme, base.Host)

	body, status, err := g.fetch(ctx, robotsURL)
	if err != nil {
		g.logger.Warnw("policy gate: robots.txt unreachable, failing open", "url", robotsURL, "error", err)
		return !g.failClosed, false
	}
	if status != http.StatusOK {
		// No robots.txt means no restriction.
		return true, true
	}

	return robotsAllowed(body, g.userAgent), true
}

// checkTerms probes the common policy paths and scans reachable pages for
// restriction phrases. The first hit short-circuits.
func (g *Gate) checkTerms(ctx context.Context, base *url.URL) (restricted, checked bool) {
	for _, path := range g.paths {
		if ctx.Err() != nil {
			return false, checked
		}
		probeURL := fmt.Sprintf("%s://%s%s", base.Scheme, base.Host, path)
		body, status, err := g.fetch(ctx, probeURL)
		if err != nil {
			g.logger.Warnw("policy gate: terms probe failed, skipping path", "url", probeURL, "error", err)
			continue
		}
		if status != http.StatusOK {
			continue
		}
		checked = true

		lower := strings.ToLower(visibleText(body))
		for _, phrase := range g.vocabulary {
			if strings.Contains(lower, phrase) {
				g.logger.Infow("policy gate: restriction language found", "url", probeURL, "phrase", phrase)
				return true, true
			}
		}
	}
	return false, checked
}

// visibleText flattens an HTML document to its text content with runs of
// whitespace collapsed, so a restriction phrase split across inline markup
// ("scraping is <b>prohibited</b>") still matches. Script and style bodies
// are excluded. Unparseable input falls back to the raw body.
func visibleText(body string) string {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return body
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style") {
				continue
			}
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(b.String()), " ")
}

func (g *Gate) fetch(ctx context.Context, target string) (body string, status int, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, constants.DefaultPolicyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxPolicyBodyBytes))
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(data), resp.StatusCode, nil
}

// robotsGroup is one User-agent section of a robots.txt file.
type robotsGroup struct {
	agents      []string
	disallowAll bool
	allowRoot   bool
}

// robotsAllowed parses robots.txt content and decides whether the given
// agent may scrape the site. Only full-site disallows are honored: this gate
// answers "may we scrape here at all", not per-path matching. A section
// matching the agent token exactly takes precedence over the wildcard.
func robotsAllowed(content, userAgent string) bool {
	groups := parseRobots(content)

	token := agentToken(userAgent)
	if g := findGroup(groups, token); g != nil {
		return !g.disallowAll || g.allowRoot
	}
	if g := findGroup(groups, "*"); g != nil {
		return !g.disallowAll || g.allowRoot
	}
	return true
}

// parseRobots tolerates mixed-case directives, blank lines between sections,
// comments, and a missing trailing newline.
func parseRobots(content string) []*robotsGroup {
	var groups []*robotsGroup
	var current *robotsGroup
	inAgentRun := false

	for _, rawLine := range strings.Split(content, "\n") {
		line := rawLine
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			// Consecutive User-agent lines share one group; a User-agent
			// line after other directives starts a new group.
			if !inAgentRun {
				current = &robotsGroup{}
				groups = append(groups, current)
			}
			current.agents = append(current.agents, strings.ToLower(value))
			inAgentRun = true
		case "disallow":
			if current == nil {
				continue
			}
			inAgentRun = false
			if value == "/" {
				current.disallowAll = true
			}
		case "allow":
			if current == nil {
				continue
			}
			inAgentRun = false
			if value == "/" {
				current.allowRoot = true
			}
		default:
			if current != nil {
				inAgentRun = false
			}
		}
	}

	return groups
}

func findGroup(groups []*robotsGroup, agent string) *robotsGroup {
	for _, g := range groups {
		for _, a := range g.agents {
			if a == agent {
				return g
			}
		}
	}
	return nil
}

// agentToken reduces a full User-Agent string to its robots.txt product
// token ("PageRiskBot/1.0" matches a "PageRiskBot" section), lowercased.
func agentToken(userAgent string) string {
	token := userAgent
	if idx := strings.Index(token, "/"); idx >= 0 {
		token = token[:idx]
	}
	return strings.ToLower(strings.TrimSpace(token))
}
