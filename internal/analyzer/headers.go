package analyzer

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Canonical names of the security headers tracked by the analyzer and the
// scorer. Order is fixed for deterministic iteration.
const (
	HeaderCSP                 = "Content-Security-Policy"
	HeaderHSTS                = "Strict-Transport-Security"
	HeaderXFrameOptions       = "X-Frame-Options"
	HeaderXContentTypeOptions = "X-Content-Type-Options"
	HeaderReferrerPolicy      = "Referrer-Policy"
	HeaderPermissionsPolicy   = "Permissions-Policy"
	HeaderXSSProtection       = "X-XSS-Protection"
)

// TrackedHeaders lists the headers the scorer iterates, in canonical order.
var TrackedHeaders = []string{
	HeaderCSP,
	HeaderHSTS,
	HeaderXFrameOptions,
	HeaderXContentTypeOptions,
	HeaderReferrerPolicy,
	HeaderPermissionsPolicy,
	HeaderXSSProtection,
}

// HeaderStatus classifies one security header on one response.
type HeaderStatus struct {
	Present bool   `json:"present"`
	Valid   bool   `json:"valid"`
	Content string `json:"content,omitempty"`
}

// InfoDisclosure records identifying headers the server should not expose.
type InfoDisclosure struct {
	ServerExposed    bool   `json:"server_exposed"`
	ServerValue      string `json:"server_value,omitempty"`
	PoweredByExposed bool   `json:"powered_by_exposed"`
	PoweredByValue   string `json:"powered_by_value,omitempty"`
}

// HeaderReport is the security-header posture of one response.
type HeaderReport struct {
	Headers        map[string]HeaderStatus `json:"headers"`
	InfoDisclosure InfoDisclosure          `json:"info_disclosure"`
}

// Status returns the classification for a tracked header, zero value if the
// header is not tracked.
func (r *HeaderReport) Status(name string) HeaderStatus {
	if r == nil {
		return HeaderStatus{}
	}
	return r.Headers[name]
}

var (
	hstsMaxAgePattern = regexp.MustCompile(`max-age\s*=\s*(\d+)`)
	serverNamePattern = regexp.MustCompile(`(?i)apache|nginx|iis|lighttpd|tomcat|litespeed|caddy`)
	poweredByPattern  = regexp.MustCompile(`(?i)php|asp\.net|express|next\.js|servlet|rails|django|laravel|wordpress`)
)

// hstsMinMaxAge is one year in seconds, the minimum for a valid HSTS policy.
const hstsMinMaxAge = 31536000

// AnalyzeHeaders classifies the presence and validity of each tracked
// security header and flags information-disclosure headers. Lookups are
// case-insensitive via http.Header semantics.
func AnalyzeHeaders(headers http.Header) *HeaderReport {
	report := &HeaderReport{Headers: make(map[string]HeaderStatus, len(TrackedHeaders))}

	csp := headers.Get(HeaderCSP)
	for _, name := range TrackedHeaders {
		value := headers.Get(name)
		status := HeaderStatus{Present: value != "", Content: value}
		switch name {
		case HeaderCSP:
			status.Valid = status.Present && validCSP(value)
		case HeaderHSTS:
			status.Valid = status.Present && validHSTS(value)
		case HeaderXFrameOptions:
			status.Valid = status.Present && validXFrameOptions(value)
		case HeaderXContentTypeOptions:
			status.Valid = status.Present && validXContentTypeOptions(value)
		case HeaderReferrerPolicy:
			status.Valid = status.Present && validReferrerPolicy(value)
		case HeaderPermissionsPolicy:
			status.Valid = status.Present && strings.TrimSpace(value) != ""
		case HeaderXSSProtection:
			// Validity can be satisfied by a strict CSP even when the legacy
			// header is absent, so Present and Valid diverge here.
			status.Valid = validXSSProtection(value, csp)
		}
		report.Headers[name] = status
	}

	if server := headers.Get("Server"); server != "" && serverNamePattern.MatchString(server) {
		report.InfoDisclosure.ServerExposed = true
		report.InfoDisclosure.ServerValue = server
	}
	if poweredBy := headers.Get("X-Powered-By"); poweredBy != "" && poweredByPattern.MatchString(poweredBy) {
		report.InfoDisclosure.PoweredByExposed = true
		report.InfoDisclosure.PoweredByValue = poweredBy
	}

	return report
}

// validCSP requires default-src and script-src, and rejects unsafe-inline
// unless a nonce- or sha256- source compensates for it.
func validCSP(value string) bool {
	lower := strings.ToLower(value)
	if !strings.Contains(lower, "default-src") || !strings.Contains(lower, "script-src") {
		return false
	}
	if strings.Contains(lower, "unsafe-inline") {
		return strings.Contains(lower, "nonce-") || strings.Contains(lower, "sha256-")
	}
	return true
}

// validHSTS requires max-age of at least one year. Exactly 31536000 is
// valid; 31535999 is not.
func validHSTS(value string) bool {
	m := hstsMaxAgePattern.FindStringSubmatch(strings.ToLower(value))
	if len(m) < 2 {
		return false
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return age >= hstsMinMaxAge
}

// validXSSProtection accepts the exact legacy "1; mode=block" value, or, when
// the header is absent, a CSP that constrains both object-src and script-src.
func validXSSProtection(value, csp string) bool {
	if value != "" {
		return strings.TrimSpace(value) == "1; mode=block"
	}
	if csp == "" {
		return false
	}
	lower := strings.ToLower(csp)
	return strings.Contains(lower, "object-src") && strings.Contains(lower, "script-src")
}

func validXContentTypeOptions(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "nosniff")
}

func validReferrerPolicy(value string) bool {
	lower := strings.ToLower(value)
	for _, policy := range []string{"no-referrer", "strict-origin-when-cross-origin", "no-referrer-when-downgrade"} {
		if strings.Contains(lower, policy) {
			return true
		}
	}
	return false
}

func validXFrameOptions(value string) bool {
	lower := strings.ToLower(value)
	for _, directive := range []string{"deny", "sameorigin", "allow-from"} {
		if strings.Contains(lower, directive) {
			return true
		}
	}
	return false
}
