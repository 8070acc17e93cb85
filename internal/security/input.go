// Package security validates operator-supplied input before it reaches the
// network or the filesystem. URL validation runs ahead of every scan so that
// unsafe targets are rejected without a single request being sent.
package security

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/nmvu/pagerisk/internal/shared/constants"
	sharederrors "github.com/nmvu/pagerisk/internal/shared/errors"
)

// SanitizedURL is the outcome of validating a raw target URL.
type SanitizedURL struct {
	Sanitized string   `json:"sanitized"`
	IsSafe    bool     `json:"is_safe"`
	Warnings  []string `json:"warnings,omitempty"`
}

// SanitizeURL normalizes and validates a raw target URL. A missing scheme is
// treated as https. The returned error wraps ErrMalformedInput so callers can
// classify the failure without string matching.
func SanitizeURL(raw string) (*SanitizedURL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %w", sharederrors.ErrMalformedInput, sharederrors.ErrEmptyTarget)
	}
	if len(trimmed) > constants.MaxURLLength {
		return nil, fmt.Errorf("%w: %w (%d bytes)", sharederrors.ErrMalformedInput, sharederrors.ErrURLTooLong, len(trimmed))
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sharederrors.ErrMalformedInput, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %w (got %q)", sharederrors.ErrMalformedInput, sharederrors.ErrUnsupportedScheme, parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", sharederrors.ErrMalformedInput)
	}

	if err := rejectPrivateHost(host); err != nil {
		return nil, err
	}

	result := &SanitizedURL{IsSafe: true}

	if parsed.User != nil {
		// Credentials embedded in URLs leak into logs and results files.
		parsed.User = nil
		result.Warnings = append(result.Warnings, "embedded credentials removed from URL")
	}
	if scheme == "http" {
		result.Warnings = append(result.Warnings, "target uses plain HTTP")
	}

	parsed.Fragment = ""
	result.Sanitized = parsed.String()
	return result, nil
}

// rejectPrivateHost blocks literal IPs in loopback, link-local, or RFC 1918
// ranges, plus obvious internal hostnames. Hostnames that merely resolve to
// private space are not caught here; this is a pre-flight filter, not a
// substitute for egress policy.
func rejectPrivateHost(host string) error {
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") || strings.HasSuffix(lower, ".local") || strings.HasSuffix(lower, ".internal") {
		return fmt.Errorf("%w: %w (%s)", sharederrors.ErrMalformedInput, sharederrors.ErrPrivateNetwork, host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return fmt.Errorf("%w: %w (%s)", sharederrors.ErrMalformedInput, sharederrors.ErrPrivateNetwork, host)
	}
	return nil
}
