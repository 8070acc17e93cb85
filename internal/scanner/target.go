package scanner

import (
	"net/url"
	"strings"
)

// TargetInfo contains parsed target information.
type TargetInfo struct {
	Original string
	Scheme   string
	Host     string
	FullURL  string
}

// ParseTarget normalizes the various forms operators type (bare host, host
// with scheme, host with path) into structured components. A missing scheme
// defaults to https.
func ParseTarget(target string) *TargetInfo {
	info := &TargetInfo{Original: target}

	trimmed := strings.TrimSpace(target)
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Hostname() == "" {
		// Last-resort manual host extraction so downstream code always has
		// something to report against.
		host := strings.TrimPrefix(strings.TrimPrefix(target, "http://"), "https://")
		host = strings.Split(host, "/")[0]
		host = strings.Split(host, ":")[0]
		info.Scheme = "https"
		info.Host = host
		info.FullURL = "https://" + host
		return info
	}

	info.Scheme = parsed.Scheme
	info.Host = parsed.Hostname()
	info.FullURL = parsed.String()
	return info
}

// ApexDomain reduces a hostname to its registrable apex using the naive
// last-two-labels rule. Multi-label public suffixes (co.uk and friends) are
// not modeled; hosts under such suffixes may be grouped too broadly. The
// subdomain batch only follows links already present on the scanned page,
// which bounds the blast radius of that simplification.
func ApexDomain(host string) string {
	labels := strings.Split(strings.ToLower(strings.TrimSuffix(host, ".")), ".")
	if len(labels) <= 2 {
		return strings.Join(labels, ".")
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// SameApex reports whether two hosts share an apex domain.
func SameApex(a, b string) bool {
	return ApexDomain(a) != "" && ApexDomain(a) == ApexDomain(b)
}
