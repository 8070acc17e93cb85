package scanner

import (
	"time"

	"github.com/nmvu/pagerisk/internal/analyzer"
	"github.com/nmvu/pagerisk/internal/policy"
	"github.com/nmvu/pagerisk/internal/scoring"
)

// ScanResult is the single JSON-serializable artifact of one scan. It is
// exportable verbatim; there is no partial or streaming output contract.
type ScanResult struct {
	URL       string    `json:"url"`
	FinalURL  string    `json:"final_url,omitempty"`
	SiteType  string    `json:"site_type"`
	ScannedAt time.Time `json:"scanned_at"`
	Status    string    `json:"status"`

	Policy          *policy.ScrapingPolicy        `json:"policy,omitempty"`
	Technologies    []analyzer.DetectedTechnology `json:"technologies,omitempty"`
	Vulnerabilities []analyzer.Finding            `json:"vulnerabilities,omitempty"`
	Headers         *analyzer.HeaderReport        `json:"headers,omitempty"`
	SSL             *analyzer.SSLInfo             `json:"ssl,omitempty"`
	Capabilities    *analyzer.Capabilities        `json:"capabilities,omitempty"`
	Context         *analyzer.SiteContext         `json:"context,omitempty"`
	Score           *scoring.SecurityScore        `json:"score,omitempty"`

	Subdomains []SubdomainResult `json:"subdomains,omitempty"`
}

// SubdomainResult is the isolated outcome of one subdomain sub-scan. A
// failed sub-scan records its own error and never aborts the batch.
type SubdomainResult struct {
	Host               string                        `json:"host"`
	URL                string                        `json:"url"`
	Status             string                        `json:"status"` // success | error
	Error              string                        `json:"error,omitempty"`
	HTTPStatus         int                           `json:"http_status,omitempty"`
	Technologies       []analyzer.DetectedTechnology `json:"technologies,omitempty"`
	VulnerabilityCount int                           `json:"vulnerability_count"`
	Headers            *analyzer.HeaderReport        `json:"headers,omitempty"`
	SSL                *analyzer.SSLInfo             `json:"ssl,omitempty"`
}
