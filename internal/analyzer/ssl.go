package analyzer

import (
	"net/http"
	"strings"
)

// SSLInfo is a heuristic inference of TLS posture from the URL scheme and
// response headers. No handshake or certificate chain is examined here, so
// ValidCertificate must never be treated as a cryptographic guarantee; it
// only records that an HTTPS response was served without transport failure.
type SSLInfo struct {
	HasSSL           bool   `json:"has_ssl"`
	HTTPSEnabled     bool   `json:"https_enabled"`
	HSTSEnabled      bool   `json:"hsts_enabled"`
	ValidCertificate bool   `json:"valid_certificate"`
	Protocol         string `json:"protocol"`
}

// AnalyzeSSL infers TLS posture for a fetched page.
func AnalyzeSSL(pageURL string, headers http.Header) *SSLInfo {
	https := strings.HasPrefix(strings.ToLower(pageURL), "https://")
	info := &SSLInfo{
		HasSSL:       https,
		HTTPSEnabled: https,
		HSTSEnabled:  headers.Get(HeaderHSTS) != "",
		// The page was delivered over TLS without a transport error, which is
		// the strongest statement this analyzer can make.
		ValidCertificate: https,
	}
	if https {
		info.Protocol = "https"
	} else {
		info.Protocol = "http"
	}
	return info
}
