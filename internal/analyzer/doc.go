// Package analyzer turns one fetched page (raw HTML plus response headers)
// into a structured risk profile.
//
// Architecture overview:
//
//   - Page wraps a single page's content: raw HTML, a lowercased copy for
//     substring signatures, a parsed goquery document, and the script/link
//     URLs pulled from it. Every analyzer reads from the same Page.
//   - Detector matches a fixed signature table against the Page and emits
//     DetectedTechnology entries with best-effort version extraction.
//   - Matcher cross-references detected technologies and raw HTML code
//     patterns against the built-in vulnerability rules, producing Findings.
//   - AnalyzeHeaders and AnalyzeSSL classify security-header posture and
//     infer TLS state from the URL scheme and headers.
//   - ExtractCapabilities collects e-commerce and capability signals
//     (informational only, never fed into scoring).
//   - DeriveSiteContext folds technologies, capabilities, and content
//     signals into the SiteContext consumed by the scoring package.
//
// All rule tables are injected at construction so tests can substitute
// custom sets; the defaults are immutable after process start. Analyzers are
// pure functions over already-fetched data and keep no cross-scan state.
package analyzer
