package scoring

import (
	"sort"

	"github.com/nmvu/pagerisk/internal/analyzer"
)

// Baseline is the starting posture assigned purely by declared site
// category, before headers and vulnerabilities are evaluated.
type Baseline struct {
	BaseScore                 int      `json:"base_score"`
	ExpectedHeaders           []string `json:"expected_headers"`
	TypicalVulnerabilityCount int      `json:"typical_vulnerability_count"`
	Industry                  string   `json:"industry"`
	RiskProfile               string   `json:"risk_profile"`
}

// DefaultSiteType is the permissive-fallback category.
const DefaultSiteType = "default"

// DefaultBaselines is the built-in per-site-type baseline table. The base
// scores and risk profiles are calibration data tuned against observed
// scan populations, not derived invariants.
var DefaultBaselines = map[string]Baseline{
	"financial": {
		BaseScore:                 65,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS, analyzer.HeaderXFrameOptions, analyzer.HeaderXContentTypeOptions, analyzer.HeaderReferrerPolicy, analyzer.HeaderPermissionsPolicy},
		TypicalVulnerabilityCount: 0,
		Industry:                  "finance",
		RiskProfile:               "high-value-target",
	},
	"government": {
		BaseScore:                 68,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS, analyzer.HeaderXFrameOptions, analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 1,
		Industry:                  "public-sector",
		RiskProfile:               "high-value-target",
	},
	"healthcare": {
		BaseScore:                 66,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS, analyzer.HeaderXFrameOptions, analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 1,
		Industry:                  "healthcare",
		RiskProfile:               "regulated-data",
	},
	"ecommerce-standard": {
		BaseScore:                 72,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS, analyzer.HeaderXFrameOptions, analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 2,
		Industry:                  "retail",
		RiskProfile:               "payment-handling",
	},
	"ecommerce-marketplace": {
		BaseScore:                 70,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS, analyzer.HeaderXFrameOptions, analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 3,
		Industry:                  "retail",
		RiskProfile:               "payment-handling",
	},
	"saas": {
		BaseScore:                 70,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS, analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 2,
		Industry:                  "software",
		RiskProfile:               "account-data",
	},
	"api-service": {
		BaseScore:                 74,
		ExpectedHeaders:           []string{analyzer.HeaderHSTS, analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 1,
		Industry:                  "software",
		RiskProfile:               "machine-consumer",
	},
	"social": {
		BaseScore:                 68,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS, analyzer.HeaderXFrameOptions},
		TypicalVulnerabilityCount: 3,
		Industry:                  "media",
		RiskProfile:               "user-generated-content",
	},
	"news": {
		BaseScore:                 72,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderXFrameOptions},
		TypicalVulnerabilityCount: 3,
		Industry:                  "media",
		RiskProfile:               "public-content",
	},
	"education": {
		BaseScore:                 72,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS},
		TypicalVulnerabilityCount: 2,
		Industry:                  "education",
		RiskProfile:               "mixed-audience",
	},
	"nonprofit": {
		BaseScore:                 75,
		ExpectedHeaders:           []string{analyzer.HeaderHSTS, analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 2,
		Industry:                  "nonprofit",
		RiskProfile:               "public-content",
	},
	"blog": {
		BaseScore:                 78,
		ExpectedHeaders:           []string{analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 2,
		Industry:                  "publishing",
		RiskProfile:               "low-interactivity",
	},
	"portfolio": {
		BaseScore:                 80,
		ExpectedHeaders:           []string{analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 1,
		Industry:                  "publishing",
		RiskProfile:               "low-interactivity",
	},
	DefaultSiteType: {
		BaseScore:                 70,
		ExpectedHeaders:           []string{analyzer.HeaderCSP, analyzer.HeaderHSTS, analyzer.HeaderXContentTypeOptions},
		TypicalVulnerabilityCount: 2,
		Industry:                  "general",
		RiskProfile:               "unclassified",
	},
}

// SiteTypes returns the recognized site-type keys in ascending order, for
// CLI validation and help output.
func SiteTypes() []string {
	types := make([]string, 0, len(DefaultBaselines))
	for k := range DefaultBaselines {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
