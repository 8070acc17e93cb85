package analyzer

import (
	"strings"
)

// SiteContext captures the contextual signals the scorer uses to weigh
// header penalties and bonuses. Derived once per scan and read-only after.
type SiteContext struct {
	Type                      string   `json:"type"`
	HasUserGeneratedContent   bool     `json:"has_user_generated_content"`
	HandlesFinancialData      bool     `json:"handles_financial_data"`
	HasLoginSystem            bool     `json:"has_login_system"`
	AllowsFileUploads         bool     `json:"allows_file_uploads"`
	UsesExternalAPIs          bool     `json:"uses_external_apis"`
	HasThirdPartyIntegrations bool     `json:"has_third_party_integrations"`
	IsPublicFacing            bool     `json:"is_public_facing"`
	UsesHTTPS                 bool     `json:"uses_https"`
	TechnologyStack           []string `json:"technology_stack,omitempty"`
	TargetAudience            string   `json:"target_audience,omitempty"`
}

var ugcMarkers = []string{
	"leave a comment", "add a comment", "post a comment", "leave a reply",
	"write a review", "comments-section", "comment-form", "discussion",
	"forum", "guestbook",
}

var financialSiteTypes = map[string]bool{
	"financial":             true,
	"ecommerce-standard":    true,
	"ecommerce-marketplace": true,
}

// DeriveSiteContext folds detected technologies, capabilities, and content
// signals into the context record the scorer consumes. siteType is the
// caller-declared category (possibly empty, left as-is for the scorer's
// lookup rules to resolve).
func DeriveSiteContext(siteType string, page *Page, technologies []DetectedTechnology, caps *Capabilities) *SiteContext {
	ctx := &SiteContext{
		Type:           siteType,
		IsPublicFacing: true,
		TargetAudience: audienceForType(siteType),
	}

	if page != nil {
		ctx.UsesHTTPS = strings.HasPrefix(strings.ToLower(page.URL), "https://")
		for _, marker := range ugcMarkers {
			if strings.Contains(page.LowerHTML, marker) {
				ctx.HasUserGeneratedContent = true
				break
			}
		}
	}

	for _, tech := range technologies {
		ctx.TechnologyStack = append(ctx.TechnologyStack, tech.Name)
	}

	if caps != nil {
		ctx.HasLoginSystem = caps.HasLoginForm
		ctx.AllowsFileUploads = caps.AllowsFileUploads
		ctx.UsesExternalAPIs = len(caps.ExternalAPIHosts) > 0
		ctx.HasThirdPartyIntegrations = len(caps.ThirdPartyHosts) > 0
		ctx.HandlesFinancialData = caps.IsEcommerce || len(caps.PaymentMethods) > 0
	}
	if financialSiteTypes[siteType] {
		ctx.HandlesFinancialData = true
	}

	return ctx
}

func audienceForType(siteType string) string {
	switch siteType {
	case "financial", "ecommerce-standard", "ecommerce-marketplace":
		return "consumers"
	case "government", "healthcare", "education", "nonprofit":
		return "public"
	case "saas", "api-service":
		return "business"
	case "blog", "portfolio", "news", "social":
		return "readers"
	default:
		return "general"
	}
}
