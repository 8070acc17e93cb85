package analyzer

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Capabilities collects commerce and capability signals from the page DOM.
// These feed informational fields of the scan result only; the scorer never
// reads them directly (SiteContext derivation does).
type Capabilities struct {
	IsEcommerce         bool     `json:"is_ecommerce"`
	HasProductListings  bool     `json:"has_product_listings"`
	HasCart             bool     `json:"has_cart"`
	HasCheckout         bool     `json:"has_checkout"`
	PaymentMethods      []string `json:"payment_methods,omitempty"`
	Currencies          []string `json:"currencies,omitempty"`
	HasStructuredData   bool     `json:"has_structured_data"`
	StructuredDataTypes []string `json:"structured_data_types,omitempty"`
	HasLoginForm        bool     `json:"has_login_form"`
	HasSearch           bool     `json:"has_search"`
	AllowsFileUploads   bool     `json:"allows_file_uploads"`
	HasNewsletterSignup bool     `json:"has_newsletter_signup"`
	ThirdPartyHosts     []string `json:"third_party_hosts,omitempty"`
	ExternalAPIHosts    []string `json:"external_api_hosts,omitempty"`
}

var paymentMethodNames = []string{
	"visa", "mastercard", "american express", "amex", "discover",
	"paypal", "stripe", "apple pay", "google pay", "klarna", "afterpay",
	"venmo", "shop pay", "ideal", "sofort",
}

var currencySymbols = map[string]string{
	"$": "USD", "€": "EUR", "£": "GBP", "¥": "JPY", "₹": "INR",
}

var productSelectors = ".product, .product-card, .product-item, .product-grid, [data-product-id], [itemtype*='schema.org/Product']"

// ExtractCapabilities runs the DOM heuristics that identify commerce
// features, structured data, and page capabilities.
func ExtractCapabilities(page *Page) *Capabilities {
	caps := &Capabilities{}
	if page == nil {
		return caps
	}
	doc := page.Doc()
	lower := page.LowerHTML

	caps.HasProductListings = doc.Find(productSelectors).Length() > 0 ||
		strings.Contains(lower, "add to cart") || strings.Contains(lower, "add to basket")
	caps.HasCart = doc.Find("a[href*='cart'], a[href*='basket'], [class*='cart']").Length() > 0
	caps.HasCheckout = doc.Find("a[href*='checkout'], form[action*='checkout']").Length() > 0 ||
		strings.Contains(lower, "proceed to checkout")

	for _, method := range paymentMethodNames {
		if strings.Contains(lower, method) {
			caps.PaymentMethods = append(caps.PaymentMethods, method)
		}
	}

	for symbol, code := range currencySymbols {
		if strings.Contains(page.HTML, symbol) {
			caps.Currencies = append(caps.Currencies, code)
		}
	}
	sort.Strings(caps.Currencies)

	caps.StructuredDataTypes = structuredDataTypes(doc)
	caps.HasStructuredData = len(caps.StructuredDataTypes) > 0

	caps.HasLoginForm = doc.Find("input[type='password']").Length() > 0 ||
		doc.Find("form[action*='login'], form[action*='signin'], form[id*='login']").Length() > 0
	caps.HasSearch = doc.Find("input[type='search'], form[role='search'], form[action*='search']").Length() > 0
	caps.AllowsFileUploads = doc.Find("input[type='file']").Length() > 0
	caps.HasNewsletterSignup = strings.Contains(lower, "newsletter") &&
		doc.Find("input[type='email']").Length() > 0

	caps.ThirdPartyHosts, caps.ExternalAPIHosts = externalHosts(page)

	hasCommerceStructuredData := false
	for _, t := range caps.StructuredDataTypes {
		if t == "Product" || t == "Offer" {
			hasCommerceStructuredData = true
		}
	}
	caps.IsEcommerce = (caps.HasProductListings && caps.HasCart) ||
		caps.HasCheckout || hasCommerceStructuredData ||
		(caps.HasCart && len(caps.PaymentMethods) > 0)

	return caps
}

// structuredDataTypes pulls schema.org types from JSON-LD blocks and
// microdata itemtype attributes. The JSON-LD blocks are scanned textually
// for @type values rather than fully decoded; malformed blocks never fail
// the extraction.
func structuredDataTypes(doc *goquery.Document) []string {
	seen := map[string]struct{}{}

	known := []string{"Product", "Offer", "Organization", "WebSite", "Article", "BreadcrumbList", "FAQPage", "LocalBusiness", "Review"}
	doc.Find("script[type='application/ld+json']").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		for _, t := range known {
			if strings.Contains(text, `"`+t+`"`) {
				seen[t] = struct{}{}
			}
		}
	})

	doc.Find("[itemtype]").Each(func(_ int, sel *goquery.Selection) {
		itemtype, _ := sel.Attr("itemtype")
		if idx := strings.LastIndex(itemtype, "/"); idx >= 0 && idx+1 < len(itemtype) {
			seen[itemtype[idx+1:]] = struct{}{}
		}
	})

	if len(seen) == 0 {
		return nil
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// externalHosts splits third-party script hosts from the scanned page's own
// host; hosts whose name suggests an API surface are reported separately.
func externalHosts(page *Page) (thirdParty, apiHosts []string) {
	pageHost := ""
	if parsed, err := url.Parse(page.URL); err == nil {
		pageHost = strings.ToLower(parsed.Hostname())
	}

	seen := map[string]struct{}{}
	for _, src := range page.ScriptSrcs() {
		parsed, err := url.Parse(src)
		if err != nil || parsed.Hostname() == "" {
			continue
		}
		host := strings.ToLower(parsed.Hostname())
		if host == pageHost {
			continue
		}
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		thirdParty = append(thirdParty, host)
		if strings.Contains(host, "api.") || strings.HasPrefix(host, "api") {
			apiHosts = append(apiHosts, host)
		}
	}
	sort.Strings(thirdParty)
	sort.Strings(apiHosts)
	return thirdParty, apiHosts
}
