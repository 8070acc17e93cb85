package analyzer

// Signature is one fixed detection rule identifying a technology from page
// evidence. A technology matches when any of its HTML substrings, script src
// substrings, or the CSS selector hits. VersionPatterns are tried in order;
// the first pattern whose capture group yields a numeric version wins.
type Signature struct {
	Name              string
	Category          string
	HTMLContains      []string // substring match against lowercased HTML
	ScriptSrcContains []string // substring match against script src attributes
	LinkHrefContains  []string // substring match against link href attributes
	Selector          string   // goquery selector presence test
	VersionPatterns   []string // ordered regexes with the version in group 1
}

// DefaultSignatures is the built-in signature table. It is treated as
// immutable configuration: Detector copies nothing from it at runtime and
// tests may construct a Detector over their own table instead.
var DefaultSignatures = []Signature{
	// CMS
	{Name: "WordPress", Category: "cms",
		HTMLContains:    []string{"/wp-content/", "/wp-includes/", "wp-json", `content="wordpress`},
		VersionPatterns: []string{`(?i)content="wordpress (\d+\.\d+(?:\.\d+)?)`, `(?i)wp-includes[^"']*\?ver=(\d+\.\d+(?:\.\d+)?)`}},
	{Name: "Drupal", Category: "cms",
		HTMLContains:    []string{"drupal.settings", "data-drupal-", `content="drupal`, "/sites/default/files/"},
		VersionPatterns: []string{`(?i)content="drupal (\d+(?:\.\d+)+)`}},
	{Name: "Joomla", Category: "cms",
		HTMLContains:    []string{`content="joomla`, "/components/com_", "/media/jui/"},
		VersionPatterns: []string{`(?i)content="joomla!? (\d+\.\d+(?:\.\d+)?)`}},
	{Name: "Ghost", Category: "cms",
		HTMLContains:    []string{`content="ghost`, "ghost-sdk"},
		VersionPatterns: []string{`(?i)content="ghost (\d+\.\d+(?:\.\d+)?)`}},

	// E-commerce platforms
	{Name: "Shopify", Category: "ecommerce",
		HTMLContains:      []string{"cdn.shopify.com", "shopify.theme", "shopify-assets"},
		ScriptSrcContains: []string{"cdn.shopify.com"}},
	{Name: "Magento", Category: "ecommerce",
		HTMLContains:    []string{"mage/cookies", "magento_version", "var/view_preprocessed", "magento-init"},
		VersionPatterns: []string{`(?i)magento[/ ](\d+\.\d+(?:\.\d+)?)`}},
	{Name: "WooCommerce", Category: "ecommerce",
		HTMLContains:    []string{"woocommerce", "wc-ajax"},
		VersionPatterns: []string{`(?i)woocommerce[^"']*\?ver=(\d+\.\d+(?:\.\d+)?)`}},
	{Name: "PrestaShop", Category: "ecommerce",
		HTMLContains: []string{"prestashop", "/modules/ps_"}},
	{Name: "BigCommerce", Category: "ecommerce",
		HTMLContains: []string{"cdn11.bigcommerce.com", "bigcommerce.com/s-"}},

	// Site builders
	{Name: "Wix", Category: "builder",
		HTMLContains: []string{"static.wixstatic.com", "wix.com/website-builder"}},
	{Name: "Squarespace", Category: "builder",
		HTMLContains: []string{"static1.squarespace.com", "squarespace.com"}},
	{Name: "Webflow", Category: "builder",
		HTMLContains: []string{"assets.website-files.com", "data-wf-site"}},

	// JavaScript frameworks and libraries
	{Name: "jQuery", Category: "javascript",
		HTMLContains:      []string{"jquery"},
		ScriptSrcContains: []string{"jquery"},
		VersionPatterns: []string{
			`(?i)jquery[/-](\d+\.\d+(?:\.\d+)?)`,
			`(?i)jquery(?:\.min)?\.js\?ver=(\d+\.\d+(?:\.\d+)?)`,
			`(?i)jquery v(\d+\.\d+(?:\.\d+)?)`,
		}},
	{Name: "jQuery UI", Category: "javascript",
		ScriptSrcContains: []string{"jquery-ui"},
		VersionPatterns:   []string{`(?i)jquery-ui[/-](\d+\.\d+(?:\.\d+)?)`}},
	{Name: "React", Category: "javascript",
		HTMLContains:      []string{"data-reactroot", "data-reactid", "__react"},
		ScriptSrcContains: []string{"react.production.min.js", "react-dom", "react."},
		VersionPatterns:   []string{`(?i)react[@/-](\d+\.\d+(?:\.\d+)?)`}},
	{Name: "Vue.js", Category: "javascript",
		HTMLContains:      []string{"data-v-app", "v-cloak", "__vue__"},
		ScriptSrcContains: []string{"vue.min.js", "vue.global", "vue.runtime", "/vue@", "/vue/"},
		VersionPatterns:   []string{`(?i)vue[@/-](\d+\.\d+(?:\.\d+)?)`}},
	{Name: "AngularJS", Category: "javascript",
		HTMLContains:      []string{"ng-app", "ng-controller", "ng-repeat"},
		ScriptSrcContains: []string{"angular.min.js", "angular.js", "angularjs"},
		VersionPatterns:   []string{`(?i)angular(?:js)?[@/-](1\.\d+(?:\.\d+)?)`}},
	{Name: "Angular", Category: "javascript",
		HTMLContains:    []string{"ng-version="},
		VersionPatterns: []string{`(?i)ng-version="(\d+\.\d+(?:\.\d+)?)"`}},
	{Name: "Svelte", Category: "javascript",
		HTMLContains: []string{"svelte-", "__svelte"}},
	{Name: "Next.js", Category: "javascript",
		HTMLContains:      []string{"__next_data__", "/_next/static/"},
		ScriptSrcContains: []string{"/_next/"}},
	{Name: "Nuxt.js", Category: "javascript",
		HTMLContains: []string{"__nuxt", "/_nuxt/"}},
	{Name: "Gatsby", Category: "javascript",
		HTMLContains: []string{"___gatsby", "gatsby-"}},
	{Name: "Ember.js", Category: "javascript",
		HTMLContains: []string{"ember-application", "ember-view"}},
	{Name: "Backbone.js", Category: "javascript",
		ScriptSrcContains: []string{"backbone"},
		VersionPatterns:   []string{`(?i)backbone(?:\.min)?(?:-|\.js/)(\d+\.\d+(?:\.\d+)?)`}},
	{Name: "Lodash", Category: "javascript",
		ScriptSrcContains: []string{"lodash"},
		VersionPatterns:   []string{`(?i)lodash(?:\.js)?[@/](\d+\.\d+(?:\.\d+)?)`}},
	{Name: "Moment.js", Category: "javascript",
		ScriptSrcContains: []string{"moment.js", "moment.min.js", "/moment@"},
		VersionPatterns:   []string{`(?i)moment(?:\.js)?[@/](\d+\.\d+(?:\.\d+)?)`}},
	{Name: "D3.js", Category: "javascript",
		ScriptSrcContains: []string{"/d3.", "/d3@", "d3js.org"},
		VersionPatterns:   []string{`(?i)d3[@/.](?:v)?(\d+\.\d+(?:\.\d+)?)`}},
	{Name: "Chart.js", Category: "javascript",
		ScriptSrcContains: []string{"chart.js", "chart.min.js", "chart.umd"},
		VersionPatterns:   []string{`(?i)chart\.js[@/](\d+\.\d+(?:\.\d+)?)`}},
	{Name: "GSAP", Category: "javascript",
		ScriptSrcContains: []string{"gsap"}},
	{Name: "Three.js", Category: "javascript",
		ScriptSrcContains: []string{"three.js", "three.min.js", "/three@"}},
	{Name: "Alpine.js", Category: "javascript",
		HTMLContains:      []string{"x-data=", "x-init="},
		ScriptSrcContains: []string{"alpinejs", "alpine.js"}},
	{Name: "htmx", Category: "javascript",
		HTMLContains:      []string{"hx-get=", "hx-post=", "hx-swap="},
		ScriptSrcContains: []string{"htmx"}},

	// CSS frameworks
	{Name: "Bootstrap", Category: "css",
		HTMLContains:     []string{"bootstrap"},
		LinkHrefContains: []string{"bootstrap"},
		VersionPatterns: []string{
			`(?i)bootstrap[@/](\d+\.\d+(?:\.\d+)?)`,
			`(?i)bootstrap[.-](\d+\.\d+(?:\.\d+)?)(?:\.min)?\.(?:css|js)`,
		}},
	{Name: "Tailwind CSS", Category: "css",
		HTMLContains: []string{"tailwindcss", "tailwind.css", "tailwind.min.css"}},
	{Name: "Foundation", Category: "css",
		LinkHrefContains: []string{"foundation.css", "foundation.min.css"}},
	{Name: "Bulma", Category: "css",
		LinkHrefContains: []string{"bulma.css", "bulma.min.css"}},
	{Name: "Font Awesome", Category: "css",
		HTMLContains:     []string{"font-awesome", "fontawesome"},
		LinkHrefContains: []string{"font-awesome", "fontawesome"},
		VersionPatterns:  []string{`(?i)font-awesome[/@](\d+\.\d+(?:\.\d+)?)`}},
	{Name: "Google Fonts", Category: "css",
		LinkHrefContains: []string{"fonts.googleapis.com"}},

	// Analytics and marketing
	{Name: "Google Analytics", Category: "analytics",
		HTMLContains:      []string{"google-analytics.com/analytics.js", "gtag('config'", `gtag("config"`, "ga('create'"},
		ScriptSrcContains: []string{"google-analytics.com", "googletagmanager.com/gtag"}},
	{Name: "Google Tag Manager", Category: "analytics",
		HTMLContains: []string{"googletagmanager.com/gtm.js", "gtm.start"}},
	{Name: "Facebook Pixel", Category: "analytics",
		HTMLContains: []string{"connect.facebook.net", "fbq('init'", `fbq("init"`}},
	{Name: "Hotjar", Category: "analytics",
		HTMLContains: []string{"static.hotjar.com", "hjsv"}},
	{Name: "Matomo", Category: "analytics",
		HTMLContains: []string{"matomo.js", "piwik.js", "_paq"}},

	// Infrastructure and backend hints
	{Name: "Cloudflare", Category: "cdn",
		HTMLContains:      []string{"cdn-cgi/", "cloudflareinsights"},
		ScriptSrcContains: []string{"cdnjs.cloudflare.com", "cloudflareinsights.com"}},
	{Name: "PHP", Category: "backend",
		HTMLContains:    []string{".php?", ".php\"", "phpsessid"},
		VersionPatterns: []string{`(?i)php/(\d+\.\d+(?:\.\d+)?)`}},
	{Name: "ASP.NET", Category: "backend",
		HTMLContains: []string{"__viewstate", "asp.net", ".aspx"}},
	{Name: "Laravel", Category: "backend",
		HTMLContains: []string{"laravel_session", "csrf-token"}},
	{Name: "Django", Category: "backend",
		HTMLContains: []string{"csrfmiddlewaretoken", "django"}},
	{Name: "Ruby on Rails", Category: "backend",
		HTMLContains: []string{"csrf-param", "data-turbolinks", "rails-ujs"}},
	{Name: "Express", Category: "backend",
		HTMLContains: []string{"x-powered-by: express"}},

	// Payments and third-party services
	{Name: "Stripe", Category: "payments",
		HTMLContains:      []string{"js.stripe.com"},
		ScriptSrcContains: []string{"js.stripe.com"}},
	{Name: "PayPal", Category: "payments",
		HTMLContains:      []string{"paypal.com/sdk", "paypalobjects.com"},
		ScriptSrcContains: []string{"paypal.com/sdk"}},
	{Name: "reCAPTCHA", Category: "service",
		HTMLContains:      []string{"google.com/recaptcha", "grecaptcha"},
		ScriptSrcContains: []string{"google.com/recaptcha"}},
	{Name: "Sentry", Category: "service",
		HTMLContains:      []string{"browser.sentry-cdn.com", "sentry.init"},
		ScriptSrcContains: []string{"browser.sentry-cdn.com"}},
	{Name: "New Relic", Category: "service",
		HTMLContains: []string{"js-agent.newrelic.com", "nreum"}},
	{Name: "Intercom", Category: "service",
		HTMLContains: []string{"widget.intercom.io", "intercomsettings"}},
	{Name: "Zendesk", Category: "service",
		HTMLContains: []string{"static.zdassets.com", "zendesk"}},
}

// currentVersions maps technology names to the latest stable release known to
// this build. The table feeds the "outdated" labeling in results and reports;
// it is never a scoring input. Missing entries are tolerated.
var currentVersions = map[string]string{
	"WordPress":    "6.8.2",
	"Drupal":       "11.1.5",
	"Joomla":       "5.3.1",
	"Magento":      "2.4.8",
	"WooCommerce":  "9.9.5",
	"jQuery":       "3.7.1",
	"jQuery UI":    "1.14.1",
	"React":        "19.1.0",
	"Vue.js":       "3.5.17",
	"AngularJS":    "1.8.3",
	"Angular":      "20.1.0",
	"Next.js":      "15.4.2",
	"Nuxt.js":      "3.17.6",
	"Backbone.js":  "1.6.1",
	"Lodash":       "4.17.21",
	"Moment.js":    "2.30.1",
	"D3.js":        "7.9.0",
	"Chart.js":     "4.5.0",
	"Bootstrap":    "5.3.7",
	"Foundation":   "6.9.0",
	"Bulma":        "1.0.4",
	"Font Awesome": "6.7.2",
	"PHP":          "8.4.10",
	"Laravel":      "12.20.0",
	"Django":       "5.2.4",
}
