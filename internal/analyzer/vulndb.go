package analyzer

// TechRule flags known-vulnerable version ranges of a detected technology.
// Matching is plain string-prefix comparison against the extracted version.
// That reproduces the historical behavior of this rule set and is a known
// limitation: a prefix like "3.1" also matches "3.10.0". The prefixes below
// are written to the patch level where that ambiguity matters.
type TechRule struct {
	Tech               string
	VulnerablePrefixes []string
	Description        string
	Severity           Severity
	CVE                string
	Recommendation     string
}

// PatternRule flags a risky code construct in the raw HTML. One finding is
// emitted per rule regardless of how many lines match.
type PatternRule struct {
	Name           string
	Pattern        string
	Description    string
	Severity       Severity
	Recommendation string
}

// DefaultTechRules is the built-in by-technology vulnerability knowledge
// base. A fixed, hand-maintained table, not a live feed.
var DefaultTechRules = []TechRule{
	{
		Tech:               "jQuery",
		VulnerablePrefixes: []string{"1.", "2.", "3.0", "3.1", "3.2", "3.3", "3.4"},
		Description:        "jQuery before 3.5.0 allows XSS via htmlPrefilter when passing HTML from untrusted sources",
		Severity:           SeverityHigh,
		CVE:                "CVE-2020-11022",
		Recommendation:     "Upgrade jQuery to 3.5.0 or later",
	},
	{
		Tech:               "AngularJS",
		VulnerablePrefixes: []string{"1.0", "1.1", "1.2", "1.3", "1.4", "1.5", "1.6", "1.7.0", "1.7.1", "1.7.2", "1.7.3", "1.7.4", "1.7.5", "1.7.6", "1.7.7", "1.7.8"},
		Description:        "AngularJS before 1.7.9 is vulnerable to prototype pollution via merge functions",
		Severity:           SeverityCritical,
		CVE:                "CVE-2019-10768",
		Recommendation:     "Upgrade to AngularJS 1.7.9+ or migrate off AngularJS (end of life)",
	},
	{
		Tech:               "Bootstrap",
		VulnerablePrefixes: []string{"2.", "3.0", "3.1", "3.2", "3.3"},
		Description:        "Bootstrap before 3.4.0 allows XSS in the tooltip and popover data-template attribute",
		Severity:           SeverityMedium,
		CVE:                "CVE-2019-8331",
		Recommendation:     "Upgrade Bootstrap to 3.4.1/4.3.1 or later",
	},
	{
		Tech:               "Lodash",
		VulnerablePrefixes: []string{"1.", "2.", "3.", "4.0", "4.1", "4.2", "4.3", "4.4", "4.5", "4.6", "4.7", "4.8", "4.9", "4.16", "4.17.0", "4.17.1"},
		Description:        "Lodash before 4.17.12 is vulnerable to prototype pollution in defaultsDeep",
		Severity:           SeverityCritical,
		CVE:                "CVE-2019-10744",
		Recommendation:     "Upgrade Lodash to 4.17.21 or later",
	},
	{
		Tech:               "Moment.js",
		VulnerablePrefixes: []string{"2.18", "2.19", "2.20", "2.21", "2.22", "2.23", "2.24", "2.25", "2.26", "2.27", "2.28", "2.29.0", "2.29.1"},
		Description:        "Moment.js before 2.29.2 contains a ReDoS in the preprocessing of long input strings",
		Severity:           SeverityHigh,
		CVE:                "CVE-2022-24785",
		Recommendation:     "Upgrade Moment.js to 2.29.4+ or migrate to a maintained date library",
	},
	{
		Tech:               "Vue.js",
		VulnerablePrefixes: []string{"2.0", "2.1", "2.2", "2.3", "2.4", "2.5"},
		Description:        "Vue 2.5 and earlier templates are susceptible to XSS via v-html with unsanitized input",
		Severity:           SeverityMedium,
		Recommendation:     "Upgrade Vue and avoid v-html with untrusted content",
	},
	{
		Tech:               "WordPress",
		VulnerablePrefixes: []string{"3.", "4.", "5.0", "5.1", "5.2", "5.3", "5.4", "5.5", "5.6", "5.7"},
		Description:        "WordPress core releases before 5.8 carry multiple published object-injection and XSS advisories",
		Severity:           SeverityHigh,
		Recommendation:     "Update WordPress core to the current release and audit installed plugins",
	},
	{
		Tech:               "Drupal",
		VulnerablePrefixes: []string{"7.", "8.0", "8.1", "8.2", "8.3", "8.4", "8.5.0", "8.5.1", "8.5.2"},
		Description:        "Drupal versions in this range are affected by the Drupalgeddon2 remote code execution flaw",
		Severity:           SeverityCritical,
		CVE:                "CVE-2018-7600",
		Recommendation:     "Update Drupal core immediately; assume compromise if unpatched since 2018",
	},
	{
		Tech:               "PHP",
		VulnerablePrefixes: []string{"5.", "7.0", "7.1", "7.2", "7.3"},
		Description:        "This PHP branch is past end of life and no longer receives security fixes",
		Severity:           SeverityHigh,
		Recommendation:     "Upgrade to a supported PHP release",
	},
	{
		Tech:               "Magento",
		VulnerablePrefixes: []string{"1.", "2.0", "2.1", "2.2"},
		Description:        "Magento releases in this range are affected by published SQL injection and RCE advisories",
		Severity:           SeverityCritical,
		Recommendation:     "Upgrade Magento and apply all security-only patches",
	},
}

// DefaultPatternRules is the built-in code-pattern rule set scanned against
// the raw HTML. Patterns are matched line by line; string-literal assignments
// are deliberately excluded where the rule targets dynamic input.
var DefaultPatternRules = []PatternRule{
	{
		Name:           "eval() usage",
		Pattern:        `\beval\s*\(`,
		Description:    "eval() executes arbitrary strings as code and is a common XSS amplifier",
		Severity:       SeverityHigh,
		Recommendation: "Replace eval() with JSON.parse or explicit logic",
	},
	{
		Name:           "document.write usage",
		Pattern:        `document\.write(?:ln)?\s*\(`,
		Description:    "document.write enables injection when fed unsanitized input and blocks the parser",
		Severity:       SeverityMedium,
		Recommendation: "Build DOM nodes explicitly or use insertAdjacentHTML with sanitized input",
	},
	{
		Name:           "unsafe innerHTML assignment",
		Pattern:        "\\.innerHTML\\s*=\\s*[^\"'`\\s;]",
		Description:    "Assigning a non-literal value to innerHTML can execute attacker-controlled markup",
		Severity:       SeverityHigh,
		Recommendation: "Use textContent, or sanitize the value before assignment",
	},
	{
		Name:           "jQuery XSS via .html()",
		Pattern:        `\$\([^)]*\)\s*\.html\(\s*[^)"'` + "`" + `\s]`,
		Description:    "Passing a variable to jQuery .html() renders unsanitized markup",
		Severity:       SeverityHigh,
		Recommendation: "Use .text() for untrusted data or sanitize before calling .html()",
	},
	{
		Name:           "string argument to setTimeout/setInterval",
		Pattern:        `set(?:Timeout|Interval)\s*\(\s*["']`,
		Description:    "String arguments to timers are evaluated like eval()",
		Severity:       SeverityMedium,
		Recommendation: "Pass a function reference instead of a code string",
	},
	{
		Name:           "hardcoded debug flag",
		Pattern:        `\bdebug\s*=\s*true\b`,
		Description:    "A hardcoded debug=true often ships verbose errors and internal state to production",
		Severity:       SeverityLow,
		Recommendation: "Strip debug flags from production builds",
	},
	{
		Name:           "residual console output",
		Pattern:        `console\.(?:log|debug|info|warn|error)\s*\(`,
		Description:    "Residual console calls can leak internal identifiers and tokens to any visitor",
		Severity:       SeverityLow,
		Recommendation: "Remove console output from production bundles",
	},
}
