package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nmvu/pagerisk/internal/analyzer"
	"github.com/nmvu/pagerisk/internal/scanner"
	"github.com/nmvu/pagerisk/internal/scoring"
	"github.com/nmvu/pagerisk/internal/security"
	"github.com/nmvu/pagerisk/internal/shared/constants"
	sharederrors "github.com/nmvu/pagerisk/internal/shared/errors"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan a page and derive its risk and capability profile",
	Long: `Fetch a single page (after an ethical policy check) and derive its profile:
detected technologies, known-vulnerability findings, security header and SSL
posture, ecommerce/capability signals, and a contextual security score.

The policy gate checks robots.txt and common terms-of-service pages before any
page fetch. With --ethical (the default) a prohibition is a hard stop; with
--ethical=false the verdict is recorded and the scan proceeds with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]

		siteType, _ := cmd.Flags().GetString("site-type")
		strictType, _ := cmd.Flags().GetBool("strict-site-type")
		ethical, _ := cmd.Flags().GetBool("ethical")
		subdomains, _ := cmd.Flags().GetBool("subdomains")
		subdomainLimit, _ := cmd.Flags().GetInt("subdomain-limit")
		timeoutSecs, _ := cmd.Flags().GetInt("timeout")
		jsonOut, _ := cmd.Flags().GetBool("json")
		noSave, _ := cmd.Flags().GetBool("no-save")

		timeout := time.Duration(timeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = constants.DefaultFetchTimeout
		}

		opts := scanner.Options{
			SiteType:       siteType,
			StrictSiteType: strictType,
			EthicalMode:    ethical,
			ScanSubdomains: subdomains,
			SubdomainLimit: subdomainLimit,
			Timeout:        timeout,
		}

		var progress *subdomainProgress
		if subdomains && !jsonOut {
			// The batch-start hook carries the discovered host count, so the
			// indicator is not created until the total is known.
			opts.OnSubdomainBatchStart = func(total int) {
				progress = newSubdomainProgress(total)
				progress.Start()
			}
			opts.OnSubdomainResult = func(res scanner.SubdomainResult, duration time.Duration) {
				if progress != nil {
					progress.Observe(res.Status == "success", duration)
				}
			}
		}

		s := scanner.New(logger, timeout)
		result, err := s.Scan(cmd.Context(), target, opts)
		if progress != nil {
			progress.Stop()
		}
		if err != nil {
			var rejection *scanner.PolicyRejection
			if errors.As(err, &rejection) {
				fmt.Println(colorError("Scan rejected by policy gate."))
				fmt.Printf("%s %s\n", colorInfo("Reason:"), rejection.Policy.Reason)
				fmt.Println("Re-run with --ethical=false to record the verdict and scan anyway.")
				return err
			}
			if errors.Is(err, sharederrors.ErrUnknownSiteType) {
				fmt.Println(colorError(err.Error()))
				return err
			}
			return err
		}

		if jsonOut {
			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("%w: %v", sharederrors.ErrSerializationFailed, err)
			}
			fmt.Println(string(encoded))
		} else {
			printScanSummary(result)
		}

		if noSave {
			return nil
		}
		path, err := saveScanResult(result)
		if err != nil {
			return err
		}
		if !jsonOut {
			fmt.Printf("\n%s %s\n", colorInfo("Saved:"), path)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().String("site-type", "",
		fmt.Sprintf("site category for contextual scoring (one of: %s)", strings.Join(scoring.SiteTypes(), ", ")))
	scanCmd.Flags().Bool("strict-site-type", false, "treat an unrecognized --site-type as an error instead of falling back")
	scanCmd.Flags().Bool("ethical", true, "enforce robots.txt/terms prohibitions as hard stops")
	scanCmd.Flags().Bool("subdomains", false, "also scan same-domain subdomains linked from the page")
	scanCmd.Flags().Int("subdomain-limit", constants.MaxSubdomainScans, "maximum subdomains to scan")
	scanCmd.Flags().Int("timeout", int(constants.DefaultFetchTimeout/time.Second), "page fetch timeout in seconds")
	scanCmd.Flags().Bool("json", false, "print the full result as JSON instead of a summary")
	scanCmd.Flags().Bool("no-save", false, "do not write the result file to the results directory")
}

// saveScanResult writes the result JSON under the results directory as
// scan_<host>_<timestamp>.json and returns the written path.
func saveScanResult(result *scanner.ScanResult) (string, error) {
	info := scanner.ParseTarget(result.URL)
	host := strings.ReplaceAll(info.Host, ":", "_")
	if host == "" {
		host = "unknown"
	}
	filename := fmt.Sprintf("scan_%s_%s.json", host, result.ScannedAt.Format("20060102T150405Z"))

	path, err := security.ResolveResultPath(resultsDir, filename)
	if err != nil {
		return "", err
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %v", sharederrors.ErrSerializationFailed, err)
	}
	if err := os.WriteFile(path, encoded, constants.DefaultFilePerm); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}
	return path, nil
}

func printScanSummary(result *scanner.ScanResult) {
	fmt.Printf("%s %s\n", colorInfo("Target:"), result.URL)
	if result.FinalURL != "" && result.FinalURL != result.URL {
		fmt.Printf("%s %s\n", colorInfo("Final URL:"), result.FinalURL)
	}
	fmt.Printf("%s %s\n", colorInfo("Site type:"), result.SiteType)

	if result.Policy != nil {
		verdict := colorSuccess("allowed")
		if result.Policy.ScrapingProhibited {
			verdict = colorWarn("prohibited (advisory)")
		}
		fmt.Printf("%s %s\n", colorInfo("Policy:"), verdict)
	}

	if result.Score != nil {
		fmt.Printf("\n%s %s  %s %s  %s %s\n",
			colorInfo("Score:"), formatScore(result.Score.Overall),
			colorInfo("Grade:"), formatGrade(result.Score.Grade),
			colorInfo("Risk:"), formatRiskLevel(result.Score.RiskLevel))
	}

	printTechnologies(result.Technologies)
	printVulnerabilities(result.Vulnerabilities)
	printHeaders(result.Headers)
	printCapabilities(result.Capabilities)
	printSubdomains(result.Subdomains)
}

func printTechnologies(techs []analyzer.DetectedTechnology) {
	if len(techs) == 0 {
		fmt.Printf("\n%s none detected\n", colorInfo("Technologies:"))
		return
	}

	fmt.Printf("\n%s\n", colorInfo("Technologies:"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tCATEGORY\tVERSION\tSTATUS")
	for _, tech := range techs {
		version := tech.Version
		if version == "" {
			version = "-"
		}
		status := ""
		if tech.Outdated() {
			status = colorWarn(fmt.Sprintf("outdated (current %s)", tech.CurrentVersion))
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", tech.Name, tech.Category, version, status)
	}
	w.Flush()
}

func printVulnerabilities(findings []analyzer.Finding) {
	if len(findings) == 0 {
		fmt.Printf("\n%s none found\n", colorInfo("Vulnerabilities:"))
		return
	}

	counts := analyzer.CountBySeverity(findings)
	fmt.Printf("\n%s %d (critical:%d high:%d medium:%d low:%d)\n",
		colorInfo("Vulnerabilities:"), len(findings),
		counts[analyzer.SeverityCritical], counts[analyzer.SeverityHigh],
		counts[analyzer.SeverityMedium], counts[analyzer.SeverityLow])

	for _, f := range findings {
		label := f.Name
		if f.Version != "" {
			label += " " + f.Version
		}
		fmt.Printf("  %s %s: %s", formatSeverity(f.Severity), label, f.Vulnerability)
		if f.CVE != "" {
			fmt.Printf(" (%s)", f.CVE)
		}
		if len(f.LineNumbers) > 0 {
			fmt.Printf(" [lines %s", joinInts(f.LineNumbers))
			if f.AdditionalLines > 0 {
				fmt.Printf(" +%d more", f.AdditionalLines)
			}
			fmt.Printf("]")
		}
		fmt.Println()
	}
}

func printHeaders(report *analyzer.HeaderReport) {
	if report == nil {
		return
	}

	fmt.Printf("\n%s\n", colorInfo("Security headers:"))
	for _, name := range analyzer.TrackedHeaders {
		status := report.Status(name)
		switch {
		case status.Present && status.Valid:
			fmt.Printf("  %s %s\n", colorSuccess("✓"), name)
		case status.Present:
			fmt.Printf("  %s %s (present but weak)\n", colorWarn("!"), name)
		default:
			fmt.Printf("  %s %s (missing)\n", colorError("✗"), name)
		}
	}
	if report.InfoDisclosure.ServerExposed {
		fmt.Printf("  %s Server header exposes software: %s\n", colorWarn("!"), report.InfoDisclosure.ServerValue)
	}
	if report.InfoDisclosure.PoweredByExposed {
		fmt.Printf("  %s X-Powered-By exposes software: %s\n", colorWarn("!"), report.InfoDisclosure.PoweredByValue)
	}
}

func printCapabilities(caps *analyzer.Capabilities) {
	if caps == nil {
		return
	}

	fmt.Printf("\n%s\n", colorInfo("Capabilities:"))
	if caps.IsEcommerce {
		parts := []string{"ecommerce"}
		if caps.HasCart {
			parts = append(parts, "cart")
		}
		if caps.HasCheckout {
			parts = append(parts, "checkout")
		}
		if caps.HasProductListings {
			parts = append(parts, "product listings")
		}
		fmt.Printf("  %s\n", strings.Join(parts, ", "))
		if len(caps.PaymentMethods) > 0 {
			fmt.Printf("  payments: %s\n", strings.Join(caps.PaymentMethods, ", "))
		}
		if len(caps.Currencies) > 0 {
			fmt.Printf("  currencies: %s\n", strings.Join(caps.Currencies, ", "))
		}
	}
	var features []string
	if caps.HasLoginForm {
		features = append(features, "login form")
	}
	if caps.HasSearch {
		features = append(features, "search")
	}
	if caps.AllowsFileUploads {
		features = append(features, "file uploads")
	}
	if caps.HasNewsletterSignup {
		features = append(features, "newsletter signup")
	}
	if caps.HasStructuredData {
		features = append(features, "structured data ("+strings.Join(caps.StructuredDataTypes, ", ")+")")
	}
	if len(features) > 0 {
		fmt.Printf("  %s\n", strings.Join(features, ", "))
	}
	if len(caps.ThirdPartyHosts) > 0 {
		fmt.Printf("  third-party hosts: %s\n", strings.Join(caps.ThirdPartyHosts, ", "))
	}
	if !caps.IsEcommerce && len(features) == 0 && len(caps.ThirdPartyHosts) == 0 {
		fmt.Println("  none detected")
	}
}

func printSubdomains(subs []scanner.SubdomainResult) {
	if len(subs) == 0 {
		return
	}

	fmt.Printf("\n%s\n", colorInfo("Subdomains:"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  HOST\tSTATUS\tTECHS\tVULNS")
	for _, sub := range subs {
		status := formatStatusWithColor(sub.Status)
		if sub.Status == "error" && sub.Error != "" {
			status = colorError(sub.Error)
		}
		fmt.Fprintf(w, "  %s\t%s\t%d\t%d\n", sub.Host, status, len(sub.Technologies), sub.VulnerabilityCount)
	}
	w.Flush()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}
