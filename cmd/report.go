package cmd

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"

	"github.com/nmvu/pagerisk/internal/analyzer"
	"github.com/nmvu/pagerisk/internal/scanner"
	"github.com/nmvu/pagerisk/internal/security"
	"github.com/nmvu/pagerisk/internal/shared/constants"
)

const (
	htmlTemplatePath     = "templates/report.html"
	markdownTemplatePath = "templates/report.md"
)

//go:embed templates/report.html templates/report.md
var reportTemplateFS embed.FS

var (
	reportTemplateFuncs = template.FuncMap{
		"join":  strings.Join,
		"lower": strings.ToLower,
	}

	htmlReportTemplate = template.Must(
		template.New("report.html").Funcs(reportTemplateFuncs).ParseFS(reportTemplateFS, htmlTemplatePath),
	)
	markdownReportTemplate = template.Must(
		template.New("report.md").Funcs(reportTemplateFuncs).ParseFS(reportTemplateFS, markdownTemplatePath),
	)
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from a saved scan result",
}

var reportGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render a saved scan result as markdown, HTML, or PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		format, _ := cmd.Flags().GetString("format")

		format = strings.ToLower(format)
		if format != "json" && format != "md" && format != "html" && format != "pdf" {
			return fmt.Errorf("invalid format: %s (must be json, md, html, or pdf)", format)
		}

		result, source, err := loadScanResult(input)
		if err != nil {
			return err
		}

		data := buildReportData(result, source)

		var content []byte
		switch format {
		case "json":
			content, err = json.MarshalIndent(result, "", "  ")
		case "md":
			content, err = executeReportTemplate(markdownReportTemplate, data)
		case "html":
			content, err = executeReportTemplate(htmlReportTemplate, data)
		case "pdf":
			content, err = generatePDFReportBytes(data)
		}
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		filename := strings.TrimSuffix(source, ".json") + "_report." + format
		reportPath, err := security.ResolveResultPath(resultsDir, filename)
		if err != nil {
			return fmt.Errorf("resolve report path: %w", err)
		}
		if err := os.WriteFile(reportPath, content, constants.DefaultFilePerm); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		fmt.Printf("Report generated: %s\n", reportPath)
		fmt.Printf("Format: %s\n", format)
		fmt.Printf("Source: %s\n", source)
		return nil
	},
}

func init() {
	reportGenerateCmd.Flags().String("input", "", "scan result filename in the results directory (default: most recent scan)")
	reportGenerateCmd.Flags().String("format", "md", "report format: json, md, html, or pdf")
	reportCmd.AddCommand(reportGenerateCmd)
}

// loadScanResult reads a saved scan result from the results directory. With
// no explicit input the most recent scan_*.json is used.
func loadScanResult(input string) (*scanner.ScanResult, string, error) {
	if input == "" {
		latest, err := latestScanFilename()
		if err != nil {
			return nil, "", err
		}
		input = latest
	}

	path, err := security.ResolveResultPath(resultsDir, input)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	var result scanner.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", input, err)
	}
	return &result, input, nil
}

// latestScanFilename picks the newest scan_*.json in the results directory.
// The timestamped naming scheme makes lexical order chronological.
func latestScanFilename() (string, error) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return "", fmt.Errorf("read results directory: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "scan_") && strings.HasSuffix(name, ".json") &&
			!strings.Contains(name, "_report") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no scan results found in %s (run 'pagerisk scan' first)", resultsDir)
	}

	sort.Strings(candidates)
	return candidates[len(candidates)-1], nil
}

// reportHeaderRow is one security header line in a rendered report.
type reportHeaderRow struct {
	Name    string
	Present bool
	Valid   bool
	Label   string
}

// reportData holds the data for HTML/PDF/Markdown template rendering.
type reportData struct {
	Result      *scanner.ScanResult
	Source      string
	GeneratedAt string
	ScannedAt   string

	HeaderRows    []reportHeaderRow
	Outdated      []analyzer.DetectedTechnology
	CriticalCount int
	HighCount     int
	MediumCount   int
	LowCount      int
}

func buildReportData(result *scanner.ScanResult, source string) reportData {
	data := reportData{
		Result:      result,
		Source:      source,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		ScannedAt:   result.ScannedAt.Format("2006-01-02 15:04 UTC"),
	}

	for _, name := range analyzer.TrackedHeaders {
		status := result.Headers.Status(name)
		label := "missing"
		if status.Present && status.Valid {
			label = "ok"
		} else if status.Present {
			label = "weak"
		}
		data.HeaderRows = append(data.HeaderRows, reportHeaderRow{
			Name:    name,
			Present: status.Present,
			Valid:   status.Valid,
			Label:   label,
		})
	}

	for _, tech := range result.Technologies {
		if tech.Outdated() {
			data.Outdated = append(data.Outdated, tech)
		}
	}

	counts := analyzer.CountBySeverity(result.Vulnerabilities)
	data.CriticalCount = counts[analyzer.SeverityCritical]
	data.HighCount = counts[analyzer.SeverityHigh]
	data.MediumCount = counts[analyzer.SeverityMedium]
	data.LowCount = counts[analyzer.SeverityLow]

	return data
}

func executeReportTemplate(tpl *template.Template, data reportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func generatePDFReportBytes(data reportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Page Risk Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Target: %s", data.Result.URL), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Site type: %s", data.Result.SiteType), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Scanned: %s", data.ScannedAt), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt), "", 1, "", false, 0, "")
	pdf.Ln(5)

	if score := data.Result.Score; score != nil {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Security Score", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Overall: %d/100 | Grade: %s | Risk: %s",
			score.Overall, score.Grade, score.RiskLevel), "", 1, "", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Baseline: %d | Headers: %+.1f | Vulnerabilities: %+.1f | Bonus: %d",
			score.Details.Baseline, score.Details.Headers.Score,
			score.Details.Vulnerabilities.Score, score.Details.Bonus), "", 1, "", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Security Headers", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, row := range data.HeaderRows {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s", row.Name, row.Label), "", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Vulnerabilities (%d)", len(data.Result.Vulnerabilities)), "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Critical: %d | High: %d | Medium: %d | Low: %d",
		data.CriticalCount, data.HighCount, data.MediumCount, data.LowCount), "", 1, "", false, 0, "")
	for _, f := range data.Result.Vulnerabilities {
		label := f.Name
		if f.Version != "" {
			label += " " + f.Version
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("[%s] %s: %s", f.Severity, label, f.Vulnerability), "", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	if len(data.Result.Technologies) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Detected Technologies", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, tech := range data.Result.Technologies {
			line := fmt.Sprintf("%s (%s)", tech.Name, tech.Category)
			if tech.Version != "" {
				line += " " + tech.Version
			}
			if tech.Outdated() {
				line += fmt.Sprintf(" - outdated, current %s", tech.CurrentVersion)
			}
			pdf.CellFormat(0, 6, line, "", 1, "", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
