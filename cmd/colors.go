package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/nmvu/pagerisk/internal/analyzer"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "success", "pass":
		return colorSuccess(status)
	case "error", "fail", "failed":
		return colorError(status)
	default:
		return status
	}
}

func formatSeverity(s analyzer.Severity) string {
	switch s {
	case analyzer.SeverityCritical:
		return color.New(color.FgRed, color.Bold).Sprint("[CRITICAL]")
	case analyzer.SeverityHigh:
		return colorError("[HIGH]")
	case analyzer.SeverityMedium:
		return colorWarn("[MEDIUM]")
	default:
		return colorInfo("[LOW]")
	}
}

func formatScore(score int) string {
	switch {
	case score >= 85:
		return colorSuccess(fmt.Sprintf("%d/100", score))
	case score >= 70:
		return colorWarn(fmt.Sprintf("%d/100", score))
	default:
		return colorError(fmt.Sprintf("%d/100", score))
	}
}

func formatGrade(grade string) string {
	switch {
	case strings.HasPrefix(grade, "A"):
		return colorSuccess(grade)
	case strings.HasPrefix(grade, "B"), strings.HasPrefix(grade, "C"):
		return colorWarn(grade)
	default:
		return colorError(grade)
	}
}

func formatRiskLevel(level string) string {
	switch strings.ToLower(level) {
	case "low":
		return colorSuccess(level)
	case "medium":
		return colorWarn(level)
	default:
		return colorError(level)
	}
}
