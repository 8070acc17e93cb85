package scoring

import (
	"errors"
	"net/http"
	"testing"

	"github.com/nmvu/pagerisk/internal/analyzer"
	sharederrors "github.com/nmvu/pagerisk/internal/shared/errors"
)

func strongHeaders() *analyzer.HeaderReport {
	h := http.Header{}
	h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; object-src 'none'")
	h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Permissions-Policy", "geolocation=(), camera=()")
	h.Set("X-XSS-Protection", "1; mode=block")
	return analyzer.AnalyzeHeaders(h)
}

func TestScore_FinancialExcellentPosture(t *testing.T) {
	scorer := NewScorer()
	ctx := &analyzer.SiteContext{Type: "financial", HandlesFinancialData: true, HasLoginSystem: true, UsesHTTPS: true}

	score, err := scorer.Score(strongHeaders(), nil, "financial", ctx)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if score.Overall != 99 {
		t.Errorf("overall = %d, want 99", score.Overall)
	}
	if score.Grade != "A+" {
		t.Errorf("grade = %q, want A+", score.Grade)
	}
	if score.RiskLevel != "Low" {
		t.Errorf("risk = %q, want Low", score.RiskLevel)
	}
	if len(score.Details.Headers.Missing) != 0 {
		t.Errorf("missing headers = %v, want none", score.Details.Headers.Missing)
	}
}

func TestScore_EcommercePartialPosture(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'")
	h.Set("Strict-Transport-Security", "max-age=31536000")
	report := analyzer.AnalyzeHeaders(h)

	findings := []analyzer.Finding{{Name: "Bootstrap", Severity: analyzer.SeverityMedium}}
	ctx := &analyzer.SiteContext{Type: "ecommerce-standard", HandlesFinancialData: true}

	scorer := NewScorer()
	score, err := scorer.Score(report, findings, "ecommerce-standard", ctx)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if score.Overall != 71 {
		t.Errorf("overall = %d, want 71", score.Overall)
	}
	if score.Grade != "B-" {
		t.Errorf("grade = %q, want B-", score.Grade)
	}
	if score.RiskLevel != "Medium" {
		t.Errorf("risk = %q, want Medium", score.RiskLevel)
	}
	if score.Overall < 70 || score.Overall >= 85 {
		t.Errorf("overall %d outside the expected mid band", score.Overall)
	}
}

func TestVulnerabilityComponent_PenaltyCap(t *testing.T) {
	var findings []analyzer.Finding
	for i := 0; i < 10; i++ {
		findings = append(findings, analyzer.Finding{Severity: analyzer.SeverityCritical})
		findings = append(findings, analyzer.Finding{Severity: analyzer.SeverityHigh})
	}

	vs := vulnerabilityComponent(findings)
	if vs.Score != -maxVulnPenalty {
		t.Errorf("penalty = %v, want %v", vs.Score, -maxVulnPenalty)
	}
	if vs.Critical != 10 || vs.High != 10 {
		t.Errorf("raw counts = crit:%d high:%d, want 10/10", vs.Critical, vs.High)
	}
}

func TestScore_ClampedToHundred(t *testing.T) {
	baselines := map[string]Baseline{
		"inflated":      {BaseScore: 95},
		DefaultSiteType: {BaseScore: 70},
	}
	scorer := NewScorerWithBaselines(baselines)
	ctx := &analyzer.SiteContext{Type: "inflated"}

	score, err := scorer.Score(strongHeaders(), nil, "inflated", ctx)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score.Overall != 100 {
		t.Errorf("overall = %d, want clamp to 100", score.Overall)
	}
	if score.Grade != "A+" {
		t.Errorf("grade = %q, want A+", score.Grade)
	}
}

func TestScore_FloorAtZero(t *testing.T) {
	baselines := map[string]Baseline{
		"hollow":        {BaseScore: 10},
		DefaultSiteType: {BaseScore: 70},
	}
	scorer := NewScorerWithBaselines(baselines)

	findings := []analyzer.Finding{
		{Severity: analyzer.SeverityCritical},
		{Severity: analyzer.SeverityCritical},
	}
	score, err := scorer.Score(analyzer.AnalyzeHeaders(http.Header{}), findings, "hollow", nil)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score.Overall != 0 {
		t.Errorf("overall = %d, want floor at 0", score.Overall)
	}
	if score.Grade != "F" {
		t.Errorf("grade = %q, want F", score.Grade)
	}
	if score.RiskLevel != "Critical" {
		t.Errorf("risk = %q, want Critical", score.RiskLevel)
	}
}

func TestScore_UnknownSiteTypeStrict(t *testing.T) {
	scorer := NewScorer()
	_, err := scorer.Score(strongHeaders(), nil, "space-station", nil)
	if !errors.Is(err, sharederrors.ErrUnknownSiteType) {
		t.Fatalf("err = %v, want ErrUnknownSiteType", err)
	}
}

func TestScoreWithFallback_UnknownSiteType(t *testing.T) {
	scorer := NewScorer()
	score := scorer.ScoreWithFallback(strongHeaders(), nil, "space-station", nil)

	if score.SiteType != DefaultSiteType {
		t.Errorf("site type = %q, want %q", score.SiteType, DefaultSiteType)
	}
	if score.Details.Baseline != DefaultBaselines[DefaultSiteType].BaseScore {
		t.Errorf("baseline = %d, want default baseline", score.Details.Baseline)
	}
}

func TestValidateSiteType(t *testing.T) {
	scorer := NewScorer()
	if err := scorer.ValidateSiteType("financial"); err != nil {
		t.Errorf("financial should be known: %v", err)
	}
	if err := scorer.ValidateSiteType("space-station"); !errors.Is(err, sharederrors.ErrUnknownSiteType) {
		t.Errorf("err = %v, want ErrUnknownSiteType", err)
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{score: 100, want: "A+"},
		{score: 95, want: "A+"},
		{score: 94, want: "A"},
		{score: 85, want: "A-"},
		{score: 84, want: "B+"},
		{score: 70, want: "B-"},
		{score: 69, want: "C+"},
		{score: 50, want: "D"},
		{score: 49, want: "F"},
		{score: 0, want: "F"},
	}
	for _, tt := range tests {
		if got := gradeFor(tt.score); got != tt.want {
			t.Errorf("gradeFor(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		critical int
		high     int
		want     string
	}{
		{name: "clean high score", score: 90, want: "Low"},
		{name: "high score with one high", score: 90, high: 1, want: "Low"},
		{name: "high score with two highs", score: 90, high: 2, want: "Medium"},
		{name: "mid score clean", score: 75, want: "Medium"},
		{name: "mid score with critical", score: 75, critical: 1, want: "High"},
		{name: "low score", score: 55, want: "High"},
		{name: "poor score many highs", score: 30, high: 3, want: "High"},
		{name: "poor score", score: 30, want: "Critical"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := riskLevelFor(tt.score, tt.critical, tt.high); got != tt.want {
				t.Errorf("riskLevelFor(%d, %d, %d) = %q, want %q", tt.score, tt.critical, tt.high, got, tt.want)
			}
		})
	}
}

func TestMissingPenaltyModifier_APIService(t *testing.T) {
	ctx := &analyzer.SiteContext{Type: "api-service"}

	if m := missingPenaltyModifier(analyzer.HeaderCSP, ctx); m != 0.0 {
		t.Errorf("CSP modifier = %v, want 0.0 for api-service", m)
	}
	if m := missingPenaltyModifier(analyzer.HeaderXContentTypeOptions, ctx); m != 1.0 {
		t.Errorf("X-Content-Type-Options modifier = %v, want 1.0", m)
	}
}

func TestMissingPenaltyModifier_StaticBlogVsUGC(t *testing.T) {
	static := &analyzer.SiteContext{Type: "blog"}
	ugc := &analyzer.SiteContext{Type: "blog", HasUserGeneratedContent: true}

	if m := missingPenaltyModifier(analyzer.HeaderCSP, static); m != 0.4 {
		t.Errorf("static blog CSP modifier = %v, want 0.4", m)
	}
	if m := missingPenaltyModifier(analyzer.HeaderCSP, ugc); m != 1.0 {
		t.Errorf("UGC blog CSP modifier = %v, want 1.0", m)
	}
}

func TestSiteTypes_ContainsDefault(t *testing.T) {
	types := SiteTypes()
	found := false
	for _, st := range types {
		if st == DefaultSiteType {
			found = true
		}
	}
	if !found {
		t.Errorf("SiteTypes() = %v, want %q included", types, DefaultSiteType)
	}
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Fatalf("site types not sorted: %v", types)
		}
	}
}
