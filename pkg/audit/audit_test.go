package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kpis.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPerformanceRatio(t *testing.T) {
	t.Run("higher is better", func(t *testing.T) {
		assert.InDelta(t, 0.9, performanceRatio(90, 100, "higher_is_better"), 1e-9)
		assert.InDelta(t, 1.0, performanceRatio(0, 0, "higher_is_better"), 1e-9)
		assert.InDelta(t, 10.0, performanceRatio(5, 0, "higher_is_better"), 1e-9)
	})

	t.Run("lower is better", func(t *testing.T) {
		assert.InDelta(t, 2.0, performanceRatio(5, 10, "lower_is_better"), 1e-9)
		assert.InDelta(t, 1.0, performanceRatio(0, 0, "lower_is_better"), 1e-9)
		assert.InDelta(t, 10.0, performanceRatio(-1, 3, "lower_is_better"), 1e-9)
	})
}

func TestSeverityFromRatio(t *testing.T) {
	assert.Equal(t, SeverityNone, severityFromRatio(1.05))
	assert.Equal(t, SeverityNone, severityFromRatio(1.0))
	assert.Equal(t, SeverityLow, severityFromRatio(0.98))
	assert.Equal(t, SeverityMedium, severityFromRatio(0.95))
	assert.Equal(t, SeverityHigh, severityFromRatio(0.85))
	assert.Equal(t, SeverityCritical, severityFromRatio(0.5))
}

func TestLoadMetricsHeaderAliases(t *testing.T) {
	path := writeCSV(t, `skill,kpi,target,actual,direction,owner_role,domain_slug
pipeline-reviews,review-latency-hours,24,30,lower,eng-lead,engineering
pipeline-reviews,merge-rate,0.9,0.81,higher,eng-lead,engineering
`)

	metrics, err := LoadMetrics(path)
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	latency := metrics[0]
	assert.Equal(t, "pipeline-reviews", latency.SkillName)
	assert.Equal(t, "review-latency-hours", latency.KPIName)
	assert.Equal(t, "lower_is_better", latency.Direction)
	assert.Equal(t, "eng-lead", latency.Owner)
	assert.Equal(t, "engineering", latency.Domain)
	assert.InDelta(t, 0.8, latency.PerformanceRatio, 1e-9)
	assert.Equal(t, SeverityHigh, latency.Severity)

	merge := metrics[1]
	assert.InDelta(t, 0.9, merge.PerformanceRatio, 1e-9)
	assert.InDelta(t, -10.0, merge.GapPct, 1e-9)
	assert.Equal(t, SeverityMedium, merge.Severity)
}

func TestLoadMetricsDefaults(t *testing.T) {
	path := writeCSV(t, `kpi_name,target_value,current_value
,100,not-a-number
`)

	metrics, err := LoadMetrics(path)
	require.NoError(t, err)
	require.Len(t, metrics, 1)

	assert.Equal(t, "unknown-skill", metrics[0].SkillName)
	assert.Equal(t, "metric_1", metrics[0].KPIName)
	assert.Equal(t, float64(0), metrics[0].CurrentValue)
	assert.Equal(t, "unassigned", metrics[0].Owner)
	assert.Equal(t, "unknown", metrics[0].Domain)
}

func TestSummarizeBySkill(t *testing.T) {
	path := writeCSV(t, `skill_name,kpi_name,target_value,current_value
alpha,kpi-1,100,100
alpha,kpi-2,100,70
alpha,kpi-3,100,85
alpha,kpi-4,100,92
beta,kpi-1,100,99
`)

	metrics, err := LoadMetrics(path)
	require.NoError(t, err)

	skills := SummarizeBySkill(metrics)
	require.Len(t, skills, 2)

	// alpha has a CRITICAL metric, so it sorts first.
	alpha := skills[0]
	assert.Equal(t, "alpha", alpha.SkillName)
	assert.Equal(t, SeverityCritical, alpha.Severity)
	assert.Equal(t, 4, alpha.MetricCount)
	assert.Equal(t, 3, alpha.OffTrackCount)
	require.Len(t, alpha.TopIssues, 3)
	assert.Equal(t, "kpi-2", alpha.TopIssues[0].KPIName)

	beta := skills[1]
	assert.Equal(t, SeverityLow, beta.Severity)
	assert.Equal(t, 1, beta.OffTrackCount)
}

func TestBuildSummary(t *testing.T) {
	path := writeCSV(t, `skill_name,kpi_name,target_value,current_value
alpha,kpi-1,100,100
alpha,kpi-2,100,50
beta,kpi-1,100,100
`)

	metrics, err := LoadMetrics(path)
	require.NoError(t, err)
	skills := SummarizeBySkill(metrics)
	summary := BuildSummary(metrics, skills)

	assert.Equal(t, 3, summary.TotalMetrics)
	assert.Equal(t, 1, summary.OffTrackMetrics)
	assert.Equal(t, 2, summary.SkillsAudited)
	assert.Equal(t, 1, summary.SkillsWithDrift)
	assert.Equal(t, 1, summary.CriticalSkills)
	assert.Equal(t, 2, summary.SeverityCounts[SeverityNone])
	assert.Equal(t, 1, summary.SeverityCounts[SeverityCritical])
}

func TestRunWritesReports(t *testing.T) {
	path := writeCSV(t, `skill_name,kpi_name,target_value,current_value
alpha,kpi-1,100,50
`)
	outDir := filepath.Join(t.TempDir(), "reports")

	report, err := Run(path, outDir)
	require.NoError(t, err)
	assert.NotEmpty(t, report.GeneratedAt)

	data, err := os.ReadFile(filepath.Join(outDir, JSONReportName))
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.Summary.TotalMetrics, decoded.Summary.TotalMetrics)
	require.Len(t, decoded.Skills, 1)
	assert.Equal(t, SeverityCritical, decoded.Skills[0].Severity)

	md, err := os.ReadFile(filepath.Join(outDir, MarkdownReportName))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Weekly KPI Drift Audit")
	assert.Contains(t, string(md), "| alpha | CRITICAL |")
}

func TestParseSeverity(t *testing.T) {
	s, ok := ParseSeverity("high")
	assert.True(t, ok)
	assert.Equal(t, SeverityHigh, s)

	_, ok = ParseSeverity("urgent")
	assert.False(t, ok)
}
