package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// JSONReportName is the machine-readable report filename.
const JSONReportName = "kpi-audit.json"

// MarkdownReportName is the human-readable report filename.
const MarkdownReportName = "kpi-audit.md"

// WriteReports writes the JSON and Markdown renderings of the report.
func WriteReports(report *Report, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode audit report")
	}
	jsonPath := filepath.Join(outputDir, JSONReportName)
	if err := os.WriteFile(jsonPath, append(payload, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "failed to write JSON report")
	}

	mdPath := filepath.Join(outputDir, MarkdownReportName)
	if err := os.WriteFile(mdPath, []byte(Markdown(report)), 0o644); err != nil {
		return errors.Wrap(err, "failed to write Markdown report")
	}
	return nil
}

// Markdown renders the human-readable drift report.
func Markdown(report *Report) string {
	var b strings.Builder
	summary := report.Summary

	fmt.Fprintf(&b, "# Weekly KPI Drift Audit\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt)
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- Total metrics: %d\n", summary.TotalMetrics)
	fmt.Fprintf(&b, "- Off-track metrics: %d\n", summary.OffTrackMetrics)
	fmt.Fprintf(&b, "- Skills audited: %d\n", summary.SkillsAudited)
	fmt.Fprintf(&b, "- Skills with drift: %d\n", summary.SkillsWithDrift)
	fmt.Fprintf(&b, "- Critical skills: %d\n\n", summary.CriticalSkills)

	fmt.Fprintf(&b, "## Severity Counts\n\n")
	for _, severity := range SeverityOrder {
		fmt.Fprintf(&b, "- %s: %d\n", severity, summary.SeverityCounts[severity])
	}

	fmt.Fprintf(&b, "\n## Top Skill Risks\n\n")
	fmt.Fprintf(&b, "| Skill | Severity | Off-track KPIs | Avg ratio |\n")
	fmt.Fprintf(&b, "| --- | --- | ---: | ---: |\n")
	topSkills := report.Skills
	if len(topSkills) > 20 {
		topSkills = topSkills[:20]
	}
	for _, skill := range topSkills {
		fmt.Fprintf(&b, "| %s | %s | %d/%d | %.2f |\n",
			skill.SkillName, skill.Severity, skill.OffTrackCount, skill.MetricCount, skill.AveragePerformanceRatio)
	}

	fmt.Fprintf(&b, "\n## Lowest-Performing Metrics\n\n")
	fmt.Fprintf(&b, "| Skill | KPI | Severity | Ratio | Gap %% |\n")
	fmt.Fprintf(&b, "| --- | --- | --- | ---: | ---: |\n")
	sorted := make([]Metric, len(report.Metrics))
	copy(sorted, report.Metrics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PerformanceRatio < sorted[j].PerformanceRatio
	})
	if len(sorted) > 25 {
		sorted = sorted[:25]
	}
	for _, metric := range sorted {
		fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %.1f%% |\n",
			metric.SkillName, metric.KPIName, metric.Severity, metric.PerformanceRatio, metric.GapPct)
	}

	return b.String()
}
