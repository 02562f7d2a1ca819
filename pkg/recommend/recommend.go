// Package recommend turns a KPI drift audit into a prioritized list of
// skill upgrade proposals.
package recommend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillsmith/skillsmith/pkg/audit"
	"github.com/skillsmith/skillsmith/pkg/skills"
)

// Issue summarizes one off-track KPI backing a recommendation.
type Issue struct {
	KPIName  string         `json:"kpi_name"`
	Ratio    float64        `json:"ratio"`
	GapPct   float64        `json:"gap_pct"`
	Severity audit.Severity `json:"severity"`
}

// Recommendation is one prioritized upgrade proposal for a skill.
type Recommendation struct {
	SkillName               string         `json:"skill_name"`
	Severity                audit.Severity `json:"severity"`
	AveragePerformanceRatio float64        `json:"average_performance_ratio"`
	OffTrackCount           int            `json:"off_track_count"`
	MetricCount             int            `json:"metric_count"`
	SkillExists             bool           `json:"skill_exists"`
	SkillPath               string         `json:"skill_path"`
	IssueSummary            []Issue        `json:"issue_summary"`
	Recommendations         []string       `json:"recommendations"`
}

var commonActions = []string{
	"Tighten trigger signals using leading indicators that predict KPI degradation earlier.",
	"Add one explicit validation checkpoint before final output publication.",
	"Add a fallback path and escalation condition to reduce task abandonment.",
	"Refine output contract to include owner, due date, and measurable acceptance criteria.",
}

var escalationActions = []string{
	"Break the skill into narrower sub-skills if scope is too broad for reliable execution.",
	"Add mandatory human approval for high-impact or high-spend actions.",
	"Introduce daily monitoring temporarily until KPI ratio returns to >= 0.95.",
}

// actionsFor returns the upgrade actions for a severity level. CRITICAL and
// HIGH skills get the escalation set in addition to the common actions.
func actionsFor(severity audit.Severity) []string {
	if severity == audit.SeverityCritical || severity == audit.SeverityHigh {
		return append(append([]string{}, escalationActions...), commonActions...)
	}
	return append([]string{}, commonActions...)
}

// LoadAudit reads a kpi-audit.json report.
func LoadAudit(path string) (*audit.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read audit report")
	}
	var report audit.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(err, "failed to decode audit report")
	}
	return &report, nil
}

// Build produces recommendations for every skill at or above minSeverity,
// sorted worst-first. skillsDir is consulted to flag skills whose SKILL.md
// is missing on disk.
func Build(report *audit.Report, skillsDir string, minSeverity audit.Severity) []Recommendation {
	var recs []Recommendation
	for _, skill := range report.Skills {
		if skill.Severity.Rank() < minSeverity.Rank() {
			continue
		}

		skillPath := filepath.Join(skillsDir, skill.SkillName, skills.SkillFileName)
		_, statErr := os.Stat(skillPath)

		issues := make([]Issue, 0, len(skill.TopIssues))
		for _, issue := range skill.TopIssues {
			issues = append(issues, Issue{
				KPIName:  issue.KPIName,
				Ratio:    issue.PerformanceRatio,
				GapPct:   issue.GapPct,
				Severity: issue.Severity,
			})
		}

		recs = append(recs, Recommendation{
			SkillName:               skill.SkillName,
			Severity:                skill.Severity,
			AveragePerformanceRatio: skill.AveragePerformanceRatio,
			OffTrackCount:           skill.OffTrackCount,
			MetricCount:             skill.MetricCount,
			SkillExists:             statErr == nil,
			SkillPath:               skillPath,
			IssueSummary:            issues,
			Recommendations:         actionsFor(skill.Severity),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Severity.Rank() != recs[j].Severity.Rank() {
			return recs[i].Severity.Rank() > recs[j].Severity.Rank()
		}
		if recs[i].AveragePerformanceRatio != recs[j].AveragePerformanceRatio {
			return recs[i].AveragePerformanceRatio < recs[j].AveragePerformanceRatio
		}
		return recs[i].SkillName < recs[j].SkillName
	})

	return recs
}

// Markdown renders the recommendation report.
func Markdown(report *audit.Report, recs []Recommendation, minSeverity audit.Severity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Skill Upgrade Recommendations\n\n")
	fmt.Fprintf(&b, "Source audit: `%s`\n", report.InputFile)
	fmt.Fprintf(&b, "Generated: %s\n", report.GeneratedAt)
	fmt.Fprintf(&b, "Min severity: %s\n\n", minSeverity)
	fmt.Fprintf(&b, "Total recommendations: %d\n\n", len(recs))

	if len(recs) == 0 {
		fmt.Fprintf(&b, "No upgrades required at or above the selected severity threshold.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "## Prioritized List\n\n")
	for idx, rec := range recs {
		fmt.Fprintf(&b, "%d. `%s` (%s, ratio=%.2f, off-track=%d/%d)\n",
			idx+1, rec.SkillName, rec.Severity, rec.AveragePerformanceRatio, rec.OffTrackCount, rec.MetricCount)
		fmt.Fprintf(&b, "   Skill file: `%s`\n", rec.SkillPath)
		if !rec.SkillExists {
			fmt.Fprintf(&b, "   Skill status: missing SKILL.md (create or restore this skill).\n")
		}
		if len(rec.IssueSummary) > 0 {
			parts := make([]string, 0, len(rec.IssueSummary))
			for _, issue := range rec.IssueSummary {
				parts = append(parts, fmt.Sprintf("%s (%s, ratio=%.2f, gap=%.1f%%)",
					issue.KPIName, issue.Severity, issue.Ratio, issue.GapPct))
			}
			fmt.Fprintf(&b, "   KPI issues: %s\n", strings.Join(parts, "; "))
		}
		fmt.Fprintf(&b, "   Upgrade actions:\n")
		for _, action := range rec.Recommendations {
			fmt.Fprintf(&b, "   - %s\n", action)
		}
		fmt.Fprintf(&b, "\n")
	}

	return b.String()
}

// Write renders and writes the Markdown report, plus an optional JSON copy
// when jsonPath is non-empty.
func Write(report *audit.Report, recs []Recommendation, minSeverity audit.Severity, outputPath, jsonPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	if err := os.WriteFile(outputPath, []byte(Markdown(report, recs, minSeverity)), 0o644); err != nil {
		return errors.Wrap(err, "failed to write recommendations")
	}

	if jsonPath == "" {
		return nil
	}
	payload, err := json.MarshalIndent(map[string][]Recommendation{"recommendations": recs}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode recommendations")
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0o755); err != nil {
		return errors.Wrap(err, "failed to create JSON output directory")
	}
	if err := os.WriteFile(jsonPath, append(payload, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "failed to write JSON recommendations")
	}
	return nil
}
