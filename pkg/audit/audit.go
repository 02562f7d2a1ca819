// Package audit computes KPI drift for business skills from a KPI snapshot
// CSV and emits machine-readable and human-readable reports.
package audit

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Severity classifies how far a metric has drifted from its target.
type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityOrder lists severities from least to most severe.
var SeverityOrder = []Severity{SeverityNone, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns the position of s in SeverityOrder; unknown values rank lowest.
func (s Severity) Rank() int {
	for i, known := range SeverityOrder {
		if s == known {
			return i
		}
	}
	return 0
}

// ParseSeverity returns the Severity matching raw, or false for unknown values.
func ParseSeverity(raw string) (Severity, bool) {
	s := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range SeverityOrder {
		if s == known {
			return s, true
		}
	}
	return SeverityNone, false
}

// Metric is one KPI measurement for one skill.
type Metric struct {
	SkillName        string   `json:"skill_name"`
	KPIName          string   `json:"kpi_name"`
	TargetValue      float64  `json:"target_value"`
	CurrentValue     float64  `json:"current_value"`
	Direction        string   `json:"direction"`
	Owner            string   `json:"owner"`
	Domain           string   `json:"domain"`
	PerformanceRatio float64  `json:"performance_ratio"`
	GapPct           float64  `json:"gap_pct"`
	Severity         Severity `json:"severity"`
}

// SkillSummary aggregates all metrics belonging to one skill.
type SkillSummary struct {
	SkillName               string   `json:"skill_name"`
	Severity                Severity `json:"severity"`
	MetricCount             int      `json:"metric_count"`
	OffTrackCount           int      `json:"off_track_count"`
	AveragePerformanceRatio float64  `json:"average_performance_ratio"`
	TopIssues               []Metric `json:"top_issues"`
}

// Summary holds report-level counts.
type Summary struct {
	TotalMetrics    int              `json:"total_metrics"`
	SeverityCounts  map[Severity]int `json:"severity_counts"`
	OffTrackMetrics int              `json:"off_track_metrics"`
	SkillsAudited   int              `json:"skills_audited"`
	SkillsWithDrift int              `json:"skills_with_drift"`
	CriticalSkills  int              `json:"critical_skills"`
}

// Report is the full audit payload written to kpi-audit.json.
type Report struct {
	GeneratedAt string         `json:"generated_at"`
	InputFile   string         `json:"input_file"`
	Summary     Summary        `json:"summary"`
	Skills      []SkillSummary `json:"skills"`
	Metrics     []Metric       `json:"metrics"`
}

// pick returns the first non-empty value among the given header aliases.
func pick(row map[string]string, keys []string, fallback string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(row[key]); value != "" {
			return value
		}
	}
	return fallback
}

func parseFloat(raw string, fallback float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return value
}

func normalizeDirection(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lower_is_better", "lower", "down":
		return "lower_is_better"
	default:
		return "higher_is_better"
	}
}

// performanceRatio compares current against target; >= 1.0 means on track.
// Zero and negative edge values collapse to 1.0 (trivially met) or 10.0
// (target is zero but performance is not).
func performanceRatio(current, target float64, direction string) float64 {
	if direction == "lower_is_better" {
		if current <= 0 {
			if target <= 0 {
				return 1.0
			}
			return 10.0
		}
		return target / current
	}

	if target == 0 {
		if current == 0 {
			return 1.0
		}
		return 10.0
	}
	return current / target
}

func severityFromRatio(ratio float64) Severity {
	switch {
	case ratio >= 1.0:
		return SeverityNone
	case ratio >= 0.97:
		return SeverityLow
	case ratio >= 0.90:
		return SeverityMedium
	case ratio >= 0.80:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// LoadMetrics reads the KPI snapshot CSV. Header aliases are tolerated
// (skill_name/skill/name, kpi_name/kpi/metric_name, target_value/target,
// current_value/current/actual) and malformed numbers fall back to zero.
func LoadMetrics(path string) ([]Metric, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open KPI input")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read KPI header")
	}

	var metrics []Metric
	for index := 1; ; index++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read KPI row %d", index)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[strings.TrimSpace(name)] = record[i]
			}
		}

		skillName := pick(row, []string{"skill_name", "skill", "name"}, "")
		if skillName == "" {
			skillName = "unknown-skill"
		}
		kpiName := pick(row, []string{"kpi_name", "kpi", "metric_name"}, "metric_"+strconv.Itoa(index))
		target := parseFloat(pick(row, []string{"target_value", "target"}, "0"), 0)
		current := parseFloat(pick(row, []string{"current_value", "current", "actual"}, "0"), 0)
		direction := normalizeDirection(pick(row, []string{"direction"}, "higher_is_better"))

		ratio := performanceRatio(current, target, direction)

		metrics = append(metrics, Metric{
			SkillName:        skillName,
			KPIName:          kpiName,
			TargetValue:      target,
			CurrentValue:     current,
			Direction:        direction,
			Owner:            pick(row, []string{"owner", "owner_role"}, "unassigned"),
			Domain:           pick(row, []string{"domain", "domain_slug"}, "unknown"),
			PerformanceRatio: roundTo(ratio, 4),
			GapPct:           roundTo((ratio-1.0)*100.0, 2),
			Severity:         severityFromRatio(ratio),
		})
	}

	return metrics, nil
}

// SummarizeBySkill rolls metrics up per skill, ordered worst-first.
func SummarizeBySkill(metrics []Metric) []SkillSummary {
	grouped := make(map[string][]Metric)
	var order []string
	for _, metric := range metrics {
		if _, seen := grouped[metric.SkillName]; !seen {
			order = append(order, metric.SkillName)
		}
		grouped[metric.SkillName] = append(grouped[metric.SkillName], metric)
	}

	summaries := make([]SkillSummary, 0, len(order))
	for _, name := range order {
		items := grouped[name]

		worst := SeverityNone
		var ratioSum float64
		var offTrack []Metric
		for _, item := range items {
			if item.Severity.Rank() > worst.Rank() {
				worst = item.Severity
			}
			ratioSum += item.PerformanceRatio
			if item.Severity != SeverityNone {
				offTrack = append(offTrack, item)
			}
		}

		sort.SliceStable(offTrack, func(i, j int) bool {
			return offTrack[i].PerformanceRatio < offTrack[j].PerformanceRatio
		})
		topIssues := offTrack
		if len(topIssues) > 3 {
			topIssues = topIssues[:3]
		}

		summaries = append(summaries, SkillSummary{
			SkillName:               name,
			Severity:                worst,
			MetricCount:             len(items),
			OffTrackCount:           len(offTrack),
			AveragePerformanceRatio: roundTo(ratioSum/float64(len(items)), 4),
			TopIssues:               topIssues,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Severity.Rank() != summaries[j].Severity.Rank() {
			return summaries[i].Severity.Rank() > summaries[j].Severity.Rank()
		}
		if summaries[i].AveragePerformanceRatio != summaries[j].AveragePerformanceRatio {
			return summaries[i].AveragePerformanceRatio < summaries[j].AveragePerformanceRatio
		}
		return summaries[i].SkillName < summaries[j].SkillName
	})

	return summaries
}

// BuildSummary computes report-level counts.
func BuildSummary(metrics []Metric, skills []SkillSummary) Summary {
	counts := make(map[Severity]int, len(SeverityOrder))
	for _, severity := range SeverityOrder {
		counts[severity] = 0
	}

	offTrackMetrics := 0
	for _, metric := range metrics {
		counts[metric.Severity]++
		if metric.Severity != SeverityNone {
			offTrackMetrics++
		}
	}

	skillsWithDrift := 0
	criticalSkills := 0
	for _, skill := range skills {
		if skill.Severity != SeverityNone {
			skillsWithDrift++
		}
		if skill.Severity == SeverityCritical {
			criticalSkills++
		}
	}

	return Summary{
		TotalMetrics:    len(metrics),
		SeverityCounts:  counts,
		OffTrackMetrics: offTrackMetrics,
		SkillsAudited:   len(skills),
		SkillsWithDrift: skillsWithDrift,
		CriticalSkills:  criticalSkills,
	}
}

// Run audits the KPI CSV at inputPath and writes kpi-audit.json and
// kpi-audit.md into outputDir.
func Run(inputPath, outputDir string) (*Report, error) {
	metrics, err := LoadMetrics(inputPath)
	if err != nil {
		return nil, err
	}

	skills := SummarizeBySkill(metrics)

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		absInput = inputPath
	}

	report := &Report{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		InputFile:   absInput,
		Summary:     BuildSummary(metrics, skills),
		Skills:      skills,
		Metrics:     metrics,
	}

	if err := WriteReports(report, outputDir); err != nil {
		return nil, err
	}
	return report, nil
}
