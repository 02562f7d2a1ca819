package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/audit"
	"github.com/skillsmith/skillsmith/pkg/presenter"
	"github.com/skillsmith/skillsmith/pkg/recommend"
)

type RecommendConfig struct {
	Audit       string
	SkillsDir   string
	Output      string
	JSONOutput  string
	MinSeverity string
}

func NewRecommendConfig() *RecommendConfig {
	return &RecommendConfig{
		SkillsDir:   "skills",
		Output:      "reports/skill-upgrades.md",
		MinSeverity: string(audit.SeverityMedium),
	}
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Propose prioritized skill upgrades from a KPI drift audit",
	Long: `Generate prioritized skill upgrade recommendations from the JSON output
of 'skillsmith audit'.

Examples:
  skillsmith recommend --audit reports/kpi-audit.json --skills-dir skills --output reports/skill-upgrades.md
  skillsmith recommend --audit reports/kpi-audit.json --min-severity HIGH --json-output reports/skill-upgrades.json`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getRecommendConfigFromFlags(cmd)
		recommendUpgradesCmd(config)
	},
}

func init() {
	defaults := NewRecommendConfig()
	recommendCmd.Flags().String("audit", defaults.Audit, "Path to kpi-audit.json")
	recommendCmd.Flags().String("skills-dir", defaults.SkillsDir, "Skills directory")
	recommendCmd.Flags().StringP("output", "o", defaults.Output, "Markdown output path")
	recommendCmd.Flags().String("json-output", defaults.JSONOutput, "Optional JSON output path")
	recommendCmd.Flags().String("min-severity", defaults.MinSeverity, "Minimum severity for recommendations (LOW, MEDIUM, HIGH, CRITICAL)")
	recommendCmd.MarkFlagRequired("audit")
}

func getRecommendConfigFromFlags(cmd *cobra.Command) *RecommendConfig {
	config := NewRecommendConfig()
	if auditPath, err := cmd.Flags().GetString("audit"); err == nil {
		config.Audit = auditPath
	}
	if skillsDir, err := cmd.Flags().GetString("skills-dir"); err == nil {
		config.SkillsDir = skillsDir
	}
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.Output = output
	}
	if jsonOutput, err := cmd.Flags().GetString("json-output"); err == nil {
		config.JSONOutput = jsonOutput
	}
	if minSeverity, err := cmd.Flags().GetString("min-severity"); err == nil {
		config.MinSeverity = minSeverity
	}
	return config
}

func recommendUpgradesCmd(config *RecommendConfig) {
	minSeverity, ok := audit.ParseSeverity(config.MinSeverity)
	if !ok {
		presenter.Error(errors.Errorf("unknown severity %q", config.MinSeverity), "Invalid --min-severity")
		os.Exit(1)
	}

	report, err := recommend.LoadAudit(config.Audit)
	if err != nil {
		presenter.Error(err, "Failed to load audit report")
		os.Exit(1)
	}

	recs := recommend.Build(report, config.SkillsDir, minSeverity)
	if err := recommend.Write(report, recs, minSeverity, config.Output, config.JSONOutput); err != nil {
		presenter.Error(err, "Failed to write recommendations")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Wrote %d recommendation(s) to %s", len(recs), config.Output))
	if config.JSONOutput != "" {
		presenter.Info(fmt.Sprintf("JSON copy written to %s", config.JSONOutput))
	}
}
