package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/audit"
	"github.com/skillsmith/skillsmith/pkg/presenter"
)

type AuditConfig struct {
	Input     string
	OutputDir string
}

func NewAuditConfig() *AuditConfig {
	return &AuditConfig{
		OutputDir: "reports",
	}
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit KPI drift for business skills",
	Long: `Audit KPI drift from a KPI snapshot CSV and write machine-readable
(kpi-audit.json) and human-readable (kpi-audit.md) reports.

Examples:
  skillsmith audit --input kpis.csv --output-dir reports`,
	Run: func(cmd *cobra.Command, _ []string) {
		config := getAuditConfigFromFlags(cmd)
		auditKPIsCmd(config)
	},
}

func init() {
	defaults := NewAuditConfig()
	auditCmd.Flags().StringP("input", "i", defaults.Input, "Input KPI CSV")
	auditCmd.Flags().StringP("output-dir", "d", defaults.OutputDir, "Output directory for reports")
	auditCmd.MarkFlagRequired("input")
}

func getAuditConfigFromFlags(cmd *cobra.Command) *AuditConfig {
	config := NewAuditConfig()
	if input, err := cmd.Flags().GetString("input"); err == nil {
		config.Input = input
	}
	if outputDir, err := cmd.Flags().GetString("output-dir"); err == nil {
		config.OutputDir = outputDir
	}
	return config
}

func auditKPIsCmd(config *AuditConfig) {
	report, err := audit.Run(config.Input, config.OutputDir)
	if err != nil {
		presenter.Error(err, "Failed to audit KPI drift")
		os.Exit(1)
	}

	summary := report.Summary
	presenter.Success(fmt.Sprintf("Audited %d metrics across %d skills", summary.TotalMetrics, summary.SkillsAudited))
	if summary.SkillsWithDrift > 0 {
		presenter.Warning(fmt.Sprintf("%d skill(s) drifting, %d critical", summary.SkillsWithDrift, summary.CriticalSkills))
	}
	presenter.Info(fmt.Sprintf("Reports written to %s", filepath.Join(config.OutputDir, audit.JSONReportName)))
}
