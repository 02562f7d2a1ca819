package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/catalog"
	"github.com/skillsmith/skillsmith/pkg/presenter"
)

type GenerateConfig struct {
	Catalog   string
	Domains   string
	PerDomain int
	TargetDir string
	Force     bool
}

func NewGenerateConfig() *GenerateConfig {
	return &GenerateConfig{
		Domains:   strings.Join(catalog.DefaultDomains, ","),
		PerDomain: 10,
		TargetDir: "skills",
	}
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate skills from a catalog CSV",
	Long: `Generate skill directories from a skill catalog CSV. The first N skills
per selected domain (ordered by skill_id) are materialized as SKILL.md
manifests that pass validation.

Examples:
  skillsmith generate --catalog references/skill-catalog-1000.csv
  skillsmith generate --catalog catalog.csv --domains engineering,sales --per-domain 5 --force`,
	Run: func(cmd *cobra.Command, args []string) {
		config := getGenerateConfigFromFlags(cmd)
		generateSkillsCmd(cmd, config)
	},
}

func init() {
	defaults := NewGenerateConfig()
	generateCmd.Flags().String("catalog", defaults.Catalog, "Path to catalog CSV")
	generateCmd.Flags().String("domains", defaults.Domains, "Comma-separated domain slugs")
	generateCmd.Flags().Int("per-domain", defaults.PerDomain, "Number of skills to generate per selected domain")
	generateCmd.Flags().String("target-dir", defaults.TargetDir, "Target skills directory")
	generateCmd.Flags().Bool("force", defaults.Force, "Overwrite existing SKILL.md files")
	generateCmd.MarkFlagRequired("catalog")
}

func getGenerateConfigFromFlags(cmd *cobra.Command) *GenerateConfig {
	config := NewGenerateConfig()
	if catalogPath, err := cmd.Flags().GetString("catalog"); err == nil {
		config.Catalog = catalogPath
	}
	if domains, err := cmd.Flags().GetString("domains"); err == nil {
		config.Domains = domains
	}
	if perDomain, err := cmd.Flags().GetInt("per-domain"); err == nil {
		config.PerDomain = perDomain
	}
	if targetDir, err := cmd.Flags().GetString("target-dir"); err == nil {
		config.TargetDir = targetDir
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}
	return config
}

func splitDomains(raw string) []string {
	var domains []string
	for _, domain := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(domain); trimmed != "" {
			domains = append(domains, trimmed)
		}
	}
	return domains
}

func generateSkillsCmd(cmd *cobra.Command, config *GenerateConfig) {
	stats, err := catalog.Generate(cmd.Context(), config.Catalog, catalog.GenerateOptions{
		Domains:   splitDomains(config.Domains),
		PerDomain: config.PerDomain,
		TargetDir: config.TargetDir,
		Force:     config.Force,
	})
	if err != nil {
		presenter.Error(err, "Failed to generate skills")
		os.Exit(1)
	}

	presenter.Info(fmt.Sprintf("Requested: %d", stats.Requested))
	presenter.Info(fmt.Sprintf("Created: %d", stats.Created))
	presenter.Info(fmt.Sprintf("Skipped: %d", stats.Skipped))
	if len(stats.MissingDomains) > 0 {
		presenter.Warning(fmt.Sprintf("Missing domains: %s", strings.Join(stats.MissingDomains, ", ")))
	}
}
