package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/packager"
	"github.com/skillsmith/skillsmith/pkg/presenter"
)

type PackageConfig struct {
	OutputDir string
}

func NewPackageConfig() *PackageConfig {
	return &PackageConfig{
		OutputDir: ".",
	}
}

var packageCmd = &cobra.Command{
	Use:   "package <skill-directory>",
	Short: "Package a skill directory into a distributable archive",
	Long: `Package a skill directory into a <name>.skill archive.

The skill is validated first; an invalid skill is rejected before anything
is written. Symlinks inside the skill are never followed and never included,
and any file resolving outside the skill directory aborts packaging.

Examples:
  skillsmith package skills/demo
  skillsmith package skills/demo --output dist`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getPackageConfigFromFlags(cmd)
		packageSkillCmd(cmd, args[0], config)
	},
}

func init() {
	defaults := NewPackageConfig()
	packageCmd.Flags().StringP("output", "o", defaults.OutputDir, "Directory to write the archive into")
}

func getPackageConfigFromFlags(cmd *cobra.Command) *PackageConfig {
	config := NewPackageConfig()
	if output, err := cmd.Flags().GetString("output"); err == nil {
		config.OutputDir = output
	}
	return config
}

func packageSkillCmd(cmd *cobra.Command, bundleDir string, config *PackageConfig) {
	archivePath, err := packager.New().Package(cmd.Context(), bundleDir, config.OutputDir)
	if err != nil {
		if packager.IsRejected(err) {
			presenter.Error(err, fmt.Sprintf("Skill '%s' was rejected", filepath.Base(filepath.Clean(bundleDir))))
		} else {
			presenter.Error(err, "Failed to package skill")
		}
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Packaged skill to %s", archivePath))
}
