package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/presenter"
	"github.com/skillsmith/skillsmith/pkg/skills"
)

var validateCmd = &cobra.Command{
	Use:   "validate <skill-directory>...",
	Short: "Validate SKILL.md manifests",
	Long: `Validate the SKILL.md manifest of one or more skill directories.

Exits non-zero if any skill is invalid.

Examples:
  skillsmith validate skills/demo
  skillsmith validate skills/*/`,
	Args: cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		validateSkillsCmd(args)
	},
}

func validateSkillsCmd(dirs []string) {
	invalid := 0
	for _, dir := range dirs {
		result := skills.Validate(dir)
		if result.OK {
			presenter.Success(fmt.Sprintf("%s: %s", dir, result.Message))
		} else {
			invalid++
			presenter.Error(errors.New(result.Message), dir)
		}
	}

	if invalid > 0 {
		presenter.Info(fmt.Sprintf("%d of %d skill(s) invalid", invalid, len(dirs)))
		os.Exit(1)
	}
}
