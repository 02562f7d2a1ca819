package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/lint"
	"github.com/skillsmith/skillsmith/pkg/presenter"
)

var lintCmd = &cobra.Command{
	Use:   "lint [actions-root]",
	Short: "Lint composite actions for unsafe inputs interpolation",
	Long: `Scan composite GitHub action definitions for direct ${{ inputs.* }}
interpolation inside run blocks. Defaults to scanning .github/actions.

Examples:
  skillsmith lint
  skillsmith lint path/to/.github/actions`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		root := lint.DefaultRoot
		if len(args) > 0 {
			root = args[0]
		}
		lintActionsCmd(root)
	},
}

func lintActionsCmd(root string) {
	violations, err := lint.Run(root)
	if err != nil {
		presenter.Error(err, "Failed to scan action definitions")
		os.Exit(1)
	}

	fmt.Print(lint.Format(violations))
	if len(violations) > 0 {
		os.Exit(1)
	}
}
