package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillsmith/skillsmith/pkg/presenter"
	"github.com/skillsmith/skillsmith/pkg/skills"
)

var listCmd = &cobra.Command{
	Use:   "list [skills-directory]",
	Short: "List skills in a skills directory",
	Long: `List the skills found in a skills directory with their names, directory
paths, and descriptions. Defaults to ./skills.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		dir := "skills"
		if len(args) > 0 {
			dir = args[0]
		}
		listSkillsCmd(dir)
	},
}

func listSkillsCmd(dir string) {
	allSkills, err := skills.Discover(dir)
	if err != nil {
		presenter.Error(err, "Failed to discover skills")
		os.Exit(1)
	}

	if len(allSkills) == 0 {
		presenter.Info("No skills found")
		return
	}

	names := make([]string, 0, len(allSkills))
	for name := range allSkills {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIRECTORY\tDESCRIPTION")
	fmt.Fprintln(tw, "----\t---------\t-----------")

	for _, name := range names {
		skill := allSkills[name]
		description := skill.Description
		if len(description) > 60 {
			description = description[:57] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", skill.Name, skill.Directory, description)
	}
	tw.Flush()
}
