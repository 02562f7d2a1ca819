package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillsmith/skillsmith/pkg/logger"
	"github.com/skillsmith/skillsmith/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLSMITH")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillsmith")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillsmith",
	Short: "Skillsmith CLI for authoring, validating, and packaging skills",
	Long: `Skillsmith is a toolkit for the skill authoring workflow: it validates
SKILL.md manifests, packages skill directories into distributable archives,
audits KPI drift, proposes skill upgrades, generates skills from a catalog,
and lints composite GitHub actions.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if level := viper.GetString("log_level"); level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				return err
			}
		}
		logger.SetLogFormat(viper.GetString("log_format"))
		presenter.SetColorMode(viper.GetString("color"))
		presenter.SetQuiet(viper.GetBool("quiet"))
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func main() {
	// Global flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt, json)")
	rootCmd.PersistentFlags().String("color", "auto", "Color output (auto, always, never)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	// Add subcommands
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(versionCmd)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
