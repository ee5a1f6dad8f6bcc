// Package cmd wires the crawldex CLI: index builds, interactive search, and
// artifact statistics.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BuildInfo holds the build metadata injected at compile time.
type BuildInfo struct {
	Version string
	AppName string
}

type cmdFlags struct {
	version    string
	appName    string
	ConfigPath string `mapstructure:"config"`
	LogLevel   string `mapstructure:"log_level"`
	TextFormat bool   `mapstructure:"log_text"`
}

// InitCommand initializes the root command of the CLI application with its
// subcommands and flags.
func InitCommand(build BuildInfo) cobra.Command {
	flags := cmdFlags{
		version: build.Version,
		appName: build.AppName,
	}

	cmd := cobra.Command{
		Use:   flags.appName,
		Short: "Inverted-index builder for crawled web corpora",
		Long:  "Crawldex builds a persistent on-disk inverted index over a crawled corpus of web pages and answers conjunctive queries against it.",
	}

	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.TextFormat, "log-text", true, "log in text format, otherwise JSON")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to the configuration file")

	for _, name := range []string{"log_level", "log_text"} {
		if err := viper.BindEnv(name); err != nil {
			slog.Error("failed to bind env var", "name", name, "error", err)
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&flags); err != nil {
		slog.Error("failed to unmarshal env vars", "error", err)
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the index from the crawled corpus",
		Long:  "Walk the corpus directory, build partial runs, merge them into the final index, and print build statistics.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunBuild(cmd.Context(), &flags)
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Query an existing index interactively",
		Long:  "Start a read-query-print loop against previously built index artifacts. Type 'exit' to quit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunSearch(cmd.Context(), &flags)
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Build the index, then search it interactively",
		Long:  "Build the index from the corpus, print statistics, and enter the interactive search loop in one process.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunBuildAndSearch(cmd.Context(), &flags)
		},
	}

	statsCmd := newStatsCmd(&flags)

	cmd.AddCommand(buildCmd, searchCmd, runCmd, statsCmd)

	return cmd
}
