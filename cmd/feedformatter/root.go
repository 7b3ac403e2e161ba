package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/feedformatter/config"
	"github.com/theoremus-urban-solutions/feedformatter/internal"
)

var (
	// Global flags
	cfgFile    string
	logLevel   string
	logConsole bool

	// Set by the root command before any subcommand runs
	appConfig *config.AppConfig
	logger    zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "feedformatter",
	Short: "Render feed documents as RSS 1.0, RSS 2.0 or Atom 1.0",
	Long: `feedformatter turns a generic feed description (a channel plus a list
of items, written as YAML, JSON or protobuf Struct) into RSS 1.0, RSS 2.0
or Atom 1.0 XML.

One-off:
  feedformatter render news.yml --format rss2
  feedformatter validate news.yml

Configured feeds:
  feedformatter update             # publish every feed once
  feedformatter watch news         # re-publish on every save
  feedformatter serve              # serve feeds over HTTP`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default feedformatter.yml or config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "human-readable log output")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger = internal.NewLogger(level, logConsole || cfg.Logging.Console, cmd.ErrOrStderr())
	return nil
}
