// Package cli implements the pdfoutline command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/pdfoutline/internal/config"
	"github.com/tsawler/pdfoutline/internal/logger"
)

// app holds the state shared by the commands of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     logger.Logger
}

// Execute runs the root command
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// NewRootCommand builds the command tree. Each call has its own
// configuration state.
func NewRootCommand(version string) *cobra.Command {
	a := &app{v: config.New()}
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "pdfoutline",
		Short: "Extract the outline and tables of PDF documents",
		Long: `pdfoutline reads PDF documents and writes one JSON record per document:
the title, a nested outline of H1-H3 sections with their body text, the
tables found in the page text, and a confidence score.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (PDFOUTLINE_*)
  3. Config file (~/.pdfoutline/config.yaml)
  4. Defaults`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.pdfoutline/config.yaml)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", defaults.Log.JSON, "log in JSON")
	flags.Bool("log-source", defaults.Log.Source, "include the caller in log records")
	flags.StringSlice("backends", defaults.Backends, "backend priority list")
	flags.Duration("backend-timeout", defaults.BackendTimeout, "time each backend gets before the next is tried")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.json", flags.Lookup("log-json"))
	_ = a.v.BindPFlag("log.source", flags.Lookup("log-source"))
	_ = a.v.BindPFlag("backends", flags.Lookup("backends"))
	_ = a.v.BindPFlag("backend_timeout", flags.Lookup("backend-timeout"))

	root.AddCommand(
		newProcessCommand(a),
		newBatchCommand(a),
		newSchemaCommand(),
		newConfigCommand(a),
		newVersionCommand(version),
	)
	return root
}

// initConfig reads the config file and environment, then sets up logging
func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".pdfoutline"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.SetupLogger(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Source, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	a.log = log
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))

	if used := a.v.ConfigFileUsed(); used != "" {
		log.Debug("using config file", "path", used)
	}
	return nil
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pdfoutline %s\n", version)
		},
	}
}
