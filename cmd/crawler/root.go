package main

import (
	"fmt"
	"os"

	"github.com/alvmarrod/web-spider/internal/config"
	"github.com/alvmarrod/web-spider/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootOptions is shared by every subcommand. cfg is loaded before any
// subcommand runs.
type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	log        *logrus.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "crawler",
		Short: "Domain-graph web spider",
		Long: `crawler walks the web one domain at a time, honouring each domain's
robots policy, and records which domains link to which.

Run "crawl" for a one-shot crawl or "serve" to grow the graph over HTTP.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (overrides log_level)")

	cmd.AddCommand(NewCrawlCmd(opts))
	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// load reads the configuration and sets up logging
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	o.cfg = cfg
	o.log = log
	return nil
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
