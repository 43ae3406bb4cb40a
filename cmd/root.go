// Package cmd implements the CLI commands for pagenote using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagenote/config"
	"github.com/gaurav-prasanna/pagenote/core/notebook"
	"github.com/gaurav-prasanna/pagenote/logger"
)

var (
	cfg     = config.Default()
	logData *logger.LogData
	log     = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "pagenote",
	Short: "A notebook of editable pages and saved web articles",
	Long: `pagenote keeps a notebook of pages on disk: editable notes, and web
articles downloaded together with their images. Deleted pages go to a
recycle bin and can be restored.

Usage:
  pagenote list
  pagenote download <url>
  pagenote search <keywords...>`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		build := logger.New().Level(cfg.LogLevel)
		if cfg.LogFile != "" {
			build = build.FromPath(cfg.LogFile)
		}
		var err error
		logData, err = build.Make()
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		log = logData.Logger
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logData == nil {
			return nil
		}
		return logData.Close()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.DataDir, "data_dir", cfg.DataDir, "Directory holding pages and the recycle bin")
	flags.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Maximum simultaneous downloads")
	flags.IntVar(&cfg.MaxLinks, "max_links", cfg.MaxLinks, "Maximum links followed by one crawl")
	flags.BoolVar(&cfg.SameDomain, "same_domain", cfg.SameDomain, "Only crawl links on the root page's host")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request HTTP timeout")
	flags.StringVar(&cfg.UserAgent, "user_agent", cfg.UserAgent, "User-Agent sent with every request")
	flags.StringVar(&cfg.LogLevel, "log_level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&cfg.LogFile, "log_file", cfg.LogFile, "Append logs to this file instead of stderr")
}

// openNotebook loads the notebook under --data_dir.
func openNotebook(opts ...notebook.Option) (*notebook.Notebook, error) {
	opts = append([]notebook.Option{notebook.WithLogger(log)}, opts...)
	nb, err := notebook.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening notebook in %s: %w", cfg.DataDir, err)
	}
	return nb, nil
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
