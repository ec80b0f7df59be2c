package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/v0xg/webqa/internal/config"
	"github.com/v0xg/webqa/internal/logging"
	"github.com/v0xg/webqa/internal/report"
)

var (
	configPath string
	logFile    string
	verbose    bool
	headed     bool
)

// session is what every subcommand runs with
type session struct {
	cfg      *config.Config
	log      *logrus.Logger
	recorder *report.Recorder
	closeLog func() error
}

var current *session

// errChecksFailed makes the process exit non-zero after the summary is printed
var errChecksFailed = errors.New("some checks failed")

func main() {
	rootCmd := &cobra.Command{
		Use:   "webqa",
		Short: "Smoke checks for the demo web store and the Airport Gap API",
		Long: `webqa drives the demo web store in a local Chromium through page objects
and checks the Airport Gap REST API. Every check appends its outcome to
<reports>/test_log.txt; the full session log goes to logs/.

Example:
  webqa all --config config/config.yaml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return teardown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default "+config.DefaultPath+" when present)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Session log file (default logs/test_execution_<timestamp>.log)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level and dump the page on store failures")
	rootCmd.PersistentFlags().BoolVar(&headed, "headed", false, "Show the browser window")

	rootCmd.AddCommand(storeCmd(), airportsCmd(), allCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, failColor.Sprint("✗ ")+err.Error())
		}
		_ = teardown()
		stop()
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if verbose {
		cfg.Logging.Level = logrus.DebugLevel.String()
	}
	if headed {
		cfg.Browser.Headless = false
	}

	logger, closeLog, err := logging.New(logging.Options{
		File:  cfg.Logging.File,
		Level: cfg.Logging.Level,
	})
	if err != nil {
		return err
	}

	recorder, err := report.NewRecorder(cfg.Reports.Dir, logger)
	if err != nil {
		_ = closeLog()
		return err
	}

	current = &session{cfg: cfg, log: logger, recorder: recorder, closeLog: closeLog}
	logger.Debugf("Running %s", cmd.CommandPath())
	return nil
}

func teardown() error {
	if current == nil {
		return nil
	}
	s := current
	current = nil
	return s.closeLog()
}
