package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfdata/shelfcheck/internal/cli/config"
	"github.com/shelfdata/shelfcheck/internal/cli/ui"
	"github.com/shelfdata/shelfcheck/internal/watch"
	"github.com/shelfdata/shelfcheck/validator"
)

var watchVerbose bool

func init() {
	watchCmd.Flags().BoolVar(&watchVerbose, "verbose", false, "Show verbose output")
}

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Re-validate an object whenever its files change",
	Long: `Watch an object directory and re-run validation after every change,
for iterating on writers that produce the on-disk format.

Examples:
  shelfcheck watch ./results/experiment`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(watchVerbose)
		defer logger.Sync()

		revalidate := func() error {
			err := validator.Validate(path, validator.NewOptions())
			fmt.Print(ui.FormatResult(ui.ReportOptions{Path: path, Err: err, NoColor: cfg.Output.NoColor}))
			return nil
		}

		debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
		w, err := watch.New(path, debounce, logger, revalidate)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		// validate once up front, then wait for changes
		revalidate()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		return nil
	},
}
