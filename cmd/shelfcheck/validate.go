package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfdata/shelfcheck/internal/cli/config"
	"github.com/shelfdata/shelfcheck/internal/cli/ui"
	"github.com/shelfdata/shelfcheck/validator"
	verrors "github.com/shelfdata/shelfcheck/validator/errors"
)

var (
	validateNoColor bool
	validateJSON    bool
	validateVerbose bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateNoColor, "no-color", false, "Disable colored output")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Emit machine-readable JSON results")
	validateCmd.Flags().BoolVar(&validateVerbose, "verbose", false, "Show verbose output")
}

var validateCmd = &cobra.Command{
	Use:   "validate <path>...",
	Short: "Validate one or more serialized objects",
	Long: `Validate each given directory as a serialized object. The exit code
is non-zero when any object fails.

Examples:
  # Validate a single object
  shelfcheck validate ./results/frame

  # Validate several objects with JSON output
  shelfcheck validate --json ./results/*`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(validateVerbose)
		defer logger.Sync()

		noColor := validateNoColor || cfg.Output.NoColor
		failed := 0
		for _, path := range args {
			// each top-level call gets its own Options, because
			// transient scoped state makes an instance single-call
			opts := validator.NewOptions()
			opts.BlockSize = cfg.Validation.BlockSize
			opts.Parallel = cfg.Validation.Parallel

			err := validator.Validate(path, opts)
			if err != nil {
				failed++
			}
			logger.Debug("validated object", zap.String("path", path), zap.Bool("ok", err == nil))

			if validateJSON || cfg.Output.Format == "json" {
				printJSONResult(path, err)
			} else {
				fmt.Print(ui.FormatResult(ui.ReportOptions{Path: path, Err: err, NoColor: noColor}))
			}
		}

		if !validateJSON && cfg.Output.Format != "json" && len(args) > 1 {
			fmt.Print(ui.FormatSummary(len(args), failed, noColor))
		}
		if failed > 0 {
			os.Exit(1)
		}
		return nil
	},
}

// printJSONResult emits one result object per line
func printJSONResult(path string, err error) {
	out := struct {
		Path  string                   `json:"path"`
		Valid bool                     `json:"valid"`
		Error *verrors.ValidationError `json:"error,omitempty"`
	}{Path: path, Valid: err == nil}

	if err != nil {
		if ve, ok := err.(*verrors.ValidationError); ok {
			out.Error = ve
		} else {
			out.Error = &verrors.ValidationError{Message: err.Error()}
		}
	}
	raw, _ := json.Marshal(out)
	fmt.Println(string(raw))
}

// newLogger builds the CLI logger; verbose switches to development config
func newLogger(verbose bool) *zap.Logger {
	if verbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
