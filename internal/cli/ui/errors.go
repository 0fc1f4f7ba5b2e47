package ui

import (
	"strings"

	"github.com/fatih/color"

	verrors "github.com/shelfdata/shelfcheck/validator/errors"
)

// ReportOptions configures the validation report formatting
type ReportOptions struct {
	Path    string
	Err     error
	NoColor bool
}

// FormatResult renders one validation outcome for the terminal
//
// Example output:
//
//	✗ INVALID: ./objects/frame
//	   out_of_range_index: code 7 at position 3 is out of range for 4 levels
//	   at: column_data → column 2 → codes
func FormatResult(opts ReportOptions) string {
	var b strings.Builder

	okColor := color.New(color.FgGreen, color.Bold)
	headerColor := color.New(color.FgRed, color.Bold)
	bodyColor := color.New(color.FgRed)
	dimColor := color.New(color.Faint)

	if opts.NoColor {
		okColor.DisableColor()
		headerColor.DisableColor()
		bodyColor.DisableColor()
		dimColor.DisableColor()
	}

	if opts.Err == nil {
		okColor.Fprintf(&b, "✓ VALID: %s\n", opts.Path)
		return b.String()
	}

	headerColor.Fprintf(&b, "✗ INVALID: %s\n", opts.Path)

	if ve, ok := opts.Err.(*verrors.ValidationError); ok {
		bodyColor.Fprintf(&b, "   %s: %s\n", ve.Kind, ve.Message)
		if chain := frameChain(ve); chain != "" {
			dimColor.Fprintf(&b, "   at: %s\n", chain)
		}
	} else {
		bodyColor.Fprintf(&b, "   %s\n", opts.Err.Error())
	}
	return b.String()
}

// frameChain renders the context frames from the root object down to
// the failing leaf.
func frameChain(ve *verrors.ValidationError) string {
	if len(ve.Frames) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ve.Frames))
	for i := len(ve.Frames) - 1; i >= 0; i-- {
		f := ve.Frames[i]
		switch {
		case f.Role != "":
			parts = append(parts, f.Role)
		default:
			parts = append(parts, f.Path)
		}
	}
	return strings.Join(parts, " → ")
}

// FormatSummary renders the tally after validating several objects
func FormatSummary(total, failed int, noColor bool) string {
	c := color.New(color.FgGreen, color.Bold)
	if failed > 0 {
		c = color.New(color.FgRed, color.Bold)
	}
	if noColor {
		c.DisableColor()
	}
	return c.Sprintf("%d validated, %d failed\n", total, failed)
}
