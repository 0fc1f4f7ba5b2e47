package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfdata/shelfcheck/validator"
	"github.com/shelfdata/shelfcheck/validator/metadata"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Show an object's declared type and extents",
	Long: `Read an object's metadata and report its declared type, height and
dimensions without running a full validation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		meta, err := metadata.Read(path)
		if err != nil {
			return err
		}
		fmt.Printf("type: %s\n", meta.Type)

		if h, err := validator.Height(path, meta, nil); err == nil {
			fmt.Printf("height: %d\n", h)
		}
		if dims, err := validator.Dimensions(path, meta, nil); err == nil {
			parts := make([]string, len(dims))
			for i, d := range dims {
				parts[i] = fmt.Sprintf("%d", d)
			}
			fmt.Printf("dimensions: [%s]\n", strings.Join(parts, ", "))
		}
		return nil
	},
}
