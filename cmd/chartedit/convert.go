package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rhythmkit/chartedit/chartio"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert <chart>",
	Short: "Convert a chart to .osu",
	Long: `Convert loads a chart in any supported format and writes it as .osu. By
default the output is placed next to the input with the .osu extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chartio.Load(args[0])
		if err != nil {
			return err
		}
		out := convertOut
		if out == "" {
			out = args[0]
		}
		out = strings.TrimSuffix(out, filepath.Ext(out)) + chartio.FormatOsu.Extension()
		if dir := filepath.Dir(out); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("could not create output directory: %w", err)
			}
		}
		c.FilePath = out
		if err := chartio.Save(c); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.FilePath)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "output", "o", "", "output file; the extension is always .osu")
	rootCmd.AddCommand(convertCmd)
}
