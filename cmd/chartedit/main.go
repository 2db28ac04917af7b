package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhythmkit/chartedit/version"
)

var rootCmd = &cobra.Command{
	Use:   "chartedit",
	Short: "Inspect, convert and serve rhythm game charts",
	Long: `chartedit reads osu!mania (.osu) and Quaver (.qua) charts and writes
them back as .osu. Charts can be inspected, converted, created from an audio
file, previewed as MIDI or edited through a small HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.VersionOrHash)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chartedit: %v\n", err)
		os.Exit(1)
	}
}
