package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhythmkit/chartedit/chartio"
)

var midiOut string

var midiCmd = &cobra.Command{
	Use:   "midi <chart> -o <file.mid>",
	Short: "Write a MIDI preview of a chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if midiOut == "" {
			return errors.New("--output is required")
		}
		c, err := chartio.Load(args[0])
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := chartio.WriteMIDI(&buf, c); err != nil {
			return err
		}
		if err := os.WriteFile(midiOut, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("could not write file %v: %w", midiOut, err)
		}
		return nil
	},
}

func init() {
	midiCmd.Flags().StringVarP(&midiOut, "output", "o", "", "output .mid file")
	rootCmd.AddCommand(midiCmd)
}
