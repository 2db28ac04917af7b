package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhythmkit/chartedit"
	"github.com/rhythmkit/chartedit/chartio"
	"github.com/rhythmkit/chartedit/editor"
)

var newMetadata chartedit.ChartMetadata

var newCmd = &cobra.Command{
	Use:   "new --audio <file>",
	Short: "Create an empty chart for an audio file",
	Long: `New creates an empty chart in the chart folder and copies the audio and
background files there. Artist and title default to the ID3 tags of the audio
file, the folder defaults to the folder of the audio file and the key amount,
OD and HP default to the preferences.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		md := newMetadata
		if md.AudioPath == "" {
			return errors.New("--audio is required")
		}
		tags, err := chartio.MetadataFromAudioTags(md.AudioPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		if md.Artist == "" {
			md.Artist = tags.Artist
		}
		if md.SongTitle == "" {
			md.SongTitle = tags.SongTitle
		}
		if md.ChartFolderPath == "" {
			md.ChartFolderPath = tags.ChartFolderPath
		}
		cfg := editor.LoadConfig()
		if cfg.YmlError != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read preferences: %v\n", cfg.YmlError)
		}
		if md.KeyAmount == 0 {
			md.KeyAmount = cfg.KeyAmount
		}
		if md.OD == 0 {
			md.OD = cfg.OD
		}
		if md.HP == 0 {
			md.HP = cfg.HP
		}
		path, err := chartio.CreateNewChart(md)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	f := newCmd.Flags()
	f.StringVar(&newMetadata.Artist, "artist", "", "song artist")
	f.StringVar(&newMetadata.SongTitle, "title", "", "song title")
	f.StringVar(&newMetadata.Charter, "charter", "", "chart author")
	f.StringVar(&newMetadata.DifficultyName, "difficulty", "", "difficulty name")
	f.StringVar(&newMetadata.Source, "source", "", "song source")
	f.StringVar(&newMetadata.Tags, "tags", "", "space separated search tags")
	f.StringVar(&newMetadata.AudioPath, "audio", "", "audio file")
	f.StringVar(&newMetadata.BackgroundPath, "background", "", "background image")
	f.StringVar(&newMetadata.ChartFolderPath, "folder", "", "chart folder")
	f.IntVar(&newMetadata.KeyAmount, "keys", 0, "key amount")
	f.Float64Var(&newMetadata.OD, "od", 0, "overall difficulty")
	f.Float64Var(&newMetadata.HP, "hp", 0, "HP drain rate")
	rootCmd.AddCommand(newCmd)
}
