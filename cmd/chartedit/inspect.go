package main

import (
	"fmt"
	"math"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/spf13/cobra"

	"github.com/rhythmkit/chartedit"
	"github.com/rhythmkit/chartedit/chartio"
)

const summaryTemplate = `{{ .Chart.Artist }} - {{ .Chart.SongTitle }} [{{ .Chart.DifficultyName }}]
{{- with .Chart.Charter }} by {{ . }}{{ end }}
file:        {{ .Chart.FilePath }}
audio:       {{ with .Chart.AudioPath }}{{ base . }}{{ else }}-{{ end }}
background:  {{ with .Chart.BackgroundPath }}{{ base . }}{{ else }}-{{ end }}
keys:        {{ .Chart.KeyAmount }}
difficulty:  OD {{ .Chart.OD }}, HP {{ .Chart.HP }}
notes:       {{ .Notes }} ({{ .Holds }} holds)
{{- if .TempoChanges }}
bpm:         {{ if eq .MinBPM .MaxBPM }}{{ printf "%.2f" .MinBPM }}{{ else }}{{ printf "%.2f" .MinBPM }}-{{ printf "%.2f" .MaxBPM }}{{ end }} ({{ .TempoChanges }} tempo {{ if eq .TempoChanges 1 }}change{{ else }}changes{{ end }})
{{- end }}
{{- if .Notes }}
length:      {{ .FirstNote }}-{{ .LastNote }} ms
{{- end }}
{{- with .Chart.Tags }}
tags:        {{ . | splitList " " | join ", " }}
{{- end }}
`

var summary = template.Must(template.New("summary").Funcs(sprig.TxtFuncMap()).Parse(summaryTemplate))

// chartSummary is the data the summary template is executed with.
type chartSummary struct {
	Chart               *chartedit.Chart
	Notes, Holds        int
	TempoChanges        int
	MinBPM, MaxBPM      float64
	FirstNote, LastNote int
}

func summarize(c *chartedit.Chart) chartSummary {
	s := chartSummary{Chart: c, MinBPM: math.Inf(1), MaxBPM: math.Inf(-1)}
	c.IterateAllBpmPoints(func(p chartedit.TimingPoint) bool {
		s.TempoChanges++
		s.MinBPM = math.Min(s.MinBPM, p.BPM())
		s.MaxBPM = math.Max(s.MaxBPM, p.BPM())
		return true
	})
	c.IterateAllNotes(func(n chartedit.Note) bool {
		if s.Notes == 0 {
			s.FirstNote, s.LastNote = n.TimePoint, n.TimePoint
		}
		s.Notes++
		end := n.TimePoint
		if n.IsHold() {
			s.Holds++
			end = n.TimePointEnd
		}
		s.LastNote = max(s.LastNote, end)
		return true
	})
	return s
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <chart>",
	Short: "Print a summary of a chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chartio.Load(args[0])
		if err != nil {
			return err
		}
		if err := summary.Execute(cmd.OutOrStdout(), summarize(c)); err != nil {
			return fmt.Errorf("could not print summary: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
