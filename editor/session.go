// Package editor holds the state of an editing session around a chart: the
// open chart, the selection, the cursor, the clipboard and the alerts shown
// to the user. Front ends drive a Session through its Actions and methods.
package editor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/rhythmkit/chartedit"
	"github.com/rhythmkit/chartedit/chartio"
)

// Session is a single-threaded editing session. All methods must be called
// from the same goroutine.
type Session struct {
	cfg    Config
	alerts Alerts

	chart *chartedit.Chart
	snaps *SnapCache

	selection []chartedit.Note
	clipboard []chartedit.Note
	cursor    int
	snap      int

	// chart revisions at the last save and the last recovery save
	savedRevision    int
	recoveryRevision int
	recoveryFilePath string
}

func NewSession(cfg Config) *Session {
	s := &Session{cfg: cfg, recoveryFilePath: cfg.RecoveryFilePath()}
	s.alerts.defaultDuration = cfg.AlertDuration
	if len(cfg.SnapDivisors) > 0 {
		s.snap = cfg.SnapDivisors[0]
	}
	if cfg.YmlError != nil {
		s.alerts.Add(fmt.Sprintf("Error reading preferences: %v", cfg.YmlError), Warning)
	}
	return s
}

func (s *Session) Alerts() *Alerts { return &s.alerts }
func (s *Session) Chart() *chartedit.Chart { return s.chart }
func (s *Session) Snaps() *SnapCache { return s.snaps }
func (s *Session) Cursor() int { return s.cursor }

func (s *Session) ChangedSinceSave() bool {
	return s.chart != nil && s.chart.Revision() != s.savedRevision
}

func (s *Session) ChangedSinceRecovery() bool {
	return s.chart != nil && s.chart.Revision() != s.recoveryRevision
}

func (s *Session) FilePath() string {
	if s.chart == nil {
		return ""
	}
	return s.chart.FilePath
}

// Open loads a chart, replacing the current one. On failure the current
// chart stays open and an error alert is shown.
func (s *Session) Open(path string) bool {
	chart, err := chartio.Load(path)
	if err != nil {
		s.alerts.Add(fmt.Sprintf("Error opening chart: %v", err), Error)
		return false
	}
	s.setChart(chart)
	s.alerts.Add("Opened "+path, Info)
	return true
}

func (s *Session) setChart(chart *chartedit.Chart) {
	s.chart = chart
	s.snaps = NewSnapCache(chart, s.cfg.SnapDivisors)
	chart.RegisterOnModifiedCallback(s.snaps)
	s.selection = nil
	s.cursor = 0
	s.savedRevision = chart.Revision()
	s.recoveryRevision = chart.Revision()
}

// NewChart creates a chart file from the metadata and opens it. A zero key
// amount, OD or HP is taken from the preferences.
func (s *Session) NewChart(md chartedit.ChartMetadata) bool {
	if md.KeyAmount == 0 {
		md.KeyAmount = s.cfg.KeyAmount
	}
	if md.OD == 0 {
		md.OD = s.cfg.OD
	}
	if md.HP == 0 {
		md.HP = s.cfg.HP
	}
	path, err := chartio.CreateNewChart(md)
	if err != nil {
		s.alerts.Add(fmt.Sprintf("Error creating chart: %v", err), Error)
		return false
	}
	return s.Open(path)
}

// Metadata returns the metadata of the open chart.
func (s *Session) Metadata() (chartedit.ChartMetadata, bool) {
	if s.chart == nil {
		return chartedit.ChartMetadata{}, false
	}
	return chartio.GetChartMetadata(s.chart), true
}

// SetMetadata applies new metadata to the open chart, which also saves it
// under its new name.
func (s *Session) SetMetadata(md chartedit.ChartMetadata) bool {
	if s.chart == nil {
		s.alerts.Add("No chart open", Error)
		return false
	}
	path, err := chartio.SetChartMetadata(s.chart, md)
	if err != nil {
		s.alerts.Add(fmt.Sprintf("Error applying metadata: %v", err), Error)
		return false
	}
	s.savedRevision = s.chart.Revision()
	s.alerts.Add("Saved "+path, Info)
	return true
}

// Select replaces the selection with the notes in [begin, end]. The bounds
// may be given in either order.
func (s *Session) Select(begin, end int) {
	s.selection = s.selection[:0]
	if s.chart == nil {
		return
	}
	if begin > end {
		begin, end = end, begin
	}
	s.chart.IterateNotesInTimeRange(begin, end, func(n chartedit.Note) bool {
		s.selection = append(s.selection, n)
		return true
	})
}

// Selection returns a copy of the selected notes in time order.
func (s *Session) Selection() []chartedit.Note {
	return slices.Clone(s.selection)
}

func (s *Session) SetCursor(timePoint int) { s.cursor = timePoint }

// GoToTimePoint moves the cursor to a time given in milliseconds as typed by
// the user.
func (s *Session) GoToTimePoint(text string) bool {
	t, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		s.alerts.Add(fmt.Sprintf("Invalid time point %q", text), Error)
		return false
	}
	s.cursor = t
	return true
}

// Snap returns the beat division new notes are placed on.
func (s *Session) Snap() int { return s.snap }

// NextSnap and PreviousSnap step through the configured snap divisors.
func (s *Session) NextSnap() int { return s.stepSnap(1) }
func (s *Session) PreviousSnap() int { return s.stepSnap(-1) }

func (s *Session) stepSnap(delta int) int {
	if len(s.cfg.SnapDivisors) == 0 {
		return s.snap
	}
	i := slices.Index(s.cfg.SnapDivisors, s.snap)
	i = max(0, min(i+delta, len(s.cfg.SnapDivisors)-1))
	s.snap = s.cfg.SnapDivisors[i]
	s.alerts.AddNamed("Snap", fmt.Sprintf("Snap %d", s.snap), Info)
	return s.snap
}

// SaveRecovery writes the open chart to the recovery file if it has changed
// since the last recovery save.
func (s *Session) SaveRecovery() error {
	if !s.ChangedSinceRecovery() {
		return nil
	}
	if s.recoveryFilePath == "" {
		return errors.New("no recovery file path")
	}
	var buf bytes.Buffer
	if err := chartio.Encode(chartio.FormatOsu, &buf, s.chart); err != nil {
		return fmt.Errorf("could not encode recovery data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.recoveryFilePath), os.ModePerm); err != nil {
		return fmt.Errorf("could not create recovery folder: %w", err)
	}
	if err := os.WriteFile(s.recoveryFilePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write recovery file: %w", err)
	}
	s.recoveryRevision = s.chart.Revision()
	return nil
}

func (s *Session) RecoveryFilePath() string { return s.recoveryFilePath }
