// Package chartio reads and writes charts in the supported file formats and
// applies chart metadata on disk.
//
// Loading dispatches on the file extension: .osu and .qua are parsed, .sm is
// recognised but not implemented. Saving always writes the .osu format to the
// recorded path, whatever format the chart was loaded from.
package chartio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rhythmkit/chartedit"
)

// Format is one of the chart formats known by extension.
type Format int

const (
	FormatUnknown Format = iota
	FormatOsu
	FormatQuaver
	FormatStepmania
)

var (
	ErrUnreadable        = errors.New("chart file could not be read")
	ErrUnsupportedFormat = errors.New("unsupported chart format")
	ErrNotImplemented    = errors.New("chart format not implemented")
	ErrMalformed         = errors.New("malformed chart file")
	ErrNoFilePath        = errors.New("chart has no file path")
)

// SyntaxError reports the line of a chart file that could not be parsed.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformed }

// FormatOf determines the format of a chart file from its extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osu":
		return FormatOsu
	case ".qua":
		return FormatQuaver
	case ".sm":
		return FormatStepmania
	}
	return FormatUnknown
}

func (f Format) String() string {
	switch f {
	case FormatOsu:
		return "osu"
	case FormatQuaver:
		return "qua"
	case FormatStepmania:
		return "sm"
	}
	return "unknown"
}

// Extension returns the file extension of the format, including the dot.
func (f Format) Extension() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + f.String()
}

// Load parses the chart file at path and records path as its location. The
// returned chart has an empty undo history.
func Load(path string) (*chartedit.Chart, error) {
	format := FormatOf(path)
	switch format {
	case FormatUnknown:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	case FormatStepmania:
		return nil, fmt.Errorf("%w: %v", ErrNotImplemented, format)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	chart, err := Decode(format, bytes.NewReader(b), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("could not load %v: %w", path, err)
	}
	chart.FilePath = path
	return chart, nil
}

// Decode parses a chart in the given format. Media paths in the chart are
// resolved relative to dir.
func Decode(format Format, r io.Reader, dir string) (*chartedit.Chart, error) {
	var (
		chart *chartedit.Chart
		err   error
	)
	switch format {
	case FormatOsu:
		chart, err = decodeOsu(r, dir)
	case FormatQuaver:
		chart, err = decodeQua(r, dir)
	case FormatStepmania:
		return nil, fmt.Errorf("%w: %v", ErrNotImplemented, format)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	chart.ClearHistory()
	return chart, nil
}

// Encode writes the chart in the given format.
func Encode(format Format, w io.Writer, chart *chartedit.Chart) error {
	switch format {
	case FormatOsu:
		return encodeOsu(w, chart)
	case FormatQuaver, FormatStepmania:
		return fmt.Errorf("%w: writing %v", ErrNotImplemented, format)
	}
	return ErrUnsupportedFormat
}

// Save writes the chart in the .osu format to its recorded file path, even
// if the path has another extension.
func Save(chart *chartedit.Chart) error {
	if chart.FilePath == "" {
		return ErrNoFilePath
	}
	var buf bytes.Buffer
	if err := encodeOsu(&buf, chart); err != nil {
		return err
	}
	if err := os.WriteFile(chart.FilePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write chart file %v: %w", chart.FilePath, err)
	}
	return nil
}
