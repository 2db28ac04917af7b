package chartio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rhythmkit/chartedit"
)

// osu!mania lays the columns out on a 512 wide playfield.
const osuPlayfieldWidth = 512

// Hit object types read as notes. Any other type, including other flag
// combinations, is skipped.
const (
	osuTypeCircle         = 1
	osuTypeNewComboCircle = 5
	osuTypeHold           = 128
)

type osuSection int

const (
	osuNone osuSection = iota
	osuGeneral
	osuMetadata
	osuDifficulty
	osuEvents
	osuTimingPoints
	osuHitObjects
	osuOther
)

var osuSections = map[string]osuSection{
	"[General]":      osuGeneral,
	"[Metadata]":     osuMetadata,
	"[Difficulty]":   osuDifficulty,
	"[Events]":       osuEvents,
	"[TimingPoints]": osuTimingPoints,
	"[HitObjects]":   osuHitObjects,
}

type osuDecoder struct {
	chart      *chartedit.Chart
	dir        string
	line       int
	background bool
}

func decodeOsu(r io.Reader, dir string) (*chartedit.Chart, error) {
	d := osuDecoder{chart: new(chartedit.Chart), dir: dir}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	section := osuNone
	for scanner.Scan() {
		d.line++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if d.line == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if s, ok := sectionHeader(line); ok {
			section = s
			continue
		}
		var err error
		switch section {
		case osuGeneral, osuMetadata, osuDifficulty:
			if line == "" {
				section = osuNone
				continue
			}
			key, value, ok := splitKeyValue(line)
			if !ok {
				continue // not a key:value line
			}
			err = d.keyValue(section, key, value)
		case osuEvents:
			d.event(line)
		case osuTimingPoints:
			err = d.timingPoint(line)
		case osuHitObjects:
			err = d.hitObject(line)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return d.chart, nil
}

func sectionHeader(line string) (osuSection, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return osuNone, false
	}
	if s, ok := osuSections[trimmed]; ok {
		return s, true
	}
	return osuOther, true
}

// splitKeyValue splits at the first colon. At most one space after the colon
// is dropped from the value.
func splitKeyValue(line string) (key, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	value = strings.TrimPrefix(line[i+1:], " ")
	return key, value, true
}

func (d *osuDecoder) errorf(format string, args ...any) error {
	return &SyntaxError{Line: d.line, Msg: fmt.Sprintf(format, args...)}
}

func (d *osuDecoder) keyValue(section osuSection, key, value string) error {
	c := d.chart
	switch section {
	case osuGeneral:
		if key == "AudioFilename" && value != "" {
			c.AudioPath = filepath.Join(d.dir, value)
		}
	case osuMetadata:
		switch key {
		case "Title":
			c.SongTitle = value
		case "TitleUnicode":
			c.SongTitleUnicode = value
		case "Artist":
			c.Artist = value
		case "ArtistUnicode":
			c.ArtistUnicode = value
		case "Version":
			c.DifficultyName = value
		case "Creator":
			c.Charter = value
		case "Source":
			c.Source = value
		case "Tags":
			c.Tags = value
		case "BeatmapID":
			c.BeatmapID = value
		case "BeatmapSetID":
			c.BeatmapSetID = value
		}
	case osuDifficulty:
		switch key {
		case "CircleSize":
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return d.errorf("invalid CircleSize %q", value)
			}
			if err := c.SetKeyAmount(int(v)); err != nil {
				return d.errorf("CircleSize: %v", err)
			}
		case "HPDrainRate":
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return d.errorf("invalid HPDrainRate %q", value)
			}
			c.HP = v
		case "OverallDifficulty":
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return d.errorf("invalid OverallDifficulty %q", value)
			}
			c.OD = v
		}
	}
	return nil
}

// event looks for the background image: the quoted token on the first line
// that has one. Everything after it is ignored.
func (d *osuDecoder) event(line string) {
	if d.background || line == "" || strings.HasPrefix(line, "//") {
		return
	}
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end <= 0 {
		return
	}
	d.chart.BackgroundPath = filepath.Join(d.dir, line[start+1:start+1+end])
	d.background = true
}

func (d *osuDecoder) timingPoint(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return d.errorf("timing point needs at least 2 fields, got %d", len(fields))
	}
	timePoint, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return d.errorf("invalid timing point time %q", fields[0])
	}
	beatLength, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return d.errorf("invalid beat length %q", fields[1])
	}
	if beatLength < 0 {
		return d.chart.InjectInheritedPoint(int(timePoint), line)
	}
	if err := d.chart.InjectBpmPoint(int(timePoint), beatLength); err != nil {
		return d.errorf("%v", err)
	}
	return nil
}

func (d *osuDecoder) hitObject(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		return d.errorf("hit object needs at least 5 fields, got %d", len(fields))
	}
	var values [4]int
	for i, f := range [4]int{0, 2, 3, 4} {
		v, err := strconv.Atoi(strings.TrimSpace(fields[f]))
		if err != nil {
			return d.errorf("invalid hit object field %d %q", f+1, fields[f])
		}
		values[i] = v
	}
	x, timePoint, noteType := values[0], values[1], values[2]
	keyAmount := d.chart.KeyAmount()
	if keyAmount == 0 {
		return d.errorf("hit object before CircleSize")
	}
	column := int(math.Floor(float64(x) * float64(keyAmount) / osuPlayfieldWidth))
	column = max(0, min(column, keyAmount-1))
	switch noteType {
	case osuTypeHold:
		if len(fields) < 6 {
			return d.errorf("hold without end time")
		}
		endField, _, _ := strings.Cut(fields[5], ":")
		end, err := strconv.Atoi(strings.TrimSpace(endField))
		if err != nil {
			return d.errorf("invalid hold end time %q", endField)
		}
		if err := d.chart.InjectHold(timePoint, end, column); err != nil {
			return d.errorf("%v", err)
		}
	case osuTypeCircle, osuTypeNewComboCircle:
		if err := d.chart.InjectNote(timePoint, column, chartedit.Common); err != nil {
			return d.errorf("%v", err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// osuColumnX maps a column back to the centre of its lane on the playfield.
func osuColumnX(column, keyAmount int) int {
	laneWidth := float64(osuPlayfieldWidth) / float64(keyAmount)
	return int(float64(column+1)*laneWidth - laneWidth/2)
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

func encodeOsu(w io.Writer, c *chartedit.Chart) error {
	if c.KeyAmount() < 1 && c.NoteCount() > 0 {
		return chartedit.ErrKeyAmount
	}
	b := bufio.NewWriter(w)
	fmt.Fprint(b, "osu file format v14\n"+
		"\n"+
		"[General]\n"+
		"AudioFilename: "+baseName(c.AudioPath)+"\n"+
		"AudioLeadIn: 0\n"+
		"PreviewTime: 0\n"+
		"Countdown: 0\n"+
		"SampleSet: Soft\n"+
		"StackLeniency: 0.7\n"+
		"Mode: 3\n"+
		"LetterboxInBreaks: 0\n"+
		"SpecialStyle: 0\n"+
		"WidescreenStoryboard: 0\n"+
		"\n"+
		"[Editor]\n"+
		"DistanceSpacing: 1\n"+
		"BeatDivisor: 4\n"+
		"GridSize: 16\n"+
		"TimelineZoom: 1\n"+
		"\n")
	fmt.Fprintf(b, "[Metadata]\n"+
		"Title:%s\n"+
		"TitleUnicode:%s\n"+
		"Artist:%s\n"+
		"ArtistUnicode:%s\n"+
		"Creator:%s\n"+
		"Version:%s\n"+
		"Source:%s\n"+
		"Tags:%s\n"+
		"BeatmapID:%s\n"+
		"BeatmapSetID:%s\n"+
		"\n",
		c.SongTitle, c.SongTitleUnicode, c.Artist, c.ArtistUnicode, c.Charter,
		c.DifficultyName, c.Source, c.Tags, c.BeatmapID, c.BeatmapSetID)
	fmt.Fprintf(b, "[Difficulty]\n"+
		"HPDrainRate:%s\n"+
		"CircleSize:%d\n"+
		"OverallDifficulty:%s\n"+
		"ApproachRate:9\n"+
		"SliderMultiplier:1.4\n"+
		"SliderTickRate:1\n"+
		"\n",
		formatFloat(c.HP), c.KeyAmount(), formatFloat(c.OD))
	fmt.Fprint(b, "[Events]\n//Background and Video events\n")
	if bg := baseName(c.BackgroundPath); bg != "" {
		fmt.Fprintf(b, "0,0,\"%s\",0,0\n", bg)
	}
	fmt.Fprint(b, "//Break Periods\n"+
		"//Storyboard Layer 0 (Background)\n"+
		"//Storyboard Layer 1 (Fail)\n"+
		"//Storyboard Layer 2 (Pass)\n"+
		"//Storyboard Layer 3 (Foreground)\n"+
		"//Storyboard Layer 4 (Overlay)\n"+
		"//Storyboard Sound Samples\n"+
		"\n"+
		"[TimingPoints]\n")
	writeTimingPoints(b, c)
	fmt.Fprint(b, "\n\n[HitObjects]\n")
	keyAmount := c.KeyAmount()
	c.IterateAllNotes(func(n chartedit.Note) bool {
		x := osuColumnX(n.Column, keyAmount)
		switch n.Type {
		case chartedit.Common:
			fmt.Fprintf(b, "%d,192,%d,1,0,0:0:0:0:\n", x, n.TimePoint)
		case chartedit.HoldBegin:
			fmt.Fprintf(b, "%d,192,%d,128,0,%d:0:0:0:0:\n", x, n.TimePoint, n.TimePointEnd)
		}
		return true
	})
	return b.Flush()
}

// writeTimingPoints merges the tempo points and the verbatim inherited lines
// in time order, tempo points first on equal times.
func writeTimingPoints(w io.Writer, c *chartedit.Chart) {
	var inherited []chartedit.InheritedPoint
	c.IterateInheritedPoints(func(p chartedit.InheritedPoint) bool {
		inherited = append(inherited, p)
		return true
	})
	i := 0
	c.IterateAllBpmPoints(func(p chartedit.TimingPoint) bool {
		for ; i < len(inherited) && inherited[i].TimePoint < p.TimePoint; i++ {
			fmt.Fprintf(w, "%s\n", inherited[i].Raw)
		}
		fmt.Fprintf(w, "%d,%s,4,0,0,10,1,0\n", p.TimePoint, strconv.FormatFloat(p.BeatLength, 'f', -1, 64))
		return true
	})
	for ; i < len(inherited); i++ {
		fmt.Fprintf(w, "%s\n", inherited[i].Raw)
	}
}
