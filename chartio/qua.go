package chartio

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rhythmkit/chartedit"
)

type (
	// quaFile is the subset of a Quaver map the editor understands.
	quaFile struct {
		AudioFile      string           `yaml:"AudioFile"`
		BackgroundFile string           `yaml:"BackgroundFile"`
		MapID          int              `yaml:"MapId"`
		MapSetID       int              `yaml:"MapSetId"`
		Mode           string           `yaml:"Mode"`
		Title          string           `yaml:"Title"`
		Artist         string           `yaml:"Artist"`
		Source         string           `yaml:"Source"`
		Tags           string           `yaml:"Tags"`
		Creator        string           `yaml:"Creator"`
		DifficultyName string           `yaml:"DifficultyName"`
		TimingPoints   []quaTimingPoint `yaml:"TimingPoints"`
		HitObjects     []quaHitObject   `yaml:"HitObjects"`
	}

	quaTimingPoint struct {
		StartTime float64 `yaml:"StartTime"`
		Bpm       float64 `yaml:"Bpm"`
	}

	// quaHitObject lanes are 1-based; a non-zero EndTime makes a hold.
	quaHitObject struct {
		StartTime int `yaml:"StartTime"`
		Lane      int `yaml:"Lane"`
		EndTime   int `yaml:"EndTime"`
	}
)

func decodeQua(r io.Reader, dir string) (*chartedit.Chart, error) {
	var f quaFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	c := new(chartedit.Chart)
	if f.AudioFile != "" {
		c.AudioPath = filepath.Join(dir, f.AudioFile)
	}
	if f.BackgroundFile != "" {
		c.BackgroundPath = filepath.Join(dir, f.BackgroundFile)
	}
	if f.Mode != "" {
		// Keys4, Keys7: the key amount is the last character
		k, err := strconv.Atoi(f.Mode[len(f.Mode)-1:])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid Mode %q", ErrMalformed, f.Mode)
		}
		if k == 0 {
			k = 10
		}
		if err := c.SetKeyAmount(k); err != nil {
			return nil, fmt.Errorf("%w: Mode %q: %v", ErrMalformed, f.Mode, err)
		}
	}
	c.SongTitle, c.SongTitleUnicode = f.Title, f.Title
	c.Artist, c.ArtistUnicode = f.Artist, f.Artist
	c.Source = f.Source
	c.Tags = f.Tags
	c.Charter = f.Creator
	c.DifficultyName = f.DifficultyName
	if f.MapID != 0 {
		c.BeatmapID = strconv.Itoa(f.MapID)
	}
	if f.MapSetID != 0 {
		c.BeatmapSetID = strconv.Itoa(f.MapSetID)
	}
	for i, tp := range f.TimingPoints {
		if tp.Bpm <= 0 {
			return nil, fmt.Errorf("%w: timing point %d has bpm %v", ErrMalformed, i, tp.Bpm)
		}
		if err := c.InjectBpmPoint(int(tp.StartTime), chartedit.BeatLengthFromBPM(tp.Bpm)); err != nil {
			return nil, fmt.Errorf("%w: timing point %d: %v", ErrMalformed, i, err)
		}
	}
	for i, h := range f.HitObjects {
		var err error
		if h.EndTime > 0 {
			err = c.InjectHold(h.StartTime, h.EndTime, h.Lane-1)
		} else {
			err = c.InjectNote(h.StartTime, h.Lane-1, chartedit.Common)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: hit object %d: %v", ErrMalformed, i, err)
		}
	}
	return c, nil
}
