package chartio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/rhythmkit/chartedit"
)

// ErrNoAudio is returned when metadata is applied without an audio file.
var ErrNoAudio = errors.New("chart metadata has no audio file")

// GetChartMetadata returns the descriptive fields of the chart. The folder is
// the directory of the chart file.
func GetChartMetadata(c *chartedit.Chart) chartedit.ChartMetadata {
	md := chartedit.ChartMetadata{
		Artist:         c.Artist,
		SongTitle:      c.SongTitle,
		Charter:        c.Charter,
		DifficultyName: c.DifficultyName,
		Source:         c.Source,
		Tags:           c.Tags,
		AudioPath:      c.AudioPath,
		BackgroundPath: c.BackgroundPath,
		KeyAmount:      c.KeyAmount(),
		OD:             c.OD,
		HP:             c.HP,
	}
	if c.FilePath != "" {
		md.ChartFolderPath = filepath.Dir(c.FilePath)
	}
	return md
}

// ChartFileName returns the canonical file name of a chart with the given
// metadata: "Artist - Title (Charter) [Difficulty].osu".
func ChartFileName(md chartedit.ChartMetadata) string {
	name := fmt.Sprintf("%s - %s (%s) [%s]", md.Artist, md.SongTitle, md.Charter, md.DifficultyName)
	name = norm.NFC.String(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return -1
		}
		return r
	}, name)
	return name + FormatOsu.Extension()
}

// SetChartMetadata applies the metadata to the chart: the audio and
// background files are copied into the chart folder, the chart is moved to
// its canonical file name there and saved. It returns the new chart path. On
// error the chart is left unchanged.
//
// The key amount of the chart is only taken from the metadata if the chart
// does not have one yet.
func SetChartMetadata(c *chartedit.Chart, md chartedit.ChartMetadata) (string, error) {
	if md.AudioPath == "" {
		return "", ErrNoAudio
	}
	next := c.Copy()
	if next.KeyAmount() == 0 {
		if err := next.SetKeyAmount(md.KeyAmount); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(md.ChartFolderPath, 0755); err != nil {
		return "", fmt.Errorf("could not create chart folder: %w", err)
	}
	audioPath, err := copyIntoFolder(md.AudioPath, md.ChartFolderPath)
	if err != nil {
		return "", fmt.Errorf("could not copy audio file: %w", err)
	}
	var backgroundPath string
	if md.BackgroundPath != "" {
		if backgroundPath, err = copyIntoFolder(md.BackgroundPath, md.ChartFolderPath); err != nil {
			return "", fmt.Errorf("could not copy background file: %w", err)
		}
	}
	if c.ArtistUnicode == "" || c.ArtistUnicode == c.Artist {
		next.ArtistUnicode = md.Artist
	}
	if c.SongTitleUnicode == "" || c.SongTitleUnicode == c.SongTitle {
		next.SongTitleUnicode = md.SongTitle
	}
	next.Artist = md.Artist
	next.SongTitle = md.SongTitle
	next.Charter = md.Charter
	next.DifficultyName = md.DifficultyName
	next.Source = md.Source
	next.Tags = md.Tags
	next.AudioPath = audioPath
	next.BackgroundPath = backgroundPath
	next.OD = md.OD
	next.HP = md.HP
	next.FilePath = filepath.Join(md.ChartFolderPath, ChartFileName(md))
	if err := Save(next); err != nil {
		return "", err
	}
	if c.KeyAmount() != next.KeyAmount() {
		if err := c.SetKeyAmount(next.KeyAmount()); err != nil {
			return "", err
		}
	}
	c.Artist, c.ArtistUnicode = next.Artist, next.ArtistUnicode
	c.SongTitle, c.SongTitleUnicode = next.SongTitle, next.SongTitleUnicode
	c.Charter = next.Charter
	c.DifficultyName = next.DifficultyName
	c.Source = next.Source
	c.Tags = next.Tags
	c.AudioPath = next.AudioPath
	c.BackgroundPath = next.BackgroundPath
	c.OD = next.OD
	c.HP = next.HP
	c.FilePath = next.FilePath
	return c.FilePath, nil
}

// CreateNewChart writes an empty chart with the given metadata and returns
// its path.
func CreateNewChart(md chartedit.ChartMetadata) (string, error) {
	return SetChartMetadata(new(chartedit.Chart), md)
}

// copyIntoFolder copies the file into folder, keeping its base name, and
// returns the path of the copy. Nothing is copied if the file already is in
// the folder.
func copyIntoFolder(path, folder string) (string, error) {
	target := filepath.Join(folder, filepath.Base(path))
	if same, err := sameFile(path, target); err != nil {
		return "", err
	} else if same {
		return target, nil
	}
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()
	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return target, nil
}

func sameFile(a, b string) (bool, error) {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true, nil
	}
	sa, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	sb, err := os.Stat(b)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return os.SameFile(sa, sb), nil
}
