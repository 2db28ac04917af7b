package chartio_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythmkit/chartedit"
	"github.com/rhythmkit/chartedit/chartio"
)

const sampleOsu = "\ufeffosu file format v14\r\n" +
	"\r\n" +
	"[General]\r\n" +
	"AudioFilename: audio.mp3\r\n" +
	"Mode: 3\r\n" +
	"\r\n" +
	"[Metadata]\r\n" +
	"Title:Song\r\n" +
	"TitleUnicode:Sång\r\n" +
	"Artist:Someone\r\n" +
	"ArtistUnicode:Someone\r\n" +
	"Creator:charter\r\n" +
	"Version:Hard\r\n" +
	"Source:\r\n" +
	"Tags:a b c\r\n" +
	"BeatmapID:0\r\n" +
	"BeatmapSetID:-1\r\n" +
	"\r\n" +
	"[Difficulty]\r\n" +
	"HPDrainRate:8\r\n" +
	"CircleSize:4\r\n" +
	"OverallDifficulty:7.5\r\n" +
	"\r\n" +
	"[Events]\r\n" +
	"//Background and Video events\r\n" +
	"0,0,\"bg.jpg\",0,0\r\n" +
	"\r\n" +
	"[TimingPoints]\r\n" +
	"0,500,4,0,0,10,1,0\r\n" +
	"500,-100,4,0,0,50,0,0\r\n" +
	"2000,333.333333333333,4,0,0,10,1,0\r\n" +
	"\r\n" +
	"[HitObjects]\r\n" +
	"256,192,1000,1,0,0:0:0:0:\r\n" +
	"64,192,1500,128,0,1800:0:0:0:0:\r\n" +
	"448,192,2500,5,0,0:0:0:0:\r\n" +
	"192,192,3000,2,0,0:0:0:0:\r\n"

func decodeOsu(t *testing.T, doc string) *chartedit.Chart {
	t.Helper()
	c, err := chartio.Decode(chartio.FormatOsu, strings.NewReader(doc), "songs")
	require.NoError(t, err)
	return c
}

func allNotes(c *chartedit.Chart) []chartedit.Note {
	var ret []chartedit.Note
	c.IterateAllNotes(func(n chartedit.Note) bool {
		ret = append(ret, n)
		return true
	})
	return ret
}

func TestDecodeOsu(t *testing.T) {
	c := decodeOsu(t, sampleOsu)
	assert := assert.New(t)
	assert.Equal(4, c.KeyAmount())
	assert.Equal("Song", c.SongTitle)
	assert.Equal("Sång", c.SongTitleUnicode)
	assert.Equal("charter", c.Charter)
	assert.Equal("Hard", c.DifficultyName)
	assert.Equal("a b c", c.Tags)
	assert.Equal("-1", c.BeatmapSetID)
	assert.Equal(8.0, c.HP)
	assert.Equal(7.5, c.OD)
	assert.Equal(filepath.Join("songs", "audio.mp3"), c.AudioPath)
	assert.Equal(filepath.Join("songs", "bg.jpg"), c.BackgroundPath)
	assert.False(c.CanUndo(), "a decoded chart should have no history")

	p, ok := c.BpmPointAt(1000)
	assert.True(ok)
	assert.Equal(120.0, p.BPM())
	assert.Equal(2, c.Timeline().Len())

	notes := allNotes(c)
	require.Len(t, notes, 3)
	assert.Equal(chartedit.Note{TimePoint: 1000, Column: 2, Type: chartedit.Common}, notes[0])
	assert.Equal(chartedit.Note{TimePoint: 1500, Column: 0, Type: chartedit.HoldBegin, TimePointEnd: 1800}, notes[1])
	assert.Equal(chartedit.Note{TimePoint: 2500, Column: 3, Type: chartedit.Common}, notes[2])
}

func TestOsuColumnsRoundTrip(t *testing.T) {
	for k := 4; k <= 10; k++ {
		c := new(chartedit.Chart)
		require.NoError(t, c.SetKeyAmount(k))
		for column := 0; column < k; column++ {
			require.NoError(t, c.InjectNote(column*100, column, chartedit.Common))
		}
		var buf bytes.Buffer
		require.NoError(t, chartio.Encode(chartio.FormatOsu, &buf, c))
		d := decodeOsu(t, buf.String())
		notes := allNotes(d)
		require.Len(t, notes, k)
		for i, n := range notes {
			assert.Equal(t, i, n.Column, "key amount %d", k)
		}
	}
}

func TestOsuExportIsStable(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, chartio.Encode(chartio.FormatOsu, &first, decodeOsu(t, sampleOsu)))
	require.NoError(t, chartio.Encode(chartio.FormatOsu, &second, decodeOsu(t, first.String())))
	assert.Equal(t, first.String(), second.String())

	out := first.String()
	assert.True(t, strings.HasPrefix(out, "osu file format v14\n\n[General]\nAudioFilename: audio.mp3\n"))
	assert.Contains(t, out, "[TimingPoints]\n0,500,4,0,0,10,1,0\n500,-100,4,0,0,50,0,0\n2000,333.333333333333,4,0,0,10,1,0\n\n\n[HitObjects]\n")
	assert.Contains(t, out, "0,0,\"bg.jpg\",0,0\n")
	assert.Contains(t, out, "HPDrainRate:8\nCircleSize:4\nOverallDifficulty:7.5\n")
	assert.Contains(t, out, "320,192,1000,1,0,0:0:0:0:\n")
	assert.Contains(t, out, "64,192,1500,128,0,1800:0:0:0:0:\n")
}

func TestOsuTimingPointsMergeByTime(t *testing.T) {
	c := new(chartedit.Chart)
	require.NoError(t, c.InjectInheritedPoint(100, "100,-50,4,0,0,10,0,0"))
	require.NoError(t, c.InjectBpmPoint(100, 400))
	require.NoError(t, c.InjectBpmPoint(0, 500))
	var buf bytes.Buffer
	require.NoError(t, chartio.Encode(chartio.FormatOsu, &buf, c))
	assert.Contains(t, buf.String(), "[TimingPoints]\n0,500,4,0,0,10,1,0\n100,400,4,0,0,10,1,0\n100,-50,4,0,0,10,0,0\n\n")
}

func TestDecodeOsuMalformed(t *testing.T) {
	cases := map[string]string{
		"bad circle size": "[Difficulty]\nCircleSize:x\n",
		"short timing":    "[TimingPoints]\n100\n",
		"bad beat length": "[TimingPoints]\n100,abc,4\n",
		"short hit":       "[Difficulty]\nCircleSize:4\n\n[HitObjects]\n64,192,100\n",
		"bad hit time":    "[Difficulty]\nCircleSize:4\n\n[HitObjects]\n64,192,x,1,0\n",
		"no key amount":   "[HitObjects]\n64,192,100,1,0,0:0:0:0:\n",
		"bad hold end":    "[Difficulty]\nCircleSize:4\n\n[HitObjects]\n64,192,100,128,0,x:0:0:0:0:\n",
		"hold ends early": "[Difficulty]\nCircleSize:4\n\n[HitObjects]\n64,192,100,128,0,50:0:0:0:0:\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := chartio.Decode(chartio.FormatOsu, strings.NewReader(doc), "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, chartio.ErrMalformed), "error %v should wrap ErrMalformed", err)
			var syntaxErr *chartio.SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
		})
	}
}

func TestDecodeOsuLenient(t *testing.T) {
	doc := "[Metadata]\nnot a key value line\nTitle: spaced\n\n" +
		"[Difficulty]\nCircleSize:7\n\n" +
		"[Colours]\nCombo1 : 255,0,0\n\n" +
		"[HitObjects]\n\n600,192,10,2,0\n"
	c := decodeOsu(t, doc)
	assert.Equal(t, "spaced", c.SongTitle)
	assert.Equal(t, 7, c.KeyAmount())
	assert.Equal(t, 0, c.NoteCount(), "a hit object that is neither a circle nor a hold is ignored")
}

func TestDecodeOsuHitObjectTypes(t *testing.T) {
	cases := []struct {
		noteType int
		want     []chartedit.Note
	}{
		{1, []chartedit.Note{{TimePoint: 10, Column: 0, Type: chartedit.Common}}},
		{5, []chartedit.Note{{TimePoint: 10, Column: 0, Type: chartedit.Common}}},
		{128, []chartedit.Note{{TimePoint: 10, Column: 0, Type: chartedit.HoldBegin, TimePointEnd: 200}}},
		{3, nil},
		{21, nil},
		{129, nil},
		{132, nil},
		{2, nil},
	}
	for _, tc := range cases {
		t.Run(strconv.Itoa(tc.noteType), func(t *testing.T) {
			doc := fmt.Sprintf("[Difficulty]\nCircleSize:4\n\n[HitObjects]\n64,192,10,%d,0,200:0:0:0:0:\n", tc.noteType)
			assert.Equal(t, tc.want, allNotes(decodeOsu(t, doc)))
		})
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.osu")
	require.NoError(t, os.WriteFile(path, []byte(sampleOsu), 0644))
	c, err := chartio.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, c.FilePath)
	require.NoError(t, c.InjectNote(4000, 1, chartedit.Common))
	require.NoError(t, chartio.Save(c))
	d, err := chartio.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, d.NoteCount())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := chartio.Load(filepath.Join(dir, "missing.osu"))
	assert.ErrorIs(t, err, chartio.ErrUnreadable)

	_, err = chartio.Load(filepath.Join(dir, "chart.txt"))
	assert.ErrorIs(t, err, chartio.ErrUnsupportedFormat)

	sm := filepath.Join(dir, "chart.sm")
	require.NoError(t, os.WriteFile(sm, []byte("#TITLE:x;\n"), 0644))
	_, err = chartio.Load(sm)
	assert.ErrorIs(t, err, chartio.ErrNotImplemented)

	assert.ErrorIs(t, chartio.Save(new(chartedit.Chart)), chartio.ErrNoFilePath)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, chartio.FormatOsu, chartio.FormatOf("a/b/Chart.OSU"))
	assert.Equal(t, chartio.FormatQuaver, chartio.FormatOf("x.qua"))
	assert.Equal(t, chartio.FormatStepmania, chartio.FormatOf("x.sm"))
	assert.Equal(t, chartio.FormatUnknown, chartio.FormatOf("x"))
	assert.Equal(t, ".osu", chartio.FormatOsu.Extension())
}
