package editor_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythmkit/chartedit"
	"github.com/rhythmkit/chartedit/editor"
)

func newSession(t *testing.T) *editor.Session {
	t.Helper()
	cfg := editor.DefaultConfig()
	cfg.RecoveryFile = filepath.Join(t.TempDir(), "recovery.osu")
	s := editor.NewSession(cfg)
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio.mp3")
	require.NoError(t, os.WriteFile(audio, []byte{}, 0644))
	md := chartedit.ChartMetadata{
		Artist:          "A",
		SongTitle:       "T",
		Charter:         "C",
		DifficultyName:  "D",
		ChartFolderPath: filepath.Join(dir, "chart"),
		AudioPath:       audio,
	}
	if !s.NewChart(md) {
		a, _ := s.Alerts().Latest()
		require.FailNow(t, "NewChart failed", a.Message)
	}
	require.NoError(t, s.Chart().InjectBpmPoint(0, 500))
	return s
}

func TestDefaultConfig(t *testing.T) {
	cfg := editor.DefaultConfig()
	assert.NoError(t, cfg.YmlError)
	assert.Equal(t, 4, cfg.KeyAmount)
	assert.Equal(t, []int{1, 2, 3, 4, 6, 8, 12, 16}, cfg.SnapDivisors)
	assert.Equal(t, 3*time.Second, cfg.AlertDuration)
}

func TestActionsDisabledWithoutChart(t *testing.T) {
	s := editor.NewSession(editor.DefaultConfig())
	actions := map[string]editor.Action{
		"Undo":      s.Undo(),
		"Redo":      s.Redo(),
		"Save":      s.Save(),
		"Delete":    s.Delete(),
		"Copy":      s.Copy(),
		"Paste":     s.Paste(),
		"Mirror":    s.Mirror(),
		"SelectAll": s.SelectAll(),
	}
	for name, a := range actions {
		assert.False(t, a.Enabled(), "%s enabled without a chart", name)
		assert.NotPanics(t, a.Do, name)
	}
	_, ok := s.Metadata()
	assert.False(t, ok)
}

func TestNewChartUsesPreferences(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, 4, s.Chart().KeyAmount())
	assert.Equal(t, "A - T (C) [D].osu", filepath.Base(s.FilePath()))
	md, ok := s.Metadata()
	require.True(t, ok)
	assert.Equal(t, 8.0, md.OD)
	assert.Equal(t, 8.0, md.HP)
}

func TestEditAndSave(t *testing.T) {
	s := newSession(t)
	c := s.Chart()
	c.InjectNote(1000, 0, chartedit.Common)
	require.True(t, s.ChangedSinceSave(), "injecting a note")
	s.Save().Do()
	assert.False(t, s.ChangedSinceSave(), "after saving")
	require.True(t, s.Undo().Enabled())
	s.Undo().Do()
	assert.Equal(t, 0, c.NoteCount())
	assert.True(t, s.ChangedSinceSave(), "after undoing past the save")
	s.Redo().Do()
	assert.Equal(t, 1, c.NoteCount())
}

func TestCopyPasteMirrorDelete(t *testing.T) {
	s := newSession(t)
	c := s.Chart()
	c.InjectNote(1000, 0, chartedit.Common)
	c.InjectHold(1250, 1500, 1)
	c.InjectNote(5000, 3, chartedit.Common)

	s.Select(1500, 900)
	require.Len(t, s.Selection(), 2)
	s.Copy().Do()
	s.SetCursor(3000)
	s.Paste().Do()
	require.Equal(t, 5, c.NoteCount())
	pasted := s.Selection()
	require.Len(t, pasted, 2)
	assert.Equal(t, 3000, pasted[0].TimePoint)
	assert.Equal(t, 3250, pasted[1].TimePoint)
	assert.Equal(t, 3500, pasted[1].TimePointEnd)

	s.Mirror().Do()
	mirrored := s.Selection()
	assert.Equal(t, 3, mirrored[0].Column)
	assert.Equal(t, 2, mirrored[1].Column)
	var inChart []chartedit.Note
	c.IterateNotesInTimeRange(3000, 4000, func(n chartedit.Note) bool {
		inChart = append(inChart, n)
		return true
	})
	assert.Equal(t, mirrored, inChart)

	s.Delete().Do()
	assert.Equal(t, 3, c.NoteCount())
	assert.Empty(t, s.Selection())
	s.SelectAll().Do()
	assert.Len(t, s.Selection(), 3)
}

func TestPasteOutOfRangeAlerts(t *testing.T) {
	s := newSession(t)
	c := s.Chart()
	c.InjectNote(0, 3, chartedit.Common)
	s.Select(0, 0)
	s.Copy().Do()
	require.NoError(t, c.RemoveNote(s.Selection()[0]))
	require.NoError(t, c.SetKeyAmount(2))
	s.Paste().Do()
	a, ok := s.Alerts().Latest()
	require.True(t, ok)
	assert.Equal(t, editor.Error, a.Priority)
	assert.Equal(t, 0, c.NoteCount(), "failed paste changed the chart")
}

func TestGoToTimePoint(t *testing.T) {
	s := newSession(t)
	assert.True(t, s.GoToTimePoint(" 12345 "))
	assert.Equal(t, 12345, s.Cursor())
	assert.False(t, s.GoToTimePoint("1:00"))
	assert.Equal(t, 12345, s.Cursor(), "invalid input moved the cursor")
}

func TestSnapSteps(t *testing.T) {
	s := editor.NewSession(editor.DefaultConfig())
	require.Equal(t, 1, s.Snap())
	s.NextSnap()
	s.NextSnap()
	assert.Equal(t, 3, s.Snap())
	for i := 0; i < 20; i++ {
		s.NextSnap()
	}
	assert.Equal(t, 16, s.Snap(), "stops at the last divisor")
	s.PreviousSnap()
	assert.Equal(t, 12, s.Snap())
	assert.Equal(t, 1, s.Alerts().Len(), "snap alerts replace each other")
}

func TestSaveRecovery(t *testing.T) {
	s := newSession(t)
	path := s.RecoveryFilePath()
	require.NoError(t, s.SaveRecovery())
	require.FileExists(t, path)
	os.Remove(path)
	require.NoError(t, s.SaveRecovery())
	assert.NoFileExists(t, path, "unchanged session wrote a recovery file")
	s.Chart().InjectNote(0, 0, chartedit.Common)
	require.NoError(t, s.SaveRecovery())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[HitObjects]\n64,192,0,1,0,0:0:0:0:\n")
}

func TestSaveRecoveryFolderError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	cfg := editor.DefaultConfig()
	cfg.RecoveryFile = filepath.Join(blocker, "sub", "recovery.osu")
	s := editor.NewSession(cfg)
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio.mp3")
	require.NoError(t, os.WriteFile(audio, nil, 0644))
	require.True(t, s.NewChart(chartedit.ChartMetadata{ChartFolderPath: dir, AudioPath: audio}))
	s.Chart().InjectNote(0, 0, chartedit.Common)
	assert.ErrorContains(t, s.SaveRecovery(), "could not create recovery folder")
	assert.True(t, s.ChangedSinceRecovery())
}

func TestOpenFailureKeepsChart(t *testing.T) {
	s := newSession(t)
	c := s.Chart()
	require.False(t, s.Open(filepath.Join(t.TempDir(), "missing.osu")))
	assert.Same(t, c, s.Chart())
	a, _ := s.Alerts().Latest()
	assert.Equal(t, editor.Error, a.Priority)
}
