package chartedit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhythmkit/chartedit"
)

func TestUndoOnEmptyHistory(t *testing.T) {
	c := newChart(t, 4)
	assert.False(t, c.Undo())
	assert.Equal(t, 0, c.NoteCount())
	assert.Equal(t, 4, c.KeyAmount())
}

func TestUndoRedoNotes(t *testing.T) {
	c := newChart(t, 4)
	c.InjectNote(100, 0, chartedit.Common)
	c.InjectNote(2100, 1, chartedit.Common)
	n := collect(c, 0, 1000)[0]
	c.MoveNote(n, 3100, 2)
	require.True(t, c.Undo())
	assert.Equal(t, []chartedit.Note{n}, collect(c, 0, 1000))
	assert.Empty(t, collect(c, 3000, 4000))
	require.True(t, c.Redo())
	notes := collect(c, 3000, 4000)
	require.Len(t, notes, 1)
	assert.Equal(t, 2, notes[0].Column)
	for c.Undo() {
	}
	assert.Equal(t, 0, c.NoteCount())
	assert.False(t, c.CanUndo())
	assert.True(t, c.CanRedo())
	c.InjectNote(0, 0, chartedit.Common)
	assert.False(t, c.CanRedo(), "a new change clears the redo history")
}

func TestUndoTimeline(t *testing.T) {
	c := newChart(t, 4)
	c.InjectBpmPoint(0, 500)
	c.InjectBpmPoint(1000, 250)
	c.InjectInheritedPoint(500, "500,-100,4,0,0,50,0,0")
	c.Undo()
	inherited := 0
	c.IterateInheritedPoints(func(chartedit.InheritedPoint) bool {
		inherited++
		return true
	})
	assert.Equal(t, 0, inherited)
	c.Undo()
	p, _ := c.BpmPointAt(5000)
	assert.Equal(t, 500.0, p.BeatLength)
	assert.ErrorIs(t, c.InjectBpmPoint(0, -1), chartedit.ErrInvalidBeatLength)
	c.Undo()
	_, ok := c.BpmPointAt(5000)
	assert.False(t, ok, "a failed insert is not recorded in the history")
}

func TestUndoHistoryIsCapped(t *testing.T) {
	c := newChart(t, 4)
	for i := 0; i < chartedit.MaxUndo+10; i++ {
		c.InjectNote(i*10, 0, chartedit.Common)
	}
	undos := 0
	for c.Undo() {
		undos++
	}
	assert.Equal(t, chartedit.MaxUndo, undos)
	assert.Equal(t, 10, c.NoteCount())
}

func TestClearHistory(t *testing.T) {
	c := newChart(t, 4)
	c.InjectNote(0, 0, chartedit.Common)
	c.ClearHistory()
	assert.False(t, c.Undo())
}

func TestObserverNotifiedPerSlice(t *testing.T) {
	c := newChart(t, 4)
	var got []int
	c.RegisterOnModifiedCallback(chartedit.ObserverFunc(func(s chartedit.TimeSlice) {
		got = append(got, s.Index)
	}))
	c.InjectNote(1500, 0, chartedit.Common)
	require.Equal(t, []int{1}, got)
	got = nil
	n := collect(c, 0, 2000)[0]
	c.MoveNote(n, 4200, 0)
	require.Equal(t, []int{1, 4}, got)
	got = nil
	c.Undo()
	require.Len(t, got, 2)
	c.InjectNote(9000, 0, chartedit.Common)
	got = nil
	c.InjectBpmPoint(4000, 500)
	assert.Equal(t, []int{9}, got, "a tempo change notifies the slices from its time point on")
}

func TestObserverSeesSliceAfterMutation(t *testing.T) {
	c := newChart(t, 4)
	var last chartedit.TimeSlice
	c.RegisterOnModifiedCallback(chartedit.ObserverFunc(func(s chartedit.TimeSlice) {
		last = s
	}))
	c.InjectNote(10, 0, chartedit.Common)
	c.InjectNote(20, 1, chartedit.Common)
	require.Len(t, last.Notes, 2)
	c.RemoveNote(last.Notes[0])
	c.RemoveNote(last.Notes[0])
	assert.Equal(t, 0, last.Index)
	assert.Empty(t, last.Notes, "removing the last note reports an empty slice")
}

func TestReentrantMutationRejected(t *testing.T) {
	c := newChart(t, 4)
	var innerErr error
	undone := true
	c.RegisterOnModifiedCallback(chartedit.ObserverFunc(func(s chartedit.TimeSlice) {
		innerErr = c.InjectNote(s.Start()+1, 1, chartedit.Common)
		undone = c.Undo()
	}))
	require.NoError(t, c.InjectNote(0, 0, chartedit.Common))
	assert.ErrorIs(t, innerErr, chartedit.ErrReentrantMutation)
	assert.False(t, undone, "nested Undo")
	assert.Equal(t, 1, c.NoteCount())
}

func TestRevision(t *testing.T) {
	c := newChart(t, 4)
	r := c.Revision()
	require.Error(t, c.InjectNote(0, 7, chartedit.Common))
	assert.Equal(t, r, c.Revision(), "failed edit")
	c.InjectBpmPoint(0, 500)
	c.Undo()
	c.Redo()
	assert.Equal(t, r+3, c.Revision())
	c.Undo()
	require.False(t, c.Undo())
	assert.Equal(t, r+4, c.Revision())
}
