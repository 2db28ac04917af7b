package editor

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/rhythmkit/chartedit"
	"github.com/rhythmkit/chartedit/chartio"
)

type (
	// Action describes a user action that can be performed on the session,
	// initiated by calling the Do() method, usually from a menu item or a
	// shortcut. Action advertises whether it is enabled, so a front end can
	// e.g. gray out menu items when the underlying action is not allowed. The
	// underlying Doer can optionally implement the Enabler interface; if it
	// does not, the action is always allowed.
	Action struct {
		doer Doer
	}

	// Doer is an interface that defines a single Do() method, which is called
	// when an action is performed.
	Doer interface {
		Do()
	}

	// Enabler is an interface that defines a single Enabled() method, which
	// is used to check if an action is enabled or not.
	Enabler interface {
		Enabled() bool
	}
)

// Action methods

func MakeAction(doer Doer) Action {
	return Action{doer: doer}
}

func (a Action) Do() {
	e, ok := a.doer.(Enabler)
	if ok && !e.Enabled() {
		return
	}
	if a.doer != nil {
		a.doer.Do()
	}
}

func (a Action) Enabled() bool {
	if a.doer == nil {
		return false // no doer, not allowed
	}
	e, ok := a.doer.(Enabler)
	if !ok {
		return true // not enabler, always allowed
	}
	return e.Enabled()
}

// undo
type undo Session

func (s *Session) Undo() Action { return MakeAction((*undo)(s)) }
func (s *undo) Enabled() bool   { return s.chart != nil && s.chart.CanUndo() }
func (s *undo) Do() {
	s.chart.Undo()
	s.selection = nil
}

// redo
type redo Session

func (s *Session) Redo() Action { return MakeAction((*redo)(s)) }
func (s *redo) Enabled() bool   { return s.chart != nil && s.chart.CanRedo() }
func (s *redo) Do() {
	s.chart.Redo()
	s.selection = nil
}

// save
type save Session

func (s *Session) Save() Action { return MakeAction((*save)(s)) }
func (s *save) Enabled() bool   { return s.chart != nil }
func (s *save) Do() {
	if err := chartio.Save(s.chart); err != nil {
		s.alerts.Add(fmt.Sprintf("Error saving chart: %v", err), Error)
		return
	}
	s.savedRevision = s.chart.Revision()
	s.alerts.Add("Saved "+s.chart.FilePath, Info)
}

// deleteNotes
type deleteNotes Session

func (s *Session) Delete() Action     { return MakeAction((*deleteNotes)(s)) }
func (s *deleteNotes) Enabled() bool { return s.chart != nil && len(s.selection) > 0 }
func (s *deleteNotes) Do() {
	if err := s.chart.RemoveNotes(s.selection); err != nil {
		s.alerts.Add(fmt.Sprintf("Error deleting notes: %v", err), Error)
		return
	}
	s.alerts.Add(fmt.Sprintf("Deleted %d notes", len(s.selection)), Info)
	s.selection = nil
}

// copyNotes
type copyNotes Session

func (s *Session) Copy() Action     { return MakeAction((*copyNotes)(s)) }
func (s *copyNotes) Enabled() bool { return s.chart != nil && len(s.selection) > 0 }
func (s *copyNotes) Do() {
	base := s.selection[0].TimePoint
	s.clipboard = s.clipboard[:0]
	for _, n := range s.selection {
		s.clipboard = append(s.clipboard, shiftNote(n, -base))
	}
	s.alerts.Add(fmt.Sprintf("Copied %d notes", len(s.clipboard)), Info)
}

// pasteNotes pastes the clipboard at the cursor and selects the pasted notes.
type pasteNotes Session

func (s *Session) Paste() Action     { return MakeAction((*pasteNotes)(s)) }
func (s *pasteNotes) Enabled() bool { return s.chart != nil && len(s.clipboard) > 0 }
func (s *pasteNotes) Do() {
	notes := make([]chartedit.Note, len(s.clipboard))
	for i, n := range s.clipboard {
		notes[i] = shiftNote(n, s.cursor)
	}
	if err := s.chart.InjectNotes(notes); err != nil {
		s.alerts.Add(fmt.Sprintf("Error pasting notes: %v", err), Error)
		return
	}
	s.selection = notes
}

// mirror
type mirror Session

func (s *Session) Mirror() Action { return MakeAction((*mirror)(s)) }
func (s *mirror) Enabled() bool   { return s.chart != nil && len(s.selection) > 0 }
func (s *mirror) Do() {
	if err := s.chart.MirrorNotes(s.selection); err != nil {
		s.alerts.Add(fmt.Sprintf("Error mirroring notes: %v", err), Error)
		return
	}
	keyAmount := s.chart.KeyAmount()
	for i := range s.selection {
		s.selection[i].Column = keyAmount - 1 - s.selection[i].Column
	}
	slices.SortFunc(s.selection, compareNotes)
}

// selectAll
type selectAll Session

func (s *Session) SelectAll() Action { return MakeAction((*selectAll)(s)) }
func (s *selectAll) Enabled() bool   { return s.chart != nil }
func (s *selectAll) Do() {
	s.selection = s.selection[:0]
	s.chart.IterateAllNotes(func(n chartedit.Note) bool {
		s.selection = append(s.selection, n)
		return true
	})
}

func shiftNote(n chartedit.Note, delta int) chartedit.Note {
	n.TimePoint += delta
	if n.Type == chartedit.HoldBegin {
		n.TimePointEnd += delta
	}
	return n
}

func compareNotes(a, b chartedit.Note) int {
	if a.TimePoint != b.TimePoint {
		return a.TimePoint - b.TimePoint
	}
	return a.Column - b.Column
}
