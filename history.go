package chartedit

import (
	"golang.org/x/exp/slices"
)

// MaxUndo is the number of changes the undo history keeps.
const MaxUndo = 64

// historyEntry stores the state of everything a change touched, as it was
// before the change: the notes of each touched slice (nil for a slice that
// did not exist) and the timeline, if it was touched.
type historyEntry struct {
	name      string
	slices    map[int][]Note
	timeline  *Timeline
	tempo     bool // tempo changed; slices from tempoFrom on are affected
	tempoFrom int
}

// edit runs fn as one undoable change. If fn fails, everything it touched is
// restored and no history entry is recorded.
func (c *Chart) edit(name string, fn func() error) error {
	if c.notifying {
		return ErrReentrantMutation
	}
	c.pending = &historyEntry{name: name, slices: map[int][]Note{}}
	if err := fn(); err != nil {
		c.apply(*c.pending)
		c.pending = nil
		return err
	}
	e := *c.pending
	c.pending = nil
	if len(e.slices) == 0 && e.timeline == nil {
		return nil
	}
	c.undoStack = pushEntry(c.undoStack, e)
	c.redoStack = c.redoStack[:0]
	c.revision++
	c.notify(e)
	return nil
}

func (c *Chart) touchSlice(key int) {
	if _, ok := c.pending.slices[key]; !ok {
		c.pending.slices[key] = c.index.snapshot(key)
	}
}

func (c *Chart) touchTimeline(timePoint int, tempo bool) {
	if c.pending.timeline == nil {
		t := c.timeline.Copy()
		c.pending.timeline = &t
	}
	if tempo && (!c.pending.tempo || timePoint < c.pending.tempoFrom) {
		c.pending.tempo = true
		c.pending.tempoFrom = timePoint
	}
}

func pushEntry(stack []historyEntry, e historyEntry) []historyEntry {
	if len(stack) >= MaxUndo {
		copy(stack, stack[len(stack)-MaxUndo+1:])
		stack = stack[:MaxUndo-1]
	}
	return append(stack, e)
}

// apply restores the state stored in an entry.
func (c *Chart) apply(e historyEntry) {
	for key, notes := range e.slices {
		c.index.restore(key, notes)
	}
	if e.timeline != nil {
		c.timeline = e.timeline.Copy()
	}
}

// capture records the current state of everything e covers, i.e. the entry
// that reverts applying e.
func (c *Chart) capture(e historyEntry) historyEntry {
	ret := historyEntry{name: e.name, slices: make(map[int][]Note, len(e.slices)), tempo: e.tempo, tempoFrom: e.tempoFrom}
	for key := range e.slices {
		ret.slices[key] = c.index.snapshot(key)
	}
	if e.timeline != nil {
		t := c.timeline.Copy()
		ret.timeline = &t
	}
	return ret
}

// Undo reverts the most recent change. It returns false if there is nothing
// to undo, which leaves the chart unchanged.
func (c *Chart) Undo() bool {
	if c.notifying || len(c.undoStack) == 0 {
		return false
	}
	e := c.undoStack[len(c.undoStack)-1]
	c.undoStack = c.undoStack[:len(c.undoStack)-1]
	c.redoStack = pushEntry(c.redoStack, c.capture(e))
	c.apply(e)
	c.revision++
	c.notify(e)
	return true
}

// Redo reapplies the most recently undone change.
func (c *Chart) Redo() bool {
	if c.notifying || len(c.redoStack) == 0 {
		return false
	}
	e := c.redoStack[len(c.redoStack)-1]
	c.redoStack = c.redoStack[:len(c.redoStack)-1]
	c.undoStack = pushEntry(c.undoStack, c.capture(e))
	c.apply(e)
	c.revision++
	c.notify(e)
	return true
}

func (c *Chart) CanUndo() bool { return len(c.undoStack) > 0 }

func (c *Chart) CanRedo() bool { return len(c.redoStack) > 0 }

// Revision counts the changes made to the chart, including undos and redos.
// It only ever grows, so comparing two revisions tells whether the chart was
// touched in between.
func (c *Chart) Revision() int { return c.revision }

// ClearHistory forgets all undo and redo entries, e.g. after loading.
func (c *Chart) ClearHistory() {
	c.undoStack = nil
	c.redoStack = nil
}

// notify tells the observers about every slice an entry covers. A tempo
// change affects all the slices from the changed point onwards.
func (c *Chart) notify(e historyEntry) {
	if len(c.observers) == 0 {
		return
	}
	keys := make([]int, 0, len(e.slices))
	for key := range e.slices {
		keys = append(keys, key)
	}
	if e.tempo {
		i, _ := c.index.keyPos(SliceIndex(e.tempoFrom))
		keys = append(keys, c.index.keys[i:]...)
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)
	c.notifying = true
	defer func() { c.notifying = false }()
	for _, key := range keys {
		s := c.index.slice(key)
		for _, o := range c.observers {
			o.OnSliceModified(s)
		}
	}
}
