package chartedit

import "fmt"

type (
	// Chart owns the timeline, the note index and the descriptive fields of a
	// single difficulty. The zero value is an empty chart with no key amount
	// set; notes can be added once SetKeyAmount has been called.
	Chart struct {
		Artist           string
		ArtistUnicode    string
		SongTitle        string
		SongTitleUnicode string
		Charter          string
		DifficultyName   string
		Source           string
		Tags             string
		BeatmapID        string
		BeatmapSetID     string
		AudioPath        string
		BackgroundPath   string
		OD               float64
		HP               float64

		// FilePath is the current on-disk location of the chart, set when the
		// chart is loaded or its metadata is applied.
		FilePath string

		keyAmount int
		timeline  Timeline
		index     noteIndex

		observers []SliceObserver
		notifying bool

		pending   *historyEntry
		undoStack []historyEntry
		redoStack []historyEntry
		revision  int
	}

	// SliceObserver gets notified synchronously after every mutation, once for
	// each time slice the mutation touched. The slice is a copy; observers
	// must not mutate the chart while being notified.
	SliceObserver interface {
		OnSliceModified(slice TimeSlice)
	}

	// ObserverFunc adapts an ordinary function to a SliceObserver.
	ObserverFunc func(slice TimeSlice)
)

func (f ObserverFunc) OnSliceModified(slice TimeSlice) { f(slice) }

func (c *Chart) RegisterOnModifiedCallback(o SliceObserver) {
	c.observers = append(c.observers, o)
}

// Copy makes a deep copy of the chart fields, timeline and notes. Observers
// and the undo history are not copied.
func (c *Chart) Copy() *Chart {
	ret := *c
	ret.timeline = c.timeline.Copy()
	ret.index = c.index.copy()
	ret.observers = nil
	ret.notifying = false
	ret.pending = nil
	ret.undoStack = nil
	ret.redoStack = nil
	ret.revision = 0
	return &ret
}

func (c *Chart) KeyAmount() int { return c.keyAmount }

// SetKeyAmount changes the number of columns. It fails if any existing note
// would fall outside the new column range.
func (c *Chart) SetKeyAmount(keyAmount int) error {
	if keyAmount < 1 {
		return fmt.Errorf("%w: %d", ErrKeyAmount, keyAmount)
	}
	for _, s := range c.index.slices {
		for _, n := range s.Notes {
			if n.Column >= keyAmount {
				return fmt.Errorf("%w: note at %d ms is in column %d", ErrKeyAmount, n.TimePoint, n.Column)
			}
		}
	}
	c.keyAmount = keyAmount
	return nil
}

func (c *Chart) checkNote(n Note) error {
	if n.Column < 0 || n.Column >= c.keyAmount {
		return fmt.Errorf("%w: %d (key amount %d)", ErrColumnOutOfRange, n.Column, c.keyAmount)
	}
	switch n.Type {
	case Common, HoldEnd:
	case HoldBegin:
		if n.TimePointEnd <= n.TimePoint {
			return fmt.Errorf("%w: %d..%d", ErrInvalidHold, n.TimePoint, n.TimePointEnd)
		}
	default:
		return ErrInvalidNoteType
	}
	return nil
}

// InjectNote adds a Common or HoldEnd note. Holds are added with InjectHold.
func (c *Chart) InjectNote(timePoint, column int, noteType NoteType) error {
	if noteType == HoldBegin {
		return fmt.Errorf("%w: use InjectHold for holds", ErrInvalidNoteType)
	}
	n := Note{TimePoint: timePoint, Column: column, Type: noteType}
	if err := c.checkNote(n); err != nil {
		return err
	}
	return c.edit("InjectNote", func() error {
		c.insertNote(n)
		return nil
	})
}

// InjectHold adds a hold note. The hold is indexed only under the slice of
// its start time, so range queries that begin after the start slice do not
// see it even if the hold is still active.
func (c *Chart) InjectHold(timePointStart, timePointEnd, column int) error {
	n := Note{TimePoint: timePointStart, Column: column, Type: HoldBegin, TimePointEnd: timePointEnd}
	if err := c.checkNote(n); err != nil {
		return err
	}
	return c.edit("InjectHold", func() error {
		c.insertNote(n)
		return nil
	})
}

func (c *Chart) RemoveNote(n Note) error {
	return c.edit("RemoveNote", func() error {
		return c.removeNote(n)
	})
}

// MoveNote moves a note to a new time point and column. A hold keeps its
// length.
func (c *Chart) MoveNote(n Note, timePoint, column int) error {
	moved := n
	moved.TimePoint = timePoint
	moved.Column = column
	if n.Type == HoldBegin {
		moved.TimePointEnd = n.TimePointEnd + timePoint - n.TimePoint
	}
	if err := c.checkNote(moved); err != nil {
		return err
	}
	return c.edit("MoveNote", func() error {
		if err := c.removeNote(n); err != nil {
			return err
		}
		c.insertNote(moved)
		return nil
	})
}

// RemoveNotes removes all the given notes as a single undoable change. If
// any of them does not exist, nothing is removed.
func (c *Chart) RemoveNotes(notes []Note) error {
	return c.edit("RemoveNotes", func() error {
		for _, n := range notes {
			if err := c.removeNote(n); err != nil {
				return err
			}
		}
		return nil
	})
}

// InjectNotes adds all the given notes as a single undoable change.
func (c *Chart) InjectNotes(notes []Note) error {
	for _, n := range notes {
		if err := c.checkNote(n); err != nil {
			return err
		}
	}
	return c.edit("InjectNotes", func() error {
		for _, n := range notes {
			c.insertNote(n)
		}
		return nil
	})
}

// MirrorNotes flips the given notes horizontally, column c becoming
// KeyAmount()-1-c.
func (c *Chart) MirrorNotes(notes []Note) error {
	return c.edit("MirrorNotes", func() error {
		for _, n := range notes {
			if err := c.removeNote(n); err != nil {
				return err
			}
		}
		for _, n := range notes {
			n.Column = c.keyAmount - 1 - n.Column
			c.insertNote(n)
		}
		return nil
	})
}

func (c *Chart) InjectBpmPoint(timePoint int, beatLength float64) error {
	return c.edit("InjectBpmPoint", func() error {
		c.touchTimeline(timePoint, true)
		return c.timeline.InjectBpmPoint(timePoint, beatLength)
	})
}

func (c *Chart) RemoveBpmPoint(timePoint int) error {
	return c.edit("RemoveBpmPoint", func() error {
		c.touchTimeline(timePoint, true)
		return c.timeline.RemoveBpmPoint(timePoint)
	})
}

// InjectInheritedPoint stores an inherited timing line verbatim.
func (c *Chart) InjectInheritedPoint(timePoint int, raw string) error {
	return c.edit("InjectInheritedPoint", func() error {
		c.touchTimeline(timePoint, false)
		c.timeline.InjectInheritedPoint(timePoint, raw)
		return nil
	})
}

func (c *Chart) insertNote(n Note) {
	c.touchSlice(SliceIndex(n.TimePoint))
	c.index.insert(n)
}

func (c *Chart) removeNote(n Note) error {
	if _, _, ok := c.index.find(n); !ok {
		return fmt.Errorf("%w: %v at %d ms in column %d", ErrNoteNotFound, n.Type, n.TimePoint, n.Column)
	}
	c.touchSlice(SliceIndex(n.TimePoint))
	c.index.remove(n)
	return nil
}

// Queries

// IterateNotesInTimeRange yields the notes with begin <= TimePoint <= end in
// ascending time order, walking only the slices that intersect the range.
func (c *Chart) IterateNotesInTimeRange(begin, end int, yield func(Note) bool) {
	c.index.iterateNotes(begin, end, yield)
}

// IterateTimeSlicesInTimeRange yields copies of the existing slices that
// intersect [begin, end].
func (c *Chart) IterateTimeSlicesInTimeRange(begin, end int, yield func(TimeSlice) bool) {
	c.index.iterateSlices(begin, end, func(s *TimeSlice) bool {
		return yield(s.Copy())
	})
}

func (c *Chart) IterateAllNotes(yield func(Note) bool) {
	for _, key := range c.index.keys {
		for _, n := range c.index.slices[key].Notes {
			if !yield(n) {
				return
			}
		}
	}
}

func (c *Chart) IterateAllBpmPoints(yield func(TimingPoint) bool) {
	c.timeline.IterateBpmPoints(yield)
}

func (c *Chart) IterateInheritedPoints(yield func(InheritedPoint) bool) {
	c.timeline.IterateInheritedPoints(yield)
}

// BpmPointAt returns the tempo change in effect at timePoint.
func (c *Chart) BpmPointAt(timePoint int) (TimingPoint, bool) {
	return c.timeline.PointAt(timePoint)
}

func (c *Chart) BeatOffset(timePoint int) (float64, bool) {
	return c.timeline.BeatOffset(timePoint)
}

func (c *Chart) NoteCount() int { return c.index.count }

// Timeline returns a copy of the timing timeline.
func (c *Chart) Timeline() Timeline { return c.timeline.Copy() }
