package chartedit

type (
	// Note is a single timed event in a column. TimePointEnd is meaningful
	// only for HoldBegin notes.
	Note struct {
		TimePoint    int
		Column       int
		Type         NoteType
		TimePointEnd int
	}

	NoteType int
)

const (
	Common NoteType = iota
	HoldBegin
	HoldEnd
)

func (t NoteType) String() string {
	switch t {
	case Common:
		return "Common"
	case HoldBegin:
		return "HoldBegin"
	case HoldEnd:
		return "HoldEnd"
	}
	return "Unknown"
}

// IsHold reports whether the note begins a hold.
func (n Note) IsHold() bool { return n.Type == HoldBegin }

// compareNotes orders notes by time point and then column.
func compareNotes(a, b Note) int {
	switch {
	case a.TimePoint < b.TimePoint:
		return -1
	case a.TimePoint > b.TimePoint:
		return 1
	case a.Column < b.Column:
		return -1
	case a.Column > b.Column:
		return 1
	}
	return 0
}
