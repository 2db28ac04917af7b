/*
Package chartedit contains the data model of a rhythm game chart editor: the
timing timeline, the time-sliced note index and the Chart aggregate that owns
both together with the descriptive metadata of the chart.

All the mutations of a chart go through the Chart, which records them into an
undo history and notifies the registered SliceObservers about every time slice
it touched. The model is not safe for concurrent use; callers own the
synchronization.
*/
package chartedit

import "errors"

var (
	ErrColumnOutOfRange  = errors.New("column out of range")
	ErrInvalidBeatLength = errors.New("beat length must be a positive finite number")
	ErrInvalidHold       = errors.New("hold must end after it begins")
	ErrInvalidNoteType   = errors.New("invalid note type")
	ErrKeyAmount         = errors.New("invalid key amount")
	ErrNoteNotFound      = errors.New("note not found")
	ErrPointNotFound     = errors.New("timing point not found")
	ErrReentrantMutation = errors.New("chart mutated from a modification observer")
)
