package chartedit

import (
	"math"

	"golang.org/x/exp/slices"
)

type (
	// TimingPoint is an uninherited tempo change. The tempo is stored only as
	// BeatLength (milliseconds per beat); BPM is always derived from it so the
	// two can never drift apart.
	TimingPoint struct {
		TimePoint  int
		BeatLength float64
	}

	// InheritedPoint is a non-tempo timing event (volume, hitsound changes
	// etc.). Its Raw line is opaque to the timeline and written back exactly
	// as it was read; TimePoint is only used to order the output.
	InheritedPoint struct {
		TimePoint int
		Raw       string
	}

	// Timeline is the sorted sequence of timing points of a chart.
	Timeline struct {
		points    []TimingPoint
		inherited []InheritedPoint
	}
)

// BPM returns the tempo in beats per minute.
func (p TimingPoint) BPM() float64 {
	return 60000.0 / p.BeatLength
}

// BeatLengthFromBPM converts a tempo in beats per minute to milliseconds per
// beat.
func BeatLengthFromBPM(bpm float64) float64 {
	return 60000.0 / bpm
}

func validBeatLength(beatLength float64) bool {
	return beatLength > 0 && !math.IsInf(beatLength, 0) && !math.IsNaN(beatLength)
}

// upperBound returns the index of the first point with TimePoint > t.
func (t Timeline) upperBound(timePoint int) int {
	i, _ := slices.BinarySearchFunc(t.points, timePoint, func(p TimingPoint, target int) int {
		if p.TimePoint <= target {
			return -1
		}
		return 1
	})
	return i
}

// InjectBpmPoint inserts an uninherited point. Points at the same time point
// are kept in insertion order; the last one wins on lookup.
func (t *Timeline) InjectBpmPoint(timePoint int, beatLength float64) error {
	if !validBeatLength(beatLength) {
		return ErrInvalidBeatLength
	}
	t.points = slices.Insert(t.points, t.upperBound(timePoint), TimingPoint{TimePoint: timePoint, BeatLength: beatLength})
	return nil
}

// RemoveBpmPoint removes the most recently inserted point at timePoint.
func (t *Timeline) RemoveBpmPoint(timePoint int) error {
	i := t.upperBound(timePoint) - 1
	if i < 0 || t.points[i].TimePoint != timePoint {
		return ErrPointNotFound
	}
	t.points = slices.Delete(t.points, i, i+1)
	return nil
}

func (t *Timeline) InjectInheritedPoint(timePoint int, raw string) {
	i, _ := slices.BinarySearchFunc(t.inherited, timePoint, func(p InheritedPoint, target int) int {
		if p.TimePoint <= target {
			return -1
		}
		return 1
	})
	t.inherited = slices.Insert(t.inherited, i, InheritedPoint{TimePoint: timePoint, Raw: raw})
}

// PointAt returns the nearest uninherited point at or before timePoint.
func (t Timeline) PointAt(timePoint int) (TimingPoint, bool) {
	i := t.upperBound(timePoint) - 1
	if i < 0 {
		return TimingPoint{}, false
	}
	return t.points[i], true
}

// BeatOffset returns the fractional beat position of timePoint relative to
// the tempo change in effect there.
func (t Timeline) BeatOffset(timePoint int) (float64, bool) {
	p, ok := t.PointAt(timePoint)
	if !ok {
		return 0, false
	}
	return float64(timePoint-p.TimePoint) / p.BeatLength, true
}

func (t Timeline) Len() int { return len(t.points) }

func (t Timeline) IterateBpmPoints(yield func(TimingPoint) bool) {
	for _, p := range t.points {
		if !yield(p) {
			return
		}
	}
}

func (t Timeline) IterateInheritedPoints(yield func(InheritedPoint) bool) {
	for _, p := range t.inherited {
		if !yield(p) {
			return
		}
	}
}

// Copy makes a deep copy of a Timeline.
func (t Timeline) Copy() Timeline {
	return Timeline{points: slices.Clone(t.points), inherited: slices.Clone(t.inherited)}
}
