package editor

import (
	"math"

	"github.com/rhythmkit/chartedit"
)

// snapTolerance is how far, in milliseconds, a note may be from a grid line
// and still count as snapped to it. Times in charts are whole milliseconds so
// any grid line falls within half a millisecond of a note placed on it.
const snapTolerance = 1.0

// SnapCache remembers, for every note, the coarsest beat division it lies on:
// 1 for notes on a beat, 2 for eighths, 3 for triplets and so on, or 0 when
// the note matches none of the divisors. The cache is kept up to date by
// registering it as an observer of the chart.
type SnapCache struct {
	chart    *chartedit.Chart
	divisors []int
	slices   map[int]map[chartedit.Note]int
}

func NewSnapCache(chart *chartedit.Chart, divisors []int) *SnapCache {
	c := &SnapCache{chart: chart, divisors: divisors}
	c.Rebuild()
	return c
}

// Rebuild recomputes the snaps of every note in the chart.
func (c *SnapCache) Rebuild() {
	c.slices = make(map[int]map[chartedit.Note]int)
	c.chart.IterateTimeSlicesInTimeRange(math.MinInt, math.MaxInt, func(s chartedit.TimeSlice) bool {
		c.OnSliceModified(s)
		return true
	})
}

func (c *SnapCache) OnSliceModified(s chartedit.TimeSlice) {
	if len(s.Notes) == 0 {
		delete(c.slices, s.Index)
		return
	}
	snaps := make(map[chartedit.Note]int, len(s.Notes))
	for _, n := range s.Notes {
		snaps[n] = c.compute(n.TimePoint)
	}
	c.slices[s.Index] = snaps
}

// Snap returns the cached divisor of a note, or 0 if the note is off grid or
// unknown.
func (c *SnapCache) Snap(n chartedit.Note) int {
	return c.slices[chartedit.SliceIndex(n.TimePoint)][n]
}

func (c *SnapCache) compute(timePoint int) int {
	p, ok := c.chart.BpmPointAt(timePoint)
	if !ok {
		return 0
	}
	beats, _ := c.chart.BeatOffset(timePoint)
	for _, d := range c.divisors {
		if d <= 0 {
			continue
		}
		steps := beats * float64(d)
		if math.Abs(steps-math.Round(steps))*p.BeatLength/float64(d) <= snapTolerance {
			return d
		}
	}
	return 0
}
