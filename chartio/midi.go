package chartio

import (
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"

	"github.com/rhythmkit/chartedit"
)

const (
	midiTicksPerBeat  = 960
	midiBaseKey       = 60
	midiVelocity      = 100
	defaultBeatLength = 500 // 120 bpm, used when the chart has no tempo
)

type (
	// tempoMap converts chart milliseconds to MIDI ticks.
	tempoMap struct {
		points []chartedit.TimingPoint
		ticks  []float64 // tick position of each point
	}

	// midiEvent orders by tick, then tempo changes before note offs before
	// note ons.
	midiEvent struct {
		tick  uint32
		order int
		msg   []byte
	}
)

func newTempoMap(c *chartedit.Chart) *tempoMap {
	m := &tempoMap{}
	c.IterateAllBpmPoints(func(p chartedit.TimingPoint) bool {
		m.points = append(m.points, p)
		return true
	})
	if len(m.points) == 0 {
		m.points = []chartedit.TimingPoint{{BeatLength: defaultBeatLength}}
	}
	// everything before the first tempo change runs at its tempo, so the
	// first point sits at a positive tick if it starts late
	m.ticks = make([]float64, len(m.points))
	m.ticks[0] = math.Max(0, float64(m.points[0].TimePoint)/m.points[0].BeatLength*midiTicksPerBeat)
	for i := 1; i < len(m.points); i++ {
		prev := m.points[i-1]
		m.ticks[i] = m.ticks[i-1] + float64(m.points[i].TimePoint-prev.TimePoint)/prev.BeatLength*midiTicksPerBeat
	}
	return m
}

func (m *tempoMap) tick(timePoint int) uint32 {
	i := 0
	for i+1 < len(m.points) && m.points[i+1].TimePoint <= timePoint {
		i++
	}
	p := m.points[i]
	t := m.ticks[i] + float64(timePoint-p.TimePoint)/p.BeatLength*midiTicksPerBeat
	if t < 0 {
		return 0
	}
	return uint32(math.Round(t))
}

// WriteMIDI writes a standard MIDI file previewing the chart: one tempo event
// per tempo change and one note per chart note, column c playing key 60+c.
// Holds sound until their end, other notes for a sixteenth.
func WriteMIDI(w io.Writer, c *chartedit.Chart) error {
	m := newTempoMap(c)
	var events []midiEvent
	for i, p := range m.points {
		events = append(events, midiEvent{tick: uint32(math.Round(m.ticks[i])), msg: smf.MetaTempo(p.BPM())})
	}
	c.IterateAllNotes(func(n chartedit.Note) bool {
		key := uint8(midiBaseKey + n.Column)
		start := m.tick(n.TimePoint)
		end := start + midiTicksPerBeat/4
		if n.Type == chartedit.HoldBegin {
			end = max(m.tick(n.TimePointEnd), start+1)
		}
		events = append(events,
			midiEvent{tick: start, order: 2, msg: midi.NoteOn(0, key, midiVelocity)},
			midiEvent{tick: end, order: 1, msg: midi.NoteOff(0, key)})
		return true
	})
	slices.SortStableFunc(events, func(a, b midiEvent) int {
		if a.tick != b.tick {
			return int(a.tick) - int(b.tick)
		}
		return a.order - b.order
	})
	var track smf.Track
	var last uint32
	for _, e := range events {
		track.Add(e.tick-last, e.msg)
		last = e.tick
	}
	track.Close(0)
	s := smf.New()
	if err := s.Add(track); err != nil {
		return fmt.Errorf("could not add midi track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("could not write midi file: %w", err)
	}
	return nil
}
