package chartedit

import (
	"golang.org/x/exp/slices"
)

// TimeSliceLength is the duration, in milliseconds, of the buckets notes are
// indexed in.
const TimeSliceLength = 1000

type (
	// TimeSlice is the bucket [Start(), End()) of notes. Notes are sorted by
	// time point and column; notes sharing both keep their insertion order.
	TimeSlice struct {
		Index int
		Notes []Note
	}

	// noteIndex is the time-sliced note storage. Slices exist only for the
	// time ranges that contain notes; keys is kept sorted for range walks.
	noteIndex struct {
		slices map[int]*TimeSlice
		keys   []int
		count  int
	}
)

// SliceIndex returns the key of the slice containing timePoint.
func SliceIndex(timePoint int) int {
	q := timePoint / TimeSliceLength
	if timePoint%TimeSliceLength < 0 {
		q--
	}
	return q
}

func (s TimeSlice) Start() int { return s.Index * TimeSliceLength }
func (s TimeSlice) End() int   { return s.Start() + TimeSliceLength }

// Copy makes a deep copy of a TimeSlice.
func (s TimeSlice) Copy() TimeSlice {
	return TimeSlice{Index: s.Index, Notes: slices.Clone(s.Notes)}
}

func (x *noteIndex) copy() noteIndex {
	ret := noteIndex{keys: slices.Clone(x.keys), count: x.count}
	if x.slices != nil {
		ret.slices = make(map[int]*TimeSlice, len(x.slices))
		for key, s := range x.slices {
			c := s.Copy()
			ret.slices[key] = &c
		}
	}
	return ret
}

func (x *noteIndex) keyPos(key int) (int, bool) {
	return slices.BinarySearch(x.keys, key)
}

func (x *noteIndex) insert(n Note) {
	key := SliceIndex(n.TimePoint)
	s, ok := x.slices[key]
	if !ok {
		if x.slices == nil {
			x.slices = make(map[int]*TimeSlice)
		}
		s = &TimeSlice{Index: key}
		x.slices[key] = s
		i, _ := x.keyPos(key)
		x.keys = slices.Insert(x.keys, i, key)
	}
	i, _ := slices.BinarySearchFunc(s.Notes, n, func(e, target Note) int {
		if compareNotes(e, target) <= 0 {
			return -1
		}
		return 1
	})
	s.Notes = slices.Insert(s.Notes, i, n)
	x.count++
}

// find returns the position of the first note equal to n in its slice.
func (x *noteIndex) find(n Note) (*TimeSlice, int, bool) {
	s, ok := x.slices[SliceIndex(n.TimePoint)]
	if !ok {
		return nil, 0, false
	}
	i, _ := slices.BinarySearchFunc(s.Notes, n, compareNotes)
	for ; i < len(s.Notes) && compareNotes(s.Notes[i], n) == 0; i++ {
		if s.Notes[i] == n {
			return s, i, true
		}
	}
	return nil, 0, false
}

func (x *noteIndex) remove(n Note) bool {
	s, i, ok := x.find(n)
	if !ok {
		return false
	}
	s.Notes = slices.Delete(s.Notes, i, i+1)
	x.count--
	if len(s.Notes) == 0 {
		x.drop(s.Index)
	}
	return true
}

func (x *noteIndex) drop(key int) {
	s, ok := x.slices[key]
	if !ok {
		return
	}
	x.count -= len(s.Notes)
	delete(x.slices, key)
	if i, found := x.keyPos(key); found {
		x.keys = slices.Delete(x.keys, i, i+1)
	}
}

// snapshot returns a copy of the notes of a slice, or nil if the slice does
// not exist.
func (x *noteIndex) snapshot(key int) []Note {
	s, ok := x.slices[key]
	if !ok {
		return nil
	}
	return slices.Clone(s.Notes)
}

// restore replaces the contents of a slice with a snapshot.
func (x *noteIndex) restore(key int, notes []Note) {
	x.drop(key)
	if len(notes) == 0 {
		return
	}
	if x.slices == nil {
		x.slices = make(map[int]*TimeSlice)
	}
	x.slices[key] = &TimeSlice{Index: key, Notes: slices.Clone(notes)}
	i, _ := x.keyPos(key)
	x.keys = slices.Insert(x.keys, i, key)
	x.count += len(notes)
}

func (x *noteIndex) slice(key int) TimeSlice {
	if s, ok := x.slices[key]; ok {
		return s.Copy()
	}
	return TimeSlice{Index: key}
}

func (x *noteIndex) iterateSlices(begin, end int, yield func(*TimeSlice) bool) {
	if begin > end {
		return
	}
	last := SliceIndex(end)
	i, _ := x.keyPos(SliceIndex(begin))
	for ; i < len(x.keys) && x.keys[i] <= last; i++ {
		if !yield(x.slices[x.keys[i]]) {
			return
		}
	}
}

func (x *noteIndex) iterateNotes(begin, end int, yield func(Note) bool) {
	x.iterateSlices(begin, end, func(s *TimeSlice) bool {
		i := 0
		if s.Start() < begin {
			i, _ = slices.BinarySearchFunc(s.Notes, begin, func(n Note, t int) int {
				if n.TimePoint < t {
					return -1
				}
				return 1
			})
		}
		for ; i < len(s.Notes); i++ {
			if s.Notes[i].TimePoint > end {
				return false
			}
			if !yield(s.Notes[i]) {
				return false
			}
		}
		return true
	})
}
