package cache

import (
	"sort"
	"time"
)

// Series is an ascending, duplicate free sequence of event times
type Series []time.Time

// UpperBound returns the index of the first element of s strictly greater
// than v, or len(s) when there is none. s must be sorted by cmp.
func UpperBound[T any](s []T, v T, cmp func(a, b T) int) int {
	return sort.Search(len(s), func(i int) bool {
		return cmp(s[i], v) > 0
	})
}

// Merge combines two ascending slices into one ascending slice. Elements
// that cmp reports as equal are kept once, preferring the one from a.
func Merge[T any](a, b []T, cmp func(x, y T) int) []T {
	out := make([]T, 0, len(a)+len(b))

	push := func(v T) {
		if len(out) == 0 || cmp(out[len(out)-1], v) != 0 {
			out = append(out, v)
		}
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := cmp(a[i], b[j]); {
		case c < 0:
			push(a[i])
			i++
		case c > 0:
			push(b[j])
			j++
		default:
			push(a[i])
			i++
			j++
		}
	}

	for ; i < len(a); i++ {
		push(a[i])
	}

	for ; j < len(b); j++ {
		push(b[j])
	}

	return out
}

// Next returns the earliest element strictly after t
func (s Series) Next(t time.Time) (time.Time, bool) {
	i := UpperBound(s, t, time.Time.Compare)
	if i == len(s) {
		return time.Time{}, false
	}

	return s[i], true
}

// StrictlyIncreasing reports whether every element is after its predecessor
func (s Series) StrictlyIncreasing() bool {
	for i := 1; i < len(s); i++ {
		if !s[i].After(s[i-1]) {
			return false
		}
	}

	return true
}

// First returns the earliest element, or the zero time when s is empty
func (s Series) First() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}

	return s[0]
}

// Last returns the latest element, or the zero time when s is empty
func (s Series) Last() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}

	return s[len(s)-1]
}

// normalize converts to UTC and restores ascending order without
// duplicates, so a misbehaving fetcher cannot break the entry invariant
func normalize(in []time.Time, cmp func(a, b time.Time) int) Series {
	out := make(Series, len(in))
	for i, t := range in {
		out[i] = t.UTC()
	}

	if !out.StrictlyIncreasing() {
		sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	}

	return Merge(out, nil, cmp)
}
