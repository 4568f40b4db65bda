package cache

import (
	"cmp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpperBound(t *testing.T) {
	s := []int{1, 3, 3, 5, 8}

	tests := []struct {
		name string
		v    int
		want int
	}{
		{name: "before all", v: 0, want: 0},
		{name: "equal to first", v: 1, want: 1},
		{name: "skips duplicates", v: 3, want: 3},
		{name: "between", v: 6, want: 4},
		{name: "equal to last", v: 8, want: 5},
		{name: "after all", v: 9, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UpperBound(s, tt.v, cmp.Compare[int]))
		})
	}

	assert.Equal(t, 0, UpperBound(nil, 1, cmp.Compare[int]))
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want []int
	}{
		{name: "both empty", want: []int{}},
		{name: "a only", a: []int{1, 2}, want: []int{1, 2}},
		{name: "b only", b: []int{1, 2}, want: []int{1, 2}},
		{name: "interleaved", a: []int{1, 4, 7}, b: []int{2, 3, 8}, want: []int{1, 2, 3, 4, 7, 8}},
		{name: "overlapping", a: []int{1, 2, 3}, b: []int{2, 3, 4}, want: []int{1, 2, 3, 4}},
		{name: "b before a", a: []int{5, 6}, b: []int{1, 2}, want: []int{1, 2, 5, 6}},
		{name: "duplicates inside input", a: []int{1, 1, 2}, b: []int{2, 2}, want: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.a, tt.b, cmp.Compare[int]))
		})
	}
}

func TestMerge_Tolerance(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	within := func(a, b time.Time) int {
		d := a.Sub(b)
		if d.Abs() < time.Minute {
			return 0
		}
		return a.Compare(b)
	}

	a := []time.Time{base, base.Add(24 * time.Hour)}
	b := []time.Time{base.Add(24*time.Hour + 2*time.Second), base.Add(48 * time.Hour)}

	got := Merge(a, b, within)
	assert.Equal(t, []time.Time{base, base.Add(24 * time.Hour), base.Add(48 * time.Hour)}, got)
}

func TestSeries(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Series{base, base.Add(time.Hour), base.Add(2 * time.Hour)}

	next, ok := s.Next(base)
	assert.True(t, ok)
	assert.Equal(t, base.Add(time.Hour), next)

	next, ok = s.Next(base.Add(-time.Minute))
	assert.True(t, ok)
	assert.Equal(t, base, next)

	_, ok = s.Next(base.Add(2 * time.Hour))
	assert.False(t, ok)

	assert.True(t, s.StrictlyIncreasing())
	assert.False(t, Series{base, base}.StrictlyIncreasing())
	assert.Equal(t, base, s.First())
	assert.Equal(t, base.Add(2*time.Hour), s.Last())
	assert.True(t, Series(nil).First().IsZero())
}

func TestNormalize(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	berlin := time.FixedZone("CET", 3600)

	in := []time.Time{base.Add(2 * time.Hour), base.In(berlin), base.Add(time.Hour), base}
	got := normalize(in, time.Time.Compare)

	assert.Equal(t, Series{base, base.Add(time.Hour), base.Add(2 * time.Hour)}, got)
	for _, ts := range got {
		assert.Equal(t, time.UTC, ts.Location())
	}
}
