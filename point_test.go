package pointmap

import (
	"math"
	"slices"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b Point
		want int
	}{
		{P(1, 2), P(1, 2), 0},
		{P(1, 2), P(1, 5), -1},
		{P(1, 5), P(1, 2), 1},
		{P(1, 5), P(3, 1), -1},
		{P(3, 1), P(1, 5), 1},
		{P(-1, 100), P(0, -100), -1},
		{P(math.MinInt, 0), P(math.MaxInt, 0), -1},
		{P(0, math.MaxInt), P(0, math.MinInt), 1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, wanted %d", tt.a, tt.b, got, tt.want)
		}
		if got := tt.a.Less(tt.b); got != (tt.want < 0) {
			t.Errorf("%v.Less(%v) = %v, wanted %v", tt.a, tt.b, got, tt.want < 0)
		}
	}
}

func TestCompare_Sorts(t *testing.T) {
	points := []Point{P(3, 1), P(1, 5), P(1, 2), P(-2, 7), P(1, -1)}
	slices.SortFunc(points, Compare)
	deepEqual(t, points, []Point{P(-2, 7), P(1, -1), P(1, 2), P(1, 5), P(3, 1)})
}

func TestPoint_TranslateAndSetLocation(t *testing.T) {
	p := P(1, 2)
	p.Translate(3, -4)
	deepEqual(t, p, P(4, -2))

	p.SetLocation(7, 8)
	deepEqual(t, p, P(7, 8))
}

func TestPoint_String(t *testing.T) {
	deepEqual(t, P(1, -2).String(), "(1, -2)")
}

func TestPoint_TranslatingKeyDoesNotAffectMap(t *testing.T) {
	m := setup(t, "", Options[string]{})
	p := P(1, 2)
	m.Put(p.X, p.Y, "a")
	p.Translate(1, 1)

	v, ok := m.Get(1, 2)
	if !ok || v != "a" {
		t.Fatalf("Get(1, 2) = %q, %v, wanted a, true", v, ok)
	}
	deepEqual(t, m.Keys(), []Point{P(1, 2)})
}
