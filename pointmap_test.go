package pointmap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMap_PutGet(t *testing.T) {
	m := setup(t, "", Options[string]{})
	m.Put(1, 2, "a")
	m.Put(2, 1, "b")
	m.Put(-1, 2, "c")
	m.Put(1, 2, "d")

	tests := []struct {
		x, y int
		want string
		ok   bool
	}{
		{1, 2, "d", true},
		{2, 1, "b", true},
		{-1, 2, "c", true},
		{2, 2, "", false},
		{1, 1, "", false},
	}
	for _, tt := range tests {
		v, ok := m.Get(tt.x, tt.y)
		if v != tt.want || ok != tt.ok {
			t.Errorf("Get(%d, %d) = %q, %v, wanted %q, %v", tt.x, tt.y, v, ok, tt.want, tt.ok)
		}
		if m.Has(tt.x, tt.y) != tt.ok {
			t.Errorf("Has(%d, %d) = %v, wanted %v", tt.x, tt.y, !tt.ok, tt.ok)
		}
	}
	deepEqual(t, m.Len(), 3)
}

func TestMap_ValuesInKeyOrder(t *testing.T) {
	m := setup(t, "", Options[string]{})
	m.Put(3, 1, "c")
	m.Put(1, 5, "b")
	m.Put(1, 2, "a")

	deepEqual(t, m.Values(), []string{"a", "b", "c"})
	deepEqual(t, m.Keys(), []Point{P(1, 2), P(1, 5), P(3, 1)})

	var keys []Point
	var values []string
	for p, v := range m.All() {
		keys = append(keys, p)
		values = append(values, v)
	}
	deepEqual(t, keys, []Point{P(1, 2), P(1, 5), P(3, 1)})
	deepEqual(t, values, []string{"a", "b", "c"})
}

func TestMap_AllStopsEarly(t *testing.T) {
	m := setup(t, "", Options[int]{})
	for i := range 5 {
		m.Put(i, 0, i)
	}
	var seen []int
	for _, v := range m.All() {
		if v == 2 {
			break
		}
		seen = append(seen, v)
	}
	deepEqual(t, seen, []int{0, 1})
}

func TestMap_Remove(t *testing.T) {
	m := setup(t, "", Options[string]{})
	m.Put(1, 2, "a")
	m.Put(3, 4, "b")

	v, ok := m.Remove(5, 5)
	if ok || v != "" {
		t.Errorf("Remove(5, 5) = %q, %v, wanted absent", v, ok)
	}
	deepEqual(t, m.Len(), 2)

	v, ok = m.Remove(1, 2)
	if !ok || v != "a" {
		t.Errorf("Remove(1, 2) = %q, %v, wanted a, true", v, ok)
	}
	deepEqual(t, m.Len(), 1)
	deepEqual(t, m.Values(), []string{"b"})

	_, ok = m.Remove(1, 2)
	if ok {
		t.Errorf("second Remove(1, 2) found a value")
	}
}

func TestMap_String(t *testing.T) {
	m := setup(t, "", Options[int]{})
	deepEqual(t, m.String(), "[]")
	m.Put(2, 0, 20)
	m.Put(1, 0, 10)
	deepEqual(t, m.String(), "[(10), (20)]")
}

func TestMap_DefaultRoot(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	wd := must(os.Getwd())

	m := New(Options[string]{Logger: quietLogger})
	deepEqual(t, m.Root(), filepath.Join(wd, DefaultRootName))

	// resolved once, at construction
	chdir(t, t.TempDir())
	deepEqual(t, m.Root(), filepath.Join(wd, DefaultRootName))

	m.Put(1, 1, "x")
	saveFresh(t, m, 1, 1)
	if !exists(filepath.Join(wd, "save", "1", "1.cell")) {
		t.Errorf("cell file not written under the default root")
	}
}

func TestMap_SetRoot(t *testing.T) {
	m := setup(t, "", Options[string]{})
	m.Put(1, 1, "x")

	root := filepath.Join(t.TempDir(), "elsewhere")
	m.SetRoot(root)
	deepEqual(t, m.Root(), root)

	saveFresh(t, m, 1, 1)
	if !exists(filepath.Join(root, "1", "1.cell")) {
		t.Errorf("cell file not written under the new root")
	}
	deepEqual(t, m.Len(), 1)
}
