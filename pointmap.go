package pointmap

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// DefaultRootName is the directory, relative to the working directory, that
// holds cells when Options.Root is not set.
const DefaultRootName = "save"

// Map is an ordered collection of cells keyed by Point, some of which may be
// paged out to storage.
//
// Map is not safe for concurrent use. Callers flushing cells from another
// goroutine must serialize access themselves.
type Map[V any] struct {
	entries []entry[V] // sorted by key
	root    string
	dirOpt  DirOptions
	storage Storage
	codec   Codec[V]
	context context.Context
	logger  *slog.Logger
	verbose bool
	stats   Stats
}

type entry[V any] struct {
	key   Point
	value V
}

type Options[V any] struct {
	Context context.Context

	// Root is the directory holding the cells. Defaults to DefaultRootName
	// inside the working directory at the time New is called.
	Root string
	Dir  DirOptions

	// Storage overrides the directory storage under Root.
	Storage Storage

	// Codec encodes cell values. Defaults to MsgPack.
	Codec Codec[V]

	Logger  *slog.Logger
	Verbose bool
}

func New[V any](opt Options[V]) *Map[V] {
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Root == "" {
		opt.Root = defaultRoot()
	}
	if opt.Codec == nil {
		opt.Codec = MsgPack[V]()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Storage == nil {
		opt.Storage = DirStorage(opt.Root, opt.Dir)
	}
	return &Map[V]{
		root:    opt.Root,
		dirOpt:  opt.Dir,
		storage: opt.Storage,
		codec:   opt.Codec,
		context: opt.Context,
		logger:  opt.Logger,
		verbose: opt.Verbose,
	}
}

func defaultRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return DefaultRootName
	}
	return filepath.Join(wd, DefaultRootName)
}

func (m *Map[V]) Root() string {
	return m.root
}

// SetRoot switches the map to the directory storage under root. Resident
// cells are kept; a previously configured custom Storage is not closed.
func (m *Map[V]) SetRoot(root string) {
	m.root = root
	m.storage = DirStorage(root, m.dirOpt)
}

func (m *Map[V]) Storage() Storage {
	return m.storage
}

// Close closes the storage. Resident cells are not saved; call SaveAll first
// to keep them.
func (m *Map[V]) Close() error {
	return m.storage.Close()
}

func (m *Map[V]) find(p Point) (idx int, ok bool) {
	entries := m.entries
	i := sort.Search(len(entries), func(i int) bool {
		return Compare(entries[i].key, p) >= 0
	})
	if i < len(entries) && entries[i].key == p {
		return i, true
	}
	return i, false
}

// Put makes v the resident value of the cell, replacing any previous one.
func (m *Map[V]) Put(x, y int, v V) {
	p := Point{x, y}
	i, ok := m.find(p)
	if ok {
		m.entries[i].value = v
		return
	}
	m.entries = slices.Insert(m.entries, i, entry[V]{p, v})
}

func (m *Map[V]) Get(x, y int) (V, bool) {
	i, ok := m.find(Point{x, y})
	if !ok {
		var zero V
		return zero, false
	}
	return m.entries[i].value, true
}

func (m *Map[V]) Has(x, y int) bool {
	_, ok := m.find(Point{x, y})
	return ok
}

// Remove drops the resident cell and returns its value. Storage is not
// touched.
func (m *Map[V]) Remove(x, y int) (V, bool) {
	i, ok := m.find(Point{x, y})
	if !ok {
		var zero V
		return zero, false
	}
	v := m.entries[i].value
	m.entries = slices.Delete(m.entries, i, i+1)
	return v, true
}

func (m *Map[V]) Len() int {
	return len(m.entries)
}

func (m *Map[V]) Keys() []Point {
	result := make([]Point, len(m.entries))
	for i, e := range m.entries {
		result[i] = e.key
	}
	return result
}

// Values returns all resident values ordered by key.
func (m *Map[V]) Values() []V {
	result := make([]V, len(m.entries))
	for i, e := range m.entries {
		result[i] = e.value
	}
	return result
}

// All iterates over resident cells ordered by key. The map must not be
// modified during iteration.
func (m *Map[V]) All() iter.Seq2[Point, V] {
	return func(yield func(Point, V) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// String formats resident values as [(v1), (v2), ...].
func (m *Map[V]) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "(%v)", e.value)
	}
	buf.WriteByte(']')
	return buf.String()
}
