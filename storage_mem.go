package pointmap

import (
	"fmt"
	"io/fs"
	"slices"
	"sort"
	"sync"
)

type memStorage struct {
	mu      sync.Mutex
	columns map[int]bool
	items   []memCell // sorted by point
	closed  bool
}

type memCell struct {
	p    Point
	data []byte
}

// MemStorage returns a transient in-memory Storage, mostly useful in tests.
func MemStorage() Storage {
	return &memStorage{columns: make(map[int]bool)}
}

func (s *memStorage) Location(p Point) string {
	return fmt.Sprintf("mem#%d/%d", p.X, p.Y)
}

func (s *memStorage) HasColumn(x int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, fmt.Errorf("storage closed")
	}
	return s.columns[x], nil
}

func (s *memStorage) CreateColumn(x int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage closed")
	}
	s.columns[x] = true
	return nil
}

func (s *memStorage) ReadCell(p Point, f func(data []byte) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("storage closed")
	}
	i, ok := s.find(p)
	var data []byte
	if ok {
		data = slices.Clone(s.items[i].data)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: %w", s.Location(p), fs.ErrNotExist)
	}
	return f(data)
}

func (s *memStorage) WriteCell(p Point, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage closed")
	}
	if !s.columns[p.X] {
		return fmt.Errorf("%s: column %w", s.Location(p), fs.ErrNotExist)
	}
	data = slices.Clone(data)

	i, ok := s.find(p)
	if ok {
		s.items[i].data = data
		return nil
	}
	s.items = slices.Insert(s.items, i, memCell{p: p, data: data})
	return nil
}

func (s *memStorage) DeleteCell(p Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("storage closed")
	}
	i, ok := s.find(p)
	if !ok {
		return nil
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *memStorage) Cells() ([]Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("storage closed")
	}
	result := make([]Point, len(s.items))
	for i, item := range s.items {
		result[i] = item.p
	}
	return result, nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	return nil
}

func (s *memStorage) find(p Point) (idx int, ok bool) {
	items := s.items
	i := sort.Search(len(items), func(i int) bool {
		return Compare(items[i].p, p) >= 0
	})
	if i < len(items) && items[i].p == p {
		return i, true
	}
	return i, false
}
