package pointmap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/andreyvit/pointmap/mmap"
)

const DefaultExt = ".cell"

type DirOptions struct {
	// Ext is the cell file extension, including the dot. Defaults to DefaultExt.
	Ext string

	// Sync makes every write durable via fdatasync before it is renamed into
	// place.
	Sync bool

	// MmapThreshold, if positive, makes cell files of at least this many
	// bytes be read via mmap instead of being copied into memory.
	MmapThreshold int
}

type dirStorage struct {
	root          string
	ext           string
	sync          bool
	mmapThreshold int
}

// DirStorage returns a Storage keeping every cell in its own file,
// at <root>/<x>/<y><ext>.
func DirStorage(root string, opt DirOptions) Storage {
	if opt.Ext == "" {
		opt.Ext = DefaultExt
	}
	return &dirStorage{
		root:          root,
		ext:           opt.Ext,
		sync:          opt.Sync,
		mmapThreshold: opt.MmapThreshold,
	}
}

func (s *dirStorage) columnPath(x int) string {
	return filepath.Join(s.root, strconv.Itoa(x))
}

func (s *dirStorage) cellPath(p Point) string {
	return filepath.Join(s.root, strconv.Itoa(p.X), strconv.Itoa(p.Y)+s.ext)
}

func (s *dirStorage) Location(p Point) string {
	return s.cellPath(p)
}

func (s *dirStorage) HasColumn(x int) (bool, error) {
	fn := s.columnPath(x)
	st, err := os.Stat(fn)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if !st.IsDir() {
		return false, fmt.Errorf("%s: not a directory", fn)
	}
	return true, nil
}

func (s *dirStorage) CreateColumn(x int) error {
	return os.MkdirAll(s.columnPath(x), 0o755)
}

func (s *dirStorage) ReadCell(p Point, f func(data []byte) error) error {
	file, err := os.Open(s.cellPath(p))
	if err != nil {
		return err
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return err
	}
	size := st.Size()

	if s.mmapThreshold > 0 && size >= int64(s.mmapThreshold) && size > 0 && size <= mmap.MaxSize {
		data, err := mmap.Mmap(file, 0, int(size), mmap.SequentialAccess)
		if err != nil {
			return fmt.Errorf("mmap %s: %w", file.Name(), err)
		}
		defer mmap.Munmap(data)
		return f(data)
	}

	data := make([]byte, size)
	_, err = io.ReadFull(file, data)
	if err != nil {
		return fmt.Errorf("read %s: %w", file.Name(), err)
	}
	return f(data)
}

func (s *dirStorage) WriteCell(p Point, data []byte) error {
	dir := s.columnPath(p.X)
	path := s.cellPath(p)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil && s.sync {
		err = mmap.Fdatasync(tmp, nil)
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *dirStorage) DeleteCell(p Point) error {
	err := os.Remove(s.cellPath(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *dirStorage) Cells() ([]Point, error) {
	columns, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var result []Point
	for _, col := range columns {
		if !col.IsDir() {
			continue
		}
		x, err := strconv.Atoi(col.Name())
		if err != nil || strconv.Itoa(x) != col.Name() {
			continue
		}

		files, err := os.ReadDir(filepath.Join(s.root, col.Name()))
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			base, ok := strings.CutSuffix(file.Name(), s.ext)
			if !ok {
				continue
			}
			y, err := strconv.Atoi(base)
			if err != nil || strconv.Itoa(y) != base {
				continue
			}
			result = append(result, Point{x, y})
		}
	}

	// directory listings are sorted by name, not numerically
	slices.SortFunc(result, Compare)
	return result, nil
}

func (s *dirStorage) Close() error {
	return nil
}
