package pointmap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
)

const (
	opSave    = "save"
	opUnload  = "unload"
	opLoad    = "load"
	opDiscard = "discard"
)

// Save writes the resident value of the cell to storage, keeping it
// resident. Returns false without touching storage if the cell is not
// resident.
//
// If the cell's column does not exist, Save creates it and fails with
// ErrNotFound; calling Save again succeeds.
func (m *Map[V]) Save(x, y int) (bool, error) {
	p := Point{x, y}
	i, ok := m.find(p)
	if !ok {
		m.debug("pointmap: not resident, nothing to save", p)
		return false, nil
	}
	err := m.write(opSave, p, m.entries[i].value)
	if err != nil {
		return false, err
	}
	m.stats.Saves++
	return true, nil
}

// Unload writes the resident value of the cell to storage, then removes it
// from the map. Returns false without touching storage if the cell is not
// resident. On failure the cell stays resident.
func (m *Map[V]) Unload(x, y int) (bool, error) {
	p := Point{x, y}
	i, ok := m.find(p)
	if !ok {
		m.debug("pointmap: not resident, nothing to unload", p)
		return false, nil
	}
	err := m.write(opUnload, p, m.entries[i].value)
	if err != nil {
		return false, err
	}
	m.entries = slices.Delete(m.entries, i, i+1)
	m.stats.Unloads++
	return true, nil
}

// Load reads the cell from storage and makes it resident. Returns false if
// the cell is already resident, in which case storage is not consulted.
//
// Fails with ErrNotFound if the cell is not in storage (creating its column
// if that was missing too), and with ErrCorrupt if the stored bytes cannot be
// decoded. The map is unchanged on failure.
func (m *Map[V]) Load(x, y int) (bool, error) {
	p := Point{x, y}
	if _, ok := m.find(p); ok {
		m.debug("pointmap: already resident", p)
		return false, nil
	}
	if err := m.ensureColumn(opLoad, p); err != nil {
		return false, err
	}

	var v V
	var size int
	var decodeErr error
	var badHead []byte
	err := m.storage.ReadCell(p, func(data []byte) error {
		size = len(data)
		payload, err := DecodeEnvelope(data)
		if err == nil {
			err = m.codec.Decode(payload, &v)
		}
		if err != nil {
			decodeErr = DetachDataError(err)
			badHead = head(data, 16)
			return decodeErr
		}
		return nil
	})
	if decodeErr != nil {
		m.logger.LogAttrs(m.context, slog.LevelWarn, "pointmap: corrupt cell", slog.Int("x", x), slog.Int("y", y), slog.Int("size", size), hexAttr("head", badHead))
		return false, m.fail(opLoad, p, ErrCorrupt, decodeErr)
	} else if errors.Is(err, fs.ErrNotExist) {
		return false, m.fail(opLoad, p, ErrNotFound, err)
	} else if err != nil {
		return false, m.fail(opLoad, p, ErrIO, err)
	}

	m.Put(x, y, v)
	m.stats.Loads++
	m.stats.BytesRead += uint64(size)
	if m.verbose {
		m.logger.LogAttrs(m.context, slog.LevelDebug, "pointmap: loaded", slog.Int("x", x), slog.Int("y", y), slog.Int("size", size))
	}
	return true, nil
}

// SaveAll unloads every resident cell. It does not stop at the first
// failure: cells that fail stay resident, and all failures are returned
// joined together. A cell failing only because its column had to be created
// is retried once.
func (m *Map[V]) SaveAll() error {
	var errs []error
	for _, p := range m.Keys() {
		_, err := m.Unload(p.X, p.Y)
		if errors.Is(err, ErrColumnCreated) {
			_, err = m.Unload(p.X, p.Y)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Persisted lists all cells present in storage, ordered by key, whether or
// not they are also resident.
func (m *Map[V]) Persisted() ([]Point, error) {
	points, err := m.storage.Cells()
	if err != nil {
		return nil, fmt.Errorf("pointmap: listing cells: %w", err)
	}
	return points, nil
}

// Discard deletes the stored copy of the cell. The resident value, if any,
// is kept.
func (m *Map[V]) Discard(x, y int) error {
	p := Point{x, y}
	err := m.storage.DeleteCell(p)
	if err != nil {
		return m.fail(opDiscard, p, ErrIO, err)
	}
	m.debug("pointmap: discarded", p)
	return nil
}

func (m *Map[V]) write(op string, p Point, v V) error {
	if err := m.ensureColumn(op, p); err != nil {
		return err
	}

	buf := reserveEnvelopeHeader(cellBytesPool.Get().([]byte))
	buf, err := m.codec.Encode(buf, v)
	if err != nil {
		releaseCellBytes(buf)
		return m.fail(op, p, ErrEncode, err)
	}
	// data is a suffix of buf; buf goes back to the pool
	buf = ensureCapacity(buf, len(buf)+checksumSize)
	data := finishEnvelope(buf, efDefault)
	size := len(data)

	err = m.storage.WriteCell(p, data)
	releaseCellBytes(buf)
	if err != nil {
		return m.fail(op, p, ErrIO, err)
	}

	m.stats.BytesWritten += uint64(size)
	if m.verbose {
		m.logger.LogAttrs(m.context, slog.LevelDebug, "pointmap: written", slog.String("op", op), slog.Int("x", p.X), slog.Int("y", p.Y), slog.Int("size", size))
	}
	return nil
}

// ensureColumn creates a missing column, failing the current operation.
func (m *Map[V]) ensureColumn(op string, p Point) error {
	ok, err := m.storage.HasColumn(p.X)
	if err != nil {
		return m.fail(op, p, ErrIO, err)
	}
	if ok {
		return nil
	}

	err = m.storage.CreateColumn(p.X)
	if err != nil {
		return m.fail(op, p, ErrIO, err)
	}
	m.logger.LogAttrs(m.context, slog.LevelWarn, "pointmap: column not found, created", slog.String("op", op), slog.Int("x", p.X), slog.Int("y", p.Y))
	return m.fail(op, p, ErrNotFound, ErrColumnCreated)
}

func (m *Map[V]) fail(op string, p Point, kind, err error) error {
	m.stats.Failures++
	err = cellErr(op, p, m.storage.Location(p), kind, err)
	if m.verbose {
		m.logger.LogAttrs(m.context, slog.LevelDebug, "pointmap: failed", slog.Any("err", err))
	}
	return err
}

func (m *Map[V]) debug(msg string, p Point) {
	if m.verbose {
		m.logger.LogAttrs(m.context, slog.LevelDebug, msg, slog.Int("x", p.X), slog.Int("y", p.Y))
	}
}
