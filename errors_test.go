package pointmap

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestCellError_ErrorAndUnwrap(t *testing.T) {
	err := cellErr(opLoad, P(1, -2), "/save/1/-2.cell", ErrNotFound, fs.ErrNotExist)
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("errors.Is failed for %v", err)
	}
	if errors.Is(err, ErrCorrupt) {
		t.Fatalf("errors.Is(err, ErrCorrupt) = true")
	}
	var ce *CellError
	if !errors.As(err, &ce) || ce.Point != P(1, -2) || ce.Op != "load" {
		t.Fatalf("errors.As = %+v", ce)
	}
	deepEqual(t, err.Error(), "pointmap: load (1, -2) /save/1/-2.cell: not found: file does not exist")

	err = cellErr(opSave, P(0, 0), "", ErrIO, nil)
	deepEqual(t, err.Error(), "pointmap: save (0, 0): i/o failure")
	if !errors.Is(err, ErrIO) {
		t.Fatalf("errors.Is(err, ErrIO) = false")
	}
}

func TestDataError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		inner := errors.New("inner")
		err := dataErrf([]byte{0xAA, 0xBB}, 1, inner, "oops")
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("err = %T, wanted *DataError", err)
		}
		if !errors.Is(err, inner) {
			t.Fatalf("errors.Is(err, inner) = false, wanted true")
		}
		deepEqual(t, err.Error(), "oops at 1: inner: (2) aabb")
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		err := dataErrf(data, 0, nil, "oops")
		s := err.Error()
		if !strings.Contains(s, "(200)") || !strings.Contains(s, "...") {
			t.Fatalf("err.Error() = %q, wanted message with (200) and ...", s)
		}
	})
}

func TestDetachDataError(t *testing.T) {
	buf := []byte{1, 2, 3}
	err := cellErr(opLoad, P(0, 0), "", ErrCorrupt, dataErrf(buf, 0, nil, "bad"))
	DetachDataError(err)
	buf[0] = 9

	var de *DataError
	if !errors.As(err, &de) {
		t.Fatalf("no *DataError in %v", err)
	}
	deepEqual(t, de.Data, []byte{1, 2, 3})
	if DetachDataError(nil) != nil {
		t.Errorf("DetachDataError(nil) != nil")
	}
}
