package pointmap

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error kinds reported by Map. Use errors.Is to check for them.
var (
	// ErrNotFound is returned when a column or a cell file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIO is returned when storage fails to read or write a cell.
	ErrIO = errors.New("i/o failure")

	// ErrCorrupt is returned when a stored cell cannot be decoded. The map is
	// left unchanged.
	ErrCorrupt = errors.New("corrupt cell")

	// ErrEncode is returned when the codec cannot encode a value.
	ErrEncode = errors.New("cannot encode value")

	// ErrColumnCreated accompanies ErrNotFound when the missing column has just
	// been created, so retrying the same call is expected to succeed.
	ErrColumnCreated = errors.New("column did not exist and has been created")
)

type CellError struct {
	Op    string
	Point Point
	Path  string
	Kind  error
	Err   error
}

func cellErr(op string, p Point, path string, kind, err error) error {
	return &CellError{op, p, path, kind, err}
}

func (e *CellError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func (e *CellError) Error() string {
	var buf strings.Builder
	buf.WriteString("pointmap: ")
	buf.WriteString(e.Op)
	buf.WriteByte(' ')
	buf.WriteString(e.Point.String())
	if e.Path != "" {
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
	}
	if e.Kind != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s at %d: %v: (%d) %x", e.Msg, e.Off, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s at %d: (%d) %x", e.Msg, e.Off, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s at %d: %v: (%d) %x...%x", e.Msg, e.Off, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s at %d: (%d) %x...%x", e.Msg, e.Off, n, p, s)
		}
	}
}

// DetachDataError copies the bytes referenced by a *DataError inside err, so
// that err stays valid after the buffer it describes is released.
func DetachDataError(err error) error {
	var de *DataError
	if errors.As(err, &de) {
		de.Data = slices.Clone(de.Data)
	}
	return err
}
