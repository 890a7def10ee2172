package pointmap

// Storage persists encoded cells, grouped into columns by X.
//
// Storages report a missing cell with an error wrapping fs.ErrNotExist.
// They are not expected to create columns implicitly: WriteCell into a
// missing column fails.
type Storage interface {
	// HasColumn reports whether the column for x exists.
	HasColumn(x int) (bool, error)

	// CreateColumn creates the column for x. Creating an existing column is
	// not an error.
	CreateColumn(x int) error

	// ReadCell calls f with the stored bytes of the cell. The data is only
	// valid until f returns.
	ReadCell(p Point, f func(data []byte) error) error

	// WriteCell replaces the stored bytes of the cell. The storage does not
	// retain data.
	WriteCell(p Point, data []byte) error

	// DeleteCell removes the cell. Deleting a missing cell is not an error.
	DeleteCell(p Point) error

	// Cells returns all stored cells ordered by Compare.
	Cells() ([]Point, error)

	// Location describes where the cell lives, for error messages and logs.
	Location(p Point) string

	// Close releases the storage.
	Close() error
}
