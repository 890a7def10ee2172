package mmap

import "os"

// Fdatasync flushes the data written to f to stable storage, skipping
// metadata (like modification time) that fsync would also flush.
//
// If mapping is provided, it must be a slice returned by Mmap for the same
// file; some systems sync mapped data through a separate interface.
//
// Errors returned by this function are not recoverable: many file systems
// mark dirty pages clean after a failed sync, so the written data must be
// considered lost. Callers writing cells discard the temporary file and
// report the failure.
func Fdatasync(f *os.File, mapping []byte) error {
	return fdatasync(f, mapping)
}
