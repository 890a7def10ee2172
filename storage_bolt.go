package pointmap

import (
	"fmt"
	"io/fs"
	"time"
	"unsafe"

	"go.etcd.io/bbolt"
)

const boltCellsBucket = "cells"

type BoltOptions struct {
	IsTesting bool
	MmapSize  int
	Timeout   time.Duration
}

type boltStorage struct {
	bdb   *bbolt.DB
	owned bool
}

// OpenBoltStorage opens (or creates) a Bolt file holding all cells. Closing
// the storage closes the file.
func OpenBoltStorage(path string, opt BoltOptions) (Storage, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.Timeout != 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("pointmap: %w", err)
	}
	return &boltStorage{bdb: bdb, owned: true}, nil
}

// BoltStorage keeps cells inside an already open Bolt database, under the
// “cells” bucket. Closing the storage leaves the database open.
func BoltStorage(bdb *bbolt.DB) Storage {
	return &boltStorage{bdb: bdb}
}

func (s *boltStorage) Bolt() *bbolt.DB {
	return s.bdb
}

func (s *boltStorage) Location(p Point) string {
	return fmt.Sprintf("%s#%d/%d", s.bdb.Path(), p.X, p.Y)
}

func (s *boltStorage) column(tx *bbolt.Tx, x int) *bbolt.Bucket {
	root := tx.Bucket(unsafeBytesFromString(boltCellsBucket))
	if root == nil {
		return nil
	}
	var kb [orderedIntSize]byte
	return root.Bucket(appendOrderedInt(kb[:0], x))
}

func (s *boltStorage) HasColumn(x int) (bool, error) {
	var found bool
	err := s.bdb.View(func(tx *bbolt.Tx) error {
		found = (s.column(tx, x) != nil)
		return nil
	})
	return found, err
}

func (s *boltStorage) CreateColumn(x int) error {
	return s.bdb.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(unsafeBytesFromString(boltCellsBucket))
		if err != nil {
			return err
		}
		_, err = root.CreateBucketIfNotExists(appendOrderedInt(nil, x))
		return err
	})
}

func (s *boltStorage) ReadCell(p Point, f func(data []byte) error) error {
	return s.bdb.View(func(tx *bbolt.Tx) error {
		b := s.column(tx, p.X)
		if b == nil {
			return fmt.Errorf("%s: column %w", s.Location(p), fs.ErrNotExist)
		}
		var kb [orderedIntSize]byte
		v := b.Get(appendOrderedInt(kb[:0], p.Y))
		if v == nil {
			return fmt.Errorf("%s: %w", s.Location(p), fs.ErrNotExist)
		}
		return f(v)
	})
}

func (s *boltStorage) WriteCell(p Point, data []byte) error {
	return s.bdb.Update(func(tx *bbolt.Tx) error {
		b := s.column(tx, p.X)
		if b == nil {
			return fmt.Errorf("%s: column %w", s.Location(p), fs.ErrNotExist)
		}
		return b.Put(appendOrderedInt(nil, p.Y), data)
	})
}

func (s *boltStorage) DeleteCell(p Point) error {
	return s.bdb.Update(func(tx *bbolt.Tx) error {
		b := s.column(tx, p.X)
		if b == nil {
			return nil
		}
		var kb [orderedIntSize]byte
		return b.Delete(appendOrderedInt(kb[:0], p.Y))
	})
}

func (s *boltStorage) Cells() ([]Point, error) {
	var result []Point
	err := s.bdb.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(unsafeBytesFromString(boltCellsBucket))
		if root == nil {
			return nil
		}
		c := root.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if v != nil {
				continue // not a column bucket
			}
			x, err := decodeOrderedInt(k)
			if err != nil {
				return err
			}
			cc := root.Bucket(k).Cursor()
			for yk, _ := cc.First(); yk != nil; yk, _ = cc.Next() {
				y, err := decodeOrderedInt(yk)
				if err != nil {
					return err
				}
				result = append(result, Point{x, y})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *boltStorage) Close() error {
	if !s.owned {
		return nil
	}
	return s.bdb.Close()
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
