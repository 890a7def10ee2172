// Package scribe saves and loads standalone named objects (settings,
// player state, world metadata) next to the cells of a pointmap.
//
// Objects are encoded with msgpack and wrapped in the same checksummed
// envelope as cells, so a damaged file is detected on load.
package scribe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andreyvit/pointmap"
	"github.com/vmihailenco/msgpack/v5"
)

const DefaultFolder = pointmap.DefaultRootName

type Options struct {
	Context context.Context

	// Folder holds the objects. Defaults to DefaultFolder.
	Folder string

	// Absolute makes Folder be used as is, instead of relative to the
	// working directory.
	Absolute bool

	Logger *slog.Logger
}

type Scribe struct {
	context     context.Context
	folder      string
	inDirectory bool
	logger      *slog.Logger
}

func New(o Options) *Scribe {
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Folder == "" {
		o.Folder = DefaultFolder
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Scribe{
		context:     o.Context,
		folder:      o.Folder,
		inDirectory: !o.Absolute,
		logger:      o.Logger,
	}
}

// FileLocation returns the directory objects are saved to.
func (s *Scribe) FileLocation() string {
	if !s.inDirectory {
		return s.folder
	}
	wd, err := os.Getwd()
	if err != nil {
		return s.folder
	}
	return filepath.Join(wd, s.folder)
}

// SetSaveFolderInDirectory saves objects to the given folder inside the
// working directory.
func (s *Scribe) SetSaveFolderInDirectory(name string) {
	s.folder = name
	s.inDirectory = true
}

// SetSaveFolder saves objects to the given folder, used as is.
func (s *Scribe) SetSaveFolder(name string) {
	s.folder = name
	s.inDirectory = false
}

func (s *Scribe) path(name string) (string, error) {
	if name == "" || !filepath.IsLocal(name) {
		return "", fmt.Errorf("scribe: invalid object name %q", name)
	}
	return filepath.Join(s.FileLocation(), filepath.FromSlash(name)), nil
}

// SaveObject writes obj under the given name, which may contain slashes.
// Missing directories are created.
func (s *Scribe) SaveObject(name string, obj any) error {
	fn, err := s.path(name)
	if err != nil {
		return err
	}

	payload, err := msgpack.Marshal(obj)
	if err != nil {
		return fmt.Errorf("scribe: %s: %w: %v", name, pointmap.ErrEncode, err)
	}
	data := pointmap.EncodeEnvelope(nil, payload)

	dir := filepath.Dir(fn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("scribe: %s: %w: %v", name, pointmap.ErrIO, err)
	}
	if err := writeFileAtomic(dir, fn, data); err != nil {
		return fmt.Errorf("scribe: %s: %w: %v", name, pointmap.ErrIO, err)
	}

	s.logger.LogAttrs(s.context, slog.LevelInfo, "scribe: object saved", slog.String("name", name), slog.Int("size", len(data)))
	return nil
}

// LoadObject decodes the object saved under name into ptr.
func (s *Scribe) LoadObject(name string, ptr any) error {
	fn, err := s.path(name)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(fn)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("scribe: %s: %w", name, pointmap.ErrNotFound)
	} else if err != nil {
		return fmt.Errorf("scribe: %s: %w: %v", name, pointmap.ErrIO, err)
	}

	payload, err := pointmap.DecodeEnvelope(data)
	if err != nil {
		return fmt.Errorf("scribe: %s: %w: %w", name, pointmap.ErrCorrupt, err)
	}
	if err := msgpack.Unmarshal(payload, ptr); err != nil {
		return fmt.Errorf("scribe: %s: %w: %w", name, pointmap.ErrCorrupt, err)
	}

	s.logger.LogAttrs(s.context, slog.LevelInfo, "scribe: object loaded", slog.String("name", name), slog.Int("size", len(data)))
	return nil
}

// Delete removes the object saved under name. Deleting a missing object is
// not an error.
func (s *Scribe) Delete(name string) error {
	fn, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(fn)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("scribe: %s: %w: %v", name, pointmap.ErrIO, err)
	}
	return nil
}

func writeFileAtomic(dir, fn string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, fn); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
