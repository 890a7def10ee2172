package pointmap

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func setup[V any](t testing.TB, root string, opt Options[V]) *Map[V] {
	t.Helper()
	if root == "" {
		root = filepath.Join(t.TempDir(), "save")
	}
	opt.Root = root
	if opt.Logger == nil {
		opt.Logger = quietLogger
	}
	m := New(opt)
	t.Cleanup(func() {
		ensure(m.Close())
	})
	return m
}

func setupBolt(t testing.TB) Storage {
	t.Helper()
	s := must(OpenBoltStorage(filepath.Join(t.TempDir(), "cells.db"), BoltOptions{IsTesting: true}))
	t.Cleanup(func() {
		ensure(s.Close())
	})
	return s
}

// saveFresh saves a cell whose column may not exist yet.
func saveFresh[V any](t testing.TB, m *Map[V], x, y int) {
	t.Helper()
	ok, err := m.Save(x, y)
	if errors.Is(err, ErrColumnCreated) {
		ok, err = m.Save(x, y)
	}
	if err != nil || !ok {
		t.Fatalf("Save(%d, %d) = %v, %v, wanted true, nil", x, y, ok, err)
	}
}

func chdir(t testing.TB, dir string) {
	t.Helper()
	old := must(os.Getwd())
	ensure(os.Chdir(dir))
	t.Cleanup(func() {
		ensure(os.Chdir(old))
	})
}

func exists(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isempty[T any, S ~[]T](t testing.TB, a S) {
	if len(a) > 0 {
		t.Helper()
		t.Errorf("** got %v, wanted empty slice", a)
	}
}

func isErr(t testing.TB, err error, targets ...error) {
	t.Helper()
	if err == nil {
		t.Fatalf("** got nil error, wanted %v", targets)
	}
	for _, target := range targets {
		if !errors.Is(err, target) {
			t.Errorf("** got error %v, wanted it to match %v", err, target)
		}
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func must2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	if err != nil {
		panic(err)
	}
	return v1, v2
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}
