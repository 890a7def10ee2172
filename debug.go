package pointmap

import (
	"encoding/json"
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpResident = DumpFlags(1 << iota)
	DumpPersisted
	DumpStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump describes the map for debugging. Values are rendered as JSON.
func (m *Map[V]) Dump(f DumpFlags) string {
	var buf strings.Builder
	fmt.Fprintln(&buf, dumpSep1)
	fmt.Fprintf(&buf, "pointmap %s (%d resident)\n", m.root, len(m.entries))

	if f.Contains(DumpStats) {
		s := m.Stats()
		fmt.Fprintf(&buf, "stats: loads = %d, saves = %d, unloads = %d, failures = %d, read = %d, written = %d\n", s.Loads, s.Saves, s.Unloads, s.Failures, s.BytesRead, s.BytesWritten)
	}

	if f.Contains(DumpResident) {
		fmt.Fprintln(&buf, dumpSep2)
		for i, e := range m.entries {
			fmt.Fprintf(&buf, "resident.%d %v = %s\n", i+1, e.key, loggableVal(e.value))
		}
	}

	if f.Contains(DumpPersisted) {
		fmt.Fprintln(&buf, dumpSep2)
		points, err := m.storage.Cells()
		if err != nil {
			fmt.Fprintf(&buf, "persisted ** ERROR: %v\n", err)
		}
		for i, p := range points {
			mark := ""
			if _, ok := m.find(p); ok {
				mark = " (resident)"
			}
			fmt.Fprintf(&buf, "persisted.%d %v%s\n", i+1, p, mark)
		}
	}
	return buf.String()
}

func loggableVal(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%T: %v>", v, err)
	}
	return string(raw)
}
