package pointmap

// Stats counts disk crossings of a Map since it was created.
type Stats struct {
	Resident     int
	Loads        uint64
	Saves        uint64
	Unloads      uint64
	Failures     uint64
	BytesRead    uint64
	BytesWritten uint64
}

func (s Stats) Writes() uint64 {
	return s.Saves + s.Unloads
}

func (m *Map[V]) Stats() Stats {
	s := m.stats
	s.Resident = len(m.entries)
	return s
}
