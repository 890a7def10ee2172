package pointmap

import "sync"

var cellBytesPool = &sync.Pool{
	New: func() any {
		return make([]byte, 0, 65536)
	},
}

const maxPooledCellBytes = 1024 * 1024

func releaseCellBytes(b []byte) {
	if cap(b) > maxPooledCellBytes {
		return // let oversized buffers get collected
	}
	cellBytesPool.Put(b[:0])
}
