package pointmap

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
	"testing"
)

func TestBytesBuilder(t *testing.T) {
	var bb bytesBuilder
	off := bb.Grow(3)
	copy(bb.Buf[off:], []byte{1, 2, 3})
	_, _ = bb.Write([]byte{9, 8})
	_ = bb.WriteByte(7)
	deepEqual(t, bb.Buf, []byte{1, 2, 3, 9, 8, 7})
}

func TestEnsureCapacity(t *testing.T) {
	buf := ensureCapacity([]byte{1, 2}, 100)
	if cap(buf) < 100 {
		t.Fatalf("cap = %d, wanted >= 100", cap(buf))
	}
	deepEqual(t, buf, []byte{1, 2})
}

func TestOrderedInt_PreservesOrder(t *testing.T) {
	values := []int{math.MinInt, -1 << 40, -300, -1, 0, 1, 255, 256, 1 << 40, math.MaxInt}
	var keys [][]byte
	for _, v := range values {
		k := appendOrderedInt(nil, v)
		if len(k) != orderedIntSize {
			t.Fatalf("len(appendOrderedInt(%d)) = %d", v, len(k))
		}
		deepEqual(t, must(decodeOrderedInt(k)), v)
		keys = append(keys, k)
	}
	if !sort.SliceIsSorted(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 }) {
		t.Errorf("encoded keys are not sorted: %x", keys)
	}

	if _, err := decodeOrderedInt([]byte{1, 2, 3}); err == nil {
		t.Errorf("decodeOrderedInt accepted a short key")
	}
}

func TestByteDecoder(t *testing.T) {
	var buf []byte
	buf = binary.AppendUvarint(buf, 300)
	buf = binary.AppendUvarint(buf, 3)
	buf = append(buf, 'a', 'b', 'c', 'd')

	d := makeByteDecoder(buf)
	deepEqual(t, must(d.Uvarinti()), 300)
	deepEqual(t, string(must(d.VarBytes())), "abc")
	deepEqual(t, d.Off(), len(buf)-1)

	if _, err := d.Raw(2); err == nil {
		t.Errorf("Raw past the end succeeded")
	}
	deepEqual(t, string(must(d.Raw(1))), "d")
	if _, err := d.Uvarint(); err == nil {
		t.Errorf("Uvarint on empty buffer succeeded")
	}
}

func TestHexstr(t *testing.T) {
	deepEqual(t, hexstr(nil), "<nil>")
	deepEqual(t, hexstr([]byte{}), "<empty>")
	deepEqual(t, hexstr([]byte{0xAB, 1}), "ab01")
	deepEqual(t, head([]byte{1, 2, 3}, 2), []byte{1, 2})
	deepEqual(t, head([]byte{1}, 16), []byte{1})
}
