package pointmap

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const envelopeMagic = "PMC1"

type envelopeFlags uint64

const (
	efCompressionBit0 = envelopeFlags(1 << iota)

	efSupportedMask = envelopeFlags(0)
	efDefault       = envelopeFlags(0)

	checksumSize          = 8
	maxEnvelopeHeaderSize = len(envelopeMagic) + 2*binary.MaxVarintLen64
	minEnvelopeSize       = len(envelopeMagic) + 2 + checksumSize
)

// reserveEnvelopeHeader leaves room for the header, so that the codec can
// append the payload right after it.
func reserveEnvelopeHeader(buf []byte) []byte {
	if len(buf) != 0 {
		panic("envelope must be written to an empty buffer")
	}
	return ensureCapacity(buf, maxEnvelopeHeaderSize+checksumSize)[:maxEnvelopeHeaderSize]
}

// finishEnvelope writes the header in front of the payload and appends the
// checksum. The returned slice may start past the beginning of buf.
func finishEnvelope(buf []byte, flags envelopeFlags) []byte {
	if len(buf) < maxEnvelopeHeaderSize {
		panic(fmt.Errorf("envelope buffer too short: %d", len(buf))) // sanity check
	}
	if (flags &^ efSupportedMask) != 0 {
		panic(fmt.Errorf("invalid flags %x", flags))
	}
	payloadSize := len(buf) - maxEnvelopeHeaderSize

	var hdr [maxEnvelopeHeaderSize]byte
	off := copy(hdr[:], envelopeMagic)
	off += binary.PutUvarint(hdr[off:], uint64(flags))
	off += binary.PutUvarint(hdr[off:], uint64(payloadSize))

	// move the header closer to data
	start := maxEnvelopeHeaderSize - off
	copy(buf[start:maxEnvelopeHeaderSize], hdr[:off])
	buf = buf[start:]

	return binary.BigEndian.AppendUint64(buf, xxhash.Sum64(buf))
}

// EncodeEnvelope appends a complete cell file holding payload to buf, which
// must be empty (typically buf[:0] of a reused slice).
func EncodeEnvelope(buf []byte, payload []byte) []byte {
	buf = reserveEnvelopeHeader(buf)
	buf = appendRaw(buf, payload)
	return finishEnvelope(buf, efDefault)
}

// DecodeEnvelope verifies a cell file and returns its payload, which aliases
// data. Errors are *DataError.
func DecodeEnvelope(data []byte) ([]byte, error) {
	if len(data) < minEnvelopeSize {
		return nil, dataErrf(data, 0, nil, "invalid cell: at least %d bytes required", minEnvelopeSize)
	}
	if !bytes.HasPrefix(data, []byte(envelopeMagic)) {
		return nil, dataErrf(data, 0, nil, "invalid cell: bad magic")
	}

	n := len(data) - checksumSize
	body := data[:n]
	expected := binary.BigEndian.Uint64(data[n:])
	if actual := xxhash.Sum64(body); actual != expected {
		return nil, dataErrf(data, n, nil, "invalid cell: checksum mismatch, got %016x, expected %016x", actual, expected)
	}

	d := makeByteDecoder(body)
	d.Buf = d.Buf[len(envelopeMagic):]

	v, err := d.Uvarint()
	if err != nil {
		return nil, err
	}
	if flags := envelopeFlags(v); (flags &^ efSupportedMask) != 0 {
		return nil, dataErrf(data, d.Off(), nil, "invalid cell: unsupported flags %x", v)
	}

	payload, err := d.VarBytes()
	if err != nil {
		return nil, err
	}
	if len(d.Buf) != 0 {
		return nil, dataErrf(data, d.Off(), nil, "invalid cell: %d trailing bytes after payload", len(d.Buf))
	}
	return payload, nil
}
