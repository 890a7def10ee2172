package pointmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec converts cell values to bytes and back.
//
// Encode appends the encoded value to buf and returns the extended slice.
// Decode must not retain data after returning: storages may hand out memory
// that is only valid for the duration of the call.
type Codec[V any] interface {
	Encode(buf []byte, v V) ([]byte, error)
	Decode(data []byte, v *V) error
}

// MsgPack returns the default codec, which encodes values using msgpack.
// Keys of map[string]string and map[string]any are sorted, so values built
// from structs, slices and those maps produce equal files when equal. Other
// map types are written in iteration order.
func MsgPack[V any]() Codec[V] {
	return msgpackCodec[V]{}
}

type msgpackCodec[V any] struct{}

func (msgpackCodec[V]) Encode(buf []byte, v V) ([]byte, error) {
	bb := bytesBuilder{buf}
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return buf, fmt.Errorf("failed to encode %T using MsgPack: %w", v, err)
	}
	return bb.Buf, nil
}

func (msgpackCodec[V]) Decode(data []byte, v *V) error {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	err := dec.Decode(v)
	msgpack.PutDecoder(dec)
	if err != nil {
		return dataErrf(data, 0, err, "failed to decode msgpack into %T", v)
	}
	if r.Len() != 0 {
		return dataErrf(data, len(data)-r.Len(), nil, "%d trailing bytes after msgpack value", r.Len())
	}
	return nil
}

// JSON returns a codec producing human-readable cell payloads.
func JSON[V any]() Codec[V] {
	return jsonCodec[V]{}
}

type jsonCodec[V any] struct{}

func (jsonCodec[V]) Encode(buf []byte, v V) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return buf, fmt.Errorf("failed to encode %T to JSON: %w", v, err)
	}
	return appendRaw(buf, raw), nil
}

func (jsonCodec[V]) Decode(data []byte, v *V) error {
	err := json.Unmarshal(data, v)
	if err != nil {
		return dataErrf(data, 0, err, "failed to decode JSON into %T", v)
	}
	return nil
}

// Bytes returns a codec storing raw byte slices as is.
func Bytes() Codec[[]byte] {
	return bytesCodec{}
}

type bytesCodec struct{}

func (bytesCodec) Encode(buf []byte, v []byte) ([]byte, error) {
	return appendRaw(buf, v), nil
}

func (bytesCodec) Decode(data []byte, v *[]byte) error {
	*v = slices.Clone(data)
	return nil
}
