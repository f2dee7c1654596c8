// Package internal provides the octet-level and bit-level readers shared by
// every section and template parser in grib2.
package internal

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Reader provides safe big-endian binary reading with bounds checking.
// All GRIB2 fields are big-endian (network byte order).
type Reader struct {
	data   []byte
	offset int
}

// NewReader creates a new binary reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, offset: 0}
}

// Uint8 reads an unsigned 8-bit integer.
func (r *Reader) Uint8() (uint8, error) {
	if r.offset+1 > len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	val := r.data[r.offset]
	r.offset++
	return val, nil
}

// Int8 reads a signed 8-bit integer using GRIB2 sign-magnitude encoding:
// bit 7 is the sign (1 = negative), bits 0-6 are the magnitude.
func (r *Reader) Int8() (int8, error) {
	val, err := r.Uint8()
	if err != nil {
		return 0, err
	}
	return signMagnitude8(val), nil
}

// Uint16 reads an unsigned 16-bit big-endian integer.
func (r *Reader) Uint16() (uint16, error) {
	if r.offset+2 > len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	val := binary.BigEndian.Uint16(r.data[r.offset:])
	r.offset += 2
	return val, nil
}

// Int16 reads a signed 16-bit sign-magnitude integer (bit 15 is the sign).
func (r *Reader) Int16() (int16, error) {
	val, err := r.Uint16()
	if err != nil {
		return 0, err
	}
	return signMagnitude16(val), nil
}

// Uint32 reads an unsigned 32-bit big-endian integer.
func (r *Reader) Uint32() (uint32, error) {
	if r.offset+4 > len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	val := binary.BigEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return val, nil
}

// Int32 reads a signed 32-bit sign-magnitude integer (bit 31 is the sign).
func (r *Reader) Int32() (int32, error) {
	val, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	return signMagnitude32(val), nil
}

// Uint64 reads an unsigned 64-bit big-endian integer.
func (r *Reader) Uint64() (uint64, error) {
	if r.offset+8 > len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	val := binary.BigEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return val, nil
}

// Int64 reads a signed 64-bit sign-magnitude integer (bit 63 is the sign).
func (r *Reader) Int64() (int64, error) {
	val, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	return signMagnitude64(val), nil
}

// Float32 reads a 32-bit IEEE 754 floating-point number.
func (r *Reader) Float32() (float32, error) {
	bits, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// Float64 reads a 64-bit IEEE 754 floating-point number.
func (r *Reader) Float64() (float64, error) {
	bits, err := r.Uint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// Bytes reads n bytes and returns a copy, safe to retain past further reads.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.offset+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	val := make([]byte, n)
	copy(val, r.data[r.offset:r.offset+n])
	r.offset += n
	return val, nil
}

// BytesNoCopy reads n bytes and returns a slice aliasing the reader's buffer.
// The result is only valid as long as the reader's backing array is retained.
func (r *Reader) BytesNoCopy(n int) ([]byte, error) {
	if n < 0 || r.offset+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	val := r.data[r.offset : r.offset+n]
	r.offset += n
	return val, nil
}

// String reads n bytes and returns them as a string.
func (r *Reader) String(n int) (string, error) {
	val, err := r.BytesNoCopy(n)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// Skip advances the offset by n bytes without reading.
func (r *Reader) Skip(n int) error {
	if r.offset+n > len(r.data) {
		return io.ErrUnexpectedEOF
	}
	r.offset += n
	return nil
}

// Peek returns the next n bytes without advancing the offset.
func (r *Reader) Peek(n int) ([]byte, error) {
	if r.offset+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	return r.data[r.offset : r.offset+n], nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// Offset returns the current byte offset.
func (r *Reader) Offset() int {
	return r.offset
}

// SetOffset sets the current byte offset.
func (r *Reader) SetOffset(offset int) error {
	if offset < 0 || offset > len(r.data) {
		return errors.Errorf("offset %d out of bounds [0, %d]", offset, len(r.data))
	}
	r.offset = offset
	return nil
}

// Len returns the total length of the underlying data.
func (r *Reader) Len() int {
	return len(r.data)
}

// signMagnitude8 decodes an 8-bit sign-magnitude value: bit 7 is sign.
func signMagnitude8(v uint8) int8 {
	if v&0x80 != 0 {
		return -int8(v & 0x7F)
	}
	return int8(v)
}

// signMagnitude16 decodes a 16-bit sign-magnitude value: bit 15 is sign.
func signMagnitude16(v uint16) int16 {
	if v&0x8000 != 0 {
		return -int16(v & 0x7FFF)
	}
	return int16(v)
}

// signMagnitude32 decodes a 32-bit sign-magnitude value: bit 31 is sign.
func signMagnitude32(v uint32) int32 {
	if v&0x80000000 != 0 {
		return -int32(v & 0x7FFFFFFF)
	}
	return int32(v)
}

// signMagnitude64 decodes a 64-bit sign-magnitude value: bit 63 is sign.
func signMagnitude64(v uint64) int64 {
	if v&0x8000000000000000 != 0 {
		return -int64(v & 0x7FFFFFFFFFFFFFFF)
	}
	return int64(v)
}

// SignMagnitudeN decodes an n-byte (1 <= n <= 8) big-endian sign-magnitude
// integer out of raw octets, as used for spatial-differencing descriptors
// in Template 5.3 where the octet width is chosen at message-encode time.
func SignMagnitudeN(data []byte) (int64, error) {
	n := len(data)
	if n < 1 || n > 8 {
		return 0, errors.Errorf("sign-magnitude width must be in [1,8] octets, got %d", n)
	}
	var magnitude uint64
	for i, b := range data {
		v := uint64(b)
		if i == 0 {
			v &= 0x7F
		}
		magnitude = (magnitude << 8) | v
	}
	if data[0]&0x80 != 0 {
		return -int64(magnitude), nil
	}
	return int64(magnitude), nil
}
