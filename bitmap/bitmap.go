// Package bitmap implements the GRIB2 Bit Map Section 6 iterator: it zips a
// coded-value source with a presence mask to produce a full-length value
// stream where absent points decode to NaN.
//
// Every unpack engine in package data routes its coded values through an
// Iterator here instead of reimplementing the present/missing zip inline,
// so the "apply the bitmap" step has exactly one implementation.
package bitmap

import (
	"math"

	"github.com/pkg/errors"
)

// Source produces the next coded, scaled value. ok is false once the coded
// value stream is exhausted.
type Source func() (float32, bool)

// Iterator walks exactly N grid points, yielding a coded value at points
// where the bitmap marks data present and NaN where it marks data absent.
type Iterator struct {
	bits   []byte
	synth  bool // true when no Section 6 bitmap is present (all points valid)
	n      int
	src    Source
	pos    int
}

// New builds an Iterator over n grid points. raw is the Section 6 bitmap
// payload (one bit per point, MSB first); pass nil to synthesize an
// all-ones bitmap, matching the GRIB2 convention that bitmap indicator 255
// means "no bitmap, all points present".
//
// Returns an error if raw is non-nil but too short to cover n points; the
// data package's decodeWithBitmap reports it as a DecodeError with Kind
// LengthMismatch.
func New(raw []byte, n int, src Source) (*Iterator, error) {
	if raw == nil {
		return &Iterator{synth: true, n: n, src: src}, nil
	}
	need := (n + 7) / 8
	if len(raw) < need {
		return nil, errors.Errorf("bitmap: need %d bytes to cover %d points, got %d", need, n, len(raw))
	}
	return &Iterator{bits: raw, n: n, src: src}, nil
}

// present reports whether grid point i has valid data.
func (it *Iterator) present(i int) bool {
	if it.synth {
		return true
	}
	byteIdx := i / 8
	bitIdx := 7 - (i % 8)
	return it.bits[byteIdx]&(1<<uint(bitIdx)) != 0
}

// Next returns the value for the next grid point in scan order, or
// (0, false) once all N points have been produced.
func (it *Iterator) Next() (float32, bool) {
	if it.pos >= it.n {
		return 0, false
	}
	i := it.pos
	it.pos++
	if !it.present(i) {
		return float32(math.NaN()), true
	}
	v, ok := it.src()
	if !ok {
		// Source exhausted before the bitmap said it should be: treat the
		// remaining present points as a length mismatch surfaced by the
		// caller via Drain's error return, not panicked on here.
		it.pos = it.n
		return 0, false
	}
	return v, true
}

// Len reports the total number of grid points this iterator walks.
func (it *Iterator) Len() int { return it.n }

// Drain consumes the iterator fully into a slice. Returns a LengthMismatch
// style error if the coded source was exhausted before N points were
// produced.
func Drain(it *Iterator) ([]float32, error) {
	out := make([]float32, 0, it.Len())
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	if len(out) != it.Len() {
		return nil, errors.Errorf("bitmap: coded value source exhausted after %d of %d points", len(out), it.Len())
	}
	return out, nil
}

// CountPresent returns how many of the N points are marked present.
func (it *Iterator) CountPresent() int {
	if it.synth {
		return it.n
	}
	count := 0
	for i := 0; i < it.n; i++ {
		if it.present(i) {
			count++
		}
	}
	return count
}
