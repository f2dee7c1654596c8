// Package data provides GRIB2 Data Representation Section (5) templates
// and the unpack engines that turn Section 7's packed octets into decoded
// float32 values.
package data

import "github.com/synopticio/grib2/bitmap"

// Representation is a parsed Data Representation Template (Table 5.0).
// Every 5.N template implements this; structural-only templates (those
// this build does not decode) still implement it but return a
// *DecodeError with Kind NotSupported from Decode.
type Representation interface {
	// TemplateNumber returns the data representation template number.
	TemplateNumber() int

	// NumDataValues returns the number of data values to be unpacked.
	NumDataValues() uint32

	// BitsPerValue returns the nominal number of bits used to pack each
	// value before any group-level refinement.
	BitsPerValue() uint8

	// Decode unpacks packedData (Section 7's payload) and applies the
	// bitmap (Section 6's payload, or nil for "no bitmap, all points
	// valid") to produce exactly numGridPoints float32 values in scan
	// order, with NaN at points the bitmap marks absent.
	Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error)

	// String returns a human-readable description.
	String() string
}

// decodeWithBitmap is the shared tail every engine calls once it has
// produced its coded (pre-bitmap) value stream: it zips that stream against
// the Section 6 bitmap via package bitmap and returns the full grid.
func decodeWithBitmap(bitmapRaw []byte, numGridPoints int, coded []float32) ([]float32, error) {
	i := 0
	src := func() (float32, bool) {
		if i >= len(coded) {
			return 0, false
		}
		v := coded[i]
		i++
		return v, true
	}
	it, err := bitmap.New(bitmapRaw, numGridPoints, src)
	if err != nil {
		return nil, &DecodeError{Kind: LengthMismatch, Engine: "bitmap", Detail: err.Error()}
	}
	out, err := bitmap.Drain(it)
	if err != nil {
		return nil, &DecodeError{Kind: LengthMismatch, Engine: "bitmap", Detail: err.Error()}
	}
	return out, nil
}
