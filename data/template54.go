package data

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
)

// Template54 is Data Representation Template 5.4: IEEE Floating Point
// Data, where values are stored as raw 32- or 64-bit IEEE754 words with no
// reference/scale packing at all. Structure only in this build.
type Template54 struct {
	Precision          uint8 // Table 5.7: 1 = 32-bit, 2 = 64-bit
	NumberOfDataValues uint32
}

// ParseTemplate54 parses Data Representation Template 5.4 (1 byte).
func ParseTemplate54(numDataValues uint32, data []byte) (*Template54, error) {
	if len(data) < 1 {
		return nil, errors.Errorf("template 5.4 requires at least 1 byte, got %d", len(data))
	}
	r := internal.NewReader(data)
	precision, _ := r.Uint8()

	return &Template54{
		Precision:          precision,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 4.
func (t *Template54) TemplateNumber() int { return 4 }

// NumDataValues returns the number of data values.
func (t *Template54) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the word width implied by Precision.
func (t *Template54) BitsPerValue() uint8 {
	if t.Precision == 2 {
		return 64
	}
	return 32
}

// Decode is not supported in this build.
func (t *Template54) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	return nil, &DecodeError{Kind: NotSupported, Engine: "ieee-float", Detail: "template 5.4 raw IEEE float unpacking is not decoded"}
}

// String returns a human-readable description.
func (t *Template54) String() string {
	return fmt.Sprintf("Template 5.4: IEEE Floating Point, %d values, precision %d (structural only)",
		t.NumberOfDataValues, t.Precision)
}
