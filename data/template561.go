package data

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
)

// Template561 is Data Representation Template 5.61: Grid Point Data -
// Simple Packing With Logarithm Pre-processing, used for fields spanning
// many orders of magnitude (e.g. precipitation, aerosol optical depth)
// where a log transform is applied before simple packing. Structure only
// in this build: reversing the log transform is not implemented.
type Template561 struct {
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	OriginalFieldType  uint8
	NumberOfDataValues uint32
}

// ParseTemplate561 parses Data Representation Template 5.61 (10 bytes; same
// layout as Template 5.0, with the logarithm transform implied by the
// template number rather than an extra field).
func ParseTemplate561(numDataValues uint32, data []byte) (*Template561, error) {
	if len(data) < 10 {
		return nil, errors.Errorf("template 5.61 requires at least 10 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()

	return &Template561{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 61.
func (t *Template561) TemplateNumber() int { return 61 }

// NumDataValues returns the number of data values.
func (t *Template561) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per packed value.
func (t *Template561) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode is not supported: the inverse logarithm transform is not applied.
func (t *Template561) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	return nil, &DecodeError{Kind: NotSupported, Engine: "log-simple", Detail: "template 5.61 logarithm pre-processing reversal is not decoded"}
}

// String returns a human-readable description.
func (t *Template561) String() string {
	return fmt.Sprintf("Template 5.61: Simple Packing with Logarithm Pre-processing, %d values (structural only)", t.NumberOfDataValues)
}
