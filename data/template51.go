package data

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
)

// Template51 is Data Representation Template 5.1: Matrix Value at Grid
// Point, used for wave spectra and similar two-level (first-order, second-
// order) packed matrices. Structure only; decoding the matrix expansion
// itself is out of scope.
type Template51 struct {
	ReferenceValue         float32
	BinaryScaleFactor      int16
	DecimalScaleFactor     int16
	NumBitsPerValue        uint8
	OriginalFieldType      uint8
	MatrixCoeff            uint8
	MatrixFirstDimPhysical uint8
	MatrixSecondDimPhysical uint8
	MatrixFirstDimCoeff    uint16
	MatrixSecondDimCoeff   uint16
	MatrixFirstDimWidth    uint8
	NumberOfDataValues     uint32
}

// ParseTemplate51 parses Data Representation Template 5.1 (at least 21 bytes).
func ParseTemplate51(numDataValues uint32, data []byte) (*Template51, error) {
	if len(data) < 21 {
		return nil, errors.Errorf("template 5.1 requires at least 21 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	matrixCoeff, _ := r.Uint8()
	firstDimPhysical, _ := r.Uint8()
	secondDimPhysical, _ := r.Uint8()
	firstDimCoeff, _ := r.Uint16()
	secondDimCoeff, _ := r.Uint16()
	firstDimWidth, _ := r.Uint8()

	return &Template51{
		ReferenceValue:          referenceValue,
		BinaryScaleFactor:       binaryScaleFactor,
		DecimalScaleFactor:      decimalScaleFactor,
		NumBitsPerValue:         bitsPerValue,
		OriginalFieldType:       originalFieldType,
		MatrixCoeff:             matrixCoeff,
		MatrixFirstDimPhysical:  firstDimPhysical,
		MatrixSecondDimPhysical: secondDimPhysical,
		MatrixFirstDimCoeff:     firstDimCoeff,
		MatrixSecondDimCoeff:    secondDimCoeff,
		MatrixFirstDimWidth:     firstDimWidth,
		NumberOfDataValues:      numDataValues,
	}, nil
}

// TemplateNumber returns 1.
func (t *Template51) TemplateNumber() int { return 1 }

// NumDataValues returns the number of data values.
func (t *Template51) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the nominal bits per value.
func (t *Template51) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode is not supported: matrix expansion is structural-only here.
func (t *Template51) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	return nil, &DecodeError{Kind: NotSupported, Engine: "matrix", Detail: "template 5.1 matrix expansion is not decoded"}
}

// String returns a human-readable description.
func (t *Template51) String() string {
	return fmt.Sprintf("Template 5.1: Matrix Value at Grid Point, %d values (structural only)", t.NumberOfDataValues)
}
