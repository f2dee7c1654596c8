package data

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
	"github.com/synopticio/grib2/internal/bitstream"
)

// Template50 is Data Representation Template 5.0: Simple Packing.
//
// Decoding formula: value = (R + X * 2^E) / 10^D, where R is the reference
// value, X is the n-bit unsigned packed value, E is the binary scale factor
// and D is the decimal scale factor.
type Template50 struct {
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	OriginalFieldType  uint8 // Table 5.1: 0 = floating point, 1 = integer
	NumberOfDataValues uint32
}

// ParseTemplate50 parses Data Representation Template 5.0 (10 bytes).
func ParseTemplate50(numDataValues uint32, data []byte) (*Template50, error) {
	if len(data) < 10 {
		return nil, errors.Errorf("template 5.0 requires at least 10 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()

	return &Template50{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 0.
func (t *Template50) TemplateNumber() int { return 0 }

// NumDataValues returns the number of data values.
func (t *Template50) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per packed value.
func (t *Template50) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode unpacks simple-packed data and zips it with the bitmap.
func (t *Template50) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	if t.OriginalFieldType != 0 {
		return nil, &DecodeError{Kind: NotSupported, Engine: "simple", Field: "OriginalFieldType", Value: t.OriginalFieldType,
			Detail: "only floating point original field type is decoded"}
	}

	var coded []float32
	if t.NumBitsPerValue == 0 {
		// All present values collapse to the reference value.
		v := t.applyScaling(0)
		coded = make([]float32, t.NumberOfDataValues)
		for i := range coded {
			coded[i] = v
		}
	} else {
		br := bitstream.New(packedData)
		coded = make([]float32, t.NumberOfDataValues)
		for i := range coded {
			raw, err := br.Next(int(t.NumBitsPerValue))
			if err != nil {
				return nil, &DecodeError{Kind: CodecFailure, Engine: "simple", Detail: errors.Wrapf(err, "value %d", i).Error()}
			}
			coded[i] = t.applyScaling(raw)
		}
	}

	return decodeWithBitmap(bitmapRaw, numGridPoints, coded)
}

// applyScaling applies value = (R + X * 2^E) / 10^D.
func (t *Template50) applyScaling(packedValue uint32) float32 {
	value := float64(t.ReferenceValue)
	if packedValue != 0 {
		value += float64(packedValue) * math.Pow(2.0, float64(t.BinaryScaleFactor))
	}
	if t.DecimalScaleFactor != 0 {
		value /= math.Pow(10.0, float64(t.DecimalScaleFactor))
	}
	return float32(value)
}

// String returns a human-readable description.
func (t *Template50) String() string {
	return fmt.Sprintf("Template 5.0: Simple Packing, %d values, %d bits/value, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumBitsPerValue, t.ReferenceValue,
		t.BinaryScaleFactor, t.DecimalScaleFactor)
}
