package data

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
	"github.com/synopticio/grib2/jpeg2000"
)

// Template540 is Data Representation Template 5.40: Grid Point Data -
// JPEG2000 Compression, used by many NCEP and ECMWF products. The packed
// octets are a J2K codestream decoded by package jpeg2000, whose output
// integer samples are run through the same reference/scale transform as
// Simple Packing.
type Template540 struct {
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	OriginalFieldType  uint8
	CompressionType    uint8
	TargetCompression  uint8
	NumberOfDataValues uint32
}

// ParseTemplate540 parses Data Representation Template 5.40 (at least 12 bytes).
func ParseTemplate540(numDataValues uint32, data []byte) (*Template540, error) {
	if len(data) < 12 {
		return nil, errors.Errorf("template 5.40 requires at least 12 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	compressionType, _ := r.Uint8()
	targetCompression, _ := r.Uint8()

	return &Template540{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		CompressionType:    compressionType,
		TargetCompression:  targetCompression,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 40.
func (t *Template540) TemplateNumber() int { return 40 }

// NumDataValues returns the number of data values.
func (t *Template540) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the nominal number of bits per value.
func (t *Template540) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode inflates the J2K codestream and applies simple-packing-style
// scaling to each reconstructed sample.
func (t *Template540) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	if t.OriginalFieldType != 0 {
		return nil, &DecodeError{Kind: NotSupported, Engine: "jpeg2000", Field: "OriginalFieldType", Value: t.OriginalFieldType,
			Detail: "only floating point original field type is decoded"}
	}
	if t.CompressionType != 0 {
		return nil, &DecodeError{Kind: NotSupported, Engine: "jpeg2000", Field: "CompressionType", Value: t.CompressionType,
			Detail: "only lossless (reversible 5/3) compression is decoded"}
	}

	samples, _, _, err := jpeg2000.Decode(packedData)
	if err != nil {
		return nil, &DecodeError{Kind: CodecFailure, Engine: "jpeg2000", Detail: err.Error()}
	}
	if uint32(len(samples)) != t.NumberOfDataValues {
		return nil, &DecodeError{Kind: LengthMismatch, Engine: "jpeg2000",
			Detail: fmt.Sprintf("decoded %d samples, expected %d", len(samples), t.NumberOfDataValues)}
	}

	coded := make([]float32, len(samples))
	for i, s := range samples {
		coded[i] = t.applyScaling(s)
	}
	return decodeWithBitmap(bitmapRaw, numGridPoints, coded)
}

// applyScaling applies value = (R + X * 2^E) / 10^D.
func (t *Template540) applyScaling(packedValue int32) float32 {
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
func (t *Template540) String() string {
	return fmt.Sprintf("Template 5.40: JPEG2000 Compression, %d values, %d bits/value, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumBitsPerValue, t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor)
}
