package data

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/ccsds"
	"github.com/synopticio/grib2/internal"
)

// Template542 is Data Representation Template 5.42: Grid Point Data -
// CCSDS Compression, used by Eumetsat and a handful of NCEP products. The
// packed octets hold a CCSDS 121.0 Rice-coded residual stream, decoded by
// package ccsds and then run through the same reference/scale transform
// as Simple Packing.
type Template542 struct {
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	OriginalFieldType  uint8
	CCSDSFlags         uint8
	BlockSize          uint8
	ReferenceInterval  uint8
	NumberOfDataValues uint32
}

// ParseTemplate542 parses Data Representation Template 5.42 (at least 13 bytes).
func ParseTemplate542(numDataValues uint32, data []byte) (*Template542, error) {
	if len(data) < 13 {
		return nil, errors.Errorf("template 5.42 requires at least 13 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	ccsdsFlags, _ := r.Uint8()
	blockSize, _ := r.Uint8()
	referenceInterval, _ := r.Uint8()

	return &Template542{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		CCSDSFlags:         ccsdsFlags,
		BlockSize:          blockSize,
		ReferenceInterval:  referenceInterval,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 42.
func (t *Template542) TemplateNumber() int { return 42 }

// NumDataValues returns the number of data values.
func (t *Template542) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per packed value.
func (t *Template542) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode unpacks the CCSDS Rice-coded residual stream and applies
// simple-packing-style scaling.
func (t *Template542) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	if t.OriginalFieldType != 0 {
		return nil, &DecodeError{Kind: NotSupported, Engine: "ccsds", Field: "OriginalFieldType", Value: t.OriginalFieldType,
			Detail: "only floating point original field type is decoded"}
	}

	samples, err := ccsds.Decode(packedData, int(t.NumberOfDataValues), ccsds.Options{
		BitsPerSample:     int(t.NumBitsPerValue),
		BlockSize:         int(t.BlockSize),
		ReferenceInterval: int(t.ReferenceInterval),
	})
	if err != nil {
		return nil, &DecodeError{Kind: CodecFailure, Engine: "ccsds", Detail: err.Error()}
	}

	coded := make([]float32, len(samples))
	for i, s := range samples {
		coded[i] = t.applyScaling(s)
	}
	return decodeWithBitmap(bitmapRaw, numGridPoints, coded)
}

// applyScaling applies value = (R + X * 2^E) / 10^D.
func (t *Template542) applyScaling(packedValue uint32) float32 {
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
func (t *Template542) String() string {
	return fmt.Sprintf("Template 5.42: CCSDS Compression, %d values, %d bits/value, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumBitsPerValue, t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor)
}
