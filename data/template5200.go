package data

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
)

// Template5200 is Data Representation Template 5.200: Run-Length Packing,
// used by NDFD/NPVU for categorical fields (e.g. weather type) where most
// of the domain repeats a small set of discrete levels. Each level value is
// a table index; runs of the same level are coded with a variable-length
// base-(255-MaxLevel) continuation scheme.
type Template5200 struct {
	NumBitsPerValue    uint8
	MaxLevel           uint16
	NumberOfLevels     uint16
	DecimalScaleFactor uint8
	Levels             []uint16 // scaled value for each level index
	NumberOfDataValues uint32
}

// ParseTemplate5200 parses Data Representation Template 5.200.
func ParseTemplate5200(numDataValues uint32, data []byte) (*Template5200, error) {
	if len(data) < 6 {
		return nil, errors.Errorf("template 5.200 requires at least 6 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	bitsPerValue, _ := r.Uint8()
	maxLevel, _ := r.Uint16()
	numberOfLevels, _ := r.Uint16()
	decimalScaleFactor, _ := r.Uint8()

	if len(data) < 6+int(numberOfLevels)*2 {
		return nil, errors.Errorf("template 5.200 with %d levels requires %d bytes, got %d",
			numberOfLevels, 6+int(numberOfLevels)*2, len(data))
	}
	levels := make([]uint16, numberOfLevels)
	for i := range levels {
		v, _ := r.Uint16()
		levels[i] = v
	}

	return &Template5200{
		NumBitsPerValue:    bitsPerValue,
		MaxLevel:           maxLevel,
		NumberOfLevels:     numberOfLevels,
		DecimalScaleFactor: decimalScaleFactor,
		Levels:             levels,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 200.
func (t *Template5200) TemplateNumber() int { return 200 }

// NumDataValues returns the number of data values.
func (t *Template5200) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the bits per packed octet value.
func (t *Template5200) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode expands the run-length encoding: each octet either names a level
// directly (<= MaxLevel) or continues the previous run's length in a
// variable-length base-(255-MaxLevel) encoding, per WMO Regulation 92.9.2.
func (t *Template5200) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	if t.NumBitsPerValue != 8 {
		return nil, &DecodeError{Kind: NotSupported, Engine: "run-length", Field: "NumBitsPerValue", Value: t.NumBitsPerValue,
			Detail: "only 8-bit run-length octets are decoded"}
	}

	maxRun := uint16(255) - t.MaxLevel
	coded := make([]float32, 0, t.NumberOfDataValues)

	i := 0
	for i < len(packedData) && uint32(len(coded)) < t.NumberOfDataValues {
		octet := uint16(packedData[i])
		i++
		if octet <= t.MaxLevel {
			level := octet
			run := uint32(1)
			factor := uint32(1)
			for i < len(packedData) && uint16(packedData[i]) > t.MaxLevel {
				run += uint32(packedData[i]-uint8(t.MaxLevel)-1) * factor
				factor *= uint32(maxRun)
				i++
			}
			var value float32
			if level == 0 {
				value = float32(math.NaN())
			} else {
				if int(level)-1 >= len(t.Levels) {
					return nil, &DecodeError{Kind: CodecFailure, Engine: "run-length", Detail: fmt.Sprintf("level index %d out of range", level)}
				}
				value = t.applyScaling(t.Levels[level-1])
			}
			for r := uint32(0); r < run && uint32(len(coded)) < t.NumberOfDataValues; r++ {
				coded = append(coded, value)
			}
		}
	}

	return decodeWithBitmap(bitmapRaw, numGridPoints, coded)
}

// applyScaling converts a table level to its physical value: value =
// rawLevel / 10^D.
func (t *Template5200) applyScaling(rawLevel uint16) float32 {
	value := float64(rawLevel)
	for i := uint8(0); i < t.DecimalScaleFactor; i++ {
		value /= 10.0
	}
	return float32(value)
}

// String returns a human-readable description.
func (t *Template5200) String() string {
	return fmt.Sprintf("Template 5.200: Run-Length Packing, %d values, %d levels", t.NumberOfDataValues, t.NumberOfLevels)
}
