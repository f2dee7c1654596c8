package data

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
)

// Template53 is Data Representation Template 5.3: Complex Packing with
// Spatial Differencing. Commonly used by regional forecast models like
// HRRR and NAM: spatial differencing shrinks the dynamic range before the
// Template 5.2 group packing is applied on top.
type Template53 struct {
	ReferenceValue            float32
	BinaryScaleFactor         int16
	DecimalScaleFactor        int16
	NumBitsPerValue           uint8
	OriginalFieldType         uint8
	GroupSplittingMethod      uint8
	MissingValueManagement    uint8
	PrimaryMissingValue       float32
	SecondaryMissingValue     float32
	NumberOfGroups            uint32
	ReferenceGroupWidth       uint8
	NumBitsGroupWidth         uint8
	ReferenceGroupLength      uint32
	GroupLengthIncrement      uint8
	TrueLengthLastGroup       uint32
	NumBitsGroupLength        uint8
	SpatialDiffOrder          uint8
	NumOctetsExtraDescriptors uint8
	NumberOfDataValues        uint32
}

// ParseTemplate53 parses Data Representation Template 5.3 (at least 38 bytes).
func ParseTemplate53(numDataValues uint32, data []byte) (*Template53, error) {
	if len(data) < 38 {
		return nil, errors.Errorf("template 5.3 requires at least 38 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	groupSplittingMethod, _ := r.Uint8()
	missingValueManagement, _ := r.Uint8()
	primaryMissingValue, _ := r.Float32()
	secondaryMissingValue, _ := r.Float32()
	numberOfGroups, _ := r.Uint32()
	referenceGroupWidth, _ := r.Uint8()
	numBitsGroupWidth, _ := r.Uint8()
	referenceGroupLength, _ := r.Uint32()
	groupLengthIncrement, _ := r.Uint8()
	trueLengthLastGroup, _ := r.Uint32()
	numBitsGroupLength, _ := r.Uint8()
	spatialDiffOrder, _ := r.Uint8()
	numOctetsExtraDescriptors, _ := r.Uint8()

	return &Template53{
		ReferenceValue:            referenceValue,
		BinaryScaleFactor:         binaryScaleFactor,
		DecimalScaleFactor:        decimalScaleFactor,
		NumBitsPerValue:           bitsPerValue,
		OriginalFieldType:         originalFieldType,
		GroupSplittingMethod:      groupSplittingMethod,
		MissingValueManagement:    missingValueManagement,
		PrimaryMissingValue:       primaryMissingValue,
		SecondaryMissingValue:     secondaryMissingValue,
		NumberOfGroups:            numberOfGroups,
		ReferenceGroupWidth:       referenceGroupWidth,
		NumBitsGroupWidth:         numBitsGroupWidth,
		ReferenceGroupLength:      referenceGroupLength,
		GroupLengthIncrement:      groupLengthIncrement,
		TrueLengthLastGroup:       trueLengthLastGroup,
		NumBitsGroupLength:        numBitsGroupLength,
		SpatialDiffOrder:          spatialDiffOrder,
		NumOctetsExtraDescriptors: numOctetsExtraDescriptors,
		NumberOfDataValues:        numDataValues,
	}, nil
}

// TemplateNumber returns 3.
func (t *Template53) TemplateNumber() int { return 3 }

// NumDataValues returns the number of data values.
func (t *Template53) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the nominal bits per value before grouping.
func (t *Template53) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode unpacks complex-packed, spatially-differenced data: group
// expansion, then reversal of the 1st- or 2nd-order difference, then
// simple-packing-style scaling.
func (t *Template53) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	if len(packedData) == 0 {
		return nil, &DecodeError{Kind: CodecFailure, Engine: "complex-spatial-diff", Detail: "no packed data"}
	}

	g, err := readGroups(packedData, groupLayout{
		numGroups:              t.NumberOfGroups,
		refWidth:               t.ReferenceGroupWidth,
		numBitsWidth:           t.NumBitsGroupWidth,
		refLength:              t.ReferenceGroupLength,
		lengthIncrement:        t.GroupLengthIncrement,
		trueLastLength:         t.TrueLengthLastGroup,
		numBitsLength:          t.NumBitsGroupLength,
		groupRefWidth:          t.NumBitsPerValue,
		totalValues:            int(t.NumberOfDataValues),
		spatialDiffOctets:      t.NumOctetsExtraDescriptors,
		spatialDiffOrder:       t.SpatialDiffOrder,
		missingValueManagement: t.MissingValueManagement,
	})
	if err != nil {
		return nil, &DecodeError{Kind: CodecFailure, Engine: "complex-spatial-diff", Detail: err.Error()}
	}

	var finalVals []int32
	switch t.SpatialDiffOrder {
	case 1:
		finalVals = reverseSpatialDifferencing1(g.values, g.minVal)
	case 2:
		finalVals = reverseSpatialDifferencing2(g.values, g.minVal)
	default:
		finalVals = g.values
	}

	// Missing codes are sentinels, not differencing input; reconstructing
	// the running sum through them would be meaningless, so mask them to
	// NaN in the final coded stream rather than the raw group values.
	coded := make([]float32, len(finalVals))
	for i, v := range finalVals {
		if g.missing[i] {
			coded[i] = float32(math.NaN())
		} else {
			coded[i] = t.applyScaling(v)
		}
	}
	return decodeWithBitmap(bitmapRaw, numGridPoints, coded)
}

// reverseSpatialDifferencing1 reverses Y[n] = X[n] - X[n-1]:
// X[n] = X[n-1] + Y[n] + min_val.
func reverseSpatialDifferencing1(diffVals []int32, minVal int32) []int32 {
	if len(diffVals) == 0 {
		return diffVals
	}
	vals := make([]int32, len(diffVals))
	vals[0] = diffVals[0]
	for i := 1; i < len(diffVals); i++ {
		vals[i] = vals[i-1] + diffVals[i] + minVal
	}
	return vals
}

// reverseSpatialDifferencing2 reverses
// Z[n] = X[n] - 2*X[n-1] + X[n-2]: X[n] = Z[n] + 2*X[n-1] - X[n-2] + min_val.
func reverseSpatialDifferencing2(diffVals []int32, minVal int32) []int32 {
	if len(diffVals) < 2 {
		return diffVals
	}
	vals := make([]int32, len(diffVals))
	vals[0] = diffVals[0]
	vals[1] = diffVals[1]
	for i := 2; i < len(diffVals); i++ {
		vals[i] = diffVals[i] + 2*vals[i-1] - vals[i-2] + minVal
	}
	return vals
}

// applyScaling applies value = (R + X * 2^E) / 10^D.
func (t *Template53) applyScaling(packedValue int32) float32 {
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
func (t *Template53) String() string {
	return fmt.Sprintf("Template 5.3: Complex Packing (Spatial Diff Order %d), %d values, %d groups, R=%g, E=%d, D=%d",
		t.SpatialDiffOrder, t.NumberOfDataValues, t.NumberOfGroups, t.ReferenceValue,
		t.BinaryScaleFactor, t.DecimalScaleFactor)
}
