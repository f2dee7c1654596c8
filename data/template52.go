package data

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
	"github.com/synopticio/grib2/internal/bitstream"
)

// Template52 is Data Representation Template 5.2: Complex Packing.
//
// Like Simple Packing, but the data is split into variable-length groups,
// each with its own reference value and bit width, so a field with a mix of
// flat and highly variable regions (e.g. cloud cover) compresses better
// than uniform simple packing. Template53 is the spatial-differencing
// variant of this same group layout.
type Template52 struct {
	ReferenceValue         float32
	BinaryScaleFactor      int16
	DecimalScaleFactor     int16
	NumBitsPerValue        uint8
	OriginalFieldType      uint8
	GroupSplittingMethod   uint8
	MissingValueManagement uint8
	PrimaryMissingValue    float32
	SecondaryMissingValue  float32
	NumberOfGroups         uint32
	ReferenceGroupWidth    uint8
	NumBitsGroupWidth      uint8
	ReferenceGroupLength   uint32
	GroupLengthIncrement   uint8
	TrueLengthLastGroup    uint32
	NumBitsGroupLength     uint8
	NumberOfDataValues     uint32
}

// ParseTemplate52 parses Data Representation Template 5.2 (at least 36 bytes).
func ParseTemplate52(numDataValues uint32, data []byte) (*Template52, error) {
	if len(data) < 36 {
		return nil, errors.Errorf("template 5.2 requires at least 36 bytes, got %d", len(data))
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

	return &Template52{
		ReferenceValue:         referenceValue,
		BinaryScaleFactor:      binaryScaleFactor,
		DecimalScaleFactor:     decimalScaleFactor,
		NumBitsPerValue:        bitsPerValue,
		OriginalFieldType:      originalFieldType,
		GroupSplittingMethod:   groupSplittingMethod,
		MissingValueManagement: missingValueManagement,
		PrimaryMissingValue:    primaryMissingValue,
		SecondaryMissingValue:  secondaryMissingValue,
		NumberOfGroups:         numberOfGroups,
		ReferenceGroupWidth:    referenceGroupWidth,
		NumBitsGroupWidth:      numBitsGroupWidth,
		ReferenceGroupLength:   referenceGroupLength,
		GroupLengthIncrement:   groupLengthIncrement,
		TrueLengthLastGroup:    trueLengthLastGroup,
		NumBitsGroupLength:     numBitsGroupLength,
		NumberOfDataValues:     numDataValues,
	}, nil
}

// TemplateNumber returns 2.
func (t *Template52) TemplateNumber() int { return 2 }

// NumDataValues returns the number of data values.
func (t *Template52) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the nominal bits per value before grouping.
func (t *Template52) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode unpacks complex-packed (grouped, without spatial differencing) data.
func (t *Template52) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	groups, err := readGroups(packedData, groupLayout{
		numGroups:              t.NumberOfGroups,
		refWidth:               t.ReferenceGroupWidth,
		numBitsWidth:           t.NumBitsGroupWidth,
		refLength:              t.ReferenceGroupLength,
		lengthIncrement:        t.GroupLengthIncrement,
		trueLastLength:         t.TrueLengthLastGroup,
		numBitsLength:          t.NumBitsGroupLength,
		groupRefWidth:          t.NumBitsPerValue,
		totalValues:            int(t.NumberOfDataValues),
		spatialDiffOctets:      0,
		spatialDiffOrder:       0,
		missingValueManagement: t.MissingValueManagement,
	})
	if err != nil {
		return nil, &DecodeError{Kind: CodecFailure, Engine: "complex", Detail: err.Error()}
	}

	coded := make([]float32, len(groups.values))
	for i, v := range groups.values {
		if groups.missing[i] {
			coded[i] = float32(math.NaN())
		} else {
			coded[i] = t.applyScaling(v)
		}
	}
	return decodeWithBitmap(bitmapRaw, numGridPoints, coded)
}

// applyScaling applies value = (R + X * 2^E) / 10^D.
func (t *Template52) applyScaling(packedValue int32) float32 {
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
func (t *Template52) String() string {
	return fmt.Sprintf("Template 5.2: Complex Packing, %d values, %d groups, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumberOfGroups, t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor)
}

// groupLayout carries the group-structure fields shared by Templates 5.2
// and 5.3 so both can reuse one group-unpacking routine.
type groupLayout struct {
	numGroups         uint32
	refWidth          uint8
	numBitsWidth      uint8
	refLength         uint32
	lengthIncrement   uint8
	trueLastLength    uint32
	numBitsLength     uint8
	groupRefWidth     uint8 // bits used to read each group's reference value
	totalValues       int   // values in the field; readGroups subtracts any spatial-diff first values
	spatialDiffOctets uint8 // 0 when this is plain complex packing (5.2)
	spatialDiffOrder  uint8

	// missingValueManagement is Table 5.5's octet 22 value: 0 = no missing
	// values encoded, 1 = primary missing values present, 2 = primary and
	// secondary. A group value whose bits are all ones (primary) or
	// all-ones-minus-one (secondary, option 2 only) marks that point
	// missing rather than a literal data value.
	missingValueManagement uint8
}

// groupResult holds the fully-expanded, pre-scaling integer values and the
// spatial-differencing side values a caller needs to reverse it, plus a
// parallel mask of which values are missing-value sentinels rather than
// literal data.
type groupResult struct {
	values   []int32
	missing  []bool
	firstVal []int32
	minVal   int32
}

// readGroups decodes the shared complex-packing group structure: optional
// spatial-difference descriptors, per-group reference values, widths,
// lengths, and the packed group values themselves.
func readGroups(packedData []byte, l groupLayout) (*groupResult, error) {
	br := bitstream.New(packedData)

	var firstVals []int32
	var minVal int32
	if l.spatialDiffOrder == 1 || l.spatialDiffOrder == 2 {
		if l.spatialDiffOctets == 0 {
			return nil, errors.Errorf("spatial differencing order %d requires nonzero octet width", l.spatialDiffOrder)
		}
		n := int(l.spatialDiffOrder)
		firstVals = make([]int32, n)
		for i := 0; i < n; i++ {
			v, err := br.ReadSignMagnitudeOctets(int(l.spatialDiffOctets))
			if err != nil {
				return nil, errors.Wrapf(err, "first value %d", i)
			}
			firstVals[i] = int32(v)
		}
		v, err := br.ReadSignMagnitudeOctets(int(l.spatialDiffOctets))
		if err != nil {
			return nil, errors.Wrap(err, "min_val")
		}
		minVal = int32(v)
	}

	groupMinVals := make([]int32, l.numGroups)
	for i := uint32(0); i < l.numGroups; i++ {
		v, err := br.NextUint64(int(l.groupRefWidth))
		if err != nil {
			return nil, errors.Wrapf(err, "group min value %d", i)
		}
		groupMinVals[i] = int32(v)
	}

	groupWidths := make([]uint8, l.numGroups)
	if l.numBitsWidth > 0 {
		for i := uint32(0); i < l.numGroups; i++ {
			v, err := br.NextUint64(int(l.numBitsWidth))
			if err != nil {
				return nil, errors.Wrapf(err, "group width %d", i)
			}
			groupWidths[i] = uint8(v) + l.refWidth
		}
	} else {
		for i := range groupWidths {
			groupWidths[i] = l.refWidth
		}
	}

	groupLengths := make([]uint32, l.numGroups)
	if l.numBitsLength > 0 {
		for i := uint32(0); i < l.numGroups; i++ {
			v, err := br.NextUint64(int(l.numBitsLength))
			if err != nil {
				return nil, errors.Wrapf(err, "group length %d", i)
			}
			groupLengths[i] = l.refLength + uint32(v)*uint32(l.lengthIncrement)
		}
	} else {
		for i := range groupLengths {
			groupLengths[i] = l.refLength
		}
	}
	if l.numGroups > 0 {
		groupLengths[l.numGroups-1] = l.trueLastLength
	}

	numUnpacked := l.totalValues - len(firstVals)
	if numUnpacked < 0 {
		numUnpacked = 0
	}
	unpacked := make([]int32, numUnpacked)
	unpackedMissing := make([]bool, numUnpacked)
	idx := 0
	for i := uint32(0); i < l.numGroups; i++ {
		width := groupWidths[i]
		length := groupLengths[i]
		min := groupMinVals[i]

		// A width-0 group has no per-value bits at all: every point in it
		// equals the group reference. Table 5.5's missing-value sentinels
		// still apply, tested against the reference itself (read with
		// groupRefWidth bits).
		constantMissing := false
		if width == 0 && l.missingValueManagement >= 1 {
			refMax := uint64(1)<<l.groupRefWidth - 1
			minBits := uint64(uint32(min))
			if minBits == refMax {
				constantMissing = true
			} else if l.missingValueManagement == 2 && minBits == refMax-1 {
				constantMissing = true
			}
		}

		for j := uint32(0); j < length && idx < numUnpacked; j++ {
			if width == 0 {
				unpacked[idx] = min
				unpackedMissing[idx] = constantMissing
			} else {
				v, err := br.NextUint64(int(width))
				if err != nil {
					return nil, errors.Wrapf(err, "value in group %d", i)
				}
				if l.missingValueManagement >= 1 {
					maxVal := uint64(1)<<width - 1
					if v == maxVal {
						unpackedMissing[idx] = true
					} else if l.missingValueManagement == 2 && v == maxVal-1 {
						unpackedMissing[idx] = true
					}
				}
				unpacked[idx] = min + int32(v)
			}
			idx++
		}
	}

	all := make([]int32, len(firstVals)+len(unpacked))
	copy(all, firstVals)
	copy(all[len(firstVals):], unpacked)

	allMissing := make([]bool, len(firstVals)+len(unpacked))
	copy(allMissing[len(firstVals):], unpackedMissing)

	return &groupResult{values: all, missing: allMissing, firstVal: firstVals, minVal: minVal}, nil
}
