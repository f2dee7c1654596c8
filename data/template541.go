package data

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
)

// Template541 is Data Representation Template 5.41: Grid Point Data -
// PNG Compression. The packed octets are a standalone PNG stream whose
// pixels are n-bit reference-relative integers, decoded by the standard
// library's image/png decoder (no ecosystem GRIB2 pack provides its own
// PNG codec; the standard library is the idiomatic choice any Go program
// reaches for here).
type Template541 struct {
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	OriginalFieldType  uint8
	NumberOfDataValues uint32
}

// ParseTemplate541 parses Data Representation Template 5.41 (10 bytes; same
// layout as Template 5.0, the PNG container replaces the packed-bitstream
// payload in Section 7).
func ParseTemplate541(numDataValues uint32, data []byte) (*Template541, error) {
	if len(data) < 10 {
		return nil, errors.Errorf("template 5.41 requires at least 10 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()

	return &Template541{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 41.
func (t *Template541) TemplateNumber() int { return 41 }

// NumDataValues returns the number of data values.
func (t *Template541) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per packed value.
func (t *Template541) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode inflates the PNG stream and applies simple-packing-style scaling
// to each grayscale sample.
func (t *Template541) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	if t.OriginalFieldType != 0 {
		return nil, &DecodeError{Kind: NotSupported, Engine: "png", Field: "OriginalFieldType", Value: t.OriginalFieldType,
			Detail: "only floating point original field type is decoded"}
	}

	img, err := png.Decode(bytes.NewReader(packedData))
	if err != nil {
		return nil, &DecodeError{Kind: CodecFailure, Engine: "png", Detail: err.Error()}
	}

	samples, err := extractGraySamples(img)
	if err != nil {
		return nil, &DecodeError{Kind: CodecFailure, Engine: "png", Detail: err.Error()}
	}
	if uint32(len(samples)) != t.NumberOfDataValues {
		return nil, &DecodeError{Kind: LengthMismatch, Engine: "png",
			Detail: fmt.Sprintf("decoded %d samples, expected %d", len(samples), t.NumberOfDataValues)}
	}

	coded := make([]float32, len(samples))
	for i, s := range samples {
		coded[i] = t.applyScaling(s)
	}
	return decodeWithBitmap(bitmapRaw, numGridPoints, coded)
}

// extractGraySamples reads the raw sample value (not display-scaled) out
// of a decoded PNG image, regardless of whether it came back as 8-bit or
// 16-bit grayscale.
func extractGraySamples(img image.Image) ([]uint32, error) {
	bounds := img.Bounds()
	samples := make([]uint32, 0, bounds.Dx()*bounds.Dy())

	switch px := img.(type) {
	case *image.Gray:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				samples = append(samples, uint32(px.GrayAt(x, y).Y))
			}
		}
	case *image.Gray16:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				samples = append(samples, uint32(px.Gray16At(x, y).Y))
			}
		}
	default:
		return nil, errors.Errorf("unsupported PNG color model %T", img)
	}
	return samples, nil
}

// applyScaling applies value = (R + X * 2^E) / 10^D.
func (t *Template541) applyScaling(packedValue uint32) float32 {
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
func (t *Template541) String() string {
	return fmt.Sprintf("Template 5.41: PNG Compression, %d values, %d bits/value, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumBitsPerValue, t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor)
}
