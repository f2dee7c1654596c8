package data

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal"
)

// Template550 is Data Representation Template 5.50: Spectral Data - Simple
// Packing, used for spherical-harmonic coefficient fields from global
// spectral models. Structure only in this build.
type Template550 struct {
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	RealPart00         float32
	NumberOfDataValues uint32
}

// ParseTemplate550 parses Data Representation Template 5.50 (at least 15 bytes).
func ParseTemplate550(numDataValues uint32, data []byte) (*Template550, error) {
	if len(data) < 15 {
		return nil, errors.Errorf("template 5.50 requires at least 15 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	realPart00, _ := r.Float32()

	return &Template550{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		RealPart00:         realPart00,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 50.
func (t *Template550) TemplateNumber() int { return 50 }

// NumDataValues returns the number of data values.
func (t *Template550) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the nominal bits per value.
func (t *Template550) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode is not supported in this build.
func (t *Template550) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	return nil, &DecodeError{Kind: NotSupported, Engine: "spectral-simple", Detail: "template 5.50 spectral coefficient unpacking is not decoded"}
}

// String returns a human-readable description.
func (t *Template550) String() string {
	return fmt.Sprintf("Template 5.50: Spectral Data Simple Packing, %d values (structural only)", t.NumberOfDataValues)
}

// Template551 is Data Representation Template 5.51: Spectral Data -
// Complex Packing, used for higher-resolution spectral model output with
// per-band group packing. Structure only in this build.
type Template551 struct {
	ReferenceValue       float32
	BinaryScaleFactor    int16
	DecimalScaleFactor   int16
	NumBitsPerValue      uint8
	JS                   uint32
	KS                   uint32
	MS                   uint32
	TS                   uint32
	Precision            uint8
	NumberOfDataValues   uint32
}

// ParseTemplate551 parses Data Representation Template 5.51 (at least 26 bytes).
func ParseTemplate551(numDataValues uint32, data []byte) (*Template551, error) {
	if len(data) < 26 {
		return nil, errors.Errorf("template 5.51 requires at least 26 bytes, got %d", len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	js, _ := r.Uint32()
	ks, _ := r.Uint32()
	ms, _ := r.Uint32()
	ts, _ := r.Uint32()
	precision, _ := r.Uint8()

	return &Template551{
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		JS:                 js,
		KS:                 ks,
		MS:                 ms,
		TS:                 ts,
		Precision:          precision,
		NumberOfDataValues: numDataValues,
	}, nil
}

// TemplateNumber returns 51.
func (t *Template551) TemplateNumber() int { return 51 }

// NumDataValues returns the number of data values.
func (t *Template551) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the nominal bits per value.
func (t *Template551) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode is not supported in this build.
func (t *Template551) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	return nil, &DecodeError{Kind: NotSupported, Engine: "spectral-complex", Detail: "template 5.51 spectral coefficient unpacking is not decoded"}
}

// String returns a human-readable description.
func (t *Template551) String() string {
	return fmt.Sprintf("Template 5.51: Spectral Data Complex Packing, %d values (structural only)", t.NumberOfDataValues)
}

// Template553 is Data Representation Template 5.53: Spectral Data for
// Limited-Area Models - Complex Packing, a regional-model variant of
// Template551 with an additional unpacked-coefficient count. Structure
// only in this build.
type Template553 struct {
	Template551
	UnpackedSubsetPoints uint32
}

// ParseTemplate553 parses Data Representation Template 5.53 (at least 30 bytes).
func ParseTemplate553(numDataValues uint32, data []byte) (*Template553, error) {
	if len(data) < 30 {
		return nil, errors.Errorf("template 5.53 requires at least 30 bytes, got %d", len(data))
	}
	base, err := ParseTemplate551(numDataValues, data[:26])
	if err != nil {
		return nil, err
	}
	r := internal.NewReader(data[26:])
	unpackedSubsetPoints, _ := r.Uint32()

	return &Template553{Template551: *base, UnpackedSubsetPoints: unpackedSubsetPoints}, nil
}

// TemplateNumber returns 53.
func (t *Template553) TemplateNumber() int { return 53 }

// Decode is not supported in this build.
func (t *Template553) Decode(packedData []byte, bitmapRaw []byte, numGridPoints int) ([]float32, error) {
	return nil, &DecodeError{Kind: NotSupported, Engine: "spectral-complex-limited-area", Detail: "template 5.53 spectral coefficient unpacking is not decoded"}
}

// String returns a human-readable description.
func (t *Template553) String() string {
	return fmt.Sprintf("Template 5.53: Spectral Data for Limited-Area Models, %d values (structural only)", t.NumberOfDataValues)
}
