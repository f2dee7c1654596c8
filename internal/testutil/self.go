// Package testutil provides utilities for testing GRIB2 parsing against reference implementations.
package testutil

import (
	"fmt"
	"os"

	grib "github.com/synopticio/grib2"
)

// ParseMgrib2 parses a GRIB2 file using this package's own Read path.
//
// Returns a map of field keys (parameter:level) to FieldData structures so
// callers can compare against a reference implementation field by field.
func ParseMgrib2(gribFile string) (map[string]*FieldData, error) {
	file, err := os.Open(gribFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()

	fields, err := grib.ReadWithOptions(file,
		grib.WithSequential(),
		grib.WithSkipErrors())
	if err != nil {
		return nil, fmt.Errorf("grib2 parse failed: %v", err)
	}

	fieldMap := make(map[string]*FieldData, len(fields))

	for _, field := range fields {
		fieldName := field.Parameter.ShortName()
		if fieldName == "" {
			fieldName = field.Parameter.String()
		}

		key := fmt.Sprintf("%s:%s", fieldName, field.Level)

		fd := &FieldData{
			RefTime:    field.ReferenceTime,
			VerTime:    field.ReferenceTime,
			Field:      fieldName,
			Level:      field.Level,
			Latitudes:  toFloat64s(field.Latitudes),
			Longitudes: toFloat64s(field.Longitudes),
			Values:     toFloat64s(field.Data),
			Source:     "grib2",
		}

		fieldMap[key] = fd
	}

	return fieldMap, nil
}

func toFloat64s(vs []float32) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}
