// Package grib provides a clean, idiomatic Go library for reading GRIB2
// (GRIdded Binary 2nd edition) meteorological data files.
//
// Basic usage:
//
//	data, err := os.ReadFile("forecast.grib2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	g, err := grib.Open(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for id, sub := range g.All() {
//	    values, err := sub.Decode()
//	    if err != nil {
//	        log.Printf("submessage %v: %v", id, err)
//	        continue
//	    }
//	    fmt.Printf("%d values\n", len(values))
//	}
//
// Grib2.Get looks up a single submessage by its (message, submessage)
// SubmessageID when random access is more convenient than iterating with
// All.
//
// Read and ReadWithOptions offer a higher-level alternative that decodes
// every submessage into a flat []*GRIB2 up front, with filtering and
// parallelism controlled by ReadOption; see options.go and parallel.go.
package grib

import "fmt"

// ParseError represents a structural parsing failure: the bytes did not
// form a valid GRIB2 section in the place one was expected.
type ParseError struct {
	Section    int    // Which section (0-8), or -1 if file-level
	Offset     int    // Byte offset in the input where the error occurred
	Message    string // Description of the error
	Underlying error  // Wrapped error, if any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Section == -1 {
		if e.Underlying != nil {
			return fmt.Sprintf("at offset %d: %s: %v", e.Offset, e.Message, e.Underlying)
		}
		return fmt.Sprintf("at offset %d: %s", e.Offset, e.Message)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("section %d at offset %d: %s: %v",
			e.Section, e.Offset, e.Message, e.Underlying)
	}
	return fmt.Sprintf("section %d at offset %d: %s",
		e.Section, e.Offset, e.Message)
}

// Unwrap returns the underlying error, if any, so errors.Is/As work.
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// UnsupportedTemplateError indicates a template number this build does not
// implement, at the grid (3), product (4), or data representation (5)
// section.
type UnsupportedTemplateError struct {
	Section        int
	TemplateNumber int
}

// Error implements the error interface.
func (e *UnsupportedTemplateError) Error() string {
	sectionName := "unknown"
	switch e.Section {
	case 3:
		sectionName = "grid definition"
	case 4:
		sectionName = "product definition"
	case 5:
		sectionName = "data representation"
	}
	return fmt.Sprintf("unsupported %s template %d in section %d",
		sectionName, e.TemplateNumber, e.Section)
}

// InvalidFormatError indicates the data is not a valid GRIB2 message: a bad
// magic number, an edition other than 2, or a missing end marker.
type InvalidFormatError struct {
	Message string
	Offset  int
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid GRIB2 format at offset %d: %s", e.Offset, e.Message)
}

// InvalidIndexError indicates Get was called with a SubmessageID that does
// not correspond to any submessage produced by Open.
type InvalidIndexError struct {
	ID any
}

// Error implements the error interface.
func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("no such submessage: %v", e.ID)
}
