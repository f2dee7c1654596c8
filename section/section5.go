package section

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/data"
	"github.com/synopticio/grib2/internal"
)

// Section5 represents the GRIB2 Data Representation Section (Section 5).
//
// This section describes how the data values are packed/compressed,
// including the packing method, number of bits per value, and scaling parameters.
type Section5 struct {
	Length                     uint32              // Total length of this section in bytes
	NumDataValues              uint32               // Number of data values
	DataRepresentationTemplate uint16               // Data representation template number (Table 5.0)
	Representation             data.Representation  // Parsed representation (template-specific)
}

// ParseSection5 parses the GRIB2 Data Representation Section (Section 5).
//
// Section 5 structure (variable length, minimum 11 bytes + template):
//   Bytes 1-4:   Length of section (uint32)
//   Byte 5:      Section number (must be 5)
//   Bytes 6-9:   Number of data values (uint32)
//   Bytes 10-11: Data representation template number (Table 5.0)
//   Bytes 12-n:  Data representation (template-specific)
//
// Supported templates: 5.0 (simple), 5.2/5.3 (complex, with and without
// spatial differencing), 5.40 (JPEG2000), 5.41 (PNG), 5.42 (CCSDS), 5.200
// (run-length). Templates 5.1, 5.4, 5.50, 5.51, 5.53 and 5.61 parse their
// structure but return a DecodeError from Decode.
//
// Returns an error if:
//   - The section is too short
//   - The section number is not 5
//   - The template number is not recognized at all
func ParseSection5(sectionData []byte) (*Section5, error) {
	if len(sectionData) < 11 {
		return nil, errors.Errorf("section 5 must be at least 11 bytes, got %d", len(sectionData))
	}

	r := internal.NewReader(sectionData)

	// Read section length
	length, _ := r.Uint32()

	// Validate section length matches data
	if int(length) != len(sectionData) {
		return nil, errors.Errorf("section 5 length mismatch: header says %d bytes, have %d bytes", length, len(sectionData))
	}

	// Read and validate section number
	sectionNum, _ := r.Uint8()
	if sectionNum != 5 {
		return nil, errors.Errorf("expected section 5, got section %d", sectionNum)
	}

	// Read data representation metadata
	numDataValues, _ := r.Uint32()
	templateNumber, _ := r.Uint16()

	// Read template-specific data
	templateData, _ := r.Bytes(r.Remaining())

	parsedRepresentation, err := parseRepresentationTemplate(templateNumber, numDataValues, templateData)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse data representation template 5.%d", templateNumber)
	}

	return &Section5{
		Length:                     length,
		NumDataValues:              numDataValues,
		DataRepresentationTemplate: templateNumber,
		Representation:             parsedRepresentation,
	}, nil
}

// parseRepresentationTemplate dispatches to the Table 5.0 template parser
// matching templateNumber.
func parseRepresentationTemplate(templateNumber uint16, numDataValues uint32, templateData []byte) (data.Representation, error) {
	switch templateNumber {
	case 0:
		return data.ParseTemplate50(numDataValues, templateData)
	case 1:
		return data.ParseTemplate51(numDataValues, templateData)
	case 2:
		return data.ParseTemplate52(numDataValues, templateData)
	case 3:
		return data.ParseTemplate53(numDataValues, templateData)
	case 4:
		return data.ParseTemplate54(numDataValues, templateData)
	case 40:
		return data.ParseTemplate540(numDataValues, templateData)
	case 41:
		return data.ParseTemplate541(numDataValues, templateData)
	case 42:
		return data.ParseTemplate542(numDataValues, templateData)
	case 50:
		return data.ParseTemplate550(numDataValues, templateData)
	case 51:
		return data.ParseTemplate551(numDataValues, templateData)
	case 53:
		return data.ParseTemplate553(numDataValues, templateData)
	case 61:
		return data.ParseTemplate561(numDataValues, templateData)
	case 200:
		return data.ParseTemplate5200(numDataValues, templateData)
	default:
		return nil, &UnsupportedTemplateError{Section: 5, TemplateNumber: int(templateNumber)}
	}
}

// RepresentationDescription returns a human-readable description of the data representation.
func (s *Section5) RepresentationDescription() string {
	if s.Representation != nil {
		return s.Representation.String()
	}
	return fmt.Sprintf("Unknown data representation template %d", s.DataRepresentationTemplate)
}
