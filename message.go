package grib

import (
	"fmt"

	"github.com/synopticio/grib2/section"
)

// Message represents a complete parsed GRIB2 message.
//
// A GRIB2 message contains all the information needed to describe and
// decode a single meteorological field, including metadata, grid definition,
// product description, and the packed data values.
type Message struct {
	// Section0 contains the indicator section with discipline and message length
	Section0 *section.Section0

	// Section1 contains identification information (center, time, etc.)
	Section1 *section.Section1

	// Section2 contains local use data (optional, may be nil)
	Section2 *section.Section2

	// Section3 contains the grid definition
	Section3 *section.Section3

	// Section4 contains the product definition
	Section4 *section.Section4

	// Section5 contains the data representation template
	Section5 *section.Section5

	// Section6 contains the bitmap (optional, may be nil if all points valid)
	Section6 *section.Section6

	// Section7 contains the packed data
	Section7 *section.Section7

	// RawData is the original message bytes (for debugging/analysis)
	RawData []byte

	// MessageIndex is the 0-based position of the enclosing GRIB/7777
	// message within the file or stream it was read from.
	MessageIndex int

	// SubmessageIndex is the 0-based position of this submessage within
	// its enclosing message. Most messages contain exactly one
	// submessage, so this is usually 0.
	SubmessageIndex int
}

// Submessage is an alias for Message: a GRIB2 message that repeats
// sections 2-7 under the WMO rules is indexed and handled one submessage
// at a time, and each submessage is represented by exactly the same fields
// a single-submessage Message has.
type Submessage = Message

// SubmessageID identifies one submessage within a Grib2 by the pair
// (message index, submessage index).
type SubmessageID struct {
	Message    int
	Submessage int
}

// String implements fmt.Stringer.
func (id SubmessageID) String() string {
	return fmt.Sprintf("%d.%d", id.Message, id.Submessage)
}

// ID returns this submessage's (message, submessage) identifier.
func (m *Message) ID() SubmessageID {
	return SubmessageID{Message: m.MessageIndex, Submessage: m.SubmessageIndex}
}

// Decode decodes this submessage's data values. It is equivalent to
// DecodeData and exists to match the Submessage naming used by Grib2.All
// and Grib2.Get.
func (m *Message) Decode() ([]float32, error) {
	return m.DecodeData()
}

// Latlons returns this submessage's grid coordinates. It is equivalent to
// Coordinates and exists to match the Submessage naming used by Grib2.All
// and Grib2.Get.
func (m *Message) Latlons() (lats, lons []float32, err error) {
	return m.Coordinates()
}

// ParseMessage parses a complete GRIB2 message from raw bytes and returns
// its first submessage.
//
// The input data should contain a single complete GRIB2 message starting
// with "GRIB" and ending with "7777". Most GRIB2 files contain exactly one
// submessage per message (sections 2-7 appear once each), so this is a
// convenient shortcut for the common case.
//
// A message may contain more than one submessage: the WMO repetition rules
// allow sections 2-7 to repeat, packing multiple fields into a single
// GRIB/7777 envelope, with each later submessage inheriting any
// lower-numbered section it omits from the one before it. Use
// ParseMessageSubmessages to get all of them, or Open/OpenReader for
// random access by (message, submessage) index.
func ParseMessage(data []byte) (*Message, error) {
	messages, err := ParseMessageSubmessages(data, 0)
	if err != nil {
		return nil, err
	}
	return messages[0], nil
}

// ParseMessageSubmessages parses a complete GRIB2 message from raw bytes
// and returns every submessage it contains, in file order.
//
// messageIndex is recorded on each returned submessage's MessageIndex
// field (see SubmessageID); callers iterating over multiple messages
// should pass each message's position in the file.
//
// Parsing runs as a state machine over ScanSections's section boundaries:
// section 0 and section 1 are shared by the whole message, and each
// section 2, 3, or 4 found at a submessage boundary starts a new
// submessage that inherits Section2/Section3/Section4 from the previous
// submessage for any of those it does not itself redefine. Section5,
// Section6, and Section7 always belong to the submessage that parses them.
func ParseMessageSubmessages(data []byte, messageIndex int) ([]*Message, error) {
	if err := ValidateMessageStructure(data); err != nil {
		return nil, err
	}

	secs, err := ScanSections(data)
	if err != nil {
		return nil, err
	}
	// ScanSections guarantees secs[0] is section 0 and secs[1] is section 1.

	sec0, err := section.ParseSection0(data[secs[0].Start : secs[0].Start+secs[0].Length])
	if err != nil {
		return nil, &ParseError{
			Section:    0,
			Offset:     secs[0].Start,
			Message:    "failed to parse Section 0",
			Underlying: err,
		}
	}

	sec1Val, err := parseSectionAt(data, secs[1].Start, 1)
	if err != nil {
		return nil, err
	}
	sec1 := sec1Val.(*section.Section1)

	var messages []*Message
	var current *Message
	submessageIndex := -1

	for i := 2; i < len(secs); i++ {
		sb := secs[i]
		if sb.Number == 8 {
			break
		}

		if sb.StartsSubmessage {
			submessageIndex++
			next := &Message{
				RawData:         data,
				MessageIndex:    messageIndex,
				SubmessageIndex: submessageIndex,
				Section0:        sec0,
				Section1:        sec1,
			}
			if current != nil {
				if sb.Number > 2 {
					next.Section2 = current.Section2
				}
				if sb.Number > 3 {
					next.Section3 = current.Section3
				}
				if sb.Number > 4 {
					next.Section4 = current.Section4
				}
				messages = append(messages, current)
			}
			current = next
		}

		switch sb.Number {
		case 2:
			v, err := parseSectionAt(data, sb.Start, 2)
			if err != nil {
				return nil, err
			}
			current.Section2 = v.(*section.Section2)
		case 3:
			v, err := parseSectionAt(data, sb.Start, 3)
			if err != nil {
				return nil, err
			}
			current.Section3 = v.(*section.Section3)
		case 4:
			v, err := parseSectionAt(data, sb.Start, 4)
			if err != nil {
				return nil, err
			}
			current.Section4 = v.(*section.Section4)
		case 5:
			v, err := parseSectionAt(data, sb.Start, 5)
			if err != nil {
				return nil, err
			}
			current.Section5 = v.(*section.Section5)
		case 6:
			var numGridPoints uint32
			if current.Section3 != nil {
				numGridPoints = uint32(current.Section3.NumDataPoints)
			}
			sec6Data := extractSectionData(data, sb.Start, 6)
			if sec6Data == nil {
				return nil, &ParseError{
					Section: 6,
					Offset:  sb.Start,
					Message: "failed to extract section 6 data",
				}
			}
			sec6, err := section.ParseSection6(sec6Data, numGridPoints)
			if err != nil {
				return nil, &ParseError{
					Section:    6,
					Offset:     sb.Start,
					Message:    "failed to parse Section 6",
					Underlying: err,
				}
			}
			current.Section6 = sec6
		case 7:
			v, err := parseSectionAt(data, sb.Start, 7)
			if err != nil {
				return nil, err
			}
			current.Section7 = v.(*section.Section7)
		}
	}

	if current != nil {
		messages = append(messages, current)
	}
	if len(messages) == 0 {
		return nil, &ParseError{
			Section: -1,
			Offset:  16,
			Message: "message contains no submessages",
		}
	}

	return messages, nil
}

// extractSectionData reads a section's length and extracts its data.
func extractSectionData(data []byte, offset int, expectedSection uint8) []byte {
	if offset+5 > len(data) {
		return nil
	}

	// Read section length (first 4 bytes)
	sectionLength := uint32(data[offset])<<24 | uint32(data[offset+1])<<16 |
		uint32(data[offset+2])<<8 | uint32(data[offset+3])

	// Validate we have enough data
	if offset+int(sectionLength) > len(data) {
		return nil
	}

	return data[offset : offset+int(sectionLength)]
}

// parseSectionAt reads a section length and parses the appropriate section type.
func parseSectionAt(data []byte, offset int, expectedSection uint8) (interface{}, error) {
	sectionData := extractSectionData(data, offset, expectedSection)
	if sectionData == nil {
		return nil, &ParseError{
			Section: int(expectedSection),
			Offset:  offset,
			Message: fmt.Sprintf("failed to extract section %d data", expectedSection),
		}
	}

	// Parse based on section type
	switch expectedSection {
	case 1:
		return section.ParseSection1(sectionData)
	case 2:
		return section.ParseSection2(sectionData)
	case 3:
		return section.ParseSection3(sectionData)
	case 4:
		return section.ParseSection4(sectionData)
	case 5:
		return section.ParseSection5(sectionData)
	case 7:
		return section.ParseSection7(sectionData)
	default:
		return nil, &ParseError{
			Section: int(expectedSection),
			Offset:  offset,
			Message: fmt.Sprintf("unsupported section number: %d", expectedSection),
		}
	}
}

// DecodeData decodes the data values from this message.
//
// Returns a slice of float32 values in grid scan order, with NaN at points
// the bitmap marks absent.
//
// This method combines the data representation (Section 5), bitmap (Section 6),
// and packed data (Section 7) to produce the final decoded values.
func (m *Message) DecodeData() ([]float32, error) {
	if m.Section5 == nil || m.Section5.Representation == nil {
		return nil, fmt.Errorf("message has no data representation (Section 5)")
	}

	if m.Section7 == nil {
		return nil, fmt.Errorf("message has no data section (Section 7)")
	}

	if m.Section3 == nil {
		return nil, fmt.Errorf("message has no grid definition (Section 3)")
	}

	// Get the raw (packed) bitmap if present; nil means "no bitmap, all
	// points valid", which Representation.Decode treats as all-present.
	var rawBitmap []byte
	if m.Section6 != nil && m.Section6.HasBitmap() {
		rawBitmap = m.Section6.RawBitmap
	}

	// Decode using the representation template
	values, err := m.Section5.Representation.Decode(m.Section7.Data, rawBitmap, int(m.Section3.NumDataPoints))
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	return values, nil
}

// Coordinates returns the lat/lon coordinates for this message's grid.
//
// Returns two slices (latitudes and longitudes) in grid scan order,
// matching the order of values returned by DecodeData().
func (m *Message) Coordinates() (latitudes, longitudes []float32, err error) {
	if m.Section3 == nil || m.Section3.Grid == nil {
		return nil, nil, fmt.Errorf("message has no grid definition (Section 3)")
	}

	switch g := m.Section3.Grid.(type) {
	case interface {
		Coordinates() ([]float32, []float32)
	}:
		lats, lons := g.Coordinates()
		return lats, lons, nil
	default:
		return nil, nil, fmt.Errorf("grid type %T does not support coordinate generation", m.Section3.Grid)
	}
}

// String returns a human-readable summary of the message.
func (m *Message) String() string {
	if m.Section0 == nil {
		return "Invalid GRIB2 message"
	}

	discipline := "Unknown"
	if m.Section0 != nil {
		discipline = m.Section0.DisciplineName()
	}

	grid := "Unknown"
	if m.Section3 != nil && m.Section3.Grid != nil {
		grid = m.Section3.Grid.String()
	}

	product := "Unknown"
	if m.Section4 != nil && m.Section4.Product != nil {
		product = m.Section4.Product.String()
	}

	return fmt.Sprintf("GRIB2 Message: Discipline=%s, Grid=%s, Product=%s",
		discipline, grid, product)
}
