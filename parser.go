package grib

import (
	"fmt"

	"github.com/synopticio/grib2/section"
)

// MessageBoundary represents the location and size of a GRIB2 message within a file.
type MessageBoundary struct {
	Start  int    // Byte offset where the message starts
	Length uint64 // Length of the message in bytes
	Index  int    // Sequential index of this message in the file (0-based)
}

// SectionBoundary identifies one section within a single GRIB2 message: its
// section number and byte range (both relative to the start of the
// message, not the file).
type SectionBoundary struct {
	Number uint8
	Start  int
	Length int

	// StartsSubmessage is true for section 0, section 1, and any section
	// 2, 3, or 4 that begins a new submessage under the WMO repetition
	// rules (the point where sections 2-7 are allowed to repeat within a
	// message).
	StartsSubmessage bool
}

// ScanSections walks a single GRIB2 message's bytes section by section,
// validating the WMO section-ordering rules and yielding each section's
// boundary.
//
// Section 0 is fixed at 16 bytes. Every other section begins with a 4-byte
// length (which must be at least 5: 4 bytes of length plus 1 byte of
// section number), followed by the section number itself. The message ends
// with the literal 4-byte "7777" marker, reported here as section 8.
//
// Section 1 must immediately follow section 0. After that, the message is
// a sequence of submessages: each one begins at section 2, 3, or 4 and
// runs through non-decreasing section numbers up to 7 (inheriting any
// lower-numbered section it omits from the previous submessage is the
// caller's job, not this scanner's; ScanSections only reports structure).
// Any other transition -- section 1 repeating, a submessage boundary
// landing on section 5, 6, or 7, or a section number that decreases within
// a run -- is reported as an InvalidFormatError, as is a section shorter
// than 5 bytes or one whose length overruns the message.
func ScanSections(data []byte) ([]SectionBoundary, error) {
	if len(data) < 16 {
		return nil, &InvalidFormatError{
			Offset:  0,
			Message: fmt.Sprintf("message too short for section 0: %d bytes", len(data)),
		}
	}
	if string(data[0:4]) != "GRIB" {
		return nil, &InvalidFormatError{
			Offset:  0,
			Message: fmt.Sprintf("expected GRIB magic number, found %q", string(data[0:4])),
		}
	}

	boundaries := []SectionBoundary{{Number: 0, Start: 0, Length: 16, StartsSubmessage: true}}
	offset := 16
	expectSection1 := true
	var lastNumber uint8

	for {
		if offset+4 > len(data) {
			return nil, &InvalidFormatError{
				Offset:  offset,
				Message: "message ended without a 7777 end marker",
			}
		}

		if string(data[offset:offset+4]) == "7777" {
			boundaries = append(boundaries, SectionBoundary{Number: 8, Start: offset, Length: 4})
			break
		}

		if offset+5 > len(data) {
			return nil, &InvalidFormatError{
				Offset:  offset,
				Message: "truncated section header",
			}
		}

		length := int(uint32(data[offset])<<24 | uint32(data[offset+1])<<16 |
			uint32(data[offset+2])<<8 | uint32(data[offset+3]))
		number := data[offset+4]

		if length < 5 {
			return nil, &InvalidFormatError{
				Offset:  offset,
				Message: fmt.Sprintf("section %d length %d is less than the minimum of 5", number, length),
			}
		}
		if offset+length > len(data) {
			return nil, &InvalidFormatError{
				Offset:  offset,
				Message: fmt.Sprintf("section %d length %d exceeds remaining message data", number, length),
			}
		}

		if expectSection1 {
			if number != 1 {
				return nil, &InvalidFormatError{
					Offset:  offset,
					Message: fmt.Sprintf("expected section 1 immediately after section 0, found section %d", number),
				}
			}
			boundaries = append(boundaries, SectionBoundary{Number: number, Start: offset, Length: length, StartsSubmessage: true})
			expectSection1 = false
			lastNumber = number
			offset += length
			continue
		}

		if number < 1 || number > 7 {
			return nil, &InvalidFormatError{
				Offset:  offset,
				Message: fmt.Sprintf("invalid section number %d", number),
			}
		}

		atSubmessageStart := lastNumber == 1 || lastNumber == 7
		startsSubmessage := false
		if atSubmessageStart {
			if number != 2 && number != 3 && number != 4 {
				return nil, &InvalidFormatError{
					Offset:  offset,
					Message: fmt.Sprintf("a new submessage must begin at section 2, 3, or 4, found section %d", number),
				}
			}
			startsSubmessage = true
		} else {
			if number == 1 {
				return nil, &InvalidFormatError{
					Offset:  offset,
					Message: "section 1 may not repeat within a message",
				}
			}
			if number < lastNumber {
				return nil, &InvalidFormatError{
					Offset:  offset,
					Message: fmt.Sprintf("out-of-order section: %d follows %d", number, lastNumber),
				}
			}
		}

		boundaries = append(boundaries, SectionBoundary{Number: number, Start: offset, Length: length, StartsSubmessage: startsSubmessage})
		lastNumber = number
		offset += length
	}

	return boundaries, nil
}

// FindMessages scans the data for GRIB2 message boundaries.
//
// This function performs a quick scan of the input data to locate all GRIB2
// messages by finding "GRIB" magic numbers and reading their lengths from
// Section 0. It does not parse the full message content.
//
// Returns a slice of MessageBoundary structs indicating where each message
// starts and how long it is. The boundaries preserve the original order of
// messages in the file.
//
// This function is designed to be fast so that message boundaries can be
// found quickly before parallel decoding begins.
func FindMessages(data []byte) ([]MessageBoundary, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var boundaries []MessageBoundary
	offset := 0
	index := 0

	for offset < len(data) {
		// Look for "GRIB" magic number
		if offset+16 > len(data) {
			// Not enough data for a complete Section 0
			if offset < len(data) {
				// There's some data left but not enough for a message
				return boundaries, &ParseError{
					Section: -1,
					Offset:  offset,
					Message: fmt.Sprintf("incomplete data at end of file: %d bytes remaining, need at least 16", len(data)-offset),
				}
			}
			break
		}

		// Check for GRIB magic number
		if data[offset] != 'G' || data[offset+1] != 'R' || data[offset+2] != 'I' || data[offset+3] != 'B' {
			return nil, &InvalidFormatError{
				Offset:  offset,
				Message: fmt.Sprintf("expected GRIB magic number, found %q", string(data[offset:offset+4])),
			}
		}

		// Parse Section 0 to get message length
		sec0Data := data[offset : offset+16]
		sec0, err := section.ParseSection0(sec0Data)
		if err != nil {
			return nil, &ParseError{
				Section:    0,
				Offset:     offset,
				Message:    "failed to parse Section 0",
				Underlying: err,
			}
		}

		// Validate that we have enough data for the complete message
		messageEnd := offset + int(sec0.MessageLength)
		if messageEnd > len(data) {
			return nil, &ParseError{
				Section: 0,
				Offset:  offset,
				Message: fmt.Sprintf("message length %d exceeds available data (have %d bytes from offset %d)",
					sec0.MessageLength, len(data)-offset, offset),
			}
		}

		// Validate that the message ends with "7777"
		endMarker := data[messageEnd-4 : messageEnd]
		if string(endMarker) != "7777" {
			return nil, &ParseError{
				Section: -1,
				Offset:  messageEnd - 4,
				Message: fmt.Sprintf("expected end marker \"7777\", found %q", string(endMarker)),
			}
		}

		// Validate section ordering/lengths now, while the structural error
		// can still be attributed to this message's own offset, rather than
		// waiting for a later full parse.
		if _, err := ScanSections(data[offset:messageEnd]); err != nil {
			return nil, err
		}

		// Record this message boundary
		boundaries = append(boundaries, MessageBoundary{
			Start:  offset,
			Length: sec0.MessageLength,
			Index:  index,
		})

		// Move to next message
		offset = messageEnd
		index++
	}

	return boundaries, nil
}

// SplitMessages splits the data into individual GRIB2 messages.
//
// This is a convenience function that calls FindMessages and then extracts
// the actual message data for each boundary.
//
// Returns a slice of byte slices, where each inner slice is a complete
// GRIB2 message.
func SplitMessages(data []byte) ([][]byte, error) {
	boundaries, err := FindMessages(data)
	if err != nil {
		return nil, err
	}

	messages := make([][]byte, len(boundaries))
	for i, boundary := range boundaries {
		messages[i] = data[boundary.Start : boundary.Start+int(boundary.Length)]
	}

	return messages, nil
}

// ValidateMessageStructure performs a basic validation of a GRIB2 message structure.
//
// This function checks that:
//   - The message starts with "GRIB"
//   - Section 0 is valid
//   - The message ends with "7777"
//   - The message length matches the data length
//
// It does NOT parse the full message content or validate all sections.
func ValidateMessageStructure(data []byte) error {
	if len(data) < 16 {
		return &ParseError{
			Section: -1,
			Offset:  0,
			Message: fmt.Sprintf("message too short: %d bytes, minimum is 16", len(data)),
		}
	}

	// Parse Section 0
	sec0, err := section.ParseSection0(data[0:16])
	if err != nil {
		return &ParseError{
			Section:    0,
			Offset:     0,
			Message:    "invalid Section 0",
			Underlying: err,
		}
	}

	// Check message length
	if uint64(len(data)) != sec0.MessageLength {
		return &ParseError{
			Section: 0,
			Offset:  0,
			Message: fmt.Sprintf("message length mismatch: Section 0 says %d bytes, but have %d bytes",
				sec0.MessageLength, len(data)),
		}
	}

	// Check for end marker "7777"
	if len(data) < 4 {
		return &ParseError{
			Section: -1,
			Offset:  len(data),
			Message: "message too short to contain end marker",
		}
	}

	endMarker := data[len(data)-4:]
	if string(endMarker) != "7777" {
		return &ParseError{
			Section: -1,
			Offset:  len(data) - 4,
			Message: fmt.Sprintf("expected end marker \"7777\", found %q", string(endMarker)),
		}
	}

	return nil
}
