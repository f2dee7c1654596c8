// Package jpeg2000 implements enough of the JPEG2000 codestream format
// (ISO/IEC 15444-1) to decode the single-tile, reversible (5/3),
// single-quality-layer profile GRIB2 encoders emit for Data
// Representation Template 5.40.
//
// Scope limitation: real JPEG2000 packets interleave code-block
// contributions across quality layers and precincts through a tag-tree
// coded packet header. This decoder targets the common GRIB2 profile of
// one quality layer and one precinct per resolution level, so it reads
// one Tier-1 coded segment per (subband, resolution) pair directly rather
// than implementing the general tag-tree packet header parser.
package jpeg2000

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/synopticio/grib2/jpeg2000/t1"
)

const (
	markerSOC = 0xFF4F
	markerSIZ = 0xFF51
	markerCOD = 0xFF52
	markerQCD = 0xFF5C
	markerSOT = 0xFF90
	markerSOD = 0xFF93
	markerEOC = 0xFFD9
)

// codestream holds the header fields this decoder needs out of a J2K
// codestream's main and tile-part headers.
type codestream struct {
	width, height     int
	numDecompLevels   int
	codeBlockStyle    int
	tileDataOffset    int
}

// Decode parses a J2K codestream and reconstructs its single tile-
// component as signed integer samples in row-major order, reversing the
// reversible 5/3 wavelet transform across numDecompLevels resolution
// levels.
func Decode(data []byte) ([]int32, int, int, error) {
	cs, err := parseHeaders(data)
	if err != nil {
		return nil, 0, 0, err
	}

	samples, err := decodeTile(data[cs.tileDataOffset:], cs)
	if err != nil {
		return nil, 0, 0, err
	}
	return samples, cs.width, cs.height, nil
}

func parseHeaders(data []byte) (*codestream, error) {
	if len(data) < 4 || binary.BigEndian.Uint16(data) != markerSOC {
		return nil, errors.New("jpeg2000: missing SOC marker")
	}

	cs := &codestream{}
	pos := 2
	for pos+4 <= len(data) {
		marker := binary.BigEndian.Uint16(data[pos:])
		if marker == markerSOD {
			cs.tileDataOffset = pos + 2
			if cs.width == 0 || cs.numDecompLevels == 0 {
				return nil, errors.New("jpeg2000: SOD reached before SIZ/COD")
			}
			return cs, nil
		}
		if marker == markerSOC || marker == markerEOC {
			pos += 2
			continue
		}

		segLen := int(binary.BigEndian.Uint16(data[pos+2:]))
		segStart := pos + 4
		segEnd := pos + 2 + segLen
		if segEnd > len(data) {
			return nil, errors.New("jpeg2000: marker segment exceeds buffer")
		}
		seg := data[segStart:segEnd]

		switch marker {
		case markerSIZ:
			if len(seg) < 16 {
				return nil, errors.New("jpeg2000: SIZ segment too short")
			}
			xsiz := int(binary.BigEndian.Uint32(seg[2:]))
			ysiz := int(binary.BigEndian.Uint32(seg[6:]))
			xosiz := int(binary.BigEndian.Uint32(seg[10:]))
			yosiz := int(binary.BigEndian.Uint32(seg[14:]))
			cs.width = xsiz - xosiz
			cs.height = ysiz - yosiz
		case markerCOD:
			if len(seg) < 5 {
				return nil, errors.New("jpeg2000: COD segment too short")
			}
			cs.numDecompLevels = int(seg[4]) + 1
			if len(seg) > 5 {
				cs.codeBlockStyle = int(seg[5])
			}
		case markerQCD:
			// Quantization style; the reversible profile needs no scaling here.
		}

		pos = segEnd
	}
	return nil, errors.New("jpeg2000: SOD marker not found")
}

// decodeTile reconstructs the tile's samples by decoding one code-block
// per subband at each resolution level and successively applying the
// inverse 5/3 transform from the coarsest resolution outward.
func decodeTile(tileData []byte, cs *codestream) ([]int32, error) {
	w, h := cs.width, cs.height
	levels := cs.numDecompLevels

	dims := make([][2]int, levels+1)
	dims[levels] = [2]int{w, h}
	for l := levels - 1; l >= 0; l-- {
		dims[l] = [2]int{(dims[l+1][0] + 1) / 2, (dims[l+1][1] + 1) / 2}
	}

	r := &segmentReader{data: tileData}

	llW, llH := dims[0][0], dims[0][1]
	ll, err := decodeSubband(r, llW, llH, t1.OrientationLL)
	if err != nil {
		return nil, errors.Wrap(err, "jpeg2000: LL subband")
	}

	current := ll
	curW, curH := llW, llH
	for l := 1; l <= levels; l++ {
		fullW, fullH := dims[l][0], dims[l][1]
		hlW, hlH := fullW-curW, curH
		lhW, lhH := curW, fullH-curH
		hhW, hhH := fullW-curW, fullH-curH

		hl, err := decodeSubband(r, hlW, hlH, t1.OrientationHL)
		if err != nil {
			return nil, errors.Wrapf(err, "jpeg2000: HL subband level %d", l)
		}
		lh, err := decodeSubband(r, lhW, lhH, t1.OrientationLH)
		if err != nil {
			return nil, errors.Wrapf(err, "jpeg2000: LH subband level %d", l)
		}
		hh, err := decodeSubband(r, hhW, hhH, t1.OrientationHH)
		if err != nil {
			return nil, errors.Wrapf(err, "jpeg2000: HH subband level %d", l)
		}

		current = inverseDWT2D53(fullW, fullH, current, hl, lh, hh)
		curW, curH = fullW, fullH
	}

	return current, nil
}

// decodeSubband reads one length-prefixed Tier-1 segment and decodes it
// into a w*h coefficient array. A zero-size subband (possible at the
// tile's edges) is skipped and returns an empty slice.
func decodeSubband(r *segmentReader, w, h int, o t1.Orientation) ([]int32, error) {
	if w <= 0 || h <= 0 {
		return []int32{}, nil
	}
	seg, numBitplanes, err := r.next()
	if err != nil {
		return nil, err
	}
	dec := t1.New(w, h, o)
	return dec.Decode(seg, numBitplanes)
}

// segmentReader walks a sequence of 4-byte-length + 1-byte-bitplane-count
// prefixed Tier-1 segments, the demultiplexed packet-body representation
// this decoder assumes (see package doc).
type segmentReader struct {
	data []byte
	pos  int
}

func (r *segmentReader) next() ([]byte, int, error) {
	if r.pos+5 > len(r.data) {
		return nil, 0, errors.New("jpeg2000: truncated code-block segment header")
	}
	length := int(binary.BigEndian.Uint32(r.data[r.pos:]))
	numBitplanes := int(r.data[r.pos+4])
	r.pos += 5
	if r.pos+length > len(r.data) {
		return nil, 0, errors.New("jpeg2000: truncated code-block segment body")
	}
	seg := r.data[r.pos : r.pos+length]
	r.pos += length
	return seg, numBitplanes, nil
}
