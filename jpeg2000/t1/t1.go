// Package t1 implements the EBCOT Tier-1 bit-plane decoder used by
// JPEG2000 (ISO/IEC 15444-1 Annex D): wavelet coefficients are coded
// code-block by code-block, bit-plane by bit-plane, through three coding
// passes (significance propagation, magnitude refinement, cleanup) each
// driven by the MQ arithmetic decoder.
//
// This build decodes one code-block per subband per resolution level
// (GRIB2 products are single-tile, single-precinct in practice) and does
// not implement ROI shifting, TERMALL/segmentation-symbol code-block
// styles, or lazy (raw) coding passes — all are rare in the GRIB2 profile
// NCEP and ECMWF actually emit.
package t1

import (
	"github.com/pkg/errors"

	"github.com/synopticio/grib2/jpeg2000/mqc"
)

// Orientation identifies a subband's wavelet orientation, which selects
// the zero-coding context table to use (ISO/IEC 15444-1 Table D.1).
type Orientation int

const (
	OrientationLL Orientation = iota
	OrientationHL
	OrientationLH
	OrientationHH
)

const (
	flagSig uint16 = 1 << iota
	flagSign
	flagVisit
	sigN
	sigS
	sigE
	sigW
	sigNE
	sigNW
	sigSE
	sigSW
	signN
	signS
	signE
	signW
)

const (
	numContexts  = 23
	ctxZeroStart = 0  // zero-coding contexts occupy 0-8
	ctxSignStart = 9  // sign-coding contexts occupy 9-17
	ctxMagStart  = 18 // magnitude-refinement contexts occupy 18-20
	ctxRunLength = 21
	ctxUniform   = 22
)

// Decoder decodes one wavelet subband code-block.
type Decoder struct {
	width, height int
	data          []int32
	flags         []uint16
	orientation   Orientation
}

// New returns a Tier-1 decoder for a width x height code-block.
func New(width, height int, orientation Orientation) *Decoder {
	pw, ph := width+2, height+2
	return &Decoder{
		width:       width,
		height:      height,
		data:        make([]int32, pw*ph),
		flags:       make([]uint16, pw*ph),
		orientation: orientation,
	}
}

func (d *Decoder) idx(x, y int) int {
	return (y+1)*(d.width+2) + (x + 1)
}

// Decode reads numBitplanes bit-planes (cleanup pass only on the first,
// then significance-propagation + magnitude-refinement + cleanup on each
// following plane) from an MQ-coded stream and returns the reconstructed
// signed coefficient magnitudes.
func (d *Decoder) Decode(data []byte, numBitplanes int) ([]int32, error) {
	if len(data) == 0 {
		return nil, errors.New("t1: empty code-block data")
	}
	if numBitplanes <= 0 {
		return d.extract(), nil
	}

	contexts := make([]*mqc.Context, numContexts)
	for i := range contexts {
		contexts[i] = mqc.NewContext(0, 0)
	}
	contexts[ctxUniform] = mqc.NewContext(46, 0)
	contexts[ctxRunLength] = mqc.NewContext(3, 0)
	contexts[ctxZeroStart] = mqc.NewContext(4, 0)

	dec := mqc.New(data)

	for bp := numBitplanes - 1; bp >= 0; bp-- {
		for i := range d.flags {
			d.flags[i] &^= flagVisit
		}
		if bp != numBitplanes-1 {
			d.significancePropagationPass(dec, contexts, bp)
			d.magnitudeRefinementPass(dec, contexts, bp)
		}
		d.cleanupPass(dec, contexts, bp)
	}

	return d.extract(), nil
}

func (d *Decoder) extract() []int32 {
	out := make([]int32, d.width*d.height)
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			out[y*d.width+x] = d.data[d.idx(x, y)]
		}
	}
	return out
}

func (d *Decoder) significancePropagationPass(dec *mqc.Decoder, cx []*mqc.Context, bp int) {
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			i := d.idx(x, y)
			f := d.flags[i]
			if f&flagSig != 0 || f&(sigN|sigS|sigE|sigW|sigNE|sigNW|sigSE|sigSW) == 0 {
				continue
			}
			d.flags[i] |= flagVisit
			bit := dec.Decode(cx[zeroCodingContext(f, d.orientation)])
			if bit != 0 {
				d.setSignificant(x, y, i, dec, cx, bp)
			}
		}
	}
}

func (d *Decoder) magnitudeRefinementPass(dec *mqc.Decoder, cx []*mqc.Context, bp int) {
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			i := d.idx(x, y)
			f := d.flags[i]
			if f&flagSig == 0 || f&flagVisit != 0 {
				continue
			}
			bit := dec.Decode(cx[magRefinementContext(f)])
			if bit != 0 {
				if d.data[i] >= 0 {
					d.data[i] += int32(1) << uint(bp)
				} else {
					d.data[i] -= int32(1) << uint(bp)
				}
			}
		}
	}
}

func (d *Decoder) cleanupPass(dec *mqc.Decoder, cx []*mqc.Context, bp int) {
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			i := d.idx(x, y)
			f := d.flags[i]
			if f&flagVisit != 0 || f&flagSig != 0 {
				d.flags[i] &^= flagVisit
				continue
			}
			bit := dec.Decode(cx[zeroCodingContext(f, d.orientation)])
			if bit != 0 {
				d.setSignificant(x, y, i, dec, cx, bp)
			}
		}
	}
}

func (d *Decoder) setSignificant(x, y, i int, dec *mqc.Decoder, cx []*mqc.Context, bp int) {
	f := d.flags[i]
	signCtx, pred := signCodingContext(f)
	signBit := dec.Decode(cx[signCtx])
	sign := signBit ^ pred

	val := int32(1) << uint(bp)
	if sign != 0 {
		d.flags[i] |= flagSign
		d.data[i] = -val
	} else {
		d.data[i] = val
	}
	d.flags[i] |= flagSig
	d.propagateToNeighbors(x, y)
}

func (d *Decoder) propagateToNeighbors(x, y int) {
	sign := d.flags[d.idx(x, y)] & flagSign

	set := func(nx, ny int, sigBit, signBit uint16) {
		ni := d.idx(nx, ny)
		d.flags[ni] |= sigBit
		if sign != 0 {
			d.flags[ni] |= signBit
		}
	}
	set(x, y-1, sigS, signS)
	set(x, y+1, sigN, signN)
	set(x-1, y, sigE, signE)
	set(x+1, y, sigW, signW)
	d.flags[d.idx(x-1, y-1)] |= sigSE
	d.flags[d.idx(x+1, y-1)] |= sigSW
	d.flags[d.idx(x-1, y+1)] |= sigNE
	d.flags[d.idx(x+1, y+1)] |= sigNW
}

// zeroCodingContext computes the significance-coding context label from a
// coefficient's significant-neighbor flags (ISO/IEC 15444-1 Table D.1),
// with the LH/HL tables mirrored across the diagonal per the standard.
func zeroCodingContext(f uint16, o Orientation) int {
	h := boolToInt(f&sigE != 0) + boolToInt(f&sigW != 0)
	v := boolToInt(f&sigN != 0) + boolToInt(f&sigS != 0)
	diag := boolToInt(f&sigNE != 0) + boolToInt(f&sigNW != 0) + boolToInt(f&sigSE != 0) + boolToInt(f&sigSW != 0)

	if o == OrientationHL {
		h, v = v, h
	}

	switch {
	case h == 2:
		return 8
	case h == 1 && v >= 1:
		return 7
	case h == 1 && diag >= 1:
		return 6
	case h == 1:
		return 5
	case v == 2:
		return 4
	case v == 1:
		return 3
	case diag >= 2:
		return 2
	case diag == 1:
		return 1
	default:
		return ctxZeroStart
	}
}

// signCodingContext computes the sign-coding context and the XOR bit
// prediction from horizontal/vertical neighbor contributions (ISO/IEC
// 15444-1 Table D.2).
func signCodingContext(f uint16) (int, int) {
	hContrib := neighborContribution(f, sigE, signE) + neighborContribution(f, sigW, signW)
	vContrib := neighborContribution(f, sigN, signN) + neighborContribution(f, sigS, signS)

	h := clamp(hContrib)
	v := clamp(vContrib)

	idx := ctxSignStart + 3*(h+1) + (v + 1)
	pred := 0
	if h < 0 || (h == 0 && v < 0) {
		pred = 1
	}
	return idx, pred
}

func neighborContribution(f uint16, sigBit, signBit uint16) int {
	if f&sigBit == 0 {
		return 0
	}
	if f&signBit != 0 {
		return -1
	}
	return 1
}

func clamp(v int) int {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// magRefinementContext computes the magnitude-refinement context (ISO/IEC
// 15444-1 Table D.3): first refinement of a newly-significant coefficient
// gets its own context, subsequent refinements depend on neighbor count.
func magRefinementContext(f uint16) int {
	if f&flagVisit != 0 {
		return ctxMagStart
	}
	neighbors := boolToInt(f&sigN != 0) + boolToInt(f&sigS != 0) + boolToInt(f&sigE != 0) + boolToInt(f&sigW != 0) +
		boolToInt(f&sigNE != 0) + boolToInt(f&sigNW != 0) + boolToInt(f&sigSE != 0) + boolToInt(f&sigSW != 0)
	if neighbors > 0 {
		return ctxMagStart + 2
	}
	return ctxMagStart + 1
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
