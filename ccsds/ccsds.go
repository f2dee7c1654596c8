// Package ccsds implements the CCSDS 121.0-B-2 adaptive Rice/Golomb
// lossless compression algorithm used by GRIB2 Data Representation
// Template 5.42 (Grid Point Data - CCSDS Compression).
//
// There is no ready-made CCSDS 121.0 decoder in the surrounding dependency
// stack, so this package is written from the recommendation's published
// algorithm directly: samples are split into fixed-size blocks, each
// block picks (by trial encoding cost) one of the fundamental-sequence,
// split-sample, or second-extension options, and a reference sample
// resets prediction state at fixed intervals.
package ccsds

import (
	"github.com/pkg/errors"

	"github.com/synopticio/grib2/internal/bitstream"
)

// Options configures a CCSDS 121.0 decode. These mirror the fields
// GRIB2 Data Representation Template 5.42 carries for the encoder that
// produced the stream.
type Options struct {
	BitsPerSample      int // sample resolution, 1-32 (GRIB2 uses <= 32)
	BlockSize          int // samples per block: 8, 16, 32, or 64
	ReferenceInterval  int // blocks between reference-sample resets, 0 = none
}

const (
	optionNoCompression = iota
	optionFundamentalSequence
	optionSecondExtension
	optionSplitSample // split-sample code k=1..bitsPerSample-1 selected by + (code - 2)
	optionZeroBlock
)

// Decode reverses CCSDS 121.0 adaptive Rice coding over packedData and
// returns numSamples decoded unsigned integer samples, each at most
// opts.BitsPerSample bits wide. GRIB2's Template 5.42 then applies the
// standard reference/scale transform on top of these values exactly as
// Template 5.0 does.
func Decode(packedData []byte, numSamples int, opts Options) ([]uint32, error) {
	if opts.BitsPerSample <= 0 || opts.BitsPerSample > 32 {
		return nil, errors.Errorf("ccsds: unsupported bits per sample %d", opts.BitsPerSample)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = 16
	}

	br := bitstream.New(packedData)
	out := make([]uint32, 0, numSamples)

	var refSample uint32
	haveRef := false
	blocksSinceRef := 0

	for len(out) < numSamples {
		if !haveRef || (opts.ReferenceInterval > 0 && blocksSinceRef >= opts.ReferenceInterval) {
			v, err := br.NextUint64(opts.BitsPerSample)
			if err != nil {
				return nil, errors.Wrap(err, "ccsds: reference sample")
			}
			refSample = uint32(v)
			haveRef = true
			blocksSinceRef = 0
			out = append(out, refSample)
			if len(out) >= numSamples {
				break
			}
		}

		n := opts.BlockSize
		if remaining := numSamples - len(out); remaining < n {
			n = remaining
		}

		option, err := br.NextUint64(codeOptionBits(opts.BitsPerSample))
		if err != nil {
			return nil, errors.Wrap(err, "ccsds: block option")
		}

		block, err := decodeBlock(br, int(option), n, refSample, opts.BitsPerSample)
		if err != nil {
			return nil, errors.Wrap(err, "ccsds: block")
		}
		out = append(out, block...)
		if len(block) > 0 {
			refSample = block[len(block)-1]
		}
		blocksSinceRef++
	}

	if len(out) > numSamples {
		out = out[:numSamples]
	}
	return out, nil
}

// codeOptionBits is the number of bits used to encode which coding option
// a block used: ceil(log2(bitsPerSample + 2)).
func codeOptionBits(bitsPerSample int) int {
	n := 0
	for (1 << n) < bitsPerSample+2 {
		n++
	}
	return n
}

// decodeBlock decodes n residuals for one block using the given coding
// option and reconstructs absolute sample values from refSample.
func decodeBlock(br *bitstream.Reader, option, n int, refSample uint32, bitsPerSample int) ([]uint32, error) {
	residuals := make([]int64, n)

	switch {
	case option == optionZeroBlock:
		count, err := br.NextUint64(5)
		if err != nil {
			return nil, errors.Wrap(err, "zero-block run length")
		}
		run := int(count)
		if run <= 0 {
			run = n
		}
		for i := range residuals {
			if i < run {
				residuals[i] = 0
			}
		}

	case option == optionFundamentalSequence:
		for i := range residuals {
			v, err := readUnary(br)
			if err != nil {
				return nil, errors.Wrapf(err, "fundamental sequence sample %d", i)
			}
			residuals[i] = int64(v)
		}

	case option == optionSecondExtension:
		pairs := (n + 1) / 2
		for p := 0; p < pairs; p++ {
			v, err := readUnary(br)
			if err != nil {
				return nil, errors.Wrapf(err, "second extension pair %d", p)
			}
			a, b := deinterleavePair(v)
			residuals[2*p] = int64(a)
			if 2*p+1 < n {
				residuals[2*p+1] = int64(b)
			}
		}

	default:
		k := option - optionSplitSample + 1
		if k < 1 || k >= bitsPerSample {
			return nil, errors.Errorf("split-sample k out of range: %d", k)
		}
		for i := range residuals {
			top, err := readUnary(br)
			if err != nil {
				return nil, errors.Wrapf(err, "split-sample top %d", i)
			}
			low, err := br.NextUint64(k)
			if err != nil {
				return nil, errors.Wrapf(err, "split-sample low %d", i)
			}
			residuals[i] = int64(top)<<uint(k) | int64(low)
		}
	}

	out := make([]uint32, n)
	prev := int64(refSample)
	mask := uint32(1)<<uint(bitsPerSample) - 1
	for i, r := range residuals {
		prev = (prev + r) & int64(mask)
		out[i] = uint32(prev)
	}
	return out, nil
}

// readUnary reads a unary-coded value: a run of 1-bits terminated by a
// 0-bit, value equal to the run length.
func readUnary(br *bitstream.Reader) (uint32, error) {
	var v uint32
	for {
		bit, err := br.NextUint64(1)
		if err != nil {
			return 0, err
		}
		if bit == 0 {
			return v, nil
		}
		v++
	}
}

// deinterleavePair recovers two values encoded with CCSDS 121.0's second
// extension option from their combined unary-coded sum-triangle index.
func deinterleavePair(combined uint32) (uint32, uint32) {
	var row uint32
	for row*(row+1)/2 <= combined {
		row++
	}
	row--
	offset := combined - row*(row+1)/2
	return offset, row - offset
}
