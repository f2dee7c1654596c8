package jpeg2000

// inverseDWT53 applies the reversible 5/3 integer wavelet transform's
// inverse (ISO/IEC 15444-1 Annex F.3.8) to reconstruct a signal from its
// low-pass and high-pass subbands, one dimension at a time.
//
// low and high are half-length (or near-half, for odd lengths) subband
// arrays; the result is the full-length reconstructed signal.
func inverseDWT53(low, high []int32) []int32 {
	n := len(low) + len(high)
	out := make([]int32, n)

	for i := range low {
		out[2*i] = low[i]
	}
	for i := range high {
		out[2*i+1] = high[i]
	}

	// Undo the update step: even[i] -= floor((odd[i-1] + odd[i] + 2) / 4)
	for i := 0; i < n; i += 2 {
		a := oddAt(out, i-1)
		b := oddAt(out, i+1)
		out[i] -= floorDiv4(a+b+2)
	}
	// Undo the predict step: odd[i] += floor((even[i] + even[i+1]) / 2)
	for i := 1; i < n; i += 2 {
		a := evenAt(out, i-1)
		b := evenAt(out, i+1)
		out[i] += floorDiv2(a + b)
	}

	return out
}

func oddAt(signal []int32, i int) int32 {
	if i < 0 {
		i = 1
	}
	if i >= len(signal) {
		i = len(signal) - 2
		if i < 0 {
			return 0
		}
	}
	return signal[i]
}

func evenAt(signal []int32, i int) int32 {
	if i < 0 {
		i = 0
	}
	if i >= len(signal) {
		i = len(signal) - 1
	}
	return signal[i]
}

func floorDiv2(v int32) int32 {
	if v >= 0 {
		return v / 2
	}
	return -((-v + 1) / 2)
}

func floorDiv4(v int32) int32 {
	if v >= 0 {
		return v / 4
	}
	return -((-v + 3) / 4)
}

// inverseDWT2D53 reconstructs a width x height tile-component from its
// four subbands (LL, HL, LH, HH) by applying the inverse 1D transform
// along columns then rows, per ISO/IEC 15444-1 Annex F.3.4's 2D extension
// of the 1D wavelet.
func inverseDWT2D53(width, height int, ll, hl, lh, hh []int32) []int32 {
	lw, lh2 := (width+1)/2, (height+1)/2
	hw, hh2 := width/2, height/2

	// Vertical pass: reconstruct full-height columns for the low and high
	// horizontal frequency bands.
	lowCols := reconstructColumns(lw, height, ll, lh, lh2)
	highCols := reconstructColumns(hw, height, hl, hh, hh2)

	out := make([]int32, width*height)
	for y := 0; y < height; y++ {
		lowRow := make([]int32, lw)
		highRow := make([]int32, hw)
		for x := 0; x < lw; x++ {
			lowRow[x] = lowCols[y*lw+x]
		}
		for x := 0; x < hw; x++ {
			highRow[x] = highCols[y*hw+x]
		}
		row := inverseDWT53(lowRow, highRow)
		copy(out[y*width:(y+1)*width], row[:width])
	}
	return out
}

func reconstructColumns(w, fullHeight int, lowBand, highBand []int32, highLen int) []int32 {
	lowLen := fullHeight - highLen
	out := make([]int32, w*fullHeight)
	for x := 0; x < w; x++ {
		low := make([]int32, lowLen)
		high := make([]int32, highLen)
		for y := 0; y < lowLen; y++ {
			low[y] = lowBand[y*w+x]
		}
		for y := 0; y < highLen; y++ {
			high[y] = highBand[y*w+x]
		}
		col := inverseDWT53(low, high)
		for y := 0; y < fullHeight; y++ {
			out[y*w+x] = col[y]
		}
	}
	return out
}
