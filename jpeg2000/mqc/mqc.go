// Package mqc implements the MQ binary arithmetic decoder used by JPEG2000
// (ISO/IEC 15444-1 Annex C), the entropy-coding stage underneath GRIB2
// Data Representation Template 5.40 (JPEG2000 compression).
package mqc

// state holds one row of the MQ probability-estimation table
// (ISO/IEC 15444-1 Table C.2): Qe is the probability of the less-likely
// symbol, and nmps/nlps are the next state on an MPS/LPS transition.
type state struct {
	qe         uint32
	nmps, nlps uint8
	switchFlag bool
}

// table is the standard 47-row MQ probability-estimation table.
var table = [47]state{
	{0x5601, 1, 1, true}, {0x3401, 2, 6, false}, {0x1801, 3, 9, false}, {0x0AC1, 4, 12, false},
	{0x0521, 5, 29, false}, {0x0221, 38, 33, false}, {0x5601, 7, 6, true}, {0x5401, 8, 14, false},
	{0x4801, 9, 14, false}, {0x3801, 10, 14, false}, {0x3001, 11, 17, false}, {0x2401, 12, 18, false},
	{0x1C01, 13, 20, false}, {0x1601, 29, 21, false}, {0x5601, 15, 14, true}, {0x5401, 16, 14, false},
	{0x5101, 17, 15, false}, {0x4801, 18, 16, false}, {0x3801, 19, 17, false}, {0x3401, 20, 18, false},
	{0x3001, 21, 19, false}, {0x2801, 22, 19, false}, {0x2401, 23, 20, false}, {0x2201, 24, 21, false},
	{0x1C01, 25, 22, false}, {0x1801, 26, 23, false}, {0x1601, 27, 24, false}, {0x1401, 28, 25, false},
	{0x1201, 29, 26, false}, {0x1101, 30, 27, false}, {0x0AC1, 31, 28, false}, {0x09C1, 32, 29, false},
	{0x08A1, 33, 30, false}, {0x0521, 34, 31, false}, {0x0441, 35, 32, false}, {0x02A1, 36, 33, false},
	{0x0221, 37, 34, false}, {0x0141, 38, 35, false}, {0x0111, 39, 36, false}, {0x0085, 40, 37, false},
	{0x0049, 41, 38, false}, {0x0025, 42, 39, false}, {0x0015, 43, 40, false}, {0x0009, 44, 41, false},
	{0x0005, 45, 42, false}, {0x0001, 45, 43, false}, {0x5601, 46, 46, false},
}

// Context tracks the adaptive state (probability-table index and MPS
// value) for one context label.
type Context struct {
	index uint8
	mps   uint8
}

// NewContext returns a context initialized to the given table index and
// MPS value, as ISO/IEC 15444-1 Table D.7 prescribes per context kind.
func NewContext(index uint8, mps uint8) *Context {
	return &Context{index: index, mps: mps}
}

// Decoder is an MQ arithmetic decoder over a fixed byte slice.
type Decoder struct {
	data []byte
	bp   int
	c    uint32
	a    uint32
	ct   int
}

// New creates an MQ decoder over data and performs the INITDEC procedure
// (ISO/IEC 15444-1 Figure C.19).
func New(data []byte) *Decoder {
	d := &Decoder{data: data}
	b := d.byteAt(0)
	d.c = uint32(b) << 16
	d.bp = 0
	d.byteIn()
	d.c <<= 7
	d.ct -= 7
	d.a = 0x8000
	return d
}

func (d *Decoder) byteAt(i int) byte {
	if i < 0 || i >= len(d.data) {
		return 0xFF
	}
	return d.data[i]
}

// byteIn implements the BYTEIN procedure (Figure C.18): it feeds the next
// input byte into the C register, handling the 0xFF stuffing rule.
func (d *Decoder) byteIn() {
	if d.byteAt(d.bp) == 0xFF {
		if d.byteAt(d.bp+1) > 0x8F {
			d.c += 0xFF00
			d.ct = 8
		} else {
			d.bp++
			d.c += uint32(d.byteAt(d.bp)) << 9
			d.ct = 7
		}
	} else {
		d.bp++
		d.c += uint32(d.byteAt(d.bp)) << 8
		d.ct = 8
	}
}

// Decode returns the next decoded bit for the given context, updating
// both the decoder's and the context's adaptive state.
func (d *Decoder) Decode(cx *Context) int {
	st := table[cx.index]
	d.a -= st.qe

	var bit int
	if (d.c >> 16) < uint32(st.qe) {
		bit = d.lpsExchange(cx, st)
		d.renormalize()
	} else {
		d.c -= uint32(st.qe) << 16
		if d.a&0x8000 == 0 {
			bit = d.mpsExchange(cx, st)
			d.renormalize()
		} else {
			bit = int(cx.mps)
		}
	}
	return bit
}

func (d *Decoder) mpsExchange(cx *Context, st state) int {
	var bit int
	if d.a < st.qe {
		bit = 1 - int(cx.mps)
		if st.switchFlag {
			cx.mps = 1 - cx.mps
		}
		cx.index = st.nlps
	} else {
		bit = int(cx.mps)
		cx.index = st.nmps
	}
	return bit
}

func (d *Decoder) lpsExchange(cx *Context, st state) int {
	var bit int
	if d.a < st.qe {
		d.a = st.qe
		bit = int(cx.mps)
		cx.index = st.nmps
	} else {
		d.a = st.qe
		bit = 1 - int(cx.mps)
		if st.switchFlag {
			cx.mps = 1 - cx.mps
		}
		cx.index = st.nlps
	}
	return bit
}

func (d *Decoder) renormalize() {
	for {
		if d.ct == 0 {
			d.byteIn()
		}
		d.a <<= 1
		d.c <<= 1
		d.ct--
		if d.a&0x8000 != 0 {
			break
		}
	}
}
