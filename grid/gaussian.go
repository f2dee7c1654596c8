package grid

import (
	"fmt"
	"math"

	"github.com/synopticio/grib2/internal"
)

// GaussianGrid represents Grid Definition Template 3.40: Gaussian
// Latitude/Longitude.
//
// Rows are evenly spaced in longitude but their latitudes are the roots of
// the Legendre polynomial of degree 2*N, where N is the number of rows
// between a pole and the equator. This build only decodes the regular
// (full) Gaussian grid, where every row has the same number of points; a
// reduced grid (varying points per row, signalled by Ni == 0xFFFFFFFF) is
// parsed structurally but its per-row point counts are not expanded.
type GaussianGrid struct {
	Ni           uint32 // Number of points along a full parallel (0xFFFFFFFF for reduced grids)
	Nj           uint32 // Number of rows (= 2*N)
	La1          int32  // Latitude of first grid point (micro-degrees)
	Lo1          int32  // Longitude of first grid point (micro-degrees)
	ResFlags     uint8  // Resolution and component flags
	La2          int32  // Latitude of last grid point (micro-degrees)
	Lo2          int32  // Longitude of last grid point (micro-degrees)
	Di           uint32 // i direction increment (micro-degrees), undefined for reduced grids
	N            uint32 // Number of parallels between a pole and the equator
	ScanningMode uint8  // Scanning mode (Table 3.4)
}

// ParseGaussianGrid parses Grid Definition Template 3.40 (58 bytes).
func ParseGaussianGrid(data []byte) (*GaussianGrid, error) {
	if len(data) < 58 {
		return nil, fmt.Errorf("template 3.40 requires at least 58 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	r.Skip(16) // shape of earth + related parameters

	ni, _ := r.Uint32()
	nj, _ := r.Uint32()

	r.Skip(8) // basic angle and subdivisions

	la1, _ := r.Int32()
	lo1, _ := r.Int32()
	resFlags, _ := r.Uint8()
	la2, _ := r.Int32()
	lo2, _ := r.Int32()
	di, _ := r.Uint32()
	n, _ := r.Uint32()
	scanningMode, _ := r.Uint8()

	return &GaussianGrid{
		Ni:           ni,
		Nj:           nj,
		La1:          la1,
		Lo1:          lo1,
		ResFlags:     resFlags,
		La2:          la2,
		Lo2:          lo2,
		Di:           di,
		N:            n,
		ScanningMode: scanningMode,
	}, nil
}

// TemplateNumber returns 40 for Gaussian Lat/Lon grids.
func (g *GaussianGrid) TemplateNumber() int { return 40 }

// GridType returns "Gaussian Lat/Lon".
func (g *GaussianGrid) GridType() string { return "Gaussian Lat/Lon" }

// NumPoints returns the total number of grid points.
func (g *GaussianGrid) NumPoints() int {
	return int(g.Ni) * int(g.Nj)
}

// String returns a human-readable description of the grid.
func (g *GaussianGrid) String() string {
	return fmt.Sprintf("Gaussian Lat/Lon grid: %d x %d points, N=%d, (%.3f°, %.3f°) to (%.3f°, %.3f°)",
		g.Ni, g.Nj, g.N,
		float64(g.La1)/1e6, float64(g.Lo1)/1e6,
		float64(g.La2)/1e6, float64(g.Lo2)/1e6)
}

// ScanningFlags returns the scanning mode flags as individual booleans.
func (g *GaussianGrid) ScanningFlags() (iNegative, jPositive, consecutive bool) {
	iNegative = (g.ScanningMode & 0x80) != 0
	jPositive = (g.ScanningMode & 0x40) != 0
	consecutive = (g.ScanningMode & 0x20) == 0
	return
}

// Latitudes generates latitude values for all grid points.
func (g *GaussianGrid) Latitudes() []float32 {
	lats, _ := g.Coordinates()
	return lats
}

// Longitudes generates longitude values for all grid points.
func (g *GaussianGrid) Longitudes() []float32 {
	_, lons := g.Coordinates()
	return lons
}

// Coordinates generates latitude and longitude arrays for all grid points in
// scan order. Row latitudes are the Gaussian quadrature nodes for N, and
// longitudes are evenly spaced across Ni points per row.
func (g *GaussianGrid) Coordinates() ([]float32, []float32) {
	nPoints := int(g.Ni) * int(g.Nj)
	lats := make([]float32, nPoints)
	lons := make([]float32, nPoints)

	rowLats := gaussianLatitudes(int(g.N))
	northFirst := true // Gaussian rows run north to south
	if len(rowLats) != int(g.Nj) {
		// Mismatched N/Nj (e.g. reduced grid): fall back to a linear
		// spacing between La1 and La2 so callers still get a full-length
		// coordinate stream.
		northFirst = false // linear rows already run from La1 in scan order
		rowLats = make([]float64, g.Nj)
		la1 := float64(g.La1) / 1e6
		la2 := float64(g.La2) / 1e6
		if g.Nj > 1 {
			step := (la2 - la1) / float64(g.Nj-1)
			for j := range rowLats {
				rowLats[j] = la1 + float64(j)*step
			}
		}
	}

	_, jPositive, _ := g.ScanningFlags()
	iNegative, _, _ := g.ScanningFlags()

	lo1 := float64(g.Lo1) / 1e6
	di := float64(g.Di) / 1e6

	idx := 0
	for j := uint32(0); j < g.Nj; j++ {
		row := j
		if northFirst && jPositive {
			row = g.Nj - 1 - j
		}
		lat := rowLats[row]

		for i := uint32(0); i < g.Ni; i++ {
			lon := lo1
			if iNegative {
				lon = lo1 - float64(i)*di
			} else {
				lon = lo1 + float64(i)*di
			}
			for lon < 0 {
				lon += 360
			}
			for lon >= 360 {
				lon -= 360
			}

			lats[idx] = float32(lat)
			lons[idx] = float32(lon)
			idx++
		}
	}

	return lats, lons
}

// gaussianLatitudes returns the 2*n Gaussian latitudes in degrees, ordered
// from the north pole to the south pole, found as the roots of the Legendre
// polynomial of degree 2*n via Newton-Raphson iteration (the standard
// Gauss-Legendre quadrature node algorithm).
func gaussianLatitudes(n int) []float64 {
	if n <= 0 {
		return nil
	}
	m := 2 * n
	lats := make([]float64, m)

	for i := 1; i <= n; i++ {
		x := math.Cos(math.Pi * (float64(i) - 0.25) / (float64(m) + 0.5))

		for iter := 0; iter < 100; iter++ {
			p0, p1 := 1.0, 0.0
			for j := 1; j <= m; j++ {
				p2 := p1
				p1 = p0
				p0 = ((2*float64(j)-1)*x*p1 - (float64(j)-1)*p2) / float64(j)
			}
			dp := float64(m) * (x*p0 - p1) / (x*x - 1)
			dx := p0 / dp
			x -= dx
			if math.Abs(dx) < 1e-14 {
				break
			}
		}

		lat := math.Asin(x) * 180.0 / math.Pi
		lats[i-1] = lat
		lats[m-i] = -lat
	}

	return lats
}
