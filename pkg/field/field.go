// Package field provides analytic scalar fields on the sphere used to
// exercise and verify remapping: smooth and rough spherical harmonics and
// a deformational vortex. Fields are sampled at face centroids.
package field

import (
	"fmt"
	"math"

	"github.com/sarich/tempestremap/pkg/mesh"
)

// Kind identifies one of the built-in test fields.
type Kind int

const (
	// Constant is identically one; remapping it checks pure area
	// consistency.
	Constant Kind = iota
	// Y2b2 is the smooth low-order harmonic 2 + cos²(lat)·cos(2·lon).
	Y2b2
	// Y16b32 is the rough high-order harmonic
	// 2 + sin(2·lat)^16·cos(16·lon).
	Y16b32
	// Vortex is a deformational vortex field in rotated coordinates.
	Vortex
)

func (k Kind) String() string {
	switch k {
	case Constant:
		return "constant"
	case Y2b2:
		return "y2b2"
	case Y16b32:
		return "y16b32"
	case Vortex:
		return "vortex"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses one of "constant", "y2b2", "y16b32" or "vortex".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "constant":
		return Constant, nil
	case "y2b2":
		return Y2b2, nil
	case "y16b32":
		return Y16b32, nil
	case "vortex":
		return Vortex, nil
	}
	return 0, fmt.Errorf("unknown test field %q (want constant|y2b2|y16b32|vortex)", s)
}

// Evaluate returns the field value at the given longitude and latitude in
// radians.
func (k Kind) Evaluate(lon, lat float64) float64 {
	switch k {
	case Y2b2:
		return 2 + math.Cos(lat)*math.Cos(lat)*math.Cos(2*lon)
	case Y16b32:
		return 2 + math.Pow(math.Sin(2*lat), 16)*math.Cos(16*lon)
	case Vortex:
		return vortex(lon, lat)
	}
	return 1
}

// Sample evaluates the field at the centroid of every face of m.
func (k Kind) Sample(m *mesh.Mesh) []float64 {
	out := make([]float64, len(m.Faces))
	for i, f := range m.Faces {
		c := m.Centroid(f)
		out[i] = k.Evaluate(c.Longitude(), c.Latitude())
	}
	return out
}

// Vortex parameters: pole of the rotated coordinate system, vortex
// radius, transition thickness and elapsed time.
const (
	vortexLon0 = 0.0
	vortexLat0 = 0.6
	vortexR0   = 3.0
	vortexD    = 5.0
	vortexT    = 6.0
)

func vortex(lon, lat float64) float64 {
	lon, lat = rotatedSphereCoord(vortexLon0, vortexLat0, lon, lat)

	rho := vortexR0 * math.Cos(lat)
	vt := 3 * math.Sqrt(3) / 2 / (math.Cosh(rho) * math.Cosh(rho)) * math.Tanh(rho)
	var omega float64
	if rho != 0 {
		omega = vt / rho
	}
	return 1 - math.Tanh(rho/vortexD*math.Sin(lon-omega*vortexT))
}

// rotatedSphereCoord returns the coordinates of (lon, lat) in the system
// whose north pole lies at (lonC, latC).
func rotatedSphereCoord(lonC, latC, lon, lat float64) (lonR, latR float64) {
	sinC, cosC := math.Sincos(latC)
	sinT, cosT := math.Sincos(lat)

	trm := cosT * math.Cos(lon-lonC)
	x := sinC*trm - cosC*sinT
	y := cosT * math.Sin(lon-lonC)
	z := sinC*sinT + cosC*trm

	lonR = math.Atan2(y, x)
	if lonR < 0 {
		lonR += 2 * math.Pi
	}
	// Rounding can push z a hair beyond ±1.
	z = math.Max(-1, math.Min(1, z))
	return lonR, math.Asin(z)
}
