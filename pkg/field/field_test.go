package field

import (
	"math"
	"testing"

	"github.com/sarich/tempestremap/pkg/mesh"
)

func float64Near(x, y, ε float64) bool {
	return math.Abs(x-y) <= ε
}

func TestKindStringRoundTrip(t *testing.T) {
	for _, k := range []Kind{Constant, Y2b2, Y16b32, Vortex} {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Errorf("ParseKind(%q) error: %v", k.String(), err)
			continue
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseKind("nosuchfield"); err == nil {
		t.Errorf("ParseKind(\"nosuchfield\") succeeded, want error")
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		kind     Kind
		lon, lat float64
		want     float64
	}{
		{Constant, 0, 0, 1},
		{Constant, 1.3, -0.7, 1},

		// cos²(lat)·cos(2·lon) on the equator.
		{Y2b2, 0, 0, 3},
		{Y2b2, math.Pi / 2, 0, 1},
		{Y2b2, math.Pi / 4, 0, 2},
		// cos²(lat) vanishes at the pole.
		{Y2b2, 0, math.Pi / 2, 2},

		// sin(2·lat)^16 peaks at lat = π/4.
		{Y16b32, 0, math.Pi / 4, 3},
		{Y16b32, math.Pi / 16, math.Pi / 4, 1},
		{Y16b32, 0, 0, 2},
		{Y16b32, 0, math.Pi / 2, 2},
	}
	for _, test := range tests {
		if got := test.kind.Evaluate(test.lon, test.lat); !float64Near(got, test.want, 1e-14) {
			t.Errorf("%v.Evaluate(%v, %v) = %v, want %v",
				test.kind, test.lon, test.lat, got, test.want)
		}
	}
}

func TestEvaluateVortex(t *testing.T) {
	// Near the rotated pole rho ≈ 0, so the tanh argument vanishes and
	// the field approaches one.
	if got := Vortex.Evaluate(vortexLon0, vortexLat0-1e-8); !float64Near(got, 1, 1e-7) {
		t.Errorf("Vortex.Evaluate(near pole) = %v, want ≈1", got)
	}
	// Everywhere the field stays within 1 ± tanh bounds.
	for lat := -1.5; lat <= 1.5; lat += 0.25 {
		for lon := 0.0; lon < 2*math.Pi; lon += 0.5 {
			v := Vortex.Evaluate(lon, lat)
			if v < 0 || v > 2 {
				t.Errorf("Vortex.Evaluate(%v, %v) = %v, want within [0, 2]", lon, lat, v)
			}
		}
	}
}

func TestRotatedSphereCoord(t *testing.T) {
	// Rotating about the true north pole is the identity on latitude.
	lonR, latR := rotatedSphereCoord(0, math.Pi/2, 1.0, 0.3)
	if !float64Near(latR, 0.3, 1e-14) {
		t.Errorf("latitude under identity rotation = %v, want 0.3", latR)
	}
	_ = lonR

	// Rotated latitude is π/2 minus the distance from the rotation pole.
	_, latR = rotatedSphereCoord(vortexLon0, vortexLat0, vortexLon0, vortexLat0-0.2)
	if !float64Near(latR, math.Pi/2-0.2, 1e-14) {
		t.Errorf("rotated latitude = %v, want %v", latR, math.Pi/2-0.2)
	}
	_, latR = rotatedSphereCoord(vortexLon0, vortexLat0, vortexLon0+math.Pi, vortexLat0)
	if !float64Near(latR, math.Pi/2-(math.Pi-2*vortexLat0), 1e-14) {
		t.Errorf("rotated latitude = %v, want %v", latR, math.Pi/2-(math.Pi-2*vortexLat0))
	}
}

func TestSample(t *testing.T) {
	m, err := mesh.NewRLLMesh(mesh.DefaultRLLOptions())
	if err != nil {
		t.Fatalf("NewRLLMesh() error: %v", err)
	}
	vals := Constant.Sample(m)
	if len(vals) != len(m.Faces) {
		t.Fatalf("Sample() returned %d values, want %d", len(vals), len(m.Faces))
	}
	for i, v := range vals {
		if v != 1 {
			t.Errorf("Constant sample at face %d = %v, want 1", i, v)
		}
	}

	vals = Y2b2.Sample(m)
	for i, v := range vals {
		if v < 1-1e-12 || v > 3+1e-12 {
			t.Errorf("Y2b2 sample at face %d = %v, want within [1, 3]", i, v)
		}
	}
}
