package sphere

import (
	"math"
	"testing"
)

func TestCapBasics(t *testing.T) {
	empty := EmptyCap()
	full := FullCap()
	if !empty.IsEmpty() || empty.IsFull() {
		t.Errorf("EmptyCap: IsEmpty=%v IsFull=%v", empty.IsEmpty(), empty.IsFull())
	}
	if full.IsEmpty() || !full.IsFull() {
		t.Errorf("FullCap: IsEmpty=%v IsFull=%v", full.IsEmpty(), full.IsFull())
	}
	if a := full.Area(); !float64Near(a, 4*math.Pi, 1e-14) {
		t.Errorf("FullCap Area = %v, want %v", a, 4*math.Pi)
	}

	hemi := CapFromCenterAngle(PointFromCoords(0, 0, 1), math.Pi/2)
	if a := hemi.Area(); !float64Near(a, 2*math.Pi, 1e-13) {
		t.Errorf("hemisphere Area = %v, want %v", a, 2*math.Pi)
	}
	if r := hemi.Radius(); !float64Near(r, math.Pi/2, 1e-13) {
		t.Errorf("hemisphere Radius = %v, want %v", r, math.Pi/2)
	}
}

func TestCapAddPoint(t *testing.T) {
	c := EmptyCap()
	pts := []Point{
		PointFromLatLng(0.1, 0.2),
		PointFromLatLng(-0.3, 0.4),
		PointFromLatLng(0.2, -0.5),
	}
	for _, p := range pts {
		c.AddPoint(p)
	}
	for _, p := range pts {
		if !c.ContainsPoint(p) {
			t.Errorf("cap does not contain added point %v", p)
		}
	}
}

func TestCapIntersects(t *testing.T) {
	a := CapFromCenterAngle(PointFromLatLng(0, 0), 0.3)
	b := CapFromCenterAngle(PointFromLatLng(0, 0.5), 0.3)
	c := CapFromCenterAngle(PointFromLatLng(0, 2.0), 0.3)
	if !a.Intersects(b) {
		t.Errorf("overlapping caps do not intersect")
	}
	if a.Intersects(c) {
		t.Errorf("distant caps intersect")
	}
	if a.Intersects(EmptyCap()) || EmptyCap().Intersects(a) {
		t.Errorf("empty cap intersects something")
	}
}

func TestCapExpanded(t *testing.T) {
	c := CapFromCenterAngle(PointFromLatLng(0, 0), 0.2)
	e := c.Expanded(0.1)
	if r := e.Radius(); !float64Near(r, 0.3, 1e-13) {
		t.Errorf("Expanded Radius = %v, want 0.3", r)
	}
	p := PointFromLatLng(0, 0.25)
	if c.ContainsPoint(p) {
		t.Errorf("original cap contains point outside its radius")
	}
	if !e.ContainsPoint(p) {
		t.Errorf("expanded cap does not contain point within its radius")
	}
	if !EmptyCap().Expanded(1).IsEmpty() {
		t.Errorf("expanding an empty cap produced a non-empty cap")
	}
}

func TestCapChordRadius(t *testing.T) {
	// For the hemisphere the chord radius is √2.
	hemi := CapFromCenterAngle(PointFromCoords(1, 0, 0), math.Pi/2)
	if r := hemi.ChordRadius(); !float64Near(r, math.Sqrt2, 1e-13) {
		t.Errorf("hemisphere ChordRadius = %v, want %v", r, math.Sqrt2)
	}
	if r := EmptyCap().ChordRadius(); r != 0 {
		t.Errorf("empty ChordRadius = %v, want 0", r)
	}
}
