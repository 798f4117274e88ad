package sphere

import (
	"fmt"
	"math"
)

const (
	emptyHeight = -1.0
	zeroHeight  = 0.0
	fullHeight  = 2.0
	roundUp     = float64(1.0 + 1.0/(uint64(1)<<52))
)

// Cap represents a disc-shaped region defined by a center and radius.
// Technically this shape is called a "spherical cap": the portion of the
// sphere cut off by a plane. For containment purposes the cap is a closed
// set, i.e. it contains its boundary.
//
// Internally the cap is represented by its center and "height", the
// distance from the center point to the cutoff plane, which is much more
// efficient for containment tests than a (center, radius) pair. There is
// also support for "empty" and "full" caps, which contain no points and
// all points respectively.
//
// The zero value of Cap is an invalid cap. Use EmptyCap for a valid empty
// cap.
type Cap struct {
	center Point
	height float64
}

// CapFromPoint constructs a cap containing a single point.
func CapFromPoint(p Point) Cap {
	return CapFromCenterHeight(p, zeroHeight)
}

// CapFromCenterAngle constructs a cap with the given center and angular
// radius in radians.
func CapFromCenterAngle(center Point, radius float64) Cap {
	return CapFromCenterHeight(center, radiusToHeight(radius))
}

// CapFromCenterHeight constructs a cap with the given center and height.
// A negative height yields an empty cap; a height of 2 or more yields a
// full cap.
func CapFromCenterHeight(center Point, height float64) Cap {
	return Cap{
		center: Point{center.Normalize()},
		height: height,
	}
}

// EmptyCap returns a cap that contains no points.
func EmptyCap() Cap {
	return CapFromCenterHeight(PointFromCoords(1, 0, 0), emptyHeight)
}

// FullCap returns a cap that contains all points.
func FullCap() Cap {
	return CapFromCenterHeight(PointFromCoords(1, 0, 0), fullHeight)
}

// AddPoint grows the cap to include the given point. After calling
// c.AddPoint(p), c.ContainsPoint(p) is true.
func (c *Cap) AddPoint(p Point) {
	if c.IsEmpty() {
		c.center = p
		c.height = 0
		return
	}
	// Compute the squared chord length and convert it into a height,
	// rounding up so that the resulting cap actually includes the point.
	dist2 := c.center.Sub(p.Vector).Norm2()
	c.height = math.Max(c.height, roundUp*0.5*dist2)
}

// Center returns the cap's center point.
func (c Cap) Center() Point { return c.center }

// IsEmpty reports whether the cap contains no points.
func (c Cap) IsEmpty() bool { return c.height < zeroHeight }

// IsFull reports whether the cap contains all points.
func (c Cap) IsFull() bool { return c.height == fullHeight }

// Radius returns the cap's angular radius in radians.
func (c Cap) Radius() float64 {
	if c.IsEmpty() {
		return emptyHeight
	}
	// This could be computed as acos(1 - height), but the formula below
	// is much more accurate when the height is small. It follows from
	// h = 1 - cos(r) = 2 sin^2(r/2).
	return 2 * math.Asin(math.Sqrt(0.5*math.Min(c.height, fullHeight)))
}

// ChordRadius returns the maximum straight-line (chord) distance from the
// cap center to any point of the cap.
func (c Cap) ChordRadius() float64 {
	if c.IsEmpty() {
		return 0
	}
	return math.Sqrt(2 * math.Min(c.height, fullHeight))
}

// Area returns the surface area of the cap on the unit sphere.
func (c Cap) Area() float64 {
	return 2 * math.Pi * math.Max(zeroHeight, c.height)
}

// Intersects reports whether this cap and the other have any points in
// common.
func (c Cap) Intersects(other Cap) bool {
	if c.IsEmpty() || other.IsEmpty() {
		return false
	}
	return c.Radius()+other.Radius() >= c.center.Distance(other.center)
}

// ContainsPoint reports whether this cap contains the point.
func (c Cap) ContainsPoint(p Point) bool {
	return c.center.Sub(p.Vector).Norm2() <= 2*c.height
}

// Expanded returns a new cap expanded by the given angle in radians. If
// the cap is empty an empty cap is returned.
func (c Cap) Expanded(angle float64) Cap {
	if c.IsEmpty() {
		return EmptyCap()
	}
	return CapFromCenterAngle(c.center, c.Radius()+angle)
}

func (c Cap) String() string {
	return fmt.Sprintf("[center=%v, radius=%f]", c.center, c.Radius())
}

// radiusToHeight converts an angular radius in radians into a cap height.
func radiusToHeight(r float64) float64 {
	if r < 0 {
		return emptyHeight
	}
	if r >= math.Pi {
		return fullHeight
	}
	d := math.Sin(0.5 * r)
	return 2 * d * d
}
