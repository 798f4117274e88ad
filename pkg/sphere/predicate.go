package sphere

import "math/big"

// maxDetError is the maximum error in the determinant computed by
// triageSign using plain float64 arithmetic: 14 * (2**-54).
const maxDetError = 0.8e-15

// Sign returns true if the points a, b, c are strictly counterclockwise,
// and false if the points are clockwise or collinear (i.e. if they are
// all contained on some great circle). This is the fast, non-robust
// predicate; use RobustSign when near-degenerate inputs matter.
//
// The determinant is computed as (c ⨯ a) · b rather than (a ⨯ b) · c so
// that Sign(a,b,c) and Sign(c,b,a) are never both true, even numerically.
func Sign(a, b, c Point) bool {
	return c.Cross(a.Vector).Dot(b.Vector) > 0
}

// RobustSign returns +1 if the points a, b, c are counterclockwise, -1 if
// they are clockwise, and 0 only when at least two of the points are
// identical. The result is exact: when the floating-point determinant is
// too close to zero to be trusted, the sign is recomputed with exact
// rational arithmetic, and exact zeros are resolved by symbolic
// perturbation so that no three distinct points are ever reported as
// collinear.
func RobustSign(a, b, c Point) int {
	if s := triageSign(c, Point{a.Cross(b.Vector)}); s != 0 {
		return s
	}
	return exactSign(a, b, c)
}

func triageSign(c, aCrossB Point) int {
	det := aCrossB.Dot(c.Vector)
	if det > maxDetError {
		return 1
	}
	if det < -maxDetError {
		return -1
	}
	return 0
}

// ratVector is an exact rational 3-vector. float64 coordinates convert
// losslessly, so determinants over ratVectors are exact.
type ratVector [3]*big.Rat

func ratVectorFromPoint(p Point) ratVector {
	return ratVector{
		new(big.Rat).SetFloat64(p.X),
		new(big.Rat).SetFloat64(p.Y),
		new(big.Rat).SetFloat64(p.Z),
	}
}

func (v ratVector) cross(w ratVector) ratVector {
	mulSub := func(a, b, c, d *big.Rat) *big.Rat {
		ab := new(big.Rat).Mul(a, b)
		cd := new(big.Rat).Mul(c, d)
		return ab.Sub(ab, cd)
	}
	return ratVector{
		mulSub(v[1], w[2], v[2], w[1]),
		mulSub(v[2], w[0], v[0], w[2]),
		mulSub(v[0], w[1], v[1], w[0]),
	}
}

func (v ratVector) dot(w ratVector) *big.Rat {
	sum := new(big.Rat)
	for i := 0; i < 3; i++ {
		sum.Add(sum, new(big.Rat).Mul(v[i], w[i]))
	}
	return sum
}

// exactSign computes the sign of the determinant of three points using
// exact arithmetic, resolving exact zeros with symbolic perturbation.
// It returns zero if and only if two points are identical.
func exactSign(a, b, c Point) int {
	if a == b || b == c || c == a {
		return 0
	}

	// Sort the three points in lexicographic order, keeping track of the
	// sign of the permutation. (Each exchange inverts the sign of the
	// determinant.)
	permSign := 1
	pa, pb, pc := a, b, c
	if !pa.Vector.LessThan(pb.Vector) {
		pa, pb = pb, pa
		permSign = -permSign
	}
	if !pb.Vector.LessThan(pc.Vector) {
		pb, pc = pc, pb
		permSign = -permSign
	}
	if !pa.Vector.LessThan(pb.Vector) {
		pa, pb = pb, pa
		permSign = -permSign
	}

	xa := ratVectorFromPoint(pa)
	xb := ratVectorFromPoint(pb)
	xc := ratVectorFromPoint(pc)
	bCrossC := xb.cross(xc)
	detSign := xa.dot(bCrossC).Sign()
	if detSign == 0 {
		detSign = symbolicSign(xa, xb, xc, bCrossC)
	}
	return permSign * detSign
}

// symbolicSign returns the sign of the determinant of three points under
// a model where every point is perturbed by a unique infinitesimal amount
// such that no three perturbed points are collinear. The perturbations
// are so small that they never change the sign of a non-zero
// determinant, so the results are always self-consistent.
//
// Requires that the exact determinant of a, b, c is zero and that the
// points are distinct and sorted with a < b < c in lexicographic order.
//
// Reference: "Simulation of Simplicity" (Edelsbrunner and Muecke, ACM
// Transactions on Graphics, 1990).
func symbolicSign(a, b, c, bCrossC ratVector) int {
	// The perturbations da[2] > da[1] > da[0] > db[2] > ... > dc[0] are
	// chosen such that each one is so much smaller than the previous that
	// it only matters when the coefficients of all previous perturbations
	// (and their products) are zero. The code enumerates the coefficients
	// in order of decreasing perturbation magnitude; the first non-zero
	// coefficient determines the sign of the result.
	if s := bCrossC[2].Sign(); s != 0 { // da[2]
		return s
	}
	if s := bCrossC[1].Sign(); s != 0 { // da[1]
		return s
	}
	if s := bCrossC[0].Sign(); s != 0 { // da[0]
		return s
	}

	sub := func(x, y *big.Rat) *big.Rat { return new(big.Rat).Sub(x, y) }
	mul := func(x, y *big.Rat) *big.Rat { return new(big.Rat).Mul(x, y) }

	if s := sub(mul(c[0], a[1]), mul(c[1], a[0])).Sign(); s != 0 { // db[2]
		return s
	}
	if s := c[0].Sign(); s != 0 { // db[2] * da[1]
		return s
	}
	if s := -c[1].Sign(); s != 0 { // db[2] * da[0]
		return s
	}
	if s := sub(mul(c[2], a[0]), mul(c[0], a[2])).Sign(); s != 0 { // db[1]
		return s
	}
	if s := c[2].Sign(); s != 0 { // db[1] * da[0]
		return s
	}

	// The previous tests guarantee that c == (0, 0, 0).
	if s := sub(mul(a[0], b[1]), mul(a[1], b[0])).Sign(); s != 0 { // dc[2]
		return s
	}
	if s := -b[0].Sign(); s != 0 { // dc[2] * da[1]
		return s
	}
	if s := b[1].Sign(); s != 0 { // dc[2] * da[0]
		return s
	}
	if s := a[0].Sign(); s != 0 { // dc[2] * db[1]
		return s
	}
	return 1 // dc[2] * db[1] * da[0]
}

// OrderedCCW reports whether the edges OA, OB, OC are encountered in that
// order while sweeping counterclockwise around the point o.
//
// The relation is transitive in the sense that if OrderedCCW(a,b,c,o) and
// OrderedCCW(a,c,d,o) then OrderedCCW(a,b,d,o).
func OrderedCCW(a, b, c, o Point) bool {
	// The last inequality is ">" rather than ">=" so that we return true
	// if a == b or b == c, and otherwise false if a == c.
	sum := 0
	if RobustSign(b, o, a) >= 0 {
		sum++
	}
	if RobustSign(c, o, b) >= 0 {
		sum++
	}
	if RobustSign(a, o, c) > 0 {
		sum++
	}
	return sum >= 2
}
