// Package geometry provides the convex hull membership test that gates
// extrapolation during interpolant evaluation.
package geometry

import (
	"math"

	"github.com/pradeep-pyro/triangle"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/utils"
)

// barycentric coordinates this close to zero still count as inside, so the
// hull boundary is inclusive.
const insideTol = 1.e-12

// InHull classifies each query point in p as inside (boundary inclusive) or
// outside the convex hull of the hull points. In one dimension the hull is
// the [min,max] interval. In two dimensions the hull points are Delaunay
// triangulated and a query is inside when some triangle contains it. In
// three and more dimensions membership is decided by convex-combination
// feasibility: q is inside iff nonnegative weights summing to one
// reproduce it, a small phase-1 linear program per query.
func InHull(p, hull utils.Matrix) (inside []bool, err error) {
	var (
		_, dim   = p.Dims()
		nh, dimH = hull.Dims()
	)
	if dim != dimH {
		return nil, errors.NewDimensionError("InHull", dimH, dim, 1)
	}
	if nh < 1 {
		return nil, errors.NewValueError("InHull", "hull point set is empty")
	}
	switch dim {
	case 1:
		inside = inHull1D(p, hull)
	case 2:
		inside, err = inHull2D(p, hull)
	default:
		inside, err = inHullLP(p, hull)
	}
	return
}

func inHull1D(p, hull utils.Matrix) (inside []bool) {
	var (
		np, _ = p.Dims()
		h     = hull.Col(0)
		lo    = h.Min()
		hi    = h.Max()
	)
	inside = make([]bool, np)
	for i := 0; i < np; i++ {
		v := p.At(i, 0)
		inside[i] = v >= lo && v <= hi
	}
	return
}

func inHull2D(p, hull utils.Matrix) (inside []bool, err error) {
	var (
		np, _ = p.Dims()
		nh, _ = hull.Dims()
		pts   = make([][2]float64, nh)
	)
	for i := 0; i < nh; i++ {
		pts[i] = [2]float64{hull.At(i, 0), hull.At(i, 1)}
	}
	tris := triangle.Delaunay(pts)
	if len(tris) == 0 {
		// Collinear hull points triangulate to nothing; the LP
		// classification still works on the degenerate hull.
		return inHullLP(p, hull)
	}

	inside = make([]bool, np)
	for i := 0; i < np; i++ {
		var (
			qx = p.At(i, 0)
			qy = p.At(i, 1)
		)
		for _, tri := range tris {
			if triangleContains(pts[tri[0]], pts[tri[1]], pts[tri[2]], qx, qy) {
				inside[i] = true
				break
			}
		}
	}
	return
}

// triangleContains tests barycentric coordinates of (qx,qy) with respect to
// triangle abc, tolerating slightly negative values at the boundary.
func triangleContains(a, b, c [2]float64, qx, qy float64) bool {
	var (
		det = (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
	)
	if math.Abs(det) < insideTol {
		return false
	}
	l1 := ((qx-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(qy-a[1])) / det
	l2 := ((b[0]-a[0])*(qy-a[1]) - (qx-a[0])*(b[1]-a[1])) / det
	l0 := 1 - l1 - l2
	return l0 >= -insideTol && l1 >= -insideTol && l2 >= -insideTol
}

func inHullLP(p, hull utils.Matrix) (inside []bool, err error) {
	var (
		np, dim = p.Dims()
		nh, _   = hull.Dims()
		c       = make([]float64, nh)
		b       = make([]float64, dim+1)
	)
	// Constraint matrix: hull points as columns plus a row of ones forcing
	// the weights to sum to one.
	A := mat.NewDense(dim+1, nh, nil)
	for j := 0; j < nh; j++ {
		for d := 0; d < dim; d++ {
			A.Set(d, j, hull.At(j, d))
		}
		A.Set(dim, j, 1)
	}

	inside = make([]bool, np)
	for i := 0; i < np; i++ {
		for d := 0; d < dim; d++ {
			b[d] = p.At(i, d)
		}
		b[dim] = 1
		_, _, lpErr := lp.Simplex(c, A, b, 1.e-10, nil)
		switch {
		case lpErr == nil:
			inside[i] = true
		case errors.Is(lpErr, lp.ErrInfeasible):
			inside[i] = false
		default:
			return nil, errors.Wrap(lpErr, "rbf: InHull")
		}
	}
	return
}
