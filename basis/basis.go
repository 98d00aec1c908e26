// Package basis implements the radial basis function families used by the
// interpolation engine. A Basis evaluates cross matrices of function values
// or axis derivatives (up to second order) between two point sets, with one
// shape parameter per center.
package basis

import (
	"math"

	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/poly"
	"github.com/keithwoj/RBF/utils"
)

// Basis evaluates a radial basis function family between point sets.
//
// Eval returns the |xa| x |xb| matrix of phi(eps_j*||xa_i - xb_j||), or the
// requested partial derivative with respect to the evaluation point xa_i.
// eps holds one scale per center (one per row of xb); nil means all ones.
// Derivative multi-indices are supported up to total order two, which
// covers the axis-aligned Laplacian terms used for regularization.
type Basis interface {
	Name() string
	Eval(xa, xb utils.Matrix, eps utils.Vector, diff poly.MultiIndex) (utils.Matrix, error)
}

// radial is a basis defined by a scalar profile phi(s) of the scaled
// distance s = eps*r. The derivative machinery only needs
//
//	f(s) = phi(s)
//	g(s) = phi'(s)/s
//	h(s) = (phi''(s) - phi'(s)/s)/s^2
//
// since, for d = xa_i - xb_j,
//
//	d phi/dx_p      = eps^2 * d_p * g(s)
//	d2 phi/dx_p dx_q = eps^2 * delta_pq * g(s) + eps^4 * d_p * d_q * h(s)
//
// g0 and h0 are the s->0 limits; families whose limit diverges use the
// center convention of zero there (the polynomial block, not the basis
// block, carries the behavior at coincident points).
type radial struct {
	name   string
	f      func(s float64) float64
	g      func(s float64) float64
	h      func(s float64) float64
	g0, h0 float64
}

func (rb *radial) Name() string { return rb.name }

func (rb *radial) Eval(xa, xb utils.Matrix, eps utils.Vector, diff poly.MultiIndex) (A utils.Matrix, err error) {
	var (
		na, da = xa.Dims()
		nb, db = xb.Dims()
	)
	if da != db {
		return A, errors.NewDimensionError(rb.name+".Eval", da, db, 1)
	}
	if eps.IsEmpty() {
		eps = utils.NewVectorConstant(nb, 1)
	} else if eps.Len() != nb {
		return A, errors.NewDimensionError(rb.name+".Eval", nb, eps.Len(), 0)
	}
	p, q, order, err := derivativeAxes(rb.name, da, diff)
	if err != nil {
		return A, err
	}

	A = utils.NewMatrix(na, nb)
	d := make([]float64, da)
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			var r2 float64
			for k := 0; k < da; k++ {
				d[k] = xa.At(i, k) - xb.At(j, k)
				r2 += d[k] * d[k]
			}
			var (
				e = eps.AtVec(j)
				s = e * math.Sqrt(r2)
			)
			switch order {
			case 0:
				A.Set(i, j, rb.f(s))
			case 1:
				if s <= utils.NODETOL {
					A.Set(i, j, 0)
				} else {
					A.Set(i, j, e*e*d[p]*rb.g(s))
				}
			case 2:
				var val float64
				if s <= utils.NODETOL {
					if p == q {
						val = e * e * rb.g0
					}
				} else {
					if p == q {
						val = e * e * rb.g(s)
					}
					val += e * e * e * e * d[p] * d[q] * rb.h(s)
				}
				A.Set(i, j, val)
			}
		}
	}
	return
}

// derivativeAxes validates diff and reduces it to at most two axes.
func derivativeAxes(op string, dim int, diff poly.MultiIndex) (p, q, order int, err error) {
	if diff == nil {
		return
	}
	if len(diff) != dim {
		err = errors.NewDimensionError(op, dim, len(diff), 1)
		return
	}
	axes := make([]int, 0, 2)
	for axis, k := range diff {
		if k < 0 {
			err = errors.NewValueError(op, "derivative orders must be non-negative")
			return
		}
		for c := 0; c < k && len(axes) <= 2; c++ {
			axes = append(axes, axis)
		}
		order += k
	}
	if order > 2 {
		err = errors.NewValueErrorf(op, "derivative order %d exceeds the supported maximum of 2", order)
		return
	}
	if order >= 1 {
		p = axes[0]
	}
	if order == 2 {
		q = axes[1]
	}
	return
}
