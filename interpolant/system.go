// Package interpolant implements the regularized radial basis function
// fitting and evaluation engine: assembly of the saddle-point system
// coupling basis coefficients to polynomial constraints, the damped
// least-squares solve with optional GCV damping selection, and chunked
// evaluation of the fitted model.
package interpolant

import (
	"github.com/keithwoj/RBF/basis"
	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/poly"
	"github.com/keithwoj/RBF/utils"
)

// LaplacianDiffOp enumerates the derivative multi-indices of the Laplacian
// differential operator in dim dimensions: one pure second derivative per
// axis, unit coefficients. For dim=2 it yields (2,0) and (0,2).
func LaplacianDiffOp(dim int) (terms []poly.MultiIndex) {
	terms = make([]poly.MultiIndex, dim)
	for i := 0; i < dim; i++ {
		d := make(poly.MultiIndex, dim)
		d[i] = 2
		terms[i] = d
	}
	return
}

// CoefficientMatrix assembles the (N+P)x(N+P) saddle-point matrix mapping
// coefficients to function values at the observation points x:
//
//	| B   Ap |      B  = basis values between the points (N x N)
//	| Ap' 0  |      Ap = monomials evaluated at the points (N x P)
//
// The column layout (N basis columns by point index, then P polynomial
// columns in poly.MonomialPowers order) is shared with
// RegularizationMatrix and InterpolationMatrix, so coefficient vectors are
// interchangeable across all three.
func CoefficientMatrix(x utils.Matrix, eps utils.Vector, b basis.Basis, order int) (A utils.Matrix, err error) {
	var (
		n, dim = x.Dims()
	)
	powers, err := poly.MonomialPowers(order, dim)
	if err != nil {
		return
	}
	P := len(powers)
	B, err := b.Eval(x, x, eps, nil)
	if err != nil {
		return
	}
	Ap, err := poly.Evaluate(x, powers, nil)
	if err != nil {
		return
	}
	A = utils.NewMatrix(n+P, n+P)
	A.SetSubMatrix(0, 0, B)
	A.SetSubMatrix(0, n, Ap)
	A.SetSubMatrix(n, 0, Ap.Transpose())
	return
}

// RegularizationMatrix is the top block-row of the coefficient matrix with
// basis and polynomial terms differentiated by diff, evaluated at the
// observation points against themselves. Summed over LaplacianDiffOp terms
// it approximates the discrete Laplacian acting on the fitted field.
func RegularizationMatrix(x utils.Matrix, eps utils.Vector, b basis.Basis, order int, diff poly.MultiIndex) (L utils.Matrix, err error) {
	return crossMatrix(x, x, eps, b, order, diff)
}

// InterpolationMatrix is the cross matrix between query points xq and the
// observation points x, with an optional derivative. Multiplying it by a
// fitted coefficient vector evaluates the model at xq.
func InterpolationMatrix(xq, x utils.Matrix, eps utils.Vector, b basis.Basis, order int, diff poly.MultiIndex) (Q utils.Matrix, err error) {
	var (
		_, dimQ = xq.Dims()
		_, dim  = x.Dims()
	)
	if dimQ != dim {
		err = errors.NewDimensionError("InterpolationMatrix", dim, dimQ, 1)
		return
	}
	return crossMatrix(xq, x, eps, b, order, diff)
}

func crossMatrix(xa, xb utils.Matrix, eps utils.Vector, b basis.Basis, order int, diff poly.MultiIndex) (Q utils.Matrix, err error) {
	var (
		na, _  = xa.Dims()
		nb, db = xb.Dims()
	)
	powers, err := poly.MonomialPowers(order, db)
	if err != nil {
		return
	}
	B, err := b.Eval(xa, xb, eps, diff)
	if err != nil {
		return
	}
	Ap, err := poly.Evaluate(xa, powers, diff)
	if err != nil {
		return
	}
	Q = utils.NewMatrix(na, nb+len(powers))
	Q.SetSubMatrix(0, 0, B)
	Q.SetSubMatrix(0, nb, Ap)
	return
}
