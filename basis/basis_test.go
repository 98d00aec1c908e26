package basis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keithwoj/RBF/poly"
	"github.com/keithwoj/RBF/utils"
)

func TestValues(t *testing.T) {
	var (
		xa = utils.NewMatrix(1, 2, []float64{3, 4})
		xb = utils.NewMatrix(1, 2, []float64{0, 0})
		// r = 5 between the two points
		r = 5.
	)
	near := func(b Basis, eps, want float64) {
		A, err := b.Eval(xa, xb, utils.NewVectorConstant(1, eps), nil)
		assert.NoError(t, err)
		assert.InDelta(t, want, A.At(0, 0), 1.e-12*math.Abs(want)+1.e-14)
	}
	near(PHS1, 1, r)
	near(PHS3, 1, r*r*r)
	near(PHS2, 1, r*r*math.Log(r))
	near(Gaussian, 0.2, math.Exp(-1))
	near(Multiquadric, 0.2, math.Sqrt(2))
	near(InverseMultiquadric, 0.2, 1/math.Sqrt(2))
	{ // Shape parameter scales the distance before the profile
		A, err := PHS3.Eval(xa, xb, utils.NewVectorConstant(1, 2), nil)
		assert.NoError(t, err)
		assert.InDelta(t, 1000., A.At(0, 0), 1.e-9)
	}
}

func TestSymmetryAndDiagonal(t *testing.T) {
	x := utils.NewMatrix(4, 2, []float64{
		0, 0,
		1, 0,
		0.5, 1,
		-0.3, 0.4,
	})
	for name, b := range families {
		A, err := b.Eval(x, x, utils.Vector{}, nil)
		assert.NoError(t, err, name)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				assert.InDelta(t, A.At(i, j), A.At(j, i), 1.e-14, name)
			}
			// phi(0) on the diagonal
			B0, _ := b.Eval(utils.NewMatrix(1, 1, []float64{0}), utils.NewMatrix(1, 1, []float64{0}), utils.Vector{}, nil)
			assert.InDelta(t, B0.At(0, 0), A.At(i, i), 1.e-14, name)
		}
	}
}

// Derivatives are verified against central finite differences of the value
// evaluation, well away from the centers.
func TestDerivatives(t *testing.T) {
	var (
		xb  = utils.NewMatrix(1, 2, []float64{0.3, 0.7})
		eps = utils.NewVectorConstant(1, 1.3)
		q   = []float64{1.1, 0.2}
		h   = 1.e-6
	)
	eval := func(b Basis, pt []float64, diff poly.MultiIndex) float64 {
		A, err := b.Eval(utils.NewMatrix(1, 2, pt), xb, eps, diff)
		assert.NoError(t, err)
		return A.At(0, 0)
	}
	for name, b := range families {
		for axis := 0; axis < 2; axis++ {
			var (
				diff  = poly.MultiIndex{0, 0}
				plus  = []float64{q[0], q[1]}
				minus = []float64{q[0], q[1]}
			)
			diff[axis] = 1
			plus[axis] += h
			minus[axis] -= h
			fd := (eval(b, plus, nil) - eval(b, minus, nil)) / (2 * h)
			assert.InDelta(t, fd, eval(b, q, diff), 1.e-5, name)
		}
		{ // Pure second derivative along x
			plus := []float64{q[0] + h, q[1]}
			minus := []float64{q[0] - h, q[1]}
			fd := (eval(b, plus, poly.MultiIndex{1, 0}) - eval(b, minus, poly.MultiIndex{1, 0})) / (2 * h)
			assert.InDelta(t, fd, eval(b, q, poly.MultiIndex{2, 0}), 1.e-4, name)
		}
		{ // Mixed second derivative
			plus := []float64{q[0], q[1] + h}
			minus := []float64{q[0], q[1] - h}
			fd := (eval(b, plus, poly.MultiIndex{1, 0}) - eval(b, minus, poly.MultiIndex{1, 0})) / (2 * h)
			assert.InDelta(t, fd, eval(b, q, poly.MultiIndex{1, 1}), 1.e-4, name)
		}
	}
}

func TestCoincidentPoints(t *testing.T) {
	var (
		x   = utils.NewMatrix(1, 2, []float64{0.5, 0.5})
		eps = utils.NewVectorConstant(1, 2)
	)
	{ // Singular polyharmonic derivatives take the zero convention at r=0
		for _, b := range []Basis{PHS1, PHS2, PHS3} {
			D, err := b.Eval(x, x, eps, poly.MultiIndex{2, 0})
			assert.NoError(t, err)
			assert.Equal(t, 0., D.At(0, 0))
		}
	}
	{ // Smooth families use the analytic limit: d2/dx2 exp(-(eps*r)^2) = -2*eps^2 at r=0
		D, err := Gaussian.Eval(x, x, eps, poly.MultiIndex{2, 0})
		assert.NoError(t, err)
		assert.InDelta(t, -8., D.At(0, 0), 1.e-12)
		// Mixed derivative vanishes at the center
		D, err = Gaussian.Eval(x, x, eps, poly.MultiIndex{1, 1})
		assert.NoError(t, err)
		assert.Equal(t, 0., D.At(0, 0))
	}
}

func TestEvalErrors(t *testing.T) {
	var (
		xa = utils.NewMatrix(2, 2, []float64{0, 0, 1, 1})
		xb = utils.NewMatrix(2, 2, []float64{0, 0, 1, 1})
	)
	{ // Derivative order above two is unsupported
		_, err := PHS3.Eval(xa, xb, utils.Vector{}, poly.MultiIndex{2, 1})
		assert.Error(t, err)
	}
	{ // Derivative tuple must match the dimension
		_, err := PHS3.Eval(xa, xb, utils.Vector{}, poly.MultiIndex{1})
		assert.Error(t, err)
	}
	{ // One shape parameter per center
		_, err := PHS3.Eval(xa, xb, utils.NewVectorConstant(3, 1), nil)
		assert.Error(t, err)
	}
	{ // Point sets must share a dimension
		_, err := PHS3.Eval(xa, utils.NewMatrix(1, 3, []float64{0, 0, 0}), utils.Vector{}, nil)
		assert.Error(t, err)
	}
}

func TestFromName(t *testing.T) {
	b, err := FromName("gaussian")
	assert.NoError(t, err)
	assert.Equal(t, "gaussian", b.Name())
	_, err = FromName("nosuch")
	assert.Error(t, err)
}
