package interpolant

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keithwoj/RBF/basis"
	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/poly"
	"github.com/keithwoj/RBF/utils"
)

// A quadratic sampled at five points with a degree two polynomial appended
// is reproduced exactly: the polynomial block absorbs the data and the basis
// coefficients vanish, so values and derivatives match x^2 everywhere.
func TestQuadraticReproduction(t *testing.T) {
	var (
		x   = utils.NewMatrix(5, 1, []float64{0, 1, 2, 3, 4})
		val = utils.NewVector(5, []float64{0, 1, 4, 9, 16})
		prm = NewParams()
	)
	prm.Order = 2
	itp, err := NewRBFInterpolant(x, val, prm)
	assert.NoError(t, err)

	out, err := itp.Evaluate(utils.NewMatrix(1, 1, []float64{2.5}), nil)
	assert.NoError(t, err)
	assert.InDelta(t, 6.25, out.AtVec(0), 1.e-6)

	out, err = itp.Evaluate(utils.NewMatrix(1, 1, []float64{2}), poly.MultiIndex{1})
	assert.NoError(t, err)
	assert.InDelta(t, 4., out.AtVec(0), 1.e-4)

	out, err = itp.Evaluate(utils.NewMatrix(1, 1, []float64{3.5}), poly.MultiIndex{2})
	assert.NoError(t, err)
	assert.InDelta(t, 2., out.AtVec(0), 1.e-4)
}

func TestInterpolationExactness(t *testing.T) {
	// With zero damping the fit interpolates: training points reproduce
	// their observations.
	var (
		x = utils.NewMatrix(6, 2, []float64{
			0, 0,
			1, 0,
			0, 1,
			1, 1,
			0.5, 0.3,
			0.2, 0.8,
		})
		val = utils.NewVector(6, []float64{1, -2, 0.5, 3, 0, 1.25})
		prm = NewParams()
	)
	prm.Order = 1
	itp, err := NewRBFInterpolant(x, val, prm)
	assert.NoError(t, err)
	out, err := itp.Evaluate(x, nil)
	assert.NoError(t, err)
	for i := 0; i < 6; i++ {
		assert.InDelta(t, val.AtVec(i), out.AtVec(i), 1.e-7)
	}
}

func TestDerivativeAccuracy(t *testing.T) {
	// sin(x) sampled densely; the fitted first derivative tracks cos(x) at
	// interior queries.
	var (
		n   = 41
		x   = utils.NewMatrix(n, 1)
		val = utils.NewVector(n)
		prm = NewParams()
	)
	for i := 0; i < n; i++ {
		xi := 2 * math.Pi * float64(i) / float64(n-1)
		x.Set(i, 0, xi)
		val.SetVec(i, math.Sin(xi))
	}
	prm.Order = 2
	itp, err := NewRBFInterpolant(x, val, prm)
	assert.NoError(t, err)
	queries := utils.NewMatrix(3, 1, []float64{1, math.Pi, 5})
	out, err := itp.Evaluate(queries, poly.MultiIndex{1})
	assert.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, math.Cos(queries.At(i, 0)), out.AtVec(i), 5.e-2)
	}
}

// Chunking is a memory bound, not a numerical knob: evaluation must be
// identical for any chunk size.
func TestChunkInvariance(t *testing.T) {
	var (
		n   = 12
		x   = utils.NewMatrix(n, 1)
		val = utils.NewVector(n)
	)
	for i := 0; i < n; i++ {
		xi := float64(i) * 0.4
		x.Set(i, 0, xi)
		val.SetVec(i, math.Sin(xi))
	}
	fit := func(chunk int) utils.Vector {
		prm := NewParams()
		prm.Order = 1
		prm.ChunkSize = chunk
		itp, err := NewRBFInterpolant(x, val, prm)
		assert.NoError(t, err)
		queries := utils.NewMatrix(7, 1, []float64{0.1, 0.7, 1.3, 2.0, 2.6, 3.3, 4.1})
		out, err := itp.Evaluate(queries, nil)
		assert.NoError(t, err)
		return out
	}
	var (
		whole   = fit(DefaultChunkSize)
		chunked = fit(3)
	)
	for i := 0; i < whole.Len(); i++ {
		assert.Equal(t, whole.AtVec(i), chunked.AtVec(i))
	}
}

func TestExtrapolationGate(t *testing.T) {
	var (
		x = utils.NewMatrix(5, 2, []float64{
			0, 0,
			1, 0,
			0, 1,
			1, 1,
			0.5, 0.5,
		})
		val = utils.NewVector(5, []float64{0, 1, 1, 2, 1})
	)
	{ // Gated with an explicit fill value
		prm := NewParams()
		prm.Extrapolate = false
		prm.Fill = -123
		itp, err := NewRBFInterpolant(x, val, prm)
		assert.NoError(t, err)
		queries := utils.NewMatrix(3, 2, []float64{
			0.25, 0.25, // inside
			2, 2, // outside
			1, 0.5, // on the boundary
		})
		out, err := itp.Evaluate(queries, nil)
		assert.NoError(t, err)
		assert.NotEqual(t, -123., out.AtVec(0))
		assert.Equal(t, -123., out.AtVec(1))
		assert.NotEqual(t, -123., out.AtVec(2))
	}
	{ // Default fill is NaN
		prm := NewParams()
		prm.Extrapolate = false
		itp, err := NewRBFInterpolant(x, val, prm)
		assert.NoError(t, err)
		out, err := itp.Evaluate(utils.NewMatrix(1, 2, []float64{5, 5}), nil)
		assert.NoError(t, err)
		assert.True(t, math.IsNaN(out.AtVec(0)))
	}
	{ // Extrapolation allowed: outside queries evaluate normally
		itp, err := NewRBFInterpolant(x, val, NewParams())
		assert.NoError(t, err)
		out, err := itp.Evaluate(utils.NewMatrix(1, 2, []float64{2, 2}), nil)
		assert.NoError(t, err)
		assert.False(t, math.IsNaN(out.AtVec(0)))
	}
}

// Raising one point's weight under fixed damping tightens the fit at that
// point.
func TestWeightedFit(t *testing.T) {
	var (
		n   = 7
		x   = utils.NewMatrix(n, 1)
		val = utils.NewVector(n)
	)
	for i := 0; i < n; i++ {
		x.Set(i, 0, float64(i)*0.5)
		val.SetVec(i, float64(i*i)*0.25)
	}
	residualAt := func(w float64) float64 {
		prm := NewParams()
		prm.Damping = FixedDamping(1)
		prm.Weights = utils.NewVectorConstant(n, 1)
		prm.Weights.SetVec(3, w)
		itp, err := NewRBFInterpolant(x, val, prm)
		assert.NoError(t, err)
		out, err := itp.Evaluate(x.Slice(3, 4, 0, 1), nil)
		assert.NoError(t, err)
		return math.Abs(out.AtVec(0) - val.AtVec(3))
	}
	var (
		plain    = residualAt(1)
		weighted = residualAt(100)
	)
	assert.True(t, weighted <= plain+1.e-12)
	// And the damping actually bites: the unweighted fit is not exact.
	assert.True(t, plain > 1.e-8)
}

// Weighting operates on internal copies.
func TestCallerBuffersUntouched(t *testing.T) {
	var (
		x   = utils.NewMatrix(3, 1, []float64{0, 1, 2})
		val = utils.NewVector(3, []float64{1, 2, 3})
		prm = NewParams()
	)
	prm.Weights = utils.NewVector(3, []float64{1, 2, 3})
	_, err := NewRBFInterpolant(x, val, prm)
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, val.DataP())
	assert.Equal(t, []float64{1, 2, 3}, prm.Weights.DataP())
}

func TestDimensionErrors(t *testing.T) {
	var (
		x    = utils.NewMatrix(3, 2, []float64{0, 0, 1, 0, 0, 1})
		val  = utils.NewVector(3, []float64{1, 2, 3})
		dErr *errors.DimensionError
	)
	{ // Observation count must match the point count
		_, err := NewRBFInterpolant(x, utils.NewVector(2), NewParams())
		assert.Error(t, err)
		assert.True(t, errors.As(err, &dErr))
	}
	{ // One shape parameter per point
		prm := NewParams()
		prm.Eps = utils.NewVectorConstant(5, 1)
		_, err := NewRBFInterpolant(x, val, prm)
		assert.Error(t, err)
	}
	{ // One weight per point
		prm := NewParams()
		prm.Weights = utils.NewVectorConstant(2, 1)
		_, err := NewRBFInterpolant(x, val, prm)
		assert.Error(t, err)
	}
	{ // Query dimension must match the training dimension
		itp, err := NewRBFInterpolant(x, val, NewParams())
		assert.NoError(t, err)
		_, err = itp.Evaluate(utils.NewMatrix(1, 3, []float64{0, 0, 0}), nil)
		assert.Error(t, err)
		assert.True(t, errors.As(err, &dErr))
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	var (
		x   = utils.NewMatrix(5, 1, []float64{0, 1, 2, 3, 4})
		val = utils.NewVector(5, []float64{0, 1, 4, 9, 16})
		prm = NewParams()
	)
	prm.Order = 2
	prm.Basis = basis.Multiquadric
	prm.Eps = utils.NewVectorConstant(5, 0.5)
	prm.Extrapolate = false
	itp, err := NewRBFInterpolant(x, val, prm)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, itp.WriteYAML(&buf))
	itp2, err := ReadYAML(&buf)
	assert.NoError(t, err)

	assert.Equal(t, itp.Basis().Name(), itp2.Basis().Name())
	assert.Equal(t, itp.Order(), itp2.Order())
	assert.Equal(t, itp.Extrapolate(), itp2.Extrapolate())
	assert.True(t, math.IsNaN(itp2.Fill()))

	// Evaluation is bit-identical: same coefficients, same points.
	queries := utils.NewMatrix(3, 1, []float64{0.5, 2.5, 3.7})
	out1, err := itp.Evaluate(queries, nil)
	assert.NoError(t, err)
	out2, err := itp2.Evaluate(queries, nil)
	assert.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, out1.AtVec(i), out2.AtVec(i))
	}
}

func TestReadYAMLValidation(t *testing.T) {
	{ // Unknown basis
		r := bytes.NewBufferString(`
Basis: nosuch
PolynomialOrder: 0
Points: [[0], [1]]
ShapeParameters: [1, 1]
Coefficients: [0, 0, 0]
Extrapolate: true
Fill: NaN
`)
		_, err := ReadYAML(r)
		assert.Error(t, err)
	}
	{ // Coefficient count must be N+P
		r := bytes.NewBufferString(`
Basis: phs3
PolynomialOrder: 0
Points: [[0], [1]]
ShapeParameters: [1, 1]
Coefficients: [0, 0]
Extrapolate: true
Fill: NaN
`)
		_, err := ReadYAML(r)
		assert.Error(t, err)
	}
	{ // No points
		r := bytes.NewBufferString("Basis: phs3\nPoints: []\nFill: NaN\n")
		_, err := ReadYAML(r)
		assert.Error(t, err)
	}
}

func TestDefaultParams(t *testing.T) {
	prm := NewParams()
	assert.Equal(t, basis.PHS3, prm.Basis)
	assert.Equal(t, 0, prm.Order)
	assert.True(t, prm.Extrapolate)
	assert.True(t, math.IsNaN(prm.Fill))
	assert.False(t, prm.Damping.IsAuto())
	assert.Equal(t, 0., prm.Damping.Value())
	assert.Equal(t, DefaultChunkSize, prm.ChunkSize)
}
