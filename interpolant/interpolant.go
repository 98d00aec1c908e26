package interpolant

import (
	"math"

	"github.com/james-bowman/sparse"
	"github.com/rs/zerolog/log"

	"github.com/keithwoj/RBF/basis"
	"github.com/keithwoj/RBF/geometry"
	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/poly"
	"github.com/keithwoj/RBF/utils"
)

// DefaultChunkSize bounds the number of query points evaluated per
// interpolation-matrix build. Chunking caps peak memory only; results are
// identical for any chunk size.
const DefaultChunkSize = 100000

// Params collects the fitting options for NewRBFInterpolant. Use NewParams
// for the defaults.
type Params struct {
	// Weights scales the data-fit rows and observations; one per point,
	// default all ones. The polynomial constraint rows are never weighted.
	Weights utils.Vector
	// Eps holds one shape parameter per center, default all ones. The
	// polyharmonic bases are scale invariant, so it mainly matters for the
	// gaussian and multiquadric families.
	Eps utils.Vector
	// Basis is the RBF family, default basis.PHS3.
	Basis basis.Basis
	// Order is the degree of the appended polynomial, default 0.
	Order int
	// Extrapolate allows evaluation outside the convex hull of the
	// training points. When false, outside points evaluate to Fill.
	Extrapolate bool
	// Fill is the value assigned outside the hull when Extrapolate is
	// false, default NaN.
	Fill float64
	// Damping is the regularization strength toward a Laplacian-smooth
	// solution, default FixedDamping(0).
	Damping Damping
	// ChunkSize overrides DefaultChunkSize when positive.
	ChunkSize int
	// GCVStarts is the number of starts for the GCV search, default 1.
	GCVStarts int
}

// NewParams returns the default fitting parameters.
func NewParams() Params {
	return Params{
		Basis:       basis.PHS3,
		Extrapolate: true,
		Fill:        math.NaN(),
		Damping:     FixedDamping(0),
		ChunkSize:   DefaultChunkSize,
		GCVStarts:   1,
	}
}

// RBFInterpolant is a fitted regularized radial basis function model: a
// linear combination of radial basis functions centered at the training
// points plus a polynomial of the configured order. It is immutable after
// construction; Evaluate is read-only and safe for concurrent use.
//
// The coefficients minimize
//
//	||W(A m - d)||^2 + damping^2 ||L m||^2
//
// where A is the saddle-point system, L approximates the Laplacian of the
// fitted field at the training points, and W carries the per-point weights.
type RBFInterpolant struct {
	x           utils.Matrix
	eps         utils.Vector
	coeff       utils.Vector
	basis       basis.Basis
	order       int
	extrapolate bool
	fill        float64
	chunkSize   int
}

// NewRBFInterpolant fits the model to the training points x (N x D) and
// observed values (length N). Caller-provided vectors are never mutated;
// weighting scales internal copies.
func NewRBFInterpolant(x utils.Matrix, value utils.Vector, prm Params) (itp *RBFInterpolant, err error) {
	var (
		n, dim = x.Dims()
	)
	if n < 1 || dim < 1 {
		return nil, errors.NewValueErrorf("NewRBFInterpolant", "point set must be at least 1x1, got %dx%d", n, dim)
	}
	if value.Len() != n {
		return nil, errors.NewDimensionError("NewRBFInterpolant", n, value.Len(), 0)
	}
	eps := prm.Eps
	if eps.IsEmpty() {
		eps = utils.NewVectorConstant(n, 1)
	} else if eps.Len() != n {
		return nil, errors.NewDimensionError("NewRBFInterpolant", n, eps.Len(), 0)
	}
	weight := prm.Weights
	if weight.IsEmpty() {
		weight = utils.NewVectorConstant(n, 1)
	} else if weight.Len() != n {
		return nil, errors.NewDimensionError("NewRBFInterpolant", n, weight.Len(), 0)
	}
	bas := prm.Basis
	if bas == nil {
		bas = basis.PHS3
	}
	chunk := prm.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	A, err := CoefficientMatrix(x, eps, bas, prm.Order)
	if err != nil {
		return
	}
	m, _ := A.Dims()

	// Scale the N data rows and a copy of the observations by the weights.
	// The diagonal weight operator multiplies only the data block; the
	// constraint rows stay untouched.
	W := sparse.NewDIA(n, n, weight.Copy().DataP())
	weighted := utils.NewMatrix(n, m)
	weighted.M.Mul(W, A.Slice(0, n, 0, m).M)
	A.SetSubMatrix(0, 0, weighted)
	b := value.Copy().ElMul(weight)

	L := utils.NewMatrix(n, m)
	for _, diff := range LaplacianDiffOp(dim) {
		var term utils.Matrix
		if term, err = RegularizationMatrix(x, eps, bas, prm.Order, diff); err != nil {
			return
		}
		L.Add(term)
	}

	if e := log.Debug(); e.Enabled() {
		e.Int("points", n).Int("dim", dim).Int("terms", m-n).
			Str("basis", bas.Name()).Float64("cond", A.Cond()).
			Msg("fitting rbf interpolant")
	}

	coeff, err := FindCoeff(A, L, b, prm.Damping, GCVStarts(prm.GCVStarts))
	if err != nil {
		return
	}

	itp = &RBFInterpolant{
		x:           x.Copy(),
		eps:         eps.Copy(),
		coeff:       coeff,
		basis:       bas,
		order:       prm.Order,
		extrapolate: prm.Extrapolate,
		fill:        prm.Fill,
		chunkSize:   chunk,
	}
	return
}

// Evaluate returns the fitted model at the query points xq (I x D), aligned
// 1:1 with the input rows. A non-nil diff requests the corresponding
// partial derivative. When extrapolation is disallowed, points outside the
// convex hull of the training points are overwritten with the fill value.
func (itp *RBFInterpolant) Evaluate(xq utils.Matrix, diff poly.MultiIndex) (out utils.Vector, err error) {
	var (
		nq, dim   = xq.Dims()
		_, dimItp = itp.x.Dims()
	)
	if dim != dimItp {
		return out, errors.NewDimensionError("RBFInterpolant.Evaluate", dimItp, dim, 1)
	}
	out = utils.NewVector(nq)
	for n0 := 0; n0 < nq; n0 += itp.chunkSize {
		n1 := n0 + itp.chunkSize
		if n1 > nq {
			n1 = nq
		}
		var Q utils.Matrix
		if Q, err = InterpolationMatrix(xq.Slice(n0, n1, 0, dim), itp.x, itp.eps, itp.basis, itp.order, diff); err != nil {
			return
		}
		copy(out.DataP()[n0:n1], Q.MulVec(itp.coeff).DataP())
	}

	if !itp.extrapolate {
		var inside []bool
		if inside, err = geometry.InHull(xq, itp.x); err != nil {
			return
		}
		for i, in := range inside {
			if !in {
				out.SetVec(i, itp.fill)
			}
		}
	}
	return
}

// Points returns a copy of the training points.
func (itp *RBFInterpolant) Points() utils.Matrix { return itp.x.Copy() }

// ShapeParameters returns a copy of the per-center shape parameters.
func (itp *RBFInterpolant) ShapeParameters() utils.Vector { return itp.eps.Copy() }

// Coefficients returns a copy of the fitted coefficient vector: N basis
// weights followed by P polynomial weights.
func (itp *RBFInterpolant) Coefficients() utils.Vector { return itp.coeff.Copy() }

// Basis returns the basis family of the fit.
func (itp *RBFInterpolant) Basis() basis.Basis { return itp.basis }

// Order returns the appended polynomial order.
func (itp *RBFInterpolant) Order() int { return itp.order }

// Extrapolate reports whether evaluation outside the hull is allowed.
func (itp *RBFInterpolant) Extrapolate() bool { return itp.extrapolate }

// Fill returns the outside-hull fill value.
func (itp *RBFInterpolant) Fill() float64 { return itp.fill }
