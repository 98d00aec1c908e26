package interpolant

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/optimize"

	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/utils"
)

// Damping specifies the regularization strength of the least-squares solve:
// either a fixed non-negative penalty or automatic selection by generalized
// cross-validation.
type Damping struct {
	auto  bool
	value float64
}

// FixedDamping returns a fixed damping specification. Zero means a pure
// least-squares fit with no regularization.
func FixedDamping(value float64) Damping {
	return Damping{value: value}
}

// AutoGCV requests damping selection by minimizing the generalized
// cross-validation score.
func AutoGCV() Damping {
	return Damping{auto: true}
}

// IsAuto reports whether GCV selection was requested.
func (d Damping) IsAuto() bool { return d.auto }

// Value is the fixed damping value; meaningless when IsAuto.
func (d Damping) Value() float64 { return d.value }

type solverConfig struct {
	gcvStarts int
}

// SolverOption tunes FindCoeff.
type SolverOption func(*solverConfig)

// GCVStarts sets the number of Nelder-Mead starts for the GCV search. The
// default is a single start from log10(damping)=0; additional starts probe
// offsets around it for ill-behaved score surfaces.
func GCVStarts(n int) SolverOption {
	return func(cfg *solverConfig) {
		if n > 0 {
			cfg.gcvStarts = n
		}
	}
}

// FindCoeff solves the damped least-squares problem
//
//	coeff = (A'A + damping^2 L'L)^-1 A' b
//
// where b is the observation vector zero-padded to the augmented size M =
// N+P (the polynomial constraint rows carry no observation). In GCV mode
// the damping is first chosen by minimizing
//
//	GCV(d) = M*misfit(d) / (M - trace(A*A_ginv(d)))^2
//
// over log10(damping) with a derivative-free Nelder-Mead search started at
// zero. A non-finite score at the minimum is an IllConditionedError; a
// non-invertible damped normal matrix is a SingularSystemError carrying the
// damping value attempted.
func FindCoeff(A, L utils.Matrix, value utils.Vector, damping Damping, opts ...SolverOption) (coeff utils.Vector, err error) {
	var (
		m, mc = A.Dims()
		n     = value.Len()
		cfg   = solverConfig{gcvStarts: 1}
	)
	for _, opt := range opts {
		opt(&cfg)
	}
	if m != mc {
		return coeff, errors.NewDimensionError("FindCoeff", m, mc, 1)
	}
	if n > m {
		return coeff, errors.NewDimensionError("FindCoeff", m, n, 0)
	}
	if lr, lc := L.Dims(); lc != m || lr != n {
		return coeff, errors.NewDimensionError("FindCoeff", m, lc, 1)
	}
	if !damping.IsAuto() && damping.Value() < 0 {
		return coeff, errors.NewValueErrorf("FindCoeff", "damping must be non-negative, got %g", damping.Value())
	}

	// Zero-pad the observations to the augmented size.
	b := value
	if m > n {
		b = value.Concat(utils.NewVector(m - n))
	}

	var (
		AT  = A.Transpose()
		ATA = AT.Mul(A)
		LTL = L.Transpose().Mul(L)
	)

	// pseudoInverse is (A'A + d^2 L'L)^-1 A' for a given damping.
	pseudoInverse := func(d float64) (utils.Matrix, error) {
		G := ATA.Copy().Add(LTL.Copy().Scale(d * d))
		Ginv, invErr := G.Inverse()
		if invErr != nil {
			return utils.Matrix{}, errors.NewSingularSystemError("FindCoeff", d)
		}
		return Ginv.Mul(AT), nil
	}

	d := damping.Value()
	if damping.IsAuto() {
		if d, err = minimizeGCV(A, b, pseudoInverse, m, cfg.gcvStarts); err != nil {
			return
		}
		log.Debug().Float64("damping", d).Msg("gcv selected damping")
	}

	Aginv, err := pseudoInverse(d)
	if err != nil {
		return
	}
	coeff = Aginv.MulVec(b)
	for _, c := range coeff.DataP() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return coeff, errors.NewSingularSystemError("FindCoeff", d)
		}
	}
	return
}

func minimizeGCV(A utils.Matrix, b utils.Vector,
	pseudoInverse func(float64) (utils.Matrix, error), m, starts int) (damping float64, err error) {
	score := func(dLog10 float64) (s float64) {
		d := math.Pow(10, dLog10)
		Aginv, invErr := pseudoInverse(d)
		if invErr != nil {
			return math.Inf(1)
		}
		coeff := Aginv.MulVec(b)
		residual := A.MulVec(coeff).Subtract(b)
		misfit := residual.Dot(residual)
		denom := float64(m) - productTrace(A, Aginv)
		s = float64(m) * misfit / (denom * denom)
		if math.IsNaN(s) {
			s = math.Inf(1)
		}
		return
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return score(x[0]) },
	}
	var (
		bestLog   float64
		bestScore = math.Inf(1)
	)
	for _, start := range gcvStartPoints(starts) {
		result, minErr := optimize.Minimize(problem, []float64{start}, nil, &optimize.NelderMead{})
		if minErr != nil && result == nil {
			return 0, errors.Wrap(minErr, "rbf: FindCoeff: gcv minimization failed")
		}
		if result.F < bestScore {
			bestScore = result.F
			bestLog = result.X[0]
		}
	}
	if math.IsNaN(bestScore) || math.IsInf(bestScore, 0) {
		return 0, errors.NewIllConditionedError("FindCoeff", bestScore)
	}
	damping = math.Pow(10, bestLog)
	return
}

// gcvStartPoints is log10(damping)=0 first, then symmetric offsets.
func gcvStartPoints(starts int) (pts []float64) {
	pts = []float64{0}
	for i := 1; len(pts) < starts; i++ {
		pts = append(pts, -2*float64(i), 2*float64(i))
	}
	if len(pts) > starts {
		pts = pts[:starts]
	}
	return
}

// productTrace is trace(A*B) without forming the product.
func productTrace(A, B utils.Matrix) (tr float64) {
	var (
		nr, nc = A.Dims()
	)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			tr += A.At(i, j) * B.At(j, i)
		}
	}
	return
}
