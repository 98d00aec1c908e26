// Package montecarlo estimates integrals and maxima of scalar fields over
// irregular domains, and normalizes fields by those estimates. The domain
// is a bounding box restricted by a containment predicate; samples come
// from a Halton sequence.
package montecarlo

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/keithwoj/RBF/halton"
	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/utils"
)

// Func is a scalar field: given an n x dim matrix of points it returns one
// value per point.
type Func func(utils.Matrix) []float64

// Contains is the spatial containment predicate restricting the bounding
// box to the domain of interest. A nil Contains means the whole box.
type Contains func(utils.Matrix) []bool

// Kind selects how Normalize scales a field.
type Kind int

const (
	// Integral normalizes so the field integrates to one over the domain.
	Integral Kind = iota
	// Max normalizes so the maximum value over the domain is one.
	Max
	// Density normalizes an integrand into a node density summing to a
	// requested node count.
	Density
)

// Samples are drawn in batches to bound memory.
const batchSize = 1000000

// defaultSamples is the fallback sample count, 200^dim.
func defaultSamples(dim int) (n int) {
	n = 1
	for i := 0; i < dim; i++ {
		n *= 200
	}
	return
}

func checkBounds(op string, lower, upper []float64) error {
	if len(lower) == 0 || len(lower) != len(upper) {
		return errors.NewDimensionError(op, len(lower), len(upper), 1)
	}
	for d := range lower {
		if upper[d] < lower[d] {
			return errors.NewValueErrorf(op, "upper bound %g below lower bound %g on axis %d", upper[d], lower[d], d)
		}
	}
	return nil
}

// Integrate estimates the integral of f over the part of the box
// [lower,upper] accepted by contains, using n Halton samples (n<=0 uses
// 200^dim).
func Integrate(f Func, lower, upper []float64, contains Contains, n int) (soln float64, err error) {
	if err = checkBounds("montecarlo.Integrate", lower, upper); err != nil {
		return
	}
	var (
		dim    = len(lower)
		volume = boxVolume(lower, upper)
	)
	if n <= 0 {
		n = defaultSamples(dim)
	}
	seq, err := halton.New(dim)
	if err != nil {
		return
	}
	count := 0
	for count < n {
		size := batchSize
		if count+size > n {
			size = n - count
		}
		pnts := scaleToBox(seq.Take(size), lower, upper)
		val := f(pnts)
		mask := allInside(size)
		if contains != nil {
			mask = contains(pnts)
		}
		for i, v := range val {
			if mask[i] {
				soln += v
			}
		}
		count += size
		log.Debug().Int("samples", count).Int("target", n).Msg("mc integration progress")
	}
	soln *= volume / float64(n)
	return
}

// Maximum estimates the maximum of f over the part of the box accepted by
// contains. It fails when no sample lands inside the domain.
func Maximum(f Func, lower, upper []float64, contains Contains, n int) (soln float64, err error) {
	if err = checkBounds("montecarlo.Maximum", lower, upper); err != nil {
		return
	}
	dim := len(lower)
	if n <= 0 {
		n = defaultSamples(dim)
	}
	seq, err := halton.New(dim)
	if err != nil {
		return
	}
	var (
		count = 0
		found = false
	)
	soln = math.Inf(-1)
	for count < n {
		size := batchSize
		if count+size > n {
			size = n - count
		}
		pnts := scaleToBox(seq.Take(size), lower, upper)
		val := f(pnts)
		mask := allInside(size)
		if contains != nil {
			mask = contains(pnts)
		}
		for i, v := range val {
			if mask[i] {
				found = true
				if v > soln {
					soln = v
				}
			}
		}
		count += size
	}
	if !found {
		err = errors.NewValueError("montecarlo.Maximum", "no sample fell inside the domain; increase the sample count")
	}
	return
}

// Normalize returns f scaled so that, over the domain, it integrates to one
// (Integral), has maximum one (Max), or forms a node density distributing
// nodes points (Density). A zero denominator is an error, typically an
// insufficient sample count.
func Normalize(f Func, lower, upper []float64, contains Contains, kind Kind, n, nodes int) (out Func, err error) {
	var denom float64
	switch kind {
	case Integral:
		denom, err = Integrate(f, lower, upper, contains, n)
	case Max:
		denom, err = Maximum(f, lower, upper, contains, n)
	case Density:
		if nodes <= 0 {
			return nil, errors.NewValueError("montecarlo.Normalize", "density normalization requires a positive node count")
		}
		denom, err = Integrate(f, lower, upper, contains, n)
		denom /= float64(nodes)
	default:
		return nil, errors.NewValueErrorf("montecarlo.Normalize", "unknown normalization kind %d", kind)
	}
	if err != nil {
		return
	}
	if denom == 0 {
		return nil, errors.NewValueError("montecarlo.Normalize",
			"normalization denominator is zero; this may be due to an insufficiently large sample size")
	}
	out = func(p utils.Matrix) []float64 {
		val := f(p)
		for i := range val {
			val[i] /= denom
		}
		return val
	}
	return
}

func boxVolume(lower, upper []float64) (v float64) {
	v = 1
	for d := range lower {
		v *= upper[d] - lower[d]
	}
	return
}

func scaleToBox(unit utils.Matrix, lower, upper []float64) utils.Matrix {
	var (
		n, dim = unit.Dims()
	)
	for i := 0; i < n; i++ {
		for d := 0; d < dim; d++ {
			unit.Set(i, d, lower[d]+unit.At(i, d)*(upper[d]-lower[d]))
		}
	}
	return unit
}

func allInside(n int) (mask []bool) {
	mask = make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return
}
