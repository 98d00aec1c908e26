// Package poly enumerates and evaluates the monomial terms that augment the
// radial basis block of the interpolation system. The enumeration order is
// graded lexicographic and is the contract that keeps coefficient indices
// consistent between fitting and evaluation.
package poly

import (
	"sync"

	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/utils"
)

// MultiIndex is a D-tuple of non-negative integers. It serves both as a
// monomial exponent and as a partial derivative specification.
type MultiIndex []int

// Order is the total degree, the sum of the entries.
func (m MultiIndex) Order() (sum int) {
	for _, p := range m {
		sum += p
	}
	return
}

var (
	powersMutex sync.RWMutex
	powersCache = make(map[[2]int][]MultiIndex)
)

// MonomialPowers returns every MultiIndex of length dim whose total degree
// is at most order, in graded lexicographic order: degree ascending, and
// within a degree the leading exponent descending. The result is cached and
// must be treated as read-only; the same (order,dim) always yields the same
// sequence.
func MonomialPowers(order, dim int) ([]MultiIndex, error) {
	if order < 0 {
		return nil, errors.NewValueErrorf("MonomialPowers", "negative polynomial order %d", order)
	}
	if dim < 1 {
		return nil, errors.NewValueErrorf("MonomialPowers", "dimension must be at least 1, got %d", dim)
	}
	key := [2]int{order, dim}
	powersMutex.RLock()
	if cached, ok := powersCache[key]; ok {
		powersMutex.RUnlock()
		return cached, nil
	}
	powersMutex.RUnlock()

	var powers []MultiIndex
	for degree := 0; degree <= order; degree++ {
		powers = append(powers, fixedDegree(dim, degree)...)
	}

	powersMutex.Lock()
	powersCache[key] = powers
	powersMutex.Unlock()
	return powers, nil
}

// NumTerms is the cardinality of MonomialPowers(order, dim), the binomial
// coefficient C(order+dim, dim).
func NumTerms(order, dim int) (P int, err error) {
	powers, err := MonomialPowers(order, dim)
	if err != nil {
		return 0, err
	}
	return len(powers), nil
}

func fixedDegree(dim, degree int) (out []MultiIndex) {
	if dim == 1 {
		out = []MultiIndex{{degree}}
		return
	}
	for lead := degree; lead >= 0; lead-- {
		for _, tail := range fixedDegree(dim-1, degree-lead) {
			m := make(MultiIndex, 0, dim)
			m = append(m, lead)
			m = append(m, tail...)
			out = append(out, m)
		}
	}
	return
}

// Evaluate returns the I x P matrix of monomial values at the points x
// (I x D), one column per exponent tuple. A non-nil diff requests the
// corresponding partial derivative of each monomial: zero when any exponent
// component is smaller than the matching diff component, otherwise the
// falling-factorial-scaled reduced monomial.
func Evaluate(x utils.Matrix, powers []MultiIndex, diff MultiIndex) (V utils.Matrix, err error) {
	var (
		nr, dim = x.Dims()
	)
	if diff != nil {
		if len(diff) != dim {
			return V, errors.NewDimensionError("poly.Evaluate", dim, len(diff), 1)
		}
		for _, d := range diff {
			if d < 0 {
				return V, errors.NewValueError("poly.Evaluate", "derivative orders must be non-negative")
			}
		}
	}
	V = utils.NewMatrix(nr, len(powers))
	for j, pw := range powers {
		if len(pw) != dim {
			return V, errors.NewDimensionError("poly.Evaluate", dim, len(pw), 1)
		}
		for i := 0; i < nr; i++ {
			V.Set(i, j, monomial(x, i, pw, diff))
		}
	}
	return
}

func monomial(x utils.Matrix, i int, pw, diff MultiIndex) (val float64) {
	val = 1
	for d, p := range pw {
		k := 0
		if diff != nil {
			k = diff[d]
		}
		if p < k {
			return 0
		}
		val *= utils.FallingFactorial(p, k) * utils.POW(x.At(i, d), p-k)
	}
	return
}
