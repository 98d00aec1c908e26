// Package halton generates quasi-random Halton sequences, the low
// discrepancy point sets used for Monte Carlo domain integration.
package halton

import (
	"sync"

	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/utils"
)

// One prime base per coordinate. 25 bases cover far more dimensions than
// the integration routines ever exercise.
var primes = []int{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29,
	31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97,
}

// Sequence is a stateful Halton sequence in [0,1)^dim. Successive Take
// calls continue where the previous one stopped; the zero index is skipped
// so the first point is not the origin. Safe for concurrent use.
type Sequence struct {
	mu   sync.Mutex
	dim  int
	next int
}

// New creates a Halton sequence of the given dimension.
func New(dim int) (*Sequence, error) {
	if dim < 1 {
		return nil, errors.NewValueErrorf("halton.New", "dimension must be at least 1, got %d", dim)
	}
	if dim > len(primes) {
		return nil, errors.NewValueErrorf("halton.New", "dimension %d exceeds the supported maximum of %d", dim, len(primes))
	}
	return &Sequence{dim: dim, next: 1}, nil
}

// Dim returns the sequence dimension.
func (h *Sequence) Dim() int { return h.dim }

// Take returns the next n points of the sequence as an n x dim matrix.
func (h *Sequence) Take(n int) (X utils.Matrix) {
	h.mu.Lock()
	start := h.next
	h.next += n
	h.mu.Unlock()

	X = utils.NewMatrix(n, h.dim)
	for i := 0; i < n; i++ {
		for d := 0; d < h.dim; d++ {
			X.Set(i, d, radicalInverse(start+i, primes[d]))
		}
	}
	return
}

// radicalInverse reflects the base-b digits of i about the radix point.
func radicalInverse(i, base int) (v float64) {
	var (
		f = 1.0
		b = float64(base)
	)
	for i > 0 {
		f /= b
		v += f * float64(i%base)
		i /= base
	}
	return
}
