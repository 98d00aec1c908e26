package basis

import (
	"math"

	"github.com/keithwoj/RBF/pkg/errors"
)

// The polyharmonic splines are scale invariant up to a multiplicative
// constant, so the shape parameter has little practical effect on them; the
// infinitely smooth families (gaussian, multiquadrics) depend on it
// strongly.
var (
	// PHS1 is the linear polyharmonic spline, phi(s) = s.
	PHS1 Basis = &radial{
		name: "phs1",
		f:    func(s float64) float64 { return s },
		g:    func(s float64) float64 { return 1 / s },
		h:    func(s float64) float64 { return -1 / (s * s * s) },
	}

	// PHS2 is the thin plate spline, phi(s) = s^2*log(s).
	PHS2 Basis = &radial{
		name: "phs2",
		f: func(s float64) float64 {
			if s == 0 {
				return 0
			}
			return s * s * math.Log(s)
		},
		g: func(s float64) float64 { return 2*math.Log(s) + 1 },
		h: func(s float64) float64 { return 2 / (s * s) },
	}

	// PHS3 is the cubic polyharmonic spline, phi(s) = s^3. It is the
	// default basis for fitting.
	PHS3 Basis = &radial{
		name: "phs3",
		f:    func(s float64) float64 { return s * s * s },
		g:    func(s float64) float64 { return 3 * s },
		h:    func(s float64) float64 { return 3 / s },
	}

	// Gaussian is phi(s) = exp(-s^2).
	Gaussian Basis = &radial{
		name: "gaussian",
		f:    func(s float64) float64 { return math.Exp(-s * s) },
		g:    func(s float64) float64 { return -2 * math.Exp(-s*s) },
		h:    func(s float64) float64 { return 4 * math.Exp(-s*s) },
		g0:   -2,
		h0:   4,
	}

	// Multiquadric is phi(s) = sqrt(1+s^2).
	Multiquadric Basis = &radial{
		name: "multiquadric",
		f:    func(s float64) float64 { return math.Sqrt(1 + s*s) },
		g:    func(s float64) float64 { return 1 / math.Sqrt(1+s*s) },
		h: func(s float64) float64 {
			u := 1 + s*s
			return -1 / (u * math.Sqrt(u))
		},
		g0: 1,
		h0: -1,
	}

	// InverseMultiquadric is phi(s) = 1/sqrt(1+s^2).
	InverseMultiquadric Basis = &radial{
		name: "invmultiquadric",
		f:    func(s float64) float64 { return 1 / math.Sqrt(1+s*s) },
		g: func(s float64) float64 {
			u := 1 + s*s
			return -1 / (u * math.Sqrt(u))
		},
		h: func(s float64) float64 {
			u := 1 + s*s
			return 3 / (u * u * math.Sqrt(u))
		},
		g0: -1,
		h0: 3,
	}
)

var families = map[string]Basis{
	PHS1.Name():                PHS1,
	PHS2.Name():                PHS2,
	PHS3.Name():                PHS3,
	Gaussian.Name():            Gaussian,
	Multiquadric.Name():        Multiquadric,
	InverseMultiquadric.Name(): InverseMultiquadric,
}

// FromName resolves a basis identifier, e.g. one read back from a
// serialized model or an input parameters file.
func FromName(name string) (Basis, error) {
	if b, ok := families[name]; ok {
		return b, nil
	}
	return nil, errors.NewValueErrorf("basis.FromName", "unknown basis %q", name)
}
