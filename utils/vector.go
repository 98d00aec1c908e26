package utils

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) (R Vector) {
	var v *mat.VecDense
	if len(dataO) != 0 {
		v = mat.NewVecDense(n, dataO[0])
	} else {
		v = mat.NewVecDense(n, make([]float64, n))
	}
	R = Vector{v}
	return
}

func NewVectorConstant(n int, val float64) (R Vector) {
	R = NewVector(n, ConstArray(n, val))
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (v Vector) Dims() (r, c int)         { return v.V.Dims() }
func (v Vector) At(i, j int) float64      { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix            { return v.V.T() }
func (v Vector) AtVec(i int) float64      { return v.V.AtVec(i) }
func (v Vector) RawVector() blas64.Vector { return v.V.RawVector() }
func (v Vector) Len() int                 { return v.V.Len() }

func (v Vector) IsEmpty() bool { return v.V == nil }

func (v Vector) DataP() []float64 { return v.V.RawVector().Data }

func (v Vector) Copy() (R Vector) { // Does not change receiver
	var (
		data  = v.DataP()
		dataR = make([]float64, v.Len())
	)
	copy(dataR, data)
	R = NewVector(v.Len(), dataR)
	return
}

// Concat returns the receiver followed by a.
func (v Vector) Concat(a Vector) (R Vector) { // Does not change receiver
	var (
		n    = v.Len()
		na   = a.Len()
		data = make([]float64, n+na)
	)
	copy(data, v.DataP())
	copy(data[n:], a.DataP())
	R = NewVector(n+na, data)
	return
}

func (v Vector) Set(val float64) Vector { // Changes receiver
	var (
		data = v.DataP()
	)
	for i := range data {
		data[i] = val
	}
	return v
}

func (v Vector) SetVec(i int, val float64) Vector { // Changes receiver
	v.V.SetVec(i, val)
	return v
}

func (v Vector) Scale(a float64) Vector { // Changes receiver
	var (
		data = v.DataP()
	)
	for i := range data {
		data[i] *= a
	}
	return v
}

// ElMul multiplies the receiver elementwise by a.
func (v Vector) ElMul(a Vector) Vector { // Changes receiver
	var (
		data  = v.DataP()
		dataA = a.DataP()
	)
	for i := range data {
		data[i] *= dataA[i]
	}
	return v
}

func (v Vector) Subtract(a Vector) Vector { // Changes receiver
	var (
		data  = v.DataP()
		dataA = a.DataP()
	)
	for i := range data {
		data[i] -= dataA[i]
	}
	return v
}

func (v Vector) Dot(a Vector) (d float64) {
	d = mat.Dot(v.V, a.V)
	return
}

func (v Vector) Min() (min float64) {
	var (
		data = v.DataP()
	)
	min = data[0]
	for _, val := range data {
		if val < min {
			min = val
		}
	}
	return
}

func (v Vector) Max() (max float64) {
	var (
		data = v.DataP()
	)
	max = data[0]
	for _, val := range data {
		if val > max {
			max = val
		}
	}
	return
}
