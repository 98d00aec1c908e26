package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	M *mat.Dense
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{m}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }

func (m Matrix) IsEmpty() bool { return m.M == nil }

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		data   = m.RawMatrix().Data
		dataR  = make([]float64, nr*nc)
	)
	copy(dataR, data)
	R = NewMatrix(nr, nc, dataR)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nc, nr)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			R.M.Set(j, i, m.M.At(i, j))
		}
	}
	return
}

func (m Matrix) Mul(A Matrix) (R Matrix) { // Does not change receiver
	var (
		nrM, _ = m.M.Dims()
		_, ncA = A.M.Dims()
	)
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return
}

func (m Matrix) MulVec(v Vector) (R Vector) { // Does not change receiver
	var (
		nr, _ = m.Dims()
	)
	R = NewVector(nr)
	R.V.MulVec(m.M, v.V)
	return
}

func (m Matrix) Add(A Matrix) Matrix { // Changes receiver
	var (
		data  = m.RawMatrix().Data
		dataA = A.RawMatrix().Data
	)
	for i, val := range dataA {
		data[i] += val
	}
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	var (
		data = m.RawMatrix().Data
	)
	for i := range data {
		data[i] *= a
	}
	return m
}

func (m Matrix) Slice(I, K, J, L int) (R Matrix) { // Does not change receiver
	var (
		nrR = K - I
		ncR = L - J
	)
	R = NewMatrix(nrR, ncR)
	for i := I; i < K; i++ {
		for j := J; j < L; j++ {
			R.M.Set(i-I, j-J, m.M.At(i, j))
		}
	}
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) SetRow(i int, data []float64) Matrix { // Changes receiver
	m.M.SetRow(i, data)
	return m
}

func (m Matrix) SetCol(j int, data []float64) Matrix { // Changes receiver
	m.M.SetCol(j, data)
	return m
}

// SetSubMatrix assigns A into the receiver with its upper left corner at (i0,j0).
func (m Matrix) SetSubMatrix(i0, j0 int, A Matrix) Matrix { // Changes receiver
	var (
		nrA, ncA = A.Dims()
	)
	for i := 0; i < nrA; i++ {
		for j := 0; j < ncA; j++ {
			m.M.Set(i0+i, j0+j, A.At(i, j))
		}
	}
	return m
}

func (m Matrix) Row(i int) (R Vector) { // Does not change receiver
	var (
		_, nc = m.Dims()
		data  = make([]float64, nc)
	)
	copy(data, m.M.RawRowView(i))
	R = NewVector(nc, data)
	return
}

func (m Matrix) Col(j int) (R Vector) { // Does not change receiver
	var (
		nr, _ = m.Dims()
		data  = make([]float64, nr)
	)
	for i := 0; i < nr; i++ {
		data[i] = m.M.At(i, j)
	}
	R = NewVector(nr, data)
	return
}

// Inverse returns the matrix inverse. A singular or numerically
// non-invertible receiver is reported as an error rather than a panic, so
// solvers can surface the failure. Near-singular condition warnings from
// gonum are tolerated; the caller sees the computed inverse.
func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	if err = R.M.Inverse(m.M); err != nil {
		if _, near := err.(mat.Condition); near {
			err = nil
		}
	}
	return
}

// Cond is the 2-norm condition number.
func (m Matrix) Cond() float64 {
	return mat.Cond(m.M, 2)
}

func (m Matrix) Print(msgI ...string) (o string) {
	var (
		msg = ""
	)
	if len(msgI) != 0 {
		msg = msgI[0]
	}
	formatString := "%s = \n%8.5f\n"
	o = fmt.Sprintf(formatString, msg, mat.Formatted(m.M, mat.Squeeze()))
	return
}
