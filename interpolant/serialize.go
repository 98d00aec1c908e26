package interpolant

import (
	"io"
	"strconv"

	"github.com/ghodss/yaml"

	"github.com/keithwoj/RBF/basis"
	"github.com/keithwoj/RBF/pkg/errors"
	"github.com/keithwoj/RBF/poly"
	"github.com/keithwoj/RBF/utils"
)

// modelFile is the YAML form of a fitted interpolant. It preserves exactly
// the state needed to reconstruct evaluation: points, shape parameters,
// basis identifier, polynomial order, coefficients, and the extrapolation
// policy. Fill is kept as a string because the NaN default has no YAML
// number representation.
type modelFile struct {
	Basis           string      `json:"Basis"`
	PolynomialOrder int         `json:"PolynomialOrder"`
	Points          [][]float64 `json:"Points"`
	ShapeParameters []float64   `json:"ShapeParameters"`
	Coefficients    []float64   `json:"Coefficients"`
	Extrapolate     bool        `json:"Extrapolate"`
	Fill            string      `json:"Fill"`
}

// WriteYAML serializes the fitted model.
func (itp *RBFInterpolant) WriteYAML(w io.Writer) error {
	var (
		n, dim = itp.x.Dims()
	)
	mf := modelFile{
		Basis:           itp.basis.Name(),
		PolynomialOrder: itp.order,
		Points:          make([][]float64, n),
		ShapeParameters: itp.eps.Copy().DataP(),
		Coefficients:    itp.coeff.Copy().DataP(),
		Extrapolate:     itp.extrapolate,
		Fill:            strconv.FormatFloat(itp.fill, 'g', -1, 64),
	}
	for i := 0; i < n; i++ {
		row := make([]float64, dim)
		for j := 0; j < dim; j++ {
			row[j] = itp.x.At(i, j)
		}
		mf.Points[i] = row
	}
	data, err := yaml.Marshal(&mf)
	if err != nil {
		return errors.Wrap(err, "rbf: WriteYAML")
	}
	_, err = w.Write(data)
	return errors.WithStack(err)
}

// ReadYAML reconstructs a fitted model written by WriteYAML. No refitting
// takes place; evaluation of the result is identical to the original.
func ReadYAML(r io.Reader) (itp *RBFInterpolant, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "rbf: ReadYAML")
	}
	var mf modelFile
	if err = yaml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrap(err, "rbf: ReadYAML")
	}

	n := len(mf.Points)
	if n == 0 {
		return nil, errors.NewValueError("ReadYAML", "model has no points")
	}
	dim := len(mf.Points[0])
	x := utils.NewMatrix(n, dim)
	for i, row := range mf.Points {
		if len(row) != dim {
			return nil, errors.NewDimensionError("ReadYAML", dim, len(row), 1)
		}
		x.SetRow(i, row)
	}
	if len(mf.ShapeParameters) != n {
		return nil, errors.NewDimensionError("ReadYAML", n, len(mf.ShapeParameters), 0)
	}
	powers, err := poly.MonomialPowers(mf.PolynomialOrder, dim)
	if err != nil {
		return nil, err
	}
	if want := n + len(powers); len(mf.Coefficients) != want {
		return nil, errors.NewDimensionError("ReadYAML", want, len(mf.Coefficients), 0)
	}
	bas, err := basis.FromName(mf.Basis)
	if err != nil {
		return nil, err
	}
	fill, err := strconv.ParseFloat(mf.Fill, 64)
	if err != nil {
		return nil, errors.Wrap(err, "rbf: ReadYAML: fill value")
	}

	itp = &RBFInterpolant{
		x:           x,
		eps:         utils.NewVector(n, mf.ShapeParameters),
		coeff:       utils.NewVector(len(mf.Coefficients), mf.Coefficients),
		basis:       bas,
		order:       mf.PolynomialOrder,
		extrapolate: mf.Extrapolate,
		fill:        fill,
		chunkSize:   DefaultChunkSize,
	}
	return
}
