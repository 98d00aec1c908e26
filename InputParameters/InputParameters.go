package InputParameters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/keithwoj/RBF/interpolant"
	"github.com/keithwoj/RBF/pkg/errors"
)

// Parameters obtained from the YAML input file driving a fit
type FitParameters struct {
	Title           string  `json:"Title"`
	Basis           string  `json:"Basis"`
	PolynomialOrder int     `json:"PolynomialOrder"`
	Damping         string  `json:"Damping"` // a number, or "gcv" for automatic selection
	EpsScale        float64 `json:"EpsScale"`
	Extrapolate     *bool   `json:"Extrapolate"`
	Fill            string  `json:"Fill"`
	ChunkSize       int     `json:"ChunkSize"`
	GCVStarts       int     `json:"GCVStarts"`
}

func (ip *FitParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *FitParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Basis\n", ip.Basis)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%s]\t\t\t= Damping\n", ip.Damping)
	fmt.Printf("%8.5f\t\t= EpsScale\n", ip.EpsScale)
	fmt.Printf("[%v]\t\t\t= Extrapolate\n", ip.AllowExtrapolation())
	fmt.Printf("[%s]\t\t\t= Fill\n", ip.Fill)
}

// DampingSpec converts the file form of the damping parameter into the
// solver's tagged representation. The string "gcv" requests automatic
// selection; anything else must parse as a non-negative number, and an
// empty field means zero.
func (ip *FitParameters) DampingSpec() (interpolant.Damping, error) {
	s := strings.TrimSpace(strings.ToLower(ip.Damping))
	switch s {
	case "gcv":
		return interpolant.AutoGCV(), nil
	case "":
		return interpolant.FixedDamping(0), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return interpolant.Damping{}, errors.NewValueErrorf("FitParameters", "damping must be a number or \"gcv\", got %q", ip.Damping)
	}
	if v < 0 {
		return interpolant.Damping{}, errors.NewValueErrorf("FitParameters", "damping must be non-negative, got %g", v)
	}
	return interpolant.FixedDamping(v), nil
}

// FillValue parses the fill field; empty means NaN, the default sentinel
// for gated extrapolation.
func (ip *FitParameters) FillValue() (float64, error) {
	s := strings.TrimSpace(ip.Fill)
	if s == "" {
		s = "NaN"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewValueErrorf("FitParameters", "fill must be a number or \"NaN\", got %q", ip.Fill)
	}
	return v, nil
}

// AllowExtrapolation defaults to true when the field is absent.
func (ip *FitParameters) AllowExtrapolation() bool {
	if ip.Extrapolate == nil {
		return true
	}
	return *ip.Extrapolate
}
