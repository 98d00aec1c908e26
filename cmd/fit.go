package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keithwoj/RBF/InputParameters"
	"github.com/keithwoj/RBF/basis"
	"github.com/keithwoj/RBF/interpolant"
	"github.com/keithwoj/RBF/utils"
)

// fitCmd represents the fit command
var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit an RBF interpolant to scattered samples",
	Long: `Fit an RBF interpolant to scattered samples.

The data file is CSV with one sample per row: D coordinates followed by the
observed value, and optionally a per-point weight column when --weighted is
given. Fit options come from a YAML parameters file; omitting it fits with
the defaults (cubic polyharmonic basis, order 0, no damping).`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			f   = &FitDriver{}
		)
		if f.DataFile, err = cmd.Flags().GetString("dataFile"); err != nil {
			panic(err)
		}
		if f.ParamsFile, err = cmd.Flags().GetString("paramsFile"); err != nil {
			panic(err)
		}
		f.OutFile, _ = cmd.Flags().GetString("outFile")
		f.Weighted, _ = cmd.Flags().GetBool("weighted")
		if len(f.DataFile) == 0 {
			fmt.Println("must supply a sample file (-d, --dataFile) in CSV format")
			os.Exit(1)
		}
		RunFit(f)
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)
	fitCmd.Flags().StringP("dataFile", "d", "", "CSV sample file: coordinates then value per row")
	fitCmd.Flags().StringP("paramsFile", "p", "", "YAML fit parameters file")
	fitCmd.Flags().StringP("outFile", "o", "model.yaml", "output model file")
	fitCmd.Flags().Bool("weighted", false, "treat the last CSV column as per-point weights")
}

type FitDriver struct {
	DataFile   string
	ParamsFile string
	OutFile    string
	Weighted   bool
}

func RunFit(f *FitDriver) {
	ip := processFitInput(f.ParamsFile)

	rows, err := readCSV(f.DataFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", f.DataFile).Msg("reading samples")
	}
	extra := 1
	if f.Weighted {
		extra = 2
	}
	if len(rows) == 0 || len(rows[0]) <= extra-1 {
		log.Fatal().Str("file", f.DataFile).Msg("sample file needs coordinate columns and a value column")
	}
	var (
		n   = len(rows)
		dim = len(rows[0]) - extra
		x   = utils.NewMatrix(n, dim)
		val = utils.NewVector(n)
	)
	prm := interpolant.NewParams()
	if f.Weighted {
		prm.Weights = utils.NewVector(n)
	}
	for i, row := range rows {
		for j := 0; j < dim; j++ {
			x.Set(i, j, row[j])
		}
		val.SetVec(i, row[dim])
		if f.Weighted {
			prm.Weights.SetVec(i, row[dim+1])
		}
	}

	if err = applyParameters(ip, n, &prm); err != nil {
		log.Fatal().Err(err).Msg("invalid fit parameters")
	}

	itp, err := interpolant.NewRBFInterpolant(x, val, prm)
	if err != nil {
		log.Fatal().Err(err).Msg("fit failed")
	}
	log.Info().Int("points", n).Int("dim", dim).Str("basis", itp.Basis().Name()).
		Int("order", itp.Order()).Msg("fit complete")

	out, err := os.Create(f.OutFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", f.OutFile).Msg("creating model file")
	}
	defer out.Close()
	if err = itp.WriteYAML(out); err != nil {
		log.Fatal().Err(err).Msg("writing model")
	}
	log.Info().Str("file", f.OutFile).Msg("model written")
}

func processFitInput(paramsFile string) (ip *InputParameters.FitParameters) {
	ip = &InputParameters.FitParameters{}
	if len(paramsFile) == 0 {
		return
	}
	data, err := os.ReadFile(paramsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", paramsFile).Msg("reading parameters")
	}
	if err = ip.Parse(data); err != nil {
		log.Fatal().Err(err).Str("file", paramsFile).Msg("parsing parameters")
	}
	ip.Print()
	return
}

func applyParameters(ip *InputParameters.FitParameters, n int, prm *interpolant.Params) (err error) {
	if len(ip.Basis) != 0 {
		if prm.Basis, err = basis.FromName(ip.Basis); err != nil {
			return
		}
	}
	prm.Order = ip.PolynomialOrder
	if prm.Damping, err = ip.DampingSpec(); err != nil {
		return
	}
	if prm.Fill, err = ip.FillValue(); err != nil {
		return
	}
	prm.Extrapolate = ip.AllowExtrapolation()
	if ip.EpsScale > 0 {
		prm.Eps = utils.NewVectorConstant(n, ip.EpsScale)
	}
	if ip.ChunkSize > 0 {
		prm.ChunkSize = ip.ChunkSize
	}
	if ip.GCVStarts > 0 {
		prm.GCVStarts = ip.GCVStarts
	}
	return
}

func readCSV(path string) (rows [][]float64, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return
	}
	for _, record := range records {
		row := make([]float64, len(record))
		for j, field := range record {
			if row[j], err = strconv.ParseFloat(field, 64); err != nil {
				return
			}
		}
		rows = append(rows, row)
	}
	return
}
