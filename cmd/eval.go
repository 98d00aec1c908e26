package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keithwoj/RBF/interpolant"
	"github.com/keithwoj/RBF/poly"
	"github.com/keithwoj/RBF/utils"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a fitted model at query points",
	Long: `Evaluate a fitted model at query points.

The query file is CSV with D coordinates per row. Output is the query rows
with the interpolated value appended. --diff requests a partial derivative
as comma separated per-axis orders, e.g. --diff 2,0 for the second
derivative along the first of two axes.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			e   = &EvalDriver{}
		)
		e.ModelFile, _ = cmd.Flags().GetString("modelFile")
		e.QueryFile, _ = cmd.Flags().GetString("queryFile")
		e.OutFile, _ = cmd.Flags().GetString("outFile")
		e.Diff, _ = cmd.Flags().GetString("diff")
		if len(e.ModelFile) == 0 || len(e.QueryFile) == 0 {
			fmt.Println("must supply a model file (-m, --modelFile) and a query file (-q, --queryFile)")
			os.Exit(1)
		}
		if err = RunEval(e); err != nil {
			log.Fatal().Err(err).Msg("eval failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringP("modelFile", "m", "", "model file written by rbf fit")
	evalCmd.Flags().StringP("queryFile", "q", "", "CSV query points, one per row")
	evalCmd.Flags().StringP("outFile", "o", "out.csv", "output CSV file")
	evalCmd.Flags().String("diff", "", "derivative multi-index, e.g. 1,0")
}

type EvalDriver struct {
	ModelFile string
	QueryFile string
	OutFile   string
	Diff      string
}

func RunEval(e *EvalDriver) (err error) {
	mf, err := os.Open(e.ModelFile)
	if err != nil {
		return
	}
	defer mf.Close()
	itp, err := interpolant.ReadYAML(mf)
	if err != nil {
		return
	}

	rows, err := readCSV(e.QueryFile)
	if err != nil {
		return
	}
	if len(rows) == 0 {
		return fmt.Errorf("query file %s is empty", e.QueryFile)
	}
	var (
		n   = len(rows)
		dim = len(rows[0])
		xq  = utils.NewMatrix(n, dim)
	)
	for i, row := range rows {
		for j := 0; j < dim; j++ {
			xq.Set(i, j, row[j])
		}
	}

	diff, err := parseDiff(e.Diff)
	if err != nil {
		return
	}
	out, err := itp.Evaluate(xq, diff)
	if err != nil {
		return
	}

	of, err := os.Create(e.OutFile)
	if err != nil {
		return
	}
	defer of.Close()
	w := csv.NewWriter(of)
	record := make([]string, dim+1)
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			record[j] = strconv.FormatFloat(xq.At(i, j), 'g', -1, 64)
		}
		record[dim] = strconv.FormatFloat(out.AtVec(i), 'g', -1, 64)
		if err = w.Write(record); err != nil {
			return
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return
	}
	log.Info().Int("points", n).Str("file", e.OutFile).Msg("evaluation written")
	return
}

func parseDiff(s string) (diff poly.MultiIndex, err error) {
	if len(strings.TrimSpace(s)) == 0 {
		return
	}
	for _, field := range strings.Split(s, ",") {
		var order int
		if order, err = strconv.Atoi(strings.TrimSpace(field)); err != nil {
			return nil, fmt.Errorf("bad derivative specification %q: %w", s, err)
		}
		diff = append(diff, order)
	}
	return
}
