package surface

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/typedensity/typedensity/pkg/report"
)

// CSVHeader is the column order of the CSV output.
var CSVHeader = []string{"source_file", "weight", "weight_without_private"}

// CSVRenderer writes one row per source file.
type CSVRenderer struct{}

func (r *CSVRenderer) Render(w io.Writer, rep *report.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, row := range rep.Rows {
		record := []string{
			row.SourceFile,
			strconv.FormatInt(row.Weight, 10),
			strconv.FormatInt(row.WeightWithoutPrivate, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
