// internal/report/csv.go
package report

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"archetype-resolver/internal/archetype"
	apperrors "archetype-resolver/internal/common/errors"
)

var csvHeader = []string{
	"ORIG_FID", "Status", "ErrorCode", "ArchetypeURI", "AgeClass",
	"GlazingRatio", "InfiltrationRate",
	"Wall", "Roof", "Groundfloor", "Window", "InternalCeiling", "Retrofitted",
}

// CSVWriter writes one row per building to Path.
type CSVWriter struct {
	Path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{Path: path}
}

func (w *CSVWriter) Name() string { return "csv" }

func (w *CSVWriter) Export(_ context.Context, res *archetype.BatchResult) error {
	f, err := os.Create(w.Path)
	if err != nil {
		return apperrors.NewReportExportError(w.Name(), err)
	}
	if err := WriteCSV(f, res); err != nil {
		f.Close()
		return apperrors.NewReportExportError(w.Name(), err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewReportExportError(w.Name(), err)
	}
	return nil
}

// WriteCSV writes the rows of res with a header line.
func WriteCSV(out io.Writer, res *archetype.BatchResult) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range Rows(res) {
		record := []string{
			strconv.Itoa(r.BuildingID), r.Status, r.ErrorCode, r.ArchetypeURI, r.AgeClass,
			"", "",
			r.Wall, r.Roof, r.Groundfloor, r.Window, r.InternalCeiling,
			strings.Join(r.Retrofitted, "|"),
		}
		if r.Status == StatusResolved {
			record[5] = strconv.FormatFloat(r.GlazingRatio, 'g', -1, 64)
			record[6] = strconv.FormatFloat(r.InfiltrationRate, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
