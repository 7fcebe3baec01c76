// Package lookup reads the per-building csv tables: construction year and
// energy carriers, past retrofits, and explicit archetype assignments.
package lookup

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"archetype-resolver/internal/common/config"
	apperrors "archetype-resolver/internal/common/errors"
)

// Semantic field names; the configured labels map them to column names.
const (
	FieldGisFid                = "gis_fid"
	FieldYearOfConstruction    = "year_of_construction"
	FieldDHWCarrier            = "dhw_ecarrier"
	FieldHeatingCarrier        = "heating_ecarrier"
	FieldWallRetrofit          = "year_of_wall_retrofit"
	FieldRoofRetrofit          = "year_of_roof_retrofit"
	FieldGroundfloorRetrofit   = "year_of_groundfloor_retrofit"
	FieldWindowRetrofit        = "year_of_window_retrofit"
	FieldConstructionArchetype = "construction_archetype"
)

// row holds the values of one line keyed by semantic field.
type row map[string]string

// readTable parses a csv with a header line and calls fn for each data
// line. Fields in required must map to a column; optional fields are
// passed when their column exists.
func readTable(r io.Reader, source string, cfg config.LookupFileConfig, required, optional []string, fn func(line int, values row) error) error {
	reader := csv.NewReader(r)
	sep := cfg.Separator
	if sep == "" {
		sep = ","
	}
	if sep == `\t` {
		sep = "\t"
	}
	if utf8.RuneCountInString(sep) != 1 {
		return apperrors.NewLookupFileError(source, fmt.Errorf("separator %q must be a single character", cfg.Separator))
	}
	reader.Comma, _ = utf8.DecodeRuneInString(sep)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return apperrors.NewLookupFileError(source, fmt.Errorf("reading header: %w", err))
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	columns := map[string]int{}
	for _, field := range required {
		col, ok := index[label(cfg, field)]
		if !ok {
			return apperrors.NewLookupFileError(source, fmt.Errorf("column %q for %s is missing", label(cfg, field), field))
		}
		columns[field] = col
	}
	for _, field := range optional {
		if col, ok := index[label(cfg, field)]; ok {
			columns[field] = col
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return apperrors.NewLookupFileError(source, err)
		}
		values := make(row, len(columns))
		for field, col := range columns {
			if col < len(record) {
				values[field] = strings.TrimSpace(record[col])
			}
		}
		if err := fn(line, values); err != nil {
			return apperrors.NewLookupFileError(source, fmt.Errorf("line %d: %w", line, err))
		}
	}
}

func label(cfg config.LookupFileConfig, field string) string {
	if l, ok := cfg.Labels[field]; ok && l != "" {
		return l
	}
	return field
}

func openTable(path string, cfg config.LookupFileConfig, required, optional []string, fn func(int, row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewLookupFileError(path, err)
	}
	defer f.Close()
	return readTable(f, path, cfg, required, optional, fn)
}

// parseID accepts integer ids, also when written as floats ("12.0").
func parseID(s string) (int, error) {
	v, ok, err := parseOptionalInt(s)
	if err != nil {
		return 0, fmt.Errorf("building id: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("building id is empty")
	}
	return v, nil
}

// parseOptionalInt treats empty, "nan", "none" and "null" as absent.
func parseOptionalInt(s string) (int, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none", "null", "na", "-":
		return 0, false, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), true, nil
}
