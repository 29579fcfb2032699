// Package loader ingests delimited particle-size tables and detects which
// columns carry size and frequency data.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoData indicates a source file with no usable rows.
var ErrNoData = errors.New("no data rows")

// sizeTokens and freqTokens drive column auto-detection. Columns are scanned
// in file order and the first column whose name contains any token wins, so
// the token order only matters for documentation purposes. Matching is
// case-insensitive substring containment.
var (
	sizeTokens = []string{"size", "diameter", "particle_size", "radius", "micron"}
	freqTokens = []string{"frequency", "count", "number"}
)

// instrumentTokens map header fragments to instrument-type labels. First
// match across the header list wins; anything unrecognized is "generic".
var instrumentTokens = []struct {
	token string
	label string
}{
	{"mastersizer", "mastersizer"},
	{"coulter", "coulter-counter"},
	{"sieve", "sieve-stack"},
	{"mesh", "sieve-stack"},
	{"laser", "mastersizer"},
}

// Column is one named column of raw cell text.
type Column struct {
	Name   string
	Values []string
}

// Data is a loaded table plus the detection results. It is owned by the
// dataset that loaded it; rows are kept as raw text so that different
// analyses can drop different rows at extraction time.
type Data struct {
	Path       string
	SkipRows   int
	Columns    []Column
	SizeColumn string // "" if no candidate matched
	FreqColumn string // "" if no candidate matched
	Instrument string
}

// Load reads a delimited table from path, skipping skipRows leading lines
// before the header row. Files with an .xlsx extension are read through
// excelize; everything else is treated as delimited text with the delimiter
// sniffed from the header line (comma, tab or semicolon).
func Load(path string, skipRows int) (*Data, error) {
	if skipRows < 0 {
		return nil, fmt.Errorf("skip rows must not be negative, got %d", skipRows)
	}

	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readExcel(path)
		if err == nil {
			if skipRows >= len(rows) {
				return nil, fmt.Errorf("%s: skip rows %d exceeds row count %d", path, skipRows, len(rows))
			}
			rows = rows[skipRows:]
		}
	} else {
		rows, err = readDelimited(path, skipRows)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoData)
	}

	header := rows[0]
	columns := make([]Column, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		columns[i] = Column{Name: h}
	}
	for _, row := range rows[1:] {
		for i := range columns {
			if i < len(row) {
				columns[i].Values = append(columns[i].Values, strings.TrimSpace(row[i]))
			} else {
				columns[i].Values = append(columns[i].Values, "")
			}
		}
	}

	d := &Data{
		Path:     path,
		SkipRows: skipRows,
		Columns:  columns,
	}
	d.SizeColumn = detectColumn(columns, sizeTokens)
	d.FreqColumn = detectColumn(columns, freqTokens)
	d.Instrument = detectInstrument(columns)
	return d, nil
}

// readDelimited reads a text table, skipping skipRows lines before the
// header, with the delimiter sniffed from the header line.
func readDelimited(path string, skipRows int) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	if skipRows >= len(lines) {
		return nil, fmt.Errorf("%s: skip rows %d exceeds line count %d", path, skipRows, len(lines))
	}
	body := strings.Join(lines[skipRows:], "\n")

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = sniffDelimiter(lines[skipRows])
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// readExcel reads sheet 0 of an .xlsx workbook.
func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// sniffDelimiter picks the delimiter producing the most fields on the
// header line. Comma wins ties.
func sniffDelimiter(header string) rune {
	best := ','
	bestCount := strings.Count(header, ",")
	for _, cand := range []rune{'\t', ';'} {
		if n := strings.Count(header, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// detectColumn returns the name of the first column (in file order) whose
// name contains any of the tokens, or "" when nothing matches.
func detectColumn(columns []Column, tokens []string) string {
	for _, col := range columns {
		name := strings.ToLower(col.Name)
		for _, tok := range tokens {
			if strings.Contains(name, tok) {
				return col.Name
			}
		}
	}
	return ""
}

// detectInstrument classifies the source instrument from the header names.
func detectInstrument(columns []Column) string {
	for _, col := range columns {
		name := strings.ToLower(col.Name)
		for _, it := range instrumentTokens {
			if strings.Contains(name, it.token) {
				return it.label
			}
		}
	}
	return "generic"
}

// ColumnNames returns the column names in file order.
func (d *Data) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (d *Data) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (d *Data) column(name string) (*Column, error) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("unknown column %q", name)
}

// Numeric extracts a column as floats, dropping empty and non-numeric cells.
func (d *Data) Numeric(name string) ([]float64, error) {
	col, err := d.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(col.Values))
	for _, raw := range col.Values {
		if v, ok := parseCell(raw); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// NumericPair extracts two columns row-aligned, dropping any row where
// either cell is empty or non-numeric. The drop happens here rather than at
// load time, so analyses over different column pairs keep different rows.
func (d *Data) NumericPair(aName, bName string) ([]float64, []float64, error) {
	a, err := d.column(aName)
	if err != nil {
		return nil, nil, err
	}
	b, err := d.column(bName)
	if err != nil {
		return nil, nil, err
	}

	n := len(a.Values)
	if len(b.Values) < n {
		n = len(b.Values)
	}
	av := make([]float64, 0, n)
	bv := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		x, okA := parseCell(a.Values[i])
		y, okB := parseCell(b.Values[i])
		if okA && okB {
			av = append(av, x)
			bv = append(bv, y)
		}
	}
	return av, bv, nil
}

// RowCount returns the number of data rows in the table.
func (d *Data) RowCount() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

func parseCell(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "NaN" and "Inf" spellings; extracted arrays must
	// hold finite values only.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
