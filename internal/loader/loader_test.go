package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadDetectsColumns(t *testing.T) {
	path := writeFile(t, "sample.csv",
		"Diameter (um),Count\n1.0,5\n2.0,8\nbad,\n3.0,2\n")

	d, err := Load(path, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.SizeColumn != "Diameter (um)" {
		t.Errorf("size column = %q, want Diameter (um)", d.SizeColumn)
	}
	if d.FreqColumn != "Count" {
		t.Errorf("freq column = %q, want Count", d.FreqColumn)
	}
	if d.RowCount() != 4 {
		t.Errorf("row count = %d, want 4 (bad rows kept until extraction)", d.RowCount())
	}

	sizes, err := d.Numeric("Diameter (um)")
	if err != nil {
		t.Fatalf("numeric: %v", err)
	}
	if len(sizes) != 3 {
		t.Errorf("numeric dropped to %d values, want 3", len(sizes))
	}

	s, f, err := d.NumericPair("Diameter (um)", "Count")
	if err != nil {
		t.Fatalf("numeric pair: %v", err)
	}
	if len(s) != 3 || len(f) != 3 {
		t.Errorf("pair lengths = %d/%d, want 3/3", len(s), len(f))
	}
}

func TestLoadFirstMatchWins(t *testing.T) {
	// Two size-like columns: the first in file order must win.
	path := writeFile(t, "two.csv", "mean_size,diameter,count\n1,2,3\n4,5,6\n")
	d, err := Load(path, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.SizeColumn != "mean_size" {
		t.Errorf("size column = %q, want mean_size (first match)", d.SizeColumn)
	}
}

func TestLoadNoCandidateStaysUnset(t *testing.T) {
	path := writeFile(t, "odd.csv", "alpha,beta\n1,2\n3,4\n")
	d, err := Load(path, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.SizeColumn != "" || d.FreqColumn != "" {
		t.Errorf("detected %q/%q, want both unset", d.SizeColumn, d.FreqColumn)
	}
}

func TestLoadSkipRows(t *testing.T) {
	path := writeFile(t, "skipped.csv",
		"Instrument export v2\ngenerated 2024-01-01\nsize,count\n1,2\n3,4\n")

	d, err := Load(path, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.SizeColumn != "size" {
		t.Errorf("size column = %q, want size", d.SizeColumn)
	}
	if d.RowCount() != 2 {
		t.Errorf("row count = %d, want 2", d.RowCount())
	}
}

func TestLoadTabDelimited(t *testing.T) {
	path := writeFile(t, "data.tsv", "size\tfrequency\n1\t10\n2\t20\n")
	d, err := Load(path, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(d.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(d.Columns))
	}
	if d.FreqColumn != "frequency" {
		t.Errorf("freq column = %q, want frequency", d.FreqColumn)
	}
}

func TestLoadBlankHeaderGetsPlaceholder(t *testing.T) {
	path := writeFile(t, "blank.csv", "size,\n1,2\n3,4\n")
	d, err := Load(path, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Columns[1].Name != "Column_2" {
		t.Errorf("blank header = %q, want Column_2", d.Columns[1].Name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadHeaderOnly(t *testing.T) {
	path := writeFile(t, "empty.csv", "size,count\n")
	_, err := Load(path, 0)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestLoadNegativeSkip(t *testing.T) {
	path := writeFile(t, "neg.csv", "size,count\n1,2\n")
	if _, err := Load(path, -1); err == nil {
		t.Fatal("expected error for negative skip rows")
	}
}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestLoadExcel(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Instrument export v2"},
		{"Size (um)", "count"},
		{1.5, 10},
		{2.5, 20},
	})

	d, err := Load(path, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.SizeColumn != "Size (um)" {
		t.Errorf("size column = %q, want Size (um)", d.SizeColumn)
	}
	if d.FreqColumn != "count" {
		t.Errorf("freq column = %q, want count", d.FreqColumn)
	}
	if d.RowCount() != 2 {
		t.Errorf("row count = %d, want 2", d.RowCount())
	}

	sizes, freqs, err := d.NumericPair(d.SizeColumn, d.FreqColumn)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(sizes) != 2 || sizes[0] != 1.5 || sizes[1] != 2.5 {
		t.Errorf("sizes = %v, want [1.5 2.5]", sizes)
	}
	if len(freqs) != 2 || freqs[0] != 10 || freqs[1] != 20 {
		t.Errorf("freqs = %v, want [10 20]", freqs)
	}
}

func TestLoadExcelErrors(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"size", "count"},
		{1, 2},
	})
	if _, err := Load(path, 5); err == nil {
		t.Error("expected error when skip rows exceeds row count")
	}

	headerOnly := writeWorkbook(t, [][]interface{}{{"size", "count"}})
	if _, err := Load(headerOnly, 0); !errors.Is(err, ErrNoData) {
		t.Errorf("header-only workbook: err = %v, want ErrNoData", err)
	}

	corrupt := writeFile(t, "broken.xlsx", "this is not a zip archive")
	if _, err := Load(corrupt, 0); err == nil {
		t.Error("expected error for corrupt workbook")
	}
}

func TestNumericDropsNonFinite(t *testing.T) {
	path := writeFile(t, "nf.csv",
		"size,count\n1,5\nNaN,6\n2,Inf\n-Inf,7\n3,8\n")
	d, err := Load(path, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sizes, freqs, err := d.NumericPair("size", "count")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(sizes) != 2 || sizes[0] != 1 || sizes[1] != 3 {
		t.Errorf("sizes = %v, want [1 3]", sizes)
	}
	if len(freqs) != 2 || freqs[0] != 5 || freqs[1] != 8 {
		t.Errorf("freqs = %v, want [5 8]", freqs)
	}
}

func TestInstrumentDetection(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Mastersizer Size (um),obscuration", "mastersizer"},
		{"coulter channel,diameter", "coulter-counter"},
		{"mesh_size,retained_pct", "sieve-stack"},
		{"size,count", "generic"},
	}
	for _, tc := range cases {
		path := writeFile(t, "inst.csv", tc.header+"\n1,2\n3,4\n")
		d, err := Load(path, 0)
		if err != nil {
			t.Fatalf("load %q: %v", tc.header, err)
		}
		if d.Instrument != tc.want {
			t.Errorf("header %q: instrument = %q, want %q", tc.header, d.Instrument, tc.want)
		}
	}
}

func TestNumericUnknownColumn(t *testing.T) {
	path := writeFile(t, "u.csv", "size,count\n1,2\n")
	d, err := Load(path, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := d.Numeric("missing"); err == nil {
		t.Fatal("expected error for unknown column")
	}
	if _, _, err := d.NumericPair("size", "missing"); err == nil {
		t.Fatal("expected error for unknown pair column")
	}
}

func TestGenerateSynthetic(t *testing.T) {
	opts := SyntheticOptions{MinSize: 1, MaxSize: 50, Seed: 7}
	for _, dist := range []Distribution{DistLogNormal, DistNormal, DistUniform} {
		d, err := GenerateSynthetic(300, dist, opts)
		if err != nil {
			t.Fatalf("%s: %v", dist, err)
		}
		if d.SizeColumn == "" || d.FreqColumn == "" {
			t.Fatalf("%s: detection columns unset", dist)
		}
		sizes, freqs, err := d.NumericPair(d.SizeColumn, d.FreqColumn)
		if err != nil {
			t.Fatalf("%s: extract: %v", dist, err)
		}
		if len(sizes) != 300 {
			t.Fatalf("%s: got %d sizes, want 300", dist, len(sizes))
		}
		for i, s := range sizes {
			if s < 1-1e-9 || s > 50+1e-9 {
				t.Fatalf("%s: size[%d]=%g outside [1,50]", dist, i, s)
			}
			if freqs[i] < 1 {
				t.Fatalf("%s: freq[%d]=%g below floor", dist, i, freqs[i])
			}
		}
	}
}

func TestGenerateSyntheticInvalid(t *testing.T) {
	if _, err := GenerateSynthetic(1, DistNormal, SyntheticOptions{}); err == nil {
		t.Error("expected error for n=1")
	}
	if _, err := GenerateSynthetic(10, Distribution("weird"), SyntheticOptions{}); err == nil {
		t.Error("expected error for unknown distribution")
	}
	if _, err := GenerateSynthetic(10, DistNormal, SyntheticOptions{MinSize: 5, MaxSize: 2}); err == nil {
		t.Error("expected error for inverted bounds")
	}
}
