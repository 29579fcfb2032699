// Package dataset owns the collection of loaded particle-size datasets:
// identity, colors, instrument defaults, navigation and lifecycle.
package dataset

import (
	"image/color"
	"time"

	"psd-analyzer/internal/loader"
)

// DataMode selects how a dataset's size population is interpreted.
type DataMode string

const (
	// ModeFrequency treats the data as pre-binned size/frequency pairs.
	ModeFrequency DataMode = "frequency"
	// ModeRaw treats the size column as raw individual measurements.
	ModeRaw DataMode = "raw"
)

// DefaultBinCount is used when the instrument config has no override.
const DefaultBinCount = 32

// AnalysisSettings controls how a dataset is analyzed and displayed.
type AnalysisSettings struct {
	DataMode   DataMode
	BinCount   int
	SizeColumn string // must name a loaded column, or be ""
	FreqColumn string
	ShowStats  bool
	ShowFit    bool
}

// SettingsUpdate is a field-wise partial update of AnalysisSettings; nil
// fields leave the current value untouched.
type SettingsUpdate struct {
	DataMode   *DataMode
	BinCount   *int
	SizeColumn *string
	FreqColumn *string
	ShowStats  *bool
	ShowFit    *bool
}

// Dataset is the unit of analysis. It exclusively owns the loaded table.
type Dataset struct {
	ID         string
	Filename   string
	Path       string
	Tag        string
	Notes      string
	Color      color.RGBA
	Created    time.Time
	SkipRows   int
	Instrument string
	Settings   AnalysisSettings
	Data       *loader.Data
}

// SizeValues extracts the active size column as floats.
func (d *Dataset) SizeValues() ([]float64, error) {
	return d.Data.Numeric(d.Settings.SizeColumn)
}

// SizeFrequency extracts the active size and frequency columns row-aligned,
// dropping rows where either cell is missing or non-numeric.
func (d *Dataset) SizeFrequency() ([]float64, []float64, error) {
	return d.Data.NumericPair(d.Settings.SizeColumn, d.Settings.FreqColumn)
}
