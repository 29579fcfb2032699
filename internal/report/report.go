// Package report renders plain-text summaries of datasets and fit results
// for the reporting collaborator and the command-line tools.
package report

import (
	"fmt"
	"strings"

	"psd-analyzer/internal/dataset"
	"psd-analyzer/internal/fitting"
)

// Dataset renders a one-dataset summary block.
func Dataset(ds *dataset.Dataset) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dataset %s (%s)\n", ds.Tag, ds.ID)
	fmt.Fprintf(&sb, "  source:     %s (skip %d rows)\n", ds.Path, ds.SkipRows)
	fmt.Fprintf(&sb, "  instrument: %s\n", ds.Instrument)
	fmt.Fprintf(&sb, "  mode:       %s, %d bins\n", ds.Settings.DataMode, ds.Settings.BinCount)
	fmt.Fprintf(&sb, "  columns:    size=%q frequency=%q (of %d)\n",
		ds.Settings.SizeColumn, ds.Settings.FreqColumn, len(ds.Data.Columns))
	fmt.Fprintf(&sb, "  rows:       %d\n", ds.Data.RowCount())
	if ds.Notes != "" {
		fmt.Fprintf(&sb, "  notes:      %s\n", ds.Notes)
	}
	return sb.String()
}

// Fit renders a fit-result block including parameters, derived statistics
// and the quality grade.
func Fit(res *fitting.FitResult, th fitting.Thresholds) string {
	var sb strings.Builder
	sb.WriteString("Gaussian fit\n")
	fmt.Fprintf(&sb, "  amplitude:  %10.4f ± %.4f\n", res.Amplitude, res.AmplitudeErr)
	fmt.Fprintf(&sb, "  mean:       %10.4f ± %.4f\n", res.Mean, res.MeanErr)
	fmt.Fprintf(&sb, "  sigma:      %10.4f ± %.4f\n", res.Sigma, res.SigmaErr)
	fmt.Fprintf(&sb, "  FWHM:       %10.4f\n", res.FWHM)
	fmt.Fprintf(&sb, "  area:       %10.4f\n", res.Area)
	fmt.Fprintf(&sb, "  R²:         %10.4f\n", res.RSquared)
	fmt.Fprintf(&sb, "  RMSE:       %10.4f (NRMSE %.4f)\n", res.RMSE, res.NRMSE)
	fmt.Fprintf(&sb, "  MAE:        %10.4f\n", res.MAE)
	fmt.Fprintf(&sb, "  χ²:         %10.4f (reduced %.4f, dof %d)\n",
		res.ChiSquared, res.ReducedChiSq, res.DOF)
	fmt.Fprintf(&sb, "  quality:    %s\n", res.Quality(th))
	return sb.String()
}

// Registry renders a listing of all datasets, marking the active one.
func Registry(reg *dataset.Registry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d dataset(s)\n", reg.Count())
	for _, ds := range reg.List() {
		marker := " "
		if ds.ID == reg.ActiveID() {
			marker = "*"
		}
		fmt.Fprintf(&sb, " %s %-20s %-16s %5d rows  %s\n",
			marker, ds.Tag, ds.Instrument, ds.Data.RowCount(), ds.Filename)
	}
	return sb.String()
}
