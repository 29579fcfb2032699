// Command psdfit fits a Gaussian to one particle-size file and prints the
// fit report.
package main

import (
	"flag"
	"fmt"
	"os"

	"psd-analyzer/internal/fitting"
	"psd-analyzer/internal/loader"
	"psd-analyzer/internal/report"
)

func main() {
	filePath := flag.String("file", "", "Path to measurement file (CSV, TSV, or XLSX)")
	skipRows := flag.Int("skip", 0, "Header rows to skip")
	bins := flag.Int("bins", 32, "Bin count for raw-mode bucketing")
	sizeCol := flag.String("size-column", "", "Size column (default: auto-detected)")
	freqCol := flag.String("freq-column", "", "Frequency column (default: auto-detected)")
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: psdfit -file <path> [-skip 0] [-bins 32] [-size-column name] [-freq-column name]")
		os.Exit(1)
	}

	data, err := loader.Load(*filePath, *skipRows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load file: %v\n", err)
		os.Exit(1)
	}

	size := data.SizeColumn
	if *sizeCol != "" {
		size = *sizeCol
	}
	freq := data.FreqColumn
	if *freqCol != "" {
		freq = *freqCol
	}
	if size == "" {
		fmt.Fprintf(os.Stderr, "No size column detected; available columns: %v\n", data.ColumnNames())
		os.Exit(1)
	}

	fmt.Printf("Loaded %s: %d rows, instrument %s\n", *filePath, data.RowCount(), data.Instrument)
	fmt.Printf("Columns: size=%q frequency=%q\n\n", size, freq)

	fitter := fitting.NewFitter()
	var res *fitting.FitResult
	if freq != "" {
		sizes, freqs, err := data.NumericPair(size, freq)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Column extraction failed: %v\n", err)
			os.Exit(1)
		}
		res, err = fitter.FitHistogram(sizes, freqs, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Fit failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		sizes, err := data.Numeric(size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Column extraction failed: %v\n", err)
			os.Exit(1)
		}
		res, err = fitter.FitRaw(sizes, *bins)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Fit failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Print(report.Fit(res, fitter.Thresholds))
}
