package fitting

import (
	"fmt"
	"math"
	"strings"
)

// Quality is the three-tier fit grade.
type Quality string

const (
	QualityGood Quality = "good"
	QualityOkay Quality = "okay"
	QualityPoor Quality = "poor"
)

// Thresholds hold the two-tier bars on R-squared (at least) and reduced
// chi-squared (at most) used for grading.
type Thresholds struct {
	R2Good  float64
	R2Okay  float64
	ChiGood float64
	ChiOkay float64
}

// DefaultThresholds are the standard grading bars.
var DefaultThresholds = Thresholds{
	R2Good:  0.85,
	R2Okay:  0.70,
	ChiGood: 1.5,
	ChiOkay: 3.0,
}

// Grade categorizes a fit. Good requires both metrics at their good bar.
// Okay requires both at least at their okay bar; a good score on one metric
// paired with an okay score on the other still grades okay. A non-finite
// reduced chi-squared fails both chi bars.
func Grade(r2, reducedChi float64, th Thresholds) Quality {
	chiFinite := !math.IsNaN(reducedChi) && !math.IsInf(reducedChi, 0)
	if r2 >= th.R2Good && chiFinite && reducedChi <= th.ChiGood {
		return QualityGood
	}
	if r2 >= th.R2Okay && chiFinite && reducedChi <= th.ChiOkay {
		return QualityOkay
	}
	return QualityPoor
}

// Quality grades the result with the given thresholds.
func (r *FitResult) Quality(th Thresholds) Quality {
	return Grade(r.RSquared, r.ReducedChiSq, th)
}

// Category grades the most recent fit, or poor if no fit has been
// performed yet.
func (f *Fitter) Category() Quality {
	if f.last == nil {
		return QualityPoor
	}
	return f.last.Quality(f.Thresholds)
}

// Summary returns a human-readable description of the most recent fit.
func (f *Fitter) Summary() string {
	if f.last == nil {
		return "no fit performed"
	}
	r := f.last

	var sb strings.Builder
	fmt.Fprintf(&sb, "gaussian fit: A=%.4g±%.2g  mean=%.4g±%.2g  sigma=%.4g±%.2g\n",
		r.Amplitude, r.AmplitudeErr, r.Mean, r.MeanErr, r.Sigma, r.SigmaErr)
	fmt.Fprintf(&sb, "FWHM=%.4g  area=%.4g\n", r.FWHM, r.Area)
	fmt.Fprintf(&sb, "R²=%.4f  RMSE=%.4g  reduced χ²=%.3g  quality=%s",
		r.RSquared, r.RMSE, r.ReducedChiSq, f.Category())
	return sb.String()
}
