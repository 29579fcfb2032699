// Package fitting fits single-mode Gaussian distributions to particle-size
// histograms and grades the fit quality.
package fitting

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

var (
	// ErrInsufficientData indicates fewer than three usable points.
	ErrInsufficientData = errors.New("insufficient data for fit")
	// ErrNoConvergence indicates the solver failed to converge.
	ErrNoConvergence = errors.New("fit did not converge")
)

// Histogram data is noisy and slow to converge, so the solver gets a
// generous evaluation budget.
const maxFuncEvaluations = 10000

// fwhmFactor converts a Gaussian sigma to full width at half maximum.
const fwhmFactor = 2.355

// curvePoints is the resolution of the dense evaluation curve.
const curvePoints = 200

// Guess is an optional initial parameter estimate for a fit.
type Guess struct {
	Amplitude float64
	Mean      float64
	Sigma     float64
}

// FitResult holds fitted Gaussian parameters, their standard errors,
// derived statistics and quality metrics for one fit call.
type FitResult struct {
	Amplitude float64
	Mean      float64
	Sigma     float64

	// Standard errors from the covariance diagonal. NaN when the
	// covariance system is singular.
	AmplitudeErr float64
	MeanErr      float64
	SigmaErr     float64

	// Derived statistics.
	PeakX float64
	PeakY float64
	FWHM  float64
	Area  float64

	// Quality metrics against the fitted points.
	RSquared     float64
	RMSE         float64
	MAE          float64
	NRMSE        float64
	ChiSquared   float64
	ReducedChiSq float64 // +Inf when DOF <= 0
	DOF          int

	// Dense evaluation curve for plotting.
	CurveX []float64
	CurveY []float64
}

// Fitter performs Gaussian fits and retains the most recent result for
// summary and grading queries. Not safe for concurrent use.
type Fitter struct {
	Thresholds Thresholds
	last       *FitResult
}

// NewFitter creates a Fitter with the default grading thresholds.
func NewFitter() *Fitter {
	return &Fitter{Thresholds: DefaultThresholds}
}

// Last returns the most recent fit result, or nil if no fit succeeded yet.
func (f *Fitter) Last() *FitResult {
	return f.last
}

// FitHistogram fits y = A*exp(-(x-mean)^2/(2*sigma^2)) to bin centers and
// counts by nonlinear least squares. Pairs where either value is non-finite
// or the count is negative are dropped before fitting; at least three pairs
// must survive. A nil guess derives the initial estimate from the data.
func (f *Fitter) FitHistogram(binCenters, binCounts []float64, guess *Guess) (*FitResult, error) {
	if len(binCenters) != len(binCounts) {
		return nil, fmt.Errorf("length mismatch: %d centers vs %d counts", len(binCenters), len(binCounts))
	}

	x := make([]float64, 0, len(binCenters))
	y := make([]float64, 0, len(binCounts))
	for i := range binCenters {
		if !isFinite(binCenters[i]) || !isFinite(binCounts[i]) || binCounts[i] < 0 {
			continue
		}
		x = append(x, binCenters[i])
		y = append(y, binCounts[i])
	}
	if len(x) < 3 {
		return nil, fmt.Errorf("%w: %d valid points", ErrInsufficientData, len(x))
	}

	g := initialGuess(x, y, guess)
	params, err := solve(x, y, g)
	if err != nil {
		return nil, err
	}

	amp, mean, sigma := params[0], params[1], math.Abs(params[2])
	if sigma == 0 || !isFinite(amp) || !isFinite(mean) || !isFinite(sigma) {
		return nil, fmt.Errorf("%w: degenerate parameters", ErrNoConvergence)
	}

	res := &FitResult{
		Amplitude: amp,
		Mean:      mean,
		Sigma:     sigma,
		PeakX:     mean,
		PeakY:     amp,
		FWHM:      fwhmFactor * sigma,
		Area:      amp * sigma * math.Sqrt(2*math.Pi),
	}
	res.AmplitudeErr, res.MeanErr, res.SigmaErr = standardErrors(x, y, amp, mean, sigma)
	computeMetrics(res, x, y)
	res.CurveX, res.CurveY = denseCurve(x, amp, mean, sigma)

	f.last = res
	return res, nil
}

// FitRaw buckets a raw size array into binCount equal-width bins and fits
// the resulting histogram.
func (f *Fitter) FitRaw(sizes []float64, binCount int) (*FitResult, error) {
	centers, counts, err := Bucket(sizes, binCount)
	if err != nil {
		return nil, err
	}
	return f.FitHistogram(centers, counts, nil)
}

// gaussian evaluates the model at x.
func gaussian(amp, mean, sigma, x float64) float64 {
	d := x - mean
	return amp * math.Exp(-d*d/(2*sigma*sigma))
}

// initialGuess derives starting parameters from the data when the caller
// did not supply them: amplitude from the max count, mean and sigma from
// count-weighted moments with range-based fallbacks when the counts sum to
// zero.
func initialGuess(x, y []float64, g *Guess) [3]float64 {
	if g != nil {
		return [3]float64{g.Amplitude, g.Mean, g.Sigma}
	}

	amp := floats.Max(y)
	total := floats.Sum(y)

	var mean float64
	if total > 0 {
		for i := range x {
			mean += x[i] * y[i]
		}
		mean /= total
	} else {
		mean = x[maxIndex(y)]
	}

	var sigma float64
	if total > 0 {
		var m2 float64
		for i := range x {
			d := x[i] - mean
			m2 += y[i] * d * d
		}
		sigma = math.Sqrt(m2 / total)
	}
	if sigma == 0 {
		sigma = (floats.Max(x) - floats.Min(x)) / 4
	}
	if sigma == 0 {
		sigma = 1
	}

	return [3]float64{amp, mean, sigma}
}

// solve minimizes the sum of squared residuals with Nelder-Mead.
func solve(x, y []float64, g [3]float64) ([]float64, error) {
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			var sse float64
			for i := range x {
				r := y[i] - gaussian(p[0], p[1], math.Abs(p[2]), x[i])
				sse += r * r
			}
			return sse
		},
	}

	settings := &optimize.Settings{FuncEvaluations: maxFuncEvaluations}
	result, err := optimize.Minimize(problem, g[:], settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}
	if err := result.Status.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}
	return result.X, nil
}

// standardErrors computes parameter standard errors as the square roots of
// the diagonal of s^2 * (J^T J)^-1, with the residual variance s^2 taken
// over max(n-3, 1) degrees of freedom. A singular system yields NaNs.
func standardErrors(x, y []float64, amp, mean, sigma float64) (ampErr, meanErr, sigmaErr float64) {
	n := len(x)
	jac := mat.NewDense(n, 3, nil)
	var sse float64
	for i := range x {
		d := x[i] - mean
		e := math.Exp(-d * d / (2 * sigma * sigma))
		jac.Set(i, 0, e)
		jac.Set(i, 1, amp*e*d/(sigma*sigma))
		jac.Set(i, 2, amp*e*d*d/(sigma*sigma*sigma))
		r := y[i] - amp*e
		sse += r * r
	}

	dof := n - 3
	if dof < 1 {
		dof = 1
	}
	variance := sse / float64(dof)

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		return math.NaN(), math.NaN(), math.NaN()
	}
	cov.Scale(variance, &cov)

	return math.Sqrt(cov.At(0, 0)), math.Sqrt(cov.At(1, 1)), math.Sqrt(cov.At(2, 2))
}

// computeMetrics fills in the quality metrics against the fitted points.
func computeMetrics(res *FitResult, x, y []float64) {
	n := len(x)
	yMean := floats.Sum(y) / float64(n)

	var ssRes, ssTot, absSum, chi2 float64
	for i := range x {
		fi := gaussian(res.Amplitude, res.Mean, res.Sigma, x[i])
		r := y[i] - fi
		ssRes += r * r
		absSum += math.Abs(r)
		d := y[i] - yMean
		ssTot += d * d
		// Poisson-count weighting, clamped to avoid division by zero.
		chi2 += r * r / math.Max(y[i], 1)
	}

	if ssTot == 0 {
		res.RSquared = 0
	} else {
		res.RSquared = 1 - ssRes/ssTot
	}
	res.RMSE = math.Sqrt(ssRes / float64(n))
	res.MAE = absSum / float64(n)
	if yRange := floats.Max(y) - floats.Min(y); yRange > 0 {
		res.NRMSE = res.RMSE / yRange
	}
	res.ChiSquared = chi2
	res.DOF = n - 3
	if res.DOF <= 0 {
		res.ReducedChiSq = math.Inf(1)
	} else {
		res.ReducedChiSq = chi2 / float64(res.DOF)
	}
}

// denseCurve evaluates the fitted model over the x range for plotting.
func denseCurve(x []float64, amp, mean, sigma float64) ([]float64, []float64) {
	lo, hi := floats.Min(x), floats.Max(x)
	cx := make([]float64, curvePoints)
	cy := make([]float64, curvePoints)
	step := (hi - lo) / float64(curvePoints-1)
	for i := range cx {
		cx[i] = lo + float64(i)*step
		cy[i] = gaussian(amp, mean, sigma, cx[i])
	}
	return cx, cy
}

func maxIndex(v []float64) int {
	idx := 0
	for i, val := range v {
		if val > v[idx] {
			idx = i
		}
	}
	return idx
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
