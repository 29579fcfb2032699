package fitting

import (
	"fmt"
	"math"
)

// Bucket partitions a raw size array into binCount equal-width bins and
// returns the bin centers and counts. Non-finite values are dropped first.
func Bucket(sizes []float64, binCount int) ([]float64, []float64, error) {
	if binCount < 3 {
		return nil, nil, fmt.Errorf("%w: need at least 3 bins, got %d", ErrInsufficientData, binCount)
	}

	clean := make([]float64, 0, len(sizes))
	for _, v := range sizes {
		if isFinite(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) < 3 {
		return nil, nil, fmt.Errorf("%w: %d valid values", ErrInsufficientData, len(clean))
	}

	lo, hi := clean[0], clean[0]
	for _, v := range clean[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return nil, nil, fmt.Errorf("%w: all values equal %g", ErrInsufficientData, lo)
	}

	width := (hi - lo) / float64(binCount)
	centers := make([]float64, binCount)
	counts := make([]float64, binCount)
	for i := range centers {
		centers[i] = lo + (float64(i)+0.5)*width
	}
	for _, v := range clean {
		idx := int(math.Floor((v - lo) / width))
		if idx >= binCount {
			idx = binCount - 1 // the maximum lands in the last bin
		}
		counts[idx]++
	}
	return centers, counts, nil
}
