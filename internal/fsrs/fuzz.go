package fsrs

import "math"

type fuzzBand struct {
	start, end float64
	factor     float64
}

var fuzzBands = [...]fuzzBand{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.MaxFloat64, 0.05},
}

// fuzzRange returns the inclusive day window an interval may be moved within.
func fuzzRange(interval float64, elapsedDays int64, maximumInterval int32) (lo, hi int64) {
	delta := 1.0
	for _, b := range fuzzBands {
		delta += b.factor * math.Max(math.Min(interval, b.end)-b.start, 0)
	}

	maxIvl := float64(maximumInterval)
	ivl := math.Min(interval, maxIvl)
	minF := math.Max(2, math.Round(ivl-delta))
	maxF := math.Min(math.Round(ivl+delta), maxIvl)
	if ivl > float64(elapsedDays) {
		minF = math.Max(minF, float64(elapsedDays)+1)
	}
	minF = math.Min(minF, maxF)
	return int64(minF), int64(maxF)
}

func (p Parameters) applyFuzz(interval float64, elapsedDays int64) float64 {
	if !p.EnableFuzz || interval < 2.5 {
		return interval
	}
	draw := NewAlea(p.Seed).Double()
	lo, hi := fuzzRange(interval, elapsedDays, p.MaximumInterval)
	return math.FMA(draw, float64(hi-lo+1), float64(lo))
}
