package core

import "math"

// PriceRange summarizes a close-price series.
type PriceRange struct {
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AvgPrice float64
}

// -----------------------------------------------------------------------------

// ComputePriceRange calculates first, last, extreme and average price of a series.
func ComputePriceRange(prices []float64) PriceRange {
	if len(prices) == 0 {
		return PriceRange{}
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	sum := 0.0
	for _, p := range prices {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
		sum += p
	}

	return PriceRange{
		Open:     prices[0],
		High:     high,
		Low:      low,
		Close:    prices[len(prices)-1],
		AvgPrice: sum / float64(len(prices)),
	}
}

// -----------------------------------------------------------------------------

// CalculateChangePercent calculates percentage change.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}

// -----------------------------------------------------------------------------

// DailyReturns returns the change of each price against the one before it.
// The result has len(prices)-1 elements; a zero previous price yields NaN.
func DailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			returns[i-1] = math.NaN()
			continue
		}
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return returns
}

// -----------------------------------------------------------------------------

// CumulativeReturns compounds returns: out[i] = prod(1+r[0..i]) - 1.
// NaN returns leave the running product unchanged.
func CumulativeReturns(returns []float64) []float64 {
	out := make([]float64, len(returns))
	product := 1.0
	for i, r := range returns {
		if !math.IsNaN(r) {
			product *= 1 + r
		}
		out[i] = product - 1
	}
	return out
}
