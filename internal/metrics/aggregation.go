package metrics

import (
	"sort"
	"time"
)

// Aggregation summarizes a set of samples, in seconds.
type Aggregation struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
}

// MeanDuration returns the mean as a time.Duration.
func (a *Aggregation) MeanDuration() time.Duration {
	return time.Duration(a.Mean * float64(time.Second))
}

func calculateAggregation(values []float64) *Aggregation {
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return &Aggregation{
		Count: len(values),
		Sum:   sum,
		Min:   values[0],
		Max:   values[len(values)-1],
		Mean:  sum / float64(len(values)),
		P50:   calculatePercentile(values, 0.50),
		P95:   calculatePercentile(values, 0.95),
	}
}

// calculatePercentile interpolates linearly between closest ranks of a
// sorted slice.
func calculatePercentile(sortedValues []float64, p float64) float64 {
	if len(sortedValues) == 0 {
		return 0.0
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	index := p * float64(len(sortedValues)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sortedValues) {
		return sortedValues[len(sortedValues)-1]
	}

	weight := index - float64(lower)
	return sortedValues[lower]*(1-weight) + sortedValues[upper]*weight
}
