package stats

import (
	"math"
)

// Stats summarizes a set of values
type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes the standard deviation, minimum, maximum and mean
// of the given values.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	min := values[0]
	max := values[0]

	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	mean := sum / float64(len(values))

	var sumSquaredDiffs float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiffs += diff * diff
	}

	// population standard deviation
	stdDev := math.Sqrt(sumSquaredDiffs / float64(len(values)))

	var minMaxRatio float64 = 1.0
	if max > 0 {
		minMaxRatio = min / max
	}

	return Stats{
		StdDeviation: stdDev,
		Min:          min,
		Max:          max,
		Mean:         mean,
		MinMaxRatio:  minMaxRatio,
	}
}

// DistributionStats adds a quality score in [0, 1] to Stats. 1 means the
// values are perfectly even.
type DistributionStats struct {
	Stats
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats computes quality metrics for the distribution of work
// over a set of workers
func NewDistributionStats(values []float64) DistributionStats {
	stats := NewStats(values)

	// coefficient of variation
	var cv float64
	if stats.Mean > 0 {
		cv = stats.StdDeviation / stats.Mean
	}

	// lower CV and higher min/max ratio indicate a better distribution
	distributionQuality := (1.0-math.Min(1.0, cv))*0.5 + stats.MinMaxRatio*0.5

	return DistributionStats{
		Stats:               stats,
		DistributionQuality: distributionQuality,
	}
}
