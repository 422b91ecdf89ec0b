package stats

import (
	mstats "github.com/montanaflynn/stats"
)

// Summary condenses the CPU and resident memory readings of a run
type Summary struct {
	Count   int
	MeanCPU float64
	MaxCPU  float64
	P95CPU  float64
	MeanRSS float64
	MaxRSS  float64
}

// Summarize computes a Summary from per-sample CPU percentages and resident
// memory sizes. Empty input yields a zero Summary.
func Summarize(cpu []float64, rss []uint64) Summary {
	summary := Summary{Count: len(cpu)}
	if len(cpu) > 0 {
		data := mstats.Float64Data(cpu)
		summary.MeanCPU, _ = mstats.Mean(data)
		summary.MaxCPU, _ = mstats.Max(data)
		p95, err := mstats.Percentile(data, 95)
		if err != nil {
			// too few readings to interpolate
			p95 = summary.MaxCPU
		}
		summary.P95CPU = p95
	}
	if len(rss) > 0 {
		mem := make(mstats.Float64Data, 0, len(rss))
		for _, v := range rss {
			mem = append(mem, float64(v))
		}
		summary.MeanRSS, _ = mstats.Mean(mem)
		summary.MaxRSS, _ = mstats.Max(mem)
	}
	return summary
}
