package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{10, 20, 30, 40}, []uint64{100, 200, 300, 400})
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 25.0, s.MeanCPU, 1e-9)
	assert.InDelta(t, 40.0, s.MaxCPU, 1e-9)
	assert.GreaterOrEqual(t, s.P95CPU, 30.0)
	assert.LessOrEqual(t, s.P95CPU, 40.0)
	assert.InDelta(t, 250.0, s.MeanRSS, 1e-9)
	assert.InDelta(t, 400.0, s.MaxRSS, 1e-9)
}

func TestSummarizeSingleReading(t *testing.T) {
	s := Summarize([]float64{12.5}, []uint64{1024})
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 12.5, s.P95CPU, 1e-9)
	assert.InDelta(t, 1024.0, s.MaxRSS, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil, nil))
}
