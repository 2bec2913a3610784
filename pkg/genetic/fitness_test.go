package genetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeComposite_WeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range compositeWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Len(t, compositeWeights, len(FitnessComponentNames))
}

func TestComputeComposite_PerfectScores(t *testing.T) {
	f := FitnessScores{
		Return:          1,
		RiskAdjusted:    1,
		WinRate:         1,
		DrawdownPenalty: 1,
		TradeFrequency:  1,
		Consistency:     1,
	}
	assert.InDelta(t, 1.0, ComputeComposite(f), 1e-12)
}

func TestComputeComposite_ClampsComponents(t *testing.T) {
	f := FitnessScores{
		Return:       5,  // clamps to 1
		RiskAdjusted: -2, // clamps to 0
	}
	assert.InDelta(t, 0.25, ComputeComposite(f), 1e-12)
}

func TestWithComposite(t *testing.T) {
	f := FitnessScores{Return: 1, RiskAdjusted: 1}
	updated := f.WithComposite()
	assert.InDelta(t, 0.5, updated.Composite, 1e-12)
	assert.Zero(t, f.Composite, "input should not be mutated")
}

func TestComponents_CanonicalOrder(t *testing.T) {
	f := FitnessScores{
		Return:          0.1,
		RiskAdjusted:    0.2,
		WinRate:         0.3,
		DrawdownPenalty: 0.4,
		TradeFrequency:  0.5,
		Consistency:     0.6,
	}
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, f.Components())
}
