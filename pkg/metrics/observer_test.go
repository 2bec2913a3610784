package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/evoquant/pkg/genetic"
)

func TestGenerationObserver(t *testing.T) {
	var _ genetic.Observer = (*GenerationObserver)(nil)

	observer := NewGenerationObserver("obs-test-group")

	before := testutil.ToFloat64(GenerationsTotal.WithLabelValues("obs-test-group"))

	result := &genetic.EvolutionResult{
		Offspring:             make([]genetic.Individual, 8),
		EffectiveMutationRate: 0.12,
	}
	observer.ObserveGeneration(3, result)

	after := testutil.ToFloat64(GenerationsTotal.WithLabelValues("obs-test-group"))
	assert.InDelta(t, 1, after-before, 1e-9)

	assert.InDelta(t, 8, testutil.ToFloat64(OffspringTotal.WithLabelValues("obs-test-group")), 1e-9)
	assert.InDelta(t, 0.12, testutil.ToFloat64(EffectiveMutationRate.WithLabelValues("obs-test-group")), 1e-9)
}

func TestRecordAnalytics(t *testing.T) {
	analytics := &genetic.GenerationAnalytics{
		BestFitness: 0.9,
		AvgFitness:  0.5,
		Diversity:   0.3,
		Species:     make([]genetic.SpeciesCluster, 4),
	}
	RecordAnalytics("analytics-test-group", analytics)

	assert.InDelta(t, 0.9, testutil.ToFloat64(BestFitness.WithLabelValues("analytics-test-group")), 1e-9)
	assert.InDelta(t, 0.5, testutil.ToFloat64(AvgFitness.WithLabelValues("analytics-test-group")), 1e-9)
	assert.InDelta(t, 0.3, testutil.ToFloat64(PopulationDiversity.WithLabelValues("analytics-test-group")), 1e-9)
	assert.InDelta(t, 4, testutil.ToFloat64(SpeciesCount.WithLabelValues("analytics-test-group")), 1e-9)

	require.NotPanics(t, func() {
		RecordAnalytics("analytics-test-group", nil)
	})
}

func TestRecordInduction(t *testing.T) {
	before := testutil.ToFloat64(HallOfFameInductions)

	RecordInduction(23)

	assert.InDelta(t, 1, testutil.ToFloat64(HallOfFameInductions)-before, 1e-9)
	assert.InDelta(t, 23, testutil.ToFloat64(HallOfFameSize), 1e-9)
}

func TestRecordStoreError(t *testing.T) {
	before := testutil.ToFloat64(StoreErrors.WithLabelValues("hall_of_fame"))

	RecordStoreError("hall_of_fame")

	assert.InDelta(t, 1, testutil.ToFloat64(StoreErrors.WithLabelValues("hall_of_fame"))-before, 1e-9)
}
