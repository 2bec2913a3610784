package metrics

import (
	"github.com/ajitpratap0/evoquant/pkg/genetic"
)

// GenerationObserver publishes generation-step metrics for one evolution
// group. It implements genetic.Observer.
type GenerationObserver struct {
	group string
}

// NewGenerationObserver creates an observer labeled with the group name
func NewGenerationObserver(group string) *GenerationObserver {
	return &GenerationObserver{group: group}
}

// ObserveGeneration records counters and gauges for one generation step
func (o *GenerationObserver) ObserveGeneration(generation int, result *genetic.EvolutionResult) {
	GenerationsTotal.WithLabelValues(o.group).Inc()
	OffspringTotal.WithLabelValues(o.group).Add(float64(len(result.Offspring)))
	EffectiveMutationRate.WithLabelValues(o.group).Set(result.EffectiveMutationRate)
}

// RecordAnalytics publishes population-quality gauges from a generation
// snapshot
func RecordAnalytics(group string, analytics *genetic.GenerationAnalytics) {
	if analytics == nil {
		return
	}
	BestFitness.WithLabelValues(group).Set(analytics.BestFitness)
	AvgFitness.WithLabelValues(group).Set(analytics.AvgFitness)
	PopulationDiversity.WithLabelValues(group).Set(analytics.Diversity)
	SpeciesCount.WithLabelValues(group).Set(float64(len(analytics.Species)))
	if analytics.Pareto != nil {
		ParetoFrontSize.WithLabelValues(group).Set(float64(len(analytics.Pareto.FirstFront())))
	}
}

// RecordInduction tracks one hall of fame induction and the resulting size
func RecordInduction(archiveSize int) {
	HallOfFameInductions.Inc()
	HallOfFameSize.Set(float64(archiveSize))
}

// RecordStoreError tracks a persistence failure for the named store
func RecordStoreError(store string) {
	StoreErrors.WithLabelValues(store).Inc()
}
