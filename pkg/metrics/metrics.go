// Package metrics exposes Prometheus collectors for the evolution pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evolution Progress Metrics
var (
	// Generations evolved per group
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evoquant_generations_total",
		Help: "Total number of generation steps evolved",
	}, []string{"group"})

	// Offspring bred per group
	OffspringTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evoquant_offspring_total",
		Help: "Total number of offspring bred",
	}, []string{"group"})

	// Effective mutation rate applied in the latest generation
	EffectiveMutationRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evoquant_effective_mutation_rate",
		Help: "Mutation rate applied in the latest generation, after adaptive decay",
	}, []string{"group"})
)

// Population Quality Metrics
var (
	// Best composite fitness in the latest generation
	BestFitness = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evoquant_best_fitness",
		Help: "Best composite fitness in the latest generation",
	}, []string{"group"})

	// Average composite fitness in the latest generation
	AvgFitness = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evoquant_avg_fitness",
		Help: "Average composite fitness in the latest generation",
	}, []string{"group"})

	// Population diversity (mean normalized genotypic distance)
	PopulationDiversity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evoquant_population_diversity",
		Help: "Mean pairwise genotypic distance in the latest generation",
	}, []string{"group"})

	// Species count from the latest clustering
	SpeciesCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evoquant_species_count",
		Help: "Number of species clusters in the latest generation",
	}, []string{"group"})

	// Pareto front size in the latest generation
	ParetoFrontSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evoquant_pareto_front_size",
		Help: "Size of the first non-dominated front in the latest generation",
	}, []string{"group"})
)

// Hall of Fame Metrics
var (
	// Inductions into the archive
	HallOfFameInductions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evoquant_hall_of_fame_inductions_total",
		Help: "Total number of individuals inducted into the hall of fame",
	})

	// Current archive size
	HallOfFameSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evoquant_hall_of_fame_size",
		Help: "Current number of archived individuals",
	})
)

// Persistence Metrics
var (
	// Archive write failures
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evoquant_store_errors_total",
		Help: "Total number of persistence failures by store",
	}, []string{"store"})
)
