package genetic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// geneImportanceLimit caps the ranked gene-importance list.
const geneImportanceLimit = 15

// minImportancePopulation is the smallest population for which a Pearson
// correlation is meaningful; below it the importance list is empty.
const minImportancePopulation = 3

// GeneImportance ranks one gene by how strongly its value correlates with
// composite fitness across the population.
type GeneImportance struct {
	Gene        string  `json:"gene"`
	Correlation float64 `json:"correlation"`
}

// GenerationAnalytics is the write-once aggregate for one generation.
type GenerationAnalytics struct {
	Generation     int                `json:"generation"`
	PopulationSize int                `json:"population_size"`
	AvgFitness     float64            `json:"avg_fitness"`
	BestFitness    float64            `json:"best_fitness"`
	WorstFitness   float64            `json:"worst_fitness"`
	StdDevFitness  float64            `json:"stddev_fitness"`
	Diversity      float64            `json:"diversity"`
	Convergence    map[string]float64 `json:"convergence"`
	Species        []SpeciesCluster   `json:"species"`
	Pareto         *ParetoFront       `json:"pareto"`
	GeneImportance []GeneImportance   `json:"gene_importance"`
	Config         EvolutionConfig    `json:"config"`
	CreatedAt      time.Time          `json:"created_at"`
}

// AnalyticsStore persists generation-analytics snapshots.
type AnalyticsStore interface {
	SaveAnalytics(ctx context.Context, analytics *GenerationAnalytics) error
}

// NopAnalyticsStore discards snapshots.
type NopAnalyticsStore struct{}

func (NopAnalyticsStore) SaveAnalytics(ctx context.Context, analytics *GenerationAnalytics) error {
	return nil
}

// BuildGenerationAnalytics computes the full per-generation aggregate:
// fitness statistics, diversity, per-gene convergence, species clusters, the
// Pareto front and the gene-importance ranking, with the operator
// configuration in effect recorded alongside.
func (e *Engine) BuildGenerationAnalytics(population []Individual, fitness FitnessMap, cfg EvolutionConfig, generation int) *GenerationAnalytics {
	analytics := &GenerationAnalytics{
		Generation:     generation,
		PopulationSize: len(population),
		Config:         cfg,
		CreatedAt:      time.Now().UTC(),
	}
	if len(population) == 0 {
		return analytics
	}

	composites := make([]float64, len(population))
	for i, ind := range population {
		composites[i] = fitness.Composite(ind.ID)
	}

	best, worst := composites[0], composites[0]
	var sum float64
	for _, c := range composites {
		sum += c
		if c > best {
			best = c
		}
		if c < worst {
			worst = c
		}
	}
	mean := sum / float64(len(composites))

	var variance float64
	for _, c := range composites {
		d := c - mean
		variance += d * d
	}

	analytics.AvgFitness = mean
	analytics.BestFitness = best
	analytics.WorstFitness = worst
	analytics.StdDevFitness = math.Sqrt(variance / float64(len(composites)))
	analytics.Diversity = e.schema.PopulationDiversity(population)
	analytics.Convergence = e.schema.GeneConvergence(population)
	analytics.Species = e.schema.Speciate(e.rng, population, fitness, cfg.TargetSpecies, generation)
	analytics.Pareto = BuildParetoFront(population, fitness, generation)
	analytics.GeneImportance = e.schema.RankGeneImportance(population, fitness)

	return analytics
}

// RankGeneImportance computes the Pearson correlation between each gene's
// value across the population and composite fitness, ranked by absolute
// correlation, top 15. Populations below three individuals yield an empty
// list; so do genes with zero variance.
func (s *Schema) RankGeneImportance(population []Individual, fitness FitnessMap) []GeneImportance {
	if len(population) < minImportancePopulation {
		return nil
	}

	n := len(population)
	vectors := make([][]float64, n)
	composites := make([]float64, n)
	for i, ind := range population {
		vectors[i] = s.Flatten(ind.DNA)
		composites[i] = fitness.Composite(ind.ID)
	}

	var importance []GeneImportance
	for gi, r := range s.ranges {
		values := make([]float64, n)
		for i, vec := range vectors {
			values[i] = vec[gi]
		}
		correlation := pearson(values, composites)
		if math.IsNaN(correlation) {
			continue
		}
		importance = append(importance, GeneImportance{
			Gene:        qualifiedGene(r),
			Correlation: correlation,
		})
	}

	sort.SliceStable(importance, func(i, j int) bool {
		return math.Abs(importance[i].Correlation) > math.Abs(importance[j].Correlation)
	})
	if len(importance) > geneImportanceLimit {
		importance = importance[:geneImportanceLimit]
	}
	return importance
}

// pearson returns the Pearson correlation coefficient, NaN when either
// series has zero variance.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}

// EvolutionSummary aggregates the whole run so far.
type EvolutionSummary struct {
	TotalGenerations      int                  `json:"total_generations"`
	ArchiveSize           int                  `json:"archive_size"`
	BestFitness           float64              `json:"best_fitness"`
	BestBotID             string               `json:"best_bot_id"`
	BestGeneration        int                  `json:"best_generation"`
	FitnessTrend          []float64            `json:"fitness_trend"`
	DiversityTrend        []float64            `json:"diversity_trend"`
	ArchetypeDistribution map[string]int       `json:"archetype_distribution"`
	LatestGeneration      *GenerationAnalytics `json:"latest_generation,omitempty"`
}

// Tracker records generation analytics across a run and answers
// cross-generation trend queries. It persists each snapshot through the
// configured store and reads archetype labels off the Hall of Fame, where an
// external classifier has attached them.
type Tracker struct {
	mu          sync.Mutex
	history     []*GenerationAnalytics
	store       AnalyticsStore
	hallOfFame  *HallOfFame
	trendWindow int
}

// NewTracker creates a tracker over the given archive and persistence sink.
// A nil store disables persistence. trendWindow bounds the fitness and
// diversity trends; 0 or less defaults to 10.
func NewTracker(hallOfFame *HallOfFame, store AnalyticsStore, trendWindow int) *Tracker {
	if store == nil {
		store = NopAnalyticsStore{}
	}
	if trendWindow <= 0 {
		trendWindow = 10
	}
	return &Tracker{
		store:       store,
		hallOfFame:  hallOfFame,
		trendWindow: trendWindow,
	}
}

// Record persists a generation snapshot and adds it to the run history.
func (t *Tracker) Record(ctx context.Context, analytics *GenerationAnalytics) error {
	if analytics == nil {
		return fmt.Errorf("analytics cannot be nil")
	}
	if err := t.store.SaveAnalytics(ctx, analytics); err != nil {
		return fmt.Errorf("failed to persist generation analytics: %w", err)
	}

	t.mu.Lock()
	t.history = append(t.history, analytics)
	t.mu.Unlock()
	return nil
}

// Summary aggregates the run: generations observed, archive state, best-ever
// individual, recent fitness and diversity trends and the distribution of
// archetype labels across the archive.
func (t *Tracker) Summary() EvolutionSummary {
	t.mu.Lock()
	history := make([]*GenerationAnalytics, len(t.history))
	copy(history, t.history)
	t.mu.Unlock()

	summary := EvolutionSummary{
		TotalGenerations:      len(history),
		ArchetypeDistribution: make(map[string]int),
	}

	start := len(history) - t.trendWindow
	if start < 0 {
		start = 0
	}
	for _, a := range history[start:] {
		summary.FitnessTrend = append(summary.FitnessTrend, a.AvgFitness)
		summary.DiversityTrend = append(summary.DiversityTrend, a.Diversity)
	}
	if len(history) > 0 {
		summary.LatestGeneration = history[len(history)-1]
	}

	if t.hallOfFame != nil {
		summary.ArchiveSize = t.hallOfFame.Len()
		if best := t.hallOfFame.Best(); best != nil {
			summary.BestFitness = best.Fitness.Composite
			summary.BestBotID = best.BotID
			summary.BestGeneration = best.Generation
		}
		for _, entry := range t.hallOfFame.All(0, 0) {
			if entry.Archetype != "" {
				summary.ArchetypeDistribution[entry.Archetype]++
			}
		}
	}
	return summary
}
