package genetic

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EvolutionConfig holds every operator choice and tuning knob for one
// generation step. It is threaded explicitly into each call and read fresh
// every time; the engine keeps no cached copy, so callers may change it
// between generations.
type EvolutionConfig struct {
	SelectionMethod SelectionMethod `mapstructure:"selection_method" json:"selection_method"`
	CrossoverMethod CrossoverMethod `mapstructure:"crossover_method" json:"crossover_method"`
	MutationMethod  MutationMethod  `mapstructure:"mutation_method" json:"mutation_method"`

	EliteCount     int `mapstructure:"elite_count" json:"elite_count"`
	TournamentSize int `mapstructure:"tournament_size" json:"tournament_size"`

	MutationRate     float64 `mapstructure:"mutation_rate" json:"mutation_rate"`
	MutationStrength float64 `mapstructure:"mutation_strength" json:"mutation_strength"`
	MutationEta      float64 `mapstructure:"mutation_eta" json:"mutation_eta"`
	CauchyScale      float64 `mapstructure:"cauchy_scale" json:"cauchy_scale"`

	// Adaptive mutation decay: rate = max(min_rate, initial_rate*decay^gen).
	AdaptiveInitialRate float64 `mapstructure:"adaptive_initial_rate" json:"adaptive_initial_rate"`
	AdaptiveDecay       float64 `mapstructure:"adaptive_decay" json:"adaptive_decay"`
	AdaptiveMinRate     float64 `mapstructure:"adaptive_min_rate" json:"adaptive_min_rate"`

	CrossoverPoints int     `mapstructure:"crossover_points" json:"crossover_points"`
	CrossoverAlpha  float64 `mapstructure:"crossover_alpha" json:"crossover_alpha"`
	CrossoverEta    float64 `mapstructure:"crossover_eta" json:"crossover_eta"`

	ImmigrationRate float64 `mapstructure:"immigration_rate" json:"immigration_rate"`
	NicheRadius     float64 `mapstructure:"niche_radius" json:"niche_radius"`
	TargetSpecies   int     `mapstructure:"target_species" json:"target_species"`

	// ParetoWeight and DiversityWeight tune how downstream reporting blends
	// multi-objective rank and diversity pressure into its views.
	ParetoWeight    float64 `mapstructure:"pareto_weight" json:"pareto_weight"`
	DiversityWeight float64 `mapstructure:"diversity_weight" json:"diversity_weight"`
}

// DefaultEvolutionConfig returns the standard operator configuration.
func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		SelectionMethod:     SelectionTournament,
		CrossoverMethod:     CrossoverUniform,
		MutationMethod:      MutationGaussian,
		EliteCount:          2,
		TournamentSize:      3,
		MutationRate:        0.15,
		MutationStrength:    0.2,
		MutationEta:         20,
		CauchyScale:         0.1,
		AdaptiveInitialRate: 0.3,
		AdaptiveDecay:       0.95,
		AdaptiveMinRate:     0.05,
		CrossoverPoints:     2,
		CrossoverAlpha:      0.3,
		CrossoverEta:        15,
		ImmigrationRate:     0.1,
		NicheRadius:         0.3,
		TargetSpecies:       5,
		ParetoWeight:        0.5,
		DiversityWeight:     0.5,
	}
}

// EvolutionResult is the output of one generation step.
type EvolutionResult struct {
	// Survivors are the elites, passed through untouched.
	Survivors []Individual `json:"survivors"`
	// Offspring are freshly bred or immigrated individuals.
	Offspring []Individual `json:"offspring"`
	// ReplacedIDs lists the individuals that did not survive.
	ReplacedIDs []string `json:"replaced_ids"`
	// EffectiveMutationRate is the rate actually applied this generation,
	// after adaptive decay if configured.
	EffectiveMutationRate float64 `json:"effective_mutation_rate"`
}

// Observer receives generation-step notifications, e.g. for metrics export.
type Observer interface {
	ObserveGeneration(generation int, result *EvolutionResult)
}

// Engine composes the genetic operators into generation steps. It holds the
// schema and random source but no per-generation state; every Evolve call is
// a pure function of its inputs plus declared randomness.
type Engine struct {
	schema    *Schema
	rng       *rand.Rand
	logger    zerolog.Logger
	observers []Observer
}

// EngineOption customizes Engine construction.
type EngineOption func(*Engine)

// WithRand sets the random source, primarily for deterministic tests.
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// WithObserver registers a generation observer.
func WithObserver(obs Observer) EngineOption {
	return func(e *Engine) { e.observers = append(e.observers, obs) }
}

// NewEngine creates an evolution engine over the given schema.
func NewEngine(schema *Schema, opts ...EngineOption) *Engine {
	e := &Engine{
		schema: schema,
		logger: log.With().Str("component", "genetic_engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

// Schema returns the engine's gene schema.
func (e *Engine) Schema() *Schema {
	return e.schema
}

// Evolve runs one generation step: elitism, breeding via the configured
// select/crossover/mutate operators, and random immigration. The input
// population and fitness map are never mutated; survivors plus offspring
// always total the input population size.
func (e *Engine) Evolve(population []Individual, fitness FitnessMap, cfg EvolutionConfig, generation int) (*EvolutionResult, error) {
	if len(population) == 0 {
		return nil, fmt.Errorf("cannot evolve an empty population")
	}

	ranked := rankByComposite(population, fitness)

	eliteCount := cfg.EliteCount
	if eliteCount < 0 {
		eliteCount = 0
	}
	if eliteCount > len(ranked) {
		eliteCount = len(ranked)
	}

	// Elites pass through untouched; this is the only path where an input
	// individual survives into the result.
	survivors := make([]Individual, eliteCount)
	copy(survivors, ranked[:eliteCount])

	effectiveRate := EffectiveMutationRate(cfg.MutationMethod, generation,
		cfg.MutationRate, cfg.AdaptiveInitialRate, cfg.AdaptiveDecay, cfg.AdaptiveMinRate)

	replacedCount := len(ranked) - eliteCount

	// Immigration rate is clamped so survivors+offspring always equals the
	// population size, whatever config a caller hands in.
	immigrationRate := cfg.ImmigrationRate
	if immigrationRate < 0 {
		immigrationRate = 0
	}
	if immigrationRate > 1 {
		immigrationRate = 1
	}
	immigrantCount := int(float64(replacedCount) * immigrationRate)
	breedCount := replacedCount - immigrantCount

	offspring := make([]Individual, 0, replacedCount)
	for i := 0; i < breedCount; i++ {
		child, err := e.breed(ranked, fitness, cfg, effectiveRate, generation)
		if err != nil {
			return nil, err
		}
		offspring = append(offspring, child)
	}

	// Immigrants are fresh uniform draws injected for diversity.
	for i := 0; i < immigrantCount; i++ {
		offspring = append(offspring, Individual{
			ID:         uuid.New().String(),
			DNA:        e.schema.RandomDNA(e.rng),
			Generation: generation + 1,
		})
	}

	replacedIDs := make([]string, 0, replacedCount)
	for _, ind := range ranked[eliteCount:] {
		replacedIDs = append(replacedIDs, ind.ID)
	}

	result := &EvolutionResult{
		Survivors:             survivors,
		Offspring:             offspring,
		ReplacedIDs:           replacedIDs,
		EffectiveMutationRate: effectiveRate,
	}

	e.logger.Debug().
		Int("generation", generation).
		Int("population", len(population)).
		Int("survivors", len(survivors)).
		Int("bred", breedCount).
		Int("immigrants", immigrantCount).
		Float64("effective_mutation_rate", effectiveRate).
		Msg("Generation evolved")

	for _, obs := range e.observers {
		obs.ObserveGeneration(generation, result)
	}

	return result, nil
}

// breed produces one child via select, crossover and mutate.
func (e *Engine) breed(ranked []Individual, fitness FitnessMap, cfg EvolutionConfig, effectiveRate float64, generation int) (Individual, error) {
	parents, err := SelectParents(e.rng, ranked, fitness, cfg.SelectionMethod, cfg.TournamentSize, 2)
	if err != nil {
		return Individual{}, err
	}
	p1, p2 := parents[0], parents[1]

	childDNA, err := e.schema.Crossover(e.rng, cfg.CrossoverMethod, p1.DNA, p2.DNA, CrossoverOptions{
		Points: cfg.CrossoverPoints,
		Alpha:  cfg.CrossoverAlpha,
		Eta:    cfg.CrossoverEta,
	})
	if err != nil {
		return Individual{}, err
	}

	childDNA, err = e.schema.Mutate(e.rng, cfg.MutationMethod, childDNA, MutationOptions{
		Rate:        effectiveRate,
		Strength:    cfg.MutationStrength,
		Eta:         cfg.MutationEta,
		CauchyScale: cfg.CauchyScale,
	})
	if err != nil {
		return Individual{}, err
	}

	return Individual{
		ID:         uuid.New().String(),
		DNA:        childDNA,
		Generation: generation + 1,
		Group:      p1.Group,
		Symbol:     p1.Symbol,
	}, nil
}
