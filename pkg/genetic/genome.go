// Package genetic implements the evolutionary-optimization core used to
// search the numeric parameter space of trading strategies. It owns the gene
// schema, the genetic operators (selection, crossover, mutation), diversity
// preservation, multi-objective Pareto analysis, the Hall of Fame archive and
// per-generation analytics. Fitness evaluation and trade execution live
// outside this package; callers hand in populations with externally computed
// fitness and receive the next generation back.
package genetic

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// GeneCategory identifies one group of related strategy parameters.
type GeneCategory string

const (
	CategoryEntryWeights GeneCategory = "entry_weights"
	CategoryIndicator    GeneCategory = "indicator_params"
	CategorySizing       GeneCategory = "sizing_params"
	CategoryExit         GeneCategory = "exit_params"
	CategoryRegime       GeneCategory = "regime_params"
	CategoryTiming       GeneCategory = "timing_params"
)

// GeneRange declares the valid interval for a single gene.
type GeneRange struct {
	Name     string       `json:"name"`
	Category GeneCategory `json:"category"`
	Min      float64      `json:"min"`
	Max      float64      `json:"max"`
}

// rangeEpsilon is the tolerance Validate allows beyond a declared bound
// before reporting an out-of-range violation.
const rangeEpsilon = 1e-9

// Schema is the immutable gene-range table shared by every operator that
// needs normalization. It is built once with NewSchema and passed by
// reference; the declaration order of the ranges is the canonical flatten
// order for the whole engine.
type Schema struct {
	ranges []GeneRange
	index  map[GeneCategory]map[string]int
}

// NewSchema builds the declarative gene-range table for strategy DNA.
func NewSchema() *Schema {
	ranges := []GeneRange{
		// Entry signal weights
		{Name: "rsi_weight", Category: CategoryEntryWeights, Min: 0, Max: 1},
		{Name: "macd_weight", Category: CategoryEntryWeights, Min: 0, Max: 1},
		{Name: "bollinger_weight", Category: CategoryEntryWeights, Min: 0, Max: 1},
		{Name: "volume_weight", Category: CategoryEntryWeights, Min: 0, Max: 1},
		{Name: "momentum_weight", Category: CategoryEntryWeights, Min: 0, Max: 1},
		{Name: "sentiment_weight", Category: CategoryEntryWeights, Min: 0, Max: 1},

		// Indicator parameters
		{Name: "rsi_period", Category: CategoryIndicator, Min: 5, Max: 30},
		{Name: "fast_period", Category: CategoryIndicator, Min: 5, Max: 20},
		{Name: "slow_period", Category: CategoryIndicator, Min: 21, Max: 60},
		{Name: "signal_period", Category: CategoryIndicator, Min: 5, Max: 15},
		{Name: "bollinger_period", Category: CategoryIndicator, Min: 10, Max: 30},
		{Name: "bollinger_stddev", Category: CategoryIndicator, Min: 1.5, Max: 3},
		{Name: "atr_period", Category: CategoryIndicator, Min: 7, Max: 28},

		// Position sizing parameters
		{Name: "base_position_pct", Category: CategorySizing, Min: 0.01, Max: 0.25},
		{Name: "max_position_pct", Category: CategorySizing, Min: 0.05, Max: 0.5},
		{Name: "kelly_fraction", Category: CategorySizing, Min: 0.1, Max: 1},
		{Name: "volatility_scalar", Category: CategorySizing, Min: 0.5, Max: 2},

		// Exit strategy parameters
		{Name: "stop_loss_pct", Category: CategoryExit, Min: 0.005, Max: 0.05},
		{Name: "take_profit_pct", Category: CategoryExit, Min: 0.06, Max: 0.15},
		{Name: "trailing_stop_pct", Category: CategoryExit, Min: 0.005, Max: 0.05},
		{Name: "max_hold_hours", Category: CategoryExit, Min: 1, Max: 168},

		// Regime filter parameters
		{Name: "trend_threshold", Category: CategoryRegime, Min: 0.1, Max: 0.9},
		{Name: "volatility_ceiling", Category: CategoryRegime, Min: 0.2, Max: 1},
		{Name: "regime_lookback", Category: CategoryRegime, Min: 20, Max: 200},

		// Timing parameters
		{Name: "entry_cooldown_minutes", Category: CategoryTiming, Min: 5, Max: 240},
		{Name: "signal_confirmation_bars", Category: CategoryTiming, Min: 1, Max: 5},
		{Name: "session_start_hour", Category: CategoryTiming, Min: 0, Max: 12},
		{Name: "session_end_hour", Category: CategoryTiming, Min: 12, Max: 23},
	}

	index := make(map[GeneCategory]map[string]int)
	for i, r := range ranges {
		if index[r.Category] == nil {
			index[r.Category] = make(map[string]int)
		}
		index[r.Category][r.Name] = i
	}

	return &Schema{ranges: ranges, index: index}
}

// Ranges returns the gene-range table in canonical order. Callers must not
// modify the returned slice.
func (s *Schema) Ranges() []GeneRange {
	return s.ranges
}

// Size returns the number of genes in the schema.
func (s *Schema) Size() int {
	return len(s.ranges)
}

// Range looks up the declared range for a gene.
func (s *Schema) Range(category GeneCategory, name string) (GeneRange, bool) {
	if byName, ok := s.index[category]; ok {
		if i, ok := byName[name]; ok {
			return s.ranges[i], true
		}
	}
	return GeneRange{}, false
}

// StrategyDNA is the fixed-schema numeric parameterization of a candidate
// strategy: one gene map per category, keyed by gene name.
type StrategyDNA struct {
	EntryWeights    map[string]float64 `json:"entry_weights" yaml:"entry_weights"`
	IndicatorParams map[string]float64 `json:"indicator_params" yaml:"indicator_params"`
	SizingParams    map[string]float64 `json:"sizing_params" yaml:"sizing_params"`
	ExitParams      map[string]float64 `json:"exit_params" yaml:"exit_params"`
	RegimeParams    map[string]float64 `json:"regime_params" yaml:"regime_params"`
	TimingParams    map[string]float64 `json:"timing_params" yaml:"timing_params"`
}

func newStrategyDNA() StrategyDNA {
	return StrategyDNA{
		EntryWeights:    make(map[string]float64),
		IndicatorParams: make(map[string]float64),
		SizingParams:    make(map[string]float64),
		ExitParams:      make(map[string]float64),
		RegimeParams:    make(map[string]float64),
		TimingParams:    make(map[string]float64),
	}
}

// category returns the gene map backing one category.
func (d *StrategyDNA) category(c GeneCategory) map[string]float64 {
	switch c {
	case CategoryEntryWeights:
		return d.EntryWeights
	case CategoryIndicator:
		return d.IndicatorParams
	case CategorySizing:
		return d.SizingParams
	case CategoryExit:
		return d.ExitParams
	case CategoryRegime:
		return d.RegimeParams
	case CategoryTiming:
		return d.TimingParams
	}
	return nil
}

// Gene returns the value of a single gene and whether it is present.
func (d *StrategyDNA) Gene(category GeneCategory, name string) (float64, bool) {
	m := d.category(category)
	if m == nil {
		return 0, false
	}
	v, ok := m[name]
	return v, ok
}

// Clone returns a deep copy of the DNA. Operators always work on clones so
// that caller-owned individuals are never mutated in place.
func (d StrategyDNA) Clone() StrategyDNA {
	clone := newStrategyDNA()
	for _, c := range []GeneCategory{
		CategoryEntryWeights, CategoryIndicator, CategorySizing,
		CategoryExit, CategoryRegime, CategoryTiming,
	} {
		src := d.category(c)
		dst := clone.category(c)
		for k, v := range src {
			dst[k] = v
		}
	}
	return clone
}

// RandomDNA draws every gene uniformly from its declared range.
func (s *Schema) RandomDNA(rng *rand.Rand) StrategyDNA {
	dna := newStrategyDNA()
	for _, r := range s.ranges {
		dna.category(r.Category)[r.Name] = r.Min + rng.Float64()*(r.Max-r.Min)
	}
	return dna
}

// Clamp repairs DNA into the declared ranges. Missing genes default to the
// range minimum and non-finite values collapse to the nearest bound. Clamp
// never reports an error; use Validate to diagnose instead of repair.
func (s *Schema) Clamp(dna StrategyDNA) StrategyDNA {
	out := newStrategyDNA()
	for _, r := range s.ranges {
		v := r.Min
		if src := dna.category(r.Category); src != nil {
			if g, ok := src[r.Name]; ok && !math.IsNaN(g) {
				v = g
			}
		}
		if v < r.Min {
			v = r.Min
		} else if v > r.Max {
			v = r.Max
		}
		out.category(r.Category)[r.Name] = v
	}
	return out
}

// Flatten converts DNA to an ordered numeric vector in canonical schema
// order. Missing genes flatten to their range minimum so that array-based
// operators always see a full-length vector.
func (s *Schema) Flatten(dna StrategyDNA) []float64 {
	vec := make([]float64, len(s.ranges))
	for i, r := range s.ranges {
		vec[i] = r.Min
		if src := dna.category(r.Category); src != nil {
			if g, ok := src[r.Name]; ok {
				vec[i] = g
			}
		}
	}
	return vec
}

// Unflatten reconstructs DNA from a flattened vector. The round trip through
// Flatten is exact for all valid DNA.
func (s *Schema) Unflatten(vec []float64) (StrategyDNA, error) {
	if len(vec) != len(s.ranges) {
		return StrategyDNA{}, fmt.Errorf("gene vector has %d values, schema declares %d", len(vec), len(s.ranges))
	}
	dna := newStrategyDNA()
	for i, r := range s.ranges {
		dna.category(r.Category)[r.Name] = vec[i]
	}
	return dna, nil
}

// ValidationError describes a single DNA violation.
type ValidationError struct {
	Gene    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Gene, e.Message)
}

// ValidationErrors is a collection of DNA violations.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("dna validation failed: %s", strings.Join(msgs, "; "))
}

// Valid reports whether no violations were found.
func (e ValidationErrors) Valid() bool {
	return len(e) == 0
}

// Validate diagnoses DNA against the schema: missing genes, non-finite
// values, out-of-range values beyond a small epsilon and cross-gene ordering
// constraints. It never repairs; callers that want repair use Clamp.
func (s *Schema) Validate(dna StrategyDNA) ValidationErrors {
	var errs ValidationErrors
	for _, r := range s.ranges {
		src := dna.category(r.Category)
		if src == nil {
			errs = append(errs, ValidationError{
				Gene:    qualifiedGene(r),
				Message: fmt.Sprintf("category %s is missing", r.Category),
			})
			continue
		}
		v, ok := src[r.Name]
		if !ok {
			errs = append(errs, ValidationError{Gene: qualifiedGene(r), Message: "gene is missing"})
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, ValidationError{
				Gene:    qualifiedGene(r),
				Message: fmt.Sprintf("value %v is not finite", v),
			})
			continue
		}
		if v < r.Min-rangeEpsilon || v > r.Max+rangeEpsilon {
			errs = append(errs, ValidationError{
				Gene:    qualifiedGene(r),
				Message: fmt.Sprintf("value %g outside range [%g, %g]", v, r.Min, r.Max),
			})
		}
	}

	// Cross-gene ordering constraints.
	if fast, ok1 := dna.Gene(CategoryIndicator, "fast_period"); ok1 {
		if slow, ok2 := dna.Gene(CategoryIndicator, "slow_period"); ok2 && fast >= slow {
			errs = append(errs, ValidationError{
				Gene:    "indicator_params.fast_period",
				Message: fmt.Sprintf("fast period %g must be below slow period %g", fast, slow),
			})
		}
	}
	if sl, ok1 := dna.Gene(CategoryExit, "stop_loss_pct"); ok1 {
		if tp, ok2 := dna.Gene(CategoryExit, "take_profit_pct"); ok2 && sl >= tp {
			errs = append(errs, ValidationError{
				Gene:    "exit_params.stop_loss_pct",
				Message: fmt.Sprintf("stop-loss distance %g must be below take-profit distance %g", sl, tp),
			})
		}
	}
	return errs
}

func qualifiedGene(r GeneRange) string {
	return fmt.Sprintf("%s.%s", r.Category, r.Name)
}

// DNASchemaVersion is the current DNA snapshot schema version.
const DNASchemaVersion = "1.0.0"

// dnaSnapshot is the persisted wire form of StrategyDNA.
type dnaSnapshot struct {
	SchemaVersion string      `json:"schema_version"`
	DNA           StrategyDNA `json:"dna"`
}

// Serialize encodes DNA as a versioned JSON snapshot.
func (s *Schema) Serialize(dna StrategyDNA) ([]byte, error) {
	data, err := json.Marshal(dnaSnapshot{SchemaVersion: DNASchemaVersion, DNA: dna})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize dna: %w", err)
	}
	return data, nil
}

// Deserialize decodes a versioned DNA snapshot. Snapshots written by a newer
// major schema version are rejected; older snapshots are accepted and
// repaired with Clamp so legacy archives stay loadable.
func (s *Schema) Deserialize(data []byte) (StrategyDNA, error) {
	var snap dnaSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return StrategyDNA{}, fmt.Errorf("failed to deserialize dna: %w", err)
	}
	if snap.SchemaVersion == "" {
		return StrategyDNA{}, fmt.Errorf("dna snapshot is missing schema_version")
	}

	version, err := semver.NewVersion(snap.SchemaVersion)
	if err != nil {
		return StrategyDNA{}, fmt.Errorf("invalid dna schema version %q: %w", snap.SchemaVersion, err)
	}
	current := semver.MustParse(DNASchemaVersion)
	if version.Major() > current.Major() {
		return StrategyDNA{}, fmt.Errorf("dna schema version %s is newer than supported version %s",
			snap.SchemaVersion, DNASchemaVersion)
	}

	return s.Clamp(snap.DNA), nil
}
