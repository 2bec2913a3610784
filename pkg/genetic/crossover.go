package genetic

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// CrossoverMethod selects which recombination operator is in effect.
type CrossoverMethod string

const (
	CrossoverUniform    CrossoverMethod = "uniform"
	CrossoverMultipoint CrossoverMethod = "multipoint"
	CrossoverBLX        CrossoverMethod = "blx_alpha"
	CrossoverSBX        CrossoverMethod = "sbx"
)

// CrossoverOptions carries the per-operator tuning knobs.
type CrossoverOptions struct {
	// Points is the number of cut points for multipoint crossover.
	Points int
	// Alpha is the BLX exploration factor; 0 keeps children between parents.
	Alpha float64
	// Eta is the SBX distribution index; higher keeps children closer to
	// parents.
	Eta float64
}

// sbxEqualGeneEpsilon short-circuits SBX when parent genes coincide, which
// would otherwise produce a degenerate spread factor.
const sbxEqualGeneEpsilon = 1e-14

// Crossover combines two parent DNA vectors into one child using the
// configured method. The child is always freshly allocated and clamped into
// range before return.
func (s *Schema) Crossover(rng *rand.Rand, method CrossoverMethod, p1, p2 StrategyDNA, opts CrossoverOptions) (StrategyDNA, error) {
	v1 := s.Flatten(p1)
	v2 := s.Flatten(p2)

	var child []float64
	switch method {
	case CrossoverUniform, "":
		child = crossoverUniform(rng, v1, v2)
	case CrossoverMultipoint:
		child = crossoverMultipoint(rng, v1, v2, opts.Points)
	case CrossoverBLX:
		child = crossoverBLX(rng, v1, v2, opts.Alpha)
	case CrossoverSBX:
		child = crossoverSBX(rng, v1, v2, opts.Eta)
	default:
		return StrategyDNA{}, fmt.Errorf("unknown crossover method: %s", method)
	}

	dna, err := s.Unflatten(child)
	if err != nil {
		return StrategyDNA{}, err
	}
	return s.Clamp(dna), nil
}

// crossoverUniform flips a 50/50 coin per gene.
func crossoverUniform(rng *rand.Rand, v1, v2 []float64) []float64 {
	child := make([]float64, len(v1))
	for i := range v1 {
		if rng.Float64() < 0.5 {
			child[i] = v1[i]
		} else {
			child[i] = v2[i]
		}
	}
	return child
}

// crossoverMultipoint picks k distinct sorted cut indices and alternates
// which parent supplies each segment.
func crossoverMultipoint(rng *rand.Rand, v1, v2 []float64, points int) []float64 {
	n := len(v1)
	if points <= 0 {
		points = 2
	}
	if points >= n {
		points = n - 1
	}

	cuts := make(map[int]bool, points)
	for len(cuts) < points {
		cuts[1+rng.Intn(n-1)] = true
	}
	sorted := make([]int, 0, points)
	for c := range cuts {
		sorted = append(sorted, c)
	}
	sort.Ints(sorted)

	child := make([]float64, n)
	fromFirst := true
	cutIdx := 0
	for i := 0; i < n; i++ {
		if cutIdx < len(sorted) && i == sorted[cutIdx] {
			fromFirst = !fromFirst
			cutIdx++
		}
		if fromFirst {
			child[i] = v1[i]
		} else {
			child[i] = v2[i]
		}
	}
	return child
}

// crossoverBLX samples each gene uniformly from the blend interval
// [lo-alpha*range, hi+alpha*range], allowing exploration beyond both parents.
// Alpha 0 degenerates to uniform sampling within [lo, hi].
func crossoverBLX(rng *rand.Rand, v1, v2 []float64, alpha float64) []float64 {
	child := make([]float64, len(v1))
	for i := range v1 {
		lo := math.Min(v1[i], v2[i])
		hi := math.Max(v1[i], v2[i])
		span := hi - lo
		low := lo - alpha*span
		high := hi + alpha*span
		child[i] = low + rng.Float64()*(high-low)
	}
	return child
}

// crossoverSBX is simulated binary crossover with distribution index eta.
func crossoverSBX(rng *rand.Rand, v1, v2 []float64, eta float64) []float64 {
	if eta <= 0 {
		eta = 15
	}

	child := make([]float64, len(v1))
	for i := range v1 {
		g1, g2 := v1[i], v2[i]
		if math.Abs(g1-g2) < sbxEqualGeneEpsilon {
			child[i] = g1
			continue
		}

		u := rng.Float64()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(eta+1))
		}

		if rng.Float64() < 0.5 {
			child[i] = 0.5 * ((1+beta)*g1 + (1-beta)*g2)
		} else {
			child[i] = 0.5 * ((1-beta)*g1 + (1+beta)*g2)
		}
	}
	return child
}
