package genetic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenotypicDistance_SelfIsZero(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()

	for i := 0; i < 10; i++ {
		dna := s.RandomDNA(rng)
		assert.Zero(t, s.GenotypicDistance(dna, dna))
	}
}

func TestGenotypicDistance_SymmetricAndPositive(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()
	a := s.RandomDNA(rng)
	b := s.RandomDNA(rng)

	dab := s.GenotypicDistance(a, b)
	dba := s.GenotypicDistance(b, a)
	assert.InDelta(t, dab, dba, 1e-12)
	assert.Greater(t, dab, 0.0)
}

func TestGenotypicDistance_NormalizedByRange(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()
	a := s.RandomDNA(rng)
	b := a.Clone()

	// Shift one gene across its whole declared range: contributes exactly 1.
	b.ExitParams["max_hold_hours"] = 168
	a.ExitParams["max_hold_hours"] = 1
	assert.InDelta(t, 1.0, s.GenotypicDistance(a, b), 1e-12)
}

func TestPhenotypicDistance(t *testing.T) {
	a := FitnessScores{Return: 1}
	b := FitnessScores{Return: 0, RiskAdjusted: 1}

	assert.InDelta(t, math.Sqrt2, PhenotypicDistance(a, b), 1e-12)
	assert.Zero(t, PhenotypicDistance(a, a))
}

func TestPopulationDiversity_SmallPopulations(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()

	assert.Zero(t, s.PopulationDiversity(nil))
	assert.Zero(t, s.PopulationDiversity([]Individual{{ID: "a", DNA: s.RandomDNA(rng)}}))
}

func TestPopulationDiversity_IdenticalPopulation(t *testing.T) {
	s := NewSchema()
	dna := s.RandomDNA(newTestRand())

	population := make([]Individual, 10)
	for i := range population {
		population[i] = Individual{ID: string(rune('a' + i)), DNA: dna.Clone()}
	}
	assert.Zero(t, s.PopulationDiversity(population))
}

func TestPopulationDiversity_MatchesSequentialComputation(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()

	population := make([]Individual, 17)
	for i := range population {
		population[i] = Individual{ID: string(rune('a' + i)), DNA: s.RandomDNA(rng)}
	}

	var sum float64
	for i := 0; i < len(population); i++ {
		for j := i + 1; j < len(population); j++ {
			sum += s.GenotypicDistance(population[i].DNA, population[j].DNA)
		}
	}
	pairs := float64(len(population)*(len(population)-1)) / 2

	assert.InDelta(t, sum/pairs, s.PopulationDiversity(population), 1e-9)
}

func TestGeneConvergence_IdenticalPopulationFullyConverged(t *testing.T) {
	s := NewSchema()
	dna := s.RandomDNA(newTestRand())

	population := []Individual{
		{ID: "a", DNA: dna.Clone()},
		{ID: "b", DNA: dna.Clone()},
		{ID: "c", DNA: dna.Clone()},
	}

	convergence := s.GeneConvergence(population)
	require.Len(t, convergence, s.Size())
	for gene, c := range convergence {
		assert.InDelta(t, 1.0, c, 1e-12, "gene %s", gene)
	}
}

func TestGeneConvergence_SpreadPopulationLow(t *testing.T) {
	s := NewSchema()

	// Two individuals at opposite range extremes: stddev is half the range,
	// so convergence is 0.5 for every gene.
	lo := newStrategyDNA()
	hi := newStrategyDNA()
	for _, r := range s.Ranges() {
		lo.category(r.Category)[r.Name] = r.Min
		hi.category(r.Category)[r.Name] = r.Max
	}

	convergence := s.GeneConvergence([]Individual{{ID: "lo", DNA: lo}, {ID: "hi", DNA: hi}})
	for gene, c := range convergence {
		assert.InDelta(t, 0.5, c, 1e-12, "gene %s", gene)
	}
}

func TestFitnessSharing_IsolatedIndividualKeepsFitness(t *testing.T) {
	s := NewSchema()

	lo := newStrategyDNA()
	hi := newStrategyDNA()
	for _, r := range s.Ranges() {
		lo.category(r.Category)[r.Name] = r.Min
		hi.category(r.Category)[r.Name] = r.Max
	}
	population := []Individual{{ID: "lo", DNA: lo}, {ID: "hi", DNA: hi}}
	fitness := FitnessMap{
		"lo": {Composite: 0.4},
		"hi": {Composite: 0.8},
	}

	// Distance between extremes is sqrt(len) >> radius: no sharing at all.
	shared := s.FitnessSharing(population, fitness, 0.3)
	assert.InDelta(t, 0.4, shared["lo"], 1e-12)
	assert.InDelta(t, 0.8, shared["hi"], 1e-12)
}

func TestFitnessSharing_CrowdedNicheDerated(t *testing.T) {
	s := NewSchema()
	dna := s.RandomDNA(newTestRand())

	population := []Individual{
		{ID: "a", DNA: dna.Clone()},
		{ID: "b", DNA: dna.Clone()},
		{ID: "c", DNA: dna.Clone()},
	}
	fitness := FitnessMap{
		"a": {Composite: 0.9},
		"b": {Composite: 0.9},
		"c": {Composite: 0.9},
	}

	// Identical individuals: niche mass is 3, fitness thirds.
	shared := s.FitnessSharing(population, fitness, 0.3)
	for id, f := range shared {
		assert.InDelta(t, 0.3, f, 1e-12, "individual %s", id)
	}
}

func TestFitnessSharing_ZeroRadiusPassThrough(t *testing.T) {
	s := NewSchema()
	population, fitness := makeTestPopulation(t, 0.5, 0.7)

	shared := s.FitnessSharing(population, fitness, 0)
	assert.InDelta(t, 0.5, shared["ind-0"], 1e-12)
	assert.InDelta(t, 0.7, shared["ind-1"], 1e-12)
}

func TestSpeciate_SmallPopulationSingletons(t *testing.T) {
	s := NewSchema()
	population, fitness := makeTestPopulation(t, 0.9, 0.5, 0.1)

	clusters := s.Speciate(newTestRand(), population, fitness, 3, 7)
	require.Len(t, clusters, 3)
	for i, cluster := range clusters {
		assert.Len(t, cluster.MemberIDs, 1)
		assert.Zero(t, cluster.Diversity)
		assert.Equal(t, 7, cluster.Generation)
		assert.Equal(t, fitness.Composite(cluster.MemberIDs[0]), cluster.AvgFitness, "cluster %d", i)
	}
}

func TestSpeciate_EmptyPopulation(t *testing.T) {
	s := NewSchema()
	assert.Nil(t, s.Speciate(newTestRand(), nil, FitnessMap{}, 3, 0))
}

func TestSpeciate_PartitionsWholePopulation(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()

	composites := make([]float64, 30)
	for i := range composites {
		composites[i] = float64(i) / 30
	}
	population, fitness := makeTestPopulation(t, composites...)

	clusters := s.Speciate(rng, population, fitness, 4, 1)
	require.NotEmpty(t, clusters)
	assert.LessOrEqual(t, len(clusters), 4)

	seen := map[string]int{}
	for _, cluster := range clusters {
		assert.Len(t, cluster.Centroid, s.Size())
		for _, id := range cluster.MemberIDs {
			seen[id]++
		}
	}
	assert.Len(t, seen, 30, "every individual belongs to exactly one species")
	for id, count := range seen {
		assert.Equal(t, 1, count, "individual %s assigned %d times", id, count)
	}
}

func TestSpeciate_TwoTightGroups(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()

	lo := newStrategyDNA()
	hi := newStrategyDNA()
	for _, r := range s.Ranges() {
		lo.category(r.Category)[r.Name] = r.Min
		hi.category(r.Category)[r.Name] = r.Max
	}

	var population []Individual
	fitness := FitnessMap{}
	for i := 0; i < 5; i++ {
		// Jitter within each group so seeds are never exact duplicates.
		loJittered := lo.Clone()
		hiJittered := hi.Clone()
		for _, r := range s.Ranges() {
			span := r.Max - r.Min
			loJittered.category(r.Category)[r.Name] = r.Min + 0.02*span*float64(i)
			hiJittered.category(r.Category)[r.Name] = r.Max - 0.02*span*float64(i)
		}

		idLo := "lo-" + string(rune('0'+i))
		idHi := "hi-" + string(rune('0'+i))
		population = append(population,
			Individual{ID: idLo, DNA: loJittered},
			Individual{ID: idHi, DNA: hiJittered},
		)
		fitness[idLo] = FitnessScores{Composite: 0.2}
		fitness[idHi] = FitnessScores{Composite: 0.8}
	}

	clusters := s.Speciate(rng, population, fitness, 2, 0)
	require.Len(t, clusters, 2)
	for _, cluster := range clusters {
		require.Len(t, cluster.MemberIDs, 5)
		prefix := cluster.MemberIDs[0][:2]
		for _, id := range cluster.MemberIDs {
			assert.Equal(t, prefix, id[:2], "cluster mixes the two groups")
		}
		assert.Less(t, cluster.Diversity, 0.3)
	}
}

func TestCrowdingDistances_SmallPopulationsAllInfinite(t *testing.T) {
	for _, objectives := range [][][]float64{
		{{1, 2}},
		{{1, 2}, {3, 4}},
	} {
		for _, d := range CrowdingDistances(objectives) {
			assert.True(t, math.IsInf(d, 1))
		}
	}
	assert.Empty(t, CrowdingDistances(nil))
}

func TestCrowdingDistances_BoundariesInfinite(t *testing.T) {
	objectives := [][]float64{{1}, {2}, {3}, {4}}
	distances := CrowdingDistances(objectives)

	assert.True(t, math.IsInf(distances[0], 1))
	assert.True(t, math.IsInf(distances[3], 1))
	// Interior members get the normalized neighbor gap.
	assert.InDelta(t, 2.0/3.0, distances[1], 1e-12)
	assert.InDelta(t, 2.0/3.0, distances[2], 1e-12)
}

func TestCrowdingDistances_AccumulatesAcrossObjectives(t *testing.T) {
	objectives := [][]float64{{1, 4}, {2, 3}, {3, 2}, {4, 1}}
	distances := CrowdingDistances(objectives)

	assert.True(t, math.IsInf(distances[0], 1))
	assert.True(t, math.IsInf(distances[3], 1))
	assert.InDelta(t, 4.0/3.0, distances[1], 1e-12)
	assert.InDelta(t, 4.0/3.0, distances[2], 1e-12)
}
