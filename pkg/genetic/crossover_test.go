package genetic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossover_UnknownMethod(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()
	p1 := s.RandomDNA(rng)
	p2 := s.RandomDNA(rng)

	_, err := s.Crossover(rng, "quantum", p1, p2, CrossoverOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown crossover method")
}

func TestCrossover_ChildIsClampedAndFresh(t *testing.T) {
	s := NewSchema()
	rng := newTestRand()
	p1 := s.RandomDNA(rng)
	p2 := s.RandomDNA(rng)

	for _, method := range []CrossoverMethod{CrossoverUniform, CrossoverMultipoint, CrossoverBLX, CrossoverSBX} {
		child, err := s.Crossover(rng, method, p1, p2, CrossoverOptions{Points: 3, Alpha: 0.5, Eta: 15})
		require.NoError(t, err, "method %s", method)

		for _, r := range s.Ranges() {
			v, ok := child.Gene(r.Category, r.Name)
			require.True(t, ok)
			assert.GreaterOrEqual(t, v, r.Min, "method %s gene %s", method, r.Name)
			assert.LessOrEqual(t, v, r.Max, "method %s gene %s", method, r.Name)
		}

		// Mutating the child must never touch the parents.
		child.EntryWeights["rsi_weight"] = -99
		assert.NotEqual(t, -99.0, p1.EntryWeights["rsi_weight"])
		assert.NotEqual(t, -99.0, p2.EntryWeights["rsi_weight"])
	}
}

func TestCrossoverUniform_GenesComeFromAParent(t *testing.T) {
	rng := newTestRand()
	v1 := []float64{1, 2, 3, 4, 5}
	v2 := []float64{10, 20, 30, 40, 50}

	for i := 0; i < 20; i++ {
		child := crossoverUniform(rng, v1, v2)
		for g := range child {
			assert.True(t, child[g] == v1[g] || child[g] == v2[g])
		}
	}
}

func TestCrossoverMultipoint_AlternatesSegments(t *testing.T) {
	rng := newTestRand()
	v1 := make([]float64, 10)
	v2 := make([]float64, 10)
	for i := range v1 {
		v1[i] = 0
		v2[i] = 1
	}

	child := crossoverMultipoint(rng, v1, v2, 3)

	// Count switches between source parents; with 3 cut points the child
	// flips source exactly 3 times.
	switches := 0
	for i := 1; i < len(child); i++ {
		if child[i] != child[i-1] {
			switches++
		}
	}
	assert.Equal(t, 3, switches)
	// The first segment always comes from parent 1.
	assert.Equal(t, 0.0, child[0])
}

func TestCrossoverBLX_AlphaZeroStaysBetweenParents(t *testing.T) {
	rng := newTestRand()
	v1 := []float64{2}
	v2 := []float64{8}

	for i := 0; i < 1000; i++ {
		child := crossoverBLX(rng, v1, v2, 0)
		assert.GreaterOrEqual(t, child[0], 2.0)
		assert.LessOrEqual(t, child[0], 8.0)
	}
}

func TestCrossoverBLX_AlphaExpandsInterval(t *testing.T) {
	rng := newTestRand()
	v1 := []float64{2}
	v2 := []float64{8}

	outside := 0
	for i := 0; i < 1000; i++ {
		child := crossoverBLX(rng, v1, v2, 0.5)
		assert.GreaterOrEqual(t, child[0], -1.0)
		assert.LessOrEqual(t, child[0], 11.0)
		if child[0] < 2 || child[0] > 8 {
			outside++
		}
	}
	// With alpha 0.5 half the sampling interval lies beyond the parents.
	assert.Greater(t, outside, 300)
}

func TestCrossoverSBX_HighEtaStaysNearParents(t *testing.T) {
	rng := newTestRand()
	v1 := []float64{2}
	v2 := []float64{8}

	near := 0
	for i := 0; i < 100; i++ {
		child := crossoverSBX(rng, v1, v2, 200)
		deviation := math.Min(math.Abs(child[0]-2), math.Abs(child[0]-8))
		if deviation <= 0.08 { // 1% of the larger parent
			near++
		}
	}
	assert.GreaterOrEqual(t, near, 90)
}

func TestCrossoverSBX_EqualGenesShortCircuit(t *testing.T) {
	rng := newTestRand()
	v1 := []float64{3.14, 5}
	v2 := []float64{3.14, 7}

	for i := 0; i < 50; i++ {
		child := crossoverSBX(rng, v1, v2, 2)
		assert.Equal(t, 3.14, child[0])
	}
}

func TestCrossoverMultipoint_SinglePointDegenerate(t *testing.T) {
	rng := newTestRand()
	v1 := []float64{0, 0, 0, 0}
	v2 := []float64{1, 1, 1, 1}

	child := crossoverMultipoint(rng, v1, v2, 1)

	switches := 0
	for i := 1; i < len(child); i++ {
		if child[i] != child[i-1] {
			switches++
		}
	}
	assert.Equal(t, 1, switches)
}
