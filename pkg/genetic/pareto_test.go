package genetic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominates(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"strictly better everywhere", []float64{1, 2, 3}, []float64{0, 1, 2}, true},
		{"better in one, equal elsewhere", []float64{1, 2, 3}, []float64{1, 2, 2}, true},
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, false},
		{"worse in one objective", []float64{1, 2, 3}, []float64{0, 3, 2}, false},
		{"dominated", []float64{0, 1, 2}, []float64{1, 2, 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dominates(tt.a, tt.b))
		})
	}
}

func paretoFitness(components ...[]float64) ([]Individual, FitnessMap) {
	population := make([]Individual, len(components))
	fitness := FitnessMap{}
	for i, c := range components {
		id := string(rune('A' + i))
		population[i] = Individual{ID: id}
		fitness[id] = FitnessScores{
			Return:          c[0],
			RiskAdjusted:    c[1],
			WinRate:         c[2],
			DrawdownPenalty: c[2],
			TradeFrequency:  c[2],
			Consistency:     c[2],
		}
	}
	return population, fitness
}

func TestBuildParetoFront_DominationExample(t *testing.T) {
	population, fitness := paretoFitness(
		[]float64{1, 2, 3}, // A dominates B
		[]float64{0, 1, 2}, // B
	)

	front := BuildParetoFront(population, fitness, 9)
	require.Len(t, front.Members, 2)
	assert.Equal(t, 9, front.Generation)

	byID := map[string]ParetoMember{}
	for _, m := range front.Members {
		byID[m.ID] = m
	}
	assert.Equal(t, 1, byID["A"].Rank)
	assert.GreaterOrEqual(t, byID["B"].Rank, 2)
}

func TestBuildParetoFront_FirstFrontInternallyNonDominated(t *testing.T) {
	population, fitness := paretoFitness(
		[]float64{1, 0, 0},
		[]float64{0, 1, 0},
		[]float64{0, 0, 1},
		[]float64{0.9, 0.9, 0.9},
		[]float64{0, 0, 0}, // dominated by everything above
	)

	front := BuildParetoFront(population, fitness, 0)
	first := front.FirstFront()
	require.Len(t, first, 4)
	for _, a := range first {
		for _, b := range first {
			assert.False(t, dominates(a.Objectives, b.Objectives),
				"%s dominates %s within rank 1", a.ID, b.ID)
		}
	}
}

func TestBuildParetoFront_SuccessiveRanks(t *testing.T) {
	population, fitness := paretoFitness(
		[]float64{3, 3, 3},
		[]float64{2, 2, 2},
		[]float64{1, 1, 1},
	)

	front := BuildParetoFront(population, fitness, 0)
	byID := map[string]ParetoMember{}
	for _, m := range front.Members {
		byID[m.ID] = m
	}
	assert.Equal(t, 1, byID["A"].Rank)
	assert.Equal(t, 2, byID["B"].Rank)
	assert.Equal(t, 3, byID["C"].Rank)
}

func TestBuildParetoFront_CrowdingWithinFront(t *testing.T) {
	// Four mutually non-dominated members on one front.
	population, fitness := paretoFitness(
		[]float64{1, 0, 0.9},
		[]float64{0.7, 0.3, 0.6},
		[]float64{0.3, 0.7, 0.3},
		[]float64{0, 1, 0},
	)

	front := BuildParetoFront(population, fitness, 0)
	first := front.FirstFront()
	require.Len(t, first, 4)

	infinite := 0
	for _, m := range first {
		if math.IsInf(m.CrowdingDistance, 1) {
			infinite++
		}
	}
	assert.GreaterOrEqual(t, infinite, 2, "boundary members carry infinite crowding distance")
}

func TestBuildParetoFront_Empty(t *testing.T) {
	front := BuildParetoFront(nil, FitnessMap{}, 3)
	assert.Empty(t, front.Members)
	assert.Empty(t, front.FirstFront())
}

func TestHypervolume_SingleMember(t *testing.T) {
	population, fitness := paretoFitness([]float64{0.5, 0.5, 0.5})
	front := BuildParetoFront(population, fitness, 0)

	volume := Hypervolume(front, []float64{0, 0, 0, 0, 0, 0})
	// Six objectives of 0.5 each: product is 0.5^6.
	assert.InDelta(t, math.Pow(0.5, 6), volume, 1e-12)
}

func TestHypervolume_BelowReferenceContributesNothing(t *testing.T) {
	population, fitness := paretoFitness([]float64{0.5, 0.5, 0.5})
	front := BuildParetoFront(population, fitness, 0)

	volume := Hypervolume(front, []float64{1, 1, 1, 1, 1, 1})
	assert.Zero(t, volume)
}

func TestHypervolume_OnlyFirstFrontCounts(t *testing.T) {
	population, fitness := paretoFitness(
		[]float64{1, 1, 1},
		[]float64{0.5, 0.5, 0.5}, // rank 2
	)
	front := BuildParetoFront(population, fitness, 0)

	volume := Hypervolume(front, []float64{0, 0, 0, 0, 0, 0})
	assert.InDelta(t, 1.0, volume, 1e-12)
}

func TestHypervolume_ShortReferenceDefaultsToZero(t *testing.T) {
	population, fitness := paretoFitness([]float64{0.5, 0.5, 0.5})
	front := BuildParetoFront(population, fitness, 0)

	assert.InDelta(t, math.Pow(0.5, 6), Hypervolume(front, nil), 1e-12)
}
