package genetic

import (
	"fmt"
	"math/rand"
	"sort"
)

// SelectionMethod selects which parent-selection operator is in effect.
type SelectionMethod string

const (
	SelectionTournament SelectionMethod = "tournament"
	SelectionRoulette   SelectionMethod = "roulette"
	SelectionRank       SelectionMethod = "rank"
	SelectionSUS        SelectionMethod = "sus"
)

// rouletteShiftEpsilon keeps shifted fitness strictly positive so roulette
// and SUS handle negative fitness.
const rouletteShiftEpsilon = 1e-6

// SelectParent picks one parent from the population using the configured
// method. SUS is a batch sampler, so dispatch through SelectParent takes the
// first of a single-pointer pass; use SelectParents for the full batch.
func SelectParent(rng *rand.Rand, population []Individual, fitness FitnessMap, method SelectionMethod, tournamentSize int) (Individual, error) {
	if len(population) == 0 {
		return Individual{}, fmt.Errorf("cannot select from an empty population")
	}

	switch method {
	case SelectionTournament, "":
		return selectTournament(rng, population, fitness, tournamentSize), nil
	case SelectionRoulette:
		return selectRoulette(rng, population, fitness), nil
	case SelectionRank:
		return selectRank(rng, population, fitness), nil
	case SelectionSUS:
		return selectSUS(rng, population, fitness, 1)[0], nil
	default:
		return Individual{}, fmt.Errorf("unknown selection method: %s", method)
	}
}

// SelectParents picks count parents. For SUS this is a single cumulative
// pass with evenly spaced pointers; for every other method it is count
// independent draws.
func SelectParents(rng *rand.Rand, population []Individual, fitness FitnessMap, method SelectionMethod, tournamentSize, count int) ([]Individual, error) {
	if len(population) == 0 {
		return nil, fmt.Errorf("cannot select from an empty population")
	}
	if count <= 0 {
		return nil, nil
	}

	if method == SelectionSUS {
		return selectSUS(rng, population, fitness, count), nil
	}

	parents := make([]Individual, 0, count)
	for i := 0; i < count; i++ {
		parent, err := SelectParent(rng, population, fitness, method, tournamentSize)
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// selectTournament draws k individuals uniformly with replacement and keeps
// the fittest. Ties resolve to the first-seen candidate.
func selectTournament(rng *rand.Rand, population []Individual, fitness FitnessMap, k int) Individual {
	if k <= 0 {
		k = 3
	}

	best := population[rng.Intn(len(population))]
	bestFitness := fitness.Composite(best.ID)
	for i := 1; i < k; i++ {
		candidate := population[rng.Intn(len(population))]
		if f := fitness.Composite(candidate.ID); f > bestFitness {
			best = candidate
			bestFitness = f
		}
	}
	return best
}

// shiftedFitness shifts all composite values so the minimum becomes a small
// positive epsilon, making proportional sampling safe for negative fitness.
func shiftedFitness(population []Individual, fitness FitnessMap) []float64 {
	minFitness := fitness.Composite(population[0].ID)
	for _, ind := range population[1:] {
		if f := fitness.Composite(ind.ID); f < minFitness {
			minFitness = f
		}
	}

	shifted := make([]float64, len(population))
	for i, ind := range population {
		shifted[i] = fitness.Composite(ind.ID) - minFitness + rouletteShiftEpsilon
	}
	return shifted
}

// selectRoulette samples proportionally to shifted fitness with a single
// cumulative spin.
func selectRoulette(rng *rand.Rand, population []Individual, fitness FitnessMap) Individual {
	shifted := shiftedFitness(population, fitness)

	var total float64
	for _, f := range shifted {
		total += f
	}

	spin := rng.Float64() * total
	var cumulative float64
	for i, f := range shifted {
		cumulative += f
		if spin <= cumulative {
			return population[i]
		}
	}
	return population[len(population)-1]
}

// selectRank sorts ascending by fitness, assigns linear weights 1..n and
// samples proportionally to rank. Rewards relative ordering, dampens outlier
// fitness magnitudes.
func selectRank(rng *rand.Rand, population []Individual, fitness FitnessMap) Individual {
	ascending := make([]Individual, len(population))
	copy(ascending, population)
	sort.SliceStable(ascending, func(i, j int) bool {
		return fitness.Composite(ascending[i].ID) < fitness.Composite(ascending[j].ID)
	})

	n := len(ascending)
	total := float64(n*(n+1)) / 2

	spin := rng.Float64() * total
	var cumulative float64
	for i, ind := range ascending {
		cumulative += float64(i + 1)
		if spin <= cumulative {
			return ind
		}
	}
	return ascending[n-1]
}

// selectSUS is stochastic universal sampling: one random offset plus count
// evenly spaced pointers over the cumulative shifted-fitness curve, returning
// count parents in a single pass. Lower sampling variance than independent
// spins.
func selectSUS(rng *rand.Rand, population []Individual, fitness FitnessMap, count int) []Individual {
	shifted := shiftedFitness(population, fitness)

	var total float64
	for _, f := range shifted {
		total += f
	}

	step := total / float64(count)
	offset := rng.Float64() * step

	parents := make([]Individual, 0, count)
	var cumulative float64
	idx := 0
	for i := 0; i < count; i++ {
		pointer := offset + float64(i)*step
		for idx < len(shifted)-1 && cumulative+shifted[idx] < pointer {
			cumulative += shifted[idx]
			idx++
		}
		parents = append(parents, population[idx])
	}
	return parents
}
