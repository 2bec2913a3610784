package genetic

import "sort"

// Individual pairs an ID with DNA. Individuals are owned by the caller; the
// engine treats them as read-only input and only ever produces fresh
// offspring.
type Individual struct {
	ID         string      `json:"id"`
	DNA        StrategyDNA `json:"dna"`
	Generation int         `json:"generation"`
	Group      string      `json:"group,omitempty"`
	Symbol     string      `json:"symbol,omitempty"`
}

// FitnessMap maps individual IDs to their externally computed fitness.
type FitnessMap map[string]FitnessScores

// Composite returns the composite fitness for an individual, 0 when absent.
func (m FitnessMap) Composite(id string) float64 {
	return m[id].Composite
}

// rankByComposite returns a fresh slice sorted descending by composite
// fitness. Ties keep input order so elitism is stable.
func rankByComposite(population []Individual, fitness FitnessMap) []Individual {
	ranked := make([]Individual, len(population))
	copy(ranked, population)
	sort.SliceStable(ranked, func(i, j int) bool {
		return fitness.Composite(ranked[i].ID) > fitness.Composite(ranked[j].ID)
	})
	return ranked
}
