package genetic

// ParetoMember is one individual's multi-objective standing. Rank 1 means
// non-dominated; higher ranks sit behind successive fronts.
type ParetoMember struct {
	ID               string    `json:"id"`
	Objectives       []float64 `json:"objectives"`
	Rank             int       `json:"rank"`
	CrowdingDistance float64   `json:"crowding_distance"`
}

// ParetoFront is the result of one non-dominated sort. Fronts are recomputed
// from scratch each call and never carried across generations.
type ParetoFront struct {
	Generation int            `json:"generation"`
	Members    []ParetoMember `json:"members"`
}

// FirstFront returns the rank-1 members.
func (f *ParetoFront) FirstFront() []ParetoMember {
	var first []ParetoMember
	for _, m := range f.Members {
		if m.Rank == 1 {
			first = append(first, m)
		}
	}
	return first
}

// dominates reports whether a dominates b: no worse in every objective (all
// maximized) and strictly better in at least one.
func dominates(a, b []float64) bool {
	strictlyBetter := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// BuildParetoFront runs NSGA-II non-dominated sorting over the population's
// fitness-component vectors, assigning a rank and crowding distance to every
// individual.
func BuildParetoFront(population []Individual, fitness FitnessMap, generation int) *ParetoFront {
	n := len(population)
	front := &ParetoFront{Generation: generation}
	if n == 0 {
		return front
	}

	members := make([]ParetoMember, n)
	for i, ind := range population {
		members[i] = ParetoMember{
			ID:         ind.ID,
			Objectives: fitness[ind.ID].Components(),
		}
	}

	// Domination counts and dominated-by lists.
	dominationCount := make([]int, n)
	dominated := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominates(members[i].Objectives, members[j].Objectives) {
				dominated[i] = append(dominated[i], j)
			} else if dominates(members[j].Objectives, members[i].Objectives) {
				dominationCount[i]++
			}
		}
	}

	// Peel successive fronts: rank 1 has zero incoming domination, then
	// decrement the counts of everyone it dominates.
	var current []int
	for i := 0; i < n; i++ {
		if dominationCount[i] == 0 {
			members[i].Rank = 1
			current = append(current, i)
		}
	}

	rank := 1
	for len(current) > 0 {
		// Crowding distances are computed within each front.
		frontObjectives := make([][]float64, len(current))
		for fi, i := range current {
			frontObjectives[fi] = members[i].Objectives
		}
		crowding := CrowdingDistances(frontObjectives)
		for fi, i := range current {
			members[i].CrowdingDistance = crowding[fi]
		}

		var next []int
		for _, i := range current {
			for _, j := range dominated[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					members[j].Rank = rank + 1
					next = append(next, j)
				}
			}
		}
		current = next
		rank++
	}

	front.Members = members
	return front
}

// Hypervolume estimates how much objective space the rank-1 front covers
// beyond the reference point. This is the simplified product-of-margins
// estimator (sum over members of the product of max(0, objective-reference)
// across objectives), not an exact dominated-volume measure; it is only
// meaningful for comparisons against itself at the same scale.
func Hypervolume(front *ParetoFront, reference []float64) float64 {
	var volume float64
	for _, m := range front.FirstFront() {
		product := 1.0
		for i, obj := range m.Objectives {
			ref := 0.0
			if i < len(reference) {
				ref = reference[i]
			}
			margin := obj - ref
			if margin < 0 {
				margin = 0
			}
			product *= margin
		}
		volume += product
	}
	return volume
}
