package genetic

import (
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// kmeansMaxIterations caps speciation refinement rounds.
const kmeansMaxIterations = 20

// GenotypicDistance is the per-gene-normalized Euclidean distance between
// two DNA vectors. Each gene difference is normalized by its declared range,
// so every gene contributes on the same scale regardless of units.
func (s *Schema) GenotypicDistance(a, b StrategyDNA) float64 {
	return s.normalizedVectorDistance(s.Flatten(a), s.Flatten(b))
}

// PhenotypicDistance is the Euclidean distance over the fitness-component
// vectors of two individuals.
func PhenotypicDistance(a, b FitnessScores) float64 {
	ca := a.Components()
	cb := b.Components()

	var sum float64
	for i := range ca {
		d := ca[i] - cb[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// PopulationDiversity is the mean pairwise genotypic distance over the
// population, 0 for fewer than two individuals. The O(n²) pairwise loop is
// split across CPUs; workers share nothing but their input rows.
func (s *Schema) PopulationDiversity(population []Individual) float64 {
	n := len(population)
	if n < 2 {
		return 0
	}

	vectors := make([][]float64, n)
	for i, ind := range population {
		vectors[i] = s.Flatten(ind.DNA)
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	sums := make([]float64, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var sum float64
			for i := w; i < n; i += workers {
				for j := i + 1; j < n; j++ {
					sum += s.normalizedVectorDistance(vectors[i], vectors[j])
				}
			}
			sums[w] = sum
			return nil
		})
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()

	var total float64
	for _, sum := range sums {
		total += sum
	}
	pairs := float64(n*(n-1)) / 2
	return total / pairs
}

func (s *Schema) normalizedVectorDistance(va, vb []float64) float64 {
	var sum float64
	for i, r := range s.ranges {
		span := r.Max - r.Min
		if span <= 0 {
			continue
		}
		d := (va[i] - vb[i]) / span
		sum += d * d
	}
	return math.Sqrt(sum)
}

// GeneConvergence reports, per gene, how converged the population is:
// 1 - stddev/range clamped to [0,1], where 1 means fully converged.
func (s *Schema) GeneConvergence(population []Individual) map[string]float64 {
	convergence := make(map[string]float64, len(s.ranges))
	if len(population) == 0 {
		return convergence
	}

	vectors := make([][]float64, len(population))
	for i, ind := range population {
		vectors[i] = s.Flatten(ind.DNA)
	}

	n := float64(len(population))
	for gi, r := range s.ranges {
		var mean float64
		for _, vec := range vectors {
			mean += vec[gi]
		}
		mean /= n

		var variance float64
		for _, vec := range vectors {
			d := vec[gi] - mean
			variance += d * d
		}
		stddev := math.Sqrt(variance / n)

		span := r.Max - r.Min
		c := 1.0
		if span > 0 {
			c = clamp01(1 - stddev/span)
		}
		convergence[qualifiedGene(r)] = c
	}
	return convergence
}

// FitnessSharing derates each individual's fitness by its niche mass: 1 for
// itself plus a triangular kernel max(0, 1-dist/nicheRadius) over every
// neighbor within the radius. Crowded niches share their fitness, preserving
// distinct niches in the population.
func (s *Schema) FitnessSharing(population []Individual, fitness FitnessMap, nicheRadius float64) map[string]float64 {
	shared := make(map[string]float64, len(population))
	if nicheRadius <= 0 {
		for _, ind := range population {
			shared[ind.ID] = fitness.Composite(ind.ID)
		}
		return shared
	}

	n := len(population)
	vectors := make([][]float64, n)
	for i, ind := range population {
		vectors[i] = s.Flatten(ind.DNA)
	}

	masses := make([]float64, n)
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := w; i < n; i += workers {
				mass := 1.0
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					dist := s.normalizedVectorDistance(vectors[i], vectors[j])
					if contribution := 1 - dist/nicheRadius; contribution > 0 {
						mass += contribution
					}
				}
				masses[i] = mass
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, ind := range population {
		shared[ind.ID] = fitness.Composite(ind.ID) / masses[i]
	}
	return shared
}

// SpeciesCluster is one species found by k-means speciation. Clusters are
// created fresh each call and never mutated after construction.
type SpeciesCluster struct {
	Centroid   []float64 `json:"centroid"`
	MemberIDs  []string  `json:"member_ids"`
	AvgFitness float64   `json:"avg_fitness"`
	Diversity  float64   `json:"diversity"`
	Generation int       `json:"generation"`
}

// Speciate partitions the population into species with k-means over the
// flattened DNA vectors. Populations at or below the target count become
// singleton species. A cluster that loses all members during refinement
// keeps its previous centroid frozen rather than re-seeding; this is a known
// limitation kept for behavioral stability.
func (s *Schema) Speciate(rng *rand.Rand, population []Individual, fitness FitnessMap, targetSpecies, generation int) []SpeciesCluster {
	n := len(population)
	if n == 0 {
		return nil
	}
	if targetSpecies < 1 {
		targetSpecies = 1
	}

	vectors := make([][]float64, n)
	for i, ind := range population {
		vectors[i] = s.Flatten(ind.DNA)
	}

	if n <= targetSpecies {
		clusters := make([]SpeciesCluster, 0, n)
		for i, ind := range population {
			centroid := make([]float64, len(vectors[i]))
			copy(centroid, vectors[i])
			clusters = append(clusters, SpeciesCluster{
				Centroid:   centroid,
				MemberIDs:  []string{ind.ID},
				AvgFitness: fitness.Composite(ind.ID),
				Diversity:  0,
				Generation: generation,
			})
		}
		return clusters
	}

	k := targetSpecies
	centroids := make([][]float64, k)
	for i, seed := range rng.Perm(n)[:k] {
		centroids[i] = make([]float64, len(vectors[seed]))
		copy(centroids[i], vectors[seed])
	}

	assignments := make([]int, n)
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, vec := range vectors {
			best := 0
			bestDist := math.MaxFloat64
			for c, centroid := range centroids {
				if d := euclidean(vec, centroid); d < bestDist {
					bestDist = d
					best = c
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		for c := range centroids {
			var members int
			mean := make([]float64, len(centroids[c]))
			for i, a := range assignments {
				if a != c {
					continue
				}
				members++
				for d, v := range vectors[i] {
					mean[d] += v
				}
			}
			if members == 0 {
				// Empty cluster: keep the previous centroid frozen.
				continue
			}
			for d := range mean {
				mean[d] /= float64(members)
			}
			centroids[c] = mean
		}
	}

	clusters := make([]SpeciesCluster, 0, k)
	for c := range centroids {
		var memberIdx []int
		for i, a := range assignments {
			if a == c {
				memberIdx = append(memberIdx, i)
			}
		}
		if len(memberIdx) == 0 {
			continue
		}

		memberIDs := make([]string, 0, len(memberIdx))
		var fitnessSum float64
		for _, i := range memberIdx {
			memberIDs = append(memberIDs, population[i].ID)
			fitnessSum += fitness.Composite(population[i].ID)
		}

		var diversity float64
		if len(memberIdx) > 1 {
			var sum float64
			for a := 0; a < len(memberIdx); a++ {
				for b := a + 1; b < len(memberIdx); b++ {
					sum += s.normalizedVectorDistance(vectors[memberIdx[a]], vectors[memberIdx[b]])
				}
			}
			pairs := float64(len(memberIdx)*(len(memberIdx)-1)) / 2
			diversity = sum / pairs
		}

		clusters = append(clusters, SpeciesCluster{
			Centroid:   centroids[c],
			MemberIDs:  memberIDs,
			AvgFitness: fitnessSum / float64(len(memberIdx)),
			Diversity:  diversity,
			Generation: generation,
		})
	}
	return clusters
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CrowdingDistances computes the NSGA-II crowding distance for each row of
// objectives. Boundary members per objective get infinite distance; interior
// members accumulate the normalized gap between their neighbors. Populations
// of size two or less get infinite distance for everyone.
func CrowdingDistances(objectives [][]float64) []float64 {
	n := len(objectives)
	distances := make([]float64, n)
	if n == 0 {
		return distances
	}
	if n <= 2 {
		for i := range distances {
			distances[i] = math.Inf(1)
		}
		return distances
	}

	numObjectives := len(objectives[0])
	for m := 0; m < numObjectives; m++ {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return objectives[order[a]][m] < objectives[order[b]][m]
		})

		distances[order[0]] = math.Inf(1)
		distances[order[n-1]] = math.Inf(1)

		span := objectives[order[n-1]][m] - objectives[order[0]][m]
		if span <= 0 {
			continue
		}
		for i := 1; i < n-1; i++ {
			gap := objectives[order[i+1]][m] - objectives[order[i-1]][m]
			distances[order[i]] += gap / span
		}
	}
	return distances
}
