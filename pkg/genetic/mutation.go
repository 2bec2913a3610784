package genetic

import (
	"fmt"
	"math"
	"math/rand"
)

// MutationMethod selects which perturbation operator is in effect.
type MutationMethod string

const (
	MutationGaussian   MutationMethod = "gaussian"
	MutationPolynomial MutationMethod = "polynomial"
	MutationCauchy     MutationMethod = "cauchy"
	MutationAdaptive   MutationMethod = "adaptive"
)

// MutationOptions carries the per-operator tuning knobs.
type MutationOptions struct {
	// Rate is the per-gene mutation probability.
	Rate float64
	// Strength scales Gaussian perturbations relative to the gene value.
	Strength float64
	// Eta is the polynomial-mutation distribution index.
	Eta float64
	// CauchyScale scales the heavy-tailed Cauchy draws.
	CauchyScale float64
}

// Mutate perturbs a DNA vector using the configured method and returns a
// freshly allocated, clamped copy. The adaptive method is dispatched with the
// caller-computed effective rate already in opts.Rate; rate decay itself is
// handled by EffectiveMutationRate.
func (s *Schema) Mutate(rng *rand.Rand, method MutationMethod, dna StrategyDNA, opts MutationOptions) (StrategyDNA, error) {
	vec := s.Flatten(dna)

	switch method {
	case MutationGaussian, "":
		mutateGaussian(rng, vec, opts.Rate, opts.Strength)
	case MutationPolynomial:
		mutatePolynomial(rng, vec, opts.Rate, opts.Eta)
	case MutationCauchy:
		mutateCauchy(rng, vec, opts.Rate, opts.CauchyScale)
	case MutationAdaptive:
		mutateAdaptive(rng, vec, opts)
	default:
		return StrategyDNA{}, fmt.Errorf("unknown mutation method: %s", method)
	}

	mutated, err := s.Unflatten(vec)
	if err != nil {
		return StrategyDNA{}, err
	}
	return s.Clamp(mutated), nil
}

// EffectiveMutationRate computes the decayed adaptive rate for a generation:
// max(minRate, initialRate * decay^generation). For non-adaptive methods the
// configured base rate passes through unchanged.
func EffectiveMutationRate(method MutationMethod, generation int, baseRate, initialRate, decay, minRate float64) float64 {
	if method != MutationAdaptive {
		return baseRate
	}
	rate := initialRate * math.Pow(decay, float64(generation))
	if rate < minRate {
		rate = minRate
	}
	return rate
}

// mutateGaussian adds gene*strength*U(-1,1) to each gene with probability
// rate.
func mutateGaussian(rng *rand.Rand, vec []float64, rate, strength float64) {
	for i := range vec {
		if rng.Float64() < rate {
			vec[i] += vec[i] * strength * (rng.Float64()*2 - 1)
		}
	}
}

// mutatePolynomial applies the NSGA-II polynomial delta scaled by 30% of the
// gene magnitude.
func mutatePolynomial(rng *rand.Rand, vec []float64, rate, eta float64) {
	if eta <= 0 {
		eta = 20
	}
	for i := range vec {
		if rng.Float64() >= rate {
			continue
		}
		u := rng.Float64()
		var delta float64
		if u < 0.5 {
			delta = math.Pow(2*u, 1/(eta+1)) - 1
		} else {
			delta = 1 - math.Pow(2*(1-u), 1/(eta+1))
		}
		vec[i] += delta * math.Abs(vec[i]) * 0.3
	}
}

// cauchyDraw samples a heavy-tailed perturbation via the inverse CDF.
func cauchyDraw(rng *rand.Rand, scale float64) float64 {
	return scale * math.Tan(math.Pi*(rng.Float64()-0.5))
}

// mutateCauchy applies heavy-tailed perturbations clipped to ±50% of the
// gene's current value to bound pathological jumps. Used to escape local
// optima.
func mutateCauchy(rng *rand.Rand, vec []float64, rate, scale float64) {
	if scale <= 0 {
		scale = 0.1
	}
	for i := range vec {
		if rng.Float64() >= rate {
			continue
		}
		perturbation := cauchyDraw(rng, scale)
		bound := 0.5 * math.Abs(vec[i])
		vec[i] += clipAbs(perturbation, bound)
	}
}

// mutateAdaptive perturbs each selected gene with an 80% Gaussian / 20%
// Cauchy mixture; the Cauchy contribution is additionally clipped to ±30% of
// the gene value.
func mutateAdaptive(rng *rand.Rand, vec []float64, opts MutationOptions) {
	scale := opts.CauchyScale
	if scale <= 0 {
		scale = 0.1
	}
	for i := range vec {
		if rng.Float64() >= opts.Rate {
			continue
		}
		if rng.Float64() < 0.8 {
			vec[i] += vec[i] * opts.Strength * (rng.Float64()*2 - 1)
		} else {
			perturbation := cauchyDraw(rng, scale)
			bound := 0.3 * math.Abs(vec[i])
			vec[i] += clipAbs(perturbation, bound)
		}
	}
}

func clipAbs(v, bound float64) float64 {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}
