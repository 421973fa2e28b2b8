package fixture

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// WeightedSampler draws one outcome per call with probability
// weight / sum(weights). It holds no per-call state.
type WeightedSampler[T any] struct {
	outcomes   []T
	cumulative []float64
	total      float64
}

func NewWeightedSampler[T any](outcomes []T, weights []float64) (*WeightedSampler[T], error) {
	if len(outcomes) == 0 {
		return nil, &InvalidWeightsError{Reason: "no outcomes"}
	}
	if len(outcomes) != len(weights) {
		return nil, &InvalidWeightsError{
			Reason: fmt.Sprintf("%d outcomes but %d weights", len(outcomes), len(weights)),
		}
	}

	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, &InvalidWeightsError{Reason: fmt.Sprintf("weight %d is %v", i, w)}
		}
		total += w
		cumulative[i] = total
	}
	if total == 0 {
		return nil, &InvalidWeightsError{Reason: "all weights are zero"}
	}

	return &WeightedSampler[T]{
		outcomes:   append([]T(nil), outcomes...),
		cumulative: cumulative,
		total:      total,
	}, nil
}

// MustWeightedSampler is NewWeightedSampler for fixed tables known at compile time.
func MustWeightedSampler[T any](outcomes []T, weights []float64) *WeightedSampler[T] {
	s, err := NewWeightedSampler(outcomes, weights)
	if err != nil {
		panic(err)
	}
	return s
}

// Uniform gives every outcome the same weight.
func Uniform[T any](outcomes []T) (*WeightedSampler[T], error) {
	weights := make([]float64, len(outcomes))
	for i := range weights {
		weights[i] = 1
	}
	return NewWeightedSampler(outcomes, weights)
}

func (s *WeightedSampler[T]) Sample(r *rand.Rand) T {
	x := r.Float64() * s.total
	// First cumulative bound strictly above x; zero-weight outcomes share the
	// bound of their predecessor and are never the first one above it.
	i := sort.Search(len(s.cumulative), func(i int) bool { return s.cumulative[i] > x })
	if i == len(s.cumulative) {
		i = len(s.cumulative) - 1
		for i > 0 && s.cumulative[i] == s.cumulative[i-1] {
			i--
		}
	}
	return s.outcomes[i]
}
