// Package simulate generates synthetic maternal-line populations.
//
// The generator is a haploid Wright-Fisher style model: a fixed number of
// individuals per generation, each (except in the oldest generation) picking
// a uniformly random female of the previous generation as mother. Every
// individual has at most one mother, so the result is a forest ready for
// [genealogy.Population.AssignPedigrees].
//
// Generations are counted from the final (youngest) generation, which is 0;
// founders sit at generation Generations-1. Pids are assigned sequentially
// from 1, oldest generation first.
package simulate

import (
	"context"
	"math"
	"math/rand/v2"

	perrors "github.com/matzehuels/pedsim/pkg/errors"
	"github.com/matzehuels/pedsim/pkg/genealogy"
)

// Options configures population generation.
type Options struct {
	Generations    int     // number of generations (>= 1)
	GenerationSize int     // individuals per generation (>= 1)
	FemaleRatio    float64 // probability that an individual is female, in [0, 1]
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Generations < 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "generations must be at least 1, got %d", o.Generations)
	}
	if o.GenerationSize < 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "generation size must be at least 1, got %d", o.GenerationSize)
	}
	if math.IsNaN(o.FemaleRatio) || o.FemaleRatio < 0 || o.FemaleRatio > 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "female ratio must be within [0, 1], got %v", o.FemaleRatio)
	}
	return nil
}

// Generate builds a population according to opts, drawing sexes and mothers
// from rng. Individuals of a generation without any female mother candidates
// become founders. ctx is checked once per generation.
func Generate(ctx context.Context, opts Options, rng *rand.Rand) (*genealogy.Population, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	pop := genealogy.NewPopulation()
	pid := 1
	var mothers []genealogy.Handle

	for gen := opts.Generations - 1; gen >= 0; gen-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		females := make([]genealogy.Handle, 0, opts.GenerationSize)
		for range opts.GenerationSize {
			female := rng.Float64() < opts.FemaleRatio
			h, err := pop.AddIndividual(pid, gen, female)
			if err != nil {
				return nil, err
			}
			pid++

			if len(mothers) > 0 {
				if err := pop.AddChild(mothers[rng.IntN(len(mothers))], h); err != nil {
					return nil, err
				}
			}
			if female {
				females = append(females, h)
			}
		}
		mothers = females
	}
	return pop, nil
}
