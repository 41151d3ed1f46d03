// Package pipeline provides the simulation pipeline for pedsim.
//
// This package implements the complete generate → assign → seed pipeline
// used by the CLI and the HTTP query server. By centralizing this logic, both
// entry points produce identical populations for identical options.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Generate: build a synthetic maternal-line forest ([simulate.Generate])
//  2. Assign: partition the forest into pedigrees
//  3. Seed: propagate founder haplotypes with per-locus mutation (skipped
//     when Loci is 0)
//
// Every pedigree is seeded from its own random stream derived from the run
// seed and the pedigree id, so results do not depend on seeding order.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Run(ctx, pipeline.Options{
//	    Generations:    5,
//	    GenerationSize: 200,
//	    Loci:           10,
//	    MutationRates:  rates,
//	})
//
// Independent replicates run in parallel with [Runner.RunReplicates]; each
// replicate owns its population, so no pedigree is shared between goroutines.
package pipeline

import (
	"math"
	"time"

	perrors "github.com/matzehuels/pedsim/pkg/errors"
	"github.com/matzehuels/pedsim/pkg/genealogy"
	"github.com/matzehuels/pedsim/pkg/simulate"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultGenerations is the number of simulated generations.
	DefaultGenerations = 5

	// DefaultGenerationSize is the number of individuals per generation.
	DefaultGenerationSize = 100

	// DefaultFemaleRatio is the probability of an individual being female.
	DefaultFemaleRatio = 0.5

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = 42
)

// Options configures one simulation run.
type Options struct {
	Generations    int
	GenerationSize int
	FemaleRatio    float64
	Seed           uint64

	// Loci is the haplotype length. 0 disables haplotype seeding.
	Loci int
	// MutationRates holds one per-meiosis flip probability per locus.
	MutationRates []float64
	// FounderVariantProb, when positive, draws each founder locus as a
	// variant with this probability instead of using all-reference founders.
	FounderVariantProb float64
}

// SetDefaults fills zero-valued fields. A zero Seed is replaced by
// DefaultSeed, and Loci is taken from MutationRates when unset.
func (o *Options) SetDefaults() {
	if o.FemaleRatio == 0 {
		o.FemaleRatio = DefaultFemaleRatio
	}
	if o.Generations == 0 {
		o.Generations = DefaultGenerations
	}
	if o.GenerationSize == 0 {
		o.GenerationSize = DefaultGenerationSize
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Loci == 0 && len(o.MutationRates) > 0 {
		o.Loci = len(o.MutationRates)
	}
}

// ValidateAndSetDefaults applies defaults and validates the options.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if err := o.generatorOptions().Validate(); err != nil {
		return err
	}
	if o.Loci < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "loci must not be negative, got %d", o.Loci)
	}
	if o.Loci != len(o.MutationRates) {
		return perrors.New(perrors.ErrCodeInvalidInput, "%d loci but %d mutation rates", o.Loci, len(o.MutationRates))
	}
	for i, r := range o.MutationRates {
		if math.IsNaN(r) || r < 0 || r > 1 {
			return perrors.New(perrors.ErrCodeInvalidInput, "mutation rate of locus %d must be within [0, 1], got %v", i, r)
		}
	}
	if math.IsNaN(o.FounderVariantProb) || o.FounderVariantProb < 0 || o.FounderVariantProb > 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "founder variant probability must be within [0, 1], got %v", o.FounderVariantProb)
	}
	return nil
}

func (o Options) generatorOptions() simulate.Options {
	return simulate.Options{
		Generations:    o.Generations,
		GenerationSize: o.GenerationSize,
		FemaleRatio:    o.FemaleRatio,
	}
}

// =============================================================================
// Result Types
// =============================================================================

// Result holds the output of a simulation run.
type Result struct {
	RunID      string
	Seed       uint64
	Population *genealogy.Population
	Pedigrees  []*genealogy.Pedigree
	Stats      Stats
}

// Stats holds statistics about a simulation run.
type Stats struct {
	Individuals     int
	Pedigrees       int
	LargestPedigree int
	Loci            int
	GenerateTime    time.Duration
	AssignTime      time.Duration
	SeedTime        time.Duration
}

// LargestPedigree returns the pedigree with most members, or nil when the
// result holds none. Ties go to the lowest id.
func (r *Result) LargestPedigree() *genealogy.Pedigree {
	var best *genealogy.Pedigree
	for _, p := range r.Pedigrees {
		if best == nil || p.Size() > best.Size() {
			best = p
		}
	}
	return best
}
