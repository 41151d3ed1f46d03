package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pedsim/pkg/genealogy"
	"github.com/matzehuels/pedsim/pkg/observability"
	"github.com/matzehuels/pedsim/pkg/simulate"
)

// founderStream offsets the PCG stream used for founder haplotypes so it
// never coincides with a pedigree's mutation stream.
const founderStream = 1 << 62

// Runner executes simulation runs.
//
// The Runner is stateless except for the logger - it doesn't store results.
// Multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Run executes the complete generate → assign → seed pipeline.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString(), Seed: opts.Seed}
	hooks := observability.Simulation()
	hooks.OnRunStart(ctx, result.RunID, opts.Generations, opts.GenerationSize)
	start := time.Now()

	err := r.run(ctx, opts, result)
	hooks.OnRunComplete(ctx, result.RunID, result.Stats.Individuals, result.Stats.Pedigrees, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) run(ctx context.Context, opts Options, result *Result) error {
	logger := r.Logger.With("run", result.RunID)

	// Stage 1: Generate
	genStart := time.Now()
	pop, err := simulate.Generate(ctx, opts.generatorOptions(), rand.New(rand.NewPCG(opts.Seed, 0)))
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	result.Population = pop
	result.Stats.Individuals = pop.Len()
	result.Stats.GenerateTime = time.Since(genStart)
	logger.Debug("generated population",
		"individuals", pop.Len(),
		"duration", result.Stats.GenerateTime)

	// Stage 2: Assign
	assignStart := time.Now()
	peds, err := pop.AssignPedigrees()
	if err != nil {
		return fmt.Errorf("assign: %w", err)
	}
	result.Pedigrees = peds
	result.Stats.Pedigrees = len(result.Pedigrees)
	if largest := result.LargestPedigree(); largest != nil {
		result.Stats.LargestPedigree = largest.Size()
	}
	result.Stats.AssignTime = time.Since(assignStart)
	logger.Debug("assigned pedigrees",
		"pedigrees", result.Stats.Pedigrees,
		"largest", result.Stats.LargestPedigree,
		"duration", result.Stats.AssignTime)

	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 3: Seed
	if opts.Loci == 0 {
		return nil
	}
	seedStart := time.Now()
	err = r.seed(ctx, opts, result.Pedigrees)
	result.Stats.Loci = opts.Loci
	result.Stats.SeedTime = time.Since(seedStart)
	observability.Simulation().OnSeedComplete(ctx, result.RunID, len(result.Pedigrees), opts.Loci, result.Stats.SeedTime, err)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Debug("seeded haplotypes",
		"loci", opts.Loci,
		"duration", result.Stats.SeedTime)
	return nil
}

func (r *Runner) seed(ctx context.Context, opts Options, peds []*genealogy.Pedigree) error {
	for _, ped := range peds {
		if err := ctx.Err(); err != nil {
			return err
		}
		rng := rand.New(rand.NewPCG(opts.Seed, uint64(ped.ID())))

		var err error
		if opts.FounderVariantProb > 0 {
			founder := RandomFounder(opts.Loci, opts.FounderVariantProb,
				rand.New(rand.NewPCG(opts.Seed, founderStream+uint64(ped.ID()))))
			err = ped.SeedHaplotypesCustom(opts.MutationRates, founder, rng)
		} else {
			err = ped.SeedHaplotypes(opts.Loci, opts.MutationRates, rng)
		}
		if err != nil {
			return fmt.Errorf("pedigree %d: %w", ped.ID(), err)
		}
	}
	return nil
}

// RandomFounder returns a founder supplier drawing each of loci loci as a
// variant with probability p.
func RandomFounder(loci int, p float64, rng *rand.Rand) genealogy.FounderFunc {
	return func() []bool {
		h := make([]bool, loci)
		for i := range h {
			h[i] = rng.Float64() < p
		}
		return h
	}
}

// RunReplicates runs n independent replicates of opts in parallel. Replicate
// i uses seed opts.Seed+i. Results are returned in replicate order; the first
// failure cancels the remaining replicates.
func (r *Runner) RunReplicates(ctx context.Context, opts Options, n int) ([]*Result, error) {
	if n < 1 {
		return nil, fmt.Errorf("replicates must be at least 1, got %d", n)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	results := make([]*Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range n {
		o := opts
		o.Seed = opts.Seed + uint64(i)
		g.Go(func() error {
			res, err := r.Run(ctx, o)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
