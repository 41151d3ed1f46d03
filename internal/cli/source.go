package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsim/pkg/config"
	"github.com/matzehuels/pedsim/pkg/genealogy"
	pio "github.com/matzehuels/pedsim/pkg/io"
)

// sourceOpts selects where a command's population comes from: a JSON export
// (--input) or a fresh simulation configured by --config and flags.
type sourceOpts struct {
	input          string
	configPath     string
	generations    int
	generationSize int
	femaleRatio    float64
	seed           uint64
	loci           int
	mutationRate   float64
	founderProb    float64
}

// addSourceFlags registers --input and the simulation flags on cmd.
func addSourceFlags(cmd *cobra.Command, o *sourceOpts) {
	cmd.Flags().StringVarP(&o.input, "input", "i", "", "read the population from a JSON export instead of simulating")
	addSimulationFlags(cmd, o)
	cmd.MarkFlagsMutuallyExclusive("input", "config")
}

// addSimulationFlags registers the simulation flags on cmd. Flags given
// explicitly override values from --config.
func addSimulationFlags(cmd *cobra.Command, o *sourceOpts) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "simulation config file (.toml, .yaml)")
	f.IntVarP(&o.generations, "generations", "g", 0, "number of generations")
	f.IntVarP(&o.generationSize, "size", "n", 0, "individuals per generation")
	f.Float64Var(&o.femaleRatio, "female-ratio", 0, "probability of an individual being female")
	f.Uint64VarP(&o.seed, "seed", "s", 0, "random seed")
	f.IntVar(&o.loci, "loci", 0, "haplotype length (0 disables haplotypes)")
	f.Float64Var(&o.mutationRate, "mutation-rate", 0, "per-locus mutation probability per meiosis")
	f.Float64Var(&o.founderProb, "founder-variant-prob", 0, "draw founder loci as variants with this probability")
}

// config loads --config (or defaults) and applies explicitly set flags.
func (o *sourceOpts) config(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("generations") {
		cfg.Generations = o.generations
	}
	if f.Changed("size") {
		cfg.GenerationSize = o.generationSize
	}
	if f.Changed("female-ratio") {
		cfg.FemaleRatio = o.femaleRatio
	}
	if f.Changed("seed") {
		cfg.Seed = o.seed
	}
	if f.Changed("founder-variant-prob") {
		cfg.FounderVariantProb = o.founderProb
	}
	lociSet, rateSet := f.Changed("loci"), f.Changed("mutation-rate")
	if lociSet {
		cfg.Loci = o.loci
	}
	switch {
	case rateSet:
		cfg.MutationRate = o.mutationRate
		cfg.MutationRates = nil
	case lociSet && perLocusRates(cfg):
		// Per-locus rates from the file are kept; --loci can only confirm them.
		if len(cfg.MutationRates) != cfg.Loci {
			return nil, fmt.Errorf("--loci %d does not match the %d mutation_rates in %s; pass --mutation-rate to replace them",
				cfg.Loci, len(cfg.MutationRates), o.configPath)
		}
	case lociSet:
		cfg.MutationRates = nil
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// perLocusRates reports whether cfg holds rates that are not a broadcast of
// its scalar mutation rate.
func perLocusRates(cfg *config.Config) bool {
	return slices.ContainsFunc(cfg.MutationRates, func(r float64) bool { return r != cfg.MutationRate })
}

// population returns the population selected by o together with its run id.
// Imported populations get pedigrees assigned when the export had none.
func (c *CLI) population(ctx context.Context, cmd *cobra.Command, o *sourceOpts) (*genealogy.Population, string, error) {
	logger := loggerFromContext(ctx)
	if o.input != "" {
		prog := newProgress(logger)
		pop, runID, err := pio.ImportJSON(o.input)
		if err != nil {
			return nil, "", err
		}
		if len(pop.Pedigrees()) == 0 {
			if _, err := pop.AssignPedigrees(); err != nil {
				return nil, "", err
			}
		}
		prog.done(fmt.Sprintf("Loaded %d individuals from %s", pop.Len(), o.input))
		return pop, runID, nil
	}

	cfg, err := o.config(cmd)
	if err != nil {
		return nil, "", err
	}
	res, err := c.newRunner().Run(ctx, cfg.Options())
	if err != nil {
		return nil, "", err
	}
	logger.Debug("simulated population", "run", res.RunID, "individuals", res.Stats.Individuals)
	return res.Population, res.RunID, nil
}

// lookupPID resolves a pid argument.
func lookupPID(pop *genealogy.Population, arg string) (genealogy.Handle, error) {
	pid, err := strconv.Atoi(arg)
	if err != nil {
		return genealogy.NoHandle, fmt.Errorf("invalid pid %q", arg)
	}
	h, ok := pop.ByPID(pid)
	if !ok {
		return genealogy.NoHandle, fmt.Errorf("individual %d not found", pid)
	}
	return h, nil
}

// pidsOf converts handles to pids for display.
func pidsOf(pop *genealogy.Population, hs []genealogy.Handle) []int {
	out := make([]int, len(hs))
	for i, h := range hs {
		if ind, err := pop.Individual(h); err == nil {
			out[i] = ind.PID()
		}
	}
	return out
}
