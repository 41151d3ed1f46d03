package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/pedsim/pkg/errors"
)

func testRunner() *Runner {
	return NewRunner(log.New(&bytes.Buffer{}))
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if o.Generations != DefaultGenerations {
		t.Errorf("Generations = %d, want %d", o.Generations, DefaultGenerations)
	}
	if o.GenerationSize != DefaultGenerationSize {
		t.Errorf("GenerationSize = %d, want %d", o.GenerationSize, DefaultGenerationSize)
	}
	if o.FemaleRatio != DefaultFemaleRatio {
		t.Errorf("FemaleRatio = %v, want %v", o.FemaleRatio, DefaultFemaleRatio)
	}
	if o.Seed != DefaultSeed {
		t.Errorf("Seed = %d, want %d", o.Seed, DefaultSeed)
	}
	if o.Loci != 0 {
		t.Errorf("Loci = %d, want 0", o.Loci)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"loci from rates", Options{MutationRates: []float64{0.1, 0.2}}, false},
		{"loci without rates", Options{Loci: 3}, true},
		{"loci mismatch", Options{Loci: 3, MutationRates: []float64{0.1}}, true},
		{"negative loci", Options{Loci: -1}, true},
		{"rate above one", Options{MutationRates: []float64{1.2}}, true},
		{"NaN rate", Options{MutationRates: []float64{0.1, math.NaN()}}, true},
		{"NaN founder prob", Options{MutationRates: []float64{0.1}, FounderVariantProb: math.NaN()}, true},
		{"NaN ratio", Options{FemaleRatio: math.NaN()}, true},
		{"founder prob", Options{MutationRates: []float64{0.1}, FounderVariantProb: 2}, true},
		{"bad ratio", Options{FemaleRatio: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts
			err := o.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !perrors.Is(err, perrors.ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", perrors.GetCode(err), perrors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestRun(t *testing.T) {
	opts := Options{
		Generations:    4,
		GenerationSize: 30,
		Seed:           7,
		MutationRates:  []float64{0, 0, 0},
	}
	res, err := testRunner().Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if res.Stats.Individuals != 120 {
		t.Errorf("Individuals = %d, want 120", res.Stats.Individuals)
	}
	if res.Stats.Pedigrees != len(res.Pedigrees) {
		t.Errorf("Stats.Pedigrees = %d, want %d", res.Stats.Pedigrees, len(res.Pedigrees))
	}

	total := 0
	for _, ped := range res.Pedigrees {
		if err := ped.Validate(); err != nil {
			t.Errorf("pedigree %d: Validate() error = %v", ped.ID(), err)
		}
		total += ped.Size()
		for _, h := range ped.Members() {
			ind, _ := res.Population.Individual(h)
			hap, err := ind.Haplotype()
			if err != nil {
				t.Fatalf("Haplotype() error = %v", err)
			}
			// Zero mutation rates keep the all-reference founder haplotype.
			if ind.Variants() != 0 || len(hap) != 3 {
				t.Errorf("pid %d: variants = %d, loci = %d", ind.PID(), ind.Variants(), len(hap))
			}
		}
	}
	if total != res.Stats.Individuals {
		t.Errorf("pedigree members = %d, want %d", total, res.Stats.Individuals)
	}
	if res.LargestPedigree().Size() != res.Stats.LargestPedigree {
		t.Errorf("LargestPedigree().Size() = %d, want %d", res.LargestPedigree().Size(), res.Stats.LargestPedigree)
	}
}

func TestRun_Reproducible(t *testing.T) {
	opts := Options{
		Generations:        3,
		GenerationSize:     20,
		Seed:               11,
		MutationRates:      []float64{0.2, 0.4, 0.6, 0.8},
		FounderVariantProb: 0.5,
	}
	haplotypes := func() [][]bool {
		res, err := testRunner().Run(context.Background(), opts)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		var out [][]bool
		for _, h := range res.Population.Handles() {
			ind, _ := res.Population.Individual(h)
			hap, _ := ind.Haplotype()
			out = append(out, hap)
		}
		return out
	}

	a, b := haplotypes(), haplotypes()
	if len(a) != len(b) {
		t.Fatalf("len = %d and %d", len(a), len(b))
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("individual %d locus %d differs between runs", i, j)
			}
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testRunner().Run(ctx, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
}

func TestRunReplicates(t *testing.T) {
	opts := Options{Generations: 3, GenerationSize: 10, Seed: 100}
	results, err := testRunner().RunReplicates(context.Background(), opts, 4)
	if err != nil {
		t.Fatalf("RunReplicates() error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}
	seen := make(map[string]bool)
	for i, res := range results {
		if res.Seed != uint64(100+i) {
			t.Errorf("results[%d].Seed = %d, want %d", i, res.Seed, 100+i)
		}
		if seen[res.RunID] {
			t.Errorf("duplicate RunID %s", res.RunID)
		}
		seen[res.RunID] = true
	}

	if _, err := testRunner().RunReplicates(context.Background(), opts, 0); err == nil {
		t.Error("RunReplicates(0) should fail")
	}
}

func TestRandomFounder(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	tests := []struct {
		p    float64
		want bool
	}{
		{0, false},
		{1, true},
	}
	for _, tt := range tests {
		founder := RandomFounder(6, tt.p, rng)
		h := founder()
		if len(h) != 6 {
			t.Fatalf("len = %d, want 6", len(h))
		}
		for i, v := range h {
			if v != tt.want {
				t.Errorf("p=%v: locus %d = %v, want %v", tt.p, i, v, tt.want)
			}
		}
	}

	// Each call yields a fresh slice.
	founder := RandomFounder(2, 0, rng)
	a := founder()
	a[0] = true
	if founder()[0] {
		t.Error("founder slices are shared between calls")
	}
}
