package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	perrors "github.com/matzehuels/pedsim/pkg/errors"
	"github.com/matzehuels/pedsim/pkg/genealogy"
)

// ReadJSON decodes a JSON population from r.
//
// Individuals are created first, then mother links are added in file order.
// When any individual carries a pedigree id, pedigrees are re-assigned on the
// imported population. Stored haplotypes are restored as set but not mutated.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A pid is duplicated or not positive
//   - A mother pid is unknown
//   - A link gives a child a second mother or creates a cycle
//   - A haplotype is present without its variant count, or with a count
//     that differs from its number of variant loci
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*genealogy.Population, string, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, "", fmt.Errorf("decode: %w", err)
	}
	pop, err := Decode(&doc)
	if err != nil {
		return nil, "", err
	}
	return pop, doc.RunID, nil
}

// Decode rebuilds a population from its document form.
func Decode(doc *Document) (*genealogy.Population, error) {
	pop := genealogy.NewPopulation()
	assigned := false
	for _, in := range doc.Individuals {
		if in.PID <= 0 {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "pid must be positive, got %d", in.PID)
		}
		h, err := pop.AddIndividual(in.PID, in.Generation, in.Female)
		if err != nil {
			return nil, fmt.Errorf("individual %d: %w", in.PID, err)
		}
		if in.Haplotype != nil {
			if in.Variants == nil {
				return nil, perrors.New(perrors.ErrCodeInvalidInput, "individual %d: haplotype without variant count", in.PID)
			}
			if n := countVariants(in.Haplotype); n != *in.Variants {
				return nil, perrors.New(perrors.ErrCodeInvalidInput, "individual %d: variant count %d, haplotype has %d", in.PID, *in.Variants, n)
			}
			ind, _ := pop.Individual(h)
			ind.SetHaplotype(in.Haplotype, *in.Variants)
		}
		if in.Pedigree != 0 {
			assigned = true
		}
	}

	for _, in := range doc.Individuals {
		if in.Mother == 0 {
			continue
		}
		mother, ok := pop.ByPID(in.Mother)
		if !ok {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "individual %d: unknown mother %d", in.PID, in.Mother)
		}
		child, _ := pop.ByPID(in.PID)
		if err := pop.AddChild(mother, child); err != nil {
			return nil, fmt.Errorf("individual %d: %w", in.PID, err)
		}
	}

	if assigned {
		if _, err := pop.AssignPedigrees(); err != nil {
			return nil, err
		}
	}
	return pop, nil
}

// ImportJSON reads a JSON file at path and returns the decoded population and
// its run id.
func ImportJSON(path string) (*genealogy.Population, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func countVariants(h []bool) int {
	n := 0
	for _, v := range h {
		if v {
			n++
		}
	}
	return n
}
