package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pedsim/pkg/genealogy"
)

// Document is the top-level JSON object.
type Document struct {
	RunID       string       `json:"run_id,omitempty"`
	Individuals []Individual `json:"individuals"`
	Pedigrees   []Pedigree   `json:"pedigrees,omitempty"`
}

// Individual is the JSON form of one individual.
type Individual struct {
	PID        int    `json:"pid"`
	Generation int    `json:"generation"`
	Female     bool   `json:"female,omitempty"`
	Mother     int    `json:"mother,omitempty"`
	Pedigree   int    `json:"pedigree,omitempty"`
	Haplotype  []bool `json:"haplotype,omitempty"`
	Variants   *int   `json:"variants,omitempty"`
}

// Pedigree summarizes one pedigree.
type Pedigree struct {
	ID   int `json:"id"`
	Root int `json:"root"`
	Size int `json:"size"`
}

// Encode converts a population into its JSON document form.
func Encode(pop *genealogy.Population, runID string) (*Document, error) {
	doc := &Document{
		RunID:       runID,
		Individuals: make([]Individual, 0, pop.Len()),
	}
	for _, h := range pop.Handles() {
		ind, err := pop.Individual(h)
		if err != nil {
			return nil, err
		}
		out := Individual{
			PID:        ind.PID(),
			Generation: ind.Generation(),
			Female:     ind.IsFemale(),
			Pedigree:   ind.PedigreeID(),
		}
		if m := ind.Mother(); m != genealogy.NoHandle {
			mother, err := pop.Individual(m)
			if err != nil {
				return nil, err
			}
			out.Mother = mother.PID()
		}
		if ind.HaplotypeIsSet() {
			hap, err := ind.Haplotype()
			if err != nil {
				return nil, err
			}
			v := ind.Variants()
			out.Haplotype = hap
			out.Variants = &v
		}
		doc.Individuals = append(doc.Individuals, out)
	}

	for _, ped := range pop.Pedigrees() {
		root, err := ped.Root()
		if err != nil {
			return nil, fmt.Errorf("pedigree %d: %w", ped.ID(), err)
		}
		ind, err := pop.Individual(root)
		if err != nil {
			return nil, err
		}
		doc.Pedigrees = append(doc.Pedigrees, Pedigree{ID: ped.ID(), Root: ind.PID(), Size: ped.Size()})
	}
	return doc, nil
}

// WriteJSON encodes a population as JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(pop *genealogy.Population, runID string, w io.Writer) error {
	doc, err := Encode(pop, runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a population to a JSON file at path.
func ExportJSON(pop *genealogy.Population, runID, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(pop, runID, f)
}
