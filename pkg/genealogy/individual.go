package genealogy

import (
	"math/rand/v2"
	"slices"
)

// Handle addresses an [Individual] inside its [Population]. Handles are
// indices into the population arena and stay valid for the population's
// lifetime.
type Handle int

// NoHandle marks an absent individual: a founder's mother or a nil target.
const NoHandle Handle = -1

// Individual is a node of a genealogy tree.
//
// Identity (pid, generation, sex) is fixed at construction. Graph edges are
// stored as handles into the owning population; the individual owns its child
// list but not the children. Pedigree membership is recorded as an id, 0
// meaning unassigned.
type Individual struct {
	pid        int
	generation int
	female     bool

	mother   Handle
	children []Handle

	pedigreeID int

	haplotype    []bool
	variants     int // cached count of true loci, -1 until set
	haplotypeSet bool
	mutated      bool
	haplotypeID  int // cluster id, 0 until inferred
}

func newIndividual(pid, generation int, female bool) *Individual {
	return &Individual{
		pid:        pid,
		generation: generation,
		female:     female,
		mother:     NoHandle,
		variants:   -1,
	}
}

// PID returns the individual's unique id.
func (i *Individual) PID() int { return i.pid }

// Generation returns the number of generations from the final (youngest)
// generation, which is 0.
func (i *Individual) Generation() int { return i.generation }

// IsFemale reports the individual's sex.
func (i *Individual) IsFemale() bool { return i.female }

// Mother returns the mother's handle, or NoHandle for a founder.
func (i *Individual) Mother() Handle { return i.mother }

// Children returns a copy of the child handles in insertion order.
func (i *Individual) Children() []Handle { return slices.Clone(i.children) }

// ChildCount returns the number of children.
func (i *Individual) ChildCount() int { return len(i.children) }

// PedigreeIsSet reports whether the individual has been assigned to a pedigree.
func (i *Individual) PedigreeIsSet() bool { return i.pedigreeID != 0 }

// PedigreeID returns the pedigree id, or 0 when unassigned.
func (i *Individual) PedigreeID() int { return i.pedigreeID }

func (i *Individual) unsetPedigree() {
	i.pedigreeID = 0
}

// HaplotypeIsSet reports whether a haplotype has been assigned.
func (i *Individual) HaplotypeIsSet() bool { return i.haplotypeSet }

// IsMutated reports whether the haplotype has already been mutated.
func (i *Individual) IsMutated() bool { return i.mutated }

// Variants returns the cached number of variant (true) loci, or -1 when the
// haplotype has not been set.
func (i *Individual) Variants() int { return i.variants }

// SetHaplotype stores a copy of h together with its variant count. The caller
// is responsible for variants matching h.
func (i *Individual) SetHaplotype(h []bool, variants int) {
	i.haplotype = slices.Clone(h)
	i.variants = variants
	i.haplotypeSet = true
}

// Haplotype returns a copy of the haplotype. It fails with ErrHaplotypeNotSet
// before a haplotype was assigned.
func (i *Individual) Haplotype() ([]bool, error) {
	if !i.haplotypeSet {
		return nil, precondition(ErrHaplotypeNotSet, "pid %d", i.pid)
	}
	return slices.Clone(i.haplotype), nil
}

// Mutate flips each locus independently with the probability given by the
// matching entry of rates and keeps the variant count in step. A haplotype can
// be mutated only once; mutating an unset haplotype, a haplotype whose length
// differs from rates, or one with an uninitialised variant count fails.
func (i *Individual) Mutate(rng *rand.Rand, rates []float64) error {
	if !i.haplotypeSet {
		return precondition(ErrHaplotypeNotSet, "cannot mutate pid %d", i.pid)
	}
	if len(i.haplotype) != len(rates) {
		return precondition(ErrLengthMismatch, "pid %d has %d loci, got %d mutation rates",
			i.pid, len(i.haplotype), len(rates))
	}
	if i.mutated {
		return precondition(ErrAlreadyMutated, "pid %d", i.pid)
	}
	if i.variants == -1 {
		return precondition(ErrVariantsUnset, "pid %d", i.pid)
	}

	for loc, rate := range rates {
		if rng.Float64() >= rate {
			continue
		}
		if i.haplotype[loc] {
			i.haplotype[loc] = false
			i.variants--
		} else {
			i.haplotype[loc] = true
			i.variants++
		}
	}
	i.mutated = true
	return nil
}

func (i *Individual) clearHaplotype() {
	i.haplotype = nil
	i.variants = -1
	i.haplotypeSet = false
	i.mutated = false
	i.haplotypeID = 0
}

// SetHaplotypeID records the haplotype cluster id. Ids are positive; 0 means
// "not inferred".
func (i *Individual) SetHaplotypeID(id int) { i.haplotypeID = id }

// HaplotypeID returns the haplotype cluster id, failing with
// ErrHaplotypeIDUnset when none was inferred.
func (i *Individual) HaplotypeID() (int, error) {
	if i.haplotypeID == 0 {
		return 0, precondition(ErrHaplotypeIDUnset, "pid %d", i.pid)
	}
	return i.haplotypeID, nil
}
