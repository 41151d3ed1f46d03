package genealogy

import (
	"math"
	"math/rand/v2"
	"slices"
)

// FounderFunc supplies the founder haplotype for custom seeding. It is called
// exactly once per seeded pedigree.
type FounderFunc func() []bool

// PassHaplotypeToChildren copies h's haplotype into each of its children and
// mutates every copy once. With recursive set, each child passes its mutated
// haplotype on to its own children before the next sibling is handled, so
// random draws follow a pre-order walk of the subtree.
func (p *Population) PassHaplotypeToChildren(h Handle, recursive bool, rates []float64, rng *rand.Rand) error {
	parent, err := p.lookup(h)
	if err != nil {
		return err
	}
	if !parent.haplotypeSet {
		return precondition(ErrHaplotypeNotSet, "cannot pass on haplotype of pid %d", parent.pid)
	}

	stack := make([]Relation, 0, len(parent.children))
	for _, c := range slices.Backward(parent.children) {
		stack = append(stack, Relation{Parent: h, Child: c})
	}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		mother := p.individuals[r.Parent]
		child := p.individuals[r.Child]
		child.SetHaplotype(mother.haplotype, mother.variants)
		if err := child.Mutate(rng, rates); err != nil {
			return err
		}

		if !recursive {
			continue
		}
		for _, c := range slices.Backward(child.children) {
			stack = append(stack, Relation{Parent: r.Child, Child: c})
		}
	}
	return nil
}

// SeedHaplotypes gives the root an all-reference haplotype of the given
// number of loci (no variants) and propagates it, with mutation, to every
// descendant. loci must equal len(rates) and every rate must lie in [0, 1].
func (d *Pedigree) SeedHaplotypes(loci int, rates []float64, rng *rand.Rand) error {
	if loci < 0 || loci != len(rates) {
		return precondition(ErrLengthMismatch, "pedigree %d: %d loci, %d mutation rates", d.id, loci, len(rates))
	}
	if err := validateRates(rates); err != nil {
		return err
	}
	root, err := d.Root()
	if err != nil {
		return err
	}

	d.pop.individuals[root].SetHaplotype(make([]bool, loci), 0)
	return d.pop.PassHaplotypeToChildren(root, true, rates, rng)
}

// SeedHaplotypesCustom seeds the root with the haplotype produced by founder
// and propagates it like [Pedigree.SeedHaplotypes]. The founder haplotype must
// have one locus per mutation rate.
func (d *Pedigree) SeedHaplotypesCustom(rates []float64, founder FounderFunc, rng *rand.Rand) error {
	if founder == nil {
		return precondition(ErrNilFounder, "pedigree %d", d.id)
	}
	if err := validateRates(rates); err != nil {
		return err
	}
	root, err := d.Root()
	if err != nil {
		return err
	}

	h := founder()
	if len(h) != len(rates) {
		return precondition(ErrLengthMismatch, "pedigree %d: founder haplotype has %d loci, %d mutation rates",
			d.id, len(h), len(rates))
	}
	variants := 0
	for _, v := range h {
		if v {
			variants++
		}
	}

	d.pop.individuals[root].SetHaplotype(h, variants)
	return d.pop.PassHaplotypeToChildren(root, true, rates, rng)
}

// ClearHaplotypes drops haplotype state, including mutation flags and cluster
// ids, from every member so the pedigree can be seeded again.
func (d *Pedigree) ClearHaplotypes() {
	for _, h := range d.members {
		d.pop.individuals[h].clearHaplotype()
	}
}

func validateRates(rates []float64) error {
	for i, r := range rates {
		if math.IsNaN(r) || r < 0 || r > 1 {
			return precondition(ErrInvalidRate, "locus %d has rate %v", i, r)
		}
	}
	return nil
}

// HaplotypeDistance returns the number of loci at which the haplotypes of a
// and b differ. Both haplotypes must be set and of equal length.
func (p *Population) HaplotypeDistance(a, b Handle) (int, error) {
	ha, hb, err := p.haplotypePair(a, b)
	if err != nil {
		return 0, err
	}
	d := 0
	for i := range ha {
		if ha[i] != hb[i] {
			d++
		}
	}
	return d, nil
}

// HaplotypesEqual reports whether a and b carry identical haplotypes. Differing
// variant counts decide inequality without comparing loci.
func (p *Population) HaplotypesEqual(a, b Handle) (bool, error) {
	ha, hb, err := p.haplotypePair(a, b)
	if err != nil {
		return false, err
	}
	if p.individuals[a].variants != p.individuals[b].variants {
		return false, nil
	}
	return slices.Equal(ha, hb), nil
}

func (p *Population) haplotypePair(a, b Handle) ([]bool, []bool, error) {
	ia, err := p.lookup(a)
	if err != nil {
		return nil, nil, err
	}
	ib, err := p.lookup(b)
	if err != nil {
		return nil, nil, err
	}
	if !ia.haplotypeSet {
		return nil, nil, precondition(ErrHaplotypeNotSet, "pid %d", ia.pid)
	}
	if !ib.haplotypeSet {
		return nil, nil, precondition(ErrHaplotypeNotSet, "pid %d", ib.pid)
	}
	if len(ia.haplotype) != len(ib.haplotype) {
		return nil, nil, precondition(ErrLengthMismatch, "pid %d has %d loci, pid %d has %d",
			ia.pid, len(ia.haplotype), ib.pid, len(ib.haplotype))
	}
	return ia.haplotype, ib.haplotype, nil
}

// InferHaplotypeIDs groups the given individuals by identical haplotype and
// assigns cluster ids 1..k in order of first appearance. It returns k. Every
// individual must have a haplotype.
func InferHaplotypeIDs(pop *Population, handles []Handle) (int, error) {
	type cluster struct {
		haplotype []bool
		id        int
	}
	byVariants := make(map[int][]cluster)
	next := 1

	for _, h := range handles {
		ind, err := pop.lookup(h)
		if err != nil {
			return 0, err
		}
		if !ind.haplotypeSet {
			return 0, precondition(ErrHaplotypeNotSet, "pid %d", ind.pid)
		}

		id := 0
		for _, c := range byVariants[ind.variants] {
			if slices.Equal(c.haplotype, ind.haplotype) {
				id = c.id
				break
			}
		}
		if id == 0 {
			id = next
			next++
			byVariants[ind.variants] = append(byVariants[ind.variants], cluster{haplotype: ind.haplotype, id: id})
		}
		ind.SetHaplotypeID(id)
	}
	return next - 1, nil
}
