package genealogy

import "slices"

// AssignPedigree tags the whole connected component of start with a fresh
// pedigree id and returns the new, registered pedigree.
//
// The component is flood-filled over mother and child edges with an explicit
// stack. Each newly reached individual is tagged and appended to the members;
// each mother→child edge is recorded once, when the mother is expanded. If
// start already belongs to a pedigree the call is a no-op and returns that
// pedigree.
func (p *Population) AssignPedigree(start Handle) (*Pedigree, error) {
	ind, err := p.lookup(start)
	if err != nil {
		return nil, err
	}
	if ind.PedigreeIsSet() {
		if ped, ok := p.pedigrees[ind.pedigreeID]; ok {
			return ped, nil
		}
		return nil, invariant(ErrPedigreeNotSet, "pid %d references released pedigree %d", ind.pid, ind.pedigreeID)
	}

	ped := NewPedigree(p.nextPedigreeID, p)
	p.nextPedigreeID++
	p.pedigrees[ped.id] = ped

	stack := []Handle{start}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		cur := p.individuals[h]
		if cur.PedigreeIsSet() {
			continue
		}
		cur.pedigreeID = ped.id
		ped.AddMember(h)

		for _, c := range cur.children {
			ped.AddRelation(h, c)
		}
		for _, c := range slices.Backward(cur.children) {
			if !p.individuals[c].PedigreeIsSet() {
				stack = append(stack, c)
			}
		}
		// Pushed last so the mother's side is explored first.
		if cur.mother != NoHandle && !p.individuals[cur.mother].PedigreeIsSet() {
			stack = append(stack, cur.mother)
		}
	}
	return ped, nil
}

// AssignPedigrees partitions the population into pedigrees, starting from
// every individual in handle order. Individuals already assigned keep their
// pedigree. It returns all registered pedigrees ordered by id, or the first
// error, which leaves the pedigrees assigned so far in place.
func (p *Population) AssignPedigrees() ([]*Pedigree, error) {
	for h := range p.individuals {
		if _, err := p.AssignPedigree(Handle(h)); err != nil {
			return nil, err
		}
	}
	return p.Pedigrees(), nil
}
