package genealogy

import (
	"maps"
	"slices"
)

// Population owns every individual of a simulation run. Individuals are
// stored in an append-only arena and addressed by [Handle]; pedigrees hold
// handles only and never own individuals.
//
// The zero value is not usable - use NewPopulation.
type Population struct {
	individuals []*Individual
	byPID       map[int]Handle

	pedigrees      map[int]*Pedigree
	nextPedigreeID int
}

// NewPopulation creates an empty population.
func NewPopulation() *Population {
	return &Population{
		byPID:          make(map[int]Handle),
		pedigrees:      make(map[int]*Pedigree),
		nextPedigreeID: 1,
	}
}

// AddIndividual creates an individual with no edges and returns its handle.
// It fails with ErrDuplicatePID if pid is already registered.
func (p *Population) AddIndividual(pid, generation int, female bool) (Handle, error) {
	if _, exists := p.byPID[pid]; exists {
		return NoHandle, invalidInput(ErrDuplicatePID, "pid %d", pid)
	}
	h := Handle(len(p.individuals))
	p.individuals = append(p.individuals, newIndividual(pid, generation, female))
	p.byPID[pid] = h
	return h, nil
}

// AddChild links child under parent, setting the child's mother and appending
// it to the parent's children.
//
// A child can have only one mother (ErrMotherAlreadySet) and the edge must not
// make the child an ancestor of itself (ErrCycle). Together these keep every
// component of the population a tree. Links can only be added while neither
// side belongs to a pedigree (ErrAlreadyAssigned); release the pedigree first.
func (p *Population) AddChild(parent, child Handle) error {
	par, err := p.lookup(parent)
	if err != nil {
		return err
	}
	kid, err := p.lookup(child)
	if err != nil {
		return err
	}
	for _, ind := range []*Individual{par, kid} {
		if ind.PedigreeIsSet() {
			return precondition(ErrAlreadyAssigned, "pid %d is in pedigree %d", ind.pid, ind.pedigreeID)
		}
	}
	if kid.mother != NoHandle {
		return invalidInput(ErrMotherAlreadySet, "pid %d", kid.pid)
	}
	for a := parent; a != NoHandle; a = p.individuals[a].mother {
		if a == child {
			return invalidInput(ErrCycle, "pid %d -> pid %d", par.pid, kid.pid)
		}
	}

	kid.mother = parent
	par.children = append(par.children, child)
	return nil
}

// Individual returns the individual addressed by h.
func (p *Population) Individual(h Handle) (*Individual, error) {
	return p.lookup(h)
}

// ByPID returns the handle of the individual with the given pid.
func (p *Population) ByPID(pid int) (Handle, bool) {
	h, ok := p.byPID[pid]
	return h, ok
}

// Len returns the number of individuals.
func (p *Population) Len() int { return len(p.individuals) }

// Handles returns every handle in creation order.
func (p *Population) Handles() []Handle {
	hs := make([]Handle, len(p.individuals))
	for i := range hs {
		hs[i] = Handle(i)
	}
	return hs
}

// Pedigree returns the registered pedigree with the given id.
func (p *Population) Pedigree(id int) (*Pedigree, bool) {
	ped, ok := p.pedigrees[id]
	return ped, ok
}

// PedigreeOf returns the pedigree h belongs to, or false when h is unknown or
// unassigned.
func (p *Population) PedigreeOf(h Handle) (*Pedigree, bool) {
	ind, err := p.lookup(h)
	if err != nil || !ind.PedigreeIsSet() {
		return nil, false
	}
	return p.Pedigree(ind.pedigreeID)
}

// Pedigrees returns every registered pedigree ordered by id.
func (p *Population) Pedigrees() []*Pedigree {
	ids := slices.Sorted(maps.Keys(p.pedigrees))
	out := make([]*Pedigree, len(ids))
	for i, id := range ids {
		out[i] = p.pedigrees[id]
	}
	return out
}

// SizeGeneration counts individuals of the given sex whose generation is at
// most upper. An upper bound of -1 disables the generation filter.
func (p *Population) SizeGeneration(female bool, upper int) int {
	n := 0
	for _, ind := range p.individuals {
		if upper != -1 && ind.generation > upper {
			continue
		}
		if ind.female != female {
			continue
		}
		n++
	}
	return n
}

// ReleasePedigree tears down the pedigree with the given id: every member
// forgets its membership and the pedigree drops its member and relation lists.
// The individuals themselves stay in the population. Unknown ids are ignored.
func (p *Population) ReleasePedigree(id int) {
	ped, ok := p.pedigrees[id]
	if !ok {
		return
	}
	for _, h := range ped.members {
		if ind := p.individuals[h]; ind.pedigreeID == id {
			ind.unsetPedigree()
		}
	}
	ped.members = nil
	ped.relations = nil
	ped.root = NoHandle
	ped.rootFound = false
	delete(p.pedigrees, id)
}

func (p *Population) lookup(h Handle) (*Individual, error) {
	if h < 0 || int(h) >= len(p.individuals) {
		return nil, precondition(ErrUnknownIndividual, "handle %d", h)
	}
	return p.individuals[h], nil
}
