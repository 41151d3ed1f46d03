package genealogy

// Relation is a directed mother→child edge recorded during assignment.
type Relation struct {
	Parent Handle
	Child  Handle
}

// Pedigree is one tree-shaped connected component of a [Population].
//
// Members are kept in discovery order. The root (the single member without a
// mother) is found lazily and cached. A Pedigree references its population but
// never owns the individuals.
type Pedigree struct {
	id        int
	pop       *Population
	members   []Handle
	relations []Relation

	root      Handle
	rootFound bool
}

// NewPedigree creates an empty pedigree over pop. Pedigrees are normally
// created by [Population.AssignPedigree]; building one by hand is useful to
// inspect arbitrary member sets.
func NewPedigree(id int, pop *Population) *Pedigree {
	return &Pedigree{id: id, pop: pop, root: NoHandle}
}

// ID returns the pedigree id.
func (d *Pedigree) ID() int { return d.id }

// Population returns the population the pedigree's handles refer to.
func (d *Pedigree) Population() *Population { return d.pop }

// Members returns the member handles in discovery order. The returned slice
// should not be modified.
func (d *Pedigree) Members() []Handle { return d.members }

// Relations returns the mother→child edges in discovery order. The returned
// slice should not be modified.
func (d *Pedigree) Relations() []Relation { return d.relations }

// Size returns the number of members.
func (d *Pedigree) Size() int { return len(d.members) }

// AddMember appends h to the member list.
func (d *Pedigree) AddMember(h Handle) {
	d.members = append(d.members, h)
}

// AddRelation appends the parent→child edge.
func (d *Pedigree) AddRelation(parent, child Handle) {
	d.relations = append(d.relations, Relation{Parent: parent, Child: child})
}

// Root returns the unique member without a mother. It fails with ErrNoRoot or
// ErrMultipleRoots when the members do not form a single tree. A successful
// result is cached.
func (d *Pedigree) Root() (Handle, error) {
	if d.rootFound {
		return d.root, nil
	}
	root, err := d.findRoot()
	if err != nil {
		return NoHandle, err
	}
	d.root = root
	d.rootFound = true
	return root, nil
}

func (d *Pedigree) findRoot() (Handle, error) {
	root := NoHandle
	for _, h := range d.members {
		ind, err := d.pop.lookup(h)
		if err != nil {
			return NoHandle, err
		}
		if ind.mother != NoHandle {
			continue
		}
		if root != NoHandle {
			return NoHandle, invariant(ErrMultipleRoots, "pedigree %d: pid %d and pid %d",
				d.id, d.pop.individuals[root].pid, ind.pid)
		}
		root = h
	}
	if root == NoHandle {
		return NoHandle, invariant(ErrNoRoot, "pedigree %d", d.id)
	}
	return root, nil
}

// Validate checks that members and relations form a single tree: exactly one
// root, every other member's mother is a member, each relation matches a
// mother link and there are exactly len(members)-1 relations.
func (d *Pedigree) Validate() error {
	if _, err := d.findRoot(); err != nil {
		return err
	}

	inPedigree := make(map[Handle]struct{}, len(d.members))
	for _, h := range d.members {
		if _, dup := inPedigree[h]; dup {
			return invariant(ErrNotATree, "pedigree %d: pid %d listed twice", d.id, d.pop.individuals[h].pid)
		}
		inPedigree[h] = struct{}{}
	}
	for _, h := range d.members {
		ind := d.pop.individuals[h]
		if ind.mother == NoHandle {
			continue
		}
		if _, ok := inPedigree[ind.mother]; !ok {
			return invariant(ErrNotATree, "pedigree %d: mother of pid %d is not a member", d.id, ind.pid)
		}
	}
	for _, r := range d.relations {
		child, err := d.pop.lookup(r.Child)
		if err != nil {
			return err
		}
		if child.mother != r.Parent {
			return invariant(ErrNotATree, "pedigree %d: relation to pid %d does not match its mother", d.id, child.pid)
		}
	}
	if len(d.relations) != len(d.members)-1 {
		return invariant(ErrNotATree, "pedigree %d: %d members but %d relations",
			d.id, len(d.members), len(d.relations))
	}
	return nil
}

// SizeGeneration counts members whose generation is at most upper. An upper
// bound of -1 counts every member.
func (d *Pedigree) SizeGeneration(upper int) int {
	n := 0
	for _, h := range d.members {
		if upper != -1 && d.pop.individuals[h].generation > upper {
			continue
		}
		n++
	}
	return n
}
