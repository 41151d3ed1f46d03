package genealogy

// step is a worklist entry: an individual and its distance from the start.
type step struct {
	h    Handle
	dist int
}

// Distance returns the number of meioses (parent/child edges) on the path
// between source and target.
//
// Preconditions are checked in order: source must be known and assigned,
// target must not be NoHandle, target must be known and assigned. Individuals
// of different pedigrees are not an error: the result is -1.
//
// The walk is breadth-first from target over mother and child edges with a
// visited set owned by this call, stopping at source. Distances are assigned
// on first visit, which on a tree is the unique path length.
func (p *Population) Distance(source, target Handle) (int, error) {
	same, err := p.checkPair(source, target)
	if err != nil {
		return 0, err
	}
	if !same {
		return -1, nil
	}

	visited := map[Handle]struct{}{target: {}}
	queue := []step{{h: target}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.h == source {
			return cur.dist, nil
		}
		queue = p.expand(cur, visited, queue)
	}
	return 0, invariant(ErrPathNotFound, "pid %d to pid %d",
		p.individuals[source].pid, p.individuals[target].pid)
}

// DistancesFrom returns the meiotic distance from source to every member of
// its pedigree, source included at distance 0.
func (p *Population) DistancesFrom(source Handle) (map[Handle]int, error) {
	ind, err := p.lookup(source)
	if err != nil {
		return nil, err
	}
	if !ind.PedigreeIsSet() {
		return nil, precondition(ErrPedigreeNotSet, "source pid %d", ind.pid)
	}

	dist := map[Handle]int{source: 0}
	visited := map[Handle]struct{}{source: {}}
	queue := []step{{h: source}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		dist[cur.h] = cur.dist
		queue = p.expand(cur, visited, queue)
	}
	return dist, nil
}

// expand enqueues the unvisited mother and children of cur one meiosis further.
func (p *Population) expand(cur step, visited map[Handle]struct{}, queue []step) []step {
	ind := p.individuals[cur.h]
	if m := ind.mother; m != NoHandle {
		if _, seen := visited[m]; !seen {
			visited[m] = struct{}{}
			queue = append(queue, step{h: m, dist: cur.dist + 1})
		}
	}
	for _, c := range ind.children {
		if _, seen := visited[c]; seen {
			continue
		}
		visited[c] = struct{}{}
		queue = append(queue, step{h: c, dist: cur.dist + 1})
	}
	return queue
}

// PathBetween returns the tree path joining source and target: their lowest
// common ancestor first, then the ancestor's descendants leading to source,
// then those leading to target. The result always holds Distance+1
// individuals.
//
// Preconditions match [Population.Distance]; individuals of different
// pedigrees yield an empty path. A pedigree without a unique root, or a member
// unreachable from the root, is an INVARIANT failure.
func (p *Population) PathBetween(source, target Handle) ([]Handle, error) {
	same, err := p.checkPair(source, target)
	if err != nil {
		return nil, err
	}
	if !same {
		return []Handle{}, nil
	}

	ped, ok := p.pedigrees[p.individuals[source].pedigreeID]
	if !ok {
		return nil, precondition(ErrPedigreeNotSet, "pedigree %d is not registered", p.individuals[source].pedigreeID)
	}
	root, err := ped.Root()
	if err != nil {
		return nil, err
	}

	pathSource, found := p.findPathFromRoot(root, source)
	if !found {
		return nil, invariant(ErrPathNotFound, "root to pid %d", p.individuals[source].pid)
	}
	pathTarget, found := p.findPathFromRoot(root, target)
	if !found {
		return nil, invariant(ErrPathNotFound, "root to pid %d", p.individuals[target].pid)
	}

	lca := 0
	for lca < len(pathSource) && lca < len(pathTarget) && pathSource[lca] == pathTarget[lca] {
		lca++
	}
	if lca == 0 {
		return nil, invariant(ErrNoCommonAncestor, "pid %d and pid %d",
			p.individuals[source].pid, p.individuals[target].pid)
	}

	out := make([]Handle, 0, 1+len(pathSource)-lca+len(pathTarget)-lca)
	out = append(out, pathSource[lca-1])
	out = append(out, pathSource[lca:]...)
	out = append(out, pathTarget[lca:]...)
	return out, nil
}

// findPathFromRoot searches the subtree of root depth-first and returns the
// handles from root down to dest, inclusive.
func (p *Population) findPathFromRoot(root, dest Handle) ([]Handle, bool) {
	type frame struct {
		h    Handle
		next int // index of the next child to descend into
	}

	if root == dest {
		return []Handle{root}, true
	}
	stack := []frame{{h: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := p.individuals[top.h].children
		if top.next == len(children) {
			stack = stack[:len(stack)-1]
			continue
		}
		c := children[top.next]
		top.next++
		stack = append(stack, frame{h: c})
		if c == dest {
			path := make([]Handle, len(stack))
			for i, f := range stack {
				path[i] = f.h
			}
			return path, true
		}
	}
	return nil, false
}

// checkPair validates distance/path operands and reports whether both belong
// to the same pedigree.
func (p *Population) checkPair(source, target Handle) (bool, error) {
	src, err := p.lookup(source)
	if err != nil {
		return false, err
	}
	if !src.PedigreeIsSet() {
		return false, precondition(ErrPedigreeNotSet, "source pid %d", src.pid)
	}
	if target == NoHandle {
		return false, precondition(ErrNilTarget, "")
	}
	dst, err := p.lookup(target)
	if err != nil {
		return false, err
	}
	if !dst.PedigreeIsSet() {
		return false, precondition(ErrPedigreeNotSet, "target pid %d", dst.pid)
	}
	return src.pedigreeID == dst.pedigreeID, nil
}
