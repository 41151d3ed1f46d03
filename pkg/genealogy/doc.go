// Package genealogy models maternal-line pedigrees and the inheritance of
// bi-allelic haplotypes through them.
//
// # Overview
//
// A [Population] is an arena of [Individual] nodes addressed by stable
// [Handle] values. Every individual has at most one mother and an ordered
// list of children, so the population is a forest. Edges are added with
// [Population.AddChild], which rejects second mothers and cycles, keeping
// every connected component a tree. Edges must be added before pedigrees are
// assigned.
//
//	pop := genealogy.NewPopulation()
//	root, _ := pop.AddIndividual(1, 2, true)
//	kid, _ := pop.AddIndividual(2, 1, true)
//	_ = pop.AddChild(root, kid)
//
// # Pedigrees
//
// A [Pedigree] is one connected component. [Population.AssignPedigree]
// flood-fills the component of an individual, tags every member with a fresh
// pedigree id and records the parent→child relations it crosses. Assignment
// is idempotent: starting from an already tagged individual returns its
// existing pedigree. [Population.AssignPedigrees] partitions the whole
// population.
//
// # Meiotic Distance
//
// [Population.Distance] returns the number of parent/child edges (meioses)
// between two individuals of the same pedigree, or -1 when they belong to
// different pedigrees. [Population.PathBetween] returns the lowest common
// ancestor followed by the two descending branches. Both walk the tree with
// a per-query worklist and visited set, so the individuals themselves carry
// no traversal state and read-only queries may run concurrently.
//
// # Haplotypes
//
// [Pedigree.SeedHaplotypes] gives the pedigree root an all-reference
// haplotype and propagates it top-down; every child receives a copy of its
// mother's haplotype which is then mutated once, locus by locus, with the
// supplied per-locus rates. [Pedigree.SeedHaplotypesCustom] takes the founder
// haplotype from an injected [FounderFunc]. Randomness always comes from an
// explicit *rand.Rand so runs are reproducible.
//
// # Errors
//
// Failures wrap one of the sentinel errors of this package in a coded
// [github.com/matzehuels/pedsim/pkg/errors.Error]: PRECONDITION for operands
// in the wrong state, INVARIANT for malformed forests and INVALID_INPUT for
// rejected construction. Use errors.Is with the sentinels or errors.Is from
// pkg/errors with the code.
//
// # Concurrency
//
// Population and Pedigree are not safe for concurrent mutation. Assignment,
// seeding and clearing must not overlap with any other call on the same
// population. Distance, path and histogram queries only read, and may run in
// parallel once the population is fully built.
package genealogy
