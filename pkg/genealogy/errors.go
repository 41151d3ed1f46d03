package genealogy

import (
	"errors"

	perrors "github.com/matzehuels/pedsim/pkg/errors"
)

var (
	// ErrUnknownIndividual is returned when a handle does not address an
	// individual of the population.
	ErrUnknownIndividual = errors.New("unknown individual")

	// ErrNilTarget is returned by queries whose target is NoHandle.
	ErrNilTarget = errors.New("target individual is nil")

	// ErrPedigreeNotSet is returned when an operand has not been assigned to a
	// pedigree yet.
	ErrPedigreeNotSet = errors.New("pedigree not assigned")

	// ErrAlreadyAssigned is returned by [Population.AddChild] when either
	// side already belongs to a pedigree.
	ErrAlreadyAssigned = errors.New("individual already assigned to a pedigree")

	// ErrHaplotypeNotSet is returned when a haplotype is read, copied or
	// mutated before it was set.
	ErrHaplotypeNotSet = errors.New("haplotype not set")

	// ErrAlreadyMutated is returned when an individual's haplotype is mutated
	// a second time.
	ErrAlreadyMutated = errors.New("haplotype already mutated")

	// ErrLengthMismatch is returned when a haplotype and a mutation-rate
	// vector, or two haplotypes, differ in length.
	ErrLengthMismatch = errors.New("number of loci does not match")

	// ErrVariantsUnset is returned when the cached variant count was never
	// initialised.
	ErrVariantsUnset = errors.New("variant count not set")

	// ErrHaplotypeIDUnset is returned by [Individual.HaplotypeID] before a
	// cluster id was inferred.
	ErrHaplotypeIDUnset = errors.New("haplotype id not yet inferred")

	// ErrInvalidRate is returned for mutation rates outside [0, 1].
	ErrInvalidRate = errors.New("mutation rate must be within [0, 1]")

	// ErrNilFounder is returned when custom seeding gets no founder supplier.
	ErrNilFounder = errors.New("founder haplotype supplier is nil")

	// ErrNoRoot is returned when a pedigree has no member without a mother.
	ErrNoRoot = errors.New("pedigree has no root")

	// ErrMultipleRoots is returned when more than one member has no mother.
	ErrMultipleRoots = errors.New("pedigree has more than one root")

	// ErrPathNotFound is returned when a member cannot be reached from the
	// root or from another member of the same pedigree.
	ErrPathNotFound = errors.New("no path between individuals")

	// ErrNoCommonAncestor is returned when two root paths diverge at the
	// root itself.
	ErrNoCommonAncestor = errors.New("paths share no common ancestor")

	// ErrNotATree is returned by [Pedigree.Validate] when members and
	// relations do not form a single tree.
	ErrNotATree = errors.New("pedigree is not a tree")

	// ErrDuplicatePID is returned by [Population.AddIndividual] for a pid
	// that is already registered.
	ErrDuplicatePID = errors.New("duplicate pid")

	// ErrMotherAlreadySet is returned by [Population.AddChild] when the child
	// already has a mother.
	ErrMotherAlreadySet = errors.New("individual already has a mother")

	// ErrCycle is returned by [Population.AddChild] when the edge would make
	// an individual its own ancestor.
	ErrCycle = errors.New("edge would create a cycle")
)

func precondition(cause error, format string, args ...any) error {
	return perrors.Wrap(perrors.ErrCodePrecondition, cause, format, args...)
}

func invariant(cause error, format string, args ...any) error {
	return perrors.Wrap(perrors.ErrCodeInvariant, cause, format, args...)
}

func invalidInput(cause error, format string, args ...any) error {
	return perrors.Wrap(perrors.ErrCodeInvalidInput, cause, format, args...)
}
