package genealogy

import (
	"cmp"
	"slices"
)

// HistogramRow is one cell of a generation × meioses table.
type HistogramRow struct {
	Generation int `json:"generation"`
	Meioses    int `json:"meioses"`
	Count      int `json:"count"`
}

// MeiosesGenerationDistribution tabulates, for every member of h's pedigree,
// its generation against its meiotic distance from h. Members above
// generation upper are skipped unless upper is -1. Rows are sorted by
// generation, then meioses.
func (p *Population) MeiosesGenerationDistribution(h Handle, upper int) ([]HistogramRow, error) {
	ind, err := p.lookup(h)
	if err != nil {
		return nil, err
	}
	if !ind.PedigreeIsSet() {
		return nil, precondition(ErrPedigreeNotSet, "pid %d", ind.pid)
	}
	ped, ok := p.pedigrees[ind.pedigreeID]
	if !ok {
		return nil, precondition(ErrPedigreeNotSet, "pedigree %d is not registered", ind.pedigreeID)
	}
	dist, err := p.DistancesFrom(h)
	if err != nil {
		return nil, err
	}

	type key struct{ generation, meioses int }
	counts := make(map[key]int)
	for _, m := range ped.members {
		member := p.individuals[m]
		if upper != -1 && member.generation > upper {
			continue
		}
		d, ok := dist[m]
		if !ok {
			return nil, invariant(ErrPathNotFound, "pid %d to pid %d", ind.pid, member.pid)
		}
		counts[key{member.generation, d}]++
	}

	rows := make([]HistogramRow, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, HistogramRow{Generation: k.generation, Meioses: k.meioses, Count: n})
	}
	slices.SortFunc(rows, func(a, b HistogramRow) int {
		return cmp.Or(cmp.Compare(a.Generation, b.Generation), cmp.Compare(a.Meioses, b.Meioses))
	})
	return rows, nil
}
