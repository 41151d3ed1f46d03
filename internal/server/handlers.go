package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pedsim/pkg/buildinfo"
	perrors "github.com/matzehuels/pedsim/pkg/errors"
	"github.com/matzehuels/pedsim/pkg/genealogy"
	"github.com/matzehuels/pedsim/pkg/observability"
	"github.com/matzehuels/pedsim/pkg/render/nodelink"
)

type pedigreeSummary struct {
	ID   int `json:"id"`
	Root int `json:"root"`
	Size int `json:"size"`
}

type pedigreeDetail struct {
	pedigreeSummary
	Members   []int    `json:"members"`
	Relations [][2]int `json:"relations"`
}

type individualResponse struct {
	PID        int    `json:"pid"`
	Generation int    `json:"generation"`
	Female     bool   `json:"female"`
	Mother     int    `json:"mother,omitempty"`
	Children   []int  `json:"children"`
	Pedigree   int    `json:"pedigree,omitempty"`
	Haplotype  []bool `json:"haplotype,omitempty"`
	Variants   *int   `json:"variants,omitempty"`
}

type distanceResponse struct {
	From    int `json:"from"`
	To      int `json:"to"`
	Meioses int `json:"meioses"`
}

type pathResponse struct {
	From int   `json:"from"`
	To   int   `json:"to"`
	Path []int `json:"path"`
}

type histogramResponse struct {
	PID           int                      `json:"pid"`
	MaxGeneration int                      `json:"max_generation"`
	Rows          []genealogy.HistogramRow `json:"rows"`
}

type haplotypeDistanceResponse struct {
	A        int  `json:"a"`
	B        int  `json:"b"`
	Distance int  `json:"distance"`
	Equal    bool `json:"equal"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     buildinfo.Version,
		"run_id":      s.runID,
		"individuals": s.pop.Len(),
	})
}

func (s *Server) handlePedigrees(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	peds := s.pop.Pedigrees()
	out := make([]pedigreeSummary, 0, len(peds))
	for _, ped := range peds {
		sum, err := s.summarize(ped)
		if err != nil {
			s.writeError(w, err)
			return
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePedigree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ped, err := s.pedigreeParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sum, err := s.summarize(ped)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := pedigreeDetail{
		pedigreeSummary: sum,
		Members:         s.pids(ped.Members()),
		Relations:       make([][2]int, 0, len(ped.Relations())),
	}
	for _, rel := range ped.Relations() {
		out.Relations = append(out.Relations, [2]int{s.pid(rel.Parent), s.pid(rel.Child)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePedigreeDOT(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ped, err := s.pedigreeParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	dot, err := nodelink.ToDOT(ped, nodelink.Options{Detailed: detailed})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

func (s *Server) handleIndividual(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.pidParam(chi.URLParam(r, "pid"), "pid")
	if err != nil {
		s.writeError(w, err)
		return
	}
	ind, _ := s.pop.Individual(h)
	out := individualResponse{
		PID:        ind.PID(),
		Generation: ind.Generation(),
		Female:     ind.IsFemale(),
		Children:   s.pids(ind.Children()),
		Pedigree:   ind.PedigreeID(),
	}
	if m := ind.Mother(); m != genealogy.NoHandle {
		out.Mother = s.pid(m)
	}
	if hap, err := ind.Haplotype(); err == nil {
		v := ind.Variants()
		out.Haplotype = hap
		out.Variants = &v
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	from, to, err := s.pairParams(r, "from", "to")
	if err != nil {
		s.finish(w, r, observability.QueryDistance, start, err, nil)
		return
	}

	s.mu.Lock()
	d, err := s.pop.Distance(from, to)
	s.mu.Unlock()
	s.finish(w, r, observability.QueryDistance, start, err, distanceResponse{
		From: s.pid(from), To: s.pid(to), Meioses: d,
	})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	from, to, err := s.pairParams(r, "from", "to")
	if err != nil {
		s.finish(w, r, observability.QueryPath, start, err, nil)
		return
	}

	s.mu.Lock()
	path, err := s.pop.PathBetween(from, to)
	s.mu.Unlock()
	s.finish(w, r, observability.QueryPath, start, err, pathResponse{
		From: s.pid(from), To: s.pid(to), Path: s.pids(path),
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	h, err := s.pidParam(q.Get("pid"), "pid")
	if err != nil {
		s.finish(w, r, observability.QueryHistogram, start, err, nil)
		return
	}
	upper := -1
	if v := q.Get("max_generation"); v != "" {
		upper, err = strconv.Atoi(v)
		if err != nil || upper < -1 {
			s.finish(w, r, observability.QueryHistogram, start,
				perrors.New(perrors.ErrCodeInvalidInput, "max_generation must be an integer >= -1, got %q", v), nil)
			return
		}
	}

	s.mu.Lock()
	rows, err := s.pop.MeiosesGenerationDistribution(h, upper)
	s.mu.Unlock()
	s.finish(w, r, observability.QueryHistogram, start, err, histogramResponse{
		PID: s.pid(h), MaxGeneration: upper, Rows: rows,
	})
}

func (s *Server) handleHaplotypeDistance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	a, b, err := s.pairParams(r, "a", "b")
	if err != nil {
		s.finish(w, r, observability.QueryHaplotypeDistance, start, err, nil)
		return
	}

	s.mu.Lock()
	d, err := s.pop.HaplotypeDistance(a, b)
	s.mu.Unlock()
	s.finish(w, r, observability.QueryHaplotypeDistance, start, err, haplotypeDistanceResponse{
		A: s.pid(a), B: s.pid(b), Distance: d, Equal: d == 0,
	})
}

// finish reports the query to the registered hooks and writes either the
// error or v.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, kind string, start time.Time, err error, v any) {
	observability.Query().OnQuery(r.Context(), kind, time.Since(start), err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// =============================================================================
// Parameters
// =============================================================================

func (s *Server) pidParam(raw, name string) (genealogy.Handle, error) {
	if raw == "" {
		return genealogy.NoHandle, perrors.New(perrors.ErrCodeInvalidInput, "missing parameter %q", name)
	}
	pid, err := strconv.Atoi(raw)
	if err != nil {
		return genealogy.NoHandle, perrors.New(perrors.ErrCodeInvalidInput, "parameter %q must be an integer pid, got %q", name, raw)
	}
	h, ok := s.pop.ByPID(pid)
	if !ok {
		return genealogy.NoHandle, perrors.New(perrors.ErrCodeNotFound, "individual %d not found", pid)
	}
	return h, nil
}

func (s *Server) pairParams(r *http.Request, a, b string) (genealogy.Handle, genealogy.Handle, error) {
	q := r.URL.Query()
	ha, err := s.pidParam(q.Get(a), a)
	if err != nil {
		return genealogy.NoHandle, genealogy.NoHandle, err
	}
	hb, err := s.pidParam(q.Get(b), b)
	if err != nil {
		return genealogy.NoHandle, genealogy.NoHandle, err
	}
	return ha, hb, nil
}

func (s *Server) pedigreeParam(r *http.Request) (*genealogy.Pedigree, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "pedigree id must be an integer, got %q", raw)
	}
	ped, ok := s.pop.Pedigree(id)
	if !ok {
		return nil, perrors.New(perrors.ErrCodeNotFound, "pedigree %d not found", id)
	}
	return ped, nil
}

func (s *Server) summarize(ped *genealogy.Pedigree) (pedigreeSummary, error) {
	root, err := ped.Root()
	if err != nil {
		return pedigreeSummary{}, err
	}
	return pedigreeSummary{ID: ped.ID(), Root: s.pid(root), Size: ped.Size()}, nil
}

// pid returns the pid for h. Handles reaching this point came from the
// population, so lookups cannot fail.
func (s *Server) pid(h genealogy.Handle) int {
	ind, err := s.pop.Individual(h)
	if err != nil {
		return 0
	}
	return ind.PID()
}

func (s *Server) pids(hs []genealogy.Handle) []int {
	out := make([]int, len(hs))
	for i, h := range hs {
		out[i] = s.pid(h)
	}
	return out
}
