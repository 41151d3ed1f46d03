package server

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pedsim/pkg/genealogy"
	"github.com/matzehuels/pedsim/pkg/observability"
)

// fixture builds the fork 1 -> {2, 4}, 2 -> 3, 4 -> 5 plus a lone founder 6,
// seeds pedigree 1 with two reference loci and leaves pedigree 2 unseeded.
func fixture(t *testing.T) *genealogy.Population {
	t.Helper()
	pop := genealogy.NewPopulation()
	h := make(map[int]genealogy.Handle)
	gens := map[int]int{1: 2, 2: 1, 3: 0, 4: 1, 5: 0, 6: 2}
	for pid := 1; pid <= 6; pid++ {
		var err error
		h[pid], err = pop.AddIndividual(pid, gens[pid], true)
		require.NoError(t, err)
	}
	for _, e := range [][2]int{{1, 2}, {2, 3}, {1, 4}, {4, 5}} {
		require.NoError(t, pop.AddChild(h[e[0]], h[e[1]]))
	}
	peds, err := pop.AssignPedigrees()
	require.NoError(t, err)
	require.Len(t, peds, 2)
	require.NoError(t, peds[0].SeedHaplotypes(2, []float64{0, 0}, rand.New(rand.NewPCG(1, 1))))
	return pop
}

func newTestServer(t *testing.T, gatherer prometheus.Gatherer) *httptest.Server {
	t.Helper()
	srv := New(fixture(t), Options{
		RunID:    "run-test",
		Logger:   log.New(io.Discard),
		Gatherer: gatherer,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	var body map[string]any
	assert.Equal(t, http.StatusOK, get(t, ts, "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "run-test", body["run_id"])
	assert.EqualValues(t, 6, body["individuals"])
}

func TestPedigrees(t *testing.T) {
	ts := newTestServer(t, nil)

	var list []pedigreeSummary
	require.Equal(t, http.StatusOK, get(t, ts, "/pedigrees", &list))
	assert.Equal(t, []pedigreeSummary{{ID: 1, Root: 1, Size: 5}, {ID: 2, Root: 6, Size: 1}}, list)

	var detail pedigreeDetail
	require.Equal(t, http.StatusOK, get(t, ts, "/pedigrees/1", &detail))
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5}, detail.Members)
	assert.ElementsMatch(t, [][2]int{{1, 2}, {2, 3}, {1, 4}, {4, 5}}, detail.Relations)

	var errBody errorResponse
	assert.Equal(t, http.StatusNotFound, get(t, ts, "/pedigrees/9", &errBody))
	assert.Equal(t, "NOT_FOUND", string(errBody.Code))
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/pedigrees/x", nil))
}

func TestPedigreeDOT(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/pedigrees/1/dot?detailed=true")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "digraph pedigree_1"))
	assert.Contains(t, string(body), "hap: 00")
}

func TestIndividual(t *testing.T) {
	ts := newTestServer(t, nil)

	var ind individualResponse
	require.Equal(t, http.StatusOK, get(t, ts, "/individuals/2", &ind))
	assert.Equal(t, 2, ind.PID)
	assert.Equal(t, 1, ind.Mother)
	assert.Equal(t, []int{3}, ind.Children)
	assert.Equal(t, 1, ind.Pedigree)
	assert.Equal(t, []bool{false, false}, ind.Haplotype)
	require.NotNil(t, ind.Variants)
	assert.Equal(t, 0, *ind.Variants)

	var founder individualResponse
	require.Equal(t, http.StatusOK, get(t, ts, "/individuals/6", &founder))
	assert.Zero(t, founder.Mother)
	assert.Nil(t, founder.Haplotype)

	assert.Equal(t, http.StatusNotFound, get(t, ts, "/individuals/42", nil))
}

func TestDistance(t *testing.T) {
	ts := newTestServer(t, nil)
	tests := []struct {
		query string
		code  int
		want  int
	}{
		{"from=3&to=5", http.StatusOK, 4},
		{"from=5&to=3", http.StatusOK, 4},
		{"from=1&to=1", http.StatusOK, 0},
		{"from=3&to=6", http.StatusOK, -1},
		{"from=3", http.StatusBadRequest, 0},
		{"from=3&to=abc", http.StatusBadRequest, 0},
		{"from=3&to=99", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got distanceResponse
			code := get(t, ts, "/distance?"+tt.query, &got)
			require.Equal(t, tt.code, code)
			if code == http.StatusOK {
				assert.Equal(t, tt.want, got.Meioses)
			}
		})
	}
}

func TestPath(t *testing.T) {
	ts := newTestServer(t, nil)

	var got pathResponse
	require.Equal(t, http.StatusOK, get(t, ts, "/path?from=3&to=5", &got))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got.Path)

	var cross pathResponse
	require.Equal(t, http.StatusOK, get(t, ts, "/path?from=3&to=6", &cross))
	assert.Empty(t, cross.Path)
}

func TestHistogram(t *testing.T) {
	ts := newTestServer(t, nil)

	var got histogramResponse
	require.Equal(t, http.StatusOK, get(t, ts, "/histogram?pid=3", &got))
	assert.Equal(t, -1, got.MaxGeneration)
	total := 0
	for _, row := range got.Rows {
		total += row.Count
	}
	assert.Equal(t, 5, total)

	var young histogramResponse
	require.Equal(t, http.StatusOK, get(t, ts, "/histogram?pid=3&max_generation=0", &young))
	assert.Equal(t, []genealogy.HistogramRow{
		{Generation: 0, Meioses: 0, Count: 1},
		{Generation: 0, Meioses: 4, Count: 1},
	}, young.Rows)

	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/histogram?pid=3&max_generation=-5", nil))
}

func TestHaplotypeDistance(t *testing.T) {
	ts := newTestServer(t, nil)

	var got haplotypeDistanceResponse
	require.Equal(t, http.StatusOK, get(t, ts, "/haplotypes/distance?a=3&b=5", &got))
	assert.Equal(t, 0, got.Distance)
	assert.True(t, got.Equal)

	// Pedigree 2 was never seeded.
	var errBody errorResponse
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/haplotypes/distance?a=3&b=6", &errBody))
	assert.Equal(t, "PRECONDITION", string(errBody.Code))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor("PRECONDITION"))
	assert.Equal(t, http.StatusBadRequest, statusFor("INVALID_INPUT"))
	assert.Equal(t, http.StatusNotFound, statusFor("NOT_FOUND"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("INVARIANT"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("INTERNAL_ERROR"))
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetQueryHooks(hooks)

	ts := newTestServer(t, reg)
	require.Equal(t, http.StatusOK, get(t, ts, "/distance?from=3&to=5", nil))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pedsim_queries_total{kind="distance",outcome="ok"} 1`)
}

func TestMetrics_Disabled(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv := New(fixture(t), Options{Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}
