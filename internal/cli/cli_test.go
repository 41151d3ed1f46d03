package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pedsim/pkg/genealogy"
)

// execute runs the root command with args and returns what it wrote to Out.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// simulated writes a small simulated population to a temp file.
func simulated(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pop.json")
	if _, err := execute(t, "simulate", "-g", "3", "-n", "12", "-s", "5", "--loci", "4", "-o", path); err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	return path
}

func TestSimulateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pop.json")
	out, err := execute(t, "simulate", "-g", "3", "-n", "12", "-o", path)
	if err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	if !strings.Contains(out, "36 individuals") {
		t.Errorf("output missing individual count:\n%s", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output file not written: %v", err)
	}
}

func TestSimulateCommand_Replicates(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run.json")
	out, err := execute(t, "simulate", "-g", "2", "-n", "5", "-r", "3", "-o", base)
	if err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	if !strings.Contains(out, "Replicate") {
		t.Errorf("output missing replicate table:\n%s", out)
	}
	for _, p := range outputPaths(base, 3) {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("replicate file %s not written: %v", p, err)
		}
	}
}

func TestSimulateCommand_InvalidFlags(t *testing.T) {
	tests := [][]string{
		{"simulate", "-n", "-3"},
		{"simulate", "--female-ratio", "1.5"},
		{"simulate", "-r", "-1"},
		{"simulate", "-c", "missing.toml"},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v: error = nil, want error", args)
		}
	}
}

func TestSimulateCommand_Config(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(cfgPath, []byte("generations: 2\ngeneration_size: 7\nloci: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// -n overrides the file's generation_size.
	out, err := execute(t, "simulate", "-c", cfgPath, "-n", "4")
	if err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	if !strings.Contains(out, "8 individuals") || !strings.Contains(out, "2 loci") {
		t.Errorf("config not applied:\n%s", out)
	}
}

func TestSimulateCommand_ConfigRatesWithLoci(t *testing.T) {
	dir := t.TempDir()
	perLocus := filepath.Join(dir, "rates.yaml")
	if err := os.WriteFile(perLocus, []byte("generations: 2\ngeneration_size: 3\nmutation_rates: [0.1, 0.2]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	scalar := filepath.Join(dir, "scalar.toml")
	if err := os.WriteFile(scalar, []byte("generations = 2\ngeneration_size = 3\nloci = 2\nmutation_rate = 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"per-locus rates confirmed", []string{"-c", perLocus, "--loci", "2"}, "2 loci", false},
		{"per-locus rates mismatch", []string{"-c", perLocus, "--loci", "3"}, "", true},
		{"per-locus rates replaced", []string{"-c", perLocus, "--loci", "3", "--mutation-rate", "0.3"}, "3 loci", false},
		{"scalar rate rebroadcast", []string{"-c", scalar, "--loci", "4"}, "4 loci", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"simulate"}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("simulate error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestDistanceCommand(t *testing.T) {
	path := simulated(t)

	out, err := execute(t, "distance", "-i", path, "1", "1")
	if err != nil {
		t.Fatalf("distance error = %v", err)
	}
	if strings.TrimSpace(out) != "0" {
		t.Errorf("distance 1 1 = %q, want 0", out)
	}

	if _, err := execute(t, "distance", "-i", path, "1", "999"); err == nil {
		t.Error("distance to unknown pid should fail")
	}
	if _, err := execute(t, "distance", "-i", path, "1", "x"); err == nil {
		t.Error("distance to non-numeric pid should fail")
	}
}

func TestPathCommand(t *testing.T) {
	out, err := execute(t, "path", "-i", simulated(t), "3", "3")
	if err != nil {
		t.Fatalf("path error = %v", err)
	}
	if strings.TrimSpace(out) != "3*" {
		t.Errorf("path 3 3 = %q, want %q", out, "3*")
	}
}

func TestHistogramCommand(t *testing.T) {
	out, err := execute(t, "histogram", "-i", simulated(t), "--json", "1")
	if err != nil {
		t.Fatalf("histogram error = %v", err)
	}
	var rows []genealogy.HistogramRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("histogram output is not JSON: %v\n%s", err, out)
	}
	if len(rows) == 0 || rows[len(rows)-1].Generation != 2 {
		t.Errorf("rows = %v, want the founder's own generation last", rows)
	}

	table, err := execute(t, "histogram", "-i", simulated(t), "1")
	if err != nil {
		t.Fatalf("histogram error = %v", err)
	}
	if !strings.Contains(table, "Meioses") {
		t.Errorf("table output missing header:\n%s", table)
	}
}

func TestRenderCommand_DOT(t *testing.T) {
	out, err := execute(t, "render", "-i", simulated(t), "--pid", "1", "-f", "dot", "--detailed")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.HasPrefix(out, "digraph pedigree_") {
		t.Errorf("render output = %q", out)
	}
	if !strings.Contains(out, "hap: ") {
		t.Error("detailed render missing haplotypes")
	}

	if _, err := execute(t, "render", "-i", simulated(t), "-f", "gif"); err == nil {
		t.Error("render with unknown format should fail")
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(out, "pedsim") {
		t.Error("bash completion should mention pedsim")
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		base string
		n    int
		want []string
	}{
		{"pop.json", 1, []string{"pop.json"}},
		{"pop.json", 2, []string{"pop-000.json", "pop-001.json"}},
		{"runs/pop", 2, []string{"runs/pop-000.json", "runs/pop-001.json"}},
	}
	for _, tt := range tests {
		got := outputPaths(tt.base, tt.n)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("outputPaths(%q, %d) = %v, want %v", tt.base, tt.n, got, tt.want)
		}
	}
}

func TestFormatPath(t *testing.T) {
	if got := formatPath([]int{1, 2, 3, 4}); got != "1* 2 3 4" {
		t.Errorf("formatPath() = %q, want %q", got, "1* 2 3 4")
	}
}
