package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/matzehuels/pedsim/pkg/errors"
	"github.com/matzehuels/pedsim/pkg/pipeline"
)

const tomlConfig = `
generations = 6
generation_size = 40
seed = 7
loci = 3
mutation_rate = 0.01
replicates = 2

[render]
format = "dot"
detailed = true
`

const yamlConfig = `
generations: 6
generation_size: 40
seed: 7
mutation_rates: [0.1, 0.2]
founder_variant_prob: 0.5
server:
  addr: "127.0.0.1:9000"
`

func TestParse_TOML(t *testing.T) {
	cfg, err := Parse([]byte(tomlConfig), "toml")
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Generations)
	assert.Equal(t, 40, cfg.GenerationSize)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, []float64{0.01, 0.01, 0.01}, cfg.MutationRates)
	assert.Equal(t, 2, cfg.Replicates)
	assert.Equal(t, "dot", cfg.Render.Format)
	assert.True(t, cfg.Render.Detailed)
	assert.Equal(t, DefaultRenderScale, cfg.Render.Scale)
	assert.Equal(t, pipeline.DefaultFemaleRatio, cfg.FemaleRatio)
}

func TestParse_YAML(t *testing.T) {
	cfg, err := Parse([]byte(yamlConfig), "yaml")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Loci)
	assert.Equal(t, []float64{0.1, 0.2}, cfg.MutationRates)
	assert.Equal(t, 0.5, cfg.FounderVariantProb)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, DefaultReplicates, cfg.Replicates)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"unknown format", "generations = 1", "ini"},
		{"malformed toml", "generations = ", "toml"},
		{"unknown toml key", "colour = 1", "toml"},
		{"unknown yaml key", "colour: 1", "yaml"},
		{"both rate forms", "loci = 2\nmutation_rate = 0.1\nmutation_rates = [0.1, 0.3]", "toml"},
		{"rate out of range", "mutation_rates = [1.5]", "toml"},
		{"loci mismatch", "loci = 3\nmutation_rates = [0.1]", "toml"},
		{"negative replicates", "replicates = -1", "toml"},
		{"bad render format", "[render]\nformat = \"gif\"", "toml"},
		{"bad generation size", "generation_size: -4", "yml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.True(t, perrors.Is(err, perrors.ErrCodeInvalidInput), "code = %s", perrors.GetCode(err))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.TOML")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Loci)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts := cfg.Options()
	assert.Equal(t, pipeline.DefaultGenerations, opts.Generations)
	assert.Equal(t, pipeline.DefaultGenerationSize, opts.GenerationSize)
	assert.Equal(t, uint64(pipeline.DefaultSeed), opts.Seed)
	assert.Zero(t, opts.Loci)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
}

func TestOptions_CopiesRates(t *testing.T) {
	cfg, err := Parse([]byte(yamlConfig), "yaml")
	require.NoError(t, err)

	opts := cfg.Options()
	opts.MutationRates[0] = 0.9
	assert.Equal(t, 0.1, cfg.MutationRates[0])
}
