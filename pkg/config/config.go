// Package config loads simulation settings from TOML or YAML files.
//
// A config file mirrors the CLI flags:
//
//	generations = 6
//	generation_size = 200
//	seed = 7
//	loci = 10
//	mutation_rate = 0.01   # broadcast to every locus
//	replicates = 4
//
//	[render]
//	format = "svg"
//	detailed = true
//
// Either mutation_rate (one rate for all loci) or mutation_rates (one per
// locus) may be given, not both. Flags given on the command line override
// file values.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	perrors "github.com/matzehuels/pedsim/pkg/errors"
	"github.com/matzehuels/pedsim/pkg/pipeline"
	"github.com/matzehuels/pedsim/pkg/render"
)

const (
	DefaultReplicates   = 1
	DefaultRenderFormat = render.FormatSVG
	DefaultRenderScale  = 2.0
	DefaultServerAddr   = ":8080"
)

// Config is the file form of a simulation run.
type Config struct {
	Generations        int       `toml:"generations" yaml:"generations"`
	GenerationSize     int       `toml:"generation_size" yaml:"generation_size"`
	FemaleRatio        float64   `toml:"female_ratio" yaml:"female_ratio"`
	Seed               uint64    `toml:"seed" yaml:"seed"`
	Loci               int       `toml:"loci" yaml:"loci"`
	MutationRate       float64   `toml:"mutation_rate" yaml:"mutation_rate"`
	MutationRates      []float64 `toml:"mutation_rates" yaml:"mutation_rates"`
	FounderVariantProb float64   `toml:"founder_variant_prob" yaml:"founder_variant_prob"`
	Replicates         int       `toml:"replicates" yaml:"replicates"`

	Render RenderConfig `toml:"render" yaml:"render"`
	Server ServerConfig `toml:"server" yaml:"server"`
}

// RenderConfig controls pedigree diagrams.
type RenderConfig struct {
	Format   string  `toml:"format" yaml:"format"`
	Detailed bool    `toml:"detailed" yaml:"detailed"`
	Scale    float64 `toml:"scale" yaml:"scale"`
}

// ServerConfig controls the query server.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Load reads a config file, choosing the decoder by extension (.toml, .yaml
// or .yml), then applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	cfg, err := Parse(data, strings.TrimPrefix(ext, "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the given format ("toml", "yaml" or "yml"), applies
// defaults and validates.
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "unknown config keys: %v", undecoded)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode yaml")
		}
	default:
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "unsupported config format %q", format)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config holding only default values.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields. A scalar MutationRate is broadcast
// to Loci entries when MutationRates is empty.
func (c *Config) SetDefaults() {
	if c.Generations == 0 {
		c.Generations = pipeline.DefaultGenerations
	}
	if c.GenerationSize == 0 {
		c.GenerationSize = pipeline.DefaultGenerationSize
	}
	if c.FemaleRatio == 0 {
		c.FemaleRatio = pipeline.DefaultFemaleRatio
	}
	if c.Seed == 0 {
		c.Seed = pipeline.DefaultSeed
	}
	if c.Replicates == 0 {
		c.Replicates = DefaultReplicates
	}
	if c.Loci > 0 && len(c.MutationRates) == 0 {
		c.MutationRates = slices.Repeat([]float64{c.MutationRate}, c.Loci)
	}
	if c.Loci == 0 {
		c.Loci = len(c.MutationRates)
	}
	if c.Render.Format == "" {
		c.Render.Format = string(DefaultRenderFormat)
	}
	if c.Render.Scale == 0 {
		c.Render.Scale = DefaultRenderScale
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

// Validate checks the config. All failures carry the INVALID_INPUT code.
func (c *Config) Validate() error {
	if c.MutationRate != 0 && len(c.MutationRates) > 0 && !allEqual(c.MutationRates, c.MutationRate) {
		return perrors.New(perrors.ErrCodeInvalidInput, "mutation_rate and mutation_rates are mutually exclusive")
	}
	if c.Replicates < 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "replicates must be at least 1, got %d", c.Replicates)
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "render")
	}
	if c.Render.Scale <= 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "render scale must be positive, got %v", c.Render.Scale)
	}
	opts := c.Options()
	return opts.ValidateAndSetDefaults()
}

// Options converts the config to pipeline options.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		Generations:        c.Generations,
		GenerationSize:     c.GenerationSize,
		FemaleRatio:        c.FemaleRatio,
		Seed:               c.Seed,
		Loci:               c.Loci,
		MutationRates:      slices.Clone(c.MutationRates),
		FounderVariantProb: c.FounderVariantProb,
	}
}

func allEqual(xs []float64, v float64) bool {
	for _, x := range xs {
		if x != v {
			return false
		}
	}
	return true
}
