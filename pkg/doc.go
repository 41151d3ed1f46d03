// Package pkg provides the public Go libraries of pedsim, a genealogy
// simulator that grows maternal-line populations, partitions them into
// pedigrees, and measures relatedness by meiotic distance and haplotype
// divergence.
//
// # Overview
//
// A simulation run flows through four steps:
//
//  1. Generate: build a population generation by generation, each child
//     linked to a mother from the previous generation
//  2. Assign: flood-fill mother/child links into pedigrees
//  3. Seed: give every pedigree root a founder haplotype and pass it down
//     with per-locus mutation
//  4. Query: distances, lowest-common-ancestor paths and histograms
//
// # Quick Start
//
// Run a simulation and query it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/pedsim/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil)
//	res, _ := runner.Run(context.Background(), pipeline.Options{
//	    Generations:    5,
//	    GenerationSize: 100,
//	    Loci:           8,
//	    MutationRates:  slices.Repeat([]float64{0.01}, 8),
//	})
//
//	ped := res.LargestPedigree()
//	root, _ := ped.Root()
//	d, _ := res.Population.Distance(root, ped.Members()[0])
//
// # Main Packages
//
// [genealogy] - The individual, population and pedigree model. Handles
// address individuals in an arena owned by a [genealogy.Population].
// Implements pedigree assignment, meiotic distance, the LCA path, haplotype
// inheritance with mutation and the meioses-by-generation histogram.
//
// [simulate] - Forward population generator. Produces a population where
// every non-founder has exactly one mother in the previous generation.
//
// [pipeline] - Complete run (generate → assign → seed) used by the CLI and
// the server. Ensures consistent defaults and validation across entry points.
//
// [config] - TOML and YAML run configuration mapped onto pipeline options.
//
// [io] - JSON import and export of populations.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// [render/nodelink] - Pedigree diagrams using Graphviz.
//
// [observability] - Hooks for simulation and query events with a
// Prometheus implementation.
//
// [errors] - Coded errors shared by every package.
//
// [buildinfo] - Version information stamped at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                 # All tests
//	go test ./pkg/genealogy/...       # Specific package
//	go test -run Example ./pkg/...    # Examples only
//
// [genealogy]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/genealogy
// [simulate]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/simulate
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/config
// [io]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/render/nodelink
// [observability]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/buildinfo
// [genealogy.Population]: https://pkg.go.dev/github.com/matzehuels/pedsim/pkg/genealogy#Population
package pkg
