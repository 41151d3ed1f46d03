// Package cli implements the pedsim command-line interface.
//
// pedsim simulates maternal-line populations, partitions them into
// pedigrees and answers relatedness queries on them. Every command takes its
// population either from a simulation (flags or --config) or from a JSON
// export (--input).
//
// # Commands
//
//   - simulate: Run the generate/assign/seed pipeline and report statistics
//   - distance: Meiotic distance between two individuals
//   - path: The pedigree path between two individuals through their LCA
//   - histogram: Generation × meioses table around one individual
//   - render: Draw a pedigree as DOT, SVG, PDF or PNG
//   - explore: Browse a pedigree interactively
//   - serve: Answer queries over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and into the simulation runner.
package cli
