// Package nodelink renders pedigrees as node-link diagrams.
//
// # Overview
//
// Every member of a pedigree becomes a node labelled with its pid and every
// mother→child relation an arrow. Members of one generation share a rank, so
// founders sit at the top and the youngest generation at the bottom.
// Females are drawn as rounded boxes, males as ellipses.
//
// # Usage
//
//	dot, err := nodelink.ToDOT(ped, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # Options
//
//   - Detailed: labels also show generation, haplotype and variant count
//   - Highlight: handles (typically a [genealogy.Population.PathBetween]
//     result) drawn filled, with the edges between consecutive entries bold
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
