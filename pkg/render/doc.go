// Package render provides visualization output for pedigrees.
//
// # Overview
//
// Pedigree diagrams are produced as Graphviz DOT by the [nodelink]
// subpackage and rendered to SVG in-process. This package converts that SVG
// to other formats:
//
//	dot, err := nodelink.ToDOT(ped, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [ToPDF] and [ToPNG] use the external rsvg-convert tool from librsvg.
//
// [nodelink]: github.com/matzehuels/pedsim/pkg/render/nodelink
package render
