package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pedsim/pkg/genealogy"
	"github.com/matzehuels/pedsim/pkg/render"
)

// Options configures pedigree diagram rendering.
type Options struct {
	// Detailed includes generation and haplotype in node labels.
	// When false, only the pid is shown.
	Detailed bool

	// Highlight marks a path of members. Consecutive handles that form a
	// relation get a bold edge.
	Highlight []genealogy.Handle
}

// ToDOT converts a pedigree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(ped *genealogy.Pedigree, opts Options) (string, error) {
	pop := ped.Population()
	highlighted := make(map[genealogy.Handle]bool, len(opts.Highlight))
	for _, h := range opts.Highlight {
		highlighted[h] = true
	}
	bold := make(map[genealogy.Relation]bool)
	for i := 1; i < len(opts.Highlight); i++ {
		a, b := opts.Highlight[i-1], opts.Highlight[i]
		bold[genealogy.Relation{Parent: a, Child: b}] = true
		bold[genealogy.Relation{Parent: b, Child: a}] = true
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph pedigree_%d {\n", ped.ID())
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fillcolor=white, fontsize=18, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ranks := make(map[int][]string)
	for _, h := range ped.Members() {
		ind, err := pop.Individual(h)
		if err != nil {
			return "", err
		}
		id := nodeID(ind)
		ranks[ind.Generation()] = append(ranks[ind.Generation()], id)
		attrs := fmtAttrs(ind, fmtLabel(ind, opts.Detailed), highlighted[h])
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, gen := range slices.Backward(slices.Sorted(maps.Keys(ranks))) {
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ranks[gen], "; "))
	}

	buf.WriteString("\n")
	for _, r := range ped.Relations() {
		parent, err := pop.Individual(r.Parent)
		if err != nil {
			return "", err
		}
		child, err := pop.Individual(r.Child)
		if err != nil {
			return "", err
		}
		if bold[r] {
			fmt.Fprintf(&buf, "  %s -> %s [penwidth=3, color=steelblue];\n", nodeID(parent), nodeID(child))
		} else {
			fmt.Fprintf(&buf, "  %s -> %s;\n", nodeID(parent), nodeID(child))
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func nodeID(ind *genealogy.Individual) string {
	return strconv.Quote(strconv.Itoa(ind.PID()))
}

func fmtLabel(ind *genealogy.Individual, detailed bool) string {
	label := strconv.Itoa(ind.PID())
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("gen: %d", ind.Generation())}
	if hap, err := ind.Haplotype(); err == nil {
		var sb strings.Builder
		for _, v := range hap {
			if v {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		parts = append(parts, "hap: "+sb.String(), fmt.Sprintf("variants: %d", ind.Variants()))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(ind *genealogy.Individual, label string, highlight bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if ind.IsFemale() {
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"")
	} else {
		attrs = append(attrs, "shape=ellipse")
	}
	if highlight {
		attrs = append(attrs, "fillcolor=lightblue")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// matching width and height so the diagram scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

// Render produces the given format for ped in one call. Scale only applies
// to PNG.
func Render(ctx context.Context, ped *genealogy.Pedigree, format render.Format, opts Options, scale float64) ([]byte, error) {
	dot, err := ToDOT(ped, opts)
	if err != nil {
		return nil, err
	}
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return RenderSVG(ctx, dot)
	case render.FormatPDF:
		return RenderPDF(ctx, dot)
	case render.FormatPNG:
		return RenderPNG(ctx, dot, scale)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
