package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsim/pkg/config"
	"github.com/matzehuels/pedsim/pkg/genealogy"
	"github.com/matzehuels/pedsim/pkg/render"
	"github.com/matzehuels/pedsim/pkg/render/nodelink"
)

type renderOpts struct {
	sourceOpts
	output    string
	format    string
	pedigree  int
	pid       int
	detailed  bool
	scale     float64
	highlight string
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		format: string(config.DefaultRenderFormat),
		scale:  config.DefaultRenderScale,
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw a pedigree as DOT, SVG, PDF or PNG",
		Long: `Draw one pedigree as a node-link diagram. Select it with --pedigree or
with --pid (the pedigree containing that individual); without either, the
largest pedigree is drawn. --highlight a,b marks the path between two pids.`,
		Example: `  pedsim render -i pop.json --pid 812 --detailed -o ped.svg
  pedsim render -g 4 -n 30 -f dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyConfig(cmd); err != nil {
				return err
			}
			return c.runRender(cmd, &opts)
		},
	}

	addSourceFlags(cmd, &opts.sourceOpts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout for dot, pedigree-<id>.<format> otherwise)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, pdf, png")
	cmd.Flags().IntVar(&opts.pedigree, "pedigree", 0, "pedigree id to draw")
	cmd.Flags().IntVar(&opts.pid, "pid", 0, "draw the pedigree of this individual")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show generation and haplotype in labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "highlight the path between two pids (a,b)")
	cmd.MarkFlagsMutuallyExclusive("pedigree", "pid")

	return cmd
}

// applyConfig takes render settings from --config unless the matching flag
// was given.
func (o *renderOpts) applyConfig(cmd *cobra.Command) error {
	if o.configPath == "" {
		return nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if !f.Changed("format") {
		o.format = cfg.Render.Format
	}
	if !f.Changed("detailed") {
		o.detailed = cfg.Render.Detailed
	}
	if !f.Changed("scale") {
		o.scale = cfg.Render.Scale
	}
	return nil
}

func (c *CLI) runRender(cmd *cobra.Command, opts *renderOpts) error {
	ctx := cmd.Context()
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	pop, _, err := c.population(ctx, cmd, &opts.sourceOpts)
	if err != nil {
		return err
	}
	ped, err := selectPedigree(pop, opts.pedigree, opts.pid)
	if err != nil {
		return err
	}

	nlOpts := nodelink.Options{Detailed: opts.detailed}
	if opts.highlight != "" {
		if nlOpts.Highlight, err = highlightPath(pop, opts.highlight); err != nil {
			return err
		}
	}

	prog := newProgress(loggerFromContext(ctx))
	data, err := nodelink.Render(ctx, ped, format, nlOpts, opts.scale)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered pedigree %d (%d members)", ped.ID(), ped.Size()))

	out := opts.output
	if out == "" {
		if format == render.FormatDOT {
			_, err := c.Out.Write(data)
			return err
		}
		out = fmt.Sprintf("pedigree-%d.%s", ped.ID(), format)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printFile(c.Out, out)
	return nil
}

// selectPedigree picks the pedigree by id, by member pid, or the largest one
// when both are zero.
func selectPedigree(pop *genealogy.Population, id, pid int) (*genealogy.Pedigree, error) {
	switch {
	case id != 0:
		ped, ok := pop.Pedigree(id)
		if !ok {
			return nil, fmt.Errorf("pedigree %d not found", id)
		}
		return ped, nil
	case pid != 0:
		h, ok := pop.ByPID(pid)
		if !ok {
			return nil, fmt.Errorf("individual %d not found", pid)
		}
		ped, ok := pop.PedigreeOf(h)
		if !ok {
			return nil, fmt.Errorf("individual %d has no pedigree", pid)
		}
		return ped, nil
	}

	var best *genealogy.Pedigree
	for _, ped := range pop.Pedigrees() {
		if best == nil || ped.Size() > best.Size() {
			best = ped
		}
	}
	if best == nil {
		return nil, fmt.Errorf("population has no pedigrees")
	}
	return best, nil
}

// highlightPath parses "a,b" and returns the path between the two pids.
func highlightPath(pop *genealogy.Population, pair string) ([]genealogy.Handle, error) {
	parts := strings.Split(pair, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("--highlight wants two pids as a,b, got %q", pair)
	}
	a, b, err := lookupPair(pop, []string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])})
	if err != nil {
		return nil, err
	}
	return pop.PathBetween(a, b)
}
