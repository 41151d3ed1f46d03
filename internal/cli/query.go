package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsim/pkg/genealogy"
)

func (c *CLI) distanceCommand() *cobra.Command {
	var opts sourceOpts

	cmd := &cobra.Command{
		Use:   "distance <pid> <pid>",
		Short: "Meiotic distance between two individuals",
		Long: `Print the number of meioses separating two individuals. Individuals of
different pedigrees are unrelated and report -1.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pop, _, err := c.population(cmd.Context(), cmd, &opts)
			if err != nil {
				return err
			}
			a, b, err := lookupPair(pop, args)
			if err != nil {
				return err
			}
			d, err := pop.Distance(a, b)
			if err != nil {
				return err
			}
			if d < 0 {
				printWarning(c.Out, "%s and %s belong to different pedigrees", args[0], args[1])
			}
			fmt.Fprintln(c.Out, d)
			return nil
		},
	}
	addSourceFlags(cmd, &opts)
	return cmd
}

func (c *CLI) pathCommand() *cobra.Command {
	var opts sourceOpts

	cmd := &cobra.Command{
		Use:   "path <pid> <pid>",
		Short: "Pedigree path between two individuals",
		Long: `Print the path between two individuals: their lowest common ancestor,
then the descent to the first individual, then the descent to the second.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pop, _, err := c.population(cmd.Context(), cmd, &opts)
			if err != nil {
				return err
			}
			a, b, err := lookupPair(pop, args)
			if err != nil {
				return err
			}
			path, err := pop.PathBetween(a, b)
			if err != nil {
				return err
			}
			if len(path) == 0 {
				printWarning(c.Out, "%s and %s belong to different pedigrees", args[0], args[1])
				return nil
			}
			fmt.Fprintln(c.Out, formatPath(pidsOf(pop, path)))
			return nil
		},
	}
	addSourceFlags(cmd, &opts)
	return cmd
}

type histogramOpts struct {
	sourceOpts
	maxGeneration int
	json          bool
}

func (c *CLI) histogramCommand() *cobra.Command {
	opts := histogramOpts{maxGeneration: -1}

	cmd := &cobra.Command{
		Use:   "histogram <pid>",
		Short: "Generation × meioses table around an individual",
		Long: `Count the members of an individual's pedigree by generation and by
meiotic distance from that individual.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pop, _, err := c.population(cmd.Context(), cmd, &opts.sourceOpts)
			if err != nil {
				return err
			}
			h, err := lookupPID(pop, args[0])
			if err != nil {
				return err
			}
			rows, err := pop.MeiosesGenerationDistribution(h, opts.maxGeneration)
			if err != nil {
				return err
			}
			if opts.json {
				enc := json.NewEncoder(c.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			fmt.Fprintln(c.Out, histogramTable(rows))
			return nil
		},
	}
	addSourceFlags(cmd, &opts.sourceOpts)
	cmd.Flags().IntVar(&opts.maxGeneration, "max-generation", opts.maxGeneration, "skip members above this generation (-1 for all)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print rows as JSON")
	return cmd
}

func lookupPair(pop *genealogy.Population, args []string) (genealogy.Handle, genealogy.Handle, error) {
	a, err := lookupPID(pop, args[0])
	if err != nil {
		return genealogy.NoHandle, genealogy.NoHandle, err
	}
	b, err := lookupPID(pop, args[1])
	if err != nil {
		return genealogy.NoHandle, genealogy.NoHandle, err
	}
	return a, b, nil
}

// formatPath joins pids with spaces, marking the leading common ancestor
// with "*".
func formatPath(pids []int) string {
	parts := make([]string, len(pids))
	for i, pid := range pids {
		parts[i] = strconv.Itoa(pid)
	}
	parts[0] += "*"
	return strings.Join(parts, " ")
}

func histogramTable(rows []genealogy.HistogramRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{strconv.Itoa(r.Generation), strconv.Itoa(r.Meioses), strconv.Itoa(r.Count)}
	}
	return renderTable([]string{"Generation", "Meioses", "Count"}, cells)
}
