package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/pedsim/pkg/io"
	"github.com/matzehuels/pedsim/pkg/pipeline"
)

type simulateOpts struct {
	sourceOpts
	output     string
	replicates int
}

func (c *CLI) simulateCommand() *cobra.Command {
	var opts simulateOpts

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a population and assign pedigrees",
		Long: `Simulate a maternal-line population, partition it into pedigrees and,
when --loci is set, propagate mutating haplotypes from each pedigree root.

With --replicates N, N independent populations are simulated in parallel
using seeds seed, seed+1, ..., seed+N-1.`,
		Example: `  pedsim simulate -g 6 -n 200 --loci 10 --mutation-rate 0.01 -o pop.json
  pedsim simulate -c run.toml --replicates 8 -o runs/pop.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimulate(cmd, &opts)
		},
	}

	addSimulationFlags(cmd, &opts.sourceOpts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the population as JSON (base path with --replicates)")
	cmd.Flags().IntVarP(&opts.replicates, "replicates", "r", 0, "number of independent replicates")

	return cmd
}

func (c *CLI) runSimulate(cmd *cobra.Command, opts *simulateOpts) error {
	ctx := cmd.Context()
	cfg, err := opts.config(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("replicates") {
		cfg.Replicates = opts.replicates
	}
	if cfg.Replicates < 1 {
		return fmt.Errorf("replicates must be at least 1, got %d", cfg.Replicates)
	}

	spinner := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Simulating %d replicate(s)...", cfg.Replicates))
	spinner.Start()
	prog := newProgress(loggerFromContext(ctx))
	results, err := c.newRunner().RunReplicates(ctx, cfg.Options(), cfg.Replicates)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Simulation failed")
		}
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Simulated %d replicate(s)", len(results)))
	prog.done("simulation finished")

	out := c.Out
	if len(results) == 1 {
		res := results[0]
		printSuccess(out, "Simulated run %s", StyleNumber.Render(res.RunID))
		printStats(out, res.Stats.Individuals, res.Stats.Pedigrees, res.Stats.Loci)
		printKeyValue(out, "seed", strconv.FormatUint(res.Seed, 10))
		printKeyValue(out, "largest", fmt.Sprintf("%d members", res.Stats.LargestPedigree))
	} else {
		fmt.Fprintln(out, replicateTable(results))
	}

	if opts.output == "" {
		return nil
	}
	paths := outputPaths(opts.output, len(results))
	for i, res := range results {
		if err := pio.ExportJSON(res.Population, res.RunID, paths[i]); err != nil {
			return err
		}
		printFile(out, paths[i])
	}
	printNextStep(out, "Query it", fmt.Sprintf("%s distance -i %s <pid> <pid>", appName, paths[0]))
	return nil
}

// replicateTable summarizes replicate results, one row per replicate.
func replicateTable(results []*pipeline.Result) string {
	rows := make([][]string, len(results))
	for i, res := range results {
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.FormatUint(res.Seed, 10),
			strconv.Itoa(res.Stats.Individuals),
			strconv.Itoa(res.Stats.Pedigrees),
			strconv.Itoa(res.Stats.LargestPedigree),
		}
	}
	return renderTable([]string{"Replicate", "Seed", "Individuals", "Pedigrees", "Largest"}, rows)
}

// outputPaths derives one path per replicate from base: a single replicate
// writes base itself, several write base-000.json, base-001.json, ...
func outputPaths(base string, n int) []string {
	if n == 1 {
		return []string{base}
	}
	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".json"
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("%s-%03d%s", stem, i, ext)
	}
	return paths
}
