package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pedsim/internal/server"
	"github.com/matzehuels/pedsim/pkg/config"
	"github.com/matzehuels/pedsim/pkg/observability"
)

type serveOpts struct {
	sourceOpts
	addr string
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: config.DefaultServerAddr}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer pedigree queries over HTTP",
		Long: `Simulate (or load) a population and serve read-only queries on it until
interrupted. Prometheus metrics are exposed on /metrics.`,
		Example: `  pedsim serve -i pop.json --addr :9000
  curl 'localhost:9000/distance?from=12&to=87'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.configPath != "" && !cmd.Flags().Changed("addr") {
				cfg, err := config.Load(opts.configPath)
				if err != nil {
					return err
				}
				opts.addr = cfg.Server.Addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			hooks := observability.NewPrometheusHooks(reg)
			observability.SetSimulationHooks(hooks)
			observability.SetQueryHooks(hooks)

			pop, runID, err := c.population(ctx, cmd, &opts.sourceOpts)
			if err != nil {
				return err
			}
			printSuccess(c.Out, "Serving %d individuals on %s", pop.Len(), StyleNumber.Render(opts.addr))
			printInfo(c.Out, "Metrics on %s", StyleDim.Render("/metrics"))

			srv := server.New(pop, server.Options{RunID: runID, Logger: c.Logger, Gatherer: reg})
			return srv.ListenAndServe(ctx, opts.addr)
		},
	}

	addSourceFlags(cmd, &opts.sourceOpts)
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	return cmd
}
