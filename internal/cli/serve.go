package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/psulibraries/rmdlink/internal/server"
	"github.com/psulibraries/rmdlink/pkg/cache"
	"github.com/psulibraries/rmdlink/pkg/observability"
	"github.com/psulibraries/rmdlink/pkg/observability/prom"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve profile lookups and cache invalidation over HTTP",
		Long: `Run the HTTP service.

Routes:
  GET  /healthz
  GET  /v1/profiles/{username}
  GET  /v1/profiles/{username}/attributes/{attribute}
  GET  /v1/profiles/{username}/publications
  POST /v1/cache/invalidate
  GET  /metrics

Without a configured cache backend the service keeps records in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, store, cfg, err := c.newFetcher(ctx, cache.BackendMemory)
			if err != nil {
				return err
			}
			defer store.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			prom.New(reg).Install()
			defer observability.Reset()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv := server.New(f, server.Options{
				Logger:  c.Logger,
				Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
