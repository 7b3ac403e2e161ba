package main

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/feedformatter/metrics"
	"github.com/theoremus-urban-solutions/feedformatter/publish"
	"github.com/theoremus-urban-solutions/feedformatter/server"
	"github.com/theoremus-urban-solutions/feedformatter/store"
)

var (
	servePort           int
	servePublishOnStart bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve published feeds over HTTP",
	Long: `Start the HTTP server.

Routes:
  GET  /feeds/{name}           latest document (?format=rss1|rss2|atom)
  POST /feeds/{name}/refresh   re-publish a configured feed
  GET  /api/feeds              stored documents
  GET  /api/health             store health
  GET  /metrics                Prometheus metrics

With server.refreshIntervalMS set, every feed is re-published on that
schedule.

Examples:
  feedformatter serve
  feedformatter serve --port 9000 --publish-on-start=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
	serveCmd.Flags().BoolVar(&servePublishOnStart, "publish-on-start", true, "publish every feed before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 {
		appConfig.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(appConfig.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	p, err := publish.New(appConfig, st, m, logger)
	if err != nil {
		return err
	}

	if servePublishOnStart && len(appConfig.Feeds) > 0 {
		if _, err := p.PublishAll(ctx); err != nil {
			logger.Warn().Err(err).Msg("initial publish incomplete")
		}
	}

	srv := server.New(server.Options{
		Config:    appConfig,
		Store:     st,
		Publisher: p,
		Metrics:   m,
		Gatherer:  reg,
		Logger:    logger,
	})
	return srv.Run(ctx)
}
