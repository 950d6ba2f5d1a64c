// Command exchanged runs the exchange server: a sharded matching core
// behind a TCP front door, with Prometheus metrics and a websocket
// market-data feed. Adapted from the teacher's cmd/main.go, which wired a
// single flat Engine straight to one net.Server; this wires a Market
// (sharded) to a Server plus a metrics observer and a feed.Hub, all
// fed by one eventsink.Fanout.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"fenrir/internal/config"
	"fenrir/internal/eventsink"
	"fenrir/internal/feed"
	"fenrir/internal/logging"
	"fenrir/internal/market"
	"fenrir/internal/matching"
	"fenrir/internal/metrics"
	"fenrir/internal/server"
)

func main() {
	fs := pflag.NewFlagSet("exchanged", pflag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("exchanged: failed to parse flags")
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatal().Err(err).Msg("exchanged: failed to load configuration")
	}

	logging.Init(cfg.LogLevel, cfg.PrettyLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	hub := feed.NewHub()

	sink := eventsink.NewFanout()
	mkt := market.New(cfg.ShardCount, sink)
	srv := server.New(cfg.ListenAddress, mkt)

	sink.Add(matching.SinkFunc(srv.RouteEvent))
	sink.Add(matching.SinkFunc(metrics.Observe))
	sink.Add(hub)

	mkt.Start()
	defer mkt.Stop()

	for _, symbolID := range cfg.Symbols {
		mkt.AddSymbol(symbolID)
	}

	if cfg.MetricsAddress != "" {
		go serveMetrics(cfg.MetricsAddress)
	}
	if cfg.FeedAddress != "" {
		go serveFeed(cfg.FeedAddress, hub)
	}

	go srv.Run(ctx)

	log.Info().
		Str("listen", cfg.ListenAddress).
		Int("shards", cfg.ShardCount).
		Msg("exchanged: started")

	<-ctx.Done()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info().Str("address", addr).Msg("exchanged: serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("exchanged: metrics server exited")
	}
}

func serveFeed(addr string, hub *feed.Hub) {
	mux := http.NewServeMux()
	mux.Handle("/feed", hub)
	log.Info().Str("address", addr).Msg("exchanged: serving market data feed")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("exchanged: feed server exited")
	}
}
