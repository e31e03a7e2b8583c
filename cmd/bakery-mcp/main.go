// Command bakery-mcp serves the bakery agent gateway over stdio or HTTP.
//
// Usage:
//
//	bakery-mcp [flags] [stdio|http]
//
// The mode defaults to stdio so MCP hosts can spawn the binary directly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mariagorskikh/bakerymcpserver/pkg/bakery"
	"github.com/mariagorskikh/bakerymcpserver/pkg/config"
	"github.com/mariagorskikh/bakerymcpserver/pkg/gateway"
	"github.com/mariagorskikh/bakerymcpserver/pkg/logx"
	"github.com/mariagorskikh/bakerymcpserver/pkg/metrics"
)

func main() {
	var cfg config.Config
	cfg.BindFlags()
	flag.Parse()

	mode := flag.Arg(0)
	if mode == "" {
		mode = "stdio"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register(prometheus.DefaultRegisterer)

	agent := bakery.New(logx.Log.With().Str("component", "bakery").Logger())

	g, err := gateway.New(agent, &gateway.Options{
		Addr:      fmt.Sprintf(":%d", cfg.Port),
		PublicURL: cfg.PublicURL,
	})
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("failed to build gateway")
	}

	switch mode {
	case "stdio":
		if err := g.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logx.Log.Fatal().Err(err).Msg("stdio server stopped")
		}
	case "http":
		if err := g.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logx.Log.Fatal().Err(err).Msg("http server stopped")
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [stdio|http]\n", os.Args[0])
		os.Exit(2)
	}
}
