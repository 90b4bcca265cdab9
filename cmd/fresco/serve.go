package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/frescoui/fresco"
	"github.com/frescoui/fresco/examples/counter"
	"github.com/frescoui/fresco/pkg/middleware"
	"github.com/frescoui/fresco/pkg/upload"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		dev      bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bundled demo application",
		Long: `Run the demo counter application.

Examples:
  fresco serve
  fresco serve --addr :3000 --dev`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, dev, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")
	cmd.Flags().BoolVar(&dev, "dev", false, "Development mode (relaxed origin checks, no client caching)")
	cmd.Flags().DurationVar(&interval, "poll-interval", 0, "Live re-render interval (default 250ms)")

	return cmd
}

func runServe(addr string, dev bool, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(dev),
	}))

	app := fresco.New(fresco.Config{
		Addr:         addr,
		PollInterval: interval,
		DevMode:      dev,
		Logger:       logger,
		Uploads:      upload.NewMemoryStore(10 << 20),
		Middleware: []func(http.Handler) http.Handler{
			middleware.Prometheus(),
			middleware.OpenTelemetry(),
		},
	})
	app.RegisterPage(counter.Definition())

	go func() {
		metrics := http.NewServeMux()
		metrics.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe("localhost:9090", metrics); err != nil {
			logger.Warn("metrics listener stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}

func logLevel(dev bool) slog.Level {
	if dev {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
