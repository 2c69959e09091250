package main

import (
	"context"
	"fmt"
	"io"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/benz9527/xtree/lib/xlog"
	"github.com/benz9527/xtree/observability"
)

const meterName = "xtree/cli"

type appDeps struct {
	fx.In

	Cfg    *Config
	Logger xlog.XLogger
	Meter  metric.MeterProvider
	Out    io.Writer
}

type metricsResult struct {
	fx.Out

	Provider metric.MeterProvider
	Registry *promclient.Registry
}

func newLogger(cfg *Config) (xlog.XLogger, error) {
	lvl, err := xlog.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	enc, err := xlog.ParseLogEncoder(cfg.Log.Encoder)
	if err != nil {
		return nil, err
	}
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(lvl),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerWriter(xlog.StdErr),
	), nil
}

func syncLoggerOnStop(lc fx.Lifecycle, logger xlog.XLogger) {
	lc.Append(fx.StopHook(func() {
		// Syncing a terminal may fail, nothing to do about it.
		_ = logger.Sync()
	}))
}

// newMeterProvider flushes the console readings or dumps the
// prometheus registry to out when the app stops.
func newMeterProvider(lc fx.Lifecycle, cfg *Config, out io.Writer) (metricsResult, error) {
	switch cfg.Metrics.Exporter {
	case exporterConsole:
		mp, err := observability.NewConsoleMetricsExporter(
			cfg.Metrics.Interval,
			cfg.Metrics.Interval,
			stdoutmetric.WithWriter(out),
			stdoutmetric.WithPrettyPrint(),
		)
		if err != nil {
			return metricsResult{}, err
		}
		observability.InitAppStats(context.Background(), "cli", nil)
		lc.Append(fx.StopHook(mp.Shutdown))
		return metricsResult{Provider: mp}, nil
	case exporterPrometheus:
		registry := promclient.NewRegistry()
		mp, err := observability.NewPrometheusMetricsExporter(registry)
		if err != nil {
			return metricsResult{}, err
		}
		observability.InitAppStats(context.Background(), "cli", nil)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if err := dumpRegistry(out, registry); err != nil {
					return err
				}
				return mp.Shutdown(ctx)
			},
		})
		return metricsResult{Provider: mp, Registry: registry}, nil
	default:
	}
	return metricsResult{Provider: noop.NewMeterProvider()}, nil
}

func dumpRegistry(out io.Writer, registry *promclient.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}

// runApp assembles the dependencies, runs the command once and stops
// the app so the metrics are flushed.
func runApp(ctx context.Context, cfg *Config, out io.Writer, run func(deps appDeps) error) error {
	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			func() io.Writer { return out },
			newLogger,
			newMeterProvider,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(syncLoggerOnStop, run),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}
