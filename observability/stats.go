package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xtree/lib/tree"
)

var (
	once sync.Once
)

type appStats struct {
	ctx              context.Context
	shutdownCallback func(ctx context.Context) error
	goroutines       metric.Int64ObservableUpDownCounter
	processes        metric.Int64ObservableUpDownCounter
}

func (stats *appStats) waitForShutdown() {
	if stats == nil || stats.shutdownCallback == nil {
		return
	}
	go func() {
		<-stats.ctx.Done()
		_ = stats.shutdownCallback(context.Background())
	}()
}

func appMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xtree/app/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats starts the runtime instrumentation on the global meter
// provider once. The shutdown callback runs when ctx is done.
func InitAppStats(ctx context.Context, name string, shutdown func(ctx context.Context) error) {
	once.Do(func() {
		meter := otel.Meter(
			appMeterName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{
			ctx:              ctx,
			shutdownCallback: shutdown,
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			processes: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			)),
		}
		_ = otelruntime.Start()
		stats.waitForShutdown()
	})
}

// TreeStatsSource is satisfied by every tree of lib/tree.
type TreeStatsSource interface {
	Stats() tree.TreeStats
}

// RegisterTreeStats observes the size, height and rotations of src,
// labelled by name, on every collection of meter's reader.
// Unregister the returned registration before dropping src.
func RegisterTreeStats(meter metric.Meter, name string, src TreeStatsSource) (metric.Registration, error) {
	nodes := lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
		"xtree.nodes",
		metric.WithDescription(`The number of nodes held by the tree.`),
	))
	height := lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
		"xtree.height",
		metric.WithDescription(`The tree height, -1 when empty.`),
	))
	rotations := lo.Must[metric.Int64ObservableCounter](meter.Int64ObservableCounter(
		"xtree.rotations",
		metric.WithDescription(`The rotations done to keep the tree balanced.`),
	))
	attrs := metric.WithAttributes(attribute.String("tree", name))
	return meter.RegisterCallback(func(ctx context.Context, ob metric.Observer) error {
		stats := src.Stats()
		ob.ObserveInt64(nodes, stats.Len, attrs)
		ob.ObserveInt64(height, int64(stats.Height), attrs)
		ob.ObserveInt64(rotations, int64(stats.Rotations), attrs)
		return nil
	}, nodes, height, rotations)
}
