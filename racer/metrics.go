package racer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/baldhumanity/lidar-racer/racer"

// defaultMeter returns the meter from the global OTel provider (no-op if not configured).
func defaultMeter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// engineMetrics are the counters a population updates at each generation boundary.
type engineMetrics struct {
	generations metric.Int64Counter
	wins        metric.Int64Counter
	crashes     metric.Int64Counter
	bestFitness metric.Float64Histogram
	driver      attribute.KeyValue
}

func newEngineMetrics(m metric.Meter, driverKind string) (*engineMetrics, error) {
	em := &engineMetrics{driver: attribute.String("driver", driverKind)}

	var err error
	em.generations, err = m.Int64Counter(
		"racer.generations.concluded",
		metric.WithDescription("Total generations concluded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating generations counter: %w", err)
	}

	em.wins, err = m.Int64Counter(
		"racer.episodes.wins",
		metric.WithDescription("Total vehicles that reached a goal"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating wins counter: %w", err)
	}

	em.crashes, err = m.Int64Counter(
		"racer.episodes.crashes",
		metric.WithDescription("Total vehicles that hit an obstacle or border"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating crashes counter: %w", err)
	}

	em.bestFitness, err = m.Float64Histogram(
		"racer.fitness.best",
		metric.WithDescription("Best fitness per generation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating best fitness histogram: %w", err)
	}

	return em, nil
}

func (em *engineMetrics) record(ctx context.Context, r *GenerationReport) {
	attrs := metric.WithAttributes(em.driver)
	em.generations.Add(ctx, 1, attrs)
	em.wins.Add(ctx, int64(r.Wins), attrs)
	em.crashes.Add(ctx, int64(r.Crashes), attrs)
	em.bestFitness.Record(ctx, r.Best, attrs)
}
