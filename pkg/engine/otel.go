package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/opd-ai/go-slalom/pkg/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments holds the simulation counters. The global provider is a no-op
// unless the host installs one.
type instruments struct {
	ticks           metric.Int64Counter
	penalties       metric.Float64Counter
	gateCrossings   metric.Int64Counter
	obstacleStrikes metric.Int64Counter
}

func newInstruments() (*instruments, error) {
	m := meter()
	in := &instruments{}

	var err error
	in.ticks, err = m.Int64Counter(
		"slalom.ticks",
		metric.WithDescription("Simulation steps executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	in.penalties, err = m.Float64Counter(
		"slalom.penalties",
		metric.WithDescription("Penalty seconds charged"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating penalties counter: %w", err)
	}

	in.gateCrossings, err = m.Int64Counter(
		"slalom.gate_crossings",
		metric.WithDescription("Directional gate crossings"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gate crossings counter: %w", err)
	}

	in.obstacleStrikes, err = m.Int64Counter(
		"slalom.obstacle_strikes",
		metric.WithDescription("Rock contacts begun"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating obstacle strikes counter: %w", err)
	}

	return in, nil
}

func (in *instruments) penalty(ctx context.Context, kind PenaltyKind, seconds float64) {
	in.penalties.Add(ctx, seconds, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func (in *instruments) crossing(ctx context.Context, gate int, inOrder bool) {
	in.gateCrossings.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("gate", gate),
		attribute.Bool("in_order", inOrder),
	))
}

func (in *instruments) obstacle(ctx context.Context, name string) {
	in.obstacleStrikes.Add(ctx, 1, metric.WithAttributes(attribute.String("obstacle", name)))
}
