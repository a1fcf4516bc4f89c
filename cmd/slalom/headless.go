package main

import (
	"context"
	"io"

	"github.com/opd-ai/go-slalom/pkg/config"
	"github.com/opd-ai/go-slalom/pkg/engine"
	"github.com/opd-ai/go-slalom/pkg/logging"
	"github.com/opd-ai/go-slalom/pkg/pilot"
	"github.com/opd-ai/go-slalom/pkg/render"
)

// headlessLimit caps a headless run in simulated seconds.
const headlessLimit = 900.0

// Frame size used when printing the last frame of a headless run.
const (
	frameWidth  = 96
	frameHeight = 24
)

// runHeadless lets the autopilot paddle one run on the simulated clock and
// logs the outcome. With showFrame the final frame is written to out.
func runHeadless(ctx context.Context, cfg *config.Config, logger *logging.Logger, showFrame bool, out io.Writer) error {
	cfg.Scoring.Clock = config.ClockSimulated

	sim, err := engine.NewSimulation(cfg, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	sim.Start()
	ctx = logging.WithRunID(ctx, sim.RunID())

	null := render.NewNullRenderer(logger)
	p := pilot.New(cfg.Vessel, logger)

	res, err := pilot.Fly(sim, p, cfg.TickDelta(), headlessLimit, func(snap engine.Snapshot) {
		render.Draw(null, snap)
	})
	if err != nil {
		return logging.WrapError(err, "autopilot run %s", sim.RunID())
	}

	logger.Info(ctx, "Headless run complete",
		"score", render.FormatScore(res.Score),
		"elapsed", res.Elapsed,
		"penalty", res.Penalty,
		"gates", res.GatesDone,
		"touched", len(res.Touched),
		"frames", null.Frames(),
	)

	if showFrame {
		term := render.NewTerminalRenderer(frameWidth, frameHeight, 1)
		term.Fit(sim.Course().Bounds().Expand(20))
		term.SetOutput(out)
		render.Draw(term, sim.Snapshot())
	}
	return nil
}
