// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-slalom/pkg/engine"
	"github.com/opd-ai/go-slalom/pkg/logging"
	"github.com/opd-ai/go-slalom/pkg/physics"
)

// Renderer draws one frame of a run.
type Renderer interface {
	Clear()
	RenderFinishLine(x float64)
	RenderObstacle(o engine.ObstacleView)
	RenderGate(g engine.GateView)
	RenderVessel(hull physics.Polygon, pose physics.Pose)
	RenderHUD(score float64, finished bool)
	Present()
}

// Draw renders snap back to front: finish line, rocks, gates, vessel, HUD.
func Draw(r Renderer, snap engine.Snapshot) {
	r.Clear()
	r.RenderFinishLine(snap.FinishLineX)
	for _, o := range snap.Obstacles {
		r.RenderObstacle(o)
	}
	for _, g := range snap.Gates {
		r.RenderGate(g)
	}
	r.RenderVessel(snap.Hull, snap.Pose)
	r.RenderHUD(snap.Score, snap.Finished)
	r.Present()
}

// NullRenderer draws nothing and logs each call at debug level. Headless runs
// use it so a frame trace is available with SLALOM_LOG_LEVEL=debug.
type NullRenderer struct {
	logger *logging.Logger
	frames uint64
}

// NewNullRenderer creates a NullRenderer. A nil logger discards everything.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullRenderer{logger: logger}
}

// Frames returns the number of frames presented.
func (d *NullRenderer) Frames() uint64 {
	return d.frames
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called", "frame", d.frames)
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.frames++
	d.logger.Debug(context.Background(), "Present called", "frame", d.frames)
}

// RenderFinishLine implements Renderer.
func (d *NullRenderer) RenderFinishLine(x float64) {
	d.logger.Debug(context.Background(), "RenderFinishLine called", "x", x)
}

// RenderObstacle implements Renderer.
func (d *NullRenderer) RenderObstacle(o engine.ObstacleView) {
	d.logger.Debug(context.Background(), "RenderObstacle called",
		"obstacle", o.Name,
		"vertices", len(o.Outline),
		"contact", o.Contact,
	)
}

// RenderGate implements Renderer.
func (d *NullRenderer) RenderGate(g engine.GateView) {
	d.logger.Debug(context.Background(), "RenderGate called",
		"gate", g.Index,
		"polarity", string(g.Polarity),
		"passed", g.Passed,
		"touched", g.Touched,
	)
}

// RenderVessel implements Renderer.
func (d *NullRenderer) RenderVessel(hull physics.Polygon, pose physics.Pose) {
	d.logger.Debug(context.Background(), "RenderVessel called",
		"x", pose.Position.X,
		"y", pose.Position.Y,
		"heading", pose.Heading,
		"vertices", len(hull),
	)
}

// RenderHUD implements Renderer.
func (d *NullRenderer) RenderHUD(score float64, finished bool) {
	d.logger.Debug(context.Background(), "RenderHUD called", "score", FormatScore(score), "finished", finished)
}
