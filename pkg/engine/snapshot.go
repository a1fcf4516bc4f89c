// pkg/engine/snapshot.go
package engine

import (
	"github.com/opd-ai/go-slalom/pkg/course"
	"github.com/opd-ai/go-slalom/pkg/physics"
)

// GateView is the render-facing state of one gate.
type GateView struct {
	Index     int
	Center    physics.Vector2D
	LeftPost  physics.Vector2D
	RightPost physics.Vector2D
	Radius    float64
	Polarity  course.Polarity
	Passed    bool
	Touched   bool
	Next      bool
}

// ObstacleView is the render-facing state of one rock.
type ObstacleView struct {
	Index   int
	Name    string
	Outline physics.Polygon
	Contact bool
}

// Snapshot is a copy of everything a renderer needs for one frame.
type Snapshot struct {
	Tick        uint64
	SimTime     float64
	Pose        physics.Pose
	Velocity    physics.Velocity
	Hull        physics.Polygon
	HeadRadius  float64
	Gates       []GateView
	Obstacles   []ObstacleView
	FinishLineX float64
	Score       float64
	Penalty     float64
	NextGate    int
	Finished    bool
}
