// pkg/engine/progress.go
package engine

import (
	"sort"
	"time"
)

// RunStatus is the lifecycle state of a run.
type RunStatus int

const (
	RunRunning RunStatus = iota
	RunFinished
)

func (s RunStatus) String() string {
	switch s {
	case RunRunning:
		return "running"
	case RunFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PenaltyKind names the infraction a penalty was charged for.
type PenaltyKind string

const (
	PenaltyTouch      PenaltyKind = "touch"
	PenaltyOutOfOrder PenaltyKind = "out_of_order"
	PenaltyMissed     PenaltyKind = "missed"
	PenaltyObstacle   PenaltyKind = "obstacle"
)

// Penalties are the seconds added per infraction.
type Penalties struct {
	Touch      float64
	OutOfOrder float64
	Missed     float64
	Obstacle   float64
}

// DefaultPenalties matches the standard rules. Rock contact is free.
func DefaultPenalties() Penalties {
	return Penalties{Touch: 2, OutOfOrder: 50, Missed: 50, Obstacle: 0}
}

// Result is the frozen outcome of a finished run.
type Result struct {
	Score     float64
	Elapsed   float64
	Penalty   float64
	Tally     map[PenaltyKind]float64
	GatesDone int
	Touched   []int
	Finished  bool
}

// RunState tracks gate order and penalties for one run. It is owned by a
// single Simulation and is not safe for concurrent use.
type RunState struct {
	penalties Penalties

	start  time.Time
	finish time.Time

	status    RunStatus
	nextGate  int
	penalty   float64
	tally     map[PenaltyKind]float64
	touched   map[int]bool
	inContact map[int]bool
	passed    map[int]bool
}

// NewRunState starts a run at start.
func NewRunState(start time.Time, p Penalties) *RunState {
	return &RunState{
		penalties: p,
		start:     start,
		status:    RunRunning,
		tally:     make(map[PenaltyKind]float64),
		touched:   make(map[int]bool),
		inContact: make(map[int]bool),
		passed:    make(map[int]bool),
	}
}

// OnGateCrossed records a crossing of gate i and returns the penalty charged.
// Crossing any gate other than the expected one costs the out-of-order
// penalty; either way the next expected gate becomes i+1.
func (r *RunState) OnGateCrossed(i int) float64 {
	if r.status == RunFinished {
		return 0
	}
	var charged float64
	if i != r.nextGate {
		charged = r.charge(PenaltyOutOfOrder, r.penalties.OutOfOrder)
	}
	r.nextGate = i + 1
	r.passed[i] = true
	return charged
}

// OnHeadStrike charges the touch penalty the first time gate i is struck.
func (r *RunState) OnHeadStrike(i int) float64 {
	if r.status == RunFinished || r.touched[i] {
		return 0
	}
	r.touched[i] = true
	return r.charge(PenaltyTouch, r.penalties.Touch)
}

// OnObstacleContacts updates which rocks the hull is touching. A rock is
// charged when contact begins; it re-arms once the hull leaves it.
// It returns the indices of rocks newly contacted.
func (r *RunState) OnObstacleContacts(indices []int) []int {
	if r.status == RunFinished {
		return nil
	}
	current := make(map[int]bool, len(indices))
	var fresh []int
	for _, i := range indices {
		current[i] = true
		if !r.inContact[i] {
			fresh = append(fresh, i)
			r.charge(PenaltyObstacle, r.penalties.Obstacle)
		}
	}
	r.inContact = current
	return fresh
}

// CheckFinish moves the run to Finished once x passes finishX. The missed
// course penalty is charged once if not every gate was taken in order.
func (r *RunState) CheckFinish(x, finishX float64, gateCount int, now time.Time) bool {
	if r.status == RunFinished {
		return true
	}
	if !(x > finishX) {
		return false
	}
	if r.nextGate != gateCount {
		r.charge(PenaltyMissed, r.penalties.Missed)
	}
	r.status = RunFinished
	r.finish = now
	return true
}

func (r *RunState) charge(kind PenaltyKind, seconds float64) float64 {
	if seconds == 0 {
		return 0
	}
	r.penalty += seconds
	r.tally[kind] += seconds
	return seconds
}

// Elapsed is the time since start, frozen at the finish instant.
func (r *RunState) Elapsed(now time.Time) float64 {
	end := now
	if r.status == RunFinished {
		end = r.finish
	}
	return end.Sub(r.start).Seconds()
}

// Score is elapsed time plus accumulated penalty.
func (r *RunState) Score(now time.Time) float64 {
	return r.Elapsed(now) + r.penalty
}

// Penalty is the accumulated penalty in seconds.
func (r *RunState) Penalty() float64 { return r.penalty }

// NextGate is the index of the gate expected next.
func (r *RunState) NextGate() int { return r.nextGate }

// Status returns the run status.
func (r *RunState) Status() RunStatus { return r.status }

// Finished reports whether the run has crossed the finish line.
func (r *RunState) Finished() bool { return r.status == RunFinished }

// Touched reports whether gate i has been struck.
func (r *RunState) Touched(i int) bool { return r.touched[i] }

// Passed reports whether gate i has been crossed in its direction.
func (r *RunState) Passed(i int) bool { return r.passed[i] }

// InContact reports whether the hull touched rock i on the last update.
func (r *RunState) InContact(i int) bool { return r.inContact[i] }

// Result snapshots the run at now.
func (r *RunState) Result(now time.Time) Result {
	tally := make(map[PenaltyKind]float64, len(r.tally))
	for k, v := range r.tally {
		tally[k] = v
	}
	touched := make([]int, 0, len(r.touched))
	for i := range r.touched {
		touched = append(touched, i)
	}
	sort.Ints(touched)

	return Result{
		Score:     r.Score(now),
		Elapsed:   r.Elapsed(now),
		Penalty:   r.penalty,
		Tally:     tally,
		GatesDone: r.nextGate,
		Touched:   touched,
		Finished:  r.status == RunFinished,
	}
}
