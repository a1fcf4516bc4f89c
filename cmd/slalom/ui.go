package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-slalom/pkg/config"
	"github.com/opd-ai/go-slalom/pkg/course"
	"github.com/opd-ai/go-slalom/pkg/engine"
	"github.com/opd-ai/go-slalom/pkg/input"
	"github.com/opd-ai/go-slalom/pkg/logging"
	"github.com/opd-ai/go-slalom/pkg/render"
	"github.com/opd-ai/go-slalom/pkg/validation"
)

const (
	helpText = "arrows paddle  esc quits"
	// maxFrameGap caps the time a single tick may advance after a stall.
	maxFrameGap = 250 * time.Millisecond
	viewMargin  = 20.0
)

type mode int

const (
	modeRacing mode = iota
	modeNameEntry
)

// app is the interactive front end: one run, then name entry.
type app struct {
	ctx        context.Context
	screen     tcell.Screen
	sim        *engine.Simulation
	view       *render.TerminalRenderer
	controller *input.Controller
	names      *validation.NameBuffer
	logger     *logging.Logger

	mode     mode
	notice   string
	summary  string
	lastTick time.Time
}

// runUI plays one interactive run and returns a one-line summary once the
// paddler has entered a name.
func runUI(ctx context.Context, cfg *config.Config, logger *logging.Logger, sound bool) (string, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return "", err
	}
	if err := screen.Init(); err != nil {
		return "", err
	}
	defer screen.Fini()

	sim, err := engine.NewSimulation(cfg, engine.WithLogger(logger))
	if err != nil {
		return "", err
	}
	if sound {
		sb := newSoundBoard(ctx, sim.EventBus(), logger)
		defer sb.Close()
	}

	a := newApp(ctx, screen, sim, logger)
	a.start(time.Now())
	return a.run(cfg.TickInterval())
}

func newApp(ctx context.Context, screen tcell.Screen, sim *engine.Simulation, logger *logging.Logger) *app {
	a := &app{
		ctx:        ctx,
		screen:     screen,
		sim:        sim,
		controller: input.NewController(input.DefaultKeyMap(sim.Config().Vessel), input.DefaultHoldTimeout),
		names:      validation.NewNameBuffer(0),
		logger:     logger,
	}
	a.resize()
	return a
}

func (a *app) start(now time.Time) {
	a.sim.Start()
	a.ctx = logging.WithRunID(a.ctx, a.sim.RunID())
	a.mode = modeRacing
	a.lastTick = now
}

// resize rebuilds the view to fill the screen and show the whole course.
func (a *app) resize() {
	w, h := a.screen.Size()
	a.view = newView(w, h, a.sim.Course())
}

func newView(w, h int, c *course.Course) *render.TerminalRenderer {
	v := render.NewTerminalRenderer(w, h, 1)
	v.SetOutput(io.Discard)
	v.Fit(c.Bounds().Expand(viewMargin))
	return v
}

func (a *app) run(interval time.Duration) (string, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := pollEvents(a.screen, done)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return a.summary, nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.handleKey(ev.Key(), ev.Rune(), time.Now()) {
					return a.summary, nil
				}
			case *tcell.EventResize:
				a.resize()
				a.screen.Sync()
			}
		case now := <-ticker.C:
			if err := a.tick(now); err != nil {
				return "", err
			}
			a.draw()
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or done
// is closed.
func pollEvents(screen tcell.Screen, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 100)
	go func() {
		defer close(events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

// keyAction maps a terminal key to a paddling action.
func keyAction(key tcell.Key) input.Action {
	switch key {
	case tcell.KeyUp:
		return input.ActionForward
	case tcell.KeyDown:
		return input.ActionBackward
	case tcell.KeyLeft:
		return input.ActionLeft
	case tcell.KeyRight:
		return input.ActionRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return input.ActionQuit
	default:
		return input.ActionNone
	}
}

// handleKey processes one key and reports whether the app keeps running.
func (a *app) handleKey(key tcell.Key, r rune, now time.Time) bool {
	if a.mode == modeNameEntry {
		return a.handleNameKey(key, r)
	}

	for _, cmd := range a.controller.Press(keyAction(key), now) {
		if a.sim.Apply(cmd) {
			a.logger.Info(a.ctx, "Run abandoned", "score", render.FormatScore(a.sim.Snapshot().Score))
			return false
		}
	}
	return true
}

func (a *app) handleNameKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.names.Backspace()
	case tcell.KeyEnter:
		name, err := a.names.Confirm()
		if err != nil {
			a.notice = err.Error()
			return true
		}
		res := a.sim.Result()
		if err := validation.ValidateScore(res.Score); err != nil {
			a.logger.Error(a.ctx, "Result not recorded", err, "name", name)
			return false
		}
		a.summary = fmt.Sprintf("%s %s", name, render.FormatScore(res.Score))
		a.logger.Info(a.ctx, "Run recorded",
			"name", name,
			"score", render.FormatScore(res.Score),
			"penalty", res.Penalty,
			"gates", res.GatesDone,
		)
		return false
	case tcell.KeyRune:
		if a.names.Type(r) {
			a.notice = ""
		}
	}
	return true
}

// tick releases lapsed keys and advances the run by the wall time since the
// previous tick.
func (a *app) tick(now time.Time) error {
	if a.mode != modeRacing {
		return nil
	}
	for _, cmd := range a.controller.Tick(now) {
		a.sim.Apply(cmd)
	}

	gap := now.Sub(a.lastTick)
	a.lastTick = now
	if gap > maxFrameGap {
		gap = maxFrameGap
	}
	if gap > 0 {
		if err := a.sim.Advance(gap.Seconds()); err != nil {
			return err
		}
	}

	if a.sim.Finished() {
		a.mode = modeNameEntry
		a.summary = render.FormatScore(a.sim.Result().Score)
	}
	return nil
}

func (a *app) draw() {
	render.Draw(a.view, a.sim.Snapshot())

	w, h := a.view.Size()
	switch a.mode {
	case modeRacing:
		a.view.DrawText(1, h-1, helpText, render.KindText)
	case modeNameEntry:
		mid := h / 2
		a.view.DrawCentered(mid-1, "FINISHED  "+render.FormatScore(a.sim.Result().Score), render.KindText)
		prompt := "name: " + a.names.String() + "_"
		a.view.DrawText(max((w-len(prompt))/2, 0), mid, prompt, render.KindText)
		a.view.DrawCentered(mid+1, a.notice, render.KindText)
	}
	blit(a.screen, a.view.Cells())
}

// blit copies cells to the screen and shows it.
func blit(screen tcell.Screen, cells [][]render.Cell) {
	screen.Clear()
	for y, row := range cells {
		for x, c := range row {
			screen.SetContent(x, y, c.Rune, nil, styleFor(c.Kind))
		}
	}
	screen.Show()
}

var water = tcell.StyleDefault.Background(tcell.ColorNavy)

// styleFor picks the colour of a cell kind.
func styleFor(k render.Kind) tcell.Style {
	switch k {
	case render.KindFinish:
		return water.Foreground(tcell.ColorWhite)
	case render.KindRock:
		return water.Foreground(tcell.ColorGray)
	case render.KindRockContact:
		return water.Foreground(tcell.ColorOrange).Bold(true)
	case render.KindGateDownstream:
		return water.Foreground(tcell.ColorGreen).Bold(true)
	case render.KindGateUpstream:
		return water.Foreground(tcell.ColorRed).Bold(true)
	case render.KindGateTouched:
		return water.Foreground(tcell.ColorYellow).Bold(true)
	case render.KindNextGate:
		return water.Foreground(tcell.ColorSilver)
	case render.KindHull:
		return water.Foreground(tcell.ColorYellow)
	case render.KindHead:
		return water.Foreground(tcell.ColorWhite).Bold(true)
	case render.KindText:
		return water.Foreground(tcell.ColorWhite).Bold(true)
	default:
		return water.Foreground(tcell.ColorBlue)
	}
}
