package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/opd-ai/go-slalom/pkg/course"
	"github.com/opd-ai/go-slalom/pkg/engine"
	"github.com/opd-ai/go-slalom/pkg/physics"
)

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2.0

// Kind classifies a cell so a front end can pick a colour for it.
type Kind int

const (
	KindWater Kind = iota
	KindFinish
	KindRock
	KindRockContact
	KindGateDownstream
	KindGateUpstream
	KindGateTouched
	KindNextGate
	KindHull
	KindHead
	KindText
)

// Cell is one character of the frame.
type Cell struct {
	Rune rune
	Kind Kind
}

// FormatScore renders a score the way the HUD shows it.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// TerminalRenderer draws frames into a character grid. Present writes the grid
// as plain text; interactive front ends read Cells instead.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]Cell
	scale     float64
	centerPos physics.Vector2D
	out       io.Writer
}

// NewTerminalRenderer creates a renderer with the given size in cells. scale
// is the number of course units per cell horizontally.
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]Cell, height)
	for i := range buffer {
		buffer[i] = make([]Cell, width)
	}

	r := &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    os.Stdout,
	}
	r.Clear()
	return r
}

// SetCenter sets the course position shown in the middle of the grid.
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// SetOutput redirects Present.
func (r *TerminalRenderer) SetOutput(w io.Writer) {
	r.out = w
}

// Fit centres the view on bounds and picks the smallest scale that shows
// all of it.
func (r *TerminalRenderer) Fit(bounds physics.Rect) {
	if r.width <= 0 || r.height <= 0 {
		return
	}
	r.centerPos = bounds.Center
	sx := bounds.Width / float64(r.width)
	sy := bounds.Height / (float64(r.height) * cellAspect)
	r.scale = math.Max(sx, sy)
	if r.scale <= 0 {
		r.scale = 1
	}
}

// Size returns the grid dimensions in cells.
func (r *TerminalRenderer) Size() (int, int) {
	return r.width, r.height
}

// Cells returns a copy of the grid, row by row.
func (r *TerminalRenderer) Cells() [][]Cell {
	out := make([][]Cell, len(r.buffer))
	for y, row := range r.buffer {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}

// At returns the cell at column x, row y.
func (r *TerminalRenderer) At(x, y int) (Cell, bool) {
	if !r.inBounds(x, y) {
		return Cell{}, false
	}
	return r.buffer[y][x], true
}

// worldToScreen converts course coordinates to a cell position.
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2)
	screenY := math.Floor((pos.Y-r.centerPos.Y)/(r.scale*cellAspect) + float64(r.height)/2)
	return int(screenX), int(screenY)
}

// screenToWorld returns the course position of a cell's centre.
func (r *TerminalRenderer) screenToWorld(x, y int) physics.Vector2D {
	return physics.Vector2D{
		X: (float64(x)+0.5-float64(r.width)/2)*r.scale + r.centerPos.X,
		Y: (float64(y)+0.5-float64(r.height)/2)*r.scale*cellAspect + r.centerPos.Y,
	}
}

func (r *TerminalRenderer) inBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

func (r *TerminalRenderer) set(x, y int, ch rune, kind Kind) {
	if r.inBounds(x, y) {
		r.buffer[y][x] = Cell{Rune: ch, Kind: kind}
	}
}

func (r *TerminalRenderer) plot(pos physics.Vector2D, ch rune, kind Kind) {
	x, y := r.worldToScreen(pos)
	r.set(x, y, ch, kind)
}

// fill marks every cell whose centre lies inside p, plus every vertex so
// shapes smaller than a cell stay visible.
func (r *TerminalRenderer) fill(p physics.Polygon, ch rune, kind Kind) {
	if len(p) == 0 {
		return
	}
	b := p.Bounds()
	x0, y0 := r.worldToScreen(physics.Vector2D{X: b.Center.X - b.Width/2, Y: b.Center.Y - b.Height/2})
	x1, y1 := r.worldToScreen(physics.Vector2D{X: b.Center.X + b.Width/2, Y: b.Center.Y + b.Height/2})
	for y := max(y0, 0); y <= min(y1, r.height-1); y++ {
		for x := max(x0, 0); x <= min(x1, r.width-1); x++ {
			if p.Contains(r.screenToWorld(x, y)) {
				r.set(x, y, ch, kind)
			}
		}
	}
	for _, v := range p {
		r.plot(v, ch, kind)
	}
}

// DrawText writes s starting at column x of row y.
func (r *TerminalRenderer) DrawText(x, y int, s string, kind Kind) {
	for i, ch := range []rune(s) {
		r.set(x+i, y, ch, kind)
	}
}

// DrawCentered writes s centred on row y.
func (r *TerminalRenderer) DrawCentered(y int, s string, kind Kind) {
	r.DrawText((r.width-len([]rune(s)))/2, y, s, kind)
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = Cell{Rune: ' ', Kind: KindWater}
		}
	}
}

// RenderFinishLine implements Renderer.
func (r *TerminalRenderer) RenderFinishLine(x float64) {
	sx, _ := r.worldToScreen(physics.Vector2D{X: x})
	for y := 0; y < r.height; y++ {
		r.set(sx, y, '|', KindFinish)
	}
}

// RenderObstacle implements Renderer.
func (r *TerminalRenderer) RenderObstacle(o engine.ObstacleView) {
	kind := KindRock
	if o.Contact {
		kind = KindRockContact
	}
	r.fill(o.Outline, '#', kind)
}

// RenderGate implements Renderer. Downstream and upstream gates get different
// kinds; the expected gate shows a dotted line between its posts.
func (r *TerminalRenderer) RenderGate(g engine.GateView) {
	kind := KindGateDownstream
	if g.Polarity == course.Upstream {
		kind = KindGateUpstream
	}
	post := 'O'
	switch {
	case g.Touched:
		post = 'X'
		kind = KindGateTouched
	case g.Passed:
		post = 'o'
	}

	if g.Next {
		x, top := r.worldToScreen(g.LeftPost)
		_, bottom := r.worldToScreen(g.RightPost)
		for y := top + 1; y < bottom; y++ {
			r.set(x, y, ':', KindNextGate)
		}
	}
	r.plot(g.LeftPost, post, kind)
	r.plot(g.RightPost, post, kind)
}

// RenderVessel implements Renderer.
func (r *TerminalRenderer) RenderVessel(hull physics.Polygon, pose physics.Pose) {
	r.fill(hull, '=', KindHull)
	r.plot(pose.Position, '@', KindHead)
}

// RenderHUD implements Renderer.
func (r *TerminalRenderer) RenderHUD(score float64, finished bool) {
	text := FormatScore(score)
	if finished {
		text += "  FINISH"
	}
	r.DrawCentered(0, text, KindText)
}

// Present implements Renderer. It writes the grid inside a border.
func (r *TerminalRenderer) Present() {
	_ = r.Dump(r.out)
}

// Dump writes the grid inside a border to w.
func (r *TerminalRenderer) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	border := "+" + strings.Repeat("-", r.width) + "+\n"

	bw.WriteString(border)
	for y := range r.buffer {
		bw.WriteByte('|')
		for x := range r.buffer[y] {
			bw.WriteRune(r.buffer[y][x].Rune)
		}
		bw.WriteString("|\n")
	}
	bw.WriteString(border)
	return bw.Flush()
}

// String returns the grid rows without a border.
func (r *TerminalRenderer) String() string {
	var sb strings.Builder
	for y := range r.buffer {
		for x := range r.buffer[y] {
			sb.WriteRune(r.buffer[y][x].Rune)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
