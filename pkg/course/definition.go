// pkg/course/definition.go
package course

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Polarity is the direction a gate must be crossed in.
type Polarity string

const (
	// Downstream gates are passed moving toward +x, with the current.
	Downstream Polarity = "downstream"
	// Upstream gates are passed moving toward -x, against the current.
	Upstream Polarity = "upstream"
)

// Valid reports whether p is a known polarity.
func (p Polarity) Valid() bool {
	return p == Downstream || p == Upstream
}

// Sign returns +1 for downstream and -1 for upstream gates.
func (p Polarity) Sign() float64 {
	if p == Upstream {
		return -1
	}
	return 1
}

// ParsePolarity accepts the polarity names case-insensitively, plus the short
// forms "down" and "up".
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "downstream", "down":
		return Downstream, nil
	case "upstream", "up":
		return Upstream, nil
	}
	return "", fmt.Errorf("%w: unknown polarity %q", ErrInvalidCourse, s)
}

// GateDef is the static configuration of one gate. Its position in
// Definition.Gates is its traversal order.
type GateDef struct {
	X        float64  `json:"x" mapstructure:"x"`
	Y        float64  `json:"y" mapstructure:"y"`
	Width    float64  `json:"width" mapstructure:"width"`
	Polarity Polarity `json:"polarity" mapstructure:"polarity"`
}

// ObstacleDef is the static configuration of one rock.
type ObstacleDef struct {
	Name   string       `json:"name,omitempty" mapstructure:"name"`
	Points [][2]float64 `json:"points" mapstructure:"points"`
}

// Definition is the serialisable form of a course.
type Definition struct {
	Gates       []GateDef     `json:"gates" mapstructure:"gates"`
	Obstacles   []ObstacleDef `json:"obstacles" mapstructure:"obstacles"`
	FinishLineX float64       `json:"finishLineX" mapstructure:"finishLineX"`
	PostRadius  float64       `json:"postRadius" mapstructure:"postRadius"`
}

// DefaultGateWidth is the post spacing of the standard course.
const DefaultGateWidth = 35

// DefaultDefinition returns the standard five-gate course with two rocks.
func DefaultDefinition() Definition {
	return Definition{
		Gates: []GateDef{
			{X: 150, Y: 150, Width: DefaultGateWidth, Polarity: Downstream},
			{X: 300, Y: 200, Width: DefaultGateWidth, Polarity: Downstream},
			{X: 450, Y: 150, Width: DefaultGateWidth, Polarity: Downstream},
			{X: 650, Y: 250, Width: DefaultGateWidth, Polarity: Upstream},
			{X: 750, Y: 170, Width: DefaultGateWidth, Polarity: Downstream},
		},
		Obstacles: []ObstacleDef{
			{
				Name:   "boulder",
				Points: [][2]float64{{365, 258}, {392, 255}, {400, 272}, {384, 288}, {362, 280}},
			},
			{
				Name:   "ledge",
				Points: [][2]float64{{540, 95}, {575, 98}, {582, 118}, {552, 125}},
			},
		},
		FinishLineX: 900,
		PostRadius:  5,
	}
}

// Encode writes def as indented JSON.
func Encode(w io.Writer, def Definition) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(def); err != nil {
		return fmt.Errorf("failed to encode course: %w", err)
	}
	return nil
}

// Decode reads a JSON course definition. Unknown fields are rejected so typos
// in hand-edited course files surface early.
func Decode(r io.Reader) (Definition, error) {
	var def Definition
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("failed to decode course: %w", err)
	}
	return def, nil
}
