package stream

import (
	"encoding/json"
	"fmt"

	"github.com/Faultbox/meshcast/pkg/math"
)

// ControlType names a viewer command.
type ControlType string

const (
	ControlMove      ControlType = "move"      // camera: forward, right, up
	ControlTurn      ControlType = "turn"      // camera: pitch, yaw, roll deltas
	ControlRotate    ControlType = "rotate"    // mesh: Euler angles about its centroid
	ControlTranslate ControlType = "translate" // mesh: offset
	ControlMoveTo    ControlType = "moveto"    // mesh: centroid destination
	ControlScale     ControlType = "scale"     // mesh: per-axis factors
)

// Control is a command sent by a preview client as a JSON text message,
// e.g. {"type":"turn","y":0.1}. The render loop applies controls between
// frames.
type Control struct {
	Type ControlType `json:"type"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
	Z    float64     `json:"z"`
}

// Vec returns the control arguments as a vector.
func (c Control) Vec() math.Vec3 {
	return math.Vec3{X: c.X, Y: c.Y, Z: c.Z}
}

// ParseControl decodes and validates a control message.
func ParseControl(data []byte) (Control, error) {
	var c Control
	if err := json.Unmarshal(data, &c); err != nil {
		return Control{}, fmt.Errorf("decoding control: %w", err)
	}
	switch c.Type {
	case ControlMove, ControlTurn, ControlRotate, ControlTranslate, ControlMoveTo:
	case ControlScale:
		if c.X == 0 || c.Y == 0 || c.Z == 0 {
			return Control{}, fmt.Errorf("scale factors must be non-zero")
		}
	default:
		return Control{}, fmt.Errorf("unknown control type %q", c.Type)
	}
	return c, nil
}
