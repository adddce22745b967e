package overlay

import (
	"github.com/udisondev/wayfinder/internal/indicator"
)

// Client message types.
const (
	TypePosition = "position"
	TypeTargets  = "targets"
)

// Server message types.
const (
	TypeFrame = "frame"
	TypeError = "error"
)

// ClientMessage is sent by the overlay to move the subscriber or change
// its targets.
type ClientMessage struct {
	Type     string          `json:"type"`
	Location string          `json:"location,omitempty"`
	X        int             `json:"x,omitempty"`
	Y        int             `json:"y,omitempty"`
	Targets  []TargetMessage `json:"targets,omitempty"`
}

// TargetMessage is a tile in a named location.
type TargetMessage struct {
	Location string `json:"location"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// FrameMessage is the wire form of an indicator frame. Distance is omitted
// when nothing is reachable.
type FrameMessage struct {
	Type     string         `json:"type"`
	Found    bool           `json:"found"`
	Target   *TargetMessage `json:"target,omitempty"`
	NextHop  *TargetMessage `json:"next_hop,omitempty"`
	Portal   string         `json:"portal,omitempty"`
	Distance *float64       `json:"distance,omitempty"`
	Arrow    string         `json:"arrow"`
	Version  uint64         `json:"version"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func toTarget(m TargetMessage) indicator.Target {
	return indicator.Target{Location: m.Location, X: m.X, Y: m.Y}
}

func frameMessage(f indicator.Frame) FrameMessage {
	m := FrameMessage{
		Type:    TypeFrame,
		Found:   f.Found,
		Arrow:   f.Arrow.String(),
		Version: f.Version,
	}
	if !f.Found {
		return m
	}
	d := f.Distance
	m.Distance = &d
	m.Target = &TargetMessage{Location: f.Target.Location, X: f.Target.X, Y: f.Target.Y}
	m.NextHop = &TargetMessage{Location: f.NextHop.Loc.Name(), X: f.NextHop.X, Y: f.NextHop.Y}
	m.Portal = f.Portal
	return m
}
