// Package engine provides the movement interpreter for the Mars Rover fleet.
//
// The engine package implements:
//   - Cardinal headings with modular left/right rotation
//   - Command string validation over the alphabet {L, R, M}
//   - Pure state transitions from (heading, position) to (heading, position)
//
// Core Types:
//
// Heading is an ordered 4-cycle (North, East, South, West). State pairs a
// heading with an unbounded integer Position. Rover carries the identity
// and name the store persists around a State.
//
// Usage:
//
//	start := engine.State{Heading: engine.North}
//	end, err := engine.Execute(start, "MRM")
//	if err != nil {
//		// errors.Is(err, engine.ErrInvalidCommand)
//	}
//	// end == State{Heading: East, Position: Position{X: 1, Y: 1}}
//
// Movement Rules:
//
// L and R spin the rover 90 degrees without moving it. M moves one grid
// point along the current heading: North is +y, East is +x. The whole
// command string is validated before the first command runs, so a
// rejected string never leaves a partially moved rover behind.
package engine
