package engine

import (
	"fmt"
	"strings"
)

// Heading is the cardinal direction a rover faces. The values are ordered
// clockwise so rotation is plain modular arithmetic.
type Heading int

const (
	North Heading = iota
	East
	South
	West

	headingCount = 4
)

var headingCodes = [headingCount]string{"N", "E", "S", "W"}

var headingNames = [headingCount]string{"North", "East", "South", "West"}

// headingDeltas holds the unit step for each heading, indexed by Heading
var headingDeltas = [headingCount]Position{
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
}

// Valid reports whether h is one of the four cardinal headings
func (h Heading) Valid() bool {
	return h >= 0 && h < headingCount
}

// Left returns the heading after a 90 degree counter-clockwise turn
func (h Heading) Left() Heading {
	return (h + headingCount - 1) % headingCount
}

// Right returns the heading after a 90 degree clockwise turn
func (h Heading) Right() Heading {
	return (h + 1) % headingCount
}

// Delta returns the unit vector a forward move follows
func (h Heading) Delta() Position {
	if !h.Valid() {
		return Position{}
	}
	return headingDeltas[h]
}

// String returns the single-letter code (N, E, S, W)
func (h Heading) String() string {
	if !h.Valid() {
		return fmt.Sprintf("Heading(%d)", int(h))
	}
	return headingCodes[h]
}

// Name returns the full English name of the heading
func (h Heading) Name() string {
	if !h.Valid() {
		return h.String()
	}
	return headingNames[h]
}

// MarshalText encodes the heading as its single-letter code
func (h Heading) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHeading, int(h))
	}
	return []byte(headingCodes[h]), nil
}

// UnmarshalText accepts single-letter codes or full names, case-insensitive
func (h *Heading) UnmarshalText(text []byte) error {
	parsed, err := ParseHeading(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHeading converts "N", "north", "W" etc. into a Heading
func ParseHeading(s string) (Heading, error) {
	s = strings.TrimSpace(s)
	for i := Heading(0); i < headingCount; i++ {
		if strings.EqualFold(s, headingCodes[i]) || strings.EqualFold(s, headingNames[i]) {
			return i, nil
		}
	}
	return North, fmt.Errorf("%w: %q", ErrInvalidHeading, s)
}

// Position represents x,y coordinates on an unbounded grid
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p shifted by d
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// State is the heading/position pair the interpreter transforms
type State struct {
	Heading  Heading  `json:"heading"`
	Position Position `json:"position"`
}

func (s State) String() string {
	return fmt.Sprintf("(%d,%d,%s)", s.Position.X, s.Position.Y, s.Heading)
}

// Rover is the unit of state the fleet tracks
type Rover struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
	Heading  Heading  `json:"heading"`
}

// NewRover returns a rover at the origin facing North
func NewRover(id int, name string) *Rover {
	return &Rover{
		ID:       id,
		Name:     name,
		Position: Position{X: 0, Y: 0},
		Heading:  North,
	}
}

// State returns the rover's current heading and position
func (r *Rover) State() State {
	return State{Heading: r.Heading, Position: r.Position}
}

// SetState overwrites heading and position with s
func (r *Rover) SetState(s State) {
	r.Heading = s.Heading
	r.Position = s.Position
}

// Clone returns a copy that shares no memory with r
func (r *Rover) Clone() *Rover {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
