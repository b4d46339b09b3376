package service

import "github.com/wricardo/mars-rover/rover/engine"

// MoveResult contains the result of a move operation
type MoveResult struct {
	Rover    *engine.Rover `json:"rover"`
	From     engine.State  `json:"from"`
	To       engine.State  `json:"to"`
	Commands string        `json:"commands"`
	Executed int           `json:"executed"`
}
