package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCommand = errors.New("invalid movement instruction")
	ErrInvalidHeading = errors.New("invalid heading")
)

// Command is a single movement instruction
type Command byte

const (
	TurnLeft  Command = 'L'
	TurnRight Command = 'R'
	Forward   Command = 'M'
)

func (c Command) String() string {
	return string(c)
}

// InvalidCommandError reports the first character outside {L,R,M}
type InvalidCommandError struct {
	Index int
	Char  rune
}

func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("%s: unexpected %q at offset %d", ErrInvalidCommand, e.Char, e.Index)
}

func (e *InvalidCommandError) Unwrap() error {
	return ErrInvalidCommand
}

// ParseCommands validates the whole string before returning any command.
// Lowercase letters are accepted and normalised; the empty string yields no commands.
func ParseCommands(s string) ([]Command, error) {
	commands := make([]Command, 0, len(s))
	for i, r := range s {
		switch r {
		case 'L', 'l':
			commands = append(commands, TurnLeft)
		case 'R', 'r':
			commands = append(commands, TurnRight)
		case 'M', 'm':
			commands = append(commands, Forward)
		default:
			return nil, &InvalidCommandError{Index: i, Char: r}
		}
	}
	return commands, nil
}

// Step applies one command and returns the resulting state
func (s State) Step(c Command) State {
	switch c {
	case TurnLeft:
		s.Heading = s.Heading.Left()
	case TurnRight:
		s.Heading = s.Heading.Right()
	case Forward:
		s.Position = s.Position.Add(s.Heading.Delta())
	}
	return s
}

// Run applies already validated commands left to right
func Run(start State, commands []Command) State {
	state := start
	for _, c := range commands {
		state = state.Step(c)
	}
	return state
}

// Execute validates the command string and, only if every character is
// valid, applies it to start. On error start is returned untouched.
func Execute(start State, commands string) (State, error) {
	parsed, err := ParseCommands(commands)
	if err != nil {
		return start, err
	}
	return Run(start, parsed), nil
}
