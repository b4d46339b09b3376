package engine

import (
	"errors"
	"testing"
)

var allHeadings = []Heading{North, East, South, West}

func TestExecute_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		start    State
		commands string
		expected State
	}{
		{"move twice north", State{North, Position{0, 0}}, "MM", State{North, Position{0, 2}}},
		{"move turn right move", State{North, Position{0, 0}}, "MRM", State{East, Position{1, 1}}},
		{"turn left then move west", State{North, Position{0, 0}}, "LMM", State{West, Position{-2, 0}}},
		{"from east turn right", State{East, Position{5, 5}}, "RMM", State{South, Position{5, 3}}},
		{"empty string", State{South, Position{3, -4}}, "", State{South, Position{3, -4}}},
		{"lowercase", State{North, Position{0, 0}}, "mrm", State{East, Position{1, 1}}},
		{"mixed case", State{North, Position{0, 0}}, "mRmLm", State{North, Position{1, 2}}},
		{"full loop", State{North, Position{0, 0}}, "MRMRMRMR", State{North, Position{0, 0}}},
		{"negative quadrant", State{West, Position{0, 0}}, "MMLMMM", State{South, Position{-2, -3}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Execute(test.start, test.commands)
			if err != nil {
				t.Fatalf("Execute(%v, %q) returned error: %v", test.start, test.commands, err)
			}
			if got != test.expected {
				t.Errorf("Execute(%v, %q): expected %v, got %v", test.start, test.commands, test.expected, got)
			}
		})
	}
}

func TestExecute_InvalidCommandLeavesStateUnchanged(t *testing.T) {
	start := State{North, Position{0, 0}}

	tests := []struct {
		name     string
		commands string
		index    int
		char     rune
	}{
		{"single foreign letter", "X", 0, 'X'},
		{"invalid after valid moves", "MMMX", 3, 'X'},
		{"whitespace", "M M", 1, ' '},
		{"digit", "M1", 1, '1'},
		{"unicode", "Mé", 1, 'é'},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Execute(start, test.commands)
			if !errors.Is(err, ErrInvalidCommand) {
				t.Fatalf("Expected ErrInvalidCommand, got %v", err)
			}
			if got != start {
				t.Errorf("Expected state to remain %v, got %v", start, got)
			}

			var cmdErr *InvalidCommandError
			if !errors.As(err, &cmdErr) {
				t.Fatalf("Expected *InvalidCommandError, got %T", err)
			}
			if cmdErr.Index != test.index || cmdErr.Char != test.char {
				t.Errorf("Expected %q at %d, got %q at %d", test.char, test.index, cmdErr.Char, cmdErr.Index)
			}
		})
	}
}

func TestParseCommands(t *testing.T) {
	commands, err := ParseCommands("lRm")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []Command{TurnLeft, TurnRight, Forward}
	if len(commands) != len(expected) {
		t.Fatalf("Expected %d commands, got %d", len(expected), len(commands))
	}
	for i := range expected {
		if commands[i] != expected[i] {
			t.Errorf("Command %d: expected %s, got %s", i, expected[i], commands[i])
		}
	}

	empty, err := ParseCommands("")
	if err != nil {
		t.Fatalf("Empty string should be valid, got %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no commands, got %d", len(empty))
	}
}

func TestRotation_FourTurnsIsIdentity(t *testing.T) {
	for _, h := range allHeadings {
		start := State{h, Position{7, -3}}
		for _, commands := range []string{"LLLL", "RRRR"} {
			got, err := Execute(start, commands)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != start {
				t.Errorf("%s from %s: expected %v, got %v", commands, h.Name(), start, got)
			}
		}
	}
}

func TestRotation_LeftRightCancel(t *testing.T) {
	for _, h := range allHeadings {
		start := State{h, Position{1, 1}}
		for _, commands := range []string{"LR", "RL"} {
			got, _ := Execute(start, commands)
			if got != start {
				t.Errorf("%s from %s: expected %v, got %v", commands, h.Name(), start, got)
			}
		}
	}
}

func TestExecute_Deterministic(t *testing.T) {
	start := State{East, Position{2, 9}}
	first, err := Execute(start, "MMRMLLMRRMMML")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := Execute(start, "MMRMLLMRRMMML")
		if again != first {
			t.Fatalf("Run %d: expected %v, got %v", i, first, again)
		}
	}
}

func TestStep_ForwardFollowsHeading(t *testing.T) {
	tests := []struct {
		heading Heading
		deltaX  int
		deltaY  int
	}{
		{North, 0, 1},
		{South, 0, -1},
		{East, 1, 0},
		{West, -1, 0},
	}

	for _, test := range tests {
		t.Run(test.heading.Name(), func(t *testing.T) {
			got := State{test.heading, Position{}}.Step(Forward)
			if got.Position.X != test.deltaX || got.Position.Y != test.deltaY {
				t.Errorf("Expected (%d,%d), got (%d,%d)", test.deltaX, test.deltaY, got.Position.X, got.Position.Y)
			}
			if got.Heading != test.heading {
				t.Errorf("Forward must not change heading, got %s", got.Heading)
			}
		})
	}
}
