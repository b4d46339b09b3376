package mission

import (
	"context"
	"fmt"
	"io"

	"github.com/wricardo/mars-rover/pkg/log"
	"github.com/wricardo/mars-rover/rover/engine"
	"github.com/wricardo/mars-rover/rover/service"
)

// Run executes the script's statements in order against svc. show
// statements write "<id> <name> <x> <y> <heading>" lines to out. Execution
// stops at the first failing statement.
func Run(ctx context.Context, svc service.RoverService, script *Script, out io.Writer) error {
	for _, stmt := range script.Statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := stmt.Exec(ctx, svc, out); err != nil {
			return fmt.Errorf("%s: %w", stmt.Pos, err)
		}
	}
	return nil
}

// Exec runs a single statement
func (s *Statement) Exec(ctx context.Context, svc service.RoverService, out io.Writer) error {
	logger := log.FromCtx(ctx)

	switch {
	case s.Create != nil:
		_, err := svc.CreateRover(ctx, s.Create.ID, s.Create.Name)
		return err

	case s.Rename != nil:
		_, err := svc.RenameRover(ctx, s.Rename.ID, s.Rename.Name)
		return err

	case s.Move != nil:
		result, err := svc.MoveRover(ctx, s.Move.ID, s.Move.Commands)
		if err != nil {
			return err
		}
		logger.Debug().
			Int("rover_id", s.Move.ID).
			Stringer("to", result.To).
			Msg("mission move")
		return nil

	case s.Show != nil:
		rover, err := svc.GetRover(ctx, s.Show.ID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, FormatRover(rover))
		return err
	}

	return nil
}

// FormatRover renders a rover as "<id> <name> <x> <y> <heading>"
func FormatRover(r *engine.Rover) string {
	return fmt.Sprintf("%d %s %d %d %s", r.ID, r.Name, r.Position.X, r.Position.Y, r.Heading)
}
