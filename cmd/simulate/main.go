// Command simulate runs mission scripts against an in-memory rover fleet and
// prints the output of their show statements. Files run in order and share
// one fleet, so a later file can move rovers an earlier one created. "-"
// reads a script from stdin.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	roverlog "github.com/wricardo/mars-rover/pkg/log"
	"github.com/wricardo/mars-rover/mission"
	"github.com/wricardo/mars-rover/rover/service"
	"github.com/wricardo/mars-rover/rover/store"
)

func main() {
	if err := newCommand(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}
}

func newCommand(stdin io.Reader, stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "simulate",
		Usage:     "run rover mission scripts against an in-memory fleet",
		ArgsUsage: "<mission-file>... (use - for stdin)",
		Writer:    stdout,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log every move",
				Sources: cli.EnvVars("ROVER_DEBUG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				return fmt.Errorf("at least one mission file is required")
			}

			ctx, closeLog := roverlog.NewContextWithWriter(ctx, os.Stderr, cmd.Bool("debug"))
			defer closeLog()

			svc := service.NewRoverService(store.NewMemoryStore())
			for _, file := range files {
				if err := runFile(ctx, svc, file, stdin, stdout); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func runFile(ctx context.Context, svc service.RoverService, file string, stdin io.Reader, out io.Writer) error {
	var (
		r    io.Reader
		name = file
	)
	if file == "-" {
		r, name = stdin, "stdin"
	} else {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open mission: %w", err)
		}
		defer f.Close()
		r = f
	}

	script, err := mission.ParseReader(name, r)
	if err != nil {
		return err
	}
	return mission.Run(ctx, svc, script, out)
}
