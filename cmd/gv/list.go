package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List open graph views",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "o",
				Usage: "Output format: terminal, json",
				Value: "terminal",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rnd, err := newApp().renderer(cmd.String("o"))
			if err != nil {
				return err
			}

			sessions, err := client(cmd).List(ctx)
			if err != nil {
				return err
			}

			if err := rnd.Render(os.Stdout, sessions); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			return nil
		},
	}
}
