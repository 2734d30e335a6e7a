package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

func closeCmd() *cli.Command {
	return &cli.Command{
		Name:      "close",
		Usage:     "Close graph views by id",
		ArgsUsage: "<id> [id...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ids, err := parseIDs(cmd.Args().Slice())
			if err != nil {
				return err
			}

			c := client(cmd)
			for _, id := range ids {
				if err := c.Close(ctx, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// parseIDs parses session ids, which are positive integers.
func parseIDs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one view id is required")
	}
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid view id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
