package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	root := &cli.Command{
		Name:  "gv",
		Usage: "Open and manage graph explorer views backed by local graph servers",
		Description: `
   __ ___ __
  / _' \ V /
  \__, |\_/
  |___/

 gv serve runs the daemon. The other commands talk to it.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "error",
			},
			&cli.StringFlag{
				Name:    "daemon",
				Usage:   "Daemon URL used by open, list and close",
				Value:   "http://127.0.0.1:7411",
				Sources: cli.EnvVars("GRAPHVIEW_DAEMON"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			openCmd(),
			listCmd(),
			closeCmd(),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
