package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sonnes/graphview/core"
	"github.com/urfave/cli/v3"
)

func openCmd() *cli.Command {
	return &cli.Command{
		Name:  "open",
		Usage: "Open a graph view, or reveal the existing one for the same graph",
		Description: `Asks the daemon for a view of the given graph. A view already open for
the same document endpoint, database and graph is revealed instead of
starting another server.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "endpoint",
				Aliases:  []string{"e"},
				Usage:    "Document endpoint of the account",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "database",
				Aliases:  []string{"d"},
				Usage:    "Database name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "graph",
				Aliases:  []string{"g"},
				Usage:    "Graph (collection) name",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "gremlin",
				Usage: "Gremlin endpoint (host:port)",
			},
			&cli.StringFlag{
				Name:    "key",
				Usage:   "Account key",
				Sources: cli.EnvVars("GRAPHVIEW_KEY"),
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Tab title (defaults to database/graph)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := graphConfig(cmd)
			if err := cfg.Validate(); err != nil {
				return err
			}

			info, err := client(cmd).Open(ctx, cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "#%d %s\n", info.ID, info.Title)
			if info.PanelURL != "" {
				fmt.Fprintln(os.Stdout, info.PanelURL)
			}
			return nil
		},
	}
}

// graphConfig builds a graph configuration from open's flags.
func graphConfig(cmd *cli.Command) core.GraphConfig {
	return core.GraphConfig{
		DocumentEndpoint: cmd.String("endpoint"),
		GremlinEndpoint:  cmd.String("gremlin"),
		DatabaseName:     cmd.String("database"),
		GraphName:        cmd.String("graph"),
		Key:              cmd.String("key"),
		TabTitle:         cmd.String("title"),
	}
}
