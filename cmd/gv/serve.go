package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sonnes/graphview/config"
	"github.com/sonnes/graphview/control"
	"github.com/sonnes/graphview/core"
	"github.com/sonnes/graphview/host"
	"github.com/sonnes/graphview/resources"
	"github.com/sonnes/graphview/server"
	"github.com/sonnes/graphview/view"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the graph view daemon",
		Description: `Serves the control API, the index page and graph panels. Each opened
graph gets its own embedded server on an ephemeral port; all of them
are stopped when the daemon exits.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.yaml",
				Value:   config.DefaultPath(),
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "open-browser",
				Usage: "Open revealed panels in the default browser (overrides config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if v := cmd.String("addr"); v != "" {
				cfg.Addr = v
			}
			if cmd.IsSet("open-browser") {
				cfg.OpenBrowser = cmd.Bool("open-browser")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log.Default())
		},
	}
}

// serve runs the daemon until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	baseURL, err := publicURL(cfg.Addr)
	if err != nil {
		return err
	}

	fsys, root := cfg.ResourcesFS(resources.FS)

	var open func(string) error
	if cfg.OpenBrowser {
		open = host.OpenBrowser
	}
	panels := host.New(host.Options{
		BaseURL:      baseURL,
		Resources:    fsys,
		ResourceRoot: root,
		Open:         open,
		Logger:       logger.WithPrefix("host"),
	})

	registry := view.NewRegistry(view.Options{
		Host:      panels,
		Servers:   serverFactory(cfg.ServerHost, baseURL, logger.WithPrefix("server")),
		Resources: fsys,
		Notifier:  panels,
		Logger:    logger.WithPrefix("view"),
	})
	defer registry.Close()

	handler := control.NewHandler(registry, panels, logger.WithPrefix("http"))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", baseURL, "resources", root)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serverFactory starts embedded graph servers on bindHost that accept calls
// only from panels served at origin.
func serverFactory(bindHost, origin string, logger *log.Logger) view.ServerFactory {
	return func(cfg core.GraphConfig) view.Server {
		return server.New(cfg, server.Options{
			Host:           bindHost,
			AllowedOrigins: []string{origin},
			Logger:         logger,
		})
	}
}

// publicURL turns a listen address into the URL browsers use to reach it.
// Wildcard and empty hosts map to loopback.
func publicURL(addr string) (string, error) {
	h, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid addr %q: %w", addr, err)
	}
	if port == "" {
		return "", fmt.Errorf("invalid addr %q: missing port", addr)
	}
	switch h {
	case "", "0.0.0.0", "::":
		h = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(h, port), nil
}
