package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sonnes/graphview/control"
	"github.com/sonnes/graphview/render"
	jsonrender "github.com/sonnes/graphview/render/json"
	"github.com/sonnes/graphview/render/terminal"
	"github.com/urfave/cli/v3"
)

// app holds the renderer registry used by CLI commands.
type app struct {
	renderers map[string]func() render.Renderer
}

func newApp() *app {
	return &app{
		renderers: map[string]func() render.Renderer{
			"terminal": func() render.Renderer { return terminal.New() },
			"json":     func() render.Renderer { return jsonrender.New() },
		},
	}
}

func (a *app) renderer(name string) (render.Renderer, error) {
	fn, ok := a.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want %s)", name, strings.Join(a.formats(), ", "))
	}
	return fn(), nil
}

func (a *app) formats() []string {
	names := make([]string, 0, len(a.renderers))
	for name := range a.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// client returns a control API client for the --daemon flag.
func client(cmd *cli.Command) *control.Client {
	return control.NewClient(cmd.String("daemon"))
}
