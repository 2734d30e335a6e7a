// Package core defines the graph configuration relayed from a caller to the
// view host, and the identity that decides whether two configurations point
// at the same graph.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by Validate when a required field is missing.
var ErrInvalidConfig = errors.New("invalid graph configuration")

// GraphConfig describes a graph to visualize and how to reach it.
type GraphConfig struct {
	DocumentEndpoint string `json:"document_endpoint" yaml:"document_endpoint"`
	GremlinEndpoint  string `json:"gremlin_endpoint,omitempty" yaml:"gremlin_endpoint,omitempty"` // auxiliary, not part of identity
	DatabaseName     string `json:"database_name" yaml:"database_name"`
	GraphName        string `json:"graph_name" yaml:"graph_name"`
	Key              string `json:"key,omitempty" yaml:"key,omitempty"`
	TabTitle         string `json:"tab_title,omitempty" yaml:"tab_title,omitempty"`
}

// Identity returns the part of the configuration that identifies the graph.
func (c GraphConfig) Identity() Identity {
	return Identity{
		Endpoint: c.DocumentEndpoint,
		Database: c.DatabaseName,
		Graph:    c.GraphName,
	}
}

// Title returns TabTitle, falling back to "database/graph".
func (c GraphConfig) Title() string {
	if c.TabTitle != "" {
		return c.TabTitle
	}
	return c.DatabaseName + "/" + c.GraphName
}

// Validate reports the first missing required field.
func (c GraphConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.DocumentEndpoint) == "" {
		missing = append(missing, "document_endpoint")
	}
	if strings.TrimSpace(c.DatabaseName) == "" {
		missing = append(missing, "database_name")
	}
	if strings.TrimSpace(c.GraphName) == "" {
		missing = append(missing, "graph_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Redacted returns a copy with the key masked, safe for logs and listings.
func (c GraphConfig) Redacted() GraphConfig {
	if c.Key != "" {
		c.Key = "[REDACTED]"
	}
	return c
}
