// Package resources embeds the static graph client assets served to panels.
package resources

import "embed"

// FS holds the graph client template and the assets it references.
//
//go:embed graphClient
var FS embed.FS
