package core

import "strings"

// Identity is the (endpoint, database, graph) tuple naming one graph. Two
// configurations that differ only in gremlin endpoint, key or title share an
// Identity. Identity is comparable and can be used as a map key.
type Identity struct {
	Endpoint string `json:"endpoint"`
	Database string `json:"database"`
	Graph    string `json:"graph"`
}

// Key returns a string form of the identity. Distinct identities always
// produce distinct keys.
func (i Identity) Key() string {
	return escapeKeyPart(i.Endpoint) + "|" + escapeKeyPart(i.Database) + "|" + escapeKeyPart(i.Graph)
}

// String returns "endpoint database/graph".
func (i Identity) String() string {
	return i.Endpoint + " " + i.Database + "/" + i.Graph
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

func escapeKeyPart(s string) string {
	return keyEscaper.Replace(s)
}
