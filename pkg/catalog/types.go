package catalog

import "github.com/gnana997/docgen/pkg/metadata"

// Catalog is a snapshot of every component extracted from a source tree.
type Catalog struct {
	Name       string      `json:"name"`
	Version    string      `json:"version"`
	Components []Component `json:"components"`
}

// Component is an extracted component together with where it came from.
type Component struct {
	metadata.Component

	// ID is the component's node id.
	ID string `json:"id"`

	// Source is the id of the file the component was extracted from.
	Source string `json:"source"`
}
