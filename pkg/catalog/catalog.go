// Package catalog assembles extracted components into a catalog that can
// be saved, reloaded and queried.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/gnana997/docgen/pkg/metadata"
	"github.com/gnana997/docgen/pkg/nodes"
)

// CatalogIndex provides O(1) lookups into the catalog.
type CatalogIndex struct {
	// ComponentsByName maps display name -> components with that name, in
	// catalog order. Names repeat across files.
	ComponentsByName map[string][]*Component

	// ComponentByID maps node id -> component.
	ComponentByID map[string]*Component

	// ComponentsBySource maps source id -> its components.
	ComponentsBySource map[string][]*Component

	// Sources lists source ids in first-seen order.
	Sources []string
}

// FromStore builds a catalog from the component nodes in store, ordered by
// source id and then by position within the source.
func FromStore(name, version string, store *nodes.Store) *Catalog {
	cat := &Catalog{Name: name, Version: version}

	for _, n := range store.NodesOfType(nodes.TypeComponentMetadata) {
		c := Component{
			Component: *n.Component,
			ID:        n.ID,
			Source:    n.Internal.Owner,
		}
		c.Props = make([]metadata.Prop, 0, len(n.PropIDs))
		for _, id := range n.PropIDs {
			if p, ok := store.Get(id); ok && p.Prop != nil {
				c.Props = append(c.Props, *p.Prop)
			}
		}
		cat.Components = append(cat.Components, c)
	}

	if cat.Components == nil {
		cat.Components = []Component{}
	}
	sort.SliceStable(cat.Components, func(i, j int) bool {
		return cat.Components[i].Source < cat.Components[j].Source
	})
	return cat
}

// Validate checks the catalog for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (c *Catalog) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("catalog name is required"))
	}

	ids := make(map[string]bool, len(c.Components))
	for i, comp := range c.Components {
		if comp.DisplayName == "" {
			errs = append(errs, fmt.Errorf("components[%d]: displayName is required", i))
		}
		if comp.Source == "" {
			errs = append(errs, fmt.Errorf("components[%d]: source is required", i))
		}
		if comp.ID != "" {
			if ids[comp.ID] {
				errs = append(errs, fmt.Errorf("component %q: duplicate id %q", comp.DisplayName, comp.ID))
			}
			ids[comp.ID] = true
		}

		props := make(map[string]bool, len(comp.Props))
		for j, prop := range comp.Props {
			if prop.Name == "" {
				errs = append(errs, fmt.Errorf("component %q props[%d]: name is required", comp.DisplayName, j))
				continue
			}
			if props[prop.Name] {
				errs = append(errs, fmt.Errorf("component %q: duplicate prop %q", comp.DisplayName, prop.Name))
			}
			props[prop.Name] = true
		}
	}

	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		ComponentsByName:   make(map[string][]*Component),
		ComponentByID:      make(map[string]*Component, len(c.Components)),
		ComponentsBySource: make(map[string][]*Component),
	}

	for i := range c.Components {
		comp := &c.Components[i]
		idx.ComponentsByName[comp.DisplayName] = append(idx.ComponentsByName[comp.DisplayName], comp)
		if comp.ID != "" {
			idx.ComponentByID[comp.ID] = comp
		}
		if _, seen := idx.ComponentsBySource[comp.Source]; !seen {
			idx.Sources = append(idx.Sources, comp.Source)
		}
		idx.ComponentsBySource[comp.Source] = append(idx.ComponentsBySource[comp.Source], comp)
	}

	return idx
}

// LoadFromFile loads a catalog from a JSON file, validates it, and builds the index.
func LoadFromFile(path string) (*Catalog, *CatalogIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a catalog from raw JSON bytes, validates it, and builds the index.
func LoadFromBytes(data []byte) (*Catalog, *CatalogIndex, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("catalog validation failed: %w", errors.Join(errs...))
	}

	return &catalog, catalog.BuildIndex(), nil
}

// WriteFile writes the catalog as indented JSON.
func (c *Catalog) WriteFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
