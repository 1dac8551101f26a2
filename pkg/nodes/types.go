// Package nodes turns normalized component metadata into content graph
// nodes with stable identifiers and parent/child links.
package nodes

import (
	"context"

	"github.com/gnana997/docgen/pkg/metadata"
)

// Node types.
const (
	TypeComponentMetadata    = "ComponentMetadata"
	TypeComponentProp        = "ComponentProp"
	TypeComponentDescription = "ComponentDescription"
)

// MediaTypeMarkdown is the media type of description nodes.
const MediaTypeMarkdown = "text/markdown"

// Internal holds bookkeeping fields shared by every node.
type Internal struct {
	Type          string `json:"type"`
	MediaType     string `json:"mediaType,omitempty"`
	Content       string `json:"content,omitempty"`
	ContentDigest string `json:"contentDigest"`
	Owner         string `json:"owner"`
}

// Node is one entry of the content graph. Exactly one of Component, Prop
// or Text is set, depending on Internal.Type.
type Node struct {
	ID       string   `json:"id"`
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
	Internal Internal `json:"internal"`

	// Component is set on ComponentMetadata nodes; its Props are moved
	// into PropIDs.
	Component *metadata.Component `json:"component,omitempty"`
	PropIDs   []string            `json:"props,omitempty"`

	Prop *metadata.Prop `json:"prop,omitempty"`

	// Text is the markdown of a ComponentDescription node.
	Text string `json:"text,omitempty"`

	// DescriptionID links to the ComponentDescription node of this entity.
	DescriptionID string `json:"description,omitempty"`
}

// Actions registers nodes with a graph.
type Actions interface {
	CreateNode(ctx context.Context, node *Node) error
	CreateParentChildLink(ctx context.Context, parentID, childID string) error
}

// OwnerResetter is implemented by graphs that can drop every node created
// for a source before it is processed again.
type OwnerResetter interface {
	DeleteOwner(ctx context.Context, owner string) error
}
