package nodes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gnana997/docgen/pkg/metadata"
)

// DefaultNodeID derives a name-based UUID from key, so the same key always
// yields the same id.
func DefaultNodeID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Emitter converts normalized components into nodes.
type Emitter struct {
	actions      Actions
	createNodeID func(key string) string
	logger       *slog.Logger
}

// NewEmitter creates an Emitter registering nodes through actions. A nil
// createNodeID uses DefaultNodeID.
func NewEmitter(actions Actions, createNodeID func(string) string, logger *slog.Logger) *Emitter {
	if createNodeID == nil {
		createNodeID = DefaultNodeID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{actions: actions, createNodeID: createNodeID, logger: logger}
}

// emission tracks description nodes already created for one source.
type emission struct {
	source       metadata.SourceNode
	descriptions map[string]string
}

// Emit creates one ComponentMetadata node per component, one ComponentProp
// node per prop and one ComponentDescription node per distinct non-empty
// description, and links each metadata node to the source.
func (e *Emitter) Emit(ctx context.Context, source metadata.SourceNode, components []metadata.Component) error {
	if r, ok := e.actions.(OwnerResetter); ok {
		if err := r.DeleteOwner(ctx, source.ID); err != nil {
			return fmt.Errorf("reset nodes of %s: %w", source.ID, err)
		}
	}

	em := &emission{source: source, descriptions: make(map[string]string)}
	for i := range components {
		if err := e.emitComponent(ctx, em, i, components[i]); err != nil {
			return err
		}
	}

	e.logger.DebugContext(ctx, "emitted nodes",
		"source", source.ID,
		"components", len(components),
		"descriptions", len(em.descriptions))
	return nil
}

func (e *Emitter) emitComponent(ctx context.Context, em *emission, index int, c metadata.Component) error {
	payload := c
	payload.Props = nil

	digest, err := contentDigest(c)
	if err != nil {
		return err
	}

	node := &Node{
		ID:        e.createNodeID(fmt.Sprintf("%s--%d--%s--%s", em.source.ID, index, c.DisplayName, TypeComponentMetadata)),
		Parent:    em.source.ID,
		Children:  []string{},
		Component: &payload,
		Internal: Internal{
			Type:          TypeComponentMetadata,
			ContentDigest: digest,
			Owner:         em.source.ID,
		},
	}

	if err := e.actions.CreateParentChildLink(ctx, em.source.ID, node.ID); err != nil {
		return fmt.Errorf("link %s: %w", c.DisplayName, err)
	}

	for i := range c.Props {
		id, err := e.emitProp(ctx, em, node.ID, c.Props[i])
		if err != nil {
			return err
		}
		node.PropIDs = append(node.PropIDs, id)
		node.Children = append(node.Children, id)
	}

	if err := e.linkDescription(ctx, em, node, c.Description); err != nil {
		return err
	}

	if err := e.actions.CreateNode(ctx, node); err != nil {
		return fmt.Errorf("create component %s: %w", c.DisplayName, err)
	}
	return nil
}

func (e *Emitter) emitProp(ctx context.Context, em *emission, componentID string, p metadata.Prop) (string, error) {
	digest, err := contentDigest(p)
	if err != nil {
		return "", err
	}

	node := &Node{
		ID:       e.createNodeID(fmt.Sprintf("%s--%s-%s", componentID, TypeComponentProp, p.Name)),
		Parent:   componentID,
		Children: []string{},
		Prop:     &p,
		Internal: Internal{
			Type:          TypeComponentProp,
			ContentDigest: digest,
			Owner:         em.source.ID,
		},
	}

	if err := e.linkDescription(ctx, em, node, p.Description); err != nil {
		return "", err
	}
	if err := e.actions.CreateNode(ctx, node); err != nil {
		return "", fmt.Errorf("create prop %s: %w", p.Name, err)
	}
	return node.ID, nil
}

// linkDescription points node at the description node for text, creating
// it as a child of node when no earlier entity of the source used it.
func (e *Emitter) linkDescription(ctx context.Context, em *emission, node *Node, text string) error {
	if text == "" {
		return nil
	}

	digest := digestString(text)
	if id, ok := em.descriptions[digest]; ok {
		node.DescriptionID = id
		return nil
	}

	desc := &Node{
		ID:       e.createNodeID(fmt.Sprintf("%s--%s--%s", em.source.ID, TypeComponentDescription, digest)),
		Parent:   node.ID,
		Children: []string{},
		Text:     text,
		Internal: Internal{
			Type:          TypeComponentDescription,
			MediaType:     MediaTypeMarkdown,
			Content:       text,
			ContentDigest: digest,
			Owner:         em.source.ID,
		},
	}
	if err := e.actions.CreateNode(ctx, desc); err != nil {
		return fmt.Errorf("create description: %w", err)
	}

	em.descriptions[digest] = desc.ID
	node.DescriptionID = desc.ID
	node.Children = append(node.Children, desc.ID)
	return nil
}

func contentDigest(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return digestBytes(data), nil
}

func digestString(s string) string {
	return digestBytes([]byte(s))
}

func digestBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
