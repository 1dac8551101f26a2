package nodes

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/docgen/pkg/docgen"
	"github.com/gnana997/docgen/pkg/doclet"
	"github.com/gnana997/docgen/pkg/metadata"
)

// recorder captures everything an Emitter registers.
type recorder struct {
	mu      sync.Mutex
	created []*Node
	links   [][2]string
}

func (r *recorder) CreateNode(_ context.Context, n *Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, n)
	return nil
}

func (r *recorder) CreateParentChildLink(_ context.Context, parent, child string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, [2]string{parent, child})
	return nil
}

func (r *recorder) ofType(typ string) []*Node {
	var out []*Node
	for _, n := range r.created {
		if n.Internal.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type testEnv struct {
	fixtures string
	logs     *bytes.Buffer
	actions  *recorder
	loads    *atomic.Int64
	logger   *slog.Logger
	norm     *metadata.Normalizer
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	fixtures, err := filepath.Abs(filepath.Join("..", "docgen", "testdata"))
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	e := docgen.New(logger)
	t.Cleanup(func() { e.Close() })

	return &testEnv{
		fixtures: fixtures,
		logs:     logs,
		actions:  &recorder{},
		loads:    &atomic.Int64{},
		logger:   logger,
		norm:     metadata.NewNormalizer(e, logger),
	}
}

// processor builds a Processor whose loader reads fixtures by the source's
// absolute path, or returns content verbatim when it is set.
func (env *testEnv) processor(content []byte, opts metadata.Options) *Processor {
	if opts.Cwd == "" {
		opts.Cwd = env.fixtures
	}
	load := func(_ context.Context, source metadata.SourceNode) ([]byte, error) {
		env.loads.Add(1)
		if content != nil {
			return content, nil
		}
		return os.ReadFile(source.AbsolutePath)
	}
	emitter := NewEmitter(env.actions, func(key string) string { return key }, env.logger)
	return NewProcessor(env.norm, emitter, load, opts, env.logger)
}

func (env *testEnv) fixture(name string) metadata.SourceNode {
	return metadata.SourceNode{
		ID:           "node_1",
		AbsolutePath: filepath.Join(env.fixtures, name),
		MediaType:    "application/javascript",
	}
}

func TestOnCreateNode_OnlyJavaScriptAndTypeScript(t *testing.T) {
	env := setupEnv(t)
	p := env.processor([]byte("export const answer = 42;\n"), metadata.Options{})

	unknown := []metadata.SourceNode{
		{},
		{ID: "foo", MediaType: "text/x-foo"},
		{ID: "md", MediaType: "text/markdown"},
	}
	expected := []metadata.SourceNode{
		{ID: "js", MediaType: "application/javascript"},
		{ID: "jsx", MediaType: "text/jsx"},
		{ID: "tsx", MediaType: "text/tsx"},
		{ID: "ext-tsx", Extension: "tsx"},
		{ID: "ext-ts", Extension: "ts"},
	}

	for _, source := range append(unknown, expected...) {
		_, err := p.OnCreateNode(context.Background(), source)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(len(expected)), env.loads.Load())
}

func TestOnCreateNode_Classes(t *testing.T) {
	env := setupEnv(t)
	p := env.processor(nil, metadata.Options{})

	n, err := p.OnCreateNode(context.Background(), env.fixture("classes.js"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	components := env.actions.ofType(TypeComponentMetadata)

	t.Run("extracts all components", func(t *testing.T) {
		require.Len(t, components, 6)
		var names []string
		for _, c := range components {
			names = append(names, c.Component.DisplayName)
		}
		assert.Equal(t, []string{"Baz", "Buz", "Foo", "Baz.Foo", "Bar", "Qux"}, names)
	})

	t.Run("links components to the source", func(t *testing.T) {
		require.Len(t, env.actions.links, 6)
		for i, link := range env.actions.links {
			assert.Equal(t, "node_1", link[0])
			assert.Equal(t, components[i].ID, link[1])
			assert.Equal(t, "node_1", components[i].Parent)
		}
	})

	t.Run("keeps duplicate doclets", func(t *testing.T) {
		bar := components[4]
		assert.Len(t, doclet.All(bar.Component.Doclets, "property"), 2)
	})

	t.Run("extracts all props", func(t *testing.T) {
		props := env.actions.ofType(TypeComponentProp)
		require.Len(t, props, 14)

		first := props[0].Prop
		assert.Equal(t, "An object hash of field (fix this @mention?) errors for the form.", first.Description)
		assert.Equal(t, []doclet.Doclet{
			{Tag: "type", Value: "{Foo}"},
			{Tag: "default", Value: "blue"},
		}, first.Doclets)
	})

	t.Run("moves props into prop nodes", func(t *testing.T) {
		baz := components[0]
		assert.Nil(t, baz.Component.Props)
		require.Len(t, baz.PropIDs, 6)
		assert.Equal(t, "node_1--0--Baz--ComponentMetadata--ComponentProp-objProp", baz.PropIDs[0])
		assert.Subset(t, baz.Children, baz.PropIDs)
	})

	t.Run("creates markdown description nodes", func(t *testing.T) {
		descriptions := env.actions.ofType(TypeComponentDescription)
		require.NotEmpty(t, descriptions)
		for _, d := range descriptions {
			assert.Equal(t, MediaTypeMarkdown, d.Internal.MediaType)
			assert.NotEmpty(t, d.Text)
			assert.Equal(t, d.Text, d.Internal.Content)
		}
		assert.NotEmpty(t, components[0].DescriptionID)
	})
}

func TestOnCreateNode_InfersName(t *testing.T) {
	env := setupEnv(t)
	p := env.processor(nil, metadata.Options{})

	_, err := p.OnCreateNode(context.Background(), env.fixture("unnamed.js"))
	require.NoError(t, err)

	components := env.actions.ofType(TypeComponentMetadata)
	require.Len(t, components, 1)
	assert.Equal(t, "Unnamed", components[0].Component.DisplayName)
}

func TestOnCreateNode_Handlers(t *testing.T) {
	env := setupEnv(t)
	var calls atomic.Int64
	handler := metadata.HandlerFunc(func(*docgen.Documentation, *docgen.Definition, *docgen.File, metadata.SourceNode) {
		calls.Add(1)
	})
	p := env.processor(nil, metadata.Options{Handlers: []metadata.Handler{handler}})

	_, err := p.OnCreateNode(context.Background(), env.fixture("classes.js"))
	require.NoError(t, err)
	assert.Positive(t, calls.Load())
}

func TestOnCreateNode_FlowTypes(t *testing.T) {
	env := setupEnv(t)
	p := env.processor(nil, metadata.Options{})

	_, err := p.OnCreateNode(context.Background(), env.fixture("flow.js"))
	require.NoError(t, err)

	var found *Node
	for _, n := range env.actions.ofType(TypeComponentProp) {
		if n.Prop.FlowType != nil {
			found = n
			break
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, &docgen.TypeDescriptor{Name: "number"}, found.Prop.FlowType)
}

func TestOnCreateNode_ReportsErrors(t *testing.T) {
	env := setupEnv(t)
	p := env.processor(nil, metadata.Options{})

	_, err := p.OnCreateNode(context.Background(), env.fixture("broken.js"))
	require.Error(t, err)
	assert.Contains(t, env.logs.String(), "There was a problem parsing component metadata")
	assert.Contains(t, env.logs.String(), "file=broken.js")
	assert.Empty(t, env.actions.created)

	n, err := p.OnCreateNode(context.Background(), env.fixture("classes.js"))
	require.NoError(t, err, "a failed source does not affect the next one")
	assert.Equal(t, 6, n)
}

func TestEmit_DeduplicatesDescriptions(t *testing.T) {
	actions := &recorder{}
	e := NewEmitter(actions, func(key string) string { return key }, nil)

	components := []metadata.Component{{
		DisplayName: "Shared",
		Description: "Same words.",
		Props: []metadata.Prop{
			{Name: "a", Description: "Same words."},
			{Name: "b", Description: "Same words."},
			{Name: "c"},
		},
	}}
	require.NoError(t, e.Emit(context.Background(), metadata.SourceNode{ID: "src"}, components))

	descriptions := actions.ofType(TypeComponentDescription)
	require.Len(t, descriptions, 1)
	desc := descriptions[0]
	assert.Equal(t, "src--ComponentDescription--"+digestString("Same words."), desc.ID)

	props := actions.ofType(TypeComponentProp)
	require.Len(t, props, 3)
	assert.Equal(t, desc.ID, props[0].DescriptionID)
	assert.Equal(t, desc.ID, props[1].DescriptionID)
	assert.Empty(t, props[2].DescriptionID)
	assert.Equal(t, props[0].ID, desc.Parent, "the first referencing entity owns the description")

	component := actions.ofType(TypeComponentMetadata)[0]
	assert.Equal(t, desc.ID, component.DescriptionID)
	assert.Equal(t, "src--0--Shared--ComponentMetadata", component.ID)
}

func TestEmit_SameNameComponentsGetDistinctIDs(t *testing.T) {
	actions := &recorder{}
	e := NewEmitter(actions, nil, nil)

	components := []metadata.Component{{DisplayName: "Dup"}, {DisplayName: "Dup"}}
	require.NoError(t, e.Emit(context.Background(), metadata.SourceNode{ID: "src"}, components))

	created := actions.ofType(TypeComponentMetadata)
	require.Len(t, created, 2)
	assert.NotEqual(t, created[0].ID, created[1].ID)
}

func TestDefaultNodeID(t *testing.T) {
	a := DefaultNodeID("node_1--0--Baz--ComponentMetadata")
	b := DefaultNodeID("node_1--0--Baz--ComponentMetadata")
	c := DefaultNodeID("node_1--1--Baz--ComponentMetadata")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
